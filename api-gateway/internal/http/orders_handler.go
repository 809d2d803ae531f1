package http

import (
	"net/http"
	"time"

	"github.com/fjod/storefront/api-gateway/internal/auth"
	pb "github.com/fjod/storefront/orders-service/pkg/orderspb"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type OrdersHandler struct {
	ordersClient pb.OrdersServiceClient
	timeout      time.Duration
}

func NewOrdersHandler(client pb.OrdersServiceClient, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		ordersClient: client,
		timeout:      timeout,
	}
}

type OrderItemDTO struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int32           `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

type OrderResponseDTO struct {
	ID              string              `json:"id"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	Currency        string              `json:"currency"`
	Status          string              `json:"status"`
	Items           []OrderItemDTO      `json:"items"`
	ShippingAddress *pb.ShippingAddress `json:"shipping_address,omitempty"`
	PaymentRef      string              `json:"payment_ref,omitempty"`
	CreatedAt       string              `json:"created_at"`
}

// GET /api/v1/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	user := auth.FromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	ctx, cancel := callContext(r, h.timeout)
	defer cancel()

	resp, err := h.ordersClient.ListOrders(ctx, &pb.ListOrdersRequest{UserId: user.UserID})
	if err != nil {
		handleGRPCError(w, err)
		return
	}

	dtos := make([]OrderResponseDTO, 0, len(resp.Orders))
	for _, o := range resp.Orders {
		dtos = append(dtos, convertProtoOrder(o))
	}

	respondJSON(w, http.StatusOK, dtos)
}

func convertProtoOrder(o *pb.Order) OrderResponseDTO {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ProductID:   item.ProductId,
			ProductName: item.Name,
			Quantity:    item.Quantity,
			Price:       item.Price,
		})
	}

	return OrderResponseDTO{
		ID:              o.Id,
		TotalAmount:     o.TotalAmount,
		Currency:        o.Currency,
		Status:          o.Status,
		Items:           items,
		ShippingAddress: o.ShippingAddress,
		PaymentRef:      o.PaymentRef,
		CreatedAt:       o.CreatedAt,
	}
}

// GET /api/v1/orders/{order_id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	user := auth.FromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orderID := chi.URLParam(r, "order_id")
	if orderID == "" {
		respondError(w, http.StatusBadRequest, "missing_order_id", "order_id is required")
		return
	}

	ctx, cancel := callContext(r, h.timeout)
	defer cancel()

	resp, err := h.ordersClient.GetOrder(ctx, &pb.GetOrderRequest{OrderId: orderID})
	if err != nil {
		handleGRPCError(w, err)
		return
	}
	// other shoppers' orders are reported as missing
	if resp.Order.UserId != user.UserID {
		respondError(w, http.StatusNotFound, "not_found", "order not found")
		return
	}

	respondJSON(w, http.StatusOK, convertProtoOrder(resp.Order))
}
