package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/storefront/orders-service/internal/domain"
	"github.com/fjod/storefront/orders-service/internal/repository"
	pb "github.com/fjod/storefront/orders-service/pkg/orderspb"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type OrdersHandler struct {
	pb.UnimplementedOrdersServiceServer
	repo repository.OrderRepository
	log  *zap.Logger
}

func NewOrdersHandler(repo repository.OrderRepository, log *zap.Logger) *OrdersHandler {
	return &OrdersHandler{repo: repo, log: log}
}

func (h *OrdersHandler) CreateOrder(ctx context.Context, req *pb.CreateOrderRequest) (*pb.OrderResponse, error) {
	if req.UserId == "" {
		return nil, status.Error(codes.InvalidArgument, "user_id is required")
	}
	if len(req.Items) == 0 {
		return nil, status.Error(codes.InvalidArgument, "order has no items")
	}
	if len(req.Currency) != 3 {
		return nil, status.Error(codes.InvalidArgument, "currency must be a 3-letter code")
	}
	if req.ShippingAddress == nil {
		return nil, status.Error(codes.InvalidArgument, "shipping_address is required")
	}

	items := make([]domain.OrderLine, 0, len(req.Items))
	for _, it := range req.Items {
		if it.ProductId == "" || it.Quantity <= 0 || it.Price.IsNegative() {
			return nil, status.Errorf(codes.InvalidArgument, "invalid order line %q", it.ProductId)
		}
		items = append(items, domain.OrderLine{
			ProductID: it.ProductId,
			Name:      it.Name,
			UnitPrice: it.Price,
			Quantity:  int(it.Quantity),
		})
	}
	if !req.TotalAmount.IsPositive() {
		return nil, status.Error(codes.InvalidArgument, "total_amount must be positive")
	}

	order := &domain.Order{
		ID:              uuid.New(),
		UserID:          req.UserId,
		CartRef:         req.CartRef,
		Items:           items,
		TotalAmount:     req.TotalAmount,
		Currency:        req.Currency,
		Status:          domain.OrderStatusPending,
		ShippingAddress: convertAddressFromProto(req.ShippingAddress),
	}
	if err := h.repo.CreateOrder(ctx, order); err != nil {
		h.log.Error("create order failed", zap.String("user_id", req.UserId), zap.Error(err))
		return nil, status.Errorf(codes.Internal, "failed to create order: %v", err)
	}

	h.log.Info("order created", zap.String("order_id", order.ID.String()), zap.String("user_id", order.UserID))
	return &pb.OrderResponse{Order: convertOrderToProto(order)}, nil
}

func (h *OrdersHandler) GetOrder(ctx context.Context, req *pb.GetOrderRequest) (*pb.OrderResponse, error) {
	id, err := uuid.Parse(req.OrderId)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid order_id: %v", err)
	}

	order, err := h.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, toStatus(err, "failed to get order")
	}

	return &pb.OrderResponse{Order: convertOrderToProto(order)}, nil
}

func (h *OrdersHandler) ListOrders(ctx context.Context, req *pb.ListOrdersRequest) (*pb.ListOrdersResponse, error) {
	if req.UserId == "" {
		return nil, status.Error(codes.InvalidArgument, "user_id is required")
	}

	orders, err := h.repo.ListOrdersByUserID(ctx, req.UserId)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to list orders: %v", err)
	}

	protoOrders := make([]*pb.Order, 0, len(orders))
	for _, o := range orders {
		protoOrders = append(protoOrders, convertOrderToProto(o))
	}

	return &pb.ListOrdersResponse{Orders: protoOrders}, nil
}

func (h *OrdersHandler) UpdateOrderStatus(ctx context.Context, req *pb.UpdateOrderStatusRequest) (*pb.UpdatedResponse, error) {
	id, err := uuid.Parse(req.OrderId)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid order_id: %v", err)
	}
	next := domain.OrderStatus(req.Status)
	if !next.Valid() {
		return nil, status.Errorf(codes.InvalidArgument, "unknown order status %q", req.Status)
	}

	if err := h.repo.UpdateOrderStatus(ctx, id, next); err != nil {
		return nil, toStatus(err, "failed to update order status")
	}
	return &pb.UpdatedResponse{Updated: true}, nil
}

func (h *OrdersHandler) CreatePaymentRecord(ctx context.Context, req *pb.CreatePaymentRecordRequest) (*pb.PaymentRecordResponse, error) {
	orderID, err := uuid.Parse(req.OrderId)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid order_id: %v", err)
	}
	if req.GatewayOrderId == "" {
		return nil, status.Error(codes.InvalidArgument, "gateway_order_id is required")
	}
	if req.Amount <= 0 {
		return nil, status.Error(codes.InvalidArgument, "amount must be positive")
	}

	rec := &domain.PaymentRecord{
		OrderID:        orderID,
		GatewayOrderID: req.GatewayOrderId,
		Amount:         req.Amount,
		Currency:       req.Currency,
	}
	if err := h.repo.CreatePaymentRecord(ctx, rec); err != nil {
		return nil, toStatus(err, "failed to create payment record")
	}
	return &pb.PaymentRecordResponse{Payment: convertPaymentToProto(rec)}, nil
}

func (h *OrdersHandler) UpdatePaymentRecord(ctx context.Context, req *pb.UpdatePaymentRecordRequest) (*pb.UpdatedResponse, error) {
	if req.GatewayOrderId == "" {
		return nil, status.Error(codes.InvalidArgument, "gateway_order_id is required")
	}
	next := domain.PaymentStatus(req.Status)
	if !next.Valid() {
		return nil, status.Errorf(codes.InvalidArgument, "unknown payment status %q", req.Status)
	}

	err := h.repo.UpdatePaymentRecord(ctx, req.GatewayOrderId, repository.PaymentUpdate{
		PaymentID:  req.PaymentId,
		Signature:  req.Signature,
		Status:     next,
		RawPayload: req.RawPayload,
	})
	if err != nil {
		return nil, toStatus(err, "failed to update payment record")
	}
	return &pb.UpdatedResponse{Updated: true}, nil
}

func (h *OrdersHandler) GetPaymentByOrderID(ctx context.Context, req *pb.GetPaymentByOrderIDRequest) (*pb.PaymentRecordResponse, error) {
	orderID, err := uuid.Parse(req.OrderId)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid order_id: %v", err)
	}

	p, err := h.repo.GetPaymentByOrderID(ctx, orderID)
	if err != nil {
		return nil, toStatus(err, "failed to get payment")
	}
	return &pb.PaymentRecordResponse{Payment: convertPaymentToProto(p)}, nil
}

func (h *OrdersHandler) GetPaymentByGatewayOrderID(ctx context.Context, req *pb.GetPaymentByGatewayOrderIDRequest) (*pb.PaymentRecordResponse, error) {
	if req.GatewayOrderId == "" {
		return nil, status.Error(codes.InvalidArgument, "gateway_order_id is required")
	}

	p, err := h.repo.GetPaymentByGatewayOrderID(ctx, req.GatewayOrderId)
	if err != nil {
		return nil, toStatus(err, "failed to get payment")
	}
	return &pb.PaymentRecordResponse{Payment: convertPaymentToProto(p)}, nil
}

func (h *OrdersHandler) CapturePayment(ctx context.Context, req *pb.CapturePaymentRequest) (*pb.CapturePaymentResponse, error) {
	if req.GatewayOrderId == "" || req.PaymentId == "" {
		return nil, status.Error(codes.InvalidArgument, "gateway_order_id and payment_id are required")
	}

	res, err := h.repo.CapturePayment(ctx, repository.CaptureRequest{
		GatewayOrderID: req.GatewayOrderId,
		PaymentID:      req.PaymentId,
		Signature:      req.Signature,
		RawPayload:     req.RawPayload,
	})
	if err != nil {
		h.log.Warn("capture failed", zap.String("gateway_order_id", req.GatewayOrderId), zap.Error(err))
		return nil, toStatus(err, "failed to capture payment")
	}

	if !res.AlreadyCaptured {
		h.log.Info("payment captured",
			zap.String("order_id", res.Order.ID.String()),
			zap.String("payment_id", req.PaymentId))
	}
	return &pb.CapturePaymentResponse{
		Order:           convertOrderToProto(res.Order),
		Payment:         convertPaymentToProto(res.Payment),
		AlreadyCaptured: res.AlreadyCaptured,
	}, nil
}

func toStatus(err error, msg string) error {
	switch {
	case errors.Is(err, repository.ErrOrderNotFound), errors.Is(err, repository.ErrPaymentNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, repository.ErrIllegalTransition):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, repository.ErrPaymentConflict), errors.Is(err, repository.ErrDuplicateSessionID):
		return status.Error(codes.AlreadyExists, err.Error())
	}
	return status.Errorf(codes.Internal, "%s: %v", msg, err)
}

func convertOrderToProto(order *domain.Order) *pb.Order {
	items := make([]*pb.OrderLine, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, &pb.OrderLine{
			ProductId: item.ProductID,
			Name:      item.Name,
			Price:     item.UnitPrice,
			Quantity:  int32(item.Quantity),
		})
	}
	addr := order.ShippingAddress
	return &pb.Order{
		Id:          order.ID.String(),
		UserId:      order.UserID,
		CartRef:     order.CartRef,
		Items:       items,
		TotalAmount: order.TotalAmount,
		Currency:    order.Currency,
		Status:      string(order.Status),
		ShippingAddress: &pb.ShippingAddress{
			Name:       addr.Name,
			Email:      addr.Email,
			Phone:      addr.Phone,
			Address:    addr.Address,
			City:       addr.City,
			State:      addr.State,
			PostalCode: addr.PostalCode,
			Country:    addr.Country,
		},
		PaymentRef: order.PaymentRef,
		CreatedAt:  order.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  order.UpdatedAt.Format(time.RFC3339),
	}
}

func convertAddressFromProto(a *pb.ShippingAddress) domain.ShippingAddress {
	return domain.ShippingAddress{
		Name:       a.Name,
		Email:      a.Email,
		Phone:      a.Phone,
		Address:    a.Address,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

func convertPaymentToProto(p *domain.PaymentRecord) *pb.PaymentRecord {
	return &pb.PaymentRecord{
		Id:               p.ID.String(),
		OrderId:          p.OrderID.String(),
		GatewayOrderId:   p.GatewayOrderID,
		GatewayPaymentId: p.GatewayPaymentID,
		Amount:           p.Amount,
		Currency:         p.Currency,
		Status:           string(p.Status),
		CreatedAt:        p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        p.UpdatedAt.Format(time.RFC3339),
	}
}
