package http

import (
	"encoding/json"
	"net/http"
	"time"

	pb "github.com/fjod/storefront/cart-service/pkg/cartpb"
	"github.com/go-chi/chi/v5"
)

const maxQuantity = 99

type CartHandler struct {
	cartClient pb.CartServiceClient
	timeout    time.Duration
}

func NewCartHandler(cartClient pb.CartServiceClient, timeout time.Duration) *CartHandler {
	return &CartHandler{
		cartClient: cartClient,
		timeout:    timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
}

type UpdateQuantityRequestDTO struct {
	Quantity *int32 `json:"quantity"`
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := callContext(r, h.timeout)
	defer cancel()

	resp, err := h.cartClient.GetCart(ctx, &pb.GetCartRequest{SessionKey: cartKey(r.Context())})
	if err != nil {
		handleGRPCError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp.Cart)
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	ctx, cancel := callContext(r, h.timeout)
	defer cancel()

	resp, err := h.cartClient.AddItem(ctx, &pb.AddItemRequest{
		SessionKey: cartKey(r.Context()),
		ProductId:  req.ProductID,
	})
	if err != nil {
		handleGRPCError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, resp.Cart)
}

// PUT /api/v1/cart/items/{product_id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity == nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "quantity is required")
		return
	}
	// zero or below removes the line
	if *req.Quantity > maxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at most 99")
		return
	}

	ctx, cancel := callContext(r, h.timeout)
	defer cancel()

	resp, err := h.cartClient.UpdateQuantity(ctx, &pb.UpdateQuantityRequest{
		SessionKey: cartKey(r.Context()),
		ProductId:  productID,
		Quantity:   *req.Quantity,
	})
	if err != nil {
		handleGRPCError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp.Cart)
}

// DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	ctx, cancel := callContext(r, h.timeout)
	defer cancel()

	resp, err := h.cartClient.RemoveItem(ctx, &pb.RemoveItemRequest{
		SessionKey: cartKey(r.Context()),
		ProductId:  productID,
	})
	if err != nil {
		handleGRPCError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp.Cart)
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := callContext(r, h.timeout)
	defer cancel()

	resp, err := h.cartClient.ClearCart(ctx, &pb.ClearCartRequest{SessionKey: cartKey(r.Context())})
	if err != nil {
		handleGRPCError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp.Cart)
}
