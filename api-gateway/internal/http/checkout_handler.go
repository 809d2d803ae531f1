package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/storefront/api-gateway/internal/auth"
	pb "github.com/fjod/storefront/checkout-service/pkg/checkoutpb"
	"github.com/go-chi/chi/v5"
)

type CheckoutHandler struct {
	checkoutClient pb.CheckoutServiceClient
	timeout        time.Duration
}

func NewCheckoutHandler(client pb.CheckoutServiceClient, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutClient: client,
		timeout:        timeout,
	}
}

type CheckoutFormDTO struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// PaymentCallbackDTO is the body the gateway's success handler posts back.
type PaymentCallbackDTO struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

func identity(r *http.Request) *pb.Identity {
	id := auth.FromContext(r.Context())
	if id == nil {
		return nil
	}
	return &pb.Identity{UserId: id.UserID, Email: id.Email, Name: id.Name, Phone: id.Phone}
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var form CheckoutFormDTO
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	ctx, cancel := callContext(r, h.timeout)
	defer cancel()

	resp, err := h.checkoutClient.Submit(ctx, &pb.SubmitRequest{
		CartKey: cartKey(r.Context()),
		User:    identity(r),
		Form: &pb.CheckoutForm{
			Name:       form.Name,
			Email:      form.Email,
			Phone:      form.Phone,
			Address:    form.Address,
			City:       form.City,
			State:      form.State,
			PostalCode: form.PostalCode,
			Country:    form.Country,
		},
	})
	if err != nil {
		handleGRPCError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, resp)
}

// POST /api/v1/checkout/orders/{order_id}/retry
func (h *CheckoutHandler) RetryPayment(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "order_id")
	if orderID == "" {
		respondError(w, http.StatusBadRequest, "missing_order_id", "order_id is required")
		return
	}

	ctx, cancel := callContext(r, h.timeout)
	defer cancel()

	resp, err := h.checkoutClient.RetryPayment(ctx, &pb.RetryPaymentRequest{
		CartKey: cartKey(r.Context()),
		User:    identity(r),
		OrderId: orderID,
	})
	if err != nil {
		handleGRPCError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, resp)
}

// POST /api/v1/checkout/verify
func (h *CheckoutHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req PaymentCallbackDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		respondError(w, http.StatusBadRequest, "missing_payment_proof",
			"razorpay_order_id, razorpay_payment_id and razorpay_signature are required")
		return
	}

	ctx, cancel := callContext(r, h.timeout)
	defer cancel()

	resp, err := h.checkoutClient.Verify(ctx, &pb.VerifyRequest{
		CartKey:        cartKey(r.Context()),
		GatewayOrderId: req.OrderID,
		PaymentId:      req.PaymentID,
		Signature:      req.Signature,
	})
	if err != nil {
		handleGRPCError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// GET /api/v1/checkout/resume
func (h *CheckoutHandler) Resume(w http.ResponseWriter, r *http.Request) {
	query := make(map[string]string)
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			query[k] = v[0]
		}
	}

	ctx, cancel := callContext(r, h.timeout)
	defer cancel()

	resp, err := h.checkoutClient.Resume(ctx, &pb.ResumeRequest{
		CartKey: cartKey(r.Context()),
		User:    identity(r),
		Query:   query,
	})
	if err != nil {
		handleGRPCError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}
