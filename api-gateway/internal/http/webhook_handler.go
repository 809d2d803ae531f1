package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	pb "github.com/fjod/storefront/payment-service/pkg/paymentpb"
)

const (
	WebhookSignatureHeader = "X-Razorpay-Signature"
	maxWebhookBody         = 1 << 20
)

type WebhookHandler struct {
	paymentClient pb.PaymentServiceClient
	timeout       time.Duration
}

func NewWebhookHandler(client pb.PaymentServiceClient, timeout time.Duration) *WebhookHandler {
	return &WebhookHandler{
		paymentClient: client,
		timeout:       timeout,
	}
}

// POST /api/v1/payments/webhook
//
// The body is forwarded byte for byte; the signature covers the raw payload.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	signature := r.Header.Get(WebhookSignatureHeader)
	if signature == "" {
		respondError(w, http.StatusBadRequest, "missing_signature", WebhookSignatureHeader+" header is required")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "webhook body too large")
			return
		}
		respondError(w, http.StatusBadRequest, "invalid_request", "could not read body")
		return
	}

	ctx, cancel := callContext(r, h.timeout)
	defer cancel()

	resp, err := h.paymentClient.HandleWebhook(ctx, &pb.HandleWebhookRequest{Body: body, Signature: signature})
	if err != nil {
		handleGRPCError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}
