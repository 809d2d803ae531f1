package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/fjod/storefront/orders-service/pkg/orderspb"
	"github.com/fjod/storefront/payment-service/internal/gateway"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	keySecret     = "key-secret"
	webhookSecret = "hook-secret"
)

type fixture struct {
	svc    *PaymentService
	orders *mockOrdersClient
	gw     *fakeGateway
	signer *gateway.Signer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	orders := newMockOrdersClient()
	orders.orders["ord-1"] = &orderspb.Order{
		Id:          "ord-1",
		UserId:      "user-1",
		TotalAmount: decimal.RequireFromString("309.00"),
		Currency:    "INR",
		Status:      "pending",
	}
	gw := newFakeGateway()
	t.Cleanup(gw.Close)

	client := gateway.NewRazorpayClient(gateway.Config{BaseURL: gw.srv.URL, KeyID: "rzp_test", KeySecret: keySecret}, zap.NewNop())
	signer := gateway.NewSigner(keySecret, webhookSecret)
	return &fixture{
		svc:    NewPaymentService(orders, client, signer, zap.NewNop()),
		orders: orders,
		gw:     gw,
		signer: signer,
	}
}

func (f *fixture) session(t *testing.T) *Session {
	t.Helper()
	s, err := f.svc.CreateSession(context.Background(), "ord-1", "user-1")
	require.NoError(t, err)
	return s
}

func (f *fixture) webhook(t *testing.T, event, gatewayOrderID, paymentID string) error {
	t.Helper()
	body := []byte(`{"entity":"event","event":"` + event + `","payload":{"payment":{"entity":{"id":"` + paymentID +
		`","order_id":"` + gatewayOrderID + `","amount":30900,"currency":"INR"}}}}`)
	return f.svc.HandleWebhook(context.Background(), body, f.signer.WebhookSignature(body))
}

func TestCreateSession(t *testing.T) {
	f := newFixture(t)

	s := f.session(t)

	assert.Equal(t, "order_gw1", s.SessionID)
	assert.Equal(t, int64(30900), s.Amount)
	assert.Equal(t, "INR", s.Currency)
	assert.Equal(t, "rzp_test", s.Key)
	require.Len(t, f.gw.seen, 1)
	assert.Equal(t, "ord-1", f.gw.seen[0].Receipt)
	assert.Equal(t, "created", f.orders.payment("order_gw1").Status)
}

func TestCreateSession_RetrySupersedesPreviousAttempt(t *testing.T) {
	f := newFixture(t)

	first := f.session(t)
	second := f.session(t)

	assert.NotEqual(t, first.SessionID, second.SessionID)
	assert.Equal(t, "failed", f.orders.payment(first.SessionID).Status)
	assert.Equal(t, "created", f.orders.payment(second.SessionID).Status)
}

func TestCreateSession_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(f *fixture)
		orderID string
		userID  string
		want    error
	}{
		{name: "unknown order", orderID: "missing", userID: "user-1", want: ErrOrderNotFound},
		{name: "foreign order", orderID: "ord-1", userID: "user-2", want: ErrOrderNotFound},
		{
			name:    "not pending",
			prepare: func(f *fixture) { f.orders.orders["ord-1"].Status = "cancelled" },
			orderID: "ord-1", userID: "user-1", want: ErrOrderNotPayable,
		},
		{
			name: "already paid",
			prepare: func(f *fixture) {
				f.orders.payments["order_old"] = &orderspb.PaymentRecord{OrderId: "ord-1", GatewayOrderId: "order_old", Status: "captured"}
			},
			orderID: "ord-1", userID: "user-1", want: ErrAlreadyPaid,
		},
		{
			name:    "gateway rejects",
			prepare: func(f *fixture) { f.gw.status = http.StatusBadRequest },
			orderID: "ord-1", userID: "user-1", want: ErrGatewayFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.prepare != nil {
				tt.prepare(f)
			}

			_, err := f.svc.CreateSession(context.Background(), tt.orderID, tt.userID)

			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateSession_GatewayRejectionKeepsAPIError(t *testing.T) {
	f := newFixture(t)
	f.gw.status = http.StatusBadRequest

	_, err := f.svc.CreateSession(context.Background(), "ord-1", "user-1")

	var apiErr *gateway.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Empty(t, f.orders.payments)
}

func TestCreateSession_OrdersUnavailable(t *testing.T) {
	f := newFixture(t)
	f.orders.getErr = status.Error(codes.Unavailable, "connection refused")

	_, err := f.svc.CreateSession(context.Background(), "ord-1", "user-1")

	require.Error(t, err)
	assert.Equal(t, codes.Unavailable, status.Code(errors.Unwrap(err)))
}

func TestVerifyPayment(t *testing.T) {
	f := newFixture(t)
	s := f.session(t)
	sig := f.signer.PaymentSignature(s.SessionID, "pay_1")

	v, err := f.svc.VerifyPayment(context.Background(), s.SessionID, "pay_1", sig)
	require.NoError(t, err)

	assert.Equal(t, "ord-1", v.OrderID)
	assert.False(t, v.AlreadyCaptured)
	assert.Equal(t, "processing", f.orders.order("ord-1").Status)
	assert.Equal(t, "pay_1", f.orders.order("ord-1").PaymentRef)

	v, err = f.svc.VerifyPayment(context.Background(), s.SessionID, "pay_1", sig)
	require.NoError(t, err)
	assert.True(t, v.AlreadyCaptured)
}

func TestVerifyPayment_InvalidSignatureTouchesNothing(t *testing.T) {
	f := newFixture(t)
	s := f.session(t)

	_, err := f.svc.VerifyPayment(context.Background(), s.SessionID, "pay_1", "deadbeef")

	assert.ErrorIs(t, err, ErrInvalidSignature)
	assert.Empty(t, f.orders.captures)
	assert.Equal(t, "pending", f.orders.order("ord-1").Status)
}

func TestVerifyPayment_Errors(t *testing.T) {
	f := newFixture(t)
	s := f.session(t)

	_, err := f.svc.VerifyPayment(context.Background(), "", "pay_1", "sig")
	assert.ErrorIs(t, err, ErrMissingProof)

	_, err = f.svc.VerifyPayment(context.Background(), "order_unknown", "pay_1", f.signer.PaymentSignature("order_unknown", "pay_1"))
	assert.ErrorIs(t, err, ErrPaymentNotFound)

	_, err = f.svc.VerifyPayment(context.Background(), s.SessionID, "pay_1", f.signer.PaymentSignature(s.SessionID, "pay_1"))
	require.NoError(t, err)

	_, err = f.svc.VerifyPayment(context.Background(), s.SessionID, "pay_2", f.signer.PaymentSignature(s.SessionID, "pay_2"))
	assert.ErrorIs(t, err, ErrPaymentConflict)
}

func TestHandleWebhook_Captured(t *testing.T) {
	f := newFixture(t)
	s := f.session(t)

	require.NoError(t, f.webhook(t, gateway.EventPaymentCaptured, s.SessionID, "pay_1"))

	assert.Equal(t, "captured", f.orders.payment(s.SessionID).Status)
	assert.Equal(t, "processing", f.orders.order("ord-1").Status)
	require.Len(t, f.orders.captures, 1)
	assert.NotEmpty(t, f.orders.captures[0].RawPayload)

	require.NoError(t, f.webhook(t, gateway.EventPaymentCaptured, s.SessionID, "pay_1"))
}

func TestHandleWebhook_FailedKeepsOrderPending(t *testing.T) {
	f := newFixture(t)
	s := f.session(t)

	require.NoError(t, f.webhook(t, gateway.EventPaymentFailed, s.SessionID, "pay_1"))

	assert.Equal(t, "failed", f.orders.payment(s.SessionID).Status)
	assert.Equal(t, "pending", f.orders.order("ord-1").Status)
}

func TestHandleWebhook_Authorized(t *testing.T) {
	f := newFixture(t)
	s := f.session(t)

	require.NoError(t, f.webhook(t, gateway.EventPaymentAuthorized, s.SessionID, "pay_1"))

	assert.Equal(t, "authorized", f.orders.payment(s.SessionID).Status)
}

func TestHandleWebhook_NeverDowngradesCapture(t *testing.T) {
	f := newFixture(t)
	s := f.session(t)
	_, err := f.svc.VerifyPayment(context.Background(), s.SessionID, "pay_1", f.signer.PaymentSignature(s.SessionID, "pay_1"))
	require.NoError(t, err)

	require.NoError(t, f.webhook(t, gateway.EventPaymentFailed, s.SessionID, "pay_1"))
	require.NoError(t, f.webhook(t, gateway.EventPaymentAuthorized, s.SessionID, "pay_1"))

	assert.Equal(t, "captured", f.orders.payment(s.SessionID).Status)
	assert.Equal(t, "processing", f.orders.order("ord-1").Status)
}

func TestHandleWebhook_UnknownSessionAndEvent(t *testing.T) {
	f := newFixture(t)

	assert.NoError(t, f.webhook(t, gateway.EventPaymentCaptured, "order_nobody", "pay_1"))
	assert.NoError(t, f.webhook(t, gateway.EventPaymentFailed, "order_nobody", "pay_1"))

	body := []byte(`{"event":"refund.created","payload":{}}`)
	assert.NoError(t, f.svc.HandleWebhook(context.Background(), body, f.signer.WebhookSignature(body)))
}

func TestHandleWebhook_Rejections(t *testing.T) {
	f := newFixture(t)
	body := []byte(`{"event":"payment.captured"}`)

	err := f.svc.HandleWebhook(context.Background(), body, "bad")
	assert.ErrorIs(t, err, ErrInvalidSignature)

	err = f.svc.HandleWebhook(context.Background(), body, f.signer.WebhookSignature(body))
	assert.ErrorIs(t, err, ErrInvalidWebhook)
	assert.Empty(t, f.orders.captures)
}
