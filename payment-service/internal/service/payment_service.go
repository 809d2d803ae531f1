package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/storefront/orders-service/pkg/orderspb"
	"github.com/fjod/storefront/payment-service/internal/gateway"
	"github.com/fjod/storefront/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderNotPayable   = errors.New("order is not awaiting payment")
	ErrAlreadyPaid       = errors.New("order has already been paid")
	ErrMissingProof      = errors.New("gateway order id, payment id and signature are required")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrPaymentNotFound   = errors.New("payment session not found")
	ErrPaymentConflict   = errors.New("payment session already captured by another payment")
	ErrGatewayFailure    = errors.New("payment gateway request failed")
	ErrInvalidWebhook    = errors.New("invalid webhook payload")
	ErrInvalidOrderTotal = errors.New("order total must be positive")
)

type GatewayClient interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*gateway.Order, error)
	KeyID() string
}

type SignatureVerifier interface {
	VerifyPayment(gatewayOrderID, paymentID, signature string) bool
	VerifyWebhook(body []byte, signature string) bool
}

// Session is what the storefront needs to open the hosted checkout.
type Session struct {
	SessionID string
	OrderID   string
	Amount    int64
	Currency  string
	Key       string
}

type Verification struct {
	OrderID         string
	PaymentID       string
	AlreadyCaptured bool
	Order           *orderspb.Order
}

type PaymentService struct {
	orders  orderspb.OrdersServiceClient
	gateway GatewayClient
	signer  SignatureVerifier
	log     *zap.Logger
}

func NewPaymentService(orders orderspb.OrdersServiceClient, gw GatewayClient, signer SignatureVerifier, log *zap.Logger) *PaymentService {
	return &PaymentService{orders: orders, gateway: gw, signer: signer, log: log}
}

// CreateSession opens a gateway order for a pending order owned by userID and
// records it as the order's current payment attempt.
func (s *PaymentService) CreateSession(ctx context.Context, orderID, userID string) (*Session, error) {
	log := logger.WithContext(ctx, s.log).With(zap.String("order_id", orderID))

	resp, err := s.orders.GetOrder(ctx, &orderspb.GetOrderRequest{OrderId: orderID})
	if err != nil {
		if code := status.Code(err); code == codes.NotFound || code == codes.InvalidArgument {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	order := resp.Order
	if order.UserId != userID {
		log.Warn("payment session requested for foreign order", zap.String("user_id", userID))
		return nil, ErrOrderNotFound
	}
	if order.Status != "pending" {
		return nil, fmt.Errorf("%w: status %s", ErrOrderNotPayable, order.Status)
	}

	latest, err := s.orders.GetPaymentByOrderID(ctx, &orderspb.GetPaymentByOrderIDRequest{OrderId: orderID})
	switch {
	case err == nil && latest.Payment.Status == "captured":
		return nil, ErrAlreadyPaid
	case err != nil && status.Code(err) != codes.NotFound:
		return nil, fmt.Errorf("get payment: %w", err)
	}

	amount := order.TotalAmount.Shift(2).Round(0).IntPart()
	if amount <= 0 {
		return nil, ErrInvalidOrderTotal
	}

	gwOrder, err := s.gateway.CreateOrder(ctx, amount, order.Currency, order.Id)
	if err != nil {
		log.Error("gateway order creation failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrGatewayFailure, err)
	}

	_, err = s.orders.CreatePaymentRecord(ctx, &orderspb.CreatePaymentRecordRequest{
		OrderId:        order.Id,
		GatewayOrderId: gwOrder.ID,
		Amount:         gwOrder.Amount,
		Currency:       gwOrder.Currency,
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, ErrAlreadyPaid
		}
		return nil, fmt.Errorf("create payment record: %w", err)
	}

	log.Info("payment session created", zap.String("gateway_order_id", gwOrder.ID), zap.Int64("amount", gwOrder.Amount))
	return &Session{
		SessionID: gwOrder.ID,
		OrderID:   order.Id,
		Amount:    gwOrder.Amount,
		Currency:  gwOrder.Currency,
		Key:       s.gateway.KeyID(),
	}, nil
}

// VerifyPayment checks the redirect proof and captures the payment. Replaying
// the same proof is reported as AlreadyCaptured rather than an error.
func (s *PaymentService) VerifyPayment(ctx context.Context, gatewayOrderID, paymentID, signature string) (*Verification, error) {
	if gatewayOrderID == "" || paymentID == "" || signature == "" {
		return nil, ErrMissingProof
	}
	log := logger.WithContext(ctx, s.log).With(
		zap.String("gateway_order_id", gatewayOrderID),
		zap.String("payment_id", paymentID))

	if !s.signer.VerifyPayment(gatewayOrderID, paymentID, signature) {
		log.Warn("payment signature mismatch")
		return nil, ErrInvalidSignature
	}

	res, err := s.orders.CapturePayment(ctx, &orderspb.CapturePaymentRequest{
		GatewayOrderId: gatewayOrderID,
		PaymentId:      paymentID,
		Signature:      signature,
	})
	if err != nil {
		return nil, captureError(err)
	}

	log.Info("payment verified", zap.String("order_id", res.Order.Id), zap.Bool("already_captured", res.AlreadyCaptured))
	return &Verification{
		OrderID:         res.Order.Id,
		PaymentID:       paymentID,
		AlreadyCaptured: res.AlreadyCaptured,
		Order:           res.Order,
	}, nil
}

// HandleWebhook applies an authenticated gateway notification. Events that
// reference unknown sessions or would downgrade a captured record are
// acknowledged and dropped.
func (s *PaymentService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	log := logger.WithContext(ctx, s.log)

	if !s.signer.VerifyWebhook(body, signature) {
		log.Warn("webhook signature mismatch")
		return ErrInvalidSignature
	}

	ev, err := gateway.ParseWebhook(body)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidWebhook, err)
	}

	switch e := ev.(type) {
	case gateway.PaymentCaptured:
		return s.webhookCapture(ctx, log, e.Payment)
	case gateway.PaymentAuthorized:
		return s.webhookUpdate(ctx, log, e.Payment, "authorized")
	case gateway.PaymentFailed:
		return s.webhookUpdate(ctx, log, e.Payment, "failed")
	case gateway.UnknownEvent:
		log.Debug("ignoring webhook event", zap.String("event", e.Name))
	}
	return nil
}

func (s *PaymentService) webhookCapture(ctx context.Context, log *zap.Logger, p gateway.PaymentEntity) error {
	log = log.With(zap.String("gateway_order_id", p.OrderID), zap.String("payment_id", p.ID))

	res, err := s.orders.CapturePayment(ctx, &orderspb.CapturePaymentRequest{
		GatewayOrderId: p.OrderID,
		PaymentId:      p.ID,
		RawPayload:     p.Raw,
	})
	if err != nil {
		err = captureError(err)
		switch {
		case errors.Is(err, ErrPaymentNotFound):
			log.Warn("captured webhook for unknown payment session")
			return nil
		case errors.Is(err, ErrPaymentConflict):
			log.Error("second payment captured for one session, refund required")
			return nil
		}
		return err
	}

	log.Info("payment captured by webhook", zap.String("order_id", res.Order.Id), zap.Bool("already_captured", res.AlreadyCaptured))
	return nil
}

func (s *PaymentService) webhookUpdate(ctx context.Context, log *zap.Logger, p gateway.PaymentEntity, to string) error {
	log = log.With(
		zap.String("gateway_order_id", p.OrderID),
		zap.String("payment_id", p.ID),
		zap.String("status", to))

	_, err := s.orders.UpdatePaymentRecord(ctx, &orderspb.UpdatePaymentRecordRequest{
		GatewayOrderId: p.OrderID,
		PaymentId:      p.ID,
		Status:         to,
		RawPayload:     p.Raw,
	})
	switch status.Code(err) {
	case codes.OK:
		log.Info("payment record updated by webhook", zap.String("reason", p.ErrorDescription))
		return nil
	case codes.NotFound:
		log.Warn("webhook for unknown payment session")
		return nil
	case codes.FailedPrecondition:
		log.Info("webhook does not apply to current payment status")
		return nil
	}
	return fmt.Errorf("update payment record: %w", err)
}

func captureError(err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return ErrPaymentNotFound
	case codes.AlreadyExists:
		return ErrPaymentConflict
	}
	return fmt.Errorf("capture payment: %w", err)
}
