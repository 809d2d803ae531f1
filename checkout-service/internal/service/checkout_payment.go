package service

import (
	"context"

	d "github.com/fjod/storefront/checkout-service/domain"
	orderspb "github.com/fjod/storefront/orders-service/pkg/orderspb"
	paymentpb "github.com/fjod/storefront/payment-service/pkg/paymentpb"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (o *Orchestrator) createSession(ctx context.Context, orderID, userID string) (d.Descriptor, error) {
	paymentCtx, cancel := context.WithTimeout(ctx, o.payment.timeout)
	defer cancel()

	resp, err := o.payment.paymentClient.CreateSession(paymentCtx, &paymentpb.CreateSessionRequest{
		OrderId: orderID,
		UserId:  userID,
	})
	if err != nil {
		return d.Descriptor{}, err
	}
	return d.Descriptor{
		SessionID: resp.SessionId,
		Amount:    resp.Amount,
		Currency:  resp.Currency,
		Key:       resp.Key,
	}, nil
}

func (o *Orchestrator) verifyPayment(ctx context.Context, proof d.PaymentProof) (*paymentpb.VerifyPaymentResponse, error) {
	paymentCtx, cancel := context.WithTimeout(ctx, o.payment.timeout)
	defer cancel()

	return o.payment.paymentClient.VerifyPayment(paymentCtx, &paymentpb.VerifyPaymentRequest{
		GatewayOrderId: proof.GatewayOrderID,
		PaymentId:      proof.PaymentID,
		Signature:      proof.Signature,
	})
}

// lookupPayment returns nil when the record is missing or unreadable; the
// verification that follows reports the actual failure.
func (o *Orchestrator) lookupPayment(ctx context.Context, log *zap.Logger, gatewayOrderID string) *d.PaymentSnapshot {
	orderCtx, cancel := context.WithTimeout(ctx, o.orders.timeout)
	defer cancel()

	resp, err := o.orders.ordersClient.GetPaymentByGatewayOrderID(orderCtx, &orderspb.GetPaymentByGatewayOrderIDRequest{
		GatewayOrderId: gatewayOrderID,
	})
	if err != nil {
		if status.Code(err) != codes.NotFound {
			log.Warn("payment lookup failed", zap.Error(err))
		}
		return nil
	}
	p := resp.Payment
	return &d.PaymentSnapshot{
		OrderID:        p.OrderId,
		GatewayOrderID: p.GatewayOrderId,
		PaymentID:      p.GatewayPaymentId,
		Status:         p.Status,
	}
}

func verificationReason(err error) string {
	switch status.Code(err) {
	case codes.InvalidArgument:
		return "invalid payment signature"
	case codes.NotFound:
		return "payment session not found"
	case codes.AlreadyExists:
		return "payment session already captured by another payment"
	}
	return "payment could not be verified"
}
