package grpc

import (
	"context"
	"errors"

	"github.com/fjod/storefront/payment-service/internal/service"
	pb "github.com/fjod/storefront/payment-service/pkg/paymentpb"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type PaymentService interface {
	CreateSession(ctx context.Context, orderID, userID string) (*service.Session, error)
	VerifyPayment(ctx context.Context, gatewayOrderID, paymentID, signature string) (*service.Verification, error)
	HandleWebhook(ctx context.Context, body []byte, signature string) error
}

type PaymentServiceServer struct {
	pb.UnimplementedPaymentServiceServer
	service PaymentService
	log     *zap.Logger
}

func NewPaymentServiceServer(s PaymentService, log *zap.Logger) *PaymentServiceServer {
	return &PaymentServiceServer{service: s, log: log}
}

func (s *PaymentServiceServer) CreateSession(ctx context.Context, req *pb.CreateSessionRequest) (*pb.CreateSessionResponse, error) {
	if req.OrderId == "" || req.UserId == "" {
		return nil, status.Error(codes.InvalidArgument, "order_id and user_id are required")
	}

	sess, err := s.service.CreateSession(ctx, req.OrderId, req.UserId)
	if err != nil {
		return nil, s.toStatus("create session", err)
	}
	return &pb.CreateSessionResponse{
		SessionId: sess.SessionID,
		OrderId:   sess.OrderID,
		Amount:    sess.Amount,
		Currency:  sess.Currency,
		Key:       sess.Key,
	}, nil
}

func (s *PaymentServiceServer) VerifyPayment(ctx context.Context, req *pb.VerifyPaymentRequest) (*pb.VerifyPaymentResponse, error) {
	v, err := s.service.VerifyPayment(ctx, req.GatewayOrderId, req.PaymentId, req.Signature)
	if err != nil {
		return nil, s.toStatus("verify payment", err)
	}
	return &pb.VerifyPaymentResponse{
		Verified:        true,
		OrderId:         v.OrderID,
		PaymentId:       v.PaymentID,
		AlreadyCaptured: v.AlreadyCaptured,
		Order:           v.Order,
	}, nil
}

func (s *PaymentServiceServer) HandleWebhook(ctx context.Context, req *pb.HandleWebhookRequest) (*pb.HandleWebhookResponse, error) {
	if req.Signature == "" {
		return nil, status.Error(codes.InvalidArgument, "webhook signature missing")
	}
	if err := s.service.HandleWebhook(ctx, req.Body, req.Signature); err != nil {
		return nil, s.toStatus("handle webhook", err)
	}
	return &pb.HandleWebhookResponse{Received: true}, nil
}

func (s *PaymentServiceServer) toStatus(op string, err error) error {
	switch {
	case errors.Is(err, service.ErrOrderNotFound), errors.Is(err, service.ErrPaymentNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrOrderNotPayable):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, service.ErrAlreadyPaid), errors.Is(err, service.ErrPaymentConflict):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, service.ErrMissingProof),
		errors.Is(err, service.ErrInvalidSignature),
		errors.Is(err, service.ErrInvalidWebhook),
		errors.Is(err, service.ErrInvalidOrderTotal):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrGatewayFailure):
		return status.Error(codes.Unavailable, err.Error())
	}
	s.log.Error(op+" failed", zap.Error(err))
	return status.Errorf(codes.Internal, "%s: %v", op, err)
}
