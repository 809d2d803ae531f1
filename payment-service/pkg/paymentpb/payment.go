// Package paymentpb is the wire contract of the payment service, the only
// process holding the gateway secrets.
package paymentpb

import (
	"context"

	"github.com/fjod/storefront/orders-service/pkg/orderspb"
	"github.com/fjod/storefront/pkg/grpcjson"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type CreateSessionRequest struct {
	OrderId string `json:"order_id"`
	UserId  string `json:"user_id"`
}

// CreateSessionResponse describes the hosted checkout. Amount is in minor
// currency units.
type CreateSessionResponse struct {
	SessionId string `json:"session_id"`
	OrderId   string `json:"order_id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Key       string `json:"key"`
}

type VerifyPaymentRequest struct {
	GatewayOrderId string `json:"gateway_order_id"`
	PaymentId      string `json:"payment_id"`
	Signature      string `json:"signature"`
}

type VerifyPaymentResponse struct {
	Verified        bool            `json:"verified"`
	OrderId         string          `json:"order_id"`
	PaymentId       string          `json:"payment_id"`
	AlreadyCaptured bool            `json:"already_captured"`
	Order           *orderspb.Order `json:"order,omitempty"`
}

type HandleWebhookRequest struct {
	Body      []byte `json:"body"`
	Signature string `json:"signature"`
}

type HandleWebhookResponse struct {
	Received bool `json:"received"`
}

const (
	PaymentService_CreateSession_FullMethodName = "/payment.PaymentService/CreateSession"
	PaymentService_VerifyPayment_FullMethodName = "/payment.PaymentService/VerifyPayment"
	PaymentService_HandleWebhook_FullMethodName = "/payment.PaymentService/HandleWebhook"
)

type PaymentServiceClient interface {
	CreateSession(ctx context.Context, in *CreateSessionRequest, opts ...grpc.CallOption) (*CreateSessionResponse, error)
	VerifyPayment(ctx context.Context, in *VerifyPaymentRequest, opts ...grpc.CallOption) (*VerifyPaymentResponse, error)
	HandleWebhook(ctx context.Context, in *HandleWebhookRequest, opts ...grpc.CallOption) (*HandleWebhookResponse, error)
}

type paymentServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewPaymentServiceClient(cc grpc.ClientConnInterface) PaymentServiceClient {
	return &paymentServiceClient{cc}
}

func (c *paymentServiceClient) CreateSession(ctx context.Context, in *CreateSessionRequest, opts ...grpc.CallOption) (*CreateSessionResponse, error) {
	return grpcjson.Invoke[CreateSessionResponse](ctx, c.cc, PaymentService_CreateSession_FullMethodName, in, opts...)
}

func (c *paymentServiceClient) VerifyPayment(ctx context.Context, in *VerifyPaymentRequest, opts ...grpc.CallOption) (*VerifyPaymentResponse, error) {
	return grpcjson.Invoke[VerifyPaymentResponse](ctx, c.cc, PaymentService_VerifyPayment_FullMethodName, in, opts...)
}

func (c *paymentServiceClient) HandleWebhook(ctx context.Context, in *HandleWebhookRequest, opts ...grpc.CallOption) (*HandleWebhookResponse, error) {
	return grpcjson.Invoke[HandleWebhookResponse](ctx, c.cc, PaymentService_HandleWebhook_FullMethodName, in, opts...)
}

type PaymentServiceServer interface {
	CreateSession(context.Context, *CreateSessionRequest) (*CreateSessionResponse, error)
	VerifyPayment(context.Context, *VerifyPaymentRequest) (*VerifyPaymentResponse, error)
	HandleWebhook(context.Context, *HandleWebhookRequest) (*HandleWebhookResponse, error)
}

type UnimplementedPaymentServiceServer struct{}

func (UnimplementedPaymentServiceServer) CreateSession(context.Context, *CreateSessionRequest) (*CreateSessionResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateSession not implemented")
}

func (UnimplementedPaymentServiceServer) VerifyPayment(context.Context, *VerifyPaymentRequest) (*VerifyPaymentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method VerifyPayment not implemented")
}

func (UnimplementedPaymentServiceServer) HandleWebhook(context.Context, *HandleWebhookRequest) (*HandleWebhookResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method HandleWebhook not implemented")
}

func RegisterPaymentServiceServer(s grpc.ServiceRegistrar, srv PaymentServiceServer) {
	s.RegisterService(&PaymentService_ServiceDesc, srv)
}

var PaymentService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "payment.PaymentService",
	HandlerType: (*PaymentServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateSession", Handler: grpcjson.Unary(PaymentService_CreateSession_FullMethodName, PaymentServiceServer.CreateSession)},
		{MethodName: "VerifyPayment", Handler: grpcjson.Unary(PaymentService_VerifyPayment_FullMethodName, PaymentServiceServer.VerifyPayment)},
		{MethodName: "HandleWebhook", Handler: grpcjson.Unary(PaymentService_HandleWebhook_FullMethodName, PaymentServiceServer.HandleWebhook)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "paymentpb/payment.go",
}
