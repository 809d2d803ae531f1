// Package checkoutpb is the wire contract of the checkout orchestrator.
// Failures carry google.rpc error details: BadRequest for form errors and
// ErrorInfo (domain "checkout") for everything else.
package checkoutpb

import (
	"context"

	"github.com/fjod/storefront/pkg/grpcjson"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ErrorDomain = "checkout"

// ErrorInfo reasons.
const (
	ReasonAuthenticationRequired = "AUTHENTICATION_REQUIRED"
	ReasonEmptyCart              = "EMPTY_CART"
	ReasonOrderCreationFailed    = "ORDER_CREATION_FAILED"
	ReasonPaymentGatewayError    = "PAYMENT_GATEWAY_ERROR"
	ReasonVerificationFailed     = "PAYMENT_VERIFICATION_FAILED"
	ReasonOrderNotFound          = "ORDER_NOT_FOUND"
)

// ErrorInfo metadata keys.
const (
	MetadataReturnTo = "return_to"
	MetadataOrderID  = "order_id"
)

type Identity struct {
	UserId string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	Phone  string `json:"phone,omitempty"`
}

type CheckoutForm struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type SubmitRequest struct {
	CartKey string        `json:"cart_key"`
	User    *Identity     `json:"user,omitempty"`
	Form    *CheckoutForm `json:"form"`
}

type RetryPaymentRequest struct {
	CartKey string    `json:"cart_key"`
	User    *Identity `json:"user,omitempty"`
	OrderId string    `json:"order_id"`
}

// PaymentDescriptor amounts are in minor currency units.
type PaymentDescriptor struct {
	SessionId string `json:"session_id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Key       string `json:"key"`
}

type Prefill struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

type AttemptResponse struct {
	State       string             `json:"state"`
	OrderId     string             `json:"order_id"`
	Payment     *PaymentDescriptor `json:"payment"`
	Prefill     *Prefill           `json:"prefill"`
	CallbackUrl string             `json:"callback_url,omitempty"`
}

type VerifyRequest struct {
	CartKey        string `json:"cart_key"`
	GatewayOrderId string `json:"gateway_order_id"`
	PaymentId      string `json:"payment_id"`
	Signature      string `json:"signature"`
}

type ResumeRequest struct {
	CartKey string            `json:"cart_key"`
	User    *Identity         `json:"user,omitempty"`
	Query   map[string]string `json:"query"`
}

type ResultResponse struct {
	State           string `json:"state"`
	OrderId         string `json:"order_id,omitempty"`
	OrderStatus     string `json:"order_status,omitempty"`
	AlreadyCaptured bool   `json:"already_captured"`
	CartCleared     bool   `json:"cart_cleared"`
}

const (
	CheckoutService_Submit_FullMethodName       = "/checkout.CheckoutService/Submit"
	CheckoutService_RetryPayment_FullMethodName = "/checkout.CheckoutService/RetryPayment"
	CheckoutService_Verify_FullMethodName       = "/checkout.CheckoutService/Verify"
	CheckoutService_Resume_FullMethodName       = "/checkout.CheckoutService/Resume"
)

type CheckoutServiceClient interface {
	Submit(ctx context.Context, in *SubmitRequest, opts ...grpc.CallOption) (*AttemptResponse, error)
	RetryPayment(ctx context.Context, in *RetryPaymentRequest, opts ...grpc.CallOption) (*AttemptResponse, error)
	Verify(ctx context.Context, in *VerifyRequest, opts ...grpc.CallOption) (*ResultResponse, error)
	Resume(ctx context.Context, in *ResumeRequest, opts ...grpc.CallOption) (*ResultResponse, error)
}

type checkoutServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCheckoutServiceClient(cc grpc.ClientConnInterface) CheckoutServiceClient {
	return &checkoutServiceClient{cc}
}

func (c *checkoutServiceClient) Submit(ctx context.Context, in *SubmitRequest, opts ...grpc.CallOption) (*AttemptResponse, error) {
	return grpcjson.Invoke[AttemptResponse](ctx, c.cc, CheckoutService_Submit_FullMethodName, in, opts...)
}

func (c *checkoutServiceClient) RetryPayment(ctx context.Context, in *RetryPaymentRequest, opts ...grpc.CallOption) (*AttemptResponse, error) {
	return grpcjson.Invoke[AttemptResponse](ctx, c.cc, CheckoutService_RetryPayment_FullMethodName, in, opts...)
}

func (c *checkoutServiceClient) Verify(ctx context.Context, in *VerifyRequest, opts ...grpc.CallOption) (*ResultResponse, error) {
	return grpcjson.Invoke[ResultResponse](ctx, c.cc, CheckoutService_Verify_FullMethodName, in, opts...)
}

func (c *checkoutServiceClient) Resume(ctx context.Context, in *ResumeRequest, opts ...grpc.CallOption) (*ResultResponse, error) {
	return grpcjson.Invoke[ResultResponse](ctx, c.cc, CheckoutService_Resume_FullMethodName, in, opts...)
}

type CheckoutServiceServer interface {
	Submit(context.Context, *SubmitRequest) (*AttemptResponse, error)
	RetryPayment(context.Context, *RetryPaymentRequest) (*AttemptResponse, error)
	Verify(context.Context, *VerifyRequest) (*ResultResponse, error)
	Resume(context.Context, *ResumeRequest) (*ResultResponse, error)
}

type UnimplementedCheckoutServiceServer struct{}

func (UnimplementedCheckoutServiceServer) Submit(context.Context, *SubmitRequest) (*AttemptResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Submit not implemented")
}

func (UnimplementedCheckoutServiceServer) RetryPayment(context.Context, *RetryPaymentRequest) (*AttemptResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RetryPayment not implemented")
}

func (UnimplementedCheckoutServiceServer) Verify(context.Context, *VerifyRequest) (*ResultResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Verify not implemented")
}

func (UnimplementedCheckoutServiceServer) Resume(context.Context, *ResumeRequest) (*ResultResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Resume not implemented")
}

func RegisterCheckoutServiceServer(s grpc.ServiceRegistrar, srv CheckoutServiceServer) {
	s.RegisterService(&CheckoutService_ServiceDesc, srv)
}

var CheckoutService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "checkout.CheckoutService",
	HandlerType: (*CheckoutServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Submit", Handler: grpcjson.Unary(CheckoutService_Submit_FullMethodName, CheckoutServiceServer.Submit)},
		{MethodName: "RetryPayment", Handler: grpcjson.Unary(CheckoutService_RetryPayment_FullMethodName, CheckoutServiceServer.RetryPayment)},
		{MethodName: "Verify", Handler: grpcjson.Unary(CheckoutService_Verify_FullMethodName, CheckoutServiceServer.Verify)},
		{MethodName: "Resume", Handler: grpcjson.Unary(CheckoutService_Resume_FullMethodName, CheckoutServiceServer.Resume)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "checkoutpb/checkout.go",
}
