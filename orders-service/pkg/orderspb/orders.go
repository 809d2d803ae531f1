// Package orderspb is the wire contract of the orders service: orders,
// payment records and the events published from its outbox.
package orderspb

import (
	"context"

	"github.com/fjod/storefront/pkg/grpcjson"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type OrderLine struct {
	ProductId string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int32           `json:"quantity"`
}

type ShippingAddress struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type Order struct {
	Id              string           `json:"id"`
	UserId          string           `json:"user_id"`
	CartRef         string           `json:"cart_ref,omitempty"`
	Items           []*OrderLine     `json:"items"`
	TotalAmount     decimal.Decimal  `json:"total_amount"`
	Currency        string           `json:"currency"`
	Status          string           `json:"status"`
	ShippingAddress *ShippingAddress `json:"shipping_address"`
	PaymentRef      string           `json:"payment_ref,omitempty"`
	CreatedAt       string           `json:"created_at"`
	UpdatedAt       string           `json:"updated_at"`
}

// PaymentRecord amounts are in minor currency units.
type PaymentRecord struct {
	Id               string `json:"id"`
	OrderId          string `json:"order_id"`
	GatewayOrderId   string `json:"gateway_order_id"`
	GatewayPaymentId string `json:"gateway_payment_id,omitempty"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	Status           string `json:"status"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}

type CreateOrderRequest struct {
	UserId          string           `json:"user_id"`
	CartRef         string           `json:"cart_ref"`
	Items           []*OrderLine     `json:"items"`
	TotalAmount     decimal.Decimal  `json:"total_amount"`
	Currency        string           `json:"currency"`
	ShippingAddress *ShippingAddress `json:"shipping_address"`
}

type GetOrderRequest struct {
	OrderId string `json:"order_id"`
}

type OrderResponse struct {
	Order *Order `json:"order"`
}

type ListOrdersRequest struct {
	UserId string `json:"user_id"`
}

type ListOrdersResponse struct {
	Orders []*Order `json:"orders"`
}

type UpdateOrderStatusRequest struct {
	OrderId string `json:"order_id"`
	Status  string `json:"status"`
}

type UpdatedResponse struct {
	Updated bool `json:"updated"`
}

type CreatePaymentRecordRequest struct {
	OrderId        string `json:"order_id"`
	GatewayOrderId string `json:"gateway_order_id"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
}

type UpdatePaymentRecordRequest struct {
	GatewayOrderId string `json:"gateway_order_id"`
	PaymentId      string `json:"payment_id"`
	Signature      string `json:"signature"`
	Status         string `json:"status"`
	RawPayload     []byte `json:"raw_payload,omitempty"`
}

type GetPaymentByOrderIDRequest struct {
	OrderId string `json:"order_id"`
}

type GetPaymentByGatewayOrderIDRequest struct {
	GatewayOrderId string `json:"gateway_order_id"`
}

type PaymentRecordResponse struct {
	Payment *PaymentRecord `json:"payment"`
}

type CapturePaymentRequest struct {
	GatewayOrderId string `json:"gateway_order_id"`
	PaymentId      string `json:"payment_id"`
	Signature      string `json:"signature"`
	RawPayload     []byte `json:"raw_payload,omitempty"`
}

type CapturePaymentResponse struct {
	Order           *Order         `json:"order"`
	Payment         *PaymentRecord `json:"payment"`
	AlreadyCaptured bool           `json:"already_captured"`
}

const (
	OrdersService_CreateOrder_FullMethodName                = "/orders.OrdersService/CreateOrder"
	OrdersService_GetOrder_FullMethodName                   = "/orders.OrdersService/GetOrder"
	OrdersService_ListOrders_FullMethodName                 = "/orders.OrdersService/ListOrders"
	OrdersService_UpdateOrderStatus_FullMethodName          = "/orders.OrdersService/UpdateOrderStatus"
	OrdersService_CreatePaymentRecord_FullMethodName        = "/orders.OrdersService/CreatePaymentRecord"
	OrdersService_UpdatePaymentRecord_FullMethodName        = "/orders.OrdersService/UpdatePaymentRecord"
	OrdersService_GetPaymentByOrderID_FullMethodName        = "/orders.OrdersService/GetPaymentByOrderID"
	OrdersService_GetPaymentByGatewayOrderID_FullMethodName = "/orders.OrdersService/GetPaymentByGatewayOrderID"
	OrdersService_CapturePayment_FullMethodName             = "/orders.OrdersService/CapturePayment"
)

type OrdersServiceClient interface {
	CreateOrder(ctx context.Context, in *CreateOrderRequest, opts ...grpc.CallOption) (*OrderResponse, error)
	GetOrder(ctx context.Context, in *GetOrderRequest, opts ...grpc.CallOption) (*OrderResponse, error)
	ListOrders(ctx context.Context, in *ListOrdersRequest, opts ...grpc.CallOption) (*ListOrdersResponse, error)
	UpdateOrderStatus(ctx context.Context, in *UpdateOrderStatusRequest, opts ...grpc.CallOption) (*UpdatedResponse, error)
	CreatePaymentRecord(ctx context.Context, in *CreatePaymentRecordRequest, opts ...grpc.CallOption) (*PaymentRecordResponse, error)
	UpdatePaymentRecord(ctx context.Context, in *UpdatePaymentRecordRequest, opts ...grpc.CallOption) (*UpdatedResponse, error)
	GetPaymentByOrderID(ctx context.Context, in *GetPaymentByOrderIDRequest, opts ...grpc.CallOption) (*PaymentRecordResponse, error)
	GetPaymentByGatewayOrderID(ctx context.Context, in *GetPaymentByGatewayOrderIDRequest, opts ...grpc.CallOption) (*PaymentRecordResponse, error)
	CapturePayment(ctx context.Context, in *CapturePaymentRequest, opts ...grpc.CallOption) (*CapturePaymentResponse, error)
}

type ordersServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewOrdersServiceClient(cc grpc.ClientConnInterface) OrdersServiceClient {
	return &ordersServiceClient{cc}
}

func (c *ordersServiceClient) CreateOrder(ctx context.Context, in *CreateOrderRequest, opts ...grpc.CallOption) (*OrderResponse, error) {
	return grpcjson.Invoke[OrderResponse](ctx, c.cc, OrdersService_CreateOrder_FullMethodName, in, opts...)
}

func (c *ordersServiceClient) GetOrder(ctx context.Context, in *GetOrderRequest, opts ...grpc.CallOption) (*OrderResponse, error) {
	return grpcjson.Invoke[OrderResponse](ctx, c.cc, OrdersService_GetOrder_FullMethodName, in, opts...)
}

func (c *ordersServiceClient) ListOrders(ctx context.Context, in *ListOrdersRequest, opts ...grpc.CallOption) (*ListOrdersResponse, error) {
	return grpcjson.Invoke[ListOrdersResponse](ctx, c.cc, OrdersService_ListOrders_FullMethodName, in, opts...)
}

func (c *ordersServiceClient) UpdateOrderStatus(ctx context.Context, in *UpdateOrderStatusRequest, opts ...grpc.CallOption) (*UpdatedResponse, error) {
	return grpcjson.Invoke[UpdatedResponse](ctx, c.cc, OrdersService_UpdateOrderStatus_FullMethodName, in, opts...)
}

func (c *ordersServiceClient) CreatePaymentRecord(ctx context.Context, in *CreatePaymentRecordRequest, opts ...grpc.CallOption) (*PaymentRecordResponse, error) {
	return grpcjson.Invoke[PaymentRecordResponse](ctx, c.cc, OrdersService_CreatePaymentRecord_FullMethodName, in, opts...)
}

func (c *ordersServiceClient) UpdatePaymentRecord(ctx context.Context, in *UpdatePaymentRecordRequest, opts ...grpc.CallOption) (*UpdatedResponse, error) {
	return grpcjson.Invoke[UpdatedResponse](ctx, c.cc, OrdersService_UpdatePaymentRecord_FullMethodName, in, opts...)
}

func (c *ordersServiceClient) GetPaymentByOrderID(ctx context.Context, in *GetPaymentByOrderIDRequest, opts ...grpc.CallOption) (*PaymentRecordResponse, error) {
	return grpcjson.Invoke[PaymentRecordResponse](ctx, c.cc, OrdersService_GetPaymentByOrderID_FullMethodName, in, opts...)
}

func (c *ordersServiceClient) GetPaymentByGatewayOrderID(ctx context.Context, in *GetPaymentByGatewayOrderIDRequest, opts ...grpc.CallOption) (*PaymentRecordResponse, error) {
	return grpcjson.Invoke[PaymentRecordResponse](ctx, c.cc, OrdersService_GetPaymentByGatewayOrderID_FullMethodName, in, opts...)
}

func (c *ordersServiceClient) CapturePayment(ctx context.Context, in *CapturePaymentRequest, opts ...grpc.CallOption) (*CapturePaymentResponse, error) {
	return grpcjson.Invoke[CapturePaymentResponse](ctx, c.cc, OrdersService_CapturePayment_FullMethodName, in, opts...)
}

type OrdersServiceServer interface {
	CreateOrder(context.Context, *CreateOrderRequest) (*OrderResponse, error)
	GetOrder(context.Context, *GetOrderRequest) (*OrderResponse, error)
	ListOrders(context.Context, *ListOrdersRequest) (*ListOrdersResponse, error)
	UpdateOrderStatus(context.Context, *UpdateOrderStatusRequest) (*UpdatedResponse, error)
	CreatePaymentRecord(context.Context, *CreatePaymentRecordRequest) (*PaymentRecordResponse, error)
	UpdatePaymentRecord(context.Context, *UpdatePaymentRecordRequest) (*UpdatedResponse, error)
	GetPaymentByOrderID(context.Context, *GetPaymentByOrderIDRequest) (*PaymentRecordResponse, error)
	GetPaymentByGatewayOrderID(context.Context, *GetPaymentByGatewayOrderIDRequest) (*PaymentRecordResponse, error)
	CapturePayment(context.Context, *CapturePaymentRequest) (*CapturePaymentResponse, error)
}

type UnimplementedOrdersServiceServer struct{}

func (UnimplementedOrdersServiceServer) CreateOrder(context.Context, *CreateOrderRequest) (*OrderResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateOrder not implemented")
}

func (UnimplementedOrdersServiceServer) GetOrder(context.Context, *GetOrderRequest) (*OrderResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetOrder not implemented")
}

func (UnimplementedOrdersServiceServer) ListOrders(context.Context, *ListOrdersRequest) (*ListOrdersResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListOrders not implemented")
}

func (UnimplementedOrdersServiceServer) UpdateOrderStatus(context.Context, *UpdateOrderStatusRequest) (*UpdatedResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateOrderStatus not implemented")
}

func (UnimplementedOrdersServiceServer) CreatePaymentRecord(context.Context, *CreatePaymentRecordRequest) (*PaymentRecordResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreatePaymentRecord not implemented")
}

func (UnimplementedOrdersServiceServer) UpdatePaymentRecord(context.Context, *UpdatePaymentRecordRequest) (*UpdatedResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdatePaymentRecord not implemented")
}

func (UnimplementedOrdersServiceServer) GetPaymentByOrderID(context.Context, *GetPaymentByOrderIDRequest) (*PaymentRecordResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetPaymentByOrderID not implemented")
}

func (UnimplementedOrdersServiceServer) GetPaymentByGatewayOrderID(context.Context, *GetPaymentByGatewayOrderIDRequest) (*PaymentRecordResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetPaymentByGatewayOrderID not implemented")
}

func (UnimplementedOrdersServiceServer) CapturePayment(context.Context, *CapturePaymentRequest) (*CapturePaymentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CapturePayment not implemented")
}

func RegisterOrdersServiceServer(s grpc.ServiceRegistrar, srv OrdersServiceServer) {
	s.RegisterService(&OrdersService_ServiceDesc, srv)
}

var OrdersService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "orders.OrdersService",
	HandlerType: (*OrdersServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateOrder", Handler: grpcjson.Unary(OrdersService_CreateOrder_FullMethodName, OrdersServiceServer.CreateOrder)},
		{MethodName: "GetOrder", Handler: grpcjson.Unary(OrdersService_GetOrder_FullMethodName, OrdersServiceServer.GetOrder)},
		{MethodName: "ListOrders", Handler: grpcjson.Unary(OrdersService_ListOrders_FullMethodName, OrdersServiceServer.ListOrders)},
		{MethodName: "UpdateOrderStatus", Handler: grpcjson.Unary(OrdersService_UpdateOrderStatus_FullMethodName, OrdersServiceServer.UpdateOrderStatus)},
		{MethodName: "CreatePaymentRecord", Handler: grpcjson.Unary(OrdersService_CreatePaymentRecord_FullMethodName, OrdersServiceServer.CreatePaymentRecord)},
		{MethodName: "UpdatePaymentRecord", Handler: grpcjson.Unary(OrdersService_UpdatePaymentRecord_FullMethodName, OrdersServiceServer.UpdatePaymentRecord)},
		{MethodName: "GetPaymentByOrderID", Handler: grpcjson.Unary(OrdersService_GetPaymentByOrderID_FullMethodName, OrdersServiceServer.GetPaymentByOrderID)},
		{MethodName: "GetPaymentByGatewayOrderID", Handler: grpcjson.Unary(OrdersService_GetPaymentByGatewayOrderID_FullMethodName, OrdersServiceServer.GetPaymentByGatewayOrderID)},
		{MethodName: "CapturePayment", Handler: grpcjson.Unary(OrdersService_CapturePayment_FullMethodName, OrdersServiceServer.CapturePayment)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "orderspb/orders.go",
}
