// Package cartpb is the wire contract of the cart service.
package cartpb

import (
	"context"

	"github.com/fjod/storefront/pkg/grpcjson"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type CartItem struct {
	ProductId string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int32           `json:"quantity"`
	Image     string          `json:"image,omitempty"`
	Artisan   string          `json:"artisan,omitempty"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type Cart struct {
	SessionKey string          `json:"session_key"`
	Items      []*CartItem     `json:"items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Shipping   decimal.Decimal `json:"shipping"`
	Total      decimal.Decimal `json:"total"`
	ItemCount  int32           `json:"item_count"`
}

type GetCartRequest struct {
	SessionKey string `json:"session_key"`
}

type AddItemRequest struct {
	SessionKey string `json:"session_key"`
	ProductId  string `json:"product_id"`
}

type UpdateQuantityRequest struct {
	SessionKey string `json:"session_key"`
	ProductId  string `json:"product_id"`
	Quantity   int32  `json:"quantity"`
}

type RemoveItemRequest struct {
	SessionKey string `json:"session_key"`
	ProductId  string `json:"product_id"`
}

type ClearCartRequest struct {
	SessionKey string `json:"session_key"`
}

type CartResponse struct {
	Cart *Cart `json:"cart"`
}

const (
	CartService_GetCart_FullMethodName        = "/cart.CartService/GetCart"
	CartService_AddItem_FullMethodName        = "/cart.CartService/AddItem"
	CartService_UpdateQuantity_FullMethodName = "/cart.CartService/UpdateQuantity"
	CartService_RemoveItem_FullMethodName     = "/cart.CartService/RemoveItem"
	CartService_ClearCart_FullMethodName      = "/cart.CartService/ClearCart"
)

type CartServiceClient interface {
	GetCart(ctx context.Context, in *GetCartRequest, opts ...grpc.CallOption) (*CartResponse, error)
	AddItem(ctx context.Context, in *AddItemRequest, opts ...grpc.CallOption) (*CartResponse, error)
	UpdateQuantity(ctx context.Context, in *UpdateQuantityRequest, opts ...grpc.CallOption) (*CartResponse, error)
	RemoveItem(ctx context.Context, in *RemoveItemRequest, opts ...grpc.CallOption) (*CartResponse, error)
	ClearCart(ctx context.Context, in *ClearCartRequest, opts ...grpc.CallOption) (*CartResponse, error)
}

type cartServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCartServiceClient(cc grpc.ClientConnInterface) CartServiceClient {
	return &cartServiceClient{cc}
}

func (c *cartServiceClient) GetCart(ctx context.Context, in *GetCartRequest, opts ...grpc.CallOption) (*CartResponse, error) {
	return grpcjson.Invoke[CartResponse](ctx, c.cc, CartService_GetCart_FullMethodName, in, opts...)
}

func (c *cartServiceClient) AddItem(ctx context.Context, in *AddItemRequest, opts ...grpc.CallOption) (*CartResponse, error) {
	return grpcjson.Invoke[CartResponse](ctx, c.cc, CartService_AddItem_FullMethodName, in, opts...)
}

func (c *cartServiceClient) UpdateQuantity(ctx context.Context, in *UpdateQuantityRequest, opts ...grpc.CallOption) (*CartResponse, error) {
	return grpcjson.Invoke[CartResponse](ctx, c.cc, CartService_UpdateQuantity_FullMethodName, in, opts...)
}

func (c *cartServiceClient) RemoveItem(ctx context.Context, in *RemoveItemRequest, opts ...grpc.CallOption) (*CartResponse, error) {
	return grpcjson.Invoke[CartResponse](ctx, c.cc, CartService_RemoveItem_FullMethodName, in, opts...)
}

func (c *cartServiceClient) ClearCart(ctx context.Context, in *ClearCartRequest, opts ...grpc.CallOption) (*CartResponse, error) {
	return grpcjson.Invoke[CartResponse](ctx, c.cc, CartService_ClearCart_FullMethodName, in, opts...)
}

type CartServiceServer interface {
	GetCart(context.Context, *GetCartRequest) (*CartResponse, error)
	AddItem(context.Context, *AddItemRequest) (*CartResponse, error)
	UpdateQuantity(context.Context, *UpdateQuantityRequest) (*CartResponse, error)
	RemoveItem(context.Context, *RemoveItemRequest) (*CartResponse, error)
	ClearCart(context.Context, *ClearCartRequest) (*CartResponse, error)
}

type UnimplementedCartServiceServer struct{}

func (UnimplementedCartServiceServer) GetCart(context.Context, *GetCartRequest) (*CartResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetCart not implemented")
}

func (UnimplementedCartServiceServer) AddItem(context.Context, *AddItemRequest) (*CartResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method AddItem not implemented")
}

func (UnimplementedCartServiceServer) UpdateQuantity(context.Context, *UpdateQuantityRequest) (*CartResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateQuantity not implemented")
}

func (UnimplementedCartServiceServer) RemoveItem(context.Context, *RemoveItemRequest) (*CartResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RemoveItem not implemented")
}

func (UnimplementedCartServiceServer) ClearCart(context.Context, *ClearCartRequest) (*CartResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ClearCart not implemented")
}

func RegisterCartServiceServer(s grpc.ServiceRegistrar, srv CartServiceServer) {
	s.RegisterService(&CartService_ServiceDesc, srv)
}

var CartService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "cart.CartService",
	HandlerType: (*CartServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetCart", Handler: grpcjson.Unary(CartService_GetCart_FullMethodName, CartServiceServer.GetCart)},
		{MethodName: "AddItem", Handler: grpcjson.Unary(CartService_AddItem_FullMethodName, CartServiceServer.AddItem)},
		{MethodName: "UpdateQuantity", Handler: grpcjson.Unary(CartService_UpdateQuantity_FullMethodName, CartServiceServer.UpdateQuantity)},
		{MethodName: "RemoveItem", Handler: grpcjson.Unary(CartService_RemoveItem_FullMethodName, CartServiceServer.RemoveItem)},
		{MethodName: "ClearCart", Handler: grpcjson.Unary(CartService_ClearCart_FullMethodName, CartServiceServer.ClearCart)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cartpb/cart.go",
}
