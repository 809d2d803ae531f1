// Package productpb is the wire contract of the product service.
package productpb

import (
	"context"

	"github.com/fjod/storefront/pkg/grpcjson"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type Product struct {
	Id          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Images      []string        `json:"images"`
	Artisan     string          `json:"artisan"`
	Category    string          `json:"category"`
	CreatedAt   string          `json:"created_at"`
}

type GetProductRequest struct {
	Id string `json:"id"`
}

type GetProductResponse struct {
	Product *Product `json:"product"`
}

type GetProductsRequest struct{}

type GetProductsResponse struct {
	Products []*Product `json:"products"`
}

const (
	ProductService_GetProduct_FullMethodName  = "/product.ProductService/GetProduct"
	ProductService_GetProducts_FullMethodName = "/product.ProductService/GetProducts"
)

type ProductServiceClient interface {
	GetProduct(ctx context.Context, in *GetProductRequest, opts ...grpc.CallOption) (*GetProductResponse, error)
	GetProducts(ctx context.Context, in *GetProductsRequest, opts ...grpc.CallOption) (*GetProductsResponse, error)
}

type productServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewProductServiceClient(cc grpc.ClientConnInterface) ProductServiceClient {
	return &productServiceClient{cc}
}

func (c *productServiceClient) GetProduct(ctx context.Context, in *GetProductRequest, opts ...grpc.CallOption) (*GetProductResponse, error) {
	return grpcjson.Invoke[GetProductResponse](ctx, c.cc, ProductService_GetProduct_FullMethodName, in, opts...)
}

func (c *productServiceClient) GetProducts(ctx context.Context, in *GetProductsRequest, opts ...grpc.CallOption) (*GetProductsResponse, error) {
	return grpcjson.Invoke[GetProductsResponse](ctx, c.cc, ProductService_GetProducts_FullMethodName, in, opts...)
}

type ProductServiceServer interface {
	GetProduct(context.Context, *GetProductRequest) (*GetProductResponse, error)
	GetProducts(context.Context, *GetProductsRequest) (*GetProductsResponse, error)
}

type UnimplementedProductServiceServer struct{}

func (UnimplementedProductServiceServer) GetProduct(context.Context, *GetProductRequest) (*GetProductResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetProduct not implemented")
}

func (UnimplementedProductServiceServer) GetProducts(context.Context, *GetProductsRequest) (*GetProductsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetProducts not implemented")
}

func RegisterProductServiceServer(s grpc.ServiceRegistrar, srv ProductServiceServer) {
	s.RegisterService(&ProductService_ServiceDesc, srv)
}

var ProductService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "product.ProductService",
	HandlerType: (*ProductServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetProduct",
			Handler:    grpcjson.Unary(ProductService_GetProduct_FullMethodName, ProductServiceServer.GetProduct),
		},
		{
			MethodName: "GetProducts",
			Handler:    grpcjson.Unary(ProductService_GetProducts_FullMethodName, ProductServiceServer.GetProducts),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "productpb/product.go",
}
