package productpb_test

import (
	"context"
	"net"
	"testing"

	"github.com/fjod/storefront/product-service/pkg/productpb"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type stubServer struct {
	productpb.UnimplementedProductServiceServer
}

func (stubServer) GetProduct(_ context.Context, req *productpb.GetProductRequest) (*productpb.GetProductResponse, error) {
	if req.Id != "rug" {
		return nil, status.Error(codes.NotFound, "product not found")
	}
	return &productpb.GetProductResponse{Product: &productpb.Product{
		Id:     "rug",
		Name:   "Rug",
		Price:  decimal.RequireFromString("299.50"),
		Images: []string{"a.jpg"},
	}}, nil
}

func dial(t *testing.T) productpb.ProductServiceClient {
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	productpb.RegisterProductServiceServer(srv, stubServer{})
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return productpb.NewProductServiceClient(conn)
}

func TestClient_RoundTripOverJSONCodec(t *testing.T) {
	client := dial(t)

	resp, err := client.GetProduct(context.Background(), &productpb.GetProductRequest{Id: "rug"})

	require.NoError(t, err)
	assert.Equal(t, "Rug", resp.Product.Name)
	assert.True(t, decimal.RequireFromString("299.5").Equal(resp.Product.Price))
	assert.Equal(t, []string{"a.jpg"}, resp.Product.Images)
}

func TestClient_StatusErrorsPropagate(t *testing.T) {
	client := dial(t)

	_, err := client.GetProduct(context.Background(), &productpb.GetProductRequest{Id: "nope"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.GetProducts(context.Background(), &productpb.GetProductsRequest{})
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}
