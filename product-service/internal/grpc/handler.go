package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/storefront/product-service/internal/domain"
	db "github.com/fjod/storefront/product-service/internal/repository"
	pb "github.com/fjod/storefront/product-service/pkg/productpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ProductServiceServer implements the gRPC ProductService
type ProductServiceServer struct {
	pb.UnimplementedProductServiceServer
	repo db.RepoInterface
}

func NewProductServiceServer(repo db.RepoInterface) *ProductServiceServer {
	return &ProductServiceServer{
		repo: repo,
	}
}

func toProto(p *domain.Product) *pb.Product {
	return &pb.Product{
		Id:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Images:      p.Images,
		Artisan:     p.Artisan,
		Category:    p.Category,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
}

func (s *ProductServiceServer) GetProducts(
	ctx context.Context,
	_ *pb.GetProductsRequest,
) (*pb.GetProductsResponse, error) {

	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to fetch products: %v", err)
	}

	pbProducts := make([]*pb.Product, len(products))
	for i, p := range products {
		pbProducts[i] = toProto(p)
	}

	return &pb.GetProductsResponse{
		Products: pbProducts,
	}, nil
}

func (s *ProductServiceServer) GetProduct(
	ctx context.Context,
	req *pb.GetProductRequest,
) (*pb.GetProductResponse, error) {

	if req.Id == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	product, err := s.repo.GetProduct(ctx, req.Id)
	if errors.Is(err, db.ErrProductNotFound) {
		return nil, status.Error(codes.NotFound, "product not found")
	}
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to fetch product: %v", err)
	}

	return &pb.GetProductResponse{Product: toProto(product)}, nil
}
