package grpc

import (
	"context"

	"github.com/fjod/storefront/cart-service/internal/domain"
	pb "github.com/fjod/storefront/cart-service/pkg/cartpb"
	productpb "github.com/fjod/storefront/product-service/pkg/productpb"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// CartService is the part of service.CartService the gRPC layer needs.
type CartService interface {
	GetCart(ctx context.Context, sessionKey string) (domain.State, error)
	AddItem(ctx context.Context, sessionKey string, p domain.Product) (domain.State, error)
	UpdateQuantity(ctx context.Context, sessionKey, productID string, quantity int) (domain.State, error)
	RemoveItem(ctx context.Context, sessionKey, productID string) (domain.State, error)
	ClearCart(ctx context.Context, sessionKey string) (domain.State, error)
}

type CartServiceServer struct {
	pb.UnimplementedCartServiceServer
	service       CartService
	productClient productpb.ProductServiceClient
	log           *zap.Logger
}

func NewCartServiceServer(service CartService, productClient productpb.ProductServiceClient, log *zap.Logger) *CartServiceServer {
	return &CartServiceServer{
		service:       service,
		productClient: productClient,
		log:           log,
	}
}

func convertCart(sessionKey string, st domain.State) *pb.Cart {
	cart := &pb.Cart{
		SessionKey: sessionKey,
		Items:      make([]*pb.CartItem, len(st.Items)),
		Subtotal:   st.Subtotal,
		Shipping:   st.Shipping,
		Total:      st.Total,
	}

	for i, item := range st.Items {
		cart.Items[i] = &pb.CartItem{
			ProductId: item.ProductID,
			Name:      item.Name,
			Price:     item.UnitPrice,
			Quantity:  int32(item.Quantity),
			Image:     item.ImageRef,
			Artisan:   item.ArtisanRef,
			LineTotal: item.LineTotal(),
		}
		cart.ItemCount += int32(item.Quantity)
	}

	return cart
}

func (s *CartServiceServer) GetCart(
	ctx context.Context,
	req *pb.GetCartRequest) (*pb.CartResponse, error) {

	if req.SessionKey == "" {
		return nil, status.Error(codes.InvalidArgument, "session_key is required")
	}

	st, err := s.service.GetCart(ctx, req.SessionKey)
	if err != nil {
		s.log.Error("get cart failed", zap.String("session", req.SessionKey), zap.Error(err))
		return nil, status.Error(codes.Unavailable, "cart storage unavailable")
	}
	return &pb.CartResponse{Cart: convertCart(req.SessionKey, st)}, nil
}

func (s *CartServiceServer) AddItem(
	ctx context.Context,
	req *pb.AddItemRequest) (*pb.CartResponse, error) {

	if req.SessionKey == "" {
		return nil, status.Error(codes.InvalidArgument, "session_key is required")
	}
	if req.ProductId == "" {
		return nil, status.Error(codes.InvalidArgument, "product_id is required")
	}

	// Price and name come from the catalog, never from the caller.
	resp, err := s.productClient.GetProduct(ctx, &productpb.GetProductRequest{Id: req.ProductId})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, status.Error(codes.NotFound, "product not found")
		}
		return nil, status.Errorf(codes.Internal, "failed to resolve product: %v", err)
	}

	st, err := s.service.AddItem(ctx, req.SessionKey, toDomainProduct(resp.Product))
	if err != nil {
		s.log.Error("add item failed", zap.String("product_id", req.ProductId), zap.Error(err))
		return nil, status.Errorf(codes.Internal, "failed to add item to cart: %v", err)
	}

	return &pb.CartResponse{Cart: convertCart(req.SessionKey, st)}, nil
}

func (s *CartServiceServer) UpdateQuantity(
	ctx context.Context,
	req *pb.UpdateQuantityRequest) (*pb.CartResponse, error) {

	if req.SessionKey == "" {
		return nil, status.Error(codes.InvalidArgument, "session_key is required")
	}
	if req.ProductId == "" {
		return nil, status.Error(codes.InvalidArgument, "product_id is required")
	}

	// A quantity of zero or less removes the line.
	st, err := s.service.UpdateQuantity(ctx, req.SessionKey, req.ProductId, int(req.Quantity))
	if err != nil {
		s.log.Error("update quantity failed", zap.String("product_id", req.ProductId), zap.Error(err))
		return nil, status.Errorf(codes.Internal, "failed to update item quantity: %v", err)
	}

	return &pb.CartResponse{Cart: convertCart(req.SessionKey, st)}, nil
}

func (s *CartServiceServer) RemoveItem(
	ctx context.Context,
	req *pb.RemoveItemRequest) (*pb.CartResponse, error) {

	if req.SessionKey == "" {
		return nil, status.Error(codes.InvalidArgument, "session_key is required")
	}
	if req.ProductId == "" {
		return nil, status.Error(codes.InvalidArgument, "product_id is required")
	}

	st, err := s.service.RemoveItem(ctx, req.SessionKey, req.ProductId)
	if err != nil {
		s.log.Error("remove item failed", zap.String("product_id", req.ProductId), zap.Error(err))
		return nil, status.Errorf(codes.Internal, "failed to remove item: %v", err)
	}

	return &pb.CartResponse{Cart: convertCart(req.SessionKey, st)}, nil
}

func (s *CartServiceServer) ClearCart(
	ctx context.Context,
	req *pb.ClearCartRequest) (*pb.CartResponse, error) {

	if req.SessionKey == "" {
		return nil, status.Error(codes.InvalidArgument, "session_key is required")
	}

	st, err := s.service.ClearCart(ctx, req.SessionKey)
	if err != nil {
		s.log.Error("clear cart failed", zap.Error(err))
		return nil, status.Errorf(codes.Internal, "failed to clear cart: %v", err)
	}

	return &pb.CartResponse{Cart: convertCart(req.SessionKey, st)}, nil
}

func toDomainProduct(p *productpb.Product) domain.Product {
	var image string
	if len(p.Images) > 0 {
		image = p.Images[0]
	}
	return domain.Product{
		ID:         p.Id,
		Name:       p.Name,
		Price:      p.Price,
		ImageRef:   image,
		ArtisanRef: p.Artisan,
	}
}
