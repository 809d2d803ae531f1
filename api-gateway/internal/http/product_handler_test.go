package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pb "github.com/fjod/storefront/product-service/pkg/productpb"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type ProductClientMock struct {
	products []*pb.Product
	err      error
}

func (m ProductClientMock) GetProducts(ctx context.Context, in *pb.GetProductsRequest, opts ...grpc.CallOption) (*pb.GetProductsResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &pb.GetProductsResponse{Products: m.products}, nil
}

func (m ProductClientMock) GetProduct(ctx context.Context, in *pb.GetProductRequest, opts ...grpc.CallOption) (*pb.GetProductResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, p := range m.products {
		if p.Id == in.Id {
			return &pb.GetProductResponse{Product: p}, nil
		}
	}
	return nil, status.Error(codes.NotFound, "product not found")
}

func catalog() []*pb.Product {
	return []*pb.Product{
		{Id: "hand-woven-wool-rug-01", Name: "Hand-Woven Wool Rug", Price: decimal.NewFromInt(299), Images: []string{"rug.jpg"}, Artisan: "meera", Category: "rugs"},
		{Id: "coaster", Name: "Coaster", Price: decimal.RequireFromString("9.50")},
	}
}

func TestListProducts_Success(t *testing.T) {
	handler := NewProductHandler(ProductClientMock{products: catalog()}, 5*time.Second)
	recorder := httptest.NewRecorder()

	handler.List(recorder, httptest.NewRequest("GET", "/api/v1/products", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, recorder.Code)
	}

	var resp ProductsResponse
	if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(resp.Products))
	}
	if !resp.Products[1].Price.Equal(decimal.RequireFromString("9.5")) {
		t.Errorf("expected price 9.5, got %s", resp.Products[1].Price)
	}
	if resp.Products[1].Images == nil {
		t.Error("expected images to be an empty list, got null")
	}
}

func TestListProducts_Empty(t *testing.T) {
	handler := NewProductHandler(ProductClientMock{}, 5*time.Second)
	recorder := httptest.NewRecorder()

	handler.List(recorder, httptest.NewRequest("GET", "/api/v1/products", nil))

	if recorder.Code != http.StatusOK {
		t.Errorf("expected %d, got %d", http.StatusOK, recorder.Code)
	}
	var resp ProductsResponse
	json.NewDecoder(recorder.Body).Decode(&resp)
	if len(resp.Products) != 0 {
		t.Errorf("expected no products, got %d", len(resp.Products))
	}
}

func TestListProducts_GRPCError(t *testing.T) {
	handler := NewProductHandler(ProductClientMock{err: status.Error(codes.Internal, "db exploded")}, 5*time.Second)
	recorder := httptest.NewRecorder()

	handler.List(recorder, httptest.NewRequest("GET", "/api/v1/products", nil))

	if recorder.Code != http.StatusInternalServerError {
		t.Errorf("expected %d, got %d", http.StatusInternalServerError, recorder.Code)
	}
	var resp ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&resp)
	if resp.Error != "internal server error" {
		t.Errorf("expected upstream message to be hidden, got %q", resp.Error)
	}
}

func TestGetProduct(t *testing.T) {
	handler := NewProductHandler(ProductClientMock{products: catalog()}, 5*time.Second)

	tests := []struct {
		id       string
		wantCode int
	}{
		{"coaster", http.StatusOK},
		{"missing", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			request := withProductID(httptest.NewRequest("GET", "/api/v1/products/"+tt.id, nil), tt.id)

			handler.Get(recorder, request)

			if recorder.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, recorder.Code)
			}
		})
	}
}
