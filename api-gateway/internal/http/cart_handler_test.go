package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pb "github.com/fjod/storefront/cart-service/pkg/cartpb"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type ClientMock struct {
	cart *pb.Cart
	err  error

	sessionKey string
	productID  string
	quantity   int32
}

func (c *ClientMock) respond(key string) (*pb.CartResponse, error) {
	c.sessionKey = key
	if c.err != nil {
		return nil, c.err
	}
	return &pb.CartResponse{Cart: c.cart}, nil
}

func (c *ClientMock) GetCart(ctx context.Context, in *pb.GetCartRequest, opts ...grpc.CallOption) (*pb.CartResponse, error) {
	return c.respond(in.SessionKey)
}

func (c *ClientMock) AddItem(ctx context.Context, in *pb.AddItemRequest, opts ...grpc.CallOption) (*pb.CartResponse, error) {
	c.productID = in.ProductId
	return c.respond(in.SessionKey)
}

func (c *ClientMock) UpdateQuantity(ctx context.Context, in *pb.UpdateQuantityRequest, opts ...grpc.CallOption) (*pb.CartResponse, error) {
	c.productID, c.quantity = in.ProductId, in.Quantity
	return c.respond(in.SessionKey)
}

func (c *ClientMock) RemoveItem(ctx context.Context, in *pb.RemoveItemRequest, opts ...grpc.CallOption) (*pb.CartResponse, error) {
	c.productID = in.ProductId
	return c.respond(in.SessionKey)
}

func (c *ClientMock) ClearCart(ctx context.Context, in *pb.ClearCartRequest, opts ...grpc.CallOption) (*pb.CartResponse, error) {
	return c.respond(in.SessionKey)
}

const testCartKey = "9b2f0c4e-6f7a-4d0e-9d1c-2f8e7a1b3c5d"

func withCart(r *http.Request) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), cartKeyCtx, testCartKey))
}

func withProductID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("product_id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func rugCart() *pb.Cart {
	return &pb.Cart{
		SessionKey: testCartKey,
		Items: []*pb.CartItem{
			{ProductId: "hand-woven-wool-rug-01", Name: "Hand-Woven Wool Rug", Price: decimal.NewFromInt(299), Quantity: 1, LineTotal: decimal.NewFromInt(299)},
		},
		Subtotal:  decimal.NewFromInt(299),
		Shipping:  decimal.Zero,
		Total:     decimal.NewFromInt(299),
		ItemCount: 1,
	}
}

func TestGetCart_Success(t *testing.T) {
	clientMock := &ClientMock{cart: rugCart()}
	handler := NewCartHandler(clientMock, 5*time.Second)
	recorder := httptest.NewRecorder()
	request := withCart(httptest.NewRequest("GET", "/api/v1/cart", nil))

	handler.GetCart(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
	if clientMock.sessionKey != testCartKey {
		t.Errorf("Expected session key %s, got %s", testCartKey, clientMock.sessionKey)
	}

	var response pb.Cart
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !response.Total.Equal(decimal.NewFromInt(299)) {
		t.Errorf("Expected total 299, got %s", response.Total)
	}
	if len(response.Items) != 1 {
		t.Errorf("Expected 1 item, got %d", len(response.Items))
	}
}

func TestGetCart_ServiceUnavailable(t *testing.T) {
	clientMock := &ClientMock{err: status.Error(codes.Unavailable, "cart service down")}
	handler := NewCartHandler(clientMock, 5*time.Second)
	recorder := httptest.NewRecorder()

	handler.GetCart(recorder, withCart(httptest.NewRequest("GET", "/api/v1/cart", nil)))

	if recorder.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status code %d, got %d", http.StatusServiceUnavailable, recorder.Code)
	}
	var response ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	if response.Code != "service_unavailable" {
		t.Errorf("Expected error code 'service_unavailable', got '%s'", response.Code)
	}
}

func TestAddItem_Success(t *testing.T) {
	clientMock := &ClientMock{cart: rugCart()}
	handler := NewCartHandler(clientMock, 5*time.Second)

	reqBytes, _ := json.Marshal(&AddItemRequestDTO{ProductID: "hand-woven-wool-rug-01"})
	recorder := httptest.NewRecorder()
	request := withCart(httptest.NewRequest("POST", "/api/v1/cart/items", bytes.NewReader(reqBytes)))

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusCreated {
		t.Errorf("Expected status code %d, got %d", http.StatusCreated, recorder.Code)
	}
	if clientMock.productID != "hand-woven-wool-rug-01" {
		t.Errorf("Expected product id to be forwarded, got '%s'", clientMock.productID)
	}
}

func TestAddItem_InvalidJSON(t *testing.T) {
	handler := NewCartHandler(&ClientMock{}, 5*time.Second)
	recorder := httptest.NewRecorder()
	request := withCart(httptest.NewRequest("POST", "/api/v1/cart/items", bytes.NewReader([]byte("invalid json"))))

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}
	var response ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	if response.Code != "invalid_request" {
		t.Errorf("Expected error code 'invalid_request', got '%s'", response.Code)
	}
}

func TestAddItem_MissingProductID(t *testing.T) {
	handler := NewCartHandler(&ClientMock{}, 5*time.Second)
	recorder := httptest.NewRecorder()
	request := withCart(httptest.NewRequest("POST", "/api/v1/cart/items", bytes.NewReader([]byte(`{}`))))

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}
	var response ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	if response.Code != "invalid_product_id" {
		t.Errorf("Expected error code 'invalid_product_id', got '%s'", response.Code)
	}
}

func TestAddItem_UnknownProduct(t *testing.T) {
	clientMock := &ClientMock{err: status.Error(codes.NotFound, "product not found")}
	handler := NewCartHandler(clientMock, 5*time.Second)
	recorder := httptest.NewRecorder()
	request := withCart(httptest.NewRequest("POST", "/api/v1/cart/items", bytes.NewReader([]byte(`{"product_id":"nope"}`))))

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusNotFound {
		t.Errorf("Expected status code %d, got %d", http.StatusNotFound, recorder.Code)
	}
}

func TestUpdateQuantity(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"set quantity", `{"quantity":3}`, http.StatusOK},
		{"zero removes", `{"quantity":0}`, http.StatusOK},
		{"negative removes", `{"quantity":-2}`, http.StatusOK},
		{"too many", `{"quantity":100}`, http.StatusBadRequest},
		{"missing quantity", `{}`, http.StatusBadRequest},
		{"invalid json", `nope`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clientMock := &ClientMock{cart: rugCart()}
			handler := NewCartHandler(clientMock, 5*time.Second)
			recorder := httptest.NewRecorder()
			request := httptest.NewRequest("PUT", "/api/v1/cart/items/coaster", bytes.NewReader([]byte(tt.body)))
			request = withCart(withProductID(request, "coaster"))

			handler.UpdateQuantity(recorder, request)

			if recorder.Code != tt.wantCode {
				t.Errorf("Expected status code %d, got %d", tt.wantCode, recorder.Code)
			}
			if tt.wantCode == http.StatusOK && clientMock.productID != "coaster" {
				t.Errorf("Expected product 'coaster', got '%s'", clientMock.productID)
			}
		})
	}
}

func TestRemoveItem_Success(t *testing.T) {
	clientMock := &ClientMock{cart: &pb.Cart{SessionKey: testCartKey}}
	handler := NewCartHandler(clientMock, 5*time.Second)
	recorder := httptest.NewRecorder()
	request := withCart(withProductID(httptest.NewRequest("DELETE", "/api/v1/cart/items/coaster", nil), "coaster"))

	handler.RemoveItem(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
	if clientMock.productID != "coaster" {
		t.Errorf("Expected product 'coaster', got '%s'", clientMock.productID)
	}
}

func TestClearCart_Success(t *testing.T) {
	clientMock := &ClientMock{cart: &pb.Cart{SessionKey: testCartKey}}
	handler := NewCartHandler(clientMock, 5*time.Second)
	recorder := httptest.NewRecorder()

	handler.ClearCart(recorder, withCart(httptest.NewRequest("DELETE", "/api/v1/cart", nil)))

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
	if clientMock.sessionKey != testCartKey {
		t.Errorf("Expected session key %s, got %s", testCartKey, clientMock.sessionKey)
	}
}
