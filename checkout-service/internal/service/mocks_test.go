package service

import (
	"context"
	"fmt"
	"sync"

	cartpb "github.com/fjod/storefront/cart-service/pkg/cartpb"
	orderspb "github.com/fjod/storefront/orders-service/pkg/orderspb"
	paymentpb "github.com/fjod/storefront/payment-service/pkg/paymentpb"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// MockCartServiceClient implements cartpb.CartServiceClient for testing
type MockCartServiceClient struct {
	cartpb.CartServiceClient

	m        sync.Mutex
	Carts    map[string]*cartpb.Cart
	GetErr   error
	ClearErr error
	Clears   []string
}

func NewMockCartServiceClient() *MockCartServiceClient {
	return &MockCartServiceClient{Carts: map[string]*cartpb.Cart{}}
}

func (m *MockCartServiceClient) GetCart(_ context.Context, in *cartpb.GetCartRequest, _ ...grpc.CallOption) (*cartpb.CartResponse, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	c, ok := m.Carts[in.SessionKey]
	if !ok {
		c = &cartpb.Cart{SessionKey: in.SessionKey}
	}
	return &cartpb.CartResponse{Cart: c}, nil
}

func (m *MockCartServiceClient) ClearCart(_ context.Context, in *cartpb.ClearCartRequest, _ ...grpc.CallOption) (*cartpb.CartResponse, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.Clears = append(m.Clears, in.SessionKey)
	if m.ClearErr != nil {
		return nil, m.ClearErr
	}
	delete(m.Carts, in.SessionKey)
	return &cartpb.CartResponse{Cart: &cartpb.Cart{SessionKey: in.SessionKey}}, nil
}

func (m *MockCartServiceClient) cart(key string) *cartpb.Cart {
	m.m.Lock()
	defer m.m.Unlock()
	return m.Carts[key]
}

// MockOrdersServiceClient implements orderspb.OrdersServiceClient for testing
type MockOrdersServiceClient struct {
	orderspb.OrdersServiceClient

	m         sync.Mutex
	Orders    map[string]*orderspb.Order
	Payments  map[string]*orderspb.PaymentRecord // by gateway order id
	CreateErr error
	Created   []*orderspb.CreateOrderRequest
}

func NewMockOrdersServiceClient() *MockOrdersServiceClient {
	return &MockOrdersServiceClient{
		Orders:   map[string]*orderspb.Order{},
		Payments: map[string]*orderspb.PaymentRecord{},
	}
}

func (m *MockOrdersServiceClient) CreateOrder(_ context.Context, in *orderspb.CreateOrderRequest, _ ...grpc.CallOption) (*orderspb.OrderResponse, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.Created = append(m.Created, in)
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	o := &orderspb.Order{
		Id:              fmt.Sprintf("ord-%d", len(m.Orders)+1),
		UserId:          in.UserId,
		CartRef:         in.CartRef,
		Items:           in.Items,
		TotalAmount:     in.TotalAmount,
		Currency:        in.Currency,
		Status:          "pending",
		ShippingAddress: in.ShippingAddress,
	}
	m.Orders[o.Id] = o
	return &orderspb.OrderResponse{Order: o}, nil
}

func (m *MockOrdersServiceClient) GetOrder(_ context.Context, in *orderspb.GetOrderRequest, _ ...grpc.CallOption) (*orderspb.OrderResponse, error) {
	m.m.Lock()
	defer m.m.Unlock()
	o, ok := m.Orders[in.OrderId]
	if !ok {
		return nil, status.Error(codes.NotFound, "order not found")
	}
	return &orderspb.OrderResponse{Order: o}, nil
}

func (m *MockOrdersServiceClient) GetPaymentByGatewayOrderID(_ context.Context, in *orderspb.GetPaymentByGatewayOrderIDRequest, _ ...grpc.CallOption) (*orderspb.PaymentRecordResponse, error) {
	m.m.Lock()
	defer m.m.Unlock()
	p, ok := m.Payments[in.GatewayOrderId]
	if !ok {
		return nil, status.Error(codes.NotFound, "payment not found")
	}
	return &orderspb.PaymentRecordResponse{Payment: p}, nil
}

func (m *MockOrdersServiceClient) order(id string) orderspb.Order {
	m.m.Lock()
	defer m.m.Unlock()
	return *m.Orders[id]
}

// MockPaymentServiceClient stands in for the trusted backend. A signature is
// valid when it equals validSignature(gatewayOrderID, paymentID).
type MockPaymentServiceClient struct {
	orders *MockOrdersServiceClient

	m           sync.Mutex
	CreateErr   error
	VerifyErr   error
	next        int
	VerifyCalls int
}

func NewMockPaymentServiceClient(orders *MockOrdersServiceClient) *MockPaymentServiceClient {
	return &MockPaymentServiceClient{orders: orders}
}

func validSignature(gatewayOrderID, paymentID string) string {
	return "sig:" + gatewayOrderID + "|" + paymentID
}

func (m *MockPaymentServiceClient) CreateSession(_ context.Context, in *paymentpb.CreateSessionRequest, _ ...grpc.CallOption) (*paymentpb.CreateSessionResponse, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.orders.m.Lock()
	defer m.orders.m.Unlock()
	o, ok := m.orders.Orders[in.OrderId]
	if !ok || o.UserId != in.UserId {
		return nil, status.Error(codes.NotFound, "order not found")
	}
	m.next++
	id := fmt.Sprintf("order_gw%d", m.next)
	amount := o.TotalAmount.Shift(2).IntPart()
	m.orders.Payments[id] = &orderspb.PaymentRecord{
		OrderId:        o.Id,
		GatewayOrderId: id,
		Amount:         amount,
		Currency:       o.Currency,
		Status:         "created",
	}
	return &paymentpb.CreateSessionResponse{SessionId: id, OrderId: o.Id, Amount: amount, Currency: o.Currency, Key: "rzp_test"}, nil
}

func (m *MockPaymentServiceClient) VerifyPayment(_ context.Context, in *paymentpb.VerifyPaymentRequest, _ ...grpc.CallOption) (*paymentpb.VerifyPaymentResponse, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.VerifyCalls++
	if m.VerifyErr != nil {
		return nil, m.VerifyErr
	}
	if in.Signature != validSignature(in.GatewayOrderId, in.PaymentId) {
		return nil, status.Error(codes.InvalidArgument, "invalid signature")
	}
	m.orders.m.Lock()
	defer m.orders.m.Unlock()
	p, ok := m.orders.Payments[in.GatewayOrderId]
	if !ok {
		return nil, status.Error(codes.NotFound, "payment session not found")
	}
	o := m.orders.Orders[p.OrderId]
	if p.Status == "captured" {
		if p.GatewayPaymentId != in.PaymentId {
			return nil, status.Error(codes.AlreadyExists, "payment conflict")
		}
		return &paymentpb.VerifyPaymentResponse{Verified: true, OrderId: o.Id, PaymentId: in.PaymentId, AlreadyCaptured: true, Order: o}, nil
	}
	p.Status = "captured"
	p.GatewayPaymentId = in.PaymentId
	o.Status = "processing"
	o.PaymentRef = in.PaymentId
	return &paymentpb.VerifyPaymentResponse{Verified: true, OrderId: o.Id, PaymentId: in.PaymentId, Order: o}, nil
}

func (m *MockPaymentServiceClient) HandleWebhook(context.Context, *paymentpb.HandleWebhookRequest, ...grpc.CallOption) (*paymentpb.HandleWebhookResponse, error) {
	return &paymentpb.HandleWebhookResponse{Received: true}, nil
}

func cartWith(key string, items ...*cartpb.CartItem) *cartpb.Cart {
	c := &cartpb.Cart{SessionKey: key, Items: items}
	for _, it := range items {
		line := it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		it.LineTotal = line
		c.Subtotal = c.Subtotal.Add(line)
		c.ItemCount += it.Quantity
	}
	if !c.Subtotal.GreaterThan(decimal.NewFromInt(150)) {
		c.Shipping = decimal.NewFromInt(10)
	}
	c.Total = c.Subtotal.Add(c.Shipping)
	return c
}
