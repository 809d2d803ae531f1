package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/fjod/storefront/orders-service/pkg/orderspb"
	"github.com/fjod/storefront/payment-service/internal/gateway"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// mockOrdersClient keeps orders and payment records in memory and mimics the
// status codes of the orders service.
type mockOrdersClient struct {
	orderspb.OrdersServiceClient

	m        sync.Mutex
	orders   map[string]*orderspb.Order
	payments map[string]*orderspb.PaymentRecord // by gateway order id
	getErr   error
	updates  []*orderspb.UpdatePaymentRecordRequest
	captures []*orderspb.CapturePaymentRequest
}

func newMockOrdersClient() *mockOrdersClient {
	return &mockOrdersClient{
		orders:   map[string]*orderspb.Order{},
		payments: map[string]*orderspb.PaymentRecord{},
	}
}

func (m *mockOrdersClient) GetOrder(_ context.Context, in *orderspb.GetOrderRequest, _ ...grpc.CallOption) (*orderspb.OrderResponse, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	o, ok := m.orders[in.OrderId]
	if !ok {
		return nil, status.Error(codes.NotFound, "order not found")
	}
	return &orderspb.OrderResponse{Order: o}, nil
}

func (m *mockOrdersClient) GetPaymentByOrderID(_ context.Context, in *orderspb.GetPaymentByOrderIDRequest, _ ...grpc.CallOption) (*orderspb.PaymentRecordResponse, error) {
	m.m.Lock()
	defer m.m.Unlock()
	var latest *orderspb.PaymentRecord
	for _, p := range m.payments {
		if p.OrderId == in.OrderId && (latest == nil || p.CreatedAt > latest.CreatedAt) {
			latest = p
		}
	}
	if latest == nil {
		return nil, status.Error(codes.NotFound, "payment not found")
	}
	return &orderspb.PaymentRecordResponse{Payment: latest}, nil
}

func (m *mockOrdersClient) CreatePaymentRecord(_ context.Context, in *orderspb.CreatePaymentRecordRequest, _ ...grpc.CallOption) (*orderspb.PaymentRecordResponse, error) {
	m.m.Lock()
	defer m.m.Unlock()
	for _, p := range m.payments {
		if p.OrderId != in.OrderId {
			continue
		}
		if p.Status == "captured" {
			return nil, status.Error(codes.AlreadyExists, "order already has a captured payment")
		}
		if p.Status == "created" {
			p.Status = "failed"
		}
	}
	p := &orderspb.PaymentRecord{
		Id:             "rec-" + in.GatewayOrderId,
		OrderId:        in.OrderId,
		GatewayOrderId: in.GatewayOrderId,
		Amount:         in.Amount,
		Currency:       in.Currency,
		Status:         "created",
		CreatedAt:      string(rune('a' + len(m.payments))),
	}
	m.payments[in.GatewayOrderId] = p
	return &orderspb.PaymentRecordResponse{Payment: p}, nil
}

func (m *mockOrdersClient) UpdatePaymentRecord(_ context.Context, in *orderspb.UpdatePaymentRecordRequest, _ ...grpc.CallOption) (*orderspb.UpdatedResponse, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.updates = append(m.updates, in)
	p, ok := m.payments[in.GatewayOrderId]
	if !ok {
		return nil, status.Error(codes.NotFound, "payment not found")
	}
	if p.Status == "captured" {
		return nil, status.Error(codes.FailedPrecondition, "illegal status transition")
	}
	p.Status = in.Status
	p.GatewayPaymentId = in.PaymentId
	return &orderspb.UpdatedResponse{Updated: true}, nil
}

func (m *mockOrdersClient) CapturePayment(_ context.Context, in *orderspb.CapturePaymentRequest, _ ...grpc.CallOption) (*orderspb.CapturePaymentResponse, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.captures = append(m.captures, in)
	p, ok := m.payments[in.GatewayOrderId]
	if !ok {
		return nil, status.Error(codes.NotFound, "payment not found")
	}
	o := m.orders[p.OrderId]
	if p.Status == "captured" {
		if p.GatewayPaymentId != in.PaymentId {
			return nil, status.Error(codes.AlreadyExists, "payment conflict")
		}
		return &orderspb.CapturePaymentResponse{Order: o, Payment: p, AlreadyCaptured: true}, nil
	}
	p.Status = "captured"
	p.GatewayPaymentId = in.PaymentId
	if o.Status == "pending" {
		o.Status = "processing"
	}
	o.PaymentRef = in.PaymentId
	return &orderspb.CapturePaymentResponse{Order: o, Payment: p}, nil
}

func (m *mockOrdersClient) order(id string) orderspb.Order {
	m.m.Lock()
	defer m.m.Unlock()
	return *m.orders[id]
}

func (m *mockOrdersClient) payment(gatewayOrderID string) orderspb.PaymentRecord {
	m.m.Lock()
	defer m.m.Unlock()
	return *m.payments[gatewayOrderID]
}

// fakeGateway answers POST /v1/orders with sequential gateway order ids.
type fakeGateway struct {
	srv    *httptest.Server
	m      sync.Mutex
	next   int
	status int
	seen   []gateway.Order
}

func newFakeGateway() *fakeGateway {
	g := &fakeGateway{status: http.StatusOK}
	g.srv = httptest.NewServer(http.HandlerFunc(g.serve))
	return g
}

func (g *fakeGateway) serve(w http.ResponseWriter, r *http.Request) {
	g.m.Lock()
	defer g.m.Unlock()
	if g.status != http.StatusOK {
		w.WriteHeader(g.status)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"rejected"}}`))
		return
	}
	var o gateway.Order
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	g.next++
	o.ID = "order_gw" + string(rune('0'+g.next))
	o.Status = "created"
	g.seen = append(g.seen, o)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(o)
}

func (g *fakeGateway) Close() { g.srv.Close() }
