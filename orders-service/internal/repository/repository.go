package repository

import (
	"context"
	"errors"

	"github.com/fjod/storefront/orders-service/internal/domain"
	"github.com/google/uuid"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrPaymentNotFound    = errors.New("payment record not found")
	ErrIllegalTransition  = errors.New("illegal status transition")
	ErrPaymentConflict    = errors.New("order already has a captured payment")
	ErrDuplicateSessionID = errors.New("payment record for this gateway order already exists")
)

// PaymentUpdate changes the status of a payment record. Empty PaymentID or
// Signature and a nil RawPayload keep the stored values.
type PaymentUpdate struct {
	PaymentID  string
	Signature  string
	Status     domain.PaymentStatus
	RawPayload []byte
}

type CaptureRequest struct {
	GatewayOrderID string
	PaymentID      string
	Signature      string
	RawPayload     []byte
}

type CaptureResult struct {
	Order   *domain.Order
	Payment *domain.PaymentRecord
	// AlreadyCaptured is set when the same payment had been captured before;
	// nothing was changed by this call.
	AlreadyCaptured bool
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error

	CreatePaymentRecord(ctx context.Context, rec *domain.PaymentRecord) error
	UpdatePaymentRecord(ctx context.Context, gatewayOrderID string, upd PaymentUpdate) error
	GetPaymentByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.PaymentRecord, error)
	GetPaymentByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*domain.PaymentRecord, error)
	CapturePayment(ctx context.Context, req CaptureRequest) (*CaptureResult, error)

	GetUnprocessedEvents(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error

	RunMigrations() error
	Close() error
}
