package orderspb

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// OrderEventsTopic is the Kafka topic the orders outbox is published to.
	OrderEventsTopic = "order-events"

	EventTypeOrderPaid = "order.paid"

	// EventTypeHeader names the Kafka header carrying the event type.
	EventTypeHeader = "event_type"
)

type PaidLine struct {
	ProductId string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}

// OrderPaidEvent is published once per order, when its payment is captured.
// CartRef identifies the cart the order was placed from.
type OrderPaidEvent struct {
	OrderId     string          `json:"order_id"`
	UserId      string          `json:"user_id"`
	CartRef     string          `json:"cart_ref"`
	Items       []PaidLine      `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Currency    string          `json:"currency"`
	PaymentId   string          `json:"payment_id"`
	PaidAt      time.Time       `json:"paid_at"`
}
