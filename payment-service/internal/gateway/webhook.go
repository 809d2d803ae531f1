package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	EventPaymentCaptured   = "payment.captured"
	EventPaymentAuthorized = "payment.authorized"
	EventPaymentFailed     = "payment.failed"
)

var ErrMalformedWebhook = errors.New("malformed webhook payload")

// Event is one of PaymentCaptured, PaymentAuthorized, PaymentFailed or
// UnknownEvent.
type Event interface {
	isEvent()
}

// PaymentEntity is the payment object embedded in payment.* webhooks. Raw
// keeps the entity exactly as received.
type PaymentEntity struct {
	ID               string          `json:"id"`
	OrderID          string          `json:"order_id"`
	Amount           int64           `json:"amount"`
	Currency         string          `json:"currency"`
	Status           string          `json:"status"`
	ErrorCode        string          `json:"error_code"`
	ErrorDescription string          `json:"error_description"`
	Raw              json.RawMessage `json:"-"`
}

type PaymentCaptured struct{ Payment PaymentEntity }

type PaymentAuthorized struct{ Payment PaymentEntity }

type PaymentFailed struct{ Payment PaymentEntity }

type UnknownEvent struct{ Name string }

func (PaymentCaptured) isEvent()   {}
func (PaymentAuthorized) isEvent() {}
func (PaymentFailed) isEvent()     {}
func (UnknownEvent) isEvent()      {}

type webhookEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment *struct {
			Entity json.RawMessage `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// ParseWebhook decodes a verified webhook body. Events other than the three
// payment events come back as UnknownEvent.
func ParseWebhook(body []byte) (Event, error) {
	var env webhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedWebhook, err)
	}
	if env.Event == "" {
		return nil, fmt.Errorf("%w: missing event name", ErrMalformedWebhook)
	}

	switch env.Event {
	case EventPaymentCaptured, EventPaymentAuthorized, EventPaymentFailed:
	default:
		return UnknownEvent{Name: env.Event}, nil
	}

	if env.Payload.Payment == nil || len(env.Payload.Payment.Entity) == 0 {
		return nil, fmt.Errorf("%w: %s without payment entity", ErrMalformedWebhook, env.Event)
	}
	var p PaymentEntity
	if err := json.Unmarshal(env.Payload.Payment.Entity, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedWebhook, err)
	}
	if p.ID == "" || p.OrderID == "" {
		return nil, fmt.Errorf("%w: payment entity needs id and order_id", ErrMalformedWebhook)
	}
	p.Raw = env.Payload.Payment.Entity

	switch env.Event {
	case EventPaymentCaptured:
		return PaymentCaptured{Payment: p}, nil
	case EventPaymentAuthorized:
		return PaymentAuthorized{Payment: p}, nil
	default:
		return PaymentFailed{Payment: p}, nil
	}
}
