package domain

import "github.com/shopspring/decimal"

// CheckoutForm is the contact and shipping data the shopper submits.
type CheckoutForm struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,loose_email"`
	Phone      string `json:"phone"`
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

type Identity struct {
	UserID string
	Email  string
	Name   string
	Phone  string
}

// Session identifies the shopper driving a checkout. User is nil for
// anonymous visitors.
type Session struct {
	CartKey string
	User    *Identity
}

// OrderLine is a cart line frozen at submission time.
type OrderLine struct {
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

type CartSnapshot struct {
	CartRef  string
	Lines    []OrderLine
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

func (s CartSnapshot) IsEmpty() bool {
	return len(s.Lines) == 0
}

// Descriptor is what the hosted checkout needs to collect the payment.
// Amount is in minor currency units.
type Descriptor struct {
	SessionID string
	Amount    int64
	Currency  string
	Key       string
}

type Prefill struct {
	Name    string
	Email   string
	Contact string
}

// Attempt is a checkout handed over to the gateway.
type Attempt struct {
	State       FlowState
	OrderID     string
	Descriptor  Descriptor
	Prefill     Prefill
	CallbackURL string
}

// Result is the outcome of verifying or resuming a payment.
type Result struct {
	State           FlowState
	OrderID         string
	OrderStatus     string
	AlreadyCaptured bool
	CartCleared     bool
}
