package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrEmptyCart         = errors.New("cart is empty, nothing to checkout")
	ErrIllegalTransition = errors.New("illegal transition of checkout state")
	ErrOrderNotFound     = errors.New("order not found")
)

// ValidationError maps form fields to user facing messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return "invalid checkout form: " + strings.Join(names, ", ")
}

type AuthenticationRequiredError struct {
	ReturnTo string
}

func (e *AuthenticationRequiredError) Error() string {
	return "authentication required"
}

type OrderCreationError struct {
	Err error
}

func (e *OrderCreationError) Error() string {
	return fmt.Sprintf("order creation failed: %v", e.Err)
}

func (e *OrderCreationError) Unwrap() error { return e.Err }

// PaymentGatewayError leaves OrderID pending so the payment can be retried.
type PaymentGatewayError struct {
	OrderID string
	Err     error
}

func (e *PaymentGatewayError) Error() string {
	return fmt.Sprintf("payment session for order %s failed: %v", e.OrderID, e.Err)
}

func (e *PaymentGatewayError) Unwrap() error { return e.Err }

type PaymentVerificationError struct {
	OrderID string
	Reason  string
	Err     error
}

func (e *PaymentVerificationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("payment verification failed: %s: %v", e.Reason, e.Err)
	}
	return "payment verification failed: " + e.Reason
}

func (e *PaymentVerificationError) Unwrap() error { return e.Err }
