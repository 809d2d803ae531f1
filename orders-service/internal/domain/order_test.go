package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusPending, OrderStatusProcessing, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusProcessing, OrderStatusPending, false},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusProcessing, false},
		{OrderStatusPending, OrderStatusPending, true},
		{OrderStatus("bogus"), OrderStatus("bogus"), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestPaymentStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, PaymentStatusCreated.CanTransitionTo(PaymentStatusCaptured))
	assert.True(t, PaymentStatusFailed.CanTransitionTo(PaymentStatusCaptured))
	assert.True(t, PaymentStatusCaptured.CanTransitionTo(PaymentStatusCaptured))
	assert.False(t, PaymentStatusCaptured.CanTransitionTo(PaymentStatusFailed))
	assert.False(t, PaymentStatusCaptured.CanTransitionTo(PaymentStatusAuthorized))
	assert.False(t, PaymentStatusRefunded.CanTransitionTo(PaymentStatusCaptured))
}

func TestOrderLine_Total(t *testing.T) {
	l := OrderLine{UnitPrice: decimal.RequireFromString("12.50"), Quantity: 3}
	assert.True(t, decimal.RequireFromString("37.5").Equal(l.Total()))
}
