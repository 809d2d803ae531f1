package domain

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlowState_HappyPath(t *testing.T) {
	path := []FlowState{
		FlowStateIdle,
		FlowStateFormValidating,
		FlowStateOrderCreating,
		FlowStatePaymentSessionCreating,
		FlowStateAwaitingGatewayRedirect,
		FlowStateVerifyingPayment,
		FlowStateCompleted,
	}
	for i := 0; i < len(path)-1; i++ {
		assert.True(t, path[i].CanTransitionTo(path[i+1]), "%s -> %s", path[i], path[i+1])
	}
}

func TestFlowState_IllegalTransitions(t *testing.T) {
	tests := []struct{ from, to FlowState }{
		{FlowStateFormValidating, FlowStatePaymentSessionCreating},
		{FlowStateOrderCreating, FlowStateCompleted},
		{FlowStateAwaitingGatewayRedirect, FlowStateCompleted},
		{FlowStateCompleted, FlowStateVerifyingPayment},
		{FlowStateFailed, FlowStateCompleted},
		{FlowStateCompleted, FlowStateIdle},
	}
	for _, tt := range tests {
		assert.False(t, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestFlowState_IsTerminal(t *testing.T) {
	assert.True(t, FlowStateCompleted.IsTerminal())
	assert.True(t, FlowStateFailed.IsTerminal())
	assert.False(t, FlowStateAwaitingGatewayRedirect.IsTerminal())
	assert.False(t, FlowStateIdle.IsTerminal())
}

func proofQuery() url.Values {
	return url.Values{
		QueryGatewayOrderID: {"order_gw1"},
		QueryPaymentID:      {"pay_1"},
		QuerySignature:      {"sig"},
	}
}

func TestParseProof(t *testing.T) {
	p, ok := ParseProof(proofQuery())
	assert.True(t, ok)
	assert.Equal(t, PaymentProof{GatewayOrderID: "order_gw1", PaymentID: "pay_1", Signature: "sig"}, p)

	q := proofQuery()
	q.Del(QuerySignature)
	_, ok = ParseProof(q)
	assert.False(t, ok)
}

func TestResume(t *testing.T) {
	tests := []struct {
		name   string
		query  url.Values
		remote *PaymentSnapshot
		want   FlowState
	}{
		{"no proof", url.Values{}, nil, FlowStateIdle},
		{"no proof ignores remote", url.Values{"foo": {"bar"}}, &PaymentSnapshot{Status: "captured"}, FlowStateIdle},
		{"proof without record", proofQuery(), nil, FlowStateVerifyingPayment},
		{"proof for created record", proofQuery(), &PaymentSnapshot{Status: "created"}, FlowStateVerifyingPayment},
		{"proof for failed record", proofQuery(), &PaymentSnapshot{Status: "failed"}, FlowStateVerifyingPayment},
		{"already captured", proofQuery(), &PaymentSnapshot{Status: "captured", PaymentID: "pay_1"}, FlowStateCompleted},
		{"captured by another payment", proofQuery(), &PaymentSnapshot{Status: "captured", PaymentID: "pay_2"}, FlowStateFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resume(tt.query, tt.remote))
		})
	}
}

func TestErrors(t *testing.T) {
	cause := errors.New("connection refused")

	ve := &ValidationError{Fields: map[string]string{"email": "x", "city": "y"}}
	assert.Equal(t, "invalid checkout form: city, email", ve.Error())

	var oce *OrderCreationError
	assert.True(t, errors.As(error(&OrderCreationError{Err: cause}), &oce))
	assert.ErrorIs(t, &PaymentGatewayError{OrderID: "o", Err: cause}, cause)
	assert.ErrorIs(t, &PaymentVerificationError{Reason: "r", Err: cause}, cause)
	assert.Equal(t, "payment verification failed: invalid signature", (&PaymentVerificationError{Reason: "invalid signature"}).Error())
}
