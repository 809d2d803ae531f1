package domain

import "net/url"

const (
	QueryGatewayOrderID = "razorpay_order_id"
	QueryPaymentID      = "razorpay_payment_id"
	QuerySignature      = "razorpay_signature"
)

// PaymentProof is what the gateway hands back after a successful payment.
type PaymentProof struct {
	GatewayOrderID string
	PaymentID      string
	Signature      string
}

// ParseProof extracts the proof from a redirect query. All three parameters
// must be present.
func ParseProof(q url.Values) (PaymentProof, bool) {
	p := PaymentProof{
		GatewayOrderID: q.Get(QueryGatewayOrderID),
		PaymentID:      q.Get(QueryPaymentID),
		Signature:      q.Get(QuerySignature),
	}
	if p.GatewayOrderID == "" || p.PaymentID == "" || p.Signature == "" {
		return PaymentProof{}, false
	}
	return p, true
}

// PaymentSnapshot is the persisted payment record a redirect refers to.
type PaymentSnapshot struct {
	OrderID        string
	GatewayOrderID string
	PaymentID      string
	Status         string
}

// Resume decides where a checkout continues after a full page load. Only the
// query and the remote record are consulted.
func Resume(q url.Values, remote *PaymentSnapshot) FlowState {
	proof, ok := ParseProof(q)
	if !ok {
		return FlowStateIdle
	}
	if remote == nil || remote.Status != "captured" {
		return FlowStateVerifyingPayment
	}
	if remote.PaymentID == proof.PaymentID {
		return FlowStateCompleted
	}
	return FlowStateFailed
}
