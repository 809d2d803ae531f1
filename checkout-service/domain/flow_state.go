package domain

type FlowState string

const (
	FlowStateIdle                    FlowState = "IDLE"
	FlowStateFormValidating          FlowState = "FORM_VALIDATING"
	FlowStateOrderCreating           FlowState = "ORDER_CREATING"
	FlowStatePaymentSessionCreating  FlowState = "PAYMENT_SESSION_CREATING"
	FlowStateAwaitingGatewayRedirect FlowState = "AWAITING_GATEWAY_REDIRECT"
	FlowStateVerifyingPayment        FlowState = "VERIFYING_PAYMENT"
	FlowStateCompleted               FlowState = "COMPLETED"
	FlowStateFailed                  FlowState = "FAILED"
)

var transitions = map[FlowState][]FlowState{
	// Idle reaches PaymentSessionCreating on a retry for an existing order and
	// VerifyingPayment when a redirect carries payment proof.
	FlowStateIdle:                    {FlowStateFormValidating, FlowStatePaymentSessionCreating, FlowStateVerifyingPayment, FlowStateCompleted, FlowStateFailed},
	FlowStateFormValidating:          {FlowStateIdle, FlowStateOrderCreating},
	FlowStateOrderCreating:           {FlowStatePaymentSessionCreating, FlowStateFailed},
	FlowStatePaymentSessionCreating:  {FlowStateAwaitingGatewayRedirect, FlowStateFailed},
	FlowStateAwaitingGatewayRedirect: {FlowStateVerifyingPayment},
	FlowStateVerifyingPayment:        {FlowStateCompleted, FlowStateFailed},
}

func (s FlowState) CanTransitionTo(next FlowState) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s FlowState) IsTerminal() bool {
	return s == FlowStateCompleted || s == FlowStateFailed
}

func (s FlowState) String() string {
	return string(s)
}
