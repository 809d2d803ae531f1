package service

import (
	"fmt"

	d "github.com/fjod/storefront/checkout-service/domain"
	"go.uber.org/zap"
)

// flow tracks one checkout attempt through its states.
type flow struct {
	state d.FlowState
	log   *zap.Logger
}

func newFlow(log *zap.Logger) *flow {
	return &flow{state: d.FlowStateIdle, log: log}
}

func (f *flow) to(next d.FlowState) error {
	if !f.state.CanTransitionTo(next) {
		f.log.Error("illegal checkout transition", zap.Stringer("from", f.state), zap.Stringer("to", next))
		return fmt.Errorf("%w: %s -> %s", d.ErrIllegalTransition, f.state, next)
	}
	f.log.Debug("checkout transition", zap.Stringer("from", f.state), zap.Stringer("to", next))
	f.state = next
	return nil
}

// fail moves to Failed when allowed and returns err unchanged.
func (f *flow) fail(err error) error {
	if f.state.CanTransitionTo(d.FlowStateFailed) {
		f.state = d.FlowStateFailed
	}
	f.log.Warn("checkout failed", zap.Error(err))
	return err
}
