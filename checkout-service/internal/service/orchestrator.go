package service

import (
	"context"
	"net/url"

	d "github.com/fjod/storefront/checkout-service/domain"
	"github.com/fjod/storefront/checkout-service/internal/validation"
	"github.com/fjod/storefront/pkg/logger"
	"go.uber.org/zap"
)

const checkoutPath = "/checkout"

type Config struct {
	Currency    string
	CallbackURL string
}

// Orchestrator drives checkout attempts. It keeps no state between calls:
// everything needed to resume lives in the redirect query and in the orders
// service.
type Orchestrator struct {
	cart      *CartHandler
	orders    *OrdersHandler
	payment   *PaymentHandler
	validator *validation.Validator
	cfg       Config
	log       *zap.Logger
}

func NewOrchestrator(cart *CartHandler, orders *OrdersHandler, payment *PaymentHandler, v *validation.Validator, cfg Config, log *zap.Logger) *Orchestrator {
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	return &Orchestrator{
		cart:      cart,
		orders:    orders,
		payment:   payment,
		validator: v,
		cfg:       cfg,
		log:       log,
	}
}

// Submit validates the form, places an order from the frozen cart and opens a
// payment session for it.
func (o *Orchestrator) Submit(ctx context.Context, session d.Session, form d.CheckoutForm) (*d.Attempt, error) {
	log := logger.WithContext(ctx, o.log).With(zap.String("cart_key", session.CartKey))
	f := newFlow(log)

	if err := f.to(d.FlowStateFormValidating); err != nil {
		return nil, err
	}
	if err := o.validator.Validate(form); err != nil {
		_ = f.to(d.FlowStateIdle)
		return nil, err
	}
	if session.User == nil {
		_ = f.to(d.FlowStateIdle)
		return nil, &d.AuthenticationRequiredError{ReturnTo: checkoutPath}
	}

	if err := f.to(d.FlowStateOrderCreating); err != nil {
		return nil, err
	}
	snapshot, err := o.snapshotCart(ctx, session.CartKey)
	if err != nil {
		return nil, f.fail(&d.OrderCreationError{Err: err})
	}
	if snapshot.IsEmpty() {
		return nil, f.fail(d.ErrEmptyCart)
	}
	orderID, err := o.createOrder(ctx, session.User.UserID, snapshot, form)
	if err != nil {
		return nil, f.fail(&d.OrderCreationError{Err: err})
	}
	log = log.With(zap.String("order_id", orderID))
	f.log = log

	attempt, err := o.openPayment(ctx, f, session.User.UserID, orderID, d.Prefill{
		Name:    form.Name,
		Email:   form.Email,
		Contact: form.Phone,
	})
	if err != nil {
		return nil, err
	}
	log.Info("checkout handed to gateway", zap.String("session_id", attempt.Descriptor.SessionID))
	return attempt, nil
}

// Retry opens a fresh payment session for an order that is still pending.
func (o *Orchestrator) Retry(ctx context.Context, session d.Session, orderID string) (*d.Attempt, error) {
	log := logger.WithContext(ctx, o.log).With(zap.String("order_id", orderID))
	if session.User == nil {
		return nil, &d.AuthenticationRequiredError{ReturnTo: checkoutPath}
	}

	order, err := o.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserId != session.User.UserID {
		log.Warn("retry requested for foreign order", zap.String("user_id", session.User.UserID))
		return nil, d.ErrOrderNotFound
	}

	var prefill d.Prefill
	if a := order.ShippingAddress; a != nil {
		prefill = d.Prefill{Name: a.Name, Email: a.Email, Contact: a.Phone}
	}
	return o.openPayment(ctx, newFlow(log), session.User.UserID, orderID, prefill)
}

func (o *Orchestrator) openPayment(ctx context.Context, f *flow, userID, orderID string, prefill d.Prefill) (*d.Attempt, error) {
	if err := f.to(d.FlowStatePaymentSessionCreating); err != nil {
		return nil, err
	}
	desc, err := o.createSession(ctx, orderID, userID)
	if err != nil {
		return nil, f.fail(&d.PaymentGatewayError{OrderID: orderID, Err: err})
	}
	if err := f.to(d.FlowStateAwaitingGatewayRedirect); err != nil {
		return nil, err
	}
	return &d.Attempt{
		State:       f.state,
		OrderID:     orderID,
		Descriptor:  desc,
		Prefill:     prefill,
		CallbackURL: o.cfg.CallbackURL,
	}, nil
}

// Verify checks the payment proof on the trusted backend and clears the cart
// on a fresh capture. A replayed proof completes without touching the cart.
func (o *Orchestrator) Verify(ctx context.Context, session d.Session, proof d.PaymentProof) (*d.Result, error) {
	log := logger.WithContext(ctx, o.log).With(
		zap.String("cart_key", session.CartKey),
		zap.String("gateway_order_id", proof.GatewayOrderID))
	f := newFlow(log)
	if err := f.to(d.FlowStateVerifyingPayment); err != nil {
		return nil, err
	}
	return o.verify(ctx, f, session, proof, "")
}

// Resume rebuilds the flow after a redirect back from the gateway.
func (o *Orchestrator) Resume(ctx context.Context, session d.Session, query url.Values) (*d.Result, error) {
	log := logger.WithContext(ctx, o.log).With(zap.String("cart_key", session.CartKey))
	f := newFlow(log)

	proof, ok := d.ParseProof(query)
	if !ok {
		return &d.Result{State: d.FlowStateIdle}, nil
	}
	f.log = log.With(zap.String("gateway_order_id", proof.GatewayOrderID))

	remote := o.lookupPayment(ctx, f.log, proof.GatewayOrderID)
	var orderID string
	if remote != nil {
		orderID = remote.OrderID
	}

	switch next := d.Resume(query, remote); next {
	case d.FlowStateCompleted:
		if err := f.to(next); err != nil {
			return nil, err
		}
		f.log.Info("payment already captured", zap.String("order_id", orderID))
		return &d.Result{State: next, OrderID: orderID, AlreadyCaptured: true}, nil
	case d.FlowStateFailed:
		return nil, f.fail(&d.PaymentVerificationError{
			OrderID: orderID,
			Reason:  "payment session already captured by another payment",
		})
	case d.FlowStateVerifyingPayment:
		if err := f.to(next); err != nil {
			return nil, err
		}
		return o.verify(ctx, f, session, proof, orderID)
	default:
		return &d.Result{State: next}, nil
	}
}

func (o *Orchestrator) verify(ctx context.Context, f *flow, session d.Session, proof d.PaymentProof, orderID string) (*d.Result, error) {
	resp, err := o.verifyPayment(ctx, proof)
	if err != nil {
		return nil, f.fail(&d.PaymentVerificationError{OrderID: orderID, Reason: verificationReason(err), Err: err})
	}

	res := &d.Result{OrderID: resp.OrderId, AlreadyCaptured: resp.AlreadyCaptured}
	cartKey := session.CartKey
	if resp.Order != nil {
		res.OrderStatus = resp.Order.Status
		if resp.Order.CartRef != "" {
			cartKey = resp.Order.CartRef
		}
	}

	if !resp.AlreadyCaptured && cartKey != "" {
		if err := o.clearCart(ctx, cartKey); err != nil {
			f.log.Warn("payment captured but cart not cleared", zap.String("order_id", resp.OrderId), zap.Error(err))
		} else {
			res.CartCleared = true
		}
	}

	if err := f.to(d.FlowStateCompleted); err != nil {
		return nil, err
	}
	res.State = f.state
	f.log.Info("checkout completed",
		zap.String("order_id", resp.OrderId),
		zap.Bool("already_captured", resp.AlreadyCaptured),
		zap.Bool("cart_cleared", res.CartCleared))
	return res, nil
}
