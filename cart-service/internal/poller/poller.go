package poller

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fjod/storefront/cart-service/internal/domain"
	"github.com/fjod/storefront/orders-service/pkg/orderspb"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// CartClearer clears a cart when it still holds exactly the given lines.
type CartClearer interface {
	ClearIfMatches(ctx context.Context, sessionKey string, lines []domain.Line) (bool, error)
}

// MessageReader fetches without committing; offsets are committed by the
// poller once a message has been handled.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const defaultRetryDelay = 2 * time.Second

// Poller clears the cart an order was placed from once the order is paid.
// The cart is left alone if the shopper changed it after checking out.
type Poller struct {
	carts  CartClearer
	reader MessageReader
	log    *zap.Logger

	// pending is a fetched message whose cart clear failed. It is retried
	// before anything new is fetched.
	pending    *kafka.Message
	retryDelay time.Duration
}

func NewPoller(carts CartClearer, log *zap.Logger, groupID string, brokers ...string) *Poller {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    orderspb.OrderEventsTopic,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
	return &Poller{carts: carts, reader: reader, log: log, retryDelay: defaultRetryDelay}
}

func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		p.handleNext(ctx)
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		p.log.Warn("error closing reader", zap.Error(err))
	}
}

func (p *Poller) handleNext(ctx context.Context) {
	m, ok := p.next(ctx)
	if !ok {
		return
	}

	if err := p.handle(ctx, m); err != nil {
		p.log.Error("failed to clear cart, will retry",
			zap.Int64("offset", m.Offset), zap.Error(err))
		p.pending = &m
		p.wait(ctx)
		return
	}
	p.pending = nil

	if err := p.reader.CommitMessages(ctx, m); err != nil && !errors.Is(err, context.Canceled) {
		p.log.Warn("error committing message", zap.Int64("offset", m.Offset), zap.Error(err))
	}
}

func (p *Poller) next(ctx context.Context) (kafka.Message, bool) {
	if p.pending != nil {
		return *p.pending, true
	}
	m, err := p.reader.FetchMessage(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			p.log.Warn("error reading message", zap.Error(err))
		}
		return kafka.Message{}, false
	}
	return m, true
}

// handle returns an error only when the message must be retried. Messages
// that are not order.paid events or cannot be parsed are skipped.
func (p *Poller) handle(ctx context.Context, m kafka.Message) error {
	if eventType(m) != orderspb.EventTypeOrderPaid {
		return nil
	}

	var evt orderspb.OrderPaidEvent
	if err := json.Unmarshal(m.Value, &evt); err != nil {
		p.log.Warn("error parsing message", zap.Int64("offset", m.Offset), zap.Error(err))
		return nil
	}
	if evt.CartRef == "" {
		p.log.Debug("order has no cart reference", zap.String("order_id", evt.OrderId))
		return nil
	}

	lines := make([]domain.Line, len(evt.Items))
	for i, it := range evt.Items {
		lines[i] = domain.Line{ProductID: it.ProductId, Quantity: int(it.Quantity)}
	}

	cleared, err := p.carts.ClearIfMatches(ctx, evt.CartRef, lines)
	if err != nil {
		return err
	}
	p.log.Info("order paid",
		zap.String("order_id", evt.OrderId),
		zap.Bool("cart_cleared", cleared))
	return nil
}

func (p *Poller) wait(ctx context.Context) {
	if p.retryDelay <= 0 {
		return
	}
	t := time.NewTimer(p.retryDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func eventType(m kafka.Message) string {
	for _, h := range m.Headers {
		if h.Key == orderspb.EventTypeHeader {
			return string(h.Value)
		}
	}
	return ""
}
