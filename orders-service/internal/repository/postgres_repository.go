package repository

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/storefront/orders-service/internal/domain"
	"github.com/fjod/storefront/orders-service/pkg/orderspb"
	"github.com/fjod/storefront/pkg/config"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const uniqueViolation = "23505"

type Repository struct {
	db *sql.DB
}

func NewRepository(cfg config.PostgresConfig) (*Repository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations() error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "orders_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("could not open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

const orderColumns = `id, user_id, cart_ref, items, total_amount, currency, status, shipping_address, payment_ref, created_at, updated_at`

func scanOrder(row scanner) (*domain.Order, error) {
	var order domain.Order
	var itemsJSON, addressJSON []byte
	if err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.CartRef,
		&itemsJSON,
		&order.TotalAmount,
		&order.Currency,
		&order.Status,
		&addressJSON,
		&order.PaymentRef,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	if err := json.Unmarshal(addressJSON, &order.ShippingAddress); err != nil {
		return nil, fmt.Errorf("unmarshal shipping address: %w", err)
	}
	return &order, nil
}

const paymentColumns = `id, order_id, gateway_order_id, gateway_payment_id, signature, amount, currency, status, raw_payload, created_at, updated_at`

func scanPayment(row scanner) (*domain.PaymentRecord, error) {
	var p domain.PaymentRecord
	if err := row.Scan(
		&p.ID,
		&p.OrderID,
		&p.GatewayOrderID,
		&p.GatewayPaymentID,
		&p.Signature,
		&p.Amount,
		&p.Currency,
		&p.Status,
		&p.RawPayload,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// jsonArg passes b to a JSONB column, or NULL when b is empty.
func jsonArg(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order) error {
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal order items: %w", err)
	}
	addressJSON, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("failed to marshal shipping address: %w", err)
	}

	query := `INSERT INTO orders (id, user_id, cart_ref, items, total_amount, currency, status, shipping_address, payment_ref)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING created_at, updated_at`

	insertErr := r.db.QueryRowContext(ctx, query,
		order.ID,
		order.UserID,
		order.CartRef,
		string(itemsJSON),
		order.TotalAmount,
		order.Currency,
		order.Status,
		string(addressJSON),
		order.PaymentRef,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if insertErr != nil {
		return fmt.Errorf("insert order: %w", insertErr)
	}
	return nil
}

func (r *Repository) GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return getOrder(ctx, r.db, id, false)
}

func getOrder(ctx context.Context, q queryer, id uuid.UUID, forUpdate bool) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	order, err := scanOrder(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}
	return order, nil
}

func (r *Repository) ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders by user id: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return orders, nil
}

func (r *Repository) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		order, err := getOrder(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if !order.Status.CanTransitionTo(status) {
			return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, order.Status, status)
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		return nil
	})
}

// CreatePaymentRecord stores a new gateway session for an order. A session
// still in status created is superseded and marked failed.
func (r *Repository) CreatePaymentRecord(ctx context.Context, rec *domain.PaymentRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.Status = domain.PaymentStatusCreated

	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := getOrder(ctx, tx, rec.OrderID, true); err != nil {
			return err
		}

		var captured bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM payments WHERE order_id = $1 AND status = 'captured')`,
			rec.OrderID).Scan(&captured)
		if err != nil {
			return fmt.Errorf("check captured payments: %w", err)
		}
		if captured {
			return ErrPaymentConflict
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE payments SET status = 'failed', updated_at = NOW() WHERE order_id = $1 AND status = 'created'`,
			rec.OrderID)
		if err != nil {
			return fmt.Errorf("supersede open sessions: %w", err)
		}

		err = tx.QueryRowContext(ctx,
			`INSERT INTO payments (id, order_id, gateway_order_id, amount, currency, status)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING created_at, updated_at`,
			rec.ID, rec.OrderID, rec.GatewayOrderID, rec.Amount, rec.Currency, rec.Status,
		).Scan(&rec.CreatedAt, &rec.UpdatedAt)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
				return ErrDuplicateSessionID
			}
			return fmt.Errorf("insert payment record: %w", err)
		}
		return nil
	})
}

// UpdatePaymentRecord moves a record to upd.Status. Capturing goes through
// CapturePayment, so captured is rejected here.
func (r *Repository) UpdatePaymentRecord(ctx context.Context, gatewayOrderID string, upd PaymentUpdate) error {
	if upd.Status == domain.PaymentStatusCaptured {
		return fmt.Errorf("%w: use CapturePayment", ErrIllegalTransition)
	}

	return r.inTx(ctx, func(tx *sql.Tx) error {
		current, err := getPaymentBy(ctx, tx, "gateway_order_id", gatewayOrderID, true)
		if err != nil {
			return err
		}
		if !current.Status.CanTransitionTo(upd.Status) {
			return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, current.Status, upd.Status)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE payments SET
			     status = $2,
			     gateway_payment_id = COALESCE(NULLIF($3, ''), gateway_payment_id),
			     signature = COALESCE(NULLIF($4, ''), signature),
			     raw_payload = COALESCE($5::jsonb, raw_payload),
			     updated_at = NOW()
			 WHERE id = $1`,
			current.ID, upd.Status, upd.PaymentID, upd.Signature, jsonArg(upd.RawPayload))
		if err != nil {
			return fmt.Errorf("update payment record: %w", err)
		}
		return nil
	})
}

// GetPaymentByOrderID returns the most recent payment attempt of an order.
func (r *Repository) GetPaymentByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.PaymentRecord, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE order_id = $1 ORDER BY created_at DESC, id LIMIT 1`

	p, err := scanPayment(r.db.QueryRowContext(ctx, query, orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query payment by order id: %w", err)
	}
	return p, nil
}

func (r *Repository) GetPaymentByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*domain.PaymentRecord, error) {
	return getPaymentBy(ctx, r.db, "gateway_order_id", gatewayOrderID, false)
}

func getPaymentBy(ctx context.Context, q queryer, column string, value any, forUpdate bool) (*domain.PaymentRecord, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE ` + column + ` = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	p, err := scanPayment(q.QueryRowContext(ctx, query, value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query payment by %s: %w", column, err)
	}
	return p, nil
}

// CapturePayment marks the payment of a gateway order captured, moves a
// pending order to processing and records an order.paid outbox event, all in
// one transaction. Capturing the same payment id again changes nothing and
// reports AlreadyCaptured.
func (r *Repository) CapturePayment(ctx context.Context, req CaptureRequest) (*CaptureResult, error) {
	var result *CaptureResult
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		// Lock order before payment, the same order CreatePaymentRecord
		// takes. A payment's order_id never changes, so the unlocked read
		// is enough to find which order to lock.
		unlocked, err := getPaymentBy(ctx, tx, "gateway_order_id", req.GatewayOrderID, false)
		if err != nil {
			return err
		}
		order, err := getOrder(ctx, tx, unlocked.OrderID, true)
		if err != nil {
			return err
		}
		payment, err := getPaymentBy(ctx, tx, "gateway_order_id", req.GatewayOrderID, true)
		if err != nil {
			return err
		}

		if payment.Status == domain.PaymentStatusCaptured {
			if payment.GatewayPaymentID != req.PaymentID {
				return fmt.Errorf("%w: session captured by payment %s", ErrPaymentConflict, payment.GatewayPaymentID)
			}
			result = &CaptureResult{Order: order, Payment: payment, AlreadyCaptured: true}
			return nil
		}
		if !payment.Status.CanTransitionTo(domain.PaymentStatusCaptured) {
			return fmt.Errorf("%w: %s -> captured", ErrIllegalTransition, payment.Status)
		}

		var otherCaptured bool
		err = tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM payments WHERE order_id = $1 AND status = 'captured' AND id <> $2)`,
			order.ID, payment.ID).Scan(&otherCaptured)
		if err != nil {
			return fmt.Errorf("check captured payments: %w", err)
		}
		if otherCaptured {
			return ErrPaymentConflict
		}

		err = tx.QueryRowContext(ctx,
			`UPDATE payments SET
			     status = 'captured',
			     gateway_payment_id = $2,
			     signature = $3,
			     raw_payload = COALESCE($4::jsonb, raw_payload),
			     updated_at = NOW()
			 WHERE id = $1
			 RETURNING updated_at`,
			payment.ID, req.PaymentID, req.Signature, jsonArg(req.RawPayload)).Scan(&payment.UpdatedAt)
		if err != nil {
			return fmt.Errorf("capture payment: %w", err)
		}
		payment.Status = domain.PaymentStatusCaptured
		payment.GatewayPaymentID = req.PaymentID
		payment.Signature = req.Signature

		// An order that has moved on (for example cancelled) keeps its
		// status; the captured payment is still recorded against it.
		next := order.Status
		if order.Status == domain.OrderStatusPending {
			next = domain.OrderStatusProcessing
		}
		err = tx.QueryRowContext(ctx,
			`UPDATE orders SET status = $2, payment_ref = $3, updated_at = NOW() WHERE id = $1 RETURNING updated_at`,
			order.ID, next, req.PaymentID).Scan(&order.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update order after capture: %w", err)
		}
		order.Status = next
		order.PaymentRef = req.PaymentID

		payload, err := json.Marshal(orderPaidEvent(order, req.PaymentID, payment.UpdatedAt))
		if err != nil {
			return fmt.Errorf("marshal order paid event: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO outbox_events (aggregate_id, event_type, payload) VALUES ($1, $2, $3)`,
			order.ID.String(), orderspb.EventTypeOrderPaid, string(payload))
		if err != nil {
			return fmt.Errorf("insert outbox event: %w", err)
		}

		result = &CaptureResult{Order: order, Payment: payment}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func orderPaidEvent(order *domain.Order, paymentID string, paidAt time.Time) orderspb.OrderPaidEvent {
	lines := make([]orderspb.PaidLine, len(order.Items))
	for i, item := range order.Items {
		lines[i] = orderspb.PaidLine{ProductId: item.ProductID, Quantity: int32(item.Quantity)}
	}
	return orderspb.OrderPaidEvent{
		OrderId:     order.ID.String(),
		UserId:      order.UserID,
		CartRef:     order.CartRef,
		Items:       lines,
		TotalAmount: order.TotalAmount,
		Currency:    order.Currency,
		PaymentId:   paymentID,
		PaidAt:      paidAt.UTC(),
	}
}

func (r *Repository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, aggregate_id, event_type, payload, created_at
		 FROM outbox_events WHERE processed_at IS NULL ORDER BY id LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query unprocessed events: %w", err)
	}
	defer rows.Close()

	var events []*domain.OutboxEvent
	for rows.Next() {
		var e domain.OutboxEvent
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return events, nil
}

func (r *Repository) MarkEventAsProcessed(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE outbox_events SET processed_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark event processed: %w", err)
	}
	return nil
}

func (r *Repository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
