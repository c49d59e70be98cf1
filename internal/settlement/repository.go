package settlement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var (
	ErrOrderNotFound = errors.New("order not found")
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create records a checkout intent in status CREATED. Called by the chat
// app's checkout flow before it hands the user to the payment provider.
func (r *Repository) Create(ctx context.Context, orderID, userID string, amount float64, rinQuantity int64, notifyEmail string) (*Order, error) {
	o := &Order{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO orders (order_id, user_id, amount, rin_quantity, status, notify_email)
		VALUES ($1, $2, $3, $4, 'CREATED', NULLIF($5, ''))
		RETURNING order_id, user_id, amount, rin_quantity, status, notify_email, paid_at, created_at, updated_at
	`, orderID, userID, amount, rinQuantity, notifyEmail).StructScan(o)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return o, nil
}

// GetForUpdate loads the order with an exclusive row lock. Concurrent
// webhook deliveries for the same order serialize here; deliveries for
// different orders do not interfere.
func (r *Repository) GetForUpdate(ctx context.Context, tx *sqlx.Tx, orderID string) (*Order, error) {
	o := &Order{}
	err := tx.QueryRowxContext(ctx, `
		SELECT order_id, user_id, amount, rin_quantity, status, notify_email, paid_at, created_at, updated_at
		FROM orders
		WHERE order_id = $1
		FOR UPDATE
	`, orderID).StructScan(o)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

// MarkPaid moves the order to PAID and stamps paid_at. Must run inside the
// same transaction as the wallet credit.
func (r *Repository) MarkPaid(ctx context.Context, tx *sqlx.Tx, orderID string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET status = 'PAID', paid_at = NOW(), updated_at = NOW()
		WHERE order_id = $1
	`, orderID)
	return err
}

func (r *Repository) MarkFailed(ctx context.Context, tx *sqlx.Tx, orderID string) error {
	return r.setStatus(ctx, tx, orderID, StatusFailed)
}

func (r *Repository) MarkScamAttempt(ctx context.Context, tx *sqlx.Tx, orderID string) error {
	return r.setStatus(ctx, tx, orderID, StatusScamAttempt)
}

func (r *Repository) setStatus(ctx context.Context, tx *sqlx.Tx, orderID string, status Status) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE order_id = $2
	`, status, orderID)
	return err
}

// Get loads an order without locking. Used by the order-status endpoint.
func (r *Repository) Get(ctx context.Context, orderID string) (*Order, error) {
	o := &Order{}
	err := r.db.GetContext(ctx, o, `
		SELECT order_id, user_id, amount, rin_quantity, status, notify_email, paid_at, created_at, updated_at
		FROM orders
		WHERE order_id = $1
	`, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}
