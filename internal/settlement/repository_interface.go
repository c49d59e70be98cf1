package settlement

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type OrderStore interface {
	Create(ctx context.Context, orderID, userID string, amount float64, rinQuantity int64, notifyEmail string) (*Order, error)
	GetForUpdate(ctx context.Context, tx *sqlx.Tx, orderID string) (*Order, error)
	MarkPaid(ctx context.Context, tx *sqlx.Tx, orderID string) error
	MarkFailed(ctx context.Context, tx *sqlx.Tx, orderID string) error
	MarkScamAttempt(ctx context.Context, tx *sqlx.Tx, orderID string) error
	Get(ctx context.Context, orderID string) (*Order, error)
}

// ReceiptQueue is the post-settlement notification hook. Satisfied by
// receipt.Service; settlement only needs the one method.
type ReceiptQueue interface {
	QueueRechargeReceipt(ctx context.Context, email, orderID string, rin int64, amountPaid float64) error
}
