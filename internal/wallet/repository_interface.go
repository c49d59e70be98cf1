package wallet

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Store interface {
	GetBalance(ctx context.Context, userID string) (int64, error)
	CreditInTx(ctx context.Context, tx *sqlx.Tx, userID string, rin int64, amountPaid float64, ref string) (int64, error)
	DebitInTx(ctx context.Context, tx *sqlx.Tx, userID string, amount int64, ref string) (int64, error)
	GetEntries(ctx context.Context, userID string, limit, offset int) ([]Entry, error)
}
