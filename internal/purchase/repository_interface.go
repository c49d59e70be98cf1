package purchase

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Store interface {
	InsertInTx(ctx context.Context, tx *sqlx.Tx, userID, itemID string, cost int64) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Purchase, error)
}
