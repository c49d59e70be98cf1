package purchase

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// InsertInTx appends the ownership row inside the purchase transaction, so
// the debit and the ownership record commit together or not at all.
func (r *Repository) InsertInTx(ctx context.Context, tx *sqlx.Tx, userID, itemID string, cost int64) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO purchases (user_id, item_id, cost) VALUES ($1, $2, $3)`,
		userID, itemID, cost,
	)
	return err
}

// ListByUser returns the user's purchases, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Purchase, error) {
	if limit <= 0 {
		limit = 100
	}

	purchases := []Purchase{}
	err := r.db.SelectContext(ctx, &purchases, `
		SELECT id, user_id, item_id, cost, created_at
		FROM purchases
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	return purchases, nil
}
