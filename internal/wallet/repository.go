package wallet

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var (
	ErrInsufficientFunds = errors.New("insufficient balance")
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// GetBalance returns the current balance, or 0 when the wallet does not
// exist yet (wallets are created lazily on first credit).
func (r *Repository) GetBalance(ctx context.Context, userID string) (int64, error) {
	var balance int64
	err := r.db.GetContext(ctx, &balance, `SELECT balance FROM wallets WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// lockWallet selects the wallet row FOR UPDATE inside tx. This is the
// serialization point for every balance mutation: a second transaction on
// the same wallet blocks here until the first commits or rolls back.
func (r *Repository) lockWallet(ctx context.Context, tx *sqlx.Tx, userID string) (*Wallet, error) {
	w := &Wallet{}
	err := tx.QueryRowxContext(ctx,
		`SELECT user_id, balance, total_recharged, created_at, updated_at
		 FROM wallets
		 WHERE user_id = $1
		 FOR UPDATE`,
		userID,
	).StructScan(w)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// CreditInTx adds rin to the wallet and accumulates the paid amount into
// total_recharged, creating the wallet if this is the first credit. Must be
// called inside the settlement transaction so the credit commits or rolls
// back together with the order-status write.
func (r *Repository) CreditInTx(ctx context.Context, tx *sqlx.Tx, userID string, rin int64, amountPaid float64, ref string) (int64, error) {
	w, err := r.lockWallet(ctx, tx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO wallets (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`,
			userID,
		)
		if err != nil {
			return 0, err
		}
		w, err = r.lockWallet(ctx, tx, userID)
	}
	if err != nil {
		return 0, err
	}

	newBalance := w.Balance + rin
	_, err = tx.ExecContext(ctx,
		`UPDATE wallets
		 SET balance = $1, total_recharged = total_recharged + $2, updated_at = NOW()
		 WHERE user_id = $3`,
		newBalance, amountPaid, userID,
	)
	if err != nil {
		return 0, err
	}

	if err := r.insertEntry(ctx, tx, userID, rin, EntryKindRecharge, ref, newBalance); err != nil {
		return 0, err
	}

	return newBalance, nil
}

// DebitInTx subtracts amount from the wallet, failing with
// ErrInsufficientFunds before any write when the balance does not cover it.
// A missing wallet is an empty wallet.
func (r *Repository) DebitInTx(ctx context.Context, tx *sqlx.Tx, userID string, amount int64, ref string) (int64, error) {
	w, err := r.lockWallet(ctx, tx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrInsufficientFunds
	}
	if err != nil {
		return 0, err
	}

	newBalance := w.Balance - amount
	if newBalance < 0 {
		return 0, ErrInsufficientFunds
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE wallets SET balance = $1, updated_at = NOW() WHERE user_id = $2`,
		newBalance, userID,
	)
	if err != nil {
		return 0, err
	}

	if err := r.insertEntry(ctx, tx, userID, -amount, EntryKindPurchase, ref, newBalance); err != nil {
		return 0, err
	}

	return newBalance, nil
}

func (r *Repository) insertEntry(ctx context.Context, tx *sqlx.Tx, userID string, amount int64, kind, ref string, balanceAfter int64) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO wallet_entries (user_id, amount, kind, ref, balance_after)
		 VALUES ($1, $2, $3, $4, $5)`,
		userID, amount, kind, ref, balanceAfter,
	)
	return err
}

// GetEntries returns the newest ledger entries for a user.
func (r *Repository) GetEntries(ctx context.Context, userID string, limit, offset int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	entries := []Entry{}
	err := r.db.SelectContext(ctx, &entries, `
		SELECT id, user_id, amount, kind, ref, balance_after, created_at
		FROM wallet_entries
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	return entries, nil
}
