package purchase

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/ldbrian/toughlove-ai-sub000/internal/catalog"
	"github.com/ldbrian/toughlove-ai-sub000/internal/logger"
	"github.com/ldbrian/toughlove-ai-sub000/internal/metrics"
	"github.com/ldbrian/toughlove-ai-sub000/internal/wallet"
)

var (
	ErrItemNotFound = errors.New("item not found")
	// ErrInsufficientFunds re-exports the wallet sentinel so handlers only
	// import this package.
	ErrInsufficientFunds = wallet.ErrInsufficientFunds
)

type Service struct {
	db        *sqlx.DB
	items     *catalog.Catalog
	wallets   wallet.Store
	purchases Store
}

func NewService(db *sqlx.DB, items *catalog.Catalog, wallets wallet.Store, purchases Store) *Service {
	return &Service{db: db, items: items, wallets: wallets, purchases: purchases}
}

// Buy debits the item price from the user's wallet and appends the
// ownership row, atomically. An unknown item fails before any transaction
// is opened. Two concurrent purchases against one wallet serialize on the
// wallet row lock, so the second observes the decremented balance and
// fails cleanly instead of overdrawing.
func (s *Service) Buy(ctx context.Context, userID, itemID string) (int64, error) {
	item, ok := s.items.Get(itemID)
	if !ok {
		metrics.RecordPurchase("unknown_item")
		return 0, ErrItemNotFound
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	newBalance, err := s.wallets.DebitInTx(ctx, tx, userID, item.Price, item.ID)
	if err != nil {
		if errors.Is(err, wallet.ErrInsufficientFunds) {
			metrics.RecordPurchase("insufficient_funds")
		}
		return 0, err
	}

	if err := s.purchases.InsertInTx(ctx, tx, userID, item.ID, item.Price); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	logger.Info("item purchased",
		"user_id", userID, "item_id", item.ID, "cost", item.Price, "balance", newBalance)
	metrics.RecordPurchase("ok")
	metrics.RinDebitedTotal.Add(float64(item.Price))

	return newBalance, nil
}

// History returns the user's purchase log.
func (s *Service) History(ctx context.Context, userID string, limit, offset int) ([]Purchase, error) {
	return s.purchases.ListByUser(ctx, userID, limit, offset)
}
