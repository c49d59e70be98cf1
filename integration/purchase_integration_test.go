package ledger_test

import (
	"context"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ldbrian/toughlove-ai-sub000/internal/catalog"
	"github.com/ldbrian/toughlove-ai-sub000/internal/persona"
	"github.com/ldbrian/toughlove-ai-sub000/internal/purchase"
	"github.com/ldbrian/toughlove-ai-sub000/internal/wallet"
)

func integrationCatalog(t *testing.T) *catalog.Catalog {
	c, err := catalog.Parse([]byte(`[
		{"id":"rose","name":"Red Rose","price":50,"rarity":"common",
		 "effect":{"target":"All","mood":3,"favorability":2}},
		{"id":"perfume","name":"Noir Perfume","price":800,"rarity":"rare",
		 "effect":{"target":"Rin","mood":10,"favorability":8,"buff_minutes":60}}
	]`))
	require.NoError(t, err)
	return c
}

func seedWallet(t *testing.T, db *sqlx.DB, userID string, balance int64) {
	_, err := db.Exec(`
		INSERT INTO wallets (user_id, balance, total_recharged)
		VALUES ($1, $2, 0)
		ON CONFLICT (user_id) DO UPDATE SET balance = EXCLUDED.balance
	`, userID, balance)
	require.NoError(t, err)
}

func TestPurchaseFlow_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()

	cleanLedgerTables(t, db)
	seedWallet(t, db, "u1", 120)

	svc := purchase.NewService(db, integrationCatalog(t), wallet.NewRepository(db), purchase.NewRepository(db))
	ctx := context.Background()

	newBalance, err := svc.Buy(ctx, "u1", "rose")
	require.NoError(t, err)
	assert.Equal(t, int64(70), newBalance)

	newBalance, err = svc.Buy(ctx, "u1", "rose")
	require.NoError(t, err)
	assert.Equal(t, int64(20), newBalance)

	// Third rose exceeds the remaining 20.
	_, err = svc.Buy(ctx, "u1", "rose")
	require.ErrorIs(t, err, purchase.ErrInsufficientFunds)

	history, err := svc.History(ctx, "u1", 10, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, int64(20), walletBalance(t, db, "u1"))
}

func TestConcurrentPurchases_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()

	cleanLedgerTables(t, db)
	seedWallet(t, db, "u1", 50)

	svc := purchase.NewService(db, integrationCatalog(t), wallet.NewRepository(db), purchase.NewRepository(db))

	// Two racing purchases against a balance that covers one. The row lock
	// serializes them; exactly one wins.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Buy(context.Background(), "u1", "rose")
		}(i)
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			require.ErrorIs(t, err, purchase.ErrInsufficientFunds)
			failures++
		}
	}
	assert.Equal(t, 1, failures)
	assert.Equal(t, int64(0), walletBalance(t, db, "u1"))
}

func TestItemUseFlow_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()

	cleanLedgerTables(t, db)

	svc := persona.NewService(db, integrationCatalog(t), persona.NewRepository(db))
	ctx := context.Background()

	// First use lands on defaults (mood 60, favorability 0).
	result, err := svc.UseItem(ctx, "u1", "rose", "Rin")
	require.NoError(t, err)
	require.True(t, result.Landed)

	state, err := svc.GetState(ctx, "u1", "Rin")
	require.NoError(t, err)
	assert.Equal(t, 63, state.Mood)
	assert.Equal(t, 2.0, state.Favorability)
	assert.False(t, state.BuffEndAt.Valid)

	// The perfume targets Rin and carries a buff.
	result, err = svc.UseItem(ctx, "u1", "perfume", "Rin")
	require.NoError(t, err)
	require.True(t, result.Landed)

	state, err = svc.GetState(ctx, "u1", "Rin")
	require.NoError(t, err)
	assert.Equal(t, 73, state.Mood)
	assert.Equal(t, 10.0, state.Favorability)
	assert.True(t, state.BuffEndAt.Valid)

	// Gifting the perfume to the wrong persona consumes it but changes nothing.
	result, err = svc.UseItem(ctx, "u1", "perfume", "Yuki")
	require.NoError(t, err)
	require.False(t, result.Landed)

	state, err = svc.GetState(ctx, "u1", "Yuki")
	require.NoError(t, err)
	assert.Equal(t, 60, state.Mood)
	assert.Equal(t, 0.0, state.Favorability)

	var usageCount int
	require.NoError(t, db.Get(&usageCount, "SELECT COUNT(*) FROM item_usages WHERE user_id = 'u1'"))
	assert.Equal(t, 3, usageCount)

	var missed int
	require.NoError(t, db.Get(&missed, "SELECT COUNT(*) FROM item_usages WHERE user_id = 'u1' AND landed = false"))
	assert.Equal(t, 1, missed)
}
