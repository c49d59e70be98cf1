package wallet

import "time"

// Wallet holds a user's Rin balance. Balance is the only field mutated
// under contention and is never allowed below zero.
type Wallet struct {
	UserID         string    `db:"user_id" json:"user_id"`
	Balance        int64     `db:"balance" json:"balance"`
	TotalRecharged float64   `db:"total_recharged" json:"total_recharged"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Entry is one append-only ledger row. Every balance mutation writes one.
type Entry struct {
	ID           int64     `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	Amount       int64     `db:"amount" json:"amount"`
	Kind         string    `db:"kind" json:"kind"` // recharge, purchase
	Ref          string    `db:"ref" json:"ref"`   // order_id or item_id
	BalanceAfter int64     `db:"balance_after" json:"balance_after"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

const (
	EntryKindRecharge = "recharge"
	EntryKindPurchase = "purchase"
)
