package purchase

import "time"

// Purchase is one append-only ownership row. Never mutated or deleted; the
// client rebuilds its inventory mirror from this log.
type Purchase struct {
	ID        int64     `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	ItemID    string    `db:"item_id" json:"item_id"`
	Cost      int64     `db:"cost" json:"cost"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
