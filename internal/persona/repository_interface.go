package persona

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

type Store interface {
	GetForUpdateInTx(ctx context.Context, tx *sqlx.Tx, userID, personaName string) (*State, bool, error)
	UpsertInTx(ctx context.Context, tx *sqlx.Tx, userID, personaName string, mood int, favorability float64, buffEndAt sql.NullTime) error
	InsertUsageInTx(ctx context.Context, tx *sqlx.Tx, userID, itemID, targetPersona string, landed bool) error
	GetState(ctx context.Context, userID, personaName string) (*State, error)
}
