package persona

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// GetForUpdateInTx locks the state row for the (user, persona) pair. The
// bool reports whether a row existed; a missing row is not an error, the
// caller starts from the defaults.
func (r *Repository) GetForUpdateInTx(ctx context.Context, tx *sqlx.Tx, userID, personaName string) (*State, bool, error) {
	s := &State{}
	err := tx.QueryRowxContext(ctx, `
		SELECT user_id, persona, mood, favorability, buff_end_at, created_at, updated_at
		FROM persona_states
		WHERE user_id = $1 AND persona = $2
		FOR UPDATE
	`, userID, personaName).StructScan(s)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}

// UpsertInTx writes the new state for the pair, creating the row on first
// interaction.
func (r *Repository) UpsertInTx(ctx context.Context, tx *sqlx.Tx, userID, personaName string, mood int, favorability float64, buffEndAt sql.NullTime) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO persona_states (user_id, persona, mood, favorability, buff_end_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, persona) DO UPDATE
		SET mood = EXCLUDED.mood,
		    favorability = EXCLUDED.favorability,
		    buff_end_at = EXCLUDED.buff_end_at,
		    updated_at = NOW()
	`, userID, personaName, mood, favorability, buffEndAt)
	return err
}

// InsertUsageInTx appends the usage-log row.
func (r *Repository) InsertUsageInTx(ctx context.Context, tx *sqlx.Tx, userID, itemID, targetPersona string, landed bool) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO item_usages (user_id, item_id, target_persona, landed) VALUES ($1, $2, $3, $4)`,
		userID, itemID, targetPersona, landed,
	)
	return err
}

// GetState reads the current state without locking. The chat app polls
// this when assembling prompts.
func (r *Repository) GetState(ctx context.Context, userID, personaName string) (*State, error) {
	s := &State{}
	err := r.db.GetContext(ctx, s, `
		SELECT user_id, persona, mood, favorability, buff_end_at, created_at, updated_at
		FROM persona_states
		WHERE user_id = $1 AND persona = $2
	`, userID, personaName)
	if errors.Is(err, sql.ErrNoRows) {
		return &State{
			UserID:       userID,
			Persona:      personaName,
			Mood:         defaultMood,
			Favorability: defaultFavorability,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
