package persona

import (
	"database/sql"
	"time"
)

// State is the per-(user, persona) emotional record the chat prompt
// builder reads. Mood and favorability live in [0, 100]; favorability
// keeps one decimal of precision.
type State struct {
	UserID       string       `db:"user_id" json:"user_id"`
	Persona      string       `db:"persona" json:"persona"`
	Mood         int          `db:"mood" json:"mood"`
	Favorability float64      `db:"favorability" json:"favorability"`
	BuffEndAt    sql.NullTime `db:"buff_end_at" json:"buff_end_at,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

const (
	defaultMood         = 60
	defaultFavorability = 0
)

// Usage is one append-only item-use row. Inserted for every use, including
// gifts that target a different persona and therefore change no state.
type Usage struct {
	ID            int64     `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"user_id"`
	ItemID        string    `db:"item_id" json:"item_id"`
	TargetPersona string    `db:"target_persona" json:"target_persona"`
	Landed        bool      `db:"landed" json:"landed"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// UseResult reports what a single item use did.
type UseResult struct {
	Landed    bool    `json:"landed"`
	MoodBoost int     `json:"moodBoost"`
	FavBoost  float64 `json:"favBoost"`
	Message   string  `json:"message"`
}
