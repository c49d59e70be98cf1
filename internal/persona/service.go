package persona

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ldbrian/toughlove-ai-sub000/internal/catalog"
	"github.com/ldbrian/toughlove-ai-sub000/internal/logger"
	"github.com/ldbrian/toughlove-ai-sub000/internal/metrics"
)

var (
	ErrItemNotFound = errors.New("item not found")
)

type Service struct {
	db    *sqlx.DB
	items *catalog.Catalog
	repo  Store
}

func NewService(db *sqlx.DB, items *catalog.Catalog, repo Store) *Service {
	return &Service{db: db, items: items, repo: repo}
}

func clampMood(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// clampFavorability bounds to [0, 100] and keeps one decimal.
func clampFavorability(v float64) float64 {
	v = math.Round(v*10) / 10
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// UseItem applies the item's effect to the target persona. The usage-log
// insert and the state upsert share one transaction: a use is never
// recorded without its state change being durable, or vice versa. An item
// aimed at a different persona is still consumed (the usage row is
// written) but changes nothing — the gift just doesn't land.
func (s *Service) UseItem(ctx context.Context, userID, itemID, targetPersona string) (*UseResult, error) {
	item, ok := s.items.Get(itemID)
	if !ok {
		return nil, ErrItemNotFound
	}
	effect := item.Effect

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	landed := effect.MatchesTarget(targetPersona)

	if err := s.repo.InsertUsageInTx(ctx, tx, userID, item.ID, targetPersona, landed); err != nil {
		return nil, err
	}

	result := &UseResult{Landed: landed}

	if !landed {
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		metrics.RecordItemUse(false)
		result.Message = fmt.Sprintf("%s doesn't seem interested in the %s.", targetPersona, item.Name)
		return result, nil
	}

	state, found, err := s.repo.GetForUpdateInTx(ctx, tx, userID, targetPersona)
	if err != nil {
		return nil, err
	}

	mood, favorability := defaultMood, float64(defaultFavorability)
	buffEnd := sql.NullTime{}
	if found {
		mood, favorability = state.Mood, state.Favorability
		buffEnd = state.BuffEndAt
	}

	newMood := clampMood(mood + effect.Mood)
	newFav := clampFavorability(favorability + effect.Favorability)
	if effect.BuffMinutes > 0 {
		buffEnd = sql.NullTime{
			Time:  time.Now().Add(time.Duration(effect.BuffMinutes) * time.Minute),
			Valid: true,
		}
	}

	if err := s.repo.UpsertInTx(ctx, tx, userID, targetPersona, newMood, newFav, buffEnd); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	logger.Info("item effect applied",
		"user_id", userID, "item_id", item.ID, "persona", targetPersona,
		"mood", newMood, "favorability", newFav)
	metrics.RecordItemUse(true)

	result.MoodBoost = newMood - mood
	result.FavBoost = clampFavorability(newFav - favorability)
	result.Message = fmt.Sprintf("%s loved the %s!", targetPersona, item.Name)
	return result, nil
}

// GetState returns the persona's current emotional state for the user.
func (s *Service) GetState(ctx context.Context, userID, personaName string) (*State, error) {
	return s.repo.GetState(ctx, userID, personaName)
}
