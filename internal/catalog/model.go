package catalog

import "strings"

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Effect is the single canonical effect shape. Legacy string-typed effects
// in the catalog file are converted to this struct at load time, so nothing
// downstream ever branches on the effect encoding.
type Effect struct {
	Target       string  `json:"target"`
	Mood         int     `json:"mood"`
	Favorability float64 `json:"favorability"`
	BuffMinutes  int     `json:"buff_minutes"`
}

// MatchesTarget reports whether the effect lands on the given persona.
// "All" and "Any" targets match everyone.
func (e Effect) MatchesTarget(persona string) bool {
	switch strings.ToLower(e.Target) {
	case "", "all", "any":
		return true
	}
	return strings.EqualFold(e.Target, persona)
}

type Item struct {
	ID     string `json:"id" validate:"required"`
	Name   string `json:"name" validate:"required"`
	Price  int64  `json:"price" validate:"gt=0"`
	Rarity Rarity `json:"rarity" validate:"required,oneof=common rare epic legendary"`
	Effect Effect `json:"effect"`
}

// defaultEffect is the rarity-keyed fallback used when the catalog file
// carries no structured effect for an item.
func defaultEffect(r Rarity) Effect {
	e := Effect{Target: "All", Mood: defaultMoodBump}
	switch r {
	case RarityRare:
		e.Favorability = 5
	case RarityEpic:
		e.Favorability = 20
	case RarityLegendary:
		e.Favorability = 50
	default:
		e.Favorability = 1
	}
	return e
}

const defaultMoodBump = 5
