package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
)

// Catalog is the immutable item set, loaded once at process start. Lookups
// after Load are read-only, so no locking is needed.
type Catalog struct {
	items map[string]Item
	order []string
}

// fileItem mirrors one entry of the catalog file. The effect field is kept
// raw because old catalog exports used a plain string where newer ones use
// an object; both are normalized here and nowhere else.
type fileItem struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Price  int64           `json:"price"`
	Rarity Rarity          `json:"rarity"`
	Effect json.RawMessage `json:"effect"`
}

func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var raw []fileItem
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	validate := validator.New()

	c := &Catalog{items: make(map[string]Item, len(raw))}
	for _, fi := range raw {
		item := Item{
			ID:     fi.ID,
			Name:   fi.Name,
			Price:  fi.Price,
			Rarity: fi.Rarity,
		}

		effect, err := normalizeEffect(fi.Effect, fi.Rarity)
		if err != nil {
			return nil, fmt.Errorf("item %q: %w", fi.ID, err)
		}
		item.Effect = effect

		if err := validate.Struct(item); err != nil {
			return nil, fmt.Errorf("item %q: %w", fi.ID, err)
		}

		if _, dup := c.items[item.ID]; dup {
			return nil, fmt.Errorf("duplicate item id %q", item.ID)
		}
		c.items[item.ID] = item
		c.order = append(c.order, item.ID)
	}

	return c, nil
}

// normalizeEffect resolves the three historical encodings into one Effect:
// absent -> rarity default, string -> rarity default (the string named a
// preset the old client resolved itself), object -> parsed as is with the
// rarity default filling omitted numeric fields.
func normalizeEffect(raw json.RawMessage, rarity Rarity) (Effect, error) {
	def := defaultEffect(rarity)

	if len(raw) == 0 || string(raw) == "null" {
		return def, nil
	}

	var legacy string
	if err := json.Unmarshal(raw, &legacy); err == nil {
		return def, nil
	}

	var e Effect
	if err := json.Unmarshal(raw, &e); err != nil {
		return Effect{}, fmt.Errorf("invalid effect: %w", err)
	}
	if e.Target == "" {
		e.Target = def.Target
	}
	if e.Mood == 0 && e.Favorability == 0 {
		e.Mood = def.Mood
		e.Favorability = def.Favorability
	}
	return e, nil
}

// Get returns the item by id.
func (c *Catalog) Get(id string) (Item, bool) {
	item, ok := c.items[id]
	return item, ok
}

// Items returns all items in file order.
func (c *Catalog) Items() []Item {
	out := make([]Item, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out
}

func (c *Catalog) Len() int {
	return len(c.items)
}
