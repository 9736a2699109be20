// Package catalog is the static registry of item definitions. The
// catalog is immutable at runtime; inventories reference items by id
// and derive weight from the definitions here.
package catalog

import "sort"

type Category string

const (
	CategoryWeapon     Category = "weapon"
	CategoryConsumable Category = "consumable"
	CategoryMoney      Category = "money"
	CategoryMisc       Category = "misc"
)

// Effect describes what consuming an item does to survival stats, in
// percentage points.
type Effect struct {
	HungerDelta float64 `json:"hungerDelta,omitempty"`
	ThirstDelta float64 `json:"thirstDelta,omitempty"`
	SugarRush   bool    `json:"sugarRush,omitempty"`
}

type Item struct {
	ID         string   `json:"id"`
	Label      string   `json:"label"`
	Category   Category `json:"category"`
	Weight     float64  `json:"weight"`
	Stackable  bool     `json:"stackable"`
	Consumable bool     `json:"consumable"`
	Effect     *Effect  `json:"effect,omitempty"`
	Emoji      string   `json:"emoji,omitempty"`
}

var items = map[string]Item{
	// Money weighs nothing: its weight is a gameplay decision, not physics.
	"money_cash": {
		ID:        "money_cash",
		Label:     "Argent liquide",
		Category:  CategoryMoney,
		Weight:    0,
		Stackable: true,
		Emoji:     "💵",
	},

	"9mm_gun": {
		ID:        "9mm_gun",
		Label:     "Pistolet 9mm",
		Category:  CategoryWeapon,
		Weight:    1.3,
		Stackable: true,
		Emoji:     "🔫",
	},
	"pistolet_combat": {
		ID:        "pistolet_combat",
		Label:     "Pistolet de combat",
		Category:  CategoryWeapon,
		Weight:    1.5,
		Stackable: true,
		Emoji:     "🔫",
	},

	"alcool_bouteille": {
		ID:         "alcool_bouteille",
		Label:      "Bouteille d’alcool",
		Category:   CategoryConsumable,
		Weight:     0.75,
		Stackable:  true,
		Consumable: true,
		Effect:     &Effect{ThirstDelta: 35},
		Emoji:      "🍾",
	},
	"bouteille_eau": {
		ID:         "bouteille_eau",
		Label:      "Bouteille d’eau",
		Category:   CategoryConsumable,
		Weight:     0.5,
		Stackable:  true,
		Consumable: true,
		Effect:     &Effect{ThirstDelta: 40},
		Emoji:      "🧴",
	},
	"burger_poulet": {
		ID:         "burger_poulet",
		Label:      "Burger poulet",
		Category:   CategoryConsumable,
		Weight:     0.4,
		Stackable:  true,
		Consumable: true,
		Effect:     &Effect{HungerDelta: 45},
		Emoji:      "🍔",
	},
	"cola_cup": {
		ID:         "cola_cup",
		Label:      "Gobelet de cola",
		Category:   CategoryConsumable,
		Weight:     0.3,
		Stackable:  true,
		Consumable: true,
		Effect:     &Effect{ThirstDelta: 30, SugarRush: true},
		Emoji:      "🥤",
	},
	"double_cheese": {
		ID:         "double_cheese",
		Label:      "Double cheese",
		Category:   CategoryConsumable,
		Weight:     0.45,
		Stackable:  true,
		Consumable: true,
		Effect:     &Effect{HungerDelta: 55},
		Emoji:      "🍔",
	},
	"fries_box": {
		ID:         "fries_box",
		Label:      "Boîte de frites",
		Category:   CategoryConsumable,
		Weight:     0.25,
		Stackable:  true,
		Consumable: true,
		Effect:     &Effect{HungerDelta: 25},
		Emoji:      "🍟",
	},
}

// ByID looks an item up by its exact id.
func ByID(id string) (Item, bool) {
	it, ok := items[id]
	return it, ok
}

// All returns every item definition, ordered by id.
func All() []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
