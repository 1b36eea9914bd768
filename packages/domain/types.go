// Package domain
package domain

// Attribute ids carried by consumable payloads that end up in the output.
const (
	AttrCP            = 11
	AttrCraftsmanship = 70
	AttrControl       = 71
)

// Category maps a consumable grouping to its item_ui_category filter id on
// the search API.
type Category struct {
	Label    string
	FilterID int
}

// Categories lists every harvested category in output order.
var Categories = []Category{
	{Label: "Food", FilterID: 46},
	{Label: "Medicine", FilterID: 44},
}

// Record is one quality variant of a consumable. Every source item yields
// two records, hq=false and hq=true, sharing name and ilvl but carrying
// the variant's own stat fields. Stat fields are present only when the
// source attribute list contains the matching attribute id.
type Record struct {
	Name map[string]string `json:"name"`
	HQ   bool              `json:"hq"`
	ILvl int               `json:"ilvl"`

	CraftsmanshipValue   *int `json:"craftsmanship_value,omitempty"`
	CraftsmanshipPercent *int `json:"craftsmanship_percent,omitempty"`
	ControlValue         *int `json:"control_value,omitempty"`
	ControlPercent       *int `json:"control_percent,omitempty"`
	CPValue              *int `json:"cp_value,omitempty"`
	CPPercent            *int `json:"cp_percent,omitempty"`
}

// Recipe is one crafting recipe from the Lodestone database. Level is the
// base level plus the star adjustment; Stars and Aspect are omitted when
// the recipe has none.
type Recipe struct {
	ID         string            `json:"id"`
	Name       map[string]string `json:"name"`
	BaseLevel  int               `json:"baseLevel"`
	Level      int               `json:"level"`
	Difficulty int               `json:"difficulty"`
	Durability int               `json:"durability"`
	MaxQuality int               `json:"maxQuality"`
	Stars      int               `json:"stars,omitempty"`
	Aspect     string            `json:"aspect,omitempty"`
}
