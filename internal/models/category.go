package models

import (
	"encoding/json"
	"fmt"
)

// CategoryKey identifies one of the three fixed prediction categories.
// The legacy display names are part of the wire contract with the
// predictions backend; they are converted to keys once at the boundary.
type CategoryKey int

const (
	CategoryStandings CategoryKey = iota
	CategoryAwards
	CategoryProps
)

const (
	wireStandings = "Regular Season Standings"
	wireAwards    = "Player Awards"
	wireProps     = "Props & Yes/No"
)

// AllCategories lists the categories in presentation order.
var AllCategories = []CategoryKey{CategoryStandings, CategoryAwards, CategoryProps}

// ParseCategoryKey maps a wire category name to its key.
func ParseCategoryKey(name string) (CategoryKey, bool) {
	switch name {
	case wireStandings:
		return CategoryStandings, true
	case wireAwards:
		return CategoryAwards, true
	case wireProps:
		return CategoryProps, true
	}
	return 0, false
}

// WireName returns the legacy display name used on the wire.
func (k CategoryKey) WireName() string {
	switch k {
	case CategoryStandings:
		return wireStandings
	case CategoryAwards:
		return wireAwards
	case CategoryProps:
		return wireProps
	}
	return fmt.Sprintf("Unknown(%d)", int(k))
}

// Section is the query-parameter identifier for a category tab.
func (k CategoryKey) Section() string {
	switch k {
	case CategoryStandings:
		return "standings"
	case CategoryAwards:
		return "awards"
	case CategoryProps:
		return "props"
	}
	return ""
}

// ParseSection maps a section query value back to its category key.
func ParseSection(section string) (CategoryKey, bool) {
	switch section {
	case "standings":
		return CategoryStandings, true
	case "awards":
		return CategoryAwards, true
	case "props":
		return CategoryProps, true
	}
	return 0, false
}

// CategoryMap holds a user's categories keyed by CategoryKey in memory
// while marshaling to and from the wire names.
type CategoryMap map[CategoryKey]Category

func (m CategoryMap) MarshalJSON() ([]byte, error) {
	wire := make(map[string]Category, len(m))
	for k, v := range m {
		wire[k.WireName()] = v
	}
	return json.Marshal(wire)
}

func (m *CategoryMap) UnmarshalJSON(data []byte) error {
	var wire map[string]Category
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	out := make(CategoryMap, len(wire))
	for name, cat := range wire {
		if key, ok := ParseCategoryKey(name); ok {
			out[key] = cat
		}
	}
	*m = out
	return nil
}

// Clone returns a deep copy safe to mutate.
func (m CategoryMap) Clone() CategoryMap {
	out := make(CategoryMap, len(m))
	for k, v := range m {
		out[k] = v.Clone()
	}
	return out
}
