package domain

import (
	"fmt"
	"strings"
)

// PriceRange bounds the price of matching projects, both ends inclusive.
type PriceRange struct {
	Min float64
	Max float64
}

// FilterSpec narrows a catalog query. Every field is optional and a zero value means no constraint.
type FilterSpec struct {
	Category      *Category
	Style         *Style
	WoodType      *WoodType
	PriceRange    *PriceRange
	FeaturedOnly  bool
	AvailableOnly bool
	Tags          []string
}

// IsZero reports whether the filter applies no constraint at all.
func (f FilterSpec) IsZero() bool {
	return f.Category == nil && f.Style == nil && f.WoodType == nil && f.PriceRange == nil &&
		!f.FeaturedOnly && !f.AvailableOnly && len(f.Tags) == 0
}

// Clone returns a deep copy that shares no pointers with f.
func (f FilterSpec) Clone() FilterSpec {
	out := FilterSpec{FeaturedOnly: f.FeaturedOnly, AvailableOnly: f.AvailableOnly}
	if f.Category != nil {
		v := *f.Category
		out.Category = &v
	}
	if f.Style != nil {
		v := *f.Style
		out.Style = &v
	}
	if f.WoodType != nil {
		v := *f.WoodType
		out.WoodType = &v
	}
	if f.PriceRange != nil {
		v := *f.PriceRange
		out.PriceRange = &v
	}
	if len(f.Tags) > 0 {
		out.Tags = append([]string(nil), f.Tags...)
	}
	return out
}

// SortKey selects the single ordering applied to a catalog query.
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortOldest    SortKey = "oldest"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortPopular   SortKey = "popular"
	SortName      SortKey = "name"

	// DefaultSortKey applies when the caller expresses no preference.
	DefaultSortKey = SortNewest
)

// SortKeys lists the accepted sort keys.
var SortKeys = []SortKey{SortNewest, SortOldest, SortPriceLow, SortPriceHigh, SortPopular, SortName}

// Valid reports whether k is a known sort key.
func (k SortKey) Valid() bool { return oneOf(k, SortKeys) }

// ParseSortKey maps user input onto a SortKey. Blank input selects the default.
func ParseSortKey(value string) (SortKey, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return DefaultSortKey, nil
	}
	key := SortKey(value)
	if !key.Valid() {
		return "", fmt.Errorf("unknown sort key %q", value)
	}
	return key, nil
}
