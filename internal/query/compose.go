package query

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	domain "github.com/woodcraft-atelier/api/internal/domain"
)

// MaxTags is the largest tag set a single query may match against. Firestore caps
// array-contains-any at ten values.
const MaxTags = 10

// ErrInvalidFilter is matched by every *InvalidFilterError.
var ErrInvalidFilter = errors.New("query: invalid filter")

// InvalidFilterError reports a filter that was rejected before reaching storage.
type InvalidFilterError struct {
	Field  string
	Reason string
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("query: invalid filter %s: %s", e.Field, e.Reason)
}

// Is allows errors.Is(err, ErrInvalidFilter).
func (e *InvalidFilterError) Is(target error) bool {
	return target == ErrInvalidFilter
}

func invalid(field, format string, args ...any) error {
	return &InvalidFilterError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Compose maps a filter, sort key and free-text search onto a Descriptor.
// The same inputs always produce an identical descriptor.
func Compose(filter domain.FilterSpec, sort domain.SortKey, search string) (Descriptor, error) {
	if sort == "" {
		sort = domain.DefaultSortKey
	}
	if !sort.Valid() {
		return Descriptor{}, invalid("sort", "unknown sort key %q", sort)
	}

	var preds []Predicate

	if filter.Category != nil {
		if !filter.Category.Valid() {
			return Descriptor{}, invalid("category", "unknown category %q", *filter.Category)
		}
		preds = append(preds, Predicate{Field: FieldCategory, Op: OpEqual, Value: string(*filter.Category)})
	}
	if filter.Style != nil {
		if !filter.Style.Valid() {
			return Descriptor{}, invalid("style", "unknown style %q", *filter.Style)
		}
		preds = append(preds, Predicate{Field: FieldStyle, Op: OpEqual, Value: string(*filter.Style)})
	}
	if filter.WoodType != nil {
		if !filter.WoodType.Valid() {
			return Descriptor{}, invalid("woodType", "unknown wood type %q", *filter.WoodType)
		}
		preds = append(preds, Predicate{Field: FieldWoodType, Op: OpEqual, Value: string(*filter.WoodType)})
	}
	if filter.FeaturedOnly {
		preds = append(preds, Predicate{Field: FieldFeatured, Op: OpEqual, Value: true})
	}
	if filter.AvailableOnly {
		preds = append(preds, Predicate{Field: FieldAvailable, Op: OpEqual, Value: true})
	}

	tags := normalizeTags(filter.Tags)
	if len(tags) > MaxTags {
		return Descriptor{}, invalid("tags", "at most %d tags may be combined, got %d", MaxTags, len(tags))
	}
	if len(tags) > 0 {
		preds = append(preds, Predicate{Field: FieldTags, Op: OpArrayContainsAny, Value: tags})
	}

	if r := filter.PriceRange; r != nil {
		if math.IsNaN(r.Min) || math.IsNaN(r.Max) {
			return Descriptor{}, invalid("priceRange", "bounds must be numbers")
		}
		if r.Min < 0 || r.Max < 0 {
			return Descriptor{}, invalid("priceRange", "bounds must not be negative")
		}
		if r.Min > r.Max {
			return Descriptor{}, invalid("priceRange", "min %g is greater than max %g", r.Min, r.Max)
		}
		preds = append(preds,
			Predicate{Field: FieldPrice, Op: OpGreaterEqual, Value: r.Min},
			Predicate{Field: FieldPrice, Op: OpLessEqual, Value: r.Max},
		)
	}

	return Descriptor{
		Sort:       sort,
		Predicates: preds,
		Search:     foldText(strings.Join(strings.Fields(search), " ")),
		Orders:     ordersFor(sort),
	}, nil
}

func ordersFor(sort domain.SortKey) []Order {
	switch sort {
	case domain.SortOldest:
		return []Order{{FieldCreatedAt, Asc}, {FieldID, Asc}}
	case domain.SortPriceLow:
		return withTieBreak(Order{FieldPrice, Asc})
	case domain.SortPriceHigh:
		return withTieBreak(Order{FieldPrice, Desc})
	case domain.SortPopular:
		return withTieBreak(Order{FieldViewCount, Desc})
	case domain.SortName:
		return withTieBreak(Order{FieldTitleEN, Asc})
	default:
		return []Order{{FieldCreatedAt, Desc}, {FieldID, Desc}}
	}
}

// withTieBreak appends newest-first and document id ordering so equal primary
// values still paginate stably.
func withTieBreak(primary Order) []Order {
	return []Order{primary, {FieldCreatedAt, Desc}, {FieldID, Desc}}
}

func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if t := domain.NormalizeTag(tag); t != "" {
			out = append(out, t)
		}
	}
	slices.Sort(out)
	out = slices.Compact(out)
	if len(out) == 0 {
		return nil
	}
	return out
}
