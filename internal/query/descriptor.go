// Package query turns a gallery filter and sort selection into a store independent query descriptor.
package query

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"

	domain "github.com/woodcraft-atelier/api/internal/domain"
)

// Op is a comparison understood by every catalog store.
type Op string

const (
	OpEqual            Op = "=="
	OpGreaterEqual     Op = ">="
	OpLessEqual        Op = "<="
	OpArrayContainsAny Op = "array-contains-any"
)

// Document field paths used in predicates and orders.
const (
	FieldCategory  = "category"
	FieldStyle     = "style"
	FieldWoodType  = "woodType"
	FieldFeatured  = "isFeatured"
	FieldAvailable = "isAvailable"
	FieldTags      = "tags"
	FieldPrice     = "price"
	FieldCreatedAt = "createdAt"
	FieldViewCount = "viewCount"
	FieldTitleEN   = "title.en"
	// FieldID orders by document id; Firestore stores translate it to firestore.DocumentID.
	FieldID = "__name__"
)

// Direction of an order clause.
type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

// Predicate is a single narrowing condition. Value is a string, bool, float64 or []string.
type Predicate struct {
	Field string
	Op    Op
	Value any
}

// Order is one order-by clause.
type Order struct {
	Field     string
	Direction Direction
}

// Descriptor is the composed, deterministic form of a catalog query.
// Predicates are ANDed; an OpArrayContainsAny predicate matches any of its values.
type Descriptor struct {
	Sort       domain.SortKey
	Predicates []Predicate
	// Search is case folded free text matched as a substring of the title in any locale.
	Search string
	Orders []Order
}

// HasSearch reports whether free-text narrowing applies.
func (d Descriptor) HasSearch() bool {
	return d.Search != ""
}

// Predicate returns the predicate on field with op, if present.
func (d Descriptor) Predicate(field string, op Op) (Predicate, bool) {
	for _, p := range d.Predicates {
		if p.Field == field && p.Op == op {
			return p, true
		}
	}
	return Predicate{}, false
}

// PrimaryOrder is the order clause selected by the sort key.
func (d Descriptor) PrimaryOrder() Order {
	if len(d.Orders) == 0 {
		return Order{Field: FieldCreatedAt, Direction: Desc}
	}
	return d.Orders[0]
}

// Fingerprint is a stable digest of the descriptor. Page tokens carry it so a token
// cannot be replayed against a different query.
func (d Descriptor) Fingerprint() string {
	sum := sha256.Sum256([]byte(d.String()))
	return hex.EncodeToString(sum[:8])
}

// String renders the descriptor canonically, mainly for logs and fingerprints.
func (d Descriptor) String() string {
	var b strings.Builder
	b.WriteString("sort=")
	b.WriteString(string(d.Sort))
	for _, p := range d.Predicates {
		b.WriteString(";")
		b.WriteString(p.Field)
		b.WriteString(string(p.Op))
		b.WriteString(formatValue(p.Value))
	}
	if d.Search != "" {
		b.WriteString(";search=")
		b.WriteString(strconv.Quote(d.Search))
	}
	for _, o := range d.Orders {
		b.WriteString(";order=")
		b.WriteString(o.Field)
		b.WriteString(" ")
		b.WriteString(o.Direction.String())
	}
	return b.String()
}

func formatValue(value any) string {
	switch v := value.(type) {
	case string:
		return strconv.Quote(v)
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case []string:
		quoted := make([]string, len(v))
		for i, s := range v {
			quoted[i] = strconv.Quote(s)
		}
		return "[" + strings.Join(quoted, ",") + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Matches evaluates the descriptor's predicates and search against p in process.
func (d Descriptor) Matches(p domain.Project) bool {
	for _, pred := range d.Predicates {
		if !pred.Matches(p) {
			return false
		}
	}
	return d.MatchesSearch(p)
}

// MatchesSearch evaluates only the free-text part of the descriptor.
func (d Descriptor) MatchesSearch(p domain.Project) bool {
	if d.Search == "" {
		return true
	}
	for _, title := range p.Title.Values() {
		if strings.Contains(foldText(title), d.Search) {
			return true
		}
	}
	return false
}

// Matches evaluates a single predicate against p.
func (pred Predicate) Matches(p domain.Project) bool {
	switch pred.Op {
	case OpEqual:
		switch want := pred.Value.(type) {
		case string:
			got, ok := fieldValue(p, pred.Field).(string)
			return ok && got == want
		case bool:
			got, ok := fieldValue(p, pred.Field).(bool)
			return ok && got == want
		case float64:
			got, ok := fieldValue(p, pred.Field).(float64)
			return ok && got == want
		}
		return false
	case OpGreaterEqual, OpLessEqual:
		bound, ok := pred.Value.(float64)
		if !ok {
			return false
		}
		got, ok := fieldValue(p, pred.Field).(float64)
		if !ok {
			return false
		}
		if pred.Op == OpGreaterEqual {
			return got >= bound
		}
		return got <= bound
	case OpArrayContainsAny:
		wanted, ok := pred.Value.([]string)
		if !ok {
			return false
		}
		have, ok := fieldValue(p, pred.Field).([]string)
		if !ok {
			return false
		}
		for _, w := range wanted {
			for _, h := range have {
				if domain.NormalizeTag(h) == w {
					return true
				}
			}
		}
		return false
	default:
		return false
	}
}

// Compare orders a relative to b using the descriptor's order clauses.
// The final clause is the document id, so distinct projects never compare equal.
func (d Descriptor) Compare(a, b domain.Project) int {
	for _, o := range d.Orders {
		c := compareValues(fieldValue(a, o.Field), fieldValue(b, o.Field))
		if c == 0 {
			continue
		}
		if o.Direction == Desc {
			return -c
		}
		return c
	}
	return 0
}

func fieldValue(p domain.Project, field string) any {
	switch field {
	case FieldCategory:
		return string(p.Category)
	case FieldStyle:
		return string(p.Style)
	case FieldWoodType:
		return string(p.WoodType)
	case FieldFeatured:
		return p.Featured
	case FieldAvailable:
		return p.Available
	case FieldTags:
		return p.Tags
	case FieldPrice:
		return p.Price
	case FieldCreatedAt:
		return p.CreatedAt
	case FieldViewCount:
		return p.ViewCount
	case FieldTitleEN:
		return p.Title.EN
	case FieldID:
		return p.ID
	default:
		return nil
	}
}

func compareValues(a, b any) int {
	switch av := a.(type) {
	case float64:
		bv, _ := b.(float64)
		return cmpOrdered(av, bv)
	case int64:
		bv, _ := b.(int64)
		return cmpOrdered(av, bv)
	case string:
		bv, _ := b.(string)
		return cmpOrdered(av, bv)
	case time.Time:
		bv, _ := b.(time.Time)
		return av.Compare(bv)
	default:
		return 0
	}
}

func cmpOrdered[T float64 | int64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func foldText(s string) string {
	return cases.Fold().String(s)
}
