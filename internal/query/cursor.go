package query

import (
	"fmt"
	"strings"
	"time"

	domain "github.com/woodcraft-atelier/api/internal/domain"
	"github.com/woodcraft-atelier/api/internal/platform/pagination"
)

// Cursor records the order values of the last item on a page.
type Cursor struct {
	Fingerprint string    `json:"f"`
	CreatedAt   time.Time `json:"c"`
	Price       float64   `json:"p,omitempty"`
	ViewCount   int64     `json:"v,omitempty"`
	Name        string    `json:"n,omitempty"`
	ID          string    `json:"id"`
}

// CursorFor captures the position of p within the descriptor's ordering.
func (d Descriptor) CursorFor(p domain.Project) Cursor {
	return Cursor{
		Fingerprint: d.Fingerprint(),
		CreatedAt:   p.CreatedAt.UTC(),
		Price:       p.Price,
		ViewCount:   p.ViewCount,
		Name:        p.Title.EN,
		ID:          p.ID,
	}
}

// StartAfter returns the cursor values aligned with the descriptor's order clauses.
func (d Descriptor) StartAfter(c Cursor) []any {
	values := make([]any, 0, len(d.Orders))
	for _, o := range d.Orders {
		switch o.Field {
		case FieldCreatedAt:
			values = append(values, c.CreatedAt)
		case FieldPrice:
			values = append(values, c.Price)
		case FieldViewCount:
			values = append(values, c.ViewCount)
		case FieldTitleEN:
			values = append(values, c.Name)
		case FieldID:
			values = append(values, c.ID)
		}
	}
	return values
}

// After reports whether p sorts strictly after the cursor position.
func (d Descriptor) After(p domain.Project, c Cursor) bool {
	pivot := domain.Project{
		ID:        c.ID,
		CreatedAt: c.CreatedAt,
		Price:     c.Price,
		ViewCount: c.ViewCount,
		Title:     domain.LocalizedContent{EN: c.Name},
	}
	return d.Compare(p, pivot) > 0
}

// EncodeCursor produces the page token continuing after p.
func (d Descriptor) EncodeCursor(p domain.Project) (string, error) {
	return pagination.EncodeToken(d.CursorFor(p))
}

// DecodeCursor parses token and checks it was issued for this descriptor.
// A blank token yields ok=false.
func (d Descriptor) DecodeCursor(token string) (Cursor, bool, error) {
	if strings.TrimSpace(token) == "" {
		return Cursor{}, false, nil
	}
	var c Cursor
	if err := pagination.DecodeToken(token, &c); err != nil {
		return Cursor{}, false, err
	}
	if c.Fingerprint != d.Fingerprint() {
		return Cursor{}, false, fmt.Errorf("%w: token was issued for a different query", pagination.ErrInvalidPageToken)
	}
	if strings.TrimSpace(c.ID) == "" {
		return Cursor{}, false, fmt.Errorf("%w: missing document id", pagination.ErrInvalidPageToken)
	}
	return c, true, nil
}
