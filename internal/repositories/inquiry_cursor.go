package repositories

import (
	"fmt"
	"strings"
	"time"

	domain "github.com/woodcraft-atelier/api/internal/domain"
	"github.com/woodcraft-atelier/api/internal/platform/pagination"
)

// InquiryCursor continues a newest-first inquiry listing.
type InquiryCursor struct {
	CreatedAt time.Time `json:"c"`
	ID        string    `json:"id"`
}

// EncodeInquiryCursor returns the page token continuing after inq.
func EncodeInquiryCursor(inq domain.Inquiry) (string, error) {
	return pagination.EncodeToken(InquiryCursor{CreatedAt: inq.CreatedAt.UTC(), ID: inq.ID})
}

// DecodeInquiryCursor parses token; a blank token yields ok=false.
func DecodeInquiryCursor(token string) (InquiryCursor, bool, error) {
	if strings.TrimSpace(token) == "" {
		return InquiryCursor{}, false, nil
	}
	var c InquiryCursor
	if err := pagination.DecodeToken(token, &c); err != nil {
		return InquiryCursor{}, false, err
	}
	if c.ID == "" || c.CreatedAt.IsZero() {
		return InquiryCursor{}, false, fmt.Errorf("%w: incomplete inquiry cursor", pagination.ErrInvalidPageToken)
	}
	return c, true, nil
}

// Before reports whether inq sorts after the cursor in newest-first order.
func (c InquiryCursor) Before(inq domain.Inquiry) bool {
	if !inq.CreatedAt.Equal(c.CreatedAt) {
		return inq.CreatedAt.Before(c.CreatedAt)
	}
	return inq.ID < c.ID
}

// Matches applies the equality filters of f to inq.
func (f InquiryListFilter) Matches(inq domain.Inquiry) bool {
	if f.Status != nil && inq.Status != *f.Status {
		return false
	}
	if f.Email != "" && !strings.EqualFold(inq.Email, f.Email) {
		return false
	}
	if f.ProjectID != "" && inq.ProjectID != f.ProjectID {
		return false
	}
	return true
}
