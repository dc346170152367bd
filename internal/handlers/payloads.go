package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/woodcraft-atelier/api/internal/domain"
	"github.com/woodcraft-atelier/api/internal/i18n"
	"github.com/woodcraft-atelier/api/internal/repositories"
)

type dimensionsPayload struct {
	Width  float64              `json:"width"`
	Height float64              `json:"height"`
	Depth  float64              `json:"depth"`
	Unit   domain.DimensionUnit `json:"unit"`
}

// projectPayload carries the text resolved for the request locale next to
// every translation, so the client can switch language without refetching.
type projectPayload struct {
	ID                   string                  `json:"id"`
	Locale               domain.Locale           `json:"locale"`
	Path                 string                  `json:"path"`
	Title                string                  `json:"title"`
	Description          string                  `json:"description"`
	LocalizedTitle       domain.LocalizedContent `json:"localizedTitle"`
	LocalizedDescription domain.LocalizedContent `json:"localizedDescription"`
	Category             domain.Category         `json:"category"`
	Style                domain.Style            `json:"style"`
	WoodType             domain.WoodType         `json:"woodType"`
	Images               []string                `json:"images"`
	CoverImage           string                  `json:"coverImage,omitempty"`
	Dimensions           dimensionsPayload       `json:"dimensions"`
	Price                float64                 `json:"price"`
	IsFeatured           bool                    `json:"isFeatured"`
	IsAvailable          bool                    `json:"isAvailable"`
	Tags                 []string                `json:"tags"`
	ViewCount            int64                   `json:"viewCount"`
	InquiryCount         int64                   `json:"inquiryCount"`
	CreatedAt            string                  `json:"createdAt,omitempty"`
	UpdatedAt            string                  `json:"updatedAt,omitempty"`
}

func newProjectPayload(p domain.Project, locale domain.Locale) projectPayload {
	return projectPayload{
		ID:                   p.ID,
		Locale:               locale,
		Path:                 i18n.ProjectPathname(p.ID, locale),
		Title:                p.Title.Get(locale),
		Description:          p.Description.Get(locale),
		LocalizedTitle:       p.Title,
		LocalizedDescription: p.Description,
		Category:             p.Category,
		Style:                p.Style,
		WoodType:             p.WoodType,
		Images:               nonNilStrings(p.Images),
		CoverImage:           p.CoverImage(),
		Dimensions: dimensionsPayload{
			Width:  p.Dimensions.Width,
			Height: p.Dimensions.Height,
			Depth:  p.Dimensions.Depth,
			Unit:   p.Dimensions.Unit,
		},
		Price:        p.Price,
		IsFeatured:   p.Featured,
		IsAvailable:  p.Available,
		Tags:         nonNilStrings(p.Tags),
		ViewCount:    p.ViewCount,
		InquiryCount: p.InquiryCount,
		CreatedAt:    formatTime(p.CreatedAt),
		UpdatedAt:    formatTime(p.UpdatedAt),
	}
}

func newProjectPayloads(items []domain.Project, locale domain.Locale) []projectPayload {
	out := make([]projectPayload, 0, len(items))
	for _, p := range items {
		out = append(out, newProjectPayload(p, locale))
	}
	return out
}

type totalPayload struct {
	Count int  `json:"count"`
	Exact bool `json:"exact"`
}

type projectPagePayload struct {
	Items         []projectPayload `json:"items"`
	HasMore       bool             `json:"hasMore"`
	NextPageToken string           `json:"nextPageToken,omitempty"`
	Total         totalPayload     `json:"total"`
}

func newProjectPagePayload(page repositories.ProjectPage, locale domain.Locale) projectPagePayload {
	return projectPagePayload{
		Items:         newProjectPayloads(page.Items, locale),
		HasMore:       page.HasMore,
		NextPageToken: page.NextPageToken,
		Total:         totalPayload{Count: page.Total.Count, Exact: page.Total.Exact},
	}
}

// projectRequest is the admin create/update body.
type projectRequest struct {
	Title       domain.LocalizedContent `json:"title"`
	Description domain.LocalizedContent `json:"description"`
	Category    string                  `json:"category"`
	Style       string                  `json:"style"`
	WoodType    string                  `json:"woodType"`
	Images      []string                `json:"images"`
	Dimensions  dimensionsPayload       `json:"dimensions"`
	Price       float64                 `json:"price"`
	IsFeatured  bool                    `json:"isFeatured"`
	IsAvailable bool                    `json:"isAvailable"`
	Tags        []string                `json:"tags"`
}

func (r projectRequest) toDomain(id string) domain.Project {
	return domain.Project{
		ID:          strings.TrimSpace(id),
		Title:       r.Title,
		Description: r.Description,
		Category:    domain.Category(strings.ToLower(strings.TrimSpace(r.Category))),
		Style:       domain.Style(strings.ToLower(strings.TrimSpace(r.Style))),
		WoodType:    domain.WoodType(strings.ToLower(strings.TrimSpace(r.WoodType))),
		Images:      r.Images,
		Dimensions: domain.Dimensions{
			Width:  r.Dimensions.Width,
			Height: r.Dimensions.Height,
			Depth:  r.Dimensions.Depth,
			Unit:   r.Dimensions.Unit,
		},
		Price:     r.Price,
		Featured:  r.IsFeatured,
		Available: r.IsAvailable,
		Tags:      r.Tags,
	}
}

type inquiryPayload struct {
	ID              string   `json:"id"`
	ClientName      string   `json:"clientName"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone,omitempty"`
	Subject         string   `json:"subject"`
	Message         string   `json:"message"`
	ProjectID       string   `json:"projectId,omitempty"`
	ReferenceImages []string `json:"referenceImages"`
	Status          string   `json:"status"`
	Priority        string   `json:"priority"`
	Notes           string   `json:"notes,omitempty"`
	Response        string   `json:"response,omitempty"`
	RespondedAt     string   `json:"respondedAt,omitempty"`
	CreatedAt       string   `json:"createdAt,omitempty"`
	UpdatedAt       string   `json:"updatedAt,omitempty"`
}

func newInquiryPayload(inq domain.Inquiry) inquiryPayload {
	payload := inquiryPayload{
		ID:              inq.ID,
		ClientName:      inq.ClientName,
		Email:           inq.Email,
		Phone:           inq.Phone,
		Subject:         inq.Subject,
		Message:         inq.Message,
		ProjectID:       inq.ProjectID,
		ReferenceImages: nonNilStrings(inq.ReferenceImages),
		Status:          string(inq.Status),
		Priority:        string(inq.Priority),
		Notes:           inq.Notes,
		Response:        inq.Response,
		CreatedAt:       formatTime(inq.CreatedAt),
		UpdatedAt:       formatTime(inq.UpdatedAt),
	}
	if inq.RespondedAt != nil {
		payload.RespondedAt = formatTime(*inq.RespondedAt)
	}
	return payload
}

type contactPayload struct {
	Email        string                  `json:"email"`
	Phone        string                  `json:"phone"`
	Address      domain.LocalizedContent `json:"address"`
	WorkingHours domain.LocalizedContent `json:"workingHours"`
}

type socialLinksPayload struct {
	Instagram string `json:"instagram,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	WhatsApp  string `json:"whatsapp,omitempty"`
	Website   string `json:"website,omitempty"`
}

type testimonialPayload struct {
	ID         string                  `json:"id,omitempty"`
	ClientName string                  `json:"clientName"`
	Content    domain.LocalizedContent `json:"content"`
	Rating     int                     `json:"rating"`
	Date       string                  `json:"date,omitempty"`
	ProjectID  string                  `json:"projectId,omitempty"`
}

// profilePayload doubles as the admin PUT body; read-only fields are ignored there.
type profilePayload struct {
	Name            string                  `json:"name"`
	Bio             domain.LocalizedContent `json:"bio"`
	Philosophy      domain.LocalizedContent `json:"philosophy"`
	ExperienceYears int                     `json:"experience"`
	Specialties     []string                `json:"specialties"`
	Certifications  []string                `json:"certifications"`
	WorkshopImages  []string                `json:"workshopImages"`
	Contact         contactPayload          `json:"contact"`
	SocialLinks     socialLinksPayload      `json:"socialLinks"`
	Testimonials    []testimonialPayload    `json:"testimonials"`
	CreatedAt       string                  `json:"createdAt,omitempty"`
	UpdatedAt       string                  `json:"updatedAt,omitempty"`
}

func newProfilePayload(p domain.WoodmakerProfile) profilePayload {
	payload := profilePayload{
		Name:            p.Name,
		Bio:             p.Bio,
		Philosophy:      p.Philosophy,
		ExperienceYears: p.ExperienceYears,
		Specialties:     nonNilStrings(p.Specialties),
		Certifications:  nonNilStrings(p.Certifications),
		WorkshopImages:  nonNilStrings(p.WorkshopImages),
		Contact: contactPayload{
			Email:        p.Contact.Email,
			Phone:        p.Contact.Phone,
			Address:      p.Contact.Address,
			WorkingHours: p.Contact.WorkingHours,
		},
		SocialLinks: socialLinksPayload{
			Instagram: p.SocialLinks.Instagram,
			Facebook:  p.SocialLinks.Facebook,
			WhatsApp:  p.SocialLinks.WhatsApp,
			Website:   p.SocialLinks.Website,
		},
		Testimonials: make([]testimonialPayload, 0, len(p.Testimonials)),
		CreatedAt:    formatTime(p.CreatedAt),
		UpdatedAt:    formatTime(p.UpdatedAt),
	}
	for _, t := range p.Testimonials {
		payload.Testimonials = append(payload.Testimonials, testimonialPayload{
			ID:         t.ID,
			ClientName: t.ClientName,
			Content:    t.Content,
			Rating:     t.Rating,
			Date:       formatTime(t.Date),
			ProjectID:  t.ProjectID,
		})
	}
	return payload
}

func (p profilePayload) toDomain() (domain.WoodmakerProfile, error) {
	profile := domain.WoodmakerProfile{
		Name:            p.Name,
		Bio:             p.Bio,
		Philosophy:      p.Philosophy,
		ExperienceYears: p.ExperienceYears,
		Specialties:     p.Specialties,
		Certifications:  p.Certifications,
		WorkshopImages:  p.WorkshopImages,
		Contact: domain.ContactInfo{
			Email:        p.Contact.Email,
			Phone:        p.Contact.Phone,
			Address:      p.Contact.Address,
			WorkingHours: p.Contact.WorkingHours,
		},
		SocialLinks: domain.SocialLinks{
			Instagram: p.SocialLinks.Instagram,
			Facebook:  p.SocialLinks.Facebook,
			WhatsApp:  p.SocialLinks.WhatsApp,
			Website:   p.SocialLinks.Website,
		},
	}
	for i, t := range p.Testimonials {
		date, err := parseOptionalTime(t.Date)
		if err != nil {
			return domain.WoodmakerProfile{}, fmt.Errorf("testimonials[%d].date: %w", i, err)
		}
		profile.Testimonials = append(profile.Testimonials, domain.Testimonial{
			ID:         t.ID,
			ClientName: t.ClientName,
			Content:    t.Content,
			Rating:     t.Rating,
			Date:       date,
			ProjectID:  t.ProjectID,
		})
	}
	return profile, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// parseOptionalTime accepts RFC 3339 timestamps or plain dates.
func parseOptionalTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("must be an RFC 3339 timestamp or YYYY-MM-DD date")
	}
	return t.UTC(), nil
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
