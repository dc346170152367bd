package firestore

import (
	"time"

	domain "github.com/woodcraft-atelier/api/internal/domain"
	"github.com/woodcraft-atelier/api/internal/platform/textutil"
)

type localizedDocument struct {
	EN string `firestore:"en"`
	AR string `firestore:"ar"`
	FR string `firestore:"fr"`
	DZ string `firestore:"dz"`
}

func toLocalized(c domain.LocalizedContent) localizedDocument {
	return localizedDocument{EN: c.EN, AR: c.AR, FR: c.FR, DZ: c.DZ}
}

func (d localizedDocument) toDomain() domain.LocalizedContent {
	return domain.LocalizedContent{EN: d.EN, AR: d.AR, FR: d.FR, DZ: d.DZ}
}

type dimensionsDocument struct {
	Width  float64 `firestore:"width"`
	Height float64 `firestore:"height"`
	Depth  float64 `firestore:"depth"`
	Unit   string  `firestore:"unit"`
}

// projectDocument is the stored shape of a project. Zero timestamps are
// replaced by the commit time.
type projectDocument struct {
	Title        localizedDocument  `firestore:"title"`
	Description  localizedDocument  `firestore:"description"`
	Category     string             `firestore:"category"`
	Style        string             `firestore:"style"`
	WoodType     string             `firestore:"woodType"`
	Images       []string           `firestore:"images"`
	Dimensions   dimensionsDocument `firestore:"dimensions"`
	Price        float64            `firestore:"price"`
	Featured     bool               `firestore:"isFeatured"`
	Available    bool               `firestore:"isAvailable"`
	Tags         []string           `firestore:"tags"`
	ViewCount    int64              `firestore:"viewCount"`
	InquiryCount int64              `firestore:"inquiryCount"`
	CreatedAt    time.Time          `firestore:"createdAt,serverTimestamp"`
	UpdatedAt    time.Time          `firestore:"updatedAt,serverTimestamp"`
}

func encodeProject(p domain.Project) projectDocument {
	return projectDocument{
		Title:       toLocalized(p.Title),
		Description: toLocalized(p.Description),
		Category:    string(p.Category),
		Style:       string(p.Style),
		WoodType:    string(p.WoodType),
		Images:      nonNil(p.Images),
		Dimensions: dimensionsDocument{
			Width:  p.Dimensions.Width,
			Height: p.Dimensions.Height,
			Depth:  p.Dimensions.Depth,
			Unit:   string(p.Dimensions.Unit),
		},
		Price:        p.Price,
		Featured:     p.Featured,
		Available:    p.Available,
		Tags:         nonNil(p.Tags),
		ViewCount:    p.ViewCount,
		InquiryCount: p.InquiryCount,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func (d projectDocument) toDomain(id string) domain.Project {
	return domain.Project{
		ID:          id,
		Title:       d.Title.toDomain(),
		Description: d.Description.toDomain(),
		Category:    domain.Category(d.Category),
		Style:       domain.Style(d.Style),
		WoodType:    domain.WoodType(d.WoodType),
		Images:      d.Images,
		Dimensions: domain.Dimensions{
			Width:  d.Dimensions.Width,
			Height: d.Dimensions.Height,
			Depth:  d.Dimensions.Depth,
			Unit:   domain.DimensionUnit(d.Dimensions.Unit),
		},
		Price:        d.Price,
		Featured:     d.Featured,
		Available:    d.Available,
		Tags:         d.Tags,
		ViewCount:    d.ViewCount,
		InquiryCount: d.InquiryCount,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

type inquiryDocument struct {
	ClientName      string     `firestore:"clientName"`
	Email           string     `firestore:"email"`
	Phone           string     `firestore:"phone,omitempty"`
	Subject         string     `firestore:"subject"`
	Message         string     `firestore:"message"`
	ProjectID       string     `firestore:"projectId,omitempty"`
	ReferenceImages []string   `firestore:"referenceImages"`
	Status          string     `firestore:"status"`
	Priority        string     `firestore:"priority"`
	Notes           string     `firestore:"notes,omitempty"`
	Response        string     `firestore:"response,omitempty"`
	RespondedAt     *time.Time `firestore:"respondedAt,omitempty"`
	CreatedAt       time.Time  `firestore:"createdAt,serverTimestamp"`
	UpdatedAt       time.Time  `firestore:"updatedAt,serverTimestamp"`
}

func encodeInquiry(inq domain.Inquiry) inquiryDocument {
	return inquiryDocument{
		ClientName:      inq.ClientName,
		Email:           inq.Email,
		Phone:           inq.Phone,
		Subject:         inq.Subject,
		Message:         inq.Message,
		ProjectID:       inq.ProjectID,
		ReferenceImages: nonNil(inq.ReferenceImages),
		Status:          string(inq.Status),
		Priority:        string(inq.Priority),
		Notes:           inq.Notes,
		Response:        inq.Response,
		RespondedAt:     inq.RespondedAt,
	}
}

func (d inquiryDocument) toDomain(id string) domain.Inquiry {
	return domain.Inquiry{
		ID:              id,
		ClientName:      d.ClientName,
		Email:           d.Email,
		Phone:           d.Phone,
		Subject:         d.Subject,
		Message:         d.Message,
		ProjectID:       d.ProjectID,
		ReferenceImages: d.ReferenceImages,
		Status:          domain.InquiryStatus(d.Status),
		Priority:        domain.InquiryPriority(d.Priority),
		Notes:           d.Notes,
		Response:        d.Response,
		RespondedAt:     d.RespondedAt,
		CreatedAt:       d.CreatedAt.UTC(),
		UpdatedAt:       d.UpdatedAt.UTC(),
	}
}

type testimonialDocument struct {
	ID         string            `firestore:"id"`
	ClientName string            `firestore:"clientName"`
	Content    localizedDocument `firestore:"content"`
	Rating     int               `firestore:"rating"`
	Date       time.Time         `firestore:"date"`
	ProjectID  string            `firestore:"projectId,omitempty"`
}

type profileDocument struct {
	Name            string                `firestore:"name"`
	Bio             localizedDocument     `firestore:"bio"`
	Philosophy      localizedDocument     `firestore:"philosophy"`
	ExperienceYears int                   `firestore:"experienceYears"`
	Specialties     []string              `firestore:"specialties"`
	Certifications  []string              `firestore:"certifications"`
	WorkshopImages  []string              `firestore:"workshopImages"`
	Contact         contactDocument       `firestore:"contactInfo"`
	SocialLinks     map[string]string     `firestore:"socialLinks"`
	Testimonials    []testimonialDocument `firestore:"testimonials"`
	CreatedAt       time.Time             `firestore:"createdAt,serverTimestamp"`
	UpdatedAt       time.Time             `firestore:"updatedAt,serverTimestamp"`
}

type contactDocument struct {
	Email        string            `firestore:"email"`
	Phone        string            `firestore:"phone"`
	Address      localizedDocument `firestore:"address"`
	WorkingHours localizedDocument `firestore:"workingHours"`
}

func encodeProfile(p domain.WoodmakerProfile) profileDocument {
	testimonials := make([]testimonialDocument, 0, len(p.Testimonials))
	for _, t := range p.Testimonials {
		testimonials = append(testimonials, testimonialDocument{
			ID:         t.ID,
			ClientName: t.ClientName,
			Content:    toLocalized(t.Content),
			Rating:     t.Rating,
			Date:       t.Date.UTC(),
			ProjectID:  t.ProjectID,
		})
	}
	links := textutil.CompactStringMap(map[string]string{
		"instagram": p.SocialLinks.Instagram,
		"facebook":  p.SocialLinks.Facebook,
		"whatsapp":  p.SocialLinks.WhatsApp,
		"website":   p.SocialLinks.Website,
	})
	return profileDocument{
		Name:            p.Name,
		Bio:             toLocalized(p.Bio),
		Philosophy:      toLocalized(p.Philosophy),
		ExperienceYears: p.ExperienceYears,
		Specialties:     nonNil(p.Specialties),
		Certifications:  nonNil(p.Certifications),
		WorkshopImages:  nonNil(p.WorkshopImages),
		Contact: contactDocument{
			Email:        p.Contact.Email,
			Phone:        p.Contact.Phone,
			Address:      toLocalized(p.Contact.Address),
			WorkingHours: toLocalized(p.Contact.WorkingHours),
		},
		SocialLinks:  links,
		Testimonials: testimonials,
		CreatedAt:    p.CreatedAt,
	}
}

func (d profileDocument) toDomain() domain.WoodmakerProfile {
	testimonials := make([]domain.Testimonial, 0, len(d.Testimonials))
	for _, t := range d.Testimonials {
		testimonials = append(testimonials, domain.Testimonial{
			ID:         t.ID,
			ClientName: t.ClientName,
			Content:    t.Content.toDomain(),
			Rating:     t.Rating,
			Date:       t.Date.UTC(),
			ProjectID:  t.ProjectID,
		})
	}
	return domain.WoodmakerProfile{
		Name:            d.Name,
		Bio:             d.Bio.toDomain(),
		Philosophy:      d.Philosophy.toDomain(),
		ExperienceYears: d.ExperienceYears,
		Specialties:     d.Specialties,
		Certifications:  d.Certifications,
		WorkshopImages:  d.WorkshopImages,
		Contact: domain.ContactInfo{
			Email:        d.Contact.Email,
			Phone:        d.Contact.Phone,
			Address:      d.Contact.Address.toDomain(),
			WorkingHours: d.Contact.WorkingHours.toDomain(),
		},
		SocialLinks: socialLinks(textutil.CompactStringMap(d.SocialLinks)),
		Testimonials: testimonials,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

// Arrays are stored as [] rather than null.
func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func socialLinks(links map[string]string) domain.SocialLinks {
	return domain.SocialLinks{
		Instagram: links["instagram"],
		Facebook:  links["facebook"],
		WhatsApp:  links["whatsapp"],
		Website:   links["website"],
	}
}
