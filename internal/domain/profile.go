package domain

import "time"

// WoodmakerProfile is the single record describing the craftsman behind the catalog.
type WoodmakerProfile struct {
	Name            string
	Bio             LocalizedContent
	Philosophy      LocalizedContent
	ExperienceYears int
	Specialties     []string
	Certifications  []string
	WorkshopImages  []string
	Contact         ContactInfo
	SocialLinks     SocialLinks
	Testimonials    []Testimonial
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ContactInfo is shown on the about and contact pages.
type ContactInfo struct {
	Email        string
	Phone        string
	Address      LocalizedContent
	WorkingHours LocalizedContent
}

// SocialLinks are optional profile URLs.
type SocialLinks struct {
	Instagram string
	Facebook  string
	WhatsApp  string
	Website   string
}

// Testimonial is a client quote, rated 1 to 5.
type Testimonial struct {
	ID         string
	ClientName string
	Content    LocalizedContent
	Rating     int
	Date       time.Time
	ProjectID  string
}
