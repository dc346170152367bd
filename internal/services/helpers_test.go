package services

import (
	"fmt"
	"time"

	domain "github.com/woodcraft-atelier/api/internal/domain"
)

var testEpoch = time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)

func syncRunner(fn func()) { fn() }

func localized(prefix string) domain.LocalizedContent {
	return domain.LocalizedContent{
		EN: prefix + " en",
		AR: prefix + " ar",
		FR: prefix + " fr",
		DZ: prefix + " dz",
	}
}

func validProject(id string) domain.Project {
	return domain.Project{
		ID:          id,
		Title:       localized("Walnut table " + id),
		Description: localized("Hand cut joinery " + id),
		Category:    domain.CategoryDining,
		Style:       domain.StyleModern,
		WoodType:    domain.WoodWalnut,
		Images:      []string{fmt.Sprintf("https://cdn.example.com/%s.jpg", id)},
		Dimensions:  domain.Dimensions{Width: 180, Height: 75, Depth: 90, Unit: domain.UnitCentimetre},
		Price:       2400,
		Available:   true,
		Tags:        []string{"table"},
		CreatedAt:   testEpoch,
	}
}
