package domain

import (
	"strings"
	"time"
)

// Category groups projects by the room they were built for.
type Category string

const (
	CategoryLiving  Category = "living"
	CategoryBedroom Category = "bedroom"
	CategoryDining  Category = "dining"
	CategoryOffice  Category = "office"
	CategoryOutdoor Category = "outdoor"
	CategoryCustom  Category = "custom"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryLiving, CategoryBedroom, CategoryDining, CategoryOffice, CategoryOutdoor, CategoryCustom}

// Valid reports whether c is a known category.
func (c Category) Valid() bool { return oneOf(c, Categories) }

// Style describes the design language of a piece.
type Style string

const (
	StyleModern      Style = "modern"
	StyleTraditional Style = "traditional"
	StyleMinimalist  Style = "minimalist"
	StyleRustic      Style = "rustic"
	StyleLuxury      Style = "luxury"
	StyleIndustrial  Style = "industrial"
)

// Styles lists every style in display order.
var Styles = []Style{StyleModern, StyleTraditional, StyleMinimalist, StyleRustic, StyleLuxury, StyleIndustrial}

// Valid reports whether s is a known style.
func (s Style) Valid() bool { return oneOf(s, Styles) }

// WoodType is the primary timber a piece is made from.
type WoodType string

const (
	WoodOak      WoodType = "oak"
	WoodWalnut   WoodType = "walnut"
	WoodCherry   WoodType = "cherry"
	WoodMaple    WoodType = "maple"
	WoodMahogany WoodType = "mahogany"
	WoodPine     WoodType = "pine"
	WoodTeak     WoodType = "teak"
)

// WoodTypes lists every wood type in display order.
var WoodTypes = []WoodType{WoodOak, WoodWalnut, WoodCherry, WoodMaple, WoodMahogany, WoodPine, WoodTeak}

// Valid reports whether w is a known wood type.
func (w WoodType) Valid() bool { return oneOf(w, WoodTypes) }

// DimensionUnit is the unit the dimensions of a project are expressed in.
type DimensionUnit string

const (
	UnitCentimetre DimensionUnit = "cm"
	UnitInch       DimensionUnit = "inch"
)

// Valid reports whether u is a known unit.
func (u DimensionUnit) Valid() bool { return u == UnitCentimetre || u == UnitInch }

// Dimensions of a finished piece.
type Dimensions struct {
	Width  float64
	Height float64
	Depth  float64
	Unit   DimensionUnit
}

// CounterName identifies a server maintained project counter.
type CounterName string

const (
	CounterViews     CounterName = "viewCount"
	CounterInquiries CounterName = "inquiryCount"
)

// Valid reports whether n names a known counter.
func (n CounterName) Valid() bool { return n == CounterViews || n == CounterInquiries }

// Project is a finished piece shown in the catalog.
type Project struct {
	ID           string
	Title        LocalizedContent
	Description  LocalizedContent
	Category     Category
	Style        Style
	WoodType     WoodType
	Images       []string
	Dimensions   Dimensions
	Price        float64
	Featured     bool
	Available    bool
	Tags         []string
	ViewCount    int64
	InquiryCount int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Counter returns the current value of the named counter.
func (p Project) Counter(name CounterName) int64 {
	switch name {
	case CounterViews:
		return p.ViewCount
	case CounterInquiries:
		return p.InquiryCount
	default:
		return 0
	}
}

// CoverImage returns the first image reference, if any.
func (p Project) CoverImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// NormalizeTag folds a free-text tag into the form it is stored and matched in.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

func oneOf[T comparable](value T, values []T) bool {
	for _, candidate := range values {
		if candidate == value {
			return true
		}
	}
	return false
}
