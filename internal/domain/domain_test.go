package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalizedContentFallsBackToEnglish(t *testing.T) {
	content := LocalizedContent{EN: "Oak table", FR: "Table en chêne", AR: "  "}

	assert.Equal(t, "Table en chêne", content.Get(LocaleFR))
	assert.Equal(t, "Oak table", content.Get(LocaleAR), "blank translation")
	assert.Equal(t, "Oak table", content.Get(LocaleDZ), "missing translation")
	assert.Equal(t, "Oak table", content.Get(Locale("de")), "unsupported locale")
	assert.Equal(t, []Locale{LocaleAR, LocaleDZ}, content.Missing())
	assert.Equal(t, []string{"Oak table", "Table en chêne"}, content.Values())
}

func TestLocalizedContentMapRoundTrip(t *testing.T) {
	content := LocalizedContent{EN: "a", AR: "b", FR: "c", DZ: "d"}
	assert.Equal(t, content, LocalizedContentFromMap(content.Map()))
	assert.True(t, LocalizedContent{EN: " "}.IsZero())
}

func TestParseLocale(t *testing.T) {
	locale, ok := ParseLocale(" AR ")
	require.True(t, ok)
	assert.Equal(t, LocaleAR, locale)
	assert.True(t, locale.RTL())

	_, ok = ParseLocale("es")
	assert.False(t, ok)
}

func TestParseSortKey(t *testing.T) {
	key, err := ParseSortKey("")
	require.NoError(t, err)
	assert.Equal(t, SortNewest, key)

	key, err = ParseSortKey("Price-High")
	require.NoError(t, err)
	assert.Equal(t, SortPriceHigh, key)

	_, err = ParseSortKey("cheapest")
	assert.Error(t, err)
}

func TestFilterSpecCloneDoesNotShareState(t *testing.T) {
	oak := WoodOak
	spec := FilterSpec{WoodType: &oak, PriceRange: &PriceRange{Min: 1, Max: 2}, Tags: []string{"table"}}

	clone := spec.Clone()
	*clone.WoodType = WoodPine
	clone.PriceRange.Max = 99
	clone.Tags[0] = "chair"

	assert.Equal(t, WoodOak, *spec.WoodType)
	assert.Equal(t, float64(2), spec.PriceRange.Max)
	assert.Equal(t, []string{"table"}, spec.Tags)
	assert.False(t, spec.IsZero())
	assert.True(t, FilterSpec{}.IsZero())
}

func TestProjectCounter(t *testing.T) {
	p := Project{ViewCount: 7, InquiryCount: 2, Images: []string{"a.jpg", "b.jpg"}}
	assert.Equal(t, int64(7), p.Counter(CounterViews))
	assert.Equal(t, int64(2), p.Counter(CounterInquiries))
	assert.Equal(t, int64(0), p.Counter(CounterName("likes")))
	assert.Equal(t, "a.jpg", p.CoverImage())
	assert.False(t, CounterName("likes").Valid())
}
