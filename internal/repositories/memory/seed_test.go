package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/woodcraft-atelier/api/internal/domain"
	"github.com/woodcraft-atelier/api/internal/repositories"
)

func TestSeedSamplesFillsEmptyRegistry(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(WithClock(func() time.Time { return epoch }))

	report, err := reg.SeedSamples(ctx)
	require.NoError(t, err)
	assert.Equal(t, SeedReport{Projects: 4, Inquiries: 2, Profile: true}, report)

	for _, project := range SampleProjects() {
		assert.True(t, project.Category.Valid() && project.Style.Valid() && project.WoodType.Valid(), project.Title.EN)
		assert.NotEmpty(t, project.Images)
		for _, locale := range domain.SupportedLocales {
			assert.NotEmpty(t, project.Title.Get(locale))
		}
	}

	profile, found, err := reg.Profile().Get(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, epoch, profile.CreatedAt)
	require.Len(t, profile.Testimonials, 2)
	for _, testimonial := range profile.Testimonials {
		_, ok, err := reg.Projects().FindByID(ctx, testimonial.ProjectID)
		require.NoError(t, err)
		assert.True(t, ok, "testimonial %s should point at a seeded project", testimonial.ID)
	}

	page, err := reg.Inquiries().List(ctx, repositories.InquiryListFilter{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
}

func TestSeedSamplesSkipsPopulatedCollections(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry()
	reg.ProjectStore().Seed(domain.Project{ID: "existing", Title: domain.LocalizedContent{EN: "Existing"}})
	_, err := reg.Profile().Save(ctx, domain.WoodmakerProfile{Name: "Existing"})
	require.NoError(t, err)

	report, err := reg.SeedSamples(ctx)
	require.NoError(t, err)
	assert.Equal(t, SeedReport{Inquiries: 2}, report)
	assert.Equal(t, 1, reg.ProjectStore().size())

	profile, _, err := reg.Profile().Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Existing", profile.Name)

	again, err := reg.SeedSamples(ctx)
	require.NoError(t, err)
	assert.Equal(t, SeedReport{}, again)
}

func TestSampleFixturesAreCopies(t *testing.T) {
	first := SampleProjects()
	first[0].Tags[0] = "changed"
	first[0].Title.EN = "changed"
	assert.Equal(t, "dining", SampleProjects()[0].Tags[0])
	assert.Equal(t, "Modern Oak Dining Table", SampleProjects()[0].Title.EN)

	profile := SampleProfile()
	profile.Testimonials[0].ProjectID = "changed"
	assert.Empty(t, SampleProfile().Testimonials[0].ProjectID)
}
