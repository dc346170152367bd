package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/woodcraft-atelier/api/internal/domain"
	"github.com/woodcraft-atelier/api/internal/repositories"
)

func TestInquiryListNewestFirstWithPaging(t *testing.T) {
	tick := epoch
	store := NewInquiryStore(WithClock(func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	}))
	ctx := context.Background()
	for i := 0; i < 7; i++ {
		status := domain.InquiryStatusPending
		if i%3 == 0 {
			status = domain.InquiryStatusResponded
		}
		_, err := store.Insert(ctx, domain.Inquiry{
			ID:     fmt.Sprintf("q%d", i),
			Email:  "client@example.com",
			Status: status,
		})
		require.NoError(t, err)
	}

	var ids []string
	token := ""
	for {
		page, err := store.List(ctx, repositories.InquiryListFilter{Pagination: domain.Pagination{PageSize: 3, PageToken: token}})
		require.NoError(t, err)
		for _, inq := range page.Items {
			ids = append(ids, inq.ID)
		}
		if page.NextPageToken == "" {
			break
		}
		token = page.NextPageToken
	}
	assert.Equal(t, []string{"q6", "q5", "q4", "q3", "q2", "q1", "q0"}, ids)

	responded := domain.InquiryStatusResponded
	page, err := store.List(ctx, repositories.InquiryListFilter{Status: &responded})
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, stats.Total)
	assert.Equal(t, 4, stats.ByStatus[domain.InquiryStatusPending])
}

func TestProfileSaveKeepsCreatedAt(t *testing.T) {
	tick := epoch
	store := NewProfileStore(WithClock(func() time.Time {
		tick = tick.Add(time.Hour)
		return tick
	}))
	ctx := context.Background()

	_, found, err := store.Get(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	first, err := store.Save(ctx, domain.WoodmakerProfile{Name: "Karim"})
	require.NoError(t, err)
	second, err := store.Save(ctx, domain.WoodmakerProfile{Name: "Karim B."})
	require.NoError(t, err)

	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

	got, found, err := store.Get(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Karim B.", got.Name)
}
