package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Priyansh0418/Haski-sub005/internal/domain"
)

func TestMemoryRecommendationStore_SaveAndGet(t *testing.T) {
	store := NewMemoryRecommendationStore()
	ctx := context.Background()

	bundle := testBundle("analysis-1", "user-1")
	require.NoError(t, store.Save(ctx, bundle))

	got, err := store.Get(ctx, bundle.ID)
	require.NoError(t, err)
	assert.Equal(t, bundle, got)
}

func TestMemoryRecommendationStore_GetNotFound(t *testing.T) {
	store := NewMemoryRecommendationStore()

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryRecommendationStore_GetByAnalysis(t *testing.T) {
	store := NewMemoryRecommendationStore()
	ctx := context.Background()

	first := testBundle("analysis-1", "user-1")
	second := testBundle("analysis-1", "user-1")
	other := testBundle("analysis-2", "user-2")
	for _, b := range []*domain.RecommendationBundle{first, second, other} {
		require.NoError(t, store.Save(ctx, b))
	}

	bundles, err := store.GetByAnalysis(ctx, "analysis-1")
	require.NoError(t, err)
	require.Len(t, bundles, 2)
	assert.Equal(t, first.ID, bundles[0].ID)
	assert.Equal(t, second.ID, bundles[1].ID)

	none, err := store.GetByAnalysis(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}
