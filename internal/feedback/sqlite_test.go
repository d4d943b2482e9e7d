package feedback

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Priyansh0418/Haski-sub005/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "feedback.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func boolPtr(v bool) *bool { return &v }
func intPtr(v int) *int    { return &v }

func fullEntry(recommendationID, userID string) *domain.FeedbackEntry {
	return &domain.FeedbackEntry{
		RecommendationID:       recommendationID,
		UserID:                 userID,
		HelpfulRating:          intPtr(4),
		ProductSatisfaction:    intPtr(5),
		RoutineCompletionPct:   intPtr(80),
		Timeframe:              domain.TimeframeTwoWeeks,
		FeedbackText:           "Skin feels much better",
		ImprovementSuggestions: "More budget options",
		AdverseReactions:       "",
		WouldRecommend:         boolPtr(true),
		ProductRatings:         map[string]int{"cleanser": 5, "moisturizer": 4},
	}
}

func TestSQLiteStore_SaveAndListByRecommendation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	entry := fullEntry("rec-1", "user-1")
	require.NoError(t, store.Save(ctx, entry))
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())

	listed, err := store.ListByRecommendation(ctx, "rec-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)

	got := listed[0]
	assert.Equal(t, entry.ID, got.ID)
	assert.Equal(t, "user-1", got.UserID)
	require.NotNil(t, got.HelpfulRating)
	assert.Equal(t, 4, *got.HelpfulRating)
	require.NotNil(t, got.WouldRecommend)
	assert.True(t, *got.WouldRecommend)
	assert.Equal(t, domain.TimeframeTwoWeeks, got.Timeframe)
	assert.Equal(t, map[string]int{"cleanser": 5, "moisturizer": 4}, got.ProductRatings)
}

func TestSQLiteStore_NullFieldsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// An entry with only free text: every optional field stays nil.
	entry := &domain.FeedbackEntry{
		RecommendationID: "rec-1",
		UserID:           "user-1",
		FeedbackText:     "Too early to tell",
	}
	require.NoError(t, store.Save(ctx, entry))

	listed, err := store.ListByRecommendation(ctx, "rec-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)

	got := listed[0]
	assert.Nil(t, got.HelpfulRating)
	assert.Nil(t, got.ProductSatisfaction)
	assert.Nil(t, got.RoutineCompletionPct)
	assert.Nil(t, got.WouldRecommend)
	assert.Nil(t, got.ProductRatings)
	assert.Equal(t, domain.Timeframe(""), got.Timeframe)
	assert.Equal(t, "Too early to tell", got.FeedbackText)
}

func TestSQLiteStore_ListByUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	for i, rec := range []string{"rec-1", "rec-2", "rec-1"} {
		entry := fullEntry(rec, "user-1")
		entry.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, store.Save(ctx, entry))
	}
	require.NoError(t, store.Save(ctx, fullEntry("rec-3", "user-2")))

	mine, err := store.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, mine, 3)
	// Oldest first.
	assert.Equal(t, "rec-1", mine[0].RecommendationID)
	assert.Equal(t, "rec-2", mine[1].RecommendationID)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}

func TestSQLiteStore_ExportImportRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, fullEntry("rec-1", "user-1")))
	require.NoError(t, store.Save(ctx, fullEntry("rec-2", "user-2")))

	var buf bytes.Buffer
	require.NoError(t, store.ExportJSON(ctx, &buf))

	fresh := newTestStore(t)
	imported, skipped, err := fresh.ImportJSON(ctx, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 2, imported)
	assert.Equal(t, 0, skipped)

	// Importing the same export again skips everything.
	imported, skipped, err = fresh.ImportJSON(ctx, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 0, imported)
	assert.Equal(t, 2, skipped)

	count, err := fresh.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
