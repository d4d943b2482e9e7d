package feedback

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Priyansh0418/Haski-sub005/internal/domain"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectPing()
	store, err := NewPostgresStore(db)
	require.NoError(t, err)
	return store, mock
}

func TestPostgresStore_Save(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO feedback").
		WithArgs(
			sqlmock.AnyArg(), "rec-1", "user-1",
			4, 5, 80,
			"2_weeks", "Skin feels much better", "", "",
			true, `{"cleanser":5}`, sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	entry := &domain.FeedbackEntry{
		RecommendationID:     "rec-1",
		UserID:               "user-1",
		HelpfulRating:        intPtr(4),
		ProductSatisfaction:  intPtr(5),
		RoutineCompletionPct: intPtr(80),
		Timeframe:            domain.TimeframeTwoWeeks,
		FeedbackText:         "Skin feels much better",
		WouldRecommend:       boolPtr(true),
		ProductRatings:       map[string]int{"cleanser": 5},
	}

	require.NoError(t, store.Save(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveNullOptionalFields(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO feedback").
		WithArgs(
			sqlmock.AnyArg(), "rec-1", "user-1",
			nil, nil, nil,
			"", "Too early to tell", "", "",
			nil, "", sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	entry := &domain.FeedbackEntry{
		RecommendationID: "rec-1",
		UserID:           "user-1",
		FeedbackText:     "Too early to tell",
	}

	require.NoError(t, store.Save(context.Background(), entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListByRecommendation(t *testing.T) {
	store, mock := newMockStore(t)

	created := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "recommendation_id", "user_id",
		"helpful_rating", "product_satisfaction", "routine_completion_pct",
		"timeframe", "feedback_text", "improvement_suggestions",
		"adverse_reactions", "would_recommend", "product_ratings", "created_at",
	}).AddRow(
		"fb-1", "rec-1", "user-1",
		4, nil, 80,
		"2_weeks", "Skin feels much better", "", "",
		true, `{"cleanser":5}`, created,
	)

	mock.ExpectQuery("SELECT (.+) FROM feedback").
		WithArgs("rec-1").
		WillReturnRows(rows)

	entries, err := store.ListByRecommendation(context.Background(), "rec-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got := entries[0]
	assert.Equal(t, "fb-1", got.ID)
	require.NotNil(t, got.HelpfulRating)
	assert.Equal(t, 4, *got.HelpfulRating)
	assert.Nil(t, got.ProductSatisfaction)
	require.NotNil(t, got.RoutineCompletionPct)
	assert.Equal(t, 80, *got.RoutineCompletionPct)
	assert.Equal(t, map[string]int{"cleanser": 5}, got.ProductRatings)
	assert.Equal(t, created, got.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Count(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM feedback").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
