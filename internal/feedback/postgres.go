package feedback

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/Priyansh0418/Haski-sub005/internal/domain"
)

// PostgresStore implements the Store interface using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL feedback store.
// It expects the database and schema to already exist (created via migrations).
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromURL creates a new PostgreSQL feedback store from a connection URL.
func NewPostgresStoreFromURL(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	store, err := NewPostgresStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

const pgSelectColumns = `id, recommendation_id, user_id,
		helpful_rating, product_satisfaction, routine_completion_pct,
		timeframe, feedback_text, improvement_suggestions,
		adverse_reactions, would_recommend, product_ratings, created_at`

// Save persists a new feedback entry. Entries are never updated in place.
func (s *PostgresStore) Save(ctx context.Context, entry *domain.FeedbackEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	var ratingsJSON string
	if len(entry.ProductRatings) > 0 {
		encoded, err := json.Marshal(entry.ProductRatings)
		if err != nil {
			return fmt.Errorf("failed to encode product ratings: %w", err)
		}
		ratingsJSON = string(encoded)
	}

	query := `
		INSERT INTO feedback (
			id, recommendation_id, user_id,
			helpful_rating, product_satisfaction, routine_completion_pct,
			timeframe, feedback_text, improvement_suggestions,
			adverse_reactions, would_recommend, product_ratings, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.RecommendationID,
		entry.UserID,
		nullableInt(entry.HelpfulRating),
		nullableInt(entry.ProductSatisfaction),
		nullableInt(entry.RoutineCompletionPct),
		string(entry.Timeframe),
		entry.FeedbackText,
		entry.ImprovementSuggestions,
		entry.AdverseReactions,
		nullableBool(entry.WouldRecommend),
		ratingsJSON,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save feedback: %w", err)
	}

	return nil
}

// ListByRecommendation returns all entries for a recommendation, oldest first.
func (s *PostgresStore) ListByRecommendation(ctx context.Context, recommendationID string) ([]*domain.FeedbackEntry, error) {
	return s.list(ctx, "recommendation_id", recommendationID)
}

// ListByUser returns all entries submitted by a user, oldest first.
func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]*domain.FeedbackEntry, error) {
	return s.list(ctx, "user_id", userID)
}

func (s *PostgresStore) list(ctx context.Context, column, value string) ([]*domain.FeedbackEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM feedback
		WHERE %s = $1
		ORDER BY created_at ASC, id ASC
	`, pgSelectColumns, column)

	rows, err := s.db.QueryContext(ctx, query, value)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var result []*domain.FeedbackEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

// Count returns the total number of feedback entries.
func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM feedback").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count feedback: %w", err)
	}
	return count, nil
}

// ExportJSON exports all feedback to a JSON writer.
func (s *PostgresStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	query := fmt.Sprintf(`
		SELECT %s FROM feedback
		ORDER BY created_at ASC, id ASC
		LIMIT $1
	`, pgSelectColumns)

	rows, err := s.db.QueryContext(ctx, query, maxExportLimit)
	if err != nil {
		return fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var all []*domain.FeedbackEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return fmt.Errorf("failed to scan row: %w", err)
		}
		all = append(all, entry)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate rows: %w", err)
	}

	export := &Export{
		Version:    "1.0",
		ExportedAt: time.Now(),
		Count:      len(all),
		Feedback:   all,
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}

// ImportJSON imports feedback from a JSON reader. Entries whose ID is
// already present are skipped.
func (s *PostgresStore) ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error) {
	var export Export
	if err := json.NewDecoder(reader).Decode(&export); err != nil {
		return 0, 0, fmt.Errorf("failed to decode JSON: %w", err)
	}

	for _, entry := range export.Feedback {
		var existing string
		err := s.db.QueryRowContext(ctx, "SELECT id FROM feedback WHERE id = $1", entry.ID).Scan(&existing)
		if err == nil {
			skipped++
			continue
		}
		if err != sql.ErrNoRows {
			return imported, skipped, fmt.Errorf("failed to check existing: %w", err)
		}

		if err := s.Save(ctx, entry); err != nil {
			return imported, skipped, fmt.Errorf("failed to save: %w", err)
		}
		imported++
	}

	return imported, skipped, nil
}

// Close closes the store and releases resources.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
