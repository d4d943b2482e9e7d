package feedback

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/Priyansh0418/Haski-sub005/internal/domain"
)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite feedback store.
// It creates the database file and schema if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// createSchema creates the database tables and indexes.
func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS feedback (
		id TEXT PRIMARY KEY,
		recommendation_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		helpful_rating INTEGER,
		product_satisfaction INTEGER,
		routine_completion_pct INTEGER,
		timeframe TEXT DEFAULT '',
		feedback_text TEXT DEFAULT '',
		improvement_suggestions TEXT DEFAULT '',
		adverse_reactions TEXT DEFAULT '',
		would_recommend INTEGER,
		product_ratings TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_feedback_recommendation ON feedback(recommendation_id);
	CREATE INDEX IF NOT EXISTS idx_feedback_user ON feedback(user_id);
	CREATE INDEX IF NOT EXISTS idx_feedback_created_at ON feedback(created_at);
	`

	_, err := db.Exec(schema)
	return err
}

// scanner is an interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanEntry scans a row into a FeedbackEntry.
func scanEntry(s scanner) (*domain.FeedbackEntry, error) {
	entry := &domain.FeedbackEntry{}
	var (
		helpful, satisfaction, completion sql.NullInt64
		wouldRecommend                    sql.NullBool
		timeframe, ratingsJSON            string
	)

	err := s.Scan(
		&entry.ID, &entry.RecommendationID, &entry.UserID,
		&helpful, &satisfaction, &completion,
		&timeframe, &entry.FeedbackText, &entry.ImprovementSuggestions,
		&entry.AdverseReactions, &wouldRecommend, &ratingsJSON, &entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.Timeframe = domain.Timeframe(timeframe)
	if helpful.Valid {
		v := int(helpful.Int64)
		entry.HelpfulRating = &v
	}
	if satisfaction.Valid {
		v := int(satisfaction.Int64)
		entry.ProductSatisfaction = &v
	}
	if completion.Valid {
		v := int(completion.Int64)
		entry.RoutineCompletionPct = &v
	}
	if wouldRecommend.Valid {
		v := wouldRecommend.Bool
		entry.WouldRecommend = &v
	}
	if ratingsJSON != "" {
		if err := json.Unmarshal([]byte(ratingsJSON), &entry.ProductRatings); err != nil {
			return nil, fmt.Errorf("failed to decode product ratings: %w", err)
		}
	}
	return entry, nil
}

const selectColumns = `id, recommendation_id, user_id,
		helpful_rating, product_satisfaction, routine_completion_pct,
		timeframe, feedback_text, improvement_suggestions,
		adverse_reactions, would_recommend, product_ratings, created_at`

// Save persists a new feedback entry. Entries are never updated in place.
func (s *SQLiteStore) Save(ctx context.Context, entry *domain.FeedbackEntry) error {
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

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback (
			id, recommendation_id, user_id,
			helpful_rating, product_satisfaction, routine_completion_pct,
			timeframe, feedback_text, improvement_suggestions,
			adverse_reactions, would_recommend, product_ratings, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
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
		return fmt.Errorf("failed to insert feedback: %w", err)
	}

	return nil
}

// ListByRecommendation returns all entries for a recommendation, oldest first.
func (s *SQLiteStore) ListByRecommendation(ctx context.Context, recommendationID string) ([]*domain.FeedbackEntry, error) {
	return s.list(ctx, "recommendation_id", recommendationID)
}

// ListByUser returns all entries submitted by a user, oldest first.
func (s *SQLiteStore) ListByUser(ctx context.Context, userID string) ([]*domain.FeedbackEntry, error) {
	return s.list(ctx, "user_id", userID)
}

func (s *SQLiteStore) list(ctx context.Context, column, value string) ([]*domain.FeedbackEntry, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM feedback
		WHERE %s = ?
		ORDER BY created_at ASC, id ASC
	`, selectColumns, column), value)
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
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM feedback").Scan(&count)
	return count, err
}

// maxExportLimit is the maximum number of entries to export at once.
const maxExportLimit = 1000000

// ExportJSON exports all feedback to a JSON writer.
func (s *SQLiteStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM feedback
		ORDER BY created_at ASC, id ASC
		LIMIT ?
	`, selectColumns), maxExportLimit)
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
func (s *SQLiteStore) ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error) {
	var export Export
	if err := json.NewDecoder(reader).Decode(&export); err != nil {
		return 0, 0, fmt.Errorf("failed to decode JSON: %w", err)
	}

	for _, entry := range export.Feedback {
		var existing string
		err := s.db.QueryRowContext(ctx, "SELECT id FROM feedback WHERE id = ?", entry.ID).Scan(&existing)
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
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullableBool(v *bool) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
