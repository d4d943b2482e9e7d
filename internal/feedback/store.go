// Package feedback stores user feedback on recommendation bundles and
// derives aggregate statistics and qualitative insights from it.
package feedback

import (
	"context"
	"io"
	"time"

	"github.com/Priyansh0418/Haski-sub005/internal/domain"
)

// Store defines the interface for feedback persistence. Entries are
// append-only: there is no update or delete, a correction is a new entry.
type Store interface {
	// Save persists a new feedback entry and fills in its ID.
	Save(ctx context.Context, entry *domain.FeedbackEntry) error

	// ListByRecommendation returns all entries for a recommendation, oldest
	// first.
	ListByRecommendation(ctx context.Context, recommendationID string) ([]*domain.FeedbackEntry, error)

	// ListByUser returns all entries submitted by a user, oldest first.
	ListByUser(ctx context.Context, userID string) ([]*domain.FeedbackEntry, error)

	// Count returns the total number of feedback entries.
	Count(ctx context.Context) (int64, error)

	// ExportJSON exports all feedback to a JSON writer.
	ExportJSON(ctx context.Context, writer io.Writer) error

	// ImportJSON imports feedback from a JSON reader. Entries whose ID is
	// already present are skipped.
	ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error)

	// Close closes the store and releases resources.
	Close() error
}

// Export is the JSON export format for feedback backups.
type Export struct {
	Version    string                  `json:"version"`
	ExportedAt time.Time               `json:"exported_at"`
	Count      int                     `json:"count"`
	Feedback   []*domain.FeedbackEntry `json:"feedback"`
}
