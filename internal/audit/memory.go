// Package audit provides append-only storage for rule application records.
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Priyansh0418/Haski-sub005/internal/domain"
)

// MemoryLog is an in-memory append-only audit log. Entries for the same
// analysis keep insertion order; concurrent recording for different analyses
// needs no ordering across them.
type MemoryLog struct {
	mu      sync.Mutex
	entries map[string][]*domain.RuleApplication
}

// NewMemoryLog creates an empty in-memory audit log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{
		entries: make(map[string][]*domain.RuleApplication),
	}
}

// Record appends an audit entry carrying a value copy of the firing rule.
func (l *MemoryLog) Record(ctx context.Context, rule domain.Rule, analysisID string, matchedPredicates []string) (*domain.RuleApplication, error) {
	app := &domain.RuleApplication{
		ID:                uuid.NewString(),
		RuleID:            rule.ID,
		RuleSnapshot:      rule.Clone(),
		AnalysisID:        analysisID,
		MatchedPredicates: append([]string(nil), matchedPredicates...),
		Timestamp:         time.Now().UTC(),
	}

	l.mu.Lock()
	l.entries[analysisID] = append(l.entries[analysisID], app)
	l.mu.Unlock()

	return app, nil
}

// Query returns the audit entries for an analysis in insertion order.
func (l *MemoryLog) Query(ctx context.Context, analysisID string) ([]*domain.RuleApplication, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	stored := l.entries[analysisID]
	out := make([]*domain.RuleApplication, len(stored))
	copy(out, stored)
	return out, nil
}
