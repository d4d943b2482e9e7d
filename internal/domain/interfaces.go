package domain

import (
	"context"
)

// RecommendationStore persists assembled recommendation bundles. Bundles are
// written once and never updated.
type RecommendationStore interface {
	Save(ctx context.Context, bundle *RecommendationBundle) error
	// Get returns ErrNotFound when no bundle exists for the id.
	Get(ctx context.Context, id string) (*RecommendationBundle, error)
	// GetByAnalysis returns every bundle generated for an analysis, oldest
	// first. Regeneration after a rule reload appends, never replaces.
	GetByAnalysis(ctx context.Context, analysisID string) ([]*RecommendationBundle, error)
}

// AuditLog records which rules fired for which analysis. Entries are
// append-only and store value copies of the firing rule, so later ruleset
// reloads cannot alter history. Entries for the same analysis preserve
// insertion order.
type AuditLog interface {
	Record(ctx context.Context, rule Rule, analysisID string, matchedPredicates []string) (*RuleApplication, error)
	Query(ctx context.Context, analysisID string) ([]*RuleApplication, error)
}
