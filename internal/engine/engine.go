package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Priyansh0418/Haski-sub005/internal/domain"
	"github.com/Priyansh0418/Haski-sub005/internal/rules"
)

// Engine is the single explicit recommendation engine instance. It captures
// one RuleSet snapshot per generation, audits every matched rule, and
// persists the assembled bundle. It is constructed at startup and injected
// wherever recommendations are generated; there is no ambient mutable state.
type Engine struct {
	store   *rules.Store
	audit   domain.AuditLog
	bundles domain.RecommendationStore
	logger  *logrus.Logger
	now     func() time.Time
	newID   func() string
}

// NewEngine creates a recommendation engine over the given rule store, audit
// log, and bundle store.
func NewEngine(store *rules.Store, audit domain.AuditLog, bundles domain.RecommendationStore, logger *logrus.Logger) *Engine {
	return &Engine{
		store:   store,
		audit:   audit,
		bundles: bundles,
		logger:  logger,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
}

// GenerateRecommendation matches the snapshot against the currently active
// rule set, records one audit entry per matched rule, assembles the bundle,
// and persists it. The audit entries and bundle.AppliedRuleIDs carry exactly
// the same rule ids in the same order, including rules whose output the
// assembler later deduplicated away.
//
// A concurrent rule reload is not an error: the snapshot reference captured
// here is used for the whole generation.
func (e *Engine) GenerateRecommendation(ctx context.Context, snapshot *domain.AnalysisSnapshot) (*domain.RecommendationBundle, error) {
	set := e.store.Active()

	matched := Match(snapshot, set)

	for _, m := range matched {
		if _, err := e.audit.Record(ctx, m.Rule, snapshot.AnalysisID, m.MatchedPredicates); err != nil {
			return nil, fmt.Errorf("recording rule application for %s: %w", m.Rule.ID, err)
		}
	}

	bundle := Assemble(matched, set.Version)
	bundle.ID = e.newID()
	bundle.AnalysisID = snapshot.AnalysisID
	bundle.UserID = snapshot.UserID
	bundle.CreatedAt = e.now().UTC()

	if err := e.bundles.Save(ctx, bundle); err != nil {
		return nil, fmt.Errorf("saving recommendation bundle: %w", err)
	}

	e.logger.WithFields(logrus.Fields{
		"analysis_id":     snapshot.AnalysisID,
		"bundle_id":       bundle.ID,
		"ruleset_version": set.Version,
		"rules_matched":   len(matched),
		"escalations":     len(bundle.Escalations),
	}).Info("Recommendation generated")

	return bundle, nil
}

// RuleApplications returns the audit trail for an analysis, in match order.
func (e *Engine) RuleApplications(ctx context.Context, analysisID string) ([]*domain.RuleApplication, error) {
	return e.audit.Query(ctx, analysisID)
}

// ReloadRules atomically replaces the active rule set from the given path.
func (e *Engine) ReloadRules(path string) (count int, version int64, err error) {
	return e.store.Reload(path)
}
