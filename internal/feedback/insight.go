package feedback

import (
	"fmt"

	"github.com/Priyansh0418/Haski-sub005/internal/domain"
)

// escalationTrigger inspects one feedback entry and returns an escalation
// when its condition holds. Triggers are evaluated in table order so the
// resulting escalations are deterministic.
type escalationTrigger struct {
	name  string
	check func(entry *domain.FeedbackEntry) *domain.Escalation
}

// escalationTriggers is the active trigger table. New triggers are added
// here; Analyze never needs to change.
var escalationTriggers = []escalationTrigger{
	{
		name: "adverse_reaction",
		check: func(entry *domain.FeedbackEntry) *domain.Escalation {
			if entry.AdverseReactions == "" {
				return nil
			}
			return &domain.Escalation{
				Severity: domain.EscalationHigh,
				Message:  fmt.Sprintf("Adverse reaction reported: %s", entry.AdverseReactions),
				Action:   domain.ActionFlagManualReview,
			}
		},
	},
}

// InsightEngine derives a qualitative reading from a single feedback entry.
// It is stateless; all thresholds live in this file.
type InsightEngine struct{}

// NewInsightEngine creates an insight engine.
func NewInsightEngine() *InsightEngine {
	return &InsightEngine{}
}

// Analyze classifies one feedback entry into satisfaction, adherence, and
// product quality buckets, collects improvement suggestions, and runs the
// escalation trigger table. Absent fields map to not_applicable rather than
// the lowest bucket.
func (e *InsightEngine) Analyze(entry *domain.FeedbackEntry) *domain.InsightResult {
	result := &domain.InsightResult{
		SatisfactionLevel: satisfactionLevel(entry.HelpfulRating),
		RoutineAdherence:  adherenceLevel(entry.RoutineCompletionPct),
		ProductQuality:    qualityAssessment(entry.ProductSatisfaction),
		Improvements:      []string{},
		Escalations:       []domain.Escalation{},
	}

	if result.RoutineAdherence == domain.AdherencePoor || result.RoutineAdherence == domain.AdherenceFair {
		result.Improvements = append(result.Improvements,
			"Consider simplifying the routine to improve completion")
	}
	if result.SatisfactionLevel == domain.SatisfactionLow {
		result.Improvements = append(result.Improvements,
			"Review recommendation relevance for this user profile")
	}
	if entry.AdverseReactions != "" {
		result.Improvements = append(result.Improvements,
			"Review flagged products for adverse reactions")
	}
	if entry.WouldRecommend != nil && !*entry.WouldRecommend {
		result.Improvements = append(result.Improvements,
			"Investigate why the user would not recommend this plan")
	}

	for _, trigger := range escalationTriggers {
		if esc := trigger.check(entry); esc != nil {
			result.Escalations = append(result.Escalations, *esc)
		}
	}

	return result
}

func satisfactionLevel(rating *int) domain.SatisfactionLevel {
	switch {
	case rating == nil:
		return domain.SatisfactionNotApplicable
	case *rating >= 4:
		return domain.SatisfactionHigh
	case *rating == 3:
		return domain.SatisfactionMedium
	default:
		return domain.SatisfactionLow
	}
}

func adherenceLevel(completionPct *int) domain.AdherenceLevel {
	switch {
	case completionPct == nil:
		return domain.AdherenceNotApplicable
	case *completionPct >= 80:
		return domain.AdherenceExcellent
	case *completionPct >= 60:
		return domain.AdherenceGood
	case *completionPct >= 40:
		return domain.AdherenceFair
	default:
		return domain.AdherencePoor
	}
}

func qualityAssessment(satisfaction *int) domain.QualityAssessment {
	switch {
	case satisfaction == nil:
		return domain.QualityNotApplicable
	case *satisfaction >= 4:
		return domain.QualityHigh
	case *satisfaction == 3:
		return domain.QualityAcceptable
	default:
		return domain.QualityNeedsImprovement
	}
}
