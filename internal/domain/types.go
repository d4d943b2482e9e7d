// Package domain contains core business entities for rule-based skincare and
// haircare recommendation generation and feedback analysis.
package domain

import (
	"errors"
)

// RuleCategory represents the product domain a rule belongs to.
type RuleCategory string

const (
	CategorySkincare RuleCategory = "skincare"
	CategoryHaircare RuleCategory = "haircare"
	CategoryDiet     RuleCategory = "diet"
)

// ActionKind represents the kind of output a rule contributes to a bundle.
type ActionKind string

const (
	ActionRoutineStep ActionKind = "routine_step"
	ActionProduct     ActionKind = "product"
	ActionDietItem    ActionKind = "diet_item"
)

// Operator represents a condition predicate operator.
type Operator string

const (
	OpEquals          Operator = "equals"
	OpIn              Operator = "in"
	OpSeverityAtLeast Operator = "severity_at_least"
	OpBetween         Operator = "between"
)

// Severity represents how pronounced a detected condition is.
type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// EscalationSeverity represents the urgency of a manual-review escalation.
type EscalationSeverity string

const (
	EscalationHigh   EscalationSeverity = "HIGH"
	EscalationMedium EscalationSeverity = "MEDIUM"
	EscalationLow    EscalationSeverity = "LOW"
)

// ActionFlagManualReview is the action attached to every generated escalation.
const ActionFlagManualReview = "flag_for_manual_review"

// Timeframe represents how long the user followed a recommendation before
// submitting feedback.
type Timeframe string

const (
	TimeframeOneWeek   Timeframe = "1_week"
	TimeframeTwoWeeks  Timeframe = "2_weeks"
	TimeframeOneMonth  Timeframe = "1_month"
	TimeframeThreePlus Timeframe = "3_months_plus"
)

// SatisfactionLevel buckets the helpful_rating of a feedback entry.
type SatisfactionLevel string

const (
	SatisfactionHigh          SatisfactionLevel = "high"
	SatisfactionMedium        SatisfactionLevel = "medium"
	SatisfactionLow           SatisfactionLevel = "low"
	SatisfactionNotApplicable SatisfactionLevel = "not_applicable"
)

// AdherenceLevel buckets the routine_completion_pct of a feedback entry.
type AdherenceLevel string

const (
	AdherenceExcellent     AdherenceLevel = "excellent"
	AdherenceGood          AdherenceLevel = "good"
	AdherenceFair          AdherenceLevel = "fair"
	AdherencePoor          AdherenceLevel = "poor"
	AdherenceNotApplicable AdherenceLevel = "not_applicable"
)

// QualityAssessment buckets the product_satisfaction of a feedback entry.
type QualityAssessment string

const (
	QualityHigh             QualityAssessment = "high_quality"
	QualityAcceptable       QualityAssessment = "acceptable"
	QualityNeedsImprovement QualityAssessment = "needs_improvement"
	QualityNotApplicable    QualityAssessment = "not_applicable"
)

// Sentinel errors shared across the recommendation and feedback components.
var (
	ErrNotFound = errors.New("not found")
	ErrNotOwned = errors.New("recommendation not owned by user")
)

// IsValid reports whether the category is a known rule category.
func (c RuleCategory) IsValid() bool {
	switch c {
	case CategorySkincare, CategoryHaircare, CategoryDiet:
		return true
	default:
		return false
	}
}

// String returns the string representation of the rule category.
func (c RuleCategory) String() string {
	return string(c)
}

// IsValid reports whether the action kind is supported.
func (k ActionKind) IsValid() bool {
	switch k {
	case ActionRoutineStep, ActionProduct, ActionDietItem:
		return true
	default:
		return false
	}
}

// String returns the string representation of the action kind.
func (k ActionKind) String() string {
	return string(k)
}

// IsValid reports whether the operator is supported.
func (o Operator) IsValid() bool {
	switch o {
	case OpEquals, OpIn, OpSeverityAtLeast, OpBetween:
		return true
	default:
		return false
	}
}

// String returns the string representation of the operator.
func (o Operator) String() string {
	return string(o)
}

// IsValid reports whether the severity is a known level.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityMild, SeverityModerate, SeveritySevere:
		return true
	default:
		return false
	}
}

// Rank returns the ordinal position of the severity so levels can be
// compared against a threshold. Unknown severities rank below mild.
func (s Severity) Rank() int {
	switch s {
	case SeverityMild:
		return 1
	case SeverityModerate:
		return 2
	case SeveritySevere:
		return 3
	default:
		return 0
	}
}

// AtLeast reports whether the severity meets or exceeds the given floor.
func (s Severity) AtLeast(floor Severity) bool {
	return s.Rank() >= floor.Rank()
}

// String returns the string representation of the severity.
func (s Severity) String() string {
	return string(s)
}

// IsValid reports whether the escalation severity is a known level.
func (es EscalationSeverity) IsValid() bool {
	switch es {
	case EscalationHigh, EscalationMedium, EscalationLow:
		return true
	default:
		return false
	}
}

// String returns the string representation of the escalation severity.
func (es EscalationSeverity) String() string {
	return string(es)
}

// IsValid reports whether the timeframe is a known value. The empty
// timeframe is valid because feedback may omit it.
func (tf Timeframe) IsValid() bool {
	switch tf {
	case "", TimeframeOneWeek, TimeframeTwoWeeks, TimeframeOneMonth, TimeframeThreePlus:
		return true
	default:
		return false
	}
}

// SnapshotAttributes lists the analysis snapshot attributes a rule condition
// may reference, keyed by attribute name.
var SnapshotAttributes = map[string]bool{
	"skin_type":   true,
	"hair_type":   true,
	"condition":   true,
	"sensitivity": true,
	"age":         true,
}
