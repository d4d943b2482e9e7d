package domain

import (
	"fmt"
	"strings"
	"time"
)

// Condition is a single testable predicate over an analysis snapshot
// attribute. Exactly one operator applies; the populated value fields depend
// on it: Value for equals and severity_at_least (the condition name), Values
// for in, Min/Max for between.
type Condition struct {
	Attribute string   `yaml:"attribute" json:"attribute"`
	Operator  Operator `yaml:"operator" json:"operator"`
	Value     string   `yaml:"value,omitempty" json:"value,omitempty"`
	Values    []string `yaml:"values,omitempty" json:"values,omitempty"`
	Severity  Severity `yaml:"severity,omitempty" json:"severity,omitempty"`
	Min       *int     `yaml:"min,omitempty" json:"min,omitempty"`
	Max       *int     `yaml:"max,omitempty" json:"max,omitempty"`
}

// Describe renders the condition as a short human-readable clause, used for
// audit records and escalation messages.
func (c Condition) Describe() string {
	switch c.Operator {
	case OpEquals:
		return fmt.Sprintf("%s == %s", c.Attribute, c.Value)
	case OpIn:
		return fmt.Sprintf("%s in [%s]", c.Attribute, strings.Join(c.Values, ", "))
	case OpSeverityAtLeast:
		return fmt.Sprintf("%s severity >= %s", c.Value, c.Severity)
	case OpBetween:
		lo, hi := "-", "-"
		if c.Min != nil {
			lo = fmt.Sprintf("%d", *c.Min)
		}
		if c.Max != nil {
			hi = fmt.Sprintf("%d", *c.Max)
		}
		return fmt.Sprintf("%s between %s and %s", c.Attribute, lo, hi)
	default:
		return fmt.Sprintf("%s %s ?", c.Attribute, c.Operator)
	}
}

// Action is the output payload a matched rule contributes to a bundle.
// StepNo and Text apply to routine steps, Text alone to diet items, and
// ProductCategory/ProductTag to product picks.
type Action struct {
	Kind            ActionKind `yaml:"kind" json:"kind"`
	StepNo          int        `yaml:"step_no,omitempty" json:"step_no,omitempty"`
	Text            string     `yaml:"text,omitempty" json:"text,omitempty"`
	ProductCategory string     `yaml:"product_category,omitempty" json:"product_category,omitempty"`
	ProductTag      string     `yaml:"product_tag,omitempty" json:"product_tag,omitempty"`
}

// Rule is a declarative condition-to-action mapping. Rules are immutable
// once loaded; a reload replaces the whole set.
type Rule struct {
	ID                 string             `yaml:"id" json:"id"`
	Name               string             `yaml:"name" json:"name"`
	Category           RuleCategory       `yaml:"category" json:"category"`
	Conditions         []Condition        `yaml:"conditions" json:"conditions"`
	Priority           int                `yaml:"priority" json:"priority"`
	Action             Action             `yaml:"action" json:"action"`
	Escalation         bool               `yaml:"escalation,omitempty" json:"escalation"`
	EscalationSeverity EscalationSeverity `yaml:"escalation_severity,omitempty" json:"escalation_severity,omitempty"`
}

// Clone returns a deep value copy of the rule, so audit records cannot be
// retroactively altered by later ruleset reloads.
func (r Rule) Clone() Rule {
	out := r
	out.Conditions = make([]Condition, len(r.Conditions))
	for i, c := range r.Conditions {
		cc := c
		if c.Values != nil {
			cc.Values = append([]string(nil), c.Values...)
		}
		if c.Min != nil {
			v := *c.Min
			cc.Min = &v
		}
		if c.Max != nil {
			v := *c.Max
			cc.Max = &v
		}
		out.Conditions[i] = cc
	}
	return out
}

// RuleSet is an immutable, versioned snapshot of rules in declaration order.
// It is never mutated in place; RuleStore publishes a new snapshot on reload.
type RuleSet struct {
	Version  int64  `json:"version"`
	Checksum string `json:"checksum"`
	Rules    []Rule `json:"rules"`
}

// AnalysisSnapshot is the analyzed skin/hair profile supplied by the external
// ML classifier. It is read-only to the recommendation core.
type AnalysisSnapshot struct {
	AnalysisID         string              `json:"analysis_id"`
	UserID             string              `json:"user_id"`
	SkinType           string              `json:"skin_type"`
	HairType           string              `json:"hair_type"`
	ConditionsDetected map[string]Severity `json:"conditions_detected"`
	Sensitivity        string              `json:"sensitivity"`
	Age                int                 `json:"age"`
}

// RoutineStep is one ordered step of a recommended routine.
type RoutineStep struct {
	StepNo int    `json:"step_no"`
	Text   string `json:"text"`
	RuleID string `json:"rule_id"`
}

// ProductPick is a recommended product category, deduplicated per category by
// rule priority.
type ProductPick struct {
	Category string `json:"category"`
	Tag      string `json:"tag"`
	RuleID   string `json:"rule_id"`
}

// Escalation is a flagged alert requiring manual review.
type Escalation struct {
	Severity EscalationSeverity `json:"severity"`
	Message  string             `json:"message"`
	Action   string             `json:"action"`
}

// RecommendationBundle is the assembled output for one analysis. It is
// created once and never mutated; feedback never edits it.
type RecommendationBundle struct {
	ID             string        `json:"id"`
	AnalysisID     string        `json:"analysis_id"`
	UserID         string        `json:"user_id"`
	Routines       []RoutineStep `json:"routines"`
	Products       []ProductPick `json:"products"`
	Diet           []string      `json:"diet"`
	Escalations    []Escalation  `json:"escalations"`
	AppliedRuleIDs []string      `json:"applied_rule_ids"`
	RuleSetVersion int64         `json:"ruleset_version"`
	CreatedAt      time.Time     `json:"created_at"`
}

// RuleApplication is an append-only audit record of one rule firing for one
// analysis. RuleSnapshot is a value copy captured at firing time.
type RuleApplication struct {
	ID                string    `json:"id"`
	RuleID            string    `json:"rule_id"`
	RuleSnapshot      Rule      `json:"rule_snapshot"`
	AnalysisID        string    `json:"analysis_id"`
	MatchedPredicates []string  `json:"matched_predicates"`
	Timestamp         time.Time `json:"timestamp"`
}

// FeedbackEntry is one user's feedback on a recommendation bundle.
// Entries are immutable once created; corrections require a new entry.
type FeedbackEntry struct {
	ID                     string         `json:"id"`
	RecommendationID       string         `json:"recommendation_id"`
	UserID                 string         `json:"user_id"`
	HelpfulRating          *int           `json:"helpful_rating,omitempty"`
	ProductSatisfaction    *int           `json:"product_satisfaction,omitempty"`
	RoutineCompletionPct   *int           `json:"routine_completion_pct,omitempty"`
	Timeframe              Timeframe      `json:"timeframe,omitempty"`
	FeedbackText           string         `json:"feedback_text,omitempty"`
	ImprovementSuggestions string         `json:"improvement_suggestions,omitempty"`
	AdverseReactions       string         `json:"adverse_reactions,omitempty"`
	WouldRecommend         *bool          `json:"would_recommend,omitempty"`
	ProductRatings         map[string]int `json:"product_ratings,omitempty"`
	CreatedAt              time.Time      `json:"created_at"`
}

// FeedbackStats is the derived aggregate over all feedback for one
// recommendation. Averages are computed only over entries where the field is
// set; absent values neither count as zero nor shrink other denominators.
type FeedbackStats struct {
	RecommendationID       string      `json:"recommendation_id"`
	TotalFeedbacks         int         `json:"total_feedbacks"`
	AvgHelpfulRating       *float64    `json:"avg_helpful_rating,omitempty"`
	AvgProductSatisfaction *float64    `json:"avg_product_satisfaction,omitempty"`
	AvgRoutineCompletion   *float64    `json:"avg_routine_completion,omitempty"`
	WouldRecommendCount    int         `json:"would_recommend_count"`
	WouldNotRecommendCount int         `json:"would_not_recommend_count"`
	AdverseReactionCount   int         `json:"adverse_reaction_count"`
	HelpfulFeedbacks       int         `json:"helpful_feedbacks"`
	NotHelpfulFeedbacks    int         `json:"not_helpful_feedbacks"`
	RatingsDistribution    map[int]int `json:"ratings_distribution"`
}

// UserFeedbackSummary aggregates all feedback submitted by one user across
// their recommendations.
type UserFeedbackSummary struct {
	UserID                 string   `json:"user_id"`
	TotalFeedbacks         int      `json:"total_feedbacks"`
	AvgHelpfulRating       *float64 `json:"avg_helpful_rating,omitempty"`
	AvgProductSatisfaction *float64 `json:"avg_product_satisfaction,omitempty"`
	AvgRoutineCompletion   *float64 `json:"avg_routine_completion,omitempty"`
	WouldRecommendCount    int      `json:"would_recommend_count"`
	WouldNotRecommendCount int      `json:"would_not_recommend_count"`
	WouldRecommendRate     *float64 `json:"would_recommend_rate,omitempty"`
	AdverseReactionCount   int      `json:"adverse_reaction_count"`
}

// InsightResult is the qualitative read of a single feedback entry.
type InsightResult struct {
	SatisfactionLevel SatisfactionLevel `json:"satisfaction_level"`
	RoutineAdherence  AdherenceLevel    `json:"routine_adherence"`
	ProductQuality    QualityAssessment `json:"product_quality_assessment"`
	Improvements      []string          `json:"recommendations_for_improvement"`
	Escalations       []Escalation      `json:"escalations"`
}
