// Package engine matches analysis snapshots against rule sets and assembles
// the matched rules into recommendation bundles.
package engine

import (
	"github.com/Priyansh0418/Haski-sub005/internal/domain"
)

// MatchedRule pairs a rule with the predicates that held for the snapshot.
// Index is the rule's declaration position within its RuleSet, which drives
// deterministic ordering and tie-breaking downstream.
type MatchedRule struct {
	Rule              domain.Rule
	Index             int
	MatchedPredicates []string
}

// Match evaluates every rule in the set against the snapshot and returns the
// rules whose conditions all hold, in declaration order. It is a pure
// function of (snapshot, ruleset): no state, no randomness, no clock, so
// identical inputs always produce an identical ordered result.
func Match(snapshot *domain.AnalysisSnapshot, set *domain.RuleSet) []MatchedRule {
	matched := make([]MatchedRule, 0, len(set.Rules))

	for i, rule := range set.Rules {
		predicates, ok := evaluateRule(snapshot, rule)
		if !ok {
			continue
		}
		matched = append(matched, MatchedRule{
			Rule:              rule,
			Index:             i,
			MatchedPredicates: predicates,
		})
	}

	return matched
}

// evaluateRule applies the rule's conditions conjunctively: every predicate
// must hold for the rule to match.
func evaluateRule(snapshot *domain.AnalysisSnapshot, rule domain.Rule) ([]string, bool) {
	predicates := make([]string, 0, len(rule.Conditions))

	for _, cond := range rule.Conditions {
		if !evaluateCondition(snapshot, cond) {
			return nil, false
		}
		predicates = append(predicates, cond.Describe())
	}

	return predicates, true
}

func evaluateCondition(snapshot *domain.AnalysisSnapshot, cond domain.Condition) bool {
	switch cond.Operator {
	case domain.OpEquals:
		return attributeValue(snapshot, cond.Attribute) == cond.Value

	case domain.OpIn:
		actual := attributeValue(snapshot, cond.Attribute)
		for _, v := range cond.Values {
			if actual == v {
				return true
			}
		}
		return false

	case domain.OpSeverityAtLeast:
		severity, detected := snapshot.ConditionsDetected[cond.Value]
		return detected && severity.AtLeast(cond.Severity)

	case domain.OpBetween:
		if cond.Attribute != "age" {
			return false
		}
		if cond.Min != nil && snapshot.Age < *cond.Min {
			return false
		}
		if cond.Max != nil && snapshot.Age > *cond.Max {
			return false
		}
		return true

	default:
		return false
	}
}

func attributeValue(snapshot *domain.AnalysisSnapshot, attribute string) string {
	switch attribute {
	case "skin_type":
		return snapshot.SkinType
	case "hair_type":
		return snapshot.HairType
	case "sensitivity":
		return snapshot.Sensitivity
	default:
		return ""
	}
}
