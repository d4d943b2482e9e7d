package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Priyansh0418/Haski-sub005/internal/domain"
)

// Assemble merges matched rules into a categorized bundle. The input order is
// the matcher's declaration order; all tie-breaking is by (priority desc,
// declaration asc), so repeated runs over the same matches produce an
// identical bundle. ID, AnalysisID, UserID, and CreatedAt are left for the
// engine to stamp.
func Assemble(matched []MatchedRule, rulesetVersion int64) *domain.RecommendationBundle {
	bundle := &domain.RecommendationBundle{
		Routines:       make([]domain.RoutineStep, 0),
		Products:       make([]domain.ProductPick, 0),
		Diet:           make([]string, 0),
		Escalations:    make([]domain.Escalation, 0),
		AppliedRuleIDs: make([]string, 0, len(matched)),
		RuleSetVersion: rulesetVersion,
	}

	type routineEntry struct {
		step     domain.RoutineStep
		priority int
		index    int
		explicit bool
	}
	var routines []routineEntry
	productByCategory := make(map[string]int) // category -> index into bundle.Products
	productMeta := make(map[string]MatchedRule)
	seenDiet := make(map[string]bool)

	for _, m := range matched {
		bundle.AppliedRuleIDs = append(bundle.AppliedRuleIDs, m.Rule.ID)

		switch m.Rule.Action.Kind {
		case domain.ActionRoutineStep:
			routines = append(routines, routineEntry{
				step: domain.RoutineStep{
					StepNo: m.Rule.Action.StepNo,
					Text:   m.Rule.Action.Text,
					RuleID: m.Rule.ID,
				},
				priority: m.Rule.Priority,
				index:    m.Index,
				explicit: m.Rule.Action.StepNo > 0,
			})

		case domain.ActionProduct:
			category := m.Rule.Action.ProductCategory
			if at, exists := productByCategory[category]; exists {
				prev := productMeta[category]
				// Keep the higher-priority rule; equal priority keeps the
				// earlier declaration.
				if m.Rule.Priority > prev.Rule.Priority {
					bundle.Products[at] = domain.ProductPick{
						Category: category,
						Tag:      m.Rule.Action.ProductTag,
						RuleID:   m.Rule.ID,
					}
					productMeta[category] = m
				}
				continue
			}
			productByCategory[category] = len(bundle.Products)
			productMeta[category] = m
			bundle.Products = append(bundle.Products, domain.ProductPick{
				Category: category,
				Tag:      m.Rule.Action.ProductTag,
				RuleID:   m.Rule.ID,
			})

		case domain.ActionDietItem:
			if seenDiet[m.Rule.Action.Text] {
				continue
			}
			seenDiet[m.Rule.Action.Text] = true
			bundle.Diet = append(bundle.Diet, m.Rule.Action.Text)
		}
	}

	// Explicit step numbers come first in step order; the rest follow by
	// (priority desc, declaration asc).
	sort.SliceStable(routines, func(i, j int) bool {
		a, b := routines[i], routines[j]
		if a.explicit != b.explicit {
			return a.explicit
		}
		if a.explicit {
			return a.step.StepNo < b.step.StepNo
		}
		if a.priority != b.priority {
			return a.priority > b.priority
		}
		return a.index < b.index
	})
	for _, entry := range routines {
		bundle.Routines = append(bundle.Routines, entry.step)
	}

	for _, m := range matched {
		if !m.Rule.Escalation {
			continue
		}
		bundle.Escalations = append(bundle.Escalations, escalationFor(m))
	}

	return bundle
}

// escalationFor builds a manual-review escalation from an escalation-flagged
// rule, templating the message from the predicates that matched.
func escalationFor(m MatchedRule) domain.Escalation {
	severity := m.Rule.EscalationSeverity
	if severity == "" {
		severity = domain.EscalationHigh
	}
	return domain.Escalation{
		Severity: severity,
		Message: fmt.Sprintf("Rule %q triggered on: %s",
			m.Rule.Name, strings.Join(m.MatchedPredicates, "; ")),
		Action: domain.ActionFlagManualReview,
	}
}
