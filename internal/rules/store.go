// Package rules loads, validates, and atomically publishes declarative
// recommendation rule sets.
package rules

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/Priyansh0418/Haski-sub005/internal/domain"
)

// ruleFile is the on-disk YAML shape of a rule source.
type ruleFile struct {
	Rules []domain.Rule `yaml:"rules"`
}

// Store holds the active RuleSet snapshot. Reload is copy-on-write: the new
// set is fully parsed and validated before a single pointer swap publishes
// it, so readers never observe a half-updated ruleset. In-flight matches that
// already captured the old snapshot complete against it unaffected.
type Store struct {
	logger  *logrus.Logger
	active  atomic.Pointer[domain.RuleSet]
	version atomic.Int64
}

// NewStore creates an empty rule store. Call Reload (or publish a set built
// with Load) before matching.
func NewStore(logger *logrus.Logger) *Store {
	s := &Store{logger: logger}
	s.active.Store(&domain.RuleSet{Version: 0, Rules: nil})
	return s
}

// Active returns the current immutable RuleSet snapshot.
func (s *Store) Active() *domain.RuleSet {
	return s.active.Load()
}

// Reload parses and validates the rule file at path and atomically swaps the
// active snapshot. On any validation failure the previous snapshot stays
// active and the *domain.RuleSchemaError is returned.
func (s *Store) Reload(path string) (count int, version int64, err error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, fmt.Errorf("reading rule source: %w", err)
	}

	set, err := s.Load(source)
	if err != nil {
		return 0, 0, err
	}

	s.active.Store(set)

	s.logger.WithFields(logrus.Fields{
		"rule_count": len(set.Rules),
		"version":    set.Version,
		"checksum":   set.Checksum,
		"path":       path,
	}).Info("Rule set reloaded")

	return len(set.Rules), set.Version, nil
}

// Load parses and validates a YAML rule source into a new versioned RuleSet
// without publishing it. Validation is all-or-nothing: every problem found is
// reported in a single RuleSchemaError.
func (s *Store) Load(source []byte) (*domain.RuleSet, error) {
	var file ruleFile
	if err := yaml.Unmarshal(source, &file); err != nil {
		return nil, &domain.RuleSchemaError{Reasons: []string{fmt.Sprintf("parsing YAML: %v", err)}}
	}

	schemaErr := &domain.RuleSchemaError{}
	if len(file.Rules) == 0 {
		schemaErr.Add("", "rule source contains no rules")
	}

	seen := make(map[string]bool, len(file.Rules))
	for i, rule := range file.Rules {
		if rule.ID == "" {
			schemaErr.Add("", "rule at index %d is missing an id", i)
			continue
		}
		if seen[rule.ID] {
			schemaErr.Add(rule.ID, "duplicate rule id")
		}
		seen[rule.ID] = true

		validateRule(rule, schemaErr)
	}

	if schemaErr.HasReasons() {
		return nil, schemaErr
	}

	sum := sha256.Sum256(source)
	return &domain.RuleSet{
		Version:  s.version.Add(1),
		Checksum: hex.EncodeToString(sum[:]),
		Rules:    file.Rules,
	}, nil
}

// validateRule checks one rule's category, conditions, and action payload,
// appending every problem found to schemaErr.
func validateRule(rule domain.Rule, schemaErr *domain.RuleSchemaError) {
	if !rule.Category.IsValid() {
		schemaErr.Add(rule.ID, "unknown category %q", rule.Category)
	}
	if len(rule.Conditions) == 0 {
		schemaErr.Add(rule.ID, "rule has no conditions")
	}
	if rule.Escalation && rule.EscalationSeverity != "" && !rule.EscalationSeverity.IsValid() {
		schemaErr.Add(rule.ID, "unknown escalation severity %q", rule.EscalationSeverity)
	}

	for i, cond := range rule.Conditions {
		validateCondition(rule.ID, i, cond, schemaErr)
	}

	validateAction(rule.ID, rule.Action, schemaErr)
}

func validateCondition(ruleID string, idx int, cond domain.Condition, schemaErr *domain.RuleSchemaError) {
	if !domain.SnapshotAttributes[cond.Attribute] {
		schemaErr.Add(ruleID, "condition %d references unknown attribute %q", idx, cond.Attribute)
		return
	}
	if !cond.Operator.IsValid() {
		schemaErr.Add(ruleID, "condition %d uses unsupported operator %q", idx, cond.Operator)
		return
	}

	switch cond.Operator {
	case domain.OpEquals:
		if cond.Attribute == "age" {
			schemaErr.Add(ruleID, "condition %d: age supports only the between operator", idx)
		}
		if cond.Value == "" {
			schemaErr.Add(ruleID, "condition %d: equals requires a value", idx)
		}
	case domain.OpIn:
		if cond.Attribute == "age" || cond.Attribute == "condition" {
			schemaErr.Add(ruleID, "condition %d: in is not supported on attribute %q", idx, cond.Attribute)
		}
		if len(cond.Values) == 0 {
			schemaErr.Add(ruleID, "condition %d: in requires a non-empty values list", idx)
		}
	case domain.OpSeverityAtLeast:
		if cond.Attribute != "condition" {
			schemaErr.Add(ruleID, "condition %d: severity_at_least applies only to the condition attribute", idx)
		}
		if cond.Value == "" {
			schemaErr.Add(ruleID, "condition %d: severity_at_least requires a condition name", idx)
		}
		if !cond.Severity.IsValid() {
			schemaErr.Add(ruleID, "condition %d: unknown severity floor %q", idx, cond.Severity)
		}
	case domain.OpBetween:
		if cond.Attribute != "age" {
			schemaErr.Add(ruleID, "condition %d: between applies only to the age attribute", idx)
		}
		if cond.Min == nil && cond.Max == nil {
			schemaErr.Add(ruleID, "condition %d: between requires min or max", idx)
		}
		if cond.Min != nil && cond.Max != nil && *cond.Min > *cond.Max {
			schemaErr.Add(ruleID, "condition %d: between min %d exceeds max %d", idx, *cond.Min, *cond.Max)
		}
	}
}

func validateAction(ruleID string, action domain.Action, schemaErr *domain.RuleSchemaError) {
	if !action.Kind.IsValid() {
		schemaErr.Add(ruleID, "unknown action kind %q", action.Kind)
		return
	}

	switch action.Kind {
	case domain.ActionRoutineStep:
		if action.Text == "" {
			schemaErr.Add(ruleID, "routine_step action requires text")
		}
		if action.StepNo < 0 {
			schemaErr.Add(ruleID, "routine_step step_no must not be negative")
		}
		if action.ProductCategory != "" || action.ProductTag != "" {
			schemaErr.Add(ruleID, "routine_step action must not carry product fields")
		}
	case domain.ActionProduct:
		if action.ProductCategory == "" {
			schemaErr.Add(ruleID, "product action requires product_category")
		}
		if action.Text != "" || action.StepNo != 0 {
			schemaErr.Add(ruleID, "product action must not carry routine fields")
		}
	case domain.ActionDietItem:
		if action.Text == "" {
			schemaErr.Add(ruleID, "diet_item action requires text")
		}
		if action.ProductCategory != "" || action.ProductTag != "" || action.StepNo != 0 {
			schemaErr.Add(ruleID, "diet_item action must not carry routine or product fields")
		}
	}
}
