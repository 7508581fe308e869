package permission

import (
	"strings"

	"github.com/tidwall/match"
)

// Scope is the resource category a rule or check applies to.
type Scope string

const (
	ScopeFile      Scope = "file"
	ScopeDirectory Scope = "directory"
	ScopeCommand   Scope = "command"
	ScopeSystem    Scope = "system"
	ScopeProject   Scope = "project"
)

// DenyPriority is the priority at or above which a rule is treated as a
// deny rule.
const DenyPriority = 200

// denyIDPrefix also classifies a rule as a deny rule, regardless of
// priority.
const denyIDPrefix = "deny-"

// Rule is one entry of the permission rule store.
type Rule struct {
	// ID uniquely identifies the rule. IDs starting with "deny-" mark
	// deny rules.
	ID string `yaml:"id"`

	// Description is a human-readable summary, used in audit reasons.
	Description string `yaml:"description,omitempty"`

	// Scope is the resource category the rule applies to.
	Scope Scope `yaml:"scope"`

	// Actions lists the actions the rule covers. "*" covers all.
	Actions []string `yaml:"actions"`

	// Patterns are glob patterns matched against the normalized resource.
	Patterns []string `yaml:"patterns"`

	// Priority orders evaluation, highest first. Priorities at or above
	// DenyPriority classify the rule as a deny rule.
	Priority int `yaml:"priority"`

	// Enabled gates the rule; disabled rules are never evaluated.
	Enabled bool `yaml:"enabled"`

	// Conditions must all hold for the rule to apply.
	Conditions []Condition `yaml:"conditions,omitempty"`
}

// IsDeny reports whether the rule denies rather than allows.
func (r *Rule) IsDeny() bool {
	return r.Priority >= DenyPriority || strings.HasPrefix(r.ID, denyIDPrefix)
}

// CoversAction reports whether the rule covers the given action.
func (r *Rule) CoversAction(action string) bool {
	for _, a := range r.Actions {
		if a == "*" || a == action {
			return true
		}
	}
	return false
}

// MatchesResource reports whether any rule pattern glob-matches the
// normalized resource.
func (r *Rule) MatchesResource(resource string) bool {
	for _, p := range r.Patterns {
		if match.Match(resource, p) {
			return true
		}
	}
	return false
}

// Validate checks structural rule invariants.
func (r *Rule) Validate() error {
	if r.ID == "" || r.Scope == "" || len(r.Actions) == 0 || len(r.Patterns) == 0 {
		return ErrInvalidRule
	}
	for _, c := range r.Conditions {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}
