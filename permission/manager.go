package permission

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tidwall/match"

	"github.com/jonwraymond/cmdops/identity"
)

// Request describes one permission check.
type Request struct {
	// Identity is the acting principal. May be nil.
	Identity *identity.Identity

	// Action is the requested action (e.g. "execute", "read", "write").
	Action string

	// Scope is the resource category being checked.
	Scope Scope

	// Resource is the target resource, normalized per scope before
	// matching.
	Resource string

	// Metadata supplies call-site context for conditional rules
	// (project_type, command_type, or overrides for runtime fields).
	Metadata map[string]string
}

// Permission describes what an allowing decision covers.
type Permission struct {
	Scope    Scope    `json:"scope"`
	Actions  []string `json:"actions"`
	Patterns []string `json:"patterns"`
}

// Decision is the outcome of a permission check. One is produced for every
// check; denials carry a reason and, when a rule decided, its ID.
type Decision struct {
	Allowed     bool         `json:"allowed"`
	Permissions []Permission `json:"permissions,omitempty"`
	Reason      string       `json:"reason"`
	RuleID      string       `json:"rule_id,omitempty"`
}

// ManagerConfig configures the permission manager.
type ManagerConfig struct {
	// StrictMode denies checks that no rule decides. When false, the
	// default outcome is allow.
	StrictMode bool

	// AuditEnabled records every check in the audit log.
	AuditEnabled bool

	// AuditCapacity bounds the audit ring buffer.
	// Default: DefaultAuditCapacity.
	AuditCapacity int
}

// Manager owns the rule store and audit log and answers permission checks.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Every check returns a Decision; denial is always explicit.
type Manager struct {
	config ManagerConfig
	store  *Store
	audit  *AuditLog
}

// NewManager creates a permission manager with an empty rule store.
func NewManager(config ManagerConfig) *Manager {
	return &Manager{
		config: config,
		store:  NewStore(),
		audit:  NewAuditLog(config.AuditCapacity),
	}
}

// Store exposes the rule store for rule management.
func (m *Manager) Store() *Store {
	return m.store
}

// Audit exposes the audit log.
func (m *Manager) Audit() *AuditLog {
	return m.audit
}

// Check evaluates a permission request: direct identity grants first, then
// the rule store in descending priority, then the configured default.
func (m *Manager) Check(req *Request) Decision {
	resource := NormalizeResource(req.Scope, req.Resource)

	decision := m.decide(req, resource)
	m.record(req, resource, decision)
	return decision
}

func (m *Manager) decide(req *Request, resource string) Decision {
	// Direct grants short-circuit rule evaluation.
	if req.Identity != nil {
		for _, g := range req.Identity.Grants {
			if grantMatches(g, req.Action, req.Scope, resource) {
				return Decision{
					Allowed: true,
					Reason:  "direct grant",
					Permissions: []Permission{{
						Scope:    req.Scope,
						Actions:  []string{g.Action},
						Patterns: []string{g.Resource},
					}},
				}
			}
		}
	}

	for _, rule := range m.store.Rules() {
		if !rule.Enabled || rule.Scope != req.Scope || !rule.CoversAction(req.Action) {
			continue
		}
		if !rule.MatchesResource(resource) {
			continue
		}
		if !conditionsHold(rule.Conditions, req) {
			continue
		}

		if rule.IsDeny() {
			return Decision{
				Allowed: false,
				Reason:  fmt.Sprintf("denied by rule %s", rule.ID),
				RuleID:  rule.ID,
			}
		}
		return Decision{
			Allowed: true,
			Reason:  fmt.Sprintf("allowed by rule %s", rule.ID),
			RuleID:  rule.ID,
			Permissions: []Permission{{
				Scope:    rule.Scope,
				Actions:  rule.Actions,
				Patterns: rule.Patterns,
			}},
		}
	}

	if m.config.StrictMode {
		return Decision{Allowed: false, Reason: "no matching rule (strict mode)"}
	}
	return Decision{Allowed: true, Reason: "no matching rule"}
}

func (m *Manager) record(req *Request, resource string, decision Decision) {
	if !m.config.AuditEnabled {
		return
	}

	principal := ""
	if req.Identity != nil {
		principal = req.Identity.Principal
	}
	m.audit.Record(AuditEntry{
		Principal: principal,
		Action:    req.Action,
		Resource:  resource,
		Scope:     req.Scope,
		Allowed:   decision.Allowed,
		Reason:    decision.Reason,
		RuleID:    decision.RuleID,
	})
}

func conditionsHold(conditions []Condition, req *Request) bool {
	for i := range conditions {
		if !conditions[i].Evaluate(req) {
			return false
		}
	}
	return true
}

func grantMatches(g identity.Grant, action string, scope Scope, resource string) bool {
	if g.Action != "*" && g.Action != action {
		return false
	}
	if g.Scope != string(scope) {
		return false
	}
	return match.Match(resource, g.Resource)
}

// NormalizeResource canonicalizes a resource per scope: filesystem scopes
// resolve to an absolute cleaned path; command, system and project scopes
// are lowercased and trimmed.
func NormalizeResource(scope Scope, resource string) string {
	switch scope {
	case ScopeFile, ScopeDirectory:
		abs, err := filepath.Abs(filepath.Clean(resource))
		if err != nil {
			return filepath.Clean(resource)
		}
		return abs
	default:
		return strings.ToLower(strings.TrimSpace(resource))
	}
}
