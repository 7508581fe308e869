package permission

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/match"
)

// Condition fields. Time and file fields are extracted at evaluation time;
// role comes from the acting identity; project and command type come from
// call-site metadata.
const (
	FieldTimeOfDay     = "time_of_day"
	FieldFileSize      = "file_size"
	FieldFileExtension = "file_extension"
	FieldRole          = "role"
	FieldProjectType   = "project_type"
	FieldCommandType   = "command_type"
)

// Condition operators.
const (
	OpEquals      = "equals"
	OpNotEquals   = "not_equals"
	OpContains    = "contains"
	OpNotContains = "not_contains"
	OpGreaterThan = "greater_than"
	OpLessThan    = "less_than"
	OpMatches     = "matches"
	OpNotMatches  = "not_matches"
)

// Condition is a predicate attached to a rule. All conditions of a rule
// must hold for the rule to apply.
type Condition struct {
	// Field selects the runtime value to extract.
	Field string `yaml:"field"`

	// Operator compares the extracted value against Value.
	Operator string `yaml:"operator"`

	// Value is the expected value.
	Value string `yaml:"value"`
}

// Validate checks the condition references a known field and operator.
func (c *Condition) Validate() error {
	switch c.Field {
	case FieldTimeOfDay, FieldFileSize, FieldFileExtension, FieldRole, FieldProjectType, FieldCommandType:
	default:
		return ErrUnknownField
	}
	switch c.Operator {
	case OpEquals, OpNotEquals, OpContains, OpNotContains, OpGreaterThan, OpLessThan, OpMatches, OpNotMatches:
	default:
		return ErrUnknownOperator
	}
	return nil
}

// Evaluate reports whether the condition holds for the request. Unknown
// fields or missing runtime values evaluate to false, so a rule with an
// unsatisfiable condition never applies.
func (c *Condition) Evaluate(req *Request) bool {
	if c.Field == FieldRole {
		return c.evaluateRoles(req)
	}

	actual, ok := c.extract(req)
	if !ok {
		return false
	}
	return compare(c.Operator, actual, c.Value)
}

// evaluateRoles applies the operator across the identity's roles: positive
// operators hold when any role satisfies them, negated operators when
// every role does.
func (c *Condition) evaluateRoles(req *Request) bool {
	if req.Identity == nil {
		return false
	}
	roles := req.Identity.Roles

	switch c.Operator {
	case OpNotEquals, OpNotContains, OpNotMatches:
		for _, role := range roles {
			if !compare(c.Operator, role, c.Value) {
				return false
			}
		}
		return len(roles) > 0
	default:
		for _, role := range roles {
			if compare(c.Operator, role, c.Value) {
				return true
			}
		}
		return false
	}
}

// extract resolves the actual value for the condition field. Call-site
// metadata takes precedence over a live lookup so embedders can supply
// values for otherwise unavailable context.
func (c *Condition) extract(req *Request) (string, bool) {
	if v, ok := req.Metadata[c.Field]; ok {
		return v, true
	}

	switch c.Field {
	case FieldTimeOfDay:
		return time.Now().Format("15:04"), true
	case FieldFileSize:
		info, err := os.Stat(req.Resource)
		if err != nil {
			return "", false
		}
		return strconv.FormatInt(info.Size(), 10), true
	case FieldFileExtension:
		return filepath.Ext(req.Resource), true
	case FieldProjectType, FieldCommandType:
		// Only available via metadata.
		return "", false
	default:
		return "", false
	}
}

// compare applies an operator to string operands, using numeric comparison
// for the ordering operators when both sides parse as numbers.
func compare(op, actual, expected string) bool {
	switch op {
	case OpEquals:
		return actual == expected
	case OpNotEquals:
		return actual != expected
	case OpContains:
		return strings.Contains(actual, expected)
	case OpNotContains:
		return !strings.Contains(actual, expected)
	case OpGreaterThan:
		if a, e, ok := numericOperands(actual, expected); ok {
			return a > e
		}
		return actual > expected
	case OpLessThan:
		if a, e, ok := numericOperands(actual, expected); ok {
			return a < e
		}
		return actual < expected
	case OpMatches:
		return match.Match(actual, expected)
	case OpNotMatches:
		return !match.Match(actual, expected)
	default:
		return false
	}
}

func numericOperands(actual, expected string) (float64, float64, bool) {
	a, errA := strconv.ParseFloat(actual, 64)
	e, errE := strconv.ParseFloat(expected, 64)
	return a, e, errA == nil && errE == nil
}
