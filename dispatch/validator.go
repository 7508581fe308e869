package dispatch

import (
	"fmt"

	"github.com/jonwraymond/cmdops/command"
)

// ValidationResult is the outcome of pre-execution validation.
type ValidationResult struct {
	Valid    bool
	Errors   []ErrorDescriptor
	Warnings []string
}

// Merge folds another result in: errors and warnings accumulate and
// validity is the conjunction.
func (v *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	if !other.Valid {
		v.Valid = false
	}
	v.Errors = append(v.Errors, other.Errors...)
	v.Warnings = append(v.Warnings, other.Warnings...)
}

// Validator checks a parsed command against the registry before execution.
type Validator struct {
	registry *Registry
}

// NewValidator creates a validator over the given registry.
func NewValidator(registry *Registry) *Validator {
	return &Validator{registry: registry}
}

// Validate resolves the command's handler and checks the invocation against
// its parameter specs. Required parameters are satisfied positionally in
// spec order or by a same-named option. A deprecated handler produces a
// warning, not an error.
func (v *Validator) Validate(cmd *command.Command) *ValidationResult {
	result := &ValidationResult{Valid: true}

	h, ok := v.registry.Resolve(cmd.Name)
	if !ok {
		result.Valid = false
		result.Errors = append(result.Errors, ErrorDescriptor{
			Code:    CodeUnknownCommand,
			Message: fmt.Sprintf("unknown command %q", cmd.Name),
		})
		return result
	}

	if iv, ok := h.(InvocationValidator); ok {
		result.Merge(iv.ValidateInvocation(cmd))
	}

	positional := len(cmd.Arguments)
	consumed := 0
	for _, spec := range h.Parameters() {
		if _, ok := cmd.Options[spec.Name]; ok {
			continue
		}
		if consumed < positional {
			consumed++
			continue
		}
		if spec.Required {
			result.Valid = false
			result.Errors = append(result.Errors, ErrorDescriptor{
				Code:    CodeMissingParameter,
				Message: fmt.Sprintf("missing required parameter %q", spec.Name),
				Detail:  spec.Description,
			})
		}
	}

	if notice := h.Deprecated(); notice != "" {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("command %q is deprecated: %s", h.Name(), notice))
	}

	return result
}
