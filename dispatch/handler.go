package dispatch

import (
	"context"

	"github.com/jonwraymond/cmdops/command"
	"github.com/jonwraymond/cmdops/identity"
)

// ParameterSpec describes one parameter a handler accepts. Required
// parameters may be satisfied positionally or as a named option.
type ParameterSpec struct {
	Name        string
	Type        string // string|number|bool|array|object
	Required    bool
	Description string
}

// Invocation is the resolved input a handler executes against.
type Invocation struct {
	// Command is the parsed command.
	Command *command.Command

	// Session identifies the session the command belongs to.
	Session string

	// Identity is the acting principal. May be nil.
	Identity *identity.Identity

	// WorkDir is the working directory the command runs against.
	WorkDir string
}

// Handler executes one command.
//
// Contract:
// - Concurrency: Execute may be called concurrently.
// - Errors: Execute returns either a result or an error; an error is
//   surfaced to the caller as an EXECUTION_ERROR result.
type Handler interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names, possibly empty.
	Aliases() []string

	// Parameters describes the accepted parameters.
	Parameters() []ParameterSpec

	// Tags classify the command (e.g. "write", "deploy") for cache skip
	// rules.
	Tags() []string

	// Deprecated returns a deprecation notice, or empty when the command
	// is current.
	Deprecated() string

	// Execute runs the command.
	Execute(ctx context.Context, inv *Invocation) (*Result, error)
}

// InvocationValidator is an optional hook a handler can implement to run
// command-specific validation before execution.
type InvocationValidator interface {
	ValidateInvocation(cmd *command.Command) *ValidationResult
}
