package dispatch

import (
	"errors"
	"fmt"
)

// Error codes carried by ErrorDescriptor and CommandError.
const (
	CodeParseError       = "PARSE_ERROR"
	CodeUnknownCommand   = "UNKNOWN_COMMAND"
	CodeMissingParameter = "MISSING_PARAMETER"
	CodePermissionDenied = "PERMISSION_DENIED"
	CodeExecutionError   = "EXECUTION_ERROR"
	CodeCancelled        = "CANCELLED"
	CodeDuplicateCommand = "DUPLICATE_COMMAND"
)

// Sentinel errors.
var (
	// ErrDuplicateCommand indicates a name or alias is already registered.
	ErrDuplicateCommand = errors.New("dispatch: duplicate command")

	// ErrUnknownCommand indicates no handler is registered for a name.
	ErrUnknownCommand = errors.New("dispatch: unknown command")

	// ErrNilHandler indicates a nil handler was passed to Register.
	ErrNilHandler = errors.New("dispatch: handler is nil")
)

// CommandError is a code-bearing dispatch error. Pipeline stages wrap their
// failures in one so callers can branch on Code without string matching.
type CommandError struct {
	Code    string
	Message string
	Detail  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Descriptor converts the error to its result representation.
func (e *CommandError) Descriptor() ErrorDescriptor {
	return ErrorDescriptor{Code: e.Code, Message: e.Message, Detail: e.Detail}
}
