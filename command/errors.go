package command

import (
	"errors"
	"fmt"
)

// Sentinel errors for command parsing.
var (
	ErrEmptyCommand      = errors.New("command: empty command name")
	ErrMissingPrefix     = errors.New("command: input does not start with command prefix")
	ErrUnterminatedQuote = errors.New("command: unterminated quote")
	ErrInputTooLong      = errors.New("command: input exceeds max length")
)

// ParseError describes a parsing failure with enough structure for callers
// to build a user-facing message.
type ParseError struct {
	// Input is the raw input that failed to parse.
	Input string

	// Quote is the unclosed quote character, if the failure was an
	// unterminated quote. Zero otherwise.
	Quote rune

	// Position is the byte offset where the failure was detected, or -1.
	Position int

	// Err is the sentinel error classifying the failure.
	Err error
}

// Error returns the error message.
func (e *ParseError) Error() string {
	if e.Quote != 0 {
		return fmt.Sprintf("%v: %q at offset %d", e.Err, e.Quote, e.Position)
	}
	return e.Err.Error()
}

// Unwrap returns the sentinel error for errors.Is support.
func (e *ParseError) Unwrap() error {
	return e.Err
}
