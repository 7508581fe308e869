// Package command parses the text command protocol into structured
// invocations.
//
// It provides a prefix-checked tokenizer with quoting and escaping, option
// and subcommand classification, and one-time coercion of option values into
// a tagged Value variant.
package command
