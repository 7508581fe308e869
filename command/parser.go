package command

import (
	"strings"
)

// MaxInputLength is the default maximum accepted input length.
const MaxInputLength = 4096

// DefaultPrefix is the command prefix used when none is configured.
const DefaultPrefix = "/"

// DefaultSubcommands is the default closed vocabulary of subcommand verbs.
// The vocabulary is injectable per parser via Config.
var DefaultSubcommands = []string{
	"create", "update", "delete", "list", "get", "set", "add", "remove",
	"show", "run", "start", "stop", "status", "enable", "disable",
}

// Command is a parsed invocation of the text command protocol.
type Command struct {
	// Name is the command name. Never empty for a successfully parsed command.
	Name string

	// Subcommand is the matched subcommand verb, or empty.
	Subcommand string

	// Arguments are the positional arguments in input order.
	Arguments []string

	// Options maps option names to coerced values. Keys are unique; a
	// repeated option keeps the last occurrence.
	Options map[string]Value

	// Raw is the original input.
	Raw string
}

// Config configures a Parser.
type Config struct {
	// Prefix is the required command prefix. Default: "/".
	Prefix string

	// Subcommands is the closed vocabulary of subcommand verbs.
	// Default: DefaultSubcommands.
	Subcommands []string

	// MaxLength is the maximum accepted input length in bytes.
	// Default: MaxInputLength.
	MaxLength int
}

// Parser parses raw command text into Command values.
//
// Contract:
// - Concurrency: a Parser is safe for concurrent use after construction.
// - Errors: Parse returns *ParseError for every failure mode.
type Parser struct {
	prefix      string
	subcommands map[string]bool
	maxLength   int
}

// NewParser creates a parser with the given configuration.
func NewParser(config Config) *Parser {
	if config.Prefix == "" {
		config.Prefix = DefaultPrefix
	}
	if config.Subcommands == nil {
		config.Subcommands = DefaultSubcommands
	}
	if config.MaxLength <= 0 {
		config.MaxLength = MaxInputLength
	}

	subs := make(map[string]bool, len(config.Subcommands))
	for _, s := range config.Subcommands {
		subs[s] = true
	}

	return &Parser{
		prefix:      config.Prefix,
		subcommands: subs,
		maxLength:   config.MaxLength,
	}
}

// Parse parses raw input into a Command.
func (p *Parser) Parse(raw string) (*Command, error) {
	if len(raw) > p.maxLength {
		return nil, &ParseError{Input: raw, Position: p.maxLength, Err: ErrInputTooLong}
	}

	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, p.prefix) {
		return nil, &ParseError{Input: raw, Position: 0, Err: ErrMissingPrefix}
	}

	tokens, err := tokenize(trimmed[len(p.prefix):])
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 || tokens[0] == "" || strings.HasPrefix(tokens[0], "-") {
		return nil, &ParseError{Input: raw, Position: -1, Err: ErrEmptyCommand}
	}

	cmd := &Command{
		Name:    tokens[0],
		Options: make(map[string]Value),
		Raw:     raw,
	}

	sawNonOption := false
	rest := tokens[1:]
	for i := 0; i < len(rest); i++ {
		tok := rest[i]
		switch {
		case strings.HasPrefix(tok, "--") && len(tok) > 2:
			key, val, hasValue := strings.Cut(tok[2:], "=")
			if hasValue {
				cmd.Options[key] = Coerce(val)
				continue
			}
			// No inline value: consume the next token unless it looks
			// like another option, in which case this is a boolean flag.
			if i+1 < len(rest) && !looksLikeOption(rest[i+1]) {
				cmd.Options[key] = Coerce(rest[i+1])
				i++
			} else {
				cmd.Options[key] = BoolValue(true)
			}

		case isShortOption(tok):
			key := tok[1:]
			if i+1 < len(rest) && !looksLikeOption(rest[i+1]) {
				cmd.Options[key] = Coerce(rest[i+1])
				i++
			} else {
				cmd.Options[key] = BoolValue(true)
			}

		default:
			if !sawNonOption && p.subcommands[tok] {
				cmd.Subcommand = tok
			} else {
				cmd.Arguments = append(cmd.Arguments, tok)
			}
			sawNonOption = true
		}
	}

	return cmd, nil
}

// looksLikeOption reports whether a token would be classified as an option
// rather than consumed as an option value.
func looksLikeOption(tok string) bool {
	return (strings.HasPrefix(tok, "--") && len(tok) > 2) || isShortOption(tok)
}

// isShortOption matches single-dash, single-letter options like "-v".
func isShortOption(tok string) bool {
	if len(tok) != 2 || tok[0] != '-' {
		return false
	}
	c := tok[1]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// tokenize splits input into whitespace-delimited tokens, honoring single
// and double quotes and backslash escaping. A backslash escapes the next
// character outside of single quotes; inside single quotes everything is
// literal.
func tokenize(input string) ([]string, error) {
	var tokens []string
	var current strings.Builder
	inToken := false
	var quote rune
	quoteStart := -1

	runes := []rune(input)
	for i := 0; i < len(runes); i++ {
		c := runes[i]

		switch {
		case quote == '\'':
			if c == '\'' {
				quote = 0
			} else {
				current.WriteRune(c)
			}

		case quote == '"':
			switch c {
			case '"':
				quote = 0
			case '\\':
				if i+1 < len(runes) {
					i++
					current.WriteRune(runes[i])
				} else {
					current.WriteRune(c)
				}
			default:
				current.WriteRune(c)
			}

		case c == '\'' || c == '"':
			quote = c
			quoteStart = i
			inToken = true

		case c == '\\':
			if i+1 < len(runes) {
				i++
				current.WriteRune(runes[i])
			} else {
				current.WriteRune(c)
			}
			inToken = true

		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			if inToken {
				tokens = append(tokens, current.String())
				current.Reset()
				inToken = false
			}

		default:
			current.WriteRune(c)
			inToken = true
		}
	}

	if quote != 0 {
		return nil, &ParseError{
			Input:    input,
			Quote:    quote,
			Position: quoteStart,
			Err:      ErrUnterminatedQuote,
		}
	}
	if inToken {
		tokens = append(tokens, current.String())
	}

	return tokens, nil
}
