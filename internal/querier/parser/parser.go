// Package parser turns a raw query line into normalised tokens and checks
// the placement of the "and" and "or" operators.
package parser

import (
	"fmt"
	"strings"
	"unicode"

	apperrors "github.com/Adithya-Monish-Kumar-K/tiny-search-engine/pkg/errors"
)

const (
	OpAnd = "and"
	OpOr  = "or"
)

// DefaultMaxTokens caps the number of tokens kept from one query line.
const DefaultMaxTokens = 100

// SyntaxError explains why a token sequence was rejected.
type SyntaxError struct {
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v: %s", apperrors.ErrQuerySyntax, e.Reason)
}

func (e *SyntaxError) Unwrap() error {
	return apperrors.ErrQuerySyntax
}

// Parse drops every character that is neither a letter nor whitespace,
// lower-cases what remains and splits it into at most maxTokens tokens.
func Parse(line string, maxTokens int) []string {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r):
			return unicode.ToLower(r)
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, line)
	tokens := strings.Fields(cleaned)
	if len(tokens) > maxTokens {
		tokens = tokens[:maxTokens]
	}
	return tokens
}

// IsOperator reports whether tok is "and" or "or".
func IsOperator(tok string) bool {
	return tok == OpAnd || tok == OpOr
}

// Validate rejects an empty sequence, an operator in first or last position
// and two adjacent operators.
func Validate(tokens []string) error {
	if len(tokens) == 0 {
		return &SyntaxError{Reason: "empty query"}
	}
	if first := tokens[0]; IsOperator(first) {
		return &SyntaxError{Reason: fmt.Sprintf("'%s' cannot be first", first)}
	}
	if last := tokens[len(tokens)-1]; IsOperator(last) {
		return &SyntaxError{Reason: fmt.Sprintf("'%s' cannot be last", last)}
	}
	for i := 1; i < len(tokens); i++ {
		if IsOperator(tokens[i-1]) && IsOperator(tokens[i]) {
			return &SyntaxError{Reason: fmt.Sprintf("'%s' and '%s' cannot be adjacent", tokens[i-1], tokens[i])}
		}
	}
	return nil
}

// Groups splits a validated token sequence on "or" into AND-groups of
// search terms, dropping the "and" tokens.
func Groups(tokens []string) [][]string {
	var groups [][]string
	var current []string
	for _, tok := range tokens {
		switch tok {
		case OpOr:
			if len(current) > 0 {
				groups = append(groups, current)
			}
			current = nil
		case OpAnd:
		default:
			current = append(current, tok)
		}
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}
