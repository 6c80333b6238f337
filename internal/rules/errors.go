package rules

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRule reports a rulestring that cannot be parsed.
	ErrInvalidRule = errors.New("invalid rule")
	// ErrUnsupported reports a capability the rule family does not implement.
	ErrUnsupported = errors.New("unsupported operation")
)

// ParseError names the rulestring and the token that could not be parsed.
type ParseError struct {
	Rule   string
	Token  string
	Reason string
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("invalid rule %q", e.Rule)
	if e.Token != "" {
		msg += fmt.Sprintf(" at %q", e.Token)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Unwrap lets errors.Is match ErrInvalidRule.
func (e *ParseError) Unwrap() error { return ErrInvalidRule }

// Invalid builds a ParseError.
func Invalid(rule, token, format string, args ...any) error {
	return &ParseError{Rule: rule, Token: token, Reason: fmt.Sprintf(format, args...)}
}

// Unsupported wraps ErrUnsupported with the family and operation.
func Unsupported(family, op string) error {
	return fmt.Errorf("%s: %s: %w", family, op, ErrUnsupported)
}
