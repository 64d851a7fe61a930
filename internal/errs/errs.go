// Package errs defines the error kinds shared by the acoustics core and the API layer.
package errs

import (
	"errors"
	"fmt"
)

// ValidationError reports an input that cannot be used to build a valid entity.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Reason)
}

// Validation builds a *ValidationError.
func Validation(field string, value any, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// UnreachableError is returned when a panel calculator cannot realize the requested frequency.
type UnreachableError struct {
	Kind   string
	Target float64
	Reason string
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("%s: target frequency %.1f Hz unreachable: %s", e.Kind, e.Target, e.Reason)
}

// Unreachable builds an *UnreachableError.
func Unreachable(kind string, target float64, reason string) error {
	return &UnreachableError{Kind: kind, Target: target, Reason: reason}
}

// ParseKind classifies measurement parser failures.
type ParseKind string

const (
	UnsupportedFormat         ParseKind = "unsupported_format"
	MalformedHeader           ParseKind = "malformed_header"
	EmptySeries               ParseKind = "empty_series"
	NonMonotonicFrequencyAxis ParseKind = "non_monotonic_frequency_axis"
	InputTooLarge             ParseKind = "input_too_large"
)

// ParseError carries the failure kind plus the offending field, value and line (0 when not line based).
type ParseError struct {
	Kind  ParseKind
	Field string
	Value any
	Line  int
}

func (e *ParseError) Error() string {
	msg := string(e.Kind)
	if e.Field != "" {
		msg += fmt.Sprintf(": %s=%v", e.Field, e.Value)
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" (line %d)", e.Line)
	}
	return msg
}

// Is matches any *ParseError with the same Kind, so the sentinels below work with errors.Is.
func (e *ParseError) Is(target error) bool {
	t, ok := target.(*ParseError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrUnsupportedFormat         = &ParseError{Kind: UnsupportedFormat}
	ErrMalformedHeader           = &ParseError{Kind: MalformedHeader}
	ErrEmptySeries               = &ParseError{Kind: EmptySeries}
	ErrNonMonotonicFrequencyAxis = &ParseError{Kind: NonMonotonicFrequencyAxis}
	ErrInputTooLarge             = &ParseError{Kind: InputTooLarge}
)

// Parse builds a *ParseError.
func Parse(kind ParseKind, field string, value any, line int) error {
	return &ParseError{Kind: kind, Field: field, Value: value, Line: line}
}

// Warning is a non-fatal finding attached to a result.
type Warning struct {
	Code  string  `json:"code"`
	Field string  `json:"field,omitempty"`
	Value float64 `json:"value,omitempty"`
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsUnreachable reports whether err wraps an *UnreachableError.
func IsUnreachable(err error) bool {
	var u *UnreachableError
	return errors.As(err, &u)
}

// ParseKindOf returns the kind of a wrapped *ParseError.
func ParseKindOf(err error) (ParseKind, bool) {
	var p *ParseError
	if errors.As(err, &p) {
		return p.Kind, true
	}
	return "", false
}
