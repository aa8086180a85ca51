package chart

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is matched by every ErrUnsupportedChartKind.
	ErrUnsupported = errors.New("unsupported chart kind")
	// ErrMissing is matched by every ErrMissingField.
	ErrMissing = errors.New("missing field")
	// ErrInvalid is matched by every ErrInvalidOptions.
	ErrInvalid = errors.New("invalid chart options")
)

// ErrUnsupportedChartKind carries the requested kind string.
type ErrUnsupportedChartKind struct {
	Kind string
}

func (e *ErrUnsupportedChartKind) Error() string {
	return fmt.Sprintf("unsupported chart kind: %q", e.Kind)
}

func (e *ErrUnsupportedChartKind) Is(target error) bool { return target == ErrUnsupported }

// ErrMissingField indicates that a row lacks a field the options reference.
type ErrMissingField struct {
	Field string
	Row   int
}

func (e *ErrMissingField) Error() string {
	return fmt.Sprintf("missing field %q in row %d", e.Field, e.Row)
}

func (e *ErrMissingField) Is(target error) bool { return target == ErrMissing }

// ErrInvalidOptions indicates options that cannot describe a chart of Kind.
type ErrInvalidOptions struct {
	Kind   Kind
	Reason string
}

func (e *ErrInvalidOptions) Error() string {
	return fmt.Sprintf("invalid %s options: %s", e.Kind, e.Reason)
}

func (e *ErrInvalidOptions) Is(target error) bool { return target == ErrInvalid }

func invalid(k Kind, format string, args ...any) error {
	return &ErrInvalidOptions{Kind: k, Reason: fmt.Sprintf(format, args...)}
}
