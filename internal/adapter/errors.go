package adapter

import (
	"errors"
	"fmt"
	"html"
)

var (
	// ErrNotFound is matched by every ErrContainerNotFound.
	ErrNotFound = errors.New("container not found")
	// ErrBackend is matched by every ErrDrawBackend.
	ErrBackend = errors.New("drawing back-end failure")
	// ErrFull is matched by every ErrRegistryFull.
	ErrFull = errors.New("chart limit reached")
	// ErrNotDisplayed is returned for operations on ids with no chart.
	ErrNotDisplayed = errors.New("no chart displayed in container")
	// ErrUnsupportedFormat is returned for unknown export formats.
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// ErrContainerNotFound indicates the presentation layer has no such container.
type ErrContainerNotFound struct {
	ID string
}

func (e *ErrContainerNotFound) Error() string {
	return fmt.Sprintf("container %q not found", e.ID)
}

func (e *ErrContainerNotFound) Is(target error) bool { return target == ErrNotFound }

// ErrDrawBackend wraps an opaque failure from the drawing back-end.
//
// The underlying back-end error can be accessed via errors.Unwrap.
type ErrDrawBackend struct {
	ID    string
	cause error
}

func (e *ErrDrawBackend) Error() string {
	return fmt.Sprintf("drawing chart %q: %v", e.ID, e.cause)
}

func (e *ErrDrawBackend) Unwrap() error { return e.cause }

func (e *ErrDrawBackend) Is(target error) bool { return target == ErrBackend }

// ErrRegistryFull indicates a new chart would exceed the configured limit.
type ErrRegistryFull struct {
	Max int
}

func (e *ErrRegistryFull) Error() string {
	return fmt.Sprintf("chart limit reached: at most %d charts can be displayed", e.Max)
}

func (e *ErrRegistryFull) Is(target error) bool { return target == ErrFull }

// ErrorFragment is the inline error written into a container when a chart
// cannot be created
type ErrorFragment struct {
	Message string
}

// NewErrorFragment builds the fragment for err
func NewErrorFragment(err error) ErrorFragment {
	return ErrorFragment{Message: err.Error()}
}

// Text returns the plain-text form, for terminals
func (f ErrorFragment) Text() string {
	return "Error creating chart: " + f.Message
}

// HTML returns the escaped markup form, for web containers
func (f ErrorFragment) HTML() string {
	return `<div class="chart-error" role="alert">` + html.EscapeString(f.Text()) + `</div>`
}
