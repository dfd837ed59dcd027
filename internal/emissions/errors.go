package emissions

import "fmt"

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// Sentinel errors, compared with errors.Is.
var (
	// ErrNoEntries indicates a calculation over zero usage entries.
	ErrNoEntries = constError("no usage entries")

	// ErrInvalidBuildingSize indicates a building size that is zero, negative or not finite.
	ErrInvalidBuildingSize = constError("building size must be a positive number")

	// ErrInvalidField indicates a usage field that failed validation.
	ErrInvalidField = constError("invalid usage field")
)

// ValidationError names the usage row and field that failed validation.
// Row is 1-based to match what the user sees on the form.
type ValidationError struct {
	Row    int
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("row %d: %s %s", e.Row, e.Field, e.Reason)
	}
	return fmt.Sprintf("row %d: %s %q %s", e.Row, e.Field, e.Value, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidField.
func (e *ValidationError) Unwrap() error { return ErrInvalidField }

// ComputationError reports an aggregate that cannot be computed from otherwise valid input.
type ComputationError struct {
	Field string
	Err   error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("cannot compute %s: %v", e.Field, e.Err)
}

func (e *ComputationError) Unwrap() error { return e.Err }
