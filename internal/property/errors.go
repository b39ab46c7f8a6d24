package property

import (
	"errors"
	"fmt"
)

// Domain errors for property mutation.
var (
	// ErrInvalidRange indicates a value outside the property's legal domain.
	ErrInvalidRange = errors.New("property: value outside legal range")

	// ErrReentrantSet indicates a Set on a property that is still notifying
	// observers of a previous change.
	ErrReentrantSet = errors.New("property: reentrant set during notification")
)

// RangeError wraps ErrInvalidRange with the offending value.
type RangeError struct {
	Name  string
	Value float64
	Range Range
}

func (e *RangeError) Error() string {
	name := e.Name
	if name == "" {
		name = "value"
	}
	return fmt.Sprintf("property: %s=%g outside [%g, %g]", name, e.Value, e.Range.Min, e.Range.Max)
}

func (e *RangeError) Unwrap() error {
	return ErrInvalidRange
}

// ReentryError wraps ErrReentrantSet with the property name.
type ReentryError struct {
	Name string
}

func (e *ReentryError) Error() string {
	return fmt.Sprintf("property: set %q while notifying", e.Name)
}

func (e *ReentryError) Unwrap() error {
	return ErrReentrantSet
}
