package concentration

import (
	"errors"

	"github.com/san-kum/beerslab/internal/chem"
	"github.com/san-kum/beerslab/internal/property"
)

var (
	// ErrInconsistentDeferral indicates an end without a matching begin,
	// a nested begin, or a reset while a deferral window is open.
	ErrInconsistentDeferral = errors.New("concentration: inconsistent deferral usage")

	// ErrUnknownSolute indicates a solute outside the model's catalog.
	ErrUnknownSolute = chem.ErrUnknownSolute

	// ErrInvalidRange indicates a value outside a property's legal domain.
	ErrInvalidRange = property.ErrInvalidRange
)
