package window

import (
	"errors"
	"fmt"
)

// ErrInvalidWidth is returned for non-positive window widths.
var ErrInvalidWidth = errors.New("window: width must be > 0")

var (
	errEmptyCoeffs      = errors.New("window coefficients must not be empty")
	errZeroCoherentGain = errors.New("window coherent gain is zero")
	errMismatchedLength = errors.New("samples and coefficients must have same length")
	errUnknownType      = errors.New("window: unknown type")
)

func validateWidth(width int) error {
	if width <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWidth, width)
	}
	return nil
}
