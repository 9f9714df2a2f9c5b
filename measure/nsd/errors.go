package nsd

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-nsd/dsp/spectrum"
)

var (
	// ErrInvalidArgument reports a parameter outside its domain. It is
	// returned before any computation starts.
	ErrInvalidArgument = errors.New("nsd: invalid argument")
	// ErrLengthMismatch reports scratch, window or segment buffers of
	// different lengths inside the kernel. It indicates a programming error.
	ErrLengthMismatch = errors.New("nsd: length mismatch")
	// ErrInsufficientData reports a record too short for a single segment.
	ErrInsufficientData = errors.New("nsd: insufficient data")
	// ErrNumericAnomaly reports a non-finite density or one above the sanity
	// ceiling.
	ErrNumericAnomaly = errors.New("nsd: numeric anomaly")
	// ErrDoubleTrim reports a second trim of the same spectrum.
	ErrDoubleTrim = spectrum.ErrDoubleTrim
)

// sanityCeiling bounds any single PSD/PS value.
const sanityCeiling = 1e12

func validateSampleRate(sampleRate float64) error {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%w: sample rate must be > 0: %v", ErrInvalidArgument, sampleRate)
	}
	return nil
}

func validateWidth(name string, width int) error {
	if width <= 0 {
		return fmt.Errorf("%w: %s must be > 0: %d", ErrInvalidArgument, name, width)
	}
	return nil
}

func checkValue(i int, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v > sanityCeiling {
		return fmt.Errorf("%w: value %v at index %d", ErrNumericAnomaly, v, i)
	}
	return nil
}
