package nsd

import (
	"fmt"
	"math"
	"slices"

	"github.com/cwbudde/algo-nsd/dsp/spectrum"
)

// StackedLinear merges Linear spectra computed at several FFT widths.
//
// The widths are maxWidth, maxWidth/2, ... down to the last one >= minWidth.
// Widths longer than the record are skipped. Every width is computed
// independently on the worker pool. The merge walks the widths from the
// smallest up, and each spectrum from its highest frequency down, accepting a
// point only when it lies below every point accepted so far. Small widths,
// which average many segments, therefore supply the high frequencies, and
// each larger width extends the curve below the lowest frequency the smaller
// ones can resolve.
//
// Averages is the sum of all widths' averages and Stacking the number of
// widths merged.
func (e *Estimator) StackedLinear(samples []float64, sampleRate float64, maxWidth, minWidth int) (*spectrum.Spectrum, error) {
	if err := validateWidth("maxWidth", maxWidth); err != nil {
		return nil, err
	}
	if err := validateWidth("minWidth", minWidth); err != nil {
		return nil, err
	}
	if minWidth > maxWidth {
		return nil, fmt.Errorf("%w: minWidth %d exceeds maxWidth %d", ErrInvalidArgument, minWidth, maxWidth)
	}
	if err := e.validateLinear(sampleRate, minWidth); err != nil {
		return nil, err
	}

	widths := make([]int, 0, 8)
	for _, w := range StackWidths(maxWidth, minWidth) {
		if w > len(samples) {
			e.logger.Debug("stacked width skipped", "width", w, "samples", len(samples))
			continue
		}
		widths = append(widths, w)
	}
	if len(widths) == 0 {
		return nil, fmt.Errorf("%w: %d samples for minimum width %d", ErrInsufficientData, len(samples), minWidth)
	}

	spectra := make([]*spectrum.Spectrum, len(widths))
	err := forEach(e.cfg.Workers, len(widths), func(i int) error {
		s, err := e.Linear(samples, sampleRate, widths[i])
		if err != nil {
			return fmt.Errorf("width %d: %w", widths[i], err)
		}
		spectra[i] = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	return merge(spectra)
}

// StackWidths returns maxWidth halved repeatedly while the result stays at or
// above minWidth, in ascending order.
func StackWidths(maxWidth, minWidth int) []int {
	if maxWidth <= 0 || minWidth <= 0 || minWidth > maxWidth {
		return nil
	}

	widths := []int{maxWidth}
	for w := maxWidth; w/2 >= minWidth; {
		w /= 2
		widths = append(widths, w)
	}
	slices.Reverse(widths)

	return widths
}

// merge combines spectra ordered by ascending width.
func merge(spectra []*spectrum.Spectrum) (*spectrum.Spectrum, error) {
	lowest := math.Inf(1)
	freqs := make([]float64, 0, 1024)
	values := make([]float64, 0, 1024)
	averages := 0

	for _, s := range spectra {
		averages += s.Averages
		for i := s.Len() - 1; i >= 0; i-- {
			if f := s.Frequencies[i]; f < lowest {
				lowest = f
				freqs = append(freqs, f)
				values = append(values, s.Values[i])
			}
		}
	}

	slices.Reverse(freqs)
	slices.Reverse(values)

	return spectrum.New(freqs, values, averages, len(spectra))
}
