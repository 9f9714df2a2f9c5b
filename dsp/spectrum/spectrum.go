package spectrum

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrDoubleTrim is returned when a trim operation is applied to a spectrum
// that has already been trimmed that way.
var ErrDoubleTrim = errors.New("spectrum: already trimmed")

// Spectrum is a frequency axis with one value per frequency.
//
// Frequencies is strictly increasing and has the same length as Values.
// Averages counts the segment periodograms folded into the values and
// Stacking the number of segment widths merged into them.
type Spectrum struct {
	Frequencies []float64
	Values      []float64
	Averages    int
	Stacking    int

	dcTrimmed   bool
	trimmedBins int
}

// New builds a spectrum from matching frequency and value slices. The slices
// are owned by the spectrum afterwards.
func New(frequencies, values []float64, averages, stacking int) (*Spectrum, error) {
	s := &Spectrum{
		Frequencies: frequencies,
		Values:      values,
		Averages:    averages,
		Stacking:    stacking,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// FromValues converts a full-width periodogram into a one-sided spectrum.
//
// Only the first len(values)/2 entries are kept, matched with the frequency
// axis f[i] = i*sampleRate/len(values). The values are copied.
func FromValues(values []float64, sampleRate float64, averages int) *Spectrum {
	n := len(values) / 2
	df := sampleRate / float64(len(values))

	freqs := make([]float64, n)
	for i := range freqs {
		freqs[i] = float64(i) * df
	}

	return &Spectrum{
		Frequencies: freqs,
		Values:      append([]float64(nil), values[:n]...),
		Averages:    averages,
		Stacking:    1,
	}
}

// Len returns the number of frequency points.
func (s *Spectrum) Len() int { return len(s.Frequencies) }

// Validate checks the structural invariants of s.
func (s *Spectrum) Validate() error {
	if len(s.Frequencies) != len(s.Values) {
		return fmt.Errorf("spectrum: frequency/value length mismatch: %d != %d", len(s.Frequencies), len(s.Values))
	}
	for i := 1; i < len(s.Frequencies); i++ {
		if !(s.Frequencies[i] > s.Frequencies[i-1]) {
			return fmt.Errorf("spectrum: frequencies must be strictly increasing at index %d", i)
		}
	}
	return nil
}

// TrimDC drops the first (DC) point. A second call returns ErrDoubleTrim.
func (s *Spectrum) TrimDC() error {
	if s.dcTrimmed {
		return fmt.Errorf("%w: TrimDC already applied", ErrDoubleTrim)
	}
	if len(s.Frequencies) == 0 {
		return fmt.Errorf("spectrum: cannot trim DC from an empty spectrum")
	}

	s.dcTrimmed = true
	s.Frequencies = s.Frequencies[1:]
	s.Values = s.Values[1:]
	return nil
}

// TrimStartEnd drops bins points from both ends. It may be applied once; a
// second call returns ErrDoubleTrim and leaves s untouched.
func (s *Spectrum) TrimStartEnd(bins int) error {
	if s.trimmedBins != 0 {
		return fmt.Errorf("%w: TrimStartEnd already called with bins: %d", ErrDoubleTrim, s.trimmedBins)
	}
	if bins <= 0 {
		return fmt.Errorf("spectrum: trim bins must be > 0: %d", bins)
	}
	if 2*bins >= len(s.Frequencies) {
		return fmt.Errorf("spectrum: cannot trim %d bins from each end of %d points", bins, len(s.Frequencies))
	}

	s.trimmedBins = bins
	end := len(s.Frequencies) - bins
	s.Frequencies = s.Frequencies[bins:end]
	s.Values = s.Values[bins:end]
	return nil
}

// Finite returns a copy of s without the points whose value is NaN or Inf.
func (s *Spectrum) Finite() *Spectrum {
	out := &Spectrum{
		Frequencies: make([]float64, 0, len(s.Frequencies)),
		Values:      make([]float64, 0, len(s.Values)),
		Averages:    s.Averages,
		Stacking:    s.Stacking,
		dcTrimmed:   s.dcTrimmed,
		trimmedBins: s.trimmedBins,
	}
	for i, v := range s.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out.Frequencies = append(out.Frequencies, s.Frequencies[i])
		out.Values = append(out.Values, v)
	}
	return out
}

// Interpolate returns the piecewise-linear value of s at each query
// frequency. Queries outside the axis are clamped to the end values.
func (s *Spectrum) Interpolate(queryHz []float64) ([]float64, error) {
	x, y := s.Frequencies, s.Values
	if len(x) == 0 {
		return nil, fmt.Errorf("spectrum: interpolate requires a non-empty spectrum")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	out := make([]float64, len(queryHz))
	for i, q := range queryHz {
		if q <= x[0] {
			out[i] = y[0]
			continue
		}
		if q >= x[len(x)-1] {
			out[i] = y[len(y)-1]
			continue
		}

		j := sort.SearchFloat64s(x, q)
		x0, x1 := x[j-1], x[j]
		t := (q - x0) / (x1 - x0)
		out[i] = y[j-1] + t*(y[j]-y[j-1])
	}
	return out, nil
}

// SmoothFractionalOctave returns a copy of s smoothed over 1/fraction-octave
// bands. Values are treated as amplitude densities, so each band is averaged
// in the power domain (root of the mean square). NaN points are skipped and
// frequencies must be positive.
func (s *Spectrum) SmoothFractionalOctave(fraction int) (*Spectrum, error) {
	if fraction <= 0 {
		return nil, fmt.Errorf("spectrum: fractional-octave fraction must be > 0: %d", fraction)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	freqHz := s.Frequencies
	if len(freqHz) > 0 && freqHz[0] <= 0 {
		return nil, fmt.Errorf("spectrum: fractional-octave frequencies must be > 0")
	}

	out := make([]float64, len(s.Values))
	halfBand := math.Pow(2, 1/(2*float64(fraction)))

	for i, f := range freqHz {
		fLo := f / halfBand
		fHi := f * halfBand

		i0 := sort.Search(len(freqHz), func(k int) bool { return freqHz[k] >= fLo })
		i1 := sort.Search(len(freqHz), func(k int) bool { return freqHz[k] > fHi })

		sum, n := 0.0, 0
		for j := i0; j < i1; j++ {
			if math.IsNaN(s.Values[j]) {
				continue
			}
			sum += s.Values[j] * s.Values[j]
			n++
		}
		if n == 0 {
			out[i] = s.Values[i]
			continue
		}
		out[i] = math.Sqrt(sum / float64(n))
	}

	return &Spectrum{
		Frequencies: append([]float64(nil), freqHz...),
		Values:      out,
		Averages:    s.Averages,
		Stacking:    s.Stacking,
		dcTrimmed:   s.dcTrimmed,
		trimmedBins: s.trimmedBins,
	}, nil
}
