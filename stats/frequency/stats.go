package frequency

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-nsd/dsp/spectrum"
)

// ErrInvalidBand is returned for a band that is empty, reversed or outside
// the spectrum's frequency axis.
var ErrInvalidBand = errors.New("frequency: invalid band")

// Stats holds noise statistics of an amplitude spectral density.
//
// All values are in the spectrum's units (e.g. V/sqrt(Hz)) unless marked
// _dB, which is 20*log10 of the value. NaN points are ignored.
type Stats struct {
	Points int

	Max          float64
	MaxFrequency float64
	Max_dB       float64
	Min          float64
	MinFrequency float64
	Median       float64 // broadband noise floor
	Median_dB    float64
	Average      float64 // arithmetic mean of the values
	RMS          float64 // power mean, sqrt(mean(v^2))

	// IntegratedNoise is sqrt(integral v^2 df) over the whole axis, the RMS
	// noise the density accounts for.
	IntegratedNoise float64

	Centroid  float64 // power-weighted mean frequency (Hz)
	Flatness  float64 // geometric/arithmetic mean of v^2, 0..1
	Bandwidth float64 // 3 dB bandwidth around the peak (Hz)
}

// toDB converts a linear amplitude to decibels.
// Returns -Inf for zero values.
func toDB(v float64) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(v)
}

// Calculate computes all statistics of s.
func Calculate(s *spectrum.Spectrum) Stats {
	f := s.Finite()
	n := f.Len()
	if n == 0 {
		return Stats{
			Max_dB:    math.Inf(-1),
			Median_dB: math.Inf(-1),
		}
	}

	values := f.Values
	maxIdx := floats.MaxIdx(values)
	minIdx := floats.MinIdx(values)

	st := Stats{
		Points:       n,
		Max:          values[maxIdx],
		MaxFrequency: f.Frequencies[maxIdx],
		Min:          values[minIdx],
		MinFrequency: f.Frequencies[minIdx],
		Median:       median(values),
		Average:      stat.Mean(values, nil),
		RMS:          math.Sqrt(floats.Dot(values, values) / float64(n)),
	}
	st.Max_dB = toDB(st.Max)
	st.Median_dB = toDB(st.Median)

	if n > 1 {
		st.IntegratedNoise = math.Sqrt(integratePower(f.Frequencies, values))
	}
	st.Centroid = centroid(f.Frequencies, values)
	st.Flatness = flatness(values)
	st.Bandwidth = bandwidth(f.Frequencies, values, maxIdx)

	return st
}

// MedianFloor returns the median of the finite values of s, a noise floor
// estimate that ignores narrow spurs. It is 0 for a spectrum without finite
// values.
func MedianFloor(s *spectrum.Spectrum) float64 {
	f := s.Finite()
	if f.Len() == 0 {
		return 0
	}
	return median(f.Values)
}

func median(values []float64) float64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}

// Peak returns the frequency and value of the largest finite point.
// ok is false when s has no finite points.
func Peak(s *spectrum.Spectrum) (freqHz, value float64, ok bool) {
	f := s.Finite()
	if f.Len() == 0 {
		return 0, 0, false
	}
	i := floats.MaxIdx(f.Values)
	return f.Frequencies[i], f.Values[i], true
}

// PeakInBand is [Peak] restricted to lo <= f <= hi.
func PeakInBand(s *spectrum.Spectrum, lo, hi float64) (freqHz, value float64, ok bool) {
	if !(hi >= lo) {
		return 0, 0, false
	}
	f := s.Finite()
	found := false
	for i, fr := range f.Frequencies {
		if fr < lo || fr > hi {
			continue
		}
		if !found || f.Values[i] > value {
			freqHz, value, found = fr, f.Values[i], true
		}
	}
	return freqHz, value, found
}

// IntegratedNoise returns sqrt(integral_lo^hi v(f)^2 df), the RMS value a
// signal with density s contributes in the band. The density is linearly
// interpolated at the band edges and NaN points are skipped.
func IntegratedNoise(s *spectrum.Spectrum, lo, hi float64) (float64, error) {
	freqs, values, err := band(s, lo, hi)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(integratePower(freqs, values)), nil
}

// BandDensity returns the power-averaged density over [lo, hi]:
// IntegratedNoise/sqrt(hi-lo). For white noise it equals the density.
func BandDensity(s *spectrum.Spectrum, lo, hi float64) (float64, error) {
	rms, err := IntegratedNoise(s, lo, hi)
	if err != nil {
		return 0, err
	}
	return rms / math.Sqrt(hi-lo), nil
}

// band returns the finite points of s inside [lo, hi] with interpolated
// end points at exactly lo and hi.
func band(s *spectrum.Spectrum, lo, hi float64) ([]float64, []float64, error) {
	if !(hi > lo) {
		return nil, nil, fmt.Errorf("%w: [%v, %v]", ErrInvalidBand, lo, hi)
	}

	f := s.Finite()
	if f.Len() < 2 {
		return nil, nil, fmt.Errorf("%w: spectrum has %d finite points", ErrInvalidBand, f.Len())
	}
	first, last := f.Frequencies[0], f.Frequencies[f.Len()-1]
	if lo < first || hi > last {
		return nil, nil, fmt.Errorf("%w: [%v, %v] outside %v..%v Hz", ErrInvalidBand, lo, hi, first, last)
	}

	edges, err := f.Interpolate([]float64{lo, hi})
	if err != nil {
		return nil, nil, err
	}

	freqs := []float64{lo}
	values := []float64{edges[0]}
	for i, fr := range f.Frequencies {
		if fr > lo && fr < hi {
			freqs = append(freqs, fr)
			values = append(values, f.Values[i])
		}
	}
	freqs = append(freqs, hi)
	values = append(values, edges[1])

	return freqs, values, nil
}

// integratePower integrates v^2 over freqs with the trapezoidal rule.
func integratePower(freqs, values []float64) float64 {
	power := make([]float64, len(values))
	floats.MulTo(power, values, values)
	return integrate.Trapezoidal(freqs, power)
}

// centroid is the power-weighted mean frequency.
//
//	centroid = sum(f_i * v_i^2) / sum(v_i^2)
func centroid(freqs, values []float64) float64 {
	power := 0.0
	weighted := 0.0
	for i, v := range values {
		power += v * v
		weighted += freqs[i] * v * v
	}
	if power == 0 {
		return 0
	}
	return weighted / power
}

// flatness is the Wiener entropy of the power values. A white noise density
// gives values close to 1; a spectrum with any zero point gives 0.
func flatness(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}

	sumLin := 0.0
	sumLog := 0.0
	for _, v := range values {
		p := v * v
		if p <= 0 {
			return 0
		}
		sumLin += p
		sumLog += math.Log(p)
	}

	return math.Exp(sumLog/float64(n)) / (sumLin / float64(n))
}

// bandwidth returns the width between the points around peak where the
// value drops to peak/sqrt(2), interpolated linearly between neighbours.
// A side that never drops uses the axis end.
func bandwidth(freqs, values []float64, peak int) float64 {
	n := len(values)
	if n < 2 || values[peak] <= 0 {
		return 0
	}

	threshold := values[peak] / math.Sqrt2

	lower := freqs[0]
	for i := peak; i >= 1; i-- {
		if values[i-1] <= threshold && values[i] > threshold {
			lower = crossing(freqs[i-1], freqs[i], values[i-1], values[i], threshold)
			break
		}
	}

	upper := freqs[n-1]
	for i := peak; i < n-1; i++ {
		if values[i+1] <= threshold && values[i] > threshold {
			upper = crossing(freqs[i], freqs[i+1], values[i], values[i+1], threshold)
			break
		}
	}

	return max(upper-lower, 0)
}

// crossing returns the frequency where the line through (f0, v0) and
// (f1, v1) reaches threshold.
func crossing(f0, f1, v0, v1, threshold float64) float64 {
	denom := v1 - v0
	if denom == 0 {
		return (f0 + f1) / 2
	}
	t := (threshold - v0) / denom
	return f0 + t*(f1-f0)
}
