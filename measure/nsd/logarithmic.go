package nsd

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-nsd/dsp/spectrum"
	"github.com/cwbudde/algo-nsd/dsp/window"
)

// maxLogPoints bounds the frequency grid of a logarithmic estimate.
const maxLogPoints = 1 << 20

// LogGrid describes the frequency points of a logarithmic estimate.
type LogGrid struct {
	// FreqMin and FreqMax bound the grid in Hz. They are clamped to
	// sampleRate/len(samples) and sampleRate/2.
	FreqMin float64
	FreqMax float64
	// PointsPerDecade is the grid density at FreqMin.
	PointsPerDecade int
	// PointsPerDecadeScaling multiplies the density for every decade above
	// FreqMin. Zero or one gives a uniform log grid.
	PointsPerDecadeScaling float64
	// MinAverages drops points whose record cannot supply this many
	// segments. Dropped points stay in the result with a NaN value.
	MinAverages int
	// MinSegmentLength is the shortest segment used for any point.
	MinSegmentLength int
}

func (g LogGrid) validate() error {
	switch {
	case !(g.FreqMin > 0):
		return fmt.Errorf("%w: freqMin must be > 0: %v", ErrInvalidArgument, g.FreqMin)
	case !(g.FreqMax > g.FreqMin) || math.IsInf(g.FreqMax, 0):
		return fmt.Errorf("%w: freqMax %v must be greater than freqMin %v", ErrInvalidArgument, g.FreqMax, g.FreqMin)
	case g.PointsPerDecade <= 0:
		return fmt.Errorf("%w: pointsPerDecade must be > 0: %d", ErrInvalidArgument, g.PointsPerDecade)
	case g.MinAverages <= 0:
		return fmt.Errorf("%w: minAverages must be > 0: %d", ErrInvalidArgument, g.MinAverages)
	case g.MinSegmentLength < 0:
		return fmt.Errorf("%w: minSegmentLength must be >= 0: %d", ErrInvalidArgument, g.MinSegmentLength)
	case g.PointsPerDecadeScaling < 0 || math.IsNaN(g.PointsPerDecadeScaling) || math.IsInf(g.PointsPerDecadeScaling, 0):
		return fmt.Errorf("%w: pointsPerDecadeScaling must be >= 0: %v", ErrInvalidArgument, g.PointsPerDecadeScaling)
	}
	return nil
}

// Frequencies returns the log-spaced grid between freqMin and freqMax.
//
// With uniform scaling it has floor(decades*PointsPerDecade)+1 points spaced
// evenly in log frequency, both ends included. Otherwise the step from f is
// 1/(PointsPerDecade*scaling^log10(f/freqMin)) decades and freqMax is
// appended as the last point.
func (g LogGrid) Frequencies(freqMin, freqMax float64) ([]float64, error) {
	decades := math.Log10(freqMax / freqMin)
	scaling := g.PointsPerDecadeScaling

	if scaling == 0 || scaling == 1 {
		// Log10 of an exact decade ratio can fall an ulp short.
		n := int(decades*float64(g.PointsPerDecade)+1e-9) + 1
		if n > maxLogPoints {
			return nil, fmt.Errorf("%w: %d frequency points exceed %d", ErrInvalidArgument, n, maxLogPoints)
		}
		if n == 1 {
			return []float64{freqMin}, nil
		}
		freqs := floats.LogSpan(make([]float64, n), freqMin, freqMax)
		// Pin the ends; exp(log(x)) may land a few ulps past Nyquist.
		freqs[0], freqs[n-1] = freqMin, freqMax
		return freqs, nil
	}

	freqs := []float64{freqMin}
	for f := freqMin; ; {
		density := float64(g.PointsPerDecade) * math.Pow(scaling, math.Log10(f/freqMin))
		f *= math.Pow(10, 1/density)
		if f >= freqMax || f <= freqs[len(freqs)-1] {
			break
		}
		freqs = append(freqs, f)
		if len(freqs) > maxLogPoints {
			return nil, fmt.Errorf("%w: frequency points exceed %d", ErrInvalidArgument, maxLogPoints)
		}
	}
	if freqMax > freqs[len(freqs)-1] {
		freqs = append(freqs, freqMax)
	}
	return freqs, nil
}

// logPoint is the segment plan of one frequency.
type logPoint struct {
	freq      float64
	length    int
	estimated int
}

// Logarithmic estimates the noise spectral density at log-spaced
// frequencies.
//
// Each frequency f gets a segment length round(sampleRate*ceil(NENBW)/f),
// so that f sits on the first usable bin of its own transform, raised to
// MinSegmentLength if shorter. The segments are detrended, windowed and
// reduced with the Goertzel filter at f; the resulting PSDs are averaged and
// the square root taken. Points whose estimated average count
// floor((len-length)/(length*(1-overlap))) is below MinAverages keep a NaN
// value. All points are computed in parallel.
func (e *Estimator) Logarithmic(samples []float64, sampleRate float64, grid LogGrid) (*spectrum.Spectrum, error) {
	if err := validateSampleRate(sampleRate); err != nil {
		return nil, err
	}
	if err := grid.validate(); err != nil {
		return nil, err
	}
	if len(samples) < 2 {
		return nil, fmt.Errorf("%w: %d samples", ErrInsufficientData, len(samples))
	}

	freqMin := math.Max(grid.FreqMin, sampleRate/float64(len(samples)))
	freqMax := math.Min(grid.FreqMax, sampleRate/2)
	if !(freqMax > freqMin) {
		return nil, fmt.Errorf("%w: %d samples at %v Hz cannot resolve %v..%v Hz",
			ErrInsufficientData, len(samples), sampleRate, grid.FreqMin, grid.FreqMax)
	}

	freqs, err := grid.Frequencies(freqMin, freqMax)
	if err != nil {
		return nil, err
	}

	meta := window.Info(e.cfg.Window)
	firstBin := float64(window.FirstUsableBin(e.cfg.Window))

	points := make([]logPoint, len(freqs))
	for i, f := range freqs {
		resolution := f / firstBin
		length := max(int(math.Round(sampleRate/resolution)), grid.MinSegmentLength, 2)

		estimated := -1
		if length <= len(samples) {
			estimated = int(float64(len(samples)-length) / (float64(length) * (1 - meta.OptimumOverlap)))
		}
		points[i] = logPoint{freq: f, length: length, estimated: estimated}
	}

	values := make([]float64, len(freqs))
	for i := range values {
		values[i] = math.NaN()
	}

	var total atomic.Int64
	err = forEach(e.cfg.Workers, len(points), func(i int) error {
		p := points[i]
		if p.estimated < grid.MinAverages {
			e.logger.Debug("log point skipped",
				"frequency", p.freq,
				"segment", p.length,
				"estimated_averages", p.estimated)
			return nil
		}

		v, averages, err := e.goertzelDensity(samples, sampleRate, p)
		if err != nil {
			return fmt.Errorf("frequency %v Hz: %w", p.freq, err)
		}
		values[i] = v
		total.Add(int64(averages))
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Debug("logarithmic spectrum",
		"points", len(freqs),
		"averages", total.Load(),
		"freq_min", freqMin,
		"freq_max", freqMax)

	return spectrum.New(freqs, values, int(total.Load()), 1)
}

// goertzelDensity runs the Welch loop for one frequency with the Goertzel
// filter in place of the FFT.
func (e *Estimator) goertzelDensity(samples []float64, sampleRate float64, p logPoint) (float64, int, error) {
	win, err := window.New(e.cfg.Window, p.length)
	if err != nil {
		return 0, 0, err
	}

	g, err := spectrum.NewGoertzel(p.freq, sampleRate)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	d := newDetrender(p.length)
	detrended := make([]float64, p.length)
	windowed := make([]float64, p.length)
	scale := 2 / (sampleRate * win.S2())
	hop := win.Hop()

	sum := 0.0
	averages := 0
	for start := 0; start+p.length <= len(samples); start += hop {
		if err := d.detrend(detrended, samples[start:start+p.length]); err != nil {
			return 0, 0, err
		}
		vecmath.MulBlock(windowed, detrended, win.Coefficients())

		x := g.Process(windowed)
		psd := scale * (real(x)*real(x) + imag(x)*imag(x))
		if err := checkValue(start, psd); err != nil {
			return 0, 0, err
		}
		sum += psd
		averages++
	}

	if averages == 0 {
		return 0, 0, fmt.Errorf("%w: %d samples for segment %d", ErrInsufficientData, len(samples), p.length)
	}

	return math.Sqrt(sum / float64(averages)), averages, nil
}
