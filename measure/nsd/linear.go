package nsd

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-nsd/dsp/spectrum"
	"github.com/cwbudde/algo-nsd/dsp/window"
)

// Linear estimates the noise spectral density with Welch's method.
//
// Segments of width samples start at 0 and advance by
// width*(1-OptimumOverlap) while they fit inside samples. Each segment is
// detrended, windowed and transformed; the PSDs are averaged and the square
// root taken. The one-sided result has bins i*sampleRate/width, with
// ceil(NENBW) bins removed from both ends.
//
// A record shorter than width returns ErrInsufficientData.
func (e *Estimator) Linear(samples []float64, sampleRate float64, width int) (*spectrum.Spectrum, error) {
	if err := e.validateLinear(sampleRate, width); err != nil {
		return nil, err
	}
	if len(samples) < width {
		return nil, fmt.Errorf("%w: %d samples for width %d", ErrInsufficientData, len(samples), width)
	}

	win, err := window.Cached(e.cfg.Window, width)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	psd, averages, err := e.welch(samples, sampleRate, win)
	if err != nil {
		return nil, err
	}

	for i, v := range psd {
		psd[i] = math.Sqrt(v)
	}

	s := spectrum.FromValues(psd, sampleRate, averages)
	if err := s.TrimStartEnd(win.FirstUsableBin()); err != nil {
		return nil, err
	}

	e.logger.Debug("linear spectrum",
		"width", width,
		"averages", averages,
		"points", s.Len(),
		"window", e.cfg.Window.String())

	return s, nil
}

func (e *Estimator) validateLinear(sampleRate float64, width int) error {
	if err := validateSampleRate(sampleRate); err != nil {
		return err
	}
	if err := validateWidth("width", width); err != nil {
		return err
	}

	// The one-sided half must keep at least one point after trimming
	// FirstUsableBin points from each end.
	bins := window.FirstUsableBin(e.cfg.Window)
	if width/2 <= 2*bins {
		return fmt.Errorf("%w: width %d too small for %v window (needs more than %d)",
			ErrInvalidArgument, width, e.cfg.Window, 4*bins+1)
	}
	return nil
}

// welch returns the averaged full-width PSD and the number of segments.
func (e *Estimator) welch(samples []float64, sampleRate float64, win *window.Window) ([]float64, int, error) {
	width := win.Len()

	kernel, err := NewKernel(width, e.cfg.Backend)
	if err != nil {
		return nil, 0, err
	}

	detrended := make([]float64, width)
	psd := make([]float64, width)
	acc := make([]float64, width)

	hop := win.Hop()
	averages := 0

	for start := 0; start+width <= len(samples); start += hop {
		if err := kernel.Detrend(detrended, samples[start:start+width]); err != nil {
			return nil, 0, err
		}
		if err := kernel.PSD(psd, detrended, win, sampleRate); err != nil {
			return nil, 0, fmt.Errorf("segment at %d: %w", start, err)
		}
		floats.Add(acc, psd)
		averages++
	}

	if averages == 0 {
		return nil, 0, fmt.Errorf("%w: %d samples for width %d", ErrInsufficientData, len(samples), width)
	}

	floats.Scale(1/float64(averages), acc)

	return acc, averages, nil
}
