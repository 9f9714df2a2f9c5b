// Package time computes time-domain statistics of a noise record.
//
// They complement the spectral estimates: the AC level of a white record
// predicts its density through [WhiteDensity], and a large Drift or DC
// explains a raised low-frequency floor.
package time

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats holds time-domain statistics of a record.
//
//nolint:revive
type Stats struct {
	Length   int
	Duration float64 // seconds

	DC             float64 // mean
	RMS            float64 // including DC
	RMS_dB         float64
	AC             float64 // RMS after removing the mean
	AC_dB          float64
	Peak           float64 // max |x|
	Peak_dB        float64
	CrestFactor    float64 // peak / RMS (linear)
	CrestFactor_dB float64

	// Drift is the slope of the least-squares line through the record in
	// units per second.
	Drift float64

	Skewness      float64
	Kurtosis      float64 // excess, 0 for Gaussian noise
	ZeroCrossings int

	// WhiteDensity is the one-sided amplitude density of white noise
	// with the record's AC level.
	WhiteDensity float64
}

// ampTodB converts an amplitude value to decibels: 20 * log10(|value|).
// Returns -Inf for zero values.
func ampTodB(value float64) float64 {
	a := math.Abs(value)
	if a == 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(a)
}

func emptyStats() Stats {
	return Stats{
		RMS_dB:         math.Inf(-1),
		AC_dB:          math.Inf(-1),
		Peak_dB:        math.Inf(-1),
		CrestFactor_dB: math.Inf(-1),
	}
}

// Calculate computes the statistics of signal sampled at sampleRate.
// A non-positive sampleRate leaves Duration, Drift and WhiteDensity zero.
func Calculate(signal []float64, sampleRate float64) Stats {
	n := len(signal)
	if n == 0 {
		return emptyStats()
	}

	s := emptyStats()
	s.Length = n

	mean, variance := stat.PopMeanVariance(signal, nil)
	s.DC = mean
	s.AC = math.Sqrt(variance)
	s.AC_dB = ampTodB(s.AC)
	s.RMS = RMS(signal)
	s.RMS_dB = ampTodB(s.RMS)

	s.Peak = math.Max(math.Abs(floats.Max(signal)), math.Abs(floats.Min(signal)))
	s.Peak_dB = ampTodB(s.Peak)
	if s.RMS > 0 {
		s.CrestFactor = s.Peak / s.RMS
		s.CrestFactor_dB = ampTodB(s.CrestFactor)
	} else {
		s.CrestFactor_dB = 0
	}

	for i := 1; i < n; i++ {
		if signal[i-1]*signal[i] < 0 {
			s.ZeroCrossings++
		}
	}

	if variance > 0 && n > 3 {
		s.Skewness = stat.Skew(signal, nil)
		s.Kurtosis = stat.ExKurtosis(signal, nil)
	}

	if sampleRate > 0 {
		s.Duration = float64(n) / sampleRate
		s.WhiteDensity = WhiteDensity(s.AC, sampleRate)
		if n > 1 {
			s.Drift = slope(signal) * sampleRate
		}
	}

	return s
}

// RMS returns the root-mean-square of the signal.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}
	return floats.Norm(signal, 2) / math.Sqrt(float64(len(signal)))
}

// WhiteDensity returns the one-sided amplitude spectral density of white
// noise with the given RMS level: rms / sqrt(sampleRate/2).
func WhiteDensity(rms, sampleRate float64) float64 {
	return rms / math.Sqrt(sampleRate/2)
}

// slope fits a line over the sample index and returns its slope per sample.
func slope(signal []float64) float64 {
	xs := make([]float64, len(signal))
	floats.Span(xs, 0, float64(len(signal)-1))
	_, beta := stat.LinearRegression(xs, signal, nil, false)
	return beta
}
