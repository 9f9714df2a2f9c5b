package nsd

import "github.com/cwbudde/algo-nsd/dsp/spectrum"

// Linear runs [Estimator.Linear] with the default configuration.
func Linear(samples []float64, sampleRate float64, width int) (*spectrum.Spectrum, error) {
	return New().Linear(samples, sampleRate, width)
}

// StackedLinear runs [Estimator.StackedLinear] with the default configuration.
func StackedLinear(samples []float64, sampleRate float64, maxWidth, minWidth int) (*spectrum.Spectrum, error) {
	return New().StackedLinear(samples, sampleRate, maxWidth, minWidth)
}

// Logarithmic runs [Estimator.Logarithmic] with the default configuration.
func Logarithmic(
	samples []float64,
	sampleRate float64,
	freqMin, freqMax float64,
	pointsPerDecade, minAverages, minSegmentLength int,
	pointsPerDecadeScaling float64,
) (*spectrum.Spectrum, error) {
	return New().Logarithmic(samples, sampleRate, LogGrid{
		FreqMin:                freqMin,
		FreqMax:                freqMax,
		PointsPerDecade:        pointsPerDecade,
		PointsPerDecadeScaling: pointsPerDecadeScaling,
		MinAverages:            minAverages,
		MinSegmentLength:       minSegmentLength,
	})
}
