//nolint:funcorder
package spectrum

import (
	"fmt"
	"math"
)

// Goertzel evaluates a single DFT term at an arbitrary frequency.
//
// It runs the second-order recurrence s[n] = x[n] + 2cos(w)*s[n-1] - s[n-2]
// with w = 2*pi*frequency/sampleRate. After M samples the DFT term is
// X = s[M-1]*cos(w) - s[M-2] - j*s[M-1]*sin(w), whose magnitude equals the
// magnitude of the M-point DFT evaluated at frequency.
//
// The frequency does not need to fall on a DFT grid point, which is what the
// logarithmic estimator relies on. No window is applied; callers window the
// block first.
type Goertzel struct {
	frequency  float64
	sampleRate float64
	coeff      float64
	cosine     float64
	sine       float64
	s0, s1     float64
}

// NewGoertzel creates a new Goertzel filter for the target frequency.
//
// frequency must be between 0 and sampleRate/2.
func NewGoertzel(frequency, sampleRate float64) (*Goertzel, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("goertzel: sample rate must be > 0: %v", sampleRate)
	}

	if frequency < 0 || frequency > sampleRate/2 || math.IsNaN(frequency) || math.IsInf(frequency, 0) {
		return nil, fmt.Errorf("goertzel: frequency must be between 0 and sampleRate/2: %v", frequency)
	}

	w := 2 * math.Pi * frequency / sampleRate

	return &Goertzel{
		frequency:  frequency,
		sampleRate: sampleRate,
		coeff:      2 * math.Cos(w),
		cosine:     math.Cos(w),
		sine:       math.Sin(w),
	}, nil
}

// Reset clears the recurrence state.
func (g *Goertzel) Reset() {
	g.s0 = 0
	g.s1 = 0
}

// ProcessSample updates the internal state with a single input sample.
func (g *Goertzel) ProcessSample(input float64) {
	s := input + g.coeff*g.s0 - g.s1
	g.s1 = g.s0
	g.s0 = s
}

// ProcessBlock updates the internal state with a block of samples.
func (g *Goertzel) ProcessBlock(input []float64) {
	s0, s1 := g.s0, g.s1

	coeff := g.coeff
	for _, x := range input {
		s := x + coeff*s0 - s1
		s1 = s0
		s0 = s
	}

	g.s0, g.s1 = s0, s1
}

// Process resets the filter, runs samples through it and returns the DFT
// term at the target frequency.
func (g *Goertzel) Process(samples []float64) complex128 {
	g.Reset()
	g.ProcessBlock(samples)

	return g.Complex()
}

// Complex returns the DFT term for all samples processed since Reset.
func (g *Goertzel) Complex() complex128 {
	return complex(g.s0*g.cosine-g.s1, -g.s0*g.sine)
}

// Power returns |X|^2 for all samples processed since Reset.
func (g *Goertzel) Power() float64 {
	return g.s0*g.s0 + g.s1*g.s1 - g.coeff*g.s0*g.s1
}

// Magnitude returns |X|.
func (g *Goertzel) Magnitude() float64 {
	p := g.Power()
	if p <= 0 {
		return 0
	}

	return math.Sqrt(p)
}

// Frequency returns the target frequency.
func (g *Goertzel) Frequency() float64 { return g.frequency }

// SampleRate returns the sample rate.
func (g *Goertzel) SampleRate() float64 { return g.sampleRate }
