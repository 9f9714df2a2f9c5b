package signal

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-nsd/dsp/core"
)

// ErrInvalidParameter reports an out-of-range generator argument.
var ErrInvalidParameter = errors.New("signal: invalid parameter")

// Generator creates deterministic test records of a fixed length and sample
// rate.
type Generator struct {
	cfg  core.RecordConfig
	seed int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets deterministic random seed for noise generation.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a configured signal generator.
func NewGenerator(opts ...core.RecordOption) *Generator {
	return NewGeneratorWithOptions(opts)
}

// NewGeneratorWithOptions creates a configured signal generator with
// signal-specific options.
func NewGeneratorWithOptions(coreOpts []core.RecordOption, opts ...Option) *Generator {
	g := &Generator{
		cfg:  core.ApplyRecordOptions(coreOpts...),
		seed: 1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Config returns the record configuration.
func (g *Generator) Config() core.RecordConfig {
	return g.cfg
}

// Seed returns the noise seed.
func (g *Generator) Seed() int64 { return g.seed }

// SetSeed changes the noise seed for subsequent calls.
func (g *Generator) SetSeed(seed int64) { g.seed = seed }

// Sine generates a sine wave of the configured length.
func (g *Generator) Sine(freqHz, amplitude float64) ([]float64, error) {
	if err := g.cfg.Validate(); err != nil {
		return nil, err
	}
	if freqHz < 0 || freqHz > g.cfg.Nyquist() {
		return nil, fmt.Errorf("%w: sine frequency %v outside 0..%v Hz", ErrInvalidParameter, freqHz, g.cfg.Nyquist())
	}

	out := make([]float64, g.cfg.Length)
	step := 2 * math.Pi * freqHz / g.cfg.SampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out, nil
}

// GaussianNoise generates white Gaussian noise whose one-sided amplitude
// spectral density is density (units/sqrt(Hz)). The standard deviation is
// density*sqrt(SampleRate/2).
func (g *Generator) GaussianNoise(density float64) ([]float64, error) {
	if err := g.cfg.Validate(); err != nil {
		return nil, err
	}
	if density < 0 || math.IsNaN(density) || math.IsInf(density, 0) {
		return nil, fmt.Errorf("%w: noise density must be >= 0: %v", ErrInvalidParameter, density)
	}

	out := make([]float64, g.cfg.Length)
	rng := rand.New(rand.NewSource(g.seed))
	sigma := density * math.Sqrt(g.cfg.SampleRate/2)
	for i := range out {
		out[i] = rng.NormFloat64() * sigma
	}
	return out, nil
}

// PowerLawNoise generates Gaussian noise with amplitude spectral density
// density*(f/refHz)^(-exponent/2), i.e. a PSD falling as 1/f^exponent.
// Exponent 0 is white, 1 pink (flicker) and 2 brown (random walk).
//
// White noise of unit density is shaped in the frequency domain, so the
// record is circular and has no DC component.
func (g *Generator) PowerLawNoise(density, refHz, exponent float64) ([]float64, error) {
	if !(refHz > 0) || math.IsInf(refHz, 0) {
		return nil, fmt.Errorf("%w: reference frequency must be > 0: %v", ErrInvalidParameter, refHz)
	}
	if math.IsNaN(exponent) || math.IsInf(exponent, 0) {
		return nil, fmt.Errorf("%w: exponent must be finite: %v", ErrInvalidParameter, exponent)
	}

	white, err := g.GaussianNoise(1)
	if err != nil {
		return nil, err
	}

	n := len(white)
	if n < 2 {
		return nil, fmt.Errorf("%w: power-law noise needs at least 2 samples", ErrInvalidParameter)
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, white)

	df := g.cfg.SampleRate / float64(n)
	coeffs[0] = 0
	for k := 1; k < len(coeffs); k++ {
		f := float64(k) * df
		coeffs[k] *= complex(math.Pow(f/refHz, -exponent/2), 0)
	}

	out := fft.Sequence(nil, coeffs)
	floats.Scale(density/float64(n), out)
	return out, nil
}

// Mix returns the element-wise sum of records of equal length.
func Mix(records ...[]float64) ([]float64, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no records to mix", ErrInvalidParameter)
	}

	out := make([]float64, len(records[0]))
	for i, r := range records {
		if len(r) != len(out) {
			return nil, fmt.Errorf("%w: record %d has %d samples, want %d", ErrInvalidParameter, i, len(r), len(out))
		}
		floats.Add(out, r)
	}
	return out, nil
}
