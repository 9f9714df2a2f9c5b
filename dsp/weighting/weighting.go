package weighting

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-nsd/dsp/spectrum"
)

// ErrUnknownType is returned for names and values outside the four curves.
var ErrUnknownType = errors.New("weighting: unknown type")

// IEC 61672 analog prototype pole frequencies (Hz).
const (
	f1 = 20.598997 // double pole for A, B, C
	f2 = 107.65265 // single pole for A
	f3 = 158.48932 // single pole for B only
	f4 = 737.86223 // single pole for A only
	f5 = 12194.217 // double pole for A, B, C
)

const refHz = 1000

// Type identifies a frequency weighting curve.
type Type int

const (
	// TypeA is the A-weighting curve per IEC 61672.
	TypeA Type = iota

	// TypeB is the B-weighting curve per IEC 61672.
	TypeB

	// TypeC is the C-weighting curve per IEC 61672.
	TypeC

	// TypeZ applies no frequency weighting.
	TypeZ
)

// String returns a human-readable name for the weighting type.
func (t Type) String() string {
	switch t {
	case TypeA:
		return "A"
	case TypeB:
		return "B"
	case TypeC:
		return "C"
	case TypeZ:
		return "Z"
	default:
		return "Unknown"
	}
}

// ParseType maps a name such as "A" or "a" to a Type.
func ParseType(name string) (Type, error) {
	for _, t := range []Type{TypeA, TypeB, TypeC, TypeZ} {
		if strings.EqualFold(strings.TrimSpace(name), t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownType, name)
}

// Gain returns the linear magnitude of curve t at freqHz, normalized to 1
// at 1 kHz. Non-positive frequencies have zero gain except for TypeZ.
//
// Panics on an unknown type.
func Gain(t Type, freqHz float64) float64 {
	if t == TypeZ {
		return 1
	}
	if freqHz <= 0 {
		if _, ok := prototypes[t]; !ok {
			panic("weighting: unknown type")
		}
		return 0
	}
	return response(t, freqHz) / response(t, refHz)
}

// MagnitudeDB returns 20*log10 of [Gain].
func MagnitudeDB(t Type, freqHz float64) float64 {
	return 20 * math.Log10(Gain(t, freqHz))
}

// Apply returns a copy of s with every value multiplied by the gain of t at
// its frequency. NaN values stay NaN.
func Apply(s *spectrum.Spectrum, t Type) (*spectrum.Spectrum, error) {
	if _, ok := prototypes[t]; !ok && t != TypeZ {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, int(t))
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	freqs := append([]float64(nil), s.Frequencies...)
	values := make([]float64, len(s.Values))
	for i, v := range s.Values {
		values[i] = v * Gain(t, freqs[i])
	}

	return spectrum.New(freqs, values, s.Averages, s.Stacking)
}

// prototypes holds the unnormalized analog magnitude |H(j2πf)| per curve:
//
//	A: f5² f⁴ / ((f²+f1²) sqrt((f²+f2²)(f²+f4²)) (f²+f5²))
//	B: f5² f³ / ((f²+f1²) sqrt(f²+f3²) (f²+f5²))
//	C: f5² f² / ((f²+f1²) (f²+f5²))
var prototypes = map[Type]func(ff float64) float64{
	TypeA: func(ff float64) float64 {
		return f5 * f5 * ff * ff / ((ff + f1*f1) * math.Sqrt((ff+f2*f2)*(ff+f4*f4)) * (ff + f5*f5))
	},
	TypeB: func(ff float64) float64 {
		return f5 * f5 * ff * math.Sqrt(ff) / ((ff + f1*f1) * math.Sqrt(ff+f3*f3) * (ff + f5*f5))
	},
	TypeC: func(ff float64) float64 {
		return f5 * f5 * ff / ((ff + f1*f1) * (ff + f5*f5))
	},
}

func response(t Type, freqHz float64) float64 {
	p, ok := prototypes[t]
	if !ok {
		panic("weighting: unknown type")
	}
	return p(freqHz * freqHz)
}
