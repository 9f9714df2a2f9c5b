package window

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"
)

// Type identifies a flat-top window of the catalog.
type Type int

const (
	TypeFTNI Type = iota
	TypeHFT90D
	TypeHFT95
)

// Metadata holds the catalog properties of a window type.
//
// The cosine terms, overlap and NENBW values follow Heinzel, Rüdiger and
// Schilling, "Spectrum and spectral density estimation by the DFT".
type Metadata struct {
	Name string
	// OptimumOverlap is the fraction of the width shared by consecutive
	// Welch segments.
	OptimumOverlap float64
	// NENBW is the normalized equivalent noise bandwidth in bins.
	NENBW float64
	// Terms are the cosine-sum coefficients c[k] of w = sum c[k]*cos(k*z).
	Terms []float64
}

var metadataByType = map[Type]Metadata{
	TypeFTNI: {
		Name:           "FTNI",
		OptimumOverlap: 0.656,
		NENBW:          2.9656,
		Terms:          []float64{0.2810639, -0.5208972, 0.1980399},
	},
	TypeHFT90D: {
		Name:           "HFT90D",
		OptimumOverlap: 0.76,
		NENBW:          3.8832,
		Terms:          []float64{1, -1.942604, 1.340318, -0.440811, 0.043097},
	},
	TypeHFT95: {
		Name:           "HFT95",
		OptimumOverlap: 0.756,
		NENBW:          3.8112,
		Terms:          []float64{1, -1.9383379, 1.3045202, -0.4028270, 0.0350665},
	},
}

// Types returns all catalog window types in declaration order.
func Types() []Type {
	return []Type{TypeFTNI, TypeHFT90D, TypeHFT95}
}

// Info returns static metadata for a window type.
func Info(t Type) Metadata {
	if m, ok := metadataByType[t]; ok {
		return m
	}

	return Metadata{}
}

// String returns the catalog name of t.
func (t Type) String() string {
	if m, ok := metadataByType[t]; ok {
		return m.Name
	}

	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType resolves a case-insensitive catalog name such as "ftni".
func ParseType(name string) (Type, error) {
	for _, t := range Types() {
		if strings.EqualFold(name, metadataByType[t].Name) {
			return t, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", errUnknownType, name)
}

// Generate returns the periodic coefficients of t for the given width.
//
// w[i] = sum c[k]*cos(k*z) with z = 2*pi*i/width. It returns nil for
// width <= 0 or an unknown type.
func Generate(t Type, width int) []float64 {
	m, ok := metadataByType[t]
	if !ok || width <= 0 {
		return nil
	}

	out := make([]float64, width)
	for i := range out {
		out[i] = cosineFromTerms(float64(i)/float64(width), m.Terms)
	}

	return out
}

// Window is an immutable set of coefficients bound to one width together with
// its Welch corrections and window sums.
type Window struct {
	typ    Type
	coeffs []float64
	s1     float64
	s2     float64
}

// New computes the window of type t with the given width.
func New(t Type, width int) (*Window, error) {
	if err := validateWidth(width); err != nil {
		return nil, err
	}

	if _, ok := metadataByType[t]; !ok {
		return nil, fmt.Errorf("%w: %d", errUnknownType, int(t))
	}

	coeffs := Generate(t, width)

	return &Window{
		typ:    t,
		coeffs: coeffs,
		s1:     floats.Sum(coeffs),
		s2:     floats.Dot(coeffs, coeffs),
	}, nil
}

type cacheKey struct {
	typ   Type
	width int
}

var cache sync.Map // cacheKey -> *Window

// Cached returns a shared read-only window for (t, width), computing it on
// first use.
func Cached(t Type, width int) (*Window, error) {
	key := cacheKey{typ: t, width: width}
	if w, ok := cache.Load(key); ok {
		return w.(*Window), nil
	}

	w, err := New(t, width)
	if err != nil {
		return nil, err
	}

	actual, _ := cache.LoadOrStore(key, w)

	return actual.(*Window), nil
}

// Type returns the catalog type.
func (w *Window) Type() Type { return w.typ }

// Len returns the width in samples.
func (w *Window) Len() int { return len(w.coeffs) }

// Coefficients returns the window coefficients. The slice is shared and must
// not be modified.
func (w *Window) Coefficients() []float64 { return w.coeffs }

// OptimumOverlap returns the overlap fraction used for Welch averaging.
func (w *Window) OptimumOverlap() float64 { return metadataByType[w.typ].OptimumOverlap }

// NENBW returns the normalized equivalent noise bandwidth in bins.
func (w *Window) NENBW() float64 { return metadataByType[w.typ].NENBW }

// FirstUsableBin is ceil(NENBW), the number of low bins biased by leakage.
func (w *Window) FirstUsableBin() int { return FirstUsableBin(w.typ) }

// Hop returns the segment advance in samples, width*(1-OptimumOverlap),
// never less than one.
func (w *Window) Hop() int {
	hop := int(float64(len(w.coeffs)) * (1 - w.OptimumOverlap()))
	if hop < 1 {
		return 1
	}

	return hop
}

// S1 returns sum(w[i]).
func (w *Window) S1() float64 { return w.s1 }

// S2 returns sum(w[i]^2).
func (w *Window) S2() float64 { return w.s2 }

// Apply writes samples*w into dst. All slices must have the window's length.
func (w *Window) Apply(dst, samples []float64) error {
	if len(dst) != len(w.coeffs) || len(samples) != len(w.coeffs) {
		return errMismatchedLength
	}

	vecmath.MulBlock(dst, samples, w.coeffs)

	return nil
}

// FirstUsableBin returns ceil(NENBW) for t.
func FirstUsableBin(t Type) int {
	return int(math.Ceil(Info(t).NENBW))
}

// EquivalentNoiseBandwidth returns the ENBW in bins for a window.
func EquivalentNoiseBandwidth(coeffs []float64) (float64, error) {
	if len(coeffs) == 0 {
		return 0, errEmptyCoeffs
	}

	sum := floats.Sum(coeffs)
	if sum == 0 {
		return 0, errZeroCoherentGain
	}

	return float64(len(coeffs)) * floats.Dot(coeffs, coeffs) / (sum * sum), nil
}

// ApplyCoefficientsInPlace multiplies samples with coefficients in place.
func ApplyCoefficientsInPlace(samples, coeffs []float64) error {
	if len(samples) != len(coeffs) {
		return errMismatchedLength
	}

	vecmath.MulBlockInPlace(samples, coeffs)

	return nil
}

func cosineFromTerms(x float64, terms []float64) float64 {
	phase := 2 * math.Pi * x

	sum := 0.0
	for k, c := range terms {
		sum += c * math.Cos(float64(k)*phase)
	}

	return sum
}
