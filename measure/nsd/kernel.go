package nsd

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-nsd/dsp/window"
)

// detrender removes the least-squares line from fixed-length segments.
type detrender struct {
	x []float64
}

func newDetrender(n int) detrender {
	x := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
	}
	return detrender{x: x}
}

// detrend writes segment[i] - (a + b*i) into dst, where a + b*x is the
// ordinary least-squares fit over x = 0..n-1.
func (d detrender) detrend(dst, segment []float64) error {
	n := len(d.x)
	if len(segment) != n || len(dst) != n {
		return fmt.Errorf("%w: detrend segment %d, output %d, want %d", ErrLengthMismatch, len(segment), len(dst), n)
	}

	if n == 1 {
		dst[0] = 0
		return nil
	}

	a, b := stat.LinearRegression(d.x, segment, nil, false)
	for i, y := range segment {
		dst[i] = y - (a + b*d.x[i])
	}
	return nil
}

// Kernel is the spectral kernel for one segment length. It owns its FFT plan
// and scratch buffers and reuses them across calls, so a Kernel must not be
// shared between goroutines.
type Kernel struct {
	n        int
	detrend  detrender
	fft      transformer
	windowed []float64
	in       []complex128
	out      []complex128
	re, im   []float64
}

// NewKernel allocates a kernel for segments of n samples.
func NewKernel(n int, backend Backend) (*Kernel, error) {
	if err := validateWidth("kernel length", n); err != nil {
		return nil, err
	}

	fft, err := newTransformer(backend, n)
	if err != nil {
		return nil, err
	}

	return &Kernel{
		n:        n,
		detrend:  newDetrender(n),
		fft:      fft,
		windowed: make([]float64, n),
		in:       make([]complex128, n),
		out:      make([]complex128, n),
		re:       make([]float64, n),
		im:       make([]float64, n),
	}, nil
}

// Len returns the segment length.
func (k *Kernel) Len() int { return k.n }

// Detrend writes segment minus its least-squares line into dst.
func (k *Kernel) Detrend(dst, segment []float64) error {
	return k.detrend.detrend(dst, segment)
}

// PSD writes the one-sided power spectral density of the detrended segment
// into dst: 2*|X[i]|^2 / (sampleRate*S2), with X the FFT of the windowed
// segment and S2 the window's sum of squares.
func (k *Kernel) PSD(dst, detrended []float64, w *window.Window, sampleRate float64) error {
	if err := validateSampleRate(sampleRate); err != nil {
		return err
	}
	return k.power(dst, detrended, w, 2/(sampleRate*w.S2()))
}

// PS writes the one-sided power spectrum 2*|X[i]|^2 / S1^2 into dst, with S1
// the window's coefficient sum. Unlike PSD it preserves the amplitude of a
// tone centred on a bin rather than a broadband density.
func (k *Kernel) PS(dst, detrended []float64, w *window.Window) error {
	s1 := w.S1()
	return k.power(dst, detrended, w, 2/(s1*s1))
}

func (k *Kernel) power(dst, detrended []float64, w *window.Window, scale float64) error {
	if len(dst) != k.n || len(detrended) != k.n || w.Len() != k.n {
		return fmt.Errorf("%w: output %d, segment %d, window %d, kernel %d",
			ErrLengthMismatch, len(dst), len(detrended), w.Len(), k.n)
	}

	vecmath.MulBlock(k.windowed, detrended, w.Coefficients())
	for i, v := range k.windowed {
		k.in[i] = complex(v, 0)
	}

	if err := k.fft.Forward(k.out, k.in); err != nil {
		return fmt.Errorf("nsd: forward fft: %w", err)
	}

	for i, c := range k.out {
		k.re[i] = real(c)
		k.im[i] = imag(c)
	}

	vecmath.Power(dst, k.re, k.im)
	floats.Scale(scale, dst)

	for i, v := range dst {
		if err := checkValue(i, v); err != nil {
			return err
		}
	}
	return nil
}
