package nsd

import (
	"fmt"
	"strings"

	algofft "github.com/MeKo-Christian/algo-fft"
	godsp "github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Backend selects the forward FFT implementation. All backends compute the
// unscaled transform X[k] = sum x[n]*exp(-2*pi*j*k*n/N).
type Backend int

const (
	BackendAlgoFFT Backend = iota
	BackendGonum
	BackendGoDSP
)

var backendNames = map[Backend]string{
	BackendAlgoFFT: "algo-fft",
	BackendGonum:   "gonum",
	BackendGoDSP:   "go-dsp",
}

// Backends returns all FFT backends in declaration order.
func Backends() []Backend {
	return []Backend{BackendAlgoFFT, BackendGonum, BackendGoDSP}
}

func (b Backend) String() string {
	if name, ok := backendNames[b]; ok {
		return name
	}
	return fmt.Sprintf("Backend(%d)", int(b))
}

// ParseBackend resolves a backend name such as "gonum".
func ParseBackend(name string) (Backend, error) {
	for _, b := range Backends() {
		if strings.EqualFold(name, backendNames[b]) {
			return b, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown FFT backend %q", ErrInvalidArgument, name)
}

// transformer is a forward complex FFT bound to one length.
type transformer interface {
	Forward(dst, src []complex128) error
}

func newTransformer(b Backend, n int) (transformer, error) {
	switch b {
	case BackendAlgoFFT:
		plan, err := algofft.NewPlan64(n)
		if err != nil {
			return nil, fmt.Errorf("nsd: fft plan for %d points: %w", n, err)
		}
		return algoTransformer{plan: plan}, nil
	case BackendGonum:
		return gonumTransformer{fft: fourier.NewCmplxFFT(n)}, nil
	case BackendGoDSP:
		return goDSPTransformer{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown FFT backend %d", ErrInvalidArgument, int(b))
	}
}

type algoTransformer struct {
	plan *algofft.Plan[complex128]
}

func (t algoTransformer) Forward(dst, src []complex128) error {
	return t.plan.Forward(dst, src)
}

type gonumTransformer struct {
	fft *fourier.CmplxFFT
}

func (t gonumTransformer) Forward(dst, src []complex128) error {
	t.fft.Coefficients(dst, src)
	return nil
}

type goDSPTransformer struct{}

func (goDSPTransformer) Forward(dst, src []complex128) error {
	out := godsp.FFT(src)
	if len(out) != len(dst) {
		return fmt.Errorf("%w: fft output %d, want %d", ErrLengthMismatch, len(out), len(dst))
	}
	copy(dst, out)
	return nil
}
