package nsd

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/cwbudde/algo-nsd/dsp/window"
	"github.com/cwbudde/algo-nsd/internal/testutil"
)

func TestBackendsAgree(t *testing.T) {
	sizes := []int{16, 256, 2048}

	for _, n := range sizes {
		src := make([]complex128, n)
		noise := testutil.DeterministicNoise(int64(n), 1, n)
		for i, v := range noise {
			src[i] = complex(v, 0)
		}

		want := naiveDFT(src)
		scale := 0.0
		for _, c := range want {
			scale = math.Max(scale, cmplx.Abs(c))
		}

		for _, b := range Backends() {
			tr, err := newTransformer(b, n)
			if err != nil {
				t.Fatalf("%v/%d: newTransformer: %v", b, n, err)
			}

			got := make([]complex128, n)
			if err := tr.Forward(got, src); err != nil {
				t.Fatalf("%v/%d: Forward: %v", b, n, err)
			}

			for k := range got {
				if d := cmplx.Abs(got[k] - want[k]); d > 1e-9*scale {
					t.Fatalf("%v/%d: bin %d = %v, want %v", b, n, k, got[k], want[k])
				}
			}
		}
	}
}

func TestBackendsGiveSamePSD(t *testing.T) {
	const n = 1024
	w, err := window.New(window.TypeHFT90D, n)
	if err != nil {
		t.Fatalf("window.New: %v", err)
	}
	segment := testutil.GaussianNoise(3, 1e-3, 48000, n)

	var ref []float64
	for _, b := range Backends() {
		k, err := NewKernel(n, b)
		if err != nil {
			t.Fatalf("%v: NewKernel: %v", b, err)
		}
		psd := make([]float64, n)
		if err := k.PSD(psd, segment, w, 48000); err != nil {
			t.Fatalf("%v: PSD: %v", b, err)
		}
		if ref == nil {
			ref = psd
			continue
		}
		for i := range psd {
			if rel := testutil.RelativeError(psd[i], ref[i]); rel > 1e-9 && math.Abs(psd[i]-ref[i]) > 1e-24 {
				t.Fatalf("%v: bin %d = %v, want %v", b, i, psd[i], ref[i])
			}
		}
	}
}

func TestParseBackend(t *testing.T) {
	for _, b := range Backends() {
		got, err := ParseBackend(b.String())
		if err != nil {
			t.Fatalf("ParseBackend(%q): %v", b.String(), err)
		}
		if got != b {
			t.Fatalf("ParseBackend(%q) = %v, want %v", b.String(), got, b)
		}
	}

	if got, err := ParseBackend("GONUM"); err != nil || got != BackendGonum {
		t.Fatalf("ParseBackend(GONUM) = %v, %v", got, err)
	}
	if _, err := ParseBackend("fftw"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
	if s := Backend(42).String(); s != "Backend(42)" {
		t.Fatalf("String() = %q", s)
	}
}

func naiveDFT(x []complex128) []complex128 {
	n := len(x)
	out := make([]complex128, n)
	for k := range out {
		var sum complex128
		for i, v := range x {
			phase := -2 * math.Pi * float64(k*i%n) / float64(n)
			sum += v * cmplx.Rect(1, phase)
		}
		out[k] = sum
	}
	return out
}
