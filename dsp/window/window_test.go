package window

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestGenerateMatchesCosineSum(t *testing.T) {
	const width = 64

	tests := []struct {
		typ  Type
		eval func(z float64) float64
	}{
		{TypeFTNI, func(z float64) float64 {
			return 0.2810639 - 0.5208972*math.Cos(z) + 0.1980399*math.Cos(2*z)
		}},
		{TypeHFT90D, func(z float64) float64 {
			return 1 - 1.942604*math.Cos(z) + 1.340318*math.Cos(2*z) - 0.440811*math.Cos(3*z) + 0.043097*math.Cos(4*z)
		}},
		{TypeHFT95, func(z float64) float64 {
			return 1 - 1.9383379*math.Cos(z) + 1.3045202*math.Cos(2*z) - 0.4028270*math.Cos(3*z) + 0.0350665*math.Cos(4*z)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			w := Generate(tt.typ, width)
			if len(w) != width {
				t.Fatalf("len=%d, want %d", len(w), width)
			}

			for i, v := range w {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Fatalf("coefficient[%d] invalid: %v", i, v)
				}

				want := tt.eval(2 * math.Pi * float64(i) / width)
				if !almostEqual(v, want, 1e-12) {
					t.Fatalf("coefficient[%d]=%v, want %v", i, v, want)
				}
			}
		})
	}
}

func TestCatalogCorrections(t *testing.T) {
	tests := []struct {
		typ     Type
		overlap float64
		nenbw   float64
		first   int
	}{
		{TypeFTNI, 0.656, 2.9656, 3},
		{TypeHFT90D, 0.76, 3.8832, 4},
		{TypeHFT95, 0.756, 3.8112, 4},
	}

	for _, tt := range tests {
		w, err := New(tt.typ, 1024)
		if err != nil {
			t.Fatalf("New(%v): %v", tt.typ, err)
		}

		if w.OptimumOverlap() != tt.overlap {
			t.Errorf("%v overlap=%v, want %v", tt.typ, w.OptimumOverlap(), tt.overlap)
		}

		if w.NENBW() != tt.nenbw {
			t.Errorf("%v NENBW=%v, want %v", tt.typ, w.NENBW(), tt.nenbw)
		}

		if w.FirstUsableBin() != tt.first {
			t.Errorf("%v first usable bin=%d, want %d", tt.typ, w.FirstUsableBin(), tt.first)
		}
	}
}

func TestMeasuredENBWMatchesCatalog(t *testing.T) {
	for _, typ := range Types() {
		w, err := New(typ, 4096)
		if err != nil {
			t.Fatalf("New(%v): %v", typ, err)
		}

		enbw, err := EquivalentNoiseBandwidth(w.Coefficients())
		if err != nil {
			t.Fatalf("EquivalentNoiseBandwidth: %v", err)
		}

		if !almostEqual(enbw, w.NENBW(), 1e-3) {
			t.Errorf("%v measured ENBW=%v, catalog %v", typ, enbw, w.NENBW())
		}

		want := float64(w.Len()) * w.S2() / (w.S1() * w.S1())
		if !almostEqual(enbw, want, 1e-12) {
			t.Errorf("%v ENBW from sums=%v, want %v", typ, want, enbw)
		}
	}
}

func TestSumsAreDeterministic(t *testing.T) {
	a, err := New(TypeFTNI, 2048)
	if err != nil {
		t.Fatal(err)
	}

	b, err := New(TypeFTNI, 2048)
	if err != nil {
		t.Fatal(err)
	}

	if a.S1() != b.S1() || a.S2() != b.S2() {
		t.Fatalf("sums differ: (%v,%v) vs (%v,%v)", a.S1(), a.S2(), b.S1(), b.S2())
	}

	for i := range a.Coefficients() {
		if a.Coefficients()[i] != b.Coefficients()[i] {
			t.Fatalf("coefficient %d not bit-identical", i)
		}
	}
}

func TestNewRejectsInvalidWidth(t *testing.T) {
	for _, width := range []int{0, -1, -1024} {
		if _, err := New(TypeFTNI, width); !errors.Is(err, ErrInvalidWidth) {
			t.Errorf("New(width=%d) err=%v, want ErrInvalidWidth", width, err)
		}
	}

	if w := Generate(TypeFTNI, 0); w != nil {
		t.Errorf("Generate(0)=%v, want nil", w)
	}
}

func TestNewRejectsUnknownType(t *testing.T) {
	if _, err := New(Type(99), 16); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestCachedReturnsSharedWindow(t *testing.T) {
	a, err := Cached(TypeHFT95, 512)
	if err != nil {
		t.Fatal(err)
	}

	b, err := Cached(TypeHFT95, 512)
	if err != nil {
		t.Fatal(err)
	}

	if a != b {
		t.Fatal("expected the same *Window for identical (type, width)")
	}

	c, err := Cached(TypeHFT95, 256)
	if err != nil {
		t.Fatal(err)
	}

	if c == a || c.Len() != 256 {
		t.Fatalf("unexpected window for width 256: len=%d", c.Len())
	}

	if _, err := Cached(TypeHFT95, 0); err == nil {
		t.Fatal("expected error for zero width")
	}
}

func TestHop(t *testing.T) {
	tests := []struct {
		typ   Type
		width int
		want  int
	}{
		{TypeFTNI, 2048, 704},
		{TypeHFT90D, 2048, 491},
		{TypeFTNI, 1, 1},
	}

	for _, tt := range tests {
		w, err := New(tt.typ, tt.width)
		if err != nil {
			t.Fatal(err)
		}

		if got := w.Hop(); got != tt.want {
			t.Errorf("%v/%d Hop()=%d, want %d", tt.typ, tt.width, got, tt.want)
		}
	}
}

func TestApply(t *testing.T) {
	w, err := New(TypeFTNI, 8)
	if err != nil {
		t.Fatal(err)
	}

	ones := []float64{1, 1, 1, 1, 1, 1, 1, 1}
	dst := make([]float64, 8)

	if err := w.Apply(dst, ones); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	for i := range dst {
		if dst[i] != w.Coefficients()[i] {
			t.Fatalf("dst[%d]=%v, want %v", i, dst[i], w.Coefficients()[i])
		}
	}

	if err := w.Apply(dst[:4], ones); err == nil {
		t.Fatal("expected length mismatch error")
	}

	if err := ApplyCoefficientsInPlace(ones, w.Coefficients()); err != nil {
		t.Fatalf("ApplyCoefficientsInPlace: %v", err)
	}

	if ones[0] != w.Coefficients()[0] {
		t.Fatalf("in-place apply mismatch: %v", ones[0])
	}
}

func TestParseType(t *testing.T) {
	for _, typ := range Types() {
		got, err := ParseType(typ.String())
		if err != nil || got != typ {
			t.Errorf("ParseType(%q)=%v,%v", typ.String(), got, err)
		}
	}

	if got, err := ParseType("hft90d"); err != nil || got != TypeHFT90D {
		t.Errorf("ParseType(hft90d)=%v,%v", got, err)
	}

	if _, err := ParseType("hann"); err == nil {
		t.Error("expected error for non-catalog window")
	}
}

func TestAnalyze(t *testing.T) {
	for _, typ := range Types() {
		w, err := New(typ, 1024)
		if err != nil {
			t.Fatal(err)
		}

		a := Analyze(w)
		if !almostEqual(a.ENBW, w.NENBW(), 2e-3) {
			t.Errorf("%v ENBW=%v, want ~%v", typ, a.ENBW, w.NENBW())
		}

		if math.Abs(a.ScallopLossdB) > 0.1 {
			t.Errorf("%v scallop loss %v dB, flat-top should be ~0", typ, a.ScallopLossdB)
		}

		if a.Bandwidth3dB < 2 || a.Bandwidth3dB > 5 {
			t.Errorf("%v 3 dB bandwidth %v bins out of range", typ, a.Bandwidth3dB)
		}
	}
}
