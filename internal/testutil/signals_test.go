package testutil

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat"
)

func TestDeterministicSine(t *testing.T) {
	s := DeterministicSine(1000, 48000, 1.0, 48)
	if len(s) != 48 {
		t.Fatalf("len = %d, want 48", len(s))
	}
	if math.Abs(s[0]) > 1e-15 {
		t.Fatalf("s[0] = %v, want 0", s[0])
	}
	for i, v := range s {
		if v < -1 || v > 1 {
			t.Fatalf("s[%d] = %v out of range", i, v)
		}
	}
}

func TestDeterministicNoise(t *testing.T) {
	a := DeterministicNoise(42, 1.0, 64)
	b := DeterministicNoise(42, 1.0, 64)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("noise not deterministic at index %d", i)
		}
	}
}

func TestGaussianNoiseScale(t *testing.T) {
	const (
		density    = 2e-3
		sampleRate = 1000.0
	)
	x := GaussianNoise(3, density, sampleRate, 200000)

	want := density * math.Sqrt(sampleRate/2)
	if got := stat.StdDev(x, nil); RelativeError(got, want) > 0.01 {
		t.Fatalf("std = %v, want %v", got, want)
	}
}

func TestDC(t *testing.T) {
	d := DC(0.5, 4)
	for i, v := range d {
		if v != 0.5 {
			t.Fatalf("DC[%d] = %v, want 0.5", i, v)
		}
	}
}

func TestAdd(t *testing.T) {
	got := Add([]float64{1, 2, 3}, []float64{10, 20})
	RequireSliceNearlyEqual(t, got, []float64{11, 22}, 0)
}
