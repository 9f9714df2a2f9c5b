package nsd

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-nsd/dsp/window"
	"github.com/cwbudde/algo-nsd/internal/testutil"
)

func TestLogGridFrequenciesUniform(t *testing.T) {
	g := LogGrid{PointsPerDecade: 10}

	got, err := g.Frequencies(1, 100)
	if err != nil {
		t.Fatalf("Frequencies: %v", err)
	}
	if len(got) != 21 {
		t.Fatalf("len = %d, want 21", len(got))
	}
	for i, f := range got {
		want := math.Pow(10, float64(i)/10)
		if testutil.RelativeError(f, want) > 1e-12 {
			t.Fatalf("frequency[%d] = %v, want %v", i, f, want)
		}
	}
}

func TestLogGridFrequenciesSinglePoint(t *testing.T) {
	got, err := LogGrid{PointsPerDecade: 1}.Frequencies(10, 20)
	if err != nil {
		t.Fatalf("Frequencies: %v", err)
	}
	if len(got) != 1 || got[0] != 10 {
		t.Fatalf("Frequencies = %v, want [10]", got)
	}
}

func TestLogGridFrequenciesScaling(t *testing.T) {
	uniform, err := LogGrid{PointsPerDecade: 10, PointsPerDecadeScaling: 1}.Frequencies(1, 1000)
	if err != nil {
		t.Fatalf("uniform: %v", err)
	}

	tests := []struct {
		name    string
		scaling float64
		denser  bool
	}{
		{"increasing", 2, true},
		{"decreasing", 0.5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LogGrid{PointsPerDecade: 10, PointsPerDecadeScaling: tt.scaling}.Frequencies(1, 1000)
			if err != nil {
				t.Fatalf("Frequencies: %v", err)
			}

			testutil.RequireStrictlyIncreasing(t, got)
			if got[0] != 1 || got[len(got)-1] != 1000 {
				t.Fatalf("range = %v..%v, want 1..1000", got[0], got[len(got)-1])
			}
			if tt.denser != (len(got) > len(uniform)) {
				t.Fatalf("%d points with scaling %v, uniform grid has %d", len(got), tt.scaling, len(uniform))
			}

			// The first decade keeps the base density.
			if r := math.Log10(got[1] / got[0]); math.Abs(r-0.1) > 1e-12 {
				t.Fatalf("first step = %v decades, want 0.1", r)
			}
		})
	}
}

func TestLogarithmicAxis(t *testing.T) {
	const sampleRate = 1000.0
	samples := testutil.GaussianNoise(31, 1e-3, sampleRate, 16384)

	s, err := Logarithmic(samples, sampleRate, 1, 100, 10, 4, 0, 1)
	if err != nil {
		t.Fatalf("Logarithmic: %v", err)
	}
	if s.Len() != 21 {
		t.Fatalf("len = %d, want 21", s.Len())
	}
	testutil.RequireStrictlyIncreasing(t, s.Frequencies)
	if s.Stacking != 1 {
		t.Fatalf("stacking = %d, want 1", s.Stacking)
	}
}

func TestLogarithmicClampsRange(t *testing.T) {
	const sampleRate = 1000.0
	samples := make([]float64, 4000)

	s, err := Logarithmic(samples, sampleRate, 1e-6, 1e6, 5, 1, 0, 1)
	if err != nil {
		t.Fatalf("Logarithmic: %v", err)
	}

	if first := s.Frequencies[0]; testutil.RelativeError(first, sampleRate/4000) > 1e-12 {
		t.Fatalf("first frequency = %v, want %v", first, sampleRate/4000)
	}
	if last := s.Frequencies[s.Len()-1]; testutil.RelativeError(last, sampleRate/2) > 1e-12 {
		t.Fatalf("last frequency = %v, want %v", last, sampleRate/2)
	}
}

func TestLogarithmicSkipsUnderAveragedPoints(t *testing.T) {
	const (
		sampleRate  = 1000.0
		length      = 16384
		minAverages = 10
	)
	samples := testutil.GaussianNoise(37, 1e-3, sampleRate, length)

	s, err := Logarithmic(samples, sampleRate, 0.1, 100, 10, minAverages, 0, 1)
	if err != nil {
		t.Fatalf("Logarithmic: %v", err)
	}

	meta := window.Info(window.TypeFTNI)
	bins := float64(window.FirstUsableBin(window.TypeFTNI))
	wantAverages := 0
	for i, f := range s.Frequencies {
		segment := max(int(math.Round(sampleRate/(f/bins))), 2)
		skip := segment > length ||
			int(float64(length-segment)/(float64(segment)*(1-meta.OptimumOverlap))) < minAverages

		v := s.Values[i]
		if skip != math.IsNaN(v) {
			t.Fatalf("point %v Hz: value %v, skip = %v", f, v, skip)
		}
		if skip {
			continue
		}

		w, err := window.New(window.TypeFTNI, segment)
		if err != nil {
			t.Fatalf("window.New(%d): %v", segment, err)
		}
		wantAverages += (length-segment)/w.Hop() + 1
	}

	if !math.IsNaN(s.Values[0]) {
		t.Fatalf("value at %v Hz = %v, want NaN", s.Frequencies[0], s.Values[0])
	}
	if math.IsNaN(s.Values[s.Len()-1]) {
		t.Fatalf("value at %v Hz is NaN", s.Frequencies[s.Len()-1])
	}
	if s.Averages != wantAverages {
		t.Fatalf("averages = %d, want %d", s.Averages, wantAverages)
	}
	if finite := s.Finite(); finite.Len() == 0 || finite.Len() == s.Len() {
		t.Fatalf("finite points = %d of %d", finite.Len(), s.Len())
	}
}

func TestLogarithmicWhiteNoiseLevel(t *testing.T) {
	const (
		sampleRate = 1000.0
		density    = 1e-3
	)
	samples := testutil.GaussianNoise(41, density, sampleRate, 65536)

	s, err := Logarithmic(samples, sampleRate, 5, 100, 20, 8, 0, 1)
	if err != nil {
		t.Fatalf("Logarithmic: %v", err)
	}
	testutil.RequireFinite(t, s.Values)

	power := 0.0
	for _, v := range s.Values {
		power += v * v
	}
	level := math.Sqrt(power / float64(s.Len()))

	if rel := testutil.RelativeError(level, density); rel > 0.1 {
		t.Fatalf("level = %v, want %v (rel err %v)", level, density, rel)
	}
}

func TestLogarithmicMinSegmentLength(t *testing.T) {
	samples := testutil.GaussianNoise(43, 1e-3, 1000, 4096)

	s, err := Logarithmic(samples, 1000, 10, 100, 5, 1, len(samples), 1)
	if err != nil {
		t.Fatalf("Logarithmic: %v", err)
	}
	for i, v := range s.Values {
		if !math.IsNaN(v) {
			t.Fatalf("value[%d] = %v, want NaN for a segment as long as the record", i, v)
		}
	}
	if s.Averages != 0 {
		t.Fatalf("averages = %d, want 0", s.Averages)
	}
}

func TestLogarithmicWorkerCountDoesNotChangeResult(t *testing.T) {
	samples := testutil.GaussianNoise(47, 1e-3, 1000, 16384)
	grid := LogGrid{FreqMin: 1, FreqMax: 400, PointsPerDecade: 12, MinAverages: 2}

	serial, err := New(WithWorkers(1)).Logarithmic(samples, 1000, grid)
	if err != nil {
		t.Fatalf("serial: %v", err)
	}
	parallel, err := New(WithWorkers(8)).Logarithmic(samples, 1000, grid)
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}

	if serial.Averages != parallel.Averages {
		t.Fatalf("averages = %d, want %d", parallel.Averages, serial.Averages)
	}
	for i := range serial.Values {
		if serial.Values[i] != parallel.Values[i] {
			t.Fatalf("value[%d] = %v, want %v", i, parallel.Values[i], serial.Values[i])
		}
	}
}

func TestLogarithmicErrors(t *testing.T) {
	samples := make([]float64, 1000)

	tests := []struct {
		name    string
		samples []float64
		rate    float64
		grid    LogGrid
		want    error
	}{
		{"zero rate", samples, 0, LogGrid{FreqMin: 1, FreqMax: 10, PointsPerDecade: 1, MinAverages: 1}, ErrInvalidArgument},
		{"zero freqMin", samples, 1000, LogGrid{FreqMin: 0, FreqMax: 10, PointsPerDecade: 1, MinAverages: 1}, ErrInvalidArgument},
		{"freqMax below freqMin", samples, 1000, LogGrid{FreqMin: 10, FreqMax: 10, PointsPerDecade: 1, MinAverages: 1}, ErrInvalidArgument},
		{"zero points per decade", samples, 1000, LogGrid{FreqMin: 1, FreqMax: 10, MinAverages: 1}, ErrInvalidArgument},
		{"zero min averages", samples, 1000, LogGrid{FreqMin: 1, FreqMax: 10, PointsPerDecade: 1}, ErrInvalidArgument},
		{"negative min segment", samples, 1000, LogGrid{FreqMin: 1, FreqMax: 10, PointsPerDecade: 1, MinAverages: 1, MinSegmentLength: -1}, ErrInvalidArgument},
		{"negative scaling", samples, 1000, LogGrid{FreqMin: 1, FreqMax: 10, PointsPerDecade: 1, MinAverages: 1, PointsPerDecadeScaling: -1}, ErrInvalidArgument},
		{"empty record", nil, 1000, LogGrid{FreqMin: 1, FreqMax: 10, PointsPerDecade: 1, MinAverages: 1}, ErrInsufficientData},
		{"range below resolution", samples, 1000, LogGrid{FreqMin: 0.1, FreqMax: 0.9, PointsPerDecade: 1, MinAverages: 1}, ErrInsufficientData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New().Logarithmic(tt.samples, tt.rate, tt.grid)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if s != nil {
				t.Fatal("spectrum returned with error")
			}
		})
	}
}

func TestLogarithmicNonFiniteInput(t *testing.T) {
	samples := testutil.GaussianNoise(53, 1e-3, 1000, 8192)
	samples[10] = math.NaN()

	_, err := Logarithmic(samples, 1000, 10, 100, 5, 1, 0, 1)
	if !errors.Is(err, ErrNumericAnomaly) {
		t.Fatalf("err = %v, want ErrNumericAnomaly", err)
	}
}
