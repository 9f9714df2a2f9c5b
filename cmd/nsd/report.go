package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/cwbudde/algo-nsd/dsp/spectrum"
	"github.com/cwbudde/algo-nsd/dsp/weighting"
	"github.com/cwbudde/algo-nsd/internal/config"
	frequencystats "github.com/cwbudde/algo-nsd/stats/frequency"
	timestats "github.com/cwbudde/algo-nsd/stats/time"
)

// writeReport prints a summary of s followed by a decimated table.
func writeReport(out io.Writer, cfg *config.Config, samples []float64, s *spectrum.Spectrum, logger *slog.Logger) error {
	sr := cfg.Signal.SampleRate
	rec := timestats.Calculate(samples, sr)
	duration := time.Duration(rec.Duration * float64(time.Second))

	st := frequencystats.Calculate(s)

	lines := []string{
		fmt.Sprintf("record:    %s samples at %s (%s)",
			humanize.Comma(int64(len(samples))), hertz(sr), duration.Round(time.Millisecond)),
		fmt.Sprintf("level:     %.4g rms ac, crest %.1f dB, drift %.3g/s, white equivalent %.4g /sqrt(Hz)",
			rec.AC, rec.CrestFactor_dB, rec.Drift, rec.WhiteDensity),
		fmt.Sprintf("spectrum:  %s points (%s finite), %s .. %s, %s averages, stacking %d",
			humanize.Comma(int64(s.Len())), humanize.Comma(int64(st.Points)),
			hertz(first(s.Frequencies)), hertz(last(s.Frequencies)),
			humanize.Comma(int64(s.Averages)), s.Stacking),
	}

	if st.Points > 0 {
		lines = append(lines,
			fmt.Sprintf("floor:     %.4g /sqrt(Hz) (%.1f dB)", st.Median, st.Median_dB),
			fmt.Sprintf("peak:      %.4g /sqrt(Hz) at %s", st.Max, hertz(st.MaxFrequency)),
		)
	}

	lo, hi := cfg.Output.BandLow, cfg.Output.BandHigh
	if hi == 0 {
		hi = sr / 2
	}
	if f := s.Finite(); f.Len() > 0 {
		lo = math.Max(lo, f.Frequencies[0])
		hi = math.Min(hi, f.Frequencies[f.Len()-1])
	}
	rms, err := frequencystats.IntegratedNoise(s, lo, hi)
	switch {
	case err == nil:
		lines = append(lines, fmt.Sprintf("noise:     %.4g rms in %s .. %s", rms, hertz(lo), hertz(hi)))
		wt, ok, err := cfg.Output.WeightingType()
		if err != nil {
			return err
		}
		if ok {
			weighted, err := weightedNoise(s, wt, lo, hi)
			if err != nil {
				return err
			}
			lines = append(lines, fmt.Sprintf("noise (%s): %.4g rms, %.1f dB re unweighted",
				wt, weighted, 20*math.Log10(weighted/rms)))
		}
	case errors.Is(err, frequencystats.ErrInvalidBand):
		logger.Warn("integrated-noise band skipped", "low", lo, "high", hi, "err", err)
	default:
		return err
	}

	for _, l := range lines {
		if _, err := fmt.Fprintln(out, l); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}

	table := s
	if n := cfg.Output.Smoothing; n > 0 {
		table, err = s.SmoothFractionalOctave(n)
		if err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return writeTable(out, table, cfg.Output.Rows)
}

func weightedNoise(s *spectrum.Spectrum, t weighting.Type, lo, hi float64) (float64, error) {
	w, err := weighting.Apply(s, t)
	if err != nil {
		return 0, err
	}
	return frequencystats.IntegratedNoise(w, lo, hi)
}

func writeTable(out io.Writer, s *spectrum.Spectrum, rows int) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintf(tw, "Frequency [Hz]\tDensity [/sqrt(Hz)]\tLevel [dB]\t\n"); err != nil {
		return fmt.Errorf("failed to write table header: %w", err)
	}

	for _, i := range rowIndices(s.Len(), rows) {
		v := s.Values[i]
		var err error
		if math.IsNaN(v) {
			_, err = fmt.Fprintf(tw, "%.4f\t-\t-\t\n", s.Frequencies[i])
		} else {
			_, err = fmt.Fprintf(tw, "%.4f\t%.4e\t%.2f\t\n", s.Frequencies[i], v, 20*math.Log10(v))
		}
		if err != nil {
			return fmt.Errorf("failed to write table row: %w", err)
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to flush table: %w", err)
	}
	return nil
}

// rowIndices picks rows evenly spaced indices out of n, always including
// the first and last point. rows <= 0 or rows >= n selects every index.
func rowIndices(n, rows int) []int {
	if rows <= 0 || rows >= n {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	if rows == 1 {
		return []int{0}
	}

	idx := make([]int, rows)
	for i := range idx {
		idx[i] = i * (n - 1) / (rows - 1)
	}
	return idx
}

func hertz(f float64) string {
	if math.IsNaN(f) {
		return "-"
	}
	return humanize.SIWithDigits(f, 2, "Hz")
}

func first(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return x[0]
}

func last(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return x[len(x)-1]
}
