package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-nsd/dsp/spectrum"
	"github.com/cwbudde/algo-nsd/internal/config"
	"github.com/cwbudde/algo-nsd/measure/nsd"
)

// app carries the state shared by the subcommands.
type app struct {
	configPath string
	cfg        *config.Config
	logLevel   slog.LevelVar
	logger     *slog.Logger

	// flag targets, copied into cfg when the flag was set
	flags config.Config
}

// estimate runs one estimator over the generated record.
type estimate func(ctx context.Context, est *nsd.Estimator, samples []float64) (*spectrum.Spectrum, error)

func newRootCommand() *cobra.Command {
	a := &app{}
	def := config.Default()

	root := &cobra.Command{
		Use:           "nsd",
		Short:         "Estimate the noise spectral density of a synthetic record",
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "Path to a YAML configuration file")
	pf.StringVar(&a.flags.LogLevel, "log-level", def.LogLevel, "Log level (debug, info, warn, error)")

	pf.Float64VarP(&a.flags.Signal.SampleRate, "sample-rate", "s", def.Signal.SampleRate, "Sample rate, measured in Hertz (Hz)")
	pf.IntVarP(&a.flags.Signal.Length, "length", "n", def.Signal.Length, "Record length in samples")
	pf.Int64Var(&a.flags.Signal.Seed, "seed", def.Signal.Seed, "Noise seed")
	pf.Float64Var(&a.flags.Signal.NoiseDensity, "density", def.Signal.NoiseDensity, "White noise density (units/sqrt(Hz))")
	pf.Float64Var(&a.flags.Signal.PowerLawDensity, "power-law-density", def.Signal.PowerLawDensity, "Power-law noise density at --power-law-ref-hz, 0 disables")
	pf.Float64Var(&a.flags.Signal.PowerLawRefHz, "power-law-ref-hz", def.Signal.PowerLawRefHz, "Reference frequency of the power-law density (Hz)")
	pf.Float64Var(&a.flags.Signal.PowerLawExponent, "power-law-exponent", def.Signal.PowerLawExponent, "PSD slope exponent (1 = 1/f)")
	pf.Float64Var(&a.flags.Signal.ToneHz, "tone-hz", def.Signal.ToneHz, "Tone frequency (Hz)")
	pf.Float64Var(&a.flags.Signal.ToneAmplitude, "tone-amplitude", def.Signal.ToneAmplitude, "Tone amplitude, 0 disables")

	pf.StringVarP(&a.flags.Estimator.Window, "window", "w", def.Estimator.Window, "Window (FTNI, HFT90D, HFT95)")
	pf.StringVar(&a.flags.Estimator.Backend, "backend", def.Estimator.Backend, "FFT backend (algo-fft, gonum, go-dsp)")
	pf.IntVar(&a.flags.Estimator.Workers, "workers", def.Estimator.Workers, "Parallel workers")

	pf.IntVar(&a.flags.Output.Rows, "rows", def.Output.Rows, "Table rows, 0 prints every point")
	pf.IntVar(&a.flags.Output.Smoothing, "smoothing", def.Output.Smoothing, "1/N-octave smoothing of the printed table, 0 disables")
	pf.Float64Var(&a.flags.Output.BandLow, "band-low", def.Output.BandLow, "Lower edge of the integrated-noise band (Hz)")
	pf.Float64Var(&a.flags.Output.BandHigh, "band-high", def.Output.BandHigh, "Upper edge of the integrated-noise band (Hz)")
	pf.StringVar(&a.flags.Output.Weighting, "weighting", def.Output.Weighting, "Weighting curve of the second noise figure (A, B, C, Z), empty disables")

	root.AddCommand(a.linearCommand(def), a.stackedCommand(def), a.logCommand(def))

	return root
}

func (a *app) linearCommand(def config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "linear",
		Short: "Welch estimate at a single FFT width",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, "linear", func(_ context.Context, est *nsd.Estimator, x []float64) (*spectrum.Spectrum, error) {
				return est.Linear(x, a.cfg.Signal.SampleRate, a.cfg.Linear.Width)
			})
		},
	}
	cmd.Flags().IntVar(&a.flags.Linear.Width, "width", def.Linear.Width, "FFT width in samples")
	return cmd
}

func (a *app) stackedCommand(def config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stacked",
		Short: "Merged Welch estimates over halving FFT widths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, "stacked", func(_ context.Context, est *nsd.Estimator, x []float64) (*spectrum.Spectrum, error) {
				return est.StackedLinear(x, a.cfg.Signal.SampleRate, a.cfg.Stacked.MaxWidth, a.cfg.Stacked.MinWidth)
			})
		},
	}
	cmd.Flags().IntVar(&a.flags.Stacked.MaxWidth, "max-width", def.Stacked.MaxWidth, "Largest FFT width")
	cmd.Flags().IntVar(&a.flags.Stacked.MinWidth, "min-width", def.Stacked.MinWidth, "Smallest FFT width")
	return cmd
}

func (a *app) logCommand(def config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Goertzel estimate on a logarithmic frequency grid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, "log", func(_ context.Context, est *nsd.Estimator, x []float64) (*spectrum.Spectrum, error) {
				return est.Logarithmic(x, a.cfg.Signal.SampleRate, a.cfg.Log.Grid())
			})
		},
	}
	f := cmd.Flags()
	f.Float64Var(&a.flags.Log.FreqMin, "freq-min", def.Log.FreqMin, "Lowest frequency (Hz)")
	f.Float64Var(&a.flags.Log.FreqMax, "freq-max", def.Log.FreqMax, "Highest frequency (Hz)")
	f.IntVar(&a.flags.Log.PointsPerDecade, "ppd", def.Log.PointsPerDecade, "Points per decade at --freq-min")
	f.Float64Var(&a.flags.Log.PointsPerDecadeScaling, "ppd-scaling", def.Log.PointsPerDecadeScaling, "Density factor per decade")
	f.IntVar(&a.flags.Log.MinAverages, "min-averages", def.Log.MinAverages, "Skip points with fewer averages")
	f.IntVar(&a.flags.Log.MinSegmentLength, "min-segment", def.Log.MinSegmentLength, "Shortest segment in samples")
	return cmd
}

// load reads the configuration file, applies the flags the user set and
// configures logging.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	applyFlags(cmd, cfg, &a.flags)
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	a.logLevel.Set(level)
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: &a.logLevel}))
	a.cfg = cfg

	return nil
}

func (a *app) run(cmd *cobra.Command, name string, fn estimate) error {
	opts, err := a.cfg.Estimator.Options()
	if err != nil {
		return err
	}
	est := nsd.New(append(opts, nsd.WithLogger(a.logger))...)

	started := time.Now()
	samples, err := a.cfg.Signal.Generate()
	if err != nil {
		return fmt.Errorf("generate record: %w", err)
	}
	a.logger.Debug("record generated", "samples", len(samples), "elapsed", time.Since(started))

	started = time.Now()
	s, err := fn(cmd.Context(), est, samples)
	if err != nil {
		return fmt.Errorf("%s estimate: %w", name, err)
	}
	a.logger.Info("estimate done",
		"estimator", name,
		"points", s.Len(),
		"averages", s.Averages,
		"elapsed", time.Since(started))

	return writeReport(cmd.OutOrStdout(), a.cfg, samples, s, a.logger)
}

// applyFlags copies every flag the user set from src into cfg, so that
// unset flags keep the file values.
func applyFlags(cmd *cobra.Command, cfg, src *config.Config) {
	set := func(name string, apply func()) {
		if cmd.Flags().Changed(name) {
			apply()
		}
	}

	set("log-level", func() { cfg.LogLevel = src.LogLevel })

	set("sample-rate", func() { cfg.Signal.SampleRate = src.Signal.SampleRate })
	set("length", func() { cfg.Signal.Length = src.Signal.Length })
	set("seed", func() { cfg.Signal.Seed = src.Signal.Seed })
	set("density", func() { cfg.Signal.NoiseDensity = src.Signal.NoiseDensity })
	set("power-law-density", func() { cfg.Signal.PowerLawDensity = src.Signal.PowerLawDensity })
	set("power-law-ref-hz", func() { cfg.Signal.PowerLawRefHz = src.Signal.PowerLawRefHz })
	set("power-law-exponent", func() { cfg.Signal.PowerLawExponent = src.Signal.PowerLawExponent })
	set("tone-hz", func() { cfg.Signal.ToneHz = src.Signal.ToneHz })
	set("tone-amplitude", func() { cfg.Signal.ToneAmplitude = src.Signal.ToneAmplitude })

	set("window", func() { cfg.Estimator.Window = src.Estimator.Window })
	set("backend", func() { cfg.Estimator.Backend = src.Estimator.Backend })
	set("workers", func() { cfg.Estimator.Workers = src.Estimator.Workers })

	set("rows", func() { cfg.Output.Rows = src.Output.Rows })
	set("smoothing", func() { cfg.Output.Smoothing = src.Output.Smoothing })
	set("band-low", func() { cfg.Output.BandLow = src.Output.BandLow })
	set("band-high", func() { cfg.Output.BandHigh = src.Output.BandHigh })
	set("weighting", func() { cfg.Output.Weighting = src.Output.Weighting })

	set("width", func() { cfg.Linear.Width = src.Linear.Width })
	set("max-width", func() { cfg.Stacked.MaxWidth = src.Stacked.MaxWidth })
	set("min-width", func() { cfg.Stacked.MinWidth = src.Stacked.MinWidth })

	set("freq-min", func() { cfg.Log.FreqMin = src.Log.FreqMin })
	set("freq-max", func() { cfg.Log.FreqMax = src.Log.FreqMax })
	set("ppd", func() { cfg.Log.PointsPerDecade = src.Log.PointsPerDecade })
	set("ppd-scaling", func() { cfg.Log.PointsPerDecadeScaling = src.Log.PointsPerDecadeScaling })
	set("min-averages", func() { cfg.Log.MinAverages = src.Log.MinAverages })
	set("min-segment", func() { cfg.Log.MinSegmentLength = src.Log.MinSegmentLength })
}
