// Package config loads the YAML configuration of the nsd command.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-nsd/dsp/core"
	"github.com/cwbudde/algo-nsd/dsp/signal"
	"github.com/cwbudde/algo-nsd/dsp/weighting"
	"github.com/cwbudde/algo-nsd/dsp/window"
	"github.com/cwbudde/algo-nsd/measure/nsd"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("config: invalid")

// Config is the complete command configuration.
type Config struct {
	LogLevel  string          `yaml:"log_level"` // debug, info, warn or error
	Signal    SignalConfig    `yaml:"signal"`
	Estimator EstimatorConfig `yaml:"estimator"`
	Linear    LinearConfig    `yaml:"linear"`
	Stacked   StackedConfig   `yaml:"stacked"`
	Log       LogConfig       `yaml:"log"`
	Output    OutputConfig    `yaml:"output"`
}

// SignalConfig describes the synthetic record: white noise, an optional
// power-law component and an optional tone.
type SignalConfig struct {
	SampleRate   float64 `yaml:"sample_rate"`
	Length       int     `yaml:"length"`
	Seed         int64   `yaml:"seed"`
	NoiseDensity float64 `yaml:"noise_density"` // white, units/sqrt(Hz)

	PowerLawDensity  float64 `yaml:"power_law_density"` // at power_law_ref_hz, 0 disables
	PowerLawRefHz    float64 `yaml:"power_law_ref_hz"`
	PowerLawExponent float64 `yaml:"power_law_exponent"`

	ToneHz        float64 `yaml:"tone_hz"`
	ToneAmplitude float64 `yaml:"tone_amplitude"` // 0 disables
}

// EstimatorConfig selects the window, FFT backend and worker cap.
type EstimatorConfig struct {
	Window  string `yaml:"window"`
	Backend string `yaml:"backend"`
	Workers int    `yaml:"workers"`
}

// LinearConfig holds the Welch width of the linear command.
type LinearConfig struct {
	Width int `yaml:"width"`
}

// StackedConfig holds the width range of the stacked command.
type StackedConfig struct {
	MaxWidth int `yaml:"max_width"`
	MinWidth int `yaml:"min_width"`
}

// LogConfig holds the frequency grid of the log command.
type LogConfig struct {
	FreqMin                float64 `yaml:"freq_min"`
	FreqMax                float64 `yaml:"freq_max"`
	PointsPerDecade        int     `yaml:"points_per_decade"`
	PointsPerDecadeScaling float64 `yaml:"points_per_decade_scaling"`
	MinAverages            int     `yaml:"min_averages"`
	MinSegmentLength       int     `yaml:"min_segment_length"`
}

// OutputConfig controls the printed result.
type OutputConfig struct {
	Rows      int     `yaml:"rows"`      // table rows, 0 prints every point
	Smoothing int     `yaml:"smoothing"` // 1/N octave, 0 disables
	BandLow   float64 `yaml:"band_low"`  // integrated-noise band, Hz
	BandHigh  float64 `yaml:"band_high"`
	Weighting string  `yaml:"weighting"` // A, B, C or Z curve for a second noise figure, "" disables
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		Signal: SignalConfig{
			SampleRate:       48000,
			Length:           1 << 18,
			Seed:             1,
			NoiseDensity:     1e-6,
			PowerLawRefHz:    1,
			PowerLawExponent: 1,
			ToneHz:           1000,
		},
		Estimator: EstimatorConfig{
			Window:  window.TypeFTNI.String(),
			Backend: nsd.BackendAlgoFFT.String(),
			Workers: nsd.DefaultWorkers,
		},
		Linear: LinearConfig{
			Width: 8192,
		},
		Stacked: StackedConfig{
			MaxWidth: 65536,
			MinWidth: 1024,
		},
		Log: LogConfig{
			FreqMin:                1,
			FreqMax:                24000,
			PointsPerDecade:        20,
			PointsPerDecadeScaling: 1,
			MinAverages:            4,
		},
		Output: OutputConfig{
			Rows:      40,
			BandLow:   20,
			BandHigh:  20000,
			Weighting: weighting.TypeA.String(),
		},
	}
}

// Load reads the YAML file at path on top of [Default] and validates the
// result. An empty path returns the validated defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks every section. Values the estimators check themselves,
// such as widths against the record length, are left to them.
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}

	s := c.Signal
	if err := (core.RecordConfig{SampleRate: s.SampleRate, Length: s.Length}).Validate(); err != nil {
		return fmt.Errorf("%w: signal: %w", ErrInvalidConfig, err)
	}
	if s.NoiseDensity < 0 || s.PowerLawDensity < 0 || s.ToneAmplitude < 0 {
		return fmt.Errorf("%w: signal densities and amplitudes must be >= 0", ErrInvalidConfig)
	}
	if s.PowerLawDensity > 0 && !(s.PowerLawRefHz > 0) {
		return fmt.Errorf("%w: signal.power_law_ref_hz must be > 0", ErrInvalidConfig)
	}
	if s.ToneAmplitude > 0 && (s.ToneHz <= 0 || s.ToneHz > s.SampleRate/2) {
		return fmt.Errorf("%w: signal.tone_hz %v outside 0..%v", ErrInvalidConfig, s.ToneHz, s.SampleRate/2)
	}

	if _, err := c.Estimator.Options(); err != nil {
		return err
	}
	if c.Estimator.Workers < 0 {
		return fmt.Errorf("%w: estimator.workers must be >= 0", ErrInvalidConfig)
	}

	if c.Linear.Width <= 0 {
		return fmt.Errorf("%w: linear.width must be > 0", ErrInvalidConfig)
	}
	if c.Stacked.MinWidth <= 0 || c.Stacked.MaxWidth < c.Stacked.MinWidth {
		return fmt.Errorf("%w: stacked widths must satisfy 0 < min_width <= max_width", ErrInvalidConfig)
	}

	l := c.Log
	if !(l.FreqMin > 0) || !(l.FreqMax > l.FreqMin) {
		return fmt.Errorf("%w: log range must satisfy 0 < freq_min < freq_max", ErrInvalidConfig)
	}
	if l.PointsPerDecade <= 0 || l.MinAverages <= 0 || l.MinSegmentLength < 0 || l.PointsPerDecadeScaling < 0 {
		return fmt.Errorf("%w: log grid parameters out of range", ErrInvalidConfig)
	}

	o := c.Output
	if o.Rows < 0 || o.Smoothing < 0 {
		return fmt.Errorf("%w: output.rows and output.smoothing must be >= 0", ErrInvalidConfig)
	}
	if o.BandHigh != 0 && !(o.BandHigh > o.BandLow) {
		return fmt.Errorf("%w: output band must satisfy band_low < band_high", ErrInvalidConfig)
	}
	if _, _, err := o.WeightingType(); err != nil {
		return err
	}

	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	return level, nil
}

// Options converts the section into estimator options.
func (e EstimatorConfig) Options() ([]nsd.Option, error) {
	w, err := window.ParseType(e.Window)
	if err != nil {
		return nil, fmt.Errorf("%w: estimator.window: %w", ErrInvalidConfig, err)
	}
	b, err := nsd.ParseBackend(e.Backend)
	if err != nil {
		return nil, fmt.Errorf("%w: estimator.backend: %w", ErrInvalidConfig, err)
	}

	return []nsd.Option{
		nsd.WithWindow(w),
		nsd.WithBackend(b),
		nsd.WithWorkers(e.Workers),
	}, nil
}

// WeightingType parses Weighting. ok is false when weighting is disabled.
func (o OutputConfig) WeightingType() (t weighting.Type, ok bool, err error) {
	if o.Weighting == "" {
		return 0, false, nil
	}
	t, err = weighting.ParseType(o.Weighting)
	if err != nil {
		return 0, false, fmt.Errorf("%w: output.weighting: %w", ErrInvalidConfig, err)
	}
	return t, true, nil
}

// Grid converts the section into an estimator grid.
func (l LogConfig) Grid() nsd.LogGrid {
	return nsd.LogGrid{
		FreqMin:                l.FreqMin,
		FreqMax:                l.FreqMax,
		PointsPerDecade:        l.PointsPerDecade,
		PointsPerDecadeScaling: l.PointsPerDecadeScaling,
		MinAverages:            l.MinAverages,
		MinSegmentLength:       l.MinSegmentLength,
	}
}

// Generate synthesises the configured record.
func (s SignalConfig) Generate() ([]float64, error) {
	g := signal.NewGeneratorWithOptions(
		[]core.RecordOption{core.WithSampleRate(s.SampleRate), core.WithLength(s.Length)},
		signal.WithSeed(s.Seed),
	)

	out, err := g.GaussianNoise(s.NoiseDensity)
	if err != nil {
		return nil, err
	}
	parts := [][]float64{out}

	if s.PowerLawDensity > 0 {
		// A different seed keeps the coloured part independent of the white one.
		g.SetSeed(s.Seed + 1)
		pl, err := g.PowerLawNoise(s.PowerLawDensity, s.PowerLawRefHz, s.PowerLawExponent)
		if err != nil {
			return nil, err
		}
		parts = append(parts, pl)
	}

	if s.ToneAmplitude > 0 {
		tone, err := g.Sine(s.ToneHz, s.ToneAmplitude)
		if err != nil {
			return nil, err
		}
		parts = append(parts, tone)
	}

	return signal.Mix(parts...)
}
