package core

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidRecord is returned by [RecordConfig.Validate].
var ErrInvalidRecord = errors.New("core: invalid record config")

// RecordConfig describes a sampled record.
type RecordConfig struct {
	SampleRate float64
	Length     int
}

// RecordOption mutates a RecordConfig.
type RecordOption func(*RecordConfig)

// DefaultRecordConfig returns 48 kHz and 2^16 samples.
func DefaultRecordConfig() RecordConfig {
	return RecordConfig{
		SampleRate: 48000,
		Length:     1 << 16,
	}
}

// WithSampleRate sets the sample rate in Hz.
func WithSampleRate(sampleRate float64) RecordOption {
	return func(cfg *RecordConfig) {
		if sampleRate > 0 && !math.IsInf(sampleRate, 0) {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithLength sets the number of samples.
func WithLength(length int) RecordOption {
	return func(cfg *RecordConfig) {
		if length > 0 {
			cfg.Length = length
		}
	}
}

// ApplyRecordOptions applies zero or more options to the default config.
func ApplyRecordOptions(opts ...RecordOption) RecordConfig {
	cfg := DefaultRecordConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Validate reports a non-positive sample rate or length.
func (c RecordConfig) Validate() error {
	if !(c.SampleRate > 0) || math.IsInf(c.SampleRate, 0) {
		return fmt.Errorf("%w: sample rate must be > 0: %v", ErrInvalidRecord, c.SampleRate)
	}
	if c.Length <= 0 {
		return fmt.Errorf("%w: length must be > 0: %d", ErrInvalidRecord, c.Length)
	}
	return nil
}

// Duration returns the record length in seconds.
func (c RecordConfig) Duration() float64 {
	return float64(c.Length) / c.SampleRate
}

// Resolution returns SampleRate/Length, the lowest frequency a single
// transform over the whole record resolves.
func (c RecordConfig) Resolution() float64 {
	return c.SampleRate / float64(c.Length)
}

// Nyquist returns SampleRate/2.
func (c RecordConfig) Nyquist() float64 {
	return c.SampleRate / 2
}
