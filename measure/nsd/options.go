package nsd

import (
	"log/slog"

	"github.com/cwbudde/algo-nsd/dsp/window"
)

// DefaultWorkers bounds the parallel regions.
const DefaultWorkers = 8

// Config selects the window, FFT backend and parallelism of an Estimator.
type Config struct {
	Window  window.Type
	Backend Backend
	Workers int
}

// DefaultConfig returns the FTNI window, the algo-fft backend and
// DefaultWorkers workers.
//
// FTNI is preferred over the 4-term flat-tops because ceil(NENBW) is one bin
// smaller, leaving one more usable point at the low end of every spectrum.
func DefaultConfig() Config {
	return Config{
		Window:  window.TypeFTNI,
		Backend: BackendAlgoFFT,
		Workers: DefaultWorkers,
	}
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithWindow selects the catalog window.
func WithWindow(t window.Type) Option {
	return func(e *Estimator) {
		e.cfg.Window = t
	}
}

// WithBackend selects the FFT implementation used by the kernel.
func WithBackend(b Backend) Option {
	return func(e *Estimator) {
		e.cfg.Backend = b
	}
}

// WithWorkers sets the worker cap. Values below one are ignored.
func WithWorkers(n int) Option {
	return func(e *Estimator) {
		if n > 0 {
			e.cfg.Workers = n
		}
	}
}

// WithLogger routes debug records to l. A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(e *Estimator) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithConfig replaces the whole configuration. Zero Workers keeps the
// current worker cap.
func WithConfig(cfg Config) Option {
	return func(e *Estimator) {
		workers := e.cfg.Workers
		e.cfg = cfg
		if e.cfg.Workers <= 0 {
			e.cfg.Workers = workers
		}
	}
}

// Estimator computes noise spectral densities. It holds no per-call state and
// is safe for concurrent use.
type Estimator struct {
	cfg    Config
	logger *slog.Logger
}

// New creates an Estimator from DefaultConfig and opts.
func New(opts ...Option) *Estimator {
	e := &Estimator{
		cfg:    DefaultConfig(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Config returns the estimator configuration.
func (e *Estimator) Config() Config {
	return e.cfg
}
