// Package nsd estimates the noise spectral density of sampled records.
//
// Three estimators share one spectral kernel (linear detrend, flat-top
// window, forward FFT, density normalisation):
//
//   - [Estimator.Linear] is Welch's method at one FFT width.
//   - [Estimator.StackedLinear] runs Linear at every power-of-two width
//     between a maximum and a minimum and merges the results into one curve
//     that reaches lower frequencies than any single width.
//   - [Estimator.Logarithmic] evaluates log-spaced frequencies with the
//     Goertzel filter, each with its own segment length.
//
// Results are amplitude spectral densities in input units per sqrt(Hz),
// returned as [spectrum.Spectrum] values with ascending frequencies.
// Widths and frequency points are processed in parallel on a bounded
// worker pool; the first failure aborts the call and no partial spectrum is
// returned.
package nsd
