// Package weighting provides the A, B, C and Z frequency weighting curves
// of IEC 61672 for spectral densities.
//
// Frequency weighting curves shape a magnitude response to approximate the
// frequency-dependent sensitivity of human hearing:
//
//   - A-weighting approximates the 40-phon equal-loudness contour.
//     Most widely used for noise measurements (e.g., LAeq).
//   - B-weighting approximates the 70-phon contour. Rarely used.
//   - C-weighting approximates the 100-phon contour.
//   - Z-weighting is flat, the reference that replaced "Linear".
//
// The curves are evaluated from the analog prototype poles, so they are
// exact at every frequency and independent of the sample rate. All curves
// are normalized to 0 dB at 1 kHz.
//
// [Apply] multiplies an amplitude spectral density by a curve, which is how
// a weighted integrated noise figure is obtained from a noise spectrum.
package weighting
