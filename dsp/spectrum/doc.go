// Package spectrum holds the frequency-domain result types of the noise
// density estimators and the Goertzel single-bin filter.
//
// A [Spectrum] pairs an ascending frequency axis with one value per
// frequency. It is built once, optionally trimmed exactly once at each end,
// and then treated as read-only by consumers.
package spectrum
