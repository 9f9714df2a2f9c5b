package window

import "math"

// Analysis holds numerically measured spectral properties of a window.
type Analysis struct {
	// CoherentGain is sum(w[n]) / N, the DC response of the window.
	CoherentGain float64
	// ENBW is the measured equivalent noise bandwidth in bins. It should agree
	// with the catalog NENBW to about three decimals for large widths.
	ENBW float64
	// Bandwidth3dB is the 3 dB (half-power) main lobe width in bins.
	Bandwidth3dB float64
	// ScallopLossdB is the amplitude error for a signal half a bin off-centre.
	// Flat-top windows keep it close to 0 dB.
	ScallopLossdB float64
}

// Analyze measures the spectral properties of w by direct DFT evaluation.
func Analyze(w *Window) Analysis {
	coeffs := w.Coefficients()
	n := len(coeffs)

	dcRef := dftMagSq(coeffs, 0)
	if n == 0 || dcRef == 0 {
		return Analysis{}
	}

	enbw, err := EquivalentNoiseBandwidth(coeffs)
	if err != nil {
		return Analysis{}
	}

	scallop := 0.0
	if half := dftMagSq(coeffs, 0.5/float64(n)); half > 0 {
		scallop = 10 * math.Log10(half/dcRef)
	}

	return Analysis{
		CoherentGain:  w.S1() / float64(n),
		ENBW:          enbw,
		Bandwidth3dB:  searchBandwidth(coeffs, dcRef),
		ScallopLossdB: scallop,
	}
}

// dftMagSq evaluates |DFT(freq)|^2 at a normalised frequency [0,1).
func dftMagSq(coeffs []float64, freq float64) float64 {
	re, im := 0.0, 0.0
	w := 2 * math.Pi * freq
	for k, c := range coeffs {
		phase := w * float64(k)
		re += c * math.Cos(phase)
		im -= c * math.Sin(phase)
	}
	return re*re + im*im
}

// searchBandwidth bisects for the half-power point of the main lobe and
// returns the two-sided width in bins.
func searchBandwidth(coeffs []float64, dcRef float64) float64 {
	nf := float64(len(coeffs))
	invRef := 1.0 / dcRef

	// Flat-top main lobes span several bins; bound the search to 10 bins so
	// bisection never lands on a sidelobe.
	lo := 0.0
	hi := math.Min(0.5, 10/nf)
	for i := 0; i < 80; i++ {
		mid := (lo + hi) / 2
		if dftMagSq(coeffs, mid)*invRef > 0.5 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 2 * lo * nf
}
