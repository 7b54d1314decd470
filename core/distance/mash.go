// core/distance/mash.go
package distance

import "math"

// ZeroFloor replaces an exact-zero Hamming fraction before the Jaccard
// transform, so byte-identical sketches come out extremely close rather
// than at a degenerate zero that the log below cannot handle. The value is
// the single-precision epsilon (2^-23); treat it as a tunable constant.
const ZeroFloor float32 = 1.1920929e-07

// Hamming returns the fraction of positions at which two signatures
// differ, in [0,1]. Signatures from one run always share a length; a
// length mismatch is a logic error upstream.
func Hamming(a, b []float32) float32 {
	diff := 0
	for i := range a {
		if a[i] != b[i] {
			diff++
		}
	}
	return float32(diff) / float32(len(a))
}

// Mash converts a signature Hamming fraction into the Mash genetic
// distance -ln(2j/(1+j))/k with j = 1-hamming. Intermediates stay in
// single precision; the division and logarithm run in double precision.
// The k divisor normalizes for a substitution corrupting up to k
// overlapping k-mers.
func Mash(hamming float32, k int) float64 {
	if hamming == 0 {
		hamming = ZeroFloor
	}
	jaccard := 1 - hamming
	numerator := 2 * jaccard
	denominator := 1 + jaccard
	fraction := float64(numerator) / float64(denominator)
	return -math.Log(fraction) / float64(k)
}

// Estimate is the full signature-pair to genetic-distance path.
func Estimate(a, b []float32, k int) float64 {
	return Mash(Hamming(a, b), k)
}
