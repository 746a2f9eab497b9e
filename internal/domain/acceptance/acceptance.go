// Package acceptance maps similarity scores and graph distances to calibrated
// connection-request acceptance rates.
package acceptance

import "math"

// band is one linear segment of the similarity curve: [simLo, simHi) -> [rateLo, rateHi).
type band struct {
	simLo, simHi   float64
	rateLo, rateHi float64
}

// similarityBands is ordered from the highest band down. Adjacent bands share
// their edge values so the curve is continuous and strictly increasing.
var similarityBands = []band{
	{simLo: 0.65, simHi: 1.00, rateLo: 0.40, rateHi: 0.45},
	{simLo: 0.45, simHi: 0.65, rateLo: 0.20, rateHi: 0.40},
	{simLo: 0.25, simHi: 0.45, rateLo: 0.15, rateHi: 0.20},
	{simLo: 0.00, simHi: 0.25, rateLo: 0.12, rateHi: 0.15},
}

// hopRates is indexed by hop count; paths longer than the table use the last entry.
var hopRates = []float64{0.85, 0.85, 0.65, 0.45, 0.30, 0.25}

// SimilarityToRate maps a 0..1 similarity score to an acceptance rate in [0.12, 0.45].
func SimilarityToRate(similarity float64) float64 {
	s := clamp(similarity, 0, 1)
	for _, b := range similarityBands {
		if s >= b.simLo {
			return lerp(s, b.simLo, b.simHi, b.rateLo, b.rateHi)
		}
	}
	return similarityBands[len(similarityBands)-1].rateLo
}

// RateToSimilarity inverts SimilarityToRate. Rates outside [0.12, 0.45] are clamped.
func RateToSimilarity(rate float64) float64 {
	r := clamp(rate, MinSimilarityRate, MaxSimilarityRate)
	for _, b := range similarityBands {
		if r >= b.rateLo {
			return lerp(r, b.rateLo, b.rateHi, b.simLo, b.simHi)
		}
	}
	return 0
}

// Bounds of SimilarityToRate.
const (
	MinSimilarityRate = 0.12
	MaxSimilarityRate = 0.45
)

// HopCountToRate maps a graph path length to an acceptance rate.
// A single hop (direct connection of a connection) yields 0.85; five or more yield 0.25.
func HopCountToRate(hops int) float64 {
	if hops < 1 {
		hops = 1
	}
	if hops >= len(hopRates) {
		return hopRates[len(hopRates)-1]
	}
	return hopRates[hops]
}

// RateToHopCount inverts HopCountToRate, returning the shortest hop count whose
// rate does not exceed rate. Rates at or below 0.25 map to 5.
func RateToHopCount(rate float64) int {
	for hops := 1; hops < len(hopRates); hops++ {
		if rate >= hopRates[hops]-1e-9 {
			return hops
		}
	}
	return len(hopRates) - 1
}

// Interpolate maps score in [lo, hi] linearly onto [rateLo, rateHi], clamping at both ends.
func Interpolate(score, lo, hi, rateLo, rateHi float64) float64 {
	return lerp(clamp(score, lo, hi), lo, hi, rateLo, rateHi)
}

func lerp(x, x0, x1, y0, y1 float64) float64 {
	if x1 == x0 {
		return y0
	}
	return y0 + (x-x0)/(x1-x0)*(y1-y0)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
