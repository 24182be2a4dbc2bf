// Package histogram classifies a page's column structure from the
// horizontal distribution of its tokens, without ever looking at reading
// order. It is the sole input to the column segmenter.
package histogram

import (
	"math"

	"github.com/tsawler/resumecore/model"
)

// Config tunes the histogram build and classification thresholds. The
// zero value is not useful; call DefaultConfig.
type Config struct {
	// Bins is the target bin count N, clamped to [100,200].
	Bins int
	// TopMargin/BottomMargin exclude header/footer bands from the
	// primary classification pass (kept for Type 3 band detection).
	TopMargin    float64
	BottomMargin float64
	// PeakThreshold is the normalized height a local maximum must reach
	// to count as a peak.
	PeakThreshold float64
	// FloorThreshold is the normalized height below which a valley is
	// considered to "reach the floor" for Type 2 classification.
	FloorThreshold float64
	// MinTokensForClassification below this token count, a page
	// defaults to Type 1 (§4.2 edge case).
	MinTokensForClassification int
	// MinColumnWidthFraction columns narrower than this fraction of
	// page width are merged into their neighbor.
	MinColumnWidthFraction float64
}

// DefaultConfig returns the histogram parameters named in §4.2.
func DefaultConfig() Config {
	return Config{
		Bins:                        150,
		TopMargin:                   0.08,
		BottomMargin:                0.05,
		PeakThreshold:               0.35,
		FloorThreshold:              0.08,
		MinTokensForClassification: 20,
		MinColumnWidthFraction:      0.08,
	}
}

// Histogram is a smoothed, optionally-normalized 1-D density over a
// page's x-axis.
type Histogram struct {
	Bins      []float64
	BinWidth  float64
	PageWidth float64
}

// Build accumulates token widths into bins keyed by each token's
// x-center, per §4.2 step 1.
func Build(tokens []model.Token, pageWidth float64, n int) Histogram {
	if n < 100 {
		n = 100
	}
	if n > 200 {
		n = 200
	}
	binWidth := math.Max(1, math.Round(pageWidth/float64(n)))
	numBins := int(math.Ceil(pageWidth / binWidth))
	if numBins < 1 {
		numBins = 1
	}
	bins := make([]float64, numBins)
	for _, t := range tokens {
		cx := t.BBox.X + t.BBox.Width/2
		idx := int(cx / binWidth)
		if idx < 0 {
			idx = 0
		}
		if idx >= numBins {
			idx = numBins - 1
		}
		bins[idx] += t.BBox.Width
	}
	return Histogram{Bins: bins, BinWidth: binWidth, PageWidth: pageWidth}
}

// Smooth applies a centered moving average of the given window width
// in place (§4.2 step 2).
func (h *Histogram) Smooth(window int) {
	if window < 2 || len(h.Bins) == 0 {
		return
	}
	out := make([]float64, len(h.Bins))
	half := window / 2
	for i := range h.Bins {
		lo := i - half
		hi := i + half
		if lo < 0 {
			lo = 0
		}
		if hi >= len(h.Bins) {
			hi = len(h.Bins) - 1
		}
		sum := 0.0
		for j := lo; j <= hi; j++ {
			sum += h.Bins[j]
		}
		out[i] = sum / float64(hi-lo+1)
	}
	h.Bins = out
}

// Normalized returns Ĥ = H / max(H); an all-zero histogram normalizes
// to all zeros.
func (h Histogram) Normalized() []float64 {
	maxV := 0.0
	for _, v := range h.Bins {
		if v > maxV {
			maxV = v
		}
	}
	out := make([]float64, len(h.Bins))
	if maxV == 0 {
		return out
	}
	for i, v := range h.Bins {
		out[i] = v / maxV
	}
	return out
}

// Peak is a local maximum in a normalized histogram.
type Peak struct {
	Bin    int
	Height float64
}

// Valley is the minimum between two consecutive peaks.
type Valley struct {
	FromPeak, ToPeak int
	Bin              int
	Height           float64
}

// FindPeaks locates local maxima at or above threshold.
func FindPeaks(normalized []float64, threshold float64) []Peak {
	var peaks []Peak
	for i, v := range normalized {
		if v < threshold {
			continue
		}
		isMax := true
		if i > 0 && normalized[i-1] > v {
			isMax = false
		}
		if i < len(normalized)-1 && normalized[i+1] > v {
			isMax = false
		}
		if isMax {
			peaks = append(peaks, Peak{Bin: i, Height: v})
		}
	}
	return dedupeAdjacentPeaks(peaks)
}

// dedupeAdjacentPeaks collapses runs of equal-height adjacent bins (a
// plateau at a local max) into a single peak at the run's midpoint.
func dedupeAdjacentPeaks(peaks []Peak) []Peak {
	if len(peaks) < 2 {
		return peaks
	}
	var out []Peak
	i := 0
	for i < len(peaks) {
		j := i
		for j+1 < len(peaks) && peaks[j+1].Bin == peaks[j].Bin+1 {
			j++
		}
		mid := peaks[(i+j)/2]
		out = append(out, mid)
		i = j + 1
	}
	return out
}

// FindValleys returns, for each adjacent pair of peaks, the minimum
// normalized height in the open interval between them.
func FindValleys(normalized []float64, peaks []Peak) []Valley {
	var valleys []Valley
	for i := 0; i+1 < len(peaks); i++ {
		lo, hi := peaks[i].Bin, peaks[i+1].Bin
		minBin, minVal := lo, math.Inf(1)
		for b := lo + 1; b < hi; b++ {
			if normalized[b] < minVal {
				minVal = normalized[b]
				minBin = b
			}
		}
		if minVal == math.Inf(1) {
			minVal = math.Min(normalized[lo], normalized[hi])
			minBin = lo
		}
		valleys = append(valleys, Valley{FromPeak: i, ToPeak: i + 1, Bin: minBin, Height: minVal})
	}
	return valleys
}

// countFloorValleys reports how many consecutive floor-reaching bins
// (Ĥ ≤ floor) surround the deepest valley, for the "deep AND wide"
// Type2/Type3 tie-break (§4.2 edge cases: ≥2 bins at Ĥ≤0.08).
func countFloorValleys(normalized []float64, valley Valley, floor float64) int {
	if normalized[valley.Bin] > floor {
		return 0
	}
	count := 1
	for b := valley.Bin - 1; b >= 0 && normalized[b] <= floor; b-- {
		count++
	}
	for b := valley.Bin + 1; b < len(normalized) && normalized[b] <= floor; b++ {
		count++
	}
	return count
}
