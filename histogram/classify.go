package histogram

import (
	"math"

	"github.com/tsawler/resumecore/model"
)

// Classify derives a page's LayoutClass from its tokens alone, per the
// ordered rules in §4.2. The returned ColumnBounds are only populated
// for Type2; Type3 carries its bounds per-band instead.
func Classify(page *model.Page, cfg Config) model.LayoutClass {
	body := page.BodyTokens(cfg.TopMargin, cfg.BottomMargin)

	if len(body) < cfg.MinTokensForClassification {
		return model.LayoutClass{Kind: model.LayoutType1, Confidence: 1.0}
	}

	h := Build(body, page.Width, cfg.Bins)
	window := int(math.Ceil(float64(cfg.Bins) / 25))
	if window < 1 {
		window = 1
	}
	h.Smooth(window)
	normalized := h.Normalized()

	peaks := FindPeaks(normalized, cfg.PeakThreshold)
	valleys := FindValleys(normalized, peaks)

	deepest, hasValley := deepestValley(normalized, valleys)

	if len(peaks) <= 1 || (hasValley && !isDeepEnough(peaks, deepest)) {
		secondary := secondaryPeakHeight(peaks)
		return model.LayoutClass{Kind: model.LayoutType1, Confidence: clamp01(1 - secondary)}
	}

	floorValleys := 0
	var floorValley Valley
	for _, v := range valleys {
		if v.Height <= cfg.FloorThreshold {
			n := countFloorValleys(normalized, v, cfg.FloorThreshold)
			if n > floorValleys {
				floorValleys = n
				floorValley = v
			}
		}
	}

	// Tie-break: Type2 only when the gutter is both deep (reaches
	// floor) and wide (≥2 bins at or below the floor).
	if floorValleys >= 2 {
		bounds := columnBoundsFromPeaks(peaks, h.BinWidth, page.Width, cfg)
		conf := clamp01((peakMin(peaks, floorValley) - floorValley.Height) / peakMin(peaks, floorValley))
		return model.LayoutClass{Kind: model.LayoutType2, ColumnBounds: bounds, Confidence: conf}
	}

	bands := detectBands(page, cfg)
	confType2Complement := 0.0
	if hasValley {
		pm := peakMin(peaks, deepest)
		if pm > 0 {
			confType2Complement = (pm - deepest.Height) / pm
		}
	}
	return model.LayoutClass{Kind: model.LayoutType3, Bands: bands, Confidence: clamp01(1 - confType2Complement)}
}

func peakMin(peaks []Peak, v Valley) float64 {
	return math.Min(peaks[v.FromPeak].Height, peaks[v.ToPeak].Height)
}

func deepestValley(normalized []float64, valleys []Valley) (Valley, bool) {
	if len(valleys) == 0 {
		return Valley{}, false
	}
	best := valleys[0]
	for _, v := range valleys[1:] {
		if v.Height < best.Height {
			best = v
		}
	}
	return best, true
}

// isDeepEnough applies the Type1 depth-ratio rule: (peak_min -
// valley)/peak_min < 0.6 means NOT deep enough, i.e. stays Type1.
func isDeepEnough(peaks []Peak, v Valley) bool {
	pm := math.Min(peaks[v.FromPeak].Height, peaks[v.ToPeak].Height)
	if pm == 0 {
		return false
	}
	ratio := (pm - v.Height) / pm
	return ratio >= 0.6
}

func secondaryPeakHeight(peaks []Peak) float64 {
	if len(peaks) < 2 {
		return 0
	}
	max := 0.0
	for _, p := range peaks[1:] {
		if p.Height > max {
			max = p.Height
		}
	}
	return max
}

func columnBoundsFromPeaks(peaks []Peak, binWidth, pageWidth float64, cfg Config) []model.ColumnBound {
	if len(peaks) == 0 {
		return nil
	}
	boundaries := make([]float64, 0, len(peaks)+1)
	boundaries = append(boundaries, 0)
	for i := 0; i+1 < len(peaks); i++ {
		mid := (float64(peaks[i].Bin) + float64(peaks[i+1].Bin)) / 2 * binWidth
		boundaries = append(boundaries, mid)
	}
	boundaries = append(boundaries, pageWidth)

	bounds := make([]model.ColumnBound, 0, len(boundaries)-1)
	for i := 0; i+1 < len(boundaries); i++ {
		bounds = append(bounds, model.ColumnBound{X0: boundaries[i], X1: boundaries[i+1]})
	}
	return mergeNarrowColumns(bounds, pageWidth, cfg.MinColumnWidthFraction)
}

// mergeNarrowColumns folds any column narrower than minFraction of the
// page width into its neighbor (§4.2 edge cases).
func mergeNarrowColumns(bounds []model.ColumnBound, pageWidth, minFraction float64) []model.ColumnBound {
	if len(bounds) < 2 {
		return bounds
	}
	minWidth := pageWidth * minFraction
	out := make([]model.ColumnBound, 0, len(bounds))
	for _, b := range bounds {
		if b.X1-b.X0 < minWidth && len(out) > 0 {
			out[len(out)-1].X1 = b.X1
			continue
		}
		out = append(out, b)
	}
	return out
}

// detectBands slices the page into height/10 horizontal bands and
// reclassifies each independently, per §4.2 step 4's Type3 scan. A
// band whose own histogram degenerates to "≤1 peak" is emitted as a
// full-width band; otherwise it carries its own column bounds.
func detectBands(page *model.Page, cfg Config) []model.Band {
	if page.Height <= 0 {
		return nil
	}
	bandHeight := page.Height / 10
	bands := make([]model.Band, 0, 10)
	for i := 0; i < 10; i++ {
		y0 := bandHeight * float64(i)
		y1 := bandHeight * float64(i+1)
		var tokens []model.Token
		for _, t := range page.Tokens {
			cy := t.BBox.Center().Y
			if cy >= y0 && cy < y1 {
				tokens = append(tokens, t)
			}
		}
		if len(tokens) == 0 {
			continue
		}

		h := Build(tokens, page.Width, cfg.Bins)
		window := int(math.Ceil(float64(cfg.Bins) / 25))
		h.Smooth(window)
		normalized := h.Normalized()
		peaks := FindPeaks(normalized, cfg.PeakThreshold)

		if len(peaks) <= 1 {
			bands = append(bands, model.Band{Y0: y0, Y1: y1, FullWidth: true})
			continue
		}
		bounds := columnBoundsFromPeaks(peaks, h.BinWidth, page.Width, cfg)
		bands = append(bands, model.Band{Y0: y0, Y1: y1, FullWidth: false, ColumnBounds: bounds})
	}
	return mergeBands(bands)
}

// mergeBands collapses adjacent bands that agree on fullness and
// column bounds, so a tall full-width header doesn't fragment into ten
// near-identical band records.
func mergeBands(bands []model.Band) []model.Band {
	if len(bands) == 0 {
		return bands
	}
	out := []model.Band{bands[0]}
	for _, b := range bands[1:] {
		last := &out[len(out)-1]
		if last.FullWidth == b.FullWidth && sameBounds(last.ColumnBounds, b.ColumnBounds) && last.Y1 == b.Y0 {
			last.Y1 = b.Y1
			continue
		}
		out = append(out, b)
	}
	return out
}

func sameBounds(a, b []model.ColumnBound) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].X0 != b[i].X0 || a[i].X1 != b[i].X1 {
			return false
		}
	}
	return true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
