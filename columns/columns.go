// Package columns partitions a page's tokens into ColumnRegions given
// its LayoutClass, and implements the multi-section header re-split
// rule from §4.3.
package columns

import (
	"math"

	"github.com/tsawler/resumecore/lines"
	"github.com/tsawler/resumecore/model"
	"github.com/tsawler/resumecore/sections"
)

// minResplitTokens is the minimum token count a resulting column must
// have after a multi-header re-split, or the re-split is rejected.
const minResplitTokens = 5

// Segment partitions page into ColumnRegions per §4.3's rules, then
// attempts the multi-section header re-split before returning.
func Segment(page *model.Page, class model.LayoutClass, matcher *sections.Matcher) []model.ColumnRegion {
	var regions []model.ColumnRegion

	switch class.Kind {
	case model.LayoutType1:
		regions = []model.ColumnRegion{{Page: page.Index, ColumnIndex: 0, X0: 0, X1: page.Width, Tokens: page.Tokens}}
	case model.LayoutType2:
		regions = assignByBounds(page, class.ColumnBounds, 0)
	case model.LayoutType3:
		regions = segmentBands(page, class.Bands)
	default:
		regions = []model.ColumnRegion{{Page: page.Index, ColumnIndex: 0, X0: 0, X1: page.Width, Tokens: page.Tokens}}
	}

	regions = dropEmpty(regions)
	if len(regions) == 0 {
		return []model.ColumnRegion{{Page: page.Index, ColumnIndex: 0, X0: 0, X1: page.Width, Tokens: page.Tokens}}
	}

	if resplit, ok := tryMultiHeaderResplit(page, regions, matcher); ok {
		return resplit
	}
	return regions
}

func assignByBounds(page *model.Page, bounds []model.ColumnBound, bandIndex int) []model.ColumnRegion {
	regions := make([]model.ColumnRegion, len(bounds))
	for i, b := range bounds {
		regions[i] = model.ColumnRegion{Page: page.Index, ColumnIndex: i, BandIndex: bandIndex, X0: b.X0, X1: b.X1}
	}

	centroids := make([]float64, len(bounds))
	for i, b := range bounds {
		centroids[i] = (b.X0 + b.X1) / 2
	}

	for _, t := range page.Tokens {
		cx := t.BBox.X + t.BBox.Width/2
		idx := columnForX(cx, bounds, centroids)
		regions[idx].Tokens = append(regions[idx].Tokens, t)
	}
	return regions
}

// columnForX assigns a token to the column whose bound contains its
// x-center; a center that falls outside every bound (rounding at the
// page edges) goes to the nearest centroid (§4.3).
func columnForX(cx float64, bounds []model.ColumnBound, centroids []float64) int {
	for i, b := range bounds {
		if cx >= b.X0 && cx < b.X1 {
			return i
		}
	}
	best := 0
	bestDist := math.Inf(1)
	for i, c := range centroids {
		d := math.Abs(cx - c)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

func segmentBands(page *model.Page, bands []model.Band) []model.ColumnRegion {
	var regions []model.ColumnRegion
	for bandIdx, band := range bands {
		var bandTokens []model.Token
		for _, t := range page.Tokens {
			cy := t.BBox.Center().Y
			if cy >= band.Y0 && cy < band.Y1 {
				bandTokens = append(bandTokens, t)
			}
		}
		if band.FullWidth {
			regions = append(regions, model.ColumnRegion{
				Page: page.Index, ColumnIndex: 0, BandIndex: bandIdx,
				X0: 0, X1: page.Width, Tokens: bandTokens, Spans: true,
			})
			continue
		}
		subPage := &model.Page{Index: page.Index, Width: page.Width, Height: page.Height, Tokens: bandTokens}
		sub := assignByBounds(subPage, band.ColumnBounds, bandIdx)
		regions = append(regions, sub...)
	}
	return regions
}

func dropEmpty(regions []model.ColumnRegion) []model.ColumnRegion {
	out := make([]model.ColumnRegion, 0, len(regions))
	for _, r := range regions {
		if len(r.Tokens) > 0 {
			out = append(out, r)
		}
	}
	return out
}

// tryMultiHeaderResplit inspects the topmost line of each region for a
// multi-header (two or more distinct canonical names at distinct
// x-positions); if found, the page is re-segmented at the midpoint
// between anchors. Re-splits producing any column with fewer than
// minResplitTokens tokens are rejected (§4.3).
func tryMultiHeaderResplit(page *model.Page, regions []model.ColumnRegion, matcher *sections.Matcher) ([]model.ColumnRegion, bool) {
	for _, region := range regions {
		topLine := topmostLine(region)
		if topLine == nil {
			continue
		}
		anchors := multiHeaderAnchors(*topLine, matcher)
		if len(anchors) < 2 {
			continue
		}

		exported := make([]HeaderAnchor, len(anchors))
		for i, a := range anchors {
			exported[i] = HeaderAnchor{Canonical: a.canonical, XCenter: a.xCenter, Text: a.text}
		}
		newRegions, ok := ResplitRegion(region, exported)
		if !ok {
			return nil, false
		}

		// Splice the re-split columns in place of the original region,
		// shifting later column indices to keep them unique/ordered.
		result := spliceRegion(regions, region, newRegions)
		return result, true
	}
	return nil, false
}

func topmostLine(region model.ColumnRegion) *model.Line {
	if len(region.Tokens) == 0 {
		return nil
	}
	minY := region.Tokens[0].BBox.Y
	for _, t := range region.Tokens[1:] {
		if t.BBox.Y < minY {
			minY = t.BBox.Y
		}
	}
	lineHeight := region.Tokens[0].BBox.Height
	var topTokens []model.Token
	for _, t := range region.Tokens {
		if t.BBox.Y < minY+lineHeight*1.2 {
			topTokens = append(topTokens, t)
		}
	}
	if len(topTokens) == 0 {
		return nil
	}
	group := lines.Group(model.ColumnRegion{Tokens: topTokens}, lines.DefaultConfig())
	if len(group) == 0 {
		return nil
	}
	return &group[0]
}

func multiHeaderAnchors(line model.Line, matcher *sections.Matcher) []headerAnchor {
	var anchors []headerAnchor
	seen := map[model.CanonicalName]bool{}
	for i := 0; i < len(line.Tokens); i++ {
		for j := i; j < len(line.Tokens); j++ {
			span := line.Tokens[i : j+1]
			text := joinTexts(span)
			result := matcher.MatchNoLearn(text)
			if result.Canonical == model.SectionUnknown || result.Score < 0.7 {
				continue
			}
			if seen[result.Canonical] {
				continue
			}
			seen[result.Canonical] = true
			anchors = append(anchors, headerAnchor{canonical: result.Canonical, xCenter: spanCenter(span), text: text})
		}
	}
	return anchors
}

type headerAnchor struct {
	canonical model.CanonicalName
	xCenter   float64
	text      string
}

// HeaderAnchor is the exported shape of a detected multi-header anchor
// (one per distinct canonical name found at a distinct x-position in a
// line), so callers outside this package — the header scorer finds
// multi-headers at any line position, not just a region's topmost
// line — can drive the same resplit ResplitRegion performs here.
type HeaderAnchor struct {
	Canonical model.CanonicalName
	XCenter   float64
	Text      string
}

// ResplitRegion re-segments region at the horizontal midpoints between
// anchors, rejecting the split if any resulting column would fall
// below minResplitTokens (§4.3). Used both by Segment's own topmost-
// line check and by a caller re-splitting on a multi-header found
// deeper in the region.
func ResplitRegion(region model.ColumnRegion, anchors []HeaderAnchor) ([]model.ColumnRegion, bool) {
	if len(anchors) < 2 {
		return nil, false
	}
	internal := make([]headerAnchor, len(anchors))
	for i, a := range anchors {
		internal[i] = headerAnchor{canonical: a.Canonical, xCenter: a.XCenter, text: a.Text}
	}
	boundaries := resplitBoundaries(internal, region.X0, region.X1)
	newRegions := reassignRegion(region, boundaries)
	for i := range newRegions {
		if len(newRegions[i].Tokens) < minResplitTokens {
			return nil, false
		}
	}
	return newRegions, true
}

func joinTexts(tokens []model.Token) string {
	out := tokens[0].Text
	for _, t := range tokens[1:] {
		out += " " + t.Text
	}
	return out
}

func spanCenter(tokens []model.Token) float64 {
	min := tokens[0].BBox.X
	max := tokens[0].BBox.X + tokens[0].BBox.Width
	for _, t := range tokens[1:] {
		if t.BBox.X < min {
			min = t.BBox.X
		}
		if t.BBox.X+t.BBox.Width > max {
			max = t.BBox.X + t.BBox.Width
		}
	}
	return (min + max) / 2
}

func resplitBoundaries(anchors []headerAnchor, x0, x1 float64) []float64 {
	sorted := append([]headerAnchor(nil), anchors...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1].xCenter > sorted[j].xCenter; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	bounds := []float64{x0}
	for i := 0; i+1 < len(sorted); i++ {
		bounds = append(bounds, (sorted[i].xCenter+sorted[i+1].xCenter)/2)
	}
	bounds = append(bounds, x1)
	return bounds
}

func reassignRegion(region model.ColumnRegion, boundaries []float64) []model.ColumnRegion {
	n := len(boundaries) - 1
	out := make([]model.ColumnRegion, n)
	for i := 0; i < n; i++ {
		out[i] = model.ColumnRegion{Page: region.Page, BandIndex: region.BandIndex, X0: boundaries[i], X1: boundaries[i+1]}
	}
	for _, t := range region.Tokens {
		cx := t.BBox.X + t.BBox.Width/2
		idx := n - 1
		for i := 0; i < n; i++ {
			if cx >= boundaries[i] && cx < boundaries[i+1] {
				idx = i
				break
			}
		}
		out[idx].Tokens = append(out[idx].Tokens, t)
	}
	return out
}

func spliceRegion(regions []model.ColumnRegion, target model.ColumnRegion, replacement []model.ColumnRegion) []model.ColumnRegion {
	var out []model.ColumnRegion
	nextIndex := 0
	for _, r := range regions {
		if r.ColumnIndex == target.ColumnIndex && r.BandIndex == target.BandIndex && r.X0 == target.X0 {
			for _, nr := range replacement {
				nr.ColumnIndex = nextIndex
				nextIndex++
				out = append(out, nr)
			}
			continue
		}
		r.ColumnIndex = nextIndex
		nextIndex++
		out = append(out, r)
	}
	return out
}
