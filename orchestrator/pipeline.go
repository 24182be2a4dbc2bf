package orchestrator

import (
	"strings"

	"github.com/tsawler/resumecore/columns"
	"github.com/tsawler/resumecore/diag"
	"github.com/tsawler/resumecore/headers"
	"github.com/tsawler/resumecore/histogram"
	"github.com/tsawler/resumecore/lines"
	"github.com/tsawler/resumecore/model"
	"github.com/tsawler/resumecore/sections"
)

// analyze runs C2 through C7 over an acquired document: per-page
// layout classification and column segmentation, line grouping, header
// scoring and matching, and final section assembly over the whole
// document's reading-order stream (§4.2–§4.7).
func analyze(doc *model.Document, matcher *sections.Matcher, hcfg headers.Config) (layouts []LayoutInfo, secs []model.Section, unknown []UnknownHeader, diags diag.List) {
	var stream []sections.StreamItem

	for _, page := range doc.Pages {
		class := histogram.Classify(page, histogram.DefaultConfig())
		layouts = append(layouts, LayoutInfo{
			Page:       page.Index,
			Type:       class.Kind.String(),
			Columns:    columnCount(class),
			Confidence: class.Confidence,
		})

		regions := columns.Segment(page, class, matcher)
		regionByRef := make(map[model.ColumnRegionRef]model.ColumnRegion, len(regions))
		for _, r := range regions {
			regionByRef[model.ColumnRegionRef{Page: page.Index, ColumnIndex: r.ColumnIndex, BandIndex: r.BandIndex}] = r
		}

		for _, ref := range sections.TraversalOrder(class) {
			ref.Page = page.Index
			region, ok := regionByRef[ref]
			if !ok {
				continue
			}

			grouped := lines.Group(region, lines.DefaultConfig())
			lines.AssignDerivedFields(grouped, region.X0, region.X1-region.X0, 0, page.Height)

			candidates := headers.Score(grouped, matcher, hcfg)

			if subRegions, ok := resplitOnMultiHeader(candidates, region); ok {
				for subIdx, sub := range subRegions {
					subGrouped := lines.Group(sub, lines.DefaultConfig())
					lines.AssignDerivedFields(subGrouped, sub.X0, sub.X1-sub.X0, 0, page.Height)
					subRef := ref
					subRef.ColumnIndex = ref.ColumnIndex*len(subRegions) + subIdx
					appendCandidates(headers.Score(subGrouped, matcher, hcfg), subRef, page.Index, &stream, &unknown)
				}
				continue
			}

			appendCandidates(candidates, ref, page.Index, &stream, &unknown)
		}
	}

	secs = sections.Assemble(stream)
	return layouts, secs, unknown, diags
}

// resplitOnMultiHeader looks for the first confirmed header candidate
// carrying a multi-header record (§4.5: two or more distinct canonical
// names at distinct x-positions, found anywhere in the region, not
// just its topmost line) and, if found, re-segments region at the
// anchors' midpoints (§4.3).
func resplitOnMultiHeader(candidates []headers.Candidate, region model.ColumnRegion) ([]model.ColumnRegion, bool) {
	for _, c := range candidates {
		if !c.IsHeader || c.MultiHeader == nil || len(c.MultiHeader.Anchors) < 2 {
			continue
		}
		anchors := make([]columns.HeaderAnchor, len(c.MultiHeader.Anchors))
		for i, a := range c.MultiHeader.Anchors {
			anchors[i] = columns.HeaderAnchor{Canonical: a.Canonical, XCenter: a.XCenter, Text: a.Text}
		}
		return columns.ResplitRegion(region, anchors)
	}
	return nil, false
}

func appendCandidates(candidates []headers.Candidate, ref model.ColumnRegionRef, pageIndex int, stream *[]sections.StreamItem, unknown *[]UnknownHeader) {
	for _, c := range candidates {
		if c.IsHeader {
			h := c.Match
			h.Line = c.Line
			*stream = append(*stream, sections.StreamItem{Header: &h, Ref: ref})
			if h.Canonical == model.SectionUnknown {
				*unknown = append(*unknown, UnknownHeader{
					Raw:   h.RawText,
					Page:  pageIndex,
					Score: c.Score,
				})
			}
			continue
		}
		line := c.Line
		*stream = append(*stream, sections.StreamItem{Body: &line, Ref: ref})
	}
}

func columnCount(class model.LayoutClass) int {
	switch class.Kind {
	case model.LayoutType1:
		return 1
	case model.LayoutType2:
		return len(class.ColumnBounds)
	case model.LayoutType3:
		max := 0
		for _, b := range class.Bands {
			if b.FullWidth {
				continue
			}
			if len(b.ColumnBounds) > max {
				max = len(b.ColumnBounds)
			}
		}
		if max == 0 {
			return 1
		}
		return max
	default:
		return 1
	}
}

// quality computes the §4.8 Validate state's weighted score. Each of
// the five signals contributes an equal 0.2 share.
func quality(secs []model.Section, unknown []UnknownHeader, pageCount int) Quality {
	var score float64

	byName := map[model.CanonicalName]model.Section{}
	for _, s := range secs {
		byName[s.Canonical] = s
	}

	if len(secs) >= 3 {
		score += 0.2
	}
	if _, ok := byName[model.SectionExperience]; ok {
		score += 0.2
	}

	noThinLate := true
	for _, s := range secs {
		if s.PageSpan[0] > 0 && len(s.BodyLines) < 3 {
			noThinLate = false
			break
		}
	}
	if noThinLate {
		score += 0.2
	}

	totalHeaders := len(unknown)
	for _, s := range secs {
		totalHeaders++
	}
	unknownRatio := 0.0
	if totalHeaders > 0 {
		unknownRatio = float64(len(unknown)) / float64(totalHeaders)
	}
	if unknownRatio < 0.2 {
		score += 0.2
	}

	if avgLineCharCount(secs) > 20 {
		score += 0.2
	}

	return Quality{Score: score, Rung: rungFor(score)}
}

func avgLineCharCount(secs []model.Section) float64 {
	var total, count int
	for _, s := range secs {
		for _, l := range s.BodyLines {
			total += len(strings.TrimSpace(l.Text()))
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return float64(total) / float64(count)
}

func toSectionOutputs(secs []model.Section) []SectionOutput {
	out := make([]SectionOutput, 0, len(secs))
	for _, s := range secs {
		lineTexts := make([]string, 0, len(s.BodyLines))
		for _, l := range s.BodyLines {
			lineTexts = append(lineTexts, l.Text())
		}
		out = append(out, SectionOutput{Name: s.Canonical, PageSpan: s.PageSpan, Lines: lineTexts})
	}
	return out
}
