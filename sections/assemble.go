package sections

import (
	"regexp"

	"github.com/tsawler/resumecore/model"
)

var contactTokenPattern = regexp.MustCompile(`(?i)[\w.+-]+@[\w-]+\.[\w.-]+|https?://|www\.|\+?\d[\d\s().-]{7,}\d`)

// StreamItem is one entry in the reading-order stream C3/C4/C5 hand to
// the assembler: either a recognized header or a body line, tagged
// with the column it came from for the Partition testable property.
type StreamItem struct {
	Header *model.SectionHeader
	Body   *model.Line
	Ref    model.ColumnRegionRef
}

// Diagnostics carries C7's output alongside the Section list (§4.7).
type Diagnostics struct {
	LayoutPerPage  map[int]model.LayoutClass
	HeaderScores   []HeaderScoreRecord
	UnknownHeaders []UnknownHeader
	LearnedVariants []string
}

// HeaderScoreRecord records one scored candidate line for diagnostics,
// whether or not it cleared θ.
type HeaderScoreRecord struct {
	Page  int
	Text  string
	Score float64
}

// UnknownHeader is a header-scored line that the matcher could not
// resolve to a canonical name.
type UnknownHeader struct {
	Raw         string
	Page        int
	Score       float64
	Suggestions []Suggestion
}

// Suggestion is a candidate canonical name offered for an unknown header.
type Suggestion struct {
	Name  model.CanonicalName
	Score float64
}

// Assemble walks a reading-order stream and cuts it into Sections per
// §4.7: each header opens a new Section, intervening body lines attach
// to the current Section, and lines before any header attach to a
// synthetic Contact or Summary. Sections sharing a canonical name are
// merged, first-occurrence position wins.
func Assemble(stream []StreamItem) []model.Section {
	var order []model.CanonicalName
	byName := map[model.CanonicalName]*model.Section{}

	var current model.CanonicalName
	haveCurrent := false

	type preambleLine struct {
		line model.Line
		ref  model.ColumnRegionRef
	}
	var preamble []preambleLine

	ensure := func(name model.CanonicalName) *model.Section {
		if s, ok := byName[name]; ok {
			return s
		}
		s := &model.Section{Canonical: name, PageSpan: [2]int{-1, -1}}
		byName[name] = s
		order = append(order, name)
		return s
	}

	attachLine := func(name model.CanonicalName, line model.Line, ref model.ColumnRegionRef) {
		s := ensure(name)
		s.BodyLines = append(s.BodyLines, line)
		s.SourceCols = appendRefIfNew(s.SourceCols, ref)
		if s.PageSpan[0] == -1 || line.Page < s.PageSpan[0] {
			s.PageSpan[0] = line.Page
		}
		if line.Page > s.PageSpan[1] {
			s.PageSpan[1] = line.Page
		}
	}

	flushPreamble := func() {
		if len(preamble) == 0 {
			return
		}
		name := model.SectionSummary
		for _, p := range preamble {
			if contactTokenPattern.MatchString(p.line.Text()) {
				name = model.SectionContact
				break
			}
		}
		for _, p := range preamble {
			attachLine(name, p.line, p.ref)
		}
		preamble = nil
	}

	for _, item := range stream {
		if item.Header != nil {
			flushPreamble()
			current = item.Header.Canonical
			haveCurrent = true
			ensure(current)
			continue
		}
		if item.Body == nil {
			continue
		}
		if !haveCurrent {
			preamble = append(preamble, preambleLine{line: *item.Body, ref: item.Ref})
			continue
		}
		attachLine(current, *item.Body, item.Ref)
	}
	flushPreamble()

	out := make([]model.Section, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out
}

func appendRefIfNew(refs []model.ColumnRegionRef, ref model.ColumnRegionRef) []model.ColumnRegionRef {
	for _, r := range refs {
		if r == ref {
			return refs
		}
	}
	return append(refs, ref)
}

// TraversalOrder returns the per-page, per-band, per-column visiting
// order C7 concatenates lines along, per §4.7: Type1 → [full]; Type2 →
// [left, right]; Type3 → bands top-to-bottom, each band's columns
// left-to-right.
func TraversalOrder(class model.LayoutClass) []model.ColumnRegionRef {
	switch class.Kind {
	case model.LayoutType1:
		return []model.ColumnRegionRef{{ColumnIndex: 0}}
	case model.LayoutType2:
		refs := make([]model.ColumnRegionRef, len(class.ColumnBounds))
		for i := range class.ColumnBounds {
			refs[i] = model.ColumnRegionRef{ColumnIndex: i}
		}
		return refs
	case model.LayoutType3:
		var refs []model.ColumnRegionRef
		for bandIdx, band := range class.Bands {
			if band.FullWidth {
				refs = append(refs, model.ColumnRegionRef{ColumnIndex: 0, BandIndex: bandIdx})
				continue
			}
			for colIdx := range band.ColumnBounds {
				refs = append(refs, model.ColumnRegionRef{ColumnIndex: colIdx, BandIndex: bandIdx})
			}
		}
		return refs
	default:
		return []model.ColumnRegionRef{{ColumnIndex: 0}}
	}
}
