package sections

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsawler/resumecore/model"
)

func bodyLine(text string, page int) model.Line {
	return model.Line{Page: page, Tokens: []model.Token{{Text: text}}}
}

func header(name model.CanonicalName, text string) model.SectionHeader {
	return model.SectionHeader{Canonical: name, RawText: text, MatchKind: model.MatchExact, Score: 1.0}
}

func TestAssemble_ContactBeforeFirstHeader(t *testing.T) {
	stream := []StreamItem{
		{Body: linePtr(bodyLine("John Doe", 0))},
		{Body: linePtr(bodyLine("john@x.com", 0))},
		{Header: headerPtr(header(model.SectionExperience, "EXPERIENCE"))},
		{Body: linePtr(bodyLine("Acme Corp 2020-2022", 0))},
		{Header: headerPtr(header(model.SectionEducation, "EDUCATION"))},
		{Body: linePtr(bodyLine("BS CS 2020", 0))},
	}

	out := Assemble(stream)
	names := canonicalNames(out)
	assert.Equal(t, []model.CanonicalName{model.SectionContact, model.SectionExperience, model.SectionEducation}, names)
	assert.Len(t, out[0].BodyLines, 2)
}

func TestAssemble_SummaryWhenNoContactTokens(t *testing.T) {
	stream := []StreamItem{
		{Body: linePtr(bodyLine("A brief summary paragraph", 0))},
		{Header: headerPtr(header(model.SectionExperience, "EXPERIENCE"))},
	}
	out := Assemble(stream)
	assert.Equal(t, model.SectionSummary, out[0].Canonical)
}

func TestAssemble_MergesDuplicateCanonicalNames(t *testing.T) {
	stream := []StreamItem{
		{Header: headerPtr(header(model.SectionExperience, "EXPERIENCE"))},
		{Body: linePtr(bodyLine("Job A", 0))},
		{Header: headerPtr(header(model.SectionEducation, "EDUCATION"))},
		{Body: linePtr(bodyLine("School A", 0))},
		{Header: headerPtr(header(model.SectionExperience, "EXPERIENCE"))},
		{Body: linePtr(bodyLine("Job B", 1))},
	}
	out := Assemble(stream)
	assert.Len(t, out, 2)
	assert.Equal(t, model.SectionExperience, out[0].Canonical)
	assert.Len(t, out[0].BodyLines, 2)
	assert.Equal(t, [2]int{0, 1}, out[0].PageSpan)
}

func TestTraversalOrder_Type2IsLeftThenRight(t *testing.T) {
	class := model.LayoutClass{Kind: model.LayoutType2, ColumnBounds: []model.ColumnBound{{X0: 0, X1: 300}, {X0: 300, X1: 600}}}
	refs := TraversalOrder(class)
	assert.Equal(t, []model.ColumnRegionRef{{ColumnIndex: 0}, {ColumnIndex: 1}}, refs)
}

func linePtr(l model.Line) *model.Line                { return &l }
func headerPtr(h model.SectionHeader) *model.SectionHeader { return &h }

func canonicalNames(sections []model.Section) []model.CanonicalName {
	out := make([]model.CanonicalName, len(sections))
	for i, s := range sections {
		out[i] = s.Canonical
	}
	return out
}
