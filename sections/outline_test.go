package sections

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsawler/resumecore/model"
)

func TestOutline_OneEntryPerSection(t *testing.T) {
	secs := []model.Section{
		{Canonical: model.SectionExperience, PageSpan: [2]int{0, 1}, BodyLines: make([]model.Line, 3)},
		{Canonical: model.SectionEducation, PageSpan: [2]int{1, 1}, BodyLines: make([]model.Line, 2)},
	}
	entries := Outline(secs)
	assert.Len(t, entries, 2)
	assert.Equal(t, 3, entries[0].LineCount)
}

func TestMarkdownTOC_RendersOneLinePerSection(t *testing.T) {
	secs := []model.Section{
		{Canonical: model.SectionExperience, PageSpan: [2]int{0, 2}, BodyLines: make([]model.Line, 14)},
	}
	toc := MarkdownTOC(secs)
	assert.Contains(t, toc, "Experience (p.0-2, 14 lines)")
}
