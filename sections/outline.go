package sections

import (
	"fmt"
	"strings"

	"github.com/tsawler/resumecore/model"
)

// OutlineEntry is one line of a Markdown table-of-contents view over an
// assembled Section list.
type OutlineEntry struct {
	Canonical model.CanonicalName
	PageSpan  [2]int
	LineCount int
}

// Outline builds a diagnostic/debugging view over secs in assembly
// order: one entry per Section, independent of Section's own semantics.
func Outline(secs []model.Section) []OutlineEntry {
	out := make([]OutlineEntry, 0, len(secs))
	for _, s := range secs {
		out = append(out, OutlineEntry{Canonical: s.Canonical, PageSpan: s.PageSpan, LineCount: len(s.BodyLines)})
	}
	return out
}

// MarkdownTOC renders Outline as a Markdown bullet list, one line per
// Section: "- Experience (p.0-2, 14 lines)".
func MarkdownTOC(secs []model.Section) string {
	var b strings.Builder
	for _, e := range Outline(secs) {
		fmt.Fprintf(&b, "- %s (p.%d-%d, %d lines)\n", e.Canonical, e.PageSpan[0], e.PageSpan[1], e.LineCount)
	}
	return b.String()
}
