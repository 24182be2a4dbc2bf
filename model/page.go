package model

import "sort"

// Page is one page of a document: dimensions plus the tokens acquired
// from it. Width and height are in points (PDF coordinate convention,
// origin top-left for the purposes of this module).
type Page struct {
	Index  int // 0-based
	Width  float64
	Height float64
	Tokens []Token
}

// NewPage creates a page with the given dimensions and no tokens.
func NewPage(index int, width, height float64) *Page {
	return &Page{Index: index, Width: width, Height: height}
}

// SortTokens orders the page's tokens by (y0, x0), the canonical order
// downstream consumers expect prior to column/line segmentation.
func (p *Page) SortTokens() {
	sort.SliceStable(p.Tokens, func(i, j int) bool {
		a, b := p.Tokens[i].BBox, p.Tokens[j].BBox
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
}

// BodyTokens returns tokens whose y-center falls inside the body area,
// excluding the top/bottom margin fractions (y grows downward from the
// page's top-left origin, so a token near y=0 is in the top margin).
// Used to restrict histogram classification to the page body while
// still retaining the full set for header/footer band detection.
func (p *Page) BodyTokens(topMargin, bottomMargin float64) []Token {
	topEdge := p.Height * topMargin
	bottomEdge := p.Height * (1 - bottomMargin)
	out := make([]Token, 0, len(p.Tokens))
	for _, t := range p.Tokens {
		cy := t.BBox.Center().Y
		if cy >= topEdge && cy <= bottomEdge {
			out = append(out, t)
		}
	}
	return out
}
