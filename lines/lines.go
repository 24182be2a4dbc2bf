// Package lines groups a column region's tokens into text lines by
// vertical overlap and computes the derived typographic fields later
// stages key their scoring on.
package lines

import (
	"sort"
	"strings"

	"github.com/tsawler/resumecore/model"
)

// Config tunes the line-grouping sweep.
type Config struct {
	// YOverlapTolerance is τ in "open a new line when a token's y0
	// exceeds the current line's y_bot minus τ·current_line_height".
	YOverlapTolerance float64
	// ContinuationGapFraction is the fraction of min_line_height below
	// which two adjacent, non-x-overlapping lines merge as a
	// continuation fragment (superscripts/descenders split across
	// sweep boundaries).
	ContinuationGapFraction float64
}

// DefaultConfig returns the τ=0.5 sweep from §4.4.
func DefaultConfig() Config {
	return Config{YOverlapTolerance: 0.5, ContinuationGapFraction: 0.15}
}

// Group clusters a column region's tokens into ordered lines, per the
// sweep in §4.4. The returned lines carry Page/ColumnIndex/BandIndex
// copied from the region.
func Group(region model.ColumnRegion, cfg Config) []model.Line {
	tokens := make([]model.Token, len(region.Tokens))
	copy(tokens, region.Tokens)
	sort.SliceStable(tokens, func(i, j int) bool {
		if tokens[i].BBox.Y != tokens[j].BBox.Y {
			return tokens[i].BBox.Y < tokens[j].BBox.Y
		}
		return tokens[i].BBox.X < tokens[j].BBox.X
	})

	var rawLines []model.Line
	for _, tok := range tokens {
		if len(rawLines) == 0 {
			rawLines = append(rawLines, newLine(region, tok))
			continue
		}
		cur := &rawLines[len(rawLines)-1]
		lineHeight := cur.YBot - cur.YTop
		if lineHeight <= 0 {
			lineHeight = tok.BBox.Height
		}
		if tok.BBox.Y > cur.YBot-cfg.YOverlapTolerance*lineHeight {
			rawLines = append(rawLines, newLine(region, tok))
			continue
		}
		appendToken(cur, tok)
	}

	rawLines = mergeContinuations(rawLines, cfg.ContinuationGapFraction)

	for i := range rawLines {
		finalizeLine(&rawLines[i])
	}
	return rawLines
}

func newLine(region model.ColumnRegion, tok model.Token) model.Line {
	return model.Line{
		Page:        region.Page,
		ColumnIndex: region.ColumnIndex,
		BandIndex:   region.BandIndex,
		YTop:        tok.BBox.Y,
		YBot:        tok.BBox.Y + tok.BBox.Height,
		Tokens:      []model.Token{tok},
	}
}

func appendToken(line *model.Line, tok model.Token) {
	line.Tokens = append(line.Tokens, tok)
	if tok.BBox.Y < line.YTop {
		line.YTop = tok.BBox.Y
	}
	if tok.BBox.Y+tok.BBox.Height > line.YBot {
		line.YBot = tok.BBox.Y + tok.BBox.Height
	}
}

// mergeContinuations implements §4.4 step 4: merge two adjacent lines
// if the gap between them is small relative to the shorter line's
// height and their x-ranges do not overlap.
func mergeContinuations(in []model.Line, gapFraction float64) []model.Line {
	if len(in) < 2 {
		return in
	}
	out := []model.Line{in[0]}
	for _, next := range in[1:] {
		prev := &out[len(out)-1]
		prevHeight := prev.YBot - prev.YTop
		nextHeight := next.YBot - next.YTop
		minHeight := prevHeight
		if nextHeight < minHeight {
			minHeight = nextHeight
		}
		gap := next.YTop - prev.YBot
		if minHeight > 0 && gap < gapFraction*minHeight && !xRangesOverlap(*prev, next) {
			for _, t := range next.Tokens {
				appendToken(prev, t)
			}
			continue
		}
		out = append(out, next)
	}
	return out
}

func xRangesOverlap(a, b model.Line) bool {
	aMin, aMax := lineXRange(a)
	bMin, bMax := lineXRange(b)
	return aMin < bMax && bMin < aMax
}

func lineXRange(l model.Line) (float64, float64) {
	min, max := l.Tokens[0].BBox.X, l.Tokens[0].BBox.X+l.Tokens[0].BBox.Width
	for _, t := range l.Tokens[1:] {
		if t.BBox.X < min {
			min = t.BBox.X
		}
		if t.BBox.X+t.BBox.Width > max {
			max = t.BBox.X + t.BBox.Width
		}
	}
	return min, max
}

func finalizeLine(line *model.Line) {
	sort.SliceStable(line.Tokens, func(i, j int) bool {
		return line.Tokens[i].BBox.X < line.Tokens[j].BBox.X
	})
}

// AssignDerivedFields fills SpaceAbove/SpaceBelow/IndentRatio across an
// already-ordered slice of lines belonging to one column, per §4.4.
func AssignDerivedFields(ls []model.Line, columnX0, columnWidth, pageTop, pageBottom float64) {
	for i := range ls {
		if i == 0 {
			ls[i].SpaceAbove = ls[i].YTop - pageTop
		} else {
			ls[i].SpaceAbove = ls[i].YTop - ls[i-1].YBot
		}
		if i == len(ls)-1 {
			ls[i].SpaceBelow = pageBottom - ls[i].YBot
		} else {
			ls[i].SpaceBelow = ls[i+1].YTop - ls[i].YBot
		}
		if columnWidth > 0 {
			ls[i].IndentRatio = (lineX0(ls[i]) - columnX0) / columnWidth
		}
	}
}

func lineX0(l model.Line) float64 {
	if len(l.Tokens) == 0 {
		return 0
	}
	min := l.Tokens[0].BBox.X
	for _, t := range l.Tokens[1:] {
		if t.BBox.X < min {
			min = t.BBox.X
		}
	}
	return min
}

// IsBulletListItem reports whether a line opens with a bullet or
// ordered-list marker (§4.5 edge case: such lines are never headers).
func IsBulletListItem(line model.Line) bool {
	text := strings.TrimSpace(line.Text())
	if text == "" {
		return false
	}
	for _, marker := range []string{"•", "-", "*", "◦", "▪"} {
		if strings.HasPrefix(text, marker) {
			return true
		}
	}
	// digits + '.' e.g. "1." "12)"
	i := 0
	for i < len(text) && text[i] >= '0' && text[i] <= '9' {
		i++
	}
	if i > 0 && i < len(text) && (text[i] == '.' || text[i] == ')') {
		return true
	}
	return false
}
