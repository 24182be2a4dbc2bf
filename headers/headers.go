// Package headers scores grouped lines for "is this a section header"
// using the multi-signal weighting in §4.5, then resolves the
// surviving candidates to canonical section names.
package headers

import (
	"math"
	"strings"
	"unicode"

	"github.com/tsawler/resumecore/lines"
	"github.com/tsawler/resumecore/model"
	"github.com/tsawler/resumecore/sections"
)

// Config tunes the adaptive threshold and an optional override.
type Config struct {
	// ThresholdOverride, if non-zero, disables adaptive θ and is used
	// directly (HEADER_SCORE_THRESHOLD_OVERRIDE).
	ThresholdOverride float64
}

// Candidate is one scored line, whether or not it cleared θ. Match is
// the matcher's resolution of the line's text, computed once here so
// callers building a header never re-invoke the matcher (which would
// double-count learning) just to get the canonical name.
type Candidate struct {
	Line        model.Line
	Score       float64
	IsHeader    bool
	Threshold   float64
	MultiHeader *MultiHeaderRecord
	Match       model.SectionHeader
}

// MultiHeaderRecord flags a line whose tokens resolve to two or more
// distinct canonical names at distinct x-positions (§4.5).
type MultiHeaderRecord struct {
	Anchors []Anchor
}

// Anchor is one detected header surface form and its x-center within
// a multi-header line.
type Anchor struct {
	Canonical model.CanonicalName
	XCenter   float64
	Text      string
}

// Score scores a single column's lines in reading order, computing the
// column median font size and line gap needed by several signals and
// the adaptive threshold, per §4.5.
func Score(columnLines []model.Line, matcher *sections.Matcher, cfg Config) []Candidate {
	if len(columnLines) == 0 {
		return nil
	}

	medianFont := medianFontSize(columnLines)
	medianGap := medianLineGap(columnLines)
	theta := adaptiveTheta(columnLines, cfg)

	out := make([]Candidate, len(columnLines))
	prevScored := false
	for i, line := range columnLines {
		if lines.IsBulletListItem(line) {
			out[i] = Candidate{Line: line, Score: 0, Threshold: theta}
			prevScored = false
			continue
		}

		score, multi, match := scoreLine(line, matcher, medianFont, medianGap)

		isHeader := score >= theta
		if isHeader && prevScored && line.SpaceAbove < 2*medianGap {
			isHeader = false
		}

		// Only a confirmed header may run the learning pipeline — an
		// ordinary bullet that merely brushed a pattern rule's substring
		// ("Senior Software Engineer") must never teach the database a
		// new Experience variant.
		if isHeader {
			match = matcher.Match(line.Text())
			match.Line = line
		}

		out[i] = Candidate{Line: line, Score: score, IsHeader: isHeader, Threshold: theta, MultiHeader: multi, Match: match}
		prevScored = isHeader
	}
	return out
}

func scoreLine(line model.Line, matcher *sections.Matcher, medianFont, medianGap float64) (float64, *MultiHeaderRecord, model.SectionHeader) {
	text := line.Text()
	var score float64

	// Signal #1 (§4.5): exact/normalized variant match only. Pattern
	// and embedding recall, and any learning, are deferred until the
	// line has actually cleared the header threshold.
	match := matcher.ExactOnly(text)
	if match.MatchKind == model.MatchExact || match.MatchKind == model.MatchNormalized {
		score += 0.40
	}

	if len(line.Tokens) <= 8 && len(text) <= 60 {
		score += 0.10
	}

	if isAllCapsOrTitleCase(text) {
		score += 0.15
	}

	if line.BoldRatio() >= 0.60 {
		score += 0.10
	}

	if medianFont > 0 && line.MaxFontSize() > 1.15*medianFont {
		score += 0.10
	}

	if medianGap > 0 && line.SpaceAbove >= 1.5*medianGap {
		score += 0.10
	}

	trimmed := strings.TrimSpace(text)
	if strings.HasSuffix(trimmed, ":") {
		score += 0.05
	}

	if score > 1.0 {
		score = 1.0
	}

	var multi *MultiHeaderRecord
	if score >= 0.25 {
		if anchors := detectMultiHeader(line, matcher); len(anchors) >= 2 {
			multi = &MultiHeaderRecord{Anchors: anchors}
		}
	}

	match.Line = line
	return score, multi, match
}

// adaptiveTheta implements §4.5's σ/μ breakpoints, or returns the
// configured override when set.
func adaptiveTheta(columnLines []model.Line, cfg Config) float64 {
	if cfg.ThresholdOverride > 0 {
		return cfg.ThresholdOverride
	}
	mu, sigma := fontMeanStdDev(columnLines)
	if mu == 0 {
		return 0.30
	}
	ratio := sigma / mu
	switch {
	case ratio > 0.5:
		return 0.25
	case ratio < 0.3:
		return 0.35
	default:
		return 0.30
	}
}

func fontMeanStdDev(columnLines []model.Line) (float64, float64) {
	var sizes []float64
	for _, l := range columnLines {
		for _, t := range l.Tokens {
			sizes = append(sizes, t.FontSize)
		}
	}
	if len(sizes) == 0 {
		return 0, 0
	}
	var sum float64
	for _, s := range sizes {
		sum += s
	}
	mu := sum / float64(len(sizes))

	var variance float64
	for _, s := range sizes {
		variance += (s - mu) * (s - mu)
	}
	variance /= float64(len(sizes))
	return mu, math.Sqrt(variance)
}

func medianFontSize(columnLines []model.Line) float64 {
	var sizes []float64
	for _, l := range columnLines {
		sizes = append(sizes, l.MaxFontSize())
	}
	return median(sizes)
}

func medianLineGap(columnLines []model.Line) float64 {
	var gaps []float64
	for _, l := range columnLines {
		if l.SpaceAbove > 0 {
			gaps = append(gaps, l.SpaceAbove)
		}
	}
	return median(gaps)
}

func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vals...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1] > sorted[j]; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// isAllCapsOrTitleCase implements the case-pattern signal: ALL CAPS or
// Title Case with ≥80% alphabetic characters.
func isAllCapsOrTitleCase(text string) bool {
	letters := 0
	total := 0
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if total == 0 || float64(letters)/float64(total) < 0.8 {
		return false
	}
	if strings.ToUpper(text) == text {
		return true
	}
	return isTitleCase(text)
}

func isTitleCase(text string) bool {
	for _, word := range strings.Fields(text) {
		runes := []rune(word)
		if len(runes) == 0 {
			continue
		}
		if !unicode.IsUpper(runes[0]) && unicode.IsLetter(runes[0]) {
			return false
		}
	}
	return true
}

// detectMultiHeader looks for two or more non-overlapping token spans
// within a line that each normalize to a distinct known canonical name
// (§4.3, §4.5).
func detectMultiHeader(line model.Line, matcher *sections.Matcher) []Anchor {
	if len(line.Tokens) < 2 {
		return nil
	}

	var anchors []Anchor
	seen := map[model.CanonicalName]bool{}

	// Try every contiguous token run as a candidate span; small lines
	// make this cheap, and header lines are short by construction.
	for i := 0; i < len(line.Tokens); i++ {
		for j := i; j < len(line.Tokens); j++ {
			span := line.Tokens[i : j+1]
			text := joinTokenTexts(span)
			result := matcher.MatchNoLearn(text)
			if result.Canonical == model.SectionUnknown || result.MatchKind == model.MatchUnknown {
				continue
			}
			if result.Score < 0.7 {
				continue
			}
			if seen[result.Canonical] {
				continue
			}
			seen[result.Canonical] = true
			anchors = append(anchors, Anchor{
				Canonical: result.Canonical,
				XCenter:   spanXCenter(span),
				Text:      text,
			})
		}
	}
	return anchors
}

func joinTokenTexts(tokens []model.Token) string {
	if len(tokens) == 0 {
		return ""
	}
	out := tokens[0].Text
	for _, t := range tokens[1:] {
		out += " " + t.Text
	}
	return out
}

func spanXCenter(tokens []model.Token) float64 {
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
