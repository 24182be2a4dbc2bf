package orchestrator

import "github.com/tsawler/resumecore/model"

// Result is the stable JSON-shaped output record described in §6.
type Result struct {
	File           FileInfo         `json:"file"`
	Layouts        []LayoutInfo     `json:"layouts"`
	Sections       []SectionOutput  `json:"sections"`
	UnknownHeaders []UnknownHeader  `json:"unknown_headers"`
	Quality        Quality          `json:"quality"`
	Metadata       ResultMetadata   `json:"metadata"`
}

// FileInfo describes the parsed input file.
type FileInfo struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Pages   int    `json:"pages"`
	Scanned bool   `json:"scanned"`
}

// LayoutInfo reports one page's classified layout.
type LayoutInfo struct {
	Page       int     `json:"page"`
	Type       string  `json:"type"`
	Columns    int     `json:"columns"`
	Confidence float64 `json:"confidence"`
}

// SectionOutput is one assembled Section, flattened to plain strings.
type SectionOutput struct {
	Name     model.CanonicalName `json:"name"`
	PageSpan [2]int              `json:"page_span"`
	Lines    []string            `json:"lines"`
}

// UnknownHeader is a header-scored line the matcher could not resolve.
type UnknownHeader struct {
	Raw         string       `json:"raw"`
	Page        int          `json:"page"`
	Score       float64      `json:"score"`
	Suggestions []Suggestion `json:"suggestions"`
}

// Suggestion is a candidate canonical name offered for an unknown header.
type Suggestion struct {
	Name  model.CanonicalName `json:"name"`
	Score float64             `json:"score"`
}

// QualityRung is the discretized quality bucket a score falls into.
type QualityRung string

const (
	RungExcellent QualityRung = "excellent"
	RungAcceptable QualityRung = "acceptable"
	RungPoor       QualityRung = "poor"
	RungFailed     QualityRung = "failed"
)

// Quality is the §4.8 Validate state's outcome.
type Quality struct {
	Score float64     `json:"score"`
	Rung  QualityRung `json:"rung"`
}

// ResultMetadata records which strategy produced the result and what
// else was tried.
type ResultMetadata struct {
	StrategyUsed    string   `json:"strategy_used"`
	FallbacksTried  []string `json:"fallbacks_tried"`
	ElapsedMs       int64    `json:"elapsed_ms"`
	RunID           string   `json:"run_id"`
	LearnedVariants int      `json:"learned_variants,omitempty"`
}

func rungFor(score float64) QualityRung {
	switch {
	case score >= 0.8:
		return RungExcellent
	case score >= 0.6:
		return RungAcceptable
	case score >= 0.4:
		return RungPoor
	default:
		return RungFailed
	}
}
