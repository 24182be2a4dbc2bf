package wordsource

import (
	"context"

	"github.com/tsawler/resumecore/diag"
	"github.com/tsawler/resumecore/model"
)

// MinAlphaCharsPerPage is the minimum count of alphabetic characters a
// page's text layer must yield over its body area before the page is
// considered to have extractable text (§4.1).
const MinAlphaCharsPerPage = 20

// Source is the capability every word-acquisition strategy implements.
// The orchestrator selects and falls back between Source values; no
// Source inspects or depends on another.
type Source interface {
	// Name identifies the strategy for metadata.strategy_used/fallbacks_tried.
	Name() string
	// Acquire reads path and returns a populated Document plus any
	// non-fatal diagnostics. It returns an error only for conditions
	// that should abort this strategy outright (errs.InvalidInput,
	// errs.NoExtractableText, errs.OCRUnavailable, errs.Cancelled).
	Acquire(ctx context.Context, path string) (*model.Document, diag.List, error)
}

// normalizeWhitespace collapses internal whitespace runs inside a raw
// word into single spaces (tokens themselves must contain none) and
// drops leading/trailing whitespace. Punctuation is left alone;
// trimStandaloneLeadingTrailingPunct handles it. Token boundaries are
// decided by the caller (glyph run / OCR word box); this only cleans
// the text.
func normalizeWhitespace(s string) string {
	var b []byte
	lastSpace := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			if !lastSpace && len(b) > 0 {
				b = append(b, ' ')
			}
			lastSpace = true
			continue
		}
		b = append(b, c)
		lastSpace = false
	}
	for len(b) > 0 && b[len(b)-1] == ' ' {
		b = b[:len(b)-1]
	}
	return string(b)
}
