// Package errs defines the error taxonomy shared by word acquisition,
// layout analysis, section matching, and the orchestrator. Each kind is
// a sentinel so call sites can test with errors.Is; stage-level errors
// should wrap one of these with fmt.Errorf("%s: %w", stage, err).
package errs

import "errors"

var (
	// InvalidInput: file missing/unreadable/unsupported. Escapes to the caller.
	InvalidInput = errors.New("invalid input")

	// NoExtractableText: text layer empty on a page; triggers OCR fallback.
	NoExtractableText = errors.New("no extractable text")

	// OCRUnavailable: OCR provider not installed or not loadable.
	OCRUnavailable = errors.New("ocr unavailable")

	// LayoutAmbiguous: C2 produced contradictory peaks.
	LayoutAmbiguous = errors.New("layout ambiguous")

	// NoSections: C7 produced zero sections.
	NoSections = errors.New("no sections")

	// DatabaseWriteFailed: learner commit failed.
	DatabaseWriteFailed = errors.New("section database write failed")

	// StageTimeout: a per-stage timeout elapsed.
	StageTimeout = errors.New("stage timeout")

	// Cancelled: the parse was cancelled; no partial result is returned.
	Cancelled = errors.New("parse cancelled")

	// ParseFailed: all strategies exhausted with quality < 0.4 and zero sections.
	ParseFailed = errors.New("parse failed")
)
