// Package wordsource implements word acquisition (C1): turning an
// input document into a sequence of model.Page values populated with
// model.Token, via either a PDF text-layer reader, an OCR path over
// embedded page images, or a DOCX paragraph walker.
//
// All three implementations satisfy the same Source interface so the
// orchestrator can select and fall back between them without runtime
// type switches.
package wordsource
