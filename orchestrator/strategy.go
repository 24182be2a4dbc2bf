package orchestrator

import (
	"strings"

	"github.com/tsawler/resumecore/format"
	"github.com/tsawler/resumecore/wordsource"
)

// docKind is the §4.8 Detect state's classification of the input file.
type docKind int

const (
	kindPDFText docKind = iota
	kindPDFScanned
	kindDocx
	kindImage
	kindUnsupported
)

// detect classifies path by extension, per §4.8's Detect state.
// Text-vs-scanned PDF is not distinguishable before extraction, so a
// PDF is provisionally kindPDFText; the Extract stage's own
// NoExtractableText diagnostics drive the fallback to OCR exactly as a
// true kindPDFScanned classification would.
func detect(path string) docKind {
	switch format.Detect(path) {
	case format.PDF:
		return kindPDFText
	case format.DOCX:
		return kindDocx
	default:
		ext := strings.ToLower(path)
		if strings.HasSuffix(ext, ".png") || strings.HasSuffix(ext, ".jpg") || strings.HasSuffix(ext, ".jpeg") || strings.HasSuffix(ext, ".tif") || strings.HasSuffix(ext, ".tiff") {
			return kindImage
		}
		return kindUnsupported
	}
}

// strategiesFor returns the ordered list of wordsource.Source values
// §4.8 prescribes for kind, capped at K=3 by the caller's fallback
// loop. A nil entry means "no strategy available" (e.g. DOCX's
// render+OCR fallback, which this module has no DOCX rasterizer for)
// and is skipped by the caller, which logs a warning and records it as
// tried.
func (o *Orchestrator) strategiesFor(kind docKind) []wordsource.Source {
	switch kind {
	case kindPDFText:
		return []wordsource.Source{wordsource.NewTextLayerSource(), o.ocrSource()}
	case kindPDFScanned, kindImage:
		return []wordsource.Source{o.ocrSource()}
	case kindDocx:
		return []wordsource.Source{wordsource.NewDocxSource(), nil}
	default:
		return nil
	}
}

func (o *Orchestrator) ocrSource() wordsource.Source {
	return wordsource.NewOCRSource(o.ocrProvider, o.cfg.OCRLanguages, o.cfg.OCRDPI)
}
