package wordsource

import (
	"context"
	"fmt"
	"strings"

	"github.com/tsawler/resumecore/diag"
	"github.com/tsawler/resumecore/errs"
	"github.com/tsawler/resumecore/model"
	"github.com/tsawler/resumecore/reader"
)

// RecognizedWord is the uniform shape an OCRProvider yields for one
// recognized word: pixel-space box plus confidence on a 0-100 scale.
type RecognizedWord struct {
	Text       string
	X0, Y0     int
	X1, Y1     int
	Confidence float64
}

// OCRProvider is the capability §9 calls for in place of dynamic
// dispatch across OCR engines: a single recognize-image operation. The
// orchestrator receives one instance at construction and reuses it
// across documents and pages.
type OCRProvider interface {
	Name() string
	Recognize(image []byte, languages string) ([]RecognizedWord, error)
}

// DefaultDPI and the accepted range, per §4.1/§6 (OCR_DPI).
const (
	DefaultDPI = 300
	MinDPI     = 150
	MaxDPI     = 400
)

// OCRSource acquires tokens by running an OCRProvider over each page's
// embedded raster image. Resume PDFs that lack a text layer are, in
// practice, a single full-page scanned image per page rather than
// vector content; OCRSource works from that embedded image directly
// instead of rendering the content stream, mapping recognized pixel
// boxes back into page-point coordinates via the image's pixel-to-point
// scale (approximating the configured DPI rather than re-rendering at
// an arbitrary target DPI).
type OCRSource struct {
	Provider  OCRProvider
	Languages string
	DPI       int
}

// NewOCRSource builds an OCRSource. dpi is clamped to [MinDPI,MaxDPI];
// zero selects DefaultDPI.
func NewOCRSource(provider OCRProvider, languages string, dpi int) *OCRSource {
	if dpi == 0 {
		dpi = DefaultDPI
	}
	if dpi < MinDPI {
		dpi = MinDPI
	}
	if dpi > MaxDPI {
		dpi = MaxDPI
	}
	if languages == "" {
		languages = "en"
	}
	return &OCRSource{Provider: provider, Languages: languages, DPI: dpi}
}

func (s *OCRSource) Name() string { return "ocr" }

func (s *OCRSource) Acquire(ctx context.Context, path string) (*model.Document, diag.List, error) {
	var diags diag.List

	if s.Provider == nil {
		return nil, diags, fmt.Errorf("%w: no OCR provider configured", errs.OCRUnavailable)
	}

	r, err := reader.Open(path)
	if err != nil {
		return nil, diags, fmt.Errorf("%w: opening %q: %v", errs.InvalidInput, path, err)
	}
	defer r.Close()

	count, err := r.PageCount()
	if err != nil {
		return nil, diags, fmt.Errorf("%w: reading page count: %v", errs.InvalidInput, err)
	}

	doc := model.NewDocument()
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, diags, fmt.Errorf("%w", errs.Cancelled)
		}

		pdfPage, err := r.GetPage(i)
		if err != nil {
			diags.Add(s.Name(), i, errs.NoExtractableText, err.Error())
			doc.AddPage(model.NewPage(i, 612, 792))
			continue
		}

		width, height := pageDimensions(pdfPage)
		page := model.NewPage(i, width, height)

		images, err := r.ExtractPageImages(pdfPage)
		if err != nil || len(images) == 0 {
			diags.Add(s.Name(), i, errs.NoExtractableText, "no embedded raster image for OCR")
			doc.AddPage(page)
			continue
		}

		// Use the largest embedded image; resumes scanned as one image
		// per page have exactly one, but defensively pick the dominant
		// one if several XObjects are present.
		img := images[0]
		for _, candidate := range images[1:] {
			if candidate.Width*candidate.Height > img.Width*img.Height {
				img = candidate
			}
		}

		png, err := img.ToPNG()
		if err != nil {
			diags.Add(s.Name(), i, errs.NoExtractableText, "decoding embedded image: "+err.Error())
			doc.AddPage(page)
			continue
		}

		words, err := s.Provider.Recognize(png, s.Languages)
		if err != nil {
			diags.Add(s.Name(), i, errs.OCRUnavailable, err.Error())
			doc.AddPage(page)
			continue
		}

		scaleX := width / float64(img.Width)
		scaleY := height / float64(img.Height)
		page.Tokens = recognizedWordsToTokens(words, scaleX, scaleY)
		page.SortTokens()

		doc.AddPage(page)
	}

	return doc, diags, nil
}

func recognizedWordsToTokens(words []RecognizedWord, scaleX, scaleY float64) []model.Token {
	tokens := make([]model.Token, 0, len(words))
	for _, w := range words {
		text := normalizeWhitespace(strings.TrimSpace(w.Text))
		text = trimStandaloneLeadingTrailingPunct(text)
		if text == "" {
			continue
		}
		tokens = append(tokens, model.Token{
			Text: text,
			BBox: model.BBox{
				X:      float64(w.X0) * scaleX,
				Y:      float64(w.Y0) * scaleY,
				Width:  float64(w.X1-w.X0) * scaleX,
				Height: float64(w.Y1-w.Y0) * scaleY,
			},
			Confidence: w.Confidence / 100.0,
			Source:     model.SourceOCR,
		})
	}
	return tokens
}
