package wordsource

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/tsawler/resumecore/diag"
	"github.com/tsawler/resumecore/errs"
	"github.com/tsawler/resumecore/histogram"
	"github.com/tsawler/resumecore/model"
	"github.com/tsawler/resumecore/reader"
	"github.com/tsawler/resumecore/text"
)

// TextLayerSource acquires tokens directly from a PDF's embedded glyph
// positions. It never invokes a recognizer; a page whose body yields
// fewer than MinAlphaCharsPerPage alphabetic characters is reported via
// a NoExtractableText diagnostic rather than failing the whole document
// (§4.1 "that page contributes an empty result but does not fail the
// document").
type TextLayerSource struct{}

// NewTextLayerSource returns a TextLayerSource. It has no state to
// construct; the constructor exists for symmetry with OCRSource/DocxSource
// so the orchestrator can build all strategies uniformly.
func NewTextLayerSource() *TextLayerSource { return &TextLayerSource{} }

func (s *TextLayerSource) Name() string { return "text-layer" }

func (s *TextLayerSource) Acquire(ctx context.Context, path string) (*model.Document, diag.List, error) {
	var diags diag.List

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

		fragments, err := r.ExtractTextFragments(pdfPage)
		if err != nil {
			diags.Add(s.Name(), i, errs.NoExtractableText, err.Error())
			doc.AddPage(page)
			continue
		}

		page.Tokens = fragmentsToTokens(fragments, height)
		page.SortTokens()

		hcfg := histogram.DefaultConfig()
		if alphaCount(page.BodyTokens(hcfg.TopMargin, hcfg.BottomMargin)) < MinAlphaCharsPerPage {
			diags.Add(s.Name(), i, errs.NoExtractableText,
				fmt.Sprintf("body alphabetic char count below %d", MinAlphaCharsPerPage))
		}

		doc.AddPage(page)
	}

	return doc, diags, nil
}

func pageDimensions(p interface {
	Width() (float64, error)
	Height() (float64, error)
}) (float64, float64) {
	w, err := p.Width()
	if err != nil || w <= 0 {
		w = 612
	}
	h, err := p.Height()
	if err != nil || h <= 0 {
		h = 792
	}
	return w, h
}

// fragmentsToTokens splits each glyph run into whitespace-delimited
// words (a text.TextFragment can span several words when the content
// stream draws them in one Tj) and maps PDF's bottom-left-origin
// coordinates into the top-left-origin space model.Token expects.
func fragmentsToTokens(fragments []text.TextFragment, pageHeight float64) []model.Token {
	var tokens []model.Token
	for _, f := range fragments {
		words := strings.Fields(normalizeWhitespace(f.Text))
		if len(words) == 0 {
			continue
		}

		flags := fontFlagsFromName(f.FontName)

		// Distribute the fragment's width evenly across its words; this
		// is an approximation (real glyph advances vary) but keeps word
		// boxes monotonically left-to-right, which is all downstream
		// column/line grouping depends on.
		totalChars := 0
		for _, w := range words {
			totalChars += len(w)
		}
		if totalChars == 0 {
			continue
		}

		x := f.X
		y0 := pageHeight - (f.Y + f.Height)
		y1 := pageHeight - f.Y
		if y1 < y0 {
			y0, y1 = y1, y0
		}

		for _, w := range words {
			wordWidth := f.Width * float64(len(w)) / float64(totalChars)
			w = trimStandaloneLeadingTrailingPunct(w)
			if w == "" {
				x += wordWidth
				continue
			}
			tokens = append(tokens, model.Token{
				Text:       w,
				BBox:       model.BBox{X: x, Y: y0, Width: wordWidth, Height: y1 - y0},
				FontSize:   f.FontSize,
				FontName:   f.FontName,
				FontFlags:  flags,
				Confidence: 1.0,
				Source:     model.SourceTextLayer,
			})
			x += wordWidth
		}
	}
	return tokens
}

func fontFlagsFromName(name string) model.FontFlags {
	lower := strings.ToLower(name)
	var flags model.FontFlags
	if strings.Contains(lower, "bold") || strings.Contains(lower, "semibold") || strings.Contains(lower, "demibold") {
		flags |= model.FontBold
	}
	if strings.Contains(lower, "italic") || strings.Contains(lower, "oblique") {
		flags |= model.FontItalic
	}
	if strings.Contains(lower, "mono") || strings.Contains(lower, "courier") || strings.Contains(lower, "consolas") {
		flags |= model.FontMonospace
	}
	return flags
}

// trimStandaloneLeadingTrailingPunct strips leading/trailing punctuation
// only when the token is a standalone punctuation run with nothing else
// attached (§4.1); a word like "C++" or "don't" is left intact.
func trimStandaloneLeadingTrailingPunct(w string) string {
	isPunctOnly := true
	for _, r := range w {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			isPunctOnly = false
			break
		}
	}
	if isPunctOnly {
		return ""
	}
	return w
}

func alphaCount(tokens []model.Token) int {
	n := 0
	for _, t := range tokens {
		for _, r := range t.Text {
			if unicode.IsLetter(r) {
				n++
			}
		}
	}
	return n
}
