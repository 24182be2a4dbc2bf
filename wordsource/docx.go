package wordsource

import (
	"context"
	"fmt"
	"strings"

	"github.com/tsawler/resumecore/diag"
	"github.com/tsawler/resumecore/docx"
	"github.com/tsawler/resumecore/errs"
	"github.com/tsawler/resumecore/model"
)

// Standard US Letter page dimensions in points, used for the synthetic
// single page DocxSource produces (DOCX has no fixed page geometry).
const (
	docxPageWidth  = 612.0
	docxPageHeight = 792.0
	docxMarginX    = 72.0
	docxTopY       = 54.0
	docxLineHeight = 14.0
	docxHeadingGap = 6.0
)

// DocxSource acquires tokens from a DOCX document by walking its
// paragraphs/runs in document order and laying them out as a single
// full-width column on one synthetic page, top to bottom. DOCX resumes
// are single-column in the overwhelming case, so this keeps C2's
// histogram classifier trivially resolving to Type 1 without needing
// a real page renderer.
type DocxSource struct{}

func NewDocxSource() *DocxSource { return &DocxSource{} }

func (s *DocxSource) Name() string { return "docx" }

func (s *DocxSource) Acquire(ctx context.Context, path string) (*model.Document, diag.List, error) {
	var diags diag.List

	r, err := docx.Open(path)
	if err != nil {
		return nil, diags, fmt.Errorf("%w: opening %q: %v", errs.InvalidInput, path, err)
	}
	defer r.Close()

	page := model.NewPage(0, docxPageWidth, docxPageHeight)
	y := docxTopY

	paragraphs := r.Paragraphs()
	for _, para := range paragraphs {
		if err := ctx.Err(); err != nil {
			return nil, diags, fmt.Errorf("%w", errs.Cancelled)
		}

		text := strings.TrimSpace(para.Text)
		if text == "" {
			continue
		}

		fontSize := 11.0
		var flags model.FontFlags
		if para.IsHeading {
			fontSize = 16.0 - float64(para.Level)
			flags |= model.FontBold
		} else if len(para.Runs) > 0 && allBold(para.Runs) {
			flags |= model.FontBold
		}

		lineHeight := docxLineHeight
		if para.IsHeading {
			lineHeight += docxHeadingGap
		}

		x := docxMarginX
		words := strings.Fields(normalizeWhitespace(text))
		for _, w := range words {
			w = trimStandaloneLeadingTrailingPunct(w)
			if w == "" {
				continue
			}
			width := float64(len(w)) * fontSize * 0.55
			page.Tokens = append(page.Tokens, model.Token{
				Text:       w,
				BBox:       model.BBox{X: x, Y: y, Width: width, Height: lineHeight * 0.8},
				FontSize:   fontSize,
				FontFlags:  flags,
				Confidence: 1.0,
				Source:     model.SourceTextLayer,
			})
			x += width + fontSize*0.3
		}

		y += lineHeight
	}

	if len(page.Tokens) == 0 {
		diags.Add(s.Name(), 0, errs.NoExtractableText, "no non-empty paragraphs in document body")
	}

	page.SortTokens()
	doc := model.NewDocument()
	doc.AddPage(page)
	return doc, diags, nil
}

func allBold(runs []docx.Run) bool {
	for _, r := range runs {
		if strings.TrimSpace(r.Text) != "" && !r.Bold {
			return false
		}
	}
	return true
}
