package wordsource

import (
	"fmt"
	"sync"

	"github.com/tsawler/resumecore/ocr"
)

// TesseractProvider adapts ocr.Client to OCRProvider. Per §9 ("lazy"
// OCR loading), the underlying client is constructed once on first use
// and reused for the lifetime of the process; callers must not build a
// new TesseractProvider per parse.
type TesseractProvider struct {
	mu     sync.Mutex
	client *ocr.Client
}

// NewTesseractProvider returns a provider that lazily constructs its
// Tesseract client on the first Recognize call.
func NewTesseractProvider() *TesseractProvider {
	return &TesseractProvider{}
}

func (p *TesseractProvider) Name() string { return "tesseract" }

func (p *TesseractProvider) Recognize(image []byte, languages string) ([]RecognizedWord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client == nil {
		c, err := ocr.New()
		if err != nil {
			return nil, fmt.Errorf("constructing tesseract client: %w", err)
		}
		p.client = c
	}

	if languages != "" {
		if err := p.client.SetLanguage(languages); err != nil {
			return nil, fmt.Errorf("setting ocr languages %q: %w", languages, err)
		}
	}

	words, err := p.client.RecognizeWords(image)
	if err != nil {
		return nil, err
	}

	out := make([]RecognizedWord, len(words))
	for i, w := range words {
		out[i] = RecognizedWord{Text: w.Text, X0: w.X0, Y0: w.Y0, X1: w.X1, Y1: w.Y1, Confidence: w.Confidence}
	}
	return out, nil
}

// Close releases the underlying Tesseract client, if constructed.
func (p *TesseractProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}
