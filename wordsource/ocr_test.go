package wordsource

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsawler/resumecore/errs"
)

type stubOCRProvider struct {
	words []RecognizedWord
	err   error
}

func (s stubOCRProvider) Name() string { return "stub" }
func (s stubOCRProvider) Recognize(image []byte, languages string) ([]RecognizedWord, error) {
	return s.words, s.err
}

func TestNewOCRSource_ClampsDPI(t *testing.T) {
	s := NewOCRSource(stubOCRProvider{}, "", 50)
	assert.Equal(t, MinDPI, s.DPI)
	assert.Equal(t, "en", s.Languages)

	s2 := NewOCRSource(stubOCRProvider{}, "fr", 1000)
	assert.Equal(t, MaxDPI, s2.DPI)
	assert.Equal(t, "fr", s2.Languages)
}

func TestOCRSource_Acquire_NoProvider(t *testing.T) {
	s := &OCRSource{}
	_, _, err := s.Acquire(context.Background(), "/nonexistent.pdf")
	assert.ErrorIs(t, err, errs.OCRUnavailable)
}

func TestRecognizedWordsToTokens_FiltersPunctOnly(t *testing.T) {
	words := []RecognizedWord{
		{Text: "Hello", X0: 0, Y0: 0, X1: 50, Y1: 20, Confidence: 92},
		{Text: "---", X0: 60, Y0: 0, X1: 90, Y1: 20, Confidence: 80},
	}
	tokens := recognizedWordsToTokens(words, 1, 1)
	assert.Len(t, tokens, 1)
	assert.Equal(t, "Hello", tokens[0].Text)
	assert.InDelta(t, 0.92, tokens[0].Confidence, 0.001)
}
