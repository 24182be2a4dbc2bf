package wordsource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsawler/resumecore/model"
	"github.com/tsawler/resumecore/text"
)

func TestFragmentsToTokens_SplitsWordsAndFlipsCoordinates(t *testing.T) {
	fragments := []text.TextFragment{
		{Text: "Hello World", X: 100, Y: 700, Width: 80, Height: 12, FontSize: 11, FontName: "Helvetica-Bold"},
	}
	tokens := fragmentsToTokens(fragments, 792)
	assert.Len(t, tokens, 2)
	assert.Equal(t, "Hello", tokens[0].Text)
	assert.Equal(t, "World", tokens[1].Text)
	assert.True(t, tokens[0].Bold())
	// y0 should be pageHeight - (Y + Height) = 792 - 712 = 80
	assert.InDelta(t, 80, tokens[0].BBox.Y, 0.01)
}

func TestTrimStandaloneLeadingTrailingPunct(t *testing.T) {
	assert.Equal(t, "", trimStandaloneLeadingTrailingPunct("---"))
	assert.Equal(t, "don't", trimStandaloneLeadingTrailingPunct("don't"))
	assert.Equal(t, "C++", trimStandaloneLeadingTrailingPunct("C++"))
}

func TestAlphaCount(t *testing.T) {
	tokens := []model.Token{{Text: "abc"}, {Text: "123"}, {Text: "de"}}
	assert.Equal(t, 5, alphaCount(tokens))
}

func TestFontFlagsFromName(t *testing.T) {
	assert.True(t, fontFlagsFromName("Arial-BoldMT").Has(model.FontBold))
	assert.True(t, fontFlagsFromName("Times-Italic").Has(model.FontItalic))
	assert.True(t, fontFlagsFromName("Courier").Has(model.FontMonospace))
}
