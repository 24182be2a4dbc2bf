package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToken_BoldItalic(t *testing.T) {
	tok := Token{FontFlags: FontBold | FontMonospace}
	assert.True(t, tok.Bold())
	assert.False(t, tok.Italic())
}

func TestPage_BodyTokens_ExcludesMargins(t *testing.T) {
	p := NewPage(0, 600, 1000)
	p.Tokens = []Token{
		{Text: "header", BBox: BBox{X: 0, Y: 10, Width: 10, Height: 10}},
		{Text: "body", BBox: BBox{X: 0, Y: 500, Width: 10, Height: 10}},
		{Text: "footer", BBox: BBox{X: 0, Y: 970, Width: 10, Height: 10}},
	}
	body := p.BodyTokens(0.08, 0.05)
	assert.Len(t, body, 1)
	assert.Equal(t, "body", body[0].Text)
}

func TestPage_SortTokens(t *testing.T) {
	p := NewPage(0, 600, 800)
	p.Tokens = []Token{
		{Text: "b", BBox: BBox{X: 10, Y: 100}},
		{Text: "a", BBox: BBox{X: 0, Y: 100}},
		{Text: "c", BBox: BBox{X: 0, Y: 50}},
	}
	p.SortTokens()
	assert.Equal(t, []string{"c", "a", "b"}, []string{p.Tokens[0].Text, p.Tokens[1].Text, p.Tokens[2].Text})
}

func TestDocument_AddPageAssignsIndex(t *testing.T) {
	doc := NewDocument()
	doc.AddPage(NewPage(99, 600, 800))
	doc.AddPage(NewPage(5, 600, 800))
	assert.Equal(t, 0, doc.Pages[0].Index)
	assert.Equal(t, 1, doc.Pages[1].Index)
	assert.Equal(t, 2, doc.PageCount())
}

func TestLayoutKind_String(t *testing.T) {
	assert.Equal(t, "single", LayoutType1.String())
	assert.Equal(t, "multi", LayoutType2.String())
	assert.Equal(t, "hybrid", LayoutType3.String())
}

func TestLine_DerivedFields(t *testing.T) {
	line := Line{
		Tokens: []Token{
			{Text: "Work", FontSize: 12, FontFlags: FontBold},
			{Text: "History", FontSize: 10},
		},
	}
	assert.Equal(t, "Work History", line.Text())
	assert.Equal(t, 12.0, line.MaxFontSize())
	assert.Equal(t, 11.0, line.AvgFontSize())
	assert.Equal(t, 0.5, line.BoldRatio())
}

func TestNewSectionDatabaseEntry(t *testing.T) {
	e := NewSectionDatabaseEntry(SectionExperience)
	assert.Equal(t, SectionExperience, e.Canonical)
	assert.NotNil(t, e.Variants)
	assert.Empty(t, e.Variants)
}
