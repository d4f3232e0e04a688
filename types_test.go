package pdflayout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ivanvanderbyl/pdflayout"
)

func TestBox_Methods(t *testing.T) {
	b := pdflayout.NewBox(50, 60, 10, 20)

	assert.Equal(t, box(10, 20, 50, 60), b)
	assert.Equal(t, 40.0, b.Width())
	assert.Equal(t, 40.0, b.Height())
	assert.Equal(t, 30.0, b.CenterX())
	assert.Equal(t, 40.0, b.CenterY())
	assert.Equal(t, 1600.0, b.Area())
	assert.False(t, b.IsEmpty())
	assert.Equal(t, 0.0, box(5, 5, 5, 10).Area())
}

func TestBox_Intersects(t *testing.T) {
	a := box(0, 0, 10, 10)

	assert.True(t, a.Intersects(box(5, 5, 15, 15)))
	assert.False(t, a.Intersects(box(10, 0, 20, 10)), "touching boxes do not intersect")
	assert.False(t, a.Intersects(box(20, 20, 30, 30)))
	assert.Equal(t, box(5, 5, 10, 10), a.Intersect(box(5, 5, 15, 15)))
	assert.Equal(t, box(0, 0, 15, 15), a.Union(box(5, 5, 15, 15)))
}

func TestBox_Contains(t *testing.T) {
	outer := box(0, 0, 100, 100)

	assert.True(t, outer.Contains(box(10, 10, 90, 90)))
	assert.True(t, outer.Contains(outer), "edges are inclusive")
	assert.False(t, outer.Contains(box(50, 50, 150, 90)))
}

func TestBox_Gaps(t *testing.T) {
	a := box(0, 0, 10, 10)

	assert.Equal(t, 5.0, a.VerticalGap(box(0, 15, 10, 20)))
	assert.Equal(t, 5.0, box(0, 15, 10, 20).VerticalGap(a))
	assert.Equal(t, -5.0, a.VerticalGap(box(0, 5, 10, 20)))
	assert.Equal(t, 0.0, a.HorizontalGap(box(10, 0, 20, 10)))
}

func TestBox_IntegerConversions(t *testing.T) {
	b := box(10.25, 20.5, 30.25, 40.75)

	assert.Equal(t, box(10, 20, 31, 41), b.Outer())
	assert.Equal(t, [4]int{10, 20, 30, 40}, b.Ints())
	assert.Equal(t, box(10.25, 15.5, 30.25, 45.75), b.Pad(0, 5))
}

func TestSpan_Style(t *testing.T) {
	tests := []struct {
		name   string
		span   pdflayout.Span
		bold   bool
		italic bool
	}{
		{"regular", pdflayout.Span{Font: "Times-Roman", Weight: 400}, false, false},
		{"bold weight", pdflayout.Span{Font: "Times", Weight: 700}, true, false},
		{"bold name", pdflayout.Span{Font: "Arial-BoldMT"}, true, false},
		{"force bold flag", pdflayout.Span{Flags: pdflayout.FontFlagForceBold}, true, false},
		{"italic flag", pdflayout.Span{Flags: pdflayout.FontFlagItalic}, false, true},
		{"oblique name", pdflayout.Span{Font: "Helvetica-Oblique"}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.bold, tt.span.IsBold())
			assert.Equal(t, tt.italic, tt.span.IsItalic())
		})
	}

	assert.Equal(t, 12, pdflayout.Span{Size: 11.6}.RoundedSize())
	assert.True(t, pdflayout.Span{Font: "Arial-Underline"}.IsUnderline())
}

func TestContentBlock_Text(t *testing.T) {
	block := linesBlock(90, 100, 300, "Hello World", "Second Line")

	assert.Equal(t, "Hello World Second Line", block.Text())
	assert.Len(t, block.Spans(), 2)
	assert.Equal(t, "Hello World", block.Lines[0].Text())
	assert.Equal(t, box(90, 100, 300, 126), block.Box)
}

func TestPage_Images(t *testing.T) {
	page := newPage(
		textBlock("text", box(90, 100, 300, 112), 12),
		imageBlock(box(100, 200, 400, 400)),
	)

	assert.Equal(t, []pdflayout.Box{box(100, 200, 400, 400)}, page.Images())
}

func TestParseRegionType(t *testing.T) {
	rt, err := pdflayout.ParseRegionType("multicolumn_text")
	assert.NoError(t, err)
	assert.Equal(t, pdflayout.RegionMultiColumnText, rt)

	_, err = pdflayout.ParseRegionType("sidebar")
	assert.Error(t, err)
	assert.Len(t, pdflayout.RegionTypes, 13)
}
