package pdflayout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ivanvanderbyl/pdflayout"
)

func TestColumnBoxes_EmptyPage(t *testing.T) {
	opts := pdflayout.DefaultColumnOptions()

	assert.Equal(t, []pdflayout.Box{}, pdflayout.ColumnBoxes(newPage(), opts))
	assert.Equal(t, []pdflayout.Box{}, pdflayout.ColumnBoxes(nil, opts))
}

func TestColumnBoxes_ExtendsToRightBorder(t *testing.T) {
	page := newPage(textBlock("Single column text", box(90, 100, 300, 112), 12))

	assert.Equal(t, []pdflayout.Box{box(90, 100, 612, 112)},
		pdflayout.ColumnBoxes(page, pdflayout.DefaultColumnOptions()))
}

func TestColumnBoxes_ImageBlocksExtension(t *testing.T) {
	page := newPage(
		textBlock("Text beside a picture", box(90, 100, 300, 112), 12),
		imageBlock(box(400, 90, 500, 130)),
	)

	assert.Equal(t, []pdflayout.Box{box(90, 100, 300, 112)},
		pdflayout.ColumnBoxes(page, pdflayout.DefaultColumnOptions()))
}

func TestColumnBoxes_VerticalTextBlocksExtension(t *testing.T) {
	vertical := textBlock("Sideways", box(400, 90, 420, 400), 12)
	vertical.Lines[0].Horizontal = false

	page := newPage(
		textBlock("Text beside a margin note", box(90, 100, 300, 112), 12),
		vertical,
	)

	assert.Equal(t, []pdflayout.Box{box(90, 100, 300, 112)},
		pdflayout.ColumnBoxes(page, pdflayout.DefaultColumnOptions()))
}

func TestColumnBoxes_TwoColumns(t *testing.T) {
	page := newPage(
		textBlock("Left column text", box(90, 100, 300, 400), 12),
		textBlock("Right column text", box(310, 100, 520, 400), 12),
	)

	assert.Equal(t, []pdflayout.Box{
		box(90, 100, 300, 400),
		box(310, 100, 612, 400),
	}, pdflayout.ColumnBoxes(page, pdflayout.DefaultColumnOptions()))
}

func TestColumnBoxes_SkipsShortAndMarginLines(t *testing.T) {
	page := newPage(
		textBlock("x", box(90, 100, 300, 112), 12),
		textBlock("Running header", box(90, 20, 300, 32), 12),
		textBlock("Page footer", box(90, 760, 300, 772), 12),
	)

	assert.Equal(t, []pdflayout.Box{}, pdflayout.ColumnBoxes(page, pdflayout.DefaultColumnOptions()))
}

func TestColumnBoxes_TextOnImage(t *testing.T) {
	page := newPage(
		imageBlock(box(80, 80, 400, 400)),
		textBlock("Text printed on a photo", box(90, 100, 300, 112), 12),
	)

	opts := pdflayout.DefaultColumnOptions()
	assert.Equal(t, []pdflayout.Box{}, pdflayout.ColumnBoxes(page, opts))

	opts.NoImageText = false
	assert.Equal(t, []pdflayout.Box{box(90, 100, 300, 112)}, pdflayout.ColumnBoxes(page, opts),
		"a box inside an image is never extended")
}

func TestColumnBoxes_JoinDoesNotCoverImage(t *testing.T) {
	page := newPage(
		textBlock("Short line", box(90, 150, 200, 162), 12),
		imageBlock(box(250, 100, 400, 300)),
		textBlock("Long line below the picture", box(90, 310, 500, 322), 12),
	)

	columns := pdflayout.ColumnBoxes(page, pdflayout.DefaultColumnOptions())
	assert.Equal(t, []pdflayout.Box{
		box(90, 150, 200, 162),
		box(90, 310, 612, 322),
	}, columns)
	for _, c := range columns {
		assert.False(t, c.Intersects(box(250, 100, 400, 300)), "column %v covers the image", c)
	}
}

func TestColumnBoxes_JoinDoesNotCoverBackground(t *testing.T) {
	page := newPage(
		textBlock("Short line", box(90, 150, 200, 162), 12),
		textBlock("Long line below the shading", box(90, 310, 500, 322), 12),
	)
	page.Drawings = []pdflayout.Box{box(250, 100, 400, 300)}

	assert.Equal(t, []pdflayout.Box{
		box(90, 150, 200, 162),
		box(90, 310, 612, 322),
	}, pdflayout.ColumnBoxes(page, pdflayout.DefaultColumnOptions()))
}

func TestColumnBoxes_ExtensionStopsAtBackground(t *testing.T) {
	page := newPage(textBlock("Text beside a shaded box", box(90, 100, 300, 112), 12))
	page.Drawings = []pdflayout.Box{box(400, 90, 500, 130)}

	assert.Equal(t, []pdflayout.Box{box(90, 100, 300, 112)},
		pdflayout.ColumnBoxes(page, pdflayout.DefaultColumnOptions()))
}

func TestColumnBoxes_JoinsInsideSameBackground(t *testing.T) {
	page := newPage(
		textBlock("First shaded line", box(90, 100, 300, 112), 12),
		textBlock("Second shaded line", box(90, 116, 300, 128), 12),
	)
	page.Drawings = []pdflayout.Box{box(80, 80, 540, 400)}

	assert.Equal(t, []pdflayout.Box{box(90, 100, 300, 128)},
		pdflayout.ColumnBoxes(page, pdflayout.DefaultColumnOptions()),
		"boxes inside one background join and are not stretched out of it")
}

func TestColumnBoxes_BackgroundOrdering(t *testing.T) {
	// The shaded block is higher on the page but unshaded text comes first
	page := newPage(
		textBlock("Shaded call-out", box(90, 100, 300, 112), 12),
		textBlock("Body text", box(90, 150, 300, 162), 12),
	)
	page.Drawings = []pdflayout.Box{box(80, 80, 320, 140)}

	assert.Equal(t, []pdflayout.Box{
		box(90, 150, 612, 162),
		box(90, 100, 300, 112),
	}, pdflayout.ColumnBoxes(page, pdflayout.DefaultColumnOptions()),
		"boxes on different backgrounds never join")
}

func TestColumnBoxes_SortsRowsLeftToRight(t *testing.T) {
	// The right block starts higher, so it sorts first until the cleanup pass
	page := newPage(
		textBlock("Right hand text", box(320, 100, 520, 130), 12),
		textBlock("Left hand text", box(90, 105, 300, 130), 12),
	)

	assert.Equal(t, []pdflayout.Box{
		box(90, 105, 300, 130),
		box(320, 100, 612, 130),
	}, pdflayout.ColumnBoxes(page, pdflayout.DefaultColumnOptions()))
}
