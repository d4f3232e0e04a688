package pdflayout_test

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanvanderbyl/pdflayout"
)

var (
	white = color.RGBA{255, 255, 255, 255}
	green = color.RGBA{0, 255, 0, 255}
)

func blankImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)
	return img
}

func paragraphAnnotation(b pdflayout.Box) pdflayout.PageAnnotation {
	ann := pdflayout.NewPageAnnotation(100, 100, "page_1.png")
	ann.Regions[pdflayout.RegionParagraph] = append(ann.Regions[pdflayout.RegionParagraph], b)
	return ann
}

func TestRegionColor(t *testing.T) {
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, color.RGBAModel.Convert(pdflayout.RegionColor(pdflayout.RegionTitle)))
	assert.Equal(t, green, color.RGBAModel.Convert(pdflayout.RegionColor(pdflayout.RegionParagraph)))

	// Every region type has its own colour
	seen := make(map[color.Color]pdflayout.RegionType)
	for _, rt := range pdflayout.RegionTypes {
		c := color.RGBAModel.Convert(pdflayout.RegionColor(rt))
		assert.NotContains(t, seen, c, rt)
		seen[c] = rt
	}
}

func TestRenderOverlay(t *testing.T) {
	page := blankImage(100, 100)
	config := pdflayout.RenderConfig{LineWidth: 2}

	out := pdflayout.RenderOverlay(page, paragraphAnnotation(box(5, 5, 50, 50)), 1, config)

	assert.Equal(t, green, out.RGBAAt(5, 5))
	assert.Equal(t, green, out.RGBAAt(6, 30), "left side is two pixels wide")
	assert.Equal(t, green, out.RGBAAt(49, 30))
	assert.Equal(t, white, out.RGBAAt(30, 30))
	assert.Equal(t, white, out.RGBAAt(7, 30))
	assert.Equal(t, white, page.RGBAAt(5, 5), "the source image is not modified")
}

func TestRenderOverlay_Scale(t *testing.T) {
	out := pdflayout.RenderOverlay(blankImage(100, 100), paragraphAnnotation(box(5, 5, 40, 40)), 2, pdflayout.RenderConfig{LineWidth: 1})

	assert.Equal(t, green, out.RGBAAt(10, 30))
	assert.Equal(t, white, out.RGBAAt(5, 30))
	assert.Equal(t, green, out.RGBAAt(79, 30))
}

func TestRenderOverlay_Labels(t *testing.T) {
	out := pdflayout.RenderOverlay(blankImage(100, 100), paragraphAnnotation(box(5, 5, 95, 95)), 1, pdflayout.RenderConfig{LineWidth: 1, Labels: true})

	labelled := false
	for y := 7; y < 20 && !labelled; y++ {
		for x := 7; x < 70; x++ {
			if out.RGBAAt(x, y) != white {
				labelled = true
				break
			}
		}
	}
	assert.True(t, labelled, "the type name is written inside the top edge")
}

func TestRenderConfig_Scale(t *testing.T) {
	assert.InDelta(t, 300.0/72, pdflayout.DefaultRenderConfig().Scale(), 1e-9)
	assert.Equal(t, 1.0, pdflayout.RenderConfig{}.Scale())
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overlay.png")
	require.NoError(t, pdflayout.SavePNG(path, blankImage(20, 10)))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 20, 10), img.Bounds())

	assert.Error(t, pdflayout.SavePNG(filepath.Join(t.TempDir(), "missing", "x.png"), blankImage(1, 1)))
}

func TestSavePNG_EncodeError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.png")

	err := pdflayout.SavePNG(path, image.NewRGBA(image.Rect(0, 0, 0, 0)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to encode png")

	// The file handle is released even when encoding fails.
	require.NoError(t, os.Remove(path))
}
