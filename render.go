package pdflayout

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// RenderConfig controls page rasterization and region overlays.
type RenderConfig struct {
	// DPI used when rasterizing pages (default: 300)
	DPI int `mapstructure:"dpi" yaml:"dpi"`

	// LineWidth of overlay rectangles in pixels (default: 2)
	LineWidth int `mapstructure:"line_width" yaml:"line_width"`

	// Labels draws the region type name above each rectangle (default: true)
	Labels bool `mapstructure:"labels" yaml:"labels"`
}

// DefaultRenderConfig returns the default render configuration.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		DPI:       300,
		LineWidth: 2,
		Labels:    true,
	}
}

// Scale converts PDF points to pixels at the configured DPI.
func (c RenderConfig) Scale() float64 {
	if c.DPI <= 0 {
		return 1
	}
	return float64(c.DPI) / 72
}

// RegionColor returns the overlay colour of a region type.
func RegionColor(rt RegionType) color.Color {
	c, err := colorful.Hex(regionColors[rt])
	if err != nil {
		return color.Black
	}
	return c
}

// RasterizePage renders a page of an open document at dpi into a new RGBA image.
// pageIndex is 0-based.
func RasterizePage(instance pdfium.Pdfium, doc references.FPDF_DOCUMENT, pageIndex, dpi int) (*image.RGBA, error) {
	resp, err := instance.RenderPageInDPI(&requests.RenderPageInDPI{
		DPI: dpi,
		Page: requests.Page{
			ByIndex: &requests.PageByIndex{
				Document: doc,
				Index:    pageIndex,
			},
		},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to render page %d", pageIndex+1)
	}
	defer resp.Cleanup()

	// The rendered buffer is released by Cleanup.
	src := resp.Result.Image
	img := image.NewRGBA(src.Bounds())
	draw.Draw(img, img.Bounds(), src, src.Bounds().Min, draw.Src)
	return img, nil
}

// RenderOverlay draws every region of the annotation onto a copy of page.
// Region coordinates are in points and are multiplied by scale.
func RenderOverlay(page image.Image, annotation PageAnnotation, scale float64, config RenderConfig) *image.RGBA {
	out := image.NewRGBA(page.Bounds())
	draw.Draw(out, out.Bounds(), page, page.Bounds().Min, draw.Src)

	width := config.LineWidth
	if width < 1 {
		width = 1
	}

	for _, rt := range RegionTypes {
		c := RegionColor(rt)
		for _, box := range annotation.Regions[rt] {
			rect := image.Rect(
				int(box.X0*scale),
				int(box.Y0*scale),
				int(box.X1*scale),
				int(box.Y1*scale),
			)
			strokeRect(out, rect, width, c)
			if config.Labels {
				drawLabel(out, rect.Min, string(rt), c)
			}
		}
	}
	return out
}

// strokeRect draws the outline of r with the given line width.
func strokeRect(img draw.Image, r image.Rectangle, width int, c color.Color) {
	src := image.NewUniform(c)
	sides := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width),
		image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y),
		image.Rect(r.Max.X-width, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, side := range sides {
		draw.Draw(img, side.Intersect(img.Bounds()), src, image.Point{}, draw.Over)
	}
}

// drawLabel writes text just above the top-left corner of a region.
func drawLabel(img draw.Image, at image.Point, text string, c color.Color) {
	face := basicfont.Face7x13
	y := at.Y - 2
	if y < face.Ascent {
		y = at.Y + face.Ascent + 2
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(at.X, y),
	}
	d.DrawString(text)
}

// SavePNG writes img to path.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create image file")
	}

	if err := png.Encode(f, img); err != nil {
		f.Close()
		return errors.Wrap(err, "failed to encode png")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "failed to close image file")
	}
	return nil
}
