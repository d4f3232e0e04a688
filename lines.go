package pdflayout

import (
	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/enums"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/pkg/errors"
)

// pageObjects are the non-text objects of a page that layout analysis uses.
type pageObjects struct {
	Edges    []Edge // ruling lines
	Drawings []Box  // filled areas such as coloured backgrounds
	Images   []Box
}

// extractPageObjects walks the page objects and collects ruling lines, filled
// drawings and image bounds. Page borders are dropped so a framed page is not
// mistaken for a table.
func extractPageObjects(instance pdfium.Pdfium, page references.FPDF_PAGE, pageWidth, pageHeight float64) (pageObjects, error) {
	var objects pageObjects

	countResp, err := instance.FPDFPage_CountObjects(&requests.FPDFPage_CountObjects{
		Page: requests.Page{
			ByReference: &page,
		},
	})
	if err != nil {
		return objects, errors.Wrap(err, "failed to count page objects")
	}

	for i := 0; i < countResp.Count; i++ {
		objResp, err := instance.FPDFPage_GetObject(&requests.FPDFPage_GetObject{
			Page: requests.Page{
				ByReference: &page,
			},
			Index: i,
		})
		if err != nil {
			continue
		}

		typeResp, err := instance.FPDFPageObj_GetType(&requests.FPDFPageObj_GetType{
			PageObject: objResp.PageObject,
		})
		if err != nil {
			continue
		}
		if typeResp.Type != enums.FPDF_PAGEOBJ_PATH && typeResp.Type != enums.FPDF_PAGEOBJ_IMAGE {
			continue
		}

		boundsResp, err := instance.FPDFPageObj_GetBounds(&requests.FPDFPageObj_GetBounds{
			PageObject: objResp.PageObject,
		})
		if err != nil {
			continue
		}

		// PDF origin is bottom-left
		box := NewBox(
			float64(boundsResp.Left),
			pageHeight-float64(boundsResp.Top),
			float64(boundsResp.Right),
			pageHeight-float64(boundsResp.Bottom),
		)

		if typeResp.Type == enums.FPDF_PAGEOBJ_IMAGE {
			if !box.IsEmpty() {
				objects.Images = append(objects.Images, box)
			}
			continue
		}

		segCountResp, err := instance.FPDFPath_CountSegments(&requests.FPDFPath_CountSegments{
			PageObject: objResp.PageObject,
		})
		if err != nil || segCountResp.Count < 2 {
			continue
		}

		if segCountResp.Count == 2 {
			if edge := pathToEdge(box); edge != nil && !isPageBorder(*edge, pageWidth, pageHeight) {
				objects.Edges = append(objects.Edges, *edge)
			}
			continue
		}

		// A thin filled rectangle is a rule drawn as a fill.
		if edge := pathToEdge(box); edge != nil {
			if !isPageBorder(*edge, pageWidth, pageHeight) {
				objects.Edges = append(objects.Edges, *edge)
			}
			continue
		}

		if segCountResp.Count >= 4 {
			for _, edge := range boundsToEdges(box) {
				if !isPageBorder(edge, pageWidth, pageHeight) {
					objects.Edges = append(objects.Edges, edge)
				}
			}
		}

		if isFilled(instance, objResp.PageObject) && box.Width() > 1 && box.Height() > 1 && !isFullPage(box, pageWidth, pageHeight) {
			objects.Drawings = append(objects.Drawings, box)
		}
	}

	return objects, nil
}

// isFilled reports whether a path object is painted with a fill.
func isFilled(instance pdfium.Pdfium, object references.FPDF_PAGEOBJECT) bool {
	mode, err := instance.FPDFPath_GetDrawMode(&requests.FPDFPath_GetDrawMode{
		PageObject: object,
	})
	if err != nil {
		return false
	}
	return mode.FillMode != enums.FPDF_FILLMODE_NONE
}

// isFullPage reports whether box covers nearly the whole page, as a page
// background does.
func isFullPage(box Box, pageWidth, pageHeight float64) bool {
	return box.Width() > pageWidth*0.95 && box.Height() > pageHeight*0.95
}

// isPageBorder reports whether an edge lies on the page boundary or spans most of the page.
func isPageBorder(edge Edge, pageWidth, pageHeight float64) bool {
	const borderTolerance = 20.0
	const fullSpanThreshold = 0.90

	switch edge.Orientation {
	case "h":
		if edge.Top < borderTolerance || edge.Top > pageHeight-borderTolerance {
			return true
		}
		return edge.Width > pageWidth*fullSpanThreshold
	case "v":
		if edge.X0 < borderTolerance || edge.X0 > pageWidth-borderTolerance {
			return true
		}
		return edge.Height > pageHeight*fullSpanThreshold
	}
	return false
}

// pathToEdge converts the bounds of a thin path into a horizontal or vertical edge.
// It returns nil when the path is neither.
func pathToEdge(box Box) *Edge {
	width, height := box.Width(), box.Height()

	switch {
	case height < 2.0 && width > 1.0:
		return &Edge{
			X0:          box.X0,
			X1:          box.X1,
			Top:         box.Y0,
			Bottom:      box.Y1,
			Width:       width,
			Height:      height,
			Orientation: "h",
		}
	case width < 2.0 && height > 1.0:
		return &Edge{
			X0:          box.X0,
			X1:          box.X1,
			Top:         box.Y0,
			Bottom:      box.Y1,
			Width:       width,
			Height:      height,
			Orientation: "v",
		}
	}
	return nil
}

// boundsToEdges returns the four sides of a rectangle.
func boundsToEdges(box Box) []Edge {
	return []Edge{
		{X0: box.X0, X1: box.X1, Top: box.Y0, Bottom: box.Y0, Width: box.Width(), Orientation: "h"},
		{X0: box.X0, X1: box.X1, Top: box.Y1, Bottom: box.Y1, Width: box.Width(), Orientation: "h"},
		{X0: box.X0, X1: box.X0, Top: box.Y0, Bottom: box.Y1, Height: box.Height(), Orientation: "v"},
		{X0: box.X1, X1: box.X1, Top: box.Y0, Bottom: box.Y1, Height: box.Height(), Orientation: "v"},
	}
}
