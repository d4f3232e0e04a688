package pdflayout

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/klippa-app/go-pdfium/requests"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// AnnotationFileName returns the JSON record name of a 1-based page.
func AnnotationFileName(stem string, pageNumber int) string {
	return fmt.Sprintf("%s_page_%d.json", stem, pageNumber)
}

// PageImageFileName returns the rasterized page name of a 1-based page.
func PageImageFileName(stem string, pageNumber int) string {
	return fmt.Sprintf("%s_%d.png", stem, pageNumber)
}

// OverlayFileName returns the overlay image name of a 1-based page.
func OverlayFileName(stem string, pageNumber int) string {
	return fmt.Sprintf("%s_annotated_page_%d.png", stem, pageNumber)
}

// ImagePathFormatFor returns an ImagePathFormat that names page images the way
// RenderFile writes them.
func ImagePathFormatFor(stem string) string {
	return strings.ReplaceAll(stem, "%", "%%") + "_%d.png"
}

// WritePageAnnotation writes the record of a 1-based page to dir and returns its path.
func WritePageAnnotation(dir, stem string, pageNumber int, annotation PageAnnotation) (string, error) {
	data, err := json.MarshalIndent(annotation, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to encode annotation")
	}

	path := filepath.Join(dir, AnnotationFileName(stem, pageNumber))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrap(err, "failed to write annotation")
	}
	return path, nil
}

// WriteAnnotations writes one record per page, numbering pages from 1.
func WriteAnnotations(dir, stem string, pages []PageAnnotation) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create output directory")
	}

	paths := make([]string, 0, len(pages))
	for i, page := range pages {
		path, err := WritePageAnnotation(dir, stem, i+1, page)
		if err != nil {
			return paths, errors.Wrapf(err, "page %d", i+1)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// ReadPageAnnotation reads a record written by WritePageAnnotation.
func ReadPageAnnotation(path string) (PageAnnotation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PageAnnotation{}, errors.Wrap(err, "failed to read annotation")
	}

	var annotation PageAnnotation
	if err := json.Unmarshal(data, &annotation); err != nil {
		return PageAnnotation{}, errors.Wrap(err, "failed to decode annotation")
	}
	return annotation, nil
}

// RenderFile rasterizes every page of a PDF into dir as <stem>_<n>.png.
func (a *Annotator) RenderFile(filePath, dir, stem string) ([]string, error) {
	return a.renderPages(filePath, dir, nil, func(n int) string {
		return PageImageFileName(stem, n)
	})
}

// RenderOverlays rasterizes every annotated page and draws its regions on
// top, writing <stem>_annotated_page_<n>.png into dir.
func (a *Annotator) RenderOverlays(filePath, dir, stem string, pages []PageAnnotation) ([]string, error) {
	return a.renderPages(filePath, dir, pages, func(n int) string {
		return OverlayFileName(stem, n)
	})
}

// renderPages rasterizes pages of filePath. When annotations are given, only
// the annotated pages are rendered, each with its overlay.
func (a *Annotator) renderPages(filePath, dir string, annotations []PageAnnotation, name func(int) string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create output directory")
	}

	doc, err := a.instance.OpenDocument(&requests.OpenDocument{
		FilePath: &filePath,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open PDF document")
	}
	defer a.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
		Document: doc.Document,
	})

	pageCount, err := a.instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{
		Document: doc.Document,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get page count")
	}

	count := pageCount.PageCount
	if annotations != nil && len(annotations) < count {
		count = len(annotations)
	}

	render := a.config.Render
	var paths []string
	for i := 0; i < count; i++ {
		img, err := RasterizePage(a.instance, doc.Document, i, render.DPI)
		if err != nil {
			return paths, err
		}

		out := img
		if annotations != nil {
			out = RenderOverlay(img, annotations[i], render.Scale(), render)
		}

		path := filepath.Join(dir, name(i+1))
		if err := SavePNG(path, out); err != nil {
			return paths, errors.Wrapf(err, "page %d", i+1)
		}
		a.logger.Debug("page image written", zap.String("path", path))
		paths = append(paths, path)
	}
	return paths, nil
}
