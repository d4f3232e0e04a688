package pdflayout

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ProcessingMetrics contains timing and statistics for annotating a document
type ProcessingMetrics struct {
	TotalTime       time.Duration
	DocumentOpen    time.Duration
	PageExtractions []PageMetrics
	Statistics      DocumentStatistics
}

// PageMetrics contains timing for a single page
type PageMetrics struct {
	PageNumber int
	Duration   time.Duration
	Regions    int
}

// DocumentStatistics counts regions across the document
type DocumentStatistics struct {
	TotalPages   int
	TotalRegions int
	TotalTables  int
	ByType       map[RegionType]int
}

// Annotator annotates PDF documents page by page using pdfium extraction.
// An Annotator wraps a single pdfium instance and must not be used from
// several goroutines at once.
type Annotator struct {
	instance pdfium.Pdfium
	config   Config
	locator  TableLocator
	logger   *zap.Logger
}

// NewAnnotator creates an annotator with the default configuration.
func NewAnnotator(instance pdfium.Pdfium) *Annotator {
	return NewAnnotatorWithConfig(instance, DefaultConfig())
}

// NewAnnotatorWithConfig creates an annotator with a custom configuration.
func NewAnnotatorWithConfig(instance pdfium.Pdfium, config Config) *Annotator {
	return &Annotator{
		instance: instance,
		config:   config,
		locator:  NewEdgeTableLocator(config.Tables),
		logger:   zap.NewNop(),
	}
}

// WithLogger sets the logger used for progress and metrics.
func (a *Annotator) WithLogger(logger *zap.Logger) *Annotator {
	if logger == nil {
		logger = zap.NewNop()
	}
	a.logger = logger
	return a
}

// WithTableLocator replaces the table locator.
func (a *Annotator) WithTableLocator(locator TableLocator) *Annotator {
	a.locator = locator
	return a
}

// Config returns the annotator configuration.
func (a *Annotator) Config() Config {
	return a.config
}

// AnnotateFile annotates every page of a PDF file.
func (a *Annotator) AnnotateFile(filePath string) ([]PageAnnotation, error) {
	return a.AnnotateFileContext(context.Background(), filePath)
}

// AnnotateFileContext annotates every page of a PDF file, stopping between
// pages when ctx is cancelled.
func (a *Annotator) AnnotateFileContext(ctx context.Context, filePath string) ([]PageAnnotation, error) {
	if a.config.ValidateInput {
		if err := ValidatePDF(filePath); err != nil {
			return nil, err
		}
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

	pages, _, err := a.annotateDocument(ctx, doc.Document, filePath, 0, -1)
	return pages, err
}

// AnnotateBytes annotates PDF bytes.
func (a *Annotator) AnnotateBytes(pdfBytes []byte) ([]PageAnnotation, error) {
	if a.config.ValidateInput {
		if err := ValidatePDFReader(bytes.NewReader(pdfBytes)); err != nil {
			return nil, err
		}
	}

	doc, err := a.instance.OpenDocument(&requests.OpenDocument{
		File: &pdfBytes,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open PDF document")
	}
	defer a.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
		Document: doc.Document,
	})

	pages, _, err := a.annotateDocument(context.Background(), doc.Document, "bytes", 0, -1)
	return pages, err
}

// AnnotateReader annotates a PDF read from an io.ReadSeeker.
func (a *Annotator) AnnotateReader(reader io.ReadSeeker) ([]PageAnnotation, error) {
	doc, err := a.instance.OpenDocument(&requests.OpenDocument{
		FileReader: reader,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open PDF document")
	}
	defer a.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
		Document: doc.Document,
	})

	pages, _, err := a.annotateDocument(context.Background(), doc.Document, "reader", 0, -1)
	return pages, err
}

// AnnotatePageRange annotates pages startPage through endPage (0-indexed, inclusive).
// A negative endPage means the last page.
func (a *Annotator) AnnotatePageRange(filePath string, startPage, endPage int) ([]PageAnnotation, error) {
	doc, err := a.instance.OpenDocument(&requests.OpenDocument{
		FilePath: &filePath,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open PDF document")
	}
	defer a.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
		Document: doc.Document,
	})

	pages, _, err := a.annotateDocument(context.Background(), doc.Document, filePath, startPage, endPage)
	return pages, err
}

// AnnotateFileWithMetrics annotates a PDF and returns both the pages and metrics.
func (a *Annotator) AnnotateFileWithMetrics(filePath string) ([]PageAnnotation, ProcessingMetrics, error) {
	startTime := time.Now()

	doc, err := a.instance.OpenDocument(&requests.OpenDocument{
		FilePath: &filePath,
	})
	if err != nil {
		return nil, ProcessingMetrics{}, errors.Wrap(err, "failed to open PDF document")
	}
	defer a.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
		Document: doc.Document,
	})
	openTime := time.Since(startTime)

	pages, pageMetrics, err := a.annotateDocument(context.Background(), doc.Document, filePath, 0, -1)
	if err != nil {
		return nil, ProcessingMetrics{}, err
	}

	return pages, ProcessingMetrics{
		TotalTime:       time.Since(startTime),
		DocumentOpen:    openTime,
		PageExtractions: pageMetrics,
		Statistics:      calculateDocumentStatistics(pages),
	}, nil
}

// annotateDocument runs a fresh DocumentAnnotator over a page range of an open document.
func (a *Annotator) annotateDocument(ctx context.Context, docRef references.FPDF_DOCUMENT, name string, startPage, endPage int) ([]PageAnnotation, []PageMetrics, error) {
	startTime := time.Now()
	log := a.logger.With(zap.String("document", name))

	pageCount, err := a.instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{
		Document: docRef,
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to get page count")
	}

	if startPage < 0 {
		startPage = 0
	}
	if endPage < 0 || endPage >= pageCount.PageCount {
		endPage = pageCount.PageCount - 1
	}
	if pageCount.PageCount > 0 && startPage > endPage {
		return nil, nil, errors.New("invalid page range: start page must be <= end page")
	}

	document := NewDocumentAnnotator(a.config, log)
	pages := make([]PageAnnotation, 0, endPage-startPage+1)
	var pageMetrics []PageMetrics

	for i := startPage; i <= endPage; i++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, errors.Wrap(err, "annotation cancelled")
		}

		pageStart := time.Now()
		page, err := a.extractPage(docRef, i)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "failed to extract page %d", i+1)
		}

		var tables []Box
		if a.config.DetectTables && a.locator != nil {
			tables = a.locator.LocateTables(page)
		}

		annotation := document.AnnotatePage(page, tables)
		pages = append(pages, annotation)

		pm := PageMetrics{
			PageNumber: i + 1,
			Duration:   time.Since(pageStart),
			Regions:    annotation.Count(),
		}
		pageMetrics = append(pageMetrics, pm)

		if a.config.EnableMetricsLogging {
			log.Info("page processed",
				zap.Int("page", pm.PageNumber),
				zap.Int("pages", pageCount.PageCount),
				zap.Int("regions", pm.Regions),
				zap.Duration("duration", pm.Duration),
			)
		}
	}

	if a.config.EnableMetricsLogging {
		logProcessingMetrics(log, ProcessingMetrics{
			TotalTime:       time.Since(startTime),
			PageExtractions: pageMetrics,
			Statistics:      calculateDocumentStatistics(pages),
		})
	}

	return pages, pageMetrics, nil
}

// extractPage loads a single page and extracts its content blocks.
func (a *Annotator) extractPage(docRef references.FPDF_DOCUMENT, pageIndex int) (*Page, error) {
	pageResp, err := a.instance.FPDF_LoadPage(&requests.FPDF_LoadPage{
		Document: docRef,
		Index:    pageIndex,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load page")
	}
	defer a.instance.FPDF_ClosePage(&requests.FPDF_ClosePage{
		Page: pageResp.Page,
	})

	page, err := ExtractPage(a.instance, pageResp.Page, pageIndex+1)
	if err != nil {
		return nil, errors.Wrap(err, "failed to extract page content")
	}
	return page, nil
}

// calculateDocumentStatistics counts regions by type across the pages.
func calculateDocumentStatistics(pages []PageAnnotation) DocumentStatistics {
	stats := DocumentStatistics{
		TotalPages: len(pages),
		ByType:     make(map[RegionType]int, len(RegionTypes)),
	}
	for _, page := range pages {
		for rt, boxes := range page.Regions {
			stats.ByType[rt] += len(boxes)
			stats.TotalRegions += len(boxes)
		}
	}
	stats.TotalTables = stats.ByType[RegionTable]
	return stats
}

// logProcessingMetrics logs the document summary at info level.
func logProcessingMetrics(log *zap.Logger, metrics ProcessingMetrics) {
	fields := []zap.Field{
		zap.Duration("total_time", metrics.TotalTime.Round(time.Millisecond)),
		zap.Int("pages", metrics.Statistics.TotalPages),
		zap.Int("regions", metrics.Statistics.TotalRegions),
		zap.Int("tables", metrics.Statistics.TotalTables),
	}
	if n := len(metrics.PageExtractions); n > 0 {
		avg := metrics.TotalTime / time.Duration(n)
		fields = append(fields, zap.Duration("avg_per_page", avg.Round(time.Millisecond)))
	}
	for _, rt := range RegionTypes {
		if count := metrics.Statistics.ByType[rt]; count > 0 {
			fields = append(fields, zap.Int(string(rt), count))
		}
	}
	log.Info("document annotated", fields...)
}

// ValidatePDF checks a PDF file with pdfcpu in relaxed mode.
func ValidatePDF(filePath string) error {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	if err := api.ValidateFile(filePath, conf); err != nil {
		return errors.Wrap(err, "PDF validation failed")
	}
	return nil
}

// ValidatePDFReader checks a PDF stream with pdfcpu in relaxed mode.
func ValidatePDFReader(rs io.ReadSeeker) error {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	if err := api.Validate(rs, conf); err != nil {
		return errors.Wrap(err, "PDF validation failed")
	}
	return nil
}

// GetDocumentInfo returns basic information about a PDF without annotating it.
func (a *Annotator) GetDocumentInfo(filePath string) (*DocumentInfo, error) {
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

	return &DocumentInfo{
		PageCount: pageCount.PageCount,
	}, nil
}

// DocumentInfo contains basic information about a PDF document.
type DocumentInfo struct {
	PageCount int
}
