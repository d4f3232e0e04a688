package pdflayout

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/klippa-app/go-pdfium"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BatchOptions selects what AnnotateDirectory writes besides the JSON records.
type BatchOptions struct {
	RenderPages    bool // write <stem>_<n>.png
	RenderOverlays bool // write <stem>_annotated_page_<n>.png
}

// BatchResult reports the outcome for one input document.
type BatchResult struct {
	Path    string
	Pages   int
	Files   []string
	Skipped bool
	Err     error
}

// instanceTimeout bounds the wait for a free pdfium instance.
const instanceTimeout = 30 * time.Second

// ListPDFs returns the PDF files directly inside dir, sorted by name.
func ListPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read input directory")
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// AnnotateDirectory annotates every PDF in inDir and writes the page records
// to outDir. Documents run in parallel, up to config.Workers at a time, each
// with its own pdfium instance from pool. A document that fails is reported
// in its result and does not stop the others; only cancellation of ctx does.
func AnnotateDirectory(ctx context.Context, pool pdfium.Pool, inDir, outDir string, config Config, opts BatchOptions, logger *zap.Logger) ([]BatchResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	paths, err := ListPDFs(inDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create output directory")
	}

	workers := config.Workers
	if workers < 1 {
		workers = 1
	}

	results := make([]BatchResult, len(paths))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			result := annotateOne(ctx, pool, path, outDir, config, opts, logger)

			mu.Lock()
			results[i] = result
			mu.Unlock()

			if result.Err != nil && errors.Is(result.Err, context.Canceled) {
				return result.Err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, errors.Wrap(err, "batch annotation interrupted")
	}
	return results, nil
}

// annotateOne processes a single document with a dedicated pdfium instance.
func annotateOne(ctx context.Context, pool pdfium.Pool, path, outDir string, config Config, opts BatchOptions, logger *zap.Logger) BatchResult {
	result := BatchResult{Path: path}
	log := logger.With(zap.String("document", filepath.Base(path)))

	if config.ValidateInput {
		if err := ValidatePDF(path); err != nil {
			log.Warn("skipping invalid PDF", zap.Error(err))
			result.Skipped = true
			result.Err = err
			return result
		}
	}

	instance, err := pool.GetInstance(instanceTimeout)
	if err != nil {
		result.Err = errors.Wrap(err, "failed to get pdfium instance")
		log.Error("annotation failed", zap.Error(result.Err))
		return result
	}
	defer instance.Close()

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	docConfig := config
	docConfig.ImagePathFormat = ImagePathFormatFor(stem)
	// Validation already ran above.
	docConfig.ValidateInput = false

	annotator := NewAnnotatorWithConfig(instance, docConfig).WithLogger(log)

	pages, err := annotator.AnnotateFileContext(ctx, path)
	if err != nil {
		result.Err = err
		log.Error("annotation failed", zap.Error(err))
		return result
	}
	result.Pages = len(pages)

	files, err := WriteAnnotations(outDir, stem, pages)
	result.Files = append(result.Files, files...)
	if err != nil {
		result.Err = err
		log.Error("failed to write annotations", zap.Error(err))
		return result
	}

	if opts.RenderPages {
		files, err := annotator.RenderFile(path, outDir, stem)
		result.Files = append(result.Files, files...)
		if err != nil {
			result.Err = err
			log.Error("failed to render pages", zap.Error(err))
			return result
		}
	}
	if opts.RenderOverlays {
		files, err := annotator.RenderOverlays(path, outDir, stem, pages)
		result.Files = append(result.Files, files...)
		if err != nil {
			result.Err = err
			log.Error("failed to render overlays", zap.Error(err))
			return result
		}
	}

	log.Info("document annotated", zap.Int("pages", result.Pages), zap.Int("files", len(result.Files)))
	return result
}

// PoolAnnotator annotates documents with instances borrowed from a pdfium
// pool, so one value can serve concurrent callers.
type PoolAnnotator struct {
	Pool   pdfium.Pool
	Config Config
	Logger *zap.Logger
}

// AnnotateBytes annotates PDF bytes with a pooled instance.
func (p *PoolAnnotator) AnnotateBytes(ctx context.Context, data []byte) ([]PageAnnotation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	instance, err := p.Pool.GetInstance(instanceTimeout)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get pdfium instance")
	}
	defer instance.Close()

	return NewAnnotatorWithConfig(instance, p.Config).WithLogger(p.Logger).AnnotateBytes(data)
}
