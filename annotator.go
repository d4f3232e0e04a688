package pdflayout

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

// PageStage is a step of page annotation. Stages run in declaration order.
type PageStage int

const (
	StageStart PageStage = iota
	StageExcludeTables
	StageClassify
	StageMerge
	StageDetectColumns
	StageDone
)

func (s PageStage) String() string {
	switch s {
	case StageStart:
		return "start"
	case StageExcludeTables:
		return "exclude-table-blocks"
	case StageClassify:
		return "classify-blocks"
	case StageMerge:
		return "merge-regions"
	case StageDetectColumns:
		return "detect-columns"
	case StageDone:
		return "done"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// DocumentAnnotator classifies the pages of a single document in order.
// It carries the font baseline and the previous block between pages, so a
// DocumentAnnotator must not be shared between documents or goroutines.
type DocumentAnnotator struct {
	config      Config
	classifier  *BlockClassifier
	baseline    *FontBaselineTracker
	tolerances  map[RegionType]MergeTolerance
	prev        PrevBlockMemo
	lineSpacing float64
	initialized bool
	stage       PageStage
	logger      *zap.Logger
}

// NewDocumentAnnotator creates an annotator for one document.
func NewDocumentAnnotator(config Config, logger *zap.Logger) *DocumentAnnotator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentAnnotator{
		config:      config,
		classifier:  NewBlockClassifier(config.Classifier),
		baseline:    NewFontBaselineTracker(config.Baseline),
		tolerances:  config.MergeTolerances(),
		lineSpacing: config.DefaultLineSpacing,
		logger:      logger,
	}
}

// Baseline returns the current body font size estimate.
func (a *DocumentAnnotator) Baseline() int {
	return a.baseline.Baseline()
}

// LineSpacing returns the line spacing measured on the first page.
func (a *DocumentAnnotator) LineSpacing() float64 {
	return a.lineSpacing
}

// Stage returns the stage reached by the most recent AnnotatePage call.
func (a *DocumentAnnotator) Stage() PageStage {
	return a.stage
}

// Reset clears all per-document state so the annotator can start a new document.
func (a *DocumentAnnotator) Reset() {
	a.baseline.Reset()
	a.prev = PrevBlockMemo{}
	a.lineSpacing = a.config.DefaultLineSpacing
	a.initialized = false
	a.stage = StageStart
}

// AnnotatePage classifies every block of page. Blocks inside one of tables are
// excluded and the tables themselves are reported as table regions. It never
// fails: malformed blocks are logged and skipped.
func (a *DocumentAnnotator) AnnotatePage(page *Page, tables []Box) PageAnnotation {
	start := time.Now()
	log := a.logger.With(zap.Int("page", page.Number))

	a.enter(log, StageStart)
	result := NewPageAnnotation(
		int(page.Width),
		int(page.Height),
		a.config.imagePath(page.Number),
	)
	for _, table := range tables {
		result.Regions[RegionTable] = append(result.Regions[RegionTable], table)
	}

	a.enter(log, StageExcludeTables)
	blocks := make([]ContentBlock, 0, len(page.Blocks))
	for _, block := range page.Blocks {
		if insideAny(block.Box, tables) {
			log.Debug("block inside table", zap.Any("box", block.Box.Ints()))
			continue
		}
		if block.Kind == BlockText && len(block.Lines) == 0 {
			log.Warn("skipping malformed text block without lines", zap.Any("box", block.Box.Ints()))
			continue
		}
		if block.Kind == BlockText && isBlank(block.Text()) {
			continue
		}
		blocks = append(blocks, block)
	}

	if !a.initialized {
		a.initialized = true
		baseline := a.baseline.Initialize(blocks)
		a.lineSpacing = measureLineSpacing(blocks, page.Height, a.config)
		log.Debug("document baseline initialised",
			zap.Int("baseline", baseline),
			zap.Float64("line_spacing", a.lineSpacing),
		)
	}

	a.enter(log, StageClassify)
	raw := make(map[RegionType][]Box, len(RegionTypes))
	for _, block := range blocks {
		ctx := ClassifyContext{
			PageHeight:  page.Height,
			Baseline:    a.baseline.Baseline(),
			LineSpacing: a.lineSpacing,
			Prev:        a.prev,
		}
		rt, box := a.classifier.Classify(block, ctx)
		raw[rt] = append(raw[rt], box)

		if rt == RegionParagraph {
			a.baseline.Observe(block)
			if baseline, updated := a.baseline.Update(); updated {
				log.Debug("baseline updated", zap.Int("baseline", baseline))
			}
		}
		a.prev = PrevBlockMemo{Type: rt, Text: block.Text(), Box: block.Box, Valid: true}
	}

	a.enter(log, StageMerge)
	for rt, boxes := range raw {
		if tol, ok := a.tolerances[rt]; ok {
			boxes = MergeRegions(boxes, tol)
		}
		result.Regions[rt] = append(result.Regions[rt], boxes...)
	}

	a.enter(log, StageDetectColumns)
	columns := ColumnBoxes(page, a.config.Columns)
	multi := DetectMultiColumn(columns, page.Width, page.Height, a.config.Columns.Templates)
	result.Regions[RegionMultiColumnText] = append(result.Regions[RegionMultiColumnText], multi...)

	a.enter(log, StageDone)
	if a.config.EnableMetricsLogging {
		log.Info("page annotated",
			zap.Int("regions", result.Count()),
			zap.Int("blocks", len(page.Blocks)),
			zap.Int("columns", len(columns)),
			zap.Duration("duration", time.Since(start)),
		)
	}
	return result
}

func (a *DocumentAnnotator) enter(log *zap.Logger, stage PageStage) {
	a.stage = stage
	log.Debug("page stage", zap.Stringer("stage", stage))
}

// measureLineSpacing returns the most common positive vertical gap between
// consecutive body text blocks, ignoring header, footer and footnote zones.
func measureLineSpacing(blocks []ContentBlock, pageHeight float64, config Config) float64 {
	cc := config.Classifier
	var gaps []int
	var prev *Box
	for i := range blocks {
		b := blocks[i].Box
		if blocks[i].Kind != BlockText {
			continue
		}
		if b.Y0 < cc.HeaderMargin || b.Y1 > pageHeight-cc.FooterMargin || b.Y0 > cc.FootnoteZone*pageHeight {
			continue
		}
		if prev != nil {
			if gap := int(math.Round(b.Y0 - prev.Y1)); gap > 0 {
				gaps = append(gaps, gap)
			}
		}
		prev = &blocks[i].Box
	}

	if mode, ok := modeInt(gaps); ok {
		return float64(mode)
	}
	return config.DefaultLineSpacing
}

func insideAny(b Box, containers []Box) bool {
	return containedIn(b, containers) > 0
}
