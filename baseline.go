package pdflayout

// DefaultBaselineFontSize is used when a document has no measurable text.
const DefaultBaselineFontSize = 12

// BaselineConfig controls when the running body font size is re-estimated.
type BaselineConfig struct {
	// MinLines is the number of paragraph lines to accumulate before an update
	MinLines int `mapstructure:"min_lines" yaml:"min_lines"`

	// MinSamples is the number of span size samples to accumulate before an update
	MinSamples int `mapstructure:"min_samples" yaml:"min_samples"`
}

// DefaultBaselineConfig returns the default update thresholds.
func DefaultBaselineConfig() BaselineConfig {
	return BaselineConfig{
		MinLines:   50,
		MinSamples: 5,
	}
}

// FontBaselineTracker keeps the running estimate of a document's body font size.
// It is per-document state and must not be shared between documents.
type FontBaselineTracker struct {
	config   BaselineConfig
	baseline int
	samples  []int
	lines    int
}

// NewFontBaselineTracker creates a tracker holding the default baseline.
func NewFontBaselineTracker(config BaselineConfig) *FontBaselineTracker {
	return &FontBaselineTracker{
		config:   config,
		baseline: DefaultBaselineFontSize,
	}
}

// Baseline returns the current body font size estimate.
func (t *FontBaselineTracker) Baseline() int {
	return t.baseline
}

// Initialize sets the baseline to the most common rounded span size in blocks.
// The caller passes the first page's non-table text blocks.
func (t *FontBaselineTracker) Initialize(blocks []ContentBlock) int {
	var sizes []int
	for _, block := range blocks {
		if block.Kind != BlockText {
			continue
		}
		for _, span := range block.Spans() {
			sizes = append(sizes, span.RoundedSize())
		}
	}

	t.baseline = DefaultBaselineFontSize
	if mode, ok := modeInt(sizes); ok {
		t.baseline = mode
	}
	t.samples = nil
	t.lines = 0
	return t.baseline
}

// Observe records the span sizes and line count of a block classified as paragraph.
func (t *FontBaselineTracker) Observe(block ContentBlock) {
	for _, span := range block.Spans() {
		t.samples = append(t.samples, span.RoundedSize())
	}
	t.lines += len(block.Lines)
}

// Update recomputes the baseline once enough paragraph text has accumulated.
// It reports whether the baseline was recomputed.
func (t *FontBaselineTracker) Update() (int, bool) {
	if t.lines < t.config.MinLines || len(t.samples) < t.config.MinSamples {
		return t.baseline, false
	}
	if mode, ok := modeInt(t.samples); ok {
		t.baseline = mode
	}
	t.samples = nil
	t.lines = 0
	return t.baseline, true
}

// Reset restores the default baseline and drops accumulated samples.
func (t *FontBaselineTracker) Reset() {
	t.baseline = DefaultBaselineFontSize
	t.samples = nil
	t.lines = 0
}
