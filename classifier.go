package pdflayout

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// ClassifierConfig holds the geometric thresholds used by the classification rules.
// Coordinates are in page points.
type ClassifierConfig struct {
	// HeaderMargin is the distance from the page top inside which a block is a header
	HeaderMargin float64 `mapstructure:"header_margin" yaml:"header_margin"`

	// FooterMargin is the distance from the page bottom inside which a block is a footer
	FooterMargin float64 `mapstructure:"footer_margin" yaml:"footer_margin"`

	// FootnoteZone is the fraction of the page height below which a block is a footnote
	FootnoteZone float64 `mapstructure:"footnote_zone" yaml:"footnote_zone"`

	// ListMarkerIndent is the left edge of a list item's first line (the marker column)
	ListMarkerIndent float64 `mapstructure:"list_marker_indent" yaml:"list_marker_indent"`

	// ListTextIndent is the left edge of a list item's wrapped continuation lines
	ListTextIndent float64 `mapstructure:"list_text_indent" yaml:"list_text_indent"`

	// IndentTolerance is how far a block's left edge may sit from a list indent
	IndentTolerance float64 `mapstructure:"indent_tolerance" yaml:"indent_tolerance"`

	// FormulaPadding is added above and below formulas containing a large operator
	FormulaPadding float64 `mapstructure:"formula_padding" yaml:"formula_padding"`

	// FootnoteMaxWords is the longest styled text still considered a footnote
	FootnoteMaxWords int `mapstructure:"footnote_max_words" yaml:"footnote_max_words"`

	// MathFonts are lower-case font name fragments that mark a formula
	MathFonts []string `mapstructure:"math_fonts" yaml:"math_fonts"`
}

// DefaultClassifierConfig returns thresholds calibrated for documents with a
// 1.25in left margin and 0.85in hanging list indent.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		HeaderMargin:     60,
		FooterMargin:     60,
		FootnoteZone:     0.9,
		ListMarkerIndent: 133.2,
		ListTextIndent:   151.2,
		IndentTolerance:  1.5,
		FormulaPadding:   5,
		FootnoteMaxWords: 40,
		MathFonts:        []string{"math", "cmmi", "cmsy", "cmex"},
	}
}

// PrevBlockMemo remembers the most recently classified block.
// It is only consulted to detect wrapped continuation lines of list items.
type PrevBlockMemo struct {
	Type  RegionType
	Text  string
	Box   Box
	Valid bool
}

// ClassifyContext carries the per-document state a classification depends on.
type ClassifyContext struct {
	PageHeight  float64
	Baseline    int
	LineSpacing float64
	Prev        PrevBlockMemo
}

// RuleInput is what each classification rule sees.
type RuleInput struct {
	Block   ContentBlock
	Text    string // NFC-normalised block text
	Context ClassifyContext
	Config  ClassifierConfig
}

// Rule assigns Type to a block when Match succeeds. Match returns the
// region box, which may differ from the block box.
type Rule struct {
	Type  RegionType
	Match func(in *RuleInput) (Box, bool)
}

var (
	tableCaptionPattern   = regexp.MustCompile(`(?i)^(Таблица|Табл\.|Table|Табл)\s*\d*\s*[-.—]`)
	pictureCaptionPattern = regexp.MustCompile(`(?i)^(Рисунок|Рис\.|Figure)\s*\d*\s*[-.—]`)
	numberedListPattern   = regexp.MustCompile(`^\d+\.\s`)
	markedListPattern     = regexp.MustCompile(`^\s*[-•*–·]\s`)
	mathOperatorPattern   = regexp.MustCompile(`[+\-*/=()]`)
	mathSymbolPattern     = regexp.MustCompile(`[∪∩≈≠∞∑∏√∂∇⊕⊗≡⊂∈∉∫]`)
	mathKeywordPattern    = regexp.MustCompile(`log|ln|lim|∫|∑|∏`)
	largeOperatorPattern  = regexp.MustCompile(`[∑∏∫]`)
	footnotePattern       = regexp.MustCompile(`^\[\^?\d+\]|\d+\)|\d+\.$|\[\d+\]|\d+[\)\.\]]`)
	superscriptPattern    = regexp.MustCompile(`[⁰¹²³⁴⁵⁶⁷⁸⁹]`)
)

// Rules returns the classification rules in priority order. The first rule
// that matches decides the block's type; RegionParagraph is the fallback.
func Rules() []Rule {
	return []Rule{
		{Type: RegionPicture, Match: matchPicture},
		{Type: RegionTableSignature, Match: matchCaption(tableCaptionPattern)},
		{Type: RegionPictureSignature, Match: matchCaption(pictureCaptionPattern)},
		{Type: RegionHeader, Match: matchHeader},
		{Type: RegionNumberedList, Match: matchList(RegionNumberedList, numberedListPattern)},
		{Type: RegionMarkedList, Match: matchList(RegionMarkedList, markedListPattern)},
		{Type: RegionFooter, Match: matchFooter},
		{Type: RegionFormula, Match: matchFormula},
		{Type: RegionFootnote, Match: matchFootnote},
		{Type: RegionTitle, Match: matchTitle},
	}
}

// BlockClassifier assigns a region type to content blocks.
type BlockClassifier struct {
	config ClassifierConfig
	rules  []Rule
}

// NewBlockClassifier creates a classifier using the default rule order.
func NewBlockClassifier(config ClassifierConfig) *BlockClassifier {
	return &BlockClassifier{
		config: config,
		rules:  Rules(),
	}
}

// Classify returns the type of block and the box to record for it.
// It never fails: text no rule recognises is a paragraph.
func (c *BlockClassifier) Classify(block ContentBlock, ctx ClassifyContext) (RegionType, Box) {
	in := &RuleInput{
		Block:   block,
		Text:    normalizeText(block.Text()),
		Context: ctx,
		Config:  c.config,
	}
	for _, rule := range c.rules {
		if box, ok := rule.Match(in); ok {
			return rule.Type, box
		}
	}
	return RegionParagraph, block.Box
}

func matchPicture(in *RuleInput) (Box, bool) {
	return in.Block.Box, in.Block.Kind == BlockImage
}

func matchCaption(pattern *regexp.Regexp) func(in *RuleInput) (Box, bool) {
	return func(in *RuleInput) (Box, bool) {
		text := strings.TrimSpace(in.Text)
		return in.Block.Box, firstRuneUpper(text) && pattern.MatchString(text)
	}
}

func matchHeader(in *RuleInput) (Box, bool) {
	return in.Block.Box, in.Block.Box.Y0 < in.Config.HeaderMargin
}

func matchFooter(in *RuleInput) (Box, bool) {
	return in.Block.Box, in.Block.Box.Y1 > in.Context.PageHeight-in.Config.FooterMargin
}

// matchList recognises a list item either by its leading marker at the marker
// indent, or as the wrapped continuation of an item of the same type.
func matchList(listType RegionType, marker *regexp.Regexp) func(in *RuleInput) (Box, bool) {
	return func(in *RuleInput) (Box, bool) {
		box := in.Block.Box
		if allBold(in.Block.Spans()) {
			return box, false
		}

		cfg := in.Config
		if marker.MatchString(in.Text) && nearIndent(box.X0, cfg.ListMarkerIndent, cfg.IndentTolerance) {
			return box, true
		}

		prev := in.Context.Prev
		if !prev.Valid || prev.Type != listType {
			return box, false
		}
		gap := box.Y0 - prev.Box.Y1
		return box, gap < in.Context.LineSpacing && nearIndent(box.X0, cfg.ListTextIndent, cfg.IndentTolerance)
	}
}

func matchFormula(in *RuleInput) (Box, bool) {
	text := in.Text
	box := in.Block.Box

	formula := false
	for _, span := range in.Block.Spans() {
		if isMathFont(span.Font, in.Config.MathFonts) {
			formula = true
			break
		}
	}
	if !formula {
		formula = (hasDigit(text) && mathOperatorPattern.MatchString(text)) ||
			mathSymbolPattern.MatchString(text) ||
			hasGreek(text) ||
			mathKeywordPattern.MatchString(text)
	}
	if !formula {
		return box, false
	}

	if largeOperatorPattern.MatchString(text) {
		box = box.Pad(0, in.Config.FormulaPadding)
	}
	return box, true
}

func matchFootnote(in *RuleInput) (Box, bool) {
	text := strings.TrimSpace(in.Text)
	box := in.Block.Box

	if footnotePattern.MatchString(text) || superscriptPattern.MatchString(text) {
		return box, true
	}
	if box.Y0 > in.Config.FootnoteZone*in.Context.PageHeight {
		return box, true
	}

	words := strings.Fields(text)
	if len(words) == 0 || len(words) > in.Config.FootnoteMaxWords || !hasLetter(text) {
		return box, false
	}
	for _, span := range in.Block.Spans() {
		if span.IsItalic() || span.IsUnderline() {
			return box, true
		}
	}
	return box, false
}

// matchTitle requires a bold span and a modal size at least two points above
// the baseline. Size 26 is reserved for top-level headings and always qualifies.
func matchTitle(in *RuleInput) (Box, bool) {
	box := in.Block.Box
	bold := false
	var sizes []int
	for _, span := range in.Block.Spans() {
		if span.IsBold() {
			bold = true
		}
		if size := span.RoundedSize(); size > 0 {
			sizes = append(sizes, size)
		}
	}
	if !bold {
		return box, false
	}

	mode, ok := modeInt(sizes)
	if !ok {
		return box, false
	}
	if mode >= in.Context.Baseline+2 {
		return box, true
	}
	for _, size := range sizes {
		if size == 26 {
			return box, true
		}
	}
	return box, false
}

func allBold(spans []Span) bool {
	if len(spans) == 0 {
		return false
	}
	for _, span := range spans {
		if !span.IsBold() {
			return false
		}
	}
	return true
}

func nearIndent(x, indent, tolerance float64) bool {
	return math.Abs(x-indent) <= tolerance
}

func isMathFont(name string, fragments []string) bool {
	name = strings.ToLower(name)
	for _, fragment := range fragments {
		if fragment != "" && strings.Contains(name, fragment) {
			return true
		}
	}
	return false
}

// isBlank reports whether a text block carries no visible characters.
func isBlank(text string) bool {
	return strings.IndexFunc(text, func(r rune) bool { return !unicode.IsSpace(r) }) < 0
}
