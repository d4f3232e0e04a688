package pdflayout

import (
	"math"
	"strings"
)

// Box represents an axis-aligned bounding box in page coordinates.
// The origin is the top-left corner of the page and Y grows downward.
type Box struct {
	X0 float64 // Left
	Y0 float64 // Top
	X1 float64 // Right
	Y1 float64 // Bottom
}

// NewBox returns a box with its corners normalised so that X0<=X1 and Y0<=Y1.
func NewBox(x0, y0, x1, y1 float64) Box {
	return Box{
		X0: math.Min(x0, x1),
		Y0: math.Min(y0, y1),
		X1: math.Max(x0, x1),
		Y1: math.Max(y0, y1),
	}
}

// Width returns the width of the box.
func (b Box) Width() float64 {
	return b.X1 - b.X0
}

// Height returns the height of the box.
func (b Box) Height() float64 {
	return b.Y1 - b.Y0
}

// CenterX returns the horizontal center of the box.
func (b Box) CenterX() float64 {
	return (b.X0 + b.X1) / 2
}

// CenterY returns the vertical center of the box.
func (b Box) CenterY() float64 {
	return (b.Y0 + b.Y1) / 2
}

// Area returns the area of the box, 0 when it is empty.
func (b Box) Area() float64 {
	if b.IsEmpty() {
		return 0
	}
	return b.Width() * b.Height()
}

// IsEmpty reports whether the box has no area.
func (b Box) IsEmpty() bool {
	return b.X1 <= b.X0 || b.Y1 <= b.Y0
}

// Union returns the smallest box covering both b and o.
func (b Box) Union(o Box) Box {
	return Box{
		X0: math.Min(b.X0, o.X0),
		Y0: math.Min(b.Y0, o.Y0),
		X1: math.Max(b.X1, o.X1),
		Y1: math.Max(b.Y1, o.Y1),
	}
}

// Intersect returns the overlapping part of b and o. The result may be empty.
func (b Box) Intersect(o Box) Box {
	return Box{
		X0: math.Max(b.X0, o.X0),
		Y0: math.Max(b.Y0, o.Y0),
		X1: math.Min(b.X1, o.X1),
		Y1: math.Min(b.Y1, o.Y1),
	}
}

// Intersects reports whether b and o share a region with positive area.
// Boxes that only touch along an edge do not intersect.
func (b Box) Intersects(o Box) bool {
	return !b.Intersect(o).IsEmpty()
}

// Contains reports whether o lies entirely inside b (edges inclusive).
func (b Box) Contains(o Box) bool {
	return b.X0 <= o.X0 && b.Y0 <= o.Y0 && b.X1 >= o.X1 && b.Y1 >= o.Y1
}

// VerticalGap returns the distance between the vertical extents of b and o.
// Negative values mean the boxes overlap vertically.
func (b Box) VerticalGap(o Box) float64 {
	return math.Max(o.Y0-b.Y1, b.Y0-o.Y1)
}

// HorizontalGap returns the distance between the horizontal extents of b and o.
// Negative values mean the boxes overlap horizontally.
func (b Box) HorizontalGap(o Box) float64 {
	return math.Max(o.X0-b.X1, b.X0-o.X1)
}

// Outer snaps the box outward to the integer grid.
func (b Box) Outer() Box {
	return Box{
		X0: math.Floor(b.X0),
		Y0: math.Floor(b.Y0),
		X1: math.Ceil(b.X1),
		Y1: math.Ceil(b.Y1),
	}
}

// Ints truncates the coordinates to integers.
func (b Box) Ints() [4]int {
	return [4]int{int(b.X0), int(b.Y0), int(b.X1), int(b.Y1)}
}

// Pad grows the box by dx horizontally and dy vertically on each side.
func (b Box) Pad(dx, dy float64) Box {
	return Box{X0: b.X0 - dx, Y0: b.Y0 - dy, X1: b.X1 + dx, Y1: b.Y1 + dy}
}

// Span is a run of text sharing one font.
type Span struct {
	Text   string
	Font   string  // Font name as reported by the PDF
	Size   float64 // Font size in points, 0 when unknown
	Weight int     // Font weight (400 normal, 700 bold), 0 when unknown
	Flags  int     // PDF font descriptor flags
	Box    Box
}

// PDF font descriptor flags.
const (
	FontFlagFixedPitch = 1 << 0
	FontFlagItalic     = 1 << 6
	FontFlagForceBold  = 1 << 18
)

// IsBold reports whether the span is set in a bold face.
func (s Span) IsBold() bool {
	if s.Weight >= 700 || s.Flags&FontFlagForceBold != 0 {
		return true
	}
	return strings.Contains(strings.ToLower(s.Font), "bold")
}

// IsItalic reports whether the span is set in an italic or oblique face.
func (s Span) IsItalic() bool {
	if s.Flags&FontFlagItalic != 0 {
		return true
	}
	name := strings.ToLower(s.Font)
	return strings.Contains(name, "italic") || strings.Contains(name, "oblique")
}

// IsUnderline reports whether the font name carries an underline hint.
func (s Span) IsUnderline() bool {
	return strings.Contains(strings.ToLower(s.Font), "underline")
}

// RoundedSize returns the font size rounded to the nearest integer.
func (s Span) RoundedSize() int {
	return int(math.Round(s.Size))
}

// Line is an ordered sequence of spans on one baseline.
type Line struct {
	Spans      []Span
	Box        Box
	Horizontal bool // false for rotated or vertical text
}

// Text returns the concatenated text of the line.
func (l Line) Text() string {
	var sb strings.Builder
	for i, span := range l.Spans {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(span.Text)
	}
	return sb.String()
}

// BlockKind distinguishes text blocks from image blocks.
type BlockKind int

const (
	BlockText BlockKind = iota
	BlockImage
)

func (k BlockKind) String() string {
	if k == BlockImage {
		return "image"
	}
	return "text"
}

// ContentBlock is a unit of page content supplied by the page-content provider.
type ContentBlock struct {
	Box   Box
	Kind  BlockKind
	Lines []Line
}

// Text returns the block text with spans joined by single spaces.
func (b ContentBlock) Text() string {
	var parts []string
	for _, line := range b.Lines {
		for _, span := range line.Spans {
			parts = append(parts, span.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// Spans returns every span of the block in reading order.
func (b ContentBlock) Spans() []Span {
	var spans []Span
	for _, line := range b.Lines {
		spans = append(spans, line.Spans...)
	}
	return spans
}

// Page is the provider's view of one document page.
type Page struct {
	Number   int // 1-based
	Width    float64
	Height   float64
	Blocks   []ContentBlock
	Drawings []Box  // Filled vector paths (coloured backgrounds)
	Edges    []Edge // Ruling lines, used for table detection
}

// Images returns the boxes of all image blocks on the page.
func (p *Page) Images() []Box {
	var boxes []Box
	for _, b := range p.Blocks {
		if b.Kind == BlockImage {
			boxes = append(boxes, b.Box)
		}
	}
	return boxes
}
