package pdflayout

import (
	"math"
	"sort"
	"strings"
)

// ColumnOptions controls column box detection.
type ColumnOptions struct {
	// HeaderMargin excludes text this close to the page top
	HeaderMargin float64 `mapstructure:"header_margin" yaml:"header_margin"`

	// FooterMargin excludes text this close to the page bottom
	FooterMargin float64 `mapstructure:"footer_margin" yaml:"footer_margin"`

	// NoImageText ignores text blocks lying on top of an image
	NoImageText bool `mapstructure:"no_image_text" yaml:"no_image_text"`

	// RunTolerance is how close box bottoms must be to be re-sorted left to right
	RunTolerance float64 `mapstructure:"run_tolerance" yaml:"run_tolerance"`

	// Templates are the calibrated multi-column layouts to flag
	Templates []ColumnTemplate `mapstructure:"templates" yaml:"templates"`
}

// DefaultColumnOptions returns the default column detection settings.
func DefaultColumnOptions() ColumnOptions {
	return ColumnOptions{
		HeaderMargin: 50,
		FooterMargin: 50,
		NoImageText:  true,
		RunTolerance: 10,
		Templates:    DefaultColumnTemplates(),
	}
}

// columnDetector holds the obstacles of one page while its columns are built.
type columnDetector struct {
	backgrounds []Box // filled paths, sorted by top then left
	images      []Box
	vertical    []Box // blocks whose first line is not horizontal
}

// ColumnBoxes returns boxes that each wrap one reading column of text on the page,
// in reading order. Coloured backgrounds, images and vertical text are never crossed
// when a box is stretched towards the right margin.
func ColumnBoxes(page *Page, opts ColumnOptions) []Box {
	if page == nil {
		return []Box{}
	}

	d := &columnDetector{}
	for _, drawing := range page.Drawings {
		d.backgrounds = append(d.backgrounds, drawing.Outer())
	}
	sort.SliceStable(d.backgrounds, func(i, j int) bool {
		if d.backgrounds[i].Y0 != d.backgrounds[j].Y0 {
			return d.backgrounds[i].Y0 < d.backgrounds[j].Y0
		}
		return d.backgrounds[i].X0 < d.backgrounds[j].X0
	})
	for _, img := range page.Images() {
		d.images = append(d.images, img.Outer())
	}

	clip := Box{
		X0: 0,
		Y0: opts.HeaderMargin,
		X1: page.Width,
		Y1: page.Height - opts.FooterMargin,
	}

	var boxes []Box
	for _, block := range page.Blocks {
		if block.Kind != BlockText || len(block.Lines) == 0 {
			continue
		}

		blockBox := block.Box.Outer()
		if opts.NoImageText && containedIn(blockBox, d.images) > 0 {
			continue
		}
		if !block.Lines[0].Horizontal {
			d.vertical = append(d.vertical, blockBox)
			continue
		}

		var textBox Box
		found := false
		for _, line := range block.Lines {
			cy := line.Box.CenterY()
			if cy < clip.Y0 || cy > clip.Y1 {
				continue
			}
			if visibleRuneCount(strings.Join(spanTexts(line.Spans), "")) <= 1 {
				continue
			}
			lineBox := line.Box.Outer()
			if !found {
				textBox = lineBox
				found = true
			} else {
				textBox = textBox.Union(lineBox)
			}
		}
		if found && !textBox.IsEmpty() {
			boxes = append(boxes, textBox)
		}
	}

	sort.SliceStable(boxes, func(i, j int) bool {
		bi, bj := containedIn(boxes[i], d.backgrounds), containedIn(boxes[j], d.backgrounds)
		if bi != bj {
			return bi < bj
		}
		if boxes[i].Y0 != boxes[j].Y0 {
			return boxes[i].Y0 < boxes[j].Y0
		}
		return boxes[i].X0 < boxes[j].X0
	})

	boxes = d.extendRight(boxes, math.Trunc(page.Width))
	if len(boxes) == 0 {
		return []Box{}
	}

	return cleanColumns(d.join(boxes), opts.RunTolerance)
}

// extendRight stretches each box to the right page border when no other text,
// background, image or vertical text is in the way.
func (d *columnDetector) extendRight(boxes []Box, width float64) []Box {
	for i, bb := range boxes {
		if containedIn(bb, d.backgrounds) > 0 || containedIn(bb, d.images) > 0 {
			continue
		}

		temp := bb
		temp.X1 = width
		if intersectsAny(temp, d.backgrounds) || intersectsAny(temp, d.vertical) || intersectsAny(temp, d.images) {
			continue
		}
		if d.canExtend(temp, bb, boxes) {
			boxes[i] = temp
		}
	}
	return boxes
}

// join grows column boxes by absorbing horizontally overlapping boxes that share
// the same background, as long as the grown box does not swallow other text or
// cross an obstacle the right-extension pass also respects.
func (d *columnDetector) join(boxes []Box) []Box {
	columns := []Box{boxes[0]}
	pending := boxes[1:]

	for i, bb := range pending {
		target := -1
		var grown Box
		for j, column := range columns {
			if column.X1 < bb.X0 || bb.X1 < column.X0 {
				continue
			}
			if containedIn(column, d.backgrounds) != containedIn(bb, d.backgrounds) {
				continue
			}
			temp := bb.Union(column)
			if d.crossesObstacle(temp, column, bb) {
				continue
			}
			if d.canExtend(temp, column, columns) {
				target, grown = j, temp
				break
			}
		}

		if target < 0 {
			columns = append(columns, bb)
			target, grown = len(columns)-1, bb
		}

		if d.canExtend(grown, bb, pending[i:]) {
			columns[target] = grown
		} else {
			columns = append(columns, bb)
		}
	}
	return columns
}

// crossesObstacle reports whether temp, the union of a and b, covers an image or
// a background that does not hold both a and b.
func (d *columnDetector) crossesObstacle(temp, a, b Box) bool {
	holdsBoth := func(container Box) bool {
		return container.Contains(a) && container.Contains(b)
	}
	for _, img := range d.images {
		if temp.Intersects(img) && !holdsBoth(img) {
			return true
		}
	}
	for _, bg := range d.backgrounds {
		if temp.Intersects(bg) && !holdsBoth(bg) {
			return true
		}
	}
	return false
}

// canExtend reports whether temp, a grown version of self, stays clear of
// vertical text and of every other box in others.
func (d *columnDetector) canExtend(temp, self Box, others []Box) bool {
	if intersectsAny(temp, d.vertical) {
		return false
	}
	for _, other := range others {
		if other == self {
			continue
		}
		if temp.Intersects(other) {
			return false
		}
	}
	return true
}

// cleanColumns drops duplicate boxes and re-sorts runs of boxes with nearly
// equal bottoms from left to right.
func cleanColumns(boxes []Box, runTolerance float64) []Box {
	unique := make([]Box, 0, len(boxes))
	seen := make(map[Box]bool, len(boxes))
	for _, b := range boxes {
		if seen[b] {
			continue
		}
		seen[b] = true
		unique = append(unique, b)
	}
	if len(unique) < 2 {
		return unique
	}

	byLeft := func(run []Box) {
		sort.SliceStable(run, func(i, j int) bool { return run[i].X0 < run[j].X0 })
	}

	start := 0
	bottom := unique[0].Y1
	for i := 1; i < len(unique); i++ {
		if math.Abs(unique[i].Y1-bottom) > runTolerance {
			byLeft(unique[start:i])
			start = i
			bottom = unique[i].Y1
		}
	}
	byLeft(unique[start:])
	return unique
}

// containedIn returns the 1-based index of the first box in boxes containing b, or 0.
func containedIn(b Box, boxes []Box) int {
	for i, container := range boxes {
		if container.Contains(b) {
			return i + 1
		}
	}
	return 0
}

func intersectsAny(b Box, boxes []Box) bool {
	for _, other := range boxes {
		if b.Intersects(other) {
			return true
		}
	}
	return false
}

func spanTexts(spans []Span) []string {
	texts := make([]string, len(spans))
	for i, span := range spans {
		texts[i] = strings.TrimSpace(span.Text)
	}
	return texts
}
