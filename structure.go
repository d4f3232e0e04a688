package pdflayout

import (
	"math"
	"sort"
	"strings"
)

// wordLine is a line of words before it is turned into spans.
type wordLine struct {
	Words    []enrichedWord
	Box      Box
	Baseline float64 // X center for vertical lines
	Vertical bool
}

// fontSize returns the average font size of the line's words.
func (l wordLine) fontSize() float64 {
	var total float64
	for _, word := range l.Words {
		total += word.FontSize
	}
	if len(l.Words) == 0 || total == 0 {
		return DefaultBaselineFontSize
	}
	return total / float64(len(l.Words))
}

// buildBlocks groups words into lines and lines into content blocks, in
// top-to-bottom, left-to-right order.
func buildBlocks(words []enrichedWord) []ContentBlock {
	if len(words) == 0 {
		return nil
	}

	var blocks []ContentBlock
	for _, group := range groupWordsByRotation(words) {
		lines := groupWordsIntoLinesWithRotation(group.Words, group.Rotation)

		if isVerticalAngle(group.Rotation) {
			for _, line := range lines {
				blocks = append(blocks, newContentBlock([]wordLine{line}, false))
			}
			continue
		}

		var split []wordLine
		for _, line := range lines {
			line.Words = mergeCloseWords(line.Words)
			split = append(split, splitLineOnGaps(line)...)
		}
		for _, blockLines := range groupLinesIntoBlocks(split) {
			blocks = append(blocks, newContentBlock(blockLines, isUpright(blockLines[0])))
		}
	}

	sortBlocks(blocks)
	return blocks
}

// sortBlocks orders blocks top to bottom, then left to right.
func sortBlocks(blocks []ContentBlock) {
	sort.SliceStable(blocks, func(i, j int) bool {
		if blocks[i].Box.Y0 != blocks[j].Box.Y0 {
			return blocks[i].Box.Y0 < blocks[j].Box.Y0
		}
		return blocks[i].Box.X0 < blocks[j].Box.X0
	})
}

// isUpright reports whether the line reads left to right without rotation.
func isUpright(line wordLine) bool {
	if line.Vertical || len(line.Words) == 0 {
		return false
	}
	angle := quantizeAngle(normalizeAngle(line.Words[0].Rotation), 15)
	return angle == 0 || angle == 360
}

// splitLineOnGaps breaks a line where the gap between words is too wide to be
// a word space, which separates the columns of multi-column layouts.
func splitLineOnGaps(line wordLine) []wordLine {
	if len(line.Words) <= 1 {
		return []wordLine{line}
	}

	var parts []wordLine
	current := newWordLine(line.Words[0])
	for _, word := range line.Words[1:] {
		prev := current.Words[len(current.Words)-1]
		limit := math.Max(1.5*math.Max(prev.FontSize, word.FontSize), 6)
		if word.Box.X0-prev.Box.X1 > limit {
			parts = append(parts, current)
			current = newWordLine(word)
			continue
		}
		current.Words = append(current.Words, word)
		current.Box = current.Box.Union(word.Box)
	}
	return append(parts, current)
}

// groupLinesIntoBlocks attaches each line to the block directly above it when the
// gap is within the page's adaptive paragraph threshold and the font size is
// similar. Lines starting with a list marker always open a new block.
func groupLinesIntoBlocks(lines []wordLine) [][]wordLine {
	if len(lines) == 0 {
		return nil
	}

	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].Box.Y0 != lines[j].Box.Y0 {
			return lines[i].Box.Y0 < lines[j].Box.Y0
		}
		return lines[i].Box.X0 < lines[j].Box.X0
	})

	threshold := calculateDynamicThreshold(lines)

	var blocks [][]wordLine
	for _, line := range lines {
		target := -1
		var targetBottom float64
		for i, block := range blocks {
			last := block[len(block)-1]
			if !overlapsHorizontally(last.Box, line.Box) || last.Box.Y1 > line.Box.Y1 {
				continue
			}
			if target < 0 || last.Box.Y1 > targetBottom {
				target, targetBottom = i, last.Box.Y1
			}
		}

		if target >= 0 && continuesBlock(blocks[target], line, threshold) {
			blocks[target] = append(blocks[target], line)
			continue
		}
		blocks = append(blocks, []wordLine{line})
	}
	return blocks
}

// continuesBlock reports whether line belongs to the block above it.
func continuesBlock(block []wordLine, line wordLine, threshold float64) bool {
	if len(line.Words) > 0 && line.Words[0].isListMarker() {
		return false
	}

	last := block[len(block)-1]
	avgSize := blockFontSize(block)
	ratio := line.fontSize() / avgSize
	if ratio < 0.8 || ratio > 1.2 {
		return false
	}

	gap := line.Box.Y0 - last.Box.Y1
	return gap/avgSize <= threshold
}

// calculateDynamicThreshold derives the paragraph break gap, relative to the
// font size, from the distribution of gaps between vertically adjacent lines.
func calculateDynamicThreshold(lines []wordLine) float64 {
	if len(lines) < 3 {
		return 0.9
	}

	var gaps, sizes []float64
	for i, line := range lines {
		for _, next := range lines[i+1:] {
			if next.Box.Y0 < line.Box.Y1-1 || !overlapsHorizontally(line.Box, next.Box) {
				continue
			}
			gaps = append(gaps, next.Box.Y0-line.Box.Y1)
			sizes = append(sizes, line.fontSize())
			break
		}
	}
	if len(gaps) == 0 {
		return 0.9
	}

	medianSize := calculateMedian(sizes)
	if medianSize == 0 {
		medianSize = DefaultBaselineFontSize
	}
	threshold := (calculateMedian(gaps) + 1.5*calculateStdDev(gaps)) / medianSize
	return clamp(threshold, 0.6, 1.5)
}

func blockFontSize(lines []wordLine) float64 {
	var total float64
	var count int
	for _, line := range lines {
		for _, word := range line.Words {
			total += word.FontSize
			count++
		}
	}
	if count == 0 || total == 0 {
		return DefaultBaselineFontSize
	}
	return total / float64(count)
}

func overlapsHorizontally(a, b Box) bool {
	return math.Min(a.X1, b.X1)-math.Max(a.X0, b.X0) > 0
}

// newContentBlock converts grouped lines into a text block.
func newContentBlock(lines []wordLine, horizontal bool) ContentBlock {
	block := ContentBlock{Kind: BlockText, Box: lines[0].Box}
	for _, line := range lines {
		block.Box = block.Box.Union(line.Box)
		block.Lines = append(block.Lines, Line{
			Spans:      wordsToSpans(line.Words),
			Box:        line.Box,
			Horizontal: horizontal,
		})
	}
	return block
}

// wordsToSpans joins consecutive words that share a font into spans.
func wordsToSpans(words []enrichedWord) []Span {
	var spans []Span
	for _, word := range words {
		if n := len(spans); n > 0 && sameFont(spans[n-1], word) {
			spans[n-1].Box = spans[n-1].Box.Union(word.Box)
			spans[n-1].Text += " " + word.Text
			continue
		}
		spans = append(spans, word.span())
	}
	return spans
}

func sameFont(span Span, word enrichedWord) bool {
	return span.Font == word.FontName &&
		span.RoundedSize() == int(math.Round(word.FontSize)) &&
		span.Weight == word.FontWeight &&
		span.Flags == word.FontFlags
}

// mergeCloseWords joins words separated by less than 2pt, which PDFs with
// irregular character spacing split apart. Single punctuation marks stay separate.
func mergeCloseWords(words []enrichedWord) []enrichedWord {
	if len(words) <= 1 {
		return words
	}

	const gapThreshold = 2.0

	merged := []enrichedWord{words[0]}
	for _, word := range words[1:] {
		prev := &merged[len(merged)-1]
		if word.Box.X0-prev.Box.X1 < gapThreshold && !isPunctuationWord(word.Text) && prev.FontName == word.FontName {
			prev.Text += word.Text
			prev.Box = prev.Box.Union(word.Box)
			continue
		}
		merged = append(merged, word)
	}
	return merged
}

func isPunctuationWord(text string) bool {
	runes := []rune(text)
	if len(runes) != 1 {
		return false
	}
	return strings.ContainsRune(".,;:!?-()[]{}", runes[0])
}
