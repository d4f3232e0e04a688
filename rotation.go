package pdflayout

import (
	"math"
	"sort"
)

// rotationGroup is the set of words sharing one quantized text angle.
type rotationGroup struct {
	Rotation float64 // degrees, quantized
	Words    []enrichedWord
}

// groupWordsByRotation buckets words by their angle in 15 degree steps, largest
// bucket first. 360 is folded into 0.
func groupWordsByRotation(words []enrichedWord) []rotationGroup {
	const angleBucket = 15.0

	buckets := make(map[float64][]enrichedWord)
	for _, word := range words {
		angle := quantizeAngle(normalizeAngle(word.Rotation), angleBucket)
		if angle >= 360 {
			angle = 0
		}
		buckets[angle] = append(buckets[angle], word)
	}

	groups := make([]rotationGroup, 0, len(buckets))
	for angle, bucket := range buckets {
		groups = append(groups, rotationGroup{Rotation: angle, Words: bucket})
	}
	sort.Slice(groups, func(i, j int) bool {
		if len(groups[i].Words) != len(groups[j].Words) {
			return len(groups[i].Words) > len(groups[j].Words)
		}
		return groups[i].Rotation < groups[j].Rotation
	})
	return groups
}

// groupWordsIntoLinesWithRotation groups words into lines using the grouping
// that matches the text direction.
func groupWordsIntoLinesWithRotation(words []enrichedWord, rotation float64) []wordLine {
	if isVerticalAngle(rotation) {
		return groupWordsIntoVerticalLines(words)
	}
	return groupWordsIntoHorizontalLines(words)
}

// groupWordsIntoVerticalLines groups rotated words into columns of text.
func groupWordsIntoVerticalLines(words []enrichedWord) []wordLine {
	if len(words) == 0 {
		return nil
	}

	sorted := make([]enrichedWord, len(words))
	copy(sorted, words)
	sort.Slice(sorted, func(i, j int) bool {
		if math.Abs(sorted[i].Box.CenterX()-sorted[j].Box.CenterX()) < 3 {
			return sorted[i].Box.Y0 < sorted[j].Box.Y0
		}
		return sorted[i].Box.CenterX() < sorted[j].Box.CenterX()
	})

	var lines []wordLine
	current := wordLine{Words: []enrichedWord{sorted[0]}, Box: sorted[0].Box, Baseline: sorted[0].Box.CenterX(), Vertical: true}
	for _, word := range sorted[1:] {
		if math.Abs(word.Box.CenterX()-current.Baseline) < word.FontSize*0.8 {
			current.Words = append(current.Words, word)
			current.Box = current.Box.Union(word.Box)
			continue
		}
		lines = append(lines, current)
		current = wordLine{Words: []enrichedWord{word}, Box: word.Box, Baseline: word.Box.CenterX(), Vertical: true}
	}
	return append(lines, current)
}

// groupWordsIntoHorizontalLines groups words whose visual centers or baselines
// line up. Words are first ordered by visual position: words that overlap
// vertically are ordered by X, others by Y.
func groupWordsIntoHorizontalLines(words []enrichedWord) []wordLine {
	if len(words) == 0 {
		return nil
	}

	sorted := make([]enrichedWord, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Box, sorted[j].Box
		overlap := math.Min(a.Y1, b.Y1) - math.Max(a.Y0, b.Y0)
		if overlap > math.Min(a.Height(), b.Height())*0.3 {
			return a.X0 < b.X0
		}
		return a.Y0 < b.Y0
	})

	var lines []wordLine
	current := newWordLine(sorted[0])
	xHeight := sorted[0].XHeight

	for _, word := range sorted[1:] {
		centerDistance := math.Abs(word.Box.CenterY() - current.Box.CenterY())
		avgHeight := (current.Box.Height() + word.Box.Height()) / 2

		threshold := 0.6 * xHeight
		if threshold == 0 {
			threshold = 5.0
		}

		if centerDistance < avgHeight || math.Abs(word.Baseline-current.Baseline) < threshold {
			n := float64(len(current.Words))
			current.Words = append(current.Words, word)
			current.Box = current.Box.Union(word.Box)
			current.Baseline = (current.Baseline*n + word.Baseline) / (n + 1)
			continue
		}

		lines = append(lines, current)
		current = newWordLine(word)
		xHeight = word.XHeight
	}
	return append(lines, current)
}

func newWordLine(word enrichedWord) wordLine {
	return wordLine{
		Words:    []enrichedWord{word},
		Box:      word.Box,
		Baseline: word.Baseline,
	}
}
