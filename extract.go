package pdflayout

import (
	"math"
	"strings"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/pkg/errors"
)

// enrichedChar is a single character with its font metadata, in top-left page coordinates.
type enrichedChar struct {
	Text       rune
	Box        Box
	FontSize   float64
	FontWeight int
	FontName   string
	FontFlags  int
	Angle      float32 // radians
}

// enrichedWord is a run of characters between word boundaries.
type enrichedWord struct {
	Text       string
	Box        Box
	FontSize   float64
	FontWeight int
	FontName   string
	FontFlags  int
	Baseline   float64 // Y of the text baseline
	XHeight    float64
	Rotation   float64 // degrees
}

// span converts the word into a span carrying the same font metadata.
func (w enrichedWord) span() Span {
	return Span{
		Text:   w.Text,
		Font:   w.FontName,
		Size:   w.FontSize,
		Weight: w.FontWeight,
		Flags:  w.FontFlags,
		Box:    w.Box,
	}
}

// isListMarker reports whether the word looks like a bullet or a list number.
func (w enrichedWord) isListMarker() bool {
	runes := []rune(w.Text)
	if len(runes) == 0 {
		return false
	}

	switch runes[0] {
	case '•', '◦', '▪', '▫', '–', '-', '*', '·':
		return len(runes) == 1
	}

	// "1." "12." "3)"
	last := runes[len(runes)-1]
	if last != '.' && last != ')' || len(runes) < 2 {
		return false
	}
	for _, r := range runes[:len(runes)-1] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ExtractPage builds the content blocks, vector drawings, ruling edges and image
// blocks of a loaded PDF page.
func ExtractPage(instance pdfium.Pdfium, page references.FPDF_PAGE, pageNumber int) (*Page, error) {
	pageWidth, err := instance.FPDF_GetPageWidthF(&requests.FPDF_GetPageWidthF{
		Page: requests.Page{
			ByReference: &page,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get page width")
	}

	pageHeight, err := instance.FPDF_GetPageHeightF(&requests.FPDF_GetPageHeightF{
		Page: requests.Page{
			ByReference: &page,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get page height")
	}

	result := &Page{
		Number: pageNumber,
		Width:  float64(pageWidth.PageWidth),
		Height: float64(pageHeight.PageHeight),
		Blocks: []ContentBlock{},
	}

	textPage, err := instance.FPDFText_LoadPage(&requests.FPDFText_LoadPage{
		Page: requests.Page{
			ByReference: &page,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load text page")
	}
	defer instance.FPDFText_ClosePage(&requests.FPDFText_ClosePage{
		TextPage: textPage.TextPage,
	})

	charCount, err := instance.FPDFText_CountChars(&requests.FPDFText_CountChars{
		TextPage: textPage.TextPage,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to count characters")
	}

	if charCount.Count > 0 {
		chars := extractEnrichedChars(instance, textPage.TextPage, charCount.Count, result.Height)
		words := groupCharsIntoWords(chars)
		words = expandLigatures(words)
		result.Blocks = append(result.Blocks, buildBlocks(words)...)
	}

	// Non-fatal: a page whose objects cannot be enumerated still has its text.
	objects, err := extractPageObjects(instance, page, result.Width, result.Height)
	if err == nil {
		result.Edges = objects.Edges
		result.Drawings = objects.Drawings
		for _, img := range objects.Images {
			result.Blocks = append(result.Blocks, ContentBlock{Box: img, Kind: BlockImage})
		}
		// Pictures take their reading-order place among the text blocks.
		sortBlocks(result.Blocks)
	}

	return result, nil
}

// extractEnrichedChars reads every character with its metadata. Characters that
// cannot be read are skipped; missing font data falls back to size 0 and weight 0.
func extractEnrichedChars(instance pdfium.Pdfium, textPage references.FPDF_TEXTPAGE, count int, pageHeight float64) []enrichedChar {
	chars := make([]enrichedChar, 0, count)

	for i := range count {
		unicodeRes, err := instance.FPDFText_GetUnicode(&requests.FPDFText_GetUnicode{
			TextPage: textPage,
			Index:    i,
		})
		if err != nil || unicodeRes.Unicode == 0 {
			continue
		}

		charBox, err := instance.FPDFText_GetCharBox(&requests.FPDFText_GetCharBox{
			TextPage: textPage,
			Index:    i,
		})
		if err != nil {
			continue
		}

		// PDF origin is bottom-left
		char := enrichedChar{
			Text: rune(unicodeRes.Unicode),
			Box: NewBox(
				charBox.Left,
				pageHeight-charBox.Top,
				charBox.Right,
				pageHeight-charBox.Bottom,
			),
		}

		if fontSize, err := instance.FPDFText_GetFontSize(&requests.FPDFText_GetFontSize{
			TextPage: textPage,
			Index:    i,
		}); err == nil {
			char.FontSize = fontSize.FontSize
		}

		if fontWeight, err := instance.FPDFText_GetFontWeight(&requests.FPDFText_GetFontWeight{
			TextPage: textPage,
			Index:    i,
		}); err == nil {
			char.FontWeight = fontWeight.FontWeight
		}

		if fontInfo, err := instance.FPDFText_GetFontInfo(&requests.FPDFText_GetFontInfo{
			TextPage: textPage,
			Index:    i,
		}); err == nil {
			char.FontName = fontInfo.FontName
			char.FontFlags = fontInfo.Flags
		}

		if angle, err := instance.FPDFText_GetCharAngle(&requests.FPDFText_GetCharAngle{
			TextPage: textPage,
			Index:    i,
		}); err == nil {
			char.Angle = angle.CharAngle
		}

		chars = append(chars, char)
	}

	return chars
}

func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isLowerCase(r rune) bool {
	return r >= 'a' && r <= 'z'
}

func isUpperCase(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

// isRotatedText reports whether an angle in radians is away from 0° and 180° by more than 10°.
func isRotatedText(angle float32) bool {
	degrees := normalizeAngle(float64(angle) * 180 / math.Pi)
	const tolerance = 10.0
	return !(degrees < tolerance || degrees > 360-tolerance || (degrees > 180-tolerance && degrees < 180+tolerance))
}

// shouldReverseCharOrder reports bottom-to-top text, which PDFium returns in reverse.
func shouldReverseCharOrder(angle float32) bool {
	degrees := normalizeAngle(float64(angle) * 180 / math.Pi)
	return degrees > 225 && degrees < 315
}

// detectWordBoundaries returns the indexes at which a new word starts.
// Horizontal text splits on whitespace and on a change of font size; rotated
// text additionally splits on gaps along the Y axis and on case or digit changes.
func detectWordBoundaries(chars []enrichedChar) []int {
	if len(chars) <= 1 {
		return nil
	}

	rotated := isRotatedText(chars[0].Angle)
	var avgCharHeight float64
	if rotated {
		for _, char := range chars {
			avgCharHeight += char.Box.Height()
		}
		avgCharHeight /= float64(len(chars))
	}

	var boundaries []int
	for i := 1; i < len(chars); i++ {
		prev, curr := chars[i-1], chars[i]

		if isWhitespace(curr.Text) {
			boundaries = append(boundaries, i)
			continue
		}

		// Line breaks without an explicit newline
		if !rotated && curr.Box.X0 < prev.Box.X0-prev.Box.Width() && curr.Box.Y0 > prev.Box.CenterY() {
			boundaries = append(boundaries, i)
			continue
		}

		if math.Round(curr.FontSize) != math.Round(prev.FontSize) || curr.FontName != prev.FontName {
			boundaries = append(boundaries, i)
			continue
		}

		if !rotated {
			continue
		}

		gapY := math.Abs(curr.Box.Y0 - prev.Box.Y1)
		switch {
		case avgCharHeight > 0 && gapY > avgCharHeight*0.3,
			isLowerCase(prev.Text) && isUpperCase(curr.Text),
			isDigit(prev.Text) && isAlpha(curr.Text),
			isAlpha(prev.Text) && isDigit(curr.Text):
			boundaries = append(boundaries, i)
		}
	}

	return boundaries
}

// groupCharsIntoWords splits the character stream into words.
func groupCharsIntoWords(chars []enrichedChar) []enrichedWord {
	if len(chars) == 0 {
		return nil
	}

	boundaries := detectWordBoundaries(chars)

	if shouldReverseCharOrder(chars[0].Angle) {
		reversed := make([]enrichedChar, len(chars))
		for i, char := range chars {
			reversed[len(chars)-1-i] = char
		}
		chars = reversed
		for i, b := range boundaries {
			boundaries[i] = len(chars) - b
		}
	}

	boundarySet := make(map[int]bool, len(boundaries))
	for _, b := range boundaries {
		boundarySet[b] = true
	}

	var words []enrichedWord
	var current []enrichedChar
	var wordBox Box

	flush := func() {
		if len(current) > 0 {
			words = append(words, aggregateWord(current, wordBox))
			current = nil
		}
	}

	for i, char := range chars {
		space := isWhitespace(char.Text)

		if boundarySet[i] && !space {
			flush()
		}

		if !space {
			if len(current) == 0 {
				wordBox = char.Box
			} else {
				wordBox = wordBox.Union(char.Box)
			}
			current = append(current, char)
		}

		if space || i == len(chars)-1 {
			flush()
		}
	}

	return words
}

// aggregateWord builds a word from its characters using the dominant font.
func aggregateWord(chars []enrichedChar, box Box) enrichedWord {
	var sb strings.Builder
	var totalSize, totalAngle float64
	weightCounts := make(map[int]int)
	fontCounts := make(map[string]int)

	for _, char := range chars {
		sb.WriteRune(char.Text)
		totalSize += char.FontSize
		totalAngle += float64(char.Angle)
		weightCounts[char.FontWeight]++
		fontCounts[char.FontName]++
	}

	word := enrichedWord{
		Text:       sb.String(),
		Box:        box,
		FontSize:   totalSize / float64(len(chars)),
		FontWeight: dominantKey(weightCounts, chars[0].FontWeight),
		FontName:   dominantKey(fontCounts, chars[0].FontName),
		FontFlags:  chars[0].FontFlags,
		Rotation:   totalAngle / float64(len(chars)) * 180 / math.Pi,
	}
	word.Baseline = calculateBaseline(word)
	word.XHeight = calculateXHeight(word)
	return word
}

// dominantKey returns the most frequent key, preferring fallback on ties.
func dominantKey[K comparable](counts map[K]int, fallback K) K {
	best, bestCount := fallback, counts[fallback]
	for key, count := range counts {
		if count > bestCount {
			best, bestCount = key, count
		}
	}
	return best
}

var ligatureMap = map[rune]string{
	0xFB00: "ff",
	0xFB01: "fi",
	0xFB02: "fl",
	0xFB03: "ffi",
	0xFB04: "ffl",
	0xFB05: "ft",
	0xFB06: "st",
}

// expandLigatures replaces ligature code points with their component letters.
func expandLigatures(words []enrichedWord) []enrichedWord {
	for i := range words {
		if !strings.ContainsFunc(words[i].Text, func(r rune) bool {
			_, ok := ligatureMap[r]
			return ok
		}) {
			continue
		}

		var sb strings.Builder
		for _, r := range words[i].Text {
			if expansion, ok := ligatureMap[r]; ok {
				sb.WriteString(expansion)
			} else {
				sb.WriteRune(r)
			}
		}
		words[i].Text = sb.String()
	}
	return words
}
