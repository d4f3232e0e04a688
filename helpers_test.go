package pdflayout_test

import (
	"github.com/ivanvanderbyl/pdflayout"
)

const (
	pageWidth  = 612.0
	pageHeight = 792.0
)

func box(x0, y0, x1, y1 float64) pdflayout.Box {
	return pdflayout.Box{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

// textBlock builds a one-line text block set in a single regular span.
func textBlock(text string, b pdflayout.Box, size float64) pdflayout.ContentBlock {
	return spanBlock(b, pdflayout.Span{Text: text, Font: "Times-Roman", Size: size, Weight: 400, Box: b})
}

// boldBlock builds a one-line text block set in a single bold span.
func boldBlock(text string, b pdflayout.Box, size float64) pdflayout.ContentBlock {
	return spanBlock(b, pdflayout.Span{Text: text, Font: "Times-Bold", Size: size, Weight: 700, Box: b})
}

// spanBlock builds a one-line text block from spans.
func spanBlock(b pdflayout.Box, spans ...pdflayout.Span) pdflayout.ContentBlock {
	return pdflayout.ContentBlock{
		Box:  b,
		Kind: pdflayout.BlockText,
		Lines: []pdflayout.Line{
			{Spans: spans, Box: b, Horizontal: true},
		},
	}
}

// linesBlock builds a text block with one line per entry, each 12pt tall.
func linesBlock(x0, y0, x1 float64, texts ...string) pdflayout.ContentBlock {
	block := pdflayout.ContentBlock{Kind: pdflayout.BlockText}
	for i, text := range texts {
		top := y0 + float64(i)*14
		lb := box(x0, top, x1, top+12)
		block.Lines = append(block.Lines, pdflayout.Line{
			Spans:      []pdflayout.Span{{Text: text, Font: "Times-Roman", Size: 12, Box: lb}},
			Box:        lb,
			Horizontal: true,
		})
		if i == 0 {
			block.Box = lb
		} else {
			block.Box = block.Box.Union(lb)
		}
	}
	return block
}

func imageBlock(b pdflayout.Box) pdflayout.ContentBlock {
	return pdflayout.ContentBlock{Box: b, Kind: pdflayout.BlockImage}
}

func newPage(blocks ...pdflayout.ContentBlock) *pdflayout.Page {
	return &pdflayout.Page{
		Number: 1,
		Width:  pageWidth,
		Height: pageHeight,
		Blocks: blocks,
	}
}
