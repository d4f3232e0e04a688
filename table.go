package pdflayout

import (
	"math"
	"sort"
)

// TableLocator finds table outlines on a page.
type TableLocator interface {
	LocateTables(page *Page) []Box
}

// EdgeTableLocator locates tables from ruling lines and, optionally, text alignment.
type EdgeTableLocator struct {
	Settings TableSettings
}

// NewEdgeTableLocator creates a locator with the given settings.
func NewEdgeTableLocator(settings TableSettings) *EdgeTableLocator {
	return &EdgeTableLocator{Settings: settings}
}

// LocateTables returns the outline of every table on the page.
func (l *EdgeTableLocator) LocateTables(page *Page) []Box {
	tables := DetectTables(page, l.Settings)
	boxes := make([]Box, 0, len(tables))
	for _, table := range tables {
		boxes = append(boxes, table.Box)
	}
	return boxes
}

// textRuns returns the span boxes of the page's horizontal text lines.
// They stand in for words when inferring edges from text alignment.
func textRuns(page *Page) []Box {
	var runs []Box
	for _, block := range page.Blocks {
		if block.Kind != BlockText {
			continue
		}
		for _, line := range block.Lines {
			if !line.Horizontal {
				continue
			}
			for _, span := range line.Spans {
				if !span.Box.IsEmpty() && !isBlank(span.Text) {
					runs = append(runs, span.Box)
				}
			}
		}
	}
	return runs
}

// runsToEdgesHorizontal finds imaginary horizontal lines along the tops and
// bottoms of text rows with at least minRuns runs.
// Based on pdfplumber's words_to_edges_h function.
func runsToEdgesHorizontal(runs []Box, minRuns int) []Edge {
	if len(runs) == 0 {
		return nil
	}

	type row struct {
		top  float64
		runs []Box
	}

	var rows []row
	for _, run := range runs {
		found := false
		for i := range rows {
			if math.Abs(rows[i].top-run.Y0) < 1.0 {
				rows[i].runs = append(rows[i].runs, run)
				found = true
				break
			}
		}
		if !found {
			rows = append(rows, row{top: run.Y0, runs: []Box{run}})
		}
	}

	var large []row
	for _, r := range rows {
		if len(r.runs) >= minRuns {
			large = append(large, r)
		}
	}
	if len(large) == 0 {
		return nil
	}

	minX0, maxX1 := math.MaxFloat64, -math.MaxFloat64
	for _, r := range large {
		for _, run := range r.runs {
			minX0 = math.Min(minX0, run.X0)
			maxX1 = math.Max(maxX1, run.X1)
		}
	}

	var edges []Edge
	for _, r := range large {
		bottom := r.top
		for _, run := range r.runs {
			bottom = math.Max(bottom, run.Y1)
		}
		for _, y := range []float64{r.top, bottom} {
			edges = append(edges, Edge{
				X0:          minX0,
				X1:          maxX1,
				Top:         y,
				Bottom:      y,
				Width:       maxX1 - minX0,
				Orientation: "h",
			})
		}
	}
	return edges
}

// runsToEdgesVertical finds imaginary vertical lines where at least minRuns
// runs share a left edge, right edge or center.
// Based on pdfplumber's words_to_edges_v function.
func runsToEdgesVertical(runs []Box, minRuns int) []Edge {
	if len(runs) == 0 {
		return nil
	}

	type cluster struct {
		x    float64
		runs []Box
	}

	groupBy := func(coord func(Box) float64) []cluster {
		var clusters []cluster
		for _, run := range runs {
			x := coord(run)
			found := false
			for i := range clusters {
				if math.Abs(clusters[i].x-x) < 1.0 {
					clusters[i].runs = append(clusters[i].runs, run)
					found = true
					break
				}
			}
			if !found {
				clusters = append(clusters, cluster{x: x, runs: []Box{run}})
			}
		}
		return clusters
	}

	all := groupBy(func(b Box) float64 { return b.X0 })
	all = append(all, groupBy(func(b Box) float64 { return b.X1 })...)
	all = append(all, groupBy(Box.CenterX)...)

	sort.SliceStable(all, func(i, j int) bool {
		return len(all[i].runs) > len(all[j].runs)
	})

	// Keep the largest non-overlapping clusters.
	var condensed []Box
	for _, c := range all {
		if len(c.runs) < minRuns {
			break
		}
		outline := c.runs[0]
		for _, run := range c.runs[1:] {
			outline = outline.Union(run)
		}
		overlaps := false
		for _, existing := range condensed {
			if outline.X1 >= existing.X0 && outline.X0 <= existing.X1 &&
				outline.Y1 >= existing.Y0 && outline.Y0 <= existing.Y1 {
				overlaps = true
				break
			}
		}
		if !overlaps {
			condensed = append(condensed, outline)
		}
	}
	if len(condensed) == 0 {
		return nil
	}

	sort.Slice(condensed, func(i, j int) bool {
		return condensed[i].X0 < condensed[j].X0
	})

	extent := condensed[0]
	for _, b := range condensed[1:] {
		extent = extent.Union(b)
	}

	vertical := func(x float64) Edge {
		return Edge{
			X0:          x,
			X1:          x,
			Top:         extent.Y0,
			Bottom:      extent.Y1,
			Height:      extent.Height(),
			Orientation: "v",
		}
	}

	edges := make([]Edge, 0, len(condensed)+1)
	for _, b := range condensed {
		edges = append(edges, vertical(b.X0))
	}
	return append(edges, vertical(extent.X1))
}

// tableEdges collects the candidate edges for the configured strategies.
// The lines strategy only trusts drawn rules and never falls back to text.
func tableEdges(page *Page, settings TableSettings) []Edge {
	usesLines := func(strategy string) bool {
		return strategy == StrategyLines || strategy == StrategyBoth
	}
	usesText := func(strategy string) bool {
		return strategy == StrategyText || strategy == StrategyBoth
	}

	var edges []Edge
	for _, edge := range page.Edges {
		if edge.Orientation == "v" && usesLines(settings.VerticalStrategy) ||
			edge.Orientation == "h" && usesLines(settings.HorizontalStrategy) {
			edges = append(edges, edge)
		}
	}

	if usesText(settings.VerticalStrategy) || usesText(settings.HorizontalStrategy) {
		runs := textRuns(page)
		if usesText(settings.VerticalStrategy) {
			edges = append(edges, runsToEdgesVertical(runs, settings.MinWordsVertical)...)
		}
		if usesText(settings.HorizontalStrategy) {
			edges = append(edges, runsToEdgesHorizontal(runs, settings.MinWordsHorizontal)...)
		}
	}
	return edges
}

// DetectTables finds tables in a page from its ruling lines or text alignment.
// Based on pdfplumber's TableFinder supporting multiple strategies.
func DetectTables(page *Page, settings TableSettings) []Table {
	edges := tableEdges(page, settings)
	if len(edges) == 0 {
		return nil
	}

	edges = mergeEdges(edges, settings)
	edges = filterEdgesByLength(edges, settings.EdgeMinLength)

	cells := intersectionsToCells(findIntersections(edges, settings))

	minCells := settings.MinCells
	if minCells < 1 {
		minCells = 1
	}

	var tables []Table
	for _, group := range cellsToTables(cells, minCells) {
		tables = append(tables, newTable(group))
	}
	if settings.DuplicateOverlap > 0 {
		tables = deduplicateTables(tables, settings.DuplicateOverlap)
	}

	sort.SliceStable(tables, func(i, j int) bool {
		if tables[i].Box.Y0 != tables[j].Box.Y0 {
			return tables[i].Box.Y0 < tables[j].Box.Y0
		}
		return tables[i].Box.X0 < tables[j].Box.X0
	})
	return tables
}
