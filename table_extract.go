package pdflayout

import (
	"math"
	"sort"
)

// position returns the coordinate an edge sits at across its orientation.
func (e Edge) position() float64 {
	if e.Orientation == "v" {
		return e.X0
	}
	return e.Top
}

// start and end return the extent of the edge along its orientation.
func (e Edge) start() float64 {
	if e.Orientation == "v" {
		return e.Top
	}
	return e.X0
}

func (e Edge) end() float64 {
	if e.Orientation == "v" {
		return e.Bottom
	}
	return e.X1
}

// mergeEdges snaps close parallel edges onto a shared position, then joins
// collinear pieces into single edges.
func mergeEdges(edges []Edge, settings TableSettings) []Edge {
	if settings.SnapXTolerance > 0 || settings.SnapYTolerance > 0 {
		edges = snapEdges(edges, settings.SnapXTolerance, settings.SnapYTolerance)
	}

	type edgeKey struct {
		orientation string
		position    float64
	}

	grouped := make(map[edgeKey][]Edge)
	var keys []edgeKey
	for _, edge := range edges {
		key := edgeKey{orientation: edge.Orientation, position: edge.position()}
		if _, ok := grouped[key]; !ok {
			keys = append(keys, key)
		}
		grouped[key] = append(grouped[key], edge)
	}

	// Stable order keeps the cell scan deterministic.
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].orientation != keys[j].orientation {
			return keys[i].orientation < keys[j].orientation
		}
		return keys[i].position < keys[j].position
	})

	var result []Edge
	for _, key := range keys {
		tolerance := settings.JoinXTolerance
		if key.orientation == "v" {
			tolerance = settings.JoinYTolerance
		}
		result = append(result, joinEdgeGroup(grouped[key], tolerance)...)
	}
	return result
}

// snapEdges moves vertical edges sharing an x and horizontal edges sharing a
// y, within tolerance, to the cluster average.
func snapEdges(edges []Edge, xTol, yTol float64) []Edge {
	var vertical, horizontal []Edge
	for _, e := range edges {
		if e.Orientation == "v" {
			vertical = append(vertical, e)
		} else {
			horizontal = append(horizontal, e)
		}
	}
	return append(snapObjects(vertical, xTol), snapObjects(horizontal, yTol)...)
}

// snapObjects clusters edges by position and shifts every member onto the
// running mean of its cluster.
func snapObjects(edges []Edge, tolerance float64) []Edge {
	if len(edges) == 0 {
		return edges
	}

	type cluster struct {
		value   float64
		members []int
	}

	var clusters []cluster
	for i, edge := range edges {
		val := edge.position()
		found := false
		for j := range clusters {
			if math.Abs(clusters[j].value-val) <= tolerance {
				n := float64(len(clusters[j].members))
				clusters[j].members = append(clusters[j].members, i)
				clusters[j].value = (clusters[j].value*n + val) / (n + 1)
				found = true
				break
			}
		}
		if !found {
			clusters = append(clusters, cluster{value: val, members: []int{i}})
		}
	}

	result := make([]Edge, len(edges))
	copy(result, edges)
	for _, c := range clusters {
		for _, idx := range c.members {
			diff := c.value - result[idx].position()
			if result[idx].Orientation == "v" {
				result[idx].X0 += diff
				result[idx].X1 += diff
			} else {
				result[idx].Top += diff
				result[idx].Bottom += diff
			}
		}
	}
	return result
}

// joinEdgeGroup joins collinear edges whose ends are within tolerance.
func joinEdgeGroup(edges []Edge, tolerance float64) []Edge {
	if len(edges) == 0 {
		return edges
	}

	sort.Slice(edges, func(i, j int) bool {
		return edges[i].start() < edges[j].start()
	})

	joined := []Edge{edges[0]}
	for _, current := range edges[1:] {
		last := &joined[len(joined)-1]
		if current.start() > last.end()+tolerance {
			joined = append(joined, current)
			continue
		}
		if current.end() <= last.end() {
			continue
		}
		if last.Orientation == "v" {
			last.Bottom = current.Bottom
			last.Height = last.Bottom - last.Top
		} else {
			last.X1 = current.X1
			last.Width = last.X1 - last.X0
		}
	}
	return joined
}

// filterEdgesByLength drops edges shorter than minLength.
func filterEdgesByLength(edges []Edge, minLength float64) []Edge {
	if minLength <= 0 {
		return edges
	}

	result := make([]Edge, 0, len(edges))
	for _, edge := range edges {
		if edge.length() >= minLength {
			result = append(result, edge)
		}
	}
	return result
}

// crossing records the edges meeting at one intersection point.
type crossing struct {
	vertical   []Edge
	horizontal []Edge
}

// findIntersections finds where vertical and horizontal edges cross.
func findIntersections(edges []Edge, settings TableSettings) map[Point]*crossing {
	intersections := make(map[Point]*crossing)

	var vertical, horizontal []Edge
	for _, e := range edges {
		if e.Orientation == "v" {
			vertical = append(vertical, e)
		} else {
			horizontal = append(horizontal, e)
		}
	}

	xTol := settings.IntersectionXTolerance
	yTol := settings.IntersectionYTolerance

	for _, v := range vertical {
		for _, h := range horizontal {
			if v.Top > h.Top+yTol || v.Bottom < h.Top-yTol ||
				v.X0 < h.X0-xTol || v.X0 > h.X1+xTol {
				continue
			}

			point := Point{X: v.X0, Y: h.Top}
			c, ok := intersections[point]
			if !ok {
				c = &crossing{}
				intersections[point] = c
			}
			c.vertical = append(c.vertical, v)
			c.horizontal = append(c.horizontal, h)
		}
	}
	return intersections
}

// intersectionsToCells returns the minimal rectangles whose four corners are
// intersections connected by shared edges.
func intersectionsToCells(intersections map[Point]*crossing) []Box {
	if len(intersections) == 0 {
		return nil
	}

	points := make([]Point, 0, len(intersections))
	for p := range intersections {
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Y == points[j].Y {
			return points[i].X < points[j].X
		}
		return points[i].Y < points[j].Y
	})

	connected := func(p1, p2 Point) bool {
		switch {
		case p1.X == p2.X:
			return sharesEdge(intersections[p1].vertical, intersections[p2].vertical)
		case p1.Y == p2.Y:
			return sharesEdge(intersections[p1].horizontal, intersections[p2].horizontal)
		}
		return false
	}

	var cells []Box
	for i, pt := range points {
		var right, below *Point
		for j := i + 1; j < len(points); j++ {
			candidate := &points[j]
			if candidate.X == pt.X && candidate.Y > pt.Y && (below == nil || candidate.Y < below.Y) {
				below = candidate
			}
			if candidate.Y == pt.Y && candidate.X > pt.X && (right == nil || candidate.X < right.X) {
				right = candidate
			}
		}
		if below == nil || right == nil || !connected(pt, *below) || !connected(pt, *right) {
			continue
		}

		corner := Point{X: right.X, Y: below.Y}
		if _, ok := intersections[corner]; !ok {
			continue
		}
		if connected(corner, *right) && connected(corner, *below) {
			cells = append(cells, NewBox(pt.X, pt.Y, corner.X, corner.Y))
		}
	}
	return cells
}

func sharesEdge(a, b []Edge) bool {
	for _, e1 := range a {
		for _, e2 := range b {
			if e1 == e2 {
				return true
			}
		}
	}
	return false
}

// cellsToTables groups cells that share corners into tables. Groups with
// fewer than minCells cells are dropped.
func cellsToTables(cells []Box, minCells int) [][]Box {
	if len(cells) == 0 {
		return nil
	}

	corners := func(cell Box) [4]Point {
		return [4]Point{
			{cell.X0, cell.Y0},
			{cell.X0, cell.Y1},
			{cell.X1, cell.Y0},
			{cell.X1, cell.Y1},
		}
	}

	remaining := make([]Box, len(cells))
	copy(remaining, cells)

	var tables [][]Box
	for len(remaining) > 0 {
		current := []Box{remaining[0]}
		seen := make(map[Point]bool)
		for _, c := range corners(remaining[0]) {
			seen[c] = true
		}
		remaining = remaining[1:]

		for grew := true; grew; {
			grew = false
			rest := remaining[:0]
			for _, cell := range remaining {
				shared := false
				for _, c := range corners(cell) {
					if seen[c] {
						shared = true
						break
					}
				}
				if !shared {
					rest = append(rest, cell)
					continue
				}
				current = append(current, cell)
				for _, c := range corners(cell) {
					seen[c] = true
				}
				grew = true
			}
			remaining = rest
		}

		if len(current) >= minCells {
			tables = append(tables, current)
		}
	}
	return tables
}

// newTable builds a table from its cells, counting rows by distinct cell tops
// and columns by the widest row.
func newTable(cells []Box) Table {
	if len(cells) == 0 {
		return Table{}
	}

	box := cells[0]
	for _, cell := range cells[1:] {
		box = box.Union(cell)
	}

	rows := make(map[int]int)
	for _, cell := range cells {
		rows[int(math.Round(cell.Y0))]++
	}
	maxCols := 0
	for _, n := range rows {
		if n > maxCols {
			maxCols = n
		}
	}

	sorted := make([]Box, len(cells))
	copy(sorted, cells)
	sort.Slice(sorted, func(i, j int) bool {
		if math.Abs(sorted[i].Y0-sorted[j].Y0) >= 1 {
			return sorted[i].Y0 < sorted[j].Y0
		}
		return sorted[i].X0 < sorted[j].X0
	})

	return Table{
		Box:     box,
		Cells:   sorted,
		NumRows: len(rows),
		NumCols: maxCols,
	}
}

// deduplicateTables drops tables mostly covered by an earlier, larger table.
func deduplicateTables(tables []Table, threshold float64) []Table {
	if len(tables) <= 1 {
		return tables
	}

	sort.SliceStable(tables, func(i, j int) bool {
		return tables[i].Box.Area() > tables[j].Box.Area()
	})

	var kept []Table
	for _, table := range tables {
		duplicate := false
		for _, existing := range kept {
			area := table.Box.Area()
			if area > 0 && table.Box.Intersect(existing.Box).Area()/area >= threshold {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, table)
		}
	}
	return kept
}
