package pdflayout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinEdgeGroup(t *testing.T) {
	edges := []Edge{
		{X0: 52, X1: 100, Top: 10, Bottom: 10, Width: 48, Orientation: "h"},
		{X0: 0, X1: 50, Top: 10, Bottom: 10, Width: 50, Orientation: "h"},
		{X0: 200, X1: 250, Top: 10, Bottom: 10, Width: 50, Orientation: "h"},
	}

	joined := joinEdgeGroup(edges, 3)
	require.Len(t, joined, 2)
	assert.Equal(t, 0.0, joined[0].X0)
	assert.Equal(t, 100.0, joined[0].X1)
	assert.Equal(t, 100.0, joined[0].Width)
	assert.Equal(t, 200.0, joined[1].X0)
}

func TestSnapObjects(t *testing.T) {
	edges := []Edge{
		{X0: 100, X1: 100, Top: 0, Bottom: 50, Height: 50, Orientation: "v"},
		{X0: 102, X1: 102, Top: 50, Bottom: 100, Height: 50, Orientation: "v"},
		{X0: 200, X1: 200, Top: 0, Bottom: 100, Height: 100, Orientation: "v"},
	}

	snapped := snapObjects(edges, 3)
	assert.Equal(t, 101.0, snapped[0].X0)
	assert.Equal(t, 101.0, snapped[1].X1)
	assert.Equal(t, 200.0, snapped[2].X0)
	assert.Equal(t, 100.0, edges[0].X0, "input edges are not modified")
}

func TestFilterEdgesByLength(t *testing.T) {
	edges := []Edge{
		{Width: 2, Orientation: "h"},
		{Height: 10, Orientation: "v"},
	}

	assert.Len(t, filterEdgesByLength(edges, 3), 1)
	assert.Len(t, filterEdgesByLength(edges, 0), 2)
}

func TestDeduplicateTables(t *testing.T) {
	outer := Table{Box: Box{X0: 0, Y0: 0, X1: 100, Y1: 100}}
	inner := Table{Box: Box{X0: 10, Y0: 10, X1: 90, Y1: 90}}
	other := Table{Box: Box{X0: 200, Y0: 200, X1: 300, Y1: 300}}
	partial := Table{Box: Box{X0: 50, Y0: 0, X1: 150, Y1: 100}}

	kept := deduplicateTables([]Table{inner, outer, other}, 0.7)
	assert.Equal(t, []Table{outer, other}, kept)

	kept = deduplicateTables([]Table{outer, partial}, 0.7)
	assert.Len(t, kept, 2, "half covered tables are distinct")
}

func TestCellsToTables(t *testing.T) {
	cells := []Box{
		{X0: 0, Y0: 0, X1: 10, Y1: 10},
		{X0: 100, Y0: 100, X1: 110, Y1: 110},
		{X0: 10, Y0: 0, X1: 20, Y1: 10},
		{X0: 10, Y0: 10, X1: 20, Y1: 20},
	}

	tables := cellsToTables(cells, 2)
	require.Len(t, tables, 1, "the lone cell is dropped")
	assert.Len(t, tables[0], 3)
}

func TestPathToEdge(t *testing.T) {
	h := pathToEdge(Box{X0: 10, Y0: 100, X1: 200, Y1: 100.5})
	require.NotNil(t, h)
	assert.Equal(t, "h", h.Orientation)

	v := pathToEdge(Box{X0: 10, Y0: 100, X1: 11, Y1: 300})
	require.NotNil(t, v)
	assert.Equal(t, "v", v.Orientation)

	assert.Nil(t, pathToEdge(Box{X0: 10, Y0: 10, X1: 50, Y1: 50}))
}

func TestIsPageBorder(t *testing.T) {
	assert.True(t, isPageBorder(Edge{Top: 5, Width: 100, Orientation: "h"}, 612, 792))
	assert.True(t, isPageBorder(Edge{Top: 400, Width: 600, Orientation: "h"}, 612, 792))
	assert.False(t, isPageBorder(Edge{Top: 400, Width: 200, Orientation: "h"}, 612, 792))
	assert.True(t, isPageBorder(Edge{X0: 600, Height: 100, Orientation: "v"}, 612, 792))
}
