package pdflayout

// MergeTolerance is the gap two same-type boxes may have and still be merged.
type MergeTolerance struct {
	MaxYGap float64 `mapstructure:"max_y_gap" yaml:"max_y_gap"`
	MaxXGap float64 `mapstructure:"max_x_gap" yaml:"max_x_gap"`
}

// DefaultMergeTolerances returns the per-type tolerances. Types without an
// entry are reported box by box.
func DefaultMergeTolerances() map[RegionType]MergeTolerance {
	return map[RegionType]MergeTolerance{
		RegionParagraph:    {MaxYGap: 6, MaxXGap: 0},
		RegionNumberedList: {MaxYGap: 3, MaxXGap: 0},
		RegionMarkedList:   {MaxYGap: 3, MaxXGap: 0},
		RegionFormula:      {MaxYGap: 5, MaxXGap: 5},
	}
}

// shouldMerge reports whether a and b belong to the same region: they overlap,
// or they are within both the vertical and the horizontal tolerance.
func (t MergeTolerance) shouldMerge(a, b Box) bool {
	if a.Intersects(b) {
		return true
	}
	return a.VerticalGap(b) <= t.MaxYGap && a.HorizontalGap(b) <= t.MaxXGap
}

// MergeRegions unions same-type boxes that overlap or lie within tol of each
// other. The first remaining box grows by absorbing every box it matches,
// rescanning from the start after each absorption. Passes repeat until nothing
// changes, so no two output boxes satisfy the merge condition.
func MergeRegions(boxes []Box, tol MergeTolerance) []Box {
	if len(boxes) == 0 {
		return []Box{}
	}

	current := append([]Box(nil), boxes...)
	for {
		merged := mergePass(current, tol)
		if len(merged) == len(current) {
			return merged
		}
		current = merged
	}
}

func mergePass(boxes []Box, tol MergeTolerance) []Box {
	remaining := append([]Box(nil), boxes...)
	result := make([]Box, 0, len(remaining))

	for len(remaining) > 0 {
		base := remaining[0]
		remaining = remaining[1:]

		for i := 0; i < len(remaining); {
			if tol.shouldMerge(base, remaining[i]) {
				base = base.Union(remaining[i])
				remaining = append(remaining[:i], remaining[i+1:]...)
				i = 0
				continue
			}
			i++
		}
		result = append(result, base)
	}
	return result
}
