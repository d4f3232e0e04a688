package pdflayout

// Edge is a horizontal or vertical segment used for table detection.
// Based on pdfplumber's edge structure.
type Edge struct {
	X0          float64 // Left x coordinate
	X1          float64 // Right x coordinate
	Top         float64 // Top y coordinate
	Bottom      float64 // Bottom y coordinate
	Width       float64 // Width (for horizontal edges)
	Height      float64 // Height (for vertical edges)
	Orientation string  // "h" for horizontal, "v" for vertical
}

// length returns the extent of the edge along its orientation.
func (e Edge) length() float64 {
	if e.Orientation == "v" {
		return e.Height
	}
	return e.Width
}

// Point is an (x, y) coordinate where edges intersect.
type Point struct {
	X float64
	Y float64
}

// Table is a detected table: its outline and the cells it was assembled from.
type Table struct {
	Box     Box
	Cells   []Box
	NumRows int
	NumCols int
}

// Table edge strategies.
const (
	StrategyLines = "lines" // ruling lines drawn in the PDF
	StrategyText  = "text"  // edges inferred from aligned text
	StrategyBoth  = "lines_text"
)

// TableSettings configures table detection.
// Based on pdfplumber's TableSettings.
type TableSettings struct {
	// Strategy for detecting table edges: "lines", "text" or "lines_text".
	// "lines" never falls back to text alignment.
	VerticalStrategy   string `mapstructure:"vertical_strategy" yaml:"vertical_strategy"`
	HorizontalStrategy string `mapstructure:"horizontal_strategy" yaml:"horizontal_strategy"`

	// Tolerances for snapping close edges together
	SnapXTolerance float64 `mapstructure:"snap_x_tolerance" yaml:"snap_x_tolerance"`
	SnapYTolerance float64 `mapstructure:"snap_y_tolerance" yaml:"snap_y_tolerance"`

	// Tolerances for joining edges on the same line
	JoinXTolerance float64 `mapstructure:"join_x_tolerance" yaml:"join_x_tolerance"`
	JoinYTolerance float64 `mapstructure:"join_y_tolerance" yaml:"join_y_tolerance"`

	// Minimum edge length to consider
	EdgeMinLength float64 `mapstructure:"edge_min_length" yaml:"edge_min_length"`

	// Minimum number of aligned text runs required to infer an edge
	MinWordsVertical   int `mapstructure:"min_words_vertical" yaml:"min_words_vertical"`
	MinWordsHorizontal int `mapstructure:"min_words_horizontal" yaml:"min_words_horizontal"`

	// Tolerances for finding edge intersections
	IntersectionXTolerance float64 `mapstructure:"intersection_x_tolerance" yaml:"intersection_x_tolerance"`
	IntersectionYTolerance float64 `mapstructure:"intersection_y_tolerance" yaml:"intersection_y_tolerance"`

	// MinCells is the smallest number of cells that makes a table
	MinCells int `mapstructure:"min_cells" yaml:"min_cells"`

	// DuplicateOverlap is the overlap ratio above which two tables are the same table
	DuplicateOverlap float64 `mapstructure:"duplicate_overlap" yaml:"duplicate_overlap"`
}

// DefaultTableSettings returns settings that only trust explicit ruling lines.
func DefaultTableSettings() TableSettings {
	return TableSettings{
		VerticalStrategy:       StrategyLines,
		HorizontalStrategy:     StrategyLines,
		SnapXTolerance:         3.0,
		SnapYTolerance:         3.0,
		JoinXTolerance:         3.0,
		JoinYTolerance:         3.0,
		EdgeMinLength:          3.0,
		MinWordsVertical:       3,
		MinWordsHorizontal:     1,
		IntersectionXTolerance: 3.0,
		IntersectionYTolerance: 3.0,
		MinCells:               2,
		DuplicateOverlap:       0.7,
	}
}
