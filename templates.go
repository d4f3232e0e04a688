package pdflayout

import (
	"math"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Range is an open interval of page coordinates.
type Range struct {
	Min float64 `mapstructure:"min" yaml:"min"`
	Max float64 `mapstructure:"max" yaml:"max"`
}

// Has reports whether v lies strictly inside the range.
func (r Range) Has(v float64) bool {
	return r.Min < v && v < r.Max
}

// ColumnRange bounds the left and right edges of one column.
type ColumnRange struct {
	Left  Range `mapstructure:"left" yaml:"left"`
	Right Range `mapstructure:"right" yaml:"right"`
}

// ColumnTemplate describes one calibrated multi-column layout. The ranges are
// absolute page coordinates, so a template only applies to the page geometry it
// was measured on.
type ColumnTemplate struct {
	Name string `mapstructure:"name" yaml:"name"`

	// PageWidth and PageHeight restrict the template to one page size; zero matches any
	PageWidth  float64 `mapstructure:"page_width" yaml:"page_width,omitempty"`
	PageHeight float64 `mapstructure:"page_height" yaml:"page_height,omitempty"`

	// PageTolerance is the allowed difference when matching the page size
	PageTolerance float64 `mapstructure:"page_tolerance" yaml:"page_tolerance,omitempty"`

	// TopTolerance is the maximum spread of the columns' top edges
	TopTolerance float64 `mapstructure:"top_tolerance" yaml:"top_tolerance"`

	Columns []ColumnRange `mapstructure:"columns" yaml:"columns"`
}

// appliesTo reports whether the template was calibrated for a page of this size.
func (t ColumnTemplate) appliesTo(width, height float64) bool {
	if t.PageWidth > 0 && math.Abs(t.PageWidth-width) > t.PageTolerance {
		return false
	}
	if t.PageHeight > 0 && math.Abs(t.PageHeight-height) > t.PageTolerance {
		return false
	}
	return true
}

// matches reports whether the window of boxes, in order, fits the template.
func (t ColumnTemplate) matches(window []Box) bool {
	if len(window) != len(t.Columns) || len(window) == 0 {
		return false
	}

	top, bottom := window[0].Y0, window[0].Y0
	for i, col := range t.Columns {
		b := window[i]
		if !col.Left.Has(b.X0) || !col.Right.Has(b.X1) {
			return false
		}
		top = math.Min(top, b.Y0)
		bottom = math.Max(bottom, b.Y0)
	}
	return bottom-top < t.TopTolerance
}

// DefaultColumnTemplates returns the two- and three-column layouts of a word
// processor page with 90pt side margins. The last column is stretched to the
// page border by ColumnBoxes, so its right range reaches past both A4 (595)
// and Letter (612) widths.
func DefaultColumnTemplates() []ColumnTemplate {
	return []ColumnTemplate{
		{
			Name:         "two-column",
			TopTolerance: 5,
			Columns: []ColumnRange{
				{Left: Range{85, 95}, Right: Range{295, 315}},
				{Left: Range{305, 315}, Right: Range{510, 615}},
			},
		},
		{
			Name:         "three-column",
			TopTolerance: 5,
			Columns: []ColumnRange{
				{Left: Range{85, 95}, Right: Range{210, 230}},
				{Left: Range{230, 250}, Right: Range{370, 385}},
				{Left: Range{370, 390}, Right: Range{505, 615}},
			},
		},
	}
}

// DetectMultiColumn scans adjacent column boxes for sequences matching one of the
// templates and returns every matched box once, in order of first match.
func DetectMultiColumn(columns []Box, pageWidth, pageHeight float64, templates []ColumnTemplate) []Box {
	result := []Box{}
	seen := make(map[Box]bool)

	for i := range columns {
		for _, tmpl := range templates {
			k := len(tmpl.Columns)
			if k == 0 || i+k > len(columns) || !tmpl.appliesTo(pageWidth, pageHeight) {
				continue
			}
			window := columns[i : i+k]
			if !tmpl.matches(window) {
				continue
			}
			for _, b := range window {
				if !seen[b] {
					seen[b] = true
					result = append(result, b)
				}
			}
		}
	}
	return result
}

// columnTemplateFile is the on-disk layout of a template file.
type columnTemplateFile struct {
	Templates []ColumnTemplate `yaml:"templates"`
}

// LoadColumnTemplates reads column templates from a YAML file.
func LoadColumnTemplates(path string) ([]ColumnTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read column templates")
	}
	return ParseColumnTemplates(data)
}

// ParseColumnTemplates decodes YAML column templates.
func ParseColumnTemplates(data []byte) ([]ColumnTemplate, error) {
	var file columnTemplateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "failed to parse column templates")
	}
	for i, tmpl := range file.Templates {
		if len(tmpl.Columns) == 0 {
			return nil, errors.Errorf("column template %d (%s) has no columns", i, tmpl.Name)
		}
	}
	return file.Templates, nil
}
