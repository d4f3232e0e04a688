package pdflayout

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config controls page annotation behavior.
type Config struct {
	// Classifier holds the rule thresholds (default: DefaultClassifierConfig())
	Classifier ClassifierConfig `mapstructure:"classifier" yaml:"classifier"`

	// Baseline controls body font size re-estimation (default: DefaultBaselineConfig())
	Baseline BaselineConfig `mapstructure:"baseline" yaml:"baseline"`

	// Columns configures column boxes and multi-column templates (default: DefaultColumnOptions())
	Columns ColumnOptions `mapstructure:"columns" yaml:"columns"`

	// Merge holds per region type merge tolerances, keyed by region type name
	Merge map[string]MergeTolerance `mapstructure:"merge" yaml:"merge"`

	// DetectTables enables the table locator (default: true)
	DetectTables bool `mapstructure:"detect_tables" yaml:"detect_tables"`

	// Tables configures table detection (default: DefaultTableSettings())
	Tables TableSettings `mapstructure:"tables" yaml:"tables"`

	// Render configures page rasterization and overlays (default: DefaultRenderConfig())
	Render RenderConfig `mapstructure:"render" yaml:"render"`

	// ImagePathFormat names the page image in each record; %d is the 1-based page number
	ImagePathFormat string `mapstructure:"image_path_format" yaml:"image_path_format"`

	// DefaultLineSpacing is used until the first page has been measured (default: 12)
	DefaultLineSpacing float64 `mapstructure:"default_line_spacing" yaml:"default_line_spacing"`

	// ValidateInput runs a relaxed pdfcpu validation before annotating a file (default: false)
	ValidateInput bool `mapstructure:"validate_input" yaml:"validate_input"`

	// Workers is the number of documents annotated concurrently in batch mode (default: 4)
	Workers int `mapstructure:"workers" yaml:"workers"`

	// EnableMetricsLogging logs processing time and region counts (default: false)
	EnableMetricsLogging bool `mapstructure:"enable_metrics_logging" yaml:"enable_metrics_logging"`
}

// DefaultConfig returns the default annotation configuration.
func DefaultConfig() Config {
	merge := make(map[string]MergeTolerance)
	for rt, tol := range DefaultMergeTolerances() {
		merge[string(rt)] = tol
	}

	return Config{
		Classifier:         DefaultClassifierConfig(),
		Baseline:           DefaultBaselineConfig(),
		Columns:            DefaultColumnOptions(),
		Merge:              merge,
		DetectTables:       true,
		Tables:             DefaultTableSettings(),
		Render:             DefaultRenderConfig(),
		ImagePathFormat:    "page_%d.png",
		DefaultLineSpacing: 12,
		Workers:            4,
	}
}

// MergeTolerances returns the merge tolerances keyed by region type.
// Unknown type names are ignored.
func (c Config) MergeTolerances() map[RegionType]MergeTolerance {
	out := make(map[RegionType]MergeTolerance, len(c.Merge))
	for name, tol := range c.Merge {
		rt, err := ParseRegionType(name)
		if err != nil {
			continue
		}
		out[rt] = tol
	}
	return out
}

// imagePath returns the page image identifier for a 1-based page number.
func (c Config) imagePath(pageNumber int) string {
	if c.ImagePathFormat == "" {
		return fmt.Sprintf("page_%d.png", pageNumber)
	}
	return fmt.Sprintf(c.ImagePathFormat, pageNumber)
}

// Validate checks that the configuration can be used.
func (c Config) Validate() error {
	if c.Workers < 1 {
		return errors.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Render.DPI <= 0 {
		return errors.Errorf("render dpi must be positive, got %d", c.Render.DPI)
	}
	for name := range c.Merge {
		if _, err := ParseRegionType(name); err != nil {
			return errors.Wrap(err, "invalid merge tolerance")
		}
	}
	for i, tmpl := range c.Columns.Templates {
		if len(tmpl.Columns) == 0 {
			return errors.Errorf("column template %d (%s) has no columns", i, tmpl.Name)
		}
	}
	return nil
}

// LoadConfig reads configuration from a YAML file and PDFLAYOUT_* environment
// variables on top of DefaultConfig. An empty path skips the file.
// Precedence: environment > file > defaults.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrap(err, "failed to read config file")
		}
	}

	v.SetEnvPrefix("PDFLAYOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	config := DefaultConfig()
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode config")
	}

	if err := config.Validate(); err != nil {
		return Config{}, errors.Wrap(err, "invalid configuration")
	}
	return config, nil
}

// setDefaults registers the scalar settings so they can be overridden from the environment.
func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("classifier.header_margin", c.Classifier.HeaderMargin)
	v.SetDefault("classifier.footer_margin", c.Classifier.FooterMargin)
	v.SetDefault("classifier.footnote_zone", c.Classifier.FootnoteZone)
	v.SetDefault("classifier.list_marker_indent", c.Classifier.ListMarkerIndent)
	v.SetDefault("classifier.list_text_indent", c.Classifier.ListTextIndent)
	v.SetDefault("classifier.indent_tolerance", c.Classifier.IndentTolerance)
	v.SetDefault("classifier.formula_padding", c.Classifier.FormulaPadding)
	v.SetDefault("classifier.footnote_max_words", c.Classifier.FootnoteMaxWords)
	v.SetDefault("classifier.math_fonts", c.Classifier.MathFonts)

	v.SetDefault("baseline.min_lines", c.Baseline.MinLines)
	v.SetDefault("baseline.min_samples", c.Baseline.MinSamples)

	v.SetDefault("columns.header_margin", c.Columns.HeaderMargin)
	v.SetDefault("columns.footer_margin", c.Columns.FooterMargin)
	v.SetDefault("columns.no_image_text", c.Columns.NoImageText)
	v.SetDefault("columns.run_tolerance", c.Columns.RunTolerance)

	v.SetDefault("detect_tables", c.DetectTables)
	v.SetDefault("tables.vertical_strategy", c.Tables.VerticalStrategy)
	v.SetDefault("tables.horizontal_strategy", c.Tables.HorizontalStrategy)
	v.SetDefault("tables.min_cells", c.Tables.MinCells)

	v.SetDefault("render.dpi", c.Render.DPI)
	v.SetDefault("render.line_width", c.Render.LineWidth)
	v.SetDefault("render.labels", c.Render.Labels)

	v.SetDefault("image_path_format", c.ImagePathFormat)
	v.SetDefault("default_line_spacing", c.DefaultLineSpacing)
	v.SetDefault("validate_input", c.ValidateInput)
	v.SetDefault("workers", c.Workers)
	v.SetDefault("enable_metrics_logging", c.EnableMetricsLogging)
}
