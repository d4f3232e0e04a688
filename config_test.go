package pdflayout_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanvanderbyl/pdflayout"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pdflayout.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	config := pdflayout.DefaultConfig()

	require.NoError(t, config.Validate())
	assert.True(t, config.DetectTables)
	assert.Equal(t, 4, config.Workers)
	assert.Equal(t, 12.0, config.DefaultLineSpacing)
	assert.Equal(t, pdflayout.DefaultMergeTolerances(), config.MergeTolerances())
	assert.Len(t, config.Columns.Templates, 2)
}

func TestLoadConfig_Defaults(t *testing.T) {
	config, err := pdflayout.LoadConfig("")
	require.NoError(t, err)

	defaults := pdflayout.DefaultConfig()
	assert.Equal(t, defaults.Workers, config.Workers)
	assert.Equal(t, defaults.Classifier, config.Classifier)
	assert.Equal(t, defaults.Render, config.Render)
	assert.Equal(t, defaults.Tables, config.Tables)
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
workers: 2
classifier:
  header_margin: 40
merge:
  paragraph:
    max_y_gap: 10
    max_x_gap: 1
render:
  dpi: 150
  labels: false
`)

	config, err := pdflayout.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 2, config.Workers)
	assert.Equal(t, 40.0, config.Classifier.HeaderMargin)
	assert.Equal(t, 60.0, config.Classifier.FooterMargin, "unset keys keep their defaults")
	assert.Equal(t, pdflayout.MergeTolerance{MaxYGap: 10, MaxXGap: 1},
		config.MergeTolerances()[pdflayout.RegionParagraph])
	assert.Equal(t, 150, config.Render.DPI)
	assert.False(t, config.Render.Labels)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("PDFLAYOUT_WORKERS", "8")
	t.Setenv("PDFLAYOUT_RENDER_DPI", "96")

	path := writeConfig(t, "workers: 2\n")
	config, err := pdflayout.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 8, config.Workers, "environment wins over the file")
	assert.Equal(t, 96, config.Render.DPI)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no workers", "workers: 0\n"},
		{"unknown merge type", "merge:\n  sidebar:\n    max_y_gap: 1\n"},
		{"negative dpi", "render:\n  dpi: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pdflayout.LoadConfig(writeConfig(t, tt.content))
			assert.ErrorContains(t, err, "invalid configuration")
		})
	}

	_, err := pdflayout.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestConfig_Validate(t *testing.T) {
	config := pdflayout.DefaultConfig()
	config.Columns.Templates = append(config.Columns.Templates, pdflayout.ColumnTemplate{Name: "broken"})
	assert.ErrorContains(t, config.Validate(), "has no columns")

	config = pdflayout.DefaultConfig()
	config.Merge["sidebar"] = pdflayout.MergeTolerance{MaxYGap: 1}
	assert.Error(t, config.Validate())
	assert.NotContains(t, config.MergeTolerances(), pdflayout.RegionType("sidebar"))
}
