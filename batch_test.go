package pdflayout_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanvanderbyl/pdflayout"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestListPDFs(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.PDF"))
	touch(t, filepath.Join(dir, "a.pdf"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "pdf"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.pdf"), 0o755))

	paths, err := pdflayout.ListPDFs(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.pdf"),
		filepath.Join(dir, "b.PDF"),
	}, paths)

	_, err = pdflayout.ListPDFs(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestAnnotateDirectory_NoDocuments(t *testing.T) {
	in := t.TempDir()
	touch(t, filepath.Join(in, "readme.md"))
	out := filepath.Join(t.TempDir(), "annotations")

	results, err := pdflayout.AnnotateDirectory(context.Background(), nil, in, out, pdflayout.DefaultConfig(), pdflayout.BatchOptions{}, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.DirExists(t, out)
}

func TestAnnotateDirectory_MissingInput(t *testing.T) {
	_, err := pdflayout.AnnotateDirectory(context.Background(), nil, filepath.Join(t.TempDir(), "missing"), t.TempDir(), pdflayout.DefaultConfig(), pdflayout.BatchOptions{}, nil)
	assert.ErrorContains(t, err, "failed to read input directory")
}

func TestAnnotateDirectory_Pool(t *testing.T) {
	sample := testPDF(t, "simple.pdf")
	pool := setupPool(t)

	in := t.TempDir()
	data, err := os.ReadFile(sample)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(in, "sample.pdf"), data, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(in, "broken.pdf"), []byte("not a pdf"), 0o644))

	out := t.TempDir()
	results, err := pdflayout.AnnotateDirectory(context.Background(), pool, in, out, pdflayout.DefaultConfig(), pdflayout.BatchOptions{}, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)

	broken, sampleResult := results[0], results[1]
	assert.True(t, broken.Skipped || broken.Err != nil, "an unreadable document does not stop the batch")
	require.NoError(t, sampleResult.Err)
	assert.Positive(t, sampleResult.Pages)
	assert.FileExists(t, filepath.Join(out, "sample_page_1.json"))
}
