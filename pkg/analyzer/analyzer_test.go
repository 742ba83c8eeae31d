package analyzer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aldicp/aldicp/pkg/models"
)

func TestAnalyze_DocumentHappyPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("Alpha\n\nHello."), 0o644))

	a := New()
	result := a.Analyze(path)

	assert.Equal(t, models.CategoryDocument, result.Category)
	assert.Equal(t, "Alpha", result.Features["title"])
	assert.Equal(t, 2, result.Features["token_count"])
	assert.Empty(t, result.Errors)
}

func TestAnalyze_CodeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	src := "package main\n\nimport \"fmt\"\n\nfunc main() {\n\tfmt.Println(\"hi\")\n}\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	a := New()
	result := a.Analyze(path)

	assert.Equal(t, models.CategoryCode, result.Category)
	assert.Equal(t, "go", result.Features["language"])
	assert.Equal(t, 1, result.Features["functions"])
}

func TestAnalyze_Dataset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b,c\n1,2,3\n4,5,6\n"), 0o644))

	a := New()
	result := a.Analyze(path)

	assert.Equal(t, models.CategoryDataset, result.Category)
	assert.Equal(t, 3, result.Features["column_count"])
	assert.Equal(t, 2, result.Features["row_count"])
}

func TestAnalyze_UnknownExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blob.xyz")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))

	a := New()
	result := a.Analyze(path)

	assert.Equal(t, models.CategoryUnknown, result.Category)
}

func TestAnalyze_MissingFileNeverRaises(t *testing.T) {
	a := New()
	result := a.Analyze("/nonexistent/path/does-not-exist.txt")

	assert.NotEmpty(t, result.Errors)
	assert.Equal(t, models.CategoryUnknown, result.Category)
}
