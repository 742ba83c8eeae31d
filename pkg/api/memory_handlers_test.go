package api

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aldicp/aldicp/pkg/analyzer"
	"github.com/aldicp/aldicp/pkg/inference"
	"github.com/aldicp/aldicp/pkg/registry"
)

const testSchemaYAML = `
table_name: memory_documents
description: test table
fingerprint_field: path
fields:
  - name: id
    type: uuid
    primary_key: true
    generated: true
  - name: path
    type: string
    required: true
`

func testMemoryServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "memory_documents.yaml"), []byte(testSchemaYAML), 0o644))

	reg := registry.New(nil)
	n, err := reg.LoadAll(dir)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	return testServer().SetRegistry(reg).SetAnalyzer(analyzer.New()).SetInferrer(inference.New())
}

func TestHandleListTables_ReturnsLoadedSchemas(t *testing.T) {
	s := testMemoryServer(t)

	rec := doJSON(t, s, "GET", "/memory/tables", nil)
	assertStatus(t, rec, http.StatusOK)

	var body map[string][]string
	decodeJSON(t, rec, &body)
	require.Equal(t, []string{"memory_documents"}, body["tables"])
}

func TestHandleTableSchema_UnknownTableReturns400(t *testing.T) {
	s := testMemoryServer(t)

	rec := doJSON(t, s, "GET", "/memory/tables/not_a_table/schema", nil)
	assertStatus(t, rec, http.StatusBadRequest)
}

func TestHandleTableSchema_ReturnsDefinition(t *testing.T) {
	s := testMemoryServer(t)

	rec := doJSON(t, s, "GET", "/memory/tables/memory_documents/schema", nil)
	assertStatus(t, rec, http.StatusOK)
}

func TestHandleAnalyze_RunsAnalyzerAndInferrer(t *testing.T) {
	s := testMemoryServer(t)
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o644))

	rec := doJSON(t, s, "POST", "/memory/tables/analyze", map[string]any{"path": path})
	assertStatus(t, rec, http.StatusOK)

	var body map[string]any
	decodeJSON(t, rec, &body)
	require.Contains(t, body, "analysis")
	require.Contains(t, body, "proposal")
}
