package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	stdsql "database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func newTestRegistry(t *testing.T) *Registry {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("aldicp_test"),
		postgres.WithUsername("aldicp"),
		postgres.WithPassword("aldicp"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(pgContainer)
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := stdsql.Open("pgx", connStr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.PingContext(ctx))

	r := New(db)
	r.mu.Lock()
	r.schemas["memory_documents"] = testDef()
	r.order = []string{"memory_documents"}
	r.mu.Unlock()

	require.NoError(t, r.Materialize(ctx))
	return r
}

func TestRegistry_InsertQueryUpdate(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	row, err := r.Insert(ctx, "memory_documents", map[string]any{
		"path":  "./watched/doc.txt",
		"title": "Alpha",
	}, InsertOptions{})
	require.NoError(t, err)
	id, _ := row.Get("id")
	require.NotEmpty(t, id)

	rows, err := r.Query(ctx, "memory_documents", map[string]any{"path": "./watched/doc.txt"}, 0, 0, "")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	ok, err := r.Update(ctx, "memory_documents", id.(string), map[string]any{"title": "Beta"})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegistry_UpsertOnFingerprint(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	first, err := r.Insert(ctx, "memory_documents", map[string]any{
		"path": "./watched/dup.txt",
	}, InsertOptions{UpsertOnFingerprint: true})
	require.NoError(t, err)
	firstID, _ := first.Get("id")

	second, err := r.Insert(ctx, "memory_documents", map[string]any{
		"path":  "./watched/dup.txt",
		"title": "Updated",
	}, InsertOptions{UpsertOnFingerprint: true})
	require.NoError(t, err)
	secondID, _ := second.Get("id")

	assert.Equal(t, firstID, secondID)

	rows, err := r.Query(ctx, "memory_documents", map[string]any{"path": "./watched/dup.txt"}, 0, 0, "")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestRegistry_UpdateRejectsEmptyPatch(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	_, err := r.Update(ctx, "memory_documents", "00000000-0000-0000-0000-000000000000", nil)
	require.Error(t, err)
}

func TestRegistry_HasListSchema(t *testing.T) {
	r := newTestRegistry(t)
	assert.True(t, r.Has("memory_documents"))
	assert.Contains(t, r.List(), "memory_documents")
	_, ok := r.Schema("memory_documents")
	assert.True(t, ok)
}
