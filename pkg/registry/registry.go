// Package registry implements the Schema Registry (spec §4.1): it loads
// declarative table definitions, materializes them as Postgres tables at
// runtime, and provides typed CRUD over the resulting dynamic rows.
package registry

import (
	"database/sql"
	"sync"

	"github.com/aldicp/aldicp/pkg/models"
)

// Registry caches loaded schema definitions and owns the pooled
// connection used to materialize and query their backing tables. The
// schema cache is read-mostly: LoadAll swaps in the freshly loaded cache
// under the write lock, briefly suspending readers. The registry has no
// operation that extends an already loaded schema.
type Registry struct {
	db *sql.DB

	mu      sync.RWMutex
	schemas map[string]*models.SchemaDefinition
	order   []string // insertion order, for List()
}

// New constructs a Registry bound to db. Call LoadAll then Materialize
// before serving traffic.
func New(db *sql.DB) *Registry {
	return &Registry{
		db:      db,
		schemas: make(map[string]*models.SchemaDefinition),
	}
}

// Has reports whether table is a known schema.
func (r *Registry) Has(table string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.schemas[table]
	return ok
}

// List returns known table names in load order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Schema returns the cached definition for table.
func (r *Registry) Schema(table string) (*models.SchemaDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[table]
	return s, ok
}
