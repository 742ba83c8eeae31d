package registry

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aldicp/aldicp/pkg/models"
)

// LoadAll reads every *.yaml/*.yml file in dir, parses it as a
// SchemaDefinition, and caches successfully parsed definitions. A bad file
// is logged and skipped and does not abort the scan; LoadAll returns the
// count of successful loads (spec §4.1), and its error is non-nil only when
// dir itself cannot be read. Calling LoadAll again
// re-scans the directory and replaces the cache; it is idempotent for an
// unchanged directory (spec §8: "LoadAll() is idempotent").
func (r *Registry) LoadAll(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}

	loaded := make(map[string]*models.SchemaDefinition)
	var order []string
	var firstErr error

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(dir, name)
		def, err := loadOne(path)
		if err != nil {
			slog.Warn("schema definition failed to load, skipping", "file", path, "error", err)
			if firstErr == nil {
				firstErr = models.NewSchemaParseError(path, err)
			}
			continue
		}

		loaded[def.TableName] = def
		order = append(order, def.TableName)
	}

	r.mu.Lock()
	r.schemas = loaded
	r.order = order
	r.mu.Unlock()

	slog.Info("schema definitions loaded", "count", len(loaded), "dir", dir)
	return len(loaded), nil
}

func loadOne(path string) (*models.SchemaDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var def models.SchemaDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, err
	}
	if def.TableName == "" {
		return nil, errEmptyTableName
	}
	return &def, nil
}
