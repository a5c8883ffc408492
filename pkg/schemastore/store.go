// Package schemastore loads schema documents from disk and serves them
// read-only to the rest of the engine.
package schemastore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sqlsentinel/sentinel-engine/pkg/apperrors"
	"github.com/sqlsentinel/sentinel-engine/pkg/models"
)

// Store is an immutable collection of named schemas. Build one with
// LoadDir or New; lookups are safe for concurrent use because nothing
// mutates after construction.
type Store struct {
	schemas map[string]*models.Schema // keyed by lowercased name
	names   []string                  // original casing, sorted
}

// New builds a store from already-parsed schemas. Later duplicates of a
// name (case-insensitive) replace earlier ones.
func New(schemas ...*models.Schema) *Store {
	s := &Store{schemas: make(map[string]*models.Schema)}
	for _, sc := range schemas {
		s.schemas[strings.ToLower(sc.Name)] = sc
	}
	for _, sc := range s.schemas {
		s.names = append(s.names, sc.Name)
	}
	sort.Strings(s.names)
	return s
}

// LoadDir reads every .json, .yaml, and .yml schema document in dir
// (non-recursive). Documents that fail to parse or validate are skipped
// with a warning so one bad upload cannot take down the whole store.
func LoadDir(dir string, logger *zap.Logger) (*Store, error) {
	logger = logger.Named("schema-store")

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrSchemaDirMissing, dir)
		}
		return nil, fmt.Errorf("stat schema dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("schema path %s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read schema dir: %w", err)
	}

	var schemas []*models.Schema
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".json" && ext != ".yaml" && ext != ".yml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		schema, err := LoadFile(path)
		if err != nil {
			logger.Warn("Skipping unreadable schema document",
				zap.String("path", path),
				zap.Error(err))
			continue
		}
		schemas = append(schemas, schema)
	}

	logger.Info("Loaded schema documents",
		zap.String("dir", dir),
		zap.Int("count", len(schemas)))
	return New(schemas...), nil
}

// LoadFile parses a single schema document, JSON or YAML by extension.
func LoadFile(path string) (*models.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var schema models.Schema
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &schema); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &schema); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	}

	if schema.Name == "" {
		// Fall back to the file name so hand-written documents without
		// an explicit name still load.
		schema.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	return &schema, nil
}

// Lookup returns the schema with the given name, case-insensitively.
func (s *Store) Lookup(name string) (*models.Schema, error) {
	if schema, ok := s.schemas[strings.ToLower(name)]; ok {
		return schema, nil
	}
	return nil, fmt.Errorf("schema %q: %w", name, apperrors.ErrNotFound)
}

// Names returns the available schema names in sorted order.
func (s *Store) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of schemas in the store.
func (s *Store) Len() int { return len(s.schemas) }
