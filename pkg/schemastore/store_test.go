package schemastore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sqlsentinel/sentinel-engine/pkg/apperrors"
	"github.com/sqlsentinel/sentinel-engine/pkg/models"
)

const jsonDoc = `{
	"name": "shop",
	"tables": {
		"users": {
			"columns": {
				"id": {"type": "int", "primary_key": true},
				"name": {"type": "varchar(100)"}
			}
		}
	}
}`

const yamlDoc = `name: warehouse
tables:
  stock:
    columns:
      sku:
        type: varchar(64)
        primary_key: true
      quantity:
        type: int
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile_JSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "shop.json", jsonDoc)

	schema, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "shop", schema.Name)
	assert.True(t, schema.HasTable("users"))
}

func TestLoadFile_YAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "warehouse.yaml", yamlDoc)

	schema, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "warehouse", schema.Name)

	cols, ok := schema.TableColumns("stock")
	require.True(t, ok)
	assert.Equal(t, []string{"quantity", "sku"}, cols)
}

func TestLoadFile_NameFallsBackToFileName(t *testing.T) {
	dir := t.TempDir()
	doc := `{"tables": {"t": {"columns": {"id": {"type": "int"}}}}}`
	path := writeFile(t, dir, "inventory.json", doc)

	schema, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "inventory", schema.Name)
}

func TestLoadFile_InvalidDocument(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(writeFile(t, dir, "broken.json", "{not json"))
	assert.Error(t, err)

	_, err = LoadFile(writeFile(t, dir, "empty.json", `{"name": "x", "tables": {}}`))
	assert.Error(t, err)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "shop.json", jsonDoc)
	writeFile(t, dir, "warehouse.yml", yamlDoc)
	writeFile(t, dir, "broken.json", "{oops")
	writeFile(t, dir, "notes.txt", "ignored")

	store, err := LoadDir(dir, zap.NewNop())
	require.NoError(t, err)

	// The broken document is skipped, not fatal.
	assert.Equal(t, 2, store.Len())
	assert.Equal(t, []string{"shop", "warehouse"}, store.Names())
}

func TestLoadDir_MissingDirectory(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "nope"), zap.NewNop())
	assert.True(t, errors.Is(err, apperrors.ErrSchemaDirMissing))
}

func TestLookup(t *testing.T) {
	store := New(&models.Schema{
		Name: "Shop",
		Tables: map[string]models.Table{
			"users": {Columns: map[string]models.Column{"id": {Type: "int"}}},
		},
	})

	schema, err := store.Lookup("shop")
	require.NoError(t, err)
	assert.Equal(t, "Shop", schema.Name)

	schema, err = store.Lookup("SHOP")
	require.NoError(t, err)
	assert.Equal(t, "Shop", schema.Name)

	_, err = store.Lookup("missing")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestNew_LaterDuplicateWins(t *testing.T) {
	first := &models.Schema{Name: "shop", Tables: map[string]models.Table{
		"a": {Columns: map[string]models.Column{"id": {Type: "int"}}},
	}}
	second := &models.Schema{Name: "Shop", Tables: map[string]models.Table{
		"b": {Columns: map[string]models.Column{"id": {Type: "int"}}},
	}}

	store := New(first, second)
	assert.Equal(t, 1, store.Len())

	schema, err := store.Lookup("shop")
	require.NoError(t, err)
	assert.True(t, schema.HasTable("b"))
}
