// Package models holds the value types shared across the engine:
// schema documents, query records, and feedback scores.
package models

import (
	"fmt"
	"sort"
	"strings"
)

// Schema is one database schema document as persisted on disk. The JSON
// shape round-trips losslessly: name, per-table description, per-column
// type/nullable/primary_key/description and an optional foreign key.
type Schema struct {
	Name        string           `json:"name" yaml:"name"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
	Tables      map[string]Table `json:"tables" yaml:"tables"`
}

// Table describes one table and its columns, keyed by column name.
type Table struct {
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Columns     map[string]Column `json:"columns" yaml:"columns"`
}

// Column carries the metadata the identifier checks and the generation
// prompt rely on.
type Column struct {
	Type        string      `json:"type" yaml:"type"`
	Nullable    bool        `json:"nullable" yaml:"nullable"`
	PrimaryKey  bool        `json:"primary_key" yaml:"primary_key"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	ForeignKey  *ForeignKey `json:"foreign_key,omitempty" yaml:"foreign_key,omitempty"`
}

// ForeignKey names the referenced table and column.
type ForeignKey struct {
	Table  string `json:"table" yaml:"table"`
	Column string `json:"column" yaml:"column"`
}

// Validate checks the structural invariants of a loaded document.
func (s *Schema) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("schema has no name")
	}
	if len(s.Tables) == 0 {
		return fmt.Errorf("schema %q has no tables", s.Name)
	}
	for tname, table := range s.Tables {
		if len(table.Columns) == 0 {
			return fmt.Errorf("table %q in schema %q has no columns", tname, s.Name)
		}
		for cname, col := range table.Columns {
			if strings.TrimSpace(col.Type) == "" {
				return fmt.Errorf("column %q of table %q has no type", cname, tname)
			}
			if fk := col.ForeignKey; fk != nil {
				if _, ok := s.Tables[fk.Table]; !ok {
					return fmt.Errorf("column %q of table %q references unknown table %q", cname, tname, fk.Table)
				}
			}
		}
	}
	return nil
}

// HasTable reports whether the schema contains the table,
// case-insensitively.
func (s *Schema) HasTable(name string) bool {
	_, ok := s.lookupTable(name)
	return ok
}

// TableColumns returns the column names of a table in sorted order, or
// ok=false when the table is unknown.
func (s *Schema) TableColumns(name string) ([]string, bool) {
	table, ok := s.lookupTable(name)
	if !ok {
		return nil, false
	}
	cols := make([]string, 0, len(table.Columns))
	for c := range table.Columns {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols, true
}

// TableNames returns the table names in sorted order.
func (s *Schema) TableNames() []string {
	names := make([]string, 0, len(s.Tables))
	for n := range s.Tables {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (s *Schema) lookupTable(name string) (Table, bool) {
	if t, ok := s.Tables[name]; ok {
		return t, true
	}
	for n, t := range s.Tables {
		if strings.EqualFold(n, name) {
			return t, true
		}
	}
	return Table{}, false
}
