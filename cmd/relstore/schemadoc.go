package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/relstore/relstore/pkg/catalog"
	"github.com/relstore/relstore/pkg/engine"
	"github.com/relstore/relstore/pkg/value"
)

// SchemaDoc is the YAML-serializable shape of a catalog's table
// definitions, in the spirit of pkg/schema's SchemaLoader but scoped to
// relstore's data model (spec.md §3) rather than a full multi-dialect
// DDL document. Only structure is dumped — rows are never persisted
// (spec.md's explicit non-goal on disk persistence).
type SchemaDoc struct {
	Tables []TableDoc `yaml:"tables"`
}

// TableDoc is one table's schema, primary key, unique groups, and
// foreign keys.
type TableDoc struct {
	Name        string       `yaml:"name"`
	Columns     []ColumnDoc  `yaml:"columns"`
	PrimaryKey  []string     `yaml:"primary_key,omitempty"`
	Unique      [][]string   `yaml:"unique,omitempty"`
	ForeignKeys []ForeignDoc `yaml:"foreign_keys,omitempty"`
}

// ColumnDoc is one column's name and declared type word.
type ColumnDoc struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// ForeignDoc is one foreign-key declaration.
type ForeignDoc struct {
	Column    string `yaml:"column"`
	RefTable  string `yaml:"ref_table"`
	RefColumn string `yaml:"ref_column"`
}

// DumpSchema captures every table currently in db as a SchemaDoc.
func DumpSchema(db *catalog.Database) *SchemaDoc {
	doc := &SchemaDoc{}
	for _, t := range db.AllTables() {
		td := TableDoc{Name: t.Name, PrimaryKey: t.PrimaryKey, Unique: t.Unique}
		for _, c := range t.Schema.Columns {
			td.Columns = append(td.Columns, ColumnDoc{Name: c.Name, Type: c.Type.String()})
		}
		for _, fk := range t.ForeignKeys {
			td.ForeignKeys = append(td.ForeignKeys, ForeignDoc{
				Column: fk.Column, RefTable: fk.RefTable, RefColumn: fk.RefColumn,
			})
		}
		doc.Tables = append(doc.Tables, td)
	}
	return doc
}

// WriteSchemaFile marshals doc to YAML and writes it to path.
func WriteSchemaFile(path string, doc *SchemaDoc) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("schemadoc: marshaling: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadSchemaFile reads a YAML schema document from path.
func LoadSchemaFile(path string) (*SchemaDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schemadoc: reading %s: %w", path, err)
	}
	var doc SchemaDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("schemadoc: parsing %s: %w", path, err)
	}
	return &doc, nil
}

// ApplySchema recreates every table in doc against db, in document order.
// CreateTable does not check that foreign-key targets exist, so a missing
// target is not reported here; it surfaces as an unknown-table error on the
// first insert that sets the foreign-key column.
func ApplySchema(db *catalog.Database, doc *SchemaDoc) error {
	for _, td := range doc.Tables {
		cols := make([]engine.Column, len(td.Columns))
		for i, c := range td.Columns {
			cols[i] = engine.Column{Name: c.Name, Type: value.ColumnTypeFromWord(c.Type)}
		}
		var fks []engine.ForeignKey
		for _, f := range td.ForeignKeys {
			fks = append(fks, engine.ForeignKey{Column: f.Column, RefTable: f.RefTable, RefColumn: f.RefColumn})
		}
		schema := engine.NewSchema(cols)
		if _, err := db.CreateTable(td.Name, schema, td.PrimaryKey, td.Unique, fks); err != nil {
			return fmt.Errorf("schemadoc: creating table %q: %w", td.Name, err)
		}
	}
	return nil
}
