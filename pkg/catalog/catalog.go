// Package catalog implements the catalog: the name-to-table map at the top
// of the in-memory database (spec.md §3, §4.4's create_table/drop_table).
package catalog

import (
	"github.com/sirupsen/logrus"

	"github.com/relstore/relstore/pkg/engine"
)

// Database is the catalog: a mapping from table name to table. Table names
// are unique; insertion order is irrelevant (spec.md §3).
type Database struct {
	tables map[string]*engine.Table
	logger *logrus.Logger
}

// New creates an empty catalog. An optional *logrus.Logger receives
// table-lifecycle diagnostics (create, drop, blocked drop); it defaults to
// logrus.StandardLogger() when omitted (SPEC_FULL.md §2.1).
func New(logger ...*logrus.Logger) *Database {
	l := logrus.StandardLogger()
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	}
	return &Database{tables: make(map[string]*engine.Table), logger: l}
}

// LookupTable implements engine.Catalog.
func (d *Database) LookupTable(name string) (*engine.Table, bool) {
	t, ok := d.tables[name]
	return t, ok
}

// AllTables implements engine.Catalog.
func (d *Database) AllTables() []*engine.Table {
	out := make([]*engine.Table, 0, len(d.tables))
	for _, t := range d.tables {
		out = append(out, t)
	}
	return out
}

// CreateTable registers a new table. It fails if the name already exists
// (spec.md §4.4).
func (d *Database) CreateTable(name string, schema *engine.Schema, pk []string, unique [][]string, fks []engine.ForeignKey) (*engine.Table, error) {
	if _, exists := d.tables[name]; exists {
		return nil, engine.NewError(engine.KindTableExists, "Table '%s' already exists.", name)
	}
	t := engine.NewTable(name, schema, pk, unique, fks, d)
	d.tables[name] = t
	d.logger.WithField("table", name).Debug("table created")
	return t, nil
}

// DropTable removes a table. It fails if any other table declares a
// foreign key targeting it (spec.md invariant 6).
func (d *Database) DropTable(name string) error {
	if _, exists := d.tables[name]; !exists {
		return engine.NewError(engine.KindUnknownTable, "Table '%s' does not exist.", name)
	}
	for _, t := range d.tables {
		if t.Name == name {
			continue
		}
		for _, fk := range t.ForeignKeys {
			if fk.RefTable == name {
				d.logger.WithFields(logrus.Fields{"table": name, "referencing_table": t.Name}).Warn("drop table blocked by referential integrity")
				return engine.NewError(engine.KindReferentialIntegrity, "Cannot drop table '%s': referenced by table '%s' via foreign key '%s'", name, t.Name, fk.Column)
			}
		}
	}
	delete(d.tables, name)
	d.logger.WithField("table", name).Debug("table dropped")
	return nil
}
