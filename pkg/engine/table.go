// Package engine implements the table engine: the system's integrity core.
// A Table owns its schema, constraints, row store, and every derived index,
// and performs validated mutation in the order spec.md §4.4 requires —
// every check runs before any state changes (spec.md's "ordering rule").
package engine

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/relstore/relstore/pkg/rowstore"
	"github.com/relstore/relstore/pkg/value"
)

// Catalog is the cross-table view a Table needs for foreign-key validation.
// The catalog owns tables; a Table only ever borrows it (design notes §9:
// "pass it (borrowed, not owned) into the table's mutating operations").
type Catalog interface {
	LookupTable(name string) (*Table, bool)
	AllTables() []*Table
}

type secondaryIndex struct {
	column   string
	postings map[value.Value][]string
}

// Table is the table engine: schema, primary key, unique groups, foreign
// keys, the row store, and the primary-key/unique/secondary indexes
// (spec.md §3, §4.4).
type Table struct {
	Name        string
	Schema      *Schema
	PrimaryKey  []string
	Unique      [][]string
	ForeignKeys []ForeignKey

	rows *rowstore.Store

	pkIndex   map[string]string
	uniqueIdx []map[string]string
	secondary map[string]*secondaryIndex

	catalog Catalog
}

// NewTable constructs an empty table. Primary-key columns are automatically
// indexed (spec.md §3).
func NewTable(name string, schema *Schema, pk []string, unique [][]string, fks []ForeignKey, catalog Catalog) *Table {
	t := &Table{
		Name:        name,
		Schema:      schema,
		PrimaryKey:  pk,
		Unique:      unique,
		ForeignKeys: fks,
		rows:        rowstore.New(),
		pkIndex:     make(map[string]string),
		uniqueIdx:   make([]map[string]string, len(unique)),
		secondary:   make(map[string]*secondaryIndex),
		catalog:     catalog,
	}
	for i := range unique {
		t.uniqueIdx[i] = make(map[string]string)
	}
	for _, col := range pk {
		t.ensureSecondaryIndex(col)
	}
	return t
}

// ensureSecondaryIndex creates an empty secondary index for column if one
// does not already exist. Together with CreateIndex, this is the only way a
// secondary index comes into being — never as a side effect of a lookup
// (spec.md §9's "ghost index" defect is deliberately not reproduced).
func (t *Table) ensureSecondaryIndex(column string) *secondaryIndex {
	idx, ok := t.secondary[column]
	if !ok {
		idx = &secondaryIndex{column: column, postings: make(map[value.Value][]string)}
		t.secondary[column] = idx
	}
	return idx
}

// HasSecondaryIndex reports whether column currently has a secondary index.
func (t *Table) HasSecondaryIndex(column string) bool {
	_, ok := t.secondary[column]
	return ok
}

// LookupBySecondaryIndex returns the posting list for (column, v) if column
// is indexed. ok is false if column has no index at all, distinguishing
// "not indexed" from "indexed but empty".
func (t *Table) LookupBySecondaryIndex(column string, v value.Value) (ids []string, ok bool) {
	idx, exists := t.secondary[column]
	if !exists {
		return nil, false
	}
	return idx.postings[v], true
}

// Get returns the row for id.
func (t *Table) Get(id string) (rowstore.Row, bool) { return t.rows.Get(id) }

// AllRows enumerates every row in insertion order.
func (t *Table) AllRows() []rowstore.IDRow { return t.rows.All() }

// CreateIndex builds a secondary index over column by scanning all existing
// rows, replacing any prior index on that column (spec.md §4.4).
func (t *Table) CreateIndex(column string) error {
	if !t.Schema.Has(column) {
		return errf(KindUnknownColumn, "Column '%s' does not exist in table '%s'", column, t.Name)
	}
	idx := &secondaryIndex{column: column, postings: make(map[value.Value][]string)}
	for _, ir := range t.rows.All() {
		v := ir.Row[column]
		idx.postings[v] = append(idx.postings[v], ir.ID)
	}
	t.secondary[column] = idx
	return nil
}

// completenessAndType checks that every schema column is present in fields
// and, for non-null values, carries the declared type (spec.md §4.4 step 1).
func (t *Table) completenessAndType(fields rowstore.Row) error {
	for _, col := range t.Schema.Columns {
		v, present := fields[col.Name]
		if !present {
			return errf(KindTypeMismatch, "Missing value for column '%s' in table '%s'", col.Name, t.Name)
		}
		if !v.MatchesType(col.Type) {
			return errf(KindTypeMismatch, "Incorrect type for column '%s' in table '%s': expected %s", col.Name, t.Name, col.Type)
		}
	}
	return nil
}

func tupleOf(row rowstore.Row, cols []string) []value.Value {
	out := make([]value.Value, len(cols))
	for i, c := range cols {
		out[i] = row[c]
	}
	return out
}

// Insert validates then commits a new row, returning its freshly allocated
// row id (spec.md §4.4).
func (t *Table) Insert(fields rowstore.Row) (string, error) {
	if err := t.completenessAndType(fields); err != nil {
		return "", err
	}

	var pkTuple []value.Value
	if len(t.PrimaryKey) > 0 {
		pkTuple = tupleOf(fields, t.PrimaryKey)
		if _, exists := t.pkIndex[tupleKey(pkTuple)]; exists {
			return "", errf(KindDuplicatePK, "Duplicate primary key %v for table '%s'", valuesString(pkTuple), t.Name)
		}
	}

	uniqueTuples := make([][]value.Value, len(t.Unique))
	for i, cols := range t.Unique {
		ut := tupleOf(fields, cols)
		uniqueTuples[i] = ut
		if _, exists := t.uniqueIdx[i][tupleKey(ut)]; exists {
			return "", errf(KindDuplicateUnique, "Duplicate unique key %v for table '%s'", valuesString(ut), t.Name)
		}
	}

	for _, fk := range t.ForeignKeys {
		v := fields[fk.Column]
		if v.IsNull() {
			continue
		}
		if err := t.checkForeignKey(fk, v); err != nil {
			return "", err
		}
	}

	id := uuid.New().String()
	row := fields.Clone()
	t.rows.Set(id, row)

	if len(t.PrimaryKey) > 0 {
		t.pkIndex[tupleKey(pkTuple)] = id
	}
	for i := range t.Unique {
		t.uniqueIdx[i][tupleKey(uniqueTuples[i])] = id
	}
	for col, idx := range t.secondary {
		v := row[col]
		idx.postings[v] = append(idx.postings[v], id)
	}

	return id, nil
}

// checkForeignKey validates that fk's referenced table/column contains v,
// using the referenced column's secondary index when one exists and a full
// scan otherwise (spec.md §4.4 step 4).
func (t *Table) checkForeignKey(fk ForeignKey, v value.Value) error {
	refTable, ok := t.catalog.LookupTable(fk.RefTable)
	if !ok {
		return errf(KindUnknownTable, "Table '%s' does not exist.", fk.RefTable)
	}
	if found := refTable.probe(fk.RefColumn, v); !found {
		return errf(KindForeignKey, "Foreign key constraint failed: '%s.%s' does not contain '%s'", fk.RefTable, fk.RefColumn, v)
	}
	return nil
}

// probe reports whether column carries value v anywhere in the table,
// via its secondary index if indexed, otherwise a full scan.
func (t *Table) probe(column string, v value.Value) bool {
	if idx, ok := t.secondary[column]; ok {
		ids := idx.postings[v]
		return len(ids) > 0
	}
	for _, ir := range t.rows.All() {
		if ir.Row[column].Equal(v) {
			return true
		}
	}
	return false
}

// Update reads the row at rowID, overlays partial on top of it, re-checks
// every constraint for the tuples that actually changed, and maintains
// index state accordingly (spec.md §4.4).
func (t *Table) Update(rowID string, partial rowstore.Row) error {
	existing, ok := t.rows.Get(rowID)
	if !ok {
		return errf(KindRowNotFound, "Row ID '%s' does not exist in table '%s'", rowID, t.Name)
	}
	candidate := existing.Clone()
	for k, v := range partial {
		candidate[k] = v
	}

	if err := t.completenessAndType(candidate); err != nil {
		return err
	}

	pkChanged := false
	var oldPK, newPK []value.Value
	if len(t.PrimaryKey) > 0 {
		oldPK = tupleOf(existing, t.PrimaryKey)
		newPK = tupleOf(candidate, t.PrimaryKey)
		pkChanged = tupleKey(oldPK) != tupleKey(newPK)
		if pkChanged {
			if _, exists := t.pkIndex[tupleKey(newPK)]; exists {
				return errf(KindDuplicatePK, "Duplicate primary key %v for table '%s'", valuesString(newPK), t.Name)
			}
		}
	}

	uniqueChanged := make([]bool, len(t.Unique))
	oldUnique := make([][]value.Value, len(t.Unique))
	newUnique := make([][]value.Value, len(t.Unique))
	for i, cols := range t.Unique {
		oldUnique[i] = tupleOf(existing, cols)
		newUnique[i] = tupleOf(candidate, cols)
		if tupleKey(oldUnique[i]) != tupleKey(newUnique[i]) {
			uniqueChanged[i] = true
			if _, exists := t.uniqueIdx[i][tupleKey(newUnique[i])]; exists {
				return errf(KindDuplicateUnique, "Duplicate unique key %v for table '%s'", valuesString(newUnique[i]), t.Name)
			}
		}
	}

	for _, fk := range t.ForeignKeys {
		oldV := existing[fk.Column]
		newV := candidate[fk.Column]
		if oldV.Equal(newV) {
			continue
		}
		if newV.IsNull() {
			continue
		}
		if err := t.checkForeignKey(fk, newV); err != nil {
			return err
		}
	}

	// All checks passed: mutate indexes, then the row store last.
	if pkChanged {
		delete(t.pkIndex, tupleKey(oldPK))
		t.pkIndex[tupleKey(newPK)] = rowID
	}
	for i := range t.Unique {
		if uniqueChanged[i] {
			delete(t.uniqueIdx[i], tupleKey(oldUnique[i]))
			t.uniqueIdx[i][tupleKey(newUnique[i])] = rowID
		}
	}
	for col, idx := range t.secondary {
		oldV := existing[col]
		newV := candidate[col]
		if oldV.Equal(newV) {
			continue
		}
		idx.postings[oldV] = removeID(idx.postings[oldV], rowID)
		if len(idx.postings[oldV]) == 0 {
			delete(idx.postings, oldV)
		}
		idx.postings[newV] = append(idx.postings[newV], rowID)
	}

	t.rows.Set(rowID, candidate)
	return nil
}

// Delete removes rowID after confirming no other table's foreign key still
// references it (spec.md §4.4).
func (t *Table) Delete(rowID string) error {
	row, ok := t.rows.Get(rowID)
	if !ok {
		return errf(KindRowNotFound, "Row ID '%s' does not exist in table '%s'", rowID, t.Name)
	}

	for _, other := range t.catalog.AllTables() {
		for _, fk := range other.ForeignKeys {
			if fk.RefTable != t.Name {
				continue
			}
			refValue := row[fk.RefColumn]
			if refValue.IsNull() {
				continue
			}
			if other.probe(fk.Column, refValue) {
				return errf(KindReferentialIntegrity, "Cannot delete row; it is referenced by table '%s' via foreign key '%s'", other.Name, fk.Column)
			}
		}
	}

	if len(t.PrimaryKey) > 0 {
		delete(t.pkIndex, tupleKey(tupleOf(row, t.PrimaryKey)))
	}
	for i, cols := range t.Unique {
		delete(t.uniqueIdx[i], tupleKey(tupleOf(row, cols)))
	}
	for col, idx := range t.secondary {
		v := row[col]
		idx.postings[v] = removeID(idx.postings[v], rowID)
		if len(idx.postings[v]) == 0 {
			delete(idx.postings, v)
		}
	}

	t.rows.Delete(rowID)
	return nil
}

// RowIDByPrimaryKey resolves a row id from a primary-key tuple via the
// primary-key index, without a linear scan.
func (t *Table) RowIDByPrimaryKey(tuple []value.Value) (string, bool) {
	id, ok := t.pkIndex[tupleKey(tuple)]
	return id, ok
}

func removeID(ids []string, target string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

func valuesString(vals []value.Value) string {
	s := "("
	for i, v := range vals {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%v", v)
	}
	return s + ")"
}
