package executor

import (
	"sort"
	"strings"

	"github.com/relstore/relstore/pkg/ast"
	"github.com/relstore/relstore/pkg/engine"
	"github.com/relstore/relstore/pkg/rowstore"
	"github.com/relstore/relstore/pkg/value"
)

func (e *Executor) execSelect(stmt *ast.SelectStatement) (*Result, error) {
	table, err := e.lookupTable(stmt.From.Name)
	if err != nil {
		return nil, err
	}

	base, err := baseRows(table, stmt.Where)
	if err != nil {
		return nil, err
	}

	rows := make([]rowstore.Row, len(base))
	for i, ir := range base {
		rows[i] = ir.Row
	}

	for _, join := range stmt.Joins {
		rows, err = e.applyJoin(stmt.From, rows, join)
		if err != nil {
			return nil, err
		}
	}

	projected, columns, err := project(rows, stmt.Columns)
	if err != nil {
		return nil, err
	}

	if len(stmt.OrderBy) > 0 {
		if err := orderRows(projected, stmt.OrderBy); err != nil {
			return nil, err
		}
	}

	return &Result{Columns: columns, Rows: projected}, nil
}

// baseRows materializes the candidate rows for a single-table WHERE clause
// (spec.md §4.5 "Base rows"): an index probe for an indexed equality, a
// full scan otherwise.
func baseRows(table *engine.Table, where *ast.Condition) ([]rowstore.IDRow, error) {
	if where == nil {
		return table.AllRows(), nil
	}

	colRef, ok := where.Left.(*ast.ColumnRef)
	if !ok {
		return nil, engine.NewError(engine.KindUnsupportedOperator, "WHERE clause must compare a column to a value")
	}
	lit, ok := where.Right.(*ast.Literal)
	if !ok {
		return nil, engine.NewError(engine.KindUnsupportedOperator, "WHERE clause must compare a column to a value")
	}

	colType, exists := table.Schema.TypeOf(colRef.Name)
	if !exists {
		colType = value.TextType
	}
	target, err := coerceLiteral(lit, colType)
	if err != nil {
		return nil, err
	}

	if where.Operator == "=" && table.HasSecondaryIndex(colRef.Name) {
		ids, _ := table.LookupBySecondaryIndex(colRef.Name, target)
		out := make([]rowstore.IDRow, 0, len(ids))
		for _, id := range ids {
			row, ok := table.Get(id)
			if !ok {
				continue
			}
			out = append(out, rowstore.IDRow{ID: id, Row: row})
		}
		return out, nil
	}

	var out []rowstore.IDRow
	for _, ir := range table.AllRows() {
		if evaluate(ir.Row[colRef.Name], where.Operator, target) {
			out = append(out, ir)
		}
	}
	return out, nil
}

func evaluate(v value.Value, op string, target value.Value) bool {
	switch op {
	case "=":
		return v.Equal(target)
	case "!=", "<>":
		return !v.Equal(target)
	case "<":
		cmp, ok := v.Compare(target)
		return ok && cmp < 0
	case "<=":
		cmp, ok := v.Compare(target)
		return ok && cmp <= 0
	case ">":
		cmp, ok := v.Compare(target)
		return ok && cmp > 0
	case ">=":
		cmp, ok := v.Compare(target)
		return ok && cmp >= 0
	default:
		return false
	}
}

// applyJoin merges each left row against every row of the join target,
// re-keying columns by table name (spec.md §4.5 "Joins"). Join type is
// recorded but not semantically distinguished; all joins execute as inner
// equi-joins (spec.md's explicit non-goal on outer joins).
func (e *Executor) applyJoin(from ast.TableRef, left []rowstore.Row, join *ast.JoinClause) ([]rowstore.Row, error) {
	rightTable, err := e.lookupTable(join.Table.Name)
	if err != nil {
		return nil, err
	}
	rightRows := rightTable.AllRows()

	baseName := from.Name
	if from.Alias != "" {
		baseName = from.Alias
	}
	joinName := join.Table.Name
	if join.Table.Alias != "" {
		joinName = join.Table.Alias
	}

	var merged []rowstore.Row
	for _, l := range left {
		leftVal, ok := resolveColumnValue(l, join.On.Left)
		if !ok {
			continue
		}
		for _, r := range rightRows {
			rightVal, ok := resolveColumnValue(r.Row, join.On.Right)
			if !ok {
				continue
			}
			if !leftVal.Equal(rightVal) {
				continue
			}
			merged = append(merged, mergeJoinedRow(l, r.Row, baseName, joinName))
		}
	}
	return merged, nil
}

func mergeJoinedRow(left, right rowstore.Row, baseName, joinName string) rowstore.Row {
	out := make(rowstore.Row, len(left)+len(right))
	for k, v := range left {
		if strings.Contains(k, ".") {
			out[k] = v
		} else {
			out[baseName+"."+k] = v
		}
	}
	for k, v := range right {
		out[joinName+"."+k] = v
	}
	return out
}

// resolveColumnValue looks up ref's value in row, trying an explicit
// table-qualified key, then the bare name, then a single table-qualified
// suffix match. Used to resolve join ON operands against rows that may or
// may not have been re-keyed yet.
func resolveColumnValue(row rowstore.Row, ref *ast.ColumnRef) (value.Value, bool) {
	if ref.Table != "" {
		if v, ok := row[ref.Table+"."+ref.Name]; ok {
			return v, true
		}
	}
	if v, ok := row[ref.Name]; ok {
		return v, true
	}
	suffix := "." + ref.Name
	var found value.Value
	count := 0
	for k, v := range row {
		if strings.HasSuffix(k, suffix) {
			found = v
			count++
		}
	}
	if count == 1 {
		return found, true
	}
	return value.Value{}, false
}

// project applies the SELECT column list (spec.md §4.5 "Projection"). A
// bare name matches an exact key first, then a single table-qualified
// suffix (design notes §9 fixes the source's broken bare-name match).
func project(rows []rowstore.Row, cols []ast.Expression) ([]map[string]value.Value, []string, error) {
	if len(cols) == 1 {
		if _, ok := cols[0].(*ast.Star); ok {
			out := make([]map[string]value.Value, len(rows))
			for i, r := range rows {
				out[i] = map[string]value.Value(r)
			}
			return out, nil, nil
		}
	}

	names := make([]string, len(cols))
	refs := make([]*ast.ColumnRef, len(cols))
	for i, c := range cols {
		ref, ok := c.(*ast.ColumnRef)
		if !ok {
			return nil, nil, engine.NewError(engine.KindUnsupportedOperator, "unsupported projection expression")
		}
		refs[i] = ref
		names[i] = ref.String()
	}

	out := make([]map[string]value.Value, len(rows))
	for i, r := range rows {
		projected := make(map[string]value.Value, len(refs))
		for j, ref := range refs {
			v, err := projectColumn(r, ref)
			if err != nil {
				return nil, nil, err
			}
			projected[names[j]] = v
		}
		out[i] = projected
	}
	return out, names, nil
}

func projectColumn(row rowstore.Row, ref *ast.ColumnRef) (value.Value, error) {
	if ref.Table != "" {
		key := ref.Table + "." + ref.Name
		if v, ok := row[key]; ok {
			return v, nil
		}
		return value.Value{}, engine.NewError(engine.KindUnknownColumn, "Column '%s' does not exist", key)
	}

	if v, ok := row[ref.Name]; ok {
		return v, nil
	}

	suffix := "." + ref.Name
	matches := 0
	var found value.Value
	for k, v := range row {
		if strings.HasSuffix(k, suffix) {
			matches++
			found = v
		}
	}
	switch {
	case matches == 0:
		return value.Value{}, engine.NewError(engine.KindUnknownColumn, "Column '%s' does not exist", ref.Name)
	case matches > 1:
		return value.Value{}, engine.NewError(engine.KindAmbiguousColumn, "Ambiguous column '%s'", ref.Name)
	default:
		return found, nil
	}
}

// orderRows stable-sorts rows in place by the ORDER BY list (spec.md §4.5
// "Ordering"). Each item carries its own ASC/DESC sense; multiple items
// are applied as successive stable passes so earlier keys remain primary.
// Ordering runs after projection, so an item naming a column absent from
// the projected rows leaves the order unchanged.
func orderRows(rows []map[string]value.Value, items []ast.OrderByItem) error {
	for i := len(items) - 1; i >= 0; i-- {
		item := items[i]
		sort.SliceStable(rows, func(a, b int) bool {
			va, aok := lookupOrderKey(rows[a], item.Column)
			vb, bok := lookupOrderKey(rows[b], item.Column)
			if !aok || !bok {
				return false
			}
			cmp, ok := va.Compare(vb)
			if !ok {
				return false
			}
			if item.Descending {
				return cmp > 0
			}
			return cmp < 0
		})
	}
	return nil
}

func lookupOrderKey(row map[string]value.Value, ref ast.ColumnRef) (value.Value, bool) {
	return resolveColumnValue(rowstore.Row(row), &ref)
}
