package executor

import (
	"fmt"

	"github.com/relstore/relstore/pkg/ast"
	"github.com/relstore/relstore/pkg/engine"
	"github.com/relstore/relstore/pkg/rowstore"
	"github.com/relstore/relstore/pkg/value"
)

func (e *Executor) execInsert(stmt *ast.InsertStatement) (*Result, error) {
	table, err := e.lookupTable(stmt.Table)
	if err != nil {
		return nil, err
	}

	if len(stmt.Columns) != len(stmt.Values) {
		return nil, engine.NewError(engine.KindColumnCount,
			"Column count (%d) does not match value count (%d) for table '%s'",
			len(stmt.Columns), len(stmt.Values), stmt.Table)
	}

	fields := make(rowstore.Row, len(table.Schema.Columns))
	for _, col := range table.Schema.Columns {
		fields[col.Name] = value.NewNull()
	}

	for i, col := range stmt.Columns {
		colType, ok := table.Schema.TypeOf(col)
		if !ok {
			return nil, engine.NewError(engine.KindUnknownColumn, "Column '%s' does not exist in table '%s'", col, stmt.Table)
		}
		lit, ok := stmt.Values[i].(*ast.Literal)
		if !ok {
			return nil, engine.NewError(engine.KindTypeMismatch, "INSERT values must be literals")
		}
		v, err := coerceLiteral(lit, colType)
		if err != nil {
			return nil, err
		}
		fields[col] = v
	}

	id, err := table.Insert(fields)
	if err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("Row inserted with ID %s.", id)}, nil
}

func (e *Executor) execUpdate(stmt *ast.UpdateStatement) (*Result, error) {
	table, err := e.lookupTable(stmt.Table)
	if err != nil {
		return nil, err
	}

	targets, err := baseRows(table, stmt.Where)
	if err != nil {
		return nil, err
	}

	partial := make(rowstore.Row, len(stmt.Assignments))
	for _, a := range stmt.Assignments {
		colType, ok := table.Schema.TypeOf(a.Column)
		if !ok {
			return nil, engine.NewError(engine.KindUnknownColumn, "Column '%s' does not exist in table '%s'", a.Column, stmt.Table)
		}
		lit, ok := a.Value.(*ast.Literal)
		if !ok {
			return nil, engine.NewError(engine.KindTypeMismatch, "UPDATE SET values must be literals")
		}
		v, err := coerceLiteral(lit, colType)
		if err != nil {
			return nil, err
		}
		partial[a.Column] = v
	}

	count := 0
	for _, target := range targets {
		if err := table.Update(target.ID, partial); err != nil {
			return nil, err
		}
		count++
	}
	return &Result{Message: fmt.Sprintf("%d row(s) updated.", count)}, nil
}

func (e *Executor) execDelete(stmt *ast.DeleteStatement) (*Result, error) {
	table, err := e.lookupTable(stmt.Table)
	if err != nil {
		return nil, err
	}

	targets, err := baseRows(table, stmt.Where)
	if err != nil {
		return nil, err
	}

	count := 0
	for _, target := range targets {
		if err := table.Delete(target.ID); err != nil {
			return nil, err
		}
		count++
	}
	return &Result{Message: fmt.Sprintf("%d row(s) deleted.", count)}, nil
}
