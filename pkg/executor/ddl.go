package executor

import (
	"fmt"
	"strings"

	"github.com/relstore/relstore/pkg/ast"
	"github.com/relstore/relstore/pkg/engine"
	"github.com/relstore/relstore/pkg/value"
)

func (e *Executor) execCreateTable(stmt *ast.CreateTableStatement) (*Result, error) {
	cols := make([]engine.Column, len(stmt.Columns))
	var pk []string
	var unique [][]string
	for i, c := range stmt.Columns {
		cols[i] = engine.Column{Name: c.Name, Type: value.ColumnTypeFromWord(strings.ToUpper(c.TypeWord))}
		if c.PK {
			pk = append(pk, c.Name)
		}
		if c.Unique {
			unique = append(unique, []string{c.Name})
		}
	}

	var fks []engine.ForeignKey
	for _, con := range stmt.Constraints {
		switch con.Kind {
		case "PRIMARY_KEY":
			pk = append(pk, con.Columns...)
		case "UNIQUE":
			unique = append(unique, con.Columns)
		case "FOREIGN_KEY":
			fks = append(fks, engine.ForeignKey{
				Column:    con.Columns[0],
				RefTable:  con.RefTable,
				RefColumn: con.RefColumn,
			})
		}
	}

	schema := engine.NewSchema(cols)
	if _, err := e.db.CreateTable(stmt.Table, schema, pk, unique, fks); err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("Table '%s' created successfully.", stmt.Table)}, nil
}

func (e *Executor) execCreateIndex(stmt *ast.CreateIndexStatement) (*Result, error) {
	table, err := e.lookupTable(stmt.Table)
	if err != nil {
		return nil, err
	}
	if err := table.CreateIndex(stmt.Column); err != nil {
		return nil, err
	}
	e.logger.WithFields(map[string]interface{}{"table": stmt.Table, "column": stmt.Column}).Debug("secondary index built")
	return &Result{Message: fmt.Sprintf("Index on '%s' created successfully for table '%s'.", stmt.Column, stmt.Table)}, nil
}

func (e *Executor) execDropTable(stmt *ast.DropTableStatement) (*Result, error) {
	if err := e.db.DropTable(stmt.Table); err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("Table '%s' dropped successfully.", stmt.Table)}, nil
}
