// Package executor dispatches a parsed statement to the catalog and table
// engine and assembles the result the caller sees (spec.md §4.5).
package executor

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/relstore/relstore/pkg/ast"
	"github.com/relstore/relstore/pkg/catalog"
	"github.com/relstore/relstore/pkg/engine"
)

// Executor runs statements against a single catalog. It holds no state of
// its own beyond the catalog reference (spec.md §5: the catalog is the
// only shared mutable state, owned by exactly one executor instance).
type Executor struct {
	db     *catalog.Database
	logger *logrus.Logger
}

// New returns an Executor bound to db. An optional *logrus.Logger receives
// statement-execution and constraint-failure diagnostics; it defaults to
// logrus.StandardLogger() when omitted (SPEC_FULL.md §2.1).
func New(db *catalog.Database, logger ...*logrus.Logger) *Executor {
	l := logrus.StandardLogger()
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	}
	return &Executor{db: db, logger: l}
}

// Execute runs one statement and returns its result or the execution
// error that aborted it. Every call is logged at Debug on success or Warn
// on failure, with the statement kind, target table (where applicable) and
// wall-clock duration as structured fields.
func (e *Executor) Execute(stmt ast.Statement) (*Result, error) {
	start := time.Now()
	result, err := e.dispatch(stmt)
	fields := logrus.Fields{
		"statement": stmt.Type(),
		"table":     statementTable(stmt),
		"duration":  time.Since(start),
	}
	if err != nil {
		e.logger.WithFields(fields).Warn(err.Error())
	} else {
		e.logger.WithFields(fields).Debug("statement executed")
	}
	return result, err
}

func (e *Executor) dispatch(stmt ast.Statement) (*Result, error) {
	switch s := stmt.(type) {
	case *ast.CreateTableStatement:
		return e.execCreateTable(s)
	case *ast.CreateIndexStatement:
		return e.execCreateIndex(s)
	case *ast.DropTableStatement:
		return e.execDropTable(s)
	case *ast.InsertStatement:
		return e.execInsert(s)
	case *ast.SelectStatement:
		return e.execSelect(s)
	case *ast.UpdateStatement:
		return e.execUpdate(s)
	case *ast.DeleteStatement:
		return e.execDelete(s)
	case *ast.ExplainStatement:
		return e.execExplain(s)
	default:
		return nil, fmt.Errorf("executor: unsupported statement %T", stmt)
	}
}

// statementTable extracts the target table name for logging, or "" for
// statement kinds with no single target (e.g. EXPLAIN's wrapped SELECT).
func statementTable(stmt ast.Statement) string {
	switch s := stmt.(type) {
	case *ast.CreateTableStatement:
		return s.Table
	case *ast.CreateIndexStatement:
		return s.Table
	case *ast.DropTableStatement:
		return s.Table
	case *ast.InsertStatement:
		return s.Table
	case *ast.SelectStatement:
		return s.From.Name
	case *ast.UpdateStatement:
		return s.Table
	case *ast.DeleteStatement:
		return s.Table
	default:
		return ""
	}
}

func (e *Executor) lookupTable(name string) (*engine.Table, error) {
	t, ok := e.db.LookupTable(name)
	if !ok {
		return nil, engine.NewError(engine.KindUnknownTable, "Table '%s' does not exist.", name)
	}
	return t, nil
}
