package executor

import "github.com/relstore/relstore/pkg/value"

// Result is what Execute returns: either a status message (DDL/DML) or a
// projected result set (SELECT), never both (spec.md §6).
type Result struct {
	Message string

	Columns []string
	Rows    []map[string]value.Value

	// Plan is populated only for EXPLAIN (SPEC_FULL.md supplement).
	Plan *Plan
}
