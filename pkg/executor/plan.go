package executor

import (
	"fmt"
	"strings"

	"github.com/relstore/relstore/pkg/ast"
)

// NodeType names the physical strategy a plan node represents. Scoped to
// what the executor actually does: an index probe or a full scan feeding
// a nested-loop join (SPEC_FULL.md's EXPLAIN supplement; a diagnostic
// report, not a cost-based optimizer — spec.md's non-goal on query
// optimization beyond single-column equality-index selection still
// applies to the real selection logic in select.go).
type NodeType string

const (
	NodeSeqScan        NodeType = "SEQ_SCAN"
	NodeIndexScan      NodeType = "INDEX_SCAN"
	NodeNestedLoopJoin NodeType = "NESTED_LOOP"
)

// PlanNode is one node of an EXPLAIN tree.
type PlanNode struct {
	NodeType  NodeType
	Table     string
	Index     string
	Condition string
	Children  []*PlanNode
}

// Plan is the root of an EXPLAIN report.
type Plan struct {
	Root *PlanNode
}

// String renders the plan as an indented tree, in the vein of EXPLAIN
// output from real engines.
func (p *Plan) String() string {
	var sb strings.Builder
	writePlanNode(&sb, p.Root, 0)
	return sb.String()
}

func writePlanNode(sb *strings.Builder, n *PlanNode, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	switch n.NodeType {
	case NodeIndexScan:
		fmt.Fprintf(sb, "Index Scan on %s using %s (%s)\n", n.Table, n.Index, n.Condition)
	case NodeSeqScan:
		if n.Condition != "" {
			fmt.Fprintf(sb, "Seq Scan on %s (filter: %s)\n", n.Table, n.Condition)
		} else {
			fmt.Fprintf(sb, "Seq Scan on %s\n", n.Table)
		}
	case NodeNestedLoopJoin:
		fmt.Fprintf(sb, "Nested Loop Join (%s)\n", n.Condition)
	}
	for _, c := range n.Children {
		writePlanNode(sb, c, depth+1)
	}
}

// execExplain builds a diagnostic plan for a SELECT without running it,
// reporting the same index-vs-scan decision baseRows and applyJoin would
// make.
func (e *Executor) execExplain(stmt *ast.ExplainStatement) (*Result, error) {
	sel := stmt.Statement
	table, err := e.lookupTable(sel.From.Name)
	if err != nil {
		return nil, err
	}

	root := &PlanNode{Table: sel.From.Name}
	switch {
	case sel.Where == nil:
		root.NodeType = NodeSeqScan
	default:
		colRef, isCol := sel.Where.Left.(*ast.ColumnRef)
		if isCol && sel.Where.Operator == "=" && table.HasSecondaryIndex(colRef.Name) {
			root.NodeType = NodeIndexScan
			root.Index = colRef.Name
			root.Condition = sel.Where.String()
		} else {
			root.NodeType = NodeSeqScan
			root.Condition = sel.Where.String()
		}
	}

	for _, join := range sel.Joins {
		if _, err := e.lookupTable(join.Table.Name); err != nil {
			return nil, err
		}
		child := &PlanNode{NodeType: NodeSeqScan, Table: join.Table.Name}
		root = &PlanNode{
			NodeType:  NodeNestedLoopJoin,
			Condition: join.On.String(),
			Children:  []*PlanNode{root, child},
		}
	}

	return &Result{Plan: &Plan{Root: root}}, nil
}
