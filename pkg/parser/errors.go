package parser

import "fmt"

// Error is a syntactic failure: the parser found a token it could not
// fit into the grammar at that position (spec.md §4.2, §7).
type Error struct {
	Message string
	Line    int
	Column  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (line %d, column %d)", e.Message, e.Line, e.Column)
}
