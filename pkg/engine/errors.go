package engine

import "fmt"

// Kind tags an execution-layer error per spec.md §7's taxonomy.
type Kind int

const (
	KindUnknownTable Kind = iota
	KindUnknownColumn
	KindTypeMismatch
	KindColumnCount
	KindDuplicatePK
	KindDuplicateUnique
	KindForeignKey
	KindReferentialIntegrity
	KindAmbiguousColumn
	KindUnsupportedOperator
	KindRowNotFound
	KindTableExists
)

// Error is the execution-error type. Message fragments match spec.md §6
// verbatim so callers can pattern-match on them.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func errf(k Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...)}
}

// NewError builds an *Error for use outside this package (e.g. the catalog's
// create/drop-table failures, which share this taxonomy).
func NewError(k Kind, format string, args ...interface{}) *Error {
	return errf(k, format, args...)
}
