package engine

import (
	"fmt"
	"strings"

	"github.com/relstore/relstore/pkg/value"
)

// tupleKey builds a canonical, collision-free string key for a tuple of
// Values, used by the primary-key and unique indexes (spec.md §3's
// "tuple of column values"). Each field is tagged with its kind and, for
// text, its byte length, so no two distinct tuples can produce the same key.
func tupleKey(vals []value.Value) string {
	var b strings.Builder
	for _, v := range vals {
		switch v.Kind {
		case value.Null:
			b.WriteString("n;")
		case value.Int:
			fmt.Fprintf(&b, "i%d;", v.I)
		case value.Float:
			fmt.Fprintf(&b, "f%v;", v.F)
		case value.Text:
			fmt.Fprintf(&b, "s%d:%s;", len(v.S), v.S)
		}
	}
	return b.String()
}
