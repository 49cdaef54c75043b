package executor

import (
	"strconv"
	"strings"

	"github.com/relstore/relstore/pkg/ast"
	"github.com/relstore/relstore/pkg/engine"
	"github.com/relstore/relstore/pkg/value"
)

// naturalValue parses a literal into its natural tagged Value, per
// spec.md §4.6: numbers are int unless they carry a '.', in which case
// they're float; quoted literals are always text; NULL stays null.
func naturalValue(lit *ast.Literal) (value.Value, error) {
	if lit.Null {
		return value.NewNull(), nil
	}
	if lit.Quoted {
		return value.NewText(lit.Raw), nil
	}
	if strings.Contains(lit.Raw, ".") {
		f, err := strconv.ParseFloat(lit.Raw, 64)
		if err != nil {
			return value.Value{}, engine.NewError(engine.KindTypeMismatch, "Malformed numeric literal '%s'", lit.Raw)
		}
		return value.NewFloat(f), nil
	}
	i, err := strconv.ParseInt(lit.Raw, 10, 64)
	if err != nil {
		return value.Value{}, engine.NewError(engine.KindTypeMismatch, "Malformed numeric literal '%s'", lit.Raw)
	}
	return value.NewInt(i), nil
}

// coerceLiteral parses lit and re-tags it to the declared column type.
func coerceLiteral(lit *ast.Literal, colType value.ColumnType) (value.Value, error) {
	v, err := naturalValue(lit)
	if err != nil {
		return value.Value{}, err
	}
	cv, err := value.Coerce(v, colType)
	if err != nil {
		return value.Value{}, engine.NewError(engine.KindTypeMismatch, "%s", err.Error())
	}
	return cv, nil
}
