// Package dialect defines the database dialect surface consumed by the
// expression compiler: identifier quoting, capability flags, and the SQL
// fragment builders that differ between backends.
package dialect

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sqlexpr/sqlexpr/types"
)

// ErrNotSupported is wrapped by every "this backend cannot render that"
// error returned from a fragment builder.
var ErrNotSupported = errors.New("operation not supported by dialect")

// Connector is the operator symbol joining the two sides of a combined
// expression.
type Connector string

const (
	Add Connector = "+"
	Sub Connector = "-"
	Mul Connector = "*"
	Div Connector = "/"
	Pow Connector = "^"
	// Mod is doubled because rendered SQL carries %s placeholders; a bare
	// percent sign would be indistinguishable from a placeholder. The
	// client unescapes it when rebinding.
	Mod Connector = "%%"

	BitAnd     Connector = "&"
	BitOr      Connector = "|"
	LeftShift  Connector = "<<"
	RightShift Connector = ">>"
)

// Features describes what a backend can render natively.
type Features struct {
	// HasNativeDuration reports whether duration-typed operands take part
	// in arithmetic without rewriting.
	HasNativeDuration bool
	// SupportsNullsOrdering reports native NULLS FIRST / NULLS LAST.
	SupportsNullsOrdering bool
	// SupportsExistsInSelect reports whether EXISTS(...) may appear in a
	// column-list position.
	SupportsExistsInSelect bool
	// SupportsDecimalExpressions reports whether expression results keep
	// decimal precision without an explicit cast.
	SupportsDecimalExpressions bool
}

// Dialect is the per-backend rendering collaborator.
type Dialect interface {
	// Name identifies the backend ("postgres", "mysql", "sqlite", "mssql").
	Name() string
	// QuoteName quotes an identifier. Already-quoted names pass through.
	QuoteName(name string) string
	// Features returns the backend capability flags.
	Features() Features

	// CombineExpression joins the rendered sides of a combined expression
	// with the connector.
	CombineExpression(conn Connector, parts []string) (string, error)
	// CombineDurationExpression is CombineExpression for operands already
	// formatted for duration arithmetic.
	CombineDurationExpression(conn Connector, parts []string) (string, error)
	// FormatForDurationArithmetic rewrites a fragment so it can take part
	// in duration arithmetic on backends without a native duration type.
	FormatForDurationArithmetic(sql string) string
	// DurationIntervalSQL renders a literal duration operand.
	DurationIntervalSQL(d time.Duration) (string, []any)
	// SubtractTemporals renders lhs - rhs for two operands of the same
	// temporal type, producing a duration.
	SubtractTemporals(kind types.FieldType, lhsSQL string, lhsParams []any, rhsSQL string, rhsParams []any) (string, []any, error)
	// UnificationCastSQL returns a %s-style wrapper coercing an expression
	// to the given type, or plain "%s" when no cast is needed.
	UnificationCastSQL(ft types.FieldType) string
	// RandomFunctionSQL returns the backend random() call.
	RandomFunctionSQL() string
	// OrderByNullsTemplate returns the emulation template for NULLS
	// FIRST/LAST ordering, or "" when the backend is native. Templates use
	// %(expression)s and %(ordering)s placeholders.
	OrderByNullsTemplate(nullsFirst bool) string
}

// Get returns the dialect registered under name.
func Get(name string) (Dialect, error) {
	switch name {
	case "postgres", "postgresql":
		return Postgres(), nil
	case "mysql":
		return MySQL(), nil
	case "sqlite", "sqlite3":
		return SQLite(), nil
	case "mssql", "sqlserver":
		return MSSQL(), nil
	}
	return nil, fmt.Errorf("unknown dialect %q", name)
}

// Names lists the registered dialect names.
func Names() []string {
	return []string{"postgres", "mysql", "sqlite", "mssql"}
}

// combineInfix renders "lhs conn rhs" for an arbitrary number of parts.
func combineInfix(conn Connector, parts []string) string {
	return strings.Join(parts, " "+string(conn)+" ")
}

// combinePower renders POWER(lhs, rhs) for backends where ^ is not an
// exponent operator.
func combinePower(parts []string) (string, error) {
	if len(parts) != 2 {
		return "", fmt.Errorf("POWER takes two operands, got %d", len(parts))
	}
	return fmt.Sprintf("POWER(%s, %s)", parts[0], parts[1]), nil
}

func quoteWith(name, opening, closing string) string {
	if strings.HasPrefix(name, opening) && strings.HasSuffix(name, closing) {
		return name
	}
	return opening + name + closing
}
