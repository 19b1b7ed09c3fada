package dialect

import (
	"fmt"
	"time"

	"github.com/sqlexpr/sqlexpr/types"
)

// MSSQLDialect renders SQL Server SQL. SQL Server disallows EXISTS in a
// column-list position and has no native NULLS FIRST/LAST, so both are
// emulated by the nodes that consult these hooks.
type MSSQLDialect struct{}

// MSSQL returns the SQL Server dialect.
func MSSQL() *MSSQLDialect { return &MSSQLDialect{} }

func (d *MSSQLDialect) Name() string { return "mssql" }

func (d *MSSQLDialect) QuoteName(name string) string {
	return quoteWith(name, "[", "]")
}

func (d *MSSQLDialect) Features() Features {
	return Features{
		HasNativeDuration:          false,
		SupportsNullsOrdering:      false,
		SupportsExistsInSelect:     false,
		SupportsDecimalExpressions: true,
	}
}

func (d *MSSQLDialect) CombineExpression(conn Connector, parts []string) (string, error) {
	switch conn {
	case Pow:
		return combinePower(parts)
	case LeftShift, RightShift:
		return "", fmt.Errorf("%w: connector %q", ErrNotSupported, conn)
	}
	return combineInfix(conn, parts), nil
}

func (d *MSSQLDialect) CombineDurationExpression(conn Connector, parts []string) (string, error) {
	if len(parts) != 2 {
		return "", fmt.Errorf("duration arithmetic takes two operands, got %d", len(parts))
	}
	switch conn {
	case Add:
		return fmt.Sprintf("DATEADD(MICROSECOND, %s, %s)", parts[1], parts[0]), nil
	case Sub:
		return fmt.Sprintf("DATEADD(MICROSECOND, -(%s), %s)", parts[1], parts[0]), nil
	}
	return "", fmt.Errorf("%w: connector %q for duration arithmetic", ErrNotSupported, conn)
}

func (d *MSSQLDialect) FormatForDurationArithmetic(sql string) string {
	return sql
}

func (d *MSSQLDialect) DurationIntervalSQL(dur time.Duration) (string, []any) {
	return "%s", []any{dur.Microseconds()}
}

func (d *MSSQLDialect) SubtractTemporals(kind types.FieldType, lhsSQL string, lhsParams []any, rhsSQL string, rhsParams []any) (string, []any, error) {
	params := append(append([]any{}, rhsParams...), lhsParams...)
	sql := fmt.Sprintf("DATEDIFF_BIG(MICROSECOND, %s, %s)", rhsSQL, lhsSQL)
	return sql, params, nil
}

func (d *MSSQLDialect) UnificationCastSQL(ft types.FieldType) string {
	switch ft {
	case types.Integer:
		return "CAST(%s AS INT)"
	case types.BigInteger:
		return "CAST(%s AS BIGINT)"
	case types.Float:
		return "CAST(%s AS FLOAT)"
	case types.Decimal:
		return "CAST(%s AS DECIMAL(38, 19))"
	case types.Bool:
		return "CAST(%s AS BIT)"
	case types.Text:
		return "CAST(%s AS NVARCHAR(MAX))"
	}
	return "%s"
}

func (d *MSSQLDialect) RandomFunctionSQL() string { return "RAND()" }

func (d *MSSQLDialect) OrderByNullsTemplate(nullsFirst bool) string {
	if nullsFirst {
		return "CASE WHEN %(expression)s IS NULL THEN 0 ELSE 1 END, %(expression)s %(ordering)s"
	}
	return "CASE WHEN %(expression)s IS NULL THEN 1 ELSE 0 END, %(expression)s %(ordering)s"
}
