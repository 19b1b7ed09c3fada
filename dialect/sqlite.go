package dialect

import (
	"fmt"
	"time"

	"github.com/sqlexpr/sqlexpr/types"
)

// SQLiteDialect renders SQLite SQL. Durations are bigint microseconds and
// temporal subtraction goes through julianday arithmetic.
type SQLiteDialect struct{}

// SQLite returns the SQLite dialect.
func SQLite() *SQLiteDialect { return &SQLiteDialect{} }

func (d *SQLiteDialect) Name() string { return "sqlite" }

func (d *SQLiteDialect) QuoteName(name string) string {
	return quoteWith(name, `"`, `"`)
}

func (d *SQLiteDialect) Features() Features {
	return Features{
		HasNativeDuration:          false,
		SupportsNullsOrdering:      false,
		SupportsExistsInSelect:     true,
		SupportsDecimalExpressions: false,
	}
}

func (d *SQLiteDialect) CombineExpression(conn Connector, parts []string) (string, error) {
	if conn == Pow {
		return combinePower(parts)
	}
	return combineInfix(conn, parts), nil
}

func (d *SQLiteDialect) CombineDurationExpression(conn Connector, parts []string) (string, error) {
	switch conn {
	case Add, Sub:
		return combineInfix(conn, parts), nil
	}
	return "", fmt.Errorf("%w: connector %q for duration arithmetic", ErrNotSupported, conn)
}

func (d *SQLiteDialect) FormatForDurationArithmetic(sql string) string {
	// Microsecond integers combine with plain integer arithmetic.
	return fmt.Sprintf("CAST(%s AS BIGINT)", sql)
}

func (d *SQLiteDialect) DurationIntervalSQL(dur time.Duration) (string, []any) {
	return "%s", []any{dur.Microseconds()}
}

func (d *SQLiteDialect) SubtractTemporals(kind types.FieldType, lhsSQL string, lhsParams []any, rhsSQL string, rhsParams []any) (string, []any, error) {
	params := append(append([]any{}, lhsParams...), rhsParams...)
	sql := fmt.Sprintf("CAST((JULIANDAY(%s) - JULIANDAY(%s)) * 86400000000 AS INTEGER)", lhsSQL, rhsSQL)
	return sql, params, nil
}

func (d *SQLiteDialect) UnificationCastSQL(ft types.FieldType) string {
	if ft == types.Decimal {
		return "CAST(%s AS NUMERIC)"
	}
	return "%s"
}

func (d *SQLiteDialect) RandomFunctionSQL() string { return "RANDOM()" }

func (d *SQLiteDialect) OrderByNullsTemplate(nullsFirst bool) string {
	if nullsFirst {
		return "%(expression)s IS NOT NULL, %(expression)s %(ordering)s"
	}
	return "%(expression)s IS NULL, %(expression)s %(ordering)s"
}
