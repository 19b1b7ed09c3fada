package dialect

import (
	"fmt"
	"time"

	"github.com/sqlexpr/sqlexpr/types"
)

// PostgresDialect renders PostgreSQL SQL. Durations are carried as bigint
// microseconds, which Postgres arithmetic handles natively.
type PostgresDialect struct{}

// Postgres returns the PostgreSQL dialect.
func Postgres() *PostgresDialect { return &PostgresDialect{} }

func (d *PostgresDialect) Name() string { return "postgres" }

func (d *PostgresDialect) QuoteName(name string) string {
	return quoteWith(name, `"`, `"`)
}

func (d *PostgresDialect) Features() Features {
	return Features{
		HasNativeDuration:          true,
		SupportsNullsOrdering:      true,
		SupportsExistsInSelect:     true,
		SupportsDecimalExpressions: true,
	}
}

func (d *PostgresDialect) CombineExpression(conn Connector, parts []string) (string, error) {
	return combineInfix(conn, parts), nil
}

func (d *PostgresDialect) CombineDurationExpression(conn Connector, parts []string) (string, error) {
	switch conn {
	case Add, Sub:
		return combineInfix(conn, parts), nil
	}
	return "", fmt.Errorf("%w: connector %q for duration arithmetic", ErrNotSupported, conn)
}

func (d *PostgresDialect) FormatForDurationArithmetic(sql string) string {
	return sql
}

func (d *PostgresDialect) DurationIntervalSQL(dur time.Duration) (string, []any) {
	return "%s", []any{dur.Microseconds()}
}

func (d *PostgresDialect) SubtractTemporals(kind types.FieldType, lhsSQL string, lhsParams []any, rhsSQL string, rhsParams []any) (string, []any, error) {
	params := append(append([]any{}, lhsParams...), rhsParams...)
	sql := fmt.Sprintf("CAST(EXTRACT(EPOCH FROM (%s - %s)) * 1000000 AS BIGINT)", lhsSQL, rhsSQL)
	return sql, params, nil
}

func (d *PostgresDialect) UnificationCastSQL(ft types.FieldType) string {
	return "%s"
}

func (d *PostgresDialect) RandomFunctionSQL() string { return "RANDOM()" }

func (d *PostgresDialect) OrderByNullsTemplate(nullsFirst bool) string {
	// Native NULLS FIRST/LAST, nothing to emulate.
	return ""
}
