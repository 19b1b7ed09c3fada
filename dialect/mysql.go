package dialect

import (
	"fmt"
	"time"

	"github.com/sqlexpr/sqlexpr/types"
)

// MySQLDialect renders MySQL SQL. MySQL has no duration type; duration
// operands are rewritten to INTERVAL ... MICROSECOND fragments and combined
// with DATE_ADD / DATE_SUB.
type MySQLDialect struct{}

// MySQL returns the MySQL dialect.
func MySQL() *MySQLDialect { return &MySQLDialect{} }

func (d *MySQLDialect) Name() string { return "mysql" }

func (d *MySQLDialect) QuoteName(name string) string {
	return quoteWith(name, "`", "`")
}

func (d *MySQLDialect) Features() Features {
	return Features{
		HasNativeDuration:          false,
		SupportsNullsOrdering:      false,
		SupportsExistsInSelect:     true,
		SupportsDecimalExpressions: true,
	}
}

func (d *MySQLDialect) CombineExpression(conn Connector, parts []string) (string, error) {
	// ^ is XOR in MySQL, so exponentiation needs the function form.
	if conn == Pow {
		return combinePower(parts)
	}
	return combineInfix(conn, parts), nil
}

func (d *MySQLDialect) CombineDurationExpression(conn Connector, parts []string) (string, error) {
	if len(parts) != 2 {
		return "", fmt.Errorf("duration arithmetic takes two operands, got %d", len(parts))
	}
	switch conn {
	case Add:
		return fmt.Sprintf("DATE_ADD(%s, %s)", parts[0], parts[1]), nil
	case Sub:
		return fmt.Sprintf("DATE_SUB(%s, %s)", parts[0], parts[1]), nil
	}
	return "", fmt.Errorf("%w: connector %q for duration arithmetic", ErrNotSupported, conn)
}

func (d *MySQLDialect) FormatForDurationArithmetic(sql string) string {
	return fmt.Sprintf("INTERVAL %s MICROSECOND", sql)
}

func (d *MySQLDialect) DurationIntervalSQL(dur time.Duration) (string, []any) {
	return "INTERVAL %s MICROSECOND", []any{dur.Microseconds()}
}

func (d *MySQLDialect) SubtractTemporals(kind types.FieldType, lhsSQL string, lhsParams []any, rhsSQL string, rhsParams []any) (string, []any, error) {
	// TIMESTAMPDIFF counts from its second argument to its third.
	params := append(append([]any{}, rhsParams...), lhsParams...)
	sql := fmt.Sprintf("TIMESTAMPDIFF(MICROSECOND, %s, %s)", rhsSQL, lhsSQL)
	return sql, params, nil
}

func (d *MySQLDialect) UnificationCastSQL(ft types.FieldType) string {
	return "%s"
}

func (d *MySQLDialect) RandomFunctionSQL() string { return "RAND()" }

func (d *MySQLDialect) OrderByNullsTemplate(nullsFirst bool) string {
	if nullsFirst {
		return "IF(ISNULL(%(expression)s),0,1), %(expression)s %(ordering)s"
	}
	return "IF(ISNULL(%(expression)s),1,0), %(expression)s %(ordering)s"
}
