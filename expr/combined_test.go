package expr_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlexpr/sqlexpr/compiler"
	"github.com/sqlexpr/sqlexpr/dialect"
	"github.com/sqlexpr/sqlexpr/expr"
	"github.com/sqlexpr/sqlexpr/types"
)

func TestCombined_Arithmetic(t *testing.T) {
	sql, params, err := expr.Combine(expr.NewValue(3), dialect.Add, expr.NewValue(4)).SQL(pg())
	require.NoError(t, err)
	assert.Equal(t, "(%s + %s)", sql)
	assert.Equal(t, []any{3, 4}, params)
}

func TestCombined_Nesting(t *testing.T) {
	inner := expr.NewValue(2).Mul(expr.NewValue(5))
	outer := inner.Add(expr.NewValue(1))
	sql, params, err := outer.SQL(pg())
	require.NoError(t, err)
	assert.Equal(t, "((%s * %s) + %s)", sql)
	assert.Equal(t, []any{2, 5, 1}, params)
}

func TestCombined_ModEscaped(t *testing.T) {
	sql, params, err := expr.NewValue(10).Mod(3).SQL(pg())
	require.NoError(t, err)
	assert.Equal(t, "(%s %% %s)", sql)
	assert.Equal(t, []any{10, 3}, params)
}

func TestCombined_PowPerDialect(t *testing.T) {
	tests := []struct {
		dialectName string
		want        string
	}{
		{"postgres", "(%s ^ %s)"},
		{"mysql", "(POWER(%s, %s))"},
		{"sqlite", "(POWER(%s, %s))"},
		{"mssql", "(POWER(%s, %s))"},
	}
	for _, tt := range tests {
		t.Run(tt.dialectName, func(t *testing.T) {
			comp, err := compiler.ForDialect(tt.dialectName)
			require.NoError(t, err)
			sql, _, err := expr.NewValue(2).Pow(10).SQL(comp)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sql)
		})
	}
}

func TestCombined_ShiftUnsupportedOnMSSQL(t *testing.T) {
	comp := compiler.New(dialect.MSSQL())
	_, _, err := expr.NewValue(1).ShiftLeft(2).SQL(comp)
	require.Error(t, err)
	assert.True(t, errors.Is(err, dialect.ErrNotSupported))
}

func TestCombined_ReversedComposition(t *testing.T) {
	sql, params, err := expr.Combine(5, dialect.Sub, expr.NewCol("T1", "x", types.Integer)).SQL(pg())
	require.NoError(t, err)
	assert.Equal(t, `(%s - "T1"."x")`, sql)
	assert.Equal(t, []any{5}, params)
}

func TestDuration_DatetimePlusDuration(t *testing.T) {
	started := expr.NewCol("T1", "started_at", types.DateTime)
	e := started.Add(2 * time.Hour)
	micros := int64(2 * time.Hour / time.Microsecond)

	tests := []struct {
		dialectName string
		wantSQL     string
		wantParams  []any
	}{
		{"postgres", `("T1"."started_at" + %s)`, []any{micros}},
		{"mysql", "(DATE_ADD(`T1`.`started_at`, INTERVAL %s MICROSECOND))", []any{micros}},
		{"sqlite", `("T1"."started_at" + %s)`, []any{micros}},
		{"mssql", "(DATEADD(MICROSECOND, %s, [T1].[started_at]))", []any{micros}},
	}
	for _, tt := range tests {
		t.Run(tt.dialectName, func(t *testing.T) {
			comp, err := compiler.ForDialect(tt.dialectName)
			require.NoError(t, err)
			sql, params, err := e.SQL(comp)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantParams, params)
		})
	}
}

func TestDuration_ColumnOperandWrapped(t *testing.T) {
	// A duration-typed column, unlike a literal, needs the dialect's
	// duration formatting on backends without a native type.
	deadline := expr.NewCol("T1", "started_at", types.DateTime)
	dur := expr.NewCol("T1", "grace", types.Duration)
	comp := compiler.New(dialect.MySQL())

	sql, params, err := deadline.Add(dur).SQL(comp)
	require.NoError(t, err)
	assert.Equal(t, "(DATE_ADD(`T1`.`started_at`, INTERVAL `T1`.`grace` MICROSECOND))", sql)
	assert.Empty(t, params)
}

func TestDuration_OutputField(t *testing.T) {
	e := expr.NewDurationValue(time.Minute)
	ft, err := e.OutputField()
	require.NoError(t, err)
	assert.Equal(t, types.Duration, ft)
}

func TestTemporalSubtraction_PerDialect(t *testing.T) {
	finished := expr.NewCol("T1", "finished_at", types.DateTime)
	started := expr.NewCol("T1", "started_at", types.DateTime)
	e := finished.Sub(started)

	tests := []struct {
		dialectName string
		want        string
	}{
		{"postgres", `CAST(EXTRACT(EPOCH FROM ("T1"."finished_at" - "T1"."started_at")) * 1000000 AS BIGINT)`},
		{"mysql", "TIMESTAMPDIFF(MICROSECOND, `T1`.`started_at`, `T1`.`finished_at`)"},
		{"sqlite", `CAST((JULIANDAY("T1"."finished_at") - JULIANDAY("T1"."started_at")) * 86400000000 AS INTEGER)`},
		{"mssql", "DATEDIFF_BIG(MICROSECOND, [T1].[started_at], [T1].[finished_at])"},
	}
	for _, tt := range tests {
		t.Run(tt.dialectName, func(t *testing.T) {
			comp, err := compiler.ForDialect(tt.dialectName)
			require.NoError(t, err)
			sql, _, err := e.SQL(comp)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sql)
		})
	}
}

func TestTemporalSubtraction_ProducesDuration(t *testing.T) {
	e := expr.NewTemporalSubtraction(
		expr.NewCol("T1", "a", types.DateTime),
		expr.NewCol("T1", "b", types.DateTime),
	)
	ft, err := e.OutputField()
	require.NoError(t, err)
	assert.Equal(t, types.Duration, ft)
}

func TestDurationExpression_ResolveKeepsType(t *testing.T) {
	e := expr.NewDurationExpression(
		expr.NewCol("T1", "grace", types.Duration),
		dialect.Add,
		expr.NewDurationValue(time.Hour),
	)

	resolved, err := e.Resolve(nil, expr.ResolveDefaults())
	require.NoError(t, err)
	assert.IsType(t, (*expr.DurationExpression)(nil), resolved)

	rebuilt := e.WithSourceExpressions(e.SourceExpressions())
	assert.IsType(t, (*expr.DurationExpression)(nil), rebuilt)
}

func TestTemporalSubtraction_ResolveKeepsType(t *testing.T) {
	e := expr.NewTemporalSubtraction(
		expr.NewCol("T1", "a", types.DateTime),
		expr.NewCol("T1", "b", types.DateTime),
	)

	resolved, err := e.Resolve(nil, expr.ResolveDefaults())
	require.NoError(t, err)
	assert.IsType(t, (*expr.TemporalSubtraction)(nil), resolved)

	rebuilt := e.WithSourceExpressions(e.SourceExpressions())
	assert.IsType(t, (*expr.TemporalSubtraction)(nil), rebuilt)

	ft, err := rebuilt.OutputField()
	require.NoError(t, err)
	assert.Equal(t, types.Duration, ft)
}

func TestDuration_MultiplyRejected(t *testing.T) {
	comp := compiler.New(dialect.MySQL())
	_, _, err := expr.NewCol("T1", "grace", types.Duration).Mul(2).SQL(comp)
	require.Error(t, err)
	assert.True(t, errors.Is(err, dialect.ErrNotSupported))
}
