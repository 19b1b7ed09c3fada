package expr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlexpr/sqlexpr/compiler"
	"github.com/sqlexpr/sqlexpr/dialect"
	"github.com/sqlexpr/sqlexpr/expr"
	"github.com/sqlexpr/sqlexpr/types"
)

func TestFunc_Default(t *testing.T) {
	f := expr.NewFunc("LOWER", expr.NewCol("T1", "name", types.Text))
	sql, params, err := f.SQL(pg())
	require.NoError(t, err)
	assert.Equal(t, `LOWER("T1"."name")`, sql)
	assert.Empty(t, params)
}

func TestFunc_ArgJoiner(t *testing.T) {
	f := expr.NewFunc("COALESCE",
		expr.NewCol("T1", "nickname", types.Text),
		expr.NewCol("T1", "name", types.Text),
	)
	sql, _, err := f.SQL(pg())
	require.NoError(t, err)
	assert.Equal(t, `COALESCE("T1"."nickname", "T1"."name")`, sql)
}

func TestFunc_TemplateOverride(t *testing.T) {
	f := expr.NewFunc("CAST", expr.NewCol("T1", "age", types.Integer)).
		WithExtra(map[string]string{"template": "%(function)s(%(expressions)s AS TEXT)"})
	sql, _, err := f.SQL(pg())
	require.NoError(t, err)
	assert.Equal(t, `CAST("T1"."age" AS TEXT)`, sql)
}

func TestFunc_ExtraKeyAvailableToTemplate(t *testing.T) {
	f := expr.NewFunc("SUBSTR", expr.NewCol("T1", "name", types.Text)).
		WithExtra(map[string]string{
			"template": "%(function)s(%(expressions)s, %(start)s)",
			"start":    "2",
		})
	sql, _, err := f.SQL(pg())
	require.NoError(t, err)
	assert.Equal(t, `SUBSTR("T1"."name", 2)`, sql)
}

func TestFuncDef_ArityEnforced(t *testing.T) {
	def := expr.FuncDef{Function: "UPPER", Arity: 1, Output: types.Text}

	_, err := def.Call()
	require.Error(t, err)
	assert.True(t, expr.IsFieldError(err))
	assert.Equal(t, "UPPER takes exactly 1 argument (0 given)", err.Error())

	_, err = def.Call(expr.NewValue("a"), expr.NewValue("b"))
	require.Error(t, err)
	assert.Equal(t, "UPPER takes exactly 1 argument (2 given)", err.Error())
}

func TestFuncDef_Call(t *testing.T) {
	def := expr.FuncDef{Function: "UPPER", Arity: 1, Output: types.Text}
	f, err := def.Call(expr.NewCol("T1", "name", types.Text))
	require.NoError(t, err)

	sql, _, err := f.SQL(pg())
	require.NoError(t, err)
	assert.Equal(t, `UPPER("T1"."name")`, sql)

	ft, err := f.OutputField()
	require.NoError(t, err)
	assert.Equal(t, types.Text, ft)
}

func TestFunc_DecimalCastOnSQLite(t *testing.T) {
	price := expr.NewCol("T1", "price", types.Decimal)
	f := expr.NewFunc("ABS", price)

	sql, _, err := f.SQL(compiler.New(dialect.SQLite()))
	require.NoError(t, err)
	assert.Equal(t, `CAST(ABS("T1"."price") AS NUMERIC)`, sql)

	sql, _, err = f.SQL(pg())
	require.NoError(t, err)
	assert.Equal(t, `ABS("T1"."price")`, sql)
}

func TestAggregates_SQL(t *testing.T) {
	amount := expr.NewCol("T1", "amount", types.Integer)
	tests := []struct {
		name string
		agg  *expr.Func
		want string
	}{
		{"count star", expr.Count(nil), "COUNT(*)"},
		{"count column", expr.Count(amount), `COUNT("T1"."amount")`},
		{"count distinct", expr.CountDistinct(amount), `COUNT(DISTINCT "T1"."amount")`},
		{"sum", expr.Sum(amount), `SUM("T1"."amount")`},
		{"avg", expr.Avg(amount), `AVG("T1"."amount")`},
		{"min", expr.Min(amount), `MIN("T1"."amount")`},
		{"max", expr.Max(amount), `MAX("T1"."amount")`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, _, err := tt.agg.SQL(pg())
			require.NoError(t, err)
			assert.Equal(t, tt.want, sql)
		})
	}
}

func TestAggregates_OutputFields(t *testing.T) {
	amount := expr.NewCol("T1", "amount", types.Integer)

	ft, err := expr.Count(nil).OutputField()
	require.NoError(t, err)
	assert.Equal(t, types.BigInteger, ft)

	ft, err = expr.Avg(amount).OutputField()
	require.NoError(t, err)
	assert.Equal(t, types.Float, ft)

	ft, err = expr.Sum(amount).OutputField()
	require.NoError(t, err)
	assert.Equal(t, types.Integer, ft)
}

func TestAggregates_GroupBy(t *testing.T) {
	amount := expr.NewCol("T1", "amount", types.Integer)

	// A terminal aggregate contributes nothing to GROUP BY.
	assert.Empty(t, expr.Sum(amount).GroupByCols())
	assert.True(t, expr.Sum(amount).ContainsAggregate())

	// A plain expression groups by itself.
	doubled := amount.Mul(2)
	cols := doubled.GroupByCols()
	require.Len(t, cols, 1)
	assert.True(t, expr.Equal(doubled, cols[0]))

	// An expression over an aggregate only groups by its aggregate-free
	// parts, and a literal is not one.
	shifted := expr.Sum(amount).Add(1)
	assert.True(t, shifted.ContainsAggregate())
	assert.Empty(t, shifted.GroupByCols())
}

func TestWrap_DelegatesSQL(t *testing.T) {
	w := expr.Wrap(expr.NewValue(1).Add(expr.NewValue(2)), types.Integer)
	sql, params, err := w.SQL(pg())
	require.NoError(t, err)
	assert.Equal(t, "(%s + %s)", sql)
	assert.Equal(t, []any{1, 2}, params)

	ft, err := w.OutputField()
	require.NoError(t, err)
	assert.Equal(t, types.Integer, ft)
}
