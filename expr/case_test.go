package expr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlexpr/sqlexpr/compiler"
	"github.com/sqlexpr/sqlexpr/dialect"
	"github.com/sqlexpr/sqlexpr/expr"
	"github.com/sqlexpr/sqlexpr/query"
	"github.com/sqlexpr/sqlexpr/types"
)

func TestWhen_RequiresCondition(t *testing.T) {
	_, err := expr.NewWhen(nil, 1)
	require.Error(t, err)
	assert.True(t, expr.IsFieldError(err))
}

func TestCase_SQL(t *testing.T) {
	cond := query.GT(expr.NewCol("T1", "score", types.Integer), 90)
	w, err := expr.NewWhen(cond, expr.NewValue("high"))
	require.NoError(t, err)

	c := expr.NewCase([]*expr.When{w}, expr.NewValue("low"))
	sql, params, err := c.SQL(pg())
	require.NoError(t, err)
	assert.Equal(t, `CASE WHEN "T1"."score" > %s THEN %s ELSE %s END`, sql)
	assert.Equal(t, []any{90, "high", "low"}, params)
}

func TestCase_NoWhensRendersDefaultAlone(t *testing.T) {
	c := expr.NewCase(nil, 7)
	sql, params, err := c.SQL(pg())
	require.NoError(t, err)
	assert.Equal(t, "%s", sql)
	assert.Equal(t, []any{7}, params)
}

func TestCase_DeadBranchSkipped(t *testing.T) {
	// An IN over no values can match no rows, so its branch is dropped.
	dead, err := expr.NewWhen(query.In(expr.NewCol("T1", "id", types.Integer)), expr.NewValue("impossible"))
	require.NoError(t, err)
	live, err := expr.NewWhen(query.Exact(expr.NewCol("T1", "id", types.Integer), 1), expr.NewValue("one"))
	require.NoError(t, err)

	c := expr.NewCase([]*expr.When{dead, live}, expr.NewValue("other"))
	sql, params, err := c.SQL(pg())
	require.NoError(t, err)
	assert.Equal(t, `CASE WHEN "T1"."id" = %s THEN %s ELSE %s END`, sql)
	assert.Equal(t, []any{1, "one", "other"}, params)
}

func TestCase_AllBranchesDeadRendersDefault(t *testing.T) {
	dead, err := expr.NewWhen(query.In(expr.NewCol("T1", "id", types.Integer)), expr.NewValue("impossible"))
	require.NoError(t, err)

	c := expr.NewCase([]*expr.When{dead}, 0)
	sql, params, err := c.SQL(pg())
	require.NoError(t, err)
	assert.Equal(t, "%s", sql)
	assert.Equal(t, []any{0}, params)
}

func TestCase_AlwaysTrueBranchSupersedesDefault(t *testing.T) {
	// NOT of a no-rows condition holds for every row, so its result is the
	// only possible outcome.
	id := expr.NewCol("T1", "id", types.Integer)
	always, err := expr.NewWhen(query.Not(query.In(id)), expr.NewValue("always"))
	require.NoError(t, err)

	c := expr.NewCase([]*expr.When{always}, expr.NewValue("never"))
	sql, params, err := c.SQL(pg())
	require.NoError(t, err)
	assert.Equal(t, "%s", sql)
	assert.Equal(t, []any{"always"}, params)
}

func TestCase_AlwaysTrueBranchStopsLaterBranches(t *testing.T) {
	id := expr.NewCol("T1", "id", types.Integer)
	live, err := expr.NewWhen(query.Exact(id, 1), expr.NewValue("one"))
	require.NoError(t, err)
	always, err := expr.NewWhen(query.Not(query.In(id)), expr.NewValue("always"))
	require.NoError(t, err)
	later, err := expr.NewWhen(query.GT(id, 5), expr.NewValue("later"))
	require.NoError(t, err)

	c := expr.NewCase([]*expr.When{live, always, later}, expr.NewValue("never"))
	sql, params, err := c.SQL(pg())
	require.NoError(t, err)
	assert.Equal(t, `CASE WHEN "T1"."id" = %s THEN %s ELSE %s END`, sql)
	assert.Equal(t, []any{1, "one", "always"}, params)
}

func TestCase_DeclaredOutputCastOnMSSQL(t *testing.T) {
	w, err := expr.NewWhen(query.Exact(expr.NewCol("T1", "id", types.Integer), 1), 10)
	require.NoError(t, err)

	c := expr.NewCase([]*expr.When{w}, 0).WithOutputField(types.Integer)
	sql, _, err := c.SQL(compiler.New(dialect.MSSQL()))
	require.NoError(t, err)
	assert.Equal(t, "CAST(CASE WHEN [T1].[id] = %s THEN %s ELSE %s END AS INT)", sql)
}

func TestCase_OutputInferredFromResultsOnly(t *testing.T) {
	// The boolean condition must not leak into type inference.
	w, err := expr.NewWhen(query.Exact(expr.NewCol("T1", "id", types.Integer), 1), expr.NewTypedValue(10, types.Integer))
	require.NoError(t, err)

	c := expr.NewCase([]*expr.When{w}, expr.NewTypedValue(0, types.Integer))
	ft, err := c.OutputField()
	require.NoError(t, err)
	assert.Equal(t, types.Integer, ft)
}

func TestCase_WhenNotGroupedAsSelf(t *testing.T) {
	score := expr.NewCol("T1", "score", types.Integer)
	w, err := expr.NewWhen(query.GT(score, 90), score)
	require.NoError(t, err)

	cols := w.GroupByCols()
	for _, col := range cols {
		assert.False(t, expr.Equal(w, col))
	}
}
