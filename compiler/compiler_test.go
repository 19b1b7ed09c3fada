package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlexpr/sqlexpr/dialect"
	"github.com/sqlexpr/sqlexpr/expr"
	"github.com/sqlexpr/sqlexpr/query"
	"github.com/sqlexpr/sqlexpr/types"
)

func TestForDialect(t *testing.T) {
	c, err := ForDialect("postgres")
	require.NoError(t, err)
	assert.Equal(t, "postgres", c.Dialect().Name())

	_, err = ForDialect("oracle")
	assert.Error(t, err)
}

func TestRender_WithoutCache(t *testing.T) {
	c := New(dialect.Postgres())
	sql, params, err := c.Render(expr.Combine(expr.NewValue(3), dialect.Add, expr.NewValue(4)))
	require.NoError(t, err)
	assert.Equal(t, "(%s + %s)", sql)
	assert.Equal(t, []any{3, 4}, params)
}

func TestRender_CacheSharesStructurallyEqualTrees(t *testing.T) {
	c := New(dialect.Postgres()).WithCache(8)

	a := expr.Combine(expr.NewValue(3), dialect.Add, expr.NewValue(4))
	b := expr.Combine(expr.NewValue(3), dialect.Add, expr.NewValue(4))

	sqlA, paramsA, err := c.Render(a)
	require.NoError(t, err)
	sqlB, paramsB, err := c.Render(b)
	require.NoError(t, err)

	assert.Equal(t, sqlA, sqlB)
	assert.Equal(t, paramsA, paramsB)
	assert.Equal(t, 1, c.cache.len())
}

func TestRender_CacheKeyedByDialect(t *testing.T) {
	e := expr.NewValue(2).Pow(10)

	pgc := New(dialect.Postgres()).WithCache(8)
	myc := New(dialect.MySQL()).WithCache(8)

	pgSQL, _, err := pgc.Render(e)
	require.NoError(t, err)
	mySQL, _, err := myc.Render(e)
	require.NoError(t, err)

	assert.Equal(t, "(%s ^ %s)", pgSQL)
	assert.Equal(t, "(POWER(%s, %s))", mySQL)
}

func TestRender_CacheCopiesParams(t *testing.T) {
	c := New(dialect.Postgres()).WithCache(8)
	e := expr.Combine(expr.NewValue(1), dialect.Add, expr.NewValue(2))

	_, first, err := c.Render(e)
	require.NoError(t, err)
	first[0] = 99

	_, second, err := c.Render(e)
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2}, second)
}

func TestRender_CacheDistinguishesLookups(t *testing.T) {
	c := New(dialect.Postgres()).WithCache(8)
	id := expr.NewCol("T1", "id", types.BigInteger)
	age := expr.NewCol("T1", "age", types.Integer)

	idSQL, idParams, err := c.Render(query.Exact(id, 1))
	require.NoError(t, err)
	ageSQL, ageParams, err := c.Render(query.GT(age, 99))
	require.NoError(t, err)

	assert.Equal(t, `"T1"."id" = %s`, idSQL)
	assert.Equal(t, []any{1}, idParams)
	assert.Equal(t, `"T1"."age" > %s`, ageSQL)
	assert.Equal(t, []any{99}, ageParams)
}

func TestRender_CacheDistinguishesValueTypes(t *testing.T) {
	c := New(dialect.Postgres()).WithCache(8)

	_, intParams, err := c.Render(expr.NewValue(5))
	require.NoError(t, err)
	_, strParams, err := c.Render(expr.NewValue("5"))
	require.NoError(t, err)

	assert.Equal(t, []any{5}, intParams)
	assert.Equal(t, []any{"5"}, strParams)
}

func TestRenderCache_Eviction(t *testing.T) {
	a, b, d := expr.NewValue(1), expr.NewValue(2), expr.NewValue(3)
	cache := newRenderCache(2)
	cache.put("a", a, "A", nil)
	cache.put("b", b, "B", nil)
	cache.put("c", d, "C", nil)

	assert.Equal(t, 2, cache.len())
	_, _, ok := cache.get("a", a)
	assert.False(t, ok)
	sql, _, ok := cache.get("c", d)
	require.True(t, ok)
	assert.Equal(t, "C", sql)
}

func TestRenderCache_CollidingKeyReadsAsMiss(t *testing.T) {
	cache := newRenderCache(2)
	cache.put("k", expr.NewValue(1), "ONE", []any{1})

	_, _, ok := cache.get("k", expr.NewValue(2))
	assert.False(t, ok)

	sql, params, ok := cache.get("k", expr.NewValue(1))
	require.True(t, ok)
	assert.Equal(t, "ONE", sql)
	assert.Equal(t, []any{1}, params)
}
