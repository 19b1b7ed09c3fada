// Package compiler renders resolved expression trees to dialect-specific
// SQL with positional bind parameters.
package compiler

import (
	"github.com/sqlexpr/sqlexpr/dialect"
	"github.com/sqlexpr/sqlexpr/expr"
	"github.com/sqlexpr/sqlexpr/internal/debug"
)

// SQLCompiler implements expr.Compiler for a single dialect.
type SQLCompiler struct {
	d     dialect.Dialect
	cache *renderCache
}

// New builds a compiler for the dialect.
func New(d dialect.Dialect) *SQLCompiler {
	return &SQLCompiler{d: d}
}

// ForDialect builds a compiler by registered dialect name.
func ForDialect(name string) (*SQLCompiler, error) {
	d, err := dialect.Get(name)
	if err != nil {
		return nil, err
	}
	return New(d), nil
}

// WithCache enables memoization of rendered trees, keyed by structural
// hash. Only Render consults the cache; maxSize bounds the entry count.
func (c *SQLCompiler) WithCache(maxSize int) *SQLCompiler {
	c.cache = newRenderCache(maxSize)
	return c
}

// Compile renders a child node. Expressions call this on their sources.
func (c *SQLCompiler) Compile(e expr.Expression) (string, []any, error) {
	return e.SQL(c)
}

// QuoteName quotes an identifier for the dialect.
func (c *SQLCompiler) QuoteName(name string) string {
	return c.d.QuoteName(name)
}

// Dialect exposes the dialect collaborator.
func (c *SQLCompiler) Dialect() dialect.Dialect {
	return c.d
}

// Render renders a top-level expression, consulting the cache when one is
// configured. Structurally equal trees share a cache entry.
func (c *SQLCompiler) Render(e expr.Expression) (string, []any, error) {
	if c.cache == nil {
		return c.Compile(e)
	}
	key := c.d.Name() + ":" + hashKey(e)
	if sql, params, ok := c.cache.get(key, e); ok {
		debug.Debug("render cache hit", "dialect", c.d.Name(), "key", key)
		return sql, params, nil
	}
	sql, params, err := c.Compile(e)
	if err != nil {
		return "", nil, err
	}
	c.cache.put(key, e, sql, params)
	debug.Debug("rendered expression", "dialect", c.d.Name(), "sql", sql)
	return sql, params, nil
}
