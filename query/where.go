package query

import (
	"errors"
	"strings"

	"github.com/sqlexpr/sqlexpr/expr"
	"github.com/sqlexpr/sqlexpr/types"
)

// Where is a boolean combination of filter conditions. An AND node with a
// child known to match nothing matches nothing itself; an OR node just
// drops that child.
type Where struct {
	connector string
	negated   bool
	children  []expr.Expression
}

// And combines conditions so all must hold.
func And(children ...expr.Expression) *Where {
	return &Where{connector: "AND", children: children}
}

// Or combines conditions so at least one must hold.
func Or(children ...expr.Expression) *Where {
	return &Where{connector: "OR", children: children}
}

// Not negates a condition.
func Not(child expr.Expression) *Where {
	return &Where{connector: "AND", negated: true, children: []expr.Expression{child}}
}

// and joins two already-resolved conditions, flattening nested AND nodes.
func and(a, b expr.Expression) expr.Expression {
	if w, ok := a.(*Where); ok && w.connector == "AND" && !w.negated {
		return &Where{connector: "AND", children: append(append([]expr.Expression{}, w.children...), b)}
	}
	return And(a, b)
}

func (w *Where) clone() *Where {
	return &Where{
		connector: w.connector,
		negated:   w.negated,
		children:  append([]expr.Expression{}, w.children...),
	}
}

func (w *Where) Resolve(q expr.Query, opts expr.ResolveOptions) (expr.Expression, error) {
	c := w.clone()
	for i, child := range c.children {
		resolved, err := child.Resolve(q, opts)
		if err != nil {
			return nil, err
		}
		c.children[i] = resolved
	}
	return c, nil
}

func (w *Where) SQL(c expr.Compiler) (string, []any, error) {
	// One empty child decides an AND; one full child decides an OR. Once
	// enough children are statically decided the whole node is, and
	// negation inverts the signal.
	fullNeeded, emptyNeeded := len(w.children), 1
	if w.connector == "OR" {
		fullNeeded, emptyNeeded = 1, len(w.children)
	}
	var parts []string
	var params []any
	for _, child := range w.children {
		childSQL, childParams, err := c.Compile(child)
		switch {
		case errors.Is(err, expr.ErrEmptyResultSet):
			emptyNeeded--
		case errors.Is(err, expr.ErrFullResultSet):
			fullNeeded--
		case err != nil:
			return "", nil, err
		default:
			parts = append(parts, childSQL)
			params = append(params, childParams...)
		}
		if emptyNeeded == 0 {
			if w.negated {
				return "", nil, expr.ErrFullResultSet
			}
			return "", nil, expr.ErrEmptyResultSet
		}
		if fullNeeded == 0 {
			if w.negated {
				return "", nil, expr.ErrEmptyResultSet
			}
			return "", nil, expr.ErrFullResultSet
		}
	}
	if len(parts) == 0 {
		// Every child was an always-true branch dropped above.
		if w.negated {
			return "", nil, expr.ErrEmptyResultSet
		}
		return "", nil, expr.ErrFullResultSet
	}
	sql := strings.Join(parts, " "+w.connector+" ")
	if len(parts) > 1 {
		sql = "(" + sql + ")"
	}
	if w.negated {
		sql = "NOT (" + sql + ")"
	}
	return sql, params, nil
}

func (w *Where) OutputField() (types.FieldType, error) { return types.Bool, nil }

func (w *Where) SourceExpressions() []expr.Expression {
	return append([]expr.Expression{}, w.children...)
}

func (w *Where) WithSourceExpressions(exprs []expr.Expression) expr.Expression {
	c := w.clone()
	c.children = append([]expr.Expression{}, exprs...)
	return c
}

func (w *Where) GroupByCols() []expr.Expression {
	var cols []expr.Expression
	for _, child := range w.children {
		cols = append(cols, child.GroupByCols()...)
	}
	return cols
}

func (w *Where) ContainsAggregate() bool {
	for _, child := range w.children {
		if child.ContainsAggregate() {
			return true
		}
	}
	return false
}

// Deconstruct exposes the node's identity for structural equality and
// hashing.
func (w *Where) Deconstruct() (string, []any) {
	return "query.Where", []any{w.connector, w.negated, w.children}
}
