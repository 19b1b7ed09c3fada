package expr

import (
	"strings"

	"github.com/sqlexpr/sqlexpr/types"
)

const orderByTemplate = "%(expression)s %(ordering)s"

// OrderByOptions selects direction and null placement for an OrderBy.
type OrderByOptions struct {
	Descending bool
	NullsFirst bool
	NullsLast  bool
}

// OrderBy wraps an expression with ordering direction and optional null
// placement. On dialects without native NULLS FIRST/LAST support the
// placement is emulated with an extra sort key.
type OrderBy struct {
	expr       Expression
	descending bool
	nullsFirst bool
	nullsLast  bool
}

// NewOrderBy wraps an expression for an ORDER BY clause. Asking for both
// null placements at once is a configuration error.
func NewOrderBy(e Expression, opts OrderByOptions) (*OrderBy, error) {
	if opts.NullsFirst && opts.NullsLast {
		return nil, fieldErrorf("nulls_first and nulls_last are mutually exclusive")
	}
	if e == nil {
		return nil, fieldErrorf("OrderBy requires an expression")
	}
	return &OrderBy{
		expr:       e,
		descending: opts.Descending,
		nullsFirst: opts.NullsFirst,
		nullsLast:  opts.NullsLast,
	}, nil
}

func (o *OrderBy) clone() *OrderBy {
	c := *o
	return &c
}

// ReverseOrdering flips the direction in place semantics of a copy: DESC
// becomes ASC and the null placement swaps with it.
func (o *OrderBy) ReverseOrdering() *OrderBy {
	c := o.clone()
	c.descending = !c.descending
	c.nullsFirst, c.nullsLast = c.nullsLast, c.nullsFirst
	return c
}

func (o *OrderBy) Descending() bool { return o.descending }

func (o *OrderBy) Resolve(q Query, opts ResolveOptions) (Expression, error) {
	c := o.clone()
	var err error
	if c.expr, err = o.expr.Resolve(q, opts); err != nil {
		return nil, err
	}
	return c, nil
}

func (o *OrderBy) SQL(c Compiler) (string, []any, error) {
	exprSQL, exprParams, err := c.Compile(o.expr)
	if err != nil {
		return "", nil, err
	}
	ordering := "ASC"
	if o.descending {
		ordering = "DESC"
	}

	template := orderByTemplate
	params := exprParams
	if o.nullsFirst || o.nullsLast {
		if c.Dialect().Features().SupportsNullsOrdering {
			if o.nullsFirst {
				template = orderByTemplate + " NULLS FIRST"
			} else {
				template = orderByTemplate + " NULLS LAST"
			}
		} else {
			template = c.Dialect().OrderByNullsTemplate(o.nullsFirst)
			// The emulation repeats the expression; repeat its bind
			// parameters once per occurrence.
			n := strings.Count(template, "%(expression)s")
			params = make([]any, 0, len(exprParams)*n)
			for i := 0; i < n; i++ {
				params = append(params, exprParams...)
			}
		}
	}

	sql := expandTemplate(template, map[string]string{
		"expression": exprSQL,
		"ordering":   ordering,
	})
	return strings.TrimRight(sql, " "), params, nil
}

func (o *OrderBy) OutputField() (types.FieldType, error) {
	return outputOrInfer(types.Unknown, []Expression{o.expr})
}

func (o *OrderBy) SourceExpressions() []Expression {
	return []Expression{o.expr}
}

func (o *OrderBy) WithSourceExpressions(exprs []Expression) Expression {
	c := o.clone()
	if len(exprs) == 1 {
		c.expr = exprs[0]
	}
	return c
}

// GroupByCols never returns the node itself: ordering direction has no
// place in GROUP BY.
func (o *OrderBy) GroupByCols() []Expression {
	return o.expr.GroupByCols()
}

func (o *OrderBy) ContainsAggregate() bool {
	return o.expr.ContainsAggregate()
}

func (o *OrderBy) deconstruct() (string, []any) {
	return "expr.OrderBy", []any{o.expr, o.descending, o.nullsFirst, o.nullsLast}
}
