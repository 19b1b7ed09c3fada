package query

import (
	"strings"
	"time"

	"github.com/sqlexpr/sqlexpr/expr"
	"github.com/sqlexpr/sqlexpr/types"
)

// Lookup is a single comparison in a filter: a left-hand expression, an
// operator and zero or more right-hand expressions.
type Lookup struct {
	lhs expr.Expression
	op  string
	rhs []expr.Expression
}

// Exact filters on lhs = value.
func Exact(lhs, value any) *Lookup { return binary(lhs, "=", value) }

// GT filters on lhs > value.
func GT(lhs, value any) *Lookup { return binary(lhs, ">", value) }

// GTE filters on lhs >= value.
func GTE(lhs, value any) *Lookup { return binary(lhs, ">=", value) }

// LT filters on lhs < value.
func LT(lhs, value any) *Lookup { return binary(lhs, "<", value) }

// LTE filters on lhs <= value.
func LTE(lhs, value any) *Lookup { return binary(lhs, "<=", value) }

// In filters on membership. A subquery argument renders as IN (SELECT ...);
// an empty value list matches nothing at all.
func In(lhs any, values ...any) *Lookup {
	l := &Lookup{lhs: asLHS(lhs), op: "IN"}
	for _, v := range values {
		l.rhs = append(l.rhs, asRHS(v))
	}
	return l
}

// IsNull filters on lhs IS NULL, or IS NOT NULL when isNull is false.
func IsNull(lhs any, isNull bool) *Lookup {
	op := "IS NULL"
	if !isNull {
		op = "IS NOT NULL"
	}
	return &Lookup{lhs: asLHS(lhs), op: op}
}

func binary(lhs any, op string, value any) *Lookup {
	return &Lookup{lhs: asLHS(lhs), op: op, rhs: []expr.Expression{asRHS(value)}}
}

// asLHS coerces the left-hand side: a string is a field name.
func asLHS(v any) expr.Expression {
	switch x := v.(type) {
	case expr.Expression:
		return x
	case string:
		return expr.NewF(x)
	default:
		return expr.NewValue(v)
	}
}

// asRHS coerces the right-hand side: anything that is not already an
// expression is a literal.
func asRHS(v any) expr.Expression {
	switch x := v.(type) {
	case expr.Expression:
		return x
	case time.Duration:
		return expr.NewDurationValue(x)
	default:
		return expr.NewValue(v)
	}
}

func (l *Lookup) clone() *Lookup {
	return &Lookup{lhs: l.lhs, op: l.op, rhs: append([]expr.Expression{}, l.rhs...)}
}

func (l *Lookup) Resolve(q expr.Query, opts expr.ResolveOptions) (expr.Expression, error) {
	c := l.clone()
	var err error
	if c.lhs, err = l.lhs.Resolve(q, opts); err != nil {
		return nil, err
	}
	for i, r := range c.rhs {
		if c.rhs[i], err = r.Resolve(q, opts); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (l *Lookup) SQL(c expr.Compiler) (string, []any, error) {
	lhsSQL, lhsParams, err := c.Compile(l.lhs)
	if err != nil {
		return "", nil, err
	}

	switch l.op {
	case "IS NULL", "IS NOT NULL":
		return lhsSQL + " " + l.op, lhsParams, nil
	case "IN":
		if len(l.rhs) == 0 {
			return "", nil, expr.ErrEmptyResultSet
		}
		params := lhsParams
		if len(l.rhs) == 1 {
			if _, ok := l.rhs[0].(*expr.Subquery); ok {
				subSQL, subParams, err := c.Compile(l.rhs[0])
				if err != nil {
					return "", nil, err
				}
				return lhsSQL + " IN " + subSQL, append(params, subParams...), nil
			}
		}
		parts := make([]string, len(l.rhs))
		for i, r := range l.rhs {
			rSQL, rParams, err := c.Compile(r)
			if err != nil {
				return "", nil, err
			}
			parts[i] = rSQL
			params = append(params, rParams...)
		}
		return lhsSQL + " IN (" + strings.Join(parts, ", ") + ")", params, nil
	}

	rhsSQL, rhsParams, err := c.Compile(l.rhs[0])
	if err != nil {
		return "", nil, err
	}
	params := append(append([]any{}, lhsParams...), rhsParams...)
	return lhsSQL + " " + l.op + " " + rhsSQL, params, nil
}

func (l *Lookup) OutputField() (types.FieldType, error) { return types.Bool, nil }

func (l *Lookup) SourceExpressions() []expr.Expression {
	return append([]expr.Expression{l.lhs}, l.rhs...)
}

func (l *Lookup) WithSourceExpressions(exprs []expr.Expression) expr.Expression {
	c := l.clone()
	if len(exprs) > 0 {
		c.lhs = exprs[0]
		c.rhs = append([]expr.Expression{}, exprs[1:]...)
	}
	return c
}

func (l *Lookup) GroupByCols() []expr.Expression {
	var cols []expr.Expression
	for _, src := range l.SourceExpressions() {
		cols = append(cols, src.GroupByCols()...)
	}
	return cols
}

func (l *Lookup) ContainsAggregate() bool {
	for _, src := range l.SourceExpressions() {
		if src.ContainsAggregate() {
			return true
		}
	}
	return false
}

// Deconstruct exposes the node's identity for structural equality and
// hashing.
func (l *Lookup) Deconstruct() (string, []any) {
	return "query.Lookup", []any{l.op, l.lhs, l.rhs}
}
