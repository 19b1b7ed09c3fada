package expr

import "github.com/sqlexpr/sqlexpr/types"

// ExpressionWrapper attaches an output type to an inner expression without
// changing how it renders.
type ExpressionWrapper struct {
	combinable
	inner   Expression
	output  types.FieldType
	summary bool
}

// Wrap declares an output type for the inner expression.
func Wrap(inner Expression, output types.FieldType) *ExpressionWrapper {
	w := &ExpressionWrapper{inner: inner, output: output}
	w.init(w)
	return w
}

func (w *ExpressionWrapper) clone() *ExpressionWrapper {
	c := &ExpressionWrapper{inner: w.inner, output: w.output, summary: w.summary}
	c.init(c)
	return c
}

func (w *ExpressionWrapper) Resolve(q Query, opts ResolveOptions) (Expression, error) {
	c := w.clone()
	c.summary = opts.Summarize
	var err error
	if c.inner, err = w.inner.Resolve(q, opts); err != nil {
		return nil, err
	}
	return c, nil
}

func (w *ExpressionWrapper) SQL(c Compiler) (string, []any, error) {
	return w.inner.SQL(c)
}

func (w *ExpressionWrapper) OutputField() (types.FieldType, error) {
	return outputOrInfer(w.output, []Expression{w.inner})
}

func (w *ExpressionWrapper) SourceExpressions() []Expression {
	return []Expression{w.inner}
}

func (w *ExpressionWrapper) WithSourceExpressions(exprs []Expression) Expression {
	c := w.clone()
	if len(exprs) == 1 {
		c.inner = exprs[0]
	}
	return c
}

func (w *ExpressionWrapper) GroupByCols() []Expression { return defaultGroupByCols(w) }

func (w *ExpressionWrapper) ContainsAggregate() bool {
	return anyAggregate([]Expression{w.inner})
}

func (w *ExpressionWrapper) deconstruct() (string, []any) {
	return "expr.ExpressionWrapper", []any{w.inner, w.output}
}
