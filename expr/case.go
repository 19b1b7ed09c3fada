package expr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sqlexpr/sqlexpr/types"
)

const (
	whenTemplate = "WHEN %(condition)s THEN %(result)s"
	caseTemplate = "CASE %(cases)s ELSE %(default)s END"
)

// When pairs a boolean condition with the result it selects inside a Case.
type When struct {
	condition Expression
	result    Expression
	summary   bool
}

// NewWhen pairs a condition with its result. The result accepts the usual
// coercions (string to field reference, plain value to literal).
func NewWhen(condition Expression, then any) (*When, error) {
	if condition == nil {
		return nil, fieldErrorf("When requires a condition expression")
	}
	return &When{condition: condition, result: parseExpression(then)}, nil
}

func (w *When) clone() *When {
	return &When{condition: w.condition, result: w.result, summary: w.summary}
}

func (w *When) Resolve(q Query, opts ResolveOptions) (Expression, error) {
	c := w.clone()
	c.summary = opts.Summarize
	condOpts := opts
	condOpts.ForSave = false
	var err error
	if c.condition, err = w.condition.Resolve(q, condOpts); err != nil {
		return nil, err
	}
	if c.result, err = w.result.Resolve(q, opts); err != nil {
		return nil, err
	}
	return c, nil
}

func (w *When) SQL(c Compiler) (string, []any, error) {
	condSQL, condParams, err := c.Compile(w.condition)
	if err != nil {
		return "", nil, err
	}
	resultSQL, resultParams, err := c.Compile(w.result)
	if err != nil {
		return "", nil, err
	}
	sql := expandTemplate(whenTemplate, map[string]string{
		"condition": condSQL,
		"result":    resultSQL,
	})
	params := append(append([]any{}, condParams...), resultParams...)
	return sql, params, nil
}

// OutputField considers only the result: the condition is boolean plumbing,
// not part of the value the CASE produces.
func (w *When) OutputField() (types.FieldType, error) {
	return outputOrInfer(types.Unknown, []Expression{w.result})
}

func (w *When) SourceExpressions() []Expression {
	return []Expression{w.condition, w.result}
}

func (w *When) WithSourceExpressions(exprs []Expression) Expression {
	c := w.clone()
	if len(exprs) == 2 {
		c.condition, c.result = exprs[0], exprs[1]
	}
	return c
}

// GroupByCols never returns the node itself: a lone WHEN is not a complete
// expression.
func (w *When) GroupByCols() []Expression {
	var cols []Expression
	for _, src := range w.SourceExpressions() {
		cols = append(cols, src.GroupByCols()...)
	}
	return cols
}

func (w *When) ContainsAggregate() bool {
	return anyAggregate(w.SourceExpressions())
}

func (w *When) String() string {
	return fmt.Sprintf("WHEN %v THEN %v", w.condition, w.result)
}

func (w *When) deconstruct() (string, []any) {
	return "expr.When", []any{w.condition, w.result}
}

// Case is an SQL searched CASE expression: an ordered list of When clauses
// plus a mandatory default.
type Case struct {
	combinable
	whens   []*When
	dflt    Expression
	output  types.FieldType
	summary bool
}

// NewCase builds a CASE expression. A When whose condition can match no
// rows is skipped at render time; with no surviving clauses only the
// default renders.
func NewCase(whens []*When, defaultResult any) *Case {
	c := &Case{whens: append([]*When{}, whens...), dflt: parseExpression(defaultResult)}
	c.init(c)
	return c
}

// WithOutputField returns a copy with the declared output type set. The
// declared type also wraps the rendered CASE in the dialect's unification
// cast.
func (e *Case) WithOutputField(output types.FieldType) *Case {
	c := e.clone()
	c.output = output
	return c
}

func (e *Case) clone() *Case {
	c := &Case{
		whens:   append([]*When{}, e.whens...),
		dflt:    e.dflt,
		output:  e.output,
		summary: e.summary,
	}
	c.init(c)
	return c
}

func (e *Case) Resolve(q Query, opts ResolveOptions) (Expression, error) {
	c := e.clone()
	c.summary = opts.Summarize
	for i, w := range c.whens {
		resolved, err := w.Resolve(q, opts)
		if err != nil {
			return nil, err
		}
		c.whens[i] = resolved.(*When)
	}
	var err error
	if c.dflt, err = e.dflt.Resolve(q, opts); err != nil {
		return nil, err
	}
	return c, nil
}

func (e *Case) SQL(c Compiler) (string, []any, error) {
	if len(e.whens) == 0 {
		return c.Compile(e.dflt)
	}

	var caseParts []string
	var params []any
	dflt := e.dflt
	for _, w := range e.whens {
		whenSQL, whenParams, err := c.Compile(w)
		if err != nil {
			if errors.Is(err, ErrEmptyResultSet) {
				// The condition can match no rows; the branch is dead.
				continue
			}
			if errors.Is(err, ErrFullResultSet) {
				// The condition always holds; its result supersedes the
				// default and every later branch.
				dflt = w.result
				break
			}
			return "", nil, err
		}
		caseParts = append(caseParts, whenSQL)
		params = append(params, whenParams...)
	}

	defaultSQL, defaultParams, err := c.Compile(dflt)
	if err != nil {
		return "", nil, err
	}
	if len(caseParts) == 0 {
		return defaultSQL, defaultParams, nil
	}

	sql := expandTemplate(caseTemplate, map[string]string{
		"cases":   strings.Join(caseParts, " "),
		"default": defaultSQL,
	})
	params = append(params, defaultParams...)
	if e.output != types.Unknown {
		cast := c.Dialect().UnificationCastSQL(e.output)
		sql = strings.Replace(cast, "%s", sql, 1)
	}
	return sql, params, nil
}

func (e *Case) OutputField() (types.FieldType, error) {
	return outputOrInfer(e.output, e.SourceExpressions())
}

func (e *Case) SourceExpressions() []Expression {
	out := make([]Expression, 0, len(e.whens)+1)
	for _, w := range e.whens {
		out = append(out, w)
	}
	return append(out, e.dflt)
}

// WithSourceExpressions replaces the When clauses and default. Every
// element but the last must be a When node.
func (e *Case) WithSourceExpressions(exprs []Expression) Expression {
	c := e.clone()
	if len(exprs) == 0 {
		return c
	}
	whens := make([]*When, 0, len(exprs)-1)
	for _, src := range exprs[:len(exprs)-1] {
		w, ok := src.(*When)
		if !ok {
			panic("expr: Case sources must be When nodes followed by the default")
		}
		whens = append(whens, w)
	}
	c.whens = whens
	c.dflt = exprs[len(exprs)-1]
	return c
}

func (e *Case) GroupByCols() []Expression { return defaultGroupByCols(e) }

func (e *Case) ContainsAggregate() bool {
	return anyAggregate(e.SourceExpressions())
}

func (e *Case) deconstruct() (string, []any) {
	return "expr.Case", []any{e.SourceExpressions(), e.output}
}
