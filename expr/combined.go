package expr

import (
	"fmt"

	"github.com/sqlexpr/sqlexpr/dialect"
	"github.com/sqlexpr/sqlexpr/types"
)

// CombinedExpression joins two expressions with an arithmetic or bitwise
// connector. Rendering special-cases duration and temporal arithmetic
// before falling back to the dialect's generic combine fragment.
type CombinedExpression struct {
	combinable
	lhs     Expression
	conn    dialect.Connector
	rhs     Expression
	output  types.FieldType
	summary bool
}

// NewCombined joins lhs and rhs with the connector.
func NewCombined(lhs Expression, conn dialect.Connector, rhs Expression) *CombinedExpression {
	return NewTypedCombined(lhs, conn, rhs, types.Unknown)
}

// NewTypedCombined joins lhs and rhs with a declared output type.
func NewTypedCombined(lhs Expression, conn dialect.Connector, rhs Expression, output types.FieldType) *CombinedExpression {
	e := &CombinedExpression{lhs: lhs, conn: conn, rhs: rhs, output: output}
	e.init(e)
	return e
}

// Connector returns the joining operator symbol.
func (e *CombinedExpression) Connector() dialect.Connector { return e.conn }

func (e *CombinedExpression) clone() *CombinedExpression {
	c := &CombinedExpression{lhs: e.lhs, conn: e.conn, rhs: e.rhs, output: e.output, summary: e.summary}
	c.init(c)
	return c
}

func (e *CombinedExpression) Resolve(q Query, opts ResolveOptions) (Expression, error) {
	c := e.clone()
	c.summary = opts.Summarize
	var err error
	if c.lhs, err = e.lhs.Resolve(q, opts); err != nil {
		return nil, err
	}
	if c.rhs, err = e.rhs.Resolve(q, opts); err != nil {
		return nil, err
	}
	return c, nil
}

func (e *CombinedExpression) SQL(c Compiler) (string, []any, error) {
	d := c.Dialect()
	lhsType := outputOrUnknown(e.lhs)
	rhsType := outputOrUnknown(e.rhs)

	if !d.Features().HasNativeDuration &&
		(lhsType == types.Duration || rhsType == types.Duration) {
		return NewDurationExpression(e.lhs, e.conn, e.rhs).SQL(c)
	}
	if lhsType != types.Unknown && rhsType != types.Unknown &&
		e.conn == dialect.Sub && lhsType.IsTemporal() && lhsType == rhsType {
		return NewTemporalSubtraction(e.lhs, e.rhs).SQL(c)
	}

	lhsSQL, lhsParams, err := c.Compile(e.lhs)
	if err != nil {
		return "", nil, err
	}
	rhsSQL, rhsParams, err := c.Compile(e.rhs)
	if err != nil {
		return "", nil, err
	}
	combined, err := d.CombineExpression(e.conn, []string{lhsSQL, rhsSQL})
	if err != nil {
		return "", nil, err
	}
	params := append(append([]any{}, lhsParams...), rhsParams...)
	// Parenthesized to keep precedence when embedded in a larger
	// expression.
	return "(" + combined + ")", params, nil
}

func (e *CombinedExpression) OutputField() (types.FieldType, error) {
	return outputOrInfer(e.output, e.SourceExpressions())
}

func (e *CombinedExpression) SourceExpressions() []Expression {
	return []Expression{e.lhs, e.rhs}
}

func (e *CombinedExpression) WithSourceExpressions(exprs []Expression) Expression {
	c := e.clone()
	if len(exprs) == 2 {
		c.lhs, c.rhs = exprs[0], exprs[1]
	}
	return c
}

func (e *CombinedExpression) GroupByCols() []Expression { return defaultGroupByCols(e) }

func (e *CombinedExpression) ContainsAggregate() bool {
	return anyAggregate(e.SourceExpressions())
}

func (e *CombinedExpression) String() string {
	return fmt.Sprintf("%v %s %v", e.lhs, e.conn, e.rhs)
}

func (e *CombinedExpression) deconstruct() (string, []any) {
	return "expr.CombinedExpression", []any{e.lhs, string(e.conn), e.rhs, e.output}
}

// DurationExpression renders duration arithmetic on backends without a
// native duration type: each non-literal duration side is wrapped with the
// dialect's duration-arithmetic formatting before combining.
type DurationExpression struct {
	CombinedExpression
}

// NewDurationExpression joins lhs and rhs for duration-aware rendering.
func NewDurationExpression(lhs Expression, conn dialect.Connector, rhs Expression) *DurationExpression {
	e := &DurationExpression{CombinedExpression: *NewTypedCombined(lhs, conn, rhs, types.Unknown)}
	e.init(e)
	return e
}

func (e *DurationExpression) Resolve(q Query, opts ResolveOptions) (Expression, error) {
	resolved, err := e.CombinedExpression.Resolve(q, opts)
	if err != nil {
		return nil, err
	}
	d := &DurationExpression{CombinedExpression: *resolved.(*CombinedExpression)}
	d.init(d)
	return d, nil
}

func (e *DurationExpression) WithSourceExpressions(exprs []Expression) Expression {
	d := &DurationExpression{
		CombinedExpression: *e.CombinedExpression.WithSourceExpressions(exprs).(*CombinedExpression),
	}
	d.init(d)
	return d
}

func (e *DurationExpression) deconstruct() (string, []any) {
	return "expr.DurationExpression", []any{e.lhs, string(e.conn), e.rhs, e.output}
}

func (e *DurationExpression) compileSide(c Compiler, side Expression) (string, []any, error) {
	if _, ok := side.(*DurationValue); !ok {
		if outputOrUnknown(side) == types.Duration {
			sql, params, err := c.Compile(side)
			if err != nil {
				return "", nil, err
			}
			return c.Dialect().FormatForDurationArithmetic(sql), params, nil
		}
	}
	return c.Compile(side)
}

func (e *DurationExpression) SQL(c Compiler) (string, []any, error) {
	lhsSQL, lhsParams, err := e.compileSide(c, e.lhs)
	if err != nil {
		return "", nil, err
	}
	rhsSQL, rhsParams, err := e.compileSide(c, e.rhs)
	if err != nil {
		return "", nil, err
	}
	combined, err := c.Dialect().CombineDurationExpression(e.conn, []string{lhsSQL, rhsSQL})
	if err != nil {
		return "", nil, err
	}
	params := append(append([]any{}, lhsParams...), rhsParams...)
	return "(" + combined + ")", params, nil
}

// TemporalSubtraction subtracts two same-typed temporal expressions,
// producing a duration, through the dialect's native fragment.
type TemporalSubtraction struct {
	CombinedExpression
}

// NewTemporalSubtraction builds lhs - rhs over two temporals.
func NewTemporalSubtraction(lhs, rhs Expression) *TemporalSubtraction {
	e := &TemporalSubtraction{CombinedExpression: *NewTypedCombined(lhs, dialect.Sub, rhs, types.Duration)}
	e.init(e)
	return e
}

func (e *TemporalSubtraction) Resolve(q Query, opts ResolveOptions) (Expression, error) {
	resolved, err := e.CombinedExpression.Resolve(q, opts)
	if err != nil {
		return nil, err
	}
	t := &TemporalSubtraction{CombinedExpression: *resolved.(*CombinedExpression)}
	t.init(t)
	return t, nil
}

func (e *TemporalSubtraction) WithSourceExpressions(exprs []Expression) Expression {
	t := &TemporalSubtraction{
		CombinedExpression: *e.CombinedExpression.WithSourceExpressions(exprs).(*CombinedExpression),
	}
	t.init(t)
	return t
}

func (e *TemporalSubtraction) deconstruct() (string, []any) {
	return "expr.TemporalSubtraction", []any{e.lhs, e.rhs}
}

func (e *TemporalSubtraction) SQL(c Compiler) (string, []any, error) {
	lhsSQL, lhsParams, err := c.Compile(e.lhs)
	if err != nil {
		return "", nil, err
	}
	rhsSQL, rhsParams, err := c.Compile(e.rhs)
	if err != nil {
		return "", nil, err
	}
	kind := outputOrUnknown(e.lhs)
	return c.Dialect().SubtractTemporals(kind, lhsSQL, lhsParams, rhsSQL, rhsParams)
}
