package expr

import (
	"fmt"
	"time"

	"github.com/sqlexpr/sqlexpr/types"
)

// Value represents a literal wrapped as a node. It renders as a bind
// placeholder, never interpolated into the SQL text.
type Value struct {
	combinable
	value   any
	output  types.FieldType
	summary bool
	forSave bool
}

// NewValue wraps a literal.
func NewValue(v any) *Value {
	return NewTypedValue(v, types.Unknown)
}

// NewTypedValue wraps a literal with a declared output type.
func NewTypedValue(v any, output types.FieldType) *Value {
	val := &Value{value: v, output: output}
	val.init(val)
	return val
}

// Val returns the wrapped Go value.
func (v *Value) Val() any { return v.value }

// WithOutputField returns a copy with the declared output type set.
func (v *Value) WithOutputField(output types.FieldType) *Value {
	c := v.clone()
	c.output = output
	return c
}

func (v *Value) clone() *Value {
	c := &Value{value: v.value, output: v.output, summary: v.summary, forSave: v.forSave}
	c.init(c)
	return c
}

func (v *Value) Resolve(q Query, opts ResolveOptions) (Expression, error) {
	c := v.clone()
	c.summary = opts.Summarize
	c.forSave = opts.ForSave
	return c, nil
}

func (v *Value) SQL(c Compiler) (string, []any, error) {
	val := v.value
	if v.output != types.Unknown {
		val = types.PrepValue(v.output, val)
	}
	if val == nil {
		// Some drivers mishandle a typed nil parameter inside larger
		// expressions, so NULL is emitted as literal SQL.
		return "NULL", nil, nil
	}
	return "%s", []any{val}, nil
}

func (v *Value) OutputField() (types.FieldType, error) {
	return outputOrInfer(v.output, nil)
}

func (v *Value) SourceExpressions() []Expression { return nil }

func (v *Value) WithSourceExpressions(exprs []Expression) Expression {
	return v.clone()
}

// GroupByCols returns nothing: a constant never forces grouping.
func (v *Value) GroupByCols() []Expression { return nil }

func (v *Value) ContainsAggregate() bool { return false }

func (v *Value) String() string { return fmt.Sprintf("Value(%v)", v.value) }

func (v *Value) deconstruct() (string, []any) {
	return "expr.Value", []any{v.value, v.output}
}

// DurationValue is a literal time span. Backends without a native duration
// type render it through the dialect's interval fragment.
type DurationValue struct {
	combinable
	duration time.Duration
	summary  bool
}

// NewDurationValue wraps a time span literal.
func NewDurationValue(d time.Duration) *DurationValue {
	v := &DurationValue{duration: d}
	v.init(v)
	return v
}

// Duration returns the wrapped span.
func (v *DurationValue) Duration() time.Duration { return v.duration }

func (v *DurationValue) clone() *DurationValue {
	c := &DurationValue{duration: v.duration, summary: v.summary}
	c.init(c)
	return c
}

func (v *DurationValue) Resolve(q Query, opts ResolveOptions) (Expression, error) {
	c := v.clone()
	c.summary = opts.Summarize
	return c, nil
}

func (v *DurationValue) SQL(c Compiler) (string, []any, error) {
	d := c.Dialect()
	if d.Features().HasNativeDuration {
		return "%s", []any{v.duration.Microseconds()}, nil
	}
	sql, params := d.DurationIntervalSQL(v.duration)
	return sql, params, nil
}

func (v *DurationValue) OutputField() (types.FieldType, error) {
	return types.Duration, nil
}

func (v *DurationValue) SourceExpressions() []Expression { return nil }

func (v *DurationValue) WithSourceExpressions(exprs []Expression) Expression {
	return v.clone()
}

func (v *DurationValue) GroupByCols() []Expression { return nil }

func (v *DurationValue) ContainsAggregate() bool { return false }

func (v *DurationValue) deconstruct() (string, []any) {
	return "expr.DurationValue", []any{v.duration}
}

// RawSQL is the escape hatch: an opaque fragment with its parameters. The
// fragment is trusted as-is and parenthesized when embedded.
type RawSQL struct {
	combinable
	sql     string
	params  []any
	output  types.FieldType
	summary bool
}

// NewRawSQL wraps a raw fragment. The fragment uses %s placeholders matched
// positionally by params.
func NewRawSQL(sql string, params []any, output types.FieldType) *RawSQL {
	r := &RawSQL{sql: sql, params: params, output: output}
	r.init(r)
	return r
}

func (r *RawSQL) clone() *RawSQL {
	c := &RawSQL{sql: r.sql, params: append([]any{}, r.params...), output: r.output, summary: r.summary}
	c.init(c)
	return c
}

func (r *RawSQL) Resolve(q Query, opts ResolveOptions) (Expression, error) {
	c := r.clone()
	c.summary = opts.Summarize
	return c, nil
}

func (r *RawSQL) SQL(c Compiler) (string, []any, error) {
	return "(" + r.sql + ")", append([]any{}, r.params...), nil
}

func (r *RawSQL) OutputField() (types.FieldType, error) {
	return outputOrInfer(r.output, nil)
}

func (r *RawSQL) SourceExpressions() []Expression { return nil }

func (r *RawSQL) WithSourceExpressions(exprs []Expression) Expression {
	return r.clone()
}

// GroupByCols returns the node itself: an opaque fragment may reference
// columns, so it must be grouped verbatim.
func (r *RawSQL) GroupByCols() []Expression { return []Expression{r} }

func (r *RawSQL) ContainsAggregate() bool { return false }

func (r *RawSQL) deconstruct() (string, []any) {
	args := []any{r.sql, r.output}
	for _, p := range r.params {
		args = append(args, p)
	}
	return "expr.RawSQL", args
}

// Star is the * column selector.
type Star struct {
	summary bool
}

// NewStar returns the * selector.
func NewStar() *Star { return &Star{} }

func (s *Star) Resolve(q Query, opts ResolveOptions) (Expression, error) {
	return &Star{summary: opts.Summarize}, nil
}

func (s *Star) SQL(c Compiler) (string, []any, error) {
	return "*", nil, nil
}

func (s *Star) OutputField() (types.FieldType, error) {
	return outputOrInfer(types.Unknown, nil)
}

func (s *Star) SourceExpressions() []Expression { return nil }

func (s *Star) WithSourceExpressions(exprs []Expression) Expression {
	return &Star{summary: s.summary}
}

func (s *Star) GroupByCols() []Expression { return []Expression{s} }

func (s *Star) ContainsAggregate() bool { return false }

func (s *Star) deconstruct() (string, []any) {
	return "expr.Star", nil
}

// Random renders the dialect's random() function. Its output is always a
// float.
type Random struct {
	combinable
	summary bool
}

// NewRandom returns a random() node.
func NewRandom() *Random {
	r := &Random{}
	r.init(r)
	return r
}

func (r *Random) Resolve(q Query, opts ResolveOptions) (Expression, error) {
	c := &Random{summary: opts.Summarize}
	c.init(c)
	return c, nil
}

func (r *Random) SQL(c Compiler) (string, []any, error) {
	return c.Dialect().RandomFunctionSQL(), nil, nil
}

func (r *Random) OutputField() (types.FieldType, error) {
	return types.Float, nil
}

func (r *Random) SourceExpressions() []Expression { return nil }

func (r *Random) WithSourceExpressions(exprs []Expression) Expression {
	c := &Random{summary: r.summary}
	c.init(c)
	return c
}

func (r *Random) GroupByCols() []Expression { return []Expression{r} }

func (r *Random) ContainsAggregate() bool { return false }

func (r *Random) deconstruct() (string, []any) {
	return "expr.Random", nil
}
