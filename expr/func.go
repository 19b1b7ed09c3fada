package expr

import (
	"sort"
	"strings"

	"github.com/sqlexpr/sqlexpr/types"
)

const (
	defaultFuncTemplate = "%(function)s(%(expressions)s)"
	defaultArgJoiner    = ", "
)

// Func is an SQL function call: a named function, an ordered argument list,
// a rendering template, and an argument joiner. Per-call extra
// configuration overrides the defaults.
type Func struct {
	combinable
	function  string
	template  string
	argJoiner string
	args      []Expression
	extra     map[string]string
	output    types.FieldType
	summary   bool
	aggregate bool
}

// NewFunc builds a function call node. String arguments become field
// references; other non-expressions become literals.
func NewFunc(function string, args ...any) *Func {
	f := &Func{
		function:  function,
		template:  defaultFuncTemplate,
		argJoiner: defaultArgJoiner,
		args:      parseExpressions(args),
		extra:     map[string]string{},
	}
	f.init(f)
	return f
}

// FuncDef declares a reusable function shape. A non-zero Arity fixes the
// argument count; Call rejects any other count.
type FuncDef struct {
	Function  string
	Template  string
	ArgJoiner string
	Arity     int
	Output    types.FieldType
}

// Call instantiates the declared function with the given arguments.
func (d FuncDef) Call(args ...any) (*Func, error) {
	if d.Arity > 0 && len(args) != d.Arity {
		plural := "arguments"
		if d.Arity == 1 {
			plural = "argument"
		}
		return nil, fieldErrorf("%s takes exactly %d %s (%d given)", d.Function, d.Arity, plural, len(args))
	}
	f := NewFunc(d.Function, args...)
	if d.Template != "" {
		f.template = d.Template
	}
	if d.ArgJoiner != "" {
		f.argJoiner = d.ArgJoiner
	}
	f.output = d.Output
	return f, nil
}

// parseExpressions coerces call arguments: expressions pass through,
// strings become field references, the rest become literals.
func parseExpressions(args []any) []Expression {
	out := make([]Expression, len(args))
	for i, a := range args {
		out[i] = parseExpression(a)
	}
	return out
}

func parseExpression(a any) Expression {
	if name, ok := a.(string); ok {
		return NewF(name)
	}
	return wrapValue(a)
}

// WithOutputField returns a copy with the declared output type set.
func (f *Func) WithOutputField(output types.FieldType) *Func {
	c := f.clone()
	c.output = output
	return c
}

// WithExtra returns a copy with per-call template configuration merged in.
// Recognized keys include "function", "template" and "arg_joiner"; any
// other key is available to the template.
func (f *Func) WithExtra(extra map[string]string) *Func {
	c := f.clone()
	for k, v := range extra {
		c.extra[k] = v
	}
	return c
}

// Function returns the function name.
func (f *Func) Function() string { return f.function }

func (f *Func) clone() *Func {
	c := &Func{
		function:  f.function,
		template:  f.template,
		argJoiner: f.argJoiner,
		args:      append([]Expression{}, f.args...),
		extra:     make(map[string]string, len(f.extra)),
		output:    f.output,
		summary:   f.summary,
		aggregate: f.aggregate,
	}
	for k, v := range f.extra {
		c.extra[k] = v
	}
	c.init(c)
	return c
}

func (f *Func) Resolve(q Query, opts ResolveOptions) (Expression, error) {
	c := f.clone()
	c.summary = opts.Summarize
	var err error
	if c.args, err = resolveAll(q, opts, c.args); err != nil {
		return nil, err
	}
	return c, nil
}

func (f *Func) SQL(c Compiler) (string, []any, error) {
	return f.sqlWith(c, "", "", "")
}

// sqlWith renders with explicit overrides taking precedence over the extra
// map, which itself takes precedence over the node defaults.
func (f *Func) sqlWith(c Compiler, function, template, argJoiner string) (string, []any, error) {
	parts := make([]string, 0, len(f.args))
	var params []any
	for _, arg := range f.args {
		argSQL, argParams, err := c.Compile(arg)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, argSQL)
		params = append(params, argParams...)
	}

	data := make(map[string]string, len(f.extra)+3)
	for k, v := range f.extra {
		data[k] = v
	}
	if function != "" {
		data["function"] = function
	} else if _, ok := data["function"]; !ok {
		data["function"] = f.function
	}
	if template == "" {
		if template = data["template"]; template == "" {
			template = f.template
		}
	}
	if argJoiner == "" {
		if argJoiner = data["arg_joiner"]; argJoiner == "" {
			argJoiner = f.argJoiner
		}
	}
	joined := strings.Join(parts, argJoiner)
	data["expressions"] = joined
	data["field"] = joined

	sql := expandTemplate(template, data)
	if !c.Dialect().Features().SupportsDecimalExpressions &&
		outputOrUnknown(f) == types.Decimal {
		sql = "CAST(" + sql + " AS NUMERIC)"
	}
	return sql, params, nil
}

func (f *Func) OutputField() (types.FieldType, error) {
	return outputOrInfer(f.output, f.args)
}

func (f *Func) SourceExpressions() []Expression {
	return append([]Expression{}, f.args...)
}

func (f *Func) WithSourceExpressions(exprs []Expression) Expression {
	c := f.clone()
	c.args = append([]Expression{}, exprs...)
	return c
}

func (f *Func) GroupByCols() []Expression {
	// A terminal aggregate contributes nothing to GROUP BY.
	if f.aggregate {
		return nil
	}
	return defaultGroupByCols(f)
}

func (f *Func) ContainsAggregate() bool {
	return f.aggregate || anyAggregate(f.args)
}

func (f *Func) deconstruct() (string, []any) {
	args := []any{f.function, f.template, f.argJoiner, f.output, f.aggregate, f.args}
	keys := make([]string, 0, len(f.extra))
	for k := range f.extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, k+"="+f.extra[k])
	}
	return "expr.Func", args
}
