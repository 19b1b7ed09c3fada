package expr

import (
	"fmt"

	"github.com/sqlexpr/sqlexpr/types"
)

// F is a symbolic reference to a field of the query. It stays symbolic until
// resolved, at which point the query context replaces it with a concrete
// column or annotation reference.
type F struct {
	combinable
	name string
}

// NewF references a field by name.
func NewF(name string) *F {
	f := &F{name: name}
	f.init(f)
	return f
}

// Name returns the referenced field name.
func (f *F) Name() string { return f.name }

func (f *F) Resolve(q Query, opts ResolveOptions) (Expression, error) {
	if q == nil {
		return nil, fieldErrorf("cannot resolve field reference %q without a query", f.name)
	}
	return q.ResolveRef(f.name, opts.AllowJoins, opts.Reuse, opts.Summarize)
}

func (f *F) SQL(c Compiler) (string, []any, error) {
	return "", nil, fieldErrorf("cannot render unresolved field reference %q", f.name)
}

func (f *F) OutputField() (types.FieldType, error) {
	return outputOrInfer(types.Unknown, nil)
}

func (f *F) SourceExpressions() []Expression { return nil }

func (f *F) WithSourceExpressions(exprs []Expression) Expression {
	return NewF(f.name)
}

func (f *F) GroupByCols() []Expression { return []Expression{f} }

func (f *F) ContainsAggregate() bool { return false }

func (f *F) String() string { return fmt.Sprintf("F(%s)", f.name) }

func (f *F) deconstruct() (string, []any) {
	return "expr.F", []any{f.name}
}

// Col is a resolved reference to a column of a concrete table alias.
type Col struct {
	combinable
	alias   string
	target  string
	output  types.FieldType
	summary bool
}

// NewCol builds a resolved column reference. An empty alias renders the
// bare column name.
func NewCol(alias, target string, output types.FieldType) *Col {
	c := &Col{alias: alias, target: target, output: output}
	c.init(c)
	return c
}

// Alias returns the owning table alias.
func (c *Col) Alias() string { return c.alias }

// Target returns the column name.
func (c *Col) Target() string { return c.target }

// Relabeled returns a copy with the alias substituted per the change map.
func (c *Col) Relabeled(change map[string]string) *Col {
	if next, ok := change[c.alias]; ok {
		return NewCol(next, c.target, c.output)
	}
	return c.clone()
}

func (c *Col) clone() *Col {
	n := &Col{alias: c.alias, target: c.target, output: c.output, summary: c.summary}
	n.init(n)
	return n
}

func (c *Col) Resolve(q Query, opts ResolveOptions) (Expression, error) {
	n := c.clone()
	n.summary = opts.Summarize
	return n, nil
}

func (c *Col) SQL(comp Compiler) (string, []any, error) {
	if c.alias == "" {
		return comp.QuoteName(c.target), nil, nil
	}
	return comp.QuoteName(c.alias) + "." + comp.QuoteName(c.target), nil, nil
}

func (c *Col) OutputField() (types.FieldType, error) {
	return outputOrInfer(c.output, nil)
}

func (c *Col) SourceExpressions() []Expression { return nil }

func (c *Col) WithSourceExpressions(exprs []Expression) Expression {
	return c.clone()
}

func (c *Col) GroupByCols() []Expression { return []Expression{c} }

func (c *Col) ContainsAggregate() bool { return false }

func (c *Col) String() string { return fmt.Sprintf("Col(%s.%s)", c.alias, c.target) }

func (c *Col) deconstruct() (string, []any) {
	return "expr.Col", []any{c.alias, c.target, c.output}
}

// Ref references a named annotation of the query, e.g. the alias given to
// an aggregate. Resolving it is a no-op: the source it points at has
// already been resolved.
type Ref struct {
	combinable
	name    string
	source  Expression
	summary bool
}

// NewRef references the query alias name with its already-resolved source.
func NewRef(name string, source Expression) *Ref {
	r := &Ref{name: name, source: source}
	r.init(r)
	return r
}

// Name returns the referenced alias.
func (r *Ref) Name() string { return r.name }

func (r *Ref) clone() *Ref {
	n := &Ref{name: r.name, source: r.source, summary: r.summary}
	n.init(n)
	return n
}

func (r *Ref) Resolve(q Query, opts ResolveOptions) (Expression, error) {
	return r.clone(), nil
}

func (r *Ref) SQL(c Compiler) (string, []any, error) {
	return c.QuoteName(r.name), nil, nil
}

func (r *Ref) OutputField() (types.FieldType, error) {
	return outputOrInfer(types.Unknown, []Expression{r.source})
}

func (r *Ref) SourceExpressions() []Expression { return []Expression{r.source} }

func (r *Ref) WithSourceExpressions(exprs []Expression) Expression {
	n := r.clone()
	if len(exprs) == 1 {
		n.source = exprs[0]
	}
	return n
}

func (r *Ref) GroupByCols() []Expression { return []Expression{r} }

func (r *Ref) ContainsAggregate() bool { return anyAggregate([]Expression{r.source}) }

func (r *Ref) deconstruct() (string, []any) {
	return "expr.Ref", []any{r.name, r.source}
}

// OuterRef is a forward reference to a column of the enclosing query. It is
// only valid inside the nested query of a Subquery.
type OuterRef struct {
	combinable
	name string
}

// NewOuterRef references a column of the enclosing query by name.
func NewOuterRef(name string) *OuterRef {
	o := &OuterRef{name: name}
	o.init(o)
	return o
}

// Name returns the referenced outer column name.
func (o *OuterRef) Name() string { return o.name }

// Resolve marks the reference as belonging to an outer query. The marker is
// resolved a second time, against the outer query, by the enclosing
// Subquery.
func (o *OuterRef) Resolve(q Query, opts ResolveOptions) (Expression, error) {
	return newResolvedOuterRef(o.name), nil
}

func (o *OuterRef) SQL(c Compiler) (string, []any, error) {
	return "", nil, fieldErrorf("cannot render unresolved outer reference %q", o.name)
}

func (o *OuterRef) OutputField() (types.FieldType, error) {
	return outputOrInfer(types.Unknown, nil)
}

func (o *OuterRef) SourceExpressions() []Expression { return nil }

func (o *OuterRef) WithSourceExpressions(exprs []Expression) Expression {
	return NewOuterRef(o.name)
}

func (o *OuterRef) GroupByCols() []Expression { return []Expression{o} }

func (o *OuterRef) ContainsAggregate() bool { return false }

func (o *OuterRef) deconstruct() (string, []any) {
	return "expr.OuterRef", []any{o.name}
}

// ResolvedOuterRef is the marker an OuterRef becomes once the nested query
// has resolved its filter tree. Only the enclosing Subquery may consume it;
// rendering it directly means the subquery was used outside any outer
// query, which is a programming error surfaced immediately.
type ResolvedOuterRef struct {
	combinable
	name string
}

func newResolvedOuterRef(name string) *ResolvedOuterRef {
	r := &ResolvedOuterRef{name: name}
	r.init(r)
	return r
}

// Name returns the referenced outer column name.
func (r *ResolvedOuterRef) Name() string { return r.name }

// Resolve binds the marker against the query it is handed, which the
// enclosing Subquery arranges to be the outer query.
func (r *ResolvedOuterRef) Resolve(q Query, opts ResolveOptions) (Expression, error) {
	if q == nil {
		return newResolvedOuterRef(r.name), nil
	}
	return q.ResolveRef(r.name, opts.AllowJoins, opts.Reuse, opts.Summarize)
}

func (r *ResolvedOuterRef) SQL(c Compiler) (string, []any, error) {
	return "", nil, fmt.Errorf("%w (reference %q)", ErrOuterQueryOnly, r.name)
}

func (r *ResolvedOuterRef) OutputField() (types.FieldType, error) {
	return outputOrInfer(types.Unknown, nil)
}

func (r *ResolvedOuterRef) SourceExpressions() []Expression { return nil }

func (r *ResolvedOuterRef) WithSourceExpressions(exprs []Expression) Expression {
	return newResolvedOuterRef(r.name)
}

func (r *ResolvedOuterRef) GroupByCols() []Expression { return []Expression{r} }

func (r *ResolvedOuterRef) ContainsAggregate() bool { return false }

func (r *ResolvedOuterRef) deconstruct() (string, []any) {
	return "expr.ResolvedOuterRef", []any{r.name}
}
