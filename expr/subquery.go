package expr

import (
	"github.com/sqlexpr/sqlexpr/types"
)

// Subquery embeds a nested query as an expression. The wrapped QuerySet is
// deep-copied on construction so later mutations of the original cannot
// leak in.
type Subquery struct {
	combinable
	queryset QuerySet
	output   types.FieldType
}

// NewSubquery wraps a nested query. The output type is inferred from the
// query's sole selected column when possible; declare one with
// WithOutputField otherwise.
func NewSubquery(qs QuerySet) *Subquery {
	s := &Subquery{queryset: qs.Clone()}
	s.init(s)
	return s
}

// WithOutputField returns a copy with the declared output type set.
func (s *Subquery) WithOutputField(output types.FieldType) *Subquery {
	c := s.clone()
	c.output = output
	return c
}

func (s *Subquery) clone() *Subquery {
	c := &Subquery{queryset: s.queryset.Clone(), output: s.output}
	c.init(c)
	return c
}

func (s *Subquery) Resolve(q Query, opts ResolveOptions) (Expression, error) {
	c := s.clone()
	if err := resolveNestedQuery(c.queryset, q, opts); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Subquery) SQL(c Compiler) (string, []any, error) {
	sql, params, err := s.queryset.SQL(c)
	if err != nil {
		return "", nil, err
	}
	return "(" + sql + ")", params, nil
}

func (s *Subquery) OutputField() (types.FieldType, error) {
	if s.output != types.Unknown {
		return s.output, nil
	}
	if ft, ok := s.queryset.SelectedOutput(); ok && ft != types.Unknown {
		return ft, nil
	}
	return types.Unknown, fieldErrorf("cannot resolve expression type, unknown output field")
}

// SourceExpressions is empty: the nested query is opaque to tree traversal.
func (s *Subquery) SourceExpressions() []Expression { return nil }

func (s *Subquery) WithSourceExpressions(exprs []Expression) Expression {
	return s.clone()
}

// NestedQuery exposes the wrapped query for alias maintenance by the
// enclosing query.
func (s *Subquery) NestedQuery() QuerySet { return s.queryset }

func (s *Subquery) GroupByCols() []Expression { return []Expression{s} }

func (s *Subquery) ContainsAggregate() bool { return false }

func (s *Subquery) deconstruct() (string, []any) {
	return "expr.Subquery", []any{s.queryset, s.output}
}

// Exists renders a nested query as an EXISTS predicate. Ordering inside the
// nested query is dropped at resolve time, it cannot affect the result.
type Exists struct {
	combinable
	queryset QuerySet
	negated  bool
}

// NewExists wraps a nested query in an EXISTS predicate.
func NewExists(qs QuerySet) *Exists {
	e := &Exists{queryset: qs.Clone()}
	e.init(e)
	return e
}

// Invert returns a copy with the negation flipped, rendering NOT EXISTS.
func (e *Exists) Invert() *Exists {
	c := e.clone()
	c.negated = !c.negated
	return c
}

func (e *Exists) clone() *Exists {
	c := &Exists{queryset: e.queryset.Clone(), negated: e.negated}
	c.init(c)
	return c
}

func (e *Exists) Resolve(q Query, opts ResolveOptions) (Expression, error) {
	c := e.clone()
	c.queryset.StripOrdering()
	if err := resolveNestedQuery(c.queryset, q, opts); err != nil {
		return nil, err
	}
	return c, nil
}

func (e *Exists) SQL(c Compiler) (string, []any, error) {
	sql, params, err := e.queryset.SQL(c)
	if err != nil {
		return "", nil, err
	}
	sql = "EXISTS(" + sql + ")"
	if e.negated {
		sql = "NOT " + sql
	}
	if !c.Dialect().Features().SupportsExistsInSelect {
		sql = "CASE WHEN " + sql + " THEN 1 ELSE 0 END"
	}
	return sql, params, nil
}

func (e *Exists) OutputField() (types.FieldType, error) { return types.Bool, nil }

func (e *Exists) SourceExpressions() []Expression { return nil }

func (e *Exists) WithSourceExpressions(exprs []Expression) Expression {
	return e.clone()
}

// NestedQuery exposes the wrapped query for alias maintenance by the
// enclosing query.
func (e *Exists) NestedQuery() QuerySet { return e.queryset }

func (e *Exists) GroupByCols() []Expression { return []Expression{e} }

func (e *Exists) ContainsAggregate() bool { return false }

func (e *Exists) deconstruct() (string, []any) {
	return "expr.Exists", []any{e.queryset, e.negated}
}

// resolveNestedQuery rewires a cloned nested query into the enclosing
// query's namespace: table aliases are re-prefixed, outer references in the
// filter tree are bound to outer columns, and nested subquery annotations
// resolve one level further in.
func resolveNestedQuery(qs QuerySet, outer Query, opts ResolveOptions) error {
	qs.BumpPrefix(outer)
	if f := qs.FilterExpr(); f != nil {
		bound, err := bindOuterRefs(f, outer, opts, qs)
		if err != nil {
			return err
		}
		qs.SetFilter(bound)
	}
	inner, isQuery := qs.(Query)
	for _, a := range qs.Annotations() {
		nested, ok := a.Expr.(*Subquery)
		if !ok || !isQuery {
			continue
		}
		resolved, err := nested.Resolve(inner, opts)
		if err != nil {
			return err
		}
		qs.SetAnnotation(a.Name, resolved)
	}
	return nil
}

// bindOuterRefs rebuilds the tree with every resolved outer reference bound
// to the outer query. Columns the binding produces belong to outer tables;
// their aliases are registered as external so the nested renderer leaves
// them alone.
func bindOuterRefs(e Expression, outer Query, opts ResolveOptions, qs QuerySet) (Expression, error) {
	if ref, ok := e.(*ResolvedOuterRef); ok {
		bound, err := ref.Resolve(outer, opts)
		if err != nil {
			return nil, err
		}
		if al, ok := bound.(Aliased); ok {
			qs.AddExternalAlias(al.Alias())
		}
		return bound, nil
	}
	sources := e.SourceExpressions()
	if len(sources) == 0 {
		return e, nil
	}
	changed := false
	rebuilt := make([]Expression, len(sources))
	for i, src := range sources {
		if src == nil {
			continue
		}
		b, err := bindOuterRefs(src, outer, opts, qs)
		if err != nil {
			return nil, err
		}
		if b != src {
			changed = true
		}
		rebuilt[i] = b
	}
	if !changed {
		return e, nil
	}
	return e.WithSourceExpressions(rebuilt), nil
}
