// Package query implements the minimal query context expressions resolve
// against: a single-table SELECT with typed fields, named annotations, a
// boolean filter tree and ordering.
package query

import (
	"errors"
	"sort"
	"strings"

	"github.com/sqlexpr/sqlexpr/expr"
	"github.com/sqlexpr/sqlexpr/types"
)

type field struct {
	name  string
	ftype types.FieldType
}

// Select is a single-table query. It is both the resolution context handed
// to expressions and the nested query a Subquery wraps.
type Select struct {
	table       string
	fields      []field
	fieldTypes  map[string]types.FieldType
	aliasPrefix string
	filter      expr.Expression
	annotations []expr.Annotation
	annIndex    map[string]int
	ordering    []*expr.OrderBy
	columns     []string
	external    map[string]bool
	err         error
}

// NewSelect starts a query over the named table. Tables get positional
// aliases with a per-query prefix, so nested queries can re-prefix
// themselves away from the enclosing query's namespace.
func NewSelect(table string) *Select {
	return &Select{
		table:       table,
		fieldTypes:  map[string]types.FieldType{},
		aliasPrefix: "T",
		annIndex:    map[string]int{},
		external:    map[string]bool{},
	}
}

// Field declares a typed column of the table. Declaration order is the
// default selection order.
func (s *Select) Field(name string, ftype types.FieldType) *Select {
	if _, dup := s.fieldTypes[name]; !dup {
		s.fields = append(s.fields, field{name: name, ftype: ftype})
	}
	s.fieldTypes[name] = ftype
	return s
}

// Columns restricts the selected columns to the named fields.
func (s *Select) Columns(names ...string) *Select {
	s.columns = append([]string{}, names...)
	return s
}

// Alias returns the table alias the query's columns are bound to.
func (s *Select) Alias() string { return s.aliasPrefix + "1" }

// Err returns the first configuration error recorded while building the
// query, if any.
func (s *Select) Err() error { return s.err }

func (s *Select) fail(err error) *Select {
	if s.err == nil {
		s.err = err
	}
	return s
}

// Filter ANDs a condition into the query. The condition is resolved
// against the query immediately: field references become columns, outer
// references become markers for an enclosing Subquery to bind.
func (s *Select) Filter(cond expr.Expression) *Select {
	resolved, err := cond.Resolve(s, expr.ResolveDefaults())
	if err != nil {
		return s.fail(err)
	}
	if s.filter == nil {
		s.filter = resolved
	} else {
		s.filter = and(s.filter, resolved)
	}
	return s
}

// Annotate attaches a named computed column. The expression is resolved
// against the query immediately.
func (s *Select) Annotate(name string, e expr.Expression) *Select {
	resolved, err := e.Resolve(s, expr.ResolveDefaults())
	if err != nil {
		return s.fail(err)
	}
	if i, ok := s.annIndex[name]; ok {
		s.annotations[i].Expr = resolved
		return s
	}
	s.annIndex[name] = len(s.annotations)
	s.annotations = append(s.annotations, expr.Annotation{Name: name, Expr: resolved})
	return s
}

// OrderBy appends ordering clauses, resolved against the query.
func (s *Select) OrderBy(orderings ...*expr.OrderBy) *Select {
	for _, o := range orderings {
		resolved, err := o.Resolve(s, expr.ResolveDefaults())
		if err != nil {
			return s.fail(err)
		}
		s.ordering = append(s.ordering, resolved.(*expr.OrderBy))
	}
	return s
}

// ResolveRef binds a name to an annotation or a column of the table.
func (s *Select) ResolveRef(name string, allowJoins bool, reuse map[string]bool, summarize bool) (expr.Expression, error) {
	if i, ok := s.annIndex[name]; ok {
		if summarize {
			return expr.NewRef(name, s.annotations[i].Expr), nil
		}
		return s.annotations[i].Expr, nil
	}
	if ftype, ok := s.fieldTypes[name]; ok {
		return expr.NewCol(s.Alias(), name, ftype), nil
	}
	return nil, expr.NewFieldError("cannot resolve keyword %q into field; choices are: %s", name, strings.Join(s.fieldNames(), ", "))
}

func (s *Select) fieldNames() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.name
	}
	return names
}

// Clone returns an independently owned deep copy. Expression trees are
// immutable and shared, except subquery nodes, which hold live nested
// queries and are re-cloned.
func (s *Select) Clone() expr.QuerySet {
	c := &Select{
		table:       s.table,
		fields:      append([]field{}, s.fields...),
		fieldTypes:  map[string]types.FieldType{},
		aliasPrefix: s.aliasPrefix,
		filter:      recloneNested(s.filter),
		annotations: append([]expr.Annotation{}, s.annotations...),
		annIndex:    map[string]int{},
		ordering:    append([]*expr.OrderBy{}, s.ordering...),
		external:    map[string]bool{},
		err:         s.err,
	}
	// A nil column list means "select the declared fields"; copying must
	// not turn it into an empty explicit list.
	if s.columns != nil {
		c.columns = append([]string{}, s.columns...)
	}
	for k, v := range s.fieldTypes {
		c.fieldTypes[k] = v
	}
	for k, v := range s.annIndex {
		c.annIndex[k] = v
	}
	for i := range c.annotations {
		c.annotations[i].Expr = recloneNested(c.annotations[i].Expr)
	}
	for i := range c.ordering {
		c.ordering[i] = recloneNested(c.ordering[i]).(*expr.OrderBy)
	}
	for k := range s.external {
		c.external[k] = true
	}
	return c
}

// recloneNested rebuilds the tree with every subquery node replaced by a
// fresh copy owning its own nested query. WithSourceExpressions on a
// sourceless subquery node is exactly that copy.
func recloneNested(e expr.Expression) expr.Expression {
	if e == nil {
		return nil
	}
	if _, ok := e.(nestedQuerier); ok {
		return e.WithSourceExpressions(nil)
	}
	sources := e.SourceExpressions()
	if len(sources) == 0 {
		return e
	}
	changed := false
	rebuilt := make([]expr.Expression, len(sources))
	for i, src := range sources {
		if src == nil {
			continue
		}
		r := recloneNested(src)
		if r != src {
			changed = true
		}
		rebuilt[i] = r
	}
	if !changed {
		return e
	}
	return e.WithSourceExpressions(rebuilt)
}

// BumpPrefix moves the query's alias namespace past the outer query's, so
// nested and enclosing aliases cannot collide. Queries nested one level
// further down bump past the new prefix in turn, then every reference to
// the old alias is relabeled.
func (s *Select) BumpPrefix(outer expr.Query) {
	base := rune(s.aliasPrefix[0])
	if o, ok := outer.(*Select); ok {
		if r := rune(o.aliasPrefix[0]); r > base {
			base = r
		}
	}
	next := base + 1
	if next > 'Z' {
		next = 'A'
	}
	prefix := string(next)
	if prefix == s.aliasPrefix {
		return
	}
	old := s.Alias()
	s.aliasPrefix = prefix
	for _, nested := range s.nestedQueries() {
		nested.BumpPrefix(s)
	}
	s.RelabelAliases(map[string]string{old: s.Alias()})
}

// RelabelAliases substitutes table aliases throughout the query's trees
// per the change map, following nested queries.
func (s *Select) RelabelAliases(change map[string]string) {
	if s.filter != nil {
		s.filter = relabel(s.filter, change)
	}
	for i := range s.annotations {
		s.annotations[i].Expr = relabel(s.annotations[i].Expr, change)
	}
	for i, o := range s.ordering {
		s.ordering[i] = relabel(o, change).(*expr.OrderBy)
	}
	if len(s.external) > 0 {
		renamed := make(map[string]bool, len(s.external))
		for a := range s.external {
			if next, ok := change[a]; ok {
				a = next
			}
			renamed[a] = true
		}
		s.external = renamed
	}
}

// nestedQuerier is implemented by expression nodes wrapping a whole query.
type nestedQuerier interface {
	NestedQuery() expr.QuerySet
}

// nestedQueries collects the queries wrapped by subquery nodes in the
// query's trees.
func (s *Select) nestedQueries() []expr.QuerySet {
	var out []expr.QuerySet
	collect := func(e expr.Expression) {
		for _, node := range expr.Flatten(e) {
			if nq, ok := node.(nestedQuerier); ok {
				out = append(out, nq.NestedQuery())
			}
		}
	}
	if s.filter != nil {
		collect(s.filter)
	}
	for _, ann := range s.annotations {
		collect(ann.Expr)
	}
	for _, o := range s.ordering {
		collect(o)
	}
	return out
}

// relabel rebuilds the tree with column aliases substituted per the change
// map. Nested queries are relabeled in place; their deep copies are owned
// by the subquery node holding them.
func relabel(e expr.Expression, change map[string]string) expr.Expression {
	if col, ok := e.(*expr.Col); ok {
		return col.Relabeled(change)
	}
	if nq, ok := e.(nestedQuerier); ok {
		nq.NestedQuery().RelabelAliases(change)
		return e
	}
	sources := e.SourceExpressions()
	if len(sources) == 0 {
		return e
	}
	changed := false
	rebuilt := make([]expr.Expression, len(sources))
	for i, src := range sources {
		if src == nil {
			continue
		}
		r := relabel(src, change)
		if r != src {
			changed = true
		}
		rebuilt[i] = r
	}
	if !changed {
		return e
	}
	return e.WithSourceExpressions(rebuilt)
}

// FilterExpr returns the root of the filter tree, or nil.
func (s *Select) FilterExpr() expr.Expression { return s.filter }

// SetFilter replaces the filter tree with an already-resolved condition.
func (s *Select) SetFilter(e expr.Expression) { s.filter = e }

// Annotations returns the named computed columns in insertion order.
func (s *Select) Annotations() []expr.Annotation {
	return append([]expr.Annotation{}, s.annotations...)
}

// SetAnnotation replaces the named annotation's expression.
func (s *Select) SetAnnotation(name string, e expr.Expression) {
	if i, ok := s.annIndex[name]; ok {
		s.annotations[i].Expr = e
	}
}

// AddExternalAlias records a table alias owned by an enclosing query.
func (s *Select) AddExternalAlias(alias string) {
	s.external[alias] = true
}

// ExternalAliases returns the registered enclosing-query aliases, sorted.
func (s *Select) ExternalAliases() []string {
	out := make([]string, 0, len(s.external))
	for a := range s.external {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// StripOrdering drops the ORDER BY clauses.
func (s *Select) StripOrdering() { s.ordering = nil }

// SelectedOutput returns the output type of the sole selected column.
func (s *Select) SelectedOutput() (types.FieldType, bool) {
	if len(s.columns) == 1 {
		if ftype, ok := s.fieldTypes[s.columns[0]]; ok {
			return ftype, true
		}
		return types.Unknown, false
	}
	if len(s.columns) == 0 && len(s.fields) == 1 && len(s.annotations) == 0 {
		return s.fields[0].ftype, true
	}
	if len(s.columns) == 0 && len(s.fields) == 0 && len(s.annotations) == 1 {
		ftype, err := s.annotations[0].Expr.OutputField()
		if err != nil {
			return types.Unknown, false
		}
		return ftype, true
	}
	return types.Unknown, false
}

// SQL renders the full SELECT statement.
func (s *Select) SQL(c expr.Compiler) (string, []any, error) {
	if s.err != nil {
		return "", nil, s.err
	}

	var b strings.Builder
	var params []any
	b.WriteString("SELECT ")

	selected := s.columns
	if selected == nil {
		selected = s.fieldNames()
	}
	first := true
	for _, name := range selected {
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(c.QuoteName(s.Alias()))
		b.WriteString(".")
		b.WriteString(c.QuoteName(name))
	}
	for _, ann := range s.annotations {
		annSQL, annParams, err := c.Compile(ann.Expr)
		if err != nil {
			return "", nil, err
		}
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(annSQL)
		b.WriteString(" AS ")
		b.WriteString(c.QuoteName(ann.Name))
		params = append(params, annParams...)
	}
	if first {
		b.WriteString("*")
	}

	b.WriteString(" FROM ")
	b.WriteString(c.QuoteName(s.table))
	b.WriteString(" ")
	b.WriteString(c.QuoteName(s.Alias()))

	if s.filter != nil {
		whereSQL, whereParams, err := c.Compile(s.filter)
		switch {
		case errors.Is(err, expr.ErrFullResultSet):
			// The condition holds for every row; no WHERE clause.
		case err != nil:
			return "", nil, err
		default:
			b.WriteString(" WHERE ")
			b.WriteString(whereSQL)
			params = append(params, whereParams...)
		}
	}

	if len(s.ordering) > 0 {
		b.WriteString(" ORDER BY ")
		for i, o := range s.ordering {
			orderSQL, orderParams, err := c.Compile(o)
			if err != nil {
				return "", nil, err
			}
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(orderSQL)
			params = append(params, orderParams...)
		}
	}

	return b.String(), params, nil
}
