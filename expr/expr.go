// Package expr implements the composable SQL expression tree: typed nodes
// that resolve symbolic references against a query context and render to
// parametrized SQL across database dialects.
package expr

import (
	"strings"

	"github.com/sqlexpr/sqlexpr/dialect"
	"github.com/sqlexpr/sqlexpr/types"
)

// Expression is the protocol every node of the tree implements.
//
// Nodes are immutable after construction. Resolve never mutates its
// receiver; it returns a new node with every child resolved the same way.
// SQL renders a fragment with %s-style placeholders plus the positional
// bind parameters matching them.
type Expression interface {
	// Resolve binds symbolic references (field names, annotation names,
	// outer references) to the concrete query context.
	Resolve(q Query, opts ResolveOptions) (Expression, error)
	// SQL renders the node through the compiler collaborator.
	SQL(c Compiler) (string, []any, error)
	// OutputField returns the declared output type, or infers it by
	// unifying the output types of the source expressions.
	OutputField() (types.FieldType, error)
	// SourceExpressions returns the ordered child expressions.
	SourceExpressions() []Expression
	// WithSourceExpressions returns a new node with the children replaced.
	// The replacement must have the same count and order SourceExpressions
	// returns.
	WithSourceExpressions(exprs []Expression) Expression
	// GroupByCols returns the columns this node forces into GROUP BY.
	GroupByCols() []Expression
	// ContainsAggregate reports whether the subtree holds an aggregate.
	ContainsAggregate() bool
}

// ResolveOptions carries the flags threaded through Resolve.
type ResolveOptions struct {
	// AllowJoins permits references that would require a join.
	AllowJoins bool
	// Reuse holds join aliases that may be reused.
	Reuse map[string]bool
	// Summarize marks the node as a terminal aggregate boundary.
	Summarize bool
	// ForSave marks values being prepared for a write rather than a read.
	ForSave bool
}

// ResolveDefaults returns the options used when none are specified.
func ResolveDefaults() ResolveOptions {
	return ResolveOptions{AllowJoins: true}
}

// Query is the resolution context supplied by the query layer.
type Query interface {
	// ResolveRef binds a symbolic name to a column or annotation of the
	// query.
	ResolveRef(name string, allowJoins bool, reuse map[string]bool, summarize bool) (Expression, error)
}

// QuerySet is the nested query object a Subquery wraps. The concrete
// implementation lives in the query package.
type QuerySet interface {
	// Clone returns an independently owned deep copy.
	Clone() QuerySet
	// BumpPrefix re-namespaces the query's table aliases so they cannot
	// collide with the outer query's aliases.
	BumpPrefix(outer Query)
	// RelabelAliases substitutes table aliases throughout the query's
	// trees, including nested queries, per the change map.
	RelabelAliases(change map[string]string)
	// FilterExpr returns the root of the filter tree, or nil.
	FilterExpr() Expression
	// SetFilter replaces the filter tree.
	SetFilter(e Expression)
	// Annotations returns the named computed columns in insertion order.
	Annotations() []Annotation
	// SetAnnotation replaces a named annotation.
	SetAnnotation(name string, e Expression)
	// AddExternalAlias registers a table alias owned by an enclosing
	// query, so the renderer will not declare or re-quote it as local.
	AddExternalAlias(alias string)
	// StripOrdering drops any ORDER BY clauses.
	StripOrdering()
	// SelectedOutput returns the output type of the sole selected column,
	// when exactly one column is selected.
	SelectedOutput() (types.FieldType, bool)
	// SQL renders the full nested query.
	SQL(c Compiler) (string, []any, error)
}

// Annotation is a named computed column of a query.
type Annotation struct {
	Name string
	Expr Expression
}

// Compiler is the rendering collaborator handed to SQL.
type Compiler interface {
	// Compile recursively renders a child node.
	Compile(e Expression) (string, []any, error)
	// QuoteName quotes an identifier for the target dialect.
	QuoteName(name string) string
	// Dialect exposes capability flags and fragment builders.
	Dialect() dialect.Dialect
}

// Aliased is implemented by resolved nodes bound to a table alias.
type Aliased interface {
	Alias() string
}

// Flatten returns the node followed by every subexpression, depth-first
// pre-order. Each call re-traverses the tree.
func Flatten(e Expression) []Expression {
	if e == nil {
		return nil
	}
	out := []Expression{e}
	for _, src := range e.SourceExpressions() {
		out = append(out, Flatten(src)...)
	}
	return out
}

// Asc wraps an expression in an ascending OrderBy.
func Asc(e Expression) *OrderBy {
	o, _ := NewOrderBy(e, OrderByOptions{})
	return o
}

// Desc wraps an expression in a descending OrderBy.
func Desc(e Expression) *OrderBy {
	o, _ := NewOrderBy(e, OrderByOptions{Descending: true})
	return o
}

// resolveAll resolves each expression in order.
func resolveAll(q Query, opts ResolveOptions, exprs []Expression) ([]Expression, error) {
	if len(exprs) == 0 {
		return nil, nil
	}
	out := make([]Expression, len(exprs))
	for i, e := range exprs {
		if e == nil {
			continue
		}
		resolved, err := e.Resolve(q, opts)
		if err != nil {
			return nil, err
		}
		out[i] = resolved
	}
	return out, nil
}

// outputOrUnknown returns the node's output type, swallowing the
// unresolved-type error.
func outputOrUnknown(e Expression) types.FieldType {
	if e == nil {
		return types.Unknown
	}
	ft, err := e.OutputField()
	if err != nil {
		return types.Unknown
	}
	return ft
}

// inferOutput unifies the output types of the sources. Sources without a
// resolvable type are excluded; disagreement among the rest is a hard
// configuration error.
func inferOutput(sources []Expression) (types.FieldType, error) {
	out := types.Unknown
	for _, s := range sources {
		ft := outputOrUnknown(s)
		if ft == types.Unknown {
			continue
		}
		if out == types.Unknown {
			out = ft
			continue
		}
		if out != ft {
			return types.Unknown, fieldErrorf("expression contains mixed types: %s and %s; declare an output field", out, ft)
		}
	}
	return out, nil
}

// outputOrInfer implements the standard OutputField contract: declared type
// wins, otherwise inference, otherwise an unresolved-type error.
func outputOrInfer(declared types.FieldType, sources []Expression) (types.FieldType, error) {
	if declared != types.Unknown {
		return declared, nil
	}
	ft, err := inferOutput(sources)
	if err != nil {
		return types.Unknown, err
	}
	if ft == types.Unknown {
		return types.Unknown, fieldErrorf("cannot resolve expression type, unknown output field")
	}
	return ft, nil
}

// anyAggregate reports whether any source subtree holds an aggregate.
func anyAggregate(sources []Expression) bool {
	for _, s := range sources {
		if s != nil && s.ContainsAggregate() {
			return true
		}
	}
	return false
}

// defaultGroupByCols returns [self] for aggregate-free subtrees, else the
// union of the children's group-by columns.
func defaultGroupByCols(self Expression) []Expression {
	if !self.ContainsAggregate() {
		return []Expression{self}
	}
	var cols []Expression
	for _, src := range self.SourceExpressions() {
		if src != nil {
			cols = append(cols, src.GroupByCols()...)
		}
	}
	return cols
}

// expandTemplate substitutes %(name)s placeholders. Substituted fragments
// may themselves contain %s bind placeholders; those pass through untouched.
func expandTemplate(template string, data map[string]string) string {
	pairs := make([]string, 0, len(data)*2)
	for key, val := range data {
		pairs = append(pairs, "%("+key+")s", val)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
