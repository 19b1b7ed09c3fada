package expr

import (
	"time"

	"github.com/sqlexpr/sqlexpr/dialect"
)

// Combine joins two operands with an arithmetic or bitwise connector.
// Either side may be a plain Go value; non-expressions are coerced to Value
// nodes (time.Duration to a DurationValue). Passing the plain value on the
// left covers reversed composition such as 5 - F("x").
func Combine(lhs any, conn dialect.Connector, rhs any) *CombinedExpression {
	return NewCombined(wrapValue(lhs), conn, wrapValue(rhs))
}

// wrapValue coerces a plain Go value to an expression node.
func wrapValue(v any) Expression {
	switch val := v.(type) {
	case Expression:
		return val
	case time.Duration:
		return NewDurationValue(val)
	}
	return NewValue(v)
}

// combinable gives a node the arithmetic composition methods. Nodes embed it
// and point it back at themselves at construction time.
type combinable struct {
	self Expression
}

func (c *combinable) init(self Expression) { c.self = self }

// Add combines with + .
func (c *combinable) Add(other any) *CombinedExpression {
	return Combine(c.self, dialect.Add, other)
}

// Sub combines with - .
func (c *combinable) Sub(other any) *CombinedExpression {
	return Combine(c.self, dialect.Sub, other)
}

// Mul combines with * .
func (c *combinable) Mul(other any) *CombinedExpression {
	return Combine(c.self, dialect.Mul, other)
}

// Div combines with / .
func (c *combinable) Div(other any) *CombinedExpression {
	return Combine(c.self, dialect.Div, other)
}

// Mod combines with % .
func (c *combinable) Mod(other any) *CombinedExpression {
	return Combine(c.self, dialect.Mod, other)
}

// Pow combines with exponentiation.
func (c *combinable) Pow(other any) *CombinedExpression {
	return Combine(c.self, dialect.Pow, other)
}

// BitAnd combines with & .
func (c *combinable) BitAnd(other any) *CombinedExpression {
	return Combine(c.self, dialect.BitAnd, other)
}

// BitOr combines with | .
func (c *combinable) BitOr(other any) *CombinedExpression {
	return Combine(c.self, dialect.BitOr, other)
}

// ShiftLeft combines with << .
func (c *combinable) ShiftLeft(other any) *CombinedExpression {
	return Combine(c.self, dialect.LeftShift, other)
}

// ShiftRight combines with >> .
func (c *combinable) ShiftRight(other any) *CombinedExpression {
	return Combine(c.self, dialect.RightShift, other)
}

// And always panics. Boolean composition belongs to the query filter layer;
// bitwise AND must go through BitAnd.
func (c *combinable) And(other any) Expression {
	panic("expr: use BitAnd for bitwise AND; boolean AND belongs to the filter layer")
}

// Or always panics. Boolean composition belongs to the query filter layer;
// bitwise OR must go through BitOr.
func (c *combinable) Or(other any) Expression {
	panic("expr: use BitOr for bitwise OR; boolean OR belongs to the filter layer")
}
