package expr

import "github.com/sqlexpr/sqlexpr/types"

// newAggregate builds an aggregate function call: a Func marking a terminal
// aggregate boundary, which excludes it from group-by collection.
func newAggregate(function string, output types.FieldType, arg any) *Func {
	f := NewFunc(function, arg)
	f.output = output
	f.aggregate = true
	return f
}

// Count renders COUNT over the argument; Count(nil) counts all rows.
func Count(arg any) *Func {
	if arg == nil {
		arg = NewStar()
	}
	return newAggregate("COUNT", types.BigInteger, arg)
}

// CountDistinct renders COUNT(DISTINCT ...).
func CountDistinct(arg any) *Func {
	return Count(arg).WithExtra(map[string]string{
		"template": "%(function)s(DISTINCT %(expressions)s)",
	})
}

// Sum renders SUM; the output type follows the argument.
func Sum(arg any) *Func {
	return newAggregate("SUM", types.Unknown, arg)
}

// Avg renders AVG, producing a float.
func Avg(arg any) *Func {
	return newAggregate("AVG", types.Float, arg)
}

// Min renders MIN; the output type follows the argument.
func Min(arg any) *Func {
	return newAggregate("MIN", types.Unknown, arg)
}

// Max renders MAX; the output type follows the argument.
func Max(arg any) *Func {
	return newAggregate("MAX", types.Unknown, arg)
}
