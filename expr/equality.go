package expr

import (
	"fmt"
	"hash"
	"hash/fnv"
	"reflect"
)

// deconstructible nodes expose their identity as a variant path plus the
// ordered construction arguments. Two nodes are structurally equal iff the
// paths match and the arguments match pairwise; output fields take part as
// their type kind. This is what lets expressions act as map keys (via Hash)
// and be deduplicated.
type deconstructible interface {
	deconstruct() (path string, args []any)
}

// Deconstructor is the identity hook for node types defined outside this
// package. Implementations return a path unique to the concrete type plus
// the construction arguments, the same contract the built-in nodes follow.
type Deconstructor interface {
	Deconstruct() (path string, args []any)
}

// identity returns the node's variant path and construction arguments, or
// ok=false when the node exposes neither form.
func identity(e Expression) (string, []any, bool) {
	switch d := e.(type) {
	case deconstructible:
		path, args := d.deconstruct()
		return path, args, true
	case Deconstructor:
		path, args := d.Deconstruct()
		return path, args, true
	}
	return "", nil, false
}

// Equal reports structural equality of two expressions.
func Equal(a, b Expression) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	pathA, argsA, aok := identity(a)
	pathB, argsB, bok := identity(b)
	if !aok || !bok {
		return reflect.DeepEqual(a, b)
	}
	if pathA != pathB || len(argsA) != len(argsB) {
		return false
	}
	for i := range argsA {
		if !argEqual(argsA[i], argsB[i]) {
			return false
		}
	}
	return true
}

func argEqual(a, b any) bool {
	switch av := a.(type) {
	case Expression:
		bv, ok := b.(Expression)
		return ok && Equal(av, bv)
	case []Expression:
		bv, ok := b.([]Expression)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

// Hash returns a structural hash consistent with Equal: equal expressions
// hash identically. Collisions remain possible, so callers keying state by
// hash must confirm with Equal before trusting a match.
func Hash(e Expression) uint64 {
	h := fnv.New64a()
	hashInto(h, e)
	return h.Sum64()
}

func hashInto(h hash.Hash64, e Expression) {
	if e == nil {
		h.Write([]byte("<nil>"))
		return
	}
	path, args, ok := identity(e)
	if !ok {
		// No identity hook; fold in the concrete type and the subtree so
		// distinct trees of the same type do not collapse to one key.
		fmt.Fprintf(h, "%T", e)
		for _, src := range e.SourceExpressions() {
			hashInto(h, src)
		}
		return
	}
	h.Write([]byte(path))
	for _, arg := range args {
		hashArg(h, arg)
	}
}

func hashArg(h hash.Hash64, arg any) {
	switch av := arg.(type) {
	case Expression:
		hashInto(h, av)
	case []Expression:
		for _, e := range av {
			hashInto(h, e)
		}
	default:
		// The dynamic type is part of the identity: Value(5) and
		// Value("5") must not share a hash.
		fmt.Fprintf(h, "|%T=%v", arg, arg)
	}
}
