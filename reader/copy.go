package reader

import "github.com/GeeTransit/rfexproto/value"

// deepCopyImmutable rebuilds a freshly-parsed tree with every pair marked
// immutable, preserving shared structure and cycles introduced by
// self-reference literals. The scratch tree built during parsing uses
// real Go pointer cycles (so "#." can point at an enclosing list before
// that list is finished), which is convenient to build but must never
// leak into the evaluator as a *mutable* pair -- quoted/read literals are
// immutable data.
func deepCopyImmutable(v value.Value) value.Value {
	seen := make(map[*value.Pair]*value.Pair)
	return copyValue(v, seen)
}

func copyValue(v value.Value, seen map[*value.Pair]*value.Pair) value.Value {
	p, ok := v.(*value.Pair)
	if !ok {
		return v
	}
	if existing, ok := seen[p]; ok {
		return existing
	}
	copied := &value.Pair{Mutable: false}
	seen[p] = copied
	copied.Car = copyValue(p.Car, seen)
	copied.Cdr = copyValue(p.Cdr, seen)
	if loc, ok := LocationOf(p); ok {
		recordLocation(copied, loc)
	}
	return copied
}
