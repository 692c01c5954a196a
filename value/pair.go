package value

import "github.com/GeeTransit/rfexproto/internal/invariant"

// Pair is a cons cell. An immutable Pair never becomes mutable —
// Mutable never goes from false to true — and car/cdr
// may reference any Value, including the pair itself or an ancestor,
// which is how cyclic structure is represented.
type Pair struct {
	Car, Cdr Value
	Mutable  bool
}

func (*Pair) isValue() {}

// NewPair builds a pair with the given mutability.
func NewPair(car, cdr Value, mutable bool) *Pair {
	return &Pair{Car: car, Cdr: cdr, Mutable: mutable}
}

// Cons builds a mutable pair, the shape `cons` primitives return.
func Cons(car, cdr Value) *Pair {
	return NewPair(car, cdr, true)
}

// SetCar mutates car in place. Fails (returns false) if the pair is
// immutable — the caller turns that into a raised "pair must be
// mutable" error; this package has no error type of its own.
func (p *Pair) SetCar(v Value) bool {
	if !p.Mutable {
		return false
	}
	p.Car = v
	return true
}

// SetCdr mutates cdr in place, subject to the same immutability rule.
func (p *Pair) SetCdr(v Value) bool {
	if !p.Mutable {
		return false
	}
	p.Cdr = v
	return true
}

// ListMetrics is the (P, N, A, C) tuple describing a list's shape:
// total pair count, whether the list terminates in Nil, acyclic prefix
// length, and cycle length.
type ListMetrics struct {
	P int  // total pairs visited
	N bool // true iff the list terminates in Nil
	A int  // acyclic prefix length
	C int  // cycle length (0 if acyclic)
}

// Metrics computes (P, N, A, C) for the list starting at v using
// Brent's tortoise-and-hare algorithm: O(P) time, O(1) space.
//
// v need not be a pair at all (Metrics of a non-pair, non-Nil value is
// P=0, N=false, A=0, C=0 — an immediate improper "list").
func Metrics(v Value) ListMetrics {
	if _, ok := v.(Nil); ok {
		return ListMetrics{P: 0, N: true, A: 0, C: 0}
	}
	p, ok := v.(*Pair)
	if !ok {
		return ListMetrics{P: 0, N: false, A: 0, C: 0}
	}

	// Brent's algorithm: power-of-two bounded search for a cycle length,
	// then a two-pointer walk to find where the tortoise and the cycle
	// start coincide (the acyclic prefix length).
	power, lam := 1, 1
	tortoise, hare := p, cdrPair(p)
	for hare != nil && tortoise != hare {
		if power == lam {
			tortoise = hare
			power *= 2
			lam = 0
		}
		hare = cdrPair(hare)
		lam++
	}

	if hare == nil {
		// Acyclic: walk the whole chain once more to count pairs and
		// check the Nil terminator.
		n := 0
		cur := p
		for {
			n++
			switch cdr := cur.Cdr.(type) {
			case *Pair:
				cur = cdr
			case Nil:
				return ListMetrics{P: n, N: true, A: n, C: 0}
			default:
				return ListMetrics{P: n, N: false, A: n, C: 0}
			}
		}
	}

	// Cyclic: lam is the cycle length. Find mu, the acyclic prefix
	// length, by advancing two pointers lam apart until they meet.
	tortoise = p
	hare = p
	for i := 0; i < lam; i++ {
		hare = cdrPair(hare)
	}
	mu := 0
	for tortoise != hare {
		tortoise = cdrPair(tortoise)
		hare = cdrPair(hare)
		mu++
	}

	m := ListMetrics{P: mu + lam, N: false, A: mu, C: lam}
	invariant.Postcondition(m.P == m.A+m.C, "list metrics must satisfy P = A + C, got %+v", m)
	return m
}

// cdrPair returns cur.Cdr as a *Pair, or nil if cur.Cdr is not a pair
// (end of an acyclic list, proper or improper).
func cdrPair(cur *Pair) *Pair {
	if next, ok := cur.Cdr.(*Pair); ok {
		return next
	}
	return nil
}

// IsProperList reports whether v is a finite list terminating in Nil.
func IsProperList(v Value) bool {
	m := Metrics(v)
	return m.C == 0 && m.N
}

// ListToSlice converts a finite proper list to a Go slice. It panics if
// v is not a finite proper list; callers must check IsProperList first.
func ListToSlice(v Value) []Value {
	invariant.Precondition(IsProperList(v), "ListToSlice requires a finite proper list")
	var out []Value
	for {
		if _, ok := v.(Nil); ok {
			return out
		}
		p := v.(*Pair)
		out = append(out, p.Car)
		v = p.Cdr
	}
}

// SliceToList builds a proper, mutable list from a Go slice.
func SliceToList(items []Value) Value {
	var out Value = NilValue
	for i := len(items) - 1; i >= 0; i-- {
		out = Cons(items[i], out)
	}
	return out
}
