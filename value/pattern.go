package value

// PatternError reports a pattern-binding failure: a parameter tree that
// doesn't match the shape of the value it's being bound against, or a
// pattern that names the same symbol twice. Offending is the pattern or
// value node where the mismatch was detected, for attaching to a raised
// error's data.
type PatternError struct {
	Msg       string
	Offending Value
}

func (e *PatternError) Error() string { return e.Msg }

// BindPattern recursively binds v into env according to pattern, the
// formals syntax $vau's env-param/operand-param and $define!'s target
// share:
//
//   - Symbol binds the symbol directly.
//   - Ignore binds nothing.
//   - Nil requires v be Nil.
//   - Pair (p1 . p2) requires v be a pair; recurses on (p1, v.car) and
//     (p2, v.cdr).
//
// A pattern naming the same symbol twice is an error.
func BindPattern(env *Environment, pattern, v Value) error {
	return bindPattern(env, pattern, v, make(map[Symbol]bool))
}

func bindPattern(env *Environment, pattern, v Value, seen map[Symbol]bool) error {
	switch p := pattern.(type) {
	case Symbol:
		if seen[p] {
			return &PatternError{Msg: "duplicate name in pattern", Offending: p}
		}
		seen[p] = true
		env.Define(p, v)
		return nil
	case Ignore:
		return nil
	case Nil:
		if _, ok := v.(Nil); !ok {
			return &PatternError{Msg: "pattern expected (), value has a different shape", Offending: v}
		}
		return nil
	case *Pair:
		vp, ok := v.(*Pair)
		if !ok {
			return &PatternError{Msg: "pattern expected a pair, value has a different shape", Offending: v}
		}
		if err := bindPattern(env, p.Car, vp.Car, seen); err != nil {
			return err
		}
		return bindPattern(env, p.Cdr, vp.Cdr, seen)
	default:
		return &PatternError{Msg: "invalid pattern element", Offending: pattern}
	}
}
