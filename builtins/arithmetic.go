package builtins

import (
	"math/big"

	"github.com/GeeTransit/rfexproto/eval"
	"github.com/GeeTransit/rfexproto/value"
)

// installArithmetic registers the two numeric primitives the original
// interpreter ships (_operative_plus, _operative_lessequal): the
// prelude builds the rest of the numeric tower from these. Integer
// arguments use math/big so results never overflow; a Real argument on
// either side promotes the whole operation to float64.
func installArithmetic(env *value.Environment, d *eval.Driver) {
	define(env, "+", func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
		a, b, ok := arg2(operand)
		if !ok {
			return d.RaiseError(k, "+ requires two number arguments", []value.Value{operand})
		}
		return addNumbers(d, a, b, k)
	})

	define(env, "<=?", func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
		a, b, ok := arg2(operand)
		if !ok {
			return d.RaiseError(k, "<=? requires two number arguments", []value.Value{operand})
		}
		return lessEqual(d, a, b, k)
	})
}

func addNumbers(d *eval.Driver, a, b value.Value, k *value.Continuation) value.Step {
	ai, aIsInt := a.(*value.Integer)
	bi, bIsInt := b.(*value.Integer)
	if aIsInt && bIsInt {
		return value.ReturnStep(&value.Integer{V: new(big.Int).Add(ai.V, bi.V)}, k)
	}
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if !aok || !bok {
		return d.RaiseError(k, "+ requires number arguments", []value.Value{a, b})
	}
	return value.ReturnStep(value.Real(af+bf), k)
}

func lessEqual(d *eval.Driver, a, b value.Value, k *value.Continuation) value.Step {
	ai, aIsInt := a.(*value.Integer)
	bi, bIsInt := b.(*value.Integer)
	if aIsInt && bIsInt {
		return value.ReturnStep(value.Boolean(ai.V.Cmp(bi.V) <= 0), k)
	}
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if !aok || !bok {
		return d.RaiseError(k, "<=? requires number arguments", []value.Value{a, b})
	}
	return value.ReturnStep(value.Boolean(af <= bf), k)
}

func asFloat(v value.Value) (float64, bool) {
	switch x := v.(type) {
	case *value.Integer:
		f := new(big.Float).SetInt(x.V)
		r, _ := f.Float64()
		return r, true
	case value.Real:
		return float64(x), true
	default:
		return 0, false
	}
}
