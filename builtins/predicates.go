package builtins

import (
	"github.com/GeeTransit/rfexproto/eval"
	"github.com/GeeTransit/rfexproto/value"
)

// installPredicates registers the type-test primitives: number?,
// symbol?, pair?, environment?, continuation?, char?, string?, and eq?.
func installPredicates(env *value.Environment, d *eval.Driver) {
	define(env, "number?", func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
		v, ok := arg1(operand)
		if !ok {
			return d.RaiseError(k, "number? requires one argument", []value.Value{operand})
		}
		switch v.(type) {
		case *value.Integer, value.Real:
			return value.ReturnStep(value.True, k)
		default:
			return value.ReturnStep(value.False, k)
		}
	})

	define(env, "symbol?", typeTest[value.Symbol](d))
	define(env, "string?", typeTest[*value.String](d))
	define(env, "pair?", typeTest[*value.Pair](d))
	define(env, "environment?", typeTest[*value.Environment](d))
	define(env, "continuation?", typeTest[*value.Continuation](d))
	define(env, "char?", typeTest[value.Character](d))

	define(env, "eq?", func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
		a, b, ok := arg2(operand)
		if !ok {
			return d.RaiseError(k, "eq? requires two arguments", []value.Value{operand})
		}
		return value.ReturnStep(value.Boolean(valuesEqual(a, b)), k)
	})
}

// typeTest returns a PrimitiveFunc testing that arg1 has Go type T
// (a value kind such as Symbol or Character, or a pointer kind such as
// *Pair or *Environment).
func typeTest[T value.Value](d *eval.Driver) value.PrimitiveFunc {
	return func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
		v, ok := arg1(operand)
		if !ok {
			return d.RaiseError(k, "predicate requires one argument", []value.Value{operand})
		}
		_, matches := v.(T)
		return value.ReturnStep(value.Boolean(matches), k)
	}
}

// valuesEqual implements eq?'s split behaviour: value types (Symbol,
// Integer, Real, *String, Character) compare by content; every other
// type compares by identity.
func valuesEqual(a, b value.Value) bool {
	switch av := a.(type) {
	case value.Symbol:
		bv, ok := b.(value.Symbol)
		return ok && av == bv
	case value.Real:
		bv, ok := b.(value.Real)
		return ok && av == bv
	case value.Character:
		bv, ok := b.(value.Character)
		return ok && av == bv
	case value.Boolean:
		bv, ok := b.(value.Boolean)
		return ok && av == bv
	case *value.Integer:
		bv, ok := b.(*value.Integer)
		return ok && av.V.Cmp(bv.V) == 0
	case *value.String:
		bv, ok := b.(*value.String)
		return ok && string(av.Bytes) == string(bv.Bytes)
	default:
		return a == b
	}
}
