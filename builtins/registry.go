// Package builtins registers the primitive combiners every rfexproto
// program starts with: arithmetic, list operations, the core special
// forms ($vau, $define!, $if, eval, wrap/unwrap), environments,
// continuations, encapsulation types, keyed dynamic/static variables,
// and minimal character/string I/O.
//
// Every primitive is a closure over a *eval.Driver so it can raise
// errors (and, for the continuation primitives, run abnormal passes)
// without any package-level mutable state.
package builtins

import (
	"github.com/GeeTransit/rfexproto/eval"
	"github.com/GeeTransit/rfexproto/value"
)

// Install populates env with every standard primitive.
func Install(env *value.Environment, d *eval.Driver) {
	installPredicates(env, d)
	installArithmetic(env, d)
	installLists(env, d)
	installControl(env, d)
	installEnvironments(env, d)
	installContinuations(env, d)
	installEncapsulation(env, d)
	installKeyed(env, d)
	installIO(env, d)

	env.Define("error-continuation", d.ErrorK)
	env.Define("root-continuation", d.Root)
}

// wrap1 builds a wrap-1 combiner (an ordinary applicative, operand
// already evaluated by the combiner-call protocol) from fn.
func wrap1(name string, fn value.PrimitiveFunc) *value.Combiner {
	return value.Wrap(value.NewOperative(&value.PrimitiveOperative{Name: name, Fn: fn}))
}

// operative builds a wrap-0 combiner (an operative receiving its
// operand unevaluated) from fn.
func operative(name string, fn value.PrimitiveFunc) *value.Combiner {
	return value.NewOperative(&value.PrimitiveOperative{Name: name, Fn: fn})
}

// define registers a wrap-1 applicative under name.
func define(env *value.Environment, name string, fn value.PrimitiveFunc) {
	env.Define(value.Symbol(name), wrap1(name, fn))
}

// defineOperative registers a wrap-0 operative under name.
func defineOperative(env *value.Environment, name string, fn value.PrimitiveFunc) {
	env.Define(value.Symbol(name), operative(name, fn))
}

// arg1 extracts the first element of a one-or-more-element operand
// list, reporting a raiseable error via ok=false if operand isn't a
// pair at all.
func arg1(operand value.Value) (value.Value, bool) {
	p, ok := operand.(*value.Pair)
	if !ok {
		return nil, false
	}
	return p.Car, true
}

// arg2 extracts the first two elements of an operand list.
func arg2(operand value.Value) (a, b value.Value, ok bool) {
	p, ok := operand.(*value.Pair)
	if !ok {
		return nil, nil, false
	}
	p2, ok := p.Cdr.(*value.Pair)
	if !ok {
		return nil, nil, false
	}
	return p.Car, p2.Car, true
}

// arg3 extracts the first three elements of an operand list.
func arg3(operand value.Value) (a, b, c value.Value, ok bool) {
	p, ok := operand.(*value.Pair)
	if !ok {
		return nil, nil, nil, false
	}
	p2, ok := p.Cdr.(*value.Pair)
	if !ok {
		return nil, nil, nil, false
	}
	p3, ok := p2.Cdr.(*value.Pair)
	if !ok {
		return nil, nil, nil, false
	}
	return p.Car, p2.Car, p3.Car, true
}
