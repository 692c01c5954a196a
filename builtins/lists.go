package builtins

import (
	"github.com/GeeTransit/rfexproto/eval"
	"github.com/GeeTransit/rfexproto/value"
)

// installLists registers the pair primitives: car, cdr, cons,
// set-car!, set-cdr!, and the mutable/immutable structure-copy
// combiners.
func installLists(env *value.Environment, d *eval.Driver) {
	define(env, "car", func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
		v, ok := arg1(operand)
		if !ok {
			return d.RaiseError(k, "car requires one argument", []value.Value{operand})
		}
		p, ok := v.(*value.Pair)
		if !ok {
			return d.RaiseError(k, "car argument must be a pair", []value.Value{v})
		}
		return value.ReturnStep(p.Car, k)
	})

	define(env, "cdr", func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
		v, ok := arg1(operand)
		if !ok {
			return d.RaiseError(k, "cdr requires one argument", []value.Value{operand})
		}
		p, ok := v.(*value.Pair)
		if !ok {
			return d.RaiseError(k, "cdr argument must be a pair", []value.Value{v})
		}
		return value.ReturnStep(p.Cdr, k)
	})

	define(env, "cons", func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
		a, b, ok := arg2(operand)
		if !ok {
			return d.RaiseError(k, "cons requires two arguments", []value.Value{operand})
		}
		return value.ReturnStep(value.Cons(a, b), k)
	})

	define(env, "set-car!", func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
		a, b, ok := arg2(operand)
		if !ok {
			return d.RaiseError(k, "set-car! requires two arguments", []value.Value{operand})
		}
		p, ok := a.(*value.Pair)
		if !ok {
			return d.RaiseError(k, "set-car! first argument must be a pair", []value.Value{a})
		}
		if !p.SetCar(b) {
			return d.RaiseError(k, "pair must be mutable", []value.Value{a})
		}
		return value.ReturnStep(value.InertValue, k)
	})

	define(env, "set-cdr!", func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
		a, b, ok := arg2(operand)
		if !ok {
			return d.RaiseError(k, "set-cdr! requires two arguments", []value.Value{operand})
		}
		p, ok := a.(*value.Pair)
		if !ok {
			return d.RaiseError(k, "set-cdr! first argument must be a pair", []value.Value{a})
		}
		if !p.SetCdr(b) {
			return d.RaiseError(k, "pair must be mutable", []value.Value{a})
		}
		return value.ReturnStep(value.InertValue, k)
	})

	define(env, "copy-es", func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
		v, ok := arg1(operand)
		if !ok {
			return d.RaiseError(k, "copy-es requires one argument", []value.Value{operand})
		}
		return value.ReturnStep(copyStructure(v, true, make(map[*value.Pair]*value.Pair)), k)
	})

	define(env, "copy-es-immutable", func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
		v, ok := arg1(operand)
		if !ok {
			return d.RaiseError(k, "copy-es-immutable requires one argument", []value.Value{operand})
		}
		return value.ReturnStep(copyStructure(v, false, make(map[*value.Pair]*value.Pair)), k)
	})
}

// copyStructure rebuilds a (possibly cyclic) pair tree, preserving
// shared structure, matching _f_copy_es's seen-dict traversal.
func copyStructure(v value.Value, mutable bool, seen map[*value.Pair]*value.Pair) value.Value {
	p, ok := v.(*value.Pair)
	if !ok {
		return v
	}
	if existing, ok := seen[p]; ok {
		return existing
	}
	copied := &value.Pair{Mutable: mutable}
	seen[p] = copied
	copied.Car = copyStructure(p.Car, mutable, seen)
	copied.Cdr = copyStructure(p.Cdr, mutable, seen)
	return copied
}
