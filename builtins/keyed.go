package builtins

import (
	"github.com/GeeTransit/rfexproto/eval"
	"github.com/GeeTransit/rfexproto/value"
)

// installKeyed registers make-keyed-dynamic-variable and
// make-keyed-static-variable. Each call mints a fresh value.Token and
// returns a (binder accessor) pair closed over it.
func installKeyed(env *value.Environment, d *eval.Driver) {
	define(env, "make-keyed-dynamic-variable", func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
		tok := value.NewToken()

		binder := wrap1("dynamic-binder", func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
			v, combinerV, ok := arg2(operand)
			if !ok {
				return d.RaiseError(k, "dynamic binder requires a value and a combiner", []value.Value{operand})
			}
			combiner, ok := combinerV.(*value.Combiner)
			if !ok {
				return d.RaiseError(k, "second argument must be a combiner", []value.Value{combinerV})
			}
			bound := value.NewContinuation(caller, eval.Passthrough{}, k)
			bound.DynBindings = map[*value.Token]value.Value{tok: v}
			return combiner.Op.Call(caller, value.NilValue, bound)
		})

		accessor := wrap1("dynamic-accessor", func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
			for c := k; c != nil; c = c.Parent {
				if v, ok := c.LookupDynLocal(tok); ok {
					return value.ReturnStep(v, k)
				}
			}
			return d.RaiseError(k, "no dynamic binding found", nil)
		})

		return value.ReturnStep(value.SliceToList([]value.Value{binder, accessor}), k)
	})

	define(env, "make-keyed-static-variable", func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
		tok := value.NewToken()

		binder := wrap1("static-binder", func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
			v, envV, ok := arg2(operand)
			if !ok {
				return d.RaiseError(k, "static binder requires a value and an environment", []value.Value{operand})
			}
			parentEnv, ok := envV.(*value.Environment)
			if !ok {
				return d.RaiseError(k, "second argument must be an environment", []value.Value{envV})
			}
			newEnv := value.NewEnvironment(parentEnv)
			newEnv.SetStatic(tok, v)
			return value.ReturnStep(newEnv, k)
		})

		accessor := wrap1("static-accessor", func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
			dynV, ok := arg1(operand)
			if !ok {
				return d.RaiseError(k, "static accessor requires a dynamic environment", []value.Value{operand})
			}
			e, ok := dynV.(*value.Environment)
			if !ok {
				return d.RaiseError(k, "static accessor argument must be an environment", []value.Value{dynV})
			}
			for f := e; f != nil; f = f.Parent {
				if v, ok := f.LookupStaticLocal(tok); ok {
					return value.ReturnStep(v, k)
				}
			}
			return d.RaiseError(k, "no static binding found", nil)
		})

		return value.ReturnStep(value.SliceToList([]value.Value{binder, accessor}), k)
	})
}
