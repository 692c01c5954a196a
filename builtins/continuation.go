package builtins

import (
	"github.com/GeeTransit/rfexproto/eval"
	"github.com/GeeTransit/rfexproto/value"
)

// installContinuations registers continuation->applicative, call/cc,
// extend-continuation, and guard-continuation. error-continuation and
// root-continuation are bound directly by Install.
func installContinuations(env *value.Environment, d *eval.Driver) {
	define(env, "continuation->applicative", func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
		v, ok := arg1(operand)
		if !ok {
			return d.RaiseError(k, "continuation->applicative requires one continuation argument", []value.Value{operand})
		}
		c, ok := v.(*value.Continuation)
		if !ok {
			return d.RaiseError(k, "continuation->applicative argument must be a continuation", []value.Value{v})
		}
		return value.ReturnStep(d.ContinuationToApplicative(c), k)
	})

	define(env, "call/cc", func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
		return d.CallCC(caller, operand, k)
	})

	define(env, "extend-continuation", func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
		parentV, applicativeV, ok := arg2(operand)
		if !ok {
			return d.RaiseError(k, "extend-continuation requires a continuation and an applicative", []value.Value{operand})
		}
		parent, ok := parentV.(*value.Continuation)
		if !ok {
			return d.RaiseError(k, "extend-continuation first argument must be a continuation", []value.Value{parentV})
		}
		combiner, ok := applicativeV.(*value.Combiner)
		if !ok {
			return d.RaiseError(k, "applicative must be a combiner", []value.Value{applicativeV})
		}
		extended, err := d.ExtendContinuation(parent, combiner, caller)
		if err != nil {
			return d.RaiseError(k, err.Error(), []value.Value{applicativeV})
		}
		return value.ReturnStep(extended, k)
	})

	define(env, "guard-continuation", func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
		entryGuards, targetV, exitGuards, ok := arg3(operand)
		if !ok {
			return d.RaiseError(k, "guard-continuation requires entry guards, a continuation, and exit guards", []value.Value{operand})
		}
		target, ok := targetV.(*value.Continuation)
		if !ok {
			return d.RaiseError(k, "guard-continuation target must be a continuation", []value.Value{targetV})
		}

		guarded, err := d.GuardContinuation(caller, entryGuards, exitGuards, target)
		if err != nil {
			return d.RaiseError(k, err.Error(), nil)
		}
		return value.ReturnStep(guarded, k)
	})
}
