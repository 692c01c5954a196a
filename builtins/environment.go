package builtins

import (
	"github.com/GeeTransit/rfexproto/eval"
	"github.com/GeeTransit/rfexproto/value"
)

// installEnvironments registers make-environment: a new, empty child
// frame of the given parent, or of the global root frame when called
// with no arguments.
func installEnvironments(env *value.Environment, d *eval.Driver) {
	define(env, "make-environment", func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
		if _, isNil := operand.(value.Nil); isNil {
			return value.ReturnStep(value.NewEnvironment(env.Root()), k)
		}
		v, ok := arg1(operand)
		if !ok {
			return d.RaiseError(k, "make-environment takes at most one argument", []value.Value{operand})
		}
		parent, ok := v.(*value.Environment)
		if !ok {
			return d.RaiseError(k, "make-environment argument must be an environment", []value.Value{v})
		}
		return value.ReturnStep(value.NewEnvironment(parent), k)
	})
}
