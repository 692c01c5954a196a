package builtins

import (
	"github.com/GeeTransit/rfexproto/eval"
	"github.com/GeeTransit/rfexproto/value"
)

// installEncapsulation registers make-encapsulation-type: each call
// mints a fresh value.Token identity and returns three applicatives
// closed over it, so wrappers made by one call are opaque to the other
// two functions from any other call.
func installEncapsulation(env *value.Environment, d *eval.Driver) {
	define(env, "make-encapsulation-type", func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
		tok := value.NewToken()

		encapsulate := wrap1("encapsulate", func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
			v, ok := arg1(operand)
			if !ok {
				return d.RaiseError(k, "encapsulator requires one argument", []value.Value{operand})
			}
			return value.ReturnStep(&value.Encapsulation{Tok: tok, Payload: v}, k)
		})

		check := wrap1("encapsulation-check", func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
			v, ok := arg1(operand)
			if !ok {
				return d.RaiseError(k, "predicate requires one argument", []value.Value{operand})
			}
			enc, ok := v.(*value.Encapsulation)
			return value.ReturnStep(value.Boolean(ok && enc.Tok == tok), k)
		})

		decapsulate := wrap1("decapsulate", func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
			v, ok := arg1(operand)
			if !ok {
				return d.RaiseError(k, "decapsulator requires one argument", []value.Value{operand})
			}
			enc, ok := v.(*value.Encapsulation)
			if !ok || enc.Tok != tok {
				return d.RaiseError(k, "cannot decapsulate object", []value.Value{v})
			}
			return value.ReturnStep(enc.Payload, k)
		})

		result := value.SliceToList([]value.Value{encapsulate, check, decapsulate})
		return value.ReturnStep(result, k)
	})
}
