package builtins

import (
	"os"

	"github.com/GeeTransit/rfexproto/eval"
	"github.com/GeeTransit/rfexproto/reader"
	"github.com/GeeTransit/rfexproto/value"
)

// installControl registers the core special forms: $vau, eval, wrap,
// unwrap, $define!, $if, load.
func installControl(env *value.Environment, d *eval.Driver) {
	defineOperative(env, "$vau", func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
		p, ok := operand.(*value.Pair)
		if !ok {
			return d.RaiseError(k, "$vau requires a formals list and a body", []value.Value{operand})
		}
		formals, ok := p.Car.(*value.Pair)
		if !ok {
			return d.RaiseError(k, "$vau formals must be (envname operandname)", []value.Value{p.Car})
		}
		namePair, ok := formals.Cdr.(*value.Pair)
		if !ok {
			return d.RaiseError(k, "$vau formals must be (envname operandname)", []value.Value{p.Car})
		}
		bodyPair, ok := p.Cdr.(*value.Pair)
		if !ok {
			return d.RaiseError(k, "$vau requires a body expression", []value.Value{operand})
		}
		op := &value.UserOperative{
			Static:       caller,
			DynParam:     formals.Car,
			OperandParam: namePair.Car,
			Body:         copyStructure(bodyPair.Car, false, make(map[*value.Pair]*value.Pair)),
			Raiser:       d,
		}
		return value.ReturnStep(value.NewOperative(op), k)
	})

	// operand order: (eval target-environment expression).
	define(env, "eval", func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
		targetEnv, expr, ok := arg2(operand)
		if !ok {
			return d.RaiseError(k, "eval requires an environment and an expression", []value.Value{operand})
		}
		e, ok := targetEnv.(*value.Environment)
		if !ok {
			return d.RaiseError(k, "eval first argument must be an environment", []value.Value{targetEnv})
		}
		return value.EvalStep(expr, e, k)
	})

	define(env, "wrap", func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
		v, ok := arg1(operand)
		if !ok {
			return d.RaiseError(k, "wrap requires one combiner argument", []value.Value{operand})
		}
		c, ok := v.(*value.Combiner)
		if !ok {
			return d.RaiseError(k, "wrap argument must be a combiner", []value.Value{v})
		}
		return value.ReturnStep(value.Wrap(c), k)
	})

	define(env, "unwrap", func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
		v, ok := arg1(operand)
		if !ok {
			return d.RaiseError(k, "unwrap requires one combiner argument", []value.Value{operand})
		}
		c, ok := v.(*value.Combiner)
		if !ok {
			return d.RaiseError(k, "unwrap argument must be a combiner", []value.Value{v})
		}
		result, ok := value.Unwrap(c)
		if !ok {
			return d.RaiseError(k, "cannot unwrap a combiner with wrap count 0", []value.Value{v})
		}
		return value.ReturnStep(result, k)
	})

	defineOperative(env, "$define!", func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
		p, ok := operand.(*value.Pair)
		if !ok {
			return d.RaiseError(k, "$define! requires a pattern and a value expression", []value.Value{operand})
		}
		rest, ok := p.Cdr.(*value.Pair)
		if !ok {
			return d.RaiseError(k, "$define! requires a value expression", []value.Value{operand})
		}
		handler := &defineHandler{d: d, env: caller, pattern: p.Car}
		kk := value.NewContinuation(caller, handler, k)
		return value.EvalStep(rest.Car, caller, kk)
	})

	defineOperative(env, "$if", func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
		cond, onTrue, onFalse, ok := arg3(operand)
		if !ok {
			return d.RaiseError(k, "$if requires a condition and two branches", []value.Value{operand})
		}
		handler := &ifHandler{d: d, env: caller, onTrue: onTrue, onFalse: onFalse}
		kk := value.NewContinuation(caller, handler, k)
		return value.EvalStep(cond, caller, kk)
	})

	define(env, "load", func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
		v, ok := arg1(operand)
		if !ok {
			return d.RaiseError(k, "load requires a filename argument", []value.Value{operand})
		}
		s, ok := v.(*value.String)
		if !ok {
			return d.RaiseError(k, "load argument must be a string", []value.Value{v})
		}
		data, err := os.ReadFile(s.String())
		if err != nil {
			return d.RaiseError(k, "error while loading file", []value.Value{v, value.NewString(err.Error())})
		}
		rdr, err := reader.New(string(data), s.String())
		if err != nil {
			return d.RaiseError(k, "error while loading file", []value.Value{v, value.NewString(err.Error())})
		}
		forms, err := rdr.ReadAll()
		if err != nil {
			return d.RaiseError(k, "error while loading file", []value.Value{v, value.NewString(err.Error())})
		}
		return RunSequence(caller, forms, k)
	})
}

type defineHandler struct {
	d       *eval.Driver
	env     *value.Environment
	pattern value.Value
}

func (h *defineHandler) Resume(v value.Value, k *value.Continuation) value.Step {
	if err := value.BindPattern(h.env, h.pattern, v); err != nil {
		pe := err.(*value.PatternError)
		return h.d.RaiseError(k, "$define!: "+pe.Msg, []value.Value{pe.Offending})
	}
	return value.ReturnStep(value.InertValue, k)
}

type ifHandler struct {
	d               *eval.Driver
	env             *value.Environment
	onTrue, onFalse value.Value
}

func (h *ifHandler) Resume(v value.Value, k *value.Continuation) value.Step {
	switch v {
	case value.True:
		return value.EvalStep(h.onTrue, h.env, k)
	case value.False:
		return value.EvalStep(h.onFalse, h.env, k)
	default:
		return h.d.RaiseError(k, "expected #t or #f as condition for $if", []value.Value{v})
	}
}

// RunSequence evaluates forms in env one after another, discarding
// every result, and finally delivers #inert to k -- a loaded file's
// body has no meaningful value of its own. Used by the `load`
// primitive.
func RunSequence(env *value.Environment, forms []value.Value, k *value.Continuation) value.Step {
	if len(forms) == 0 {
		return value.ReturnStep(value.InertValue, k)
	}
	h := &sequenceHandler{env: env, forms: forms}
	kk := value.NewContinuation(env, h, k)
	return value.EvalStep(forms[0], env, kk)
}

type sequenceHandler struct {
	env   *value.Environment
	forms []value.Value
	idx   int
}

func (h *sequenceHandler) Resume(v value.Value, k *value.Continuation) value.Step {
	h.idx++
	if h.idx >= len(h.forms) {
		return value.ReturnStep(value.InertValue, k)
	}
	kk := value.NewContinuation(h.env, h, k)
	return value.EvalStep(h.forms[h.idx], h.env, kk)
}
