package eval

import "github.com/GeeTransit/rfexproto/value"

// AbnormalPass delivers v to destination via an abnormal pass from
// source: it finds the nearest common ancestor of the two
// continuations, collects the exit guards that fire walking from
// source up to that ancestor and the entry guards that fire walking
// back down to destination, then composes them into a chain of
// interceptor calls that finally lands on destination.
//
// A guard only fires when the other endpoint of the jump lies within
// the subtree rooted at its selector -- an exit guard on a frame S is
// skipped if destination is outside the guard's own reach, and
// symmetrically for entry guards.
func (d *Driver) AbnormalPass(source, destination *value.Continuation, v value.Value) value.Step {
	ancestor := value.CommonAncestor(source, destination)

	type hop struct {
		frame       *value.Continuation
		interceptor value.Value
	}

	var exitHops []hop
	for c := source; c != ancestor; c = c.Parent {
		for _, g := range c.ExitGuards {
			if value.IsAncestorOf(g.Selector, destination) {
				exitHops = append(exitHops, hop{frame: c, interceptor: g.Interceptor})
				break
			}
		}
	}

	var entryHops []hop
	full := value.PathToAncestor(destination, ancestor) // [destination, ..., ancestor]
	for i := len(full) - 2; i >= 0; i-- {                // ancestor-exclusive, ancestor->destination order
		c := full[i]
		for _, g := range c.EntryGuards {
			if value.IsAncestorOf(g.Selector, source) {
				entryHops = append(entryHops, hop{frame: c, interceptor: g.Interceptor})
				break
			}
		}
	}

	cur := destination
	for i := len(entryHops) - 1; i >= 0; i-- {
		h := entryHops[i]
		fnpCont := value.NewContinuation(h.frame.Env, &forceNormalPass{next: cur}, h.frame)
		cur = value.NewContinuation(h.frame.Env, &applyInterceptor{d: d, interceptor: h.interceptor, target: h.frame}, fnpCont)
	}
	for i := len(exitHops) - 1; i >= 0; i-- {
		h := exitHops[i]
		fnpCont := value.NewContinuation(h.frame.Env, &forceNormalPass{next: cur}, h.frame)
		cur = value.NewContinuation(h.frame.Env, &applyInterceptor{d: d, interceptor: h.interceptor, target: h.frame}, fnpCont)
	}
	return value.ReturnStep(v, cur)
}

// forceNormalPass unconditionally delivers its value to next, ignoring
// whatever continuation it was resumed with -- this is what makes
// returning from an interceptor continue the abnormal pass instead of
// normally returning to the interceptor's own call site.
type forceNormalPass struct {
	next *value.Continuation
}

func (f *forceNormalPass) Resume(v value.Value, k *value.Continuation) value.Step {
	return value.ReturnStep(v, f.next)
}

// applyInterceptor calls a guard's interceptor with the value in
// transit and a "divert" applicative that lets the interceptor jump
// straight back into target (the guarded continuation) instead of
// letting the rest of the chain run.
type applyInterceptor struct {
	d           *Driver
	interceptor value.Value
	target      *value.Continuation
}

func (a *applyInterceptor) Resume(v value.Value, k *value.Continuation) value.Step {
	combiner, ok := a.interceptor.(*value.Combiner)
	if !ok || combiner.NumWraps != 1 {
		return a.d.RaiseError(k, "interceptor must be a one-wrap applicative", []value.Value{a.interceptor})
	}
	operative, ok := value.Unwrap(combiner)
	if !ok {
		return a.d.RaiseError(k, "interceptor unwrapped must be an operative", []value.Value{a.interceptor})
	}
	divert := a.d.ContinuationToApplicative(a.target)
	operand := value.Cons(v, value.Cons(divert, value.NilValue))
	return operative.Op.Call(a.target.Env, operand, k)
}

// ContinuationToApplicative builds the wrap-1 applicative
// `continuation->applicative` produces: calling it with one argument
// evaluates that argument and abnormally passes the result from the
// caller's continuation to target.
func (d *Driver) ContinuationToApplicative(target *value.Continuation) *value.Combiner {
	op := &value.PrimitiveOperative{
		Name: "continuation-diverter",
		Fn: func(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
			p, ok := operand.(*value.Pair)
			if !ok {
				return d.RaiseError(k, "continuation applicative requires one argument", []value.Value{operand})
			}
			return d.AbnormalPass(k, target, p.Car)
		},
	}
	return value.Wrap(value.NewOperative(op))
}

// CallCC reifies the current continuation k and applies operand's sole
// combiner to it directly, bypassing the normal W-pass argument
// evaluation protocol -- the continuation is already a value, not an
// expression to evaluate.
func (d *Driver) CallCC(caller *value.Environment, operand value.Value, k *value.Continuation) value.Step {
	p, ok := operand.(*value.Pair)
	if !ok {
		return d.RaiseError(k, "call/cc requires one combiner argument", []value.Value{operand})
	}
	combiner, ok := p.Car.(*value.Combiner)
	if !ok {
		return d.RaiseError(k, "call/cc argument must be a combiner", []value.Value{p.Car})
	}
	arg := value.Cons(k, value.NilValue)
	return combiner.Op.Call(caller, arg, k)
}

// ExtendContinuation builds a continuation that, once reached, invokes
// applicative's underlying operative directly with whatever value it
// was resumed with. applicative must have wrap count 1.
func (d *Driver) ExtendContinuation(parent *value.Continuation, applicative *value.Combiner, env *value.Environment) (*value.Continuation, error) {
	if applicative.NumWraps != 1 {
		return nil, extendWrapError{}
	}
	operative, _ := value.Unwrap(applicative)
	handler := &extendHandler{op: operative, env: env}
	return value.NewContinuation(env, handler, parent), nil
}

type extendWrapError struct{}

func (extendWrapError) Error() string { return "applicative unwrapped must be an operative" }

type extendHandler struct {
	op  value.Operative
	env *value.Environment
}

func (h *extendHandler) Resume(v value.Value, k *value.Continuation) value.Step {
	return h.op.Call(h.env, value.Cons(v, value.NilValue), k)
}

// GuardContinuation validates and installs entry/exit guard lists
// around target, returning the new guarded continuation that callers
// should use in target's place. Each list element must be a
// (selector . interceptor) pair with selector a Continuation and
// interceptor a one-wrap applicative.
func (d *Driver) GuardContinuation(env *value.Environment, entryGuards, exitGuards value.Value, target *value.Continuation) (*value.Continuation, error) {
	entries, err := parseGuardList(entryGuards)
	if err != nil {
		return nil, err
	}
	exits, err := parseGuardList(exitGuards)
	if err != nil {
		return nil, err
	}
	guarded := value.NewContinuation(env, Passthrough{}, target)
	guarded.EntryGuards = entries
	guarded.ExitGuards = exits
	return guarded, nil
}

// Passthrough forwards whatever it receives straight to its parent: the
// handler every guard-continuation frame uses when it is reached
// directly (not via an abnormal pass that stops to run a guard's
// interceptor), and the handler keyed-dynamic-variable binder frames
// use to carry a DynBindings entry without doing anything else.
type Passthrough struct{}

func (Passthrough) Resume(v value.Value, k *value.Continuation) value.Step {
	return value.ReturnStep(v, k)
}

type guardListError struct{ msg string }

func (e guardListError) Error() string { return e.msg }

func parseGuardList(operand value.Value) ([]value.Guard, error) {
	items := value.ListToSlice(operand)
	guards := make([]value.Guard, 0, len(items))
	for _, item := range items {
		pair, ok := item.(*value.Pair)
		if !ok {
			return nil, guardListError{"guard entry must be a (selector . interceptor) pair"}
		}
		selector, ok := pair.Car.(*value.Continuation)
		if !ok {
			return nil, guardListError{"guard selector must be a continuation"}
		}
		combiner, ok := pair.Cdr.(*value.Combiner)
		if !ok || combiner.NumWraps != 1 {
			return nil, guardListError{"interceptor must be a applicative"}
		}
		if _, ok := value.Unwrap(combiner); !ok {
			return nil, guardListError{"interceptor unwrapped must be an operative"}
		}
		guards = append(guards, value.Guard{Selector: selector, Interceptor: combiner})
	}
	return guards, nil
}
