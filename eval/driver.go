// Package eval implements the trampolined CEK evaluator, the combiner
// calling protocol, and the abnormal-pass machinery continuations and
// guards are built from. Everything here is a method on Driver so that
// error raising and continuation-to-applicative construction always
// have access to the shared root and error continuations.
package eval

import (
	"github.com/GeeTransit/rfexproto/internal/invariant"
	"github.com/GeeTransit/rfexproto/internal/shuffle"
	"github.com/GeeTransit/rfexproto/value"
)

// Driver owns the two distinguished continuations every evaluation in
// one program (or REPL session) shares: Root, which stops the
// trampoline, and ErrorK, the destination every raised error abnormally
// passes to.
type Driver struct {
	Root   *value.Continuation
	ErrorK *value.Continuation
}

// NewDriver creates a fresh Root/ErrorK pair. One Driver is shared by
// every top-level evaluation in a process or REPL session, so that
// guard-continuations and keyed dynamic variables installed by one
// evaluated form are meaningfully absent (not dangling) once a later
// top-level form starts from a fresh continuation chain under the same
// Root.
func NewDriver() *Driver {
	scratchEnv := value.NewEnvironment(nil)
	root := value.NewContinuation(scratchEnv, nil, nil)
	errK := value.NewContinuation(scratchEnv, nil, root)
	return &Driver{Root: root, ErrorK: errK}
}

// Error is what Eval returns when evaluation abnormally passes all the
// way to the error continuation without being intercepted. Source is
// the continuation that raised it (the top of the stack the trace
// printer walks); Value is the (message . data) list passed to
// RaiseError.
type Error struct {
	Source *value.Continuation
	Value  value.Value
}

func (e *Error) Error() string {
	if s, ok := e.Value.(*value.Pair); ok {
		if msg, ok := s.Car.(*value.String); ok {
			return msg.String()
		}
	}
	return "rfexproto: error"
}

// Eval evaluates expr in env with Root as its continuation, and drives
// the trampoline to completion.
func (d *Driver) Eval(expr value.Value, env *value.Environment) (value.Value, error) {
	step := value.EvalStep(expr, env, d.Root)
	for {
		if step.Kind == value.StepReturn {
			if step.K == d.Root {
				return step.Val, nil
			}
			if step.K == d.ErrorK {
				if p, ok := step.Val.(*value.Pair); ok {
					source, _ := p.Car.(*value.Continuation)
					return nil, &Error{Source: source, Value: p.Cdr}
				}
				return nil, &Error{Value: step.Val}
			}
		}
		step = d.Advance(step)
	}
}

// Advance turns one Step into the next: either evaluating an
// expression or delivering a value to a continuation's handler.
func (d *Driver) Advance(step value.Step) value.Step {
	if step.Kind == value.StepReturn {
		c := step.K
		invariant.Precondition(c.Handler != nil, "delivered a value to a continuation with no handler (Root/ErrorK reached Advance instead of being caught by the driver loop)")
		return c.Handler.Resume(step.Val, c.Parent)
	}
	return d.evalExpr(step.Expr, step.Env, step.K)
}

// evalExpr implements the core evaluation rules: symbols look themselves
// up, pairs dispatch through the combiner calling protocol, and every
// other self-evaluating datum returns itself unchanged.
func (d *Driver) evalExpr(expr value.Value, env *value.Environment, k *value.Continuation) value.Step {
	switch x := expr.(type) {
	case value.Symbol:
		if v, ok := env.Lookup(x); ok {
			return value.ReturnStep(v, k)
		}
		return d.RaiseError(k, "binding not found", []value.Value{x})
	case *value.Pair:
		if carPair, ok := x.Car.(*value.Pair); ok && carPair == x {
			return d.RaiseError(k, "infinite recursive evaluation of combiner detected", nil)
		}
		handler := &combinerCarHandler{d: d, env: env, operand: x.Cdr}
		kk := value.NewContinuation(env, handler, k)
		kk.CallExpr = x.Car
		return value.EvalStep(x.Car, env, kk)
	default:
		return value.ReturnStep(expr, k)
	}
}

// combinerCarHandler resumes once the car of a combiner-call pair has
// evaluated; it checks the result is a Combiner and hands off to the
// combiner-call protocol.
type combinerCarHandler struct {
	d       *Driver
	env     *value.Environment
	operand value.Value
}

func (h *combinerCarHandler) Resume(v value.Value, k *value.Continuation) value.Step {
	combiner, ok := v.(*value.Combiner)
	if !ok {
		return h.d.RaiseError(k, "combiner car is not a combiner", []value.Value{v})
	}
	return h.d.CallCombiner(combiner, h.env, h.operand, k)
}

// CallCombiner runs the combiner-call protocol for a combiner already
// evaluated from a call-site's car, against the as-written operand
// list. A num_wraps of 0 (or a Nil operand) dispatches straight to the
// operative with the operand untouched.
func (d *Driver) CallCombiner(combiner *value.Combiner, env *value.Environment, operand value.Value, k *value.Continuation) value.Step {
	if combiner.NumWraps == 0 {
		return combiner.Op.Call(env, operand, k)
	}
	if _, isNil := operand.(value.Nil); isNil {
		return combiner.Op.Call(env, operand, k)
	}

	m := value.Metrics(operand)
	if !m.N && m.C == 0 {
		return d.RaiseError(k, "applicative arguments must be proper list", []value.Value{operand})
	}

	cars := make([]value.Value, m.P)
	cur := operand
	for i := 0; i < m.P; i++ {
		p := cur.(*value.Pair)
		cars[i] = p.Car
		cur = p.Cdr
	}

	copyArgs := make([]*value.Pair, m.P)
	for i := range copyArgs {
		copyArgs[i] = &value.Pair{Mutable: true}
	}
	for i := 0; i < m.P; i++ {
		copyArgs[i].Car = cars[i]
		if i+1 < m.P {
			copyArgs[i].Cdr = copyArgs[i+1]
		}
	}
	if m.C > 0 {
		copyArgs[m.P-1].Cdr = copyArgs[m.A]
	} else {
		copyArgs[m.P-1].Cdr = value.NilValue
	}

	state := &wpassState{
		d:        d,
		env:      env,
		combiner: combiner,
		args:     copyArgs[0],
		copyArgs: copyArgs,
		order:    shuffle.Order(m.P),
		numWraps: combiner.NumWraps,
	}
	return d.evalArgAt(state, k)
}

// wpassState tracks one combiner call's W-pass argument evaluation: the
// isomorphic operand copy, the (scrambled) visiting order within a
// pass, and how many wrap-passes remain.
type wpassState struct {
	d        *Driver
	env      *value.Environment
	combiner *value.Combiner
	args     value.Value
	copyArgs []*value.Pair
	order    []int
	pos      int
	numWraps int
}

func (d *Driver) evalArgAt(s *wpassState, k *value.Continuation) value.Step {
	idx := s.order[s.pos]
	expr := s.copyArgs[idx].Car
	handler := &wpassHandler{state: s, idx: idx}
	kk := value.NewContinuation(s.env, handler, k)
	kk.CallExpr = expr
	return value.EvalStep(expr, s.env, kk)
}

type wpassHandler struct {
	state *wpassState
	idx   int
}

func (h *wpassHandler) Resume(v value.Value, k *value.Continuation) value.Step {
	s := h.state
	s.copyArgs[h.idx].Car = v
	s.pos++
	if s.pos == len(s.order) {
		s.pos = 0
		s.numWraps--
		if s.numWraps == 0 {
			return s.combiner.Op.Call(s.env, s.args, k)
		}
	}
	return s.d.evalArgAt(s, k)
}

// RaiseError builds a (source message . data) list and abnormally
// passes it from source to the error continuation, running any guard
// interceptors installed along the way. source is carried along so a
// handler at the error continuation (the REPL's trace printer, a
// guard's interceptor) can walk back up the frames that led here.
func (d *Driver) RaiseError(source *value.Continuation, message string, data []value.Value) value.Step {
	items := make([]value.Value, 0, len(data)+1)
	items = append(items, value.NewString(message))
	items = append(items, data...)
	return d.AbnormalPass(source, d.ErrorK, value.Cons(source, value.SliceToList(items)))
}
