package value

import "github.com/GeeTransit/rfexproto/internal/invariant"

// Operative is the underlying call target of a Combiner: it receives
// its operand tree, the caller's dynamic environment, and the
// continuation to resume, and decides for itself how (or whether) to
// evaluate anything.
type Operative interface {
	Call(caller *Environment, operand Value, k *Continuation) Step
}

// PrimitiveFunc is a native step function: the shape every built-in
// combiner in package builtins is made of.
type PrimitiveFunc func(caller *Environment, operand Value, k *Continuation) Step

// PrimitiveOperative wraps a PrimitiveFunc as an Operative, carrying a
// name for error messages and stack traces.
type PrimitiveOperative struct {
	Name string
	Fn   PrimitiveFunc
}

// Call implements Operative.
func (p *PrimitiveOperative) Call(caller *Environment, operand Value, k *Continuation) Step {
	return p.Fn(caller, operand, k)
}

// ErrorRaiser is the minimal error-reporting capability UserOperative
// needs from package eval's Driver, kept as an interface here so value
// never imports eval back.
type ErrorRaiser interface {
	RaiseError(source *Continuation, message string, data []Value) Step
}

// UserOperative is a $vau-created operative: a captured static
// environment plus two formal parameter trees (Symbol, Ignore, Nil, or
// Pair -- the same shapes $define! accepts) and an immutable body
// expression.
type UserOperative struct {
	Static       *Environment
	DynParam     Value
	OperandParam Value
	Body         Value
	Raiser       ErrorRaiser
}

// Call binds the formals in a fresh child of Static and evaluates Body
// there in tail position: it reuses k rather than installing a new
// frame, which is what gives user-defined operatives proper tail calls.
func (u *UserOperative) Call(caller *Environment, operand Value, k *Continuation) Step {
	env := NewEnvironment(u.Static)
	if err := BindPattern(env, u.DynParam, caller); err != nil {
		pe := err.(*PatternError)
		return u.Raiser.RaiseError(k, "$vau env-param: "+pe.Msg, []Value{pe.Offending})
	}
	if err := BindPattern(env, u.OperandParam, operand); err != nil {
		pe := err.(*PatternError)
		return u.Raiser.RaiseError(k, "$vau operand-param: "+pe.Msg, []Value{pe.Offending})
	}
	return EvalStep(u.Body, env, k)
}

// Combiner is an immutable (wrap count, operative) pair.
type Combiner struct {
	NumWraps int
	Op       Operative
}

func (*Combiner) isValue() {}

// NewOperative builds the zero-wrap combiner $vau produces.
func NewOperative(op Operative) *Combiner {
	return &Combiner{NumWraps: 0, Op: op}
}

// Wrap returns a sibling combiner with one more wrap.
func Wrap(c *Combiner) *Combiner {
	invariant.Precondition(c.NumWraps >= 0, "combiner wrap count must never be negative, got %d", c.NumWraps)
	return &Combiner{NumWraps: c.NumWraps + 1, Op: c.Op}
}

// Unwrap returns a sibling combiner with one fewer wrap, or ok=false if
// c already has wrap count zero.
func Unwrap(c *Combiner) (result *Combiner, ok bool) {
	if c.NumWraps == 0 {
		return nil, false
	}
	return &Combiner{NumWraps: c.NumWraps - 1, Op: c.Op}, true
}
