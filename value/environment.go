package value

// Environment is a single frame: a mapping from symbol name to value,
// plus a reference to a parent frame. Frames form a DAG — several
// children may share one parent. Define only ever writes to the frame
// it is called on; Update rebinds a name in the nearest frame that
// binds it, which may be an ancestor.
type Environment struct {
	vars   map[Symbol]Value
	Parent *Environment

	// staticBindings holds this frame's own keyed-static-variable
	// bindings. Most frames never set one; accessors walk the chain
	// checking LookupStaticLocal at each frame.
	staticBindings map[*Token]Value
}

func (*Environment) isValue() {}

// NewEnvironment creates a fresh, empty frame with the given parent.
// A nil parent marks the distinguished root.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{vars: make(map[Symbol]Value), Parent: parent}
}

// Lookup walks e and its ancestors for a binding of name, returning the
// value and true, or (nil, false) if no frame up to and including the
// root binds it.
func (e *Environment) Lookup(name Symbol) (Value, bool) {
	for f := e; f != nil; f = f.Parent {
		if v, ok := f.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Define binds name to v in e itself, shadowing (not overwriting) any
// binding in a parent frame.
func (e *Environment) Define(name Symbol, v Value) {
	e.vars[name] = v
}

// Has reports whether name is bound directly in e (not an ancestor).
func (e *Environment) Has(name Symbol) bool {
	_, ok := e.vars[name]
	return ok
}

// Update finds the nearest frame (e or an ancestor) binding name and
// rebinds it there; it does not create a new binding. Returns false if
// name is unbound anywhere in the chain.
func (e *Environment) Update(name Symbol, v Value) bool {
	for f := e; f != nil; f = f.Parent {
		if _, ok := f.vars[name]; ok {
			f.vars[name] = v
			return true
		}
	}
	return false
}

// Names returns the symbols bound directly in e, for diagnostics —
// not part of the language semantics.
func (e *Environment) Names() []Symbol {
	out := make([]Symbol, 0, len(e.vars))
	for k := range e.vars {
		out = append(out, k)
	}
	return out
}

// SetStatic records e's own keyed-static-variable binding for tok. Each
// frame carries at most the bindings explicitly put there by a
// keyed-static-variable binder; it does not merge with the parent's.
func (e *Environment) SetStatic(tok *Token, v Value) {
	if e.staticBindings == nil {
		e.staticBindings = make(map[*Token]Value)
	}
	e.staticBindings[tok] = v
}

// LookupStaticLocal checks only e's own static bindings, not ancestors.
func (e *Environment) LookupStaticLocal(tok *Token) (Value, bool) {
	v, ok := e.staticBindings[tok]
	return v, ok
}

// Root walks Parent pointers to the topmost frame.
func (e *Environment) Root() *Environment {
	for e.Parent != nil {
		e = e.Parent
	}
	return e
}

// VisibleNames returns every symbol visible from e, walking parents,
// nearest binding first. Used only for diagnostics.
func (e *Environment) VisibleNames() []Symbol {
	seen := make(map[Symbol]bool)
	var out []Symbol
	for f := e; f != nil; f = f.Parent {
		for k := range f.vars {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	return out
}
