package feat

import "github.com/vito/gram/pkg/lam"

// Subs represents a substitution mapping from feature variables to values.
type Subs map[Variable]Value

// NewSubs creates a new substitution
func NewSubs() Subs {
	return make(Subs)
}

// Clone creates a copy of the substitution
func (s Subs) Clone() Subs {
	result := make(Subs)
	for v, val := range s {
		result[v] = val
	}
	return result
}

// walk follows chains of variable-to-variable bindings, returning the final
// binding of v (which may itself contain variables) and whether v is bound.
func (s Subs) walk(v Variable) (Value, bool) {
	val, ok := s[v]
	if !ok {
		return nil, false
	}
	for {
		next, isVar := val.(Variable)
		if !isVar {
			return val, true
		}
		bound, ok := s[next]
		if !ok {
			return next, true
		}
		val = bound
	}
}

// resolve chases v through the substitution without descending into
// structures.
func (s Subs) resolve(v Value) Value {
	for {
		next, isVar := v.(Variable)
		if !isVar {
			return v
		}
		bound, ok := s[next]
		if !ok {
			return v
		}
		v = bound
	}
}

// fill replaces slots inside a term with the terms their feature variables
// are bound to. A variable bound to an atom becomes a constant symbol; one
// bound to another variable becomes that variable's slot.
func (s Subs) fill(t lam.Term) lam.Term {
	return lam.ResolveSlots(t, func(name string, gen int) (lam.Term, bool) {
		bound, ok := s.walk(Variable{Name: name, Gen: gen})
		if !ok {
			return nil, false
		}
		switch bound := bound.Apply(s).(type) {
		case SemTerm:
			return bound.Term, true
		case Atom:
			return lam.Const{Name: string(bound)}, true
		case Variable:
			return lam.Slot{Name: bound.Name, Gen: bound.Gen}, true
		default:
			// A slot can only meaningfully resolve to a term-shaped value.
			// Leave anything else in place for validation to catch.
			return nil, false
		}
	})
}
