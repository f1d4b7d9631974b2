package feat

import (
	"fmt"

	"github.com/pkg/errors"
)

// UnificationError signals that two values are incompatible. It is local and
// expected: the chart parser treats it as "this rule does not apply here".
type UnificationError struct {
	msg string
}

func (e UnificationError) Error() string {
	return e.msg
}

func unifyErrf(format string, args ...any) error {
	return UnificationError{msg: fmt.Sprintf(format, args...)}
}

// Unify attempts to unify two feature structures, returning their least
// upper bound or an error. Copy-on-unify: a and b are untouched, the result
// shares no mutable state with either.
func Unify(a, b *FeatStruct) (*FeatStruct, error) {
	s := NewSubs()
	merged, err := UnifyWith(a, b, s)
	if err != nil {
		return nil, err
	}
	out, ok := merged.Apply(s).(*FeatStruct)
	if !ok {
		return nil, errors.Errorf("unification produced %T, not a feature structure", merged)
	}
	return out, nil
}

// UnifyWith unifies two values under an accumulating substitution, so that
// multiple unifications (one per right-hand-side constituent of a rule) can
// share variable bindings. s is extended in place.
func UnifyWith(a, b Value, s Subs) (Value, error) {
	a = s.resolve(a)
	b = s.resolve(b)

	if va, ok := a.(Variable); ok {
		return bindVar(va, b, s)
	}
	if vb, ok := b.(Variable); ok {
		return bindVar(vb, a, s)
	}

	switch a := a.(type) {
	case Atom:
		if ob, ok := b.(Atom); ok && a == ob {
			return a, nil
		}
		return nil, unifyErrf("cannot unify atom %s with %s", a, b)

	case *FeatStruct:
		fb, ok := b.(*FeatStruct)
		if !ok {
			return nil, unifyErrf("cannot unify feature structure %s with %s", a, b)
		}
		// Path-wise merge keeping the union of features.
		out := New()
		for _, name := range a.order {
			av := a.fields[name]
			bv, shared := fb.fields[name]
			if !shared {
				out.Set(name, av)
				continue
			}
			merged, err := UnifyWith(av, bv, s)
			if err != nil {
				return nil, errors.WithMessagef(err, "at feature %s", name)
			}
			out.Set(name, merged)
		}
		for _, name := range fb.order {
			if _, shared := a.fields[name]; !shared {
				out.Set(name, fb.fields[name])
			}
		}
		return out, nil

	case SemTerm:
		ob, ok := b.(SemTerm)
		if !ok {
			return nil, unifyErrf("cannot unify term %s with %s", a, b)
		}
		if !Eq(a.Apply(s), ob.Apply(s)) {
			return nil, unifyErrf("cannot unify distinct terms %s and %s", a, b)
		}
		return a, nil

	case BOSet:
		switch b := b.(type) {
		case BOSet:
			return a.Union(b), nil
		case UnionValue:
			set, err := resolveUnion(b, s)
			if err != nil {
				return nil, err
			}
			return a.Union(set), nil
		}
		return nil, unifyErrf("cannot unify operator set %s with %s", a, b)

	case UnionValue:
		set, err := resolveUnion(a, s)
		if err != nil {
			return nil, err
		}
		return UnifyWith(set, b, s)
	}

	return nil, unifyErrf("cannot unify %s with %s", a, b)
}

// bindVar binds a feature variable to a value.
func bindVar(v Variable, val Value, s Subs) (Value, error) {
	if ov, ok := val.(Variable); ok && ov == v {
		return v, nil
	}
	// Occurs check: a variable must not be bound to a structure containing
	// itself, or substitution would never terminate.
	if val.Apply(s).FreeVars().Contains(v) {
		return nil, unifyErrf("occurs check failed: %s occurs in %s", v, val)
	}
	s[v] = val
	return val, nil
}

// resolveUnion reduces a deferred set union to a concrete BOSet, failing if
// any part is still unbound or not set-valued.
func resolveUnion(u UnionValue, s Subs) (BOSet, error) {
	resolved := u.Apply(s)
	set, ok := resolved.(BOSet)
	if !ok {
		return BOSet{}, unifyErrf("set union %s is not fully resolved", resolved)
	}
	return set, nil
}
