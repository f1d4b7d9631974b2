package feat

import (
	"fmt"
	"strings"

	"github.com/vito/gram/pkg/lam"
)

// Value represents all possible feature values.
type Value interface {
	// Apply applies a substitution, returning a new value. Inputs are never
	// mutated; every edge owns its own structures.
	Apply(Subs) Value
	// FreeVars returns the feature variables occurring in the value,
	// including slot references inside embedded terms.
	FreeVars() VarSet
	// eq compares values under c's variable correspondence.
	eq(other Value, c *lam.Corr) bool
	fmt.Stringer
}

// Eq reports strict equality of two values: same structure, same variables.
func Eq(a, b Value) bool {
	return a.eq(b, lam.NewCorr(false))
}

// Equivalent reports equality up to a consistent renaming of variables and
// placeholders. Two edges built from independent instantiations of the same
// derivation are equivalent but not Eq.
func Equivalent(a, b Value) bool {
	return a.eq(b, lam.NewCorr(true))
}

// Atom is an atomic feature value. Atoms unify iff equal.
type Atom string

func (a Atom) Apply(Subs) Value { return a }

func (a Atom) FreeVars() VarSet { return NewVarSet() }

func (a Atom) eq(other Value, c *lam.Corr) bool {
	oa, ok := other.(Atom)
	return ok && a == oa
}

func (a Atom) String() string { return string(a) }

// Variable is an ordinary unification variable (?x in grammar source). Gen
// distinguishes per-rule-instantiation copies of the same written name.
type Variable struct {
	Name string
	Gen  int
}

func (v Variable) key() string {
	return fmt.Sprintf("f:%s#%d", v.Name, v.Gen)
}

func (v Variable) Apply(s Subs) Value {
	if bound, ok := s.walk(v); ok {
		return bound.Apply(s)
	}
	return v
}

func (v Variable) FreeVars() VarSet { return NewVarSet(v) }

func (v Variable) eq(other Value, c *lam.Corr) bool {
	ov, ok := other.(Variable)
	if !ok {
		return false
	}
	return c.MatchNames(v.key(), ov.key())
}

func (v Variable) String() string {
	if v.Gen > 0 {
		return fmt.Sprintf("?%s%d", v.Name, v.Gen)
	}
	return "?" + v.Name
}

// SemTerm embeds a lambda term as a feature value (the CORE of a
// constituent's semantics). Slots inside the term refer to feature
// variables and are filled when a substitution is applied.
type SemTerm struct {
	Term lam.Term
}

func (t SemTerm) Apply(s Subs) Value {
	return SemTerm{Term: s.fill(t.Term)}
}

func (t SemTerm) FreeVars() VarSet {
	return slotVars(t.Term)
}

func (t SemTerm) eq(other Value, c *lam.Corr) bool {
	ot, ok := other.(SemTerm)
	return ok && lam.Congruent(t.Term, ot.Term, c)
}

func (t SemTerm) String() string {
	return fmt.Sprintf("<%s>", t.Term)
}

// BOSet is a set of binding operators. Sets unify by union; duplicate
// operators collapse.
type BOSet struct {
	ops []lam.BindingOp
}

// NewBOSet builds a set from ops, collapsing duplicates and preserving
// first-occurrence order.
func NewBOSet(ops ...lam.BindingOp) BOSet {
	var set BOSet
	for _, op := range ops {
		set = set.add(op)
	}
	return set
}

func (b BOSet) add(op lam.BindingOp) BOSet {
	for _, have := range b.ops {
		if have.Eq(op) {
			return b
		}
	}
	return BOSet{ops: append(append([]lam.BindingOp{}, b.ops...), op)}
}

// Union returns the set union of b and other.
func (b BOSet) Union(other BOSet) BOSet {
	out := b
	for _, op := range other.ops {
		out = out.add(op)
	}
	return out
}

// Ops returns the operators in first-insertion order.
func (b BOSet) Ops() []lam.BindingOp {
	return append([]lam.BindingOp{}, b.ops...)
}

// Len returns the number of operators in the set.
func (b BOSet) Len() int { return len(b.ops) }

func (b BOSet) Apply(s Subs) Value {
	ops := make([]lam.BindingOp, len(b.ops))
	for i, op := range b.ops {
		ops[i] = lam.BindingOp{
			Expr:        s.fill(op.Expr),
			Placeholder: op.Placeholder,
		}
	}
	return NewBOSet(ops...)
}

func (b BOSet) FreeVars() VarSet {
	fvs := NewVarSet()
	for _, op := range b.ops {
		fvs = fvs.Union(slotVars(op.Expr))
	}
	return fvs
}

func (b BOSet) eq(other Value, c *lam.Corr) bool {
	ob, ok := other.(BOSet)
	if !ok || len(b.ops) != len(ob.ops) {
		return false
	}
	// Sets are compared in insertion order. Good enough in practice: the
	// parser builds equivalent edges by running the same rules in the same
	// order.
	for i, op := range b.ops {
		if !op.Congruent(ob.ops[i], c) {
			return false
		}
	}
	return true
}

func (b BOSet) String() string {
	parts := make([]string, len(b.ops))
	for i, op := range b.ops {
		parts[i] = op.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Union is a deferred set union written ?b1+?b2 in rule templates. It
// resolves to a BOSet once every part is bound.
type UnionValue struct {
	Parts []Value
}

func (u UnionValue) Apply(s Subs) Value {
	parts := make([]Value, len(u.Parts))
	for i, part := range u.Parts {
		parts[i] = part.Apply(s)
	}
	merged := BOSet{}
	for _, part := range parts {
		set, ok := part.(BOSet)
		if !ok {
			return UnionValue{Parts: parts}
		}
		merged = merged.Union(set)
	}
	return merged
}

func (u UnionValue) FreeVars() VarSet {
	fvs := NewVarSet()
	for _, part := range u.Parts {
		fvs = fvs.Union(part.FreeVars())
	}
	return fvs
}

func (u UnionValue) eq(other Value, c *lam.Corr) bool {
	ou, ok := other.(UnionValue)
	if !ok || len(u.Parts) != len(ou.Parts) {
		return false
	}
	for i, part := range u.Parts {
		if !part.eq(ou.Parts[i], c) {
			return false
		}
	}
	return true
}

func (u UnionValue) String() string {
	parts := make([]string, len(u.Parts))
	for i, part := range u.Parts {
		parts[i] = part.String()
	}
	return strings.Join(parts, "+")
}

// slotVars collects the feature variables referenced by slots inside a term.
func slotVars(t lam.Term) VarSet {
	fvs := NewVarSet()
	lam.ResolveSlots(t, func(name string, gen int) (lam.Term, bool) {
		fvs.Add(Variable{Name: name, Gen: gen})
		return nil, false
	})
	return fvs
}
