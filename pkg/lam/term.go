package lam

import (
	"fmt"
	"strings"
)

// VarKind distinguishes ordinary lambda variables from binding placeholders.
type VarKind int

const (
	// Ordinary variables are introduced by abstraction or quantification.
	Ordinary VarKind = iota
	// Placeholder variables (written @x) stand in for an individual that a
	// deferred binding operator will eventually bind.
	Placeholder
)

// Var is a variable occurrence. Gen distinguishes freshened copies of the
// same source-level name; Gen 0 is the name exactly as written.
type Var struct {
	Name string
	Kind VarKind
	Gen  int
}

// Term represents all possible lambda-term constructors.
type Term interface {
	// FreeVars returns the set of variables occurring free in the term.
	FreeVars() VarSet
	// subst replaces free occurrences of v with r, avoiding capture.
	subst(v Var, r Term) Term
	// resolve replaces Slot nodes using fill.
	resolve(fill func(name string, gen int) (Term, bool)) Term
	// eq compares terms under the variable correspondence in c. Bound
	// variables are always compared up to alpha-renaming.
	eq(other Term, c *Corr) bool
	fmt.Stringer
}

// Equal reports alpha-equivalence: bound variables may differ, free
// variables must match exactly.
func Equal(a, b Term) bool {
	return a.eq(b, NewCorr(false))
}

// Congruent compares terms under an external variable correspondence,
// pairing free variables bijectively as it goes. Two terms that are mere
// renamings of one another are congruent.
func Congruent(a, b Term, c *Corr) bool {
	return a.eq(b, c)
}

// Apply builds a function-application node without reducing it.
func Apply(fn, arg Term) Term {
	return App{Fn: fn, Arg: arg}
}

// Substitute replaces free occurrences of v in t with r, renaming bound
// variables as needed to avoid capturing free variables of r.
func Substitute(t Term, v Var, r Term) Term {
	return t.subst(v, r)
}

// ResolveSlots replaces every Slot node in t for which fill returns a term.
func ResolveSlots(t Term, fill func(name string, gen int) (Term, bool)) Term {
	return t.resolve(fill)
}

func (v Var) key() string {
	return fmt.Sprintf("v:%d:%s#%d", v.Kind, v.Name, v.Gen)
}

func (v Var) FreeVars() VarSet {
	return NewVarSet(v)
}

func (v Var) subst(u Var, r Term) Term {
	if v == u {
		return r
	}
	return v
}

func (v Var) resolve(fill func(string, int) (Term, bool)) Term {
	return v
}

func (v Var) eq(other Term, c *Corr) bool {
	ov, ok := other.(Var)
	if !ok {
		return false
	}
	return c.match(v.key(), ov.key())
}

func (v Var) String() string {
	name := v.Name
	if v.Gen > 0 {
		name = fmt.Sprintf("%s%d", v.Name, v.Gen)
	}
	if v.Kind == Placeholder {
		return "@" + name
	}
	return name
}

// Const is a constant symbol: an individual (John) or a predicate name used
// without arguments (dog as a bare property).
type Const struct {
	Name string
}

func (k Const) FreeVars() VarSet { return NewVarSet() }

func (k Const) subst(u Var, r Term) Term { return k }

func (k Const) resolve(fill func(string, int) (Term, bool)) Term { return k }

func (k Const) eq(other Term, c *Corr) bool {
	ok2, ok := other.(Const)
	return ok && k.Name == ok2.Name
}

func (k Const) String() string { return k.Name }

// Slot is a reference to a feature variable (?x) inside a term template.
// Slots are filled when the enclosing feature structure has its
// substitution applied; a fully composed term contains none.
type Slot struct {
	Name string
	Gen  int
}

func (s Slot) key() string {
	return fmt.Sprintf("s:%s#%d", s.Name, s.Gen)
}

func (s Slot) FreeVars() VarSet { return NewVarSet() }

func (s Slot) subst(u Var, r Term) Term { return s }

func (s Slot) resolve(fill func(string, int) (Term, bool)) Term {
	if t, ok := fill(s.Name, s.Gen); ok {
		return t
	}
	return s
}

func (s Slot) eq(other Term, c *Corr) bool {
	os, ok := other.(Slot)
	if !ok {
		return false
	}
	return c.match(s.key(), os.key())
}

func (s Slot) String() string {
	if s.Gen > 0 {
		return fmt.Sprintf("?%s%d", s.Name, s.Gen)
	}
	return "?" + s.Name
}

// App is a function application.
type App struct {
	Fn  Term
	Arg Term
}

func (a App) FreeVars() VarSet {
	return a.Fn.FreeVars().Union(a.Arg.FreeVars())
}

func (a App) subst(u Var, r Term) Term {
	return App{Fn: a.Fn.subst(u, r), Arg: a.Arg.subst(u, r)}
}

func (a App) resolve(fill func(string, int) (Term, bool)) Term {
	return App{Fn: a.Fn.resolve(fill), Arg: a.Arg.resolve(fill)}
}

func (a App) eq(other Term, c *Corr) bool {
	oa, ok := other.(App)
	return ok && a.Fn.eq(oa.Fn, c) && a.Arg.eq(oa.Arg, c)
}

func (a App) String() string {
	fn := a.Fn.String()
	switch a.Fn.(type) {
	case Var, Const, Slot, App, Pred:
	default:
		fn = "(" + fn + ")"
	}
	return fmt.Sprintf("%s(%s)", fn, a.Arg)
}

// Abs is a lambda abstraction.
type Abs struct {
	Param Var
	Body  Term
}

func (a Abs) FreeVars() VarSet {
	fvs := a.Body.FreeVars()
	fvs.Remove(a.Param)
	return fvs
}

func (a Abs) subst(u Var, r Term) Term {
	if a.Param == u {
		// u is shadowed here
		return a
	}
	if r.FreeVars().Contains(a.Param) {
		fresh := FreshVar(a.Param)
		body := a.Body.subst(a.Param, fresh)
		return Abs{Param: fresh, Body: body.subst(u, r)}
	}
	return Abs{Param: a.Param, Body: a.Body.subst(u, r)}
}

func (a Abs) resolve(fill func(string, int) (Term, bool)) Term {
	return Abs{Param: a.Param, Body: a.Body.resolve(fill)}
}

func (a Abs) eq(other Term, c *Corr) bool {
	oa, ok := other.(Abs)
	if !ok {
		return false
	}
	return c.scoped(a.Param.key(), oa.Param.key(), func() bool {
		return a.Body.eq(oa.Body, c)
	})
}

func (a Abs) String() string {
	return fmt.Sprintf("\\%s.%s", a.Param, a.Body)
}

// Pred is an n-ary predicate application whose head is a fixed symbol, e.g.
// chase(x, y). The head is never the target of beta-reduction.
type Pred struct {
	Name string
	Args []Term
}

func (p Pred) FreeVars() VarSet {
	fvs := NewVarSet()
	for _, arg := range p.Args {
		fvs = fvs.Union(arg.FreeVars())
	}
	return fvs
}

func (p Pred) subst(u Var, r Term) Term {
	args := make([]Term, len(p.Args))
	for i, arg := range p.Args {
		args[i] = arg.subst(u, r)
	}
	return Pred{Name: p.Name, Args: args}
}

func (p Pred) resolve(fill func(string, int) (Term, bool)) Term {
	args := make([]Term, len(p.Args))
	for i, arg := range p.Args {
		args[i] = arg.resolve(fill)
	}
	return Pred{Name: p.Name, Args: args}
}

func (p Pred) eq(other Term, c *Corr) bool {
	op, ok := other.(Pred)
	if !ok || p.Name != op.Name || len(p.Args) != len(op.Args) {
		return false
	}
	for i, arg := range p.Args {
		if !arg.eq(op.Args[i], c) {
			return false
		}
	}
	return true
}

func (p Pred) String() string {
	args := make([]string, len(p.Args))
	for i, arg := range p.Args {
		args[i] = arg.String()
	}
	return fmt.Sprintf("%s(%s)", p.Name, strings.Join(args, ", "))
}

// And is logical conjunction.
type And struct {
	L, R Term
}

func (a And) FreeVars() VarSet {
	return a.L.FreeVars().Union(a.R.FreeVars())
}

func (a And) subst(u Var, r Term) Term {
	return And{L: a.L.subst(u, r), R: a.R.subst(u, r)}
}

func (a And) resolve(fill func(string, int) (Term, bool)) Term {
	return And{L: a.L.resolve(fill), R: a.R.resolve(fill)}
}

func (a And) eq(other Term, c *Corr) bool {
	oa, ok := other.(And)
	return ok && a.L.eq(oa.L, c) && a.R.eq(oa.R, c)
}

func (a And) String() string {
	return fmt.Sprintf("(%s & %s)", a.L, a.R)
}

// Implies is logical implication.
type Implies struct {
	L, R Term
}

func (im Implies) FreeVars() VarSet {
	return im.L.FreeVars().Union(im.R.FreeVars())
}

func (im Implies) subst(u Var, r Term) Term {
	return Implies{L: im.L.subst(u, r), R: im.R.subst(u, r)}
}

func (im Implies) resolve(fill func(string, int) (Term, bool)) Term {
	return Implies{L: im.L.resolve(fill), R: im.R.resolve(fill)}
}

func (im Implies) eq(other Term, c *Corr) bool {
	oi, ok := other.(Implies)
	return ok && im.L.eq(oi.L, c) && im.R.eq(oi.R, c)
}

func (im Implies) String() string {
	return fmt.Sprintf("(%s -> %s)", im.L, im.R)
}

// QuantKind selects the quantifier of a Quant term.
type QuantKind int

const (
	Exists QuantKind = iota
	Forall
)

// Quant is a quantified formula: exists x.body or all x.body.
type Quant struct {
	Kind  QuantKind
	Param Var
	Body  Term
}

func (q Quant) FreeVars() VarSet {
	fvs := q.Body.FreeVars()
	fvs.Remove(q.Param)
	return fvs
}

func (q Quant) subst(u Var, r Term) Term {
	if q.Param == u {
		return q
	}
	if r.FreeVars().Contains(q.Param) {
		fresh := FreshVar(q.Param)
		body := q.Body.subst(q.Param, fresh)
		return Quant{Kind: q.Kind, Param: fresh, Body: body.subst(u, r)}
	}
	return Quant{Kind: q.Kind, Param: q.Param, Body: q.Body.subst(u, r)}
}

func (q Quant) resolve(fill func(string, int) (Term, bool)) Term {
	return Quant{Kind: q.Kind, Param: q.Param, Body: q.Body.resolve(fill)}
}

func (q Quant) eq(other Term, c *Corr) bool {
	oq, ok := other.(Quant)
	if !ok || q.Kind != oq.Kind {
		return false
	}
	return c.scoped(q.Param.key(), oq.Param.key(), func() bool {
		return q.Body.eq(oq.Body, c)
	})
}

func (q Quant) String() string {
	word := "exists"
	if q.Kind == Forall {
		word = "all"
	}
	return fmt.Sprintf("%s %s.%s", word, q.Param, q.Body)
}
