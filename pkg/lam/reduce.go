package lam

import "github.com/pkg/errors"

// MaxReductionSteps bounds beta-reduction. Terms built by any supported
// grammar shape normalize in far fewer steps; hitting the bound means the
// grammar constructs self-application and is outside the supported shape.
const MaxReductionSteps = 10000

// ErrNonTerminating is returned when reduction exceeds MaxReductionSteps.
var ErrNonTerminating = errors.New("beta reduction exceeded step bound")

// Reduce performs beta-reduction to normal form using leftmost-outermost
// (normal order) reduction, which reaches the normal form whenever one
// exists.
func Reduce(t Term) (Term, error) {
	for steps := 0; ; steps++ {
		if steps > MaxReductionSteps {
			return nil, errors.Wrapf(ErrNonTerminating, "after %d steps", steps)
		}
		next, reduced := step(t)
		if !reduced {
			return t, nil
		}
		t = next
	}
}

// step performs a single leftmost-outermost reduction step, reporting
// whether a redex was found.
func step(t Term) (Term, bool) {
	switch t := t.(type) {
	case App:
		if abs, ok := t.Fn.(Abs); ok {
			return abs.Body.subst(abs.Param, t.Arg), true
		}
		if fn, ok := step(t.Fn); ok {
			return App{Fn: fn, Arg: t.Arg}, true
		}
		if arg, ok := step(t.Arg); ok {
			return App{Fn: t.Fn, Arg: arg}, true
		}
	case Abs:
		if body, ok := step(t.Body); ok {
			return Abs{Param: t.Param, Body: body}, true
		}
	case Pred:
		for i, arg := range t.Args {
			if next, ok := step(arg); ok {
				args := make([]Term, len(t.Args))
				copy(args, t.Args)
				args[i] = next
				return Pred{Name: t.Name, Args: args}, true
			}
		}
	case And:
		if l, ok := step(t.L); ok {
			return And{L: l, R: t.R}, true
		}
		if r, ok := step(t.R); ok {
			return And{L: t.L, R: r}, true
		}
	case Implies:
		if l, ok := step(t.L); ok {
			return Implies{L: l, R: t.R}, true
		}
		if r, ok := step(t.R); ok {
			return Implies{L: t.L, R: r}, true
		}
	case Quant:
		if body, ok := step(t.Body); ok {
			return Quant{Kind: t.Kind, Param: t.Param, Body: body}, true
		}
	}
	return t, false
}
