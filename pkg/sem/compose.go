package sem

import (
	"github.com/pkg/errors"

	"github.com/vito/gram/pkg/chart"
	"github.com/vito/gram/pkg/feat"
	"github.com/vito/gram/pkg/lam"
)

// Extract pulls the core semantic term and binding-operator set out of a
// completed parse's feature structure. A missing BO set is treated as empty.
func Extract(fs *feat.FeatStruct) (lam.Term, []lam.BindingOp, error) {
	corev, ok := fs.GetPath("SEM.CORE")
	if !ok {
		// A grammar may put the term directly at SEM.
		corev, ok = fs.GetPath("SEM")
		if !ok {
			return nil, nil, errors.Errorf("parse has no SEM.CORE in %s", fs)
		}
	}
	core, ok := corev.(feat.SemTerm)
	if !ok {
		return nil, nil, errors.Errorf("SEM.CORE is %s, not a term", corev)
	}

	var ops []lam.BindingOp
	if bov, ok := fs.GetPath("SEM.BO"); ok {
		set, ok := bov.(feat.BOSet)
		if !ok {
			return nil, nil, errors.Errorf("SEM.BO is %s, not an operator set", bov)
		}
		ops = set.Ops()
	}
	return core.Term, ops, nil
}

// Reading composes a single logical form for the parse, applying binding
// operators in set-insertion order. Operators applied later take wider
// scope.
func Reading(e *chart.Edge) (lam.Term, error) {
	core, ops, err := Extract(e.Feat)
	if err != nil {
		return nil, err
	}
	return compose(core, ops)
}

// Readings composes one logical form per binding-operator application
// order: k operators yield k! readings. Orders whose quantifiers do not
// interact may reduce to indistinguishable normal forms; callers interested
// in genuinely distinct scopes should compare the results.
func Readings(e *chart.Edge) ([]lam.Term, error) {
	core, ops, err := Extract(e.Feat)
	if err != nil {
		return nil, err
	}
	var out []lam.Term
	for _, order := range permutations(ops) {
		t, err := compose(core, order)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// compose applies each operator over the core in sequence, beta-reducing
// after each application.
func compose(core lam.Term, ops []lam.BindingOp) (lam.Term, error) {
	t, err := lam.Reduce(core)
	if err != nil {
		return nil, err
	}
	for _, op := range ops {
		t, err = lam.Reduce(op.Bind(t))
		if err != nil {
			return nil, errors.WithMessagef(err, "applying %s", op)
		}
	}
	return t, nil
}

// permutations enumerates every ordering of ops. The empty set has exactly
// one ordering: the empty one.
func permutations(ops []lam.BindingOp) [][]lam.BindingOp {
	if len(ops) == 0 {
		return [][]lam.BindingOp{{}}
	}
	var out [][]lam.BindingOp
	for i := range ops {
		rest := make([]lam.BindingOp, 0, len(ops)-1)
		rest = append(rest, ops[:i]...)
		rest = append(rest, ops[i+1:]...)
		for _, perm := range permutations(rest) {
			order := make([]lam.BindingOp, 0, len(ops))
			order = append(order, ops[i])
			order = append(order, perm...)
			out = append(out, order)
		}
	}
	return out
}
