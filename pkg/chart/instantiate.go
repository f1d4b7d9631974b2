package chart

import (
	"github.com/pkg/errors"

	"github.com/vito/gram/pkg/feat"
	"github.com/vito/gram/pkg/lam"
)

// ErrCaptureHazard signals a broken freshening invariant: a newly minted
// variable collided with one already present. It can only happen through an
// engine bug, never through bad input, so it is fatal.
var ErrCaptureHazard = errors.New("fresh variable collision")

// instantiate replaces every placeholder variable in the structure with a fresh,
// globally unique one, consistently: all occurrences of one placeholder map
// to the same fresh variable. It runs exactly once per newly created edge,
// before insertion, so sibling edges sharing a written placeholder name can
// never capture each other's bindings.
func instantiate(fs *feat.FeatStruct) (*feat.FeatStruct, error) {
	existing := make(map[lam.Var]bool)
	for _, v := range feat.Placeholders(fs) {
		existing[v] = true
	}
	if len(existing) == 0 {
		return fs, nil
	}

	memo := make(map[lam.Var]lam.Var)
	var hazard error
	renamed := feat.RenamePlaceholders(fs, func(v lam.Var) lam.Var {
		if fresh, ok := memo[v]; ok {
			return fresh
		}
		fresh := lam.FreshVar(v)
		if existing[fresh] {
			hazard = errors.Wrapf(ErrCaptureHazard, "minted %s twice", fresh)
		}
		memo[v] = fresh
		return fresh
	})
	if hazard != nil {
		return nil, hazard
	}
	out, ok := renamed.(*feat.FeatStruct)
	if !ok {
		return nil, errors.Errorf("instantiation produced %T", renamed)
	}
	return out, nil
}
