package lam

// Corr tracks a bijective correspondence between variable identities on the
// two sides of an equivalence check. Bound variables are always paired on
// entry to their binder; free variables are paired only when matchFree is
// set, which is what edge-level equivalence (same structure up to renaming)
// needs.
type Corr struct {
	matchFree bool
	fwd       map[string]string
	bwd       map[string]string
}

// NewCorr creates a correspondence. With matchFree false the comparison is
// plain alpha-equivalence: free variables must be identical.
func NewCorr(matchFree bool) *Corr {
	return &Corr{
		matchFree: matchFree,
		fwd:       make(map[string]string),
		bwd:       make(map[string]string),
	}
}

// match pairs the identity ka with kb, or checks consistency with an
// existing pairing.
func (c *Corr) match(ka, kb string) bool {
	if x, ok := c.fwd[ka]; ok {
		y, ok2 := c.bwd[kb]
		return x == kb && ok2 && y == ka
	}
	if _, ok := c.bwd[kb]; ok {
		return false
	}
	if !c.matchFree {
		return ka == kb
	}
	c.fwd[ka] = kb
	c.bwd[kb] = ka
	return true
}

// scoped pairs ka with kb for the duration of f, restoring any outer
// pairing afterwards. Used for binder parameters.
func (c *Corr) scoped(ka, kb string, f func() bool) bool {
	oldF, hadF := c.fwd[ka]
	oldB, hadB := c.bwd[kb]
	c.fwd[ka] = kb
	c.bwd[kb] = ka
	ok := f()
	if hadF {
		c.fwd[ka] = oldF
	} else {
		delete(c.fwd, ka)
	}
	if hadB {
		c.bwd[kb] = oldB
	} else {
		delete(c.bwd, kb)
	}
	return ok
}

// MatchNames pairs two raw identity strings. It exists so that other
// packages embedding terms (feature structures) can share one
// correspondence across their own variables and the terms they contain.
func (c *Corr) MatchNames(ka, kb string) bool {
	return c.match(ka, kb)
}
