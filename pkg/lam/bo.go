package lam

import "fmt"

// BindingOp is a deferred quantifier: a pair of an operator expression and
// the placeholder variable it will bind once it takes scope.
type BindingOp struct {
	Expr        Term
	Placeholder Var
}

// Bind gives the operator scope over core: Expr(\@v.core). The abstraction's
// parameter is the placeholder itself, so its free occurrences in core are
// captured by the abstraction and then bound by Expr during reduction.
func (b BindingOp) Bind(core Term) Term {
	return App{Fn: b.Expr, Arg: Abs{Param: b.Placeholder, Body: core}}
}

// Eq reports whether two binding operators are the same pair: identical
// placeholder and alpha-equivalent expression.
func (b BindingOp) Eq(other BindingOp) bool {
	return b.Placeholder == other.Placeholder && Equal(b.Expr, other.Expr)
}

// Congruent compares two binding operators under an external variable
// correspondence.
func (b BindingOp) Congruent(other BindingOp, c *Corr) bool {
	if !c.match(b.Placeholder.key(), other.Placeholder.key()) {
		return false
	}
	return b.Expr.eq(other.Expr, c)
}

func (b BindingOp) String() string {
	return fmt.Sprintf("bo(%s, %s)", b.Expr, b.Placeholder)
}
