package feat

import (
	"context"
	"os"
	"testing"

	"github.com/dagger/testctx"
	"github.com/dagger/testctx/oteltest"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vito/gram/pkg/lam"
)

func TestMain(m *testing.M) {
	os.Exit(oteltest.Main(m))
}

type UnifySuite struct{}

func TestUnify(tT *testing.T) {
	testctx.New(tT,
		oteltest.WithTracing[*testing.T](),
		oteltest.WithLogging[*testing.T](),
	).RunTests(UnifySuite{})
}

func mustTerm(t *testctx.T, src string) lam.Term {
	term, err := lam.ParseTerm(src)
	require.NoError(t, err)
	return term
}

func (UnifySuite) TestAtoms(ctx context.Context, t *testctx.T) {
	a := New().Set("NUM", Atom("sg"))
	b := New().Set("NUM", Atom("sg"))

	out, err := Unify(a, b)
	require.NoError(t, err)
	assert.True(t, Eq(out, a))

	_, err = Unify(a, New().Set("NUM", Atom("pl")))
	require.Error(t, err)
	var uerr UnificationError
	assert.True(t, errors.As(err, &uerr))
}

func (UnifySuite) TestUnionOfPaths(ctx context.Context, t *testctx.T) {
	a := New().Set("NUM", Atom("sg"))
	b := New().Set("PER", Atom("3"))

	out, err := Unify(a, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"NUM", "PER"}, out.Features())

	num, ok := out.Get("NUM")
	require.True(t, ok)
	assert.True(t, Eq(num, Atom("sg")))
	per, ok := out.Get("PER")
	require.True(t, ok)
	assert.True(t, Eq(per, Atom("3")))
}

func (UnifySuite) TestVariableBinding(ctx context.Context, t *testctx.T) {
	v := Variable{Name: "n"}
	a := New().Set("NUM", v)
	b := New().Set("NUM", Atom("sg"))

	out, err := Unify(a, b)
	require.NoError(t, err)
	num, ok := out.Get("NUM")
	require.True(t, ok)
	assert.True(t, Eq(num, Atom("sg")), "variable resolved in the result")
}

func (UnifySuite) TestSharedVariableAcrossFeatures(ctx context.Context, t *testctx.T) {
	// One variable in two places: binding it once binds it everywhere.
	v := Variable{Name: "n"}
	a := New().Set("A", v).Set("B", v)
	b := New().Set("A", Atom("sg"))

	out, err := Unify(a, b)
	require.NoError(t, err)
	bv, ok := out.Get("B")
	require.True(t, ok)
	assert.True(t, Eq(bv, Atom("sg")))
}

func (UnifySuite) TestOccursCheck(ctx context.Context, t *testctx.T) {
	v := Variable{Name: "v"}
	a := New().Set("X", v)
	b := New().Set("X", New().Set("Y", v))

	_, err := Unify(a, b)
	require.Error(t, err)
	var uerr UnificationError
	require.True(t, errors.As(err, &uerr))
	assert.Contains(t, err.Error(), "occurs check")
}

func (UnifySuite) TestCommutative(ctx context.Context, t *testctx.T) {
	a := New().
		Set("NUM", Atom("sg")).
		Set("SEM", New().Set("CORE", SemTerm{Term: mustTerm(t, `\x.walk(x)`)}))
	b := New().
		Set("PER", Atom("3")).
		Set("SEM", Variable{Name: "s"})

	ab, err := Unify(a, b)
	require.NoError(t, err)
	ba, err := Unify(b, a)
	require.NoError(t, err)
	assert.True(t, Equivalent(ab, ba))
}

func (UnifySuite) TestIdempotent(ctx context.Context, t *testctx.T) {
	f := New().
		Set("NUM", Atom("sg")).
		Set("SEM", New().
			Set("CORE", SemTerm{Term: mustTerm(t, `\x.dog(x)`)}).
			Set("BO", NewBOSet()))

	out, err := Unify(f, f)
	require.NoError(t, err)
	assert.True(t, Eq(out, f))
}

func (UnifySuite) TestCopyOnUnify(ctx context.Context, t *testctx.T) {
	a := New().Set("NUM", Variable{Name: "n"})
	b := New().Set("NUM", Atom("sg")).Set("PER", Atom("3"))
	beforeA, beforeB := a.String(), b.String()

	_, err := Unify(a, b)
	require.NoError(t, err)
	assert.Equal(t, beforeA, a.String(), "input untouched")
	assert.Equal(t, beforeB, b.String(), "input untouched")
}

func (UnifySuite) TestTermsMustMatchExactly(ctx context.Context, t *testctx.T) {
	walk := SemTerm{Term: mustTerm(t, `\x.walk(x)`)}
	bark := SemTerm{Term: mustTerm(t, `\x.bark(x)`)}

	_, err := Unify(New().Set("CORE", walk), New().Set("CORE", walk))
	require.NoError(t, err)

	_, err = Unify(New().Set("CORE", walk), New().Set("CORE", bark))
	require.Error(t, err)
}

func (UnifySuite) TestOperatorSetUnion(ctx context.Context, t *testctx.T) {
	op1 := lam.BindingOp{
		Expr:        mustTerm(t, `\P.P(John)`),
		Placeholder: lam.Var{Name: "x", Kind: lam.Placeholder, Gen: 1},
	}
	op2 := lam.BindingOp{
		Expr:        mustTerm(t, `\P.P(Mary)`),
		Placeholder: lam.Var{Name: "y", Kind: lam.Placeholder, Gen: 2},
	}

	out, err := Unify(
		New().Set("BO", NewBOSet(op1)),
		New().Set("BO", NewBOSet(op2)),
	)
	require.NoError(t, err)
	bo, ok := out.Get("BO")
	require.True(t, ok)
	set, ok := bo.(BOSet)
	require.True(t, ok)
	assert.Equal(t, 2, set.Len())

	// Union is a set union: shared members are not duplicated.
	out, err = Unify(
		New().Set("BO", NewBOSet(op1, op2)),
		New().Set("BO", NewBOSet(op2)),
	)
	require.NoError(t, err)
	bo, _ = out.Get("BO")
	assert.Equal(t, 2, bo.(BOSet).Len())
}

func (UnifySuite) TestDeferredUnionResolves(ctx context.Context, t *testctx.T) {
	op := lam.BindingOp{
		Expr:        mustTerm(t, `\P.P(John)`),
		Placeholder: lam.Var{Name: "x", Kind: lam.Placeholder, Gen: 3},
	}
	b1 := Variable{Name: "b1"}
	b2 := Variable{Name: "b2"}

	s := NewSubs()
	_, err := UnifyWith(b1, NewBOSet(op), s)
	require.NoError(t, err)
	_, err = UnifyWith(b2, NewBOSet(), s)
	require.NoError(t, err)

	union := UnionValue{Parts: []Value{b1, b2}}
	resolved := union.Apply(s)
	set, ok := resolved.(BOSet)
	require.True(t, ok, "union with all parts bound resolves to a set, got %s", resolved)
	assert.Equal(t, 1, set.Len())

	// An unbound part leaves the union deferred.
	open := UnionValue{Parts: []Value{b1, Variable{Name: "b3"}}}
	_, stillUnion := open.Apply(s).(UnionValue)
	assert.True(t, stillUnion)
}

func (UnifySuite) TestFreshenerConsistency(ctx context.Context, t *testctx.T) {
	v := Variable{Name: "subj"}
	fs := New().
		Set("A", v).
		Set("B", v).
		Set("SEM", New().Set("CORE", SemTerm{Term: mustTerm(t, `?vp(?subj)`)}))

	fr := NewFreshener()
	out := fr.Struct(fs)

	av, _ := out.Get("A")
	bv, _ := out.Get("B")
	require.IsType(t, Variable{}, av)
	assert.Equal(t, av, bv, "one variable renames to one fresh variable")
	assert.NotEqual(t, v, av)

	// The same grammar structure freshened twice shares nothing.
	again := NewFreshener().Struct(fs)
	av2, _ := again.Get("A")
	assert.NotEqual(t, av, av2)

	// Slots inside term literals follow the feature variables.
	core, ok := out.GetPath("SEM.CORE")
	require.True(t, ok)
	fresh := av.(Variable)
	assert.True(t, core.FreeVars().Contains(fresh), "slot renamed alongside its variable: %s", core)
	assert.False(t, core.FreeVars().Contains(v))
}

func (UnifySuite) TestEquivalentModuloRenaming(ctx context.Context, t *testctx.T) {
	mk := func(gen int) *FeatStruct {
		return New().
			Set("NUM", Variable{Name: "n", Gen: gen}).
			Set("SEM", New().Set("CORE", SemTerm{
				Term: lam.Var{Name: "x", Kind: lam.Placeholder, Gen: gen},
			}))
	}

	assert.True(t, Equivalent(mk(1), mk(2)))
	assert.False(t, Eq(mk(1), mk(2)), "strict equality sees the generations")

	// Different shapes are never equivalent.
	assert.False(t, Equivalent(mk(1), New().Set("NUM", Variable{Name: "n", Gen: 3})))
}
