package lam

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduce(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "simple beta step",
			in:   `(\x.walk(x))(John)`,
			want: `walk(John)`,
		},
		{
			name: "curried application",
			in:   `(\y x.feed(x, y))(Rover)(John)`,
			want: `feed(John, Rover)`,
		},
		{
			name: "determiner applied to noun and scope",
			in:   `(\Q P.exists x.(Q(x) & P(x)))(\x.dog(x))(\x.bark(x))`,
			want: `exists x.(dog(x) & bark(x))`,
		},
		{
			name: "normal form is untouched",
			in:   `all x.(dog(x) -> bark(x))`,
			want: `all x.(dog(x) -> bark(x))`,
		},
		{
			name: "redex under a binder",
			in:   `\P.(\x.dog(x))(P)`,
			want: `\P.dog(P)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := ParseTerm(tt.in)
			require.NoError(t, err)
			want, err := ParseTerm(tt.want)
			require.NoError(t, err)

			got, err := Reduce(in)
			require.NoError(t, err)
			assert.True(t, Equal(got, want), "got %s, want %s", got, want)

			// A normal form reduces to itself.
			again, err := Reduce(got)
			require.NoError(t, err)
			assert.True(t, Equal(got, again))
		})
	}
}

func TestReduceAvoidsCapture(t *testing.T) {
	// Applying \P.exists x.(dog(x) & P(x)) to a scope whose body mentions a
	// free x must rename the bound x rather than capture the free one.
	p := Var{Name: "P"}
	x := Var{Name: "x"}
	y := Var{Name: "y"}

	fn := Abs{Param: p, Body: Quant{
		Kind:  Exists,
		Param: x,
		Body:  And{L: Pred{Name: "dog", Args: []Term{x}}, R: App{Fn: p, Arg: x}},
	}}
	arg := Abs{Param: y, Body: Pred{Name: "feed", Args: []Term{y, x}}}

	got, err := Reduce(App{Fn: fn, Arg: arg})
	require.NoError(t, err)

	q, ok := got.(Quant)
	require.True(t, ok, "got %s", got)
	assert.NotEqual(t, x, q.Param, "bound x should have been renamed")
	assert.True(t, got.FreeVars().Contains(x), "outer x must remain free")
}

func TestReduceStepBound(t *testing.T) {
	// omega omega diverges; the step bound turns the loop into an error.
	x := Var{Name: "x"}
	omega := Abs{Param: x, Body: App{Fn: x, Arg: x}}

	_, err := Reduce(App{Fn: omega, Arg: omega})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNonTerminating))
}
