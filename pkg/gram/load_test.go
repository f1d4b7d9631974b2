package gram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vito/gram/pkg/feat"
)

const toyGrammar = `
# A small fragment: proper names, determiners, one transitive verb.
%start S

S[SEM=[CORE=<?vp(?subj)>, BO=?b1+?b2]] -> NP[SEM=[CORE=?subj, BO=?b1]] VP[SEM=[CORE=?vp, BO=?b2]]
VP[SEM=?v] -> IV[SEM=?v]
VP[SEM=[CORE=<?tv(?obj)>, BO=?b1+?b2]] -> TV[SEM=[CORE=?tv, BO=?b1]] NP[SEM=[CORE=?obj, BO=?b2]]
NP[SEM=[CORE=<@x>, BO={bo(?det(?n), @x)}+?b1+?b2]] -> Det[SEM=[CORE=?det, BO=?b1]] N[SEM=[CORE=?n, BO=?b2]]
NP[SEM=[CORE=<@x>, BO={bo(\P.P(John), @x)}]] -> 'john'
Det[SEM=[CORE=<\Q P.exists x.(Q(x) & P(x))>, BO={}]] -> 'a' | 'some'
N[SEM=[CORE=<\x.dog(x)>, BO={}]] -> 'dog'
IV[SEM=[CORE=<\x.bark(x)>, BO={}]] -> 'barks'
TV[SEM=[CORE=<\y x.chase(x, y)>, BO={}]] -> 'chases'
`

func TestLoad(t *testing.T) {
	g, err := Load(toyGrammar)
	require.NoError(t, err)

	assert.Equal(t, Category("S"), g.Start)

	t.Run("alternatives become separate lexical rules", func(t *testing.T) {
		a := g.Lexical("a")
		some := g.Lexical("some")
		require.Len(t, a, 1)
		require.Len(t, some, 1)
		assert.Equal(t, Category("Det"), a[0].Lhs)
		assert.True(t, a[0].Lexical())
		assert.Equal(t, "a", a[0].Token)
	})

	t.Run("unknown tokens are absent, not errors", func(t *testing.T) {
		assert.Empty(t, g.Lexical("xyzzy"))
	})

	t.Run("phrasal rules index by left-hand side", func(t *testing.T) {
		vps := g.RulesFor("VP")
		require.Len(t, vps, 2)
		assert.Len(t, vps[0].Rhs, 1)
		assert.Len(t, vps[1].Rhs, 2)
	})

	t.Run("feature templates survive parsing", func(t *testing.T) {
		s := g.RulesFor("S")
		require.Len(t, s, 1)

		core, ok := s[0].Feat.GetPath("SEM.CORE")
		require.True(t, ok)
		assert.IsType(t, feat.SemTerm{}, core)

		bo, ok := s[0].Feat.GetPath("SEM.BO")
		require.True(t, ok)
		assert.IsType(t, feat.UnionValue{}, bo)
	})

	t.Run("binding operator literals parse into sets", func(t *testing.T) {
		john := g.Lexical("john")
		require.Len(t, john, 1)
		bo, ok := john[0].Feat.GetPath("SEM.BO")
		require.True(t, ok)
		set, ok := bo.(feat.BOSet)
		require.True(t, ok)
		require.Equal(t, 1, set.Len())
		assert.Equal(t, "bo(\\P.P(John), @x)", set.Ops()[0].String())
	})

	t.Run("comments and blank lines are skipped", func(t *testing.T) {
		assert.Len(t, g.RulesFor("N"), 1)
	})
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
		msg  string
	}{
		{
			name: "missing start declaration",
			src:  `S[] -> S[] S[]`,
			line: 1,
			msg:  "missing %start",
		},
		{
			name: "malformed start declaration",
			src:  "%start\nS[] -> 'x'",
			line: 1,
			msg:  "expected '%start <Category>'",
		},
		{
			name: "missing arrow",
			src:  "%start S\nS[] NP[]",
			line: 2,
			msg:  "expected '->'",
		},
		{
			name: "empty right-hand side",
			src:  "%start S\nS[] ->",
			line: 2,
			msg:  "empty right-hand side",
		},
		{
			name: "unterminated token literal",
			src:  "%start S\nS[] -> 'walks",
			line: 2,
			msg:  "unterminated token literal",
		},
		{
			name: "unterminated feature structure",
			src:  "%start S\nS[NUM=sg -> 'walks'",
			line: 2,
			msg:  "expected ',' or ']'",
		},
		{
			name: "bad term literal",
			src:  "%start S\nS[SEM=<\\x walk(x)>] -> 'walks'",
			line: 2,
			msg:  "bad term literal",
		},
		{
			name: "binding operator without placeholder",
			src:  "%start S\nS[SEM=[CORE=<@x>, BO={bo(walk, john)}]] -> 'walks'",
			line: 2,
			msg:  "must be a placeholder",
		},
		{
			name: "start category has no rules",
			src:  "%start S\nNP[] -> 'john'",
			line: 1,
			msg:  "start category S has no rules",
		},
		{
			name: "dangling right-hand-side category",
			src:  "%start S\nS[] -> NP[] VP[]\nNP[] -> 'john'",
			line: 2,
			msg:  "has no rules and can never combine",
		},
		{
			name: "ill-typed CORE",
			src:  "%start S\nS[SEM=[CORE=sg]] -> 'walks'",
			line: 2,
			msg:  "ill-typed value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.src)
			require.Error(t, err)

			var mge *MalformedGrammarError
			require.ErrorAs(t, err, &mge)
			assert.Equal(t, tt.line, mge.Line)
			assert.Contains(t, mge.Msg, tt.msg)
		})
	}
}
