package chart

import (
	"context"
	"os"
	"testing"

	"github.com/dagger/testctx"
	"github.com/dagger/testctx/oteltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vito/gram/pkg/feat"
	"github.com/vito/gram/pkg/gram"
	"github.com/vito/gram/pkg/lam"
)

func TestMain(m *testing.M) {
	os.Exit(oteltest.Main(m))
}

type ParseSuite struct{}

func TestParse(tT *testing.T) {
	testctx.New(tT,
		oteltest.WithTracing[*testing.T](),
		oteltest.WithLogging[*testing.T](),
	).RunTests(ParseSuite{})
}

const toyGrammar = `
%start S

S[SEM=[CORE=<?vp(?subj)>, BO=?b1+?b2]] -> NP[SEM=[CORE=?subj, BO=?b1]] VP[SEM=[CORE=?vp, BO=?b2]]
VP[SEM=?v] -> IV[SEM=?v]
VP[SEM=[CORE=<?tv(?obj)>, BO=?b1+?b2]] -> TV[SEM=[CORE=?tv, BO=?b1]] NP[SEM=[CORE=?obj, BO=?b2]]
NP[SEM=[CORE=<@x>, BO={bo(?det(?n), @x)}+?b1+?b2]] -> Det[SEM=[CORE=?det, BO=?b1]] N[SEM=[CORE=?n, BO=?b2]]
NP[SEM=[CORE=<@x>, BO={bo(\P.P(John), @x)}]] -> 'john'
Det[SEM=[CORE=<\Q P.exists x.(Q(x) & P(x))>, BO={}]] -> 'a'
Det[SEM=[CORE=<\Q P.all x.(Q(x) -> P(x))>, BO={}]] -> 'every'
N[SEM=[CORE=<\x.dog(x)>, BO={}]] -> 'dog'
N[SEM=[CORE=<\x.cat(x)>, BO={}]] -> 'cat'
IV[SEM=[CORE=<\x.bark(x)>, BO={}]] -> 'barks'
TV[SEM=[CORE=<\y x.feed(x, y)>, BO={}]] -> 'feeds'
`

func loadToy(t *testctx.T) *gram.Grammar {
	g, err := gram.Load(toyGrammar)
	require.NoError(t, err)
	return g
}

func (ParseSuite) TestGrammaticalSentence(ctx context.Context, t *testctx.T) {
	g := loadToy(t)

	c, err := Parse(ctx, g, []string{"a", "dog", "barks"})
	require.NoError(t, err)

	parses := c.Parses(g.Start)
	require.Len(t, parses, 1)

	e := parses[0]
	assert.Equal(t, 0, e.Start)
	assert.Equal(t, 3, e.End)
	assert.Equal(t, gram.Category("S"), e.Cat)
	require.Len(t, e.Children, 2)
	assert.Equal(t, gram.Category("NP"), e.Children[0].Cat)
	assert.Equal(t, gram.Category("VP"), e.Children[1].Cat)
}

func (ParseSuite) TestWordOrderMatters(ctx context.Context, t *testctx.T) {
	g := loadToy(t)

	c, err := Parse(ctx, g, []string{"dog", "a", "barks"})
	require.NoError(t, err)
	assert.Empty(t, c.Parses(g.Start), "scrambled input has no parse")
}

func (ParseSuite) TestUnknownToken(ctx context.Context, t *testctx.T) {
	g := loadToy(t)

	// An out-of-lexicon token is a normal no-parse outcome, not an error.
	c, err := Parse(ctx, g, []string{"a", "wug", "barks"})
	require.NoError(t, err)
	assert.Empty(t, c.Parses(g.Start))
}

func (ParseSuite) TestUnaryChain(ctx context.Context, t *testctx.T) {
	g := loadToy(t)

	c, err := Parse(ctx, g, []string{"john", "barks"})
	require.NoError(t, err)

	// The IV edge and the VP edge derived from it share the span.
	cats := map[gram.Category]bool{}
	for _, e := range c.EdgesAt(1, 2) {
		cats[e.Cat] = true
	}
	assert.True(t, cats["IV"])
	assert.True(t, cats["VP"])

	require.Len(t, c.Parses(g.Start), 1)
}

func (ParseSuite) TestTransitiveSentence(ctx context.Context, t *testctx.T) {
	g := loadToy(t)

	c, err := Parse(ctx, g, []string{"every", "dog", "feeds", "a", "cat"})
	require.NoError(t, err)

	parses := c.Parses(g.Start)
	require.Len(t, parses, 1)

	bo, ok := parses[0].Feat.GetPath("SEM.BO")
	require.True(t, ok)
	set, ok := bo.(feat.BOSet)
	require.True(t, ok)
	assert.Equal(t, 2, set.Len(), "both quantifiers stored: %s", set)
}

func (ParseSuite) TestPlaceholdersAreGloballyFresh(ctx context.Context, t *testctx.T) {
	g := loadToy(t)

	tokens := []string{"a", "dog", "feeds", "a", "cat"}
	c, err := Parse(ctx, g, tokens)
	require.NoError(t, err)

	// Every edge carries its own placeholder instances; no two edges may
	// share one, or a binding in one derivation could leak into another.
	seen := map[lam.Var][]*Edge{}
	n := len(tokens)
	for start := 0; start < n; start++ {
		for end := start + 1; end <= n; end++ {
			for _, e := range c.EdgesAt(start, end) {
				for _, v := range feat.Placeholders(e.Feat) {
					seen[v] = append(seen[v], e)
				}
			}
		}
	}
	require.NotEmpty(t, seen)
	for v, edges := range seen {
		assert.Len(t, edges, 1, "placeholder %s appears in %d edges", v, len(edges))
	}
}

func (ParseSuite) TestDeduplication(ctx context.Context, t *testctx.T) {
	g := loadToy(t)

	c, err := Parse(ctx, g, []string{"a", "dog", "barks"})
	require.NoError(t, err)

	// The fixed-point loop re-derives edges; equivalence-modulo-renaming
	// dedup must keep each span's bucket free of duplicates.
	n := len(c.Tokens())
	for start := 0; start < n; start++ {
		for end := start + 1; end <= n; end++ {
			edges := c.EdgesAt(start, end)
			for i := range edges {
				for j := i + 1; j < len(edges); j++ {
					if edges[i].Cat != edges[j].Cat {
						continue
					}
					assert.False(t, feat.Equivalent(edges[i].Feat, edges[j].Feat),
						"duplicate %s edges at [%d,%d)", edges[i].Cat, start, end)
				}
			}
		}
	}
}

func (ParseSuite) TestContextCancellation(ctx context.Context, t *testctx.T) {
	g := loadToy(t)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	_, err := Parse(cancelled, g, []string{"a", "dog", "barks"})
	require.ErrorIs(t, err, context.Canceled)
}

func (ParseSuite) TestDerivationTree(ctx context.Context, t *testctx.T) {
	g := loadToy(t)

	c, err := Parse(ctx, g, []string{"john", "barks"})
	require.NoError(t, err)

	parses := c.Parses(g.Start)
	require.Len(t, parses, 1)

	tree := parses[0].Tree()
	assert.Contains(t, tree, "S")
	assert.Contains(t, tree, `NP "john"`)
	assert.Contains(t, tree, `IV "barks"`)
}
