package chart

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/vito/gram/pkg/feat"
	"github.com/vito/gram/pkg/gram"
)

// Chart is the table of parse edges indexed by span. It is only ever written
// by the parse that owns it.
type Chart struct {
	tokens []string
	edges  map[span][]*Edge
}

type span struct{ start, end int }

// Tokens returns the input the chart was built over.
func (c *Chart) Tokens() []string { return c.tokens }

// EdgesAt returns the edges spanning [start, end).
func (c *Chart) EdgesAt(start, end int) []*Edge {
	return c.edges[span{start, end}]
}

// Parses returns the complete parses: edges of category start spanning the
// whole input. An empty result means the input is ungrammatical under the
// grammar, which is a legitimate outcome, not a malfunction.
func (c *Chart) Parses(start gram.Category) []*Edge {
	var out []*Edge
	for _, e := range c.edges[span{0, len(c.tokens)}] {
		if e.Cat == start {
			out = append(out, e)
		}
	}
	return out
}

// Parse runs a bottom-up chart parse of tokens under g. All length-1 edges
// exist before any longer span is attempted, so every producible edge is
// eventually produced. Unification failures are swallowed: they only mean a
// rule does not apply at a particular split.
func Parse(ctx context.Context, g *gram.Grammar, tokens []string) (*Chart, error) {
	p := &parser{
		g: g,
		chart: &Chart{
			tokens: tokens,
			edges:  make(map[span][]*Edge),
		},
	}

	for i, tok := range tokens {
		rules := g.Lexical(tok)
		if len(rules) == 0 {
			slog.DebugContext(ctx, "token not in lexicon", "token", tok, "pos", i)
		}
		for _, r := range rules {
			fs := feat.NewFreshener().Struct(r.Feat)
			fs, err := instantiate(fs)
			if err != nil {
				return nil, err
			}
			p.add(&Edge{
				Start: i, End: i + 1,
				Cat: r.Lhs, Feat: fs,
				Rule: r, Token: tok,
			})
		}
	}

	n := len(tokens)
	for length := 1; length <= n; length++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for start := 0; start+length <= n; start++ {
			if err := p.fillSpan(ctx, start, start+length); err != nil {
				return nil, err
			}
		}
	}
	return p.chart, nil
}

type parser struct {
	g     *gram.Grammar
	chart *Chart
}

// fillSpan derives every edge over [start, end), iterating to a fixed point
// so that unary rules can chain within the span. Deduplication guarantees
// the loop terminates: the span has finitely many category/structure
// combinations.
func (p *parser) fillSpan(ctx context.Context, start, end int) error {
	for {
		changed := false
		for _, r := range p.g.Rules() {
			for _, children := range p.sequences(r.Rhs, start, end) {
				added, err := p.apply(ctx, r, start, end, children)
				if err != nil {
					return err
				}
				changed = changed || added
			}
		}
		if !changed {
			return nil
		}
	}
}

// sequences enumerates every way the rule right-hand side can cover
// [start, end) with adjacent completed edges.
func (p *parser) sequences(rhs []gram.RHSItem, start, end int) [][]*Edge {
	if len(rhs) == 0 {
		return nil
	}
	if len(rhs) == 1 {
		var out [][]*Edge
		for _, e := range p.chart.EdgesAt(start, end) {
			if e.Cat == rhs[0].Cat {
				out = append(out, []*Edge{e})
			}
		}
		return out
	}
	var out [][]*Edge
	for k := start + 1; k <= end-len(rhs)+1; k++ {
		var heads []*Edge
		for _, e := range p.chart.EdgesAt(start, k) {
			if e.Cat == rhs[0].Cat {
				heads = append(heads, e)
			}
		}
		if len(heads) == 0 {
			continue
		}
		for _, rest := range p.sequences(rhs[1:], k, end) {
			for _, head := range heads {
				seq := make([]*Edge, 0, len(rhs))
				seq = append(seq, head)
				seq = append(seq, rest...)
				out = append(out, seq)
			}
		}
	}
	return out
}

// apply attempts to build the rule's left-hand-side edge over the given
// children, reporting whether a new edge was added.
func (p *parser) apply(ctx context.Context, r *gram.Rule, start, end int, children []*Edge) (bool, error) {
	fr := feat.NewFreshener()
	lhs := fr.Struct(r.Feat)
	s := feat.NewSubs()
	for i, item := range r.Rhs {
		tmpl := fr.Struct(item.Feat)
		if _, err := feat.UnifyWith(tmpl, children[i].Feat, s); err != nil {
			var uerr feat.UnificationError
			if errors.As(err, &uerr) {
				slog.DebugContext(ctx, "rule does not apply",
					"rule", r, "span", []int{start, end}, "reason", err)
				return false, nil
			}
			return false, err
		}
	}

	mother, ok := lhs.Apply(s).(*feat.FeatStruct)
	if !ok {
		return false, nil
	}
	mother, err := normalize(mother, s)
	if err != nil {
		slog.DebugContext(ctx, "rule produced unresolved structure",
			"rule", r, "span", []int{start, end}, "reason", err)
		return false, nil
	}
	mother, err = instantiate(mother)
	if err != nil {
		return false, err
	}

	return p.add(&Edge{
		Start: start, End: end,
		Cat: r.Lhs, Feat: mother,
		Rule:     r,
		Children: children,
	}), nil
}

// add inserts e unless an equivalent edge for the same span and category is
// already present. Insertion is idempotent per bucket content.
func (p *parser) add(e *Edge) bool {
	key := span{e.Start, e.End}
	for _, have := range p.chart.edges[key] {
		if have.Cat == e.Cat && feat.Equivalent(have.Feat, e.Feat) {
			return false
		}
	}
	p.chart.edges[key] = append(p.chart.edges[key], e)
	return true
}

// normalize resolves deferred set unions left in a freshly built mother
// structure. A union that cannot resolve means the rule's set variables
// were not all bound, so the combination does not produce a usable edge.
func normalize(fs *feat.FeatStruct, s feat.Subs) (*feat.FeatStruct, error) {
	out := feat.New()
	for _, name := range fs.Features() {
		v, _ := fs.Get(name)
		switch v := v.(type) {
		case feat.UnionValue:
			resolved := v.Apply(s)
			if _, ok := resolved.(feat.BOSet); !ok {
				return nil, errors.Errorf("unresolved set union at %s: %s", name, resolved)
			}
			out.Set(name, resolved)
		case *feat.FeatStruct:
			nested, err := normalize(v, s)
			if err != nil {
				return nil, err
			}
			out.Set(name, nested)
		default:
			out.Set(name, v)
		}
	}
	return out, nil
}
