package gram

import (
	"fmt"
	"strings"

	"github.com/vito/gram/pkg/feat"
)

// Category is a syntactic category symbol (S, NP, VP, ...).
type Category string

// RHSItem is one constituent on a rule's right-hand side: a category plus
// the feature template it must unify with.
type RHSItem struct {
	Cat  Category
	Feat *feat.FeatStruct
}

// Rule is a single production. Either Rhs is non-empty (a phrasal rule) or
// Token is set (a lexical rule covering one literal token). Rules are
// immutable once the grammar is loaded.
type Rule struct {
	Lhs   Category
	Feat  *feat.FeatStruct
	Rhs   []RHSItem
	Token string
	Line  int
}

// Lexical reports whether the rule covers a literal token.
func (r *Rule) Lexical() bool { return r.Token != "" }

func (r *Rule) String() string {
	lhs := string(r.Lhs)
	if r.Feat.Len() > 0 {
		lhs += r.Feat.String()
	}
	if r.Lexical() {
		return fmt.Sprintf("%s -> '%s'", lhs, r.Token)
	}
	parts := make([]string, len(r.Rhs))
	for i, item := range r.Rhs {
		parts[i] = string(item.Cat)
		if item.Feat.Len() > 0 {
			parts[i] += item.Feat.String()
		}
	}
	return fmt.Sprintf("%s -> %s", lhs, strings.Join(parts, " "))
}

// Grammar is a loaded rule set. Read-only after Load.
type Grammar struct {
	Start   Category
	rules   []*Rule
	byLhs   map[Category][]*Rule
	lexicon map[string][]*Rule
}

// Rules returns every phrasal (non-lexical) rule.
func (g *Grammar) Rules() []*Rule {
	return g.rules
}

// RulesFor returns the rules whose left-hand side is c, lexical included.
func (g *Grammar) RulesFor(c Category) []*Rule {
	return g.byLhs[c]
}

// Lexical returns the lexical rules covering token.
func (g *Grammar) Lexical(token string) []*Rule {
	return g.lexicon[token]
}

func (g *Grammar) add(r *Rule) {
	g.byLhs[r.Lhs] = append(g.byLhs[r.Lhs], r)
	if r.Lexical() {
		g.lexicon[r.Token] = append(g.lexicon[r.Token], r)
	} else {
		g.rules = append(g.rules, r)
	}
}
