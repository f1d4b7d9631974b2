package chart

import (
	"fmt"
	"strings"

	"github.com/vito/gram/pkg/feat"
	"github.com/vito/gram/pkg/gram"
)

// Edge is a completed constituent over the span [Start, End). Edges are
// append-only chart entries; they are never mutated after creation, and
// every edge owns its own feature structure.
type Edge struct {
	Start, End int
	Cat        gram.Category
	Feat       *feat.FeatStruct
	Rule       *gram.Rule
	Token      string
	Children   []*Edge
}

// Lexical reports whether the edge covers a single literal token.
func (e *Edge) Lexical() bool { return e.Token != "" }

func (e *Edge) String() string {
	return fmt.Sprintf("[%d:%d] %s %s", e.Start, e.End, e.Cat, e.Feat)
}

// Tree renders the edge's derivation as an indented tree.
func (e *Edge) Tree() string {
	var sb strings.Builder
	e.tree(&sb, 0)
	return sb.String()
}

func (e *Edge) tree(sb *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	if e.Lexical() {
		fmt.Fprintf(sb, "%s%s %q\n", indent, e.Cat, e.Token)
		return
	}
	fmt.Fprintf(sb, "%s%s\n", indent, e.Cat)
	for _, child := range e.Children {
		child.tree(sb, depth+1)
	}
}
