package gram

import (
	"fmt"
	"strings"
)

// MalformedGrammarError is fatal at load time: the grammar source cannot be
// used, and parsing must not proceed.
type MalformedGrammarError struct {
	Path   string
	Line   int // 1-based
	Column int // 1-based, 0 if unknown
	Msg    string
	Src    string // the offending source line
}

func (e *MalformedGrammarError) Error() string {
	var sb strings.Builder
	if e.Path != "" {
		fmt.Fprintf(&sb, "%s: ", e.Path)
	}
	fmt.Fprintf(&sb, "line %d: %s", e.Line, e.Msg)
	if e.Src != "" {
		fmt.Fprintf(&sb, "\n  %s", e.Src)
		if e.Column > 0 && e.Column <= len(e.Src)+1 {
			fmt.Fprintf(&sb, "\n  %s^", strings.Repeat(" ", e.Column-1))
		}
	}
	return sb.String()
}
