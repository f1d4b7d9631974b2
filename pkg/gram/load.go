package gram

import (
	"fmt"
	"os"
	"strings"

	"github.com/vito/gram/pkg/feat"
	"github.com/vito/gram/pkg/lam"
)

// Load parses grammar source text:
//
//	# comment
//	%start S
//	S[SEM=[CORE=<?vp(?subj)>, BO=?b1+?b2]] -> NP[SEM=[CORE=?subj, BO=?b1]] VP[SEM=[CORE=?vp, BO=?b2]]
//	Det[SEM=<\Q P.exists x.(Q(x) & P(x))>] -> 'a' | 'some'
//
// One rule per line; alternatives for one left-hand side are separated by
// '|'. A quoted right-hand side is a lexical rule for that literal token.
func Load(src string) (*Grammar, error) {
	return load(src, "")
}

// LoadFile reads and parses a grammar file.
func LoadFile(path string) (*Grammar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return load(string(data), path)
}

func load(src, path string) (*Grammar, error) {
	g := &Grammar{
		byLhs:   make(map[Category][]*Rule),
		lexicon: make(map[string][]*Rule),
	}
	startSeen := false
	for i, raw := range strings.Split(src, "\n") {
		line := stripComment(raw)
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		lineNum := i + 1
		if strings.HasPrefix(trimmed, "%") {
			fields := strings.Fields(trimmed)
			if fields[0] != "%start" || len(fields) != 2 {
				return nil, &MalformedGrammarError{
					Path: path, Line: lineNum, Msg: "expected '%start <Category>'", Src: raw,
				}
			}
			g.Start = Category(fields[1])
			startSeen = true
			continue
		}
		p := &ruleParser{src: line, path: path, line: lineNum}
		rules, err := p.rules()
		if err != nil {
			return nil, err
		}
		for _, r := range rules {
			g.add(r)
		}
	}
	if !startSeen {
		return nil, &MalformedGrammarError{Path: path, Line: 1, Msg: "missing %start declaration"}
	}
	if err := validate(g, path); err != nil {
		return nil, err
	}
	return g, nil
}

// stripComment removes a trailing # comment, respecting quoted tokens.
func stripComment(line string) string {
	inQuote := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\'':
			inQuote = !inQuote
		case '#':
			if !inQuote {
				return line[:i]
			}
		}
	}
	return line
}

func validate(g *Grammar, path string) error {
	if len(g.RulesFor(g.Start)) == 0 {
		return &MalformedGrammarError{
			Path: path, Line: 1,
			Msg: fmt.Sprintf("start category %s has no rules", g.Start),
		}
	}
	for _, r := range g.rules {
		for _, item := range r.Rhs {
			if len(g.RulesFor(item.Cat)) == 0 {
				return &MalformedGrammarError{
					Path: path, Line: r.Line,
					Msg: fmt.Sprintf("category %s in rule %q has no rules and can never combine", item.Cat, r),
				}
			}
		}
		if err := checkTemplate(r.Feat, r.Line, path); err != nil {
			return err
		}
		for _, item := range r.Rhs {
			if err := checkTemplate(item.Feat, r.Line, path); err != nil {
				return err
			}
		}
	}
	for _, rules := range g.lexicon {
		for _, r := range rules {
			if err := checkTemplate(r.Feat, r.Line, path); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkTemplate validates the recognized semantic feature paths: SEM must be
// a structure (or variable), CORE a term, BO a set.
func checkTemplate(fs *feat.FeatStruct, line int, path string) error {
	for _, name := range fs.Features() {
		v, _ := fs.Get(name)
		var bad bool
		switch name {
		case "SEM":
			switch v.(type) {
			case *feat.FeatStruct, feat.Variable, feat.SemTerm:
			default:
				bad = true
			}
		case "CORE":
			switch v.(type) {
			case feat.SemTerm, feat.Variable:
			default:
				bad = true
			}
		case "BO":
			switch v.(type) {
			case feat.BOSet, feat.UnionValue, feat.Variable:
			default:
				bad = true
			}
		}
		if bad {
			return &MalformedGrammarError{
				Path: path, Line: line,
				Msg: fmt.Sprintf("feature %s has ill-typed value %s", name, v),
			}
		}
		if nested, ok := v.(*feat.FeatStruct); ok {
			if err := checkTemplate(nested, line, path); err != nil {
				return err
			}
		}
	}
	return nil
}

type ruleParser struct {
	src  string
	path string
	line int
	pos  int
}

func (p *ruleParser) fail(format string, args ...any) error {
	return &MalformedGrammarError{
		Path:   p.path,
		Line:   p.line,
		Column: p.pos + 1,
		Msg:    fmt.Sprintf(format, args...),
		Src:    p.src,
	}
}

func (p *ruleParser) ws() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *ruleParser) peek() byte {
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *ruleParser) eat(c byte) bool {
	if p.peek() == c {
		p.pos++
		return true
	}
	return false
}

func (p *ruleParser) ident() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			p.pos++
		} else {
			break
		}
	}
	return p.src[start:p.pos]
}

// rules parses one source line into one Rule per alternative.
func (p *ruleParser) rules() ([]*Rule, error) {
	p.ws()
	lhsCat, lhsFeat, err := p.item()
	if err != nil {
		return nil, err
	}
	p.ws()
	if !strings.HasPrefix(p.src[p.pos:], "->") {
		return nil, p.fail("expected '->' after left-hand side")
	}
	p.pos += 2

	var out []*Rule
	for {
		r, err := p.alternative(lhsCat, lhsFeat)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
		p.ws()
		if p.eat('|') {
			continue
		}
		if p.pos < len(p.src) {
			return nil, p.fail("unexpected %q", p.src[p.pos:])
		}
		return out, nil
	}
}

func (p *ruleParser) alternative(lhsCat Category, lhsFeat *feat.FeatStruct) (*Rule, error) {
	p.ws()
	if p.peek() == '\'' {
		tok, err := p.token()
		if err != nil {
			return nil, err
		}
		return &Rule{Lhs: lhsCat, Feat: lhsFeat, Token: tok, Line: p.line}, nil
	}
	var rhs []RHSItem
	for {
		p.ws()
		if p.pos >= len(p.src) || p.peek() == '|' {
			break
		}
		cat, fs, err := p.item()
		if err != nil {
			return nil, err
		}
		rhs = append(rhs, RHSItem{Cat: cat, Feat: fs})
	}
	if len(rhs) == 0 {
		return nil, p.fail("empty right-hand side")
	}
	return &Rule{Lhs: lhsCat, Feat: lhsFeat, Rhs: rhs, Line: p.line}, nil
}

func (p *ruleParser) token() (string, error) {
	if !p.eat('\'') {
		return "", p.fail("expected quoted token")
	}
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] != '\'' {
		p.pos++
	}
	if p.pos >= len(p.src) {
		return "", p.fail("unterminated token literal")
	}
	tok := p.src[start:p.pos]
	p.pos++
	if tok == "" {
		return "", p.fail("empty token literal")
	}
	return tok, nil
}

// item parses Category or Category[features].
func (p *ruleParser) item() (Category, *feat.FeatStruct, error) {
	name := p.ident()
	if name == "" {
		return "", nil, p.fail("expected category symbol")
	}
	fs := feat.New()
	if p.peek() == '[' {
		var err error
		fs, err = p.featStruct()
		if err != nil {
			return "", nil, err
		}
	}
	return Category(name), fs, nil
}

func (p *ruleParser) featStruct() (*feat.FeatStruct, error) {
	if !p.eat('[') {
		return nil, p.fail("expected '['")
	}
	fs := feat.New()
	p.ws()
	if p.eat(']') {
		return fs, nil
	}
	for {
		p.ws()
		key := p.ident()
		if key == "" {
			return nil, p.fail("expected feature name")
		}
		p.ws()
		if !p.eat('=') {
			return nil, p.fail("expected '=' after feature %s", key)
		}
		val, err := p.value()
		if err != nil {
			return nil, err
		}
		fs.Set(key, val)
		p.ws()
		if p.eat(',') {
			continue
		}
		if p.eat(']') {
			return fs, nil
		}
		return nil, p.fail("expected ',' or ']' in feature structure")
	}
}

// value parses a feature value, possibly a +-union of several parts.
func (p *ruleParser) value() (feat.Value, error) {
	first, err := p.valueUnit()
	if err != nil {
		return nil, err
	}
	parts := []feat.Value{first}
	for {
		p.ws()
		if !p.eat('+') {
			break
		}
		next, err := p.valueUnit()
		if err != nil {
			return nil, err
		}
		parts = append(parts, next)
	}
	if len(parts) == 1 {
		return first, nil
	}
	return feat.UnionValue{Parts: parts}, nil
}

func (p *ruleParser) valueUnit() (feat.Value, error) {
	p.ws()
	switch p.peek() {
	case '?':
		p.pos++
		name := p.ident()
		if name == "" {
			return nil, p.fail("expected variable name after '?'")
		}
		return feat.Variable{Name: name}, nil
	case '[':
		return p.featStruct()
	case '{':
		return p.boSet()
	case '<':
		return p.termLiteral()
	default:
		name := p.ident()
		if name == "" {
			return nil, p.fail("expected feature value")
		}
		return feat.Atom(name), nil
	}
}

// termLiteral parses <...>, leaving the term text to the term parser. A '>'
// preceded by '-' is the implication arrow, not the closer.
func (p *ruleParser) termLiteral() (feat.Value, error) {
	open := p.pos
	p.pos++ // consume '<'
	start := p.pos
	for p.pos < len(p.src) {
		if p.src[p.pos] == '>' && p.src[p.pos-1] != '-' {
			inner := p.src[start:p.pos]
			p.pos++
			t, err := lam.ParseTerm(inner)
			if err != nil {
				p.pos = open
				return nil, p.fail("bad term literal: %s", err)
			}
			return feat.SemTerm{Term: t}, nil
		}
		p.pos++
	}
	p.pos = open
	return nil, p.fail("unterminated term literal")
}

// boSet parses {bo(expr, @x), ...} into a binding-operator set.
func (p *ruleParser) boSet() (feat.Value, error) {
	open := p.pos
	p.pos++ // consume '{'
	depth := 0
	start := p.pos
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '(':
			depth++
		case ')':
			depth--
		case '}':
			if depth == 0 {
				inner := p.src[start:p.pos]
				p.pos++
				return p.boSetItems(inner, open)
			}
		}
		p.pos++
	}
	p.pos = open
	return nil, p.fail("unterminated '{' set")
}

func (p *ruleParser) boSetItems(inner string, open int) (feat.Value, error) {
	var ops []lam.BindingOp
	for _, part := range splitTop(inner) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		t, err := lam.ParseTerm(part)
		if err != nil {
			p.pos = open
			return nil, p.fail("bad binding operator %q: %s", part, err)
		}
		op, err := toBindingOp(t)
		if err != nil {
			p.pos = open
			return nil, p.fail("bad binding operator %q: %s", part, err)
		}
		ops = append(ops, op)
	}
	return feat.NewBOSet(ops...), nil
}

// splitTop splits on commas outside parentheses.
func splitTop(s string) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	return append(out, s[start:])
}

// toBindingOp interprets a parsed bo(expr, @x) term as a binding operator.
func toBindingOp(t lam.Term) (lam.BindingOp, error) {
	pred, ok := t.(lam.Pred)
	if !ok || pred.Name != "bo" || len(pred.Args) != 2 {
		return lam.BindingOp{}, fmt.Errorf("expected bo(expr, @placeholder), got %s", t)
	}
	ph, ok := pred.Args[1].(lam.Var)
	if !ok || ph.Kind != lam.Placeholder {
		return lam.BindingOp{}, fmt.Errorf("second bo argument must be a placeholder, got %s", pred.Args[1])
	}
	return lam.BindingOp{Expr: pred.Args[0], Placeholder: ph}, nil
}
