package lam

import (
	"github.com/pkg/errors"
)

// ParseTerm parses the textual term notation used in grammar files:
//
//	\x.walk(x)
//	\Q P.exists x.(Q(x) & P(x))
//	all x.(dog(x) -> bark(x))
//	?vp(?subj)
//	bo(\P.P(John), @x)
//
// Binder bodies extend as far right as possible. Identifiers bound by an
// enclosing \ or quantifier are variables; everything else is a constant.
// ?name is a feature-variable slot, @name a binding placeholder.
func ParseTerm(src string) (Term, error) {
	p := &termParser{src: src, bound: make(map[string]int)}
	t, err := p.term()
	if err != nil {
		return nil, err
	}
	p.ws()
	if p.pos < len(p.src) {
		return nil, p.errf("unexpected trailing input %q", p.src[p.pos:])
	}
	return t, nil
}

type termParser struct {
	src   string
	pos   int
	bound map[string]int
}

func (p *termParser) errf(format string, args ...any) error {
	args = append([]any{p.pos + 1}, args...)
	return errors.Errorf("column %d: "+format, args...)
}

func (p *termParser) ws() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *termParser) peek() byte {
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *termParser) eat(prefix string) bool {
	if len(p.src)-p.pos >= len(prefix) && p.src[p.pos:p.pos+len(prefix)] == prefix {
		p.pos += len(prefix)
		return true
	}
	return false
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func (p *termParser) ident() string {
	if p.pos >= len(p.src) || !isIdentStart(p.src[p.pos]) {
		return ""
	}
	start := p.pos
	for p.pos < len(p.src) && isIdentChar(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

// term := implies (binders are handled at the atom level so they can appear
// anywhere an operand can, with maximal bodies)
func (p *termParser) term() (Term, error) {
	return p.implies()
}

func (p *termParser) implies() (Term, error) {
	l, err := p.conj()
	if err != nil {
		return nil, err
	}
	p.ws()
	if p.eat("->") {
		r, err := p.implies()
		if err != nil {
			return nil, err
		}
		return Implies{L: l, R: r}, nil
	}
	return l, nil
}

func (p *termParser) conj() (Term, error) {
	l, err := p.atom()
	if err != nil {
		return nil, err
	}
	for {
		p.ws()
		// "->" must not be mistaken for "&"-chaining; only a bare & chains.
		if p.peek() != '&' {
			return l, nil
		}
		p.pos++
		r, err := p.atom()
		if err != nil {
			return nil, err
		}
		l = And{L: l, R: r}
	}
}

func (p *termParser) atom() (Term, error) {
	p.ws()
	if p.eat("\\") {
		return p.binder(func(v Var, body Term) Term {
			return Abs{Param: v, Body: body}
		})
	}
	save := p.pos
	switch w := p.ident(); w {
	case "exists":
		return p.binder(func(v Var, body Term) Term {
			return Quant{Kind: Exists, Param: v, Body: body}
		})
	case "all":
		return p.binder(func(v Var, body Term) Term {
			return Quant{Kind: Forall, Param: v, Body: body}
		})
	default:
		p.pos = save
	}
	return p.postfix()
}

// binder parses "x y z.body" after a \ or quantifier keyword, wrapping body
// once per parameter.
func (p *termParser) binder(wrap func(Var, Term) Term) (Term, error) {
	var params []Var
	for {
		p.ws()
		name := p.ident()
		if name == "" {
			break
		}
		params = append(params, Var{Name: name})
	}
	if len(params) == 0 {
		return nil, p.errf("expected binder parameter")
	}
	p.ws()
	if !p.eat(".") {
		return nil, p.errf("expected '.' after binder parameters")
	}
	for _, v := range params {
		p.bound[v.Name]++
	}
	body, err := p.term()
	for _, v := range params {
		p.bound[v.Name]--
	}
	if err != nil {
		return nil, err
	}
	for i := len(params) - 1; i >= 0; i-- {
		body = wrap(params[i], body)
	}
	return body, nil
}

func (p *termParser) postfix() (Term, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}
	first := true
	for {
		p.ws()
		if p.peek() != '(' {
			return base, nil
		}
		p.pos++
		var args []Term
		for {
			arg, err := p.term()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			p.ws()
			if p.eat(",") {
				continue
			}
			break
		}
		if !p.eat(")") {
			return nil, p.errf("expected ')' in argument list")
		}
		if k, ok := base.(Const); ok && first {
			base = Pred{Name: k.Name, Args: args}
		} else {
			for _, arg := range args {
				base = App{Fn: base, Arg: arg}
			}
		}
		first = false
	}
}

func (p *termParser) primary() (Term, error) {
	p.ws()
	switch {
	case p.eat("("):
		t, err := p.term()
		if err != nil {
			return nil, err
		}
		p.ws()
		if !p.eat(")") {
			return nil, p.errf("expected ')'")
		}
		return t, nil
	case p.eat("@"):
		name := p.ident()
		if name == "" {
			return nil, p.errf("expected placeholder name after '@'")
		}
		return Var{Name: name, Kind: Placeholder}, nil
	case p.eat("?"):
		name := p.ident()
		if name == "" {
			return nil, p.errf("expected feature variable name after '?'")
		}
		return Slot{Name: name}, nil
	default:
		name := p.ident()
		if name == "" {
			return nil, p.errf("expected a term")
		}
		if p.bound[name] > 0 {
			return Var{Name: name}, nil
		}
		return Const{Name: name}, nil
	}
}
