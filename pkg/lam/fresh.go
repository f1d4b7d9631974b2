package lam

import "sync/atomic"

// gen is the process-wide generation counter. Every freshened variable in a
// parse draws from it, so no two minting events can produce the same
// variable, even across goroutines.
var gen atomic.Int64

// NextGen returns a globally unique, monotonically increasing generation tag.
func NextGen() int {
	return int(gen.Add(1))
}

// FreshVar returns a variable with the same name and kind as v but a
// generation tag never handed out before.
func FreshVar(v Var) Var {
	return Var{Name: v.Name, Kind: v.Kind, Gen: NextGen()}
}

// RenameVars rewrites free occurrences of each key in m to its value,
// capture-avoiding.
func RenameVars(t Term, m map[Var]Var) Term {
	for from, to := range m {
		t = Substitute(t, from, to)
	}
	return t
}

// RenamePlaceholders rewrites every placeholder variable in t using fn,
// calling fn once per occurrence. Placeholders are never lambda-bound before
// composition, so a plain traversal is safe here.
func RenamePlaceholders(t Term, fn func(Var) Var) Term {
	switch t := t.(type) {
	case Var:
		if t.Kind == Placeholder {
			return fn(t)
		}
		return t
	case Const, Slot:
		return t
	case App:
		return App{Fn: RenamePlaceholders(t.Fn, fn), Arg: RenamePlaceholders(t.Arg, fn)}
	case Abs:
		return Abs{Param: t.Param, Body: RenamePlaceholders(t.Body, fn)}
	case Pred:
		args := make([]Term, len(t.Args))
		for i, arg := range t.Args {
			args[i] = RenamePlaceholders(arg, fn)
		}
		return Pred{Name: t.Name, Args: args}
	case And:
		return And{L: RenamePlaceholders(t.L, fn), R: RenamePlaceholders(t.R, fn)}
	case Implies:
		return Implies{L: RenamePlaceholders(t.L, fn), R: RenamePlaceholders(t.R, fn)}
	case Quant:
		return Quant{Kind: t.Kind, Param: t.Param, Body: RenamePlaceholders(t.Body, fn)}
	default:
		return t
	}
}

// Placeholders returns every placeholder variable occurring in t.
func Placeholders(t Term) []Var {
	var out []Var
	seen := make(map[Var]bool)
	RenamePlaceholders(t, func(v Var) Var {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
		return v
	})
	return out
}
