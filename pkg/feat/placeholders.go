package feat

import "github.com/vito/gram/pkg/lam"

// RenamePlaceholders rewrites every binding placeholder in v using fn,
// including the placeholder halves of binding-operator pairs.
func RenamePlaceholders(v Value, fn func(lam.Var) lam.Var) Value {
	switch v := v.(type) {
	case SemTerm:
		return SemTerm{Term: lam.RenamePlaceholders(v.Term, fn)}
	case BOSet:
		ops := make([]lam.BindingOp, 0, v.Len())
		for _, op := range v.Ops() {
			ops = append(ops, lam.BindingOp{
				Expr:        lam.RenamePlaceholders(op.Expr, fn),
				Placeholder: fn(op.Placeholder),
			})
		}
		return NewBOSet(ops...)
	case UnionValue:
		parts := make([]Value, len(v.Parts))
		for i, part := range v.Parts {
			parts[i] = RenamePlaceholders(part, fn)
		}
		return UnionValue{Parts: parts}
	case *FeatStruct:
		out := New()
		for _, name := range v.order {
			out.Set(name, RenamePlaceholders(v.fields[name], fn))
		}
		return out
	default:
		return v
	}
}

// Placeholders returns every distinct placeholder occurring in v, in first
// occurrence order.
func Placeholders(v Value) []lam.Var {
	var out []lam.Var
	seen := make(map[lam.Var]bool)
	RenamePlaceholders(v, func(pv lam.Var) lam.Var {
		if !seen[pv] {
			seen[pv] = true
			out = append(out, pv)
		}
		return pv
	})
	return out
}
