package feat

import "github.com/vito/gram/pkg/lam"

// Freshener renames the ordinary variables of rule templates apart from
// every other rule instantiation, keeping occurrences of the same written
// variable consistent across all templates freshened by one Freshener. One
// Freshener is used per rule application, so ?x in a rule's left-hand side
// and right-hand side stay linked while never colliding with another use of
// the same rule elsewhere in the chart.
type Freshener struct {
	memo map[Variable]Variable
}

// NewFreshener creates a Freshener with an empty renaming.
func NewFreshener() *Freshener {
	return &Freshener{memo: make(map[Variable]Variable)}
}

func (f *Freshener) rename(v Variable) Variable {
	if fresh, ok := f.memo[v]; ok {
		return fresh
	}
	fresh := Variable{Name: v.Name, Gen: lam.NextGen()}
	f.memo[v] = fresh
	return fresh
}

// Value freshens every ordinary variable in v, including slot references
// inside embedded terms.
func (f *Freshener) Value(v Value) Value {
	switch v := v.(type) {
	case Atom:
		return v
	case Variable:
		return f.rename(v)
	case SemTerm:
		return SemTerm{Term: f.term(v.Term)}
	case BOSet:
		ops := make([]lam.BindingOp, 0, v.Len())
		for _, op := range v.Ops() {
			ops = append(ops, lam.BindingOp{
				Expr:        f.term(op.Expr),
				Placeholder: op.Placeholder,
			})
		}
		return NewBOSet(ops...)
	case UnionValue:
		parts := make([]Value, len(v.Parts))
		for i, part := range v.Parts {
			parts[i] = f.Value(part)
		}
		return UnionValue{Parts: parts}
	case *FeatStruct:
		return f.Struct(v)
	default:
		return v
	}
}

// Struct freshens a feature structure template.
func (f *Freshener) Struct(fs *FeatStruct) *FeatStruct {
	out := New()
	for _, name := range fs.order {
		out.Set(name, f.Value(fs.fields[name]))
	}
	return out
}

func (f *Freshener) term(t lam.Term) lam.Term {
	return lam.ResolveSlots(t, func(name string, gen int) (lam.Term, bool) {
		fresh := f.rename(Variable{Name: name, Gen: gen})
		return lam.Slot{Name: fresh.Name, Gen: fresh.Gen}, true
	})
}
