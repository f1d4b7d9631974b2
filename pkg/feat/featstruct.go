package feat

import (
	"sort"
	"strings"

	"github.com/vito/gram/pkg/lam"
)

// FeatStruct is a mapping from feature names to values, nested to form
// feature paths like SEM.CORE. Field order is preserved for printing.
type FeatStruct struct {
	fields map[string]Value
	order  []string
}

// New creates an empty feature structure.
func New() *FeatStruct {
	return &FeatStruct{fields: make(map[string]Value)}
}

// Set binds name to v, returning f for chaining. Used while building
// templates and merged structures; edges never mutate their structures
// after construction.
func (f *FeatStruct) Set(name string, v Value) *FeatStruct {
	if _, ok := f.fields[name]; !ok {
		f.order = append(f.order, name)
	}
	f.fields[name] = v
	return f
}

// Get returns the value of a single feature.
func (f *FeatStruct) Get(name string) (Value, bool) {
	v, ok := f.fields[name]
	return v, ok
}

// GetPath resolves a dotted feature path like "SEM.CORE".
func (f *FeatStruct) GetPath(path string) (Value, bool) {
	cur := Value(f)
	for _, part := range strings.Split(path, ".") {
		fs, ok := cur.(*FeatStruct)
		if !ok {
			return nil, false
		}
		cur, ok = fs.Get(part)
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Features returns the feature names in insertion order.
func (f *FeatStruct) Features() []string {
	return append([]string{}, f.order...)
}

// Len returns the number of features.
func (f *FeatStruct) Len() int { return len(f.fields) }

// Clone returns a copy sharing no mutable state with f. Values are immutable
// so they are shared.
func (f *FeatStruct) Clone() *FeatStruct {
	out := New()
	for _, name := range f.order {
		out.Set(name, f.fields[name])
	}
	return out
}

func (f *FeatStruct) Apply(s Subs) Value {
	out := New()
	for _, name := range f.order {
		out.Set(name, f.fields[name].Apply(s))
	}
	return out
}

func (f *FeatStruct) FreeVars() VarSet {
	fvs := NewVarSet()
	for _, v := range f.fields {
		fvs = fvs.Union(v.FreeVars())
	}
	return fvs
}

func (f *FeatStruct) eq(other Value, c *lam.Corr) bool {
	of, ok := other.(*FeatStruct)
	if !ok || len(f.fields) != len(of.fields) {
		return false
	}
	// Sorted traversal keeps the variable correspondence deterministic.
	names := make([]string, 0, len(f.fields))
	for name := range f.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ov, ok := of.fields[name]
		if !ok || !f.fields[name].eq(ov, c) {
			return false
		}
	}
	return true
}

func (f *FeatStruct) String() string {
	parts := make([]string, len(f.order))
	for i, name := range f.order {
		parts[i] = name + "=" + f.fields[name].String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
