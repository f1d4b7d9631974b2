package feat

// VarSet represents a set of feature variables
type VarSet map[Variable]bool

// NewVarSet creates a new VarSet
func NewVarSet(vs ...Variable) VarSet {
	set := make(VarSet)
	for _, v := range vs {
		set[v] = true
	}
	return set
}

// Union returns the union of two VarSets
func (vs VarSet) Union(other VarSet) VarSet {
	result := make(VarSet)
	for v := range vs {
		result[v] = true
	}
	for v := range other {
		result[v] = true
	}
	return result
}

// Contains checks if a variable is in the set
func (vs VarSet) Contains(v Variable) bool {
	return vs[v]
}

// Add adds a variable to the set
func (vs VarSet) Add(v Variable) {
	vs[v] = true
}
