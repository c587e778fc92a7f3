package solver

import "sort"

// Assignment maps variable ids to their chosen candidate triples. It is
// request-scoped and never shared between workers while being mutated.
type Assignment struct {
	bindings map[string]Candidate
	total    int
}

// NewAssignment creates an empty assignment over the given variable count.
func NewAssignment(totalVariables int) *Assignment {
	return &Assignment{
		bindings: make(map[string]Candidate, totalVariables),
		total:    totalVariables,
	}
}

// Bind assigns a candidate to a variable.
func (a *Assignment) Bind(variableID string, c Candidate) {
	a.bindings[variableID] = c
}

// Unbind removes a variable's binding.
func (a *Assignment) Unbind(variableID string) {
	delete(a.bindings, variableID)
}

// Get returns the candidate bound to the variable, if any.
func (a *Assignment) Get(variableID string) (Candidate, bool) {
	c, ok := a.bindings[variableID]
	return c, ok
}

// Bound reports whether the variable has a binding.
func (a *Assignment) Bound(variableID string) bool {
	_, ok := a.bindings[variableID]
	return ok
}

// Len returns the number of bound variables.
func (a *Assignment) Len() int {
	return len(a.bindings)
}

// Complete reports whether every variable is bound.
func (a *Assignment) Complete() bool {
	return len(a.bindings) == a.total
}

// VariableIDs returns the bound variable ids in ascending order.
func (a *Assignment) VariableIDs() []string {
	ids := make([]string, 0, len(a.bindings))
	for id := range a.bindings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Score sums the preference scores of all bound candidates.
func (a *Assignment) Score() float64 {
	var total float64
	for _, c := range a.bindings {
		total += c.Score
	}
	return total
}

// Clone returns an independent copy of the assignment.
func (a *Assignment) Clone() *Assignment {
	clone := NewAssignment(a.total)
	for id, c := range a.bindings {
		clone.bindings[id] = c
	}
	return clone
}
