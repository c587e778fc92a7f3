package solver

// Violation describes why a constraint rejected a candidate. Infeasibility
// is a return value, never an error.
type Violation struct {
	Constraint string
	VariableID string
	Reason     string
}

// Constraint is a stateless evaluator over externally supplied reference
// data. IsSatisfied performs the incremental check used during search;
// IsGloballySatisfied verifies a complete assignment.
type Constraint interface {
	Name() string
	IsSatisfied(a *Assignment, variableID string, candidate Candidate) *Violation
	IsGloballySatisfied(a *Assignment) []Violation
}

// ConstraintSet treats registered constraints as a single composite
// predicate: logical AND across all of them. The set of active constraints
// is explicit configuration, not assembled inside the solver.
type ConstraintSet struct {
	constraints []Constraint
}

// NewConstraintSet builds a set from the given evaluators.
func NewConstraintSet(constraints ...Constraint) *ConstraintSet {
	return &ConstraintSet{constraints: constraints}
}

// Add registers another constraint.
func (s *ConstraintSet) Add(c Constraint) {
	s.constraints = append(s.constraints, c)
}

// Constraints returns the registered evaluators.
func (s *ConstraintSet) Constraints() []Constraint {
	return s.constraints
}

// Check returns the first violation any constraint reports for the
// candidate, or nil when every constraint accepts it.
func (s *ConstraintSet) Check(a *Assignment, variableID string, candidate Candidate) *Violation {
	for _, c := range s.constraints {
		if v := c.IsSatisfied(a, variableID, candidate); v != nil {
			return v
		}
	}
	return nil
}

// CheckComplete collects every violation across a complete assignment.
func (s *ConstraintSet) CheckComplete(a *Assignment) []Violation {
	var all []Violation
	for _, c := range s.constraints {
		all = append(all, c.IsGloballySatisfied(a)...)
	}
	return all
}

// GloballySatisfied reports whether the complete assignment is consistent.
func (s *ConstraintSet) GloballySatisfied(a *Assignment) bool {
	return len(s.CheckComplete(a)) == 0
}
