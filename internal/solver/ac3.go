package solver

// arc is a directed pair of variables whose domains constrain each other.
type arc struct {
	from string
	to   string
}

// ac3 enforces arc-consistency across the unbound variables: a candidate of
// one variable survives only if some candidate of every related variable is
// pairwise consistent with it. Runs to a fixpoint or stops early when a
// domain empties.
func (s *searcher) ac3(assignment *Assignment) bool {
	unbound := s.unboundVariables(assignment)
	if len(unbound) == 0 {
		return true
	}

	queue := make([]arc, 0, len(unbound)*len(unbound))
	for _, x := range unbound {
		for _, y := range unbound {
			if x != y {
				queue = append(queue, arc{from: x, to: y})
			}
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if !s.revise(assignment, current.from, current.to) {
			continue
		}
		if len(s.domains[current.from].Candidates) == 0 {
			return false
		}
		for _, z := range unbound {
			if z != current.from && z != current.to {
				queue = append(queue, arc{from: z, to: current.from})
			}
		}
	}
	return true
}

// revise removes candidates of x that are inconsistent with the partial
// assignment or have no supporting candidate in y's domain. Reports whether
// anything was removed.
func (s *searcher) revise(assignment *Assignment, x, y string) bool {
	domain := s.domains[x]
	kept := domain.Candidates[:0]
	revised := false

	for _, cx := range domain.Candidates {
		if s.constraints.Check(assignment, x, cx) != nil {
			revised = true
			continue
		}
		assignment.Bind(x, cx)
		supported := false
		for _, cy := range s.domains[y].Candidates {
			if s.constraints.Check(assignment, y, cy) == nil {
				supported = true
				break
			}
		}
		assignment.Unbind(x)
		if supported {
			kept = append(kept, cx)
		} else {
			revised = true
		}
	}

	domain.Candidates = kept
	return revised
}

func (s *searcher) unboundVariables(assignment *Assignment) []string {
	var ids []string
	for _, v := range s.variables {
		if !assignment.Bound(v.ID) {
			ids = append(ids, v.ID)
		}
	}
	return ids
}
