package solver

import (
	"context"
	"sync/atomic"
)

// searcher runs a sequential search over its own domain copies. Parallel
// solves give each worker an independent searcher; only the node and
// backtrack counters are shared.
type searcher struct {
	variables   []Variable
	constraints *ConstraintSet
	domains     map[string]*Domain
	useAC3      bool
	nodes       *atomic.Int64
	backtracks  *atomic.Int64
}

// searchFromRoot explores the subtrees rooted at every stride-th candidate
// of the root variable, starting at offset. Candidates are tried in domain
// order, so partitioning preserves the deterministic value ordering within
// each worker.
func (s *searcher) searchFromRoot(ctx context.Context, rootID string, offset, stride int) (*Assignment, error) {
	assignment := NewAssignment(len(s.variables))
	root := s.domains[rootID]

	for i := offset; i < len(root.Candidates); i += stride {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		candidate := root.Candidates[i]
		if s.constraints.Check(assignment, rootID, candidate) != nil {
			continue
		}
		s.countNode()
		assignment.Bind(rootID, candidate)

		saved := s.snapshotDomains(assignment)
		if s.propagate(assignment) {
			solution, err := s.search(ctx, assignment)
			if err != nil {
				return nil, err
			}
			if solution != nil {
				return solution, nil
			}
		}
		s.restoreDomains(saved)
		assignment.Unbind(rootID)
		s.countBacktrack()
	}
	return nil, nil
}

// search recursively extends the partial assignment. A nil solution with nil
// error means this subtree is exhausted.
func (s *searcher) search(ctx context.Context, assignment *Assignment) (*Assignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if assignment.Complete() {
		if s.constraints.GloballySatisfied(assignment) {
			return assignment.Clone(), nil
		}
		return nil, nil
	}

	variableID := s.nextVariable(assignment)
	domain := s.domains[variableID]

	for _, candidate := range domain.Candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s.constraints.Check(assignment, variableID, candidate) != nil {
			continue
		}
		s.countNode()
		assignment.Bind(variableID, candidate)

		saved := s.snapshotDomains(assignment)
		if s.propagate(assignment) {
			solution, err := s.search(ctx, assignment)
			if err != nil {
				return nil, err
			}
			if solution != nil {
				return solution, nil
			}
		}
		s.restoreDomains(saved)
		assignment.Unbind(variableID)
		s.countBacktrack()
	}
	return nil, nil
}

// propagate prunes the domains of unbound variables after a binding. It
// returns false when any domain empties, which triggers a backtrack.
func (s *searcher) propagate(assignment *Assignment) bool {
	if s.useAC3 {
		return s.ac3(assignment)
	}
	return s.forwardCheck(assignment)
}

// forwardCheck removes candidates of unbound variables that are no longer
// consistent with the partial assignment.
func (s *searcher) forwardCheck(assignment *Assignment) bool {
	for _, v := range s.variables {
		if assignment.Bound(v.ID) {
			continue
		}
		domain := s.domains[v.ID]
		kept := domain.Candidates[:0]
		for _, candidate := range domain.Candidates {
			if s.constraints.Check(assignment, v.ID, candidate) == nil {
				kept = append(kept, candidate)
			}
		}
		domain.Candidates = kept
		if len(kept) == 0 {
			return false
		}
	}
	return true
}

// nextVariable applies the most-constrained-first heuristic over unbound
// variables, tie-broken by ascending id.
func (s *searcher) nextVariable(assignment *Assignment) string {
	best := ""
	bestSize := -1
	for _, v := range s.variables {
		if assignment.Bound(v.ID) {
			continue
		}
		size := len(s.domains[v.ID].Candidates)
		if bestSize == -1 || size < bestSize || (size == bestSize && v.ID < best) {
			best = v.ID
			bestSize = size
		}
	}
	return best
}

// snapshotDomains copies the candidate lists of unbound variables so pruning
// can be undone on backtrack.
func (s *searcher) snapshotDomains(assignment *Assignment) map[string][]Candidate {
	saved := make(map[string][]Candidate)
	for _, v := range s.variables {
		if assignment.Bound(v.ID) {
			continue
		}
		candidates := make([]Candidate, len(s.domains[v.ID].Candidates))
		copy(candidates, s.domains[v.ID].Candidates)
		saved[v.ID] = candidates
	}
	return saved
}

func (s *searcher) restoreDomains(saved map[string][]Candidate) {
	for id, candidates := range saved {
		s.domains[id].Candidates = candidates
	}
}

func (s *searcher) countNode() {
	if s.nodes != nil {
		s.nodes.Add(1)
	}
}

func (s *searcher) countBacktrack() {
	if s.backtracks != nil {
		s.backtracks.Add(1)
	}
}
