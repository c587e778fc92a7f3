package solver

import (
	"context"
	"sort"
)

// minConflicts starts from a complete (possibly inconsistent) assignment and
// repeatedly reassigns the most-violated variable to the value minimizing
// total violations. Terminates on zero violations or when the iteration
// budget runs out, in which case the lowest-violation assignment found is
// discarded and the caller gets failure with the stats.
func (s *searcher) minConflicts(ctx context.Context, maxIterations int, stats *Stats) (*Assignment, error) {
	assignment := NewAssignment(len(s.variables))
	for _, v := range s.variables {
		domain := s.domains[v.ID]
		if len(domain.Candidates) == 0 {
			return nil, ErrExhausted
		}
		assignment.Bind(v.ID, domain.Candidates[0])
	}

	best := s.totalViolations(assignment)
	stats.BestViolations = best
	if best == 0 {
		return assignment, nil
	}

	for iteration := 1; iteration <= maxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			stats.Iterations = iteration - 1
			return nil, ErrCancelled
		}

		variableID := s.mostViolatedVariable(assignment)
		current, _ := assignment.Get(variableID)

		bestCandidate := current
		bestTotal := s.totalViolations(assignment)
		for _, candidate := range s.domains[variableID].Candidates {
			assignment.Bind(variableID, candidate)
			s.countNode()
			total := s.totalViolations(assignment)
			// Domain order is score-descending, so the first minimum keeps
			// the preferred candidate on ties.
			if total < bestTotal {
				bestTotal = total
				bestCandidate = candidate
			}
		}
		assignment.Bind(variableID, bestCandidate)

		if bestTotal < stats.BestViolations {
			stats.BestViolations = bestTotal
		}
		if bestTotal == 0 {
			stats.Iterations = iteration
			return assignment, nil
		}
	}

	stats.Iterations = maxIterations
	return nil, ErrExhausted
}

// totalViolations counts every constraint violation across the assignment.
func (s *searcher) totalViolations(assignment *Assignment) int {
	return len(s.constraints.CheckComplete(assignment))
}

// mostViolatedVariable returns the variable involved in the most violations,
// tie-broken by ascending id.
func (s *searcher) mostViolatedVariable(assignment *Assignment) string {
	counts := make(map[string]int, len(s.variables))
	for _, v := range s.constraints.CheckComplete(assignment) {
		counts[v.VariableID]++
	}

	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	best := ""
	bestCount := -1
	for _, id := range ids {
		if counts[id] > bestCount {
			best = id
			bestCount = counts[id]
		}
	}
	if best == "" && len(s.variables) > 0 {
		best = s.variables[0].ID
	}
	return best
}
