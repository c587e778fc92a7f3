package solver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Strategy selects the search algorithm for one solve invocation.
type Strategy string

// Interchangeable search strategies.
const (
	StrategyBacktrackingFC  Strategy = "BACKTRACKING_FORWARD_CHECKING"
	StrategyBacktrackingAC3 Strategy = "BACKTRACKING_AC3"
	StrategyMinConflicts    Strategy = "MIN_CONFLICTS"
)

// ParseStrategy validates a caller-supplied strategy name.
func ParseStrategy(raw string) (Strategy, error) {
	switch Strategy(raw) {
	case StrategyBacktrackingFC, StrategyBacktrackingAC3, StrategyMinConflicts:
		return Strategy(raw), nil
	}
	return "", fmt.Errorf("unknown strategy %q", raw)
}

// State is the terminal condition of a solve.
type State string

// Solve outcomes reported in Stats.
const (
	StateComplete State = "COMPLETE"
	StateFailed   State = "FAILED"
)

// Stats is the performance summary returned with every solve, success or not.
type Stats struct {
	Strategy       Strategy      `json:"strategy"`
	State          State         `json:"state"`
	NodesExplored  int64         `json:"nodes_explored"`
	Backtracks     int64         `json:"backtracks"`
	Iterations     int           `json:"iterations"`
	Workers        int           `json:"workers"`
	BestViolations int           `json:"best_violations"`
	Duration       time.Duration `json:"duration"`
}

// Sentinel errors for the solve taxonomy. Cancellation is not an error
// condition for retry accounting; exhaustion carries the stats so callers
// can relax constraints or extend the budget.
var (
	ErrExhausted = errors.New("search space exhausted without a consistent complete assignment")
	ErrCancelled = errors.New("solve cancelled by caller")
)

// Options tunes one solve invocation.
type Options struct {
	Strategy      Strategy
	Workers       int
	MaxIterations int
}

// Solver searches the variable/domain/constraint space for a complete,
// consistent assignment. Workers share only the read-only catalog snapshot
// and a synchronized best-solution slot.
type Solver struct {
	variables   []Variable
	domains     map[string]*Domain
	constraints *ConstraintSet
	opts        Options
	logger      *zap.Logger
}

// New builds a solver over already-validated variables and domains.
func New(variables []Variable, domains map[string]*Domain, constraints *ConstraintSet, opts Options, logger *zap.Logger) *Solver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = 1000
	}
	if opts.Strategy == "" {
		opts.Strategy = StrategyBacktrackingFC
	}
	return &Solver{
		variables:   variables,
		domains:     domains,
		constraints: constraints,
		opts:        opts,
		logger:      logger,
	}
}

// Solve runs the configured strategy. On success it returns the complete
// assignment and stats; on failure the stats alone describe the search.
func (s *Solver) Solve(ctx context.Context) (*Assignment, Stats, error) {
	started := time.Now()
	stats := Stats{Strategy: s.opts.Strategy, Workers: 1}

	var (
		assignment *Assignment
		err        error
	)
	switch s.opts.Strategy {
	case StrategyMinConflicts:
		assignment, err = s.solveMinConflicts(ctx, &stats)
	default:
		assignment, err = s.solveBacktracking(ctx, &stats)
	}

	stats.Duration = time.Since(started)
	if err != nil {
		stats.State = StateFailed
		s.logger.Info("solve finished",
			zap.String("strategy", string(s.opts.Strategy)),
			zap.String("state", string(stats.State)),
			zap.Int64("nodes", stats.NodesExplored),
			zap.Int64("backtracks", stats.Backtracks),
			zap.Duration("duration", stats.Duration),
			zap.Error(err),
		)
		return nil, stats, err
	}

	stats.State = StateComplete
	s.logger.Info("solve finished",
		zap.String("strategy", string(s.opts.Strategy)),
		zap.String("state", string(stats.State)),
		zap.Int64("nodes", stats.NodesExplored),
		zap.Int64("backtracks", stats.Backtracks),
		zap.Duration("duration", stats.Duration),
	)
	return assignment, stats, nil
}

// solveBacktracking partitions the root variable's candidates across workers,
// each searching an independent subtree over its own domain copy. The success
// from the lowest stripe index wins regardless of which worker finishes
// first, so the outcome is reproducible for identical inputs. Higher stripes
// are cancelled once every lower stripe has reported.
func (s *Solver) solveBacktracking(ctx context.Context, stats *Stats) (*Assignment, error) {
	if len(s.variables) == 0 {
		return NewAssignment(0), nil
	}

	rootID := s.mostConstrainedVariable()
	root := s.domains[rootID]
	if root == nil || len(root.Candidates) == 0 {
		return nil, ErrExhausted
	}

	workers := s.opts.Workers
	if workers > len(root.Candidates) {
		workers = len(root.Candidates)
	}
	stats.Workers = workers

	var (
		nodes      atomic.Int64
		backtracks atomic.Int64
	)

	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		offset     int
		assignment *Assignment
	}
	results := make(chan result, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			worker := &searcher{
				variables:   s.variables,
				constraints: s.constraints,
				domains:     cloneDomains(s.domains),
				useAC3:      s.opts.Strategy == StrategyBacktrackingAC3,
				nodes:       &nodes,
				backtracks:  &backtracks,
			}
			solution, _ := worker.searchFromRoot(workerCtx, rootID, offset, workers)
			results <- result{offset: offset, assignment: solution}
		}(w)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// A success only becomes final once every lower stripe has reported,
	// since a lower stripe may still produce the preferred solution.
	solutions := make([]*Assignment, workers)
	reported := make([]bool, workers)
	winner := -1
	for res := range results {
		reported[res.offset] = true
		solutions[res.offset] = res.assignment
		if res.assignment != nil && (winner == -1 || res.offset < winner) {
			winner = res.offset
		}
		if winner != -1 {
			final := true
			for i := 0; i < winner; i++ {
				if !reported[i] {
					final = false
					break
				}
			}
			if final {
				cancel()
			}
		}
	}

	stats.NodesExplored = nodes.Load()
	stats.Backtracks = backtracks.Load()
	if winner != -1 {
		return solutions[winner], nil
	}
	if ctx.Err() != nil {
		return nil, ErrCancelled
	}
	return nil, ErrExhausted
}

// solveMinConflicts runs local repair under a mandatory iteration budget.
func (s *Solver) solveMinConflicts(ctx context.Context, stats *Stats) (*Assignment, error) {
	worker := &searcher{
		variables:   s.variables,
		constraints: s.constraints,
		domains:     cloneDomains(s.domains),
	}
	return worker.minConflicts(ctx, s.opts.MaxIterations, stats)
}

// mostConstrainedVariable picks the unbound variable with the fewest
// remaining candidates, tie-broken by ascending id.
func (s *Solver) mostConstrainedVariable() string {
	best := ""
	bestSize := -1
	for _, v := range s.variables {
		size := 0
		if d := s.domains[v.ID]; d != nil {
			size = len(d.Candidates)
		}
		if bestSize == -1 || size < bestSize || (size == bestSize && v.ID < best) {
			best = v.ID
			bestSize = size
		}
	}
	return best
}

func cloneDomains(domains map[string]*Domain) map[string]*Domain {
	clone := make(map[string]*Domain, len(domains))
	for id, d := range domains {
		clone[id] = d.Clone()
	}
	return clone
}
