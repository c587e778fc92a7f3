package dto

import "time"

// SolveRequest instructs the solver to build an assignment for a term.
type SolveRequest struct {
	TermID        string   `json:"termId" validate:"required"`
	Strategy      string   `json:"strategy" validate:"omitempty,oneof=BACKTRACKING_FORWARD_CHECKING BACKTRACKING_AC3 MIN_CONFLICTS"`
	OfferingIDs   []string `json:"offeringIds" validate:"omitempty,dive,required"`
	MaxIterations int      `json:"maxIterations" validate:"omitempty,min=1,max=100000"`
	TimeBudgetMS  int      `json:"timeBudgetMs" validate:"omitempty,min=100,max=600000"`
	Date          string   `json:"date" validate:"required,datetime=2006-01-02"`
	Commit        bool     `json:"commit"`
}

// AssignmentEntry is one offering's chosen teacher/classroom/slot triple.
type AssignmentEntry struct {
	OfferingID  string  `json:"offeringId"`
	Label       string  `json:"label"`
	TeacherID   string  `json:"teacherId"`
	ClassroomID string  `json:"classroomId"`
	TimeSlotID  string  `json:"timeSlotId"`
	Score       float64 `json:"score"`
}

// SolveStats summarises solver performance for one run.
type SolveStats struct {
	Strategy       string        `json:"strategy"`
	State          string        `json:"state"`
	NodesExplored  int64         `json:"nodesExplored"`
	Backtracks     int64         `json:"backtracks"`
	Iterations     int           `json:"iterations"`
	Workers        int           `json:"workers"`
	BestViolations int           `json:"bestViolations"`
	Duration       time.Duration `json:"durationNs"`
}

// SolveResponse returns the assignment (on success) and the performance
// summary; the summary is present on failure too.
type SolveResponse struct {
	RunID       string            `json:"runId"`
	Assignments []AssignmentEntry `json:"assignments,omitempty"`
	Stats       SolveStats        `json:"stats"`
	Committed   bool              `json:"committed"`
	ScheduleIDs []string          `json:"scheduleIds,omitempty"`
}
