package solver

import (
	"fmt"
	"sort"
)

// ValueType tags the dimension a scheduling value binds.
type ValueType string

// A complete assignment for a variable needs one value of each type.
const (
	ValueTeacher   ValueType = "TEACHER"
	ValueClassroom ValueType = "CLASSROOM"
	ValueTimeSlot  ValueType = "TIME_SLOT"
)

// Variable is one course offering awaiting assignment. Identity is the
// offering id; variables are immutable once built.
type Variable struct {
	ID    string
	Label string
}

// Value is a candidate binding of one dimension to a variable. Score is a
// preference in [0,1] used only for tie-breaking between feasible options.
type Value struct {
	Type  ValueType
	ID    string
	Label string
	Score float64
}

// Candidate is a full teacher/classroom/time-slot triple considered for a
// variable, with the combined preference score of its three values.
type Candidate struct {
	TeacherID   string
	ClassroomID string
	TimeSlotID  string
	Score       float64
}

// Key returns a stable identifier used for deterministic ordering.
func (c Candidate) Key() string {
	return c.TeacherID + "|" + c.ClassroomID + "|" + c.TimeSlotID
}

func (c Candidate) String() string {
	return fmt.Sprintf("teacher=%s classroom=%s slot=%s score=%.3f", c.TeacherID, c.ClassroomID, c.TimeSlotID, c.Score)
}

// sortCandidates orders by descending score, then ascending key, so search
// is reproducible for identical inputs.
func sortCandidates(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Key() < candidates[j].Key()
	})
}

// sortValues orders dimension values the same way candidates are ordered.
func sortValues(values []Value) {
	sort.SliceStable(values, func(i, j int) bool {
		if values[i].Score != values[j].Score {
			return values[i].Score > values[j].Score
		}
		return values[i].ID < values[j].ID
	})
}
