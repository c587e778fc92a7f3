package solver

import (
	"fmt"
	"sort"
	"time"

	"github.com/noah-isme/course-scheduler-api/internal/models"
)

// TeacherAvailabilityConstraint rejects candidates whose time slot falls
// outside the teacher's declared availability, exceeds their weekly-hour
// cap, stretches back-to-back teaching past the consecutive limit, or
// collides with another slot already assigned to the same teacher.
type TeacherAvailabilityConstraint struct {
	catalog               *models.Catalog
	maxConsecutiveMinutes int
	minBreakMinutes       int
}

// NewTeacherAvailabilityConstraint builds the evaluator. maxConsecutiveHours
// and minBreak are required policy inputs, not guessed defaults.
func NewTeacherAvailabilityConstraint(catalog *models.Catalog, maxConsecutiveHours int, minBreak time.Duration) *TeacherAvailabilityConstraint {
	return &TeacherAvailabilityConstraint{
		catalog:               catalog,
		maxConsecutiveMinutes: maxConsecutiveHours * 60,
		minBreakMinutes:       int(minBreak.Minutes()),
	}
}

// Name identifies the constraint in violations.
func (c *TeacherAvailabilityConstraint) Name() string { return "teacher_availability" }

// IsSatisfied checks the candidate against the partial assignment.
func (c *TeacherAvailabilityConstraint) IsSatisfied(a *Assignment, variableID string, candidate Candidate) *Violation {
	teacher, ok := c.catalog.Teachers[candidate.TeacherID]
	if !ok {
		return c.violation(variableID, fmt.Sprintf("unknown teacher %s", candidate.TeacherID))
	}
	slot, ok := c.catalog.TimeSlots[candidate.TimeSlotID]
	if !ok {
		return c.violation(variableID, fmt.Sprintf("unknown time slot %s", candidate.TimeSlotID))
	}

	if !teacher.AvailableAt(slot.DayOfWeek, slot.StartMinute, slot.EndMinute) {
		return c.violation(variableID, fmt.Sprintf("teacher %s not available on day %d at %d-%d", teacher.ID, slot.DayOfWeek, slot.StartMinute, slot.EndMinute))
	}

	assigned := c.teacherSlots(a, variableID, candidate.TeacherID)
	for _, other := range assigned {
		if slot.Overlaps(other) {
			return c.violation(variableID, fmt.Sprintf("teacher %s already teaches overlapping slot %s", teacher.ID, other.ID))
		}
	}

	if teacher.MaxWeeklyHours > 0 {
		weekly := slot.DurationMinutes()
		for _, other := range assigned {
			weekly += other.DurationMinutes()
		}
		if weekly > teacher.MaxWeeklyHours*60 {
			return c.violation(variableID, fmt.Sprintf("teacher %s would exceed %d weekly hours", teacher.ID, teacher.MaxWeeklyHours))
		}
	}

	if c.maxConsecutiveMinutes > 0 {
		if run := c.consecutiveRun(assigned, slot); run > c.maxConsecutiveMinutes {
			return c.violation(variableID, fmt.Sprintf("teacher %s would teach %d consecutive minutes without a break", teacher.ID, run))
		}
	}

	return nil
}

// IsGloballySatisfied re-verifies every binding of a complete assignment.
func (c *TeacherAvailabilityConstraint) IsGloballySatisfied(a *Assignment) []Violation {
	return checkEachBinding(c, a)
}

func (c *TeacherAvailabilityConstraint) violation(variableID, reason string) *Violation {
	return &Violation{Constraint: c.Name(), VariableID: variableID, Reason: reason}
}

// teacherSlots collects slots already assigned to the teacher, excluding the
// variable being evaluated.
func (c *TeacherAvailabilityConstraint) teacherSlots(a *Assignment, excludeVariable, teacherID string) []models.TimeSlot {
	var slots []models.TimeSlot
	for _, id := range a.VariableIDs() {
		if id == excludeVariable {
			continue
		}
		bound, _ := a.Get(id)
		if bound.TeacherID != teacherID {
			continue
		}
		if slot, ok := c.catalog.TimeSlots[bound.TimeSlotID]; ok {
			slots = append(slots, slot)
		}
	}
	return slots
}

// consecutiveRun returns the longest chain of back-to-back teaching minutes
// containing the candidate slot, where gaps shorter than the minimum break
// keep the chain alive.
func (c *TeacherAvailabilityConstraint) consecutiveRun(assigned []models.TimeSlot, candidate models.TimeSlot) int {
	day := make([]models.TimeSlot, 0, len(assigned)+1)
	for _, s := range assigned {
		if s.DayOfWeek == candidate.DayOfWeek {
			day = append(day, s)
		}
	}
	day = append(day, candidate)
	sort.Slice(day, func(i, j int) bool { return day[i].StartMinute < day[j].StartMinute })

	longest := 0
	runStart := day[0].StartMinute
	runEnd := day[0].EndMinute
	contains := day[0].ID == candidate.ID
	for _, s := range day[1:] {
		if s.StartMinute-runEnd < c.minBreakMinutes {
			if s.EndMinute > runEnd {
				runEnd = s.EndMinute
			}
			contains = contains || s.ID == candidate.ID
			continue
		}
		if contains && runEnd-runStart > longest {
			longest = runEnd - runStart
		}
		runStart = s.StartMinute
		runEnd = s.EndMinute
		contains = s.ID == candidate.ID
	}
	if contains && runEnd-runStart > longest {
		longest = runEnd - runStart
	}
	return longest
}

// checkEachBinding verifies a complete assignment by re-running the
// incremental check for every bound variable against the rest.
func checkEachBinding(c Constraint, a *Assignment) []Violation {
	var out []Violation
	for _, id := range a.VariableIDs() {
		bound, _ := a.Get(id)
		a.Unbind(id)
		if v := c.IsSatisfied(a, id, bound); v != nil {
			out = append(out, *v)
		}
		a.Bind(id, bound)
	}
	return out
}
