package solver

import (
	"fmt"

	"github.com/noah-isme/course-scheduler-api/internal/models"
)

// StudentConflictConstraint rejects candidates placing an offering into a
// slot that overlaps another assigned offering sharing an enrolled student,
// and rejects offerings whose enrolled students miss a prerequisite.
type StudentConflictConstraint struct {
	catalog *models.Catalog
}

// NewStudentConflictConstraint builds the evaluator.
func NewStudentConflictConstraint(catalog *models.Catalog) *StudentConflictConstraint {
	return &StudentConflictConstraint{catalog: catalog}
}

// Name identifies the constraint in violations.
func (c *StudentConflictConstraint) Name() string { return "student_conflict" }

// IsSatisfied checks the candidate against the partial assignment.
func (c *StudentConflictConstraint) IsSatisfied(a *Assignment, variableID string, candidate Candidate) *Violation {
	offering, ok := c.catalog.Offerings[variableID]
	if !ok {
		return c.violation(variableID, fmt.Sprintf("unknown offering %s", variableID))
	}
	slot, ok := c.catalog.TimeSlots[candidate.TimeSlotID]
	if !ok {
		return c.violation(variableID, fmt.Sprintf("unknown time slot %s", candidate.TimeSlotID))
	}

	for _, prereq := range offering.PrerequisiteIDs {
		for _, studentID := range offering.StudentIDs {
			student, ok := c.catalog.Students[studentID]
			if !ok {
				continue
			}
			if !student.HasCompleted(prereq) {
				return c.violation(variableID, fmt.Sprintf("student %s missing prerequisite %s for offering %s", studentID, prereq, variableID))
			}
		}
	}

	enrolled := make(map[string]struct{}, len(offering.StudentIDs))
	for _, id := range offering.StudentIDs {
		enrolled[id] = struct{}{}
	}

	for _, otherID := range a.VariableIDs() {
		if otherID == variableID {
			continue
		}
		other, ok := c.catalog.Offerings[otherID]
		if !ok {
			continue
		}
		shared := ""
		for _, studentID := range other.StudentIDs {
			if _, ok := enrolled[studentID]; ok {
				shared = studentID
				break
			}
		}
		if shared == "" {
			continue
		}
		bound, _ := a.Get(otherID)
		otherSlot, ok := c.catalog.TimeSlots[bound.TimeSlotID]
		if ok && slot.Overlaps(otherSlot) {
			return c.violation(variableID, fmt.Sprintf("student %s has overlapping enrollment in offering %s", shared, otherID))
		}
	}

	return nil
}

// IsGloballySatisfied re-verifies every binding of a complete assignment.
func (c *StudentConflictConstraint) IsGloballySatisfied(a *Assignment) []Violation {
	return checkEachBinding(c, a)
}

func (c *StudentConflictConstraint) violation(variableID, reason string) *Violation {
	return &Violation{Constraint: c.Name(), VariableID: variableID, Reason: reason}
}
