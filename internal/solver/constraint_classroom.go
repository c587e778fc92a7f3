package solver

import (
	"fmt"
	"math"

	"github.com/noah-isme/course-scheduler-api/internal/models"
)

// ClassroomCapacityConstraint rejects candidates whose room is too small for
// the offering's enrollment, lacks the required type or equipment, or is
// already occupied by an overlapping assignment.
type ClassroomCapacityConstraint struct {
	catalog               *models.Catalog
	allowOversubscription bool
	maxRatio              float64
}

// NewClassroomCapacityConstraint builds the evaluator. When oversubscription
// is allowed, enrollment may exceed capacity by at most (maxRatio-1)*capacity.
func NewClassroomCapacityConstraint(catalog *models.Catalog, allowOversubscription bool, maxRatio float64) *ClassroomCapacityConstraint {
	return &ClassroomCapacityConstraint{
		catalog:               catalog,
		allowOversubscription: allowOversubscription,
		maxRatio:              maxRatio,
	}
}

// Name identifies the constraint in violations.
func (c *ClassroomCapacityConstraint) Name() string { return "classroom_capacity" }

// IsSatisfied checks the candidate against the partial assignment.
func (c *ClassroomCapacityConstraint) IsSatisfied(a *Assignment, variableID string, candidate Candidate) *Violation {
	offering, ok := c.catalog.Offerings[variableID]
	if !ok {
		return c.violation(variableID, fmt.Sprintf("unknown offering %s", variableID))
	}
	room, ok := c.catalog.Classrooms[candidate.ClassroomID]
	if !ok {
		return c.violation(variableID, fmt.Sprintf("unknown classroom %s", candidate.ClassroomID))
	}
	slot, ok := c.catalog.TimeSlots[candidate.TimeSlotID]
	if !ok {
		return c.violation(variableID, fmt.Sprintf("unknown time slot %s", candidate.TimeSlotID))
	}

	limit := room.Capacity
	if c.allowOversubscription && c.maxRatio > 1 {
		limit = int(math.Floor(float64(room.Capacity) * c.maxRatio))
	}
	if offering.Enrollment > limit {
		return c.violation(variableID, fmt.Sprintf("enrollment %d exceeds classroom %s limit %d", offering.Enrollment, room.ID, limit))
	}

	if offering.RequiredRoomType != "" && room.Type != offering.RequiredRoomType {
		return c.violation(variableID, fmt.Sprintf("classroom %s type %s does not satisfy required %s", room.ID, room.Type, offering.RequiredRoomType))
	}
	if !room.HasEquipment(offering.RequiredEquipment) {
		return c.violation(variableID, fmt.Sprintf("classroom %s lacks required equipment", room.ID))
	}

	for _, id := range a.VariableIDs() {
		if id == variableID {
			continue
		}
		bound, _ := a.Get(id)
		if bound.ClassroomID != candidate.ClassroomID {
			continue
		}
		other, ok := c.catalog.TimeSlots[bound.TimeSlotID]
		if ok && slot.Overlaps(other) {
			return c.violation(variableID, fmt.Sprintf("classroom %s already occupied by offering %s", room.ID, id))
		}
	}

	return nil
}

// IsGloballySatisfied re-verifies every binding of a complete assignment.
func (c *ClassroomCapacityConstraint) IsGloballySatisfied(a *Assignment) []Violation {
	return checkEachBinding(c, a)
}

func (c *ClassroomCapacityConstraint) violation(variableID, reason string) *Violation {
	return &Violation{Constraint: c.Name(), VariableID: variableID, Reason: reason}
}
