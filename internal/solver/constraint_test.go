package solver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-scheduler-api/internal/models"
)

func constraintCatalog() *models.Catalog {
	teachers := []models.Teacher{
		{
			ID: "teacher-1", Active: true, MaxWeeklyHours: 10,
			Specializations: []models.SubjectSpecialization{{Subject: "math", Proficiency: 0.9}},
			Availability:    []models.AvailabilityWindow{{DayOfWeek: 1, StartMinute: 8 * 60, EndMinute: 18 * 60}},
		},
	}
	classrooms := []models.Classroom{
		{ID: "room-20", Capacity: 20, Type: models.ClassroomTypeLecture, Active: true},
		{ID: "room-lab", Capacity: 30, Type: models.ClassroomTypeLab, Equipment: []string{"fume-hood"}, Active: true},
	}
	slots := []models.TimeSlot{
		{ID: "slot-0900", DayOfWeek: 1, StartMinute: 9 * 60, EndMinute: 10 * 60, Active: true},
		{ID: "slot-1000", DayOfWeek: 1, StartMinute: 10 * 60, EndMinute: 11 * 60, Active: true},
		{ID: "slot-1100", DayOfWeek: 1, StartMinute: 11 * 60, EndMinute: 12 * 60, Active: true},
		{ID: "slot-1400", DayOfWeek: 1, StartMinute: 14 * 60, EndMinute: 15 * 60, Active: true},
	}
	offerings := []models.CourseOffering{
		{ID: "off-1", Subject: "math", MaxEnrollment: 25, Enrollment: 22},
		{ID: "off-2", Subject: "math", MaxEnrollment: 20, Enrollment: 15},
		{ID: "off-3", Subject: "math", MaxEnrollment: 20, Enrollment: 15},
	}
	return models.NewCatalog(teachers, classrooms, slots, offerings, nil)
}

func candidate(teacherID, classroomID, slotID string) Candidate {
	return Candidate{TeacherID: teacherID, ClassroomID: classroomID, TimeSlotID: slotID}
}

func TestCapacityConstraintRejectsOverfullRoom(t *testing.T) {
	catalog := constraintCatalog()
	c := NewClassroomCapacityConstraint(catalog, false, 0)
	a := NewAssignment(1)

	// 22 enrolled into a 20-seat room.
	v := c.IsSatisfied(a, "off-1", candidate("teacher-1", "room-20", "slot-0900"))
	require.NotNil(t, v)
	assert.Contains(t, v.Reason, "exceeds")
}

func TestCapacityConstraintAllowsBoundedOversubscription(t *testing.T) {
	catalog := constraintCatalog()
	// Limit becomes floor(20 * 1.1) = 22 seats.
	c := NewClassroomCapacityConstraint(catalog, true, 1.1)
	a := NewAssignment(1)

	assert.Nil(t, c.IsSatisfied(a, "off-1", candidate("teacher-1", "room-20", "slot-0900")))

	over := catalog.Offerings["off-1"]
	over.Enrollment = 23
	catalog.Offerings["off-1"] = over
	assert.NotNil(t, c.IsSatisfied(a, "off-1", candidate("teacher-1", "room-20", "slot-0900")))
}

func TestCapacityConstraintEnforcesRoomType(t *testing.T) {
	catalog := constraintCatalog()
	off := catalog.Offerings["off-2"]
	off.RequiredRoomType = models.ClassroomTypeLab
	off.RequiredEquipment = []string{"fume-hood"}
	catalog.Offerings["off-2"] = off

	c := NewClassroomCapacityConstraint(catalog, false, 0)
	a := NewAssignment(1)

	assert.NotNil(t, c.IsSatisfied(a, "off-2", candidate("teacher-1", "room-20", "slot-0900")))
	assert.Nil(t, c.IsSatisfied(a, "off-2", candidate("teacher-1", "room-lab", "slot-0900")))
}

func TestCapacityConstraintRejectsRoomDoubleBooking(t *testing.T) {
	catalog := constraintCatalog()
	c := NewClassroomCapacityConstraint(catalog, false, 0)

	a := NewAssignment(2)
	a.Bind("off-2", candidate("teacher-1", "room-20", "slot-0900"))

	v := c.IsSatisfied(a, "off-3", candidate("teacher-1", "room-20", "slot-0900"))
	require.NotNil(t, v)
	assert.Contains(t, v.Reason, "occupied")

	assert.Nil(t, c.IsSatisfied(a, "off-3", candidate("teacher-1", "room-20", "slot-1000")))
}

func TestTeacherConstraintRejectsOutsideAvailability(t *testing.T) {
	catalog := constraintCatalog()
	teacher := catalog.Teachers["teacher-1"]
	teacher.Availability = []models.AvailabilityWindow{{DayOfWeek: 1, StartMinute: 9 * 60, EndMinute: 11 * 60}}
	catalog.Teachers["teacher-1"] = teacher

	c := NewTeacherAvailabilityConstraint(catalog, 0, 0)
	a := NewAssignment(1)

	assert.Nil(t, c.IsSatisfied(a, "off-1", candidate("teacher-1", "room-20", "slot-0900")))
	assert.NotNil(t, c.IsSatisfied(a, "off-1", candidate("teacher-1", "room-20", "slot-1400")))
}

func TestTeacherConstraintRejectsOverlappingSlots(t *testing.T) {
	catalog := constraintCatalog()
	c := NewTeacherAvailabilityConstraint(catalog, 0, 0)

	a := NewAssignment(2)
	a.Bind("off-2", candidate("teacher-1", "room-20", "slot-0900"))

	v := c.IsSatisfied(a, "off-3", candidate("teacher-1", "room-lab", "slot-0900"))
	require.NotNil(t, v)
	assert.Contains(t, v.Reason, "overlapping")
}

func TestTeacherConstraintWeeklyHoursCap(t *testing.T) {
	catalog := constraintCatalog()
	teacher := catalog.Teachers["teacher-1"]
	teacher.MaxWeeklyHours = 1
	catalog.Teachers["teacher-1"] = teacher

	c := NewTeacherAvailabilityConstraint(catalog, 0, 0)
	a := NewAssignment(2)
	a.Bind("off-2", candidate("teacher-1", "room-20", "slot-0900"))

	v := c.IsSatisfied(a, "off-3", candidate("teacher-1", "room-lab", "slot-1400"))
	require.NotNil(t, v)
	assert.Contains(t, v.Reason, "weekly hours")
}

func TestTeacherConstraintConsecutiveHoursLimit(t *testing.T) {
	catalog := constraintCatalog()
	// Two back-to-back hours allowed, three are not; a 10 minute break
	// between classes is the minimum to reset the chain.
	c := NewTeacherAvailabilityConstraint(catalog, 2, 10*time.Minute)

	a := NewAssignment(3)
	a.Bind("off-1", candidate("teacher-1", "room-20", "slot-0900"))
	a.Bind("off-2", candidate("teacher-1", "room-lab", "slot-1000"))

	v := c.IsSatisfied(a, "off-3", candidate("teacher-1", "room-20", "slot-1100"))
	require.NotNil(t, v)
	assert.Contains(t, v.Reason, "consecutive")

	assert.Nil(t, c.IsSatisfied(a, "off-3", candidate("teacher-1", "room-20", "slot-1400")))
}

func TestStudentConstraintRejectsOverlappingEnrollment(t *testing.T) {
	catalog := constraintCatalog()
	off2 := catalog.Offerings["off-2"]
	off2.StudentIDs = []string{"student-1", "student-2"}
	catalog.Offerings["off-2"] = off2
	off3 := catalog.Offerings["off-3"]
	off3.StudentIDs = []string{"student-2"}
	catalog.Offerings["off-3"] = off3

	c := NewStudentConflictConstraint(catalog)
	a := NewAssignment(2)
	a.Bind("off-2", candidate("teacher-1", "room-20", "slot-0900"))

	v := c.IsSatisfied(a, "off-3", candidate("teacher-1", "room-lab", "slot-0900"))
	require.NotNil(t, v)
	assert.Contains(t, v.Reason, "student-2")

	assert.Nil(t, c.IsSatisfied(a, "off-3", candidate("teacher-1", "room-lab", "slot-1000")))
}

func TestStudentConstraintRejectsMissingPrerequisite(t *testing.T) {
	catalog := constraintCatalog()
	catalog.Students["student-1"] = models.StudentRecord{ID: "student-1", CompletedCourseIDs: []string{"course-intro"}}
	catalog.Students["student-2"] = models.StudentRecord{ID: "student-2"}

	off := catalog.Offerings["off-1"]
	off.PrerequisiteIDs = []string{"course-intro"}
	off.StudentIDs = []string{"student-1", "student-2"}
	catalog.Offerings["off-1"] = off

	c := NewStudentConflictConstraint(catalog)
	a := NewAssignment(1)

	v := c.IsSatisfied(a, "off-1", candidate("teacher-1", "room-20", "slot-0900"))
	require.NotNil(t, v)
	assert.Contains(t, v.Reason, "missing prerequisite")

	catalog.Students["student-2"] = models.StudentRecord{ID: "student-2", CompletedCourseIDs: []string{"course-intro"}}
	assert.Nil(t, c.IsSatisfied(a, "off-1", candidate("teacher-1", "room-20", "slot-0900")))
}

func TestGlobalCheckMatchesIncrementalChecks(t *testing.T) {
	catalog := constraintCatalog()
	set := NewConstraintSet(
		NewTeacherAvailabilityConstraint(catalog, 0, 0),
		NewClassroomCapacityConstraint(catalog, false, 0),
	)

	a := NewAssignment(2)
	a.Bind("off-2", candidate("teacher-1", "room-20", "slot-0900"))
	a.Bind("off-3", candidate("teacher-1", "room-lab", "slot-1000"))
	assert.True(t, set.GloballySatisfied(a))

	b := NewAssignment(2)
	b.Bind("off-2", candidate("teacher-1", "room-20", "slot-0900"))
	b.Bind("off-3", candidate("teacher-1", "room-lab", "slot-0900"))
	assert.False(t, set.GloballySatisfied(b))
	assert.NotEmpty(t, set.CheckComplete(b))
}
