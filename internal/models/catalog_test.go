package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeSlotOverlapsHalfOpen(t *testing.T) {
	nine := TimeSlot{DayOfWeek: 1, StartMinute: 9 * 60, EndMinute: 10 * 60}
	nineThirty := TimeSlot{DayOfWeek: 1, StartMinute: 9*60 + 30, EndMinute: 10*60 + 30}
	ten := TimeSlot{DayOfWeek: 1, StartMinute: 10 * 60, EndMinute: 11 * 60}
	tuesday := TimeSlot{DayOfWeek: 2, StartMinute: 9 * 60, EndMinute: 10 * 60}

	assert.True(t, nine.Overlaps(nineThirty))
	assert.True(t, nineThirty.Overlaps(nine))
	assert.False(t, nine.Overlaps(ten), "touching endpoints must not overlap")
	assert.False(t, ten.Overlaps(nine))
	assert.False(t, nine.Overlaps(tuesday), "different weekdays never overlap")
}

func TestTeacherAvailableAtRequiresContainment(t *testing.T) {
	teacher := Teacher{Availability: []AvailabilityWindow{
		{DayOfWeek: 1, StartMinute: 9 * 60, EndMinute: 12 * 60},
	}}

	assert.True(t, teacher.AvailableAt(1, 9*60, 10*60))
	assert.True(t, teacher.AvailableAt(1, 11*60, 12*60))
	assert.False(t, teacher.AvailableAt(1, 8*60, 10*60), "window starting early is not covered")
	assert.False(t, teacher.AvailableAt(1, 11*60, 13*60), "window running late is not covered")
	assert.False(t, teacher.AvailableAt(2, 9*60, 10*60))
}

func TestClassroomHasEquipment(t *testing.T) {
	room := Classroom{Equipment: []string{"projector", "whiteboard"}}

	assert.True(t, room.HasEquipment(nil))
	assert.True(t, room.HasEquipment([]string{"projector"}))
	assert.False(t, room.HasEquipment([]string{"projector", "fume-hood"}))
}

func TestScheduleSameDateIgnoresTime(t *testing.T) {
	morning := Schedule{Date: time.Date(2026, 9, 7, 8, 0, 0, 0, time.UTC)}
	evening := Schedule{Date: time.Date(2026, 9, 7, 20, 0, 0, 0, time.UTC)}
	nextDay := Schedule{Date: time.Date(2026, 9, 8, 8, 0, 0, 0, time.UTC)}

	assert.True(t, morning.SameDate(evening))
	assert.False(t, morning.SameDate(nextDay))
}

func TestNewCatalogIndexesByID(t *testing.T) {
	catalog := NewCatalog(
		[]Teacher{{ID: "teacher-1"}},
		[]Classroom{{ID: "room-1"}},
		[]TimeSlot{{ID: "slot-1"}},
		[]CourseOffering{{ID: "off-1"}},
		[]StudentRecord{{ID: "student-1"}},
	)

	assert.Contains(t, catalog.Teachers, "teacher-1")
	assert.Contains(t, catalog.Classrooms, "room-1")
	assert.Contains(t, catalog.TimeSlots, "slot-1")
	assert.Contains(t, catalog.Offerings, "off-1")
	assert.Contains(t, catalog.Students, "student-1")
}
