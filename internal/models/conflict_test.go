package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDedupKeyIgnoresSchedulePairOrder(t *testing.T) {
	entityType := EntityTeacher
	a := ScheduleConflict{
		Type:        ConflictTeacherDoubleBooking,
		EntityType:  &entityType,
		EntityID:    strPtr("teacher-1"),
		Schedule1ID: strPtr("sched-1"),
		Schedule2ID: strPtr("sched-2"),
	}
	b := a
	b.Schedule1ID = strPtr("sched-2")
	b.Schedule2ID = strPtr("sched-1")

	assert.Equal(t, a.DedupKey(), b.DedupKey())
}

func TestDedupKeyDistinguishesTypeAndEntity(t *testing.T) {
	teacherType := EntityTeacher
	classroomType := EntityClassroom
	base := ScheduleConflict{
		Type:        ConflictTeacherDoubleBooking,
		EntityType:  &teacherType,
		EntityID:    strPtr("teacher-1"),
		Schedule1ID: strPtr("sched-1"),
		Schedule2ID: strPtr("sched-2"),
	}

	otherType := base
	otherType.Type = ConflictClassroomDoubleBooking
	otherType.EntityType = &classroomType
	otherType.EntityID = strPtr("room-1")
	assert.NotEqual(t, base.DedupKey(), otherType.DedupKey())

	otherEntity := base
	otherEntity.EntityID = strPtr("teacher-2")
	assert.NotEqual(t, base.DedupKey(), otherEntity.DedupKey())
}

func TestDedupKeyGlobalWhenNoEntity(t *testing.T) {
	c := ScheduleConflict{
		Type:        ConflictTimeSlotConflict,
		Schedule1ID: strPtr("sched-1"),
	}
	assert.Contains(t, c.DedupKey(), "global")
}

func TestRequiresImmediateAttention(t *testing.T) {
	assert.True(t, ScheduleConflict{Severity: SeverityCritical}.RequiresImmediateAttention())
	assert.True(t, ScheduleConflict{Severity: SeverityHigh}.RequiresImmediateAttention())
	assert.False(t, ScheduleConflict{Severity: SeverityMedium}.RequiresImmediateAttention())
	assert.False(t, ScheduleConflict{Severity: SeverityLow}.RequiresImmediateAttention())
}

func TestIsOverdueOnlyForPending(t *testing.T) {
	now := time.Now()
	detected := now.Add(-96 * time.Hour)
	threshold := 72 * time.Hour

	pending := ScheduleConflict{ResolutionStatus: ResolutionPending, DetectedAt: detected}
	assert.True(t, pending.IsOverdue(now, threshold))

	fresh := ScheduleConflict{ResolutionStatus: ResolutionPending, DetectedAt: now.Add(-time.Hour)}
	assert.False(t, fresh.IsOverdue(now, threshold))

	resolved := ScheduleConflict{ResolutionStatus: ResolutionResolved, DetectedAt: detected}
	assert.False(t, resolved.IsOverdue(now, threshold))
}

func TestResolutionStatusTerminal(t *testing.T) {
	assert.True(t, ResolutionResolved.Terminal())
	assert.True(t, ResolutionIgnored.Terminal())
	assert.False(t, ResolutionPending.Terminal())
	assert.False(t, ResolutionDeferred.Terminal())
}

func strPtr(v string) *string {
	return &v
}
