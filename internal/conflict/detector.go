package conflict

import (
	"fmt"
	"time"

	"github.com/noah-isme/course-scheduler-api/internal/models"
)

// Policy holds the static limits schedules are audited against.
type Policy struct {
	// Allowed scheduling window in minutes from midnight, half-open.
	WindowStartMinute int
	WindowEndMinute   int
}

// DefaultPolicy is the 08:00-21:00 scheduling window.
func DefaultPolicy() Policy {
	return Policy{WindowStartMinute: 8 * 60, WindowEndMinute: 21 * 60}
}

// Detector scans committed schedules pairwise and against policy limits. It
// runs independently of the solver and only reads the catalog snapshot.
type Detector struct {
	catalog *models.Catalog
	policy  Policy
}

// NewDetector builds a detector over the catalog snapshot.
func NewDetector(catalog *models.Catalog, policy Policy) *Detector {
	if policy.WindowEndMinute <= policy.WindowStartMinute {
		policy = DefaultPolicy()
	}
	return &Detector{catalog: catalog, policy: policy}
}

// DetectForSchedule runs the incremental path for one schedule against the
// rest of the committed set.
func (d *Detector) DetectForSchedule(schedule models.Schedule, all []models.Schedule, now time.Time) []models.ScheduleConflict {
	var conflicts []models.ScheduleConflict
	for _, other := range all {
		if other.ID == schedule.ID {
			continue
		}
		conflicts = append(conflicts, d.checkPair(schedule, other, now)...)
	}
	conflicts = append(conflicts, d.checkPolicies(schedule, now)...)
	conflicts = append(conflicts, d.checkTeacherWorkload(schedule.TeacherID, all, now)...)
	return dedupe(conflicts)
}

// DetectAll runs the full-system sweep. Both paths share the same
// per-schedule check logic; the sweep just visits each pair once.
func (d *Detector) DetectAll(all []models.Schedule, now time.Time) []models.ScheduleConflict {
	var conflicts []models.ScheduleConflict
	for i := range all {
		for j := i + 1; j < len(all); j++ {
			conflicts = append(conflicts, d.checkPair(all[i], all[j], now)...)
		}
		conflicts = append(conflicts, d.checkPolicies(all[i], now)...)
	}

	seen := make(map[string]struct{})
	for _, s := range all {
		if _, ok := seen[s.TeacherID]; ok {
			continue
		}
		seen[s.TeacherID] = struct{}{}
		conflicts = append(conflicts, d.checkTeacherWorkload(s.TeacherID, all, now)...)
	}
	return dedupe(conflicts)
}

// checkPair surfaces double-bookings and student overlaps between two
// schedules sharing the same date.
func (d *Detector) checkPair(a, b models.Schedule, now time.Time) []models.ScheduleConflict {
	if !a.SameDate(b) {
		return nil
	}
	slotA, okA := d.catalog.TimeSlots[a.TimeSlotID]
	slotB, okB := d.catalog.TimeSlots[b.TimeSlotID]
	if !okA || !okB || !slotA.Overlaps(slotB) {
		return nil
	}

	var conflicts []models.ScheduleConflict

	if a.TeacherID != "" && a.TeacherID == b.TeacherID {
		conflicts = append(conflicts, d.pairConflict(
			models.ConflictTeacherDoubleBooking,
			models.SeverityHigh,
			models.EntityTeacher,
			a.TeacherID,
			a, b, now,
			fmt.Sprintf("teacher %s booked for overlapping schedules %s and %s", a.TeacherID, a.ID, b.ID),
		))
	}

	if a.ClassroomID != "" && a.ClassroomID == b.ClassroomID {
		conflicts = append(conflicts, d.pairConflict(
			models.ConflictClassroomDoubleBooking,
			models.SeverityHigh,
			models.EntityClassroom,
			a.ClassroomID,
			a, b, now,
			fmt.Sprintf("classroom %s booked for overlapping schedules %s and %s", a.ClassroomID, a.ID, b.ID),
		))
	}

	for _, studentID := range d.sharedStudents(a.OfferingID, b.OfferingID) {
		conflicts = append(conflicts, d.pairConflict(
			models.ConflictStudentScheduleConflict,
			models.SeverityMedium,
			models.EntityStudent,
			studentID,
			a, b, now,
			fmt.Sprintf("student %s enrolled in overlapping offerings %s and %s", studentID, a.OfferingID, b.OfferingID),
		))
	}

	return conflicts
}

// checkPolicies audits one schedule against static catalog and policy data.
func (d *Detector) checkPolicies(s models.Schedule, now time.Time) []models.ScheduleConflict {
	var conflicts []models.ScheduleConflict

	offering, hasOffering := d.catalog.Offerings[s.OfferingID]
	room, hasRoom := d.catalog.Classrooms[s.ClassroomID]
	if hasOffering && hasRoom && offering.Enrollment > room.Capacity {
		conflicts = append(conflicts, d.singleConflict(
			models.ConflictCapacityExceeded,
			models.SeverityMedium,
			models.EntityClassroom,
			room.ID,
			s, now,
			fmt.Sprintf("enrollment %d exceeds classroom %s capacity %d", offering.Enrollment, room.ID, room.Capacity),
		))
	}

	if hasOffering {
		for _, prereq := range offering.PrerequisiteIDs {
			for _, studentID := range offering.StudentIDs {
				student, ok := d.catalog.Students[studentID]
				if !ok || student.HasCompleted(prereq) {
					continue
				}
				conflicts = append(conflicts, d.singleConflict(
					models.ConflictPrerequisiteNotMet,
					models.SeverityLow,
					models.EntityStudent,
					studentID,
					s, now,
					fmt.Sprintf("student %s missing prerequisite %s for offering %s", studentID, prereq, offering.ID),
				))
			}
		}
	}

	if slot, ok := d.catalog.TimeSlots[s.TimeSlotID]; ok {
		if slot.StartMinute < d.policy.WindowStartMinute || slot.EndMinute > d.policy.WindowEndMinute {
			c := models.ScheduleConflict{
				Type:             models.ConflictTimeSlotConflict,
				Severity:         models.SeverityMedium,
				Schedule1ID:      ref(s.ID),
				Description:      fmt.Sprintf("time slot %s outside allowed scheduling window", slot.ID),
				DetectedAt:       now,
				ResolutionStatus: models.ResolutionPending,
			}
			conflicts = append(conflicts, c)
		}
	}

	return conflicts
}

// checkTeacherWorkload flags teachers whose aggregate scheduled minutes
// exceed their declared weekly cap.
func (d *Detector) checkTeacherWorkload(teacherID string, all []models.Schedule, now time.Time) []models.ScheduleConflict {
	teacher, ok := d.catalog.Teachers[teacherID]
	if !ok || teacher.MaxWeeklyHours <= 0 {
		return nil
	}

	total := 0
	for _, s := range all {
		if s.TeacherID != teacherID {
			continue
		}
		if slot, ok := d.catalog.TimeSlots[s.TimeSlotID]; ok {
			total += slot.DurationMinutes()
		}
	}
	if total <= teacher.MaxWeeklyHours*60 {
		return nil
	}

	entityType := models.EntityTeacher
	return []models.ScheduleConflict{{
		Type:             models.ConflictTeacherWorkloadExceeded,
		Severity:         models.SeverityMedium,
		EntityType:       &entityType,
		EntityID:         ref(teacherID),
		Description:      fmt.Sprintf("teacher %s scheduled %d minutes, above the %d hour cap", teacherID, total, teacher.MaxWeeklyHours),
		DetectedAt:       now,
		ResolutionStatus: models.ResolutionPending,
	}}
}

func (d *Detector) sharedStudents(offeringA, offeringB string) []string {
	a, okA := d.catalog.Offerings[offeringA]
	b, okB := d.catalog.Offerings[offeringB]
	if !okA || !okB {
		return nil
	}
	inA := make(map[string]struct{}, len(a.StudentIDs))
	for _, id := range a.StudentIDs {
		inA[id] = struct{}{}
	}
	var shared []string
	for _, id := range b.StudentIDs {
		if _, ok := inA[id]; ok {
			shared = append(shared, id)
		}
	}
	return shared
}

func (d *Detector) pairConflict(t models.ConflictType, severity models.ConflictSeverity, entityType models.ConflictEntityType, entityID string, a, b models.Schedule, now time.Time, description string) models.ScheduleConflict {
	return models.ScheduleConflict{
		Type:             t,
		Severity:         severity,
		EntityType:       &entityType,
		EntityID:         ref(entityID),
		Schedule1ID:      ref(a.ID),
		Schedule2ID:      ref(b.ID),
		Description:      description,
		DetectedAt:       now,
		ResolutionStatus: models.ResolutionPending,
	}
}

func (d *Detector) singleConflict(t models.ConflictType, severity models.ConflictSeverity, entityType models.ConflictEntityType, entityID string, s models.Schedule, now time.Time, description string) models.ScheduleConflict {
	return models.ScheduleConflict{
		Type:             t,
		Severity:         severity,
		EntityType:       &entityType,
		EntityID:         ref(entityID),
		Schedule1ID:      ref(s.ID),
		Description:      description,
		DetectedAt:       now,
		ResolutionStatus: models.ResolutionPending,
	}
}

// dedupe keeps the first conflict for each deduplication key within a batch.
func dedupe(conflicts []models.ScheduleConflict) []models.ScheduleConflict {
	seen := make(map[string]struct{}, len(conflicts))
	out := conflicts[:0]
	for _, c := range conflicts {
		key := c.DedupKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

func ref(v string) *string {
	return &v
}
