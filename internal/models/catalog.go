package models

// SubjectSpecialization declares a teacher's qualification for a subject.
type SubjectSpecialization struct {
	Subject     string  `db:"subject" json:"subject"`
	Proficiency float64 `db:"proficiency" json:"proficiency"`
}

// AvailabilityWindow is a weekly recurring window in which a teacher may teach.
// Start and End are minutes from midnight; the window is half-open [Start, End).
type AvailabilityWindow struct {
	DayOfWeek   int `db:"day_of_week" json:"day_of_week"`
	StartMinute int `db:"start_minute" json:"start_minute"`
	EndMinute   int `db:"end_minute" json:"end_minute"`
}

// Teacher represents an instructor record eligible for scheduling.
type Teacher struct {
	ID              string                  `db:"id" json:"id"`
	FullName        string                  `db:"full_name" json:"full_name"`
	Email           string                  `db:"email" json:"email"`
	Specializations []SubjectSpecialization `json:"specializations"`
	MaxWeeklyHours  int                     `db:"max_weekly_hours" json:"max_weekly_hours"`
	Availability    []AvailabilityWindow    `json:"availability"`
	Active          bool                    `db:"active" json:"active"`
}

// SpecializationFor returns the teacher's specialization for a subject, if declared.
func (t Teacher) SpecializationFor(subject string) (SubjectSpecialization, bool) {
	for _, spec := range t.Specializations {
		if spec.Subject == subject {
			return spec, true
		}
	}
	return SubjectSpecialization{}, false
}

// AvailableAt reports whether the window [startMinute, endMinute) on the given
// day falls entirely inside one of the teacher's availability windows.
func (t Teacher) AvailableAt(dayOfWeek, startMinute, endMinute int) bool {
	for _, w := range t.Availability {
		if w.DayOfWeek == dayOfWeek && startMinute >= w.StartMinute && endMinute <= w.EndMinute {
			return true
		}
	}
	return false
}

// ClassroomType categorises rooms for course requirements.
type ClassroomType string

// Supported classroom types.
const (
	ClassroomTypeLecture  ClassroomType = "LECTURE"
	ClassroomTypeLab      ClassroomType = "LAB"
	ClassroomTypeSeminar  ClassroomType = "SEMINAR"
	ClassroomTypeComputer ClassroomType = "COMPUTER"
)

// Classroom represents a bookable room.
type Classroom struct {
	ID        string        `db:"id" json:"id"`
	Name      string        `db:"name" json:"name"`
	Capacity  int           `db:"capacity" json:"capacity"`
	Type      ClassroomType `db:"room_type" json:"room_type"`
	Equipment []string      `json:"equipment"`
	Active    bool          `db:"active" json:"active"`
}

// HasEquipment reports whether the room provides every required item.
func (c Classroom) HasEquipment(required []string) bool {
	for _, item := range required {
		found := false
		for _, have := range c.Equipment {
			if have == item {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// TimeSlot is a weekly recurring teaching block. Start and End are minutes
// from midnight and the block is half-open [Start, End).
type TimeSlot struct {
	ID          string `db:"id" json:"id"`
	DayOfWeek   int    `db:"day_of_week" json:"day_of_week"`
	StartMinute int    `db:"start_minute" json:"start_minute"`
	EndMinute   int    `db:"end_minute" json:"end_minute"`
	Active      bool   `db:"active" json:"active"`
}

// DurationMinutes returns the slot length in minutes.
func (s TimeSlot) DurationMinutes() int {
	return s.EndMinute - s.StartMinute
}

// Overlaps reports half-open interval overlap on the same weekday; touching
// endpoints do not overlap.
func (s TimeSlot) Overlaps(other TimeSlot) bool {
	if s.DayOfWeek != other.DayOfWeek {
		return false
	}
	return s.StartMinute < other.EndMinute && other.StartMinute < s.EndMinute
}

// CourseOffering is one course instance requiring a teacher, room and slot.
type CourseOffering struct {
	ID                string        `db:"id" json:"id"`
	CourseID          string        `db:"course_id" json:"course_id"`
	CourseCode        string        `db:"course_code" json:"course_code"`
	Title             string        `db:"title" json:"title"`
	Subject           string        `db:"subject" json:"subject"`
	MaxEnrollment     int           `db:"max_enrollment" json:"max_enrollment"`
	Enrollment        int           `db:"enrollment" json:"enrollment"`
	RequiredRoomType  ClassroomType `db:"required_room_type" json:"required_room_type"`
	RequiredEquipment []string      `json:"required_equipment"`
	PrerequisiteIDs   []string      `json:"prerequisite_ids"`
	StudentIDs        []string      `json:"student_ids"`
}

// StudentRecord carries the enrollment history needed for prerequisite and
// overlap checks.
type StudentRecord struct {
	ID                 string   `db:"id" json:"id"`
	FullName           string   `db:"full_name" json:"full_name"`
	CompletedCourseIDs []string `json:"completed_course_ids"`
}

// HasCompleted reports whether the student finished the given course.
func (s StudentRecord) HasCompleted(courseID string) bool {
	for _, id := range s.CompletedCourseIDs {
		if id == courseID {
			return true
		}
	}
	return false
}

// Catalog is the immutable snapshot of reference data for one planning run.
// All cross-entity references are id-based lookups into these maps.
type Catalog struct {
	Teachers   map[string]Teacher
	Classrooms map[string]Classroom
	TimeSlots  map[string]TimeSlot
	Offerings  map[string]CourseOffering
	Students   map[string]StudentRecord
}

// NewCatalog indexes the supplied records by id.
func NewCatalog(teachers []Teacher, classrooms []Classroom, slots []TimeSlot, offerings []CourseOffering, students []StudentRecord) *Catalog {
	c := &Catalog{
		Teachers:   make(map[string]Teacher, len(teachers)),
		Classrooms: make(map[string]Classroom, len(classrooms)),
		TimeSlots:  make(map[string]TimeSlot, len(slots)),
		Offerings:  make(map[string]CourseOffering, len(offerings)),
		Students:   make(map[string]StudentRecord, len(students)),
	}
	for _, t := range teachers {
		c.Teachers[t.ID] = t
	}
	for _, r := range classrooms {
		c.Classrooms[r.ID] = r
	}
	for _, s := range slots {
		c.TimeSlots[s.ID] = s
	}
	for _, o := range offerings {
		c.Offerings[o.ID] = o
	}
	for _, s := range students {
		c.Students[s.ID] = s
	}
	return c
}
