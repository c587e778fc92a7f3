package models

import "time"

// Schedule is a committed assignment of an offering to a teacher, classroom
// and time slot on a concrete date. Committed schedules may originate from
// the solver, manual entry, or later edits; the conflict detection engine
// treats them all the same way.
type Schedule struct {
	ID          string    `db:"id" json:"id"`
	OfferingID  string    `db:"offering_id" json:"offering_id"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	ClassroomID string    `db:"classroom_id" json:"classroom_id"`
	TimeSlotID  string    `db:"time_slot_id" json:"time_slot_id"`
	Date        time.Time `db:"scheduled_date" json:"date"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// SameDate reports whether two schedules fall on the same calendar day.
func (s Schedule) SameDate(other Schedule) bool {
	y1, m1, d1 := s.Date.Date()
	y2, m2, d2 := other.Date.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// ScheduleFilter describes query params for listing committed schedules.
type ScheduleFilter struct {
	OfferingID  string
	TeacherID   string
	ClassroomID string
	TimeSlotID  string
	DateFrom    *time.Time
	DateTo      *time.Time
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
