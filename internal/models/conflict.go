package models

import (
	"sort"
	"strings"
	"time"
)

// ConflictType classifies a detected scheduling violation.
type ConflictType string

// Closed set of conflict types the detection engine can emit.
const (
	ConflictTeacherDoubleBooking      ConflictType = "TEACHER_DOUBLE_BOOKING"
	ConflictClassroomDoubleBooking    ConflictType = "CLASSROOM_DOUBLE_BOOKING"
	ConflictStudentScheduleConflict   ConflictType = "STUDENT_SCHEDULE_CONFLICT"
	ConflictCapacityExceeded          ConflictType = "CAPACITY_EXCEEDED"
	ConflictPrerequisiteNotMet        ConflictType = "PREREQUISITE_NOT_MET"
	ConflictEquipmentMismatch         ConflictType = "EQUIPMENT_MISMATCH"
	ConflictTimeSlotConflict          ConflictType = "TIME_SLOT_CONFLICT"
	ConflictDepartmentPolicyViolation ConflictType = "DEPARTMENT_POLICY_VIOLATION"
	ConflictTeacherWorkloadExceeded   ConflictType = "TEACHER_WORKLOAD_EXCEEDED"
)

// ConflictSeverity ranks how urgently a conflict needs attention.
type ConflictSeverity string

// Severity levels ordered from most to least urgent.
const (
	SeverityCritical ConflictSeverity = "CRITICAL"
	SeverityHigh     ConflictSeverity = "HIGH"
	SeverityMedium   ConflictSeverity = "MEDIUM"
	SeverityLow      ConflictSeverity = "LOW"
)

// ResolutionStatus is the lifecycle state of a detected conflict.
type ResolutionStatus string

// Resolution state machine values.
const (
	ResolutionPending  ResolutionStatus = "PENDING"
	ResolutionResolved ResolutionStatus = "RESOLVED"
	ResolutionIgnored  ResolutionStatus = "IGNORED"
	ResolutionDeferred ResolutionStatus = "DEFERRED"
)

// Terminal reports whether the status accepts no further transitions other
// than none; DEFERRED conflicts can be reopened, terminal ones cannot.
func (s ResolutionStatus) Terminal() bool {
	return s == ResolutionResolved || s == ResolutionIgnored
}

// ConflictEntityType names the kind of entity a conflict refers to.
type ConflictEntityType string

// Entity kinds a conflict can reference. A conflict without an entity
// reference is a global or time-policy conflict.
const (
	EntityTeacher   ConflictEntityType = "TEACHER"
	EntityClassroom ConflictEntityType = "CLASSROOM"
	EntityStudent   ConflictEntityType = "STUDENT"
	EntityOffering  ConflictEntityType = "OFFERING"
)

// ScheduleConflict is a detected violation between committed schedules or
// between a schedule and a policy limit.
type ScheduleConflict struct {
	ID               string              `db:"id" json:"id"`
	Type             ConflictType        `db:"conflict_type" json:"conflict_type"`
	Severity         ConflictSeverity    `db:"severity" json:"severity"`
	EntityType       *ConflictEntityType `db:"entity_type" json:"entity_type,omitempty"`
	EntityID         *string             `db:"entity_id" json:"entity_id,omitempty"`
	Schedule1ID      *string             `db:"schedule1_id" json:"schedule1_id,omitempty"`
	Schedule2ID      *string             `db:"schedule2_id" json:"schedule2_id,omitempty"`
	Description      string              `db:"description" json:"description"`
	DetectedAt       time.Time           `db:"detected_at" json:"detected_at"`
	ResolutionStatus ResolutionStatus    `db:"resolution_status" json:"resolution_status"`
	ResolvedAt       *time.Time          `db:"resolved_at" json:"resolved_at,omitempty"`
	ResolutionNotes  *string             `db:"resolution_notes" json:"resolution_notes,omitempty"`
	CreatedAt        time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time           `db:"updated_at" json:"updated_at"`
}

// RequiresImmediateAttention is true for CRITICAL and HIGH severities.
func (c ScheduleConflict) RequiresImmediateAttention() bool {
	return c.Severity == SeverityCritical || c.Severity == SeverityHigh
}

// IsOverdue reports whether a still-pending conflict has exceeded the
// attention threshold since detection.
func (c ScheduleConflict) IsOverdue(now time.Time, threshold time.Duration) bool {
	if c.ResolutionStatus != ResolutionPending {
		return false
	}
	return now.Sub(c.DetectedAt) > threshold
}

// DedupKey identifies equivalent conflicts: same type, same entity reference
// and the same schedule pair regardless of order.
func (c ScheduleConflict) DedupKey() string {
	parts := []string{string(c.Type)}
	if c.EntityType != nil && c.EntityID != nil {
		parts = append(parts, string(*c.EntityType)+":"+*c.EntityID)
	} else {
		parts = append(parts, "global")
	}
	var pair []string
	if c.Schedule1ID != nil {
		pair = append(pair, *c.Schedule1ID)
	}
	if c.Schedule2ID != nil {
		pair = append(pair, *c.Schedule2ID)
	}
	sort.Strings(pair)
	parts = append(parts, strings.Join(pair, "+"))
	return strings.Join(parts, "|")
}

// ConflictFilter describes the query surface for listing conflicts.
type ConflictFilter struct {
	Status     ResolutionStatus
	Severity   ConflictSeverity
	Type       ConflictType
	EntityType ConflictEntityType
	EntityID   string
	ScheduleID string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// ConflictStats aggregates conflict counts for analytics consumers.
type ConflictStats struct {
	Total      int                      `json:"total"`
	Pending    int                      `json:"pending"`
	ByType     map[ConflictType]int     `json:"by_type"`
	BySeverity map[ConflictSeverity]int `json:"by_severity"`
	ByStatus   map[ResolutionStatus]int `json:"by_status"`
}
