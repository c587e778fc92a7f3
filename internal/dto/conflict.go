package dto

// DetectConflictsRequest triggers incremental or full-sweep detection.
type DetectConflictsRequest struct {
	ScheduleID string `json:"scheduleId" validate:"required_without=All"`
	TermID     string `json:"termId" validate:"required"`
	All        bool   `json:"all"`
}

// ResolveConflictRequest closes a conflict with an explanation.
type ResolveConflictRequest struct {
	Notes string `json:"notes" validate:"required,min=3"`
}

// IgnoreConflictRequest dismisses a non-critical conflict.
type IgnoreConflictRequest struct {
	Reason string `json:"reason" validate:"required,min=3"`
}

// DeferConflictRequest postpones a conflict.
type DeferConflictRequest struct {
	Reason string `json:"reason" validate:"required,min=3"`
}

// ConflictListQuery filters the conflict listing endpoints.
type ConflictListQuery struct {
	Status     string `form:"status" validate:"omitempty,oneof=PENDING RESOLVED IGNORED DEFERRED"`
	Severity   string `form:"severity" validate:"omitempty,oneof=CRITICAL HIGH MEDIUM LOW"`
	Type       string `form:"type"`
	EntityType string `form:"entityType" validate:"omitempty,oneof=TEACHER CLASSROOM STUDENT OFFERING"`
	EntityID   string `form:"entityId"`
	ScheduleID string `form:"scheduleId"`
	Page       int    `form:"page" validate:"omitempty,min=1"`
	PageSize   int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}
