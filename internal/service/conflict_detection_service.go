package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-scheduler-api/internal/conflict"
	"github.com/noah-isme/course-scheduler-api/internal/dto"
	"github.com/noah-isme/course-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/course-scheduler-api/pkg/errors"
)

type scheduleReader interface {
	ListAll(ctx context.Context) ([]models.Schedule, error)
	FindByID(ctx context.Context, id string) (*models.Schedule, error)
}

type conflictInserter interface {
	InsertIfAbsent(ctx context.Context, conflict *models.ScheduleConflict, window time.Duration) (bool, error)
}

type conflictNotifier interface {
	NotifyDetected(conflict models.ScheduleConflict)
}

type statsInvalidator interface {
	InvalidateConflictStats(ctx context.Context) error
}

// DetectionServiceConfig tunes deduplication and the scheduling window.
type DetectionServiceConfig struct {
	DedupWindow time.Duration
	WindowStart string
	WindowEnd   string
}

// ConflictDetectionService audits committed schedules for violations,
// persists new conflicts atomically and fans out notifications without
// blocking the detecting caller.
type ConflictDetectionService struct {
	teachers   teacherCatalogReader
	classrooms classroomCatalogReader
	timeSlots  timeSlotCatalogReader
	offerings  offeringCatalogReader
	students   studentCatalogReader
	schedules  scheduleReader
	conflicts  conflictInserter
	cache      statsInvalidator
	notifier   conflictNotifier
	validator  *validator.Validate
	logger     *zap.Logger
	metrics    *MetricsService
	cfg        DetectionServiceConfig
}

// NewConflictDetectionService wires detection dependencies.
func NewConflictDetectionService(
	teachers teacherCatalogReader,
	classrooms classroomCatalogReader,
	timeSlots timeSlotCatalogReader,
	offerings offeringCatalogReader,
	students studentCatalogReader,
	schedules scheduleReader,
	conflicts conflictInserter,
	cache statsInvalidator,
	notifier conflictNotifier,
	validate *validator.Validate,
	logger *zap.Logger,
	metrics *MetricsService,
	cfg DetectionServiceConfig,
) *ConflictDetectionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DedupWindow <= 0 {
		cfg.DedupWindow = time.Hour
	}
	return &ConflictDetectionService{
		teachers:   teachers,
		classrooms: classrooms,
		timeSlots:  timeSlots,
		offerings:  offerings,
		students:   students,
		schedules:  schedules,
		conflicts:  conflicts,
		cache:      cache,
		notifier:   notifier,
		validator:  validate,
		logger:     logger,
		metrics:    metrics,
		cfg:        cfg,
	}
}

// Detect runs the incremental or full-sweep path depending on the request.
func (s *ConflictDetectionService) Detect(ctx context.Context, req dto.DetectConflictsRequest) ([]models.ScheduleConflict, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid detection payload")
	}
	if req.All {
		return s.DetectAllConflicts(ctx, req.TermID)
	}
	return s.DetectConflicts(ctx, req.TermID, req.ScheduleID)
}

// DetectConflicts checks one schedule against the committed set.
func (s *ConflictDetectionService) DetectConflicts(ctx context.Context, termID, scheduleID string) ([]models.ScheduleConflict, error) {
	detector, schedules, err := s.buildDetector(ctx, termID)
	if err != nil {
		return nil, err
	}

	target, err := s.schedules.FindByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}

	detected := detector.DetectForSchedule(*target, schedules, time.Now())
	return s.persist(ctx, detected)
}

// DetectAllConflicts sweeps every committed schedule. Re-running the sweep
// on an unchanged set persists nothing new.
func (s *ConflictDetectionService) DetectAllConflicts(ctx context.Context, termID string) ([]models.ScheduleConflict, error) {
	detector, schedules, err := s.buildDetector(ctx, termID)
	if err != nil {
		return nil, err
	}
	detected := detector.DetectAll(schedules, time.Now())
	return s.persist(ctx, detected)
}

func (s *ConflictDetectionService) buildDetector(ctx context.Context, termID string) (*conflict.Detector, []models.Schedule, error) {
	teachers, err := s.teachers.ListActive(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
	}
	classrooms, err := s.classrooms.ListActive(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classrooms")
	}
	slots, err := s.timeSlots.ListActive(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slots")
	}
	offerings, err := s.offerings.ListByTerm(ctx, termID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course offerings")
	}
	students, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	schedules, err := s.schedules.ListAll(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedules")
	}

	catalog := models.NewCatalog(teachers, classrooms, slots, offerings, students)
	policy := conflict.Policy{
		WindowStartMinute: parseClock(s.cfg.WindowStart),
		WindowEndMinute:   parseClock(s.cfg.WindowEnd),
	}
	return conflict.NewDetector(catalog, policy), schedules, nil
}

// persist inserts each detected conflict unless an equivalent one already
// exists inside the deduplication window, then notifies observers of the
// newly persisted ones.
func (s *ConflictDetectionService) persist(ctx context.Context, detected []models.ScheduleConflict) ([]models.ScheduleConflict, error) {
	var inserted []models.ScheduleConflict
	for i := range detected {
		ok, err := s.conflicts.InsertIfAbsent(ctx, &detected[i], s.cfg.DedupWindow)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist conflict")
		}
		if !ok {
			continue
		}
		inserted = append(inserted, detected[i])
		s.metrics.ObserveConflictDetected(string(detected[i].Type))
		if s.notifier != nil {
			s.notifier.NotifyDetected(detected[i])
		}
	}

	if len(inserted) > 0 && s.cache != nil {
		if err := s.cache.InvalidateConflictStats(ctx); err != nil {
			s.logger.Warn("failed to invalidate conflict stats cache", zap.Error(err))
		}
	}

	s.logger.Info("conflict detection finished",
		zap.Int("detected", len(detected)),
		zap.Int("persisted", len(inserted)),
	)
	return inserted, nil
}

// parseClock converts "HH:MM" into minutes from midnight; zero on malformed
// input so the detector falls back to its default window.
func parseClock(raw string) int {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(parts) != 2 {
		return 0
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0
	}
	return hours*60 + minutes
}
