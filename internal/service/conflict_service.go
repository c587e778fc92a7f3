package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-scheduler-api/internal/dto"
	"github.com/noah-isme/course-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/course-scheduler-api/pkg/errors"
	"github.com/noah-isme/course-scheduler-api/pkg/export"
)

type conflictRepo interface {
	FindByID(ctx context.Context, id string) (*models.ScheduleConflict, error)
	List(ctx context.Context, filter models.ConflictFilter) ([]models.ScheduleConflict, int, error)
	HasPending(ctx context.Context) (bool, error)
	UpdateResolution(ctx context.Context, id string, from, to models.ResolutionStatus, notes *string, resolvedAt *time.Time) error
	Stats(ctx context.Context) (*models.ConflictStats, error)
}

type conflictStatsCache interface {
	GetConflictStats(ctx context.Context) (*models.ConflictStats, error)
	SetConflictStats(ctx context.Context, stats *models.ConflictStats, ttl time.Duration) error
	InvalidateConflictStats(ctx context.Context) error
}

// ConflictServiceConfig tunes the query surface.
type ConflictServiceConfig struct {
	OverdueAfter  time.Duration
	StatsCacheTTL time.Duration
}

// ConflictService owns the conflict resolution lifecycle and the read side
// of the conflict store.
type ConflictService struct {
	repo      conflictRepo
	cache     conflictStatsCache
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	pdf       *export.PDFExporter
	csv       *export.CSVExporter
	cfg       ConflictServiceConfig
}

// NewConflictService wires the lifecycle service.
func NewConflictService(repo conflictRepo, cache conflictStatsCache, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService, cfg ConflictServiceConfig) *ConflictService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.OverdueAfter <= 0 {
		cfg.OverdueAfter = 72 * time.Hour
	}
	if cfg.StatsCacheTTL <= 0 {
		cfg.StatsCacheTTL = 5 * time.Minute
	}
	return &ConflictService{
		repo:      repo,
		cache:     cache,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
		pdf:       export.NewPDFExporter(),
		csv:       export.NewCSVExporter(),
		cfg:       cfg,
	}
}

// Resolve closes a pending conflict with an explanation of what was done.
func (s *ConflictService) Resolve(ctx context.Context, id string, req dto.ResolveConflictRequest) (*models.ScheduleConflict, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid resolution payload")
	}
	return s.transition(ctx, id, models.ResolutionResolved, req.Notes)
}

// Ignore dismisses a pending conflict. Critical conflicts cannot be ignored.
func (s *ConflictService) Ignore(ctx context.Context, id string, req dto.IgnoreConflictRequest) (*models.ScheduleConflict, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid ignore payload")
	}
	return s.transition(ctx, id, models.ResolutionIgnored, req.Reason)
}

// Defer postpones a pending conflict for later attention.
func (s *ConflictService) Defer(ctx context.Context, id string, req dto.DeferConflictRequest) (*models.ScheduleConflict, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid defer payload")
	}
	return s.transition(ctx, id, models.ResolutionDeferred, req.Reason)
}

// Reopen returns a deferred conflict to the pending queue, clearing its
// resolution metadata.
func (s *ConflictService) Reopen(ctx context.Context, id string) (*models.ScheduleConflict, error) {
	return s.transition(ctx, id, models.ResolutionPending, "")
}

// transition enforces the lifecycle rules: RESOLVED, IGNORED and DEFERRED
// are reachable only from PENDING, and PENDING is re-reachable only from
// DEFERRED. Terminal states never change.
func (s *ConflictService) transition(ctx context.Context, id string, target models.ResolutionStatus, notes string) (*models.ScheduleConflict, error) {
	conflict, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	current := conflict.ResolutionStatus
	switch target {
	case models.ResolutionResolved, models.ResolutionIgnored, models.ResolutionDeferred:
		if current != models.ResolutionPending {
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition,
				fmt.Sprintf("cannot move conflict from %s to %s", current, target))
		}
		if target == models.ResolutionIgnored && conflict.Severity == models.SeverityCritical {
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "critical conflicts cannot be ignored")
		}
	case models.ResolutionPending:
		if current != models.ResolutionDeferred {
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition,
				fmt.Sprintf("cannot reopen conflict in status %s", current))
		}
	}

	var notesPtr *string
	var resolvedAt *time.Time
	if target != models.ResolutionPending {
		notesPtr = &notes
	}
	// resolvedAt marks actual resolution; ignored and deferred conflicts
	// carry only their notes.
	if target == models.ResolutionResolved {
		now := time.Now()
		resolvedAt = &now
	}

	if err := s.repo.UpdateResolution(ctx, id, current, target, notesPtr, resolvedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Another transition won the race between the read and the update.
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "conflict changed state concurrently")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update conflict resolution")
	}

	conflict.ResolutionStatus = target
	conflict.ResolutionNotes = notesPtr
	conflict.ResolvedAt = resolvedAt

	if s.cache != nil {
		if err := s.cache.InvalidateConflictStats(ctx); err != nil {
			s.logger.Warn("failed to invalidate conflict stats cache", zap.Error(err))
		}
	}
	s.refreshPendingGauge(ctx)

	s.logger.Info("conflict transition applied",
		zap.String("conflict_id", id),
		zap.String("from", string(current)),
		zap.String("to", string(target)),
	)
	return conflict, nil
}

// Get returns a single conflict by id.
func (s *ConflictService) Get(ctx context.Context, id string) (*models.ScheduleConflict, error) {
	return s.findByID(ctx, id)
}

// List returns conflicts matching the query with pagination metadata.
func (s *ConflictService) List(ctx context.Context, query dto.ConflictListQuery) ([]models.ScheduleConflict, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid conflict query")
	}

	filter := models.ConflictFilter{
		Status:     models.ResolutionStatus(query.Status),
		Severity:   models.ConflictSeverity(query.Severity),
		Type:       models.ConflictType(query.Type),
		EntityType: models.ConflictEntityType(query.EntityType),
		EntityID:   query.EntityID,
		ScheduleID: query.ScheduleID,
		Page:       query.Page,
		PageSize:   query.PageSize,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}

	conflicts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list conflicts")
	}

	pagination := &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	}
	return conflicts, pagination, nil
}

// Pending returns unresolved conflicts, flagging overdue ones in the log.
func (s *ConflictService) Pending(ctx context.Context) ([]models.ScheduleConflict, error) {
	conflicts, _, err := s.repo.List(ctx, models.ConflictFilter{
		Status:   models.ResolutionPending,
		Page:     1,
		PageSize: 500,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending conflicts")
	}

	now := time.Now()
	overdue := 0
	for _, c := range conflicts {
		if c.IsOverdue(now, s.cfg.OverdueAfter) {
			overdue++
		}
	}
	if overdue > 0 {
		s.logger.Warn("pending conflicts past attention threshold",
			zap.Int("overdue", overdue),
			zap.Duration("threshold", s.cfg.OverdueAfter),
		)
	}
	s.metrics.SetPendingConflicts(len(conflicts))
	return conflicts, nil
}

// HasPending reports whether any conflict awaits resolution.
func (s *ConflictService) HasPending(ctx context.Context) (bool, error) {
	pending, err := s.repo.HasPending(ctx)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check pending conflicts")
	}
	return pending, nil
}

// Stats returns aggregate conflict counts, served from cache when warm.
func (s *ConflictService) Stats(ctx context.Context) (*models.ConflictStats, error) {
	if s.cache != nil {
		cached, err := s.cache.GetConflictStats(ctx)
		if err != nil {
			s.logger.Warn("conflict stats cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate conflict stats")
	}

	if s.cache != nil {
		if err := s.cache.SetConflictStats(ctx, stats, s.cfg.StatsCacheTTL); err != nil {
			s.logger.Warn("conflict stats cache write failed", zap.Error(err))
		}
	}
	s.metrics.SetPendingConflicts(stats.Pending)
	return stats, nil
}

// Export renders the current conflict list as a downloadable document.
// Supported formats are "csv" and "pdf".
func (s *ConflictService) Export(ctx context.Context, format string, query dto.ConflictListQuery) ([]byte, string, error) {
	query.Page = 1
	if query.PageSize == 0 {
		query.PageSize = 100
	}
	conflicts, _, err := s.List(ctx, query)
	if err != nil {
		return nil, "", err
	}

	data := export.Dataset{
		Headers: []string{"ID", "Type", "Severity", "Status", "Description", "Detected At"},
	}
	for _, c := range conflicts {
		data.Rows = append(data.Rows, []string{
			c.ID,
			string(c.Type),
			string(c.Severity),
			string(c.ResolutionStatus),
			c.Description,
			c.DetectedAt.Format(time.RFC3339),
		})
	}

	switch format {
	case "csv":
		out, err := s.csv.Render(data)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return out, "text/csv", nil
	case "pdf":
		out, err := s.pdf.Render(data, "Schedule Conflicts")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return out, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format: "+format)
	}
}

func (s *ConflictService) findByID(ctx context.Context, id string) (*models.ScheduleConflict, error) {
	conflict, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "conflict not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load conflict")
	}
	return conflict, nil
}

func (s *ConflictService) refreshPendingGauge(ctx context.Context) {
	_, total, err := s.repo.List(ctx, models.ConflictFilter{
		Status:   models.ResolutionPending,
		Page:     1,
		PageSize: 1,
	})
	if err != nil {
		return
	}
	s.metrics.SetPendingConflicts(total)
}
