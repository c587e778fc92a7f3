package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/course-scheduler-api/internal/dto"
	"github.com/noah-isme/course-scheduler-api/internal/models"
	"github.com/noah-isme/course-scheduler-api/internal/solver"
	appErrors "github.com/noah-isme/course-scheduler-api/pkg/errors"
)

type teacherCatalogReader interface {
	ListActive(ctx context.Context) ([]models.Teacher, error)
}

type classroomCatalogReader interface {
	ListActive(ctx context.Context) ([]models.Classroom, error)
}

type timeSlotCatalogReader interface {
	ListActive(ctx context.Context) ([]models.TimeSlot, error)
}

type offeringCatalogReader interface {
	ListByTerm(ctx context.Context, termID string) ([]models.CourseOffering, error)
}

type studentCatalogReader interface {
	ListAll(ctx context.Context) ([]models.StudentRecord, error)
}

type scheduleWriter interface {
	BulkCreateTx(ctx context.Context, tx *sqlx.Tx, schedules []models.Schedule) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// SolverServiceConfig tunes solve runs and the constraint policy knobs.
type SolverServiceConfig struct {
	DefaultStrategy          string
	Workers                  int
	TimeBudget               time.Duration
	MaxIterations            int
	Weights                  solver.ScoreWeights
	AllowOversubscription    bool
	MaxOversubscriptionRatio float64
	MaxConsecutiveHours      int
	MinBreakBetweenClasses   time.Duration
}

// SolverService loads the catalog snapshot, builds the variable/domain
// model and runs the constraint-satisfaction search. Everything it builds
// is request-scoped and discarded after the solve.
type SolverService struct {
	teachers   teacherCatalogReader
	classrooms classroomCatalogReader
	timeSlots  timeSlotCatalogReader
	offerings  offeringCatalogReader
	students   studentCatalogReader
	schedules  scheduleWriter
	tx         txProvider
	validator  *validator.Validate
	logger     *zap.Logger
	metrics    *MetricsService
	cfg        SolverServiceConfig
}

// NewSolverService wires solver dependencies.
func NewSolverService(
	teachers teacherCatalogReader,
	classrooms classroomCatalogReader,
	timeSlots timeSlotCatalogReader,
	offerings offeringCatalogReader,
	students studentCatalogReader,
	schedules scheduleWriter,
	tx txProvider,
	validate *validator.Validate,
	logger *zap.Logger,
	metrics *MetricsService,
	cfg SolverServiceConfig,
) *SolverService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TimeBudget <= 0 {
		cfg.TimeBudget = 30 * time.Second
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 1000
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &SolverService{
		teachers:   teachers,
		classrooms: classrooms,
		timeSlots:  timeSlots,
		offerings:  offerings,
		students:   students,
		schedules:  schedules,
		tx:         tx,
		validator:  validate,
		logger:     logger,
		metrics:    metrics,
		cfg:        cfg,
	}
}

// Solve runs one planning computation. The response always carries the
// performance summary; on failure it is returned alongside the error so
// callers can decide whether to relax constraints or extend the budget.
func (s *SolverService) Solve(ctx context.Context, req dto.SolveRequest) (*dto.SolveResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid solve payload")
	}

	strategyName := req.Strategy
	if strategyName == "" {
		strategyName = s.cfg.DefaultStrategy
	}
	strategy, err := solver.ParseStrategy(strategyName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unknown solver strategy")
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date")
	}

	catalog, err := s.loadCatalog(ctx, req.TermID)
	if err != nil {
		return nil, err
	}
	if len(catalog.Offerings) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no course offerings found for this term")
	}

	builder := solver.NewDomainBuilder(catalog, s.cfg.Weights)
	variables, domains, err := builder.Build(req.OfferingIDs)
	if err != nil {
		var emptyDomain *solver.EmptyDomainError
		if errors.As(err, &emptyDomain) {
			return nil, appErrors.Wrap(err, appErrors.ErrEmptyDomain.Code, appErrors.ErrEmptyDomain.Status, emptyDomain.Error())
		}
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to build scheduling domains")
	}

	constraints := solver.NewConstraintSet(
		solver.NewTeacherAvailabilityConstraint(catalog, s.cfg.MaxConsecutiveHours, s.cfg.MinBreakBetweenClasses),
		solver.NewClassroomCapacityConstraint(catalog, s.cfg.AllowOversubscription, s.cfg.MaxOversubscriptionRatio),
		solver.NewStudentConflictConstraint(catalog),
	)

	opts := solver.Options{
		Strategy:      strategy,
		Workers:       s.cfg.Workers,
		MaxIterations: s.cfg.MaxIterations,
	}
	if req.MaxIterations > 0 {
		opts.MaxIterations = req.MaxIterations
	}

	budget := s.cfg.TimeBudget
	if req.TimeBudgetMS > 0 {
		budget = time.Duration(req.TimeBudgetMS) * time.Millisecond
	}
	solveCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	engine := solver.New(variables, domains, constraints, opts, s.logger)
	assignment, stats, solveErr := engine.Solve(solveCtx)
	s.metrics.ObserveSolve(stats)

	resp := &dto.SolveResponse{
		RunID: uuid.NewString(),
		Stats: dto.SolveStats{
			Strategy:       string(stats.Strategy),
			State:          string(stats.State),
			NodesExplored:  stats.NodesExplored,
			Backtracks:     stats.Backtracks,
			Iterations:     stats.Iterations,
			Workers:        stats.Workers,
			BestViolations: stats.BestViolations,
			Duration:       stats.Duration,
		},
	}

	if solveErr != nil {
		if errors.Is(solveErr, solver.ErrCancelled) {
			return resp, appErrors.Clone(appErrors.ErrSolveCancelled, "")
		}
		return resp, appErrors.Clone(appErrors.ErrSolveExhausted, "")
	}

	for _, v := range variables {
		candidate, ok := assignment.Get(v.ID)
		if !ok {
			continue
		}
		resp.Assignments = append(resp.Assignments, dto.AssignmentEntry{
			OfferingID:  v.ID,
			Label:       v.Label,
			TeacherID:   candidate.TeacherID,
			ClassroomID: candidate.ClassroomID,
			TimeSlotID:  candidate.TimeSlotID,
			Score:       candidate.Score,
		})
	}

	if req.Commit {
		ids, err := s.commit(ctx, resp.Assignments, date)
		if err != nil {
			return resp, err
		}
		resp.Committed = true
		resp.ScheduleIDs = ids
	}

	return resp, nil
}

func (s *SolverService) loadCatalog(ctx context.Context, termID string) (*models.Catalog, error) {
	teachers, err := s.teachers.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
	}
	classrooms, err := s.classrooms.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classrooms")
	}
	slots, err := s.timeSlots.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slots")
	}
	offerings, err := s.offerings.ListByTerm(ctx, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course offerings")
	}
	students, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	return models.NewCatalog(teachers, classrooms, slots, offerings, students), nil
}

// commit persists the solved assignment as committed schedules in one
// transaction.
func (s *SolverService) commit(ctx context.Context, entries []dto.AssignmentEntry, date time.Time) ([]string, error) {
	if s.tx == nil || s.schedules == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "schedule persistence is not configured")
	}

	schedules := make([]models.Schedule, 0, len(entries))
	for _, e := range entries {
		schedules = append(schedules, models.Schedule{
			ID:          uuid.NewString(),
			OfferingID:  e.OfferingID,
			TeacherID:   e.TeacherID,
			ClassroomID: e.ClassroomID,
			TimeSlotID:  e.TimeSlotID,
			Date:        date,
		})
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open transaction")
	}
	if err := s.schedules.BulkCreateTx(ctx, tx, schedules); err != nil {
		_ = tx.Rollback()
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist schedules")
	}
	if err := tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit schedules")
	}

	ids := make([]string, len(schedules))
	for i, sched := range schedules {
		ids[i] = sched.ID
	}
	return ids, nil
}
