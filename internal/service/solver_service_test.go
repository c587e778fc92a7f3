package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-scheduler-api/internal/dto"
	"github.com/noah-isme/course-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/course-scheduler-api/pkg/errors"
)

func solverCatalogFixture() *fakeCatalog {
	return &fakeCatalog{
		teachers: []models.Teacher{
			{
				ID: "teacher-1", Active: true, MaxWeeklyHours: 20,
				Specializations: []models.SubjectSpecialization{{Subject: "math", Proficiency: 0.9}},
				Availability:    []models.AvailabilityWindow{{DayOfWeek: 1, StartMinute: 8 * 60, EndMinute: 18 * 60}},
			},
			{
				ID: "teacher-2", Active: true, MaxWeeklyHours: 20,
				Specializations: []models.SubjectSpecialization{{Subject: "physics", Proficiency: 0.8}},
				Availability:    []models.AvailabilityWindow{{DayOfWeek: 1, StartMinute: 8 * 60, EndMinute: 18 * 60}},
			},
		},
		classrooms: []models.Classroom{
			{ID: "room-1", Capacity: 30, Type: models.ClassroomTypeLecture, Active: true},
		},
		slots: []models.TimeSlot{
			{ID: "slot-1", DayOfWeek: 1, StartMinute: 9 * 60, EndMinute: 10 * 60, Active: true},
			{ID: "slot-2", DayOfWeek: 1, StartMinute: 10 * 60, EndMinute: 11 * 60, Active: true},
		},
		offerings: []models.CourseOffering{
			{ID: "off-1", CourseCode: "MATH101", Title: "Calculus", Subject: "math", MaxEnrollment: 25, Enrollment: 20},
			{ID: "off-2", CourseCode: "PHYS101", Title: "Mechanics", Subject: "physics", MaxEnrollment: 25, Enrollment: 20},
		},
	}
}

func newSolverServiceFixture(catalog *fakeCatalog) *SolverService {
	return NewSolverService(
		catalog,
		fakeClassroomReader{catalog},
		fakeTimeSlotReader{catalog},
		fakeOfferingReader{catalog},
		fakeStudentReader{catalog},
		nil, nil,
		nil, nil, nil,
		SolverServiceConfig{DefaultStrategy: "BACKTRACKING_FORWARD_CHECKING"},
	)
}

func TestSolverServiceSolveSuccess(t *testing.T) {
	svc := newSolverServiceFixture(solverCatalogFixture())

	resp, err := svc.Solve(context.Background(), dto.SolveRequest{
		TermID: "term-1",
		Date:   "2026-09-07",
	})
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, "COMPLETE", resp.Stats.State)
	assert.Len(t, resp.Assignments, 2)
	assert.False(t, resp.Committed)

	seen := make(map[string]bool)
	for _, entry := range resp.Assignments {
		assert.NotEmpty(t, entry.TeacherID)
		assert.NotEmpty(t, entry.ClassroomID)
		assert.NotEmpty(t, entry.TimeSlotID)
		seen[entry.OfferingID] = true
	}
	assert.True(t, seen["off-1"])
	assert.True(t, seen["off-2"])
}

func TestSolverServiceRejectsUnknownStrategy(t *testing.T) {
	svc := newSolverServiceFixture(solverCatalogFixture())

	_, err := svc.Solve(context.Background(), dto.SolveRequest{
		TermID:   "term-1",
		Date:     "2026-09-07",
		Strategy: "SIMULATED_ANNEALING",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestSolverServiceEmptyDomain(t *testing.T) {
	catalog := solverCatalogFixture()
	// No teacher specialises in chemistry, so its offering has no candidates.
	catalog.offerings = append(catalog.offerings, models.CourseOffering{
		ID: "off-3", CourseCode: "CHEM101", Title: "Chemistry", Subject: "chemistry", MaxEnrollment: 25,
	})
	svc := newSolverServiceFixture(catalog)

	_, err := svc.Solve(context.Background(), dto.SolveRequest{
		TermID: "term-1",
		Date:   "2026-09-07",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrEmptyDomain.Code, appErr.Code)
}

func TestSolverServiceExhaustedCarriesStats(t *testing.T) {
	catalog := solverCatalogFixture()
	// Force both offerings onto the one math teacher with a single slot left.
	catalog.offerings[1].Subject = "math"
	catalog.teachers = catalog.teachers[:1]
	catalog.slots = catalog.slots[:1]
	svc := newSolverServiceFixture(catalog)

	resp, err := svc.Solve(context.Background(), dto.SolveRequest{
		TermID: "term-1",
		Date:   "2026-09-07",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrSolveExhausted.Code, appErr.Code)
	require.NotNil(t, resp)
	assert.Equal(t, "FAILED", resp.Stats.State)
	assert.Greater(t, resp.Stats.NodesExplored, int64(0))
}

func TestSolverServiceNoOfferingsForTerm(t *testing.T) {
	catalog := solverCatalogFixture()
	catalog.offerings = nil
	svc := newSolverServiceFixture(catalog)

	_, err := svc.Solve(context.Background(), dto.SolveRequest{
		TermID: "term-1",
		Date:   "2026-09-07",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
}

func TestSolverServiceValidatesPayload(t *testing.T) {
	svc := newSolverServiceFixture(solverCatalogFixture())

	_, err := svc.Solve(context.Background(), dto.SolveRequest{TermID: "term-1", Date: "07/09/2026"})
	require.Error(t, err)

	_, err = svc.Solve(context.Background(), dto.SolveRequest{Date: "2026-09-07"})
	require.Error(t, err)
}

func TestSolverServiceCommitWithoutPersistence(t *testing.T) {
	svc := newSolverServiceFixture(solverCatalogFixture())

	resp, err := svc.Solve(context.Background(), dto.SolveRequest{
		TermID: "term-1",
		Date:   "2026-09-07",
		Commit: true,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
	require.NotNil(t, resp, "the solved assignment is still reported")
	assert.Len(t, resp.Assignments, 2)
}

func TestSolverServiceHonoursRequestBudget(t *testing.T) {
	svc := newSolverServiceFixture(solverCatalogFixture())

	start := time.Now()
	_, err := svc.Solve(context.Background(), dto.SolveRequest{
		TermID:       "term-1",
		Date:         "2026-09-07",
		TimeBudgetMS: 100,
	})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}
