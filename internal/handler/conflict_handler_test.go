package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-scheduler-api/internal/dto"
	"github.com/noah-isme/course-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/course-scheduler-api/pkg/errors"
)

type conflictManagerMock struct {
	conflict   *models.ScheduleConflict
	resolveErr error
	pending    bool
}

func (m *conflictManagerMock) Get(_ context.Context, _ string) (*models.ScheduleConflict, error) {
	if m.conflict == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "conflict not found")
	}
	return m.conflict, nil
}

func (m *conflictManagerMock) List(_ context.Context, _ dto.ConflictListQuery) ([]models.ScheduleConflict, *models.Pagination, error) {
	return nil, &models.Pagination{Page: 1, PageSize: 20}, nil
}

func (m *conflictManagerMock) Pending(_ context.Context) ([]models.ScheduleConflict, error) {
	return nil, nil
}

func (m *conflictManagerMock) HasPending(_ context.Context) (bool, error) {
	return m.pending, nil
}

func (m *conflictManagerMock) Stats(_ context.Context) (*models.ConflictStats, error) {
	return &models.ConflictStats{}, nil
}

func (m *conflictManagerMock) Resolve(_ context.Context, _ string, _ dto.ResolveConflictRequest) (*models.ScheduleConflict, error) {
	if m.resolveErr != nil {
		return nil, m.resolveErr
	}
	return m.conflict, nil
}

func (m *conflictManagerMock) Ignore(_ context.Context, _ string, _ dto.IgnoreConflictRequest) (*models.ScheduleConflict, error) {
	return m.conflict, nil
}

func (m *conflictManagerMock) Defer(_ context.Context, _ string, _ dto.DeferConflictRequest) (*models.ScheduleConflict, error) {
	return m.conflict, nil
}

func (m *conflictManagerMock) Reopen(_ context.Context, _ string) (*models.ScheduleConflict, error) {
	return m.conflict, nil
}

func (m *conflictManagerMock) Export(_ context.Context, _ string, _ dto.ConflictListQuery) ([]byte, string, error) {
	return []byte("id,type\n"), "text/csv", nil
}

type conflictDetectorMock struct {
	detected []models.ScheduleConflict
}

func (m *conflictDetectorMock) Detect(_ context.Context, _ dto.DetectConflictsRequest) ([]models.ScheduleConflict, error) {
	return m.detected, nil
}

func newConflictHandlerFixture(manager conflictManager, detector conflictDetector) *ConflictHandler {
	return &ConflictHandler{detector: detector, service: manager}
}

func TestConflictHandlerResolveSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	conflict := &models.ScheduleConflict{ID: "c1", ResolutionStatus: models.ResolutionResolved}
	h := newConflictHandlerFixture(&conflictManagerMock{conflict: conflict}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.ResolveConflictRequest{Notes: "moved to room 2"})
	req, _ := http.NewRequest(http.MethodPost, "/conflicts/c1/resolve", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "c1"}}

	h.Resolve(c)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestConflictHandlerResolveInvalidTransition(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newConflictHandlerFixture(&conflictManagerMock{
		resolveErr: appErrors.Clone(appErrors.ErrInvalidTransition, "cannot move conflict from RESOLVED to RESOLVED"),
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.ResolveConflictRequest{Notes: "again"})
	req, _ := http.NewRequest(http.MethodPost, "/conflicts/c1/resolve", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "c1"}}

	h.Resolve(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestConflictHandlerResolveInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newConflictHandlerFixture(&conflictManagerMock{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/conflicts/c1/resolve", bytes.NewReader([]byte(`invalid`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "c1"}}

	h.Resolve(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConflictHandlerHasPending(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newConflictHandlerFixture(&conflictManagerMock{pending: true}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/conflicts/has-pending", nil)
	c.Request = req

	h.HasPending(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"hasPending":true`)
}

func TestConflictHandlerDetect(t *testing.T) {
	gin.SetMode(gin.TestMode)
	detected := []models.ScheduleConflict{{ID: "c1", Type: models.ConflictTeacherDoubleBooking}}
	h := newConflictHandlerFixture(&conflictManagerMock{}, &conflictDetectorMock{detected: detected})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.DetectConflictsRequest{TermID: "term-1", All: true})
	req, _ := http.NewRequest(http.MethodPost, "/conflicts/detect", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Detect(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "TEACHER_DOUBLE_BOOKING")
}

func TestConflictHandlerExport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newConflictHandlerFixture(&conflictManagerMock{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/conflicts/export?format=csv", nil)
	c.Request = req

	h.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
}