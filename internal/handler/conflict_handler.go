package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-scheduler-api/internal/dto"
	"github.com/noah-isme/course-scheduler-api/internal/models"
	"github.com/noah-isme/course-scheduler-api/internal/service"
	appErrors "github.com/noah-isme/course-scheduler-api/pkg/errors"
	"github.com/noah-isme/course-scheduler-api/pkg/response"
)

type conflictDetector interface {
	Detect(ctx context.Context, req dto.DetectConflictsRequest) ([]models.ScheduleConflict, error)
}

type conflictManager interface {
	Get(ctx context.Context, id string) (*models.ScheduleConflict, error)
	List(ctx context.Context, query dto.ConflictListQuery) ([]models.ScheduleConflict, *models.Pagination, error)
	Pending(ctx context.Context) ([]models.ScheduleConflict, error)
	HasPending(ctx context.Context) (bool, error)
	Stats(ctx context.Context) (*models.ConflictStats, error)
	Resolve(ctx context.Context, id string, req dto.ResolveConflictRequest) (*models.ScheduleConflict, error)
	Ignore(ctx context.Context, id string, req dto.IgnoreConflictRequest) (*models.ScheduleConflict, error)
	Defer(ctx context.Context, id string, req dto.DeferConflictRequest) (*models.ScheduleConflict, error)
	Reopen(ctx context.Context, id string) (*models.ScheduleConflict, error)
	Export(ctx context.Context, format string, query dto.ConflictListQuery) ([]byte, string, error)
}

// ConflictHandler exposes conflict detection and resolution endpoints.
type ConflictHandler struct {
	detector conflictDetector
	service  conflictManager
}

// NewConflictHandler constructs the handler.
func NewConflictHandler(detector *service.ConflictDetectionService, svc *service.ConflictService) *ConflictHandler {
	return &ConflictHandler{detector: detector, service: svc}
}

// Detect godoc
// @Summary Detect schedule conflicts
// @Description Audits one schedule against the committed set, or the full set when all=true. Only newly persisted conflicts are returned.
// @Tags Conflicts
// @Accept json
// @Produce json
// @Param payload body dto.DetectConflictsRequest true "Detection payload"
// @Success 200 {object} response.Envelope
// @Router /conflicts/detect [post]
func (h *ConflictHandler) Detect(c *gin.Context) {
	var req dto.DetectConflictsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid detection payload"))
		return
	}
	conflicts, err := h.detector.Detect(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, conflicts, nil, map[string]interface{}{"persisted": len(conflicts)})
}

// List godoc
// @Summary List conflicts
// @Tags Conflicts
// @Produce json
// @Param status query string false "Resolution status filter"
// @Param severity query string false "Severity filter"
// @Param type query string false "Conflict type filter"
// @Success 200 {object} response.Envelope
// @Router /conflicts [get]
func (h *ConflictHandler) List(c *gin.Context) {
	var query dto.ConflictListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid conflict query"))
		return
	}
	conflicts, pagination, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, conflicts, pagination)
}

// Get godoc
// @Summary Get a conflict by id
// @Tags Conflicts
// @Produce json
// @Param id path string true "Conflict ID"
// @Success 200 {object} response.Envelope
// @Router /conflicts/{id} [get]
func (h *ConflictHandler) Get(c *gin.Context) {
	conflict, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, conflict, nil)
}

// Pending godoc
// @Summary List pending conflicts
// @Tags Conflicts
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /conflicts/pending [get]
func (h *ConflictHandler) Pending(c *gin.Context) {
	conflicts, err := h.service.Pending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, conflicts, nil)
}

// HasPending godoc
// @Summary Check whether any conflict awaits resolution
// @Tags Conflicts
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /conflicts/has-pending [get]
func (h *ConflictHandler) HasPending(c *gin.Context) {
	pending, err := h.service.HasPending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"hasPending": pending}, nil)
}

// Stats godoc
// @Summary Aggregate conflict statistics
// @Tags Conflicts
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /conflicts/stats [get]
func (h *ConflictHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Export godoc
// @Summary Export conflicts as CSV or PDF
// @Tags Conflicts
// @Produce text/csv,application/pdf
// @Param format query string false "Export format (csv or pdf)" default(csv)
// @Success 200 {file} binary
// @Router /conflicts/export [get]
func (h *ConflictHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	var query dto.ConflictListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid conflict query"))
		return
	}
	out, contentType, err := h.service.Export(c.Request.Context(), format, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := "conflicts-" + time.Now().Format("20060102-150405") + "." + format
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, out)
}

// Resolve godoc
// @Summary Resolve a pending conflict
// @Tags Conflicts
// @Accept json
// @Produce json
// @Param id path string true "Conflict ID"
// @Param payload body dto.ResolveConflictRequest true "Resolution notes"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /conflicts/{id}/resolve [post]
func (h *ConflictHandler) Resolve(c *gin.Context) {
	var req dto.ResolveConflictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid resolution payload"))
		return
	}
	conflict, err := h.service.Resolve(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, conflict, nil)
}

// Ignore godoc
// @Summary Ignore a pending conflict
// @Description Critical conflicts cannot be ignored.
// @Tags Conflicts
// @Accept json
// @Produce json
// @Param id path string true "Conflict ID"
// @Param payload body dto.IgnoreConflictRequest true "Ignore reason"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /conflicts/{id}/ignore [post]
func (h *ConflictHandler) Ignore(c *gin.Context) {
	var req dto.IgnoreConflictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid ignore payload"))
		return
	}
	conflict, err := h.service.Ignore(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, conflict, nil)
}

// Defer godoc
// @Summary Defer a pending conflict
// @Tags Conflicts
// @Accept json
// @Produce json
// @Param id path string true "Conflict ID"
// @Param payload body dto.DeferConflictRequest true "Defer reason"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /conflicts/{id}/defer [post]
func (h *ConflictHandler) Defer(c *gin.Context) {
	var req dto.DeferConflictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid defer payload"))
		return
	}
	conflict, err := h.service.Defer(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, conflict, nil)
}

// Reopen godoc
// @Summary Reopen a deferred conflict
// @Tags Conflicts
// @Produce json
// @Param id path string true "Conflict ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /conflicts/{id}/reopen [post]
func (h *ConflictHandler) Reopen(c *gin.Context) {
	conflict, err := h.service.Reopen(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, conflict, nil)
}
