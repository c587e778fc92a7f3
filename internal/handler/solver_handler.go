package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-scheduler-api/internal/dto"
	"github.com/noah-isme/course-scheduler-api/internal/service"
	appErrors "github.com/noah-isme/course-scheduler-api/pkg/errors"
	"github.com/noah-isme/course-scheduler-api/pkg/response"
)

type scheduleSolver interface {
	Solve(ctx context.Context, req dto.SolveRequest) (*dto.SolveResponse, error)
}

// SolverHandler exposes the scheduling engine.
type SolverHandler struct {
	service scheduleSolver
}

// NewSolverHandler constructs the handler.
func NewSolverHandler(svc *service.SolverService) *SolverHandler {
	return &SolverHandler{service: svc}
}

// Solve godoc
// @Summary Solve a term's course schedule
// @Description Runs constraint search over the requested offerings and returns an assignment, optionally committing it as schedules.
// @Tags Scheduling
// @Accept json
// @Produce json
// @Param payload body dto.SolveRequest true "Solve payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /scheduling/solve [post]
func (h *SolverHandler) Solve(c *gin.Context) {
	var req dto.SolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid solve payload"))
		return
	}

	resp, err := h.service.Solve(c.Request.Context(), req)
	if err != nil {
		// Exhausted and cancelled runs still carry search statistics.
		if resp != nil {
			appErr := appErrors.FromError(err)
			c.JSON(appErr.Status, response.Envelope{Data: resp, Error: appErr})
			return
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}
