package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jobdeck/jobdeck-be/internal/gateway/dto"
	"github.com/jobdeck/jobdeck-be/internal/interviewsvc"
	"github.com/jobdeck/jobdeck-be/internal/rpc"
)

// InterviewHandler handles interview-related HTTP requests
type InterviewHandler struct {
	logger *slog.Logger
	caller rpc.Caller
}

// NewInterviewHandler creates a new InterviewHandler instance
func NewInterviewHandler(deps *Dependencies) *InterviewHandler {
	return &InterviewHandler{
		logger: deps.Logger,
		caller: deps.Caller,
	}
}

// Create handles POST /api/v1/interviews
func (h *InterviewHandler) Create(c *gin.Context) {
	var req dto.CreateInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "application_id and scheduled_at are required")
		return
	}

	data, err := call(c.Request.Context(), h.caller, c, "interview.create", interviewsvc.CreateArgs{
		ApplicationID: req.ApplicationID,
		ScheduledAt:   req.ScheduledAt,
		Location:      req.Location,
		Notes:         req.Notes,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondData(c, http.StatusCreated, data)
}

// Update handles PATCH /api/v1/interviews/:interview_id
func (h *InterviewHandler) Update(c *gin.Context) {
	var req dto.UpdateInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	data, err := call(c.Request.Context(), h.caller, c, "interview.update", interviewsvc.UpdateArgs{
		InterviewID: c.Param("interview_id"),
		Status:      req.Status,
		ScheduledAt: req.ScheduledAt,
		Location:    req.Location,
		Notes:       req.Notes,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondData(c, http.StatusOK, data)
}

// Cancel handles POST /api/v1/interviews/:interview_id/cancel
func (h *InterviewHandler) Cancel(c *gin.Context) {
	data, err := call(c.Request.Context(), h.caller, c, "interview.cancel", interviewsvc.CancelArgs{
		InterviewID: c.Param("interview_id"),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondData(c, http.StatusOK, data)
}

// GetUpcoming handles GET /api/v1/interviews/upcoming
func (h *InterviewHandler) GetUpcoming(c *gin.Context) {
	data, err := call(c.Request.Context(), h.caller, c, "interview.getUpcoming", json.RawMessage(`{}`))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondData(c, http.StatusOK, data)
}
