package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jobdeck/jobdeck-be/internal/appsvc"
	"github.com/jobdeck/jobdeck-be/internal/gateway/dto"
	"github.com/jobdeck/jobdeck-be/internal/rpc"
)

// ApplicationHandler handles application-related HTTP requests
type ApplicationHandler struct {
	logger *slog.Logger
	caller rpc.Caller
}

// NewApplicationHandler creates a new ApplicationHandler instance
func NewApplicationHandler(deps *Dependencies) *ApplicationHandler {
	return &ApplicationHandler{
		logger: deps.Logger,
		caller: deps.Caller,
	}
}

// Get handles GET /api/v1/applications/:application_id
func (h *ApplicationHandler) Get(c *gin.Context) {
	data, err := call(c.Request.Context(), h.caller, c, "application.getById", appsvc.GetByIDArgs{
		ApplicationID: c.Param("application_id"),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondData(c, http.StatusOK, data)
}

// UpdateStatus handles PATCH /api/v1/applications/:application_id/status
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateApplicationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "status is required")
		return
	}

	data, err := call(c.Request.Context(), h.caller, c, "application.updateStatus", appsvc.UpdateStatusArgs{
		ApplicationID: c.Param("application_id"),
		Status:        req.Status,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondData(c, http.StatusOK, data)
}

// ListByJob handles GET /api/v1/jobs/:job_id/applications
func (h *ApplicationHandler) ListByJob(c *gin.Context) {
	data, err := call(c.Request.Context(), h.caller, c, "application.getByJob", appsvc.GetByJobArgs{
		JobID: c.Param("job_id"),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondData(c, http.StatusOK, data)
}
