package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jobdeck/jobdeck-be/internal/cache"
	"github.com/jobdeck/jobdeck-be/internal/gateway/dto"
	"github.com/jobdeck/jobdeck-be/internal/jobsvc"
	"github.com/jobdeck/jobdeck-be/internal/rpc"
)

// JobHandler handles job-related HTTP requests
type JobHandler struct {
	logger *slog.Logger
	caller rpc.Caller
	cache  *cache.Cache
}

// NewJobHandler creates a new JobHandler instance
func NewJobHandler(deps *Dependencies) *JobHandler {
	return &JobHandler{
		logger: deps.Logger,
		caller: deps.Caller,
		cache:  deps.Cache,
	}
}

// Create handles POST /api/v1/jobs
func (h *JobHandler) Create(c *gin.Context) {
	var req dto.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	data, err := call(c.Request.Context(), h.caller, c, "job.create", jobsvc.CreateArgs{
		CompanyID:    req.CompanyID,
		Title:        req.Title,
		Description:  req.Description,
		Requirements: req.Requirements,
		Skills:       req.Skills,
		Location:     req.Location,
		Deadline:     req.Deadline,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondData(c, http.StatusCreated, data)
}

// Get handles GET /api/v1/jobs/:job_id. Job details are served through the
// read cache; a stale entry triggers one background refresh.
func (h *JobHandler) Get(c *gin.Context) {
	jobID := c.Param("job_id")

	// The background refresh may outlive this request, so the RPC request
	// is captured here rather than read from the gin context inside fetch.
	rpcReq, err := buildRequest(c, "job.getById", jobsvc.GetByIDArgs{JobID: jobID})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	key := cache.Key("job", "getById", map[string]string{"job_id": jobID})
	data, err := h.cache.GetWithRefresh(c.Request.Context(), key, 0, 0, func(ctx context.Context) ([]byte, error) {
		return h.caller.Call(ctx, rpcReq)
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondData(c, http.StatusOK, data)
}

// Search handles GET /api/v1/jobs
func (h *JobHandler) Search(c *gin.Context) {
	var req dto.SearchJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBadRequest(c, "invalid query parameters")
		return
	}

	rpcReq, err := buildRequest(c, "job.search", jobsvc.SearchArgs{
		Keyword:  req.Keyword,
		Location: req.Location,
		Skill:    req.Skill,
		PageSize: req.PageSize,
		Cursor:   req.Cursor,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	key := cache.Key("job", "search", map[string]string{
		"keyword":   req.Keyword,
		"location":  req.Location,
		"skill":     req.Skill,
		"page_size": strconv.Itoa(req.PageSize),
		"cursor":    req.Cursor,
	})
	data, err := h.cache.GetWithRefresh(c.Request.Context(), key, 0, 0, func(ctx context.Context) ([]byte, error) {
		return h.caller.Call(ctx, rpcReq)
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondData(c, http.StatusOK, data)
}

// Update handles PATCH /api/v1/jobs/:job_id
func (h *JobHandler) Update(c *gin.Context) {
	var req dto.UpdateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	data, err := call(c.Request.Context(), h.caller, c, "job.update", jobsvc.UpdateArgs{
		JobID:        c.Param("job_id"),
		Title:        req.Title,
		Description:  req.Description,
		Requirements: req.Requirements,
		Skills:       req.Skills,
		Location:     req.Location,
		Deadline:     req.Deadline,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondData(c, http.StatusOK, data)
}

// Delete handles DELETE /api/v1/jobs/:job_id
func (h *JobHandler) Delete(c *gin.Context) {
	data, err := call(c.Request.Context(), h.caller, c, "job.delete", jobsvc.GetByIDArgs{
		JobID: c.Param("job_id"),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondData(c, http.StatusOK, data)
}

// Apply handles POST /api/v1/jobs/:job_id/apply
func (h *JobHandler) Apply(c *gin.Context) {
	var req dto.ApplyRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request body")
			return
		}
	}

	data, err := call(c.Request.Context(), h.caller, c, "job.apply", jobsvc.ApplyArgs{
		JobID:       c.Param("job_id"),
		CoverLetter: req.CoverLetter,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondData(c, http.StatusCreated, data)
}

// Save handles POST /api/v1/jobs/:job_id/save
func (h *JobHandler) Save(c *gin.Context) {
	data, err := call(c.Request.Context(), h.caller, c, "job.save", jobsvc.GetByIDArgs{
		JobID: c.Param("job_id"),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondData(c, http.StatusOK, data)
}

// Unsave handles DELETE /api/v1/jobs/:job_id/save
func (h *JobHandler) Unsave(c *gin.Context) {
	data, err := call(c.Request.Context(), h.caller, c, "job.unsave", jobsvc.GetByIDArgs{
		JobID: c.Param("job_id"),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondData(c, http.StatusOK, data)
}

// GetSaved handles GET /api/v1/jobs/saved
func (h *JobHandler) GetSaved(c *gin.Context) {
	data, err := call(c.Request.Context(), h.caller, c, "job.getSaved", json.RawMessage(`{}`))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondData(c, http.StatusOK, data)
}
