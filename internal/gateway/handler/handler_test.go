package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobdeck/jobdeck-be/internal/cache"
	"github.com/jobdeck/jobdeck-be/internal/domain"
	"github.com/jobdeck/jobdeck-be/internal/gateway/auth"
	"github.com/jobdeck/jobdeck-be/internal/rpc"
	"github.com/jobdeck/jobdeck-be/shared/logger"
	"github.com/jobdeck/jobdeck-be/shared/redis"
)

// fakeCaller records requests and replays canned replies per operation
type fakeCaller struct {
	calls   atomic.Int64
	lastReq *rpc.Request
	replies map[string]json.RawMessage
	errs    map[string]error
}

func newFakeCaller() *fakeCaller {
	return &fakeCaller{
		replies: make(map[string]json.RawMessage),
		errs:    make(map[string]error),
	}
}

func (f *fakeCaller) Call(ctx context.Context, req *rpc.Request) (json.RawMessage, error) {
	f.calls.Add(1)
	f.lastReq = req
	if err, ok := f.errs[req.Op]; ok {
		return nil, err
	}
	if reply, ok := f.replies[req.Op]; ok {
		return reply, nil
	}
	return json.RawMessage(`{}`), nil
}

func newTestDeps(t *testing.T) (*Dependencies, *fakeCaller) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	log := logger.NewDefault().Logger
	store := redis.NewFromRedis(rdb, log)
	caller := newFakeCaller()

	return &Dependencies{
		Logger: log,
		Caller: caller,
		Cache: cache.New(store, &cache.Config{
			DefaultTTL:     time.Minute,
			StaleThreshold: 10 * time.Second,
			RefreshTimeout: time.Second,
		}, log),
		Limiter: cache.NewLimiter(store, 10, time.Minute, log),
	}, caller
}

func asActor(id, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(auth.ContextActorID, id)
		c.Set(auth.ContextActorRole, role)
		c.Next()
	}
}

func TestJobCreate_ForwardsIdentityAndArgs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deps, caller := newTestDeps(t)
	caller.replies["job.create"] = json.RawMessage(`{"job_id":"j1"}`)

	r := gin.New()
	r.POST("/jobs", asActor("recruiter-1", "recruiter"), NewJobHandler(deps).Create)

	body := fmt.Sprintf(`{"title":"Backend Engineer","deadline":%q}`, time.Now().Add(time.Hour).Format(time.RFC3339))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/jobs", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
	assert.Contains(t, w.Body.String(), "j1")

	require.NotNil(t, caller.lastReq)
	assert.Equal(t, "job.create", caller.lastReq.Op)
	assert.Equal(t, "recruiter-1", caller.lastReq.ActorID)
	assert.Equal(t, "recruiter", caller.lastReq.ActorRole)
	assert.Contains(t, string(caller.lastReq.Args), "Backend Engineer")
}

func TestJobCreate_MissingTitleIsBadRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deps, caller := newTestDeps(t)

	r := gin.New()
	r.POST("/jobs", asActor("recruiter-1", "recruiter"), NewJobHandler(deps).Create)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/jobs", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, int64(0), caller.calls.Load())
}

func TestErrorKindToStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantInBody string
	}{
		{"not found", domain.NotFound("job nope not found"), http.StatusNotFound, "job nope not found"},
		{"forbidden", domain.Forbidden("not yours"), http.StatusForbidden, "not yours"},
		{"conflict", domain.Conflict("already applied"), http.StatusConflict, "already applied"},
		{"bad request", domain.BadRequest("deadline passed"), http.StatusBadRequest, "deadline passed"},
		{"unavailable", domain.Unavailable("service did not reply in time"), http.StatusServiceUnavailable, "did not reply"},
		{"internal detail is hidden", fmt.Errorf("pq: connection refused"), http.StatusInternalServerError, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			deps, caller := newTestDeps(t)
			caller.errs["job.delete"] = tt.err

			r := gin.New()
			r.DELETE("/jobs/:job_id", asActor("recruiter-1", "recruiter"), NewJobHandler(deps).Delete)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodDelete, "/jobs/j1", nil)
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantInBody)
			assert.Contains(t, w.Body.String(), `"success":false`)
		})
	}
}

func TestInternalDetailNeverLeaks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deps, caller := newTestDeps(t)
	caller.errs["job.delete"] = fmt.Errorf("pq: password authentication failed for user jobdeck")

	r := gin.New()
	r.DELETE("/jobs/:job_id", asActor("recruiter-1", "recruiter"), NewJobHandler(deps).Delete)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/jobs/j1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
	assert.NotContains(t, w.Body.String(), "pq:")
}

func TestJobGet_SecondReadServedFromCache(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deps, caller := newTestDeps(t)
	caller.replies["job.getById"] = json.RawMessage(`{"job_id":"j1","title":"Backend Engineer"}`)

	r := gin.New()
	r.GET("/jobs/:job_id", NewJobHandler(deps).Get)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/jobs/j1", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Backend Engineer")
	}

	assert.Equal(t, int64(1), caller.calls.Load(), "second read should hit the cache")
}

func TestJobApply_PassesPathParam(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deps, caller := newTestDeps(t)
	caller.replies["job.apply"] = json.RawMessage(`{"application_id":"a1"}`)

	r := gin.New()
	r.POST("/jobs/:job_id/apply", asActor("seeker-1", "seeker"), NewJobHandler(deps).Apply)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/jobs/j1/apply", strings.NewReader(`{"cover_letter":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, caller.lastReq)
	assert.Equal(t, "job.apply", caller.lastReq.Op)
	assert.Contains(t, string(caller.lastReq.Args), `"job_id":"j1"`)
	assert.Contains(t, string(caller.lastReq.Args), "hi")
}

func TestApplicationUpdateStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deps, caller := newTestDeps(t)
	caller.replies["application.updateStatus"] = json.RawMessage(`{"application_id":"a1","status":"SHORTLISTED"}`)

	r := gin.New()
	r.PATCH("/applications/:application_id/status",
		asActor("recruiter-1", "recruiter"), NewApplicationHandler(deps).UpdateStatus)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/applications/a1/status", strings.NewReader(`{"status":"SHORTLISTED"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(caller.lastReq.Args), `"application_id":"a1"`)
	assert.Contains(t, string(caller.lastReq.Args), "SHORTLISTED")
}

func TestInterviewCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deps, caller := newTestDeps(t)
	caller.replies["interview.cancel"] = json.RawMessage(`{"interview_id":"iv1","status":"CANCELLED"}`)

	r := gin.New()
	r.POST("/interviews/:interview_id/cancel",
		asActor("seeker-1", "seeker"), NewInterviewHandler(deps).Cancel)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/interviews/iv1/cancel", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "interview.cancel", caller.lastReq.Op)
	assert.Contains(t, w.Body.String(), "CANCELLED")
}

func TestNotificationList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deps, caller := newTestDeps(t)
	caller.replies["notification.list"] = json.RawMessage(`[{"notification_id":"n1","read":false}]`)

	r := gin.New()
	r.GET("/notifications", asActor("seeker-1", "seeker"), NewNotificationHandler(deps).List)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/notifications?unread_only=true&limit=5", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(caller.lastReq.Args), `"unread_only":true`)
	assert.Contains(t, w.Body.String(), "n1")
}
