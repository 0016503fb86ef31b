package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobdeck/jobdeck-be/internal/cache"
	"github.com/jobdeck/jobdeck-be/internal/gateway/auth"
	"github.com/jobdeck/jobdeck-be/internal/gateway/handler"
	"github.com/jobdeck/jobdeck-be/internal/notify"
	"github.com/jobdeck/jobdeck-be/internal/rpc"
	"github.com/jobdeck/jobdeck-be/shared/logger"
	"github.com/jobdeck/jobdeck-be/shared/redis"
)

type stubCaller struct{}

func (stubCaller) Call(ctx context.Context, req *rpc.Request) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

func setupTestRouter(t *testing.T, limit int64) (*gin.Engine, *auth.Verifier) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	log := logger.NewDefault().Logger
	store := redis.NewFromRedis(rdb, log)
	verifier := auth.NewVerifier("test-secret")

	deps := &handler.Dependencies{
		Logger: log,
		Caller: stubCaller{},
		Cache: cache.New(store, &cache.Config{
			DefaultTTL:     time.Minute,
			StaleThreshold: 10 * time.Second,
			RefreshTimeout: time.Second,
		}, log),
		Limiter: cache.NewLimiter(store, limit, time.Minute, log),
		Hub:     notify.NewHub(log),
	}

	return SetupRouter(deps, verifier), verifier
}

func TestHealthEndpoint(t *testing.T) {
	r, _ := setupTestRouter(t, 10)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestPublicReadsNeedNoToken(t *testing.T) {
	r, _ := setupTestRouter(t, 10)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs?keyword=go", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMutationsRequireToken(t *testing.T) {
	r, _ := setupTestRouter(t, 10)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/jobs"},
		{http.MethodPost, "/api/v1/jobs/j1/apply"},
		{http.MethodGet, "/api/v1/notifications"},
		{http.MethodPost, "/api/v1/interviews"},
	}

	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(p.method, p.path, nil)
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestApplyIsRateLimited(t *testing.T) {
	r, verifier := setupTestRouter(t, 2)

	token, err := verifier.Issue("seeker-1", "seeker", time.Hour)
	require.NoError(t, err)

	do := func() int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs/j1/apply", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusCreated, do())
	assert.Equal(t, http.StatusCreated, do())
	assert.Equal(t, http.StatusTooManyRequests, do())
}

func TestRateLimitIsPerActor(t *testing.T) {
	r, verifier := setupTestRouter(t, 1)

	tokenA, err := verifier.Issue("seeker-a", "seeker", time.Hour)
	require.NoError(t, err)
	tokenB, err := verifier.Issue("seeker-b", "seeker", time.Hour)
	require.NoError(t, err)

	do := func(token string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs/j1/apply", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusCreated, do(tokenA))
	assert.Equal(t, http.StatusTooManyRequests, do(tokenA))
	assert.Equal(t, http.StatusCreated, do(tokenB))
}
