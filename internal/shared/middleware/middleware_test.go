package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodgram-backend/pkg/jwt"
)

type stubRevocations struct {
	revoked map[string]bool
	err     error
}

func (s stubRevocations) IsRevoked(_ context.Context, id string) (bool, error) {
	return s.revoked[id], s.err
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/whoami", func(c *gin.Context) {
		id, ok := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "authenticated": ok})
	})
	return r
}

func do(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	manager := jwt.NewManager("secret", time.Hour)
	token, err := manager.GenerateAccessToken(7, "a@example.com")
	require.NoError(t, err)
	claims, err := manager.ValidateAccessToken(token)
	require.NoError(t, err)

	r := newEngine(AuthMiddleware(manager, stubRevocations{}))

	assert.Equal(t, http.StatusUnauthorized, do(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "Bearer not-a-token").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "Basic abc").Code)

	w := do(r, "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(7), body["id"])

	assert.Equal(t, http.StatusOK, do(r, "Token "+token).Code)

	revoked := newEngine(AuthMiddleware(manager, stubRevocations{revoked: map[string]bool{claims.ID: true}}))
	assert.Equal(t, http.StatusUnauthorized, do(revoked, "Bearer "+token).Code)

	storeDown := newEngine(AuthMiddleware(manager, stubRevocations{err: errors.New("redis down")}))
	assert.Equal(t, http.StatusOK, do(storeDown, "Bearer "+token).Code)
}

func TestOptionalAuth(t *testing.T) {
	manager := jwt.NewManager("secret", time.Hour)
	token, err := manager.GenerateAccessToken(3, "b@example.com")
	require.NoError(t, err)

	r := newEngine(OptionalAuth(manager, nil))

	w := do(r, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":0,"authenticated":false}`, w.Body.String())

	w = do(r, "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":3,"authenticated":true}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, do(r, "Bearer broken").Code)
}

func TestRequestID(t *testing.T) {
	r := newEngine(RequestID())

	w := do(r, "")
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(HeaderRequestID, "upstream-id")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "upstream-id", w.Header().Get(HeaderRequestID))
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery())
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "SYS_001")
}

func TestIPRateLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(60, 2)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.Allow("1.1.1.1"))
	assert.True(t, limiter.Allow("1.1.1.1"))
	assert.False(t, limiter.Allow("1.1.1.1"))
	assert.True(t, limiter.Allow("2.2.2.2"), "buckets are per IP")

	now = now.Add(time.Second)
	assert.True(t, limiter.Allow("1.1.1.1"), "one token refills per second at 60/min")

	now = now.Add(time.Hour)
	limiter.Allow("3.3.3.3")
	limiter.mu.Lock()
	assert.Len(t, limiter.limiters, 1, "idle buckets are swept")
	limiter.mu.Unlock()
}

func TestRateLimitMiddleware(t *testing.T) {
	r := newEngine(ClientIPMiddleware(), RateLimit(NewIPRateLimiter(1, 1)))

	assert.Equal(t, http.StatusOK, do(r, "").Code)
	w := do(r, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}

func TestCORS(t *testing.T) {
	r := newEngine(CORS([]string{"https://app.example"}))

	req := httptest.NewRequest(http.MethodOptions, "/whoami", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.NotContains(t, w.Body.String(), "authenticated")

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Origin", "https://app.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsAndLogger(t *testing.T) {
	r := newEngine(RequestID(), ClientIPMiddleware(), Logger(), Metrics())
	assert.Equal(t, http.StatusOK, do(r, "").Code)
}
