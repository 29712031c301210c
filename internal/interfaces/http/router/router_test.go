package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/comfort/backend/internal/infrastructure/config"
	"github.com/comfort/backend/internal/infrastructure/logger"
	"github.com/comfort/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type pingRegistrar struct {
	prefix string
}

func (p pingRegistrar) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET(p.prefix+"/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	rg.POST(p.prefix+"/echo", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.JSON(http.StatusOK, body)
	})
	rg.GET(p.prefix+"/panic", func(c *gin.Context) {
		panic("boom")
	})
}

func TestNewRouter(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIVersion(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))

	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterRegister(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine).
		Register(pingRegistrar{prefix: "/a"}).
		Register(pingRegistrar{prefix: "/b"}, pingRegistrar{prefix: "/c"})

	assert.Len(t, r.registrars, 3)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	NewRouter(engine, WithAPIVersion("v2")).
		Register(pingRegistrar{prefix: "/test"}).
		Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/test/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/test/ping", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func newTestEngine(t *testing.T, httpCfg config.HTTPConfig) *gin.Engine {
	t.Helper()
	engine, err := NewEngine(EngineOptions{
		HTTP:        httpCfg,
		ServiceName: "comfort-test",
		Logger:      zap.NewNop(),
	})
	require.NoError(t, err)
	NewRouter(engine).Register(pingRegistrar{}).Setup()
	return engine
}

func TestNewEngine_SecurityHeadersAndRequestID(t *testing.T) {
	engine := newTestEngine(t, config.HTTPConfig{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	req.Header.Set(logger.RequestIDHeader, "req-1")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-1", w.Header().Get(logger.RequestIDHeader))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestNewEngine_NoRouteUsesEnvelope(t *testing.T) {
	engine := newTestEngine(t, config.HTTPConfig{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nowhere", nil)
	req.Header.Set(logger.RequestIDHeader, "req-404")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "req-404", resp.Error.RequestID)
}

func TestNewEngine_BodyLimit(t *testing.T) {
	engine := newTestEngine(t, config.HTTPConfig{MaxBodyBytes: 16})

	body := bytes.NewBufferString(`{"note":"this body is far larger than sixteen bytes"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/echo", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/echo", bytes.NewBufferString(`{"a":1}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewEngine_RecoversPanics(t *testing.T) {
	engine := newTestEngine(t, config.HTTPConfig{})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_INTERNAL")
}

func TestNewEngine_RejectsBadTrustedProxy(t *testing.T) {
	_, err := NewEngine(EngineOptions{HTTP: config.HTTPConfig{TrustedProxies: []string{"not-an-ip"}}})
	assert.Error(t, err)
}
