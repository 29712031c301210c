package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestRouter(l *zap.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(l), GinMiddleware(l))
	r.GET("/orders/:id", func(c *gin.Context) {
		FromContext(c.Request.Context()).Info("handler")
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
	})
	r.GET("/missing", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	r.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})
	return r
}

func TestGinMiddleware(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	r := newTestRouter(zap.New(core))

	t.Run("generates a request id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/1", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		id := w.Header().Get(RequestIDHeader)
		require.NotEmpty(t, id)

		logs := recorded.TakeAll()
		require.Len(t, logs, 2)
		assert.Equal(t, "handler", logs[0].Message)
		assert.Equal(t, id, logs[0].ContextMap()["request_id"])
		assert.Equal(t, "request served", logs[1].Message)
		assert.Equal(t, "/orders/:id", logs[1].ContextMap()["route"])
		assert.EqualValues(t, http.StatusOK, logs[1].ContextMap()["status"])
	})

	t.Run("keeps an incoming request id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/orders/2", nil)
		req.Header.Set(RequestIDHeader, "abc")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))
		logs := recorded.TakeAll()
		assert.Equal(t, "abc", logs[len(logs)-1].ContextMap()["request_id"])
	})

	t.Run("client errors log as warnings", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

		logs := recorded.TakeAll()
		require.NotEmpty(t, logs)
		assert.Equal(t, zapcore.WarnLevel, logs[len(logs)-1].Level)
	})
}

func TestRecovery(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	r := newTestRouter(zap.New(core))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"error":{"code":"ERR_INTERNAL","message":"An unexpected error occurred"}}`, w.Body.String())
	assert.Equal(t, 1, recorded.FilterMessage("panic recovered").Len())
}
