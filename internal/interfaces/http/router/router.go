// Package router assembles the gin engine and mounts every API group.
package router

import (
	"github.com/comfort/backend/internal/infrastructure/config"
	"github.com/comfort/backend/internal/infrastructure/logger"
	"github.com/comfort/backend/internal/interfaces/http/dto"
	"github.com/comfort/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// Setup mounts every registrar under /api/<version>
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// EngineOptions configures NewEngine
type EngineOptions struct {
	HTTP           config.HTTPConfig
	ServiceName    string
	Tracing        bool
	TracerProvider trace.TracerProvider
	Logger         *zap.Logger
}

// NewEngine builds a gin engine with the standard middleware chain:
// recovery, tracing, request logging, span status, security headers, body
// limit and request timeout. Unknown routes answer with the error envelope.
func NewEngine(opts EngineOptions) (*gin.Engine, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(opts.HTTP.TrustedProxies); err != nil {
		return nil, err
	}
	middleware.SetupValidator()

	engine.Use(
		logger.Recovery(log),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName:    opts.ServiceName,
			Enabled:        opts.Tracing,
			TracerProvider: opts.TracerProvider,
		}),
		logger.GinMiddleware(log),
		middleware.SpanErrorMarker(),
		middleware.Secure(),
		middleware.BodyLimit(maxBodyBytes(opts.HTTP)),
		middleware.RequestTimeout(opts.HTTP.RequestTimeout),
	)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(dto.GetHTTPStatus(dto.ErrCodeNotFound), dto.NewErrorResponseWithRequestID(
			dto.ErrCodeNotFound,
			"Route not found",
			logger.GetRequestID(c.Request.Context()),
		))
	})
	return engine, nil
}

func maxBodyBytes(cfg config.HTTPConfig) int64 {
	if cfg.MaxBodyBytes > 0 {
		return cfg.MaxBodyBytes
	}
	return middleware.DefaultMaxBodyBytes
}
