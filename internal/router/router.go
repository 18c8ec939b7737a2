package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/hms-api/internal/handler"
	authhandler "github.com/jwalitptl/hms-api/internal/handler/auth"
	"github.com/jwalitptl/hms-api/internal/handler/health"
	"github.com/jwalitptl/hms-api/internal/handler/prometheus"
	"github.com/jwalitptl/hms-api/internal/middleware"
	"github.com/jwalitptl/hms-api/internal/service/audit"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/metrics"
)

const APIPrefix = "/api/v1"

var routeNotFound = apperrors.NotFound("route", nil)

// Handler is a resource handler mounted behind authentication.
type Handler interface {
	RegisterRoutes(r *gin.RouterGroup, authorize handler.Authorizer)
}

type RouterConfig struct {
	// ExposeInternal puts internal error detail in 500 responses.
	ExposeInternal bool
	CORSOrigins    []string
	// RateLimit of zero disables rate limiting.
	RateLimit      rate.Limit
	RateBurst      int
	MaxBodyBytes   int64
	MaxUploadBytes int64
	Timeout        time.Duration
}

type Router struct {
	engine    *gin.Engine
	config    RouterConfig
	auth      *middleware.AuthMiddleware
	audit     *middleware.AuditMiddleware
	metrics   *metrics.Metrics
	authH     *authhandler.Handler
	healthH   *health.Handler
	metricsH  *prometheus.Handler
	resources []Handler
}

func NewRouter(
	config RouterConfig,
	auth *middleware.AuthMiddleware,
	auditLog *audit.Logger,
	m *metrics.Metrics,
	authH *authhandler.Handler,
	healthH *health.Handler,
	metricsH *prometheus.Handler,
	resources ...Handler,
) *Router {
	return &Router{
		engine:    gin.New(),
		config:    config,
		auth:      auth,
		audit:     middleware.NewAuditMiddleware(auditLog),
		metrics:   m,
		authH:     authH,
		healthH:   healthH,
		metricsH:  metricsH,
		resources: resources,
	}
}

// Setup installs the middleware chain and mounts every route. Request
// logging, metrics and the audit trail sit outside the error handler so
// they observe the final status.
func (r *Router) Setup() {
	r.engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Metrics(r.metrics),
		r.audit.AuditLog(),
		middleware.ErrorHandler(r.config.ExposeInternal),
		middleware.Recovery(),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.CORS(r.config.CORSOrigins),
	)

	r.healthH.RegisterRoutes(r.engine)
	r.metricsH.RegisterRoutes(r.engine)

	api := r.engine.Group(APIPrefix)
	if r.config.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  r.config.RateLimit,
			Burst: r.config.RateBurst,
		})
		api.Use(limiter.RateLimit())
	}
	api.Use(
		middleware.SizeLimit(r.sizeLimits()),
		middleware.Timeout(r.timeout()),
	)

	r.authH.RegisterPublicRoutes(api)

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())

	r.authH.RegisterRoutes(protected, r.auth.Authorize)
	for _, h := range r.resources {
		h.RegisterRoutes(protected, r.auth.Authorize)
	}

	r.engine.NoRoute(func(c *gin.Context) {
		handler.Fail(c, routeNotFound)
	})
}

func (r *Router) sizeLimits() middleware.SizeLimitConfig {
	limits := middleware.DefaultSizeLimitConfig()
	if r.config.MaxBodyBytes > 0 {
		limits.MaxBodySize = r.config.MaxBodyBytes
	}
	if r.config.MaxUploadBytes > 0 {
		limits.MaxUploadSize = r.config.MaxUploadBytes
	}
	return limits
}

func (r *Router) timeout() middleware.TimeoutConfig {
	timeout := middleware.DefaultTimeoutConfig()
	if r.config.Timeout > 0 {
		timeout.Duration = r.config.Timeout
	}
	return timeout
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
