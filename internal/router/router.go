package router

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/facility-api/internal/middleware"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// PublicHandler also mounts routes that need no session.
type PublicHandler interface {
	Handler
	RegisterPublicRoutes(*gin.RouterGroup)
}

// MetricsHandler records requests and serves the metrics registry.
type MetricsHandler interface {
	Middleware() gin.HandlerFunc
	Handler() gin.HandlerFunc
}

type Router struct {
	engine    *gin.Engine
	auth      *middleware.AuthMiddleware
	authH     PublicHandler
	healthH   Handler
	metricsH  MetricsHandler
	protected []Handler
}

type RouterConfig struct {
	Mode       string
	RateLimit  rate.Limit
	RateBurst  int
	CORSConfig middleware.CORSConfig
}

// Handlers are the API handlers mounted behind authentication.
type Handlers struct {
	Auth          PublicHandler
	Health        Handler
	Metrics       MetricsHandler
	Users         Handler
	Patients      Handler
	Appointments  Handler
	Facility      Handler
	Notifications Handler
}

func NewRouter(auth *middleware.AuthMiddleware, handlers Handlers, config RouterConfig) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}

	engine := gin.New()

	r := &Router{
		engine:   engine,
		auth:     auth,
		authH:    handlers.Auth,
		healthH:  handlers.Health,
		metricsH: handlers.Metrics,
	}
	for _, h := range []Handler{
		handlers.Users,
		handlers.Patients,
		handlers.Appointments,
		handlers.Facility,
		handlers.Notifications,
	} {
		if h != nil {
			r.protected = append(r.protected, h)
		}
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
	)
	if r.metricsH != nil {
		engine.Use(r.metricsH.Middleware())
	}
	engine.Use(middleware.CORS(config.CORSConfig))

	if config.RateLimit > 0 {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(rateLimiter.RateLimit())
	}
	engine.Use(middleware.ErrorHandler())

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.setupHealthCheck(api)

	// Public routes
	r.authH.RegisterPublicRoutes(api)

	// Protected routes
	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	r.authH.RegisterRoutes(protected)
	for _, h := range r.protected {
		h.RegisterRoutes(protected)
	}
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	if r.healthH != nil {
		r.healthH.RegisterRoutes(rg)
	}
	if r.metricsH != nil {
		rg.GET("/health/metrics", r.metricsH.Handler())
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
