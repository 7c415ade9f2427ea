package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"classroom-backend/internal/shared/config"
	"classroom-backend/internal/shared/metrics"
	"classroom-backend/internal/shared/server/middleware"
	"classroom-backend/internal/shared/server/respond"
)

// RouteRegistrar is implemented by every feature handler.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouterDeps groups handlers mounted under /api/v1. Nil handlers are skipped.
type RouterDeps struct {
	Config          config.Config
	BatchHandler    RouteRegistrar
	RunHandler      RouteRegistrar
	DocumentHandler RouteRegistrar
	ExportHandler   RouteRegistrar
	UserHandler     RouteRegistrar
	GoogleAuth      RouteRegistrar
	RateLimiter     *middleware.RateLimiter
}

const (
	groupDefault  = "DEFAULT"
	groupGenerate = "GENERATE"
	groupPolling  = "POLLING"
)

// rateGroup classifies a request for rate limiting. Generation calls reach the
// provider and get the tightest budget; run polling gets the loosest.
func rateGroup(c *gin.Context) string {
	path := c.FullPath()
	switch {
	case c.Request.Method == http.MethodGet && path == "/api/v1/runs/:id":
		return groupPolling
	case c.Request.Method == http.MethodPost && (path == "/api/v1/batches/:kind" ||
		path == "/api/v1/batches/:kind/regenerate" || path == "/api/v1/runs"):
		return groupGenerate
	case strings.HasPrefix(path, "/api/v1/health"), path == "/metrics":
		return ""
	default:
		return groupDefault
	}
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.Auth(deps.Config.Env),
		middleware.RateLimit(middleware.RateLimitConfig{
			DefaultGroup: groupDefault,
			GroupFor:     rateGroup,
			Limiter:      deps.RateLimiter,
			Rules: map[string]middleware.RateLimitRule{
				groupDefault:  {Rate: 5, Burst: 20},
				groupGenerate: {Rate: 0.5, Burst: 5},
				groupPolling:  {Rate: 10, Burst: 30},
			},
		}),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})

	for _, h := range []RouteRegistrar{
		deps.GoogleAuth,
		deps.UserHandler,
		deps.BatchHandler,
		deps.RunHandler,
		deps.DocumentHandler,
		deps.ExportHandler,
	} {
		if h != nil {
			h.RegisterRoutes(api)
		}
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
