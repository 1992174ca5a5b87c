package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leslie0605/magic-prep-backend/internal/documents"
	"github.com/leslie0605/magic-prep-backend/internal/notifications"
	"github.com/leslie0605/magic-prep-backend/internal/shared/config"
	"github.com/leslie0605/magic-prep-backend/internal/shared/metrics"
	"github.com/leslie0605/magic-prep-backend/internal/shared/server/middleware"
	"github.com/leslie0605/magic-prep-backend/internal/shared/server/respond"
)

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config               config.Config
	DocumentsHandler     *documents.Handler
	NotificationsHandler *notifications.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Identity(),
		middleware.RateLimit(middleware.RateLimitConfig{
			GroupFor: rateLimitGroup,
			Rules: map[string]middleware.RateLimitRule{
				"DEFAULT": {Rate: 5, Burst: 20},
				"UPLOAD":  {Rate: 1, Burst: 5},
			},
		}),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	api.GET("/metrics", metrics.Handler())

	// Static segments must register before their param siblings are hit,
	// but Gin resolves /documents/student-submission and /documents/:id
	// safely side by side.
	deps.NotificationsHandler.RegisterRoutes(api)
	deps.DocumentsHandler.RegisterRoutes(api)

	return r
}

// rateLimitGroup puts file-upload routes in a tighter bucket than the rest.
func rateLimitGroup(c *gin.Context) string {
	if c.Request.Method == http.MethodPost && c.FullPath() == "/api/v1/documents/edited-document" {
		return "UPLOAD"
	}
	return "DEFAULT"
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
