package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/classhub-server/internal/config"
	"github.com/vovakirdan/classhub-server/internal/core"
	"github.com/vovakirdan/classhub-server/internal/store"
)

// NewServer builds the HTTP server: the WebSocket mount plus the
// non-real-time collaborator endpoints.
func NewServer(hub *core.Hub, st store.Store, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/health", healthHandler)
	router.GET("/ws", gin.WrapH(NewWSHandler(hub, cfg.DefaultRoom, logger)))

	attendance := NewAttendanceHandlers(hub, st, logger)
	uploads := NewUploadHandlers(hub, st, logger)
	polls := NewPollHandlers(hub, st, logger)
	roster := NewRosterHandlers(st, logger)

	api := router.Group("/api")
	api.Use(RateLimitMiddleware(cfg.APIRateLimit))
	{
		api.POST("/enter", roster.Enter)
		api.POST("/attendance", attendance.Mark)
		api.GET("/attendance/export", attendance.Export)
		api.POST("/uploads", uploads.Notify)
		api.GET("/uploads", uploads.List)
		api.POST("/polls", polls.Create)
		api.GET("/polls", polls.List)
		api.POST("/polls/:id/vote", polls.Vote)
		api.GET("/leaderboard", roster.Leaderboard)
	}

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}
