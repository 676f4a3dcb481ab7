package http

import (
	"time"

	"github.com/divyarao54/Issue-Tracking-System/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func NewRouter(cfg config.Config, log zerolog.Logger, svc service) *gin.Engine {
	if cfg.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		reqID := uuid.NewString()
		c.Writer.Header().Set("X-Request-ID", reqID)
		start := time.Now()
		c.Next()
		log.Info().
			Str("req_id", reqID).
			Str("m", c.Request.Method).
			Str("p", c.FullPath()).
			Int("s", c.Writer.Status()).
			Dur("d", time.Since(start)).
			Msg("http")
	})

	h := NewHandlers(cfg, log, svc)

	r.GET("/health", h.Health)
	r.GET("/issues", h.ListIssues)
	r.GET("/issues/:id", h.GetIssue)
	r.POST("/issues", h.CreateIssue)
	r.PUT("/issues/:id", h.UpdateIssue)
	r.POST("/issues/:id/verify", h.VerifyIssue)
	r.GET("/assignees", h.ListAssignees)

	return r
}
