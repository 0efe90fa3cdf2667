package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/marcoskids/marcos/internal/logging"
)

type RouterConfig struct {
	Logger *logging.Logger

	HealthHandler    *HealthHandler
	ChildHandler     *ChildHandler
	JourneyHandler   *JourneyHandler
	ProgressHandler  *ProgressHandler
	StreamHandler    *StreamHandler
	RecomputeHandler *RecomputeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(cfg.Logger))

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.HealthCheck)
	}

	v1 := r.Group("/v1")
	{
		if cfg.ChildHandler != nil {
			v1.POST("/children", cfg.ChildHandler.Register)
			v1.GET("/children", cfg.ChildHandler.List)
			v1.GET("/children/:childID", cfg.ChildHandler.Get)
		}

		if cfg.JourneyHandler != nil {
			v1.POST("/children/:childID/journey", cfg.JourneyHandler.StartOrResume)
			v1.GET("/sessions/:sessionID", cfg.JourneyHandler.Get)
			v1.GET("/sessions/:sessionID/summary", cfg.JourneyHandler.Summary)
			v1.POST("/sessions/:sessionID/pause", cfg.JourneyHandler.Pause)
			v1.POST("/sessions/:sessionID/resume", cfg.JourneyHandler.Resume)
			v1.POST("/sessions/:sessionID/answers", cfg.JourneyHandler.Answer)
		}

		if cfg.ProgressHandler != nil {
			v1.GET("/children/:childID/progress", cfg.ProgressHandler.Progress)
			v1.GET("/children/:childID/badges", cfg.ProgressHandler.Badges)
			v1.GET("/children/:childID/notifications", cfg.ProgressHandler.Notifications)
		}

		if cfg.StreamHandler != nil {
			v1.GET("/children/:childID/notifications/stream", cfg.StreamHandler.Stream)
		}

		if cfg.RecomputeHandler != nil {
			v1.POST("/recompute", cfg.RecomputeHandler.Recompute)
		}
	}

	return r
}
