package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/CVSRohit/PodcastGen/config"
	"github.com/CVSRohit/PodcastGen/handlers"
)

func RegisterRoutes(r *gin.Engine, cfg config.ServerConfig, h *handlers.Handlers, logger *zap.Logger) {
	r.Use(requestLogger(logger), gin.Recovery())

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: int(cfg.SessionTTL.Seconds()), HttpOnly: true})
	r.Use(sessions.Sessions("podcastgen", store))

	// Configure CORS middleware
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Accept"}
	corsConfig.AllowCredentials = true // session cookie
	r.Use(cors.New(corsConfig))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/", h.StartSession)
	r.DELETE("/", h.EndSession)
	r.POST("/credentials", h.SetCredentials)
	r.POST("/extract", h.Extract)

	r.POST("/dialogue", h.GenerateDialogue)
	r.GET("/dialogue", h.GetDialogue)
	r.PUT("/dialogue", h.UpdateDialogue)

	r.POST("/podcast", h.CreatePodcast)
	r.GET("/podcast/audio", h.PodcastAudio)
	r.GET("/podcast/ws", h.PodcastSocket)
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}
