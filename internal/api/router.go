// Package api exposes the assistant over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ingres-assistant/internal/chat"
	"ingres-assistant/internal/common/config"
	"ingres-assistant/internal/common/logger"
	"ingres-assistant/internal/common/observability"
	"ingres-assistant/internal/models"
	translatetext "ingres-assistant/internal/workers/groundwater/translate-text"
)

type ChatService interface {
	Chat(ctx context.Context, req chat.Request) (*chat.Response, error)
	Session(ctx context.Context, id string) (*models.ChatSession, error)
}

type Translator interface {
	Execute(ctx context.Context, input *translatetext.Input) (*translatetext.Output, error)
}

// Check reports whether a dependency is ready to serve traffic.
type Check func(ctx context.Context) error

type Dependencies struct {
	Config         config.ServerConfig
	ServiceName    string
	Chat           ChatService
	Translator     Translator
	Checks         map[string]Check
	Observability  *observability.Observability
	Logger         logger.Logger
	MetricsHandler http.Handler
}

type Server struct {
	deps           Dependencies
	requestTimeout time.Duration
	logger         logger.Logger
}

func NewServer(deps Dependencies) *Server {
	if deps.MetricsHandler == nil {
		deps.MetricsHandler = promhttp.Handler()
	}
	if deps.ServiceName == "" {
		deps.ServiceName = "ingres-assistant"
	}
	return &Server{
		deps:           deps,
		requestTimeout: config.GetDuration(deps.Config.RequestTimeout),
		logger:         deps.Logger.With(map[string]interface{}{"component": "api"}),
	}
}

func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(recovery(s.logger), accessLog(s.logger), requestMetrics(s.deps.Observability))
	router.Use(cors.New(corsConfig(s.deps.Config.CORSAllowOrigins)))

	router.GET("/health", s.health)
	router.GET("/ready", s.ready)
	router.GET("/metrics", gin.WrapH(s.deps.MetricsHandler))

	api := router.Group("/api")
	api.POST("/chat", s.postChat)
	api.GET("/chat/:sessionId", s.getChatSession)
	api.GET("/search/suggestions", s.searchSuggestions)
	api.POST("/translate", s.translate)

	legacy := api.Group("/groundwater")
	legacy.GET("/assessments", s.legacyGuidance)
	legacy.GET("/statistics/:state", s.legacyGuidance)

	return router
}

// HTTPServer wraps the router with the configured timeouts.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              ":" + s.deps.Config.Port,
		Handler:           s.Router(),
		ReadHeaderTimeout: config.GetDuration(s.deps.Config.ReadHeaderTimeout),
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": s.deps.ServiceName,
	})
}

func (s *Server) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	failures := gin.H{}
	for name, check := range s.deps.Checks {
		if err := check(ctx); err != nil {
			failures[name] = err.Error()
		}
	}
	if len(failures) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "checks": failures})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
