// Package api assembles the HTTP server for the narrative gateway.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	narrativehandlers "github.com/ridgeline/caseflow/internal/api/handlers/narrative"
	"github.com/ridgeline/caseflow/internal/api/middleware"
	"github.com/ridgeline/caseflow/internal/buildinfo"
	"github.com/ridgeline/caseflow/internal/config"
	log "github.com/ridgeline/caseflow/internal/logging"
	"github.com/ridgeline/caseflow/internal/narrative"
)

// Server wraps the gin engine and its http.Server.
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	srv    *http.Server
}

// NewServer builds the router and wires the narrative endpoints.
func NewServer(cfg *config.Config, svc *narrative.Service) *Server {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": buildinfo.Version,
		})
	})

	handler := narrativehandlers.NewHandler(svc)

	v1 := engine.Group("/v1/narrative")
	v1.Use(
		middleware.RequestSizeLimit(middleware.DefaultMaxRequestSize),
		middleware.APIKeyAuth(cfg.APIKeys),
	)
	v1.POST("/summarize-report", handler.SummarizeReport)
	v1.POST("/behavioral-insights", handler.BehavioralInsights)
	v1.POST("/enhance-report", handler.EnhanceReport)
	v1.GET("/status", handler.Status)

	return &Server{
		cfg:    cfg,
		engine: engine,
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Engine exposes the router. Tests only.
func (s *Server) Engine() *gin.Engine { return s.engine }

// Run serves until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	log.Infof("narrative gateway listening on %s", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// requestLogger logs one line per request at debug level.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debugf("%s %s -> %d (%s)",
			c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), time.Since(start).Round(time.Millisecond))
	}
}
