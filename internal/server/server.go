// Package server exposes the conversation over HTTP and streams dialog
// messages and target events to the browser over a websocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ait-tooling/ait/internal/bus"
	"github.com/ait-tooling/ait/internal/capability"
	"github.com/ait-tooling/ait/internal/config/gateway"
	"github.com/ait-tooling/ait/internal/dependency"
	"github.com/ait-tooling/ait/internal/history"
	"github.com/ait-tooling/ait/internal/schema"
	"github.com/ait-tooling/ait/internal/targets"
)

const shutdownTimeout = 10 * time.Second

// Server is the `ait serve` HTTP surface.
type Server struct {
	chat     *history.Chat
	provider schema.LLMProvider
	registry *capability.Registry
	hub      *bus.Hub
	clicks   *targets.ClickService
	scrolls  *targets.ScrollService

	engine     *gin.Engine
	httpServer *http.Server
	upgrader   websocket.Upgrader
	startTime  time.Time
}

// New builds the server on top of the wired services.
func New(c *dependency.ServiceContainer, cfg gateway.GatewayConfig) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger())

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	corsConfig.AllowWebSockets = true
	engine.Use(cors.New(corsConfig))

	s := &Server{
		chat:     c.Chat(),
		provider: c.Provider(),
		registry: c.Registry(),
		hub:      c.Hub(),
		clicks:   c.ClickService(),
		scrolls:  c.ScrollService(),
		engine:   engine,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(cfg.AllowOrigins),
		},
		startTime: time.Now(),
	}
	s.httpServer = &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/messages", s.handleGetMessages)
		api.POST("/messages", s.handleSendMessage)
		api.DELETE("/messages", s.handleClearMessages)
		api.GET("/tools", s.handleGetTools)
		api.GET("/status", s.handleStatus)
	}
	s.engine.GET("/ws", s.handleWebSocket)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.httpServer.Addr }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("serve %s: %w", s.httpServer.Addr, err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

// originChecker allows any origin when none are configured.
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
