// Package httpbus implements broadcast.Bus over HTTP: Server exposes a
// shared in-process hub as one long-lived SSE stream per channel name
// plus a publish endpoint, and Client speaks that protocol from a
// separate process. Together they let conversations span machines
// without every listener needing a direct connection to every
// requester.
package httpbus

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/alkime/broadcast/internal/bus/inmem"
	"github.com/alkime/broadcast/internal/config"
	"github.com/alkime/broadcast/pkg/broadcast"
	"github.com/gin-gonic/gin"
)

// Server fans requests in over HTTP/SSE and rebroadcasts them through
// an in-process hub, so every subscriber connected to this server sees
// every frame published through it.
type Server struct {
	config *config.Config
	logger *slog.Logger
	router *gin.Engine
	hub    *inmem.Bus
}

// NewServer builds a Server ready to Run.
func NewServer(cfg *config.Config, log *slog.Logger) *Server {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	if cfg.Env == config.EnvProduction {
		router.TrustedPlatform = gin.PlatformFlyIO
		log.Debug("configured trusted platform", "platform", "fly.io")
	}

	s := &Server{
		config: cfg,
		logger: log,
		router: router,
		hub:    inmem.New(),
	}

	setupTransportHardening(router, cfg, log)
	s.setupRoutes()

	return s
}

// Router returns the server's router for testing.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts the HTTP server.
func Run(s *Server) error {
	s.logger.Info("bus server listening", "port", s.config.Port)
	if err := s.router.Run(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start bus server on port %s: %w", s.config.Port, err)
	}
	return nil
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/v1/channels/:name", s.handleSubscribe)
	s.router.POST("/v1/channels/:name", s.handlePublish)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "broadcast-bus",
	})
}

// handleSubscribe streams every frame published on :name as an SSE
// "frame" event until the client disconnects.
func (s *Server) handleSubscribe(c *gin.Context) {
	name := c.Param("name")
	ctx := c.Request.Context()

	handle, err := s.hub.Open(ctx, name)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	frames := make(chan broadcast.Frame, 64)
	ready := make(chan error, 1)
	s.hub.Subscribe(ctx, handle, func(err error) { ready <- err }, func(f broadcast.Frame) {
		select {
		case frames <- f:
		case <-ctx.Done():
		}
	})
	if err := <-ready; err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	defer func() {
		done := make(chan error, 1)
		s.hub.Close(ctx, handle, func(err error) { done <- err })
		<-done
	}()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	c.Stream(func(_ io.Writer) bool {
		select {
		case f := <-frames:
			encoded, err := broadcast.EncodeFrame(f)
			if err != nil {
				s.logger.Warn("dropping frame that failed to encode", "channel", name, "error", err)
				return true
			}
			c.SSEvent("frame", string(encoded))
			return true
		case <-ctx.Done():
			return false
		}
	})
}

// handlePublish decodes the request body as one frame and publishes it
// to :name's subscribers.
func (s *Server) handlePublish(c *gin.Context) {
	name := c.Param("name")

	var f broadcast.Frame
	if err := c.ShouldBindJSON(&f); err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	ctx := c.Request.Context()
	handle, err := s.hub.Open(ctx, name)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	done := make(chan error, 1)
	s.hub.Publish(ctx, handle, f, func(err error) { done <- err })
	if err := <-done; err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.Status(http.StatusAccepted)
}
