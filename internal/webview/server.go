// Package webview serves the health viewer as an HTML page.
package webview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openmined/healthview/internal/viewer"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultAddr     = "127.0.0.1:3000"
	shutdownTimeout = 5 * time.Second
)

type Config struct {
	Addr string
}

// Server renders a single mounted Viewer. The viewer is mounted once when the
// server starts; page loads only read its current status.
type Server struct {
	config *Config
	viewer *viewer.Viewer
	logger *slog.Logger
	server *http.Server
}

func New(config *Config, v *viewer.Viewer, logger *slog.Logger) *Server {
	if config.Addr == "" {
		config.Addr = DefaultAddr
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config: config,
		viewer: v,
		logger: logger,
	}
	s.server = &http.Server{
		Addr:              config.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := gin.New()
	r.Use(requestLogger(s.logger))
	r.Use(gin.Recovery())
	r.Use(securityHeaders())
	r.Use(compression())

	r.GET("/", s.index)
	return r
}

func (s *Server) index(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	err := pageTemplate.Execute(c.Writer, pageData{
		Title:   viewer.Title,
		Heading: viewer.StatusHeading,
		Status:  s.viewer.Status().Pretty(),
	})
	if err != nil {
		s.logger.Error("render page", "error", err)
	}
}

// Start mounts the viewer, serves until ctx is done, then shuts down.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.config.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("web viewer start", "addr", ln.Addr().String())
	defer s.logger.Info("web viewer stop")

	s.viewer.Mount(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.viewer.Unmount()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
