// Package admin exposes the rebind management operations over HTTP: full
// and per-component rebind triggers, component listing, and a health probe.
package admin

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/rebind/pkg/options/server"
)

// Rebinder is the management capability the admin server exposes.
type Rebinder interface {
	RebindAll() error
	Rebind(name string) (bool, error)
	Names() []string
	IsRegistered(name string) bool
}

// Server is the admin HTTP server.
type Server struct {
	opts     *server.Options
	engine   *gin.Engine
	server   *http.Server
	rebinder Rebinder
	serveErr chan error
}

// NewServer creates an admin server over the given rebinder.
func NewServer(opts *server.Options, rebinder Rebinder) *Server {
	if opts == nil {
		opts = server.NewOptions()
	}

	gin.SetMode(opts.Mode)
	engine := gin.New()
	engine.Use(Recovery(), RequestID(), Logger())

	s := &Server{
		opts:     opts,
		engine:   engine,
		rebinder: rebinder,
	}
	s.registerRoutes()
	return s
}

// Engine returns the underlying gin.Engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.health)

	adm := s.engine.Group("/admin")
	adm.POST("/rebind", s.rebindAll)
	adm.POST("/rebind/:name", s.rebindOne)
	adm.GET("/components", s.listComponents)
}

// Start binds the configured address and begins serving. The bind is
// synchronous, so a failure (port in use, bad address) is returned here;
// errors from the running server surface through Errors.
func (s *Server) Start(_ context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.opts.Addr, err)
	}

	s.server = &http.Server{
		Handler:      s.engine,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  s.opts.IdleTimeout,
	}

	s.serveErr = make(chan error, 1)
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.serveErr <- err
		}
	}()

	logger.Infow("Admin server started", "addr", ln.Addr().String())
	return nil
}

// Errors reports failures from the running server after a successful
// Start. Graceful shutdown does not produce an error.
func (s *Server) Errors() <-chan error {
	return s.serveErr
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	logger.Info("Admin server stopping")
	return s.server.Shutdown(ctx)
}
