// Package httpapi exposes the manager over a JSON REST API served by gin.
//
// Every response carries a "success" flag. Failures add an "error" message and
// use the status code matching the error kind: 404 for unknown zones and records,
// 409 for duplicates, 400 for malformed input, 502 when BIND or rndc fails and
// 500 for filesystem errors.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/haukened/bindmgr/internal/dns/common/log"
)

// Options configures the API server.
type Options struct {
	Addr    string
	APIKey  string // empty disables authentication
	Service Service
	Logger  log.Logger
}

// Server is the management REST API server.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	logger     log.Logger
}

// New builds the gin engine and registers every route.
func New(opts Options) *Server {
	if opts.Service == nil {
		panic("httpapi.New: service is nil")
	}
	logger := log.With(opts.Logger, map[string]any{"component": "httpapi"})

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestLogger(logger))

	RegisterRoutes(engine, NewHandler(opts.Service), opts.APIKey)

	httpServer := &http.Server{
		Addr:              opts.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second, // reloads can take a while
		IdleTimeout:       60 * time.Second,
	}
	return &Server{engine: engine, httpServer: httpServer, logger: logger}
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// ListenAndServe blocks until the server stops. A graceful Shutdown is not an error.
func (s *Server) ListenAndServe() error {
	s.logger.Info(map[string]any{"addr": s.httpServer.Addr}, "api listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
