package server

import (
	"context"
	"net/http"
	"time"

	"github.com/hongminglow/dbgate/internal/admin"
	"github.com/hongminglow/dbgate/internal/auth"
	"github.com/hongminglow/dbgate/internal/config"
	"github.com/hongminglow/dbgate/internal/http/handlers"
	"github.com/hongminglow/dbgate/internal/logging"
	"github.com/hongminglow/dbgate/internal/middleware"
)

// Deps are the services the HTTP surface is built on.
type Deps struct {
	Auth  *auth.Service
	Admin *admin.Service
	DB    handlers.Pinger
	Log   logging.Logger
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, deps Deps) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           Handler(cfg, deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// backup create and restore hold the request open for the child process
		WriteTimeout: cfg.BackupTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return &Server{inner: httpServer}
}

// Handler builds the routed and wrapped handler without binding a listener.
func Handler(cfg config.Config, deps Deps) http.Handler {
	mux := http.NewServeMux()
	handlers.NewHealthHandler(time.Now(), deps.DB).Register(mux)
	handlers.NewAuthHandler(deps.Auth, deps.Log, middleware.NewIPLimiter(cfg.AuthRatePerMinute)).Register(mux)
	handlers.NewAdminHandler(deps.Admin, deps.Log).Register(mux)

	return middleware.CORS(cfg.CORSOrigins)(middleware.Logging(deps.Log)(mux))
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
