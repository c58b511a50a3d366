// Package web serves the MCP server over HTTP transports alongside a small
// JSON API.
package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/abdul-hamid-achik/robomem/internal/memsvc"
	"github.com/abdul-hamid-achik/robomem/internal/observe"
)

// ServerConfig holds configuration for the HTTP server.
type ServerConfig struct {
	Host        string
	Port        int
	MCP         *sdkmcp.Server
	Service     memsvc.Service
	DefaultUser string
}

// Server is the HTTP server exposing the MCP transports and JSON API.
type Server struct {
	config  ServerConfig
	router  *chi.Mux
	handler *Handler
}

// NewServer creates a new HTTP server.
func NewServer(cfg ServerConfig) *Server {
	s := &Server{
		config: cfg,
		router: chi.NewRouter(),
	}

	defaultUser := cfg.DefaultUser
	if defaultUser == "" {
		defaultUser = observe.DefaultUserID
	}
	s.handler = NewHandler(cfg.Service, defaultUser)

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures middleware for the router.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
}

// setupRoutes configures routes for the server.
func (s *Server) setupRoutes() {
	getServer := func(r *http.Request) *sdkmcp.Server {
		return s.config.MCP
	}

	// MCP transports: SSE for clients following the original deployment
	// shape, streamable HTTP for current ones. Both endpoints accept GET
	// and POST, so they are mounted rather than method-routed.
	s.router.Mount("/sse", sdkmcp.NewSSEHandler(getServer, nil))
	s.router.Mount("/mcp", sdkmcp.NewStreamableHTTPHandler(getServer, nil))

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handler.Health)
		r.Get("/recall", s.handler.APIRecall)
		r.Get("/map", s.handler.APIMap)
	})
}

// Router returns the chi router for external use.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	addr := s.config.Host + ":" + strconv.Itoa(s.config.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return server.ListenAndServe()
}
