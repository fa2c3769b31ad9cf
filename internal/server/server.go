/*
Package server implements the application's network transport layer.
It initializes the HTTP server, configures timeouts, and exposes the
assistant over plain HTTP and WebSocket.
*/
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"Walkmate_V0.1/internal/assistant"
	"Walkmate_V0.1/internal/config"
	"Walkmate_V0.1/internal/database"
	"Walkmate_V0.1/internal/utility"
	"github.com/prometheus/client_golang/prometheus"
)

// Assistant answers one chat request with the tagged response object.
type Assistant interface {
	Handle(ctx context.Context, req assistant.Request) assistant.Response
}

// Dependencies are the services the routes need.
type Dependencies struct {
	DB        database.Service
	Assistant Assistant
	// Registry backs GET /metrics. Nil falls back to the default registry.
	Registry *prometheus.Registry
}

// Server defines the configuration and dependencies for the HTTP service.
type Server struct {
	port      int
	jwtSecret string

	db        database.Service
	assistant Assistant
	gatherer  prometheus.Gatherer

	// hub tracks open chat sockets so they can be closed on shutdown.
	hub       *utility.Hub
	startTime time.Time
}

// NewServer returns a configured *http.Server with production network timeouts.
func NewServer(cfg *config.Config, deps Dependencies) *http.Server {
	app := newApp(cfg, deps)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", app.port),
		Handler:      app.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.GenerationTimeout*2 + 10*time.Second, // classification and generation
	}
	// Hijacked WebSocket connections are not tracked by Shutdown.
	server.RegisterOnShutdown(app.hub.CloseAll)

	return server
}

func newApp(cfg *config.Config, deps Dependencies) *Server {
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if deps.Registry != nil {
		gatherer = deps.Registry
	}

	return &Server{
		port:      cfg.Port,
		jwtSecret: cfg.JWTSecret,
		db:        deps.DB,
		assistant: deps.Assistant,
		gatherer:  gatherer,
		hub:       utility.NewHub(),
		startTime: time.Now(),
	}
}
