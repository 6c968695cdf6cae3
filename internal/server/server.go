// Package server implements the HTTP server functionality for the roomchat server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Tyrowin/roomchat/internal/chat"
)

// CreateServer creates and configures the HTTP server with security settings
func CreateServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// StartServer starts the HTTP server and blocks until it exits. A server
// closed by Shutdown is not an error.
func StartServer(server *http.Server, logger zerolog.Logger) error {
	logger.Info().Str("addr", server.Addr).Msg("server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ShutdownServer stops accepting new HTTP connections and waits for active
// requests to finish, or for ctx to expire.
func ShutdownServer(ctx context.Context, server *http.Server, logger zerolog.Logger) error {
	logger.Info().Msg("shutting down HTTP server")
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// App bundles the chat router, the hub and the HTTP server built from one
// Config.
type App struct {
	cfg     *Config
	log     zerolog.Logger
	router  *chat.Router
	hub     *Hub
	metrics *Metrics
	handler http.Handler
	server  *http.Server
}

// NewApp builds every component of the server. Nothing runs until Start.
func NewApp(cfg *Config, logger zerolog.Logger) *App {
	metrics := NewMetrics()
	router := chat.NewRouter(chat.Options{
		RateLimit: cfg.RateLimit(),
		Logger:    &logger,
	})
	hub := NewHub(router, cfg, metrics, logger)
	policy := newOriginPolicy(cfg.AllowedOrigins, logger)
	handler := SetupRoutes(hub, router, metrics, policy)

	return &App{
		cfg:     cfg,
		log:     logger,
		router:  router,
		hub:     hub,
		metrics: metrics,
		handler: handler,
		server:  CreateServer(cfg.Port, handler),
	}
}

// Handler returns the HTTP handler serving every route.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Router returns the chat router shared by the hub and the HTTP handlers.
func (a *App) Router() *chat.Router {
	return a.router
}

// Hub returns the WebSocket hub.
func (a *App) Hub() *Hub {
	return a.hub
}

// Start runs the hub loop and serves HTTP until the server is shut down.
func (a *App) Start() error {
	go a.hub.Run()
	return StartServer(a.server, a.log)
}

// Shutdown stops the HTTP server first so no new clients arrive, then closes
// every WebSocket client.
func (a *App) Shutdown(ctx context.Context) error {
	httpErr := ShutdownServer(ctx, a.server, a.log)
	hubErr := a.hub.Shutdown(ctx)
	return errors.Join(httpErr, hubErr)
}
