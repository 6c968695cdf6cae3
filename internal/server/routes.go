// Package server wires HTTP handlers into a ServeMux for the roomchat
// application via routing helpers.
package server

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/Tyrowin/roomchat/internal/chat"
)

// SetupRoutes configures and returns the application handler. It serves the
// health check, the WebSocket endpoint, the room list and Prometheus metrics,
// wrapped in a CORS middleware that admits the configured origins.
func SetupRoutes(hub *Hub, router *chat.Router, metrics *Metrics, policy *originPolicy) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", HealthHandler)
	mux.HandleFunc("/health", HealthHandler)
	mux.HandleFunc("/ws", WebSocketHandler(hub, policy))
	mux.HandleFunc("/rooms", RoomsHandler(router))
	mux.Handle("/metrics", metrics.Handler())

	c := cors.New(cors.Options{
		AllowedOrigins: policy.corsOrigins(),
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(mux)
}
