// Package server exposes the relay over HTTP for Pub/Sub push subscriptions.
// Each push request is one invocation of the notifier; the completion or
// error is translated into the HTTP response so Pub/Sub can acknowledge or
// redeliver the message.
package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"pushnotify/internal/types"
)

// defaultRequestTimeout bounds a single push invocation, including the
// outbound webhook POST.
const defaultRequestTimeout = 30 * time.Second

// Server holds the dependencies of the push endpoint.
type Server struct {
	Handler types.Handler
	Logger  *slog.Logger

	// Gatherer, when set, is served at GET /metrics.
	Gatherer prometheus.Gatherer

	// RequestTimeout overrides defaultRequestTimeout when positive.
	RequestTimeout time.Duration

	router *chi.Mux
}

// NewServer creates a Server. Routes are registered by MountRoutes so callers
// can set optional fields first.
func NewServer(handler types.Handler, logger *slog.Logger) (*Server, error) {
	if handler == nil {
		return nil, fmt.Errorf("handler must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	return &Server{
		Handler: handler,
		Logger:  logger,
		router:  chi.NewRouter(),
	}, nil
}

// HTTPHandler returns the router as an http.Handler.
func (s *Server) HTTPHandler() http.Handler {
	return s.router
}

// Router returns the underlying chi.Mux.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) requestTimeout() time.Duration {
	if s.RequestTimeout > 0 {
		return s.RequestTimeout
	}
	return defaultRequestTimeout
}
