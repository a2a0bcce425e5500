package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MountRoutes registers the middleware chain and all routes.
//
// Middleware order:
//  1. Recoverer       - outermost, catches panics from everything below.
//  2. ContextTimeout  - bounds the invocation.
//  3. RequestID       - correlation id for logs and error bodies.
//  4. RequestLogger   - one structured line per request.
func (s *Server) MountRoutes() {
	s.router.Use(s.Recoverer)
	s.router.Use(ContextTimeoutMiddleware(s.requestTimeout()))
	s.router.Use(RequestIDMiddleware(s.Logger))
	s.router.Use(RequestLogger(s.Logger))

	s.router.Post("/pubsub/push", s.HandlePush)
	s.router.Get("/health", s.HandleHealth)

	if s.Gatherer != nil {
		s.router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}
}
