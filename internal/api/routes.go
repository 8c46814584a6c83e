package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// defaultRequestTimeout is the soft deadline applied to request contexts
// when the configured write timeout is too small to derive one from.
const defaultRequestTimeout = 29 * time.Second

// mountRoutes registers the global middleware chain and the route tree.
//
// Middleware order (outermost first):
//  1. Recoverer      - catches every panic in the chain.
//  2. RequestID      - correlation ID before anything logs.
//  3. RequestLogger  - structured completion log with latency.
//  4. ContextTimeout - soft deadline under the server write timeout.
//  5. Gzip           - innermost so the logger observes real status codes.
func (s *Server) mountRoutes() {
	s.router.Use(s.Recoverer)
	s.router.Use(RequestIDMiddleware)
	s.router.Use(RequestLogger(s.Logger))
	s.router.Use(ContextTimeout(s.requestTimeout()))
	s.router.Use(Gzip)

	s.router.Route("/v1", func(r chi.Router) {
		r.Get("/points", s.HandleListPoints)
		r.Get("/points/{pointID}/score", s.HandleScore)
		r.Post("/warmup", s.HandleWarmup)
	})

	s.router.Get("/health", s.HandleHealth)
	if s.MetricsHandler != nil {
		s.router.Method(http.MethodGet, "/metrics", s.MetricsHandler)
	}
}

// requestTimeout derives the soft request deadline from the server write
// timeout, leaving one second of headroom to flush an error response.
func (s *Server) requestTimeout() time.Duration {
	if t := s.Config.Server.WriteTimeout; t > 2*time.Second {
		return t - time.Second
	}
	return defaultRequestTimeout
}
