// Package api provides the HTTP chassis for the firstlight service.
// It builds a chi router that enforces the cross-cutting concerns (panic
// recovery, request correlation, structured request logging, response
// compression) before requests reach the score and warmup handlers.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"firstlight/internal/config"
	"firstlight/internal/types"
)

// ScoreService is the slice of the forecast service the read endpoints
// consume. Defined locally to keep the chassis decoupled from the
// concrete service.
type ScoreService interface {
	// ListPoints returns the point catalogue in stable ID order.
	ListPoints() []types.Point

	// GetScore computes or returns the cached prediction for one point.
	GetScore(ctx context.Context, pointID string) (*types.ScoreResult, error)
}

// WarmupService runs one cache-priming sweep on demand.
type WarmupService interface {
	Warmup(ctx context.Context, label string) *types.WarmupReport
}

// Server encapsulates the API dependencies, allowing injection during
// testing and distinct configuration per environment.
type Server struct {
	Config *config.Config
	Scores ScoreService
	Warmer WarmupService
	Logger *slog.Logger

	// MetricsHandler serves GET /metrics when set; nil leaves the
	// route unmounted.
	MetricsHandler http.Handler

	router   *chi.Mux
	validate *validator.Validate
	clock    types.Clock
	started  time.Time
}

// NewServer wires the chassis and mounts the route tree. It fail-fast
// checks the dependencies the handlers cannot run without. A nil
// metricsHandler leaves /metrics unmounted; a nil clock falls back to
// the real one.
func NewServer(
	cfg *config.Config,
	scores ScoreService,
	warmer WarmupService,
	metricsHandler http.Handler,
	logger *slog.Logger,
	clock types.Clock,
) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if scores == nil {
		return nil, fmt.Errorf("score service must not be nil")
	}
	if warmer == nil {
		return nil, fmt.Errorf("warmup service must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if clock == nil {
		clock = types.RealClock{}
	}

	s := &Server{
		Config:         cfg,
		Scores:         scores,
		Warmer:         warmer,
		Logger:         logger,
		MetricsHandler: metricsHandler,
		router:         chi.NewRouter(),
		validate:       newValidator(),
		clock:          clock,
		started:        clock.Now(),
	}
	s.mountRoutes()

	return s, nil
}

// Handler returns the http.Handler for the mounted router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// triggerLabelPattern constrains warmup labels to short lowercase slugs
// so they stay usable as metric label values.
var triggerLabelPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,63}$`)

// newValidator builds the request validator and registers the
// domain-specific rules the handlers rely on.
func newValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails for empty tag names.
	_ = v.RegisterValidation("trigger_label", func(fl validator.FieldLevel) bool {
		return triggerLabelPattern.MatchString(fl.Field().String())
	})
	return v
}
