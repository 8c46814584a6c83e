package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"firstlight/internal/types"
)

// pointsResponse is the payload for GET /v1/points.
type pointsResponse struct {
	Points []types.Point `json:"points"`
	Count  int           `json:"count"`
}

// healthResponse is the payload for GET /health.
type healthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version,omitempty"`
	Commit        string `json:"commit,omitempty"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Points        int    `json:"points"`
}

// warmupRequest is the optional body for POST /v1/warmup.
type warmupRequest struct {
	Label string `json:"label" validate:"omitempty,trigger_label"`
}

// HandleListPoints handles GET /v1/points. The catalogue is static, so
// clients may cache it for an hour.
func (s *Server) HandleListPoints(w http.ResponseWriter, r *http.Request) {
	points := s.Scores.ListPoints()

	w.Header().Set("Cache-Control", "public, max-age=3600")
	JSON(w, r, http.StatusOK, APIResponse{Data: pointsResponse{
		Points: points,
		Count:  len(points),
	}})
}

// HandleScore handles GET /v1/points/{pointID}/score. Unknown IDs map to
// 404 and upstream exhaustion to 503 through the shared error writer;
// degraded results come back 200 with warnings inline.
func (s *Server) HandleScore(w http.ResponseWriter, r *http.Request) {
	pointID := chi.URLParam(r, "pointID")

	result, err := s.Scores.GetScore(r.Context(), pointID)
	if err != nil {
		Error(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=60")
	JSON(w, r, http.StatusOK, APIResponse{Data: result})
}

// HandleWarmup handles POST /v1/warmup. The body is optional; when
// present it may carry a label that names the trigger in logs and
// metrics. The sweep runs synchronously and its report is returned.
func (s *Server) HandleWarmup(w http.ResponseWriter, r *http.Request) {
	req := warmupRequest{Label: "manual"}
	if r.ContentLength != 0 {
		if err := DecodeJSON(w, r, &req); err != nil {
			Error(w, r, err)
			return
		}
		if req.Label == "" {
			req.Label = "manual"
		}
		if err := s.validate.Struct(req); err != nil {
			Error(w, r, types.NewAppError(
				types.ErrCodeValidationInvalidTrigger,
				"label must be a lowercase slug of at most 64 characters",
				err,
			))
			return
		}
	}

	report := s.Warmer.Warmup(r.Context(), req.Label)

	JSON(w, r, http.StatusOK, APIResponse{Data: report})
}

// HandleHealth handles GET /health. It reports liveness only; upstream
// reachability shows up in /metrics and in score warnings instead.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	JSON(w, r, http.StatusOK, healthResponse{
		Status:        "ok",
		Version:       s.Config.Build.Version,
		Commit:        s.Config.Build.Commit,
		UptimeSeconds: int64(s.clock.Now().Sub(s.started).Seconds()),
		Points:        len(s.Scores.ListPoints()),
	})
}
