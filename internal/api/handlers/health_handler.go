package handlers

import (
	"context"
	"net/http"

	appErr "github.com/portfolio-studio/engine/pkg/errors"
)

// ReadinessCheck reports whether a dependency can serve requests.
type ReadinessCheck func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]ReadinessCheck
}

func NewHealthHandler(checks map[string]ReadinessCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

type healthStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthStatus{Status: "ok"})
}

// Readiness runs every check and answers 503 when any of them fails.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	res := healthStatus{Status: "ready"}
	failed := false
	for name, check := range h.checks {
		if res.Checks == nil {
			res.Checks = map[string]string{}
		}
		if err := check(r.Context()); err != nil {
			res.Checks[name] = err.Error()
			failed = true
			continue
		}
		res.Checks[name] = "ok"
	}
	if failed {
		res.Status = "unavailable"
		writeJSON(w, appErr.HTTPStatus(appErr.New(appErr.CodeUnavailable, "")), res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
