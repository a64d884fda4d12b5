package handlers

import (
	"net/http"

	"github.com/portfolio-studio/engine/internal/api/schemas"
	"github.com/portfolio-studio/engine/internal/api/types"
	"github.com/portfolio-studio/engine/internal/services"
	appErr "github.com/portfolio-studio/engine/pkg/errors"
)

type EnvHandler struct {
	svc services.EnvService
}

func NewEnvHandler(svc services.EnvService) *EnvHandler {
	return &EnvHandler{svc: svc}
}

// UpdateEnv stores GITHUB_TOKEN in the env file. An empty token disables the integration.
func (h *EnvHandler) UpdateEnv(w http.ResponseWriter, r *http.Request) {
	var req types.UpdateEnvRequest
	if err := decodeBody(w, r, schemas.UpdateEnv, &req); err != nil {
		if appErr.IsCode(err, appErr.CodeInvalid) {
			err = appErr.Wrap(err, appErr.CodeInvalid, "Invalid token format")
		}
		writeError(w, r, err, "")
		return
	}
	if err := h.svc.SetGitHubToken(r.Context(), req.GitHubToken); err != nil {
		writeError(w, r, err, "Failed to update environment file")
		return
	}
	writeJSON(w, http.StatusOK, types.Envelope{Success: true})
}

// GitHubEnabled never fails; any lookup problem reads as disabled.
func (h *EnvHandler) GitHubEnabled(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.GitHubEnabledResponse{Enabled: h.svc.GitHubEnabled(r.Context())})
}
