package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/portfolio-studio/engine/internal/api/middleware"
	"github.com/portfolio-studio/engine/internal/api/schemas"
	"github.com/portfolio-studio/engine/internal/api/types"
	appErr "github.com/portfolio-studio/engine/pkg/errors"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers with the status mapped from err's code. fallback is shown instead of
// the message of internal errors.
func writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := appErr.HTTPStatus(err)
	log := middleware.Logger(r.Context()).With(
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	if status >= http.StatusInternalServerError {
		log.Error("request failed")
	} else {
		log.Warn("request rejected", zap.Int("status", status))
	}
	writeJSON(w, status, types.FromAppError(err, fallback))
}

func writeOK(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, types.Envelope{Success: true, Message: msg})
}

// decodeBody reads at most maxBodyBytes, checks them against schema and decodes into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, schema string, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return appErr.Wrap(err, appErr.CodeTooLarge, "Request body too large")
		}
		return appErr.Wrap(err, appErr.CodeInvalid, "Could not read request body")
	}
	if !json.Valid(body) {
		return appErr.New(appErr.CodeInvalid, "Invalid JSON body")
	}
	if err := schemas.Validate(schema, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return appErr.Wrap(err, appErr.CodeInvalid, "Invalid request body")
	}
	return nil
}
