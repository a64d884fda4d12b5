package middleware

import (
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/portfolio-studio/engine/internal/api/types"
	appErr "github.com/portfolio-studio/engine/pkg/errors"
)

// Recovery logs panics and answers 500 with a generic message.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				Logger(r.Context()).Error("panic recovered",
					zap.Any("panic", rec),
					zap.ByteString("stack", debug.Stack()),
				)
				writeEnvelope(w, http.StatusInternalServerError, types.Envelope{
					Error: http.StatusText(http.StatusInternalServerError),
					Code:  string(appErr.CodeInternal),
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
