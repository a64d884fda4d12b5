package types

import (
	"errors"
	"fmt"

	appErr "github.com/portfolio-studio/engine/pkg/errors"
)

// APIError is a non-2xx response as seen by a client.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// FromAppError builds the failure envelope for err. fallback replaces the message of
// errors that are not AppErrors so internals do not leak to the browser.
func FromAppError(err error, fallback string) Envelope {
	if err == nil {
		return Envelope{Success: true}
	}
	var e *appErr.AppError
	if errors.As(err, &e) {
		msg := e.Message
		if e.Code == appErr.CodeInternal && fallback != "" {
			msg = fallback
		}
		return Envelope{Success: false, Error: msg, Code: string(e.Code)}
	}
	if fallback == "" {
		fallback = err.Error()
	}
	return Envelope{Success: false, Error: fallback, Code: string(appErr.CodeUnknown)}
}

// AsAppError maps a decoded failure back into the shared error codes.
func (e *APIError) AsAppError() *appErr.AppError {
	code := appErr.Code(e.Code)
	if code == "" {
		code = appErr.CodeUnknown
	}
	return appErr.Wrap(e, code, e.Message)
}
