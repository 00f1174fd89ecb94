// Package response defines the JSON envelope every API response uses and
// writes it for handlers that run outside the typed operation layer.
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"

	domainerrors "github.com/storyspine/storyspine-server/internal/errors"
)

// Version is the envelope format version carried in every response as "v".
const Version = 1

// Envelope wraps a successful response, or an error without a code.
type Envelope struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ErrorEnvelope wraps an error response with a machine-readable code.
type ErrorEnvelope struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Success wraps data in a success envelope.
func Success(data any) Envelope {
	return Envelope{Version: Version, Success: true, Data: data}
}

// Failure wraps a coded error in an error envelope.
func Failure(code, message string, details any) ErrorEnvelope {
	return ErrorEnvelope{
		Version: Version,
		Success: false,
		Error:   message,
		Code:    code,
		Message: message,
		Details: details,
	}
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && logger != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

// Error writes a coded error envelope using the code's HTTP status.
func Error(w http.ResponseWriter, code domainerrors.Code, message string, logger *slog.Logger) {
	JSON(w, code.HTTPStatus(), Failure(string(code), message, nil), logger)
}

// TooManyRequests writes a 429 envelope.
func TooManyRequests(w http.ResponseWriter, message string, logger *slog.Logger) {
	w.Header().Set("Retry-After", "1")
	Error(w, domainerrors.CodeRateLimited, message, logger)
}

// NotFound writes a 404 envelope.
func NotFound(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, domainerrors.CodeNotFound, message, logger)
}

// InternalError writes a 500 envelope.
func InternalError(w http.ResponseWriter, logger *slog.Logger) {
	Error(w, domainerrors.CodeInternal, "internal server error", logger)
}
