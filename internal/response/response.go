// Package response provides shared JSON response helpers for HTTP handlers.
package response

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the standard error payload. Error carries a stable
// machine-readable kind tag; Message is safe to show to users, backend
// internals never leak through it.
type ErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// JSON writes a JSON-encoded payload with the given HTTP status code.
func JSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Message writes a 200 response with just a confirmation message.
func Message(w http.ResponseWriter, message string) {
	JSON(w, http.StatusOK, map[string]string{"message": message})
}

// Fail writes an error response with the given status, user message and kind tag.
func Fail(w http.ResponseWriter, status int, message, kind string) {
	JSON(w, status, ErrorBody{Message: message, Error: kind})
}

// BadRequest writes a 400 response.
func BadRequest(w http.ResponseWriter, message string) {
	JSON(w, http.StatusBadRequest, ErrorBody{Message: message})
}

// Unauthorized writes a 401 response.
func Unauthorized(w http.ResponseWriter, message string) {
	JSON(w, http.StatusUnauthorized, ErrorBody{Message: message})
}

// NotFound writes a 404 response.
func NotFound(w http.ResponseWriter, message string) {
	JSON(w, http.StatusNotFound, ErrorBody{Message: message})
}

// Unavailable writes a 503 response with a machine-readable reason so callers
// can tell a disabled subsystem apart from a missing resource.
func Unavailable(w http.ResponseWriter, message, kind string) {
	Fail(w, http.StatusServiceUnavailable, message, kind)
}

// InternalError writes a 500 response with a generic message.
func InternalError(w http.ResponseWriter, message string) {
	JSON(w, http.StatusInternalServerError, ErrorBody{Message: message})
}
