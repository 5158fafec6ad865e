package common

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// ErrorBody is the payload under "error" in every failed response. RequestID lets
// support match a client report to the server logs.
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// JSON writes v with status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// JSONError writes {"error": ErrorBody}. r may be nil.
func JSONError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	body := ErrorBody{Code: code, Message: message, Details: details}
	if r != nil {
		body.RequestID = middleware.GetReqID(r.Context())
	}
	JSON(w, status, map[string]ErrorBody{"error": body})
}
