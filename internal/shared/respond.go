package shared

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the machine-readable part of an error envelope.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// RespondJSON writes a success envelope with the given payload.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

// RespondError writes an error envelope with a stable code.
func RespondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: false, Error: &ErrorBody{Code: code, Message: message}})
}

// RespondForbidden writes the standard 403 denial envelope.
func RespondForbidden(w http.ResponseWriter) {
	RespondError(w, http.StatusForbidden, CodeForbidden, "you do not have permission to perform this action")
}

// RespondUnauthorized writes the standard 401 envelope.
func RespondUnauthorized(w http.ResponseWriter) {
	RespondError(w, http.StatusUnauthorized, CodeUnauthorized, "authentication required")
}
