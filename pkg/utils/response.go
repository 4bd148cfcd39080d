package utils

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Envelope wraps every mutating response.
type Envelope struct {
	Response any  `json:"response"`
	Success  bool `json:"success"`
}

// RespondJSON writes payload as JSON with the given status.
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

// RespondEnvelope writes {response, success}.
func RespondEnvelope(w http.ResponseWriter, status int, response any, success bool) {
	RespondJSON(w, status, Envelope{Response: response, Success: success})
}

// RespondError writes a bare {"error": message} body for non-envelope routes.
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, map[string]string{"error": message})
}

// RespondText writes a plain text body.
func RespondText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		zap.L().Warn("failed to write response", zap.Error(err))
	}
}
