package server

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// respondJSON writes v with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("server: encode response", zap.Error(err))
	}
}

// respondError writes a minimal client-error body.
func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// respondFailure writes the service-error envelope used for upstream
// and internal failures.
func respondFailure(w http.ResponseWriter, status int, errMsg, detail string) {
	respondJSON(w, status, map[string]string{
		"error":     errMsg,
		"message":   detail,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// isoTime renders t as RFC 3339 UTC, or nil for the zero time.
func isoTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
