package handlers

import (
	"encoding/json"
	"net/http"
)

// RequestIDHeader is set on every request and response by the router.
const RequestIDHeader = "X-Request-Id"

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}
