package utils

import (
	"encoding/json"
	"net/http"

	"github.com/dkarpushin/tubechat/internal/logger"
)

// ErrorBody is the uniform error payload: a stable machine-readable
// code plus a human-readable detail.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// RespondJSON writes a JSON response.
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.Errorf("failed to encode response: %v", err)
	}
}

// RespondError writes a structured error response.
func RespondError(w http.ResponseWriter, status int, code, message string) {
	RespondJSON(w, status, ErrorBody{Error: message, Code: code})
}
