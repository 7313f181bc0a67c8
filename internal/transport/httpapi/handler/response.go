package handler

import (
	"encoding/json"
	"net/http"

	"github.com/glowdesk/walletd/internal/apperrors"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, ErrorResponse{Error: message}, statusCode)
}

// respondAppError maps an upstream error onto an HTTP status. The two 401
// flavors keep distinct codes so the client can tell "wrong password" from
// "log in again".
func respondAppError(w http.ResponseWriter, err error) {
	appErr := apperrors.GetAppError(err)
	if appErr == nil {
		respondError(w, "internal error", http.StatusInternalServerError)
		return
	}

	var status int
	switch appErr.Kind {
	case apperrors.KindInvalidCredentials, apperrors.KindSessionExpired:
		status = http.StatusUnauthorized
	case apperrors.KindNotFound:
		status = http.StatusNotFound
	case apperrors.KindTimeout:
		status = http.StatusGatewayTimeout
	case apperrors.KindUpstream, apperrors.KindDecode:
		status = http.StatusBadGateway
	default:
		status = http.StatusInternalServerError
	}

	respondJSON(w, ErrorResponse{Error: appErr.Message, Code: appErr.Kind}, status)
}
