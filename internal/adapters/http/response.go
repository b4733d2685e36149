package http

import (
	"encoding/json"
	"net/http"
)

// Every body carries a "status" discriminator so clients can branch without
// inspecting HTTP codes. "processing" is reserved for accepted-but-
// reconciling ledger operations.
type apiError struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, map[string]any{
		"status": "success",
		"data":   data,
	})
}

func writeMessage(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]any{
		"status":  "success",
		"message": message,
	})
}

// writeProcessing acknowledges a request whose ledger leg confirmed but
// whose off-chain commit is still owed to the reconciliation sweep.
func writeProcessing(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":  "processing",
		"message": message,
	})
}

func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, apiError{
		Status:  "error",
		Code:    code,
		Message: message,
	})
}
