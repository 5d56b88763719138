package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// ErrorResponse represents a generic error response body
// swagger:model ErrorResponse
type ErrorResponse struct {
	// Error message
	// default: Internal server error
	Error string `json:"error"`
}

// MessageResponse represents a generic success message body
// swagger:model MessageResponse
type MessageResponse struct {
	// Success message
	// default: OK
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// pageParams pulls page and page_size from the query, with defaults.
func pageParams(r *http.Request) (page, pageSize int) {
	page, pageSize = 1, 20
	if n, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && n >= 1 {
		page = n
	}
	if n, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil && n >= 1 && n <= 100 {
		pageSize = n
	}
	return page, pageSize
}

// limitParam pulls a result limit from the query, with a default cap.
func limitParam(r *http.Request, def int) int {
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n >= 1 && n <= 100 {
		return n
	}
	return def
}
