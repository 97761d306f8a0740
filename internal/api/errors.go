// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"encoding/json"
	"net/http"

	"github.com/masadchattha/QRCodeHelper/internal/log"
)

// Error codes returned in the "error" field of JSON error bodies.
const (
	CodeEmptyText      = "empty_text"
	CodeUnencodable    = "unencodable_text"
	CodeTooLong        = "text_too_long"
	CodeInvalidOptions = "invalid_options"
	CodeInvalidBody    = "invalid_body"
	CodeInternal       = "internal_error"
)

// APIError is the JSON error body.
type APIError struct {
	Error     string `json:"error"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, detail string) {
	writeJSON(w, status, APIError{
		Error:     code,
		Detail:    detail,
		RequestID: log.RequestIDFromContext(r.Context()),
	})
}
