// Package api holds the JSON envelope shared by the setup-tracking APIs.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Response is the envelope every API endpoint answers with. Extra carries
// endpoint-specific payload fields merged into the top-level object.
type Response struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Extra   map[string]any `json:"-"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write json response failed", slog.Any("err", err))
	}
}

// OK writes a success envelope, merging extra payload fields.
func OK(w http.ResponseWriter, message string, extra map[string]any) {
	writeEnvelope(w, http.StatusOK, true, message, extra)
}

// Fail writes a failure envelope with the given status.
func Fail(w http.ResponseWriter, status int, message string) {
	writeEnvelope(w, status, false, message, nil)
}

func writeEnvelope(w http.ResponseWriter, status int, success bool, message string, extra map[string]any) {
	body := map[string]any{"success": success}
	if message != "" {
		body["message"] = message
	}
	for k, v := range extra {
		body[k] = v
	}
	WriteJSON(w, status, body)
}

// DecodeBody decodes a JSON request body into v.
func DecodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
