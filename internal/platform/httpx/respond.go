// Package httpx provides HTTP response utilities for the FactEcho JSON API.
package httpx

import (
	"encoding/json"
	"net/http"
)

// Response is the wire envelope every API endpoint returns.
type Response struct {
	StatusText string `json:"statusText"`
	Message    string `json:"message,omitempty"`
	Payload    any    `json:"payload,omitempty"`
}

// Status texts used in the envelope.
const (
	StatusSuccess = "SUCCESS"
	StatusFail    = "FAIL"
)

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// OK sends a SUCCESS envelope with the given payload.
func OK(w http.ResponseWriter, status int, payload any) {
	JSON(w, status, Response{StatusText: StatusSuccess, Payload: payload})
}

// Fail sends a FAIL envelope with a client-facing message.
func Fail(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Response{StatusText: StatusFail, Message: message})
}

// DecodeJSON decodes JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
