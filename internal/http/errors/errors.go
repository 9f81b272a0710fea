// Package errors carries the JSON error envelope and body helpers shared by
// controllers and middlewares.
package errors

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

type apiError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	RequestID        string `json:"request_id,omitempty"`
}

// Stable error codes for the auth surface. Descriptions shown to users are
// deliberately generic; details stay in the logs.
const (
	CodeConfigMissing      = "config_missing"
	CodeBadRequest         = "bad_request"
	CodeInvalidState       = "invalid_state"
	CodeInvalidCredentials = "invalid_credentials"
	CodeExchangeFailed     = "exchange_failed"
	CodeInvalidToken       = "invalid_token"
	CodeUnknownHost        = "unknown_host"
	CodeRateLimited        = "rate_limited"
)

// MsgInvalidCredentials is the only message the password login ever returns
// for a credential failure, so nothing leaks about which field was wrong.
const MsgInvalidCredentials = "Invalid email or password."

// WriteError writes the JSON error envelope. The request id comes from the
// response header set by the request-id middleware.
func WriteError(w http.ResponseWriter, status int, code, desc string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	rid := w.Header().Get("X-Request-ID")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiError{
		Error:            code,
		ErrorDescription: desc,
		RequestID:        rid,
	})
}

// WriteJSON writes a JSON response.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ReadJSON decodes a JSON body tolerantly (unknown fields are fine, the
// frontend sends extras). Caps the body at 1MB. Returns false after having
// written the error response.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if !strings.Contains(ct, "application/json") {
		WriteError(w, http.StatusBadRequest, CodeBadRequest, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil && err != io.EOF {
		WriteError(w, http.StatusBadRequest, CodeBadRequest, "invalid json")
		return false
	}
	return true
}
