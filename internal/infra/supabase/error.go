package supabase

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// CodeNoRows is PostgREST's code for a single-object request that matched
// zero (or several) rows.
const CodeNoRows = "PGRST116"

// Error is a failed backend call. Message is what the backend said.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// IsNoRows reports whether err is a PGRST116 error.
func IsNoRows(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == CodeNoRows
}

// StatusOf returns the backend HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// decodeError builds an Error from a non-2xx response body. PostgREST uses
// {code,message,details,hint}; GoTrue uses {error_code,msg} or
// {error,error_description}.
func decodeError(status int, body []byte) *Error {
	var raw struct {
		Code             json.RawMessage `json:"code"`
		ErrorCode        string          `json:"error_code"`
		Message          string          `json:"message"`
		Msg              string          `json:"msg"`
		Err              string          `json:"error"`
		ErrorDescription string          `json:"error_description"`
		Details          json.RawMessage `json:"details"`
		Hint             string          `json:"hint"`
	}

	e := &Error{Status: status}
	if err := json.Unmarshal(body, &raw); err != nil {
		e.Message = strings.TrimSpace(string(body))
		if e.Message == "" {
			e.Message = http.StatusText(status)
		}
		return e
	}

	e.Code = raw.ErrorCode
	if e.Code == "" {
		e.Code = rawString(raw.Code)
	}
	e.Details = rawString(raw.Details)
	e.Hint = raw.Hint

	for _, m := range []string{raw.Message, raw.Msg, raw.ErrorDescription, raw.Err} {
		if m != "" {
			e.Message = m
			break
		}
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

// rawString renders a JSON scalar as text. GoTrue sends numeric codes,
// PostgREST string ones.
func rawString(r json.RawMessage) string {
	if len(r) == 0 || string(r) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(r, &s); err == nil {
		return s
	}
	return string(r)
}
