package entity

import (
	"encoding/json"
	"net/http"
	"net/url"
)

// Request is one call to an entity route.
type Request struct {
	Method string
	Table  string
	ID     string
	Query  url.Values
	Body   json.RawMessage
	// UserID is the session user, "" when anonymous.
	UserID string
}

// Result is what the handler writes back.
type Result struct {
	Status int
	Body   any
	// Allow is set on 405 responses.
	Allow []string
}

// ErrorBody is the JSON error envelope of entity routes.
type ErrorBody struct {
	Error string `json:"error"`
}

// ListBody is the GET /api/{entities} response.
type ListBody struct {
	Data    json.RawMessage `json:"data"`
	Count   int             `json:"count"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
	HasMore bool            `json:"has_more"`
}

// SuccessBody is the DELETE response.
type SuccessBody struct {
	Success bool `json:"success"`
}

var (
	collectionMethods = []string{http.MethodGet, http.MethodPost}
	itemMethods       = []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete}
)

func fail(status int, msg string) Result {
	return Result{Status: status, Body: ErrorBody{Error: msg}}
}

func notAllowed(allow []string) Result {
	return Result{Status: http.StatusMethodNotAllowed, Body: ErrorBody{Error: "Method Not Allowed"}, Allow: allow}
}

var (
	resultUnknownEntity = fail(http.StatusNotFound, "Entity not found")
	resultNotFound      = fail(http.StatusNotFound, "Not Found")
	resultUnauthorized  = fail(http.StatusUnauthorized, "Unauthorized")
	resultInvalid       = fail(http.StatusBadRequest, "Invalid parameter")
)
