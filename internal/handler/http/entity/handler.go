// Package entity exposes the configured tables under /api/{entities}.
package entity

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"community-gateway/internal/handler/http/auth"
	"community-gateway/internal/handler/http/respond"
	"community-gateway/internal/infra/supabase"
	"community-gateway/internal/observability/logging"
	"community-gateway/internal/observability/metrics"
	"community-gateway/internal/service/session"
	entityUC "community-gateway/internal/usecase/entity"
)

// Handler serves the collection and item routes.
type Handler struct {
	Svc      *entityUC.Service
	Factory  auth.ClientFactory
	Sessions auth.SessionResolver
}

// Register mounts the entity routes on mux.
func Register(mux *http.ServeMux, h Handler) {
	mux.HandleFunc("/api/{entities}", h.Collection)
	mux.HandleFunc("/api/{entities}/{entity_id}", h.Item)
}

// Collection lists or creates rows.
//
// @Summary      List or create rows
// @Tags         entities
// @Produce      json
// @Param        entities path string true "Table name"
// @Param        limit query int false "Page size, at most 1000"
// @Param        offset query int false "Rows to skip"
// @Param        order query string false "Sort column, '-' prefix for descending"
// @Success      200 {object} entityUC.ListBody
// @Success      201 {object} object
// @Failure      400 {object} entityUC.ErrorBody
// @Failure      401 {object} entityUC.ErrorBody
// @Failure      404 {object} entityUC.ErrorBody "Entity not found"
// @Failure      429 {object} object "Too many requests" headers(Retry-After=integer)
// @Failure      500 {object} entityUC.ErrorBody
// @Router       /api/{entities} [get]
// @Router       /api/{entities} [post]
func (h Handler) Collection(w http.ResponseWriter, r *http.Request) {
	req, c, ok := h.request(w, r)
	if !ok {
		return
	}
	h.write(w, r, req.Table, h.Svc.EntitiesRoute(r.Context(), c, req))
}

// Item reads, creates, updates or deletes one row. An entity_id of "me"
// stands for the signed-in user.
//
// @Summary      Read or modify one row
// @Tags         entities
// @Produce      json
// @Param        entities path string true "Table name"
// @Param        entity_id path string true "Row id or 'me'"
// @Success      200 {object} object
// @Failure      400 {object} entityUC.ErrorBody
// @Failure      401 {object} entityUC.ErrorBody
// @Failure      404 {object} entityUC.ErrorBody
// @Failure      405 {object} entityUC.ErrorBody
// @Failure      500 {object} entityUC.ErrorBody
// @Router       /api/{entities}/{entity_id} [get]
// @Router       /api/{entities}/{entity_id} [post]
// @Router       /api/{entities}/{entity_id} [patch]
// @Router       /api/{entities}/{entity_id} [delete]
func (h Handler) Item(w http.ResponseWriter, r *http.Request) {
	req, c, ok := h.request(w, r)
	if !ok {
		return
	}
	req.ID = r.PathValue("entity_id")
	h.write(w, r, req.Table, h.Svc.EntityRoute(r.Context(), c, req))
}

func (h Handler) request(w http.ResponseWriter, r *http.Request) (entityUC.Request, *supabase.Client, bool) {
	req := entityUC.Request{
		Method: r.Method,
		Table:  r.PathValue("entities"),
		Query:  r.URL.Query(),
	}

	if r.Body != nil && (r.Method == http.MethodPost || r.Method == http.MethodPatch) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				respond.Message(w, http.StatusRequestEntityTooLarge, "request body too large")
				return req, nil, false
			}
			respond.Message(w, http.StatusBadRequest, "Invalid parameter")
			return req, nil, false
		}
		req.Body = body
	}

	c := h.Factory.Cookie(w, r)
	req.UserID = h.userID(r.Context(), c)
	return req, c, true
}

// userID prefers verified claims and asks the auth API otherwise.
func (h Handler) userID(ctx context.Context, c *supabase.Client) string {
	if id := c.UserID(); id != "" {
		return id
	}
	if c.Role() != supabase.RoleAuthenticated {
		return ""
	}
	u, err := h.Sessions.CurrentUser(ctx, c)
	if err != nil {
		if !errors.Is(err, session.ErrNoSession) {
			logging.FromContext(ctx).Warn("session lookup failed", slog.String("error", err.Error()))
		}
		return ""
	}
	return u.ID
}

func (h Handler) write(w http.ResponseWriter, r *http.Request, table string, res entityUC.Result) {
	if _, known := h.Svc.Registry[table]; !known {
		table = "unknown"
	}
	metrics.EntityRequestsTotal.WithLabelValues(table, r.Method, strconv.Itoa(res.Status)).Inc()

	if res.Status == http.StatusMethodNotAllowed {
		respond.MethodNotAllowed(w, res.Allow...)
		return
	}
	respond.JSON(w, res.Status, res.Body)
}
