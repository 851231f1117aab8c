// Package user serves /api/users: public profiles for everyone and
// self-service for the signed-in user at /api/users/me.
package user

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"community-gateway/internal/domain/entity"
	"community-gateway/internal/handler/http/auth"
	"community-gateway/internal/handler/http/respond"
	"community-gateway/internal/infra/supabase"
	"community-gateway/internal/observability/logging"
	"community-gateway/internal/service/session"
	userUC "community-gateway/internal/usecase/user"
)

// Users is the use case the handlers call.
type Users interface {
	GetPublic(ctx context.Context, id string) (*entity.PublicProfile, error)
	ListPublic(ctx context.Context, q string) ([]entity.PublicProfile, error)
	Me(ctx context.Context, who userUC.Identity) (json.RawMessage, error)
	UpdateMe(ctx context.Context, who userUC.Identity, patch map[string]any) error
	DeleteMe(ctx context.Context, who userUC.Identity) error
}

// Handler holds the dependencies of the /api/users routes.
type Handler struct {
	Svc      Users
	Factory  auth.ClientFactory
	Sessions auth.SessionResolver
}

// Register mounts the user routes on mux.
func Register(mux *http.ServeMux, h Handler) {
	mux.HandleFunc("/api/users", h.List)
	mux.HandleFunc("/api/users/me", h.Me)
	mux.HandleFunc("/api/users/{user_id}", h.Get)
}

// List searches active users.
//
// @Summary      List users
// @Description  Up to 100 active users, newest first. q matches full_name and bio.
// @Tags         users
// @Produce      json
// @Param        q query string false "Search text; only letters, digits and spaces are kept"
// @Success      200 {array} entity.PublicProfile
// @Failure      405 {object} map[string]string
// @Failure      500 {object} map[string]string
// @Router       /api/users [get]
func (h Handler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respond.MethodNotAllowed(w, http.MethodGet)
		return
	}
	users, err := h.Svc.ListPublic(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		backendError(w, r, err)
		return
	}
	if users == nil {
		users = []entity.PublicProfile{}
	}
	respond.JSON(w, http.StatusOK, users)
}

// Get returns one public profile.
//
// @Summary      Get a public profile
// @Tags         users
// @Produce      json
// @Param        user_id path string true "User id"
// @Success      200 {object} entity.PublicProfile
// @Failure      405 {object} map[string]string
// @Failure      500 {object} map[string]string "Backend error, including a missing user"
// @Router       /api/users/{user_id} [get]
func (h Handler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respond.MethodNotAllowed(w, http.MethodGet)
		return
	}
	p, err := h.Svc.GetPublic(r.Context(), r.PathValue("user_id"))
	if err != nil {
		backendError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, p)
}

// Me reads, updates or deletes the signed-in user.
//
// @Summary      Current user
// @Tags         users
// @Accept       json
// @Produce      json
// @Success      200 {object} object
// @Success      204
// @Failure      400 {object} map[string]string "Invalid parameter"
// @Failure      401 {object} map[string]string "Unauthorized"
// @Failure      405 {object} map[string]string
// @Failure      500 {object} map[string]string
// @Router       /api/users/me [get]
// @Router       /api/users/me [patch]
// @Router       /api/users/me [delete]
func (h Handler) Me(w http.ResponseWriter, r *http.Request) {
	who, ok := h.identity(w, r)
	if !ok {
		respond.Message(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	switch r.Method {
	case http.MethodGet:
		row, err := h.Svc.Me(r.Context(), who)
		if err != nil {
			backendError(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, row)

	case http.MethodPatch:
		var patch map[string]any
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			respond.Message(w, http.StatusBadRequest, "Invalid parameter")
			return
		}
		if err := h.Svc.UpdateMe(r.Context(), who, patch); err != nil {
			if errors.Is(err, entity.ErrInvalidParameter) {
				respond.Message(w, http.StatusBadRequest, "Invalid parameter")
				return
			}
			backendError(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, map[string]bool{"success": true})

	case http.MethodDelete:
		if err := h.Svc.DeleteMe(r.Context(), who); err != nil {
			backendError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		respond.MethodNotAllowed(w, http.MethodGet, http.MethodPatch, http.MethodDelete)
	}
}

func (h Handler) identity(w http.ResponseWriter, r *http.Request) (userUC.Identity, bool) {
	u, err := h.Sessions.CurrentUser(r.Context(), h.Factory.Cookie(w, r))
	if err != nil {
		if !errors.Is(err, session.ErrNoSession) {
			logging.FromContext(r.Context()).Warn("session lookup failed", slog.String("error", err.Error()))
		}
		return userUC.Identity{}, false
	}
	return userUC.Identity{ID: u.ID, Email: u.Email, UserMetadata: u.UserMetadata}, true
}

// backendError answers 500 with the backend's own message when there is
// one.
func backendError(w http.ResponseWriter, r *http.Request, err error) {
	msg, ok := backendMessage(err)
	if !ok {
		respond.BackendError(w, err)
		return
	}
	logging.FromContext(r.Context()).Error("users backend call failed",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()))
	respond.Message(w, http.StatusInternalServerError, msg)
}

func backendMessage(err error) (string, bool) {
	var be *supabase.Error
	if errors.As(err, &be) {
		return be.Message, true
	}
	var se *entity.StoreError
	if errors.As(err, &se) {
		return se.Message, true
	}
	return "", false
}
