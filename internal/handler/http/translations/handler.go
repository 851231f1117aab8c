// Package translations serves message bundles to clients that render on
// their own.
package translations

import (
	"net/http"

	"community-gateway/internal/handler/http/respond"
	"community-gateway/internal/i18n"
)

type Handler struct {
	Catalog *i18n.Catalog
}

func Register(mux *http.ServeMux, h Handler) {
	mux.HandleFunc("GET /api/translations", h.Resolve)
	mux.HandleFunc("GET /api/translations/{locale}", h.Get)
}

// Resolve returns the bundle for ?locale=, falling back to the request's
// negotiated locale and then the default.
//
// @Summary      Resolve translations
// @Tags         i18n
// @Produce      json
// @Param        locale query string false "Preferred locale"
// @Success      200 {object} i18n.Props
// @Router       /api/translations [get]
func (h Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	explicit := i18n.FromContext(r.Context())
	if explicit == "" {
		explicit = h.Catalog.Negotiate(r.Header.Get("Accept-Language"))
	}
	respond.JSON(w, http.StatusOK, h.Catalog.TranslationProps(i18n.Candidates{
		Query:    r.URL.Query().Get("locale"),
		Explicit: explicit,
	}))
}

// Get returns the bundle of one locale.
//
// @Summary      Get translations
// @Tags         i18n
// @Produce      json
// @Param        locale path string true "Locale"
// @Success      200 {object} i18n.Props
// @Failure      404 {object} object "Unsupported locale"
// @Router       /api/translations/{locale} [get]
func (h Handler) Get(w http.ResponseWriter, r *http.Request) {
	locale := r.PathValue("locale")
	if !h.Catalog.Supported(locale) {
		respond.Message(w, http.StatusNotFound, "unsupported locale")
		return
	}
	respond.JSON(w, http.StatusOK, h.Catalog.TranslationProps(i18n.Candidates{Param: locale}))
}
