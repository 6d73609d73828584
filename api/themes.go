package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) listThemes(w http.ResponseWriter, r *http.Request) {
	themes, err := h.themes.ListActive(r.Context())
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, themes)
}

func (h *Handler) getTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.themes.GetTheme(r.Context(), chi.URLParam(r, "themeID"))
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, theme)
}
