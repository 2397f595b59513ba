package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/freebook/backend/internal/domain"
	"github.com/freebook/backend/internal/middleware"
	"github.com/freebook/backend/internal/service"
	"github.com/freebook/backend/internal/transport"
)

// UserHandler exposes HTTP endpoints for profile operations.
type UserHandler struct{ S *service.ProfileService }

func NewUserHandler(s *service.ProfileService) *UserHandler { return &UserHandler{s} }

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.S.List(r.Context())
	if err != nil {
		transport.Error(r.Context(), w, err)
		return
	}
	if profiles == nil {
		profiles = []*domain.Profile{}
	}
	transport.WriteJSON(w, http.StatusOK, profiles)
}

// Current returns the authenticated user's profile.
func (h *UserHandler) Current(w http.ResponseWriter, r *http.Request) {
	p, err := h.S.Current(r.Context(), middleware.Subject(r.Context()))
	if err != nil {
		transport.Error(r.Context(), w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, p)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.S.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		transport.Error(r.Context(), w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, p)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req userUpdateRequest
	if err := decode(w, r, &req); err != nil {
		transport.Error(r.Context(), w, err)
		return
	}

	p, err := h.S.Update(r.Context(), middleware.Subject(r.Context()), chi.URLParam(r, "id"), req.update())
	if err != nil {
		transport.Error(r.Context(), w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, p)
}
