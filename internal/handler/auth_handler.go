package handler

import (
	"net/http"

	"github.com/freebook/backend/internal/service"
	"github.com/freebook/backend/internal/transport"
)

type AuthHandler struct{ S *service.AuthService }

func NewAuthHandler(s *service.AuthService) *AuthHandler { return &AuthHandler{s} }

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(w, r, &req); err != nil {
		transport.Error(r.Context(), w, err)
		return
	}

	token, err := h.S.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		transport.Error(r.Context(), w, err)
		return
	}

	transport.WriteJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (h *AuthHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	var req authenticateRequest
	if err := decode(w, r, &req); err != nil {
		transport.Error(r.Context(), w, err)
		return
	}

	token, err := h.S.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		transport.Error(r.Context(), w, err)
		return
	}

	transport.WriteJSON(w, http.StatusOK, tokenResponse{Token: token})
}
