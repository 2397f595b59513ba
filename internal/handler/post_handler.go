package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/freebook/backend/internal/domain"
	"github.com/freebook/backend/internal/middleware"
	"github.com/freebook/backend/internal/service"
	"github.com/freebook/backend/internal/transport"
)

// PostHandler exposes post reads, writes and the interaction toggles.
type PostHandler struct {
	S *service.PostService
	I *service.InteractionService
}

func NewPostHandler(s *service.PostService, i *service.InteractionService) *PostHandler {
	return &PostHandler{S: s, I: i}
}

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.S.List(r.Context())
	writePosts(w, r, posts, err)
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.S.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		transport.Error(r.Context(), w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, p)
}

func (h *PostHandler) Search(w http.ResponseWriter, r *http.Request) {
	posts, err := h.S.Search(r.Context(), r.URL.Query().Get("query"))
	writePosts(w, r, posts, err)
}

func (h *PostHandler) ByCreator(w http.ResponseWriter, r *http.Request) {
	posts, err := h.S.ByCreator(r.Context(), chi.URLParam(r, "id"))
	writePosts(w, r, posts, err)
}

func (h *PostHandler) Recent(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		transport.Error(r.Context(), w, err)
		return
	}
	posts, err := h.S.Recent(r.Context(), page)
	writePosts(w, r, posts, err)
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := decode(w, r, &req); err != nil {
		transport.Error(r.Context(), w, err)
		return
	}

	p, err := h.S.Create(r.Context(), middleware.Subject(r.Context()), req.content())
	if err != nil {
		transport.Error(r.Context(), w, err)
		return
	}
	transport.WriteJSON(w, http.StatusCreated, p)
}

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := decode(w, r, &req); err != nil {
		transport.Error(r.Context(), w, err)
		return
	}

	p, err := h.S.Update(r.Context(), middleware.Subject(r.Context()), chi.URLParam(r, "id"), req.content())
	if err != nil {
		transport.Error(r.Context(), w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, p)
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.S.Delete(r.Context(), middleware.Subject(r.Context()), chi.URLParam(r, "id")); err != nil {
		transport.Error(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PostHandler) Like(w http.ResponseWriter, r *http.Request)   { h.toggle(w, r, h.I.Like) }
func (h *PostHandler) Unlike(w http.ResponseWriter, r *http.Request) { h.toggle(w, r, h.I.Unlike) }
func (h *PostHandler) Save(w http.ResponseWriter, r *http.Request)   { h.toggle(w, r, h.I.Save) }
func (h *PostHandler) Unsave(w http.ResponseWriter, r *http.Request) { h.toggle(w, r, h.I.Unsave) }

type toggleFunc func(ctx context.Context, subject, postID string) (*domain.Profile, error)

// toggle responds with the caller's profile after the change.
func (h *PostHandler) toggle(w http.ResponseWriter, r *http.Request, fn toggleFunc) {
	postID := r.URL.Query().Get("postId")
	if postID == "" {
		transport.WriteError(w, http.StatusBadRequest, "invalid_argument", "postId is required")
		return
	}

	p, err := fn(r.Context(), middleware.Subject(r.Context()), postID)
	if err != nil {
		transport.Error(r.Context(), w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, p)
}

func writePosts(w http.ResponseWriter, r *http.Request, posts []*domain.Post, err error) {
	if err != nil {
		transport.Error(r.Context(), w, err)
		return
	}
	if posts == nil {
		posts = []*domain.Post{}
	}
	transport.WriteJSON(w, http.StatusOK, posts)
}

func parsePage(r *http.Request) (domain.Page, error) {
	page := domain.Page{Number: 0, Limit: domain.DefaultPageLimit}
	q := r.URL.Query()

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return page, fmt.Errorf("page must be an integer: %w", domain.ErrInvalidInput)
		}
		page.Number = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return page, fmt.Errorf("limit must be an integer: %w", domain.ErrInvalidInput)
		}
		page.Limit = n
	}
	return page, nil
}
