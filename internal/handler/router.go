package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/freebook/backend/internal/config"
	"github.com/freebook/backend/internal/middleware"
	"github.com/freebook/backend/internal/observability"
)

type Handlers struct {
	Auth   *AuthHandler
	Posts  *PostHandler
	Users  *UserHandler
	Images *ImageHandler
}

// NewRouter builds the public HTTP router.
func NewRouter(cfg *config.Config, h Handlers, tokens middleware.SubjectParser) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	if cfg.MetricsEnabled {
		r.Use(observability.MetricsMiddleware(cfg.ServiceName))
	}
	r.Use(middleware.Recovery())
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	auth := middleware.JWT(tokens)

	// Auth routes
	r.Group(func(a chi.Router) {
		a.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
		a.Post("/auth/register", h.Auth.Register)
		a.Post("/auth/authenticate", h.Auth.Authenticate)
	})

	// Post routes
	r.Route("/posts", func(p chi.Router) {
		p.Get("/", h.Posts.List)
		p.Get("/search", h.Posts.Search)
		p.Get("/recent", h.Posts.Recent)
		p.Get("/creator/{id}", h.Posts.ByCreator)
		p.Get("/{id}", h.Posts.Get)

		p.Group(func(p chi.Router) {
			p.Use(auth)
			p.Post("/create", h.Posts.Create)
			p.Put("/{id}", h.Posts.Update)
			p.Delete("/{id}", h.Posts.Delete)
			p.Patch("/like", h.Posts.Like)
			p.Patch("/unlike", h.Posts.Unlike)
			p.Patch("/save", h.Posts.Save)
			p.Patch("/unsave", h.Posts.Unsave)
		})
	})

	// User routes
	r.Route("/users", func(u chi.Router) {
		u.Get("/", h.Users.List)
		u.With(auth).Get("/current", h.Users.Current)
		u.Get("/{id}", h.Users.Get)
		u.With(auth).Put("/{id}", h.Users.Update)
	})

	// Image routes
	r.Group(func(i chi.Router) {
		i.Use(auth)
		i.Post("/images", h.Images.Upload)
		i.Delete("/images/{id}", h.Images.Delete)
	})

	if !cfg.TracingEnabled {
		return r
	}
	return otelhttp.NewHandler(r, cfg.ServiceName)
}
