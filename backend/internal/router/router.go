package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/postboard/postboard/backend/internal/setup"
	mw "github.com/postboard/postboard/shared/middleware"
	"github.com/postboard/postboard/shared/middleware/metrics"
)

const maxBodySize = 1 << 20

// New creates the chi router with every route and the middleware chain.
// Rate limiters installed with Use count requests for all routes of that group combined.
func New(deps *setup.Dependencies) http.Handler {
	cfg := deps.Config.Public
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(mw.SecurityHeaders(cfg.IsHTTPS))
	r.Use(chimw.RequestSize(maxBodySize))

	h := deps.Handler
	authMw := deps.AuthMiddleware

	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	// Credential endpoints: per IP, and per IP and account name for login.
	// The account bucket includes the IP so other clients cannot lock a user out.
	r.Group(func(r chi.Router) {
		r.Use(mw.RateLimit(cfg.LoginRateLimit, time.Minute, mw.GetIP))
		r.With(mw.RateLimit(cfg.LoginRateLimit, time.Minute, mw.GetIP, mw.GetLoginName)).Post("/login", h.Login)
		r.Post("/users", h.CreateUser)
	})
	r.Get("/users/{id}", h.GetUser)

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", authMw.NeedAuth(h.GetPosts))
		r.Post("/", authMw.NeedAuth(h.CreatePost))
		r.Get("/{id}", authMw.NeedAuth(h.GetPost))
		r.Put("/{id}", authMw.NeedAuth(h.UpdatePost))
		r.Delete("/{id}", authMw.NeedAuth(h.DeletePost))
	})

	return r
}
