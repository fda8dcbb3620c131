// Package api provides the HTTP server and handlers for the SproutMe API.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sproutme/sprout-server/internal/service"
	"github.com/sproutme/sprout-server/internal/store"
)

// Config holds server-level HTTP settings.
type Config struct {
	CORSOrigins []string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store        *store.Store
	authService  *service.AuthService
	userService  *service.UserService
	eventService *service.EventService
	router       *chi.Mux
	api          huma.API
	logger       *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	cfg Config,
	st *store.Store,
	authService *service.AuthService,
	userService *service.UserService,
	eventService *service.EventService,
	logger *slog.Logger,
) *Server {
	s := &Server{
		store:        st,
		authService:  authService,
		userService:  userService,
		eventService: eventService,
		router:       chi.NewRouter(),
		logger:       logger,
	}

	s.setupMiddleware(cfg)

	RegisterErrorHandler()
	humaConfig := huma.DefaultConfig("SproutMe API", "1.0.0")
	humaConfig.DocsPath = "/docs"
	s.api = humachi.New(s.router, humaConfig)

	s.setupRoutes()
	s.registerHealthRoutes()
	s.registerAdminRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware(cfg Config) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Route("/api/v1", func(r chi.Router) {
		// Auth endpoints (public).
		r.Route("/auth", func(r chi.Router) {
			r.Post("/phone", s.handleValidatePhone)
			r.Post("/code", s.handleSendCode)
			r.Post("/verify", s.handleVerifyCode)
			r.With(s.requireAuth).Post("/logout", s.handleLogout)
		})

		// Shared favorites view (public by design; the hash is the
		// capability).
		r.Get("/shared/{phoneHash}", s.handleShared)

		// Protected user endpoints.
		r.Route("/users", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/me", s.handleGetCurrentUser)
			r.Put("/me/name", s.handleUpdateName)
			r.Put("/me/genres", s.handleUpdateGenres)
			r.Put("/me/cities", s.handleUpdateCities)
			r.Get("/me/settings", s.handleGetSettings)
			r.Put("/me/settings", s.handleUpdateSettings)
		})

		// Events (require auth for the favorite overlay).
		r.Route("/events", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/query", s.handleQueryEvents)
			r.Post("/facets", s.handleEventFacets)
			r.Get("/search", s.handleSearchEvents)
			r.Post("/{id}/favorite", s.handleToggleFavorite)
		})

		r.With(s.requireAuth).Get("/favorites", s.handleListFavorites)
	})
}
