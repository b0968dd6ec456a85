// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/stelios-avg/locom/internal/adapter/events"
	"github.com/stelios-avg/locom/internal/config"
	"github.com/stelios-avg/locom/internal/domain/geo"
	"github.com/stelios-avg/locom/internal/domain/moderation"
	"github.com/stelios-avg/locom/internal/domain/post"
	"github.com/stelios-avg/locom/internal/domain/profile"
	"github.com/stelios-avg/locom/internal/metrics"
	"github.com/stelios-avg/locom/internal/server/handlers"
)

// Dependencies are the services the HTTP layer is wired to
type Dependencies struct {
	Posts      post.Manager
	Admin      post.Admin
	Profiles   profile.Service
	Checker    moderation.Checker
	Selector   geo.Selector
	Syncer     handlers.Syncer
	Subscriber events.Subscriber
}

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new HTTP server
func NewServer(cfg config.ServerConfig, log *zap.Logger, deps Dependencies) *Server {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(metrics.Middleware)

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", handlers.UserIDHeader},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Create handler dependencies
	postHandler := handlers.NewPostHandler(log, deps.Posts)
	profileHandler := handlers.NewProfileHandler(log, deps.Profiles)
	moderationHandler := handlers.NewModerationHandler(log, deps.Checker)
	geoHandler := handlers.NewGeoHandler(log, deps.Selector)
	adminHandler := handlers.NewAdminHandler(log, deps.Admin)
	syncHandler := handlers.NewSyncHandler(log, deps.Syncer)

	router.Handle("/metrics", metrics.Handler())

	// Routes
	router.Route("/api", func(r chi.Router) {
		// Scheduled municipality import, a run is not bounded by the request timeout
		r.Get("/sync-municipality", syncHandler.Probe)
		r.Post("/sync-municipality", syncHandler.Trigger)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			// Health check
			r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("OK"))
			})

			// API version
			r.Route("/v1", func(r chi.Router) {
				// Boards
				r.Get("/feed", postHandler.ListFeed)
				r.Get("/marketplace", postHandler.ListMarketplace)
				r.Get("/events", postHandler.ListEvents)

				// Posts API
				r.Route("/posts", func(r chi.Router) {
					r.Post("/", postHandler.CreatePost)
					r.Get("/{id}", postHandler.GetPost)
					r.Delete("/{id}", postHandler.DeletePost)

					// Post comments
					r.Route("/{id}/comments", func(r chi.Router) {
						r.Get("/", postHandler.ListComments)
						r.Post("/", postHandler.AddComment)
					})
				})

				// Profiles API
				r.Get("/profiles/{userID}", profileHandler.GetProfile)
				r.Put("/profile", profileHandler.UpdateProfile)
				r.Get("/neighborhoods", profileHandler.ListNeighborhoods)

				// Content checks
				r.Post("/moderation/check", moderationHandler.Check)

				// Geo API
				r.Get("/geo/distance", geoHandler.GetDistance)

				// Admin API
				r.Route("/admin", func(r chi.Router) {
					r.Use(adminHandler.RequireAdmin)
					r.Get("/posts", adminHandler.ListPosts)
					r.Post("/posts/{id}/moderate", adminHandler.ModeratePost)
					r.Delete("/posts/{id}", adminHandler.DeletePost)
				})
			})
		})
	})

	// WebSocket endpoint for the live feed
	router.Get("/ws/feed", handlers.FeedWebSocketHandler(log, deps.Subscriber, deps.Selector, deps.Profiles))

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
