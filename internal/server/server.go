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
	"github.com/nats-io/nats.go"

	"github.com/kulmetehan/turkish-diaspora-app-sub003/internal/config"
	"github.com/kulmetehan/turkish-diaspora-app-sub003/internal/domain/explore"
	"github.com/kulmetehan/turkish-diaspora-app-sub003/internal/server/handlers"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new HTTP server
func NewServer(
	cfg config.ServerConfig,
	natsConn *nats.Conn,
	sessionManager explore.Manager,
	eventsTopic string,
) *Server {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: cfg.CorsAllowCredentials,
		MaxAge:           300,
	}))

	// Create handler dependencies
	sessionHandler := handlers.NewSessionHandler(sessionManager)

	// Routes
	router.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		// API version
		r.Route("/v1", func(r chi.Router) {
			// Explore sessions API
			r.Route("/sessions", func(r chi.Router) {
				r.Post("/", sessionHandler.CreateSession)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", sessionHandler.GetSession)
					r.Delete("/", sessionHandler.CloseSession)
					r.Post("/viewport", sessionHandler.ReportViewport)
					r.Post("/viewport/suppress", sessionHandler.SuppressNextFetch)
					r.Put("/search", sessionHandler.UpdateSearch)
					r.Get("/search", sessionHandler.GetSearch)
					r.Get("/locations", sessionHandler.GetLocations)
					r.Get("/categories", sessionHandler.GetCategories)
				})
			})
		})
	})

	// WebSocket endpoint for real-time state streaming
	router.Get("/ws/sessions/{id}", handlers.SessionWebSocketHandler(sessionManager, natsConn, eventsTopic))

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

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
