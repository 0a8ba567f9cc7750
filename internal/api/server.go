// Package api exposes the prospecting service over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Server wires the prospect service into a chi router.
type Server struct {
	svc Service
}

// NewServer creates a Server for the given service.
func NewServer(svc Service) *Server {
	return &Server{svc: svc}
}

// Router builds the HTTP route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/hexagons", func(r chi.Router) {
		r.Get("/existing", s.handleExistingHexagons)
		r.Get("/{hexagonID}/businesses", s.handleGetHexagonBusinesses)
		r.Post("/{hexagonID}/businesses", s.handleFetchHexagonBusinesses)
		r.Put("/businesses/{placeID}/status", s.handleUpdateStatus)
		r.Get("/businesses/{placeID}/competitors", s.handleCompetitors)
	})

	return r
}
