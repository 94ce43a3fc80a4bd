// Package httpapi exposes the Engine over HTTP: the transport surface
// the CLI subcommands and any other client talk to (spec.md §4.4, §7).
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

// NewRouter wires the Nayru HTTP API, grounded on the teacher pack's
// go-chi + go-chi/cors router construction (Bobarinn-video-genie's
// internal/api/router.go). Local-first by design: CORS defaults wide
// open since Nayru serves a single trusted desktop client (spec.md
// Non-goals: no auth/multi-tenant surface).
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.logger))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)
	r.Get("/status", h.Status)
	r.Post("/speak", h.Speak)
	r.Post("/stop", h.Stop)
	r.Post("/pause", h.Pause)
	r.Post("/resume", h.Resume)
	r.Post("/skip", h.Skip)
	r.Get("/config", h.GetConfig)
	r.Put("/config", h.SetConfig)
	r.Post("/preview_split", h.PreviewSplit)

	return r
}

func requestLogger(logger *logrus.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := middleware.GetReqID(r.Context())
			logger.WithField("request_id", reqID).WithField("path", r.URL.Path).Debug("request")
			next.ServeHTTP(w, r)
		})
	}
}
