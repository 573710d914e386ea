package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/marches/internal/http/ingest"
	"github.com/MrJamesThe3rd/marches/internal/http/override"
	"github.com/MrJamesThe3rd/marches/internal/http/report"
	"github.com/MrJamesThe3rd/marches/internal/http/view"
)

func New(
	allowedOrigins []string,
	ingestV1 *ingest.Handler,
	viewV1 *view.Handler,
	overrideV1 *override.Handler,
	reportV1 *report.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/sync", ingestV1.Routes)

		r.Route("/overrides", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			overrideV1.Routes(r)
		})

		r.Group(func(r chi.Router) {
			viewV1.Routes(r)
			reportV1.Routes(r)
		})
	})

	return router
}
