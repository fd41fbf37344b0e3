package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"churnguard/pkg/httpx/reply"
)

func (s Server) RegisterRoutes(r chi.Router) { //nolint:funlen
	r.Route("/", func(r chi.Router) {
		r.Route("/v1", func(r chi.Router) {
			// unauthorized zone
			r.Route("/predictions", func(r chi.Router) {
				r.Post("/", handler(s.postV1Prediction))
				r.Post("/batch", handler(s.postV1PredictionBatch))
				r.Post("/batch/async", handler(s.postV1PredictionBatchAsync))
				r.Get("/", handler(s.getV1Predictions))
				r.Get("/{id}", handler(s.getV1Prediction))
			})

			r.Route("/model", func(r chi.Router) {
				r.Get("/", handler(s.getV1Model))
				r.Get("/features", handler(s.getV1ModelFeatures))
			})

			r.Get("/stats", handler(s.getV1Stats))
			r.Get("/samples", handler(s.getV1Samples))
		})
	})
}

func handler(f func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			reply.Error(r.Context(), w, err)
		}
	}
}
