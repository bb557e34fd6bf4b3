// Package server exposes the analysis engine over HTTP. Authentication and
// entitlement checks belong to the surrounding deployment; this layer only
// maps requests onto the pipeline and export services.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/clearclaim/eob-analyzer/internal/common"
)

// NewRouter wires all API routes onto a chi router.
func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(propagateRequestID)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/eob/detect", s.DetectEOB)
		r.Post("/eob/analyze", s.AnalyzeEOB)

		r.Route("/records", func(r chi.Router) {
			r.Get("/", s.ListRecords)
			r.Get("/{recordID}", s.GetRecord)
			r.Get("/{recordID}/export/csv", s.ExportCSV)
			r.Get("/{recordID}/export/xlsx", s.ExportXLSX)
			r.Post("/{recordID}/appeal-letter", s.GenerateAppealLetter)
		})
	})

	r.Get("/_health", s.HealthCheck)
	return r
}

// propagateRequestID makes chi's per-request id visible to the pipeline and
// collaborator clients, so one id ties the HTTP log line to the model call.
func propagateRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			r = r.WithContext(common.WithRequestID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}
