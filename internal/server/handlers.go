package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/clearclaim/eob-analyzer/internal/common"
	"github.com/clearclaim/eob-analyzer/internal/detect"
	"github.com/clearclaim/eob-analyzer/internal/export"
	"github.com/clearclaim/eob-analyzer/internal/pipeline"
	"github.com/clearclaim/eob-analyzer/internal/repository"
)

// Server bundles the handlers' dependencies.
type Server struct {
	processor *pipeline.Processor
	repo      repository.RecordRepository
	letters   *export.LetterWriter
	health    func(ctx context.Context) error
	logger    *slog.Logger
}

func New(p *pipeline.Processor, repo repository.RecordRepository, letters *export.LetterWriter, health func(ctx context.Context) error, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{processor: p, repo: repo, letters: letters, health: health, logger: logger}
}

type detectRequest struct {
	Text string `json:"text"`
}

type analyzeRequest struct {
	Text         string `json:"text"`
	DocumentName string `json:"documentName"`
	// Force skips the detector gate; the caller decided to proceed anyway.
	Force bool `json:"force"`
}

type errResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// DetectEOB classifies posted text without extracting anything.
func (s *Server) DetectEOB(w http.ResponseWriter, r *http.Request) {
	var req detectRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
		return
	}
	render.JSON(w, r, detect.Detect(req.Text))
}

// AnalyzeEOB runs the full pipeline on posted text and returns the stored
// record.
func (s *Server) AnalyzeEOB(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
		return
	}
	if req.Text == "" {
		s.writeError(w, r, fmt.Errorf("%w: text is required", common.ErrInvalidInput))
		return
	}
	name := req.DocumentName
	if name == "" {
		name = "document"
	}

	stored, err := s.processor.ProcessText(r.Context(), name, req.Text, req.Force)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, stored)
}

func (s *Server) ListRecords(w http.ResponseWriter, r *http.Request) {
	recs, err := s.repo.ListRecords(r.Context(), 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if recs == nil {
		recs = []*repository.StoredRecord{}
	}
	render.JSON(w, r, recs)
}

func (s *Server) GetRecord(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadRecord(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, rec)
}

func (s *Server) ExportCSV(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadRecord(w, r)
	if !ok {
		return
	}
	s.writeFile(w, export.CSV(rec.Record))
}

func (s *Server) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadRecord(w, r)
	if !ok {
		return
	}
	f, err := export.XLSX(rec.Record)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: render xlsx: %v", common.ErrInternal, err))
		return
	}
	s.writeFile(w, f)
}

func (s *Server) GenerateAppealLetter(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadRecord(w, r)
	if !ok {
		return
	}
	f, err := s.letters.AppealLetter(r.Context(), rec.Record)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeFile(w, f)
}

func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, map[string]string{"status": "unhealthy"})
			return
		}
	}
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func (s *Server) loadRecord(w http.ResponseWriter, r *http.Request) (*repository.StoredRecord, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "recordID"))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: recordID must be a UUID", common.ErrInvalidInput))
		return nil, false
	}
	rec, err := s.repo.GetRecord(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return rec, true
}

func (s *Server) writeFile(w http.ResponseWriter, f *export.File) {
	w.Header().Set("Content-Type", f.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(f.Content)
}

// writeError maps the error taxonomy onto HTTP statuses. Extraction failures
// are upstream-collaborator faults (502); no-appealable-issues and bad input
// are the client's to fix.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL"

	switch {
	case errors.Is(err, common.ErrInvalidInput):
		status, code = http.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, common.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, common.ErrUnsupportedDocument):
		status, code = http.StatusUnprocessableEntity, "UNSUPPORTED_DOCUMENT"
	case errors.Is(err, common.ErrNoAppealableIssues):
		status, code = http.StatusBadRequest, "NO_APPEALABLE_ISSUES"
	case errors.Is(err, common.ErrExtractionFailed):
		status, code = http.StatusBadGateway, "EXTRACTION_FAILED"
	case errors.Is(err, common.ErrDatabase):
		status, code = http.StatusInternalServerError, "DATABASE_ERROR"
	}

	if status >= 500 {
		s.logger.Error("http.request_failed", "status", status, "err", err)
	} else {
		s.logger.Info("http.request_rejected", "status", status, "err", err)
	}

	render.Status(r, status)
	render.JSON(w, r, errResponse{Error: err.Error(), Code: code})
}
