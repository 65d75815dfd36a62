// Package chi implements the HTTP API over the go-chi router.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/herbadex/internal/domain"
	healthuc "github.com/kailas-cloud/herbadex/internal/usecase/health"
	imageuc "github.com/kailas-cloud/herbadex/internal/usecase/image"
	searchuc "github.com/kailas-cloud/herbadex/internal/usecase/specsearch"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements the HTTP API handlers.
type Server struct {
	images        *imageuc.Service
	search        *searchuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	images *imageuc.Service,
	search *searchuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		images: images,
		search: search,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		revisionConflictHandler,
		sentinelHandler(domain.ErrImageNotFound, http.StatusNotFound, codeImageNotFound),
		sentinelHandler(domain.ErrSpecimenNotFound, http.StatusNotFound, codeSpecimenNotFound),
		sentinelHandler(domain.ErrInvalidArgument, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrBlobResolution, http.StatusBadGateway, codeBlobResolutionFailed),
		sentinelHandler(domain.ErrVisionProviderError, http.StatusBadGateway, codeVisionProviderError),
	}
	return s
}

// Register mounts every route on the router.
func (s *Server) Register(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/uploads", s.PrepareUpload)
		r.Post("/images", s.SubmitImage)
		r.Get("/images", s.ListImages)
		r.Get("/images/{id}", s.GetImage)
		r.Put("/images/{id}/analysis", s.SetAnalysis)
		r.Get("/specimens/search", s.SearchSpecimens)
	})
	r.Get("/healthz", s.Healthz)
	r.Get("/metrics", s.Metrics)
}

// PrepareUpload handles POST /api/v1/uploads.
func (s *Server) PrepareUpload(w http.ResponseWriter, r *http.Request) {
	var req PrepareUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	target, err := s.images.PrepareUpload(r.Context(), req.ContentType)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, UploadTargetResponse{
		Key:       target.Key,
		URL:       target.URL,
		ExpiresAt: target.ExpiresAt.UTC(),
	})
}

// SubmitImage handles POST /api/v1/images.
func (s *Server) SubmitImage(w http.ResponseWriter, r *http.Request) {
	var req SubmitImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	rec, err := s.images.Submit(r.Context(), imageuc.SubmitInput{
		Name:        req.Name,
		ContentType: req.ContentType,
		Size:        req.Size,
		StorageKey:  req.StorageKey,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/images/"+rec.ID())
	writeJSON(w, http.StatusCreated, imageToResponse(&rec))
}

// ListImages handles GET /api/v1/images.
func (s *Server) ListImages(w http.ResponseWriter, r *http.Request) {
	records, err := s.images.List(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]ImageResponse, len(records))
	for i := range records {
		items[i] = imageToResponse(&records[i])
	}

	writeJSON(w, http.StatusOK, ImageListResponse{Items: items, Total: len(items)})
}

// GetImage handles GET /api/v1/images/{id}.
func (s *Server) GetImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := s.images.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("ETag", strconv.Quote(strconv.Itoa(rec.Revision())))
	writeJSON(w, http.StatusOK, imageToResponse(&rec))
}

// SetAnalysis handles PUT /api/v1/images/{id}/analysis.
func (s *Server) SetAnalysis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req SetAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := s.images.SetAnalysis(r.Context(), id, req.Analysis); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SearchSpecimens handles GET /api/v1/specimens/search.
func (s *Server) SearchSpecimens(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	scope := r.URL.Query().Get("scope")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := s.search.Search(r.Context(), q, scope, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]SpecimenResponse, len(records))
	for i := range records {
		items[i] = specimenToResponse(&records[i])
	}

	writeJSON(w, http.StatusOK, SpecimenListResponse{Items: items, Total: len(items)})
}

// Healthz handles GET /healthz.
func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:     string(report.Status),
		Checks:     checks,
		QueueDepth: report.QueueDepth,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrImageNotFound,
		domain.ErrSpecimenNotFound,
		domain.ErrInvalidArgument,
		domain.ErrRevisionConflict,
		domain.ErrBlobResolution,
		domain.ErrVisionProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// revisionConflictHandler handles ErrRevisionConflict with ETag header and extra fields.
func revisionConflictHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrRevisionConflict) {
		return false
	}
	var rce *domain.RevisionConflictError
	if errors.As(err, &rce) {
		w.Header().Set("ETag", strconv.Quote(strconv.Itoa(rce.CurrentRevision)))
		writeJSON(w, http.StatusConflict, map[string]any{
			"code":             codeRevisionConflict,
			"message":          msg,
			"current_revision": rce.CurrentRevision,
		})
		return true
	}
	writeError(w, http.StatusConflict, codeRevisionConflict, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
