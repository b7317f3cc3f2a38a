// Package server exposes the layout pipeline over HTTP. It is a thin
// collaborator around the core: decode a request, load the dataset
// universe, run the pipeline, encode the layout. The "no connection"
// outcome is a 200 with the empty flag set, never an error status.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	apperrors "github.com/mkarlsen/rivalmap/pkg/errors"
	"github.com/mkarlsen/rivalmap/pkg/pipeline"
	"github.com/mkarlsen/rivalmap/pkg/store"
)

// Server handles layout requests over stored datasets.
type Server struct {
	store  store.Store
	runner *pipeline.Runner
	logger *log.Logger
}

// New creates a Server. The logger must not be nil; pass a discard
// logger to silence access logs.
func New(st store.Store, runner *pipeline.Runner, logger *log.Logger) *Server {
	return &Server{store: st, runner: runner, logger: logger}
}

// Router builds the HTTP handler with all middleware and routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(accessLog(s.logger))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/datasets", s.handleDatasets)
		r.Post("/layout", s.handleLayout)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDatasets(w http.ResponseWriter, r *http.Request) {
	datasets, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if datasets == nil {
		datasets = []store.Dataset{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"datasets": datasets})
}

// LayoutRequest is the POST /api/layout body: a dataset name, the
// pipeline options, and an optional display bound applied to the
// computed layout as a pure visibility filter.
type LayoutRequest struct {
	Dataset string `json:"dataset"`
	pipeline.Options
	DisplayDegree *float64 `json:"display_degree,omitempty"`
}

// LayoutResponse is the POST /api/layout reply.
type LayoutResponse struct {
	Layout pipeline.Layout    `json:"layout"`
	Stats  pipeline.Stats     `json:"stats"`
	Cache  pipeline.CacheInfo `json:"cache"`
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req LayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, err, "decode request body"))
		return
	}
	if err := apperrors.ValidateDatasetName(req.Dataset); err != nil {
		s.writeError(w, r, err)
		return
	}

	u, hash, err := s.store.Universe(r.Context(), req.Dataset)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := req.Options
	opts.DatasetHash = hash
	opts.Logger = s.logger
	result, err := s.runner.Execute(r.Context(), u, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := LayoutResponse{
		Layout: result.Layout,
		Stats:  result.Stats,
		Cache:  result.CacheInfo,
	}
	if req.DisplayDegree != nil {
		// Visibility filtering never recomputes; the cached layout is
		// narrowed in place.
		resp.Layout = pipeline.Visible(resp.Layout, *req.DisplayDegree)
	}
	writeJSON(w, http.StatusOK, resp)
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(apperrors.GetCode(err))
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			"path", r.URL.Path, "err", err,
			"request_id", RequestIDFromContext(r.Context()))
	}

	var body errorBody
	body.Error.Code = string(apperrors.GetCode(err))
	if body.Error.Code == "" {
		body.Error.Code = string(apperrors.ErrCodeInternal)
	}
	body.Error.Message = apperrors.UserMessage(err)
	writeJSON(w, status, body)
}

func statusFor(code apperrors.Code) int {
	switch code {
	case apperrors.ErrCodeInvalidRequest, apperrors.ErrCodeInvalidProgram,
		apperrors.ErrCodeInvalidDataset, apperrors.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case apperrors.ErrCodeNotFound, apperrors.ErrCodeDatasetNotFound,
		apperrors.ErrCodeProgramNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
