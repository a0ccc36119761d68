package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	perrors "github.com/matzehuels/panotour/pkg/errors"
	"github.com/matzehuels/panotour/pkg/history"
	"github.com/matzehuels/panotour/pkg/pipeline"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
	Kind    string `json:"kind,omitempty"`
}

// AnalysisResponse is returned when an analysis is created.
type AnalysisResponse struct {
	*history.Record
	Cached bool `json:"cached"`
}

// AnalysisListItem is one entry of the list endpoint.
type AnalysisListItem struct {
	ID         string    `json:"id"`
	Source     string    `json:"source,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	SceneCount int       `json:"sceneCount"`
	IssueCount int       `json:"issueCount"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateAnalysis(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		respondError(w, http.StatusBadRequest, "could not read request body")
		return
	}

	q := r.URL.Query()
	opts := pipeline.Options{
		Document:       body,
		Source:         q.Get("source"),
		DocumentFormat: documentFormat(r),
		Start:          q.Get("start"),
		Layout:         q.Get("layout") == "true",
	}
	res, err := s.runner.Analyze(r.Context(), opts)
	if err != nil {
		s.respondAnalysisError(w, err)
		return
	}

	rec := history.NewRecord(res.DocumentHash, opts.Source, res.Report)
	if err := s.store.Save(r.Context(), rec); err != nil {
		s.logger.Error("save analysis", "id", rec.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "could not store analysis")
		return
	}
	w.Header().Set("Location", "/api/v1/analyses/"+rec.ID)
	respondJSON(w, http.StatusCreated, AnalysisResponse{Record: rec, Cached: res.CacheInfo.Hit})
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	limit := DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	records, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("list analyses", "error", err)
		respondError(w, http.StatusInternalServerError, "could not list analyses")
		return
	}
	items := make([]AnalysisListItem, 0, len(records))
	for _, rec := range records {
		item := AnalysisListItem{ID: rec.ID, Source: rec.Source, CreatedAt: rec.CreatedAt}
		if rec.Report != nil {
			item.SceneCount = rec.Report.Summary.SceneCount
			item.IssueCount = rec.Report.IssueCount()
		}
		items = append(items, item)
	}
	respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.lookup(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleGetAnalysisDOT(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.lookup(w, r)
	if !ok {
		return
	}
	res := &pipeline.Result{Report: rec.Report, DocumentHash: rec.DocumentHash}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, res.DOT(r.URL.Query().Get("detailed") == "true"))
}

// lookup fetches the record named by the {id} URL parameter, writing a 404
// when it does not exist.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*history.Record, bool) {
	id := chi.URLParam(r, "id")
	if !history.ValidID(id) {
		respondError(w, http.StatusNotFound, "analysis not found")
		return nil, false
	}
	rec, err := s.store.Get(r.Context(), id)
	if errors.Is(err, history.ErrNotFound) {
		respondError(w, http.StatusNotFound, "analysis not found")
		return nil, false
	}
	if err != nil {
		s.logger.Error("get analysis", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "could not load analysis")
		return nil, false
	}
	return rec, true
}

func (s *Server) respondAnalysisError(w http.ResponseWriter, err error) {
	status := perrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("analysis failed", "error", err)
		respondError(w, status, "analysis failed")
		return
	}
	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: perrors.UserMessage(err),
		Code:    status,
		Kind:    string(perrors.GetCode(err)),
	})
}

// documentFormat picks the document encoding from ?format= or the
// Content-Type header.
func documentFormat(r *http.Request) string {
	if f := r.URL.Query().Get("format"); f != "" {
		return f
	}
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		return "yaml"
	}
	return "json"
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}
