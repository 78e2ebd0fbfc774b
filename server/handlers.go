package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/viant/cinematch/recommend"
	"github.com/viant/cinematch/summary"
)

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := strings.TrimSpace(q.Get("q"))
	if query == "" {
		respondError(w, http.StatusBadRequest, "EMPTY_QUERY", "query parameter q is required", nil)
		return
	}
	k, ok := intParam(w, q.Get("k"), "k")
	if !ok {
		return
	}
	withSummary := true
	if v := q.Get("summary"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "summary must be a boolean", nil)
			return
		}
		withSummary = b
	}

	recs, err := s.rec.Recommend(r.Context(), query, k)
	if err != nil {
		s.recommendError(w, err)
		return
	}

	resp := recommendResponse{Query: query, Results: toViews(recs), Summary: summary.Summary{Status: summary.StatusDisabled}}
	if withSummary {
		resp.Summary = s.sum.Summarize(r.Context(), query, recs)
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "movie id must be an integer", nil)
		return
	}
	k, ok := intParam(w, r.URL.Query().Get("k"), "k")
	if !ok {
		return
	}
	movie, found := s.rec.Movie(id)
	if !found {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "movie not found", nil)
		return
	}
	recs, err := s.rec.Similar(r.Context(), id, k)
	if err != nil {
		s.recommendError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, similarResponse{MovieID: id, Title: movie.Title, Results: toViews(recs)})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		BuildID:   s.info.BuildID,
		Model:     s.info.Model,
		Source:    s.info.Source,
		IndexKind: s.info.IndexKind,
		Count:     s.rec.Len(),
	})
}

func (s *Server) recommendError(w http.ResponseWriter, err error) {
	var encErr *recommend.EncodingError
	switch {
	case errors.Is(err, recommend.ErrEmptyQuery):
		respondError(w, http.StatusBadRequest, "EMPTY_QUERY", "query must not be blank", nil)
	case errors.Is(err, recommend.ErrUnknownMovie):
		respondError(w, http.StatusNotFound, "NOT_FOUND", "movie not found", nil)
	case errors.As(err, &encErr):
		if encErr.Temporary() {
			w.Header().Set("Retry-After", "1")
		}
		respondError(w, http.StatusServiceUnavailable, "ENCODER_UNAVAILABLE", "query encoder unavailable, retry shortly", err)
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL", "recommendation failed", err)
	}
}

// intParam parses an optional integer parameter. Absent means 0.
func intParam(w http.ResponseWriter, v, name string) (int, bool) {
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", name+" must be an integer", nil)
		return 0, false
	}
	return n, true
}
