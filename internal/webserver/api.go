package webserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/psidex/arat/internal/enrollment"
	"github.com/psidex/arat/internal/graphs"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// loadFromQuery reads the limit query parameter and runs the loader, writing the
// error response itself when either fails.
func (s *Server) loadFromQuery(w http.ResponseWriter, r *http.Request) (*graphs.Graph, int, bool) {
	limit, err := s.bounds.Parse(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, "Invalid limit", err.Error(), http.StatusBadRequest)
		return nil, 0, false
	}

	g, err := s.loader.Load(r.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to load graph", "limit", limit, "error", err)
		writeError(w, "Failed to load graph", err.Error(), http.StatusInternalServerError)
		return nil, 0, false
	}
	return g, limit, true
}

func (s *Server) apiGraph(w http.ResponseWriter, r *http.Request) {
	g, limit, ok := s.loadFromQuery(w, r)
	if !ok {
		return
	}
	writeJSON(w, newGraphMessage(limit, g), http.StatusOK)
}

func (s *Server) apiStudent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	g, err := s.loader.Student(r.Context(), id)
	if errors.Is(err, enrollment.ErrNotFound) {
		writeError(w, "Student not found", err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error("Failed to load student", "id", id, "error", err)
		writeError(w, "Failed to load student", err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, g, http.StatusOK)
}

func (s *Server) exportECharts(w http.ResponseWriter, r *http.Request) {
	g, _, ok := s.loadFromQuery(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.echarts.Render(w, g); err != nil {
		s.logger.Error("Failed to render echarts page", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, error, details string, statusCode int) {
	writeJSON(w, ErrorResponse{Error: error, Details: details}, statusCode)
}
