package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/umputun/feedpulse/pkg/report"
	"github.com/umputun/feedpulse/pkg/service"
)

// statusHandler returns server status with cache state
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":  "ok",
		"version": s.version,
		"time":    time.Now().UTC(),
		"cache":   s.reports.Status(),
		"storage": "ok",
	}
	count, err := s.feedback.Count(r.Context())
	if err != nil {
		log.Printf("[WARN] storage check failed: %v", err)
		status["status"] = "degraded"
		status["storage"] = "unavailable"
	}
	status["feedback_count"] = count
	renderJSON(w, r, http.StatusOK, status)
}

// reportHandler returns the rendered daily report
func (s *Server) reportHandler(w http.ResponseWriter, r *http.Request) {
	rep, err := s.reports.Report(r.Context())
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	renderJSON(w, r, http.StatusOK, rep)
}

// summaryHandler returns the structured summary with KPI themes
func (s *Server) summaryHandler(w http.ResponseWriter, r *http.Request) {
	view, err := s.reports.Summary(r.Context())
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	renderJSON(w, r, http.StatusOK, view)
}

// listFeedbackHandler returns recent feedback, newest first
func (s *Server) listFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l < 1 {
			renderError(w, r, fmt.Errorf("invalid limit %q", limitStr), http.StatusBadRequest)
			return
		}
		limit = l
	}

	records, err := s.feedback.Recent(r.Context(), limit)
	if err != nil {
		log.Printf("[ERROR] failed to list feedback: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, records)
}

// createFeedbackHandler stores a single feedback record
func (s *Server) createFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	var in service.FeedbackInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		renderError(w, r, fmt.Errorf("invalid request body: %w", err), http.StatusBadRequest)
		return
	}

	rec, err := s.feedback.Submit(r.Context(), in)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	renderJSON(w, r, http.StatusCreated, rec)
}

// renderServiceError maps service errors to status codes, storage failures carry a hint
func renderServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var storageErr *report.StorageError
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &storageErr):
		renderJSON(w, r, http.StatusServiceUnavailable, map[string]string{"error": err.Error(), "hint": storageErr.Hint})
	case errors.As(err, &validationErr):
		renderError(w, r, err, http.StatusBadRequest)
	default:
		log.Printf("[ERROR] request %s %s failed: %v", r.Method, r.URL.Path, err)
		renderError(w, r, err, http.StatusInternalServerError)
	}
}

// renderJSON sends JSON response
func renderJSON(w http.ResponseWriter, _ *http.Request, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// renderError sends error response as JSON
func renderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	renderJSON(w, r, code, map[string]string{"error": errMsg})
}
