// Package api serves the JSON endpoints the dashboard talks to.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/kidandcat/issuedash/internal/dashboard"
	"github.com/kidandcat/issuedash/internal/jira"
	"github.com/kidandcat/issuedash/internal/store"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// IssueSource yields the issues shown on the dashboard.
type IssueSource interface {
	AssignedIssues(ctx context.Context) ([]dashboard.Issue, int, error)
}

// Server holds the dependencies shared by all handlers.
type Server struct {
	Issues    IssueSource
	Notes     store.Store
	Scheduled store.Store
}

// mapping describes one key/value endpoint pair.
type mapping struct {
	field   string
	store   store.Store
	invalid string
	saved   string
	failed  string
}

func RegisterRoutes(mux *http.ServeMux, s *Server) {
	notes := mapping{
		field:   "notes",
		store:   s.Notes,
		invalid: "Invalid notes format",
		saved:   "Notes saved successfully",
		failed:  "Failed to save notes",
	}
	scheduled := mapping{
		field:   "scheduled",
		store:   s.Scheduled,
		invalid: "Invalid scheduled format",
		saved:   "Scheduled dates saved successfully",
		failed:  "Failed to save scheduled dates",
	}

	mux.HandleFunc("GET /api/issues", s.handleGetIssues)

	mux.HandleFunc("GET /api/notes", notes.handleGet)
	mux.HandleFunc("POST /api/notes", notes.handleSave)

	mux.HandleFunc("GET /api/scheduled", scheduled.handleGet)
	mux.HandleFunc("POST /api/scheduled", scheduled.handleSave)

	mux.HandleFunc("GET /api/health", handleHealth)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Issues

func (s *Server) handleGetIssues(w http.ResponseWriter, r *http.Request) {
	issues, total, err := s.Issues.AssignedIssues(r.Context())
	if err != nil {
		log.WithError(err).Error("Error fetching Jira issues")
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":   "Failed to fetch issues from Jira",
			"details": upstreamDetails(err),
		})
		return
	}
	writeJSON(w, http.StatusOK, dashboard.IssuesResponse{Total: total, Issues: issues})
}

// upstreamDetails is the Jira payload when Jira answered, the error text
// otherwise.
func upstreamDetails(err error) any {
	var ue *jira.UpstreamError
	if errors.As(err, &ue) {
		return ue.Details()
	}
	return err.Error()
}

// Notes and scheduled dates

func (m mapping) handleGet(w http.ResponseWriter, r *http.Request) {
	values, err := m.store.Load(r.Context())
	if err != nil {
		log.WithError(err).WithField("mapping", m.field).Warn("Failed to read mapping, serving empty")
		values = map[string]string{}
	}
	writeJSON(w, http.StatusOK, map[string]map[string]string{m.field: values})
}

func (m mapping) handleSave(w http.ResponseWriter, r *http.Request) {
	values, ok := decodeMapping(r, m.field)
	if !ok {
		writeError(w, http.StatusBadRequest, m.invalid)
		return
	}

	if err := m.store.Replace(r.Context(), values); err != nil {
		log.WithError(err).WithField("mapping", m.field).Error("Failed to write mapping")
		writeError(w, http.StatusInternalServerError, m.failed)
		return
	}
	log.WithFields(log.Fields{"mapping": m.field, "entries": len(values)}).Info("Mapping saved")
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": m.saved})
}

// decodeMapping extracts body[field] as a JSON object whose values are all
// strings. Anything else is rejected.
func decodeMapping(r *http.Request, field string) (map[string]string, bool) {
	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, false
	}
	raw, ok := body[field]
	if !ok {
		return nil, false
	}
	var values map[string]string
	if err := json.Unmarshal(raw, &values); err != nil || values == nil {
		return nil, false
	}
	return values, true
}

// Health

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "OK",
		"message": "Jira Dashboard API is running",
	})
}
