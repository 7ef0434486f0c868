package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/kidandcat/issuedash/internal/dashboard"
	"github.com/kidandcat/issuedash/internal/jira"
	"github.com/kidandcat/issuedash/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	issues []dashboard.Issue
	err    error
}

func (f *fakeSource) AssignedIssues(context.Context) ([]dashboard.Issue, int, error) {
	return f.issues, len(f.issues), f.err
}

func strPtr(s string) *string { return &s }

func newReportServer(t *testing.T, src *fakeSource, notes map[string]string) *httptest.Server {
	t.Helper()
	set, err := store.Open(store.BackendFile, t.TempDir())
	require.NoError(t, err)
	require.NoError(t, set.Notes.Replace(context.Background(), notes))

	mux := http.NewServeMux()
	RegisterRoutes(mux, &Report{
		Issues:    src,
		Notes:     set.Notes,
		Scheduled: set.Scheduled,
		Now:       func() time.Time { return time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC) },
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func fetch(t *testing.T, u string) (int, string) {
	t.Helper()
	resp, err := http.Get(u)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	return resp.StatusCode, string(body)
}

func TestReport_RendersRowsAndMarkdownNotes(t *testing.T) {
	t.Parallel()
	src := &fakeSource{issues: []dashboard.Issue{
		{Key: "PROJ-1", Summary: "Fix login", IssueType: "Bug", Priority: "High", Status: "In Progress",
			Created: "2026-10-01T10:00:00.000+0000", Updated: "2026-10-17T10:00:00.000+0000",
			DueDate: strPtr("2026-10-23"), URL: "https://example.atlassian.net/browse/PROJ-1"},
		{Key: "PROJ-2", Summary: "Write docs", IssueType: "Task", Priority: "Low", Status: "To Do"},
	}}
	srv := newReportServer(t, src, map[string]string{"PROJ-1": "**urgent** follow up"})

	status, body := fetch(t, srv.URL+"/report")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "PROJ-1")
	assert.Contains(t, body, "PROJ-2")
	assert.Contains(t, body, "<strong>urgent</strong> follow up")
	assert.Contains(t, body, "due-soon")
	assert.Contains(t, body, "23/10/2026")
	assert.Contains(t, body, "🐛 Bug")
	assert.Contains(t, body, "✓ Task")
}

func TestReport_FiltersFromQuery(t *testing.T) {
	t.Parallel()
	src := &fakeSource{issues: []dashboard.Issue{
		{Key: "PROJ-1", Summary: "Fix login", IssueType: "Bug", Priority: "High"},
		{Key: "PROJ-2", Summary: "Write docs", IssueType: "Task", Priority: "Low"},
	}}
	srv := newReportServer(t, src, map[string]string{})

	_, body := fetch(t, srv.URL+"/report?type=Task")
	assert.NotContains(t, body, "PROJ-1")
	assert.Contains(t, body, "PROJ-2")

	_, body = fetch(t, srv.URL+"/report?q=nothing-matches")
	assert.Contains(t, body, dashboard.PlaceholderText)
}

func TestReport_UpstreamFailure(t *testing.T) {
	t.Parallel()
	src := &fakeSource{err: &jira.UpstreamError{StatusCode: http.StatusUnauthorized, Body: []byte("denied")}}
	srv := newReportServer(t, src, map[string]string{})

	status, body := fetch(t, srv.URL+"/report")
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Contains(t, body, "Error loading issues")
	assert.NotContains(t, body, "<table")
}

func TestStateFromQuery(t *testing.T) {
	t.Parallel()
	q, err := url.ParseQuery("type=Bug&priority=High&status=Done&q=login&sortBy=key&sort=duedate&dir=desc&epics=1")
	require.NoError(t, err)

	s := StateFromQuery(q)
	assert.Equal(t, dashboard.Filters{Type: "Bug", Priority: "High", Status: "Done", Summary: "login"}, s.Filters)
	assert.Equal(t, dashboard.SortState{By: dashboard.ColumnKey, Column: dashboard.ColumnDueDate, Direction: dashboard.Desc}, s.Sort)
	assert.True(t, s.EpicView)

	s = StateFromQuery(url.Values{"sort": {"key"}, "dir": {"sideways"}})
	assert.Equal(t, dashboard.Asc, s.Sort.Direction)
	assert.False(t, s.EpicView)
	assert.Equal(t, dashboard.ColumnKey, s.Sort.Column)
}
