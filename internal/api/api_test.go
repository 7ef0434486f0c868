package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kidandcat/issuedash/internal/dashboard"
	"github.com/kidandcat/issuedash/internal/jira"
	"github.com/kidandcat/issuedash/internal/store"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	issues []dashboard.Issue
	total  int
	err    error
}

func (f *fakeSource) AssignedIssues(context.Context) ([]dashboard.Issue, int, error) {
	return f.issues, f.total, f.err
}

type failingStore struct{}

func (failingStore) Load(context.Context) (map[string]string, error) {
	return nil, errors.New("disk gone")
}

func (failingStore) Replace(context.Context, map[string]string) error {
	return errors.New("disk full")
}

func newTestServer(t *testing.T, src IssueSource) (*httptest.Server, string) {
	t.Helper()
	dir := t.TempDir()
	set, err := store.Open(store.BackendFile, dir)
	require.NoError(t, err)

	mux := http.NewServeMux()
	RegisterRoutes(mux, &Server{Issues: src, Notes: set.Notes, Scheduled: set.Scheduled})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, dir
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func postJSON(t *testing.T, url, body string, out any) int {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestIssues_Success(t *testing.T) {
	t.Parallel()
	src := &fakeSource{
		issues: []dashboard.Issue{{Key: "PROJ-1", Summary: "Fix login", Priority: "High"}},
		total:  1,
	}
	srv, _ := newTestServer(t, src)

	var got dashboard.IssuesResponse
	status := getJSON(t, srv.URL+"/api/issues", &got)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, got.Total)
	require.Len(t, got.Issues, 1)
	assert.Equal(t, "PROJ-1", got.Issues[0].Key)
}

func TestIssues_UpstreamErrorCarriesDetails(t *testing.T) {
	t.Parallel()
	src := &fakeSource{err: &jira.UpstreamError{
		StatusCode: http.StatusUnauthorized,
		Body:       []byte(`{"errorMessages":["Unauthorized"]}`),
	}}
	srv, _ := newTestServer(t, src)

	var got struct {
		Error   string `json:"error"`
		Details struct {
			ErrorMessages []string `json:"errorMessages"`
		} `json:"details"`
	}
	status := getJSON(t, srv.URL+"/api/issues", &got)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.NotEmpty(t, got.Error)
	assert.Equal(t, []string{"Unauthorized"}, got.Details.ErrorMessages)
}

func TestIssues_NetworkErrorDetailsIsMessage(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t, &fakeSource{err: errors.Wrap(errors.New("connection refused"), "fetch from jira")})

	var got map[string]any
	status := getJSON(t, srv.URL+"/api/issues", &got)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "fetch from jira: connection refused", got["details"])
}

func TestNotes_EmptyWhenNoFile(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t, &fakeSource{})

	var got map[string]map[string]string
	status := getJSON(t, srv.URL+"/api/notes", &got)
	assert.Equal(t, http.StatusOK, status)
	require.Contains(t, got, "notes")
	assert.Empty(t, got["notes"])
}

func TestNotes_SaveRoundTripAndDelete(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t, &fakeSource{})

	var saved map[string]any
	status := postJSON(t, srv.URL+"/api/notes", `{"notes":{"X":"follow up","Y":"later"}}`, &saved)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, saved["success"])
	assert.Equal(t, "Notes saved successfully", saved["message"])

	var got map[string]map[string]string
	getJSON(t, srv.URL+"/api/notes", &got)
	assert.Equal(t, map[string]string{"X": "follow up", "Y": "later"}, got["notes"])

	postJSON(t, srv.URL+"/api/notes", `{"notes":{"Y":"later"}}`, &saved)
	getJSON(t, srv.URL+"/api/notes", &got)
	assert.Equal(t, map[string]string{"Y": "later"}, got["notes"])
}

func TestNotes_InvalidPayloadLeavesFileUnchanged(t *testing.T) {
	t.Parallel()
	srv, dir := newTestServer(t, &fakeSource{})

	var saved map[string]any
	postJSON(t, srv.URL+"/api/notes", `{"notes":{"X":"keep"}}`, &saved)
	path := filepath.Join(dir, "notes.json")
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	for _, body := range []string{
		`{"notes":"not-an-object"}`,
		`{"notes":null}`,
		`{"notes":{"X":1}}`,
		`{"other":{}}`,
		`not json`,
	} {
		var got map[string]string
		status := postJSON(t, srv.URL+"/api/notes", body, &got)
		assert.Equal(t, http.StatusBadRequest, status, body)
		assert.Equal(t, "Invalid notes format", got["error"], body)
	}

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestScheduled_RoundTrip(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t, &fakeSource{})

	var got map[string]map[string]string
	getJSON(t, srv.URL+"/api/scheduled", &got)
	assert.Empty(t, got["scheduled"])

	var saved map[string]any
	status := postJSON(t, srv.URL+"/api/scheduled", `{"scheduled":{"X":"2026-10-20"}}`, &saved)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Scheduled dates saved successfully", saved["message"])

	getJSON(t, srv.URL+"/api/scheduled", &got)
	assert.Equal(t, map[string]string{"X": "2026-10-20"}, got["scheduled"])

	var bad map[string]string
	status = postJSON(t, srv.URL+"/api/scheduled", `{"scheduled":[]}`, &bad)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid scheduled format", bad["error"])
}

func TestMappings_StoreFailures(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	RegisterRoutes(mux, &Server{Issues: &fakeSource{}, Notes: failingStore{}, Scheduled: failingStore{}})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	var got map[string]map[string]string
	status := getJSON(t, srv.URL+"/api/notes", &got)
	assert.Equal(t, http.StatusOK, status, "read failures degrade to an empty mapping")
	assert.Empty(t, got["notes"])

	var failed map[string]string
	status = postJSON(t, srv.URL+"/api/scheduled", `{"scheduled":{"X":"2026-10-20"}}`, &failed)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Failed to save scheduled dates", failed["error"])
}

func TestHealth(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t, &fakeSource{})

	var got map[string]string
	status := getJSON(t, srv.URL+"/api/health", &got)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", got["status"])
	assert.NotEmpty(t, got["message"])
}

func TestMethodNotAllowed(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t, &fakeSource{})

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/notes", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
