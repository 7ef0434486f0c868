package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kidandcat/issuedash/internal/config"
	"github.com/kidandcat/issuedash/internal/dashboard"
	"github.com/kidandcat/issuedash/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticIssues []dashboard.Issue

func (s staticIssues) AssignedIssues(context.Context) ([]dashboard.Issue, int, error) {
	return s, len(s), nil
}

func TestRouter_APIWithCORSAndRequestID(t *testing.T) {
	stores, err := store.Open(store.BackendFile, t.TempDir())
	require.NoError(t, err)
	srv := httptest.NewServer(newRouter(config.Config{}, staticIssues{{Key: "PROJ-1"}}, stores))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/health", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))
}

func TestRouter_Report(t *testing.T) {
	stores, err := store.Open(store.BackendFile, t.TempDir())
	require.NoError(t, err)
	srv := httptest.NewServer(newRouter(config.Config{}, staticIssues{{Key: "PROJ-7", Summary: "Ship it"}}, stores))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/report")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
