package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

// APIError is a non-2xx answer from the dashboard server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("Error %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("Error %d: %s", e.StatusCode, e.Message)
}

// Client talks to the dashboard server's JSON API. An empty BaseURL issues
// requests relative to the page origin, which is what the browser client
// wants.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient returns a client for the server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{BaseURL: baseURL, HTTPClient: http.DefaultClient}
}

// Issues fetches the current issue batch.
func (c *Client) Issues(ctx context.Context) (*IssuesResponse, error) {
	var out IssuesResponse
	if err := c.do(ctx, http.MethodGet, "/api/issues", nil, &out); err != nil {
		return nil, errors.Wrap(err, "load issues")
	}
	if out.Issues == nil {
		out.Issues = []Issue{}
	}
	return &out, nil
}

// Notes fetches the notes mapping.
func (c *Client) Notes(ctx context.Context) (map[string]string, error) {
	var out NotesPayload
	if err := c.do(ctx, http.MethodGet, "/api/notes", nil, &out); err != nil {
		return nil, errors.Wrap(err, "load notes")
	}
	return orEmpty(out.Notes), nil
}

// Scheduled fetches the scheduled dates mapping.
func (c *Client) Scheduled(ctx context.Context) (map[string]string, error) {
	var out ScheduledPayload
	if err := c.do(ctx, http.MethodGet, "/api/scheduled", nil, &out); err != nil {
		return nil, errors.Wrap(err, "load scheduled dates")
	}
	return orEmpty(out.Scheduled), nil
}

// SaveNotes replaces the stored notes mapping.
func (c *Client) SaveNotes(ctx context.Context, notes map[string]string) error {
	return c.do(ctx, http.MethodPost, "/api/notes", NotesPayload{Notes: orEmpty(notes)}, nil)
}

// SaveScheduled replaces the stored scheduled dates mapping.
func (c *Client) SaveScheduled(ctx context.Context, scheduled map[string]string) error {
	return c.do(ctx, http.MethodPost, "/api/scheduled", ScheduledPayload{Scheduled: orEmpty(scheduled)}, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "marshal request")
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}

func orEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
