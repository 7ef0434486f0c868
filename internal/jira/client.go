// Package jira fetches the dashboard user's open issues from Jira Cloud.
package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kidandcat/issuedash/internal/dashboard"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// AssignedJQL selects the caller's issues that are not in a terminal status.
const AssignedJQL = "assignee=currentUser() AND status!=Done AND status!=Declined AND status!=Closed AND status!=Canceled AND status!=Resolved"

// MaxResults is the fixed page size; only the first page is fetched.
const MaxResults = 50

// EpicLinkField is the custom field Jira Cloud uses for the classic epic link.
const EpicLinkField = "customfield_10014"

var searchFields = []string{
	"key", "summary", "status", "priority", "assignee", "created", "updated",
	"issuetype", "parent", EpicLinkField, "duedate",
}

// UpstreamError is a non-2xx answer from Jira.
type UpstreamError struct {
	StatusCode int
	Body       []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("jira API returned status %d: %s", e.StatusCode, string(e.Body))
}

// Details returns the upstream payload for diagnostics: the decoded JSON
// when the body is JSON, the raw text otherwise.
func (e *UpstreamError) Details() any {
	if json.Valid(e.Body) {
		return json.RawMessage(e.Body)
	}
	return string(e.Body)
}

// Client queries one Jira Cloud site with fixed credentials.
type Client struct {
	BaseURL    string
	Email      string
	APIToken   string
	HTTPClient *http.Client
}

// NewClient returns a client for the site at baseURL.
func NewClient(baseURL, email, token string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Email:      email,
		APIToken:   token,
		HTTPClient: http.DefaultClient,
	}
}

type searchResponse struct {
	Issues []issue `json:"issues"`
	Total  *int    `json:"total"`
}

type issue struct {
	Key    string      `json:"key"`
	Fields issueFields `json:"fields"`
}

type issueFields struct {
	Summary   string  `json:"summary"`
	Status    *named  `json:"status"`
	Priority  *named  `json:"priority"`
	IssueType *named  `json:"issuetype"`
	Created   string  `json:"created"`
	Updated   string  `json:"updated"`
	DueDate   *string `json:"duedate"`
	Parent    *struct {
		Key string `json:"key"`
	} `json:"parent"`
	EpicLink *string `json:"customfield_10014"`
}

type named struct {
	Name string `json:"name"`
}

// AssignedIssues runs the assigned-issues search and maps the first page to
// dashboard issues. total is the upstream total when reported, otherwise the
// number of issues returned.
func (c *Client) AssignedIssues(ctx context.Context) (issues []dashboard.Issue, total int, err error) {
	q := url.Values{}
	q.Set("jql", AssignedJQL)
	q.Set("maxResults", strconv.Itoa(MaxResults))
	q.Set("fields", strings.Join(searchFields, ","))
	endpoint := c.BaseURL + "/rest/api/3/search/jql?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, errors.Wrap(err, "create jira request")
	}
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.Email, c.APIToken)

	log.WithField("base_url", c.BaseURL).Debug("Fetching Jira issues")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, 0, errors.Wrap(err, "fetch from jira")
	}
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, 0, errors.Wrap(err, "read jira response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, 0, &UpstreamError{StatusCode: resp.StatusCode, Body: body}
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, 0, errors.Wrap(err, "parse jira response")
	}

	issues = make([]dashboard.Issue, 0, len(sr.Issues))
	for _, i := range sr.Issues {
		issues = append(issues, c.toIssue(i))
	}
	total = len(issues)
	if sr.Total != nil {
		total = *sr.Total
	}
	log.WithField("count", len(issues)).Debug("Jira issues fetched")
	return issues, total, nil
}

// BrowseURL is the deep link to an issue.
func (c *Client) BrowseURL(key string) string {
	return c.BaseURL + "/browse/" + key
}

func (c *Client) toIssue(i issue) dashboard.Issue {
	f := i.Fields
	out := dashboard.Issue{
		Key:       i.Key,
		Summary:   f.Summary,
		Status:    nameOf(f.Status, ""),
		Priority:  nameOf(f.Priority, "None"),
		IssueType: nameOf(f.IssueType, ""),
		Created:   f.Created,
		Updated:   f.Updated,
		DueDate:   nonEmpty(f.DueDate),
		URL:       c.BrowseURL(i.Key),
		EpicLink:  nonEmpty(f.EpicLink),
	}
	if f.Parent != nil && f.Parent.Key != "" {
		key := f.Parent.Key
		out.ParentKey = &key
	}
	return out
}

func nameOf(n *named, fallback string) string {
	if n == nil || n.Name == "" {
		return fallback
	}
	return n.Name
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
