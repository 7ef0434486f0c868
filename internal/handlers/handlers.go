// Package handlers serves the server-rendered HTML pages.
package handlers

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kidandcat/issuedash/internal/api"
	"github.com/kidandcat/issuedash/internal/dashboard"
	"github.com/kidandcat/issuedash/internal/store"
	log "github.com/sirupsen/logrus"
	"github.com/yuin/goldmark"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"markdown": func(content string) template.HTML {
		var buf strings.Builder
		if err := goldmark.Convert([]byte(content), &buf); err != nil {
			return template.HTML(template.HTMLEscapeString(content))
		}
		return template.HTML(buf.String())
	},
	"isSection": func(r dashboard.Row) bool { return r.Kind == dashboard.RowSection },
	"isIssue":   func(r dashboard.Row) bool { return r.Kind == dashboard.RowIssue },
}).ParseFS(templateFS, "templates/*.html"))

// Report renders the dashboard table as a printable page.
type Report struct {
	Issues    api.IssueSource
	Notes     store.Store
	Scheduled store.Store

	// Now defaults to time.Now.
	Now func() time.Time
}

func RegisterRoutes(mux *http.ServeMux, rep *Report) {
	mux.HandleFunc("GET /report", rep.handleReport)
}

type reportData struct {
	Generated string
	Filters   dashboard.Filters
	EpicView  bool
	Total     int
	Rows      []dashboard.Row
	Error     string
	Columns   int
}

func (rep *Report) handleReport(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	if rep.Now != nil {
		now = rep.Now()
	}
	state := StateFromQuery(r.URL.Query())
	state.Notes = rep.load(r, rep.Notes, store.Notes)
	state.Scheduled = rep.load(r, rep.Scheduled, store.Scheduled)

	data := reportData{
		Generated: now.Format("02/01/2006 15:04"),
		Filters:   state.Filters,
		EpicView:  state.EpicView,
		Columns:   dashboard.ColumnCount,
	}

	status := http.StatusOK
	issues, total, err := rep.Issues.AssignedIssues(r.Context())
	if err != nil {
		log.WithError(err).Error("Error fetching Jira issues for report")
		data.Error = "Error loading issues: " + err.Error()
		status = http.StatusBadGateway
	} else {
		state.Issues = issues
		data.Total = total
		data.Rows = dashboard.BuildRows(state, now)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ExecuteTemplate(w, "report.html", data); err != nil {
		log.WithError(err).Error("Failed to render report")
	}
}

func (rep *Report) load(r *http.Request, s store.Store, name string) map[string]string {
	m, err := s.Load(r.Context())
	if err != nil {
		log.WithError(err).WithField("mapping", name).Warn("Failed to read mapping, using empty")
		return map[string]string{}
	}
	return m
}

// StateFromQuery reads filters and sorting from the report URL:
// type, priority, status, q, sortBy, sort, dir and epics.
func StateFromQuery(q url.Values) dashboard.State {
	s := dashboard.State{
		Filters: dashboard.Filters{
			Type:     q.Get("type"),
			Priority: q.Get("priority"),
			Status:   q.Get("status"),
			Summary:  q.Get("q"),
		},
		Sort: dashboard.SortState{
			By:     dashboard.Column(q.Get("sortBy")),
			Column: dashboard.Column(q.Get("sort")),
		},
	}
	if s.Sort.Column != "" {
		s.Sort.Direction = dashboard.Asc
		if dashboard.Direction(q.Get("dir")) == dashboard.Desc {
			s.Sort.Direction = dashboard.Desc
		}
	}
	s.EpicView, _ = strconv.ParseBool(q.Get("epics"))
	return s
}
