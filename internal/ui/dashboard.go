// Package ui is the browser side of the dashboard, compiled to WebAssembly.
package ui

import (
	"context"
	"time"

	"github.com/kidandcat/issuedash/internal/dashboard"
	"github.com/maxence-charriere/go-app/v10/pkg/app"
	"github.com/pkg/errors"
)

// RefreshInterval is how often the issue list reloads on its own.
const RefreshInterval = 5 * time.Minute

// notesLabel heads the only column without a sort.
const notesLabel = "Notes"

// Register binds the dashboard to the root path.
func Register() {
	app.Route("/", func() app.Composer { return &Dashboard{} })
}

type Dashboard struct {
	app.Compo

	api   *dashboard.Client
	state dashboard.State

	loading bool
	loaded  bool
	errMsg  string

	// Input values typed since the last save, keyed by issue key.
	noteDrafts      map[string]string
	scheduledDrafts map[string]string

	save dashboard.SaveStatus
}

func (d *Dashboard) OnInit() {
	if d.api == nil {
		d.api = dashboard.NewClient("")
	}
	d.state.Notes = map[string]string{}
	d.state.Scheduled = map[string]string{}
	d.noteDrafts = map[string]string{}
	d.scheduledDrafts = map[string]string{}
}

func (d *Dashboard) OnMount(ctx app.Context) {
	d.refresh(ctx)
	d.scheduleRefresh(ctx)
}

func (d *Dashboard) scheduleRefresh(ctx app.Context) {
	ctx.After(RefreshInterval, func(ctx app.Context) {
		d.refresh(ctx)
		d.scheduleRefresh(ctx)
	})
}

func (d *Dashboard) refresh(ctx app.Context) {
	if !d.startLoading() {
		return
	}
	ctx.Async(func() {
		res := fetchAll(context.Background(), d.api)
		ctx.Dispatch(func(ctx app.Context) {
			d.finishLoading(res)
		})
	})
}

// startLoading marks a refresh in flight. It reports false when one
// already is, and that refresh is then skipped.
func (d *Dashboard) startLoading() bool {
	if d.loading {
		return false
	}
	d.loading = true
	d.errMsg = ""
	return true
}

type loadResult struct {
	notes     map[string]string
	scheduled map[string]string
	issues    []dashboard.Issue
	err       error
}

// fetchAll loads notes, then scheduled dates, then issues. Mapping
// failures fall back to empty mappings; only the issue error is kept.
func fetchAll(ctx context.Context, api *dashboard.Client) loadResult {
	var res loadResult
	var err error

	res.notes, err = api.Notes(ctx)
	if err != nil {
		app.Log("error loading notes:", err)
		res.notes = map[string]string{}
	}
	res.scheduled, err = api.Scheduled(ctx)
	if err != nil {
		app.Log("error loading scheduled dates:", err)
		res.scheduled = map[string]string{}
	}
	resp, err := api.Issues(ctx)
	if err != nil {
		res.err = err
		return res
	}
	res.issues = resp.Issues
	return res
}

// finishLoading installs a load result. Unsaved drafts are dropped; an
// issue failure shows the error banner and keeps the previous issues.
func (d *Dashboard) finishLoading(res loadResult) {
	d.loading = false
	d.state.Notes = res.notes
	d.state.Scheduled = res.scheduled
	d.noteDrafts = map[string]string{}
	d.scheduledDrafts = map[string]string{}
	if res.err != nil {
		app.Log("error loading issues:", res.err)
		d.errMsg = "Error loading issues: " + errors.Cause(res.err).Error()
		return
	}
	d.state.Issues = res.issues
	d.loaded = true
}

// Filters and sorting

func (d *Dashboard) onFilterType(ctx app.Context, e app.Event) {
	d.state.Filters.Type = ctx.JSSrc().Get("value").String()
}

func (d *Dashboard) onFilterPriority(ctx app.Context, e app.Event) {
	d.state.Filters.Priority = ctx.JSSrc().Get("value").String()
}

func (d *Dashboard) onFilterStatus(ctx app.Context, e app.Event) {
	d.state.Filters.Status = ctx.JSSrc().Get("value").String()
}

func (d *Dashboard) onFilterSummary(ctx app.Context, e app.Event) {
	d.state.Filters.Summary = ctx.JSSrc().Get("value").String()
}

func (d *Dashboard) onSortBy(ctx app.Context, e app.Event) {
	d.state.Sort.By = dashboard.Column(ctx.JSSrc().Get("value").String())
}

func (d *Dashboard) onHeaderClick(c dashboard.Column) app.EventHandler {
	return func(ctx app.Context, e app.Event) {
		d.state.Sort = d.state.Sort.Click(c)
	}
}

func (d *Dashboard) onClearFilters(ctx app.Context, e app.Event) {
	d.state = d.state.ClearFilters()
}

func (d *Dashboard) onToggleEpics(ctx app.Context, e app.Event) {
	d.state.EpicView = !d.state.EpicView
}

// Notes and scheduled dates

func (d *Dashboard) onNoteInput(key string) app.EventHandler {
	return func(ctx app.Context, e app.Event) {
		d.noteDrafts[key] = ctx.JSSrc().Get("value").String()
	}
}

func (d *Dashboard) onScheduledChange(key string) app.EventHandler {
	return func(ctx app.Context, e app.Event) {
		d.scheduledDrafts[key] = ctx.JSSrc().Get("value").String()
	}
}

func (d *Dashboard) onSave(ctx app.Context, e app.Event) {
	notes, scheduled, ok := d.stageSave()
	if !ok {
		return
	}
	ctx.Async(func() {
		err := dashboard.Flush(context.Background(), d.api, notes, scheduled)
		ctx.Dispatch(func(ctx app.Context) {
			d.finishSave(err)
			ctx.After(d.save.ResetAfter(), func(ctx app.Context) {
				d.save = dashboard.SaveIdle
			})
		})
	})
}

// stageSave folds the drafts of the visible rows into the mappings and
// returns copies to send. The mappings keep the new values even when the
// save fails, so the next click retries them. ok is false while a save
// is still showing its status.
func (d *Dashboard) stageSave() (notes, scheduled map[string]string, ok bool) {
	if d.save.Disabled() {
		return nil, nil, false
	}
	visible := d.state.Visible()
	dashboard.ApplyInputs(d.state.Notes, takeDrafts(d.noteDrafts, visible))
	dashboard.ApplyInputs(d.state.Scheduled, takeDrafts(d.scheduledDrafts, visible))
	d.save = dashboard.SaveInProgress
	return clone(d.state.Notes), clone(d.state.Scheduled), true
}

func (d *Dashboard) finishSave(err error) {
	if err != nil {
		app.Log("error saving notes:", err)
		d.save = dashboard.SaveFailed
		return
	}
	d.save = dashboard.SaveSucceeded
}

// takeDrafts removes and returns the drafts of the visible issues.
func takeDrafts(drafts map[string]string, visible []dashboard.Issue) map[string]string {
	out := make(map[string]string, len(drafts))
	for _, issue := range visible {
		if v, ok := drafts[issue.Key]; ok {
			out[issue.Key] = v
			delete(drafts, issue.Key)
		}
	}
	return out
}

func clone(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Render
func (d *Dashboard) Render() app.UI {
	return app.Div().Class("container").Body(
		d.renderHeader(),
		app.If(d.loading, func() app.UI {
			return app.Div().Class("loading").Body(
				app.Div().Class("loading-spinner"),
				app.P().Text("Loading issues..."),
			)
		}),
		app.If(d.errMsg != "", func() app.UI {
			return app.Div().Class("error").Text(d.errMsg)
		}),
		app.If(d.loaded && !d.loading && d.errMsg == "", func() app.UI {
			if len(d.state.Issues) == 0 {
				return app.Div().Class("empty-state").Body(
					app.P().Text("You have no pending issues"),
				)
			}
			return app.Div().Class("issues-container").Body(
				d.renderControls(),
				d.renderTable(),
			)
		}),
	)
}

func (d *Dashboard) renderHeader() app.UI {
	return app.Header().Body(
		app.H1().Text("My Jira Issues"),
		app.Button().
			ID("refreshBtn").
			Class("refresh-btn").
			Disabled(d.loading).
			OnClick(func(ctx app.Context, e app.Event) { d.refresh(ctx) }).
			Text("🔄 Refresh"),
	)
}

func (d *Dashboard) renderControls() app.UI {
	opts := dashboard.FilterOptions(d.state.Issues)
	f := d.state.Filters

	epicLabel, epicClass := "🗂️ Organize by Epic", "epic-toggle-btn"
	if d.state.EpicView {
		epicLabel, epicClass = "📋 Show Flat View", "epic-toggle-btn active"
	}

	sortOptions := append([]dashboard.Column{""}, dashboard.Columns...)

	return app.Div().Class("filters").Body(
		renderSelect("All Types", opts.Types, f.Type, d.onFilterType),
		renderSelect("All Priorities", opts.Priorities, f.Priority, d.onFilterPriority),
		renderSelect("All Statuses", opts.Statuses, f.Status, d.onFilterStatus),
		app.Input().
			Type("text").
			Class("filter-summary").
			Placeholder("Search summary...").
			Value(f.Summary).
			OnInput(d.onFilterSummary),
		app.Select().Class("filter-select").OnChange(d.onSortBy).Body(
			app.Range(sortOptions).Slice(func(i int) app.UI {
				c := sortOptions[i]
				label := "Sort by..."
				if c != "" {
					label = c.Label()
				}
				return app.Option().
					Value(string(c)).
					Selected(c == d.state.Sort.By).
					Text(label)
			}),
		),
		app.Button().Class("clear-btn").OnClick(d.onClearFilters).Text("Clear Filters"),
		app.Button().Class(epicClass).OnClick(d.onToggleEpics).Text(epicLabel),
		app.Button().
			Class("save-btn "+d.save.Class()).
			Disabled(d.save.Disabled()).
			OnClick(d.onSave).
			Text(d.save.Label()),
	)
}

func renderSelect(all string, values []string, selected string, onChange app.EventHandler) app.UI {
	return app.Select().Class("filter-select").OnChange(onChange).Body(
		app.Option().Value("").Selected(selected == "").Text(all),
		app.Range(values).Slice(func(i int) app.UI {
			return app.Option().
				Value(values[i]).
				Selected(values[i] == selected).
				Text(values[i])
		}),
	)
}

func (d *Dashboard) renderTable() app.UI {
	rows := dashboard.BuildRows(d.state, time.Now())

	return app.Table().Class("issues-table").Body(
		app.THead().Body(
			app.Tr().Body(
				app.Range(dashboard.Columns).Slice(func(i int) app.UI {
					c := dashboard.Columns[i]
					return app.Th().
						Class("sortable " + d.state.Sort.Indicator(c)).
						OnClick(d.onHeaderClick(c)).
						Text(c.Label())
				}),
				app.Th().Text(notesLabel),
			),
		),
		app.TBody().Body(
			app.Range(rows).Slice(func(i int) app.UI {
				return d.renderRow(rows[i])
			}),
		),
	)
}

func typeLabel(r dashboard.Row) string {
	return r.Type.Icon + " " + r.Issue.IssueType
}

func (d *Dashboard) renderRow(r dashboard.Row) app.UI {
	switch r.Kind {
	case dashboard.RowPlaceholder:
		return app.Tr().Body(
			app.Td().ColSpan(dashboard.ColumnCount).Class("placeholder").Text(r.Text),
		)
	case dashboard.RowSection:
		return app.Tr().Class("no-epic-section").Body(
			app.Td().ColSpan(dashboard.ColumnCount).Class("no-epic-header").Text(r.Text),
		)
	}

	issue := r.Issue
	rowClass := ""
	if r.Child {
		rowClass += " child-row"
	}
	if r.Epic {
		rowClass += " epic-row"
	}

	note := r.Note
	if v, ok := d.noteDrafts[issue.Key]; ok {
		note = v
	}
	scheduled := r.Scheduled
	if v, ok := d.scheduledDrafts[issue.Key]; ok {
		scheduled = v
	}

	return app.Tr().Class(rowClass).Body(
		app.Td().Body(
			app.Span().
				Class("issue-type-cell").
				Style("color", r.Type.Color).
				Text(typeLabel(r)),
		),
		app.Td().Body(
			app.A().Class("issue-key-link").Href(issue.URL).Target("_blank").Text(issue.Key),
		),
		app.Td().Body(
			app.Span().Class("issue-summary").Body(
				app.If(r.Child, func() app.UI {
					return app.Span().Class("tree-prefix").Text("|-- ")
				}),
				app.Text(issue.Summary),
			),
		),
		app.Td().Body(
			app.Span().Class("priority "+r.Priority.Class).Title(issue.Priority).Text(r.Priority.Icon+" "+issue.Priority),
		),
		app.Td().Body(app.Span().Class("date-cell").Text("📅 "+r.Created)),
		app.Td().Body(app.Span().Class("date-cell").Title(r.UpdatedAgo).Text("🔄 "+r.Updated)),
		app.Td().Body(
			app.If(r.Due == "", func() app.UI {
				return app.Span().Class("date-cell no-date").Text("-")
			}).Else(func() app.UI {
				return app.Span().Class("date-cell "+r.DueClass).Text("⏰ "+r.Due)
			}),
		),
		app.Td().Body(app.Span().Class(r.Status).Text(issue.Status)),
		app.Td().Body(
			app.Div().Class("scheduled-container").Body(
				app.Input().
					Type("date").
					Class("scheduled-input "+r.ScheduledClass).
					Value(scheduled).
					Title(r.ScheduledTitle).
					OnChange(d.onScheduledChange(issue.Key)),
				app.If(r.ScheduledDay != "", func() app.UI {
					return app.Span().Class("scheduled-day").Text(r.ScheduledDay)
				}),
			),
		),
		app.Td().Body(
			app.Input().
				Type("text").
				Class("note-input").
				Placeholder("Add a note...").
				Value(note).
				OnInput(d.onNoteInput(issue.Key)),
		),
	)
}
