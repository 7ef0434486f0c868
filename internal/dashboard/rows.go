package dashboard

import "time"

// ColumnCount is the number of table columns; placeholder and section rows
// span all of them.
const ColumnCount = 10

const (
	PlaceholderText = "No issues found matching your filters"
	NoEpicText      = "Issues without Epic"
)

// RowKind tells the renderer what a row is.
type RowKind int

const (
	RowIssue RowKind = iota
	RowSection
	RowPlaceholder
)

// Row is one rendered table row with every display decision already made.
type Row struct {
	Kind RowKind
	Text string

	Issue    Issue
	Child    bool
	Epic     bool
	Type     TypeBadge
	Priority PriorityBadge
	Status   string

	Created    string
	Updated    string
	UpdatedAgo string
	Due        string
	DueClass   string

	Note           string
	Scheduled      string
	ScheduledTitle string
	ScheduledDay   string
	ScheduledClass string
}

// BuildRows derives the table rows from the state. now fixes "today" for the
// date highlights.
func BuildRows(s State, now time.Time) []Row {
	visible := s.Visible()
	if len(visible) == 0 {
		return []Row{{Kind: RowPlaceholder, Text: PlaceholderText}}
	}

	if !s.EpicView {
		rows := make([]Row, 0, len(visible))
		for _, issue := range visible {
			rows = append(rows, issueRow(s, issue, false, now))
		}
		return rows
	}

	g := GroupByEpic(visible)
	rows := make([]Row, 0, len(visible)+1)
	for _, group := range g.Epics {
		rows = append(rows, issueRow(s, group.Epic, false, now))
		for _, child := range group.Children {
			rows = append(rows, issueRow(s, child, true, now))
		}
	}
	if len(g.Orphans) > 0 {
		rows = append(rows, Row{Kind: RowSection, Text: NoEpicText})
		for _, issue := range g.Orphans {
			rows = append(rows, issueRow(s, issue, false, now))
		}
	}
	return rows
}

func issueRow(s State, issue Issue, child bool, now time.Time) Row {
	r := Row{
		Kind:       RowIssue,
		Issue:      issue,
		Child:      child,
		Epic:       issue.IsEpic(),
		Type:       TypeBadgeFor(issue.IssueType),
		Priority:   PriorityBadgeFor(issue.Priority),
		Status:     StatusClass(issue.Status),
		Created:    FormatDate(issue.Created),
		Updated:    FormatDate(issue.Updated),
		UpdatedAgo: RelativeTime(issue.Updated, now),
		Note:       s.Notes[issue.Key],
		Scheduled:  s.Scheduled[issue.Key],
	}
	if due := deref(issue.DueDate); due != "" {
		r.Due = FormatDate(due)
		r.DueClass = DueClass(due, now)
	}
	if r.Scheduled != "" {
		r.ScheduledTitle = FormatDateWithDay(r.Scheduled)
		r.ScheduledDay = Weekday(r.Scheduled)
		r.ScheduledClass = ScheduledClass(r.Scheduled, now)
	}
	return r
}
