package dashboard

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const dayLayout = "2006-01-02"

var timeLayouts = []string{
	"2006-01-02T15:04:05.000-0700",
	time.RFC3339Nano,
	dayLayout,
}

// TypeBadge is the icon and color shown next to an issue type.
type TypeBadge struct {
	Icon  string
	Color string
}

// TypeBadgeFor picks the badge by substring match on the type name.
func TypeBadgeFor(issueType string) TypeBadge {
	t := strings.ToLower(issueType)
	switch {
	case strings.Contains(t, "bug"):
		return TypeBadge{Icon: "🐛", Color: "#cd1316"}
	case strings.Contains(t, "story"):
		return TypeBadge{Icon: "📗", Color: "#36b37e"}
	case strings.Contains(t, "subtask"), strings.Contains(t, "sub-task"):
		return TypeBadge{Icon: "□", Color: "#4bade8"}
	case strings.Contains(t, "task"):
		return TypeBadge{Icon: "✓", Color: "#4bade8"}
	case strings.Contains(t, "epic"):
		return TypeBadge{Icon: "⚡", Color: "#6554c0"}
	}
	return TypeBadge{Icon: "◆", Color: "#5e6c84"}
}

// PriorityBadge is the icon and CSS class shown next to a priority.
type PriorityBadge struct {
	Icon  string
	Class string
}

// PriorityBadgeFor picks the badge by substring match on the priority name.
// "highest" and "lowest" are checked before "high" and "low".
func PriorityBadgeFor(priority string) PriorityBadge {
	p := strings.ToLower(priority)
	switch {
	case strings.Contains(p, "highest"):
		return PriorityBadge{Icon: "⬆", Class: "priority-highest"}
	case strings.Contains(p, "high"):
		return PriorityBadge{Icon: "↑", Class: "priority-high"}
	case strings.Contains(p, "medium"):
		return PriorityBadge{Icon: "═", Class: "priority-medium"}
	case strings.Contains(p, "lowest"):
		return PriorityBadge{Icon: "⬇", Class: "priority-lowest"}
	case strings.Contains(p, "low"):
		return PriorityBadge{Icon: "↓", Class: "priority-low"}
	}
	return PriorityBadge{Icon: "═", Class: "priority-medium"}
}

// StatusClass returns the badge classes for a status text.
func StatusClass(status string) string {
	s := strings.ToLower(status)
	switch {
	case strings.Contains(s, "to do"), s == "todo":
		return "status-badge status-todo"
	case strings.Contains(s, "in progress"), strings.Contains(s, "in review"):
		return "status-badge status-inprogress"
	case strings.Contains(s, "validation"):
		return "status-badge status-validation"
	case strings.Contains(s, "done"), strings.Contains(s, "closed"):
		return "status-badge status-done"
	case strings.Contains(s, "blocked"), strings.Contains(s, "declined"):
		return "status-badge status-blocked"
	}
	return "status-badge status-default"
}

// DueClass highlights a due date within 14 days ("due-soon") or within 30
// days ("due-warning"). Past or unparseable dates get no class.
func DueClass(due string, now time.Time) string {
	days, ok := daysUntil(due, now)
	switch {
	case !ok || days < 0:
		return ""
	case days <= 14:
		return "due-soon"
	case days <= 30:
		return "due-warning"
	}
	return ""
}

// ScheduledClass highlights a scheduled date that is today or past
// ("scheduled-overdue") or within a week ("scheduled-soon").
func ScheduledClass(scheduled string, now time.Time) string {
	days, ok := daysUntil(scheduled, now)
	switch {
	case !ok:
		return ""
	case days <= 0:
		return "scheduled-overdue"
	case days <= 7:
		return "scheduled-soon"
	}
	return ""
}

// FormatDate renders a date or timestamp as dd/mm/yyyy. Unparseable input
// is returned as is.
func FormatDate(s string) string {
	t, ok := parseTime(s)
	if !ok {
		return s
	}
	return t.Format("02/01/2006")
}

// FormatDateWithDay renders a date as dd/mm/yyyy followed by the short weekday.
func FormatDateWithDay(s string) string {
	t, ok := parseTime(s)
	if !ok {
		return s
	}
	return t.Format("02/01/2006 Mon")
}

// Weekday returns the short weekday name of a date, or "".
func Weekday(s string) string {
	t, ok := parseTime(s)
	if !ok {
		return ""
	}
	return t.Format("Mon")
}

// RelativeTime renders a timestamp relative to now, e.g. "3 days ago".
func RelativeTime(s string, now time.Time) string {
	t, ok := parseTime(s)
	if !ok {
		return ""
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// daysUntil compares calendar days only; the time of day and the zone of
// the stored value are ignored.
func daysUntil(s string, now time.Time) (int, bool) {
	if len(s) < len(dayLayout) {
		return 0, false
	}
	d, err := time.Parse(dayLayout, s[:len(dayLayout)])
	if err != nil {
		return 0, false
	}
	y, m, day := now.Date()
	today := time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
	return int(d.Sub(today).Hours() / 24), true
}
