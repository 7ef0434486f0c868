package dashboard

import (
	"slices"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Column names a sortable table column.
type Column string

const (
	ColumnType      Column = "type"
	ColumnKey       Column = "key"
	ColumnSummary   Column = "summary"
	ColumnPriority  Column = "priority"
	ColumnStatus    Column = "status"
	ColumnCreated   Column = "created"
	ColumnUpdated   Column = "updated"
	ColumnDueDate   Column = "duedate"
	ColumnScheduled Column = "scheduled"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Columns lists the sortable columns in display order.
var Columns = []Column{
	ColumnType, ColumnKey, ColumnSummary, ColumnPriority, ColumnCreated,
	ColumnUpdated, ColumnDueDate, ColumnStatus, ColumnScheduled,
}

var columnLabels = map[Column]string{
	ColumnType:      "Type",
	ColumnKey:       "Key",
	ColumnSummary:   "Summary",
	ColumnPriority:  "Priority",
	ColumnStatus:    "Status",
	ColumnCreated:   "Created",
	ColumnUpdated:   "Updated",
	ColumnDueDate:   "Due Date",
	ColumnScheduled: "Scheduled",
}

// Label is the header text of the column.
func (c Column) Label() string {
	if l, ok := columnLabels[c]; ok {
		return l
	}
	return string(c)
}

var priorityRank = map[string]int{
	"Highest": 1,
	"High":    2,
	"Medium":  3,
	"Low":     4,
	"Lowest":  5,
}

const unknownPriorityRank = 999

// farFuture stands in for a missing date so undated issues sort last.
var farFuture = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

// SortState combines the dropdown sort (always ascending) with the
// click-to-sort column header. The header sort is applied last.
type SortState struct {
	By        Column
	Column    Column
	Direction Direction
}

// Click returns the state after a click on a column header: the same column
// flips direction, a new column starts ascending. The dropdown is cleared.
func (s SortState) Click(c Column) SortState {
	if s.Column == c {
		if s.Direction == Asc {
			s.Direction = Desc
		} else {
			s.Direction = Asc
		}
	} else {
		s.Column = c
		s.Direction = Asc
	}
	s.By = ""
	return s
}

// Indicator returns the header class for c: "sort-asc", "sort-desc" or "".
func (s SortState) Indicator(c Column) string {
	if s.Column == "" || s.Column != c {
		return ""
	}
	if s.Direction == Desc {
		return "sort-desc"
	}
	return "sort-asc"
}

// SortIssues returns a stably sorted copy of issues. Scheduled dates are
// looked up by issue key. An unknown column keeps the input order.
func SortIssues(issues []Issue, c Column, d Direction, scheduled map[string]string) []Issue {
	out := slices.Clone(issues)
	cmp := comparator(c, scheduled)
	if cmp == nil {
		return out
	}
	slices.SortStableFunc(out, func(a, b Issue) int {
		if d == Desc {
			return -cmp(a, b)
		}
		return cmp(a, b)
	})
	return out
}

func comparator(c Column, scheduled map[string]string) func(a, b Issue) int {
	switch c {
	case ColumnType:
		return byString(func(i Issue) string { return i.IssueType })
	case ColumnKey:
		return byString(func(i Issue) string { return i.Key })
	case ColumnSummary:
		return byString(func(i Issue) string { return i.Summary })
	case ColumnStatus:
		return byString(func(i Issue) string { return i.Status })
	case ColumnPriority:
		return func(a, b Issue) int {
			return PriorityRank(a.Priority) - PriorityRank(b.Priority)
		}
	case ColumnCreated:
		return byDate(func(i Issue) string { return i.Created })
	case ColumnUpdated:
		return byDate(func(i Issue) string { return i.Updated })
	case ColumnDueDate:
		return byDate(func(i Issue) string { return deref(i.DueDate) })
	case ColumnScheduled:
		return byDate(func(i Issue) string { return scheduled[i.Key] })
	}
	return nil
}

// PriorityRank maps a priority name to its sort rank; unknown names rank 999.
func PriorityRank(p string) int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return unknownPriorityRank
}

func byString(field func(Issue) string) func(a, b Issue) int {
	col := collate.New(language.English)
	return func(a, b Issue) int {
		return col.CompareString(field(a), field(b))
	}
}

func byDate(field func(Issue) string) func(a, b Issue) int {
	return func(a, b Issue) int {
		return dateOrFarFuture(field(a)).Compare(dateOrFarFuture(field(b)))
	}
}

func dateOrFarFuture(s string) time.Time {
	if t, ok := parseTime(s); ok {
		return t
	}
	return farFuture
}
