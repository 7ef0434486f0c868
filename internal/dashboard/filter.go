package dashboard

import (
	"slices"
	"strings"
)

// Filters narrows the issue set. Empty fields impose no constraint.
type Filters struct {
	Type     string
	Priority string
	Status   string
	Summary  string
}

// Filter returns the issues matching every non-empty filter. Type, priority
// and status match exactly; summary is a case-insensitive substring search.
func Filter(issues []Issue, f Filters) []Issue {
	term := ""
	if strings.TrimSpace(f.Summary) != "" {
		term = strings.ToLower(f.Summary)
	}

	out := make([]Issue, 0, len(issues))
	for _, issue := range issues {
		if f.Type != "" && issue.IssueType != f.Type {
			continue
		}
		if f.Priority != "" && issue.Priority != f.Priority {
			continue
		}
		if f.Status != "" && issue.Status != f.Status {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(issue.Summary), term) {
			continue
		}
		out = append(out, issue)
	}
	return out
}

// Options lists the distinct values offered by the filter dropdowns.
type Options struct {
	Types      []string
	Priorities []string
	Statuses   []string
}

// FilterOptions collects the sorted distinct types, priorities and statuses.
func FilterOptions(issues []Issue) Options {
	return Options{
		Types:      distinct(issues, func(i Issue) string { return i.IssueType }),
		Priorities: distinct(issues, func(i Issue) string { return i.Priority }),
		Statuses:   distinct(issues, func(i Issue) string { return i.Status }),
	}
}

func distinct(issues []Issue, field func(Issue) string) []string {
	seen := make(map[string]bool, len(issues))
	var out []string
	for _, issue := range issues {
		v := field(issue)
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}
