package dashboard

// State is everything the table is derived from. Rendering reads it and
// never keeps state of its own.
type State struct {
	Issues    []Issue
	Notes     map[string]string
	Scheduled map[string]string
	Filters   Filters
	Sort      SortState
	EpicView  bool
}

// Visible filters the issues, applies the dropdown sort and then the header
// sort, which therefore decides the final order when both are set.
func (s State) Visible() []Issue {
	out := Filter(s.Issues, s.Filters)
	if s.Sort.By != "" {
		out = SortIssues(out, s.Sort.By, Asc, s.Scheduled)
	}
	if s.Sort.Column != "" {
		dir := s.Sort.Direction
		if dir == "" {
			dir = Asc
		}
		out = SortIssues(out, s.Sort.Column, dir, s.Scheduled)
	}
	return out
}

// ClearFilters resets filters and both sort mechanisms.
func (s State) ClearFilters() State {
	s.Filters = Filters{}
	s.Sort = SortState{}
	return s
}
