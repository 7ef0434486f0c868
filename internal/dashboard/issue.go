// Package dashboard holds the issue model shared by the server and the
// browser client, and the pure filter/sort/group pipeline that turns the
// fetched issues plus the user's notes and scheduled dates into table rows.
package dashboard

import "strings"

// Issue is the simplified record the server derives from the remote tracker.
type Issue struct {
	Key       string  `json:"key"`
	Summary   string  `json:"summary"`
	Status    string  `json:"status"`
	Priority  string  `json:"priority"`
	IssueType string  `json:"issueType"`
	Created   string  `json:"created"`
	Updated   string  `json:"updated"`
	DueDate   *string `json:"duedate"`
	URL       string  `json:"url"`
	ParentKey *string `json:"parentKey"`
	EpicLink  *string `json:"epicLink"`
}

// IsEpic reports whether the issue type names an epic.
func (i Issue) IsEpic() bool {
	return strings.Contains(strings.ToLower(i.IssueType), "epic")
}

// EpicKey returns the key of the epic the issue belongs to. The parent key
// wins over the epic link.
func (i Issue) EpicKey() string {
	if i.ParentKey != nil && *i.ParentKey != "" {
		return *i.ParentKey
	}
	return deref(i.EpicLink)
}

// IssuesResponse is the body of GET /api/issues.
type IssuesResponse struct {
	Total  int     `json:"total"`
	Issues []Issue `json:"issues"`
}

// NotesPayload is the body of GET and POST /api/notes.
type NotesPayload struct {
	Notes map[string]string `json:"notes"`
}

// ScheduledPayload is the body of GET and POST /api/scheduled.
type ScheduledPayload struct {
	Scheduled map[string]string `json:"scheduled"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
