package dashboard

// EpicGroup is an epic followed by the issues that belong to it.
type EpicGroup struct {
	Epic     Issue
	Children []Issue
}

// Grouping partitions an issue list into epics and orphans.
type Grouping struct {
	Epics   []EpicGroup
	Orphans []Issue
}

// GroupByEpic partitions issues into epic groups plus the issues that match
// no epic in the list. Epics and children keep the input order, so sorting
// must happen before grouping.
func GroupByEpic(issues []Issue) Grouping {
	var g Grouping
	index := make(map[string]int)
	for _, issue := range issues {
		if !issue.IsEpic() {
			continue
		}
		index[issue.Key] = len(g.Epics)
		g.Epics = append(g.Epics, EpicGroup{Epic: issue})
	}

	for _, issue := range issues {
		if issue.IsEpic() {
			continue
		}
		if i, ok := index[issue.EpicKey()]; ok && issue.EpicKey() != "" {
			g.Epics[i].Children = append(g.Epics[i].Children, issue)
			continue
		}
		g.Orphans = append(g.Orphans, issue)
	}
	return g
}
