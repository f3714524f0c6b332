package normalize

import "github.com/goblinsan/gh-project-gantt/pkg/types"

// GroupBySubject partitions tasks into groups keyed by exact, case-sensitive
// subject match. Groups appear in first-occurrence order of their subject and
// tasks keep their input order, so the same stream always yields the same
// diagram.
func GroupBySubject(tasks []types.Task) []types.Group {
	var groups []types.Group
	index := make(map[string]int, len(tasks))
	for _, t := range tasks {
		i, ok := index[t.Subject]
		if !ok {
			i = len(groups)
			index[t.Subject] = i
			groups = append(groups, types.Group{Subject: t.Subject})
		}
		groups[i].Tasks = append(groups[i].Tasks, t)
	}
	return groups
}
