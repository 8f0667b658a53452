package board

import (
	"slices"
	"sort"

	"github.com/twiced-technology-gmbh/laneboard/internal/task"
)

// Group-by fields.
const (
	GroupColumn   = "column"
	GroupPriority = "priority"
	GroupAssignee = "assignee"
	GroupTag      = "tag"
)

// GroupedSummary holds tasks grouped by a field.
type GroupedSummary struct {
	Field  string         `json:"field"`
	Groups []GroupSummary `json:"groups"`
}

// GroupSummary is one group within a grouped view.
type GroupSummary struct {
	Key     string          `json:"key"`
	Columns []ColumnSummary `json:"columns"`
	Total   int             `json:"total"`
}

// GroupBy groups the board's tasks by field and returns per-column counts
// for each group. A task with several assignees or tags counts in each group.
func (b Board) GroupBy(field string) GroupedSummary {
	groups := make(map[string][]task.Task)
	for _, t := range b.Tasks() {
		for _, key := range extractGroupKeys(t, field) {
			groups[key] = append(groups[key], t)
		}
	}

	result := GroupedSummary{Field: field, Groups: make([]GroupSummary, 0, len(groups))}
	for _, key := range b.sortGroupKeys(groups, field) {
		groupTasks := groups[key]
		result.Groups = append(result.Groups, GroupSummary{
			Key:     key,
			Columns: b.columnCounts(groupTasks),
			Total:   len(groupTasks),
		})
	}
	return result
}

func extractGroupKeys(t task.Task, field string) []string {
	switch field {
	case GroupAssignee:
		if len(t.Assignees) == 0 {
			return []string{"(unassigned)"}
		}
		keys := make([]string, 0, len(t.Assignees))
		for _, u := range t.Assignees {
			keys = appendUnique(keys, u.Name)
		}
		return keys
	case GroupTag:
		if len(t.Tags) == 0 {
			return []string{"(untagged)"}
		}
		keys := make([]string, 0, len(t.Tags))
		for _, tg := range t.Tags {
			keys = appendUnique(keys, tg.Name)
		}
		return keys
	case GroupPriority:
		return []string{string(t.Priority)}
	case GroupColumn:
		return []string{t.Column}
	default:
		return []string{"(all)"}
	}
}

func appendUnique(keys []string, k string) []string {
	if slices.Contains(keys, k) {
		return keys
	}
	return append(keys, k)
}

func (b Board) sortGroupKeys(groups map[string][]task.Task, field string) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}

	switch field {
	case GroupColumn:
		sort.SliceStable(keys, func(i, j int) bool {
			return b.ColumnIndex(keys[i]) < b.ColumnIndex(keys[j])
		})
	case GroupPriority:
		sort.SliceStable(keys, func(i, j int) bool {
			return task.Priority(keys[i]).Rank() > task.Priority(keys[j]).Rank()
		})
	default:
		sort.Strings(keys)
	}
	return keys
}

func (b Board) columnCounts(tasks []task.Task) []ColumnSummary {
	counts := make(map[string]int)
	for _, t := range tasks {
		counts[t.Column]++
	}
	out := make([]ColumnSummary, 0, len(b.Columns))
	for _, c := range b.Columns {
		out = append(out, ColumnSummary{
			Column:   c.ID,
			Title:    c.Title,
			Count:    counts[c.ID],
			WIPLimit: c.WIPLimit,
		})
	}
	return out
}

// ValidGroupByFields returns the list of valid --group-by field names.
func ValidGroupByFields() []string {
	return []string{GroupColumn, GroupPriority, GroupAssignee, GroupTag}
}
