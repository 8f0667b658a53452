package board

import (
	"slices"
	"strings"

	"github.com/twiced-technology-gmbh/laneboard/internal/task"
)

// FilterOptions defines which tasks to include.
type FilterOptions struct {
	Columns    []string
	Priorities []task.Priority
	Assignee   string    // id or name
	Tag        string    // id or name
	Search     string    // case-insensitive substring match across title, description, and tags
	OverdueOn  task.Date // when set, only tasks due before this date outside the last column
}

// Filter returns tasks matching all specified criteria (AND logic).
// lastColumn is the board's final lane, whose tasks are never overdue.
func Filter(tasks []task.Task, opts FilterOptions, lastColumn string) []task.Task {
	var result []task.Task
	for _, t := range tasks {
		if matchesFilter(t, opts, lastColumn) {
			result = append(result, t)
		}
	}
	return result
}

func matchesFilter(t task.Task, opts FilterOptions, lastColumn string) bool {
	if len(opts.Columns) > 0 && !slices.Contains(opts.Columns, t.Column) {
		return false
	}
	if len(opts.Priorities) > 0 && !slices.Contains(opts.Priorities, t.Priority) {
		return false
	}
	if opts.Assignee != "" && !t.HasAssignee(opts.Assignee) {
		return false
	}
	if opts.Tag != "" && !t.HasTag(opts.Tag) {
		return false
	}
	if opts.Search != "" && !matchesSearch(t, opts.Search) {
		return false
	}
	if !opts.OverdueOn.IsZero() && !IsOverdue(t, opts.OverdueOn, lastColumn) {
		return false
	}
	return true
}

// matchesSearch performs case-insensitive substring matching across title, description, and tags.
func matchesSearch(t task.Task, query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(t.Title), q) {
		return true
	}
	if strings.Contains(strings.ToLower(t.Description), q) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag.Name), q) {
			return true
		}
	}
	return false
}

// IsOverdue reports whether t is due before today and not yet in the final lane.
func IsOverdue(t task.Task, today task.Date, lastColumn string) bool {
	return t.Column != lastColumn && t.DueDate.Before(today)
}

// LastColumn returns the id of the final lane, or "" for a board without columns.
func (b Board) LastColumn() string {
	if len(b.Columns) == 0 {
		return ""
	}
	return b.Columns[len(b.Columns)-1].ID
}
