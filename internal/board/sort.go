package board

import (
	"slices"
	"sort"
	"strings"

	"github.com/twiced-technology-gmbh/laneboard/internal/task"
)

// Sort fields accepted by Sort.
const (
	SortBoard    = "board"
	SortPriority = "priority"
	SortDue      = "due"
	SortTitle    = "title"
)

// ValidSortFields returns the list of valid --sort field names.
func ValidSortFields() []string {
	return []string{SortBoard, SortPriority, SortDue, SortTitle}
}

// Sort orders tasks by the given field. Board order is the order tasks
// arrive in, so SortBoard only reverses when asked. Priority sorts highest first.
func Sort(tasks []task.Task, field string, reverse bool) {
	switch field {
	case SortPriority, SortDue, SortTitle:
	default:
		if reverse {
			slices.Reverse(tasks)
		}
		return
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		if reverse {
			return compareTasks(tasks[j], tasks[i], field)
		}
		return compareTasks(tasks[i], tasks[j], field)
	})
}

func compareTasks(a, b task.Task, field string) bool {
	switch field {
	case SortPriority:
		return a.Priority.Rank() > b.Priority.Rank()
	case SortDue:
		return compareDue(a, b)
	case SortTitle:
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	default:
		return false
	}
}

func compareDue(a, b task.Task) bool {
	if a.DueDate.IsZero() {
		return false // unset sorts last
	}
	if b.DueDate.IsZero() {
		return true
	}
	return a.DueDate.Before(b.DueDate)
}
