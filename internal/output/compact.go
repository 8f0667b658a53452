package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/twiced-technology-gmbh/laneboard/internal/board"
	"github.com/twiced-technology-gmbh/laneboard/internal/task"
)

// TaskCompact renders a list of tasks in one-line-per-record compact format.
func TaskCompact(w io.Writer, tasks []task.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	for _, t := range tasks {
		fmt.Fprintln(w, formatTaskLine(t))
	}
}

// BoardCompact renders each column as a heading followed by its cards.
func BoardCompact(w io.Writer, b board.Board) {
	for _, c := range b.Columns {
		line := c.ID + " (" + strconv.Itoa(len(c.Tasks))
		if c.WIPLimit > 0 {
			line += "/" + strconv.Itoa(c.WIPLimit)
		}
		fmt.Fprintln(w, line+")")
		for i, t := range c.Tasks {
			fmt.Fprintf(w, "  %d %s\n", i, formatTaskLine(t))
		}
	}
}

// TaskDetailCompact renders a single task with detail in compact format.
func TaskDetailCompact(w io.Writer, t task.Task, position int) {
	fmt.Fprintln(w, formatTaskLine(t)+" pos:"+strconv.Itoa(position))
	if t.Description != "" {
		for _, line := range strings.Split(t.Description, "\n") {
			fmt.Fprintln(w, "  "+line)
		}
	}
}

// OverviewCompact renders a board summary in compact format.
func OverviewCompact(w io.Writer, s board.Overview) {
	fmt.Fprintf(w, "%s (%d tasks)\n", s.BoardName, s.TotalTasks)

	for _, cs := range s.Columns {
		line := "  " + cs.Column + ": " + strconv.Itoa(cs.Count)
		if cs.WIPLimit > 0 {
			line += "/" + strconv.Itoa(cs.WIPLimit)
		}
		if cs.Overdue > 0 {
			line += " (" + strconv.Itoa(cs.Overdue) + " overdue)"
		}
		fmt.Fprintln(w, line)
	}

	if len(s.Priorities) > 0 {
		parts := make([]string, 0, len(s.Priorities))
		for _, pc := range s.Priorities {
			parts = append(parts, string(pc.Priority)+"="+strconv.Itoa(pc.Count))
		}
		fmt.Fprintln(w, "Priority: "+strings.Join(parts, " "))
	}
}

// GroupedCompact renders a grouped summary as one line per group.
func GroupedCompact(w io.Writer, gs board.GroupedSummary) {
	for _, g := range gs.Groups {
		parts := make([]string, 0, len(g.Columns))
		for _, cs := range g.Columns {
			if cs.Count > 0 {
				parts = append(parts, cs.Column+"="+strconv.Itoa(cs.Count))
			}
		}
		fmt.Fprintf(w, "%s (%d): %s\n", g.Key, g.Total, strings.Join(parts, " "))
	}
}

// formatTaskLine builds the one-line representation of a task.
func formatTaskLine(t task.Task) string {
	line := t.ID + " [" + t.Column + "/" + string(t.Priority) + "] " + t.Title

	for _, u := range t.Assignees {
		line += " @" + u.Name
	}
	if len(t.Tags) > 0 {
		line += " (" + tagNames(t.Tags) + ")"
	}
	if !t.DueDate.IsZero() {
		line += " due:" + t.DueDate.String()
	}

	return line
}
