// Package board holds the board snapshot and the pure operations that
// transform it.
package board

import (
	"fmt"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/twiced-technology-gmbh/laneboard/internal/clierr"
	"github.com/twiced-technology-gmbh/laneboard/internal/task"
)

// Canonical column ids.
const (
	Todo       = "Todo"
	InProgress = "In Progress"
	Review     = "Review"
	Done       = "Done"
)

// Column is one lane of the board.
type Column struct {
	ID       string      `yaml:"id" json:"id"`
	Title    string      `yaml:"title" json:"title"`
	Color    string      `yaml:"color" json:"color"`
	WIPLimit int         `yaml:"wip_limit,omitempty" json:"wip_limit,omitempty"`
	Tasks    []task.Task `yaml:"tasks" json:"tasks"`
}

// Board is an ordered set of columns. A Board is a value; operations in
// this package never modify their input.
type Board struct {
	Columns []Column `yaml:"columns" json:"columns"`
}

// ColumnSpec describes a column before it holds any tasks.
type ColumnSpec struct {
	ID       string
	Title    string
	Color    string
	WIPLimit int
}

// DefaultColumns returns the canonical four-lane layout.
func DefaultColumns() []ColumnSpec {
	return []ColumnSpec{
		{ID: Todo, Title: "To Do", Color: "#f59e0b"},
		{ID: InProgress, Title: "In Progress", Color: "#3b82f6"},
		{ID: Review, Title: "Review", Color: "#f43f5e"},
		{ID: Done, Title: "Done", Color: "#10b981"},
	}
}

// New returns an empty board with the given columns in order.
func New(specs []ColumnSpec) Board {
	b := Board{Columns: make([]Column, 0, len(specs))}
	for _, s := range specs {
		b.Columns = append(b.Columns, Column{
			ID:       s.ID,
			Title:    s.Title,
			Color:    s.Color,
			WIPLimit: s.WIPLimit,
			Tasks:    []task.Task{},
		})
	}
	return b
}

// Clone returns a deep copy of b.
func (b Board) Clone() Board {
	out := Board{Columns: make([]Column, len(b.Columns))}
	for i, c := range b.Columns {
		tasks := make([]task.Task, len(c.Tasks))
		for j, t := range c.Tasks {
			tasks[j] = t.Clone()
		}
		c.Tasks = tasks
		out.Columns[i] = c
	}
	return out
}

// Equal reports whether a and b hold the same columns and tasks.
// Nil and empty slices compare equal.
func Equal(a, b Board) bool {
	return cmp.Equal(a, b, cmpopts.EquateEmpty())
}

// Diff returns a human-readable diff between a and b, empty when equal.
func Diff(a, b Board) string {
	return cmp.Diff(a, b, cmpopts.EquateEmpty())
}

// ColumnIndex returns the position of the column with id, or -1.
func (b Board) ColumnIndex(id string) int {
	for i, c := range b.Columns {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Column returns the column with id.
func (b Board) Column(id string) (Column, bool) {
	i := b.ColumnIndex(id)
	if i < 0 {
		return Column{}, false
	}
	return b.Columns[i], true
}

// FindTask locates a task by id and returns its column and row indices.
func (b Board) FindTask(id string) (col, row int, ok bool) {
	for ci, c := range b.Columns {
		for ri, t := range c.Tasks {
			if t.ID == id {
				return ci, ri, true
			}
		}
	}
	return -1, -1, false
}

// Task returns a copy of the task with id.
func (b Board) Task(id string) (task.Task, bool) {
	ci, ri, ok := b.FindTask(id)
	if !ok {
		return task.Task{}, false
	}
	return b.Columns[ci].Tasks[ri].Clone(), true
}

// TaskCount returns the number of tasks across all columns.
func (b Board) TaskCount() int {
	n := 0
	for _, c := range b.Columns {
		n += len(c.Tasks)
	}
	return n
}

// Tasks returns copies of every task in board order: column by column, top to bottom.
func (b Board) Tasks() []task.Task {
	out := make([]task.Task, 0, b.TaskCount())
	for _, c := range b.Columns {
		for _, t := range c.Tasks {
			out = append(out, t.Clone())
		}
	}
	return out
}

// ColumnIDs returns column ids in board order.
func (b Board) ColumnIDs() []string {
	ids := make([]string, len(b.Columns))
	for i, c := range b.Columns {
		ids[i] = c.ID
	}
	return ids
}

// ResolveColumn matches input against column ids, then titles, case-insensitively.
func (b Board) ResolveColumn(input string) (string, error) {
	for _, c := range b.Columns {
		if c.ID == input {
			return c.ID, nil
		}
	}
	for _, c := range b.Columns {
		if strings.EqualFold(c.ID, input) || strings.EqualFold(c.Title, input) {
			return c.ID, nil
		}
	}
	return "", clierr.Newf(clierr.ColumnNotFound, "column %q not found", input).
		WithDetails(map[string]any{
			"column":  input,
			"allowed": b.ColumnIDs(),
		})
}

// Validate checks the structural invariants of the board: unique column ids,
// unique task ids, and every task's column matching the lane that holds it.
func (b Board) Validate() error {
	columns := make(map[string]bool, len(b.Columns))
	for _, c := range b.Columns {
		if c.ID == "" {
			return invalidBoard("column with empty id")
		}
		if columns[c.ID] {
			return invalidBoard("duplicate column id %q", c.ID)
		}
		columns[c.ID] = true
	}

	tasks := make(map[string]string, b.TaskCount())
	for _, c := range b.Columns {
		for _, t := range c.Tasks {
			if t.ID == "" {
				return invalidBoard("task with empty id in column %q", c.ID)
			}
			if prev, dup := tasks[t.ID]; dup {
				return invalidBoard("task id %q appears in %q and %q", t.ID, prev, c.ID)
			}
			tasks[t.ID] = c.ID
			if t.Column != c.ID {
				return invalidBoard("task %q is held by %q but records column %q", t.ID, c.ID, t.Column)
			}
		}
	}
	return nil
}

func invalidBoard(format string, args ...any) *clierr.Error {
	return clierr.New(clierr.InvalidBoard, fmt.Sprintf(format, args...))
}
