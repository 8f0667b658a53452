// Package task defines the task record held in board columns.
package task

import "slices"

// Priority is the urgency of a task.
type Priority string

// Priority values, lowest first.
const (
	Low    Priority = "Low"
	Medium Priority = "Medium"
	High   Priority = "High"
)

// Priorities lists every priority in ascending order.
var Priorities = []Priority{Low, Medium, High}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	return slices.Contains(Priorities, p)
}

// Rank returns the position of p in Priorities, or -1.
func (p Priority) Rank() int {
	return slices.Index(Priorities, p)
}

// User is a snapshot of a person assigned to a task. The board stores copies;
// it does not manage identities.
type User struct {
	ID     string `yaml:"id" json:"id"`
	Name   string `yaml:"name" json:"name"`
	Avatar string `yaml:"avatar,omitempty" json:"avatar,omitempty"`
}

// Tag labels a task. Tags are owned by the task that carries them.
type Tag struct {
	ID    string `yaml:"id" json:"id"`
	Name  string `yaml:"name" json:"name"`
	Color string `yaml:"color" json:"color"`
}

// Task is one unit of work on the board.
type Task struct {
	ID          string   `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Priority    Priority `yaml:"priority" json:"priority"`
	DueDate     Date     `yaml:"due_date" json:"due_date"`
	Assignees   []User   `yaml:"assignees" json:"assignees"`
	Tags        []Tag    `yaml:"tags" json:"tags"`
	Column      string   `yaml:"column" json:"column"`
}

// Fields holds every mutable field of a task. Column is the destination lane;
// on create it is ignored in favor of the command's column.
type Fields struct {
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Priority    Priority `yaml:"priority" json:"priority"`
	DueDate     Date     `yaml:"due_date" json:"due_date"`
	Assignees   []User   `yaml:"assignees" json:"assignees"`
	Tags        []Tag    `yaml:"tags" json:"tags"`
	Column      string   `yaml:"column,omitempty" json:"column,omitempty"`
}

// Fields returns the task's mutable fields as a detached copy.
func (t Task) Fields() Fields {
	return Fields{
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
		Assignees:   cloneUsers(t.Assignees),
		Tags:        cloneTags(t.Tags),
		Column:      t.Column,
	}
}

// Apply overwrites every mutable field except Column with f.
// The slices are copied so t never aliases f.
func (t *Task) Apply(f Fields) {
	t.Title = f.Title
	t.Description = f.Description
	t.Priority = f.Priority
	t.DueDate = f.DueDate
	t.Assignees = cloneUsers(f.Assignees)
	t.Tags = cloneTags(f.Tags)
}

// Clone returns a deep copy of t.
func (t Task) Clone() Task {
	t.Assignees = cloneUsers(t.Assignees)
	t.Tags = cloneTags(t.Tags)
	return t
}

// HasAssignee reports whether a user with the given id or name is assigned.
func (t Task) HasAssignee(idOrName string) bool {
	for _, u := range t.Assignees {
		if u.ID == idOrName || u.Name == idOrName {
			return true
		}
	}
	return false
}

// HasTag reports whether a tag with the given id or name is attached.
func (t Task) HasTag(idOrName string) bool {
	for _, tg := range t.Tags {
		if tg.ID == idOrName || tg.Name == idOrName {
			return true
		}
	}
	return false
}

func cloneUsers(in []User) []User {
	if in == nil {
		return nil
	}
	return append(make([]User, 0, len(in)), in...)
}

func cloneTags(in []Tag) []Tag {
	if in == nil {
		return nil
	}
	return append(make([]Tag, 0, len(in)), in...)
}
