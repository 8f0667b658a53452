package board

import "github.com/twiced-technology-gmbh/laneboard/internal/task"

// ColumnSummary holds metrics for a single column.
type ColumnSummary struct {
	Column   string `json:"column"`
	Title    string `json:"title"`
	Count    int    `json:"count"`
	WIPLimit int    `json:"wip_limit,omitempty"`
	Overdue  int    `json:"overdue"`
}

// OverLimit reports whether the column holds more tasks than its WIP limit allows.
func (s ColumnSummary) OverLimit() bool {
	return s.WIPLimit > 0 && s.Count > s.WIPLimit
}

// PriorityCount holds a count for a priority level.
type PriorityCount struct {
	Priority task.Priority `json:"priority"`
	Count    int           `json:"count"`
}

// Overview is the aggregate board overview.
type Overview struct {
	BoardName  string          `json:"board_name"`
	TotalTasks int             `json:"total_tasks"`
	Columns    []ColumnSummary `json:"columns"`
	Priorities []PriorityCount `json:"priorities"`
}

// Summary computes per-column and per-priority counts. Tasks in the last
// column are never counted as overdue.
func (b Board) Summary(name string, today task.Date) Overview {
	last := b.LastColumn()
	prio := make(map[task.Priority]int, len(task.Priorities))

	cols := make([]ColumnSummary, 0, len(b.Columns))
	for _, c := range b.Columns {
		cs := ColumnSummary{Column: c.ID, Title: c.Title, Count: len(c.Tasks), WIPLimit: c.WIPLimit}
		for _, t := range c.Tasks {
			if IsOverdue(t, today, last) {
				cs.Overdue++
			}
			prio[t.Priority]++
		}
		cols = append(cols, cs)
	}

	// Highest priority first, matching list --sort priority.
	priorities := make([]PriorityCount, 0, len(task.Priorities))
	for i := len(task.Priorities) - 1; i >= 0; i-- {
		p := task.Priorities[i]
		priorities = append(priorities, PriorityCount{Priority: p, Count: prio[p]})
	}

	return Overview{
		BoardName:  name,
		TotalTasks: b.TaskCount(),
		Columns:    cols,
		Priorities: priorities,
	}
}
