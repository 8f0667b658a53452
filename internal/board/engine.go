package board

import (
	"errors"
	"fmt"

	"github.com/twiced-technology-gmbh/laneboard/internal/task"
)

// maxIDAttempts bounds how often CreateTask re-draws a colliding identifier.
const maxIDAttempts = 32

// ErrIDExhausted is returned when the generator keeps producing live ids.
var ErrIDExhausted = errors.New("id generator produced only colliding ids")

// CreateTask appends a new task built from f to the end of column columnID
// and returns the new board with the task's id. An unknown column leaves the
// board unchanged and returns an empty id. f.Column is ignored.
func CreateTask(b Board, columnID string, f task.Fields, gen task.IDGenerator) (Board, string, error) {
	ci := b.ColumnIndex(columnID)
	if ci < 0 {
		return b.Clone(), "", nil
	}

	id, err := freshID(b, gen)
	if err != nil {
		return b.Clone(), "", err
	}

	t := task.Task{ID: id, Column: columnID}
	t.Apply(f)

	out := b.Clone()
	out.Columns[ci].Tasks = append(out.Columns[ci].Tasks, t)
	return out, id, nil
}

func freshID(b Board, gen task.IDGenerator) (string, error) {
	for range maxIDAttempts {
		id := gen.NewID()
		if id == "" {
			continue
		}
		if _, _, taken := b.FindTask(id); !taken {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w after %d attempts", ErrIDExhausted, maxIDAttempts)
}

// EditTask replaces the mutable fields of task taskID in place. When
// f.Column names another existing column the task moves to the end of it.
// An unknown task or an unknown target column leaves the board unchanged.
func EditTask(b Board, taskID string, f task.Fields) Board {
	ci, ri, ok := b.FindTask(taskID)
	if !ok {
		return b.Clone()
	}

	target := ci
	if f.Column != "" && f.Column != b.Columns[ci].ID {
		target = b.ColumnIndex(f.Column)
		if target < 0 {
			return b.Clone()
		}
	}

	out := b.Clone()
	t := out.Columns[ci].Tasks[ri]
	t.Apply(f)

	if target == ci {
		out.Columns[ci].Tasks[ri] = t
		return out
	}

	out.Columns[ci].Tasks = removeAt(out.Columns[ci].Tasks, ri)
	t.Column = out.Columns[target].ID
	out.Columns[target].Tasks = append(out.Columns[target].Tasks, t)
	return out
}

// DeleteTask removes task taskID. Deleting an unknown id is a no-op.
func DeleteTask(b Board, taskID string) Board {
	out := b.Clone()
	ci, ri, ok := out.FindTask(taskID)
	if !ok {
		return out
	}
	out.Columns[ci].Tasks = removeAt(out.Columns[ci].Tasks, ri)
	return out
}

// MoveTask takes the task at srcIdx of column srcCol and places it at
// dstIdx of column dstCol. Within one column dstIdx addresses the list after
// removal. dstIdx is clamped into range. An unknown column or an srcIdx
// outside the source column leaves the board unchanged.
func MoveTask(b Board, srcCol string, srcIdx int, dstCol string, dstIdx int) Board {
	si := b.ColumnIndex(srcCol)
	di := b.ColumnIndex(dstCol)
	if si < 0 || di < 0 {
		return b.Clone()
	}
	if srcIdx < 0 || srcIdx >= len(b.Columns[si].Tasks) {
		return b.Clone()
	}

	out := b.Clone()
	t := out.Columns[si].Tasks[srcIdx]
	out.Columns[si].Tasks = removeAt(out.Columns[si].Tasks, srcIdx)

	t.Column = out.Columns[di].ID
	out.Columns[di].Tasks = insertAt(out.Columns[di].Tasks, clamp(dstIdx, len(out.Columns[di].Tasks)), t)
	return out
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

func removeAt(tasks []task.Task, i int) []task.Task {
	out := make([]task.Task, 0, len(tasks)-1)
	out = append(out, tasks[:i]...)
	return append(out, tasks[i+1:]...)
}

func insertAt(tasks []task.Task, i int, t task.Task) []task.Task {
	out := make([]task.Task, 0, len(tasks)+1)
	out = append(out, tasks[:i]...)
	out = append(out, t)
	return append(out, tasks[i:]...)
}
