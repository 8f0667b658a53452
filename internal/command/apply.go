package command

import (
	"fmt"
	"strings"

	"github.com/twiced-technology-gmbh/laneboard/internal/board"
	"github.com/twiced-technology-gmbh/laneboard/internal/clierr"
	"github.com/twiced-technology-gmbh/laneboard/internal/task"
)

// Validate checks the shape of cmd without looking at any board.
// Every failure is an InvalidCommand error.
func Validate(cmd Command) error {
	switch c := cmd.(type) {
	case CreateTask:
		if strings.TrimSpace(c.ColumnID) == "" {
			return invalid("CreateTask requires column_id")
		}
		return task.ValidateFields(c.Fields)
	case EditTask:
		if c.TaskID == "" {
			return invalid("EditTask requires task_id")
		}
		return task.ValidateFields(c.Fields)
	case DeleteTask:
		if c.TaskID == "" {
			return invalid("DeleteTask requires task_id")
		}
		return nil
	case MoveTask:
		if c.SourceColumnID == "" || c.DestColumnID == "" {
			return invalid("MoveTask requires source_column_id and dest_column_id")
		}
		return nil
	case nil:
		return clierr.New(clierr.InvalidCommand, ErrNilCommand.Error())
	default:
		return invalid("unsupported command %T", cmd)
	}
}

// Result is the outcome of running one command.
type Result struct {
	Board   board.Board `json:"-"`
	Changed bool        `json:"changed"`
	TaskID  string      `json:"task_id,omitempty"`
	Action  string      `json:"action"`
	Detail  string      `json:"detail,omitempty"`
}

// Run validates cmd and applies it to b. On error the returned Result is
// zero and b is untouched. References to unknown tasks, unknown columns, or
// out-of-range indices are not errors; they yield an unchanged board with
// Changed false.
func Run(b board.Board, cmd Command, gen task.IDGenerator) (Result, error) {
	if err := Validate(cmd); err != nil {
		return Result{}, err
	}

	var res Result
	switch c := cmd.(type) {
	case CreateTask:
		next, id, err := board.CreateTask(b, c.ColumnID, c.Fields, gen)
		if err != nil {
			return Result{}, fmt.Errorf("creating task: %w", err)
		}
		res = Result{Board: next, TaskID: id, Action: "create", Detail: "in " + c.ColumnID}
	case EditTask:
		res = Result{Board: board.EditTask(b, c.TaskID, c.Fields), TaskID: c.TaskID, Action: "edit"}
		if ci, _, ok := b.FindTask(c.TaskID); ok && c.Fields.Column != "" && c.Fields.Column != b.Columns[ci].ID {
			res.Detail = b.Columns[ci].ID + " -> " + c.Fields.Column
		}
	case DeleteTask:
		res = Result{Board: board.DeleteTask(b, c.TaskID), TaskID: c.TaskID, Action: "delete"}
		if t, ok := b.Task(c.TaskID); ok {
			res.Detail = t.Title
		}
	case MoveTask:
		res = Result{
			Board:  board.MoveTask(b, c.SourceColumnID, c.SourceIndex, c.DestColumnID, c.DestIndex),
			Action: "move",
			Detail: fmt.Sprintf("%s[%d] -> %s[%d]", c.SourceColumnID, c.SourceIndex, c.DestColumnID, c.DestIndex),
		}
		if col, ok := b.Column(c.SourceColumnID); ok && c.SourceIndex >= 0 && c.SourceIndex < len(col.Tasks) {
			res.TaskID = col.Tasks[c.SourceIndex].ID
		}
	}

	res.Changed = !board.Equal(b, res.Board)
	return res, nil
}

// Apply is Run without the bookkeeping: it returns the new board or an
// InvalidCommand error, never a partially applied board.
func Apply(b board.Board, cmd Command, gen task.IDGenerator) (board.Board, error) {
	res, err := Run(b, cmd, gen)
	if err != nil {
		return board.Board{}, err
	}
	return res.Board, nil
}
