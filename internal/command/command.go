// Package command defines the closed set of board mutations and their
// JSON wire format. Commands are plain data; Run applies one to a board.
package command

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/twiced-technology-gmbh/laneboard/internal/clierr"
	"github.com/twiced-technology-gmbh/laneboard/internal/task"
)

// Command type names used as the "type" discriminator.
const (
	TypeCreateTask = "CreateTask"
	TypeEditTask   = "EditTask"
	TypeDeleteTask = "DeleteTask"
	TypeMoveTask   = "MoveTask"
)

// Command is a mutation intent for a board. Tagged union with four variants.
type Command interface {
	CommandType() string
	commandSeal()
}

// CreateTask appends a new task to the end of a column.
type CreateTask struct {
	ColumnID string      `json:"column_id"`
	Fields   task.Fields `json:"fields"`
}

func (c CreateTask) CommandType() string { return TypeCreateTask }
func (c CreateTask) commandSeal()        {}

// EditTask replaces a task's fields, moving it when Fields.Column names another column.
type EditTask struct {
	TaskID string      `json:"task_id"`
	Fields task.Fields `json:"fields"`
}

func (c EditTask) CommandType() string { return TypeEditTask }
func (c EditTask) commandSeal()        {}

// DeleteTask removes a task.
type DeleteTask struct {
	TaskID string `json:"task_id"`
}

func (c DeleteTask) CommandType() string { return TypeDeleteTask }
func (c DeleteTask) commandSeal()        {}

// MoveTask is the drag-and-drop primitive.
type MoveTask struct {
	SourceColumnID string `json:"source_column_id"`
	SourceIndex    int    `json:"source_index"`
	DestColumnID   string `json:"dest_column_id"`
	DestIndex      int    `json:"dest_index"`
}

func (c MoveTask) CommandType() string { return TypeMoveTask }
func (c MoveTask) commandSeal()        {}

// moveTaskJSON is the wire format for MoveTask. Indices are pointers so an
// absent index is distinguishable from zero.
type moveTaskJSON struct {
	SourceColumnID string `json:"source_column_id"`
	SourceIndex    *int   `json:"source_index"`
	DestColumnID   string `json:"dest_column_id"`
	DestIndex      *int   `json:"dest_index"`
}

// ErrNilCommand is returned when a nil Command is marshaled or applied.
var ErrNilCommand = errors.New("nil command")

// MarshalCommand serializes a Command with a "type" discriminator field.
func MarshalCommand(c Command) ([]byte, error) {
	if c == nil {
		return nil, ErrNilCommand
	}
	return marshalTagged(c.CommandType(), c)
}

// UnmarshalCommand deserializes a Command from JSON with a "type" discriminator.
// Malformed input, unknown types, and absent move indices are InvalidCommand errors.
func UnmarshalCommand(data []byte) (Command, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, invalid("decoding command: %v", err)
	}

	var (
		c   Command
		err error
	)
	switch envelope.Type {
	case TypeCreateTask:
		var v CreateTask
		err = json.Unmarshal(data, &v)
		c = v
	case TypeEditTask:
		var v EditTask
		err = json.Unmarshal(data, &v)
		c = v
	case TypeDeleteTask:
		var v DeleteTask
		err = json.Unmarshal(data, &v)
		c = v
	case TypeMoveTask:
		c, err = unmarshalMove(data)
	case "":
		return nil, invalid("command has no type")
	default:
		return nil, invalid("unknown command type %q", envelope.Type).
			WithDetails(map[string]any{"type": envelope.Type})
	}
	if err != nil {
		var ce *clierr.Error
		if errors.As(err, &ce) {
			return nil, ce
		}
		return nil, invalid("decoding %s: %v", envelope.Type, err)
	}
	return c, nil
}

func unmarshalMove(data []byte) (MoveTask, error) {
	var j moveTaskJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return MoveTask{}, err
	}
	if j.SourceIndex == nil {
		return MoveTask{}, invalid("MoveTask requires source_index")
	}
	if j.DestIndex == nil {
		return MoveTask{}, invalid("MoveTask requires dest_index")
	}
	return MoveTask{
		SourceColumnID: j.SourceColumnID,
		SourceIndex:    *j.SourceIndex,
		DestColumnID:   j.DestColumnID,
		DestIndex:      *j.DestIndex,
	}, nil
}

// marshalTagged marshals a struct with an injected "type" field.
func marshalTagged(typeName string, v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	typeJSON, _ := json.Marshal(typeName)
	m["type"] = typeJSON
	return json.Marshal(m)
}

func invalid(format string, args ...any) *clierr.Error {
	return clierr.New(clierr.InvalidCommand, fmt.Sprintf(format, args...))
}
