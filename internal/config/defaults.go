// Package config handles board configuration.
package config

import (
	"github.com/twiced-technology-gmbh/laneboard/internal/board"
	"github.com/twiced-technology-gmbh/laneboard/internal/task"
)

const (
	// DefaultDir is the default board directory name.
	DefaultDir = "laneboard"
	// DefaultBoardFile is the default snapshot file within the board directory.
	DefaultBoardFile = "board.yml"
	// DefaultColumn is the default column for new tasks.
	DefaultColumn = board.Todo
	// DefaultPriority is the default priority for new tasks.
	DefaultPriority = task.Medium
	// DefaultIDScheme is the default task id scheme.
	DefaultIDScheme = task.SchemeToken
	// DefaultTitleLines is the default number of title lines in TUI cards.
	DefaultTitleLines = 2

	// ConfigFileName is the name of the config file within the board directory.
	ConfigFileName = "config.yml"

	// CurrentVersion is the current config schema version.
	CurrentVersion = 3
)

// DefaultColumns returns the canonical column layout as config entries.
func DefaultColumns() []ColumnConfig {
	specs := board.DefaultColumns()
	out := make([]ColumnConfig, len(specs))
	for i, s := range specs {
		out[i] = ColumnConfig{ID: s.ID, Title: s.Title, Color: s.Color, WIPLimit: s.WIPLimit}
	}
	return out
}

// legacyColumnIDs maps the historical column spellings onto canonical ids.
var legacyColumnIDs = map[string]string{
	"todo":        board.Todo,
	"to do":       board.Todo,
	"to-do":       board.Todo,
	"in-progress": board.InProgress,
	"inprogress":  board.InProgress,
	"in progress": board.InProgress,
	"review":      board.Review,
	"done":        board.Done,
}
