package board

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/twiced-technology-gmbh/laneboard/internal/clierr"
)

const fileMode = 0o600

// Load reads a board snapshot from path and checks its invariants.
func Load(path string) (Board, error) {
	data, err := os.ReadFile(path) //nolint:gosec // board path from trusted config
	if errors.Is(err, os.ErrNotExist) {
		return Board{}, clierr.Newf(clierr.BoardNotFound, "board file %s not found", path).
			WithDetails(map[string]any{"path": path})
	}
	if err != nil {
		return Board{}, fmt.Errorf("reading board file: %w", err)
	}

	var b Board
	if err := yaml.Unmarshal(data, &b); err != nil {
		return Board{}, clierr.Newf(clierr.InvalidBoard, "parsing %s: %v", path, err)
	}
	if err := b.Validate(); err != nil {
		return Board{}, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// Save writes b to path. The file is replaced atomically so readers never
// observe a torn snapshot.
func Save(path string, b Board) error {
	data, err := yaml.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshaling board: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".board-*.yml")
	if err != nil {
		return fmt.Errorf("creating temp board file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing board file: %w", err)
	}
	if err := tmp.Chmod(fileMode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("setting board file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing board file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing board file: %w", err)
	}
	return nil
}

// Reconcile lays b out with the given columns in order, keeping each
// column's tasks and refreshing its title, color and WIP limit. New columns
// start empty. A column that still holds tasks cannot be dropped.
func Reconcile(b Board, specs []ColumnSpec) (Board, error) {
	out := New(specs)
	for i := range out.Columns {
		if src, ok := b.Column(out.Columns[i].ID); ok {
			out.Columns[i].Tasks = append(out.Columns[i].Tasks, src.Tasks...)
		}
	}
	for _, c := range b.Columns {
		if out.ColumnIndex(c.ID) < 0 && len(c.Tasks) > 0 {
			return Board{}, clierr.Newf(clierr.InvalidBoard,
				"column %q holds %d task(s) but is not configured", c.ID, len(c.Tasks)).
				WithDetails(map[string]any{"column": c.ID, "tasks": len(c.Tasks)})
		}
	}
	return out.Clone(), nil
}
