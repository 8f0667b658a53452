package store

import (
	"context"
	"path/filepath"

	"github.com/twiced-technology-gmbh/laneboard/internal/board"
	"github.com/twiced-technology-gmbh/laneboard/internal/filelock"
)

// Backend persists board snapshots. Lock guards a load-apply-save cycle
// against other processes sharing the same backend.
type Backend interface {
	Load() (board.Board, error)
	Save(b board.Board) error
	Lock(ctx context.Context) (unlock func() error, err error)
}

// LockFileName is the advisory lock file kept next to the board snapshot.
const LockFileName = ".lock"

// FileBackend stores the board as a YAML snapshot file.
type FileBackend struct {
	Path string
	// Columns, when set, is the configured layout every loaded snapshot is
	// reconciled against.
	Columns []board.ColumnSpec
}

// NewFileBackend returns a backend for the snapshot at path.
func NewFileBackend(path string, columns []board.ColumnSpec) *FileBackend {
	return &FileBackend{Path: path, Columns: columns}
}

// Load implements Backend.
func (f *FileBackend) Load() (board.Board, error) {
	b, err := board.Load(f.Path)
	if err != nil {
		return board.Board{}, err
	}
	if len(f.Columns) == 0 {
		return b, nil
	}
	return board.Reconcile(b, f.Columns)
}

// Save implements Backend.
func (f *FileBackend) Save(b board.Board) error {
	return board.Save(f.Path, b)
}

// Lock implements Backend.
func (f *FileBackend) Lock(ctx context.Context) (func() error, error) {
	return filelock.Lock(ctx, filepath.Join(filepath.Dir(f.Path), LockFileName))
}
