// Package store holds the current board snapshot and serializes every
// mutation through it.
package store

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/twiced-technology-gmbh/laneboard/internal/board"
	"github.com/twiced-technology-gmbh/laneboard/internal/clierr"
	"github.com/twiced-technology-gmbh/laneboard/internal/command"
	"github.com/twiced-technology-gmbh/laneboard/internal/task"
)

// Store is the single owner of the current board. Dispatch applies commands
// one at a time, each against the result of the previous one. Readers only
// ever receive copies.
type Store struct {
	mu      sync.Mutex
	current board.Board
	gen     task.IDGenerator
	backend Backend
	logger  log.FieldLogger
	logDir  string
	subs    broadcaster
}

// Option configures a Store.
type Option func(*Store)

// WithBackend makes every dispatch reload from and save to backend under its lock.
func WithBackend(b Backend) Option {
	return func(s *Store) { s.backend = b }
}

// WithLogger sets the logger for dispatch diagnostics.
func WithLogger(l log.FieldLogger) Option {
	return func(s *Store) { s.logger = l }
}

// WithActivityLog records changing commands in the activity log in dir.
func WithActivityLog(dir string) Option {
	return func(s *Store) { s.logDir = dir }
}

// New returns a store holding initial.
func New(initial board.Board, gen task.IDGenerator, opts ...Option) *Store {
	s := &Store{
		current: initial.Clone(),
		gen:     gen,
		logger:  log.StandardLogger(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Open loads the initial snapshot from backend.
func Open(backend Backend, gen task.IDGenerator, opts ...Option) (*Store, error) {
	b, err := backend.Load()
	if err != nil {
		return nil, err
	}
	return New(b, gen, append([]Option{WithBackend(backend)}, opts...)...), nil
}

// Snapshot returns a copy of the current board.
func (s *Store) Snapshot() board.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// Dispatch applies cmd to the current board and replaces it with the result.
// With a backend, the snapshot is reloaded first and the result saved
// before it replaces the in-memory board, so a failed save keeps the
// previous snapshot. An InvalidCommand error never changes state.
func (s *Store) Dispatch(ctx context.Context, cmd command.Command) (command.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.logger.WithField("command", commandType(cmd))

	reloaded := false
	if s.backend != nil {
		unlock, err := s.backend.Lock(ctx)
		if err != nil {
			return command.Result{}, fmt.Errorf("acquiring board lock: %w", err)
		}
		defer func() {
			if err := unlock(); err != nil {
				entry.WithError(err).Warn("releasing board lock")
			}
		}()

		fresh, err := s.backend.Load()
		if err != nil {
			entry.WithError(err).Error("reloading board")
			return command.Result{}, err
		}
		reloaded = !board.Equal(s.current, fresh)
		s.current = fresh
	}

	res, err := command.Run(s.current, cmd, s.gen)
	if err != nil {
		if clierr.HasCode(err, clierr.InvalidCommand) {
			entry.WithError(err).Warn("rejected command")
		} else {
			entry.WithError(err).Error("command failed")
		}
		return command.Result{}, err
	}

	entry = entry.WithFields(log.Fields{"changed": res.Changed, "task_id": res.TaskID})
	if !res.Changed {
		entry.Debug("command had no effect")
		if reloaded {
			s.subs.broadcast(s.current)
		}
		return res, nil
	}

	if s.backend != nil {
		if err := s.backend.Save(res.Board); err != nil {
			entry.WithError(err).Error("saving board")
			return command.Result{}, fmt.Errorf("saving board: %w", err)
		}
	}
	s.current = res.Board
	entry.Debug("command applied")

	if s.logDir != "" {
		if err := board.LogMutation(s.logDir, res.Action, res.TaskID, res.Detail); err != nil {
			entry.WithError(err).Warn("writing activity log")
		}
	}
	s.subs.broadcast(s.current)

	res.Board = s.current.Clone()
	return res, nil
}

// Reload replaces the current board with the backend's snapshot and
// notifies subscribers. Without a backend it is a no-op.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.backend == nil {
		return nil
	}
	b, err := s.backend.Load()
	if err != nil {
		return err
	}
	changed := !board.Equal(s.current, b)
	s.current = b
	if changed {
		s.subs.broadcast(s.current)
	}
	return nil
}

// Subscribe returns a channel that receives a copy of each new snapshot.
func (s *Store) Subscribe() <-chan board.Board {
	return s.subs.subscribe()
}

// Unsubscribe stops delivery to ch and closes it.
func (s *Store) Unsubscribe(ch <-chan board.Board) {
	s.subs.unsubscribe(ch)
}

func commandType(cmd command.Command) string {
	if cmd == nil {
		return "<nil>"
	}
	return cmd.CommandType()
}
