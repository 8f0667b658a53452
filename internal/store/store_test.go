package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/twiced-technology-gmbh/laneboard/internal/board"
	"github.com/twiced-technology-gmbh/laneboard/internal/clierr"
	"github.com/twiced-technology-gmbh/laneboard/internal/command"
	"github.com/twiced-technology-gmbh/laneboard/internal/store"
	"github.com/twiced-technology-gmbh/laneboard/internal/task"
)

func newLogger() (*log.Logger, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.DebugLevel)
	return logger, hook
}

func create(title string) command.Command {
	return command.CreateTask{ColumnID: board.Todo, Fields: task.Fields{Title: title, Priority: task.Low}}
}

func TestDispatchAppliesInOrder(t *testing.T) {
	logger, _ := newLogger()
	s := store.New(board.New(board.DefaultColumns()), &task.SequenceGenerator{}, store.WithLogger(logger))
	ctx := context.Background()

	for _, title := range []string{"a", "b", "c"} {
		if _, err := s.Dispatch(ctx, create(title)); err != nil {
			t.Fatal(err)
		}
	}
	res, err := s.Dispatch(ctx, command.MoveTask{SourceColumnID: board.Todo, SourceIndex: 0, DestColumnID: board.Done, DestIndex: 0})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Changed || res.TaskID != "t1" {
		t.Errorf("move result = %+v", res)
	}

	snap := s.Snapshot()
	todo, _ := snap.Column(board.Todo)
	done, _ := snap.Column(board.Done)
	if len(todo.Tasks) != 2 || todo.Tasks[0].Title != "b" || len(done.Tasks) != 1 || done.Tasks[0].Title != "a" {
		t.Errorf("unexpected board: todo=%v done=%v", todo.Tasks, done.Tasks)
	}
}

func TestConcurrentDispatchConservesTasks(t *testing.T) {
	s := store.New(board.New(board.DefaultColumns()), &task.SequenceGenerator{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Dispatch(ctx, create("t")); err != nil {
				t.Error(err)
			}
			_, _ = s.Dispatch(ctx, command.MoveTask{
				SourceColumnID: board.Todo, SourceIndex: 0,
				DestColumnID: board.DefaultColumns()[i%4].ID, DestIndex: i,
			})
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	if err := snap.Validate(); err != nil {
		t.Fatal(err)
	}
	if snap.TaskCount() != 50 {
		t.Errorf("TaskCount = %d, want 50", snap.TaskCount())
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	s := store.New(board.Sample(), &task.SequenceGenerator{})
	snap := s.Snapshot()
	snap.Columns[0].Tasks[0].Title = "mutated"

	again := s.Snapshot()
	if again.Columns[0].Tasks[0].Title == "mutated" {
		t.Error("snapshot shares memory with store")
	}
}

func TestInvalidCommandIsLoggedAndIgnored(t *testing.T) {
	logger, hook := newLogger()
	s := store.New(board.Sample(), &task.SequenceGenerator{}, store.WithLogger(logger))
	before := s.Snapshot()

	_, err := s.Dispatch(context.Background(), command.CreateTask{ColumnID: board.Todo})
	if !clierr.HasCode(err, clierr.InvalidCommand) {
		t.Fatalf("err = %v, want INVALID_COMMAND", err)
	}
	if !board.Equal(before, s.Snapshot()) {
		t.Error("state changed after invalid command")
	}
	entry := hook.LastEntry()
	if entry == nil || entry.Level != log.WarnLevel || entry.Data["command"] != command.TypeCreateTask {
		t.Errorf("unexpected log entry: %+v", entry)
	}
}

func TestNoOpCommandIsNotBroadcast(t *testing.T) {
	s := store.New(board.Sample(), &task.SequenceGenerator{})
	ch := s.Subscribe()
	defer s.Unsubscribe(ch)

	res, err := s.Dispatch(context.Background(), command.DeleteTask{TaskID: "missing"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Changed {
		t.Error("expected no change")
	}
	select {
	case <-ch:
		t.Error("no-op command produced a snapshot")
	default:
	}
}

func TestSubscribeReceivesSnapshots(t *testing.T) {
	s := store.New(board.Sample(), &task.SequenceGenerator{})
	ch := s.Subscribe()

	if _, err := s.Dispatch(context.Background(), command.DeleteTask{TaskID: "1"}); err != nil {
		t.Fatal(err)
	}
	snap := <-ch
	if _, ok := snap.Task("1"); ok {
		t.Error("broadcast snapshot still holds the deleted task")
	}

	s.Unsubscribe(ch)
	if _, open := <-ch; open {
		t.Error("channel not closed after Unsubscribe")
	}
}

type failingBackend struct {
	b       board.Board
	saveErr error
	saves   int
}

func (f *failingBackend) Load() (board.Board, error) { return f.b.Clone(), nil }
func (f *failingBackend) Save(b board.Board) error {
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.b = b.Clone()
	return nil
}
func (f *failingBackend) Lock(context.Context) (func() error, error) {
	return func() error { return nil }, nil
}

func TestSaveFailureKeepsSnapshot(t *testing.T) {
	logger, hook := newLogger()
	be := &failingBackend{b: board.Sample(), saveErr: errors.New("disk full")}
	s, err := store.Open(be, &task.SequenceGenerator{}, store.WithLogger(logger))
	if err != nil {
		t.Fatal(err)
	}

	_, err = s.Dispatch(context.Background(), command.DeleteTask{TaskID: "1"})
	if err == nil {
		t.Fatal("expected save error")
	}
	if _, ok := s.Snapshot().Task("1"); !ok {
		t.Error("in-memory snapshot replaced despite failed save")
	}
	if hook.LastEntry().Level != log.ErrorLevel {
		t.Errorf("last log level = %v, want error", hook.LastEntry().Level)
	}
}

func TestFileBackendPersistsAndReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.yml")
	if err := board.Save(path, board.Sample()); err != nil {
		t.Fatal(err)
	}
	be := store.NewFileBackend(path, board.DefaultColumns())
	ctx := context.Background()

	s1, err := store.Open(be, &task.SequenceGenerator{Prefix: "a"}, store.WithActivityLog(dir))
	if err != nil {
		t.Fatal(err)
	}
	s2, err := store.Open(be, &task.SequenceGenerator{Prefix: "b"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s1.Dispatch(ctx, create("from s1")); err != nil {
		t.Fatal(err)
	}
	// s2 reloads under the lock, so it sees s1's task before applying its own.
	if _, err := s2.Dispatch(ctx, create("from s2")); err != nil {
		t.Fatal(err)
	}

	onDisk, err := board.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if onDisk.TaskCount() != 7 {
		t.Errorf("TaskCount on disk = %d, want 7", onDisk.TaskCount())
	}

	if err := s1.Reload(); err != nil {
		t.Fatal(err)
	}
	if !board.Equal(onDisk, s1.Snapshot()) {
		t.Errorf("s1 not reloaded:\n%s", board.Diff(onDisk, s1.Snapshot()))
	}

	entries, err := board.ReadLog(dir, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Action != "create" || entries[0].TaskID != "a1" {
		t.Errorf("activity log = %+v", entries)
	}
}

func TestNoOpDispatchBroadcastsExternalChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.yml")
	if err := board.Save(path, board.Sample()); err != nil {
		t.Fatal(err)
	}
	s, err := store.Open(store.NewFileBackend(path, board.DefaultColumns()), &task.SequenceGenerator{})
	if err != nil {
		t.Fatal(err)
	}
	ch := s.Subscribe()
	defer s.Unsubscribe(ch)

	// Another process deletes task 5 behind the store's back.
	external := board.DeleteTask(board.Sample(), "5")
	if err := board.Save(path, external); err != nil {
		t.Fatal(err)
	}

	res, err := s.Dispatch(context.Background(), command.DeleteTask{TaskID: "missing"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Changed {
		t.Error("deleting an unknown task reported a change")
	}
	select {
	case got := <-ch:
		if !board.Equal(got, external) {
			t.Errorf("broadcast snapshot mismatch:\n%s", board.Diff(external, got))
		}
	default:
		t.Error("external change picked up during dispatch was not broadcast")
	}
}
