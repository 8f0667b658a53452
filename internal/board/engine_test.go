package board_test

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/twiced-technology-gmbh/laneboard/internal/board"
	"github.com/twiced-technology-gmbh/laneboard/internal/task"
)

// newBoard builds a board whose columns hold tasks with the given ids.
// Columns are created in the order given by cols.
func newBoard(cols []string, tasks map[string][]string) board.Board {
	specs := make([]board.ColumnSpec, 0, len(cols))
	for _, c := range cols {
		specs = append(specs, board.ColumnSpec{ID: c, Title: c})
	}
	b := board.New(specs)
	for i, c := range b.Columns {
		for _, id := range tasks[c.ID] {
			b.Columns[i].Tasks = append(b.Columns[i].Tasks, task.Task{
				ID:       id,
				Title:    "task " + id,
				Priority: task.Medium,
				Column:   c.ID,
			})
		}
	}
	return b
}

func ids(b board.Board, column string) []string {
	c, ok := b.Column(column)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(c.Tasks))
	for _, t := range c.Tasks {
		out = append(out, t.ID)
	}
	return out
}

func mustValid(t *testing.T, b board.Board) {
	t.Helper()
	if err := b.Validate(); err != nil {
		t.Fatalf("board invariants violated: %v", err)
	}
}

func TestMoveTaskWithinColumn(t *testing.T) {
	b := newBoard([]string{board.Todo}, map[string][]string{board.Todo: {"A", "B", "C"}})

	got := board.MoveTask(b, board.Todo, 0, board.Todo, 2)

	if diff := cmp.Diff([]string{"B", "C", "A"}, ids(got, board.Todo)); diff != "" {
		t.Errorf("Todo order mismatch (-want +got):\n%s", diff)
	}
	mustValid(t, got)
}

func TestMoveTaskAcrossColumns(t *testing.T) {
	b := newBoard([]string{board.Todo, board.Done}, map[string][]string{board.Todo: {"A", "B"}})

	got := board.MoveTask(b, board.Todo, 0, board.Done, 0)

	if diff := cmp.Diff([]string{"B"}, ids(got, board.Todo)); diff != "" {
		t.Errorf("Todo mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"A"}, ids(got, board.Done)); diff != "" {
		t.Errorf("Done mismatch (-want +got):\n%s", diff)
	}
	a, _ := got.Task("A")
	if a.Column != board.Done {
		t.Errorf("A.Column = %q, want %q", a.Column, board.Done)
	}
	mustValid(t, got)
}

func TestCreateTaskAppends(t *testing.T) {
	b := newBoard([]string{board.Todo}, map[string][]string{board.Todo: {"A"}})
	gen := &task.SequenceGenerator{IDs: []string{"x1"}}

	got, id, err := board.CreateTask(b, board.Todo, task.Fields{Title: "X", Priority: task.High}, gen)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if id != "x1" {
		t.Errorf("id = %q, want x1", id)
	}
	if diff := cmp.Diff([]string{"A", "x1"}, ids(got, board.Todo)); diff != "" {
		t.Errorf("Todo mismatch (-want +got):\n%s", diff)
	}
	x, _ := got.Task("x1")
	if x.Column != board.Todo || x.Title != "X" || x.Priority != task.High {
		t.Errorf("created task = %+v", x)
	}
	mustValid(t, got)
}

func TestCreateTaskIgnoresFieldsColumn(t *testing.T) {
	b := newBoard([]string{board.Todo, board.Done}, nil)
	gen := &task.SequenceGenerator{}

	got, id, err := board.CreateTask(b, board.Todo, task.Fields{Title: "X", Priority: task.Low, Column: board.Done}, gen)
	if err != nil {
		t.Fatal(err)
	}
	if c, _, _ := got.FindTask(id); got.Columns[c].ID != board.Todo {
		t.Errorf("task created in %q, want %q", got.Columns[c].ID, board.Todo)
	}
}

func TestCreateTaskUnknownColumn(t *testing.T) {
	b := newBoard([]string{board.Todo}, map[string][]string{board.Todo: {"A"}})
	gen := &task.SequenceGenerator{}

	got, id, err := board.CreateTask(b, "Later", task.Fields{Title: "X", Priority: task.Low}, gen)
	if err != nil {
		t.Fatal(err)
	}
	if id != "" {
		t.Errorf("id = %q, want empty", id)
	}
	if !board.Equal(b, got) {
		t.Errorf("board changed:\n%s", board.Diff(b, got))
	}
}

func TestCreateTaskRedrawsCollidingID(t *testing.T) {
	b := newBoard([]string{board.Todo}, map[string][]string{board.Todo: {"A", "B"}})
	gen := &task.SequenceGenerator{IDs: []string{"A", "B", "", "C"}}

	got, id, err := board.CreateTask(b, board.Todo, task.Fields{Title: "X", Priority: task.Low}, gen)
	if err != nil {
		t.Fatal(err)
	}
	if id != "C" {
		t.Errorf("id = %q, want C", id)
	}
	mustValid(t, got)
}

type constGen string

func (g constGen) NewID() string { return string(g) }

func TestCreateTaskGeneratorExhausted(t *testing.T) {
	b := newBoard([]string{board.Todo}, map[string][]string{board.Todo: {"A"}})

	got, _, err := board.CreateTask(b, board.Todo, task.Fields{Title: "X", Priority: task.Low}, constGen("A"))
	if !errors.Is(err, board.ErrIDExhausted) {
		t.Fatalf("err = %v, want ErrIDExhausted", err)
	}
	if !board.Equal(b, got) {
		t.Error("board changed on generator failure")
	}
}

func TestEditTaskMovesToEndOfNewColumn(t *testing.T) {
	b := newBoard(
		[]string{board.Todo, board.Review},
		map[string][]string{board.Todo: {"A", "B", "C"}, board.Review: {"R"}},
	)
	bt, _ := b.Task("B")
	f := bt.Fields()
	f.Column = board.Review

	got := board.EditTask(b, "B", f)

	if diff := cmp.Diff([]string{"A", "C"}, ids(got, board.Todo)); diff != "" {
		t.Errorf("Todo mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"R", "B"}, ids(got, board.Review)); diff != "" {
		t.Errorf("Review mismatch (-want +got):\n%s", diff)
	}
	moved, _ := got.Task("B")
	if moved.Column != board.Review {
		t.Errorf("B.Column = %q, want %q", moved.Column, board.Review)
	}
	mustValid(t, got)
}

func TestEditTaskInPlace(t *testing.T) {
	b := newBoard([]string{board.Todo}, map[string][]string{board.Todo: {"A", "B", "C"}})
	f := task.Fields{
		Title:       "Renamed",
		Description: "new body",
		Priority:    task.High,
		DueDate:     "2024-05-01",
		Assignees:   []task.User{{ID: "u1", Name: "John Doe"}},
		Tags:        []task.Tag{{ID: "t1", Name: "Feature", Color: "#0ea5e9"}},
	}

	got := board.EditTask(b, "B", f)

	if diff := cmp.Diff([]string{"A", "B", "C"}, ids(got, board.Todo)); diff != "" {
		t.Errorf("order changed (-want +got):\n%s", diff)
	}
	edited, _ := got.Task("B")
	want := task.Task{
		ID:          "B",
		Title:       "Renamed",
		Description: "new body",
		Priority:    task.High,
		DueDate:     "2024-05-01",
		Assignees:   []task.User{{ID: "u1", Name: "John Doe"}},
		Tags:        []task.Tag{{ID: "t1", Name: "Feature", Color: "#0ea5e9"}},
		Column:      board.Todo,
	}
	if diff := cmp.Diff(want, edited); diff != "" {
		t.Errorf("edited task mismatch (-want +got):\n%s", diff)
	}
}

func TestEditTaskNoOps(t *testing.T) {
	b := newBoard([]string{board.Todo}, map[string][]string{board.Todo: {"A"}})

	tests := []struct {
		name   string
		taskID string
		fields task.Fields
	}{
		{"unknown task", "missing", task.Fields{Title: "X", Priority: task.Low}},
		{"unknown column", "A", task.Fields{Title: "X", Priority: task.Low, Column: "Later"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := board.EditTask(b, tt.taskID, tt.fields)
			if !board.Equal(b, got) {
				t.Errorf("board changed:\n%s", board.Diff(b, got))
			}
		})
	}
}

func TestEditTaskDoesNotAliasFields(t *testing.T) {
	b := newBoard([]string{board.Todo}, map[string][]string{board.Todo: {"A"}})
	f := task.Fields{Title: "X", Priority: task.Low, Tags: []task.Tag{{ID: "t", Name: "T"}}}

	got := board.EditTask(b, "A", f)
	f.Tags[0].Name = "mutated"

	a, _ := got.Task("A")
	if a.Tags[0].Name != "T" {
		t.Errorf("board aliased caller's tags: %q", a.Tags[0].Name)
	}
}

func TestDeleteTask(t *testing.T) {
	b := newBoard([]string{board.Todo}, map[string][]string{board.Todo: {"A", "B", "C"}})

	got := board.DeleteTask(b, "B")

	if diff := cmp.Diff([]string{"A", "C"}, ids(got, board.Todo)); diff != "" {
		t.Errorf("Todo mismatch (-want +got):\n%s", diff)
	}
	if again := board.DeleteTask(got, "B"); !board.Equal(got, again) {
		t.Errorf("second delete changed board:\n%s", board.Diff(got, again))
	}
}

func TestDeleteUnknownTaskIsNoOp(t *testing.T) {
	b := board.Sample()

	got := board.DeleteTask(b, "nonexistent-id")

	if !board.Equal(b, got) {
		t.Errorf("board changed:\n%s", board.Diff(b, got))
	}
}

func TestMoveTaskClamping(t *testing.T) {
	cols := []string{board.Todo, board.Done}
	tasks := map[string][]string{board.Todo: {"A", "B", "C"}, board.Done: {"D"}}

	tests := []struct {
		name              string
		src               string
		srcIdx            int
		dst               string
		dstIdx            int
		wantTodo, wantDon []string
	}{
		{"dest past end appends", board.Todo, 0, board.Done, 99, []string{"B", "C"}, []string{"D", "A"}},
		{"negative dest inserts first", board.Todo, 2, board.Done, -5, []string{"A", "B"}, []string{"C", "D"}},
		{"same column past end", board.Todo, 0, board.Todo, 10, []string{"B", "C", "A"}, []string{"D"}},
		{"same column negative", board.Todo, 2, board.Todo, -1, []string{"C", "A", "B"}, []string{"D"}},
		{"same column identity", board.Todo, 1, board.Todo, 1, []string{"A", "B", "C"}, []string{"D"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBoard(cols, tasks)
			got := board.MoveTask(b, tt.src, tt.srcIdx, tt.dst, tt.dstIdx)
			if diff := cmp.Diff(tt.wantTodo, ids(got, board.Todo)); diff != "" {
				t.Errorf("Todo mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantDon, ids(got, board.Done)); diff != "" {
				t.Errorf("Done mismatch (-want +got):\n%s", diff)
			}
			mustValid(t, got)
		})
	}
}

func TestMoveTaskNoOps(t *testing.T) {
	b := newBoard([]string{board.Todo, board.Done}, map[string][]string{board.Todo: {"A", "B"}})

	tests := []struct {
		name   string
		src    string
		srcIdx int
		dst    string
		dstIdx int
	}{
		{"src index past end", board.Todo, 2, board.Done, 0},
		{"negative src index", board.Todo, -1, board.Done, 0},
		{"empty source column", board.Done, 0, board.Todo, 0},
		{"unknown source", "Later", 0, board.Done, 0},
		{"unknown destination", board.Todo, 0, "Later", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := board.MoveTask(b, tt.src, tt.srcIdx, tt.dst, tt.dstIdx)
			if !board.Equal(b, got) {
				t.Errorf("board changed:\n%s", board.Diff(b, got))
			}
		})
	}
}

func TestSameColumnIdentityMove(t *testing.T) {
	b := newBoard([]string{board.Todo}, map[string][]string{board.Todo: {"A", "B", "C", "D"}})
	for i := range 4 {
		got := board.MoveTask(b, board.Todo, i, board.Todo, i)
		if !board.Equal(b, got) {
			t.Errorf("MoveTask(%d -> %d) changed board:\n%s", i, i, board.Diff(b, got))
		}
	}
}

func TestOperationsDoNotMutateInput(t *testing.T) {
	b := board.Sample()
	before := b.Clone()
	gen := &task.SequenceGenerator{Prefix: "n"}

	board.MoveTask(b, board.Todo, 0, board.Done, 0)
	board.EditTask(b, "1", task.Fields{Title: "changed", Priority: task.Low, Column: board.Review})
	board.DeleteTask(b, "3")
	if _, _, err := board.CreateTask(b, board.Todo, task.Fields{Title: "new", Priority: task.Low}, gen); err != nil {
		t.Fatal(err)
	}

	if !board.Equal(before, b) {
		t.Errorf("input board mutated:\n%s", board.Diff(before, b))
	}
}

// TestRandomCommandSequences drives the engine with random operations and
// checks the invariants and task conservation after every step.
func TestRandomCommandSequences(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	gen := &task.SequenceGenerator{Prefix: "r"}
	cols := board.DefaultColumns()
	b := board.New(cols)

	pickColumn := func() string {
		if rng.IntN(10) == 0 {
			return "Nowhere"
		}
		return cols[rng.IntN(len(cols))].ID
	}
	pickTask := func() string {
		all := b.Tasks()
		if len(all) == 0 || rng.IntN(8) == 0 {
			return "ghost"
		}
		return all[rng.IntN(len(all))].ID
	}

	for step := range 2000 {
		before := b.TaskCount()
		var want int
		switch rng.IntN(4) {
		case 0:
			col := pickColumn()
			next, id, err := board.CreateTask(b, col, task.Fields{Title: "t", Priority: task.Low}, gen)
			if err != nil {
				t.Fatalf("step %d: %v", step, err)
			}
			want = before
			if id != "" {
				want++
			}
			b = next
		case 1:
			f := task.Fields{Title: "e", Priority: task.High}
			if rng.IntN(2) == 0 {
				f.Column = pickColumn()
			}
			b = board.EditTask(b, pickTask(), f)
			want = before
		case 2:
			id := pickTask()
			_, _, exists := b.FindTask(id)
			b = board.DeleteTask(b, id)
			want = before
			if exists {
				want--
			}
		case 3:
			b = board.MoveTask(b, pickColumn(), rng.IntN(6)-1, pickColumn(), rng.IntN(8)-2)
			want = before
		}

		if err := b.Validate(); err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
		if got := b.TaskCount(); got != want {
			t.Fatalf("step %d: task count = %d, want %d", step, got, want)
		}
		if !slices.Equal(b.ColumnIDs(), []string{board.Todo, board.InProgress, board.Review, board.Done}) {
			t.Fatalf("step %d: columns changed: %v", step, b.ColumnIDs())
		}
	}
}
