package board_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/twiced-technology-gmbh/laneboard/internal/board"
	"github.com/twiced-technology-gmbh/laneboard/internal/clierr"
	"github.com/twiced-technology-gmbh/laneboard/internal/task"
)

func TestSampleIsValid(t *testing.T) {
	b := board.Sample()
	mustValid(t, b)
	if b.TaskCount() != 5 {
		t.Errorf("TaskCount = %d, want 5", b.TaskCount())
	}
	if diff := cmp.Diff([]string{"3"}, ids(b, board.InProgress)); diff != "" {
		t.Errorf("In Progress mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateRejectsBrokenBoards(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*board.Board)
		want   string
	}{
		{"duplicate column", func(b *board.Board) { b.Columns[1].ID = board.Todo }, "duplicate column"},
		{"duplicate task", func(b *board.Board) {
			dup := b.Columns[0].Tasks[0]
			dup.Column = b.Columns[3].ID
			b.Columns[3].Tasks = append(b.Columns[3].Tasks, dup)
		}, "appears in"},
		{"column mismatch", func(b *board.Board) { b.Columns[0].Tasks[0].Column = board.Done }, "records column"},
		{"empty task id", func(b *board.Board) { b.Columns[0].Tasks[0].ID = "" }, "empty id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := board.Sample()
			tt.mutate(&b)
			err := b.Validate()
			if !clierr.HasCode(err, clierr.InvalidBoard) {
				t.Fatalf("err = %v, want INVALID_BOARD", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %q, want substring %q", err, tt.want)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	b := board.Sample()
	c := b.Clone()
	c.Columns[0].Tasks[0].Tags[0].Name = "changed"
	c.Columns[0].Tasks[0].Assignees[0].Name = "changed"
	c.Columns[0].Tasks = c.Columns[0].Tasks[:1]

	if b.Columns[0].Tasks[0].Tags[0].Name != "Feature" {
		t.Error("clone shares tags with original")
	}
	if b.Columns[0].Tasks[0].Assignees[0].Name != "John Doe" {
		t.Error("clone shares assignees with original")
	}
	if len(b.Columns[0].Tasks) != 2 {
		t.Error("clone shares task slice with original")
	}
}

func TestResolveColumn(t *testing.T) {
	b := board.New(board.DefaultColumns())
	tests := []struct {
		in, want string
	}{
		{"Todo", board.Todo},
		{"todo", board.Todo},
		{"To Do", board.Todo},
		{"in progress", board.InProgress},
		{"DONE", board.Done},
	}
	for _, tt := range tests {
		got, err := b.ResolveColumn(tt.in)
		if err != nil {
			t.Errorf("ResolveColumn(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ResolveColumn(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if _, err := b.ResolveColumn("Later"); !clierr.HasCode(err, clierr.ColumnNotFound) {
		t.Errorf("unknown column err = %v, want COLUMN_NOT_FOUND", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.yml")
	b := board.Sample()

	if err := board.Save(path, b); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := board.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !board.Equal(b, got) {
		t.Errorf("round trip mismatch:\n%s", board.Diff(b, got))
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := board.Load(filepath.Join(t.TempDir(), "board.yml"))
	if !clierr.HasCode(err, clierr.BoardNotFound) {
		t.Errorf("err = %v, want BOARD_NOT_FOUND", err)
	}
}

func TestLoadRejectsInvalidSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.yml")
	data := `columns:
  - id: Todo
    title: To Do
    color: "#f59e0b"
    tasks:
      - id: a
        title: A
        priority: Low
        column: Done
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := board.Load(path); !clierr.HasCode(err, clierr.InvalidBoard) {
		t.Errorf("err = %v, want INVALID_BOARD", err)
	}
}

func TestReconcile(t *testing.T) {
	b := board.Sample()
	specs := board.DefaultColumns()
	specs[0].Title = "Backlog"
	specs[1].WIPLimit = 3
	specs = append(specs, board.ColumnSpec{ID: "Archive", Title: "Archive"})

	got, err := board.Reconcile(b, specs)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if got.Columns[0].Title != "Backlog" || got.Columns[1].WIPLimit != 3 {
		t.Errorf("column metadata not refreshed: %+v", got.Columns[:2])
	}
	if got.TaskCount() != b.TaskCount() {
		t.Errorf("TaskCount = %d, want %d", got.TaskCount(), b.TaskCount())
	}
	mustValid(t, got)

	if _, err := board.Reconcile(b, specs[:3]); !clierr.HasCode(err, clierr.InvalidBoard) {
		t.Errorf("dropping a non-empty column: err = %v, want INVALID_BOARD", err)
	}
}

func TestSummary(t *testing.T) {
	b := board.Sample()
	b.Columns[1].WIPLimit = 1

	ov := b.Summary("demo", "2024-04-13")

	if ov.TotalTasks != 5 {
		t.Errorf("TotalTasks = %d", ov.TotalTasks)
	}
	want := []board.ColumnSummary{
		{Column: board.Todo, Title: "To Do", Count: 2, Overdue: 0},
		{Column: board.InProgress, Title: "In Progress", Count: 1, WIPLimit: 1, Overdue: 1},
		{Column: board.Review, Title: "Review", Count: 1, Overdue: 1},
		{Column: board.Done, Title: "Done", Count: 1, Overdue: 0},
	}
	if diff := cmp.Diff(want, ov.Columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	wantPrio := []board.PriorityCount{
		{Priority: task.High, Count: 2},
		{Priority: task.Medium, Count: 2},
		{Priority: task.Low, Count: 1},
	}
	if diff := cmp.Diff(wantPrio, ov.Priorities); diff != "" {
		t.Errorf("priorities mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupByAssignee(t *testing.T) {
	g := board.Sample().GroupBy(board.GroupAssignee)

	var keys []string
	totals := map[string]int{}
	for _, grp := range g.Groups {
		keys = append(keys, grp.Key)
		totals[grp.Key] = grp.Total
	}
	if diff := cmp.Diff([]string{"Jane Smith", "John Doe", "Mike Johnson", "Sarah Wilson"}, keys); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	if totals["John Doe"] != 3 {
		t.Errorf("John Doe total = %d, want 3", totals["John Doe"])
	}
}

func TestGroupByColumnKeepsBoardOrder(t *testing.T) {
	g := board.Sample().GroupBy(board.GroupColumn)
	var keys []string
	for _, grp := range g.Groups {
		keys = append(keys, grp.Key)
	}
	if diff := cmp.Diff([]string{board.Todo, board.InProgress, board.Review, board.Done}, keys); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterAndSort(t *testing.T) {
	b := board.Sample()
	tests := []struct {
		name string
		opts board.FilterOptions
		sort string
		rev  bool
		want []string
	}{
		{"all in board order", board.FilterOptions{}, board.SortBoard, false, []string{"1", "2", "3", "4", "5"}},
		{"board order reversed", board.FilterOptions{}, board.SortBoard, true, []string{"5", "4", "3", "2", "1"}},
		{"by column", board.FilterOptions{Columns: []string{board.Todo}}, "", false, []string{"1", "2"}},
		{"by priority", board.FilterOptions{Priorities: []task.Priority{task.High}}, "", false, []string{"1", "3"}},
		{"by assignee name", board.FilterOptions{Assignee: "John Doe"}, "", false, []string{"1", "3", "5"}},
		{"by tag", board.FilterOptions{Tag: "UI"}, "", false, []string{"2"}},
		{"search description", board.FilterOptions{Search: "loading"}, "", false, []string{"4"}},
		{"search tag", board.FilterOptions{Search: "secur"}, "", false, []string{"1"}},
		{"overdue skips last column", board.FilterOptions{OverdueOn: "2024-04-13"}, "", false, []string{"3", "4"}},
		{"sort due", board.FilterOptions{}, board.SortDue, false, []string{"5", "3", "4", "1", "2"}},
		{"sort priority", board.FilterOptions{}, board.SortPriority, false, []string{"1", "3", "2", "4", "5"}},
		{"sort title", board.FilterOptions{}, board.SortTitle, false, []string{"3", "2", "1", "4", "5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := board.Filter(b.Tasks(), tt.opts, b.LastColumn())
			board.Sort(got, tt.sort, tt.rev)
			var gotIDs []string
			for _, tk := range got {
				gotIDs = append(gotIDs, tk.ID)
			}
			if diff := cmp.Diff(tt.want, gotIDs); diff != "" {
				t.Errorf("ids mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestActivityLog(t *testing.T) {
	dir := t.TempDir()

	entries, err := board.ReadLog(dir, 0)
	if err != nil || len(entries) != 0 {
		t.Fatalf("empty log: entries=%v err=%v", entries, err)
	}

	for _, e := range []struct{ action, detail string }{
		{"create", "created in Todo"},
		{"move", "Todo -> Done"},
		{"delete", ""},
	} {
		if err := board.LogMutation(dir, e.action, "a1", e.detail); err != nil {
			t.Fatal(err)
		}
	}

	entries, err = board.ReadLog(dir, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if entries[0].Action != "move" || entries[1].Action != "delete" || entries[1].TaskID != "a1" {
		t.Errorf("entries = %+v", entries)
	}

	// A torn trailing line is skipped rather than failing the read.
	f, err := os.OpenFile(filepath.Join(dir, board.LogFileName), os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = f.WriteString(`{"action":"cre`)
	_ = f.Close()
	entries, err = board.ReadLog(dir, 0)
	if err != nil || len(entries) != 3 {
		t.Errorf("after torn line: len=%d err=%v, want 3 entries", len(entries), err)
	}
}
