package cmd

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/laneboard/internal/board"
	"github.com/twiced-technology-gmbh/laneboard/internal/clierr"
	"github.com/twiced-technology-gmbh/laneboard/internal/command"
	"github.com/twiced-technology-gmbh/laneboard/internal/config"
	"github.com/twiced-technology-gmbh/laneboard/internal/task"
)

func TestParseIDs(t *testing.T) {
	got, err := parseIDs(" 1, 2,,1 ,3")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"1", "2", "3"}, got); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
	if _, err := parseIDs(" , "); !clierr.HasCode(err, clierr.InvalidInput) {
		t.Errorf("blank list: err = %v, want INVALID_INPUT", err)
	}
}

func TestParsePositionalMove(t *testing.T) {
	b := board.Sample()

	got, err := parsePositionalMove(b, []string{"to do", "1", "done", "0"})
	if err != nil {
		t.Fatal(err)
	}
	want := command.MoveTask{SourceColumnID: board.Todo, SourceIndex: 1, DestColumnID: board.Done, DestIndex: 0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("move mismatch (-want +got):\n%s", diff)
	}

	if _, err := parsePositionalMove(b, []string{"Later", "0", "Done", "0"}); !clierr.HasCode(err, clierr.ColumnNotFound) {
		t.Errorf("unknown column: err = %v", err)
	}
	if _, err := parsePositionalMove(b, []string{"Todo", "x", "Done", "0"}); !clierr.HasCode(err, clierr.InvalidInput) {
		t.Errorf("bad index: err = %v", err)
	}
}

func moveFlags(t *testing.T, set map[string]string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "move"}
	c.Flags().Bool("next", false, "")
	c.Flags().Bool("prev", false, "")
	c.Flags().Int("to", -1, "")
	for k, v := range set {
		if err := c.Flags().Set(k, v); err != nil {
			t.Fatal(err)
		}
	}
	return c
}

func TestResolveTargetColumn(t *testing.T) {
	b := board.Sample()

	got, err := resolveTargetColumn(moveFlags(t, map[string]string{"next": "true"}), []string{"1"}, b, 0, "1")
	if err != nil || got != board.InProgress {
		t.Errorf("--next from Todo = %q, %v", got, err)
	}

	_, err = resolveTargetColumn(moveFlags(t, map[string]string{"prev": "true"}), []string{"1"}, b, 0, "1")
	if !clierr.HasCode(err, clierr.BoundaryError) {
		t.Errorf("--prev from first column: err = %v, want BOUNDARY_ERROR", err)
	}

	_, err = resolveTargetColumn(moveFlags(t, map[string]string{"next": "true"}), []string{"5"}, b, 3, "5")
	if !clierr.HasCode(err, clierr.BoundaryError) {
		t.Errorf("--next from last column: err = %v, want BOUNDARY_ERROR", err)
	}

	got, err = resolveTargetColumn(moveFlags(t, map[string]string{"to": "0"}), []string{"2"}, b, 0, "2")
	if err != nil || got != board.Todo {
		t.Errorf("--to alone = %q, %v, want reorder in Todo", got, err)
	}

	if _, err = resolveTargetColumn(moveFlags(t, nil), []string{"1"}, b, 0, "1"); !clierr.HasCode(err, clierr.InvalidInput) {
		t.Errorf("no target: err = %v", err)
	}
}

func TestRestrictKeepsLayout(t *testing.T) {
	b := board.Sample()
	keep, _ := b.Task("3")

	got := restrict(b, []task.Task{keep})
	if diff := cmp.Diff(b.ColumnIDs(), got.ColumnIDs()); diff != "" {
		t.Errorf("columns changed (-want +got):\n%s", diff)
	}
	if got.TaskCount() != 1 {
		t.Errorf("TaskCount = %d, want 1", got.TaskCount())
	}
	if b.TaskCount() != 5 {
		t.Error("restrict modified its input")
	}
}

func TestCustomColumns(t *testing.T) {
	got := customColumns([]string{"Todo", " Blocked ", "Done"})
	ids := make([]string, len(got))
	for i, c := range got {
		ids[i] = c.ID
	}
	if diff := cmp.Diff([]string{board.Todo, "Blocked", board.Done}, ids); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
	if got[0].Title != "To Do" {
		t.Errorf("canonical column title = %q, want To Do", got[0].Title)
	}
	if got[1].Title != "Blocked" {
		t.Errorf("custom column title = %q", got[1].Title)
	}
}

func TestApplyWIPLimits(t *testing.T) {
	cfg := config.NewDefault("demo")
	if err := applyWIPLimits(cfg, []string{"in progress:3"}); err != nil {
		t.Fatal(err)
	}
	if cfg.Columns[1].WIPLimit != 3 {
		t.Errorf("In Progress WIP limit = %d, want 3", cfg.Columns[1].WIPLimit)
	}
	if err := applyWIPLimits(cfg, []string{"Later:1"}); !clierr.HasCode(err, clierr.ColumnNotFound) {
		t.Errorf("unknown column: err = %v", err)
	}
	if err := applyWIPLimits(cfg, []string{"Todo"}); !clierr.HasCode(err, clierr.InvalidInput) {
		t.Errorf("missing limit: err = %v", err)
	}
}

func TestRemoveTags(t *testing.T) {
	tags := []task.Tag{task.ParseTag("backend"), task.ParseTag("Needs Design")}
	got := removeTags(tags, []string{"needs-design"})
	if len(got) != 1 || got[0].Name != "backend" {
		t.Errorf("removeTags = %+v", got)
	}
	if !hasTag(got, task.ParseTag("backend:#ff0000")) {
		t.Error("hasTag should match by id regardless of color")
	}
}

func TestColumnAccessor(t *testing.T) {
	cfg := config.NewDefault("demo")

	acc, err := lookupAccessor("columns.In Progress.wip_limit")
	if err != nil {
		t.Fatal(err)
	}
	if err := acc.set(cfg, "4"); err != nil {
		t.Fatal(err)
	}
	if got := acc.get(cfg); got != 4 {
		t.Errorf("wip_limit = %v, want 4", got)
	}
	if got := configAccessors()["wip_limits"].get(cfg); !cmp.Equal(got, map[string]int{board.InProgress: 4}) {
		t.Errorf("wip_limits = %v", got)
	}

	acc, _ = lookupAccessor("columns.Later.title")
	if err := acc.set(cfg, "x"); !clierr.HasCode(err, clierr.ColumnNotFound) {
		t.Errorf("unknown column: err = %v", err)
	}
	if _, err := lookupAccessor("columns.Todo.owner"); !clierr.HasCode(err, clierr.InvalidInput) {
		t.Errorf("unknown field: err = %v", err)
	}
}
