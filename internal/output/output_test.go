package output

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/twiced-technology-gmbh/laneboard/internal/board"
	"github.com/twiced-technology-gmbh/laneboard/internal/index"
	"github.com/twiced-technology-gmbh/laneboard/internal/task"
)

func TestMain(m *testing.M) {
	DisableColor()
	os.Exit(m.Run())
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name                string
		json, table, compact bool
		env                 string
		want                Format
	}{
		{"default", false, false, false, "", FormatTable},
		{"json flag", true, false, false, "compact", FormatJSON},
		{"compact flag wins over table", false, true, true, "", FormatCompact},
		{"table flag", false, true, false, "json", FormatTable},
		{"env json", false, false, false, "json", FormatJSON},
		{"env oneline", false, false, false, "oneline", FormatCompact},
		{"env unknown", false, false, false, "yaml", FormatTable},
		{"env mixed case", false, false, false, " Compact ", FormatCompact},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvFormat, tt.env)
			if got := Detect(tt.json, tt.table, tt.compact); got != tt.want {
				t.Errorf("Detect = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBoardCompact(t *testing.T) {
	var buf bytes.Buffer
	BoardCompact(&buf, board.Sample())

	want := strings.Join([]string{
		"Todo (2)",
		"  0 1 [Todo/High] Implement Authentication @John Doe (Feature,Security) due:2024-04-15",
		"  1 2 [Todo/Medium] Design System Setup @Jane Smith (UI) due:2024-04-20",
		"In Progress (1)",
		"  0 3 [In Progress/High] API Integration @John Doe @Mike Johnson (Backend,Integration) due:2024-04-10",
		"Review (1)",
		"  0 4 [Review/Medium] Performance Optimization @Sarah Wilson (Performance) due:2024-04-12",
		"Done (1)",
		"  0 5 [Done/Low] Project Setup @John Doe (Setup) due:2024-04-05",
		"",
	}, "\n")
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("compact mismatch (-want +got):\n%s", diff)
	}
}

func TestBoardTableMarksOverdue(t *testing.T) {
	var buf bytes.Buffer
	BoardTable(&buf, "demo", board.Sample(), "2024-04-13")
	out := buf.String()

	for _, want := range []string{"demo", "To Do (2) [Todo]", "2024-04-10 overdue", "#Security"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	// Done is the last column, so its past due date is not overdue.
	if strings.Contains(out, "2024-04-05 overdue") {
		t.Errorf("done task flagged overdue:\n%s", out)
	}
}

func TestTaskTable(t *testing.T) {
	var buf bytes.Buffer
	b := board.Sample()
	TaskTable(&buf, b.Tasks(), "2024-01-01", b.LastColumn())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("got %d lines, want header + 5 rows:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "ID") || !strings.Contains(lines[0], "ASSIGNEES") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[3], "John Doe,Mike Johnson") {
		t.Errorf("row 3 = %q", lines[3])
	}
}

func TestTaskDetail(t *testing.T) {
	tk := task.Task{
		ID:          "x1",
		Title:       "Write docs",
		Description: "Cover the **move** command.",
		Priority:    task.Low,
		Column:      board.Review,
	}
	var buf bytes.Buffer
	TaskDetail(&buf, tk, 3, "2024-01-01", board.Done)
	out := buf.String()

	for _, want := range []string{"Task x1: Write docs", "Review #3", "Low", "move"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestOverviewCompact(t *testing.T) {
	b := board.Sample()
	var buf bytes.Buffer
	OverviewCompact(&buf, b.Summary("demo", "2024-04-13"))

	want := strings.Join([]string{
		"demo (5 tasks)",
		"  Todo: 2",
		"  In Progress: 1 (1 overdue)",
		"  Review: 1 (1 overdue)",
		"  Done: 1",
		"Priority: High=2 Medium=2 Low=1",
		"",
	}, "\n")
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("overview mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupedCompact(t *testing.T) {
	var buf bytes.Buffer
	GroupedCompact(&buf, board.Sample().GroupBy(board.GroupPriority))

	want := "High (2): Todo=1 In Progress=1\nMedium (2): Todo=1 Review=1\nLow (1): Done=1\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("grouped mismatch (-want +got):\n%s", diff)
	}
}

func TestCountTable(t *testing.T) {
	var buf bytes.Buffer
	CountTable(&buf, "ASSIGNEE", []index.Count{{Key: "John Doe", Count: 3}})
	want := "ASSIGNEE  COUNT\nJohn Doe      3\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("count table mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONError(t *testing.T) {
	var buf bytes.Buffer
	JSONError(&buf, "TASK_NOT_FOUND", "task x not found", map[string]any{"id": "x"})

	var got ErrorResponse
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	want := ErrorResponse{Error: "task x not found", Code: "TASK_NOT_FOUND", Details: map[string]any{"id": "x"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("envelope mismatch (-want +got):\n%s", diff)
	}
}
