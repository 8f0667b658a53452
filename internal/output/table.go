package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/twiced-technology-gmbh/laneboard/internal/board"
	"github.com/twiced-technology-gmbh/laneboard/internal/index"
	"github.com/twiced-technology-gmbh/laneboard/internal/task"
)

const descriptionWrap = 80

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	boldStyle    = lipgloss.NewStyle().Bold(true)
	overdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	// Priority colors matching the TUI card palette.
	priorityStyles = map[task.Priority]lipgloss.Style{
		task.High:   lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")).Bold(true),
		task.Medium: lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b")),
		task.Low:    lipgloss.NewStyle().Foreground(lipgloss.Color("#10b981")),
	}

	userStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("44")).Bold(true)

	colorEnabled = true
)

// DisableColor strips all styling from table output.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
	headerStyle = lipgloss.NewStyle()
	dimStyle = lipgloss.NewStyle()
	boldStyle = lipgloss.NewStyle()
	overdueStyle = lipgloss.NewStyle()
	priorityStyles = map[task.Priority]lipgloss.Style{}
	userStyle = lipgloss.NewStyle()
	colorEnabled = false
}

// BoardTable renders every column with its cards in order. The leading
// number on each card is its index within the column.
func BoardTable(w io.Writer, name string, b board.Board, today task.Date) {
	last := b.LastColumn()
	if name != "" {
		fmt.Fprintln(w, boldStyle.Render(name))
	}
	for i, c := range b.Columns {
		if i > 0 || name != "" {
			fmt.Fprintln(w)
		}
		count := strconv.Itoa(len(c.Tasks))
		if c.WIPLimit > 0 {
			count += "/" + strconv.Itoa(c.WIPLimit)
		}
		heading := columnStyle(c.Color).Render(c.Title) + " " + dimStyle.Render("("+count+")")
		if c.Title != c.ID {
			heading += " " + dimStyle.Render("["+c.ID+"]")
		}
		fmt.Fprintln(w, heading)

		if len(c.Tasks) == 0 {
			fmt.Fprintln(w, "  "+dimStyle.Render("--"))
			continue
		}
		idxW := len(strconv.Itoa(len(c.Tasks) - 1))
		for j, t := range c.Tasks {
			fmt.Fprintf(w, "  %*d %s\n", idxW, j, cardLine(t, today, last))
		}
	}
}

func cardLine(t task.Task, today task.Date, lastColumn string) string {
	parts := []string{
		dimStyle.Render(t.ID),
		styledPriority(t.Priority),
		t.Title,
	}
	if names := assigneeNames(t); names != "" {
		parts = append(parts, userStyle.Render(names))
	}
	if len(t.Tags) > 0 {
		parts = append(parts, renderTags(t.Tags))
	}
	if !t.DueDate.IsZero() {
		parts = append(parts, dueDisplay(t, today, lastColumn))
	}
	return strings.Join(parts, " ")
}

// TaskTable renders a list of tasks as a formatted table.
func TaskTable(w io.Writer, tasks []task.Task, today task.Date, lastColumn string) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	const pad = 2
	idW, colW, prioW, titleW, userW, tagsW := 4, 8, 10, 7, 11, 6
	for _, t := range tasks {
		idW = max(idW, len(t.ID)+pad)
		colW = max(colW, len(t.Column)+pad)
		prioW = max(prioW, len(t.Priority)+pad)
		titleW = max(titleW, min(lipgloss.Width(t.Title)+pad, 50)) //nolint:mnd // max title column width
		userW = max(userW, min(len(assigneeNames(t))+pad, 30))     //nolint:mnd // max assignee column width
		tagsW = max(tagsW, min(len(tagNames(t.Tags))+pad, 30))    //nolint:mnd // max tags column width
	}

	header := fmt.Sprintf("%-*s %-*s %-*s %-*s %-*s %-*s %s",
		idW, "ID", colW, "COLUMN", prioW, "PRIORITY",
		titleW, "TITLE", userW, "ASSIGNEES", tagsW, "TAGS", "DUE")
	fmt.Fprintln(w, headerStyle.Render(header))

	for _, t := range tasks {
		title := truncate(t.Title, titleW-pad)
		users := assigneeNames(t)
		if users == "" {
			users = dimStyle.Render("--")
		} else {
			users = userStyle.Render(truncate(users, userW-pad))
		}
		tags := tagNames(t.Tags)
		if tags == "" {
			tags = dimStyle.Render("--")
		} else {
			tags = truncate(tags, tagsW-pad)
		}
		due := dimStyle.Render("--")
		if !t.DueDate.IsZero() {
			due = dueDisplay(t, today, lastColumn)
		}

		row := fmt.Sprintf("%s %s %s %s %s %s %s",
			padRight(t.ID, idW),
			padRight(t.Column, colW),
			padRight(styledPriority(t.Priority), prioW),
			padRight(title, titleW),
			padRight(users, userW),
			padRight(tags, tagsW),
			due)
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// TaskDetail renders a single task with full detail. The description is
// rendered as markdown.
func TaskDetail(w io.Writer, t task.Task, position int, today task.Date, lastColumn string) {
	titleLine := fmt.Sprintf("Task %s: %s", t.ID, t.Title)
	fmt.Fprintln(w, boldStyle.Render(titleLine))
	fmt.Fprintln(w, strings.Repeat("─", lipgloss.Width(titleLine)))

	printField(w, "Column", t.Column+dimStyle.Render(" #"+strconv.Itoa(position)))
	printField(w, "Priority", styledPriority(t.Priority))
	if len(t.Assignees) > 0 {
		names := make([]string, len(t.Assignees))
		for i, u := range t.Assignees {
			names[i] = u.Name + dimStyle.Render(" ("+u.ID+")")
		}
		printField(w, "Assignees", userStyle.Render(strings.Join(names, ", ")))
	} else {
		printField(w, "Assignees", dimStyle.Render("--"))
	}
	if len(t.Tags) > 0 {
		printField(w, "Tags", renderTags(t.Tags))
	} else {
		printField(w, "Tags", dimStyle.Render("--"))
	}
	if t.DueDate.IsZero() {
		printField(w, "Due", dimStyle.Render("--"))
	} else {
		printField(w, "Due", dueDisplay(t, today, lastColumn))
	}

	if strings.TrimSpace(t.Description) != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, renderMarkdown(t.Description))
	}
}

// OverviewTable renders a board summary as a formatted dashboard.
func OverviewTable(w io.Writer, s board.Overview) {
	fmt.Fprintln(w, boldStyle.Render(s.BoardName))
	fmt.Fprintf(w, "Total: %d tasks\n\n", s.TotalTasks)

	const colW = 16
	header := fmt.Sprintf("%-*s %6s %8s %8s", colW, "COLUMN", "COUNT", "WIP", "OVERDUE")
	fmt.Fprintln(w, headerStyle.Render(header))

	for _, cs := range s.Columns {
		wip := dimStyle.Render("--")
		if cs.WIPLimit > 0 {
			wip = strconv.Itoa(cs.Count) + "/" + strconv.Itoa(cs.WIPLimit)
			if cs.OverLimit() {
				wip = overdueStyle.Render(wip)
			}
		}
		fmt.Fprintf(w, "%s %6d %s %8d\n",
			padRight(cs.Title, colW), cs.Count, padLeft(wip, 8), cs.Overdue) //nolint:mnd // column width
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-*s %6s", colW, "PRIORITY", "COUNT")))
	for _, pc := range s.Priorities {
		fmt.Fprintf(w, "%s %6d\n", padRight(styledPriority(pc.Priority), colW), pc.Count)
	}
}

// GroupedTable renders a grouped board view with per-group column breakdowns.
func GroupedTable(w io.Writer, gs board.GroupedSummary) {
	if len(gs.Groups) == 0 {
		fmt.Fprintln(os.Stderr, "No groups found.")
		return
	}

	for i, g := range gs.Groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, boldStyle.Render(fmt.Sprintf("%s (%d tasks)", g.Key, g.Total)))

		for _, cs := range g.Columns {
			if cs.Count == 0 {
				continue
			}
			const groupColW = 16
			fmt.Fprintf(w, "  %s %d\n", padRight(cs.Title, groupColW), cs.Count)
		}
	}
}

// CountTable renders key/count rows under a heading.
func CountTable(w io.Writer, heading string, counts []index.Count) {
	keyW := len(heading)
	for _, c := range counts {
		keyW = max(keyW, lipgloss.Width(c.Key))
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-*s %6s", keyW, heading, "COUNT")))
	for _, c := range counts {
		fmt.Fprintf(w, "%-*s %6d\n", keyW, c.Key, c.Count)
	}
}

// LogTable renders activity log entries, oldest first.
func LogTable(w io.Writer, entries []board.LogEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "No activity recorded.")
		return
	}
	for _, e := range entries {
		line := dimStyle.Render(e.Timestamp.Local().Format("2006-01-02 15:04:05")) + " " +
			padRight(e.Action, 7) + " " + e.TaskID //nolint:mnd // widest action name
		if e.Detail != "" {
			line += " " + dimStyle.Render(e.Detail)
		}
		fmt.Fprintln(w, line)
	}
}

func renderMarkdown(src string) string {
	style := glamour.WithAutoStyle()
	if !colorEnabled {
		style = glamour.WithStandardStyle(styles.NoTTYStyle)
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(descriptionWrap))
	if err != nil {
		return src
	}
	out, err := r.Render(src)
	if err != nil {
		return src
	}
	return strings.TrimRight(out, "\n")
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %-12s %s\n", label+":", value)
}

func columnStyle(color string) lipgloss.Style {
	if !colorEnabled || color == "" {
		return boldStyle
	}
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color))
}

func styledPriority(p task.Priority) string {
	if st, ok := priorityStyles[p]; ok {
		return st.Render(string(p))
	}
	return string(p)
}

func renderTags(tags []task.Tag) string {
	out := make([]string, len(tags))
	for i, tg := range tags {
		label := "#" + tg.Name
		if colorEnabled && tg.Color != "" {
			label = lipgloss.NewStyle().Foreground(lipgloss.Color(tg.Color)).Render(label)
		}
		out[i] = label
	}
	return strings.Join(out, " ")
}

func dueDisplay(t task.Task, today task.Date, lastColumn string) string {
	if board.IsOverdue(t, today, lastColumn) {
		return overdueStyle.Render(t.DueDate.String() + " overdue")
	}
	return t.DueDate.String()
}

func assigneeNames(t task.Task) string {
	names := make([]string, len(t.Assignees))
	for i, u := range t.Assignees {
		names[i] = u.Name
	}
	return strings.Join(names, ",")
}

func tagNames(tags []task.Tag) string {
	names := make([]string, len(tags))
	for i, tg := range tags {
		names[i] = tg.Name
	}
	return strings.Join(names, ",")
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width || width < 4 { //nolint:mnd // room for an ellipsis
		return s
	}
	r := []rune(s)
	if len(r) > width-3 {
		r = r[:width-3]
	}
	return string(r) + "..."
}

// padRight pads s with spaces to the given visible width, accounting for ANSI
// escape codes that are invisible but consume bytes.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func padLeft(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return strings.Repeat(" ", width-visible) + s
}
