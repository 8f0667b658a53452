package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/twiced-technology-gmbh/laneboard/internal/board"
	"github.com/twiced-technology-gmbh/laneboard/internal/task"
)

// --- Styles ---

var (
	columnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("236")).
				Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	activeCardStyle = cardStyle.BorderForeground(lipgloss.Color("226"))

	dragCardStyle = cardStyle.
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("212"))

	statusBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	overdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	priorityStyles = map[task.Priority]lipgloss.Style{
		task.High:   lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")).Bold(true),
		task.Medium: lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b")),
		task.Low:    lipgloss.NewStyle().Foreground(lipgloss.Color("#10b981")),
	}

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2) //nolint:mnd // dialog padding
)

// --- View rendering ---

func (b *Board) viewBoard() string {
	disp := b.display()
	if len(disp.Columns) == 0 {
		return "No columns configured."
	}

	colWidth := b.columnWidth()
	rendered := make([]string, len(disp.Columns))
	for i, col := range disp.Columns {
		rendered[i] = b.renderColumn(i, col, colWidth)
	}
	boardView := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)

	// At very small terminal sizes a single card can exceed the budget.
	// Clamp from the bottom, keeping headers, and pad if needed.
	targetHeight := b.height - b.chromeHeight()
	if targetHeight > 0 {
		actual := strings.Count(boardView, "\n") + 1
		if actual > targetHeight {
			lines := strings.SplitN(boardView, "\n", targetHeight+1)
			boardView = strings.Join(lines[:targetHeight], "\n")
		} else if actual < targetHeight {
			boardView += strings.Repeat("\n", targetHeight-actual)
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, boardView, "", b.renderStatusBar())
}

func (b *Board) columnWidth() int {
	n := len(b.snap.Columns)
	if b.width == 0 || n == 0 {
		return 30 //nolint:mnd // default column width
	}
	const maxColWidth = 60
	return min(b.width/n, maxColWidth)
}

func (b *Board) renderColumn(colIdx int, col board.Column, width int) string {
	headerText := fmt.Sprintf("%s (%d)", col.Title, len(col.Tasks))
	if col.WIPLimit > 0 {
		headerText = fmt.Sprintf("%s (%d/%d)", col.Title, len(col.Tasks), col.WIPLimit)
	}
	const headerPad = 2
	headerText = truncate(headerText, width-headerPad)

	header := columnHeaderStyle
	if col.Color != "" {
		header = header.Foreground(lipgloss.Color(col.Color))
	}
	if colIdx == b.activeCol {
		header = header.Reverse(true)
	}
	if col.WIPLimit > 0 && len(col.Tasks) > col.WIPLimit {
		header = header.Underline(true)
	}
	parts := []string{header.Width(width).Render(headerText)}

	maxVis := b.visibleCards(colIdx, width)
	start := min(b.scroll[colIdx], len(col.Tasks))
	end := min(start+maxVis, len(col.Tasks))

	if start > 0 {
		parts = append(parts, dimStyle.Width(width).Render(truncate(fmt.Sprintf("  ↑ %d more", start), width)))
	}

	if len(col.Tasks) == 0 {
		parts = append(parts, dimStyle.Width(width).Render("  (empty)"))
	}
	last := b.display().LastColumn()
	for row := start; row < end; row++ {
		t := col.Tasks[row]
		style := cardStyle
		switch {
		case b.drag != nil && t.ID == b.drag.taskID:
			style = dragCardStyle
		case colIdx == b.activeCol && row == b.activeRow:
			style = activeCardStyle
		}
		parts = append(parts, b.renderCard(t, style, width, last))
	}

	if end < len(col.Tasks) {
		indicator := fmt.Sprintf("  ↓ %d more", len(col.Tasks)-end)
		parts = append(parts, dimStyle.Width(width).Render(truncate(indicator, width)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (b *Board) renderCard(t task.Task, style lipgloss.Style, width int, lastColumn string) string {
	content := strings.Join(b.cardContentLines(t, width, lastColumn), "\n")
	return style.Width(width - 2).Render(content) //nolint:mnd // border width
}

func (b *Board) cardHeight(t task.Task, width int) int {
	return len(b.cardContentLines(t, width, "")) + 2 //nolint:mnd // top and bottom borders
}

func (b *Board) cardContentLines(t task.Task, width int, lastColumn string) []string {
	const cardChrome = 4 // border (2) + padding (2)
	cardWidth := max(1, width-cardChrome)

	lines := wrapTitle(t.Title, cardWidth, b.opts.TitleLines)

	meta := []string{priorityLabel(t.Priority)}
	if !t.DueDate.IsZero() {
		due := t.DueDate.String()
		if lastColumn != "" && board.IsOverdue(t, b.opts.Today(), lastColumn) {
			due = overdueStyle.Render(due)
		} else {
			due = dimStyle.Render(due)
		}
		meta = append(meta, due)
	}
	if len(t.Assignees) > 0 {
		meta = append(meta, dimStyle.Render(initials(t.Assignees)))
	}
	lines = append(lines, truncateStyled(strings.Join(meta, " "), cardWidth))

	if b.opts.ShowTags && len(t.Tags) > 0 {
		tags := make([]string, len(t.Tags))
		for i, tg := range t.Tags {
			tags[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(tg.Color)).Render("#" + tg.Name)
		}
		lines = append(lines, truncateStyled(strings.Join(tags, " "), cardWidth))
	}
	return lines
}

func (b *Board) renderStatusBar() string {
	help := b.keys.boardHelp()
	if b.drag != nil {
		help = b.keys.dragHelp()
	}
	hints := make([]string, len(help))
	for i, k := range help {
		h := k.Help()
		hints[i] = h.Key + ":" + h.Desc
	}

	name := b.opts.Name
	if name == "" {
		name = "board"
	}
	status := fmt.Sprintf(" %s | %d tasks | %s", name, b.snap.TaskCount(), strings.Join(hints, " "))
	if b.status != "" {
		status += " | " + b.status
	}
	status = truncate(status, b.width)

	if b.err != nil {
		errStr := errorStyle.Render(truncate("action failed: "+b.err.Error(), b.width))
		return errStr + "\n" + statusBarStyle.Render(status)
	}
	return statusBarStyle.Render(status)
}

func (b *Board) viewDeleteConfirm() string {
	content := errorStyle.Render("Delete task?") + "\n\n" +
		fmt.Sprintf("  %s: %s", b.deleteID, b.deleteTitle) + "\n\n" +
		dimStyle.Render(bindingHint(b.keys.Confirm, "yes")+"  "+bindingHint(b.keys.Deny, "no"))
	return dialogStyle.Render(content)
}

func bindingHint(k key.Binding, desc string) string {
	keys := k.Keys()
	if len(keys) == 0 {
		return desc
	}
	return keys[0] + ":" + desc
}

func priorityLabel(p task.Priority) string {
	if st, ok := priorityStyles[p]; ok {
		return st.Render(string(p))
	}
	return string(p)
}

func initials(users []task.User) string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		var s string
		for _, f := range strings.Fields(u.Name) {
			s += strings.ToUpper(string([]rune(f)[0]))
		}
		if s == "" {
			s = u.ID
		}
		out = append(out, s)
	}
	return strings.Join(out, ",")
}

// wrapTitle splits a title across maxLines lines, word-wrapping at word
// boundaries. Each line is at most maxWidth characters.
func wrapTitle(title string, maxWidth, maxLines int) []string {
	if maxLines < 1 {
		maxLines = 1
	}
	if lipgloss.Width(title) <= maxWidth || maxLines == 1 {
		return []string{truncate(title, maxWidth)}
	}

	words := strings.Fields(title)
	lines := make([]string, 0, maxLines)
	var current strings.Builder

	for i, word := range words {
		if current.Len() == 0 {
			current.WriteString(word)
			continue
		}
		if lipgloss.Width(current.String())+1+lipgloss.Width(word) <= maxWidth {
			current.WriteByte(' ')
			current.WriteString(word)
			continue
		}
		lines = append(lines, truncate(current.String(), maxWidth))
		current.Reset()
		current.WriteString(word)
		if len(lines) == maxLines-1 {
			// Last line: append all remaining words.
			for _, w := range words[i+1:] {
				current.WriteByte(' ')
				current.WriteString(w)
			}
			break
		}
	}
	if current.Len() > 0 {
		lines = append(lines, truncate(current.String(), maxWidth))
	}
	return lines
}

func truncate(s string, maxLen int) string {
	if maxLen < 4 { //nolint:mnd // minimum length for truncation
		maxLen = 4
	}
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	// Slice by runes to avoid breaking multi-byte UTF-8 characters.
	runes := []rune(s)
	target := min(maxLen-3, len(runes)) //nolint:mnd // room for "..."
	for target > 0 && lipgloss.Width(string(runes[:target])) > maxLen-3 {
		target--
	}
	return string(runes[:target]) + "..."
}

// truncateStyled caps a line that already carries ANSI styling.
func truncateStyled(s string, maxLen int) string {
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(maxLen).Render(s)
}
