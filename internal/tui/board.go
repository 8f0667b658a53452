// Package tui implements the interactive terminal board. Every change the
// user makes is turned into a command and sent to a dispatcher; the model
// itself never edits the board.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"github.com/twiced-technology-gmbh/laneboard/internal/board"
	"github.com/twiced-technology-gmbh/laneboard/internal/command"
	"github.com/twiced-technology-gmbh/laneboard/internal/task"
)

// view represents the current screen state.
type view int

const (
	viewBoard view = iota
	viewConfirmDelete
)

const (
	boardChrome     = 2 // blank line + status bar below the column area
	errorChrome     = 1 // extra line when an error is displayed
	dispatchTimeout = 10 * time.Second
)

// Dispatcher applies commands to the shared board. *store.Store satisfies it.
type Dispatcher interface {
	Snapshot() board.Board
	Dispatch(ctx context.Context, cmd command.Command) (command.Result, error)
}

// Options configures a Board model.
type Options struct {
	Name       string
	TitleLines int
	ShowTags   bool
	Logger     log.FieldLogger
	// Updates delivers snapshots changed by other writers, typically
	// Store.Subscribe fed by a file watcher.
	Updates <-chan board.Board
	Today   func() task.Date
}

// Board is the top-level bubbletea model.
type Board struct {
	store Dispatcher
	opts  Options
	keys  keyMap

	snap      board.Board
	scroll    []int // first visible row per column
	activeCol int
	activeRow int
	view      view
	width     int
	height    int
	err       error
	status    string
	pending   bool
	drag      *dragState

	deleteID    string
	deleteTitle string
}

// dragState tracks a held card. src is where it was picked up; dst is the
// slot it would land in if dropped now.
type dragState struct {
	taskID string
	srcCol int
	srcRow int
	dstCol int
	dstRow int
	mouse  bool
}

// NewBoard creates a Board model showing d's current snapshot.
func NewBoard(d Dispatcher, opts Options) *Board {
	if opts.Logger == nil {
		opts.Logger = log.StandardLogger()
	}
	if opts.TitleLines < 1 {
		opts.TitleLines = 1
	}
	if opts.Today == nil {
		opts.Today = task.Today
	}
	b := &Board{store: d, opts: opts, keys: defaultKeyMap()}
	b.applySnapshot(d.Snapshot())
	return b
}

// --- Messages ---

// SnapshotMsg carries a board changed outside this model.
type SnapshotMsg struct{ Board board.Board }

type dispatchedMsg struct {
	cmd command.Command
	res command.Result
	err error
}

func waitForSnapshot(ch <-chan board.Board) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		b, ok := <-ch
		if !ok {
			return nil
		}
		return SnapshotMsg{Board: b}
	}
}

// Init implements tea.Model.
func (b *Board) Init() tea.Cmd {
	return waitForSnapshot(b.opts.Updates)
}

// Update implements tea.Model.
func (b *Board) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return b.handleKey(msg)
	case tea.MouseMsg:
		return b.handleMouse(msg)
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		b.ensureVisible()
		return b, nil
	case SnapshotMsg:
		b.applySnapshot(msg.Board)
		return b, waitForSnapshot(b.opts.Updates)
	case dispatchedMsg:
		b.handleDispatched(msg)
		return b, nil
	}
	return b, nil
}

// View implements tea.Model.
func (b *Board) View() string {
	if b.width == 0 {
		return "Loading..."
	}
	if b.view == viewConfirmDelete {
		return b.viewDeleteConfirm()
	}
	return b.viewBoard()
}

func (b *Board) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, b.keys.ForceQuit) {
		return b, tea.Quit
	}

	switch b.view {
	case viewConfirmDelete:
		return b.handleDeleteKey(msg)
	default:
		if b.drag != nil {
			return b.handleDragKey(msg)
		}
		return b.handleBoardKey(msg)
	}
}

func (b *Board) handleBoardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, b.keys.Quit):
		return b, tea.Quit
	case key.Matches(msg, b.keys.Left):
		if b.activeCol > 0 {
			b.activeCol--
			b.clampRow()
		}
	case key.Matches(msg, b.keys.Right):
		if b.activeCol < len(b.snap.Columns)-1 {
			b.activeCol++
			b.clampRow()
		}
	case key.Matches(msg, b.keys.Down):
		if b.activeRow < len(b.columnTasks(b.activeCol))-1 {
			b.activeRow++
			b.ensureVisible()
		}
	case key.Matches(msg, b.keys.Up):
		if b.activeRow > 0 {
			b.activeRow--
			b.ensureVisible()
		}
	case key.Matches(msg, b.keys.Grab):
		b.startDrag(b.activeCol, b.activeRow, false)
	case key.Matches(msg, b.keys.MoveLeft):
		return b, b.shift(-1, 0)
	case key.Matches(msg, b.keys.MoveRight):
		return b, b.shift(1, 0)
	case key.Matches(msg, b.keys.MoveUp):
		return b, b.shift(0, -1)
	case key.Matches(msg, b.keys.MoveDown):
		return b, b.shift(0, 1)
	case key.Matches(msg, b.keys.Delete):
		b.handleDeleteStart()
	}
	return b, nil
}

func (b *Board) handleDragKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, b.keys.Cancel):
		b.cancelDrag("drag cancelled")
	case key.Matches(msg, b.keys.Drop):
		return b, b.drop()
	case key.Matches(msg, b.keys.Left):
		b.retarget(b.drag.dstCol-1, b.drag.dstRow)
	case key.Matches(msg, b.keys.Right):
		b.retarget(b.drag.dstCol+1, b.drag.dstRow)
	case key.Matches(msg, b.keys.Up):
		b.retarget(b.drag.dstCol, b.drag.dstRow-1)
	case key.Matches(msg, b.keys.Down):
		b.retarget(b.drag.dstCol, b.drag.dstRow+1)
	}
	return b, nil
}

func (b *Board) handleDeleteStart() {
	if t, ok := b.selectedTask(); ok && !b.pending {
		b.deleteID = t.ID
		b.deleteTitle = t.Title
		b.view = viewConfirmDelete
	}
}

func (b *Board) handleDeleteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, b.keys.Confirm):
		b.view = viewBoard
		return b, b.dispatch(command.DeleteTask{TaskID: b.deleteID})
	case key.Matches(msg, b.keys.Deny):
		b.view = viewBoard
	}
	return b, nil
}

// --- Drag and drop ---

func (b *Board) startDrag(col, row int, mouse bool) {
	if b.pending {
		return
	}
	tasks := b.columnTasks(col)
	if row < 0 || row >= len(tasks) {
		return
	}
	b.drag = &dragState{
		taskID: tasks[row].ID,
		srcCol: col, srcRow: row,
		dstCol: col, dstRow: row,
		mouse: mouse,
	}
	b.status = ""
	b.err = nil
	b.activeCol, b.activeRow = col, row
}

// retarget moves the drop slot, clamped to the slots the destination
// column offers: any existing index, plus the end for another column.
func (b *Board) retarget(col, row int) {
	d := b.drag
	if col < 0 || col >= len(b.snap.Columns) {
		return
	}
	limit := len(b.snap.Columns[col].Tasks)
	if col == d.srcCol {
		limit--
	}
	d.dstCol = col
	d.dstRow = max(0, min(row, limit))
	b.activeCol, b.activeRow = d.dstCol, d.dstRow
	b.ensureVisible()
}

// drop ends the drag. Dropping onto the pick-up slot sends nothing.
func (b *Board) drop() tea.Cmd {
	d := b.drag
	b.drag = nil
	if d.srcCol == d.dstCol && d.srcRow == d.dstRow {
		return nil
	}
	return b.dispatch(command.MoveTask{
		SourceColumnID: b.snap.Columns[d.srcCol].ID,
		SourceIndex:    d.srcRow,
		DestColumnID:   b.snap.Columns[d.dstCol].ID,
		DestIndex:      d.dstRow,
	})
}

// cancelDrag puts the card back without dispatching anything.
func (b *Board) cancelDrag(status string) {
	d := b.drag
	b.drag = nil
	b.activeCol, b.activeRow = d.srcCol, d.srcRow
	b.status = status
	b.clampRow()
}

// shift moves the selected card by one column or one row.
func (b *Board) shift(dc, dr int) tea.Cmd {
	if b.pending {
		return nil
	}
	if _, ok := b.selectedTask(); !ok {
		return nil
	}
	dstCol, dstRow := b.activeCol+dc, b.activeRow+dr
	if dstCol < 0 || dstCol >= len(b.snap.Columns) {
		return nil
	}
	if dc == 0 && (dstRow < 0 || dstRow >= len(b.columnTasks(dstCol))) {
		return nil
	}
	return b.dispatch(command.MoveTask{
		SourceColumnID: b.snap.Columns[b.activeCol].ID,
		SourceIndex:    b.activeRow,
		DestColumnID:   b.snap.Columns[dstCol].ID,
		DestIndex:      dstRow,
	})
}

// display is the board as drawn: the snapshot, or while dragging, the
// snapshot with the held card already in its drop slot.
func (b *Board) display() board.Board {
	d := b.drag
	if d == nil {
		return b.snap
	}
	return board.MoveTask(b.snap,
		b.snap.Columns[d.srcCol].ID, d.srcRow,
		b.snap.Columns[d.dstCol].ID, d.dstRow)
}

// --- Dispatch ---

func (b *Board) dispatch(cmd command.Command) tea.Cmd {
	b.pending = true
	d := b.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()
		res, err := d.Dispatch(ctx, cmd)
		return dispatchedMsg{cmd: cmd, res: res, err: err}
	}
}

func (b *Board) handleDispatched(msg dispatchedMsg) {
	b.pending = false
	if msg.err != nil {
		b.err = msg.err
		b.status = ""
		b.opts.Logger.WithError(msg.err).
			WithField("command", msg.cmd.CommandType()).
			Warn("action failed")
		return
	}
	b.err = nil
	b.applySnapshot(msg.res.Board)
	if !msg.res.Changed {
		b.status = "no change"
		return
	}
	b.status = msg.res.Action
	if msg.res.Detail != "" {
		b.status += " " + msg.res.Detail
	}
	if msg.res.Action != "delete" {
		b.selectTask(msg.res.TaskID)
	}
}

// applySnapshot replaces the shown board. A held card that is no longer
// where it was picked up cancels the drag.
func (b *Board) applySnapshot(nb board.Board) {
	b.snap = nb
	if len(b.scroll) != len(nb.Columns) {
		b.scroll = make([]int, len(nb.Columns))
	}
	if b.activeCol >= len(nb.Columns) {
		b.activeCol = max(0, len(nb.Columns)-1)
	}
	if d := b.drag; d != nil {
		col, row, ok := nb.FindTask(d.taskID)
		if !ok || col != d.srcCol || row != d.srcRow || d.dstCol >= len(nb.Columns) {
			b.cancelDrag("board changed, drag cancelled")
			return
		}
		b.retarget(d.dstCol, d.dstRow)
		return
	}
	b.clampRow()
}

func (b *Board) selectTask(id string) {
	if col, row, ok := b.snap.FindTask(id); ok {
		b.activeCol, b.activeRow = col, row
		b.ensureVisible()
	}
}

// --- Mouse ---

// handleMouse selects on press, drags on motion with the button held, and
// drops on release. Releasing outside the columns cancels the drag.
func (b *Board) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if b.view != viewBoard {
		return b, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || b.drag != nil {
			return b, nil
		}
		col, row, ok := b.hitTest(msg.X, msg.Y)
		if !ok {
			return b, nil
		}
		b.activeCol = col
		if row >= len(b.columnTasks(col)) {
			b.clampRow()
			return b, nil
		}
		b.activeRow = row
		b.ensureVisible()
		b.startDrag(col, row, true)
	case tea.MouseActionMotion:
		if b.drag == nil || !b.drag.mouse {
			return b, nil
		}
		if col, row, ok := b.hitTest(msg.X, msg.Y); ok {
			b.retarget(col, row)
		}
	case tea.MouseActionRelease:
		if b.drag == nil || !b.drag.mouse {
			return b, nil
		}
		if _, _, ok := b.hitTest(msg.X, msg.Y); !ok {
			b.cancelDrag("drag cancelled")
			return b, nil
		}
		return b, b.drop()
	}
	return b, nil
}

// hitTest maps screen coordinates to a column and row in the displayed
// board. A point below the last card yields row == len(tasks).
func (b *Board) hitTest(x, y int) (col, row int, ok bool) {
	disp := b.display()
	colWidth := b.columnWidth()
	if x < 0 || y < 0 || colWidth <= 0 {
		return 0, 0, false
	}
	col = x / colWidth
	if col >= len(disp.Columns) {
		return 0, 0, false
	}
	if y >= b.height-b.chromeHeight() && b.height > 0 {
		return 0, 0, false
	}

	tasks := disp.Columns[col].Tasks
	lineY := y - 1 // header
	start := b.scroll[col]
	if start > 0 {
		lineY-- // "↑ N more"
	}
	if lineY < 0 {
		return col, start, true
	}
	cardLine := 0
	for r := start; r < len(tasks); r++ {
		h := b.cardHeight(tasks[r], colWidth)
		if lineY < cardLine+h {
			return col, r, true
		}
		cardLine += h
	}
	return col, len(tasks), true
}

// --- Selection and scrolling ---

func (b *Board) columnTasks(col int) []task.Task {
	disp := b.display()
	if col < 0 || col >= len(disp.Columns) {
		return nil
	}
	return disp.Columns[col].Tasks
}

func (b *Board) selectedTask() (task.Task, bool) {
	tasks := b.columnTasks(b.activeCol)
	if b.activeRow < 0 || b.activeRow >= len(tasks) {
		return task.Task{}, false
	}
	return tasks[b.activeRow], true
}

func (b *Board) clampRow() {
	n := len(b.columnTasks(b.activeCol))
	if n == 0 {
		b.activeRow = 0
		return
	}
	if b.activeRow >= n {
		b.activeRow = n - 1
	}
	b.ensureVisible()
}

// chromeHeight returns the number of lines consumed by non-card elements below
// the column area: blank line + status bar (+ error line when an error is shown).
func (b *Board) chromeHeight() int {
	h := boardChrome
	if b.err != nil {
		h += errorChrome
	}
	return h
}

// visibleCards returns the number of cards that fit in the column,
// accounting for scroll indicator lines that consume vertical space.
func (b *Board) visibleCards(col int, width int) int {
	budget := b.height - b.chromeHeight()
	if budget < 1 {
		return 1
	}
	avail := budget - 1 // column header
	if b.scroll[col] > 0 {
		avail--
	}

	tasks := b.columnTasks(col)
	n := b.fitCards(tasks, b.scroll[col], avail, width)
	if b.scroll[col]+n < len(tasks) {
		n = max(1, b.fitCards(tasks, b.scroll[col], avail-1, width))
	}
	return n
}

// ensureVisible adjusts the active column's scroll offset so the
// selected row is within the visible window.
func (b *Board) ensureVisible() {
	if b.activeCol < 0 || b.activeCol >= len(b.scroll) {
		return
	}
	w := b.columnWidth()
	for range len(b.columnTasks(b.activeCol)) + 1 {
		maxVis := b.visibleCards(b.activeCol, w)
		switch {
		case b.activeRow >= b.scroll[b.activeCol]+maxVis:
			b.scroll[b.activeCol] = b.activeRow - maxVis + 1
		case b.activeRow < b.scroll[b.activeCol]:
			b.scroll[b.activeCol] = b.activeRow
		default:
			return
		}
	}
}

func (b *Board) fitCards(tasks []task.Task, start, avail, width int) int {
	if len(tasks) == 0 || avail < 1 {
		return 1
	}
	used, count := 0, 0
	for i := start; i < len(tasks); i++ {
		h := b.cardHeight(tasks[i], width)
		if count > 0 && used+h > avail {
			break
		}
		count++
		used += h
		if used >= avail {
			break
		}
	}
	return max(1, count)
}
