package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/laneboard/internal/board"
	"github.com/twiced-technology-gmbh/laneboard/internal/clierr"
	"github.com/twiced-technology-gmbh/laneboard/internal/command"
	"github.com/twiced-technology-gmbh/laneboard/internal/store"
)

var moveCmd = &cobra.Command{
	Use: "move ID[,ID,...] [COLUMN] | move SRC_COLUMN SRC_INDEX DEST_COLUMN DEST_INDEX",
	Short: "Move a task to another column or position",
	Long: `Moves a task. Name the destination column directly, or use --next/--prev
to step along the column order. --to picks the position in the destination
column (0 is the top); without it the task lands at the bottom.

The four-argument form addresses cards by position, exactly as a drag and
drop does: out-of-range destination indices are clamped and an empty source
slot leaves the board unchanged.`,
	Args: func(cmd *cobra.Command, args []string) error {
		switch len(args) {
		case 1, 2, 4: //nolint:mnd // by id, by id and column, by position
			return nil
		}
		return fmt.Errorf("accepts 1, 2, or 4 args, received %d", len(args))
	},
	RunE: runMove,
}

func init() {
	moveCmd.Flags().Bool("next", false, "move to the next column")
	moveCmd.Flags().Bool("prev", false, "move to the previous column")
	moveCmd.Flags().Int("to", -1, "position in the destination column (default: bottom)")
	rootCmd.AddCommand(moveCmd)
}

func runMove(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}

	if len(args) == 4 { //nolint:mnd // positional form
		mv, err := parsePositionalMove(s.Snapshot(), args)
		if err != nil {
			return err
		}
		res, err := s.Dispatch(cmd.Context(), mv)
		if err != nil {
			return err
		}
		warnOverLimit(res.Board, mv.DestColumnID)
		return reportResult(res, "Moved "+res.Detail)
	}

	ids, err := parseIDs(args[0])
	if err != nil {
		return err
	}

	if len(ids) == 1 {
		res, from, err := executeMove(cmd.Context(), s, ids[0], cmd, args)
		if err != nil {
			return err
		}
		t, _ := res.Board.Task(ids[0])
		return reportResult(res, fmt.Sprintf("Moved task %s: %s -> %s", t.ID, from, t.Column))
	}

	return runBatch(ids, func(id string) (bool, error) {
		res, _, err := executeMove(cmd.Context(), s, id, cmd, args)
		return res.Changed, err
	})
}

// parsePositionalMove builds a MoveTask from SRC_COLUMN SRC_INDEX DEST_COLUMN
// DEST_INDEX. Columns may be given by id or title.
func parsePositionalMove(b board.Board, args []string) (command.MoveTask, error) {
	src, err := b.ResolveColumn(args[0])
	if err != nil {
		return command.MoveTask{}, err
	}
	srcIdx, err := strconv.Atoi(args[1])
	if err != nil {
		return command.MoveTask{}, clierr.Newf(clierr.InvalidInput, "invalid source index %q", args[1])
	}
	dst, err := b.ResolveColumn(args[2])
	if err != nil {
		return command.MoveTask{}, err
	}
	dstIdx, err := strconv.Atoi(args[3])
	if err != nil {
		return command.MoveTask{}, clierr.Newf(clierr.InvalidInput, "invalid destination index %q", args[3])
	}
	return command.MoveTask{SourceColumnID: src, SourceIndex: srcIdx, DestColumnID: dst, DestIndex: dstIdx}, nil
}

// executeMove locates the task, resolves its destination, and dispatches a
// positional MoveTask. Returns the result and the column the task left.
func executeMove(ctx context.Context, s *store.Store, id string, cmd *cobra.Command, args []string) (command.Result, string, error) {
	b := s.Snapshot()
	t, col, row, err := findTask(b, id)
	if err != nil {
		return command.Result{}, "", err
	}

	dst, err := resolveTargetColumn(cmd, args, b, col, t.ID)
	if err != nil {
		return command.Result{}, "", err
	}

	to, _ := cmd.Flags().GetInt("to")
	if to < 0 {
		// Bottom of the destination; clamped by the engine.
		to = len(b.Columns[b.ColumnIndex(dst)].Tasks)
	}

	res, err := s.Dispatch(ctx, command.MoveTask{
		SourceColumnID: b.Columns[col].ID,
		SourceIndex:    row,
		DestColumnID:   dst,
		DestIndex:      to,
	})
	if err != nil {
		return command.Result{}, "", err
	}
	warnOverLimit(res.Board, dst)
	return res, b.Columns[col].ID, nil
}

func resolveTargetColumn(cmd *cobra.Command, args []string, b board.Board, col int, id string) (string, error) {
	next, _ := cmd.Flags().GetBool("next")
	prev, _ := cmd.Flags().GetBool("prev")

	switch {
	case len(args) == 2 && (next || prev):
		return "", clierr.New(clierr.InvalidInput, "give a column or --next/--prev, not both")
	case len(args) == 2: //nolint:mnd // positional arg
		return b.ResolveColumn(args[1])
	case next:
		if col >= len(b.Columns)-1 {
			return "", boundaryError(id, b.Columns[col].ID, "last")
		}
		return b.Columns[col+1].ID, nil
	case prev:
		if col <= 0 {
			return "", boundaryError(id, b.Columns[col].ID, "first")
		}
		return b.Columns[col-1].ID, nil
	default:
		// Reorder within the current column.
		if cmd.Flags().Changed("to") {
			return b.Columns[col].ID, nil
		}
		return "", clierr.New(clierr.InvalidInput, "provide a target column, --to, or --next/--prev")
	}
}

func boundaryError(id, column, which string) *clierr.Error {
	return clierr.Newf(clierr.BoundaryError, "task %s is already in the %s column (%s)", id, which, column).
		WithDetails(map[string]any{"id": id, "column": column})
}

// warnOverLimit prints a warning when a column holds more tasks than its
// WIP limit. Limits are advisory; the move itself always goes through.
func warnOverLimit(b board.Board, columnID string) {
	c, ok := b.Column(columnID)
	if !ok || c.WIPLimit == 0 || len(c.Tasks) <= c.WIPLimit {
		return
	}
	fmt.Fprintf(os.Stderr, "Warning: %s is over its WIP limit (%d/%d)\n", columnTitle(b, columnID), len(c.Tasks), c.WIPLimit)
}
