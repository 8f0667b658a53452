package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/laneboard/internal/board"
	"github.com/twiced-technology-gmbh/laneboard/internal/config"
	"github.com/twiced-technology-gmbh/laneboard/internal/output"
	"github.com/twiced-technology-gmbh/laneboard/internal/task"
	"github.com/twiced-technology-gmbh/laneboard/internal/watcher"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Print the board",
	Long: `Prints every column with its cards in board order. The index next to each
card is its position, as used by "laneboard move SRC_COLUMN SRC_INDEX ...".

Use --watch to keep the display live-updating. The board re-renders
automatically whenever the snapshot changes on disk (e.g., from another
terminal). Press Ctrl+C to stop.`,
	RunE: runBoard,
}

func init() {
	rootCmd.AddCommand(boardCmd)
	boardCmd.Flags().BoolP("watch", "w", false, "live-update the board on file changes")
}

func runBoard(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	render := func(b board.Board) error {
		format := outputFormat()
		if format == output.FormatJSON {
			return output.JSON(os.Stdout, output.BoardView{Name: cfg.Board.Name, Columns: b.Columns})
		}
		if format == output.FormatCompact {
			output.BoardCompact(os.Stdout, b)
			return nil
		}
		output.BoardTable(os.Stdout, cfg.Board.Name, b, task.Today())
		return nil
	}

	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		return watchBoard(cmd.Context(), cfg, render)
	}

	b, err := loadBoard(cfg)
	if err != nil {
		return err
	}
	return render(b)
}

// watchBoard renders the board once, then again after every change to the
// snapshot file until ctx is canceled.
func watchBoard(ctx context.Context, cfg *config.Config, render func(board.Board) error) error {
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	if err := render(s.Snapshot()); err != nil {
		return err
	}

	w, err := watcher.New(cfg.BoardPath(), func() {
		if err := s.Reload(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: reloading board: %v\n", err)
			return
		}
		clearScreen()
		if err := render(s.Snapshot()); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: rendering board: %v\n", err)
		}
	}, watcher.WithErrorHandler(func(watchErr error) {
		fmt.Fprintf(os.Stderr, "Warning: file watcher: %v\n", watchErr)
	}))
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer w.Close()

	fmt.Fprintln(os.Stderr, "Watching for changes... (Ctrl+C to stop)")

	w.Run(ctx)

	return nil
}

// clearScreen sends ANSI escape codes to clear the terminal and move the
// cursor to the top-left corner.
func clearScreen() {
	fmt.Fprint(os.Stdout, "\033[2J\033[H")
}
