// Package cmd implements the laneboard CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/laneboard/internal/board"
	"github.com/twiced-technology-gmbh/laneboard/internal/clierr"
	"github.com/twiced-technology-gmbh/laneboard/internal/command"
	"github.com/twiced-technology-gmbh/laneboard/internal/config"
	"github.com/twiced-technology-gmbh/laneboard/internal/logging"
	"github.com/twiced-technology-gmbh/laneboard/internal/output"
	"github.com/twiced-technology-gmbh/laneboard/internal/store"
	"github.com/twiced-technology-gmbh/laneboard/internal/task"
)

// version is set at build time via ldflags.
var version = "dev"

// Global flags.
var (
	flagJSON     bool
	flagTable    bool
	flagCompact  bool
	flagDir      string
	flagNoColor  bool
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "laneboard",
	Short: "Drag-and-drop task board for the terminal",
	Long: `laneboard keeps a task board in a YAML snapshot next to your code.
Run laneboard with no arguments to open the interactive board, or use the
subcommands to create, edit, move, and query tasks from scripts.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runTUI,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if flagNoColor || os.Getenv("NO_COLOR") != "" {
			output.DisableColor()
		}
		if err := logging.Setup(logging.Options{Level: flagLogLevel}); err != nil {
			return clierr.New(clierr.InvalidInput, err.Error())
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagTable, "table", false, "output as table")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "compact", false, "compact one-line-per-record output")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "oneline", false, "alias for --compact")
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "path to the board directory")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable color output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "diagnostic log level (debug, info, warn, error)")
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	_, err := rootCmd.ExecuteContextC(ctx)
	stop()
	if err == nil {
		return
	}

	// SilentError: results are already printed, only the exit code remains.
	var silent *clierr.SilentError
	if errors.As(err, &silent) {
		os.Exit(silent.Code)
	}

	if outputFormat() == output.FormatJSON {
		var cliErr *clierr.Error
		if errors.As(err, &cliErr) {
			output.JSONError(os.Stdout, cliErr.Code, cliErr.Message, cliErr.Details)
			os.Exit(cliErr.ExitCode())
		}
		// Anything unstructured is reported as INTERNAL_ERROR.
		output.JSONError(os.Stdout, clierr.InternalError, err.Error(), nil)
		os.Exit(2) //nolint:mnd // exit code 2 for internal errors
	}

	fmt.Fprintln(os.Stderr, "Error:", err)
	var cliErr *clierr.Error
	if errors.As(err, &cliErr) {
		os.Exit(cliErr.ExitCode())
	}
	os.Exit(1)
}

// resolveDir returns the board directory: --dir, or the nearest laneboard/
// directory above the working directory.
func resolveDir() (string, error) {
	if flagDir != "" {
		return flagDir, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return config.FindDir(cwd)
}

// loadConfig finds and loads the board config. Logging picks up the
// config's level and format unless --log-level was given.
func loadConfig() (*config.Config, error) {
	dir, err := resolveDir()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(dir)
	if errors.Is(err, config.ErrNotFound) {
		return nil, clierr.New(clierr.BoardNotFound, err.Error()).
			WithDetails(map[string]any{"dir": dir})
	}
	if err != nil {
		return nil, err
	}

	opts := logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format}
	if flagLogLevel != "" {
		opts.Level = flagLogLevel
	}
	if err := logging.Setup(opts); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openStore opens a store over the configured snapshot file. Every dispatch
// reloads, applies, and saves under the board's file lock.
func openStore(cfg *config.Config) (*store.Store, error) {
	gen, err := cfg.IDGenerator()
	if err != nil {
		return nil, err
	}
	backend := store.NewFileBackend(cfg.BoardPath(), cfg.ColumnSpecs())
	return store.Open(backend, gen,
		store.WithLogger(log.WithField("board", cfg.Board.Name)),
		store.WithActivityLog(cfg.Dir()),
	)
}

// loadBoard reads the current snapshot for read-only commands.
func loadBoard(cfg *config.Config) (board.Board, error) {
	return store.NewFileBackend(cfg.BoardPath(), cfg.ColumnSpecs()).Load()
}

// outputFormat returns the detected output format from flags/env.
func outputFormat() output.Format {
	return output.Detect(flagJSON, flagTable, flagCompact)
}

// findTask looks a task up by id for commands that need to know where it is.
func findTask(b board.Board, id string) (t task.Task, col, row int, err error) {
	col, row, ok := b.FindTask(id)
	if !ok {
		return task.Task{}, 0, 0, clierr.Newf(clierr.TaskNotFound, "task %s not found", id).
			WithDetails(map[string]any{"id": id})
	}
	return b.Columns[col].Tasks[row], col, row, nil
}

// reportResult prints the outcome of one dispatched command. A command that
// left the board unchanged is reported as such, never as an error.
func reportResult(res command.Result, message string) error {
	if outputFormat() == output.FormatJSON {
		out := output.MutationResult{
			Action:  res.Action,
			Changed: res.Changed,
			TaskID:  res.TaskID,
			Detail:  res.Detail,
		}
		if t, ok := res.Board.Task(res.TaskID); ok && res.Action != "delete" {
			out.Task = &t
		}
		return output.JSON(os.Stdout, out)
	}
	if !res.Changed {
		output.Messagef(os.Stdout, "No change")
		return nil
	}
	output.Messagef(os.Stdout, "%s", message)
	return nil
}

// parseIDs splits a comma-separated id list, dropping blanks and duplicates.
func parseIDs(arg string) ([]string, error) {
	var ids []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(arg, ",") {
		id := strings.TrimSpace(part)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, clierr.Newf(clierr.InvalidInput, "no task id in %q", arg)
	}
	return ids, nil
}

// runBatch executes fn for each ID and collects results. Returns a SilentError
// with exit code 1 if any operation failed (after outputting results).
func runBatch(ids []string, fn func(string) (changed bool, err error)) error {
	results := make([]output.BatchResult, 0, len(ids))
	anyFailed := false

	for _, id := range ids {
		changed, err := fn(id)
		if err != nil {
			anyFailed = true
			var cliErr *clierr.Error
			if errors.As(err, &cliErr) {
				results = append(results, output.BatchResult{ID: id, Error: cliErr.Message, Code: cliErr.Code})
			} else {
				results = append(results, output.BatchResult{ID: id, Error: err.Error()})
			}
			continue
		}
		results = append(results, output.BatchResult{ID: id, OK: true, Changed: changed})
	}

	if outputFormat() == output.FormatJSON {
		if err := output.JSON(os.Stdout, results); err != nil {
			return err
		}
	} else {
		var succeeded int
		for _, r := range results {
			if r.OK {
				succeeded++
			} else {
				fmt.Fprintf(os.Stderr, "Error: task %s: %s\n", r.ID, r.Error)
			}
		}
		output.Messagef(os.Stdout, "Completed %d/%d operations", succeeded, len(ids))
	}

	if anyFailed {
		return &clierr.SilentError{Code: 1}
	}
	return nil
}
