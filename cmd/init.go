package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/laneboard/internal/board"
	"github.com/twiced-technology-gmbh/laneboard/internal/clierr"
	"github.com/twiced-technology-gmbh/laneboard/internal/config"
	"github.com/twiced-technology-gmbh/laneboard/internal/output"
	"github.com/twiced-technology-gmbh/laneboard/internal/task"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new board",
	Long: `Creates a board directory holding config.yml and the board snapshot.

Columns default to Todo, In Progress, Review, and Done. Use --columns to
choose your own, and --sample to seed the board with demo tasks.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().String("name", "", "board name (defaults to current directory name)")
	initCmd.Flags().StringSlice("columns", nil, "comma-separated list of column ids")
	initCmd.Flags().StringSlice("wip-limit", nil, "WIP limit per column (format: column:N, repeatable)")
	initCmd.Flags().String("id-scheme", config.DefaultIDScheme,
		"task id scheme ("+strings.Join(task.Schemes, ", ")+")")
	initCmd.Flags().Bool("sample", false, "seed the board with demo tasks")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	dir := flagDir
	if dir == "" {
		dir = config.DefaultDir
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		name = filepath.Base(cwd)
	}

	cfg := config.NewDefault(name)
	cfg.IDScheme, _ = cmd.Flags().GetString("id-scheme")

	sample, _ := cmd.Flags().GetBool("sample")
	columns, _ := cmd.Flags().GetStringSlice("columns")
	if len(columns) > 0 {
		if sample {
			return clierr.New(clierr.InvalidInput, "--sample uses the default columns; drop --columns")
		}
		cfg.Columns = customColumns(columns)
		cfg.Defaults.Column = cfg.Columns[0].ID
	}

	if wipLimits, _ := cmd.Flags().GetStringSlice("wip-limit"); len(wipLimits) > 0 {
		if err := applyWIPLimits(cfg, wipLimits); err != nil {
			return err
		}
	}

	var seed *board.Board
	if sample {
		b := board.Sample()
		seed = &b
	}

	if err := config.Init(absDir, cfg, seed); err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{
			"status":  "initialized",
			"dir":     absDir,
			"name":    name,
			"config":  cfg.ConfigPath(),
			"board":   cfg.BoardPath(),
			"columns": cfg.ColumnIDs(),
			"sample":  sample,
		})
	}

	output.Messagef(os.Stdout, "Initialized board %q in %s", name, absDir)
	output.Messagef(os.Stdout, "  Config:  %s", cfg.ConfigPath())
	output.Messagef(os.Stdout, "  Board:   %s", cfg.BoardPath())
	output.Messagef(os.Stdout, "  Columns: %s", strings.Join(cfg.ColumnIDs(), ", "))
	if sample {
		output.Messagef(os.Stdout, "  Seeded with %d sample tasks", seed.TaskCount())
	}
	return nil
}

// customColumns builds column configs from plain ids. Canonical ids keep
// their usual title and color.
func customColumns(ids []string) []config.ColumnConfig {
	defaults := make(map[string]config.ColumnConfig)
	for _, c := range config.DefaultColumns() {
		defaults[c.ID] = c
	}
	out := make([]config.ColumnConfig, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if c, ok := defaults[id]; ok {
			out = append(out, c)
			continue
		}
		out = append(out, config.ColumnConfig{ID: id, Title: id})
	}
	return out
}

// applyWIPLimits parses "column:N" pairs onto the configured columns.
func applyWIPLimits(cfg *config.Config, pairs []string) error {
	for _, pair := range pairs {
		col, n, ok := strings.Cut(pair, ":")
		if !ok {
			return clierr.Newf(clierr.InvalidInput, "invalid WIP limit %q (expected column:N)", pair)
		}
		limit, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return clierr.Newf(clierr.InvalidInput, "invalid WIP limit value %q in %q", n, pair)
		}
		found := false
		for i := range cfg.Columns {
			if strings.EqualFold(cfg.Columns[i].ID, strings.TrimSpace(col)) {
				cfg.Columns[i].WIPLimit = limit
				found = true
			}
		}
		if !found {
			return clierr.Newf(clierr.ColumnNotFound, "WIP limit for unknown column %q", col).
				WithDetails(map[string]any{"column": col, "columns": cfg.ColumnIDs()})
		}
	}
	return nil
}
