package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/laneboard/internal/index"
	"github.com/twiced-technology-gmbh/laneboard/internal/output"
	"github.com/twiced-technology-gmbh/laneboard/internal/task"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the query index and show task counts",
	Long: `Rebuilds the SQLite index (index.db in the board directory) from the
current snapshot and reports task counts per column, assignee, and tag,
plus the tasks due before a date.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().String("due-before", "", "also list open tasks due before this date (YYYY-MM-DD, default today)")
	rootCmd.AddCommand(indexCmd)
}

type indexView struct {
	Columns   []index.Count   `json:"columns"`
	Assignees []index.Count   `json:"assignees"`
	Tags      []index.Count   `json:"tags"`
	DueBefore string          `json:"due_before"`
	Due       []index.TaskRow `json:"due"`
}

func runIndex(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	b, err := loadBoard(cfg)
	if err != nil {
		return err
	}

	cutoff := task.Today()
	if v, _ := cmd.Flags().GetString("due-before"); v != "" {
		if cutoff, err = task.ParseDate(v); err != nil {
			return task.ValidateDate("due-before", v, err)
		}
	}

	idx, err := index.Open(filepath.Join(cfg.Dir(), index.FileName))
	if err != nil {
		return err
	}
	defer idx.Close()

	if err := idx.Rebuild(b); err != nil {
		return fmt.Errorf("rebuilding index: %w", err)
	}

	view := indexView{DueBefore: cutoff.String()}
	if view.Columns, err = idx.CountByColumn(); err != nil {
		return err
	}
	if view.Assignees, err = idx.CountByAssignee(); err != nil {
		return err
	}
	if view.Tags, err = idx.CountByTag(); err != nil {
		return err
	}
	if view.Due, err = idx.DueBefore(cutoff.String(), b.LastColumn()); err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, view)
	}

	output.CountTable(os.Stdout, "COLUMN", view.Columns)
	fmt.Fprintln(os.Stdout)
	output.CountTable(os.Stdout, "ASSIGNEE", view.Assignees)
	fmt.Fprintln(os.Stdout)
	output.CountTable(os.Stdout, "TAG", view.Tags)
	fmt.Fprintln(os.Stdout)
	output.Messagef(os.Stdout, "Due before %s: %d", view.DueBefore, len(view.Due))
	for _, r := range view.Due {
		output.Messagef(os.Stdout, "  %s [%s/%s] %s due:%s", r.TaskID, r.Column, r.Priority, r.Title, r.DueDate)
	}
	return nil
}
