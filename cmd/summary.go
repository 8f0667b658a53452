package cmd

import (
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/laneboard/internal/board"
	"github.com/twiced-technology-gmbh/laneboard/internal/clierr"
	"github.com/twiced-technology-gmbh/laneboard/internal/output"
	"github.com/twiced-technology-gmbh/laneboard/internal/task"
)

var summaryCmd = &cobra.Command{
	Use:     "summary",
	Aliases: []string{"overview"},
	Short:   "Show board summary",
	Long: `Displays a summary of the board: task counts per column, WIP utilization,
overdue counts, and priority distribution.`,
	RunE: runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().BoolP("watch", "w", false, "live-update the summary on file changes")
	summaryCmd.Flags().String("group-by", "", "group by field ("+strings.Join(board.ValidGroupByFields(), ", ")+")")
}

func runSummary(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	groupBy, _ := cmd.Flags().GetString("group-by")
	if groupBy != "" && !slices.Contains(board.ValidGroupByFields(), groupBy) {
		return clierr.Newf(clierr.InvalidGroupBy, "invalid --group-by field %q; valid: %s",
			groupBy, strings.Join(board.ValidGroupByFields(), ", "))
	}

	render := func(b board.Board) error {
		format := outputFormat()
		if groupBy != "" {
			grouped := b.GroupBy(groupBy)
			switch format {
			case output.FormatJSON:
				return output.JSON(os.Stdout, grouped)
			case output.FormatCompact:
				output.GroupedCompact(os.Stdout, grouped)
			default:
				output.GroupedTable(os.Stdout, grouped)
			}
			return nil
		}

		summary := b.Summary(cfg.Board.Name, task.Today())
		switch format {
		case output.FormatJSON:
			return output.JSON(os.Stdout, summary)
		case output.FormatCompact:
			output.OverviewCompact(os.Stdout, summary)
		default:
			output.OverviewTable(os.Stdout, summary)
		}
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
