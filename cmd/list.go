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

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long:    `Lists tasks with optional filtering, sorting, and output format control.`,
	RunE:    runList,
}

func init() {
	listCmd.Flags().StringSlice("column", nil, "filter by column id or title (comma-separated)")
	listCmd.Flags().StringSlice("priority", nil, "filter by priority (comma-separated)")
	listCmd.Flags().String("assignee", "", "filter by assignee id or name")
	listCmd.Flags().String("tag", "", "filter by tag id or name")
	listCmd.Flags().StringP("search", "s", "", "search tasks by title, description, or tags (case-insensitive)")
	listCmd.Flags().Bool("overdue", false, "show only overdue tasks")
	listCmd.Flags().String("sort", board.SortBoard, "sort field ("+strings.Join(board.ValidSortFields(), ", ")+")")
	listCmd.Flags().BoolP("reverse", "r", false, "reverse sort order")
	listCmd.Flags().IntP("limit", "n", 0, "limit number of results")
	listCmd.Flags().String("group-by", "", "group results by field ("+strings.Join(board.ValidGroupByFields(), ", ")+")")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	b, err := loadBoard(cfg)
	if err != nil {
		return err
	}

	columns, _ := cmd.Flags().GetStringSlice("column")
	priorities, _ := cmd.Flags().GetStringSlice("priority")
	assignee, _ := cmd.Flags().GetString("assignee")
	tag, _ := cmd.Flags().GetString("tag")
	search, _ := cmd.Flags().GetString("search")
	overdue, _ := cmd.Flags().GetBool("overdue")
	sortBy, _ := cmd.Flags().GetString("sort")
	reverse, _ := cmd.Flags().GetBool("reverse")
	limit, _ := cmd.Flags().GetInt("limit")
	groupBy, _ := cmd.Flags().GetString("group-by")

	if groupBy != "" && !slices.Contains(board.ValidGroupByFields(), groupBy) {
		return clierr.Newf(clierr.InvalidGroupBy, "invalid --group-by field %q; valid: %s",
			groupBy, strings.Join(board.ValidGroupByFields(), ", "))
	}
	if !slices.Contains(board.ValidSortFields(), sortBy) {
		return clierr.Newf(clierr.InvalidInput, "invalid --sort field %q; valid: %s",
			sortBy, strings.Join(board.ValidSortFields(), ", "))
	}

	filter := board.FilterOptions{Assignee: assignee, Tag: tag, Search: search}
	for _, c := range columns {
		id, err := b.ResolveColumn(strings.TrimSpace(c))
		if err != nil {
			return err
		}
		filter.Columns = append(filter.Columns, id)
	}
	for _, p := range priorities {
		prio, err := task.ParsePriority(strings.TrimSpace(p))
		if err != nil {
			return err
		}
		filter.Priorities = append(filter.Priorities, prio)
	}
	if overdue {
		filter.OverdueOn = task.Today()
	}

	tasks := board.Filter(b.Tasks(), filter, b.LastColumn())
	board.Sort(tasks, sortBy, reverse)
	if limit > 0 && len(tasks) > limit {
		tasks = tasks[:limit]
	}

	if groupBy != "" {
		grouped := restrict(b, tasks).GroupBy(groupBy)
		if outputFormat() == output.FormatJSON {
			return output.JSON(os.Stdout, grouped)
		}
		if outputFormat() == output.FormatCompact {
			output.GroupedCompact(os.Stdout, grouped)
			return nil
		}
		output.GroupedTable(os.Stdout, grouped)
		return nil
	}

	return outputTaskList(tasks, b.LastColumn())
}

// restrict returns b with every task not in keep removed. Column layout is
// preserved so grouped counts still list every lane.
func restrict(b board.Board, keep []task.Task) board.Board {
	ids := make(map[string]bool, len(keep))
	for _, t := range keep {
		ids[t.ID] = true
	}
	out := b.Clone()
	for i := range out.Columns {
		out.Columns[i].Tasks = slices.DeleteFunc(out.Columns[i].Tasks, func(t task.Task) bool {
			return !ids[t.ID]
		})
	}
	return out
}

func outputTaskList(tasks []task.Task, lastColumn string) error {
	format := outputFormat()
	if format == output.FormatJSON {
		if tasks == nil {
			tasks = []task.Task{}
		}
		return output.JSON(os.Stdout, tasks)
	}
	if format == output.FormatCompact {
		output.TaskCompact(os.Stdout, tasks)
		return nil
	}

	output.TaskTable(os.Stdout, tasks, task.Today(), lastColumn)
	return nil
}
