package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/laneboard/internal/clierr"
	"github.com/twiced-technology-gmbh/laneboard/internal/command"
	"github.com/twiced-technology-gmbh/laneboard/internal/store"
	"github.com/twiced-technology-gmbh/laneboard/internal/task"
)

var editCmd = &cobra.Command{
	Use:   "edit ID[,ID,...]",
	Short: "Edit a task",
	Long: `Modifies fields of an existing task. Only specified fields are changed.
--assignee and --tag replace the whole list; use --add-tag and --remove-tag
to adjust it. Multiple IDs can be provided as a comma-separated list.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	editCmd.Flags().String("title", "", "new title")
	editCmd.Flags().String("column", "", "move the task to the bottom of this column")
	registerFieldFlags(editCmd.Flags())
	editCmd.Flags().StringSlice("add-tag", nil, "add tags")
	editCmd.Flags().StringSlice("remove-tag", nil, "remove tags by id or name")
	editCmd.Flags().Bool("clear-due", false, "clear due date")
	editCmd.Flags().Bool("clear-assignees", false, "remove all assignees")
	editCmd.Flags().StringP("append-description", "a", "", "append text to the task description")
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}

	// Single ID: full output.
	if len(ids) == 1 {
		res, err := executeEdit(cmd.Context(), s, ids[0], cmd)
		if err != nil {
			return err
		}
		t, _ := res.Board.Task(res.TaskID)
		return reportResult(res, "Updated task "+t.ID+": "+t.Title)
	}

	return runBatch(ids, func(id string) (bool, error) {
		res, err := executeEdit(cmd.Context(), s, id, cmd)
		return res.Changed, err
	})
}

// executeEdit reads the task's current fields, overlays the flags, and
// dispatches the result as one EditTask.
func executeEdit(ctx context.Context, s *store.Store, id string, cmd *cobra.Command) (command.Result, error) {
	b := s.Snapshot()
	t, _, _, err := findTask(b, id)
	if err != nil {
		return command.Result{}, err
	}

	f := t.Fields()
	flags := cmd.Flags()
	if v, _ := flags.GetString("title"); v != "" {
		f.Title = v
	}
	if v, _ := flags.GetString("column"); v != "" {
		if f.Column, err = b.ResolveColumn(v); err != nil {
			return command.Result{}, err
		}
	}
	if err := applyFieldFlags(cmd, &f); err != nil {
		return command.Result{}, err
	}

	clearDue, _ := flags.GetBool("clear-due")
	if clearDue {
		if flags.Changed("due") {
			return command.Result{}, clierr.New(clierr.InvalidInput, "--due and --clear-due are mutually exclusive")
		}
		f.DueDate = ""
	}
	if v, _ := flags.GetBool("clear-assignees"); v {
		f.Assignees = nil
	}
	if v, _ := flags.GetStringSlice("add-tag"); len(v) > 0 {
		for _, spec := range v {
			tg := task.ParseTag(spec)
			if !hasTag(f.Tags, tg) {
				f.Tags = append(f.Tags, tg)
			}
		}
	}
	if v, _ := flags.GetStringSlice("remove-tag"); len(v) > 0 {
		f.Tags = removeTags(f.Tags, v)
	}
	if v, _ := flags.GetString("append-description"); v != "" {
		if f.Description == "" {
			f.Description = v
		} else {
			f.Description = strings.TrimRight(f.Description, "\n") + "\n\n" + v
		}
	}

	return s.Dispatch(ctx, command.EditTask{TaskID: id, Fields: f})
}

func hasTag(tags []task.Tag, tg task.Tag) bool {
	for _, existing := range tags {
		if existing.ID == tg.ID {
			return true
		}
	}
	return false
}

func removeTags(tags []task.Tag, remove []string) []task.Tag {
	out := make([]task.Tag, 0, len(tags))
	for _, tg := range tags {
		drop := false
		for _, r := range remove {
			r = strings.TrimSpace(r)
			if tg.ID == r || strings.EqualFold(tg.Name, r) {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, tg)
		}
	}
	return out
}
