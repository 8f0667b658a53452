package cmd

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/twiced-technology-gmbh/laneboard/internal/board"
	"github.com/twiced-technology-gmbh/laneboard/internal/clierr"
	"github.com/twiced-technology-gmbh/laneboard/internal/command"
	"github.com/twiced-technology-gmbh/laneboard/internal/output"
	"github.com/twiced-technology-gmbh/laneboard/internal/task"
)

var createCmd = &cobra.Command{
	Use:     "create [TITLE]",
	Aliases: []string{"add"},
	Short:   "Create a new task",
	Long: `Creates a new task at the bottom of a column.

Title can be provided as a positional argument or via --title flag.
Assignees take the form "Name" or "Name:avatar-url", tags "name" or
"name:#rrggbb".`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCreate,
}

func init() {
	createCmd.Flags().String("title", "", "task title (alternative to positional argument)")
	createCmd.Flags().String("column", "", "target column id or title (default from config)")
	registerFieldFlags(createCmd.Flags())
	rootCmd.AddCommand(createCmd)
}

// registerFieldFlags adds the task field flags shared by create and edit.
func registerFieldFlags(fs *pflag.FlagSet) {
	fs.String("priority", "", "task priority (low, medium, high)")
	fs.String("due", "", "due date (YYYY-MM-DD)")
	fs.String("description", "", "task description (markdown)")
	fs.StringArray("assignee", nil, "assignee as Name or Name:avatar-url (repeatable)")
	fs.StringSlice("tag", nil, "tag as name or name:#color (repeatable or comma-separated)")
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		switch name {
		case "tags":
			name = "tag"
		case "assignees":
			name = "assignee"
		case "body":
			name = "description"
		}
		return pflag.NormalizedName(name)
	})
}

func runCreate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	title, err := resolveCreateTitle(cmd, args)
	if err != nil {
		return err
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}

	column := cfg.Defaults.Column
	if v, _ := cmd.Flags().GetString("column"); v != "" {
		if column, err = s.Snapshot().ResolveColumn(v); err != nil {
			return err
		}
	}

	fields := task.Fields{Title: title, Priority: cfg.Defaults.Priority}
	if err := applyFieldFlags(cmd, &fields); err != nil {
		return err
	}

	res, err := s.Dispatch(cmd.Context(), command.CreateTask{ColumnID: column, Fields: fields})
	if err != nil {
		return err
	}
	if res.TaskID == "" {
		return clierr.Newf(clierr.ColumnNotFound, "column %q not found", column).
			WithDetails(map[string]any{"column": column})
	}

	if outputFormat() == output.FormatJSON {
		return reportResult(res, "")
	}
	t, _ := res.Board.Task(res.TaskID)
	output.Messagef(os.Stdout, "Created task %s: %s", t.ID, t.Title)
	output.Messagef(os.Stdout, "  Column: %s | Priority: %s", t.Column, t.Priority)
	if len(t.Assignees) > 0 {
		output.Messagef(os.Stdout, "  Assignees: %s", userNames(t.Assignees))
	}
	if len(t.Tags) > 0 {
		output.Messagef(os.Stdout, "  Tags: %s", tagList(t.Tags))
	}
	return nil
}

// resolveCreateTitle returns the task title from either the positional arg or --title flag.
func resolveCreateTitle(cmd *cobra.Command, args []string) (string, error) {
	flagTitle, _ := cmd.Flags().GetString("title")
	hasPositional := len(args) > 0
	hasFlag := flagTitle != ""

	switch {
	case hasPositional && hasFlag:
		return "", clierr.New(clierr.InvalidInput,
			"title provided both as argument and --title flag; use one or the other")
	case hasPositional:
		return args[0], nil
	case hasFlag:
		return flagTitle, nil
	default:
		return "", errors.New("title is required: provide it as an argument or with --title")
	}
}

// applyFieldFlags copies the field flags that were set onto f.
func applyFieldFlags(cmd *cobra.Command, f *task.Fields) error {
	flags := cmd.Flags()
	if v, _ := flags.GetString("priority"); v != "" {
		p, err := task.ParsePriority(v)
		if err != nil {
			return err
		}
		f.Priority = p
	}
	if v, _ := flags.GetString("due"); v != "" {
		d, err := task.ParseDate(v)
		if err != nil {
			return task.ValidateDate("due", v, err)
		}
		f.DueDate = d
	}
	if flags.Changed("description") {
		f.Description, _ = flags.GetString("description")
	}
	if flags.Changed("assignee") {
		specs, _ := flags.GetStringArray("assignee")
		f.Assignees = make([]task.User, 0, len(specs))
		for _, spec := range specs {
			if strings.TrimSpace(spec) == "" {
				continue
			}
			f.Assignees = append(f.Assignees, task.ParseUser(spec))
		}
	}
	if flags.Changed("tag") {
		specs, _ := flags.GetStringSlice("tag")
		f.Tags = make([]task.Tag, 0, len(specs))
		for _, spec := range specs {
			if strings.TrimSpace(spec) == "" {
				continue
			}
			f.Tags = append(f.Tags, task.ParseTag(spec))
		}
	}
	return nil
}

func userNames(users []task.User) string {
	names := make([]string, len(users))
	for i, u := range users {
		names[i] = u.Name
	}
	return strings.Join(names, ", ")
}

func tagList(tags []task.Tag) string {
	names := make([]string, len(tags))
	for i, tg := range tags {
		names[i] = tg.Name
	}
	return strings.Join(names, ", ")
}

// columnTitle returns the display title of a column, falling back to its id.
func columnTitle(b board.Board, id string) string {
	if c, ok := b.Column(id); ok && c.Title != "" {
		return c.Title
	}
	return id
}
