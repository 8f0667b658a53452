package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/laneboard/internal/clierr"
	"github.com/twiced-technology-gmbh/laneboard/internal/command"
	"github.com/twiced-technology-gmbh/laneboard/internal/output"
)

var applyCmd = &cobra.Command{
	Use:   "apply [FILE]",
	Short: "Apply a stream of JSON commands",
	Long: `Reads one JSON command per line from FILE (or stdin when FILE is "-" or
omitted) and applies them in order. Blank lines and lines starting with #
are skipped. Each command carries a "type" field:

  {"type":"CreateTask","column_id":"Todo","fields":{"title":"Write docs","priority":"low"}}
  {"type":"EditTask","task_id":"1","fields":{...}}
  {"type":"DeleteTask","task_id":"1"}
  {"type":"MoveTask","source_column_id":"Todo","source_index":0,"dest_column_id":"Done","dest_index":0}

Processing stops at the first invalid command unless --continue is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runApply,
}

func init() {
	applyCmd.Flags().Bool("continue", false, "keep going after a failed command")
	rootCmd.AddCommand(applyCmd)
}

// applyResult reports one line of an apply stream.
type applyResult struct {
	Line    int    `json:"line"`
	Type    string `json:"type,omitempty"`
	OK      bool   `json:"ok"`
	Changed bool   `json:"changed"`
	TaskID  string `json:"task_id,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

func runApply(cmd *cobra.Command, args []string) error {
	var in io.Reader = os.Stdin
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return clierr.Newf(clierr.InvalidInput, "opening command file: %v", err).
				WithDetails(map[string]any{"file": args[0]})
		}
		defer f.Close()
		in = f
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}

	keepGoing, _ := cmd.Flags().GetBool("continue")

	var (
		results   []applyResult
		anyFailed bool
	)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024) //nolint:mnd // allow long descriptions
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		r := applyResult{Line: line}
		c, err := command.UnmarshalCommand([]byte(text))
		if err == nil {
			r.Type = c.CommandType()
			var res command.Result
			res, err = s.Dispatch(cmd.Context(), c)
			r.Changed, r.TaskID = res.Changed, res.TaskID
		}
		if err != nil {
			anyFailed = true
			r.Error = err.Error()
			var cliErr *clierr.Error
			if errors.As(err, &cliErr) {
				r.Code = cliErr.Code
			}
			results = append(results, r)
			if !keepGoing {
				break
			}
			continue
		}
		r.OK = true
		results = append(results, r)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading commands: %w", err)
	}

	if outputFormat() == output.FormatJSON {
		if results == nil {
			results = []applyResult{}
		}
		if err := output.JSON(os.Stdout, results); err != nil {
			return err
		}
	} else {
		var succeeded, changed int
		for _, r := range results {
			switch {
			case !r.OK:
				fmt.Fprintf(os.Stderr, "Error: line %d: %s\n", r.Line, r.Error)
			case r.Changed:
				succeeded++
				changed++
			default:
				succeeded++
			}
		}
		output.Messagef(os.Stdout, "Applied %d/%d commands (%d changed the board)", succeeded, len(results), changed)
	}

	if anyFailed {
		return &clierr.SilentError{Code: 1}
	}
	return nil
}
