package cmd

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/laneboard/internal/clierr"
	"github.com/twiced-technology-gmbh/laneboard/internal/config"
	"github.com/twiced-technology-gmbh/laneboard/internal/output"
	"github.com/twiced-technology-gmbh/laneboard/internal/store"
	"github.com/twiced-technology-gmbh/laneboard/internal/task"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify board configuration",
	Long:  `View the full configuration, get a specific key, or set a writable value.`,
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2), //nolint:mnd // key and value
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// configAccessor describes how to get and set a config key.
type configAccessor struct {
	get      func(*config.Config) any
	set      func(*config.Config, string) error
	writable bool
}

func configAccessors() map[string]configAccessor {
	accessors := baseConfigAccessors()
	addDisplayConfigAccessors(accessors)
	return accessors
}

func baseConfigAccessors() map[string]configAccessor {
	return map[string]configAccessor{
		"board.name": {
			get:      func(c *config.Config) any { return c.Board.Name },
			set:      func(c *config.Config, v string) error { c.Board.Name = v; return nil },
			writable: true,
		},
		"board.description": {
			get:      func(c *config.Config) any { return c.Board.Description },
			set:      func(c *config.Config, v string) error { c.Board.Description = v; return nil },
			writable: true,
		},
		"board_file": {
			get: func(c *config.Config) any { return c.BoardFile },
		},
		"columns": {
			get: func(c *config.Config) any { return c.ColumnIDs() },
		},
		"priorities": {
			get: func(_ *config.Config) any { return priorityNames() },
		},
		"defaults.column": {
			get: func(c *config.Config) any { return c.Defaults.Column },
			set: func(c *config.Config, v string) error {
				if !slices.Contains(c.ColumnIDs(), v) {
					return clierr.Newf(clierr.InvalidInput,
						"invalid default column %q; allowed: %s", v, strings.Join(c.ColumnIDs(), ", "))
				}
				c.Defaults.Column = v
				return nil
			},
			writable: true,
		},
		"defaults.priority": {
			get: func(c *config.Config) any { return c.Defaults.Priority },
			set: func(c *config.Config, v string) error {
				p, err := task.ParsePriority(v)
				if err != nil {
					return err
				}
				c.Defaults.Priority = p
				return nil
			},
			writable: true,
		},
		"id_scheme": {
			get: func(c *config.Config) any { return c.IDScheme },
			set: func(c *config.Config, v string) error {
				if !slices.Contains(task.Schemes, v) {
					return clierr.Newf(clierr.InvalidInput,
						"invalid id_scheme %q; allowed: %s", v, strings.Join(task.Schemes, ", "))
				}
				c.IDScheme = v
				return nil
			},
			writable: true,
		},
		"version": {
			get: func(c *config.Config) any { return c.Version },
		},
		"wip_limits": {
			get: func(c *config.Config) any {
				limits := make(map[string]int)
				for _, col := range c.Columns {
					if col.WIPLimit > 0 {
						limits[col.ID] = col.WIPLimit
					}
				}
				return limits
			},
		},
	}
}

func addDisplayConfigAccessors(accessors map[string]configAccessor) {
	accessors["log.level"] = configAccessor{
		get:      func(c *config.Config) any { return c.Log.Level },
		set:      func(c *config.Config, v string) error { c.Log.Level = v; return nil },
		writable: true,
	}
	accessors["log.format"] = configAccessor{
		get:      func(c *config.Config) any { return c.Log.Format },
		set:      func(c *config.Config, v string) error { c.Log.Format = v; return nil },
		writable: true,
	}
	accessors["tui.title_lines"] = configAccessor{
		get: func(c *config.Config) any { return c.TitleLines() },
		set: func(c *config.Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return clierr.Newf(clierr.InvalidInput,
					"invalid tui.title_lines %q: must be an integer", v)
			}
			c.TUI.TitleLines = n
			return nil // validation handles range check
		},
		writable: true,
	}
	accessors["tui.show_tags"] = configAccessor{
		get: func(c *config.Config) any { return c.TUI.ShowTags },
		set: func(c *config.Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return clierr.Newf(clierr.InvalidInput,
					"invalid tui.show_tags %q: must be true or false", v)
			}
			c.TUI.ShowTags = b
			return nil
		},
		writable: true,
	}
}

// allConfigKeys returns config keys in display order.
func allConfigKeys() []string {
	return []string{
		"version",
		"board.name",
		"board.description",
		"board_file",
		"columns",
		"priorities",
		"defaults.column",
		"defaults.priority",
		"id_scheme",
		"wip_limits",
		"log.level",
		"log.format",
		"tui.title_lines",
		"tui.show_tags",
	}
}

func priorityNames() []string {
	names := make([]string, len(task.Priorities))
	for i, p := range task.Priorities {
		names[i] = string(p)
	}
	return names
}

// columnAccessor addresses one field of one column as columns.<id>.<field>.
// Column ids may contain dots and spaces, so the field is taken from the end.
func columnAccessor(key string) (configAccessor, bool) {
	rest, ok := strings.CutPrefix(key, "columns.")
	if !ok {
		return configAccessor{}, false
	}
	dot := strings.LastIndex(rest, ".")
	if dot <= 0 {
		return configAccessor{}, false
	}
	id, field := rest[:dot], rest[dot+1:]

	column := func(c *config.Config) *config.ColumnConfig {
		for i := range c.Columns {
			if c.Columns[i].ID == id {
				return &c.Columns[i]
			}
		}
		return nil
	}
	missing := clierr.Newf(clierr.ColumnNotFound, "column %q not found", id).
		WithDetails(map[string]any{"column": id})

	switch field {
	case "title":
		return configAccessor{
			get: func(c *config.Config) any {
				if col := column(c); col != nil {
					return col.Title
				}
				return nil
			},
			set: func(c *config.Config, v string) error {
				col := column(c)
				if col == nil {
					return missing
				}
				col.Title = v
				return nil
			},
			writable: true,
		}, true
	case "color":
		return configAccessor{
			get: func(c *config.Config) any {
				if col := column(c); col != nil {
					return col.Color
				}
				return nil
			},
			set: func(c *config.Config, v string) error {
				col := column(c)
				if col == nil {
					return missing
				}
				col.Color = v
				return nil
			},
			writable: true,
		}, true
	case "wip_limit":
		return configAccessor{
			get: func(c *config.Config) any {
				if col := column(c); col != nil {
					return col.WIPLimit
				}
				return nil
			},
			set: func(c *config.Config, v string) error {
				col := column(c)
				if col == nil {
					return missing
				}
				n, err := strconv.Atoi(v)
				if err != nil {
					return clierr.Newf(clierr.InvalidInput, "invalid wip_limit %q: must be an integer", v)
				}
				col.WIPLimit = n
				return nil
			},
			writable: true,
		}, true
	}
	return configAccessor{}, false
}

func lookupAccessor(key string) (configAccessor, error) {
	if acc, ok := configAccessors()[key]; ok {
		return acc, nil
	}
	if acc, ok := columnAccessor(key); ok {
		return acc, nil
	}
	return configAccessor{}, clierr.Newf(clierr.InvalidInput, "unknown config key %q", key).
		WithDetails(map[string]any{"key": key, "keys": allConfigKeys()})
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	accessors := configAccessors()
	if outputFormat() == output.FormatJSON {
		m := make(map[string]any, len(accessors)+1)
		for _, key := range allConfigKeys() {
			m[key] = accessors[key].get(cfg)
		}
		m["column_layout"] = cfg.Columns
		return output.JSON(os.Stdout, m)
	}

	for _, key := range allConfigKeys() {
		fmt.Fprintf(os.Stdout, "%-20s %s\n", key, formatConfigValue(accessors[key].get(cfg)))
	}
	fmt.Fprintln(os.Stdout)
	for _, col := range cfg.Columns {
		limit := "--"
		if col.WIPLimit > 0 {
			limit = strconv.Itoa(col.WIPLimit)
		}
		fmt.Fprintf(os.Stdout, "  %-14s %-14s %-8s wip=%s\n", col.ID, col.Title, col.Color, limit)
	}
	return nil
}

func runConfigGet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	acc, err := lookupAccessor(args[0])
	if err != nil {
		return err
	}

	val := acc.get(cfg)
	if val == nil {
		return clierr.Newf(clierr.ColumnNotFound, "no value for %q", args[0])
	}
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, val)
	}
	fmt.Fprintln(os.Stdout, formatConfigValue(val))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key, value := args[0], args[1]
	acc, err := lookupAccessor(key)
	if err != nil {
		return err
	}
	if !acc.writable {
		return clierr.Newf(clierr.InvalidInput, "config key %q is read-only", key)
	}
	if err := acc.set(cfg, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return clierr.New(clierr.InvalidInput, err.Error()).
			WithDetails(map[string]any{"key": key, "value": value})
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	// Column changes reach the snapshot on its next load; apply them now so
	// readers of board.yml agree with config.yml.
	if strings.HasPrefix(key, "columns.") {
		if err := resyncBoard(cmd.Context(), cfg); err != nil {
			return err
		}
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"key": key, "value": acc.get(cfg)})
	}
	output.Messagef(os.Stdout, "Set %s = %s", key, formatConfigValue(acc.get(cfg)))
	return nil
}

// resyncBoard rewrites the snapshot under the board lock with the
// configured column layout.
func resyncBoard(ctx context.Context, cfg *config.Config) error {
	backend := store.NewFileBackend(cfg.BoardPath(), cfg.ColumnSpecs())
	unlock, err := backend.Lock(ctx)
	if err != nil {
		return fmt.Errorf("acquiring board lock: %w", err)
	}
	defer unlock() //nolint:errcheck // best-effort unlock on exit

	b, err := backend.Load()
	if err != nil {
		return err
	}
	return backend.Save(b)
}

func formatConfigValue(val any) string {
	switch v := val.(type) {
	case []string:
		return strings.Join(v, ", ")
	case map[string]int:
		if len(v) == 0 {
			return "--"
		}
		parts := make([]string, 0, len(v))
		for k, n := range v {
			parts = append(parts, k+"="+strconv.Itoa(n))
		}
		sort.Strings(parts)
		return strings.Join(parts, ", ")
	case string:
		if v == "" {
			return "--"
		}
		return v
	default:
		return fmt.Sprint(v)
	}
}
