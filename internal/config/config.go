package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	log "github.com/sirupsen/logrus"
	"go.yaml.in/yaml/v3"

	"github.com/twiced-technology-gmbh/laneboard/internal/board"
	"github.com/twiced-technology-gmbh/laneboard/internal/clierr"
	"github.com/twiced-technology-gmbh/laneboard/internal/logging"
	"github.com/twiced-technology-gmbh/laneboard/internal/task"
)

const (
	fileMode = 0o600
	dirMode  = 0o750
)

// Sentinel errors.
var (
	ErrNotFound = errors.New("no board found (run 'laneboard init' to create one)")
	ErrInvalid  = errors.New("invalid config")
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Config represents the board configuration.
type Config struct {
	Version   int            `yaml:"version"`
	Board     BoardConfig    `yaml:"board"`
	BoardFile string         `yaml:"board_file"`
	Columns   []ColumnConfig `yaml:"columns"`
	Defaults  DefaultsConfig `yaml:"defaults"`
	IDScheme  string         `yaml:"id_scheme"`
	Log       LogConfig      `yaml:"log,omitempty"`
	TUI       TUIConfig      `yaml:"tui,omitempty"`

	// dir is the absolute path to the board directory (not serialized).
	dir string `yaml:"-"`
}

// BoardConfig holds board metadata.
type BoardConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// ColumnConfig defines one lane.
type ColumnConfig struct {
	ID       string `yaml:"id" json:"id"`
	Title    string `yaml:"title" json:"title"`
	Color    string `yaml:"color" json:"color"`
	WIPLimit int    `yaml:"wip_limit,omitempty" json:"wip_limit,omitempty"`
}

// UnmarshalYAML accepts either a plain string (v1: "todo") or a mapping.
func (c *ColumnConfig) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		c.ID = value.Value
		return nil
	}
	type plain ColumnConfig
	return value.Decode((*plain)(c))
}

// DefaultsConfig holds default values for new tasks.
type DefaultsConfig struct {
	Column   string        `yaml:"column"`
	Priority task.Priority `yaml:"priority"`
}

// LogConfig selects diagnostic logging.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// TUIConfig holds TUI-specific display settings.
type TUIConfig struct {
	TitleLines int  `yaml:"title_lines,omitempty"`
	ShowTags   bool `yaml:"show_tags,omitempty"`
}

// Dir returns the absolute path to the board directory.
func (c *Config) Dir() string {
	return c.dir
}

// SetDir sets the board directory path on the config.
func (c *Config) SetDir(dir string) {
	c.dir = dir
}

// ConfigPath returns the absolute path to the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.dir, ConfigFileName)
}

// BoardPath returns the absolute path to the board snapshot.
func (c *Config) BoardPath() string {
	return filepath.Join(c.dir, c.BoardFile)
}

// NewDefault creates a Config with default values.
func NewDefault(name string) *Config {
	return &Config{
		Version:   CurrentVersion,
		Board:     BoardConfig{Name: name},
		BoardFile: DefaultBoardFile,
		Columns:   DefaultColumns(),
		Defaults: DefaultsConfig{
			Column:   DefaultColumn,
			Priority: DefaultPriority,
		},
		IDScheme: DefaultIDScheme,
		TUI:      TUIConfig{TitleLines: DefaultTitleLines, ShowTags: true},
	}
}

// ColumnIDs returns the ordered list of column ids.
func (c *Config) ColumnIDs() []string {
	ids := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		ids[i] = col.ID
	}
	return ids
}

// ColumnSpecs converts the configured columns into board layout specs.
func (c *Config) ColumnSpecs() []board.ColumnSpec {
	specs := make([]board.ColumnSpec, len(c.Columns))
	for i, col := range c.Columns {
		specs[i] = board.ColumnSpec{ID: col.ID, Title: col.Title, Color: col.Color, WIPLimit: col.WIPLimit}
	}
	return specs
}

// IDGenerator returns the generator for the configured id scheme.
func (c *Config) IDGenerator() (task.IDGenerator, error) {
	return task.NewGenerator(c.IDScheme)
}

// TitleLines returns the configured number of title lines for TUI cards.
func (c *Config) TitleLines() int {
	if c.TUI.TitleLines == 0 {
		return DefaultTitleLines
	}
	return c.TUI.TitleLines
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported version %d (expected %d)", ErrInvalid, c.Version, CurrentVersion)
	}
	if c.Board.Name == "" {
		return fmt.Errorf("%w: board.name is required", ErrInvalid)
	}
	if c.BoardFile == "" || filepath.IsAbs(c.BoardFile) || filepath.Base(c.BoardFile) != c.BoardFile {
		return fmt.Errorf("%w: board_file must be a plain file name", ErrInvalid)
	}
	if err := c.validateColumns(); err != nil {
		return err
	}
	if indexOf(c.ColumnIDs(), c.Defaults.Column) < 0 {
		return fmt.Errorf("%w: default column %q not in columns list", ErrInvalid, c.Defaults.Column)
	}
	if !c.Defaults.Priority.Valid() {
		return fmt.Errorf("%w: default priority %q is not one of %v", ErrInvalid, c.Defaults.Priority, task.Priorities)
	}
	if indexOf(task.Schemes, c.IDScheme) < 0 {
		return fmt.Errorf("%w: id_scheme %q is not one of %v", ErrInvalid, c.IDScheme, task.Schemes)
	}
	if err := c.validateLog(); err != nil {
		return err
	}
	const minTitleLines, maxTitleLines = 1, 3
	if c.TUI.TitleLines != 0 && (c.TUI.TitleLines < minTitleLines || c.TUI.TitleLines > maxTitleLines) {
		return fmt.Errorf("%w: tui.title_lines must be between %d and %d", ErrInvalid, minTitleLines, maxTitleLines)
	}
	return nil
}

func (c *Config) validateColumns() error {
	if len(c.Columns) == 0 {
		return fmt.Errorf("%w: at least 1 column is required", ErrInvalid)
	}
	seen := make(map[string]bool, len(c.Columns))
	for i, col := range c.Columns {
		if col.ID == "" {
			return fmt.Errorf("%w: columns[%d].id is required", ErrInvalid, i)
		}
		if seen[col.ID] {
			return fmt.Errorf("%w: duplicate column id %q", ErrInvalid, col.ID)
		}
		seen[col.ID] = true
		if col.Title == "" {
			return fmt.Errorf("%w: column %q needs a title", ErrInvalid, col.ID)
		}
		if col.Color != "" && !hexColor.MatchString(col.Color) {
			return fmt.Errorf("%w: column %q color %q is not #rrggbb", ErrInvalid, col.ID, col.Color)
		}
		if col.WIPLimit < 0 {
			return fmt.Errorf("%w: column %q wip_limit must be >= 0", ErrInvalid, col.ID)
		}
	}
	return nil
}

func (c *Config) validateLog() error {
	if c.Log.Level != "" {
		if _, err := log.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("%w: log.level: %w", ErrInvalid, err)
		}
	}
	switch c.Log.Format {
	case "", logging.FormatText, logging.FormatJSON:
		return nil
	default:
		return fmt.Errorf("%w: log.format %q must be %s or %s", ErrInvalid, c.Log.Format, logging.FormatText, logging.FormatJSON)
	}
}

// Init creates a new board directory holding cfg and an initial snapshot.
// The snapshot is seed when given, otherwise an empty board with the
// configured columns.
func Init(dir string, cfg *Config, seed *board.Board) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}
	cfg.SetDir(absDir)

	if _, err := os.Stat(cfg.ConfigPath()); err == nil {
		return clierr.Newf(clierr.BoardAlreadyExists, "board already exists in %s", absDir).
			WithDetails(map[string]any{"dir": absDir})
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(absDir, dirMode); err != nil {
		return fmt.Errorf("creating board directory: %w", err)
	}

	b := board.New(cfg.ColumnSpecs())
	if seed != nil {
		if b, err = board.Reconcile(*seed, cfg.ColumnSpecs()); err != nil {
			return err
		}
	}
	if err := board.Save(cfg.BoardPath(), b); err != nil {
		return fmt.Errorf("writing board: %w", err)
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Save writes the config to its config file.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(c.ConfigPath(), data, fileMode)
}

// Load reads and validates a config from the given board directory.
func Load(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	path := filepath.Join(absDir, ConfigFileName)
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted source
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.dir = absDir

	// Migrate old config versions forward before validating.
	oldVersion := cfg.Version
	if err := migrate(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Persist migrated config so future loads skip re-migration.
	if cfg.Version != oldVersion {
		if oldVersion < 2 { //nolint:mnd // v2 canonicalized column ids
			if err := migrateBoardFile(&cfg); err != nil {
				return nil, fmt.Errorf("migrating board file: %w", err)
			}
		}
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("saving migrated config: %w", err)
		}
	}

	return &cfg, nil
}

// FindDir walks upward from startDir looking for a board directory
// containing config.yml. Returns the absolute path to the board directory.
func FindDir(startDir string) (string, error) {
	absStart, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	dir := absStart
	for {
		candidate := filepath.Join(dir, DefaultDir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return filepath.Join(dir, DefaultDir), nil
		}

		// Also check if we're inside the board directory itself.
		candidate = filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", clierr.New(clierr.BoardNotFound,
				"no board found (run 'laneboard init' to create one)")
		}
		dir = parent
	}
}

func indexOf(slice []string, item string) int {
	for i, s := range slice {
		if s == item {
			return i
		}
	}
	return -1
}
