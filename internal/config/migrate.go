package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/twiced-technology-gmbh/laneboard/internal/board"
)

// migrate upgrades a config from its current version to CurrentVersion.
// Each migration function transforms the config one version forward.
// Returns an error if the config version is newer than what this binary supports.
func migrate(cfg *Config) error {
	if cfg.Version == CurrentVersion {
		return nil
	}
	if cfg.Version > CurrentVersion {
		return fmt.Errorf(
			"%w: config version %d is newer than supported version %d (upgrade laneboard)",
			ErrInvalid, cfg.Version, CurrentVersion,
		)
	}
	if cfg.Version < 1 {
		return fmt.Errorf("%w: config version %d is invalid", ErrInvalid, cfg.Version)
	}

	for cfg.Version < CurrentVersion {
		fn, ok := migrations[cfg.Version]
		if !ok {
			return fmt.Errorf("%w: no migration path from version %d", ErrInvalid, cfg.Version)
		}
		if err := fn(cfg); err != nil {
			return fmt.Errorf("migrating config from v%d: %w", cfg.Version, err)
		}
	}

	return nil
}

// migrations maps each version to the function that migrates it to the next version.
// The migration function must increment cfg.Version after a successful migration.
var migrations = map[int]func(*Config) error{
	1: migrateV1ToV2,
	2: migrateV2ToV3,
}

// migrateV1ToV2 canonicalizes legacy column ids ("todo", "in-progress", ...)
// and fills titles and colors for the canonical columns. The default column
// follows its column's rename.
func migrateV1ToV2(cfg *Config) error {
	canonical := make(map[string]ColumnConfig)
	for _, c := range DefaultColumns() {
		canonical[c.ID] = c
	}

	seen := make(map[string]bool, len(cfg.Columns))
	for i, col := range cfg.Columns {
		id := canonicalColumnID(col.ID)
		if seen[id] {
			return fmt.Errorf("%w: columns %q collapse to the same id %q", ErrInvalid, col.ID, id)
		}
		seen[id] = true

		col.ID = id
		if def, ok := canonical[id]; ok {
			if col.Title == "" {
				col.Title = def.Title
			}
			if col.Color == "" {
				col.Color = def.Color
			}
		}
		if col.Title == "" {
			col.Title = id
		}
		cfg.Columns[i] = col
	}
	if cfg.Defaults.Column != "" {
		cfg.Defaults.Column = canonicalColumnID(cfg.Defaults.Column)
	}
	cfg.Version = 2
	return nil
}

// migrateV2ToV3 adds id_scheme and the tui section.
func migrateV2ToV3(cfg *Config) error { //nolint:unparam // signature must match migrations map type
	if cfg.IDScheme == "" {
		cfg.IDScheme = DefaultIDScheme
	}
	if cfg.TUI.TitleLines == 0 {
		cfg.TUI.TitleLines = DefaultTitleLines
		cfg.TUI.ShowTags = true
	}
	if cfg.BoardFile == "" {
		cfg.BoardFile = DefaultBoardFile
	}
	cfg.Version = 3
	return nil
}

func canonicalColumnID(id string) string {
	if c, ok := legacyColumnIDs[strings.ToLower(strings.TrimSpace(id))]; ok {
		return c
	}
	return id
}

// migrateBoardFile renames legacy column ids inside the snapshot so it
// matches a config migrated past v1. A missing snapshot is left alone.
func migrateBoardFile(cfg *Config) error {
	b, err := board.Load(cfg.BoardPath())
	if err != nil {
		if _, statErr := os.Stat(cfg.BoardPath()); errors.Is(statErr, os.ErrNotExist) {
			return nil
		}
		return err
	}
	changed := false
	for i := range b.Columns {
		id := canonicalColumnID(b.Columns[i].ID)
		if id == b.Columns[i].ID {
			continue
		}
		changed = true
		b.Columns[i].ID = id
		for j := range b.Columns[i].Tasks {
			b.Columns[i].Tasks[j].Column = id
		}
	}
	if !changed {
		return nil
	}
	if err := b.Validate(); err != nil {
		return err
	}
	return board.Save(cfg.BoardPath(), b)
}
