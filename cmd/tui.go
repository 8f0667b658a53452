package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/laneboard/internal/config"
	"github.com/twiced-technology-gmbh/laneboard/internal/store"
	"github.com/twiced-technology-gmbh/laneboard/internal/tui"
	"github.com/twiced-technology-gmbh/laneboard/internal/watcher"
)

// tuiLogFile receives diagnostics while the alternate screen owns the terminal.
const tuiLogFile = "tui.log"

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}

	logFile, err := os.OpenFile(filepath.Join(cfg.Dir(), tuiLogFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) //nolint:gosec // path inside board dir
	if err != nil {
		return fmt.Errorf("opening tui log: %w", err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)
	defer log.SetOutput(os.Stderr)

	updates := s.Subscribe()
	defer s.Unsubscribe(updates)

	model := tui.NewBoard(s, tui.Options{
		Name:       cfg.Board.Name,
		TitleLines: cfg.TitleLines(),
		ShowTags:   cfg.TUI.ShowTags,
		Logger:     log.WithField("board", cfg.Board.Name),
		Updates:    updates,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(cmd.Context()))

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	go startTUIWatcher(ctx, cfg, s)

	_, err = p.Run()
	return err
}

// startTUIWatcher reloads the store whenever another process rewrites the
// snapshot. The reload reaches the model through its subscription.
func startTUIWatcher(ctx context.Context, cfg *config.Config, s *store.Store) {
	w, err := watcher.New(cfg.BoardPath(), func() {
		if err := s.Reload(); err != nil {
			log.WithError(err).Warn("reloading board")
		}
	}, watcher.WithErrorHandler(func(err error) {
		log.WithError(err).Warn("file watcher")
	}))
	if err != nil {
		log.WithError(err).Warn("file watcher unavailable, live refresh disabled")
		return // non-fatal: TUI works without live refresh
	}
	defer w.Close()
	w.Run(ctx)
}
