package tui

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/openradius/radops/internal/api"
	"github.com/openradius/radops/internal/cli/config"
	"github.com/openradius/radops/internal/radacct"
)

// RunOptions select the view the console opens on.
type RunOptions struct {
	Table string
	Link  url.Values
	Mouse bool
}

// Run connects the backends and runs the console until the operator quits.
// The accounting database is optional; when it cannot be reached the
// console still starts and only the sessions table reports the failure.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts RunOptions) error {
	client, err := api.NewClient(api.Config{
		BaseURL: cfg.API.URL,
		Token:   cfg.API.Token,
		Timeout: cfg.API.Timeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("connect api: %w", err)
	}

	var store *radacct.Store
	if cfg.Radacct.StoreConfig().Configured() {
		store, err = radacct.Open(ctx, cfg.Radacct.StoreConfig(), logger)
		if err != nil {
			logger.Warn("accounting database unavailable", "error", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	app := New(Config{
		Deps:           Deps{Client: client, Radacct: store},
		Theme:          cfg.UI.Theme,
		PageSize:       cfg.UI.PageSize,
		Logger:         logger,
		InitialTable:   opts.Table,
		InitialLink:    opts.Link,
		WriteClipboard: clipboard.WriteAll,
	})

	progOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if opts.Mouse {
		progOpts = append(progOpts, tea.WithMouseCellMotion())
	}
	_, err = tea.NewProgram(app, progOpts...).Run()
	return err
}
