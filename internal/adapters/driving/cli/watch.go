package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/prcache/internal/adapters/driving/tui"
	"github.com/custodia-labs/prcache/internal/core/domain"
	"github.com/custodia-labs/prcache/internal/logger"
)

var watchTUI bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the cache fresh in the background",
	Long: `Refreshes refresh.periodic_target every refresh.interval until interrupted.

Refresh notifications are printed as they happen. Edits to the config file
are applied without a restart; a changed GitHub token resets the cache.

Use --tui for an interactive dashboard.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchTUI, "tui", false, "show the interactive dashboard")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if refreshService == nil {
		return errors.New("refresh service not configured")
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	settings := refreshService.Settings()
	if !settings.PeriodicEnabled() {
		cmd.PrintErrf("warning: %s is not set; periodic refreshes are disabled\n", domain.SettingRefreshPeriodicTarget)
	}

	g, gctx := errgroup.WithContext(ctx)

	if configWatcher != nil {
		r := newConfigReloader(gctx)
		g.Go(func() error {
			return configWatcher.Run(gctx, func() { r.reload(gctx) })
		})
	}

	refreshService.StartPeriodic()
	defer refreshService.StopPeriodic()

	if watchTUI {
		g.Go(func() error {
			defer cancel()
			return runDashboard(gctx)
		})
	} else {
		id := refreshService.Subscribe(func(n domain.Notification) {
			cmd.Printf("%s  %s\n", time.Now().Format("15:04:05"), n)
		})
		defer refreshService.Unsubscribe(id)

		cmd.Println("Watching for changes. Press Ctrl+C to stop.")
		g.Go(func() error {
			<-gctx.Done()
			return nil
		})
	}

	if settings.PeriodicEnabled() {
		if err := refreshService.RequestRefresh(gctx, settings.Periodic); err != nil {
			logger.Warn("initial refresh of %s: %v", settings.Periodic, err)
		}
	}

	return g.Wait()
}

// runDashboard runs the TUI until the user quits or ctx is done.
func runDashboard(ctx context.Context) error {
	app, err := tui.NewApp(&tui.Ports{
		Refresh:  refreshService,
		Cache:    cacheService,
		Settings: settingsService,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	defer app.Close()
	app.WithContext(ctx)

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// configReloader applies config file changes to the running coordinator.
type configReloader struct {
	token string
}

func newConfigReloader(ctx context.Context) *configReloader {
	return &configReloader{token: currentToken(ctx)}
}

// reload pushes the refresh settings and resets the cache if the token changed.
func (r *configReloader) reload(ctx context.Context) {
	if settingsService != nil {
		if err := settingsService.Validate(); err != nil {
			logger.Warn("config: %v", err)
		}
		if err := refreshService.UpdateSettings(ctx, settingsService.RefreshSettings()); err != nil {
			logger.Warn("applying refresh settings: %v", err)
			return
		}
		logger.Debug("config reloaded")
	}

	token := currentToken(ctx)
	if token == r.token {
		return
	}
	r.token = token
	logger.Info("GitHub token changed, resetting cache")
	if resetClient != nil {
		resetClient()
	}
	if err := refreshService.NotifyAccountChanged(ctx); err != nil {
		logger.Warn("resetting cache: %v", err)
	}
}

func currentToken(ctx context.Context) string {
	if tokenProvider == nil {
		return ""
	}
	token, err := tokenProvider.GetToken(ctx)
	if err != nil {
		return ""
	}
	return token
}
