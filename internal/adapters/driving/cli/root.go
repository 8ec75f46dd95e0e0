// Package cli implements the prcache command line interface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/prcache/internal/core/ports/driven"
	"github.com/custodia-labs/prcache/internal/core/ports/driving"
	"github.com/custodia-labs/prcache/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// ConfigWatcher reloads the config file and calls onChange after each reload.
type ConfigWatcher interface {
	Run(ctx context.Context, onChange func()) error
}

// Services holds everything the commands drive.
type Services struct {
	Refresh  driving.RefreshService
	Cache    driving.CacheService
	Searches driving.SavedSearchService
	Settings driving.SettingsService
	Tokens   driven.TokenProvider

	// VerifyAccount returns the login the current token belongs to.
	VerifyAccount func(ctx context.Context) (string, error)

	// ResetClient drops cached API clients after the token changed.
	ResetClient func()

	// ConfigWatcher is run by the watch command. May be nil.
	ConfigWatcher ConfigWatcher
}

var (
	refreshService     driving.RefreshService
	cacheService       driving.CacheService
	savedSearchService driving.SavedSearchService
	settingsService    driving.SettingsService
	tokenProvider      driven.TokenProvider
	verifyAccount      func(ctx context.Context) (string, error)
	resetClient        func()
	configWatcher      ConfigWatcher
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "prcache",
	Short: "Local cache of GitHub pull requests, work items and pipeline runs",
	Long: `prcache keeps a local copy of GitHub pull requests, saved issue searches
and workflow runs, refreshing them on demand or periodically.

Examples:
  prcache auth login
  prcache refresh prs acme/widgets
  prcache list prs acme/widgets
  prcache watch --tui`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetServices injects the services used by the commands.
func SetServices(s Services) {
	refreshService = s.Refresh
	cacheService = s.Cache
	savedSearchService = s.Searches
	settingsService = s.Settings
	tokenProvider = s.Tokens
	verifyAccount = s.VerifyAccount
	resetClient = s.ResetClient
	configWatcher = s.ConfigWatcher
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// commandContext returns the context the command was executed with.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
