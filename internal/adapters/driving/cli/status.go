package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/prcache/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show when each cached scope was last refreshed",
	Args:  cobra.NoArgs,
	RunE:  runStatusCmd,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	if cacheService == nil {
		return errors.New("cache service not configured")
	}
	ctx := commandContext(cmd)

	if refreshService != nil {
		cmd.Printf("State: %s\n", refreshService.State())
		if pending, ok := refreshService.Pending(); ok {
			cmd.Printf("Pending: %s\n", pending)
		}
		settings := refreshService.Settings()
		cmd.Printf("Cooldown: %s  Interval: %s  On busy: %s\n", settings.Cooldown, settings.Interval, settings.OnBusy)
		if settings.PeriodicEnabled() {
			cmd.Printf("Periodic: %s\n", settings.Periodic)
		} else {
			cmd.Println("Periodic: disabled")
		}
		cmd.Println()
	}

	records, err := cacheService.UpdateRecords(ctx)
	if err != nil {
		return fmt.Errorf("failed to read update records: %w", err)
	}
	if len(records) == 0 {
		cmd.Println("Nothing cached yet.")
		return nil
	}

	now := time.Now()
	cmd.Println("Last updated:")
	for _, r := range records {
		cmd.Printf("  %-50s %s (%s ago)\n", scopeLabel(r.Scope),
			r.LastUpdated.Local().Format(time.RFC3339), now.Sub(r.LastUpdated).Round(time.Second))
	}
	return nil
}

// scopeLabel renders "kind:target" as "kind target".
func scopeLabel(scope string) string {
	kind, target, ok := strings.Cut(scope, ":")
	if !ok {
		return scope
	}
	return domain.UpdateParameters{Kind: domain.UpdateKind(kind), Target: target}.String()
}
