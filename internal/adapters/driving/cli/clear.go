package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached data",
	Long: `Cancels any refresh in progress and deletes cached pull requests, work items
and workflow runs. Saved searches are kept.`,
	Args: cobra.NoArgs,
	RunE: runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, _ []string) error {
	if refreshService == nil {
		return errors.New("refresh service not configured")
	}
	if err := refreshService.ClearCache(commandContext(cmd)); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	cmd.Println("Cache cleared.")
	return nil
}
