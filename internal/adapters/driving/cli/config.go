package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/prcache/internal/core/domain"
)

var configShowSecrets bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and change settings",
	Long: `Reads and writes the TOML config file.

Keys:
  refresh.cooldown          minimum age before a requested refresh fetches (e.g. 3m)
  refresh.interval          periodic refresh rate, 0 disables (e.g. 5m)
  refresh.on_busy           drop or queue requests made during a refresh
  refresh.periodic_kind     pull_requests, pipelines or query
  refresh.periodic_target   owner/repo, or a saved search ID for query
  github.token              personal access token
  github.base_url           API URL for GitHub Enterprise

A running 'prcache watch' picks up changes immediately.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show all settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Reset a setting to its default",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnset,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configShowCmd.Flags().BoolVar(&configShowSecrets, "show-secrets", false, "print the token unmasked")
	configCmd.AddCommand(configShowCmd, configGetCmd, configSetCmd, configUnsetCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	for _, key := range domain.SettingKeys() {
		value, err := settingsService.Value(key)
		if err != nil {
			return err
		}
		cmd.Printf("%-24s = %s\n", key, displayValue(key, value, configShowSecrets))
	}
	if err := settingsService.Validate(); err != nil {
		cmd.PrintErrf("\nwarning: %v\n", err)
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	value, err := settingsService.Value(args[0])
	if err != nil {
		return err
	}
	cmd.Println(displayValue(args[0], value, false))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	key, value := args[0], args[1]
	if key == domain.SettingGitHubToken {
		return errors.New("use 'prcache auth login' to change the token")
	}
	if err := settingsService.SetValue(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	stored, err := settingsService.Value(key)
	if err != nil {
		return err
	}
	cmd.Printf("%s = %s\n", key, stored)
	return applyRefreshSettings(cmd, key)
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	key := args[0]
	if key == domain.SettingGitHubToken {
		return errors.New("use 'prcache auth logout' to remove the token")
	}
	if err := settingsService.Unset(key); err != nil {
		return fmt.Errorf("failed to unset %s: %w", key, err)
	}
	cmd.Printf("%s reset to default\n", key)
	return applyRefreshSettings(cmd, key)
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	cmd.Println(settingsService.ConfigPath())
	return nil
}

// applyRefreshSettings pushes refresh.* changes to the coordinator of this process.
func applyRefreshSettings(cmd *cobra.Command, key string) error {
	if refreshService == nil || key == domain.SettingGitHubBaseURL {
		return nil
	}
	return refreshService.UpdateSettings(commandContext(cmd), settingsService.RefreshSettings())
}

func displayValue(key, value string, showSecrets bool) string {
	if value == "" {
		return "(not set)"
	}
	if domain.IsSecretSetting(key) && !showSecrets {
		return maskAPIKey(value)
	}
	return value
}
