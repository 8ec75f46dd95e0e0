package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/prcache/internal/core/domain"
)

var authToken string

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the GitHub token",
	Long: `Store, check and remove the GitHub personal access token used for API calls.

When no token is stored, the GITHUB_TOKEN environment variable is used.
Changing the token clears the cache, since cached data belongs to an account.

Examples:
  prcache auth login                   # prompt for the token
  prcache auth login --token ghp_xxx
  prcache auth status
  prcache auth logout`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store a GitHub token",
	Args:  cobra.NoArgs,
	RunE:  runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored GitHub token",
	Args:  cobra.NoArgs,
	RunE:  runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which account the token belongs to",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

func init() {
	authLoginCmd.Flags().StringVar(&authToken, "token", "", "personal access token (prompted if omitted)")
	authCmd.AddCommand(authLoginCmd, authLogoutCmd, authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	ctx := commandContext(cmd)

	token := strings.TrimSpace(authToken)
	if token == "" {
		cmd.Print("GitHub token: ")
		token = strings.TrimSpace(readPassword())
		cmd.Println()
	}
	if token == "" {
		return fmt.Errorf("%w: token is required", domain.ErrInvalidInput)
	}

	previous, _ := settingsService.Value(domain.SettingGitHubToken)
	if err := settingsService.SetValue(domain.SettingGitHubToken, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	if resetClient != nil {
		resetClient()
	}

	if verifyAccount != nil {
		login, err := verifyAccount(ctx)
		if err != nil {
			restoreToken(previous)
			return fmt.Errorf("token rejected: %w", err)
		}
		cmd.Printf("Logged in as %s.\n", login)
	} else {
		cmd.Println("Token saved.")
	}

	if previous != token {
		return accountChanged(ctx)
	}
	return nil
}

func runAuthLogout(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	previous, _ := settingsService.Value(domain.SettingGitHubToken)
	if previous == "" {
		cmd.Println("No token stored.")
		return nil
	}
	if err := settingsService.Unset(domain.SettingGitHubToken); err != nil {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	if resetClient != nil {
		resetClient()
	}
	cmd.Println("Token removed.")
	return accountChanged(commandContext(cmd))
}

func runAuthStatus(cmd *cobra.Command, _ []string) error {
	if tokenProvider == nil {
		return errors.New("token provider not configured")
	}
	if !tokenProvider.IsAuthenticated() {
		cmd.Println("Not logged in. Run 'prcache auth login' or set GITHUB_TOKEN.")
		return nil
	}

	source := "config file"
	if tokenProvider.AuthMethod() == domain.AuthMethodEnv {
		source = "GITHUB_TOKEN"
	}
	token, _ := tokenProvider.GetToken(commandContext(cmd))
	cmd.Printf("Token: %s (from %s)\n", maskAPIKey(token), source)

	if verifyAccount == nil {
		return nil
	}
	login, err := verifyAccount(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("token check failed: %w", err)
	}
	cmd.Printf("Account: %s\n", login)
	return nil
}

// accountChanged resets the cache after the stored token changed.
func accountChanged(ctx context.Context) error {
	if refreshService == nil {
		return nil
	}
	if err := refreshService.NotifyAccountChanged(ctx); err != nil {
		return fmt.Errorf("failed to reset cache: %w", err)
	}
	return nil
}

// restoreToken puts back the token that was stored before a failed login.
//
//nolint:errcheck // best effort, the login error is reported instead
func restoreToken(previous string) {
	if previous == "" {
		settingsService.Unset(domain.SettingGitHubToken)
	} else {
		settingsService.SetValue(domain.SettingGitHubToken, previous)
	}
	if resetClient != nil {
		resetClient()
	}
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
