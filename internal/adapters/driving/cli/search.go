package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Manage saved work-item searches",
	Long: `Saved searches are GitHub issue search queries whose results can be
refreshed with 'prcache refresh items <id>'.

Examples:
  prcache search add mine "is:open author:@me"
  prcache search list
  prcache refresh items <id>`,
}

var searchAddCmd = &cobra.Command{
	Use:   "add <name> <query>",
	Short: "Save a search",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runSearchAdd,
}

var searchListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved searches",
	Args:  cobra.NoArgs,
	RunE:  runSearchList,
}

var searchRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a saved search and its cached results",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearchRemove,
}

func init() {
	searchCmd.AddCommand(searchAddCmd, searchListCmd, searchRemoveCmd)
	rootCmd.AddCommand(searchCmd)
}

func runSearchAdd(cmd *cobra.Command, args []string) error {
	if savedSearchService == nil {
		return errors.New("saved search service not configured")
	}
	// Unquoted queries arrive as several arguments.
	query := strings.Join(args[1:], " ")

	search, err := savedSearchService.Add(commandContext(cmd), args[0], query)
	if err != nil {
		return fmt.Errorf("failed to save search: %w", err)
	}
	cmd.Printf("Saved search %q: %s\n", search.Name, search.ID)
	return nil
}

func runSearchList(cmd *cobra.Command, _ []string) error {
	if savedSearchService == nil {
		return errors.New("saved search service not configured")
	}
	searches, err := savedSearchService.List(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list searches: %w", err)
	}
	if len(searches) == 0 {
		cmd.Println("No saved searches.")
		return nil
	}
	for i := range searches {
		cmd.Printf("  %s\n", searches[i].ID)
		cmd.Printf("    Name: %s\n", searches[i].Name)
		cmd.Printf("    Query: %s\n", searches[i].Query)
		if !searches[i].CreatedAt.IsZero() {
			cmd.Printf("    Created: %s\n", searches[i].CreatedAt.Format(time.RFC3339))
		}
	}
	return nil
}

func runSearchRemove(cmd *cobra.Command, args []string) error {
	if savedSearchService == nil {
		return errors.New("saved search service not configured")
	}
	if err := savedSearchService.Remove(commandContext(cmd), args[0]); err != nil {
		return fmt.Errorf("failed to remove search: %w", err)
	}
	cmd.Printf("Removed saved search: %s\n", args[0])
	return nil
}
