package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/prcache/internal/core/domain"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show cached data",
	Long: `Prints cached rows without contacting GitHub.

Run 'prcache refresh' first to populate the cache.`,
}

var listPullsCmd = &cobra.Command{
	Use:     "prs <owner/repo>",
	Aliases: []string{"pulls"},
	Short:   "List cached pull requests of a repository",
	Args:    cobra.ExactArgs(1),
	RunE:    runListPulls,
}

var listRunsCmd = &cobra.Command{
	Use:     "runs <owner/repo>",
	Aliases: []string{"pipelines"},
	Short:   "List cached workflow runs of a repository",
	Args:    cobra.ExactArgs(1),
	RunE:    runListRuns,
}

var listItemsCmd = &cobra.Command{
	Use:   "items <search-id>",
	Short: "List cached results of a saved search",
	Args:  cobra.ExactArgs(1),
	RunE:  runListItems,
}

func init() {
	listCmd.PersistentFlags().BoolVar(&listJSON, "json", false, "output as JSON")
	listCmd.AddCommand(listPullsCmd, listRunsCmd, listItemsCmd)
	rootCmd.AddCommand(listCmd)
}

func runListPulls(cmd *cobra.Command, args []string) error {
	if cacheService == nil {
		return errors.New("cache service not configured")
	}
	prs, err := cacheService.PullRequests(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to list pull requests: %w", err)
	}
	if listJSON {
		return outputJSON(cmd, prs)
	}
	if len(prs) == 0 {
		cmd.Printf("No cached pull requests for %s.\n", args[0])
		return nil
	}
	for i := range prs {
		draft := ""
		if prs[i].Draft {
			draft = " [draft]"
		}
		cmd.Printf("#%-6d %s%s\n", prs[i].Number, prs[i].Title, draft)
		cmd.Printf("        %s -> %s by %s, updated %s\n",
			prs[i].HeadBranch, prs[i].BaseBranch, prs[i].Author, formatTime(prs[i].UpdatedAt))
	}
	cmd.Printf("\nTotal: %d pull requests\n", len(prs))
	return nil
}

func runListRuns(cmd *cobra.Command, args []string) error {
	if cacheService == nil {
		return errors.New("cache service not configured")
	}
	runs, err := cacheService.PipelineRuns(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to list workflow runs: %w", err)
	}
	if listJSON {
		return outputJSON(cmd, runs)
	}
	if len(runs) == 0 {
		cmd.Printf("No cached workflow runs for %s.\n", args[0])
		return nil
	}
	for i := range runs {
		cmd.Printf("%-20s #%-5d %-12s %s\n", runs[i].Name, runs[i].RunNumber, runStatus(runs[i]), runs[i].Branch)
	}
	cmd.Printf("\nTotal: %d runs\n", len(runs))
	return nil
}

func runListItems(cmd *cobra.Command, args []string) error {
	if cacheService == nil {
		return errors.New("cache service not configured")
	}
	ctx := commandContext(cmd)
	if savedSearchService != nil {
		if _, err := savedSearchService.Get(ctx, args[0]); err != nil {
			return fmt.Errorf("saved search %s: %w", args[0], err)
		}
	}
	items, err := cacheService.WorkItems(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to list work items: %w", err)
	}
	if listJSON {
		return outputJSON(cmd, items)
	}
	if len(items) == 0 {
		cmd.Println("No cached work items.")
		return nil
	}
	for i := range items {
		kind := "issue"
		if items[i].IsPullRequest {
			kind = "pr"
		}
		cmd.Printf("%s#%-6d %-5s %s\n", items[i].Repo, items[i].Number, kind, items[i].Title)
	}
	cmd.Printf("\nTotal: %d items\n", len(items))
	return nil
}

// runStatus prefers the conclusion of completed runs.
func runStatus(run domain.PipelineRun) string {
	if run.Conclusion != "" {
		return run.Conclusion
	}
	return run.Status
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
