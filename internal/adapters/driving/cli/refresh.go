package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/prcache/internal/core/domain"
)

var refreshForce bool

var refreshCmd = &cobra.Command{
	Use:   "refresh <kind> <target>",
	Short: "Refresh cached data now",
	Long: `Fetches fresh data from GitHub and waits for the result.

Kinds:
  prs    pull requests of a repository (target: owner/repo)
  runs   workflow runs of a repository (target: owner/repo)
  items  results of a saved search (target: saved search ID)

Data refreshed within the cooldown is not fetched again unless --force is given.
Press Ctrl+C to cancel the fetch.`,
	Args: cobra.ExactArgs(2),
	RunE: runRefresh,
}

func init() {
	refreshCmd.Flags().BoolVarP(&refreshForce, "force", "f", false, "ignore the cooldown")
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	if refreshService == nil {
		return errors.New("refresh service not configured")
	}
	ctx := commandContext(cmd)

	params, err := parseRefreshArgs(args[0], args[1])
	if err != nil {
		return err
	}

	notes := make(chan domain.Notification, 32)
	id := refreshService.Subscribe(func(n domain.Notification) {
		select {
		case notes <- n:
		default:
		}
	})
	defer refreshService.Unsubscribe(id)

	request := refreshService.RequestRefresh
	if refreshForce {
		request = refreshService.ForceRefresh
	}
	if err := request(ctx, params); err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}

	w := &refreshWaiter{params: params}

	// Started is emitted before RequestRefresh returns.
	for drained := false; !drained; {
		select {
		case n := <-notes:
			if done, err := w.observe(cmd, n); done {
				return err
			}
		default:
			drained = true
		}
	}

	if !w.started {
		pending, queued := refreshService.Pending()
		switch {
		case queued && sameScope(pending, params):
			cmd.Printf("Queued %s behind the refresh in progress...\n", params)
		case refreshService.State() == domain.StateIdle:
			cmd.Printf("%s is up to date.\n", params)
			return nil
		default:
			cmd.Printf("A refresh is in progress; %s was not started.\n", params)
			return nil
		}
	}

	return w.wait(ctx, cmd, notes)
}

// parseRefreshArgs validates the kind and target given on the command line.
func parseRefreshArgs(kindArg, targetArg string) (domain.UpdateParameters, error) {
	kind, err := domain.ParseUpdateKind(kindArg)
	if err != nil {
		return domain.UpdateParameters{}, err
	}
	target := strings.TrimSpace(targetArg)
	if kind == domain.UpdateKindQuery {
		if target == "" {
			return domain.UpdateParameters{}, fmt.Errorf("%w: saved search ID is required", domain.ErrInvalidInput)
		}
	} else if _, _, err := domain.SplitRepo(target); err != nil {
		return domain.UpdateParameters{}, err
	}
	return domain.UpdateParameters{Kind: kind, Target: target}, nil
}

func sameScope(a, b domain.UpdateParameters) bool {
	return a.Kind == b.Kind && a.Target == b.Target
}

// refreshWaiter follows the notifications of one requested refresh.
type refreshWaiter struct {
	params     domain.UpdateParameters
	started    bool
	generation uint64
}

// observe records n and reports whether the refresh has finished.
func (w *refreshWaiter) observe(cmd *cobra.Command, n domain.Notification) (bool, error) {
	if n.Parameters == nil {
		if w.started && (n.Kind == domain.NotificationCleared || n.Kind == domain.NotificationAccount) {
			return true, errors.New("refresh abandoned: cache was reset")
		}
		return false, nil
	}
	if !sameScope(*n.Parameters, w.params) {
		return false, nil
	}

	if n.Kind == domain.NotificationStarted {
		if !w.started {
			w.started = true
			w.generation = n.Parameters.Generation
			cmd.Printf("Refreshing %s...\n", w.params)
		}
		return false, nil
	}
	if !w.started || n.Parameters.Generation != w.generation {
		return false, nil
	}

	switch n.Kind {
	case domain.NotificationUpdated:
		cmd.Printf("Updated %s.\n", w.params)
		return true, nil
	case domain.NotificationCancel:
		cmd.Printf("Cancelled refresh of %s.\n", w.params)
		return true, nil
	case domain.NotificationError:
		err := fmt.Errorf("refresh of %s failed: %w", w.params, n.Err)
		if errors.Is(n.Err, domain.ErrAuthRequired) || errors.Is(n.Err, domain.ErrAuthInvalid) {
			cmd.PrintErrln("Run 'prcache auth login' or set GITHUB_TOKEN.")
		}
		return true, err
	}
	return false, nil
}

// wait blocks until the refresh finishes. Cancelling ctx cancels the fetch
// and keeps waiting for its outcome.
func (w *refreshWaiter) wait(ctx context.Context, cmd *cobra.Command, notes <-chan domain.Notification) error {
	done := ctx.Done()
	for {
		select {
		case <-done:
			if !w.started {
				return ctx.Err()
			}
			done = nil
			if refreshService.CancelInProgress() {
				cmd.Println("Cancelling...")
			}
		case n := <-notes:
			if finished, err := w.observe(cmd, n); finished {
				return err
			}
		}
	}
}
