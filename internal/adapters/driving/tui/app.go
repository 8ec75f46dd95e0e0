package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/prcache/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/prcache/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/prcache/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/prcache/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/prcache/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/prcache/internal/core/domain"
	"github.com/custodia-labs/prcache/internal/core/ports/driving"
)

const (
	// notificationBuffer bounds notifications waiting for the update loop.
	// Handlers run inside the coordinator and never block; overflow is dropped.
	notificationBuffer = 64

	// maxEvents is the number of notifications kept in the event log.
	maxEvents = 8
)

// App is the watch dashboard following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	rows *list.RowList
	bar  *status.Bar

	notes        chan domain.Notification
	subscription driving.SubscriptionID

	// target is the scope the rows belong to.
	target      domain.UpdateParameters
	lastUpdated time.Time
	events      []string

	showHelp bool
	width    int
	height   int
	ready    bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates the dashboard and subscribes it to refresh notifications.
// Call Close to unsubscribe.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	a := &App{
		ports:  ports,
		ctx:    context.Background(),
		styles: s,
		keymap: km,
		rows:   list.NewRowList(s),
		bar:    status.NewBar(s, km),
		notes:  make(chan domain.Notification, notificationBuffer),
		target: ports.Refresh.Settings().Periodic,
	}
	a.subscription = ports.Refresh.Subscribe(func(n domain.Notification) {
		select {
		case a.notes <- n:
		default:
		}
	})
	a.syncState()
	return a, nil
}

// WithContext sets the context used for service calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Close unsubscribes from notifications.
func (a *App) Close() {
	a.ports.Refresh.Unsubscribe(a.subscription)
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("prcache - watch"),
		messages.WaitForNotification(a.notes),
		a.loadCache(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a, a.handleKey(msg)

	case messages.NotificationReceived:
		return a, tea.Batch(a.handleNotification(msg.Notification), messages.WaitForNotification(a.notes))

	case messages.CacheLoaded:
		a.handleCacheLoaded(msg)
		return a, nil

	case messages.ActionFailed:
		a.bar.SetError(fmt.Errorf("%s: %w", msg.Action, msg.Err))
		return a, nil

	case actionDone:
		a.syncState()
		if msg.message != "" {
			a.bar.SetMessage(msg.message)
		}
		return a, nil
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	k := msg.String()
	switch {
	case keymap.Matches(k, a.keymap.Quit):
		return tea.Quit
	case keymap.Matches(k, a.keymap.Help):
		a.showHelp = !a.showHelp
		return nil
	case keymap.Matches(k, a.keymap.Refresh):
		return a.requestRefresh(false)
	case keymap.Matches(k, a.keymap.ForceRefresh):
		return a.requestRefresh(true)
	case keymap.Matches(k, a.keymap.Cancel):
		return a.cancelRefresh()
	case keymap.Matches(k, a.keymap.Clear):
		return a.clearCache()
	}
	a.rows, _ = a.rows.Update(msg)
	return nil
}

// handleNotification records n and reloads the rows when the cache changed.
func (a *App) handleNotification(n domain.Notification) tea.Cmd {
	a.events = append(a.events,
		a.styles.Muted.Render(time.Now().Format("15:04:05"))+" "+a.styles.ForNotification(n.Kind).Render(n.String()))
	if len(a.events) > maxEvents {
		a.events = a.events[len(a.events)-maxEvents:]
	}
	a.syncState()

	switch n.Kind {
	case domain.NotificationError:
		a.bar.SetError(n.Err)
	case domain.NotificationUpdated:
		a.bar.SetMessage("Updated " + n.Parameters.String())
		if a.isTarget(n.Parameters) {
			return a.loadCache()
		}
	case domain.NotificationCleared, domain.NotificationAccount:
		a.bar.SetMessage("Cache cleared")
		return a.loadCache()
	}
	return nil
}

func (a *App) isTarget(p *domain.UpdateParameters) bool {
	return p != nil && p.Kind == a.target.Kind && p.Target == a.target.Target
}

// syncState copies the coordinator state into the status bar and follows
// changes of the periodic target.
func (a *App) syncState() {
	var pending *domain.UpdateParameters
	if p, ok := a.ports.Refresh.Pending(); ok {
		pending = &p
	}
	a.bar.SetState(a.ports.Refresh.State(), pending)
	a.target = a.ports.Refresh.Settings().Periodic
}

func (a *App) handleCacheLoaded(msg messages.CacheLoaded) {
	if msg.Err != nil {
		a.bar.SetError(fmt.Errorf("loading cache: %w", msg.Err))
		return
	}
	a.lastUpdated = msg.LastUpdated

	switch msg.Params.Kind {
	case domain.UpdateKindPipelines:
		rows := make([]list.Row, len(msg.PipelineRuns))
		for i, r := range msg.PipelineRuns {
			badge := r.Conclusion
			if badge == "" {
				badge = r.Status
			}
			rows[i] = list.Row{
				Title:  fmt.Sprintf("%s #%d", r.Name, r.RunNumber),
				Detail: r.Branch,
				Badge:  badge,
			}
		}
		a.rows.SetRows("Workflow runs", rows)
	case domain.UpdateKindQuery:
		rows := make([]list.Row, len(msg.WorkItems))
		for i, it := range msg.WorkItems {
			badge := "issue"
			if it.IsPullRequest {
				badge = "pr"
			}
			rows[i] = list.Row{
				Title:  fmt.Sprintf("%s#%d %s", it.Repo, it.Number, it.Title),
				Detail: it.State,
				Badge:  badge,
			}
		}
		a.rows.SetRows("Work items", rows)
	default:
		rows := make([]list.Row, len(msg.PullRequests))
		for i, pr := range msg.PullRequests {
			badge := ""
			if pr.Draft {
				badge = "draft"
			}
			rows[i] = list.Row{
				Title:  fmt.Sprintf("#%d %s", pr.Number, pr.Title),
				Detail: fmt.Sprintf("%s -> %s by %s", pr.HeadBranch, pr.BaseBranch, pr.Author),
				Badge:  badge,
			}
		}
		a.rows.SetRows("Pull requests", rows)
	}
}

// actionDone reports a completed user action.
type actionDone struct {
	message string
}

// loadCache reads the rows of the current target.
func (a *App) loadCache() tea.Cmd {
	params := a.target
	ctx := a.ctx
	cache := a.ports.Cache
	return func() tea.Msg {
		msg := messages.CacheLoaded{Params: params}
		if params.Target == "" {
			return msg
		}
		switch params.Kind {
		case domain.UpdateKindPipelines:
			msg.PipelineRuns, msg.Err = cache.PipelineRuns(ctx, params.Target)
		case domain.UpdateKindQuery:
			msg.WorkItems, msg.Err = cache.WorkItems(ctx, params.Target)
		default:
			msg.PullRequests, msg.Err = cache.PullRequests(ctx, params.Target)
		}
		if msg.Err != nil {
			return msg
		}
		records, err := cache.UpdateRecords(ctx)
		if err != nil {
			msg.Err = err
			return msg
		}
		for _, r := range records {
			if r.Scope == params.Scope() {
				msg.LastUpdated = r.LastUpdated
			}
		}
		return msg
	}
}

func (a *App) requestRefresh(force bool) tea.Cmd {
	params := a.target
	ctx := a.ctx
	request := a.ports.Refresh.RequestRefresh
	if force {
		request = a.ports.Refresh.ForceRefresh
	}
	return func() tea.Msg {
		if params.Target == "" {
			return messages.ActionFailed{Action: "refresh", Err: ErrNoTarget}
		}
		if err := request(ctx, params); err != nil {
			return messages.ActionFailed{Action: "refresh", Err: err}
		}
		return actionDone{}
	}
}

func (a *App) cancelRefresh() tea.Cmd {
	refresh := a.ports.Refresh
	return func() tea.Msg {
		if refresh.CancelInProgress() {
			return actionDone{message: "Cancelling..."}
		}
		return actionDone{message: "Nothing to cancel"}
	}
}

func (a *App) clearCache() tea.Cmd {
	ctx := a.ctx
	refresh := a.ports.Refresh
	return func() tea.Msg {
		if err := refresh.ClearCache(ctx); err != nil {
			return messages.ActionFailed{Action: "clear", Err: err}
		}
		return actionDone{}
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(a.styles.Title.Render("prcache"))
	if a.target.Target != "" {
		b.WriteString(a.styles.Muted.Render("  watching " + a.target.String()))
	} else {
		b.WriteString(a.styles.Warning.Render("  no periodic target; set " + domain.SettingRefreshPeriodicTarget))
	}
	b.WriteString("\n")

	updated := "never"
	if !a.lastUpdated.IsZero() {
		updated = a.lastUpdated.Local().Format("15:04:05")
	}
	settings := a.ports.Refresh.Settings()
	b.WriteString(a.styles.Muted.Render(fmt.Sprintf("last updated %s · cooldown %s · every %s",
		updated, settings.Cooldown, settings.Interval)))
	b.WriteString("\n\n")

	if a.showHelp {
		b.WriteString(a.viewHelp())
	} else {
		b.WriteString(a.rows.View())
	}
	b.WriteString("\n\n")

	b.WriteString(a.styles.Subtitle.Render("Events"))
	b.WriteString("\n")
	if len(a.events) == 0 {
		b.WriteString(a.styles.Muted.Render("  none yet"))
	} else {
		b.WriteString(strings.Join(a.events, "\n"))
	}
	b.WriteString("\n\n")

	b.WriteString(a.bar.View())
	return b.String()
}

func (a *App) viewHelp() string {
	lines := []string{a.styles.Subtitle.Render("Keys")}
	for _, group := range a.keymap.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			lines = append(lines, fmt.Sprintf("  %-8s %s", h.Key, h.Desc))
		}
	}
	if a.ports.Settings != nil {
		lines = append(lines, "", a.styles.Muted.Render("Config: "+a.ports.Settings.ConfigPath()))
	}
	return strings.Join(lines, "\n")
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.bar.SetWidth(width)
	// Header, events and status bar take the rest.
	a.rows.SetDimensions(width, height-maxEvents-8)
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}

// Target returns the scope shown by the dashboard.
func (a *App) Target() domain.UpdateParameters {
	return a.target
}

// Events returns the rendered event log.
func (a *App) Events() []string {
	return a.events
}
