// Package status provides the status bar component for the dashboard.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/prcache/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/prcache/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/prcache/internal/core/domain"
)

// Bar displays the refresh state and keybinding hints.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	state   domain.RefreshState
	pending string
	message string
	err     error
	width   int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{
		styles: s,
		keymap: km,
		state:  domain.StateIdle,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(_ tea.Msg) (*Bar, tea.Cmd) {
	// Bar is passive, updated via Set methods
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}
	return s.styles.StatusBar.Width(s.width).Render(left + strings.Repeat(" ", padding) + right)
}

func (s *Bar) renderLeft() string {
	if s.err != nil {
		return s.styles.Error.Render(fmt.Sprintf("Error: %v", s.err))
	}

	left := s.styles.ForState(s.state).Render(s.state.String())
	if s.pending != "" {
		left += s.styles.Muted.Render(" (next: " + s.pending + ")")
	}
	if s.message != "" {
		left += "  " + s.styles.Normal.Render(s.message)
	}
	return left
}

func (s *Bar) renderRight() string {
	bindings := s.keymap.ShortHelp()
	if s.state != domain.StateIdle {
		bindings = s.keymap.BusyHelp()
	}
	return s.styles.Muted.Render(hints(bindings))
}

func hints(bindings []key.Binding) string {
	out := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		out = append(out, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return strings.Join(out, " | ")
}

// SetState sets the refresh state and the pending request, if any.
func (s *Bar) SetState(state domain.RefreshState, pending *domain.UpdateParameters) {
	s.state = state
	s.pending = ""
	if pending != nil {
		s.pending = pending.String()
	}
}

// State returns the displayed refresh state.
func (s *Bar) State() domain.RefreshState {
	return s.state
}

// SetMessage sets an informational message and clears any error.
func (s *Bar) SetMessage(message string) {
	s.message = message
	s.err = nil
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetError shows err until the next message.
func (s *Bar) SetError(err error) {
	s.err = err
}

// Err returns the displayed error.
func (s *Bar) Err() error {
	return s.err
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}
