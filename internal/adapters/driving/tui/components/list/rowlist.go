// Package list provides list display components for the dashboard.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/prcache/internal/adapters/driving/tui/styles"
)

// Row is one line of cached data.
type Row struct {
	// Title is the main text, e.g. "#42 Add sprockets".
	Title string

	// Detail is shown muted beneath the title.
	Detail string

	// Badge is shown right-aligned, e.g. a run conclusion.
	Badge string
}

// RowList displays cached rows in a navigable list.
type RowList struct {
	title    string
	rows     []Row
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewRowList creates a new row list component.
func NewRowList(s *styles.Styles) *RowList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &RowList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the row list.
func (r *RowList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *RowList) Update(msg tea.Msg) (*RowList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the row list.
func (r *RowList) View() string {
	lines := []string{r.styles.Subtitle.Render(fmt.Sprintf("%s (%d)", r.title, len(r.rows)))}
	if len(r.rows) == 0 {
		return strings.Join(append(lines, r.styles.Muted.Render("  Nothing cached")), "\n")
	}

	// Each row takes two lines.
	visible := (r.height - 1) / 2
	if visible < 1 {
		visible = 1
	}
	start := 0
	if r.selected >= visible {
		start = r.selected - visible + 1
	}
	end := start + visible
	if end > len(r.rows) {
		end = len(r.rows)
	}

	for i := start; i < end; i++ {
		lines = append(lines, r.renderRow(i))
	}
	return strings.Join(lines, "\n")
}

func (r *RowList) renderRow(index int) string {
	row := r.rows[index]

	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	titleWidth := r.width - len(row.Badge) - 4
	if titleWidth < 10 {
		titleWidth = 10
	}
	title := truncate(row.Title, titleWidth)

	var titleLine string
	if index == r.selected {
		titleLine = r.styles.Highlight.Render(fmt.Sprintf("%s%-*s", indicator, titleWidth, title))
	} else {
		titleLine = r.styles.Normal.Render(fmt.Sprintf("%s%-*s", indicator, titleWidth, title))
	}
	if row.Badge != "" {
		titleLine += " " + r.styles.Muted.Render(row.Badge)
	}

	return titleLine + "\n" + r.styles.Muted.Render("    "+truncate(row.Detail, r.width-4))
}

func truncate(s string, n int) string {
	if n < 4 || len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// SetRows replaces the rows, keeping the selection in range.
func (r *RowList) SetRows(title string, rows []Row) {
	r.title = title
	r.rows = rows
	if r.selected >= len(rows) {
		r.selected = len(rows) - 1
	}
	if r.selected < 0 {
		r.selected = 0
	}
}

// Rows returns the current rows.
func (r *RowList) Rows() []Row {
	return r.rows
}

// Selected returns the index of the selected row.
func (r *RowList) Selected() int {
	return r.selected
}

// MoveUp moves selection up.
func (r *RowList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *RowList) MoveDown() {
	if r.selected < len(r.rows)-1 {
		r.selected++
	}
}

// SetDimensions sets the list size.
func (r *RowList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}
