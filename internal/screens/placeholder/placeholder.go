// Package placeholder is shown for routes the app has no screen for, such
// as a stale route restored from an older saved state.
package placeholder

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/flashiz/internal/router"
	"github.com/abhisek/flashiz/internal/screen"
	"github.com/abhisek/flashiz/internal/ui/theme"
)

// PlaceholderScreen tells the user the destination is unavailable.
type PlaceholderScreen struct {
	route router.Route
}

var _ screen.Screen = (*PlaceholderScreen)(nil)

// New creates a placeholder for route.
func New(route router.Route) *PlaceholderScreen {
	return &PlaceholderScreen{route: route}
}

func (p *PlaceholderScreen) Init() tea.Cmd {
	return nil
}

func (p *PlaceholderScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		return p, router.Back()
	}
	return p, nil
}

func (p *PlaceholderScreen) View(width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.Text).
		Render("╌╌ Nothing here ╌╌\n\n" + p.route.String() + " is not available.\nPress Esc to go back.")
}

func (p *PlaceholderScreen) Title() string {
	return p.route.Name
}
