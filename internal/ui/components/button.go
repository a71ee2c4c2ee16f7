package components

import (
	"fmt"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/flashiz/internal/ui/theme"
)

// Button is a styled button with a key hint.
type Button struct {
	Key    string
	Label  string
	Detail string
	Active bool
}

// View renders the button.
func (b Button) View() string {
	label := fmt.Sprintf(" %s %s ", b.Key, b.Label)
	if b.Detail != "" {
		label += lipgloss.NewStyle().Foreground(theme.TextDim).Render(b.Detail) + " "
	}
	if b.Active {
		return theme.ButtonActive.Render(label)
	}
	return theme.ButtonInactive.Render(label)
}

// ButtonRow renders buttons side by side, centered in width.
func ButtonRow(buttons []Button, width int) string {
	views := make([]string, 0, len(buttons))
	for _, b := range buttons {
		views = append(views, b.View())
	}
	row := lipgloss.JoinHorizontal(lipgloss.Center, interleave(views, " ")...)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, row)
}

func interleave(items []string, sep string) []string {
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, 2*len(items)-1)
	for i, it := range items {
		if i > 0 {
			out = append(out, sep)
		}
		out = append(out, it)
	}
	return out
}
