package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/flashiz/internal/ui/theme"
)

// ContentWidth returns the width of the card column for a frame width.
func ContentWidth(frameWidth int) int {
	// Leave room for the card border (2) and padding (4)
	return min(max(frameWidth-6, 20), 90)
}

// CardFrame wraps card text in a rounded border at content width cw.
func CardFrame(content string, cw int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw).
		Align(lipgloss.Center).
		Padding(1, 2).
		Render(content)
}

// Dialog renders a titled modal box centered in width x height.
func Dialog(title, body string, width, height int) string {
	w := min(max(width/2, 40), width-4)
	box := theme.Dialog.
		Width(w).
		Render(theme.Title.Width(w-6).Render(title) + "\n\n" + body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// Centered renders a single dimmed line centered in width, used for
// loading and empty states.
func Centered(text string, width int) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("\n\n" + text)
}
