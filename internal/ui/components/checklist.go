package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/flashiz/internal/ui/theme"
)

// CheckItem is one entry of a CheckList.
type CheckItem struct {
	Label   string
	Checked bool
	Dim     bool
}

// CheckList is a vertical list with a cursor where each entry can be
// toggled.
type CheckList struct {
	Items    []CheckItem
	Selected int
	offset   int
}

// NewCheckList creates a list with the cursor on the first item.
func NewCheckList(items []CheckItem) CheckList {
	return CheckList{Items: items}
}

// Current returns the item under the cursor.
func (l CheckList) Current() (CheckItem, bool) {
	if l.Selected < 0 || l.Selected >= len(l.Items) {
		return CheckItem{}, false
	}
	return l.Items[l.Selected], true
}

// Checked returns the labels of the checked items in list order.
func (l CheckList) Checked() []string {
	var out []string
	for _, it := range l.Items {
		if it.Checked {
			out = append(out, it.Label)
		}
	}
	return out
}

// Update handles cursor movement and toggling with space.
func (l CheckList) Update(msg tea.Msg) (CheckList, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return l, nil
	}

	switch kmsg.String() {
	case "up", "ctrl+p":
		if l.Selected > 0 {
			l.Selected--
		}
	case "down", "ctrl+n":
		if l.Selected < len(l.Items)-1 {
			l.Selected++
		}
	case "space":
		if l.Selected >= 0 && l.Selected < len(l.Items) {
			l.Items[l.Selected].Checked = !l.Items[l.Selected].Checked
		}
	}
	return l, nil
}

// View renders at most height rows, scrolled to keep the cursor visible.
func (l *CheckList) View(height int) string {
	if height <= 0 || len(l.Items) == 0 {
		return ""
	}
	if l.Selected < l.offset {
		l.offset = l.Selected
	}
	if l.Selected >= l.offset+height {
		l.offset = l.Selected - height + 1
	}

	var b strings.Builder
	end := min(l.offset+height, len(l.Items))
	for i := l.offset; i < end; i++ {
		it := l.Items[i]
		box := "[ ] "
		if it.Checked {
			box = "[x] "
		}
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if it.Dim {
			style = style.Foreground(theme.TextDim)
		}
		prefix := "  "
		if i == l.Selected {
			prefix = "▸ "
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(style.Render(prefix + box + it.Label))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
