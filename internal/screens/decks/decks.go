// Package decks is the deck list screen.
package decks

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/flashiz/internal/decks"
	"github.com/abhisek/flashiz/internal/i18n"
	"github.com/abhisek/flashiz/internal/router"
	"github.com/abhisek/flashiz/internal/routes"
	"github.com/abhisek/flashiz/internal/screen"
	"github.com/abhisek/flashiz/internal/syncstatus"
	"github.com/abhisek/flashiz/internal/ui/components"
	"github.com/abhisek/flashiz/internal/ui/layout"
	"github.com/abhisek/flashiz/internal/ui/theme"
)

// refreshedMsg reports that the picker reloaded its tree.
type refreshedMsg struct {
	Err error
}

// dialogDoneMsg reports that a dialog action finished.
type dialogDoneMsg struct {
	Err error
}

// DecksScreen shows the deck tree with due counts.
type DecksScreen struct {
	picker *decks.Picker
	tr     *i18n.Translator
	state  decks.State
	input  components.TextInput
	offset int
}

var _ screen.Screen = (*DecksScreen)(nil)
var _ screen.KeyHintProvider = (*DecksScreen)(nil)
var _ screen.Activator = (*DecksScreen)(nil)
var _ screen.InputCapturer = (*DecksScreen)(nil)

// New creates a deck list over picker.
func New(picker *decks.Picker, tr *i18n.Translator) *DecksScreen {
	return &DecksScreen{picker: picker, tr: tr}
}

func (s *DecksScreen) Init() tea.Cmd {
	return s.refresh()
}

// Activate reloads the counts when returning from a review.
func (s *DecksScreen) Activate() tea.Cmd {
	return s.refresh()
}

func (s *DecksScreen) Title() string {
	return s.tr.T("NavDecks")
}

// CapturesInput reports whether a dialog is reading keys.
func (s *DecksScreen) CapturesInput() bool {
	return s.state.Dialog != decks.DialogNone
}

func (s *DecksScreen) KeyHints() []layout.KeyHint {
	if s.state.Dialog != decks.DialogNone {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Confirm"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Study"},
		{Key: "a", Description: "Add"},
		{Key: "r", Description: "Rename"},
		{Key: "d", Description: "Delete"},
		{Key: "Space", Description: "Collapse"},
		{Key: "q", Description: "Quit"},
	}
}

func (s *DecksScreen) refresh() tea.Cmd {
	return func() tea.Msg {
		return refreshedMsg{Err: s.picker.Refresh(context.Background())}
	}
}

func (s *DecksScreen) sync() {
	s.state = s.picker.Snapshot()
}

func (s *DecksScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshedMsg, dialogDoneMsg:
		s.sync()
		if s.state.Dialog != decks.DialogNone {
			s.input.Err = s.dialogError()
		}
		return s, nil

	case tea.KeyMsg:
		if s.state.Dialog != decks.DialogNone {
			return s.handleDialogKey(msg)
		}
		return s.handleKey(msg)
	}

	if s.state.Dialog != decks.DialogNone {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *DecksScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	selected := s.state.Selected
	switch msg.String() {
	case "up", "k":
		s.picker.MoveCursor(-1)
	case "down", "j":
		s.picker.MoveCursor(1)
	case "enter":
		start, ok := s.picker.Select(selected)
		if !ok {
			return s, nil
		}
		s.sync()
		return s, router.Navigate(routes.Review(start.Deck))
	case "space":
		return s, func() tea.Msg {
			return refreshedMsg{Err: s.picker.ToggleCollapse(context.Background(), selected)}
		}
	case "a":
		s.picker.OpenCreate()
		return s, s.openInput("")
	case "r":
		if s.picker.OpenRename(selected) {
			return s, s.openInput(s.picker.Snapshot().Input)
		}
	case "d":
		s.picker.OpenRemove(selected)
	}
	s.sync()
	return s, nil
}

func (s *DecksScreen) openInput(value string) tea.Cmd {
	s.sync()
	s.input = components.NewTextInput("Parent::Child", 200)
	s.input.SetValue(value)
	return s.input.Init()
}

func (s *DecksScreen) handleDialogKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.picker.CancelDialog()
		s.sync()
		return s, nil
	case "enter":
		if !s.state.CanSubmit {
			return s, nil
		}
		return s, func() tea.Msg {
			return dialogDoneMsg{Err: s.picker.Confirm(context.Background())}
		}
	}
	if s.state.Dialog == decks.DialogRemove {
		switch msg.String() {
		case "y", "Y":
			return s, func() tea.Msg {
				return dialogDoneMsg{Err: s.picker.Confirm(context.Background())}
			}
		case "n", "N":
			s.picker.CancelDialog()
			s.sync()
		}
		return s, nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	s.picker.SetInput(s.input.Value())
	s.sync()
	s.input.Err = s.dialogError()
	return s, cmd
}

// dialogError is the message shown under the dialog input.
func (s *DecksScreen) dialogError() string {
	if s.state.Err != "" {
		return s.state.Err
	}
	switch s.state.Validation {
	case decks.ValidationAlreadyExists:
		return s.tr.T("DeckNameExists")
	case decks.ValidationInvalid:
		return s.tr.T("DeckNameInvalid")
	}
	return ""
}

func (s *DecksScreen) View(width, height int) string {
	if !s.state.Loaded {
		return components.Centered(s.tr.T("ReviewNoCard"), width)
	}
	switch s.state.Dialog {
	case decks.DialogCreate:
		return components.Dialog(s.tr.T("DeckCreateTitle"), s.input.View(), width, height)
	case decks.DialogRename:
		return components.Dialog(s.tr.T("DeckRenameTitle"), s.input.View(), width, height)
	case decks.DialogRemove:
		body := s.tr.T("DeckRemoveConfirm", map[string]any{"Name": s.state.DialogDeck.FullName}) + "\n\n(y/n)"
		if s.state.Err != "" {
			body += "\n" + theme.ErrorText.Render(s.state.Err)
		}
		return components.Dialog(s.tr.T("DeckRemoveTitle"), body, width, height)
	}
	if len(s.state.Rows) == 0 {
		return components.Centered(s.tr.T("DeckEmpty"), width)
	}

	var b strings.Builder
	b.WriteString(s.renderStatus(width))
	b.WriteString("\n")
	b.WriteString(s.renderColumns(width))
	b.WriteString("\n")

	listHeight := max(height-3, 1)
	cursor := 0
	for i, r := range s.state.Rows {
		if r.ID == s.state.Selected {
			cursor = i
		}
	}
	if cursor < s.offset {
		s.offset = cursor
	}
	if cursor >= s.offset+listHeight {
		s.offset = cursor - listHeight + 1
	}
	end := min(s.offset+listHeight, len(s.state.Rows))
	for i := s.offset; i < end; i++ {
		b.WriteString(s.renderRow(s.state.Rows[i], i == cursor, width))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *DecksScreen) renderStatus(width int) string {
	var text string
	switch s.state.Sync {
	case syncstatus.StatusPending:
		text = s.tr.T("SyncPending")
	case syncstatus.StatusFullSyncRequired:
		text = s.tr.T("SyncRequired")
	default:
		return ""
	}
	return lipgloss.NewStyle().
		Width(width - 2).
		Align(lipgloss.Right).
		Foreground(theme.Accent).
		Render("● " + text)
}

const countsWidth = 18

func (s *DecksScreen) renderColumns(width int) string {
	return lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(strings.Repeat(" ", max(width-countsWidth-4, 0)) + s.tr.T("DeckColumns"))
}

func (s *DecksScreen) renderRow(r decks.Row, selected bool, width int) string {
	marker := "  "
	if r.HasChildren {
		marker = "▾ "
		if r.Collapsed {
			marker = "▸ "
		}
	}
	cursor := "  "
	style := lipgloss.NewStyle().Foreground(theme.Text)
	if selected {
		cursor = "▶ "
		style = theme.Selected
	}

	nameWidth := max(width-countsWidth-8-2*r.Depth, 4)
	name := strings.Repeat("  ", r.Depth) + marker + layout.PadRight(r.Name, nameWidth)
	counts := countStyle(r.Counts.New, 5, theme.QueueNew) + " " +
		countStyle(r.Counts.Learn, 6, theme.QueueLearn) + " " +
		countStyle(r.Counts.Review, 5, theme.QueueReview)
	return "  " + style.Render(cursor+name) + " " + counts
}

func countStyle(n, width int, c color.Color) string {
	text := fmt.Sprintf("%*d", width, n)
	if n == 0 {
		return lipgloss.NewStyle().Foreground(theme.TextDim).Render(text)
	}
	return lipgloss.NewStyle().Foreground(c).Render(text)
}
