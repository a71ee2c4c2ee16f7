// Package browser is the card search screen.
package browser

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/flashiz/internal/collection"
	"github.com/abhisek/flashiz/internal/i18n"
	"github.com/abhisek/flashiz/internal/render"
	"github.com/abhisek/flashiz/internal/router"
	"github.com/abhisek/flashiz/internal/routes"
	"github.com/abhisek/flashiz/internal/screen"
	"github.com/abhisek/flashiz/internal/ui/components"
	"github.com/abhisek/flashiz/internal/ui/layout"
	"github.com/abhisek/flashiz/internal/ui/theme"
)

// ResultLimit caps the rows loaded per search.
const ResultLimit = 200

// Searcher finds cards by text.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]collection.SearchResult, error)
}

type resultsMsg struct {
	query   string
	results []collection.SearchResult
	err     error
}

// BrowserScreen lists cards matching a search.
type BrowserScreen struct {
	searcher Searcher
	tr       *i18n.Translator

	input    components.TextInput
	editing  bool
	query    string
	results  []collection.SearchResult
	selected int
	offset   int
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*BrowserScreen)(nil)
var _ screen.KeyHintProvider = (*BrowserScreen)(nil)
var _ screen.Activator = (*BrowserScreen)(nil)
var _ screen.InputCapturer = (*BrowserScreen)(nil)

// New creates a browser screen.
func New(searcher Searcher, tr *i18n.Translator) *BrowserScreen {
	return &BrowserScreen{
		searcher: searcher,
		tr:       tr,
		input:    components.NewTextInput(tr.T("BrowseSearch"), 200),
	}
}

func (s *BrowserScreen) Init() tea.Cmd {
	return s.search(s.query)
}

// Activate re-runs the search so edits made elsewhere show up.
func (s *BrowserScreen) Activate() tea.Cmd {
	return s.search(s.query)
}

func (s *BrowserScreen) Title() string {
	return s.tr.T("BrowseTitle")
}

// CapturesInput reports whether the search field has focus.
func (s *BrowserScreen) CapturesInput() bool {
	return s.editing
}

func (s *BrowserScreen) KeyHints() []layout.KeyHint {
	if s.editing {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Search"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "/", Description: "Search"},
		{Key: "Enter", Description: "Open"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "q", Description: "Quit"},
	}
}

func (s *BrowserScreen) search(query string) tea.Cmd {
	return func() tea.Msg {
		results, err := s.searcher.Search(context.Background(), query, ResultLimit)
		return resultsMsg{query: query, results: results, err: err}
	}
}

func (s *BrowserScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case resultsMsg:
		if msg.query != s.query {
			return s, nil
		}
		s.loaded = true
		s.errMsg = ""
		if msg.err != nil {
			s.errMsg = s.tr.T("NoticeError")
			return s, nil
		}
		s.results = msg.results
		s.selected = min(s.selected, max(len(s.results)-1, 0))
		return s, nil

	case tea.KeyMsg:
		if s.editing {
			return s.handleInputKey(msg)
		}
		switch msg.String() {
		case "/":
			s.editing = true
			s.input.SetValue(s.query)
			return s, s.input.Init()
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.results)-1 {
				s.selected++
			}
		case "enter":
			if s.selected < len(s.results) {
				return s, router.Navigate(routes.CardDetail(s.results[s.selected].Card.ID))
			}
		case "esc":
			return s, router.Back()
		}
		return s, nil
	}

	if s.editing {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *BrowserScreen) handleInputKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.editing = false
		return s, nil
	case "enter":
		s.editing = false
		s.query = strings.TrimSpace(s.input.Value())
		s.selected = 0
		s.offset = 0
		return s, s.search(s.query)
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *BrowserScreen) View(width, height int) string {
	var b strings.Builder
	if s.editing {
		b.WriteString("  " + s.input.View())
	} else {
		q := s.query
		if q == "" {
			q = "*"
		}
		b.WriteString(theme.Hint.Render(fmt.Sprintf("  %s: %s  (%d)", s.tr.T("BrowseSearch"), q, len(s.results))))
	}
	b.WriteString("\n\n")

	switch {
	case s.errMsg != "":
		b.WriteString(theme.ErrorText.Render("  " + s.errMsg))
		return b.String()
	case !s.loaded:
		return b.String()
	case len(s.results) == 0:
		b.WriteString(components.Centered(s.tr.T("BrowseNoResults"), width))
		return b.String()
	}

	listHeight := max(height-3, 1)
	if s.selected < s.offset {
		s.offset = s.selected
	}
	if s.selected >= s.offset+listHeight {
		s.offset = s.selected - listHeight + 1
	}
	end := min(s.offset+listHeight, len(s.results))
	for i := s.offset; i < end; i++ {
		b.WriteString(renderRow(s.results[i], i == s.selected, width))
		b.WriteString("\n")
	}
	return b.String()
}

func renderRow(r collection.SearchResult, selected bool, width int) string {
	deckWidth := min(24, width/4)
	sortWidth := max(width-deckWidth-12, 10)

	front := strings.ReplaceAll(render.ToText(r.Note.Field(r.Card.Ord)), "\n", " ")
	line := layout.PadRight(front, sortWidth) + "  " + layout.PadRight(r.DeckName, deckWidth)

	style := lipgloss.NewStyle().Foreground(theme.Text)
	switch {
	case selected:
		style = theme.Selected
	case r.Card.Suspended:
		style = lipgloss.NewStyle().Foreground(theme.TextDim)
	}
	prefix := "  "
	if selected {
		prefix = "▸ "
	}
	flag := " "
	if r.Card.Flag != collection.FlagNone {
		flag = lipgloss.NewStyle().Foreground(theme.FlagColor(r.Card.Flag)).Render("⚑")
	}
	return "  " + flag + " " + style.Render(prefix+line)
}
