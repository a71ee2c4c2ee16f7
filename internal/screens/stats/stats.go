// Package stats shows today's study activity and collection totals.
package stats

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/flashiz/internal/collection"
	"github.com/abhisek/flashiz/internal/i18n"
	"github.com/abhisek/flashiz/internal/router"
	"github.com/abhisek/flashiz/internal/screen"
	"github.com/abhisek/flashiz/internal/ui/components"
	"github.com/abhisek/flashiz/internal/ui/layout"
	"github.com/abhisek/flashiz/internal/ui/theme"
)

// Source provides the statistics.
type Source interface {
	Stats(ctx context.Context) (*collection.Stats, error)
}

type statsLoadedMsg struct {
	stats *collection.Stats
	err   error
}

// StatsScreen displays a summary of the collection.
type StatsScreen struct {
	source Source
	tr     *i18n.Translator
	stats  *collection.Stats
	errMsg string
}

var _ screen.Screen = (*StatsScreen)(nil)
var _ screen.KeyHintProvider = (*StatsScreen)(nil)
var _ screen.Activator = (*StatsScreen)(nil)

// New creates a stats screen.
func New(source Source, tr *i18n.Translator) *StatsScreen {
	return &StatsScreen{source: source, tr: tr}
}

func (s *StatsScreen) Init() tea.Cmd {
	return s.load()
}

func (s *StatsScreen) Activate() tea.Cmd {
	return s.load()
}

func (s *StatsScreen) Title() string {
	return s.tr.T("NavStats")
}

func (s *StatsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "r", Description: "Refresh"},
		{Key: "Esc", Description: "Back"},
		{Key: "q", Description: "Quit"},
	}
}

func (s *StatsScreen) load() tea.Cmd {
	return func() tea.Msg {
		st, err := s.source.Stats(context.Background())
		return statsLoadedMsg{stats: st, err: err}
	}
}

func (s *StatsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case statsLoadedMsg:
		if msg.err != nil {
			s.errMsg = s.tr.T("NoticeError")
			return s, nil
		}
		s.errMsg = ""
		s.stats = msg.stats
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			return s, s.load()
		case "esc":
			return s, router.Back()
		}
	}
	return s, nil
}

func (s *StatsScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render("\n\n" + s.errMsg)
	}
	st := s.stats
	if st == nil {
		return components.Centered(s.tr.T("ReviewNoCard"), width)
	}

	center := func(str string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, str)
	}
	barWidth := min(width-8, 60)
	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", barWidth))

	var b strings.Builder
	b.WriteString(center(theme.Title.Render(s.tr.T("StatsTitle"))))
	b.WriteString("\n\n")
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Text).Render(
		s.tr.N("StatsStudied", st.ReviewedToday, map[string]any{"Minutes": int(st.TimeToday.Minutes())}))))
	b.WriteString("\n\n")

	ratings := []string{}
	for _, r := range collection.Ratings {
		ratings = append(ratings, fmt.Sprintf("%s %d", r.String(), st.RatingsToday[r]))
	}
	b.WriteString(center(theme.Hint.Render(strings.Join(ratings, "   "))))
	b.WriteString("\n")
	if st.ReviewedToday > 0 {
		correct := st.ReviewedToday - st.RatingsToday[collection.RatingAgain]
		b.WriteString("\n")
		b.WriteString(center(components.NewProgressBar("Correct", correct, st.ReviewedToday, barWidth).View()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(center(divider))
	b.WriteString("\n\n")
	b.WriteString(center(s.tr.N("DeckCardsDue", st.DueToday.Total(), nil) + "   " + theme.Counts(st.DueToday)))
	b.WriteString("\n\n")

	for _, row := range []struct {
		label string
		n     int
	}{
		{"New", st.NewCards},
		{"Learning", st.LearningCards},
		{"Review", st.ReviewCards},
		{"Suspended", st.SuspendedCards},
	} {
		b.WriteString(center(components.NewProgressBar(fmt.Sprintf("%-9s %5d", row.label, row.n), row.n, st.TotalCards, barWidth).View()))
		b.WriteString("\n")
	}
	return b.String()
}
