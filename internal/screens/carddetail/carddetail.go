// Package carddetail shows one card with its scheduling state and review
// history.
package carddetail

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/flashiz/internal/collection"
	"github.com/abhisek/flashiz/internal/i18n"
	"github.com/abhisek/flashiz/internal/render"
	"github.com/abhisek/flashiz/internal/router"
	"github.com/abhisek/flashiz/internal/screen"
	"github.com/abhisek/flashiz/internal/spacedrep"
	"github.com/abhisek/flashiz/internal/ui/components"
	"github.com/abhisek/flashiz/internal/ui/layout"
	"github.com/abhisek/flashiz/internal/ui/theme"
)

// Backend is what the card view reads and edits.
type Backend interface {
	Card(ctx context.Context, id collection.CardID) (*collection.Card, error)
	Note(ctx context.Context, id collection.NoteID) (*collection.Note, error)
	Revlog(ctx context.Context, id collection.CardID) ([]collection.RevlogEntry, error)
	SuspendCards(ctx context.Context, ids []collection.CardID) error
	UnsuspendCards(ctx context.Context, ids []collection.CardID) error
	SetFlag(ctx context.Context, ids []collection.CardID, flag collection.Flag) error
}

type loadedMsg struct {
	card   *collection.Card
	note   *collection.Note
	revlog []collection.RevlogEntry
	err    error
}

type editedMsg struct {
	err error
}

// CardScreen shows a single card.
type CardScreen struct {
	backend  Backend
	renderer *render.Renderer
	tr       *i18n.Translator
	id       collection.CardID

	card        *collection.Card
	note        *collection.Note
	rendered    *render.Card
	revlog      []collection.RevlogEntry
	errMsg      string
	flagPending bool
}

var _ screen.Screen = (*CardScreen)(nil)
var _ screen.KeyHintProvider = (*CardScreen)(nil)
var _ screen.Activator = (*CardScreen)(nil)

// New creates a card view for id.
func New(backend Backend, renderer *render.Renderer, tr *i18n.Translator, id collection.CardID) *CardScreen {
	if renderer == nil {
		renderer = render.New()
	}
	return &CardScreen{backend: backend, renderer: renderer, tr: tr, id: id}
}

func (s *CardScreen) Init() tea.Cmd {
	return s.load()
}

func (s *CardScreen) Activate() tea.Cmd {
	return s.load()
}

func (s *CardScreen) Title() string {
	return s.tr.T("CardTitle")
}

func (s *CardScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "s", Description: "Suspend"},
		{Key: "f", Description: "Flag"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *CardScreen) load() tea.Cmd {
	id := s.id
	return func() tea.Msg {
		ctx := context.Background()
		card, err := s.backend.Card(ctx, id)
		if err != nil {
			return loadedMsg{err: err}
		}
		msg := loadedMsg{card: card}
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			msg.note, err = s.backend.Note(gctx, card.NoteID)
			return err
		})
		g.Go(func() error {
			var err error
			msg.revlog, err = s.backend.Revlog(gctx, id)
			return err
		})
		msg.err = g.Wait()
		return msg
	}
}

func (s *CardScreen) edit(fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return editedMsg{err: fn(context.Background())}
	}
}

func (s *CardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.err != nil {
			s.errMsg = s.tr.T("NoticeError")
			return s, nil
		}
		s.errMsg = ""
		s.card, s.note, s.revlog = msg.card, msg.note, msg.revlog
		rendered, err := s.renderer.Render(*s.note, s.card.Ord)
		if err != nil {
			s.errMsg = err.Error()
			return s, nil
		}
		s.rendered = rendered
		return s, nil

	case editedMsg:
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			s.errMsg = s.tr.T("NoticeError")
			return s, nil
		}
		return s, s.load()

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *CardScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	if s.flagPending {
		s.flagPending = false
		if len(key) == 1 && key[0] >= '0' && key[0] <= '7' && s.card != nil {
			flag := collection.Flag(key[0] - '0')
			ids := []collection.CardID{s.id}
			return s, s.edit(func(ctx context.Context) error { return s.backend.SetFlag(ctx, ids, flag) })
		}
		return s, nil
	}

	switch key {
	case "esc":
		return s, router.Back()
	case "f":
		s.flagPending = s.card != nil
	case "s":
		if s.card == nil {
			return s, nil
		}
		ids := []collection.CardID{s.id}
		if s.card.Suspended {
			return s, s.edit(func(ctx context.Context) error { return s.backend.UnsuspendCards(ctx, ids) })
		}
		return s, s.edit(func(ctx context.Context) error { return s.backend.SuspendCards(ctx, ids) })
	}
	return s, nil
}

func (s *CardScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render("\n\n" + s.errMsg)
	}
	if s.card == nil || s.rendered == nil {
		return components.Centered(s.tr.T("ReviewNoCard"), width)
	}

	cw := components.ContentWidth(width)
	var b strings.Builder
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		components.CardFrame(s.rendered.Question+"\n\n"+theme.Hint.Render(s.rendered.Answer), cw)))
	b.WriteString("\n\n")

	label := lipgloss.NewStyle().Foreground(theme.TextDim).Width(12)
	value := lipgloss.NewStyle().Foreground(theme.Text)
	field := func(name, v string) {
		b.WriteString("  " + label.Render(name) + value.Render(v) + "\n")
	}
	c := s.card
	field("Queue", c.Queue.String())
	if c.Queue != collection.QueueNew {
		field("Due", c.Due.Local().Format("2006-01-02 15:04"))
		field("Interval", spacedrep.Describe(c.Interval))
	}
	field("Reviews", fmt.Sprint(c.Reps))
	field("Lapses", fmt.Sprint(c.Lapses))
	if c.Suspended {
		field("State", "suspended")
	}
	if c.Flag != collection.FlagNone {
		field("Flag", lipgloss.NewStyle().Foreground(theme.FlagColor(c.Flag)).Render("⚑ "+c.Flag.String()))
	}
	if len(s.note.Tags) > 0 {
		field("Tags", strings.Join(s.note.Tags, " "))
	}
	if s.flagPending {
		b.WriteString("  " + theme.Hint.Render("flag 0-7") + "\n")
	}

	b.WriteString("\n")
	if len(s.revlog) == 0 {
		b.WriteString("  " + theme.Hint.Render(s.tr.T("CardRevlogEmpty")))
		return b.String()
	}
	rows := max(height-lipgloss.Height(b.String())-1, 0)
	for i, e := range s.revlog {
		if i >= rows {
			break
		}
		b.WriteString(fmt.Sprintf("  %s  %-6s %-10s %6s  %s\n",
			e.Answered.Local().Format("2006-01-02 15:04"),
			e.Rating.String(),
			e.Queue.String(),
			spacedrep.Describe(e.Interval),
			e.TimeTaken.Round(100*time.Millisecond).String(),
		))
	}
	return b.String()
}
