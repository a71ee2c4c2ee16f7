package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/flashiz/internal/collection"
	"github.com/abhisek/flashiz/internal/decks"
	"github.com/abhisek/flashiz/internal/i18n"
	"github.com/abhisek/flashiz/internal/media"
	"github.com/abhisek/flashiz/internal/render"
	"github.com/abhisek/flashiz/internal/router"
	"github.com/abhisek/flashiz/internal/routes"
	"github.com/abhisek/flashiz/internal/screen"
	"github.com/abhisek/flashiz/internal/screens/browser"
	"github.com/abhisek/flashiz/internal/screens/carddetail"
	deckscreen "github.com/abhisek/flashiz/internal/screens/decks"
	"github.com/abhisek/flashiz/internal/screens/placeholder"
	"github.com/abhisek/flashiz/internal/screens/review"
	"github.com/abhisek/flashiz/internal/screens/stats"
	"github.com/abhisek/flashiz/internal/session"
	"github.com/abhisek/flashiz/internal/store"
	"github.com/abhisek/flashiz/internal/syncstatus"
	"github.com/abhisek/flashiz/internal/ui/layout"
)

// settingTimeout bounds the settings reads and writes done around the UI.
const settingTimeout = 2 * time.Second

// Backend is everything the screens need from the collection.
type Backend interface {
	collection.Collection
	decks.Backend
	browser.Searcher
	carddetail.Backend
	stats.Source
}

// Settings persists small values between runs.
type Settings interface {
	Setting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// Options holds dependencies for the app.
type Options struct {
	Collection Backend
	Settings   Settings

	// Checker reports the sync status on the deck list. Nil means always
	// in sync.
	Checker syncstatus.Checker

	// NewPlayer creates the media player for one review session. Nil
	// disables audio.
	NewPlayer func() media.Player

	Renderer   *render.Renderer
	Translator *i18n.Translator
	Session    session.Options
	Logger     *slog.Logger
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	opts   Options
	log    *slog.Logger
	router *router.Router
	width  int
	height int
}

// newAppModel creates the model, restoring the last navigation state when
// one was saved.
func newAppModel(opts Options) AppModel {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Renderer == nil {
		opts.Renderer = render.New()
	}
	if opts.Translator == nil {
		opts.Translator = i18n.Must("en")
	}
	if opts.Session.Logger == nil {
		opts.Session.Logger = opts.Logger
	}

	m := AppModel{opts: opts, log: opts.Logger.With("component", "app")}
	nav := routes.NewController()
	m.restoreNav(nav)
	m.router = router.NewRouter(nav, m.factory(decks.NewPicker(opts.Collection, opts.Checker, opts.Logger)))
	return m
}

// factory builds the screen for a route. The deck list keeps one picker
// for the life of the app.
func (m AppModel) factory(picker *decks.Picker) router.Factory {
	tr := m.opts.Translator
	return func(r router.Route) screen.Screen {
		switch r.Name {
		case routes.NameDecks:
			return deckscreen.New(picker, tr)
		case routes.NameBrowse:
			return browser.New(m.opts.Collection, tr)
		case routes.NameStats:
			return stats.New(m.opts.Collection, tr)
		case routes.NameReview:
			var player media.Player = media.Nop{}
			if m.opts.NewPlayer != nil {
				player = m.opts.NewPlayer()
			}
			sess := session.New(m.opts.Collection, collection.DeckID(r.ID), m.opts.Renderer, player, m.opts.Session)
			return review.New(sess, tr, m.opts.Logger)
		case routes.NameCardDetail:
			return carddetail.New(m.opts.Collection, m.opts.Renderer, tr, collection.CardID(r.ID))
		default:
			m.log.Warn("no screen for route", "route", r.String())
			return placeholder.New(r)
		}
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case router.NavigateMsg:
		cmd := m.router.Update(msg)
		if msg.Route.Name == routes.NameReview {
			return m, tea.Batch(cmd, m.rememberDeck(collection.DeckID(msg.Route.ID)))
		}
		return m, cmd

	case tea.KeyMsg:
		if cmd, ok := m.handleGlobalKey(msg); ok {
			return m, cmd
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// handleGlobalKey handles the keys the app owns. Section keys and quit
// only apply at a section root so detail screens can use them.
func (m AppModel) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return tea.Quit, true
	}
	if c, ok := m.router.Active().(screen.InputCapturer); ok && c.CapturesInput() {
		return nil, false
	}
	if m.router.Depth() > 1 {
		return nil, false
	}
	switch k := msg.String(); k {
	case "q":
		return tea.Quit, true
	case "esc":
		cmd, _ := m.router.Back()
		return cmd, true
	case "1", "2", "3":
		i, _ := strconv.Atoi(k)
		top := routes.TopLevel
		if i > len(top) {
			return nil, false
		}
		return m.router.Navigate(top[i-1]), true
	}
	return nil, false
}

// rememberDeck records the deck being studied so the CLI can default to it.
func (m AppModel) rememberDeck(id collection.DeckID) tea.Cmd {
	settings := m.opts.Settings
	if settings == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), settingTimeout)
		defer cancel()
		if err := settings.SetSetting(ctx, store.SettingCurrentDeck, strconv.FormatInt(int64(id), 10)); err != nil {
			m.log.Warn("save current deck", "deck", id, "error", err)
		}
		return nil
	}
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.tabs(), "", m.width)

	var footerHints []layout.KeyHint
	if p, ok := active.(screen.KeyHintProvider); ok {
		footerHints = p.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "1-3", Description: "Sections"},
			{Key: "q", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(m.height-headerHeight-footerHeight, 0)

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

func (m AppModel) tabs() []layout.Tab {
	tr := m.opts.Translator
	labels := map[string]string{
		routes.NameDecks:  tr.T("NavDecks"),
		routes.NameBrowse: tr.T("NavBrowse"),
		routes.NameStats:  tr.T("NavStats"),
	}
	active := m.router.Controller().Active()
	tabs := make([]layout.Tab, 0, len(routes.TopLevel))
	for i, r := range routes.TopLevel {
		tabs = append(tabs, layout.Tab{
			Key:    strconv.Itoa(i + 1),
			Label:  labels[r.Name],
			Active: r == active,
		})
	}
	return tabs
}

// restoreNav loads the saved navigation state into nav. Review routes are
// dropped since sessions don't survive a restart.
func (m AppModel) restoreNav(nav *router.Controller) {
	if m.opts.Settings == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), settingTimeout)
	defer cancel()

	raw, err := m.opts.Settings.Setting(ctx, store.SettingNavState)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			m.log.Warn("load navigation state", "error", err)
		}
		return
	}
	st, err := router.DecodeState(raw)
	if err != nil {
		m.log.Warn("decode navigation state", "error", err)
		return
	}
	if !nav.Restore(withoutReviews(st)) {
		m.log.Info("ignoring navigation state for another start route", "start", st.Start.String())
	}
}

// withoutReviews cuts every back stack at its first review route.
func withoutReviews(st router.State) router.State {
	for section, stack := range st.Stacks {
		for i, r := range stack {
			if r.Name == routes.NameReview {
				st.Stacks[section] = stack[:i]
				break
			}
		}
	}
	return st
}

// saveNav stores the navigation state for the next run.
func (m AppModel) saveNav() error {
	if m.opts.Settings == nil {
		return nil
	}
	raw, err := m.router.Controller().Snapshot().Encode()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), settingTimeout)
	defer cancel()
	if err := m.opts.Settings.SetSetting(ctx, store.SettingNavState, raw); err != nil {
		return fmt.Errorf("save navigation state: %w", err)
	}
	return nil
}

// shutdown saves the navigation state and closes every screen.
func (m AppModel) shutdown() {
	if err := m.saveNav(); err != nil {
		m.log.Warn("navigation state not saved", "error", err)
	}
	m.router.Close()
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(ctx context.Context, opts Options) error {
	m := newAppModel(opts)
	defer m.shutdown()

	p := tea.NewProgram(m, tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}
