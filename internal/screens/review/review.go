// Package review is the study screen for one deck.
package review

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/flashiz/internal/collection"
	"github.com/abhisek/flashiz/internal/i18n"
	"github.com/abhisek/flashiz/internal/router"
	"github.com/abhisek/flashiz/internal/screen"
	"github.com/abhisek/flashiz/internal/session"
	"github.com/abhisek/flashiz/internal/ui/components"
	"github.com/abhisek/flashiz/internal/ui/layout"
)

// noticeTTL is how long a notice stays on screen.
const noticeTTL = 3 * time.Second

// ReviewScreen drives a session.Session from key presses.
type ReviewScreen struct {
	sess *session.Session
	tr   *i18n.Translator
	log  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	state session.State
	typed components.TextInput

	tagList  components.CheckList
	tagInput components.TextInput

	flagPending bool
	notice      string
	noticeSeq   int
}

var _ screen.Screen = (*ReviewScreen)(nil)
var _ screen.KeyHintProvider = (*ReviewScreen)(nil)
var _ screen.Closer = (*ReviewScreen)(nil)
var _ screen.InputCapturer = (*ReviewScreen)(nil)

// New creates a review screen over sess. The screen owns the session and
// closes it when popped.
func New(sess *session.Session, tr *i18n.Translator, log *slog.Logger) *ReviewScreen {
	if log == nil {
		log = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ReviewScreen{
		sess:   sess,
		tr:     tr,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
		typed:  components.NewTextInput("", 0),
		state:  sess.Snapshot(),
	}
}

func (s *ReviewScreen) Init() tea.Cmd {
	return tea.Batch(
		s.run(s.sess.LoadCard),
		s.waitEffect(),
	)
}

// Close cancels pending work and releases the session's player.
func (s *ReviewScreen) Close() {
	s.cancel()
	if err := s.sess.Close(); err != nil {
		s.log.Warn("close review session", "error", err)
	}
}

func (s *ReviewScreen) Title() string {
	return s.tr.T("ReviewTitle")
}

// CapturesInput reports whether keys go to a text field.
func (s *ReviewScreen) CapturesInput() bool {
	return s.state.Tags.Open || s.typing()
}

// typing reports whether the typed-answer field is active.
func (s *ReviewScreen) typing() bool {
	return s.state.Phase == session.PhaseQuestion && s.state.Expected != ""
}

func (s *ReviewScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.state.Tags.Open:
		return []layout.KeyHint{
			{Key: "Space", Description: "Toggle"},
			{Key: "Enter", Description: "Add / Save"},
			{Key: "Esc", Description: "Cancel"},
		}
	case s.typing():
		return []layout.KeyHint{
			{Key: "Enter", Description: "Check"},
			{Key: "Esc", Description: "Back"},
		}
	case s.state.Phase == session.PhaseAnswer:
		return []layout.KeyHint{
			{Key: "1-4", Description: "Rate"},
			{Key: "-", Description: "Bury"},
			{Key: "@", Description: "Suspend"},
			{Key: "*", Description: "Mark"},
			{Key: "f", Description: "Flag"},
			{Key: "t", Description: "Tags"},
			{Key: "r", Description: "Replay"},
		}
	}
	return []layout.KeyHint{
		{Key: "Space", Description: "Show answer"},
		{Key: "-", Description: "Bury"},
		{Key: "@", Description: "Suspend"},
		{Key: "*", Description: "Mark"},
		{Key: "t", Description: "Tags"},
		{Key: "R", Description: "Reload"},
		{Key: "Esc", Description: "Back"},
	}
}

// run calls fn in the background and reports back with actionDoneMsg.
func (s *ReviewScreen) run(fn func(context.Context) error) tea.Cmd {
	ctx := s.ctx
	return func() tea.Msg {
		return actionDoneMsg{Err: fn(ctx)}
	}
}

// waitEffect blocks until the session emits an effect or the screen closes.
func (s *ReviewScreen) waitEffect() tea.Cmd {
	ctx, effects := s.ctx, s.sess.Effects()
	return func() tea.Msg {
		select {
		case e := <-effects:
			return effectMsg{Effect: e}
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *ReviewScreen) sync() {
	prev := s.state
	s.state = s.sess.Snapshot()

	if s.state.Phase == session.PhaseQuestion && (prev.Phase != session.PhaseQuestion || cardID(prev) != cardID(s.state)) {
		s.typed = components.NewTextInput(s.tr.T("ReviewTypeAnswer"), 0)
	}
	if s.state.Tags.Open {
		s.rebuildTagList()
	}
}

func cardID(st session.State) collection.CardID {
	if st.Card == nil {
		return 0
	}
	return st.Card.Card.ID
}

func (s *ReviewScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case actionDoneMsg:
		if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
			s.log.Error("review action failed", "error", msg.Err)
			return s, s.showNotice(s.tr.T("NoticeError"))
		}
		s.sync()
		return s, nil

	case effectMsg:
		return s, tea.Batch(s.handleEffect(msg.Effect), s.waitEffect())

	case noticeExpiredMsg:
		if msg.seq == s.noticeSeq {
			s.notice = ""
		}
		return s, nil

	case tea.KeyMsg:
		if s.state.Tags.Open {
			return s.handleTagKey(msg)
		}
		return s.handleKey(msg)
	}

	if s.typing() {
		var cmd tea.Cmd
		s.typed, cmd = s.typed.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *ReviewScreen) handleEffect(e session.Effect) tea.Cmd {
	s.sync()
	switch e := e.(type) {
	case session.NavigateAway:
		return router.Back()
	case session.LeechNotice:
		s.log.Info("leech", "card", e.Card)
		return s.showNotice(s.tr.T("NoticeLeech"))
	case session.Notice:
		switch e.Kind {
		case session.NoticeBuried:
			return s.showNotice(s.tr.T("NoticeBuried"))
		case session.NoticeSuspended:
			return s.showNotice(s.tr.T("NoticeSuspended"))
		default:
			return s.showNotice(s.tr.T("NoticeError"))
		}
	}
	return nil
}

func (s *ReviewScreen) showNotice(text string) tea.Cmd {
	s.noticeSeq++
	seq := s.noticeSeq
	s.notice = text
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg { return noticeExpiredMsg{seq: seq} })
}

func (s *ReviewScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.flagPending {
		s.flagPending = false
		if len(key) == 1 && key[0] >= '0' && key[0] <= '7' {
			flag := collection.Flag(key[0] - '0')
			return s, s.run(func(ctx context.Context) error { return s.sess.SetFlag(ctx, flag) })
		}
		return s, nil
	}

	if s.typing() {
		switch key {
		case "esc":
			return s, router.Back()
		case "enter":
			s.sess.SetTypedAnswer(s.typed.Value())
			return s, s.run(s.sess.ShowAnswer)
		}
		var cmd tea.Cmd
		s.typed, cmd = s.typed.Update(msg)
		return s, cmd
	}

	switch key {
	case "esc":
		return s, router.Back()
	case "space", "enter":
		if s.state.Phase == session.PhaseQuestion {
			return s, s.run(s.sess.ShowAnswer)
		}
		if s.state.Phase == session.PhaseAnswer {
			return s, s.rate(collection.RatingGood)
		}
	case "1", "2", "3", "4":
		if s.state.Phase == session.PhaseAnswer {
			return s, s.rate(collection.Rating(key[0] - '0'))
		}
	case "-":
		return s, s.run(s.sess.BuryCard)
	case "@":
		return s, s.run(s.sess.SuspendCard)
	case "*":
		return s, s.run(s.sess.ToggleMark)
	case "f":
		if s.state.HasCard() {
			s.flagPending = true
		}
	case "t":
		if s.state.HasCard() {
			s.tagInput = components.NewTextInput("new tag", 100)
			s.tagList = components.NewCheckList(nil)
			return s, tea.Batch(s.run(s.sess.OpenTagEditor), s.tagInput.Init())
		}
	case "r":
		return s, s.run(func(ctx context.Context) error {
			s.sess.ReplayMedia(ctx)
			return nil
		})
	case "R":
		return s, s.run(s.sess.ReloadCard)
	case "x":
		s.sess.DismissMediaError()
		s.sync()
	}
	return s, nil
}

func (s *ReviewScreen) rate(r collection.Rating) tea.Cmd {
	return s.run(func(ctx context.Context) error { return s.sess.RateCard(ctx, r) })
}

func (s *ReviewScreen) handleTagKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.sess.CancelTagEditor()
		s.sync()
		return s, nil
	case "enter":
		if tag := strings.TrimSpace(s.tagInput.Value()); tag != "" {
			if !slices.ContainsFunc(s.state.Tags.Selected, func(t string) bool { return strings.EqualFold(t, tag) }) {
				s.sess.ToggleTag(tag)
			}
			s.tagInput.SetValue("")
			s.sync()
			return s, nil
		}
		return s, s.run(s.sess.ConfirmTags)
	case "space":
		if it, ok := s.tagList.Current(); ok {
			s.sess.ToggleTag(it.Label)
			s.sync()
		}
		return s, nil
	case "up", "down", "ctrl+p", "ctrl+n":
		s.tagList, _ = s.tagList.Update(msg)
		return s, nil
	}
	var cmd tea.Cmd
	s.tagInput, cmd = s.tagInput.Update(msg)
	return s, cmd
}

// rebuildTagList lists every known tag plus the selection, keeping the
// cursor on the same tag.
func (s *ReviewScreen) rebuildTagList() {
	ed := s.state.Tags
	var current string
	if it, ok := s.tagList.Current(); ok {
		current = it.Label
	}

	seen := make(map[string]bool)
	var labels []string
	for _, group := range [][]string{ed.Selected, ed.DeckTags, ed.AllTags} {
		for _, t := range group {
			if k := strings.ToLower(t); !seen[k] {
				seen[k] = true
				labels = append(labels, t)
			}
		}
	}
	slices.SortFunc(labels, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})

	inDeck := func(t string) bool {
		return slices.ContainsFunc(ed.DeckTags, func(d string) bool { return strings.EqualFold(d, t) })
	}
	items := make([]components.CheckItem, 0, len(labels))
	cursor := 0
	for i, t := range labels {
		items = append(items, components.CheckItem{
			Label:   t,
			Checked: slices.ContainsFunc(ed.Selected, func(sel string) bool { return strings.EqualFold(sel, t) }),
			Dim:     !inDeck(t),
		})
		if strings.EqualFold(t, current) {
			cursor = i
		}
	}
	s.tagList.Items = items
	s.tagList.Selected = cursor
}
