// Package session implements the review loop for one deck: load a card,
// show its question and answer, rate it, and move on until nothing is due.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/abhisek/flashiz/internal/collection"
	"github.com/abhisek/flashiz/internal/media"
	"github.com/abhisek/flashiz/internal/render"
)

// DefaultTagScanLimit bounds how many notes are scanned for deck tags.
const DefaultTagScanLimit = 10000

// maxAnswerTime caps the time recorded for one answer.
const maxAnswerTime = time.Minute

// effectBuffer is the capacity of the effect channel.
const effectBuffer = 32

// Options configures a session.
type Options struct {
	Autoplay     bool
	TagScanLimit int

	Now    func() time.Time
	Logger *slog.Logger
}

// Session is the review state machine for one deck. Methods may be called
// from any goroutine; card actions (rate, bury, suspend, reload) run one at
// a time and extra requests are dropped.
type Session struct {
	ID string

	coll     collection.Collection
	renderer *render.Renderer
	player   media.Player
	opts     Options
	log      *slog.Logger

	// busy is set while a card action runs.
	busy atomic.Bool

	mu      sync.Mutex
	state   State
	shownAt time.Time
	tagGen  int
	closed  bool

	effects chan Effect
}

// New creates a session for deck. Call LoadCard to show the first card.
func New(coll collection.Collection, deck collection.DeckID, renderer *render.Renderer, player media.Player, opts Options) *Session {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.TagScanLimit <= 0 {
		opts.TagScanLimit = DefaultTagScanLimit
	}
	if renderer == nil {
		renderer = render.New()
	}
	if player == nil {
		player = media.Nop{}
	}
	id := uuid.NewString()
	return &Session{
		ID:       id,
		coll:     coll,
		renderer: renderer,
		player:   player,
		opts:     opts,
		log:      opts.Logger.With("session", id, "deck", deck),
		state:    State{Phase: PhaseLoading, Deck: deck},
		effects:  make(chan Effect, effectBuffer),
	}
}

// TagScanLimit returns how many notes the tag editor scans for deck tags.
func (s *Session) TagScanLimit() int {
	return s.opts.TagScanLimit
}

// Effects delivers one-shot events. The channel is never closed.
func (s *Session) Effects() <-chan Effect {
	return s.effects
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Close stops media playback and releases the player. Later calls are
// ignored.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	return s.player.Close()
}

func (s *Session) emit(e Effect) {
	select {
	case s.effects <- e:
	default:
		s.log.Warn("effect dropped, channel full", "effect", fmt.Sprintf("%T", e))
	}
}

// fail turns a collaborator error into a notice. Cancellation is returned
// untouched.
func (s *Session) fail(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	s.log.Error(op+" failed", "error", err)
	s.emit(Notice{Kind: NoticeError})
	return nil
}

// action runs fn as the session's single in-flight card action. It is
// dropped when another action runs, the session finished, or it was closed.
func (s *Session) action(fn func() error) error {
	if !s.busy.CompareAndSwap(false, true) {
		s.log.Debug("card action dropped, another is in flight")
		return nil
	}
	defer s.busy.Store(false)

	s.mu.Lock()
	done := s.closed || s.state.Phase == PhaseFinished
	s.mu.Unlock()
	if done {
		return nil
	}
	return fn()
}

// LoadCard fetches the next due card. When nothing is due the session
// finishes and NavigateAway fires once.
func (s *Session) LoadCard(ctx context.Context) error {
	return s.action(func() error { return s.loadCard(ctx, false) })
}

// ReloadCard re-queries the collection, for example after the card was
// edited elsewhere.
func (s *Session) ReloadCard(ctx context.Context) error {
	return s.LoadCard(ctx)
}

// loadCard replaces the current card with the next due one. consumed means
// the current card was just answered, buried or suspended; if the load then
// fails the card is dropped so it can't be acted on twice.
func (s *Session) loadCard(ctx context.Context, consumed bool) error {
	s.mu.Lock()
	prev, deck := s.state.Phase, s.state.Deck
	s.state.Phase = PhaseLoading
	s.mu.Unlock()

	q, err := s.coll.QueuedCard(ctx, deck)
	if err != nil {
		s.abandonLoad(prev, consumed)
		return s.fail("load card", err)
	}
	if q == nil {
		s.finish()
		return nil
	}

	card, err := s.renderer.Render(q.Note, q.Card.Ord)
	if err != nil {
		s.abandonLoad(prev, consumed)
		return s.fail("render card", err)
	}

	s.mu.Lock()
	s.state = State{
		Phase:         PhaseQuestion,
		Deck:          s.state.Deck,
		Card:          q,
		Counts:        q.Counts,
		Question:      card.Question,
		Answer:        card.Answer,
		QuestionAudio: card.QuestionAudio,
		AnswerAudio:   card.AnswerAudio,
		Expected:      card.Expected,
		Marked:        q.Note.HasTag(collection.MarkedTag),
		Flag:          q.Card.Flag,
	}
	s.shownAt = s.opts.Now()
	s.tagGen++
	s.mu.Unlock()

	s.log.Debug("card loaded", "card", q.Card.ID, "queue", q.Card.Queue.String())
	if s.opts.Autoplay {
		s.play(ctx, card.QuestionAudio)
	}
	return nil
}

// abandonLoad undoes the loading phase after a failed load. A consumed card
// is cleared and the session waits in PhaseLoading for ReloadCard.
func (s *Session) abandonLoad(prev Phase, consumed bool) {
	if !consumed {
		s.restorePhase(prev)
		return
	}
	s.mu.Lock()
	if s.state.Phase == PhaseLoading {
		s.state = State{Phase: PhaseLoading, Deck: s.state.Deck, Counts: s.state.Counts, MediaError: s.state.MediaError}
		s.tagGen++
	}
	s.mu.Unlock()
	s.player.Stop()
}

func (s *Session) restorePhase(p Phase) {
	s.mu.Lock()
	if s.state.Phase == PhaseLoading || s.state.Phase == PhaseRating {
		s.state.Phase = p
	}
	s.mu.Unlock()
}

func (s *Session) finish() {
	s.mu.Lock()
	if s.state.Phase == PhaseFinished {
		s.mu.Unlock()
		return
	}
	s.state = State{Phase: PhaseFinished, Deck: s.state.Deck}
	s.tagGen++
	s.mu.Unlock()

	s.player.Stop()
	s.log.Info("review finished")
	s.emit(NavigateAway{})
}

// ShowAnswer reveals the answer side and the interval label of each
// rating. It does nothing unless the question side is shown.
func (s *Session) ShowAnswer(ctx context.Context) error {
	s.mu.Lock()
	if s.state.Card == nil || s.state.Phase != PhaseQuestion {
		s.mu.Unlock()
		return nil
	}
	q := s.state.Card
	s.mu.Unlock()

	labels, err := s.coll.DescribeNextStates(ctx, q.States)
	if err != nil {
		return s.fail("describe next states", err)
	}

	s.mu.Lock()
	if s.state.Card != q || s.state.Phase != PhaseQuestion {
		s.mu.Unlock()
		return nil
	}
	s.state.Phase = PhaseAnswer
	s.state.AnswerShown = true
	s.state.Labels = labels
	if s.state.Expected != "" {
		cmp := render.CompareAnswer(s.state.Expected, s.state.TypedAnswer)
		s.state.Comparison = &cmp
	}
	audio := answerOnly(s.state.QuestionAudio, s.state.AnswerAudio)
	s.mu.Unlock()

	if s.opts.Autoplay {
		s.play(ctx, audio)
	}
	return nil
}

// answerOnly drops the question's cues repeated at the start of the answer.
func answerOnly(question, answer []string) []string {
	if len(answer) >= len(question) && slices.Equal(answer[:len(question)], question) {
		return answer[len(question):]
	}
	return answer
}

// RateCard answers the current card and loads the next one. An Again
// rating that makes the card a leech raises LeechNotice.
func (s *Session) RateCard(ctx context.Context, rating collection.Rating) error {
	return s.action(func() error {
		s.mu.Lock()
		q, prev := s.state.Card, s.state.Phase
		if q == nil || (prev != PhaseQuestion && prev != PhaseAnswer) {
			s.mu.Unlock()
			return nil
		}
		s.state.Phase = PhaseRating
		if i := int(rating) - 1; i >= 0 && i < len(s.state.Labels) {
			s.state.ChosenAnswer = s.state.Labels[i]
		}
		taken := min(s.opts.Now().Sub(s.shownAt), maxAnswerTime)
		s.mu.Unlock()

		if err := s.coll.AnswerCard(ctx, q, rating, taken); err != nil {
			s.restorePhase(prev)
			return s.fail("answer card", err)
		}
		s.log.Debug("card rated", "card", q.Card.ID, "rating", rating.String())

		if rating == collection.RatingAgain {
			leech, err := s.coll.IsLeech(ctx, q.Card.ID)
			switch {
			case err != nil && ctx.Err() != nil:
				return err
			case err != nil:
				s.log.Warn("leech check failed", "card", q.Card.ID, "error", err)
			case leech:
				s.emit(LeechNotice{Card: q.Card.ID})
			}
		}
		return s.loadCard(ctx, true)
	})
}

// BuryCard hides the current card until tomorrow and loads the next one.
func (s *Session) BuryCard(ctx context.Context) error {
	return s.cardAction(ctx, "bury card", s.coll.BuryCards, NoticeBuried)
}

// SuspendCard suspends the current card and loads the next one.
func (s *Session) SuspendCard(ctx context.Context) error {
	return s.cardAction(ctx, "suspend card", s.coll.SuspendCards, NoticeSuspended)
}

func (s *Session) cardAction(ctx context.Context, op string, apply func(context.Context, []collection.CardID) error, notice NoticeKind) error {
	return s.action(func() error {
		s.mu.Lock()
		q, phase := s.state.Card, s.state.Phase
		s.mu.Unlock()
		if q == nil || (phase != PhaseQuestion && phase != PhaseAnswer) {
			return nil
		}
		if err := apply(ctx, []collection.CardID{q.Card.ID}); err != nil {
			return s.fail(op, err)
		}
		s.emit(Notice{Kind: notice})
		return s.loadCard(ctx, true)
	})
}

// ToggleMark adds or removes the marked tag on the current note.
func (s *Session) ToggleMark(ctx context.Context) error {
	s.mu.Lock()
	q := s.state.Card
	if q == nil || s.closed {
		s.mu.Unlock()
		return nil
	}
	marked := !s.state.Marked
	tags := toggleTag(q.Note.Tags, collection.MarkedTag, marked)
	s.mu.Unlock()

	if err := s.coll.SetNoteTags(ctx, q.Note.ID, tags); err != nil {
		return s.fail("toggle mark", err)
	}

	s.mu.Lock()
	if s.state.Card != nil && s.state.Card.Note.ID == q.Note.ID {
		s.state.Card.Note.Tags = tags
		s.state.Marked = marked
	}
	s.mu.Unlock()
	return nil
}

func toggleTag(tags []string, tag string, on bool) []string {
	out := slices.DeleteFunc(slices.Clone(tags), func(t string) bool {
		return strings.EqualFold(t, tag)
	})
	if on {
		out = append(out, tag)
	}
	return out
}

// SetFlag sets the current card's flag. Setting the flag it already has
// clears it.
func (s *Session) SetFlag(ctx context.Context, flag collection.Flag) error {
	s.mu.Lock()
	q := s.state.Card
	if q == nil || s.closed {
		s.mu.Unlock()
		return nil
	}
	if flag == s.state.Flag {
		flag = collection.FlagNone
	}
	s.mu.Unlock()

	if err := s.coll.SetFlag(ctx, []collection.CardID{q.Card.ID}, flag); err != nil {
		return s.fail("set flag", err)
	}

	// The write bumps the card's modification time, which AnswerCard checks,
	// so the queued copy is refreshed without reloading the card.
	fresh, err := s.coll.Card(ctx, q.Card.ID)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		s.log.Warn("refresh flagged card", "card", q.Card.ID, "error", err)
	}

	s.mu.Lock()
	if s.state.Card == q {
		q.Card.Flag = flag
		if fresh != nil {
			q.Card.Modified = fresh.Modified
		}
		s.state.Flag = flag
	}
	s.mu.Unlock()
	return nil
}

// SetTypedAnswer records the learner's typed answer while the question is
// shown.
func (s *Session) SetTypedAnswer(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Phase == PhaseQuestion {
		s.state.TypedAnswer = text
	}
}

// ReplayMedia plays the cues of the side currently shown.
func (s *Session) ReplayMedia(ctx context.Context) {
	s.mu.Lock()
	audio := s.state.QuestionAudio
	if s.state.AnswerShown {
		audio = s.state.AnswerAudio
	}
	s.mu.Unlock()
	s.play(ctx, audio)
}

// DismissMediaError clears the playback error.
func (s *Session) DismissMediaError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.MediaError = nil
}

func (s *Session) play(ctx context.Context, files []string) {
	if len(files) == 0 {
		return
	}
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return
	}

	err := s.player.Play(ctx, files)
	if err == nil {
		return
	}
	var merr *media.Error
	if !errors.As(err, &merr) {
		merr = &media.Error{File: files[0], Err: err}
	}
	s.log.Warn("media playback failed", "file", merr.File, "error", merr.Err)

	s.mu.Lock()
	s.state.MediaError = merr
	s.mu.Unlock()
	s.emit(Changed{})
}
