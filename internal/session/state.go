package session

import (
	"slices"

	"github.com/abhisek/flashiz/internal/collection"
	"github.com/abhisek/flashiz/internal/media"
	"github.com/abhisek/flashiz/internal/render"
)

// Phase is where the session is in the review loop.
type Phase int

const (
	PhaseLoading  Phase = iota // Fetching the next card
	PhaseQuestion              // Question side shown
	PhaseAnswer                // Answer side shown
	PhaseRating                // Answer submitted, waiting for the collection
	PhaseFinished              // No more due cards
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseQuestion:
		return "question"
	case PhaseAnswer:
		return "answer"
	case PhaseRating:
		return "rating"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// TagEditor is the tag dialog opened over the current card.
type TagEditor struct {
	Open      bool
	Loading   bool
	AllTags   []string
	DeckTags  []string
	Truncated bool // deck tags come from a capped scan
	Selected  []string
	Err       string
}

// State is a snapshot of the session for rendering.
type State struct {
	Phase Phase
	Deck  collection.DeckID

	// Card is the current card with its queue snapshot; nil when none is
	// loaded.
	Card   *collection.QueuedCard
	Counts collection.Counts

	AnswerShown   bool
	Question      string
	Answer        string
	QuestionAudio []string
	AnswerAudio   []string

	// Labels holds one next-interval label per rating once the answer is shown.
	Labels       []string
	ChosenAnswer string

	TypedAnswer string
	Expected    string
	Comparison  *render.Comparison

	Marked bool
	Flag   collection.Flag

	MediaError *media.Error
	Tags       TagEditor
}

// HasCard reports whether a card is loaded.
func (s State) HasCard() bool {
	return s.Card != nil
}

func (s State) clone() State {
	c := s
	if s.Card != nil {
		q := *s.Card
		q.Note.Tags = slices.Clone(s.Card.Note.Tags)
		q.Note.Fields = slices.Clone(s.Card.Note.Fields)
		c.Card = &q
	}
	c.QuestionAudio = slices.Clone(s.QuestionAudio)
	c.AnswerAudio = slices.Clone(s.AnswerAudio)
	c.Labels = slices.Clone(s.Labels)
	c.Tags.AllTags = slices.Clone(s.Tags.AllTags)
	c.Tags.DeckTags = slices.Clone(s.Tags.DeckTags)
	c.Tags.Selected = slices.Clone(s.Tags.Selected)
	return c
}

// Effect is a one-shot event for the UI.
type Effect interface {
	effect()
}

// NavigateAway fires once when the session finishes.
type NavigateAway struct{}

// LeechNotice fires when an Again rating turned the card into a leech.
type LeechNotice struct {
	Card collection.CardID
}

// NoticeKind selects a short status message.
type NoticeKind int

const (
	NoticeBuried NoticeKind = iota
	NoticeSuspended
	NoticeError
)

// Notice asks the UI to show a short status message.
type Notice struct {
	Kind NoticeKind
}

// Changed reports that state was updated outside a direct call, such as
// the tag editor finishing its load.
type Changed struct{}

func (NavigateAway) effect() {}
func (LeechNotice) effect()  {}
func (Notice) effect()       {}
func (Changed) effect()      {}
