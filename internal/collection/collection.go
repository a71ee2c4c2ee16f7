package collection

import (
	"context"
	"time"
)

// Scheduler answers "what is due" and applies answers.
type Scheduler interface {
	// QueuedCard returns the next due card in deck (and its subdecks), or
	// nil when nothing is due.
	QueuedCard(ctx context.Context, deck DeckID) (*QueuedCard, error)

	// DescribeNextStates returns one interval label per rating, in rating order.
	DescribeNextStates(ctx context.Context, states NextStates) ([]string, error)

	// AnswerCard applies rating to the card captured in q.
	AnswerCard(ctx context.Context, q *QueuedCard, rating Rating, taken time.Duration) error

	// IsLeech reports whether the card's lapse count has hit the leech threshold.
	IsLeech(ctx context.Context, id CardID) (bool, error)

	BuryCards(ctx context.Context, ids []CardID) error
	SuspendCards(ctx context.Context, ids []CardID) error

	DeckDueTree(ctx context.Context) (*DeckNode, error)
}

// Notes reads and writes cards, notes and tags.
type Notes interface {
	Card(ctx context.Context, id CardID) (*Card, error)
	Note(ctx context.Context, id NoteID) (*Note, error)
	SetFlag(ctx context.Context, ids []CardID, flag Flag) error
	SetNoteTags(ctx context.Context, id NoteID, tags []string) error

	// AllTags returns every tag used in the collection, sorted.
	AllTags(ctx context.Context) ([]string, error)

	// DeckTags returns the tags of notes with cards in deck, scanning at
	// most limit notes. truncated reports whether the cap was hit.
	DeckTags(ctx context.Context, deck DeckID, limit int) (tags []string, truncated bool, err error)
}

// Decks manages the deck list.
type Decks interface {
	Decks(ctx context.Context) ([]Deck, error)
	Deck(ctx context.Context, id DeckID) (*Deck, error)
	CreateDeck(ctx context.Context, name string) (DeckID, error)
	RenameDeck(ctx context.Context, id DeckID, name string) error
	RemoveDeck(ctx context.Context, id DeckID) error
	SetDeckCollapsed(ctx context.Context, id DeckID, collapsed bool) error
}

// Collection is the full collaborator surface.
type Collection interface {
	Scheduler
	Notes
	Decks
}
