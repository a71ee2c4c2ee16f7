// Package collection defines the contract between the review UI and the
// card collection: the domain types exchanged and the operations the UI
// may call. Implementations own scheduling, storage and transactions.
package collection

import (
	"slices"
	"strings"
	"time"
)

type (
	DeckID int64
	NoteID int64
	CardID int64
)

// DefaultDeckID is the deck that always exists.
const DefaultDeckID DeckID = 1

// DeckSeparator joins the components of a nested deck name.
const DeckSeparator = "::"

// Deck is a named container of cards. Nesting is expressed through the name.
type Deck struct {
	ID        DeckID
	Name      string
	Collapsed bool
}

// NoteKind selects the card templates generated for a note.
type NoteKind string

const (
	KindBasic    NoteKind = "basic"    // front -> back
	KindReversed NoteKind = "reversed" // front -> back and back -> front
	KindTyped    NoteKind = "typed"    // front -> back, answer typed in
)

// Note holds the fields and tags shared by the cards generated from it.
type Note struct {
	ID     NoteID
	GUID   string
	Kind   NoteKind
	Fields []string // Front, Back
	Tags   []string
}

// MarkedTag is the tag used to mark a note.
const MarkedTag = "marked"

// LeechTag is added to notes whose cards become leeches.
const LeechTag = "leech"

// HasTag reports whether the note carries tag (case-insensitive).
func (n *Note) HasTag(tag string) bool {
	return slices.ContainsFunc(n.Tags, func(t string) bool {
		return strings.EqualFold(t, tag)
	})
}

// Field returns the i-th field or "" when absent.
func (n *Note) Field(i int) string {
	if i < 0 || i >= len(n.Fields) {
		return ""
	}
	return n.Fields[i]
}

// Queue is the scheduling queue a card sits in.
type Queue int

const (
	QueueNew Queue = iota
	QueueLearning
	QueueReview
	QueueRelearning
)

func (q Queue) String() string {
	switch q {
	case QueueNew:
		return "new"
	case QueueLearning:
		return "learning"
	case QueueReview:
		return "review"
	case QueueRelearning:
		return "relearning"
	default:
		return "unknown"
	}
}

// Flag is a coloured marker on a card. Zero means no flag.
type Flag int

const (
	FlagNone Flag = iota
	FlagRed
	FlagOrange
	FlagGreen
	FlagBlue
	FlagPink
	FlagTurquoise
	FlagPurple
)

// MaxFlag is the highest valid flag value.
const MaxFlag = FlagPurple

func (f Flag) String() string {
	switch f {
	case FlagNone:
		return "none"
	case FlagRed:
		return "red"
	case FlagOrange:
		return "orange"
	case FlagGreen:
		return "green"
	case FlagBlue:
		return "blue"
	case FlagPink:
		return "pink"
	case FlagTurquoise:
		return "turquoise"
	case FlagPurple:
		return "purple"
	default:
		return "unknown"
	}
}

// Valid reports whether f is a known flag.
func (f Flag) Valid() bool {
	return f >= FlagNone && f <= MaxFlag
}

// Card is one reviewable side of a note.
type Card struct {
	ID       CardID
	NoteID   NoteID
	DeckID   DeckID
	Ord      int // template ordinal
	Queue    Queue
	Stage    int // learning step or review ladder index
	Due      time.Time
	Interval time.Duration
	Reps     int
	Lapses   int
	Flag     Flag

	Suspended   bool
	BuriedUntil time.Time

	Modified time.Time
}

// Rating is the learner's answer to a card.
type Rating int

const (
	RatingAgain Rating = iota + 1
	RatingHard
	RatingGood
	RatingEasy
)

// Ratings lists every rating in button order.
var Ratings = []Rating{RatingAgain, RatingHard, RatingGood, RatingEasy}

func (r Rating) String() string {
	switch r {
	case RatingAgain:
		return "again"
	case RatingHard:
		return "hard"
	case RatingGood:
		return "good"
	case RatingEasy:
		return "easy"
	default:
		return "unknown"
	}
}

// Valid reports whether r is one of the four ratings.
func (r Rating) Valid() bool {
	return r >= RatingAgain && r <= RatingEasy
}

// CardState is the scheduling part of a card, before or after an answer.
type CardState struct {
	Queue    Queue
	Stage    int
	Due      time.Time
	Interval time.Duration
	Lapses   int
}

// NextStates holds the current state and the state each rating would produce.
type NextStates struct {
	Current CardState
	Again   CardState
	Hard    CardState
	Good    CardState
	Easy    CardState
}

// For returns the state the given rating would produce.
func (n NextStates) For(r Rating) CardState {
	switch r {
	case RatingAgain:
		return n.Again
	case RatingHard:
		return n.Hard
	case RatingEasy:
		return n.Easy
	default:
		return n.Good
	}
}

// Counts are due-card counts, as shown on the deck list and during review.
type Counts struct {
	New    int
	Learn  int
	Review int
}

// Total returns the sum of all counts.
func (c Counts) Total() int {
	return c.New + c.Learn + c.Review
}

// QueuedCard is the next due card together with a snapshot of its
// scheduling options and the remaining counts.
type QueuedCard struct {
	Card   Card
	Note   Note
	States NextStates
	Counts Counts
}

// DeckNode is one level of the deck due tree.
type DeckNode struct {
	ID        DeckID
	Name      string // last name component
	FullName  string
	Level     int
	Collapsed bool
	Counts    Counts
	Children  []*DeckNode
}

// RevlogEntry records one answer.
type RevlogEntry struct {
	ID        int64
	CardID    CardID
	Rating    Rating
	Queue     Queue // queue before the answer
	Interval  time.Duration
	TimeTaken time.Duration
	Answered  time.Time
}

// Stats summarises review activity for a day and the collection as a whole.
type Stats struct {
	ReviewedToday int
	TimeToday     time.Duration
	RatingsToday  map[Rating]int

	TotalCards     int
	NewCards       int
	LearningCards  int
	ReviewCards    int
	SuspendedCards int

	DueToday Counts
}

// SearchResult is one row of the card browser.
type SearchResult struct {
	Card     Card
	Note     Note
	DeckName string
}
