package session

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/abhisek/flashiz/internal/apperrors"
	"github.com/abhisek/flashiz/internal/collection"
	"github.com/abhisek/flashiz/internal/media"
)

// fakeCollection serves cards from a fixed queue and records calls.
type fakeCollection struct {
	mu sync.Mutex

	queue []*collection.QueuedCard
	notes map[collection.NoteID]*collection.Note

	queueErr  error
	answerErr error
	leech     bool
	tagsErr   error

	// answerGate, when set, blocks AnswerCard until closed. answerEntered
	// is signalled when AnswerCard starts.
	answerGate    chan struct{}
	answerEntered chan struct{}

	answered  []collection.Rating
	leechChks int
	buried    []collection.CardID
	suspended []collection.CardID
	flags     map[collection.CardID]collection.Flag
	// modified mirrors the store's card mtime: card writes bump it and
	// AnswerCard rejects a queued card that is older.
	modified  map[collection.CardID]time.Time
	deckTags  []string
	allTags   []string
	truncated bool
	tagLimit  int
}

func newFakeCollection(cards ...*collection.QueuedCard) *fakeCollection {
	f := &fakeCollection{
		queue:    cards,
		notes:    make(map[collection.NoteID]*collection.Note),
		flags:    make(map[collection.CardID]collection.Flag),
		modified: make(map[collection.CardID]time.Time),
	}
	for _, c := range cards {
		n := c.Note
		f.notes[n.ID] = &n
	}
	return f
}

func basicCard(id int64, front string) *collection.QueuedCard {
	return &collection.QueuedCard{
		Card: collection.Card{ID: collection.CardID(id), NoteID: collection.NoteID(id), DeckID: 1},
		Note: collection.Note{
			ID:     collection.NoteID(id),
			Kind:   collection.KindBasic,
			Fields: []string{front, front + " back"},
		},
		Counts: collection.Counts{New: 1},
	}
}

func (f *fakeCollection) QueuedCard(ctx context.Context, _ collection.DeckID) (*collection.QueuedCard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.queueErr != nil {
		return nil, f.queueErr
	}
	if len(f.queue) == 0 {
		return nil, nil
	}
	q := *f.queue[0]
	if n, ok := f.notes[q.Note.ID]; ok {
		q.Note = *n
	}
	q.Card.Modified = f.modified[q.Card.ID]
	return &q, nil
}

func (f *fakeCollection) DescribeNextStates(context.Context, collection.NextStates) ([]string, error) {
	return []string{"<1m", "6m", "10m", "4d"}, nil
}

func (f *fakeCollection) AnswerCard(ctx context.Context, q *collection.QueuedCard, r collection.Rating, _ time.Duration) error {
	if f.answerEntered != nil {
		f.answerEntered <- struct{}{}
	}
	if f.answerGate != nil {
		<-f.answerGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.answerErr != nil {
		return f.answerErr
	}
	if !q.Card.Modified.Equal(f.modified[q.Card.ID]) {
		return apperrors.Conflict("This card was changed elsewhere.", nil)
	}
	f.answered = append(f.answered, r)
	f.pop(q.Card.ID)
	return nil
}

func (f *fakeCollection) pop(id collection.CardID) {
	f.queue = slices.DeleteFunc(f.queue, func(c *collection.QueuedCard) bool { return c.Card.ID == id })
}

func (f *fakeCollection) IsLeech(context.Context, collection.CardID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leechChks++
	return f.leech, nil
}

func (f *fakeCollection) BuryCards(_ context.Context, ids []collection.CardID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buried = append(f.buried, ids...)
	for _, id := range ids {
		f.pop(id)
	}
	return nil
}

func (f *fakeCollection) SuspendCards(_ context.Context, ids []collection.CardID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.suspended = append(f.suspended, ids...)
	for _, id := range ids {
		f.pop(id)
	}
	return nil
}

func (f *fakeCollection) DeckDueTree(context.Context) (*collection.DeckNode, error) {
	return &collection.DeckNode{}, nil
}

func (f *fakeCollection) Card(_ context.Context, id collection.CardID) (*collection.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &collection.Card{ID: id, Flag: f.flags[id], Modified: f.modified[id]}, nil
}

func (f *fakeCollection) Note(_ context.Context, id collection.NoteID) (*collection.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := *f.notes[id]
	n.Tags = slices.Clone(n.Tags)
	return &n, nil
}

func (f *fakeCollection) SetFlag(_ context.Context, ids []collection.CardID, flag collection.Flag) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		f.flags[id] = flag
		f.modified[id] = f.modified[id].Add(time.Second)
	}
	return nil
}

func (f *fakeCollection) SetNoteTags(_ context.Context, id collection.NoteID, tags []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tagsErr != nil {
		return f.tagsErr
	}
	f.notes[id].Tags = slices.Clone(tags)
	return nil
}

func (f *fakeCollection) AllTags(context.Context) ([]string, error) {
	return f.allTags, f.tagsErr
}

func (f *fakeCollection) DeckTags(_ context.Context, _ collection.DeckID, limit int) ([]string, bool, error) {
	f.mu.Lock()
	f.tagLimit = limit
	f.mu.Unlock()
	return f.deckTags, f.truncated, f.tagsErr
}

func (f *fakeCollection) Decks(context.Context) ([]collection.Deck, error) { return nil, nil }
func (f *fakeCollection) Deck(context.Context, collection.DeckID) (*collection.Deck, error) {
	return &collection.Deck{}, nil
}
func (f *fakeCollection) CreateDeck(context.Context, string) (collection.DeckID, error) {
	return 0, nil
}
func (f *fakeCollection) RenameDeck(context.Context, collection.DeckID, string) error { return nil }
func (f *fakeCollection) RemoveDeck(context.Context, collection.DeckID) error         { return nil }
func (f *fakeCollection) SetDeckCollapsed(context.Context, collection.DeckID, bool) error {
	return nil
}

// fakePlayer records what was played and fails when err is set.
type fakePlayer struct {
	mu     sync.Mutex
	played [][]string
	err    error
	closed bool
	stops  int
}

func (p *fakePlayer) Play(_ context.Context, files []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.played = append(p.played, files)
	return p.err
}

func (p *fakePlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stops++
}

func (p *fakePlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

var _ media.Player = (*fakePlayer)(nil)
