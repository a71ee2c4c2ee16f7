package backend

import (
	"context"
	"fmt"

	"github.com/abhisek/flashiz/internal/collection"
	"github.com/abhisek/flashiz/internal/spacedrep"
	"github.com/abhisek/flashiz/internal/store"
)

// Stats summarises today's reviews and the collection.
func (l *Local) Stats(ctx context.Context) (*collection.Stats, error) {
	now := l.now()
	entries, err := l.st.RevlogSince(ctx, spacedrep.StartOfDay(now))
	if err != nil {
		return nil, err
	}
	st := &collection.Stats{RatingsToday: make(map[collection.Rating]int)}
	for _, e := range entries {
		st.ReviewedToday++
		st.TimeToday += e.TimeTaken
		st.RatingsToday[e.Rating]++
	}

	totals, suspended, err := l.st.QueueTotals(ctx)
	if err != nil {
		return nil, err
	}
	st.NewCards = totals[collection.QueueNew]
	st.LearningCards = totals[collection.QueueLearning] + totals[collection.QueueRelearning]
	st.ReviewCards = totals[collection.QueueReview]
	st.SuspendedCards = suspended
	st.TotalCards = st.NewCards + st.LearningCards + st.ReviewCards + suspended

	if st.DueToday, err = l.dueToday(ctx); err != nil {
		return nil, err
	}
	return st, nil
}

// ResetDeck returns every card in deck and its subdecks to the new queue.
// Review history is kept.
func (l *Local) ResetDeck(ctx context.Context, deck collection.DeckID) (int, error) {
	now := l.now()
	var n int
	err := l.st.InTx(ctx, func(r store.Repo) error {
		decks, err := r.Decks(ctx)
		if err != nil {
			return err
		}
		ids, err := subtree(decks, deck)
		if err != nil {
			return err
		}
		cards, err := r.CardsInDecks(ctx, ids)
		if err != nil {
			return err
		}
		cardIDs := make([]collection.CardID, len(cards))
		for i, c := range cards {
			cardIDs[i] = c.ID
		}
		if err := r.ResetCards(ctx, cardIDs, now); err != nil {
			return err
		}
		n = len(cardIDs)
		return touch(ctx, r, now)
	})
	if err != nil {
		return 0, fmt.Errorf("reset deck %d: %w", deck, err)
	}
	return n, nil
}
