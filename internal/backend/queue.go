package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/flashiz/internal/apperrors"
	"github.com/abhisek/flashiz/internal/collection"
	"github.com/abhisek/flashiz/internal/spacedrep"
	"github.com/abhisek/flashiz/internal/store"
)

// doneToday counts answers given today to new and review cards, which
// count against the daily limits.
type doneToday struct {
	New    int
	Review int
}

func (l *Local) doneToday(ctx context.Context, now time.Time) (doneToday, error) {
	entries, err := l.st.RevlogSince(ctx, spacedrep.StartOfDay(now))
	if err != nil {
		return doneToday{}, err
	}
	var d doneToday
	for _, e := range entries {
		switch e.Queue {
		case collection.QueueNew:
			d.New++
		case collection.QueueReview:
			d.Review++
		}
	}
	return d, nil
}

func remaining(limit, done, available int) int {
	left := limit - done
	if left < 0 {
		left = 0
	}
	return min(left, available)
}

func (l *Local) filter(decks []collection.DeckID, q collection.Queue, now time.Time) store.QueueFilter {
	f := store.QueueFilter{Decks: decks, Queue: q, Now: now}
	switch q {
	case collection.QueueLearning, collection.QueueRelearning:
		f.DueBefore = now.Add(l.opts.LearnAhead + time.Millisecond)
	case collection.QueueReview:
		f.DueBefore = spacedrep.EndOfDay(now)
	}
	return f
}

func (l *Local) counts(ctx context.Context, decks []collection.DeckID, now time.Time, done doneToday) (collection.Counts, error) {
	var c collection.Counts
	for _, q := range []collection.Queue{collection.QueueLearning, collection.QueueRelearning} {
		n, err := l.st.CountQueue(ctx, l.filter(decks, q, now))
		if err != nil {
			return c, err
		}
		c.Learn += n
	}
	rev, err := l.st.CountQueue(ctx, l.filter(decks, collection.QueueReview, now))
	if err != nil {
		return c, err
	}
	c.Review = remaining(l.opts.ReviewsPerDay, done.Review, rev)

	nw, err := l.st.CountQueue(ctx, l.filter(decks, collection.QueueNew, now))
	if err != nil {
		return c, err
	}
	c.New = remaining(l.opts.NewPerDay, done.New, nw)
	return c, nil
}

// QueuedCard returns the next card to study in deck and its subdecks:
// learning cards due within the learn-ahead window first, then reviews due
// today, then new cards, within the daily limits.
func (l *Local) QueuedCard(ctx context.Context, deck collection.DeckID) (*collection.QueuedCard, error) {
	ids, err := l.subtreeIDs(ctx, deck)
	if err != nil {
		return nil, err
	}
	now := l.now()
	done, err := l.doneToday(ctx, now)
	if err != nil {
		return nil, err
	}
	counts, err := l.counts(ctx, ids, now, done)
	if err != nil {
		return nil, err
	}

	card, err := l.nextCard(ctx, ids, now, counts)
	if err != nil || card == nil {
		return nil, err
	}
	note, err := l.st.Note(ctx, card.NoteID)
	if err != nil {
		return nil, fmt.Errorf("note of card %d: %w", card.ID, err)
	}
	return &collection.QueuedCard{
		Card:   *card,
		Note:   *note,
		States: l.sched.NextStates(spacedrep.StateOf(*card), now),
		Counts: counts,
	}, nil
}

func (l *Local) nextCard(ctx context.Context, decks []collection.DeckID, now time.Time, counts collection.Counts) (*collection.Card, error) {
	if counts.Learn > 0 {
		var best *collection.Card
		for _, q := range []collection.Queue{collection.QueueLearning, collection.QueueRelearning} {
			cards, err := l.st.QueueCards(ctx, l.filter(decks, q, now), 1)
			if err != nil {
				return nil, err
			}
			if len(cards) > 0 && (best == nil || cards[0].Due.Before(best.Due)) {
				best = &cards[0]
			}
		}
		if best != nil {
			return best, nil
		}
	}
	for _, q := range []struct {
		queue collection.Queue
		n     int
	}{{collection.QueueReview, counts.Review}, {collection.QueueNew, counts.New}} {
		if q.n == 0 {
			continue
		}
		cards, err := l.st.QueueCards(ctx, l.filter(decks, q.queue, now), 1)
		if err != nil {
			return nil, err
		}
		if len(cards) > 0 {
			return &cards[0], nil
		}
	}
	return nil, nil
}

// DescribeNextStates labels the interval each rating would produce.
func (l *Local) DescribeNextStates(_ context.Context, states collection.NextStates) ([]string, error) {
	return spacedrep.DescribeStates(states), nil
}

// AnswerCard applies rating to the card captured in q. It fails with a
// conflict error when the card changed since q was read.
func (l *Local) AnswerCard(ctx context.Context, q *collection.QueuedCard, rating collection.Rating, taken time.Duration) error {
	if q == nil {
		return apperrors.Validation("No card to answer.")
	}
	if !rating.Valid() {
		return apperrors.Validation(fmt.Sprintf("Unknown rating %d.", rating))
	}
	now := l.now()
	next := l.sched.NextStates(spacedrep.StateOf(q.Card), now).For(rating)

	card := q.Card
	card.Queue = next.Queue
	card.Stage = next.Stage
	card.Due = next.Due
	card.Interval = next.Interval
	card.Lapses = next.Lapses
	card.Reps++

	err := l.st.InTx(ctx, func(r store.Repo) error {
		ok, err := r.UpdateCardSchedule(ctx, card, now)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.Conflict("This card was changed elsewhere.", fmt.Errorf("card %d modified since it was queued", card.ID))
		}
		err = r.InsertRevlog(ctx, collection.RevlogEntry{
			CardID:    card.ID,
			Rating:    rating,
			Queue:     q.Card.Queue,
			Interval:  next.Interval,
			TimeTaken: taken,
			Answered:  now,
		})
		if err != nil {
			return err
		}
		if next.Lapses > q.Card.Lapses && l.sched.IsLeech(next.Lapses) {
			if err := l.applyLeechAction(ctx, r, card, now); err != nil {
				return err
			}
		}
		return touch(ctx, r, now)
	})
	if err != nil {
		return fmt.Errorf("answer card %d: %w", q.Card.ID, err)
	}
	l.log.Debug("card answered", "card", card.ID, "rating", rating.String(), "queue", card.Queue.String(), "due", card.Due)
	return nil
}

func (l *Local) applyLeechAction(ctx context.Context, r store.Repo, card collection.Card, now time.Time) error {
	l.log.Info("card became a leech", "card", card.ID, "lapses", card.Lapses, "action", string(l.opts.LeechAction))
	if l.opts.LeechAction == LeechSuspend {
		return r.SetCardsSuspended(ctx, []collection.CardID{card.ID}, true, now)
	}
	note, err := r.Note(ctx, card.NoteID)
	if err != nil {
		return err
	}
	if note.HasTag(collection.LeechTag) {
		return nil
	}
	return r.SetNoteTags(ctx, note.ID, append(note.Tags, collection.LeechTag), now)
}

// IsLeech reports whether the card's last answer was a lapse that put its
// lapse count on a leech threshold.
func (l *Local) IsLeech(ctx context.Context, id collection.CardID) (bool, error) {
	card, err := l.st.Card(ctx, id)
	if err != nil {
		return false, notFound(err, "Card not found.")
	}
	if !l.sched.IsLeech(card.Lapses) {
		return false, nil
	}
	entries, err := l.st.RevlogForCard(ctx, id)
	if err != nil {
		return false, err
	}
	if len(entries) == 0 {
		return false, nil
	}
	last := entries[0]
	return last.Rating == collection.RatingAgain && last.Queue == collection.QueueReview, nil
}

// BuryCards hides cards until the end of the day.
func (l *Local) BuryCards(ctx context.Context, ids []collection.CardID) error {
	now := l.now()
	return l.st.InTx(ctx, func(r store.Repo) error {
		if err := r.SetCardsBuried(ctx, ids, spacedrep.EndOfDay(now), now); err != nil {
			return err
		}
		return touch(ctx, r, now)
	})
}

// SuspendCards removes cards from review until unsuspended.
func (l *Local) SuspendCards(ctx context.Context, ids []collection.CardID) error {
	return l.setSuspended(ctx, ids, true)
}

// UnsuspendCards returns suspended cards to their queues.
func (l *Local) UnsuspendCards(ctx context.Context, ids []collection.CardID) error {
	return l.setSuspended(ctx, ids, false)
}

func (l *Local) setSuspended(ctx context.Context, ids []collection.CardID, suspended bool) error {
	now := l.now()
	return l.st.InTx(ctx, func(r store.Repo) error {
		if err := r.SetCardsSuspended(ctx, ids, suspended, now); err != nil {
			return err
		}
		return touch(ctx, r, now)
	})
}
