package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/flashiz/internal/collection"
)

var cardColumns = []string{
	"id", "note_id", "deck_id", "ord", "queue", "stage", "due", "interval_ms",
	"reps", "lapses", "flag", "suspended", "buried_until", "mtime",
}

func qualified(t *entsql.SelectTable, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = t.C(c)
	}
	return out
}

// cardDest returns scan destinations for cardColumns and a finisher that
// copies them into c.
func cardDest(c *collection.Card) ([]any, func()) {
	var (
		id, noteID, deckID       int64
		queue, flag              int
		due, interval, buried, m int64
	)
	dest := []any{
		&id, &noteID, &deckID, &c.Ord, &queue, &c.Stage, &due, &interval,
		&c.Reps, &c.Lapses, &flag, &c.Suspended, &buried, &m,
	}
	return dest, func() {
		c.ID = collection.CardID(id)
		c.NoteID = collection.NoteID(noteID)
		c.DeckID = collection.DeckID(deckID)
		c.Queue = collection.Queue(queue)
		c.Flag = collection.Flag(flag)
		c.Due = fromMillis(due)
		c.Interval = time.Duration(interval) * time.Millisecond
		c.BuriedUntil = fromMillis(buried)
		c.Modified = fromMillis(m)
	}
}

func scanCard(sc interface{ Scan(...any) error }) (collection.Card, error) {
	var c collection.Card
	dest, finish := cardDest(&c)
	if err := sc.Scan(dest...); err != nil {
		return c, err
	}
	finish()
	return c, nil
}

// InsertCard stores a new card and returns its id. Modified is set to now.
func (r Repo) InsertCard(ctx context.Context, c collection.Card, now time.Time) (collection.CardID, error) {
	q, args := builder().Insert(TableCards).
		Columns(cardColumns[1:]...).
		Values(int64(c.NoteID), int64(c.DeckID), c.Ord, int(c.Queue), c.Stage,
			toMillis(c.Due), c.Interval.Milliseconds(), c.Reps, c.Lapses, int(c.Flag),
			c.Suspended, toMillis(c.BuriedUntil), toMillis(now)).
		Query()
	res, err := r.exec(ctx, q, args)
	if err != nil {
		return 0, fmt.Errorf("insert card: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert card: %w", err)
	}
	return collection.CardID(id), nil
}

// Card returns the card with id, or ErrNotFound.
func (r Repo) Card(ctx context.Context, id collection.CardID) (*collection.Card, error) {
	q, args := builder().Select(cardColumns...).
		From(entsql.Table(TableCards)).
		Where(entsql.EQ("id", int64(id))).
		Query()
	c, err := scanCard(r.q.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query card %d: %w", id, err)
	}
	return &c, nil
}

// UpdateCardSchedule writes the scheduling fields of c, provided the row
// still carries the modification time c was read with. It reports whether
// a row was updated.
func (r Repo) UpdateCardSchedule(ctx context.Context, c collection.Card, now time.Time) (bool, error) {
	q, args := builder().Update(TableCards).
		Set("queue", int(c.Queue)).
		Set("stage", c.Stage).
		Set("due", toMillis(c.Due)).
		Set("interval_ms", c.Interval.Milliseconds()).
		Set("reps", c.Reps).
		Set("lapses", c.Lapses).
		Set("mtime", toMillis(now)).
		Where(entsql.And(
			entsql.EQ("id", int64(c.ID)),
			entsql.EQ("mtime", toMillis(c.Modified)),
		)).
		Query()
	res, err := r.exec(ctx, q, args)
	if err != nil {
		return false, fmt.Errorf("update card %d: %w", c.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update card %d: %w", c.ID, err)
	}
	return n > 0, nil
}

// QueueFilter selects cards eligible for review.
type QueueFilter struct {
	Decks     []collection.DeckID
	Queue     collection.Queue
	DueBefore time.Time // zero means no due bound
	Now       time.Time // buried cards are excluded until their bury expires
}

func (f QueueFilter) predicate() *entsql.Predicate {
	preds := []*entsql.Predicate{
		entsql.In("deck_id", deckArgs(f.Decks)...),
		entsql.EQ("queue", int(f.Queue)),
		entsql.EQ("suspended", false),
		entsql.LTE("buried_until", toMillis(f.Now)),
	}
	if !f.DueBefore.IsZero() {
		preds = append(preds, entsql.LT("due", toMillis(f.DueBefore)))
	}
	return entsql.And(preds...)
}

// QueueCards returns up to limit eligible cards, earliest due first. New
// cards come in creation order.
func (r Repo) QueueCards(ctx context.Context, f QueueFilter, limit int) ([]collection.Card, error) {
	if len(f.Decks) == 0 || limit <= 0 {
		return nil, nil
	}
	sel := builder().Select(cardColumns...).
		From(entsql.Table(TableCards)).
		Where(f.predicate())
	if f.Queue == collection.QueueNew {
		sel = sel.OrderBy("id")
	} else {
		sel = sel.OrderBy("due", "id")
	}
	q, args := sel.Limit(limit).Query()
	return r.cards(ctx, q, args)
}

// CountQueue counts eligible cards.
func (r Repo) CountQueue(ctx context.Context, f QueueFilter) (int, error) {
	if len(f.Decks) == 0 {
		return 0, nil
	}
	q, args := builder().Select(entsql.Count("*")).
		From(entsql.Table(TableCards)).
		Where(f.predicate()).
		Query()
	var n int
	if err := r.q.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s cards: %w", f.Queue, err)
	}
	return n, nil
}

// CardsOfNote returns every card generated from a note.
func (r Repo) CardsOfNote(ctx context.Context, id collection.NoteID) ([]collection.Card, error) {
	q, args := builder().Select(cardColumns...).
		From(entsql.Table(TableCards)).
		Where(entsql.EQ("note_id", int64(id))).
		OrderBy("ord").
		Query()
	return r.cards(ctx, q, args)
}

// CardsInDecks returns every card in the given decks.
func (r Repo) CardsInDecks(ctx context.Context, decks []collection.DeckID) ([]collection.Card, error) {
	if len(decks) == 0 {
		return nil, nil
	}
	q, args := builder().Select(cardColumns...).
		From(entsql.Table(TableCards)).
		Where(entsql.In("deck_id", deckArgs(decks)...)).
		OrderBy("id").
		Query()
	return r.cards(ctx, q, args)
}

// SetCardsFlag sets the flag of the given cards.
func (r Repo) SetCardsFlag(ctx context.Context, ids []collection.CardID, flag collection.Flag, now time.Time) error {
	return r.updateCards(ctx, ids, now, "flag", int(flag))
}

// SetCardsSuspended suspends or unsuspends the given cards.
func (r Repo) SetCardsSuspended(ctx context.Context, ids []collection.CardID, suspended bool, now time.Time) error {
	return r.updateCards(ctx, ids, now, "suspended", suspended)
}

// SetCardsBuried hides the given cards until the given time.
func (r Repo) SetCardsBuried(ctx context.Context, ids []collection.CardID, until, now time.Time) error {
	return r.updateCards(ctx, ids, now, "buried_until", toMillis(until))
}

// ResetCards returns the given cards to the new queue.
func (r Repo) ResetCards(ctx context.Context, ids []collection.CardID, now time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	q, args := builder().Update(TableCards).
		Set("queue", int(collection.QueueNew)).
		Set("stage", 0).
		Set("due", 0).
		Set("interval_ms", 0).
		Set("reps", 0).
		Set("lapses", 0).
		Set("buried_until", 0).
		Set("mtime", toMillis(now)).
		Where(entsql.In("id", cardArgs(ids)...)).
		Query()
	if _, err := r.exec(ctx, q, args); err != nil {
		return fmt.Errorf("reset cards: %w", err)
	}
	return nil
}

// DeleteCardsInDecks removes every card in the given decks.
func (r Repo) DeleteCardsInDecks(ctx context.Context, decks []collection.DeckID) error {
	if len(decks) == 0 {
		return nil
	}
	q, args := builder().Delete(TableCards).
		Where(entsql.In("deck_id", deckArgs(decks)...)).
		Query()
	if _, err := r.exec(ctx, q, args); err != nil {
		return fmt.Errorf("delete cards: %w", err)
	}
	return nil
}

// QueueTotals counts unsuspended cards per queue and suspended cards.
func (r Repo) QueueTotals(ctx context.Context) (map[collection.Queue]int, int, error) {
	q, args := builder().Select("queue", "suspended", entsql.Count("*")).
		From(entsql.Table(TableCards)).
		GroupBy("queue", "suspended").
		Query()
	rows, err := r.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("count cards: %w", err)
	}
	defer rows.Close()

	totals := make(map[collection.Queue]int)
	suspended := 0
	for rows.Next() {
		var (
			queue, n int
			susp     bool
		)
		if err := rows.Scan(&queue, &susp, &n); err != nil {
			return nil, 0, fmt.Errorf("scan count: %w", err)
		}
		if susp {
			suspended += n
			continue
		}
		totals[collection.Queue(queue)] += n
	}
	return totals, suspended, rows.Err()
}

// SearchCards returns cards whose note fields or tags contain query,
// case-insensitively. An empty query matches every card.
func (r Repo) SearchCards(ctx context.Context, query string, limit int) ([]collection.SearchResult, error) {
	c := entsql.Table(TableCards).As("c")
	n := entsql.Table(TableNotes).As("n")
	d := entsql.Table(TableDecks).As("d")

	cols := qualified(c, cardColumns)
	cols = append(cols, qualified(n, noteColumns)...)
	cols = append(cols, d.C("name"))

	sel := builder().Select(cols...).
		From(c).
		Join(n).On(c.C("note_id"), n.C("id")).
		Join(d).On(c.C("deck_id"), d.C("id"))
	if query != "" {
		sel = sel.Where(entsql.Or(
			entsql.ContainsFold(n.C("fields"), query),
			entsql.ContainsFold(n.C("tags"), query),
		))
	}
	sel = sel.OrderBy(c.C("id"))
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	q, args := sel.Query()

	rows, err := r.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("search cards: %w", err)
	}
	defer rows.Close()

	var out []collection.SearchResult
	for rows.Next() {
		var res collection.SearchResult
		dest, finish := cardDest(&res.Card)
		var (
			noteID         int64
			kind           string
			fields, tagStr string
		)
		dest = append(dest, &noteID, &res.Note.GUID, &kind, &fields, &tagStr, &res.DeckName)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan search row: %w", err)
		}
		finish()
		note, err := decodeNote(noteID, res.Note.GUID, kind, fields, tagStr)
		if err != nil {
			return nil, err
		}
		res.Note = note
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r Repo) updateCards(ctx context.Context, ids []collection.CardID, now time.Time, col string, value any) error {
	if len(ids) == 0 {
		return nil
	}
	q, args := builder().Update(TableCards).
		Set(col, value).
		Set("mtime", toMillis(now)).
		Where(entsql.In("id", cardArgs(ids)...)).
		Query()
	if _, err := r.exec(ctx, q, args); err != nil {
		return fmt.Errorf("update cards %s: %w", col, err)
	}
	return nil
}

func (r Repo) cards(ctx context.Context, q string, args []any) ([]collection.Card, error) {
	rows, err := r.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	defer rows.Close()

	var out []collection.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func cardArgs(ids []collection.CardID) []any {
	return anySlice(ids64(ids))
}

func ids64(ids []collection.CardID) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}
