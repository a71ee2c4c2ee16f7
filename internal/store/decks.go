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

var deckColumns = []string{"id", "name", "collapsed"}

func scanDeck(sc interface{ Scan(...any) error }) (collection.Deck, error) {
	var (
		d  collection.Deck
		id int64
	)
	if err := sc.Scan(&id, &d.Name, &d.Collapsed); err != nil {
		return d, err
	}
	d.ID = collection.DeckID(id)
	return d, nil
}

// Decks returns all decks ordered by name.
func (r Repo) Decks(ctx context.Context) ([]collection.Deck, error) {
	q, args := builder().Select(deckColumns...).
		From(entsql.Table(TableDecks)).
		OrderBy("name").
		Query()
	rows, err := r.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query decks: %w", err)
	}
	defer rows.Close()

	var decks []collection.Deck
	for rows.Next() {
		d, err := scanDeck(rows)
		if err != nil {
			return nil, fmt.Errorf("scan deck: %w", err)
		}
		decks = append(decks, d)
	}
	return decks, rows.Err()
}

// DeckByID returns the deck with id, or ErrNotFound.
func (r Repo) DeckByID(ctx context.Context, id collection.DeckID) (*collection.Deck, error) {
	q, args := builder().Select(deckColumns...).
		From(entsql.Table(TableDecks)).
		Where(entsql.EQ("id", int64(id))).
		Query()
	d, err := scanDeck(r.q.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query deck %d: %w", id, err)
	}
	return &d, nil
}

// InsertDeck creates a deck and returns its id.
func (r Repo) InsertDeck(ctx context.Context, name string, now time.Time) (collection.DeckID, error) {
	q, args := builder().Insert(TableDecks).
		Columns("name", "collapsed", "mtime").
		Values(name, false, toMillis(now)).
		Query()
	res, err := r.exec(ctx, q, args)
	if err != nil {
		return 0, fmt.Errorf("insert deck %q: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert deck %q: %w", name, err)
	}
	return collection.DeckID(id), nil
}

// RenameDeck sets the name of a single deck.
func (r Repo) RenameDeck(ctx context.Context, id collection.DeckID, name string, now time.Time) error {
	q, args := builder().Update(TableDecks).
		Set("name", name).
		Set("mtime", toMillis(now)).
		Where(entsql.EQ("id", int64(id))).
		Query()
	if _, err := r.exec(ctx, q, args); err != nil {
		return fmt.Errorf("rename deck %d: %w", id, err)
	}
	return nil
}

// SetDeckCollapsed persists the collapsed flag of a deck.
func (r Repo) SetDeckCollapsed(ctx context.Context, id collection.DeckID, collapsed bool) error {
	q, args := builder().Update(TableDecks).
		Set("collapsed", collapsed).
		Where(entsql.EQ("id", int64(id))).
		Query()
	if _, err := r.exec(ctx, q, args); err != nil {
		return fmt.Errorf("collapse deck %d: %w", id, err)
	}
	return nil
}

// DeleteDecks removes decks by id. Cards are not touched.
func (r Repo) DeleteDecks(ctx context.Context, ids []collection.DeckID) error {
	if len(ids) == 0 {
		return nil
	}
	q, args := builder().Delete(TableDecks).
		Where(entsql.In("id", deckArgs(ids)...)).
		Query()
	if _, err := r.exec(ctx, q, args); err != nil {
		return fmt.Errorf("delete decks: %w", err)
	}
	return nil
}

func deckArgs(ids []collection.DeckID) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}
