package backend

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/abhisek/flashiz/internal/apperrors"
	"github.com/abhisek/flashiz/internal/collection"
	"github.com/abhisek/flashiz/internal/store"
)

const (
	msgDeckNotFound    = "Deck not found."
	msgDeckExists      = "A deck with that name already exists."
	msgDeckNameInvalid = "Deck names can't have empty parts."
)

// Decks returns every deck ordered by name.
func (l *Local) Decks(ctx context.Context) ([]collection.Deck, error) {
	return l.st.Decks(ctx)
}

// Deck returns a single deck.
func (l *Local) Deck(ctx context.Context, id collection.DeckID) (*collection.Deck, error) {
	d, err := l.st.DeckByID(ctx, id)
	if err != nil {
		return nil, notFound(err, msgDeckNotFound)
	}
	return d, nil
}

// DeckByName finds a deck by name, ignoring case.
func (l *Local) DeckByName(ctx context.Context, name string) (*collection.Deck, error) {
	decks, err := l.st.Decks(ctx)
	if err != nil {
		return nil, err
	}
	if d := findDeck(decks, name); d != nil {
		return d, nil
	}
	return nil, apperrors.NotFound(msgDeckNotFound, store.ErrNotFound)
}

func findDeck(decks []collection.Deck, name string) *collection.Deck {
	for i := range decks {
		if strings.EqualFold(decks[i].Name, name) {
			return &decks[i]
		}
	}
	return nil
}

// CreateDeck creates a deck, and any missing parents of a nested name.
func (l *Local) CreateDeck(ctx context.Context, name string) (collection.DeckID, error) {
	norm, ok := collection.NormalizeDeckName(name)
	if !ok {
		return 0, apperrors.Validation(msgDeckNameInvalid)
	}
	now := l.now()
	var id collection.DeckID
	err := l.st.InTx(ctx, func(r store.Repo) error {
		decks, err := r.Decks(ctx)
		if err != nil {
			return err
		}
		if findDeck(decks, norm) != nil {
			return apperrors.Conflict(msgDeckExists, nil)
		}
		if err := ensureParents(ctx, r, decks, norm, now); err != nil {
			return err
		}
		id, err = r.InsertDeck(ctx, norm, now)
		if err != nil {
			return err
		}
		return touch(ctx, r, now)
	})
	if err != nil {
		return 0, fmt.Errorf("create deck %q: %w", norm, err)
	}
	return id, nil
}

func ensureParents(ctx context.Context, r store.Repo, decks []collection.Deck, name string, now time.Time) error {
	parts := collection.SplitDeckName(name)
	for i := 1; i < len(parts); i++ {
		parent := strings.Join(parts[:i], collection.DeckSeparator)
		if findDeck(decks, parent) != nil {
			continue
		}
		if _, err := r.InsertDeck(ctx, parent, now); err != nil {
			return err
		}
	}
	return nil
}

// RenameDeck renames a deck and moves its subdecks along with it.
func (l *Local) RenameDeck(ctx context.Context, id collection.DeckID, name string) error {
	norm, ok := collection.NormalizeDeckName(name)
	if !ok {
		return apperrors.Validation(msgDeckNameInvalid)
	}
	now := l.now()
	err := l.st.InTx(ctx, func(r store.Repo) error {
		decks, err := r.Decks(ctx)
		if err != nil {
			return err
		}
		idx := slices.IndexFunc(decks, func(d collection.Deck) bool { return d.ID == id })
		if idx < 0 {
			return apperrors.NotFound(msgDeckNotFound, store.ErrNotFound)
		}
		target := decks[idx]
		if norm == target.Name {
			return nil
		}
		if !strings.EqualFold(norm, target.Name) && collection.IsDeckWithin(norm, target.Name) {
			return apperrors.Validation("A deck can't be moved into one of its subdecks.")
		}

		var moved, others []collection.Deck
		for _, d := range decks {
			if collection.IsDeckWithin(d.Name, target.Name) {
				moved = append(moved, d)
			} else {
				others = append(others, d)
			}
		}
		renames := make(map[collection.DeckID]string, len(moved))
		for _, d := range moved {
			newName := norm + d.Name[len(target.Name):]
			if findDeck(others, newName) != nil {
				return apperrors.Conflict(msgDeckExists, nil)
			}
			renames[d.ID] = newName
		}
		if err := ensureParents(ctx, r, others, norm, now); err != nil {
			return err
		}
		for _, d := range moved {
			if err := r.RenameDeck(ctx, d.ID, renames[d.ID], now); err != nil {
				return err
			}
		}
		return touch(ctx, r, now)
	})
	if err != nil {
		return fmt.Errorf("rename deck %d: %w", id, err)
	}
	return nil
}

// RemoveDeck deletes a deck, its subdecks, and every card in them. Notes
// left without cards are deleted too.
func (l *Local) RemoveDeck(ctx context.Context, id collection.DeckID) error {
	now := l.now()
	err := l.st.InTx(ctx, func(r store.Repo) error {
		decks, err := r.Decks(ctx)
		if err != nil {
			return err
		}
		ids, err := subtree(decks, id)
		if err != nil {
			return err
		}
		if slices.Contains(ids, collection.DefaultDeckID) {
			return apperrors.Validation("The default deck can't be removed.")
		}
		cards, err := r.CardsInDecks(ctx, ids)
		if err != nil {
			return err
		}
		cardIDs := make([]collection.CardID, len(cards))
		for i, c := range cards {
			cardIDs[i] = c.ID
		}
		if err := r.DeleteRevlogForCards(ctx, cardIDs); err != nil {
			return err
		}
		if err := r.DeleteCardsInDecks(ctx, ids); err != nil {
			return err
		}
		if err := r.DeleteNotesWithoutCards(ctx); err != nil {
			return err
		}
		if err := r.DeleteDecks(ctx, ids); err != nil {
			return err
		}
		return touch(ctx, r, now)
	})
	if err != nil {
		return fmt.Errorf("remove deck %d: %w", id, err)
	}
	l.log.Info("deck removed", "deck", id)
	return nil
}

// SetDeckCollapsed persists whether a deck's children are hidden.
func (l *Local) SetDeckCollapsed(ctx context.Context, id collection.DeckID, collapsed bool) error {
	if err := l.st.SetDeckCollapsed(ctx, id, collapsed); err != nil {
		return fmt.Errorf("collapse deck %d: %w", id, err)
	}
	return nil
}

// subtree returns id and the ids of every deck nested below it.
func subtree(decks []collection.Deck, id collection.DeckID) ([]collection.DeckID, error) {
	idx := slices.IndexFunc(decks, func(d collection.Deck) bool { return d.ID == id })
	if idx < 0 {
		return nil, apperrors.NotFound(msgDeckNotFound, store.ErrNotFound)
	}
	root := decks[idx].Name
	var ids []collection.DeckID
	for _, d := range decks {
		if collection.IsDeckWithin(d.Name, root) {
			ids = append(ids, d.ID)
		}
	}
	return ids, nil
}

func (l *Local) subtreeIDs(ctx context.Context, id collection.DeckID) ([]collection.DeckID, error) {
	decks, err := l.st.Decks(ctx)
	if err != nil {
		return nil, err
	}
	return subtree(decks, id)
}

// DeckDueTree returns every deck as a tree under an unnamed root, each node
// carrying the due counts of its whole subtree.
func (l *Local) DeckDueTree(ctx context.Context) (*collection.DeckNode, error) {
	decks, err := l.st.Decks(ctx)
	if err != nil {
		return nil, err
	}
	now := l.now()
	done, err := l.doneToday(ctx, now)
	if err != nil {
		return nil, err
	}

	root := &collection.DeckNode{}
	byName := make(map[string]*collection.DeckNode, len(decks))
	// Decks are ordered by name, so parents are visited before children.
	for _, d := range decks {
		ids, _ := subtree(decks, d.ID)
		counts, err := l.counts(ctx, ids, now, done)
		if err != nil {
			return nil, err
		}
		node := &collection.DeckNode{
			ID:        d.ID,
			Name:      collection.DeckBaseName(d.Name),
			FullName:  d.Name,
			Level:     len(collection.SplitDeckName(d.Name)),
			Collapsed: d.Collapsed,
			Counts:    counts,
		}
		byName[strings.ToLower(d.Name)] = node

		parent := root
		if p, ok := byName[strings.ToLower(collection.DeckParent(d.Name))]; ok {
			parent = p
		}
		parent.Children = append(parent.Children, node)
		root.Counts = addCounts(root.Counts, node.Counts, parent == root)
	}
	return root, nil
}

func addCounts(total, c collection.Counts, add bool) collection.Counts {
	if !add {
		return total
	}
	total.New += c.New
	total.Learn += c.Learn
	total.Review += c.Review
	return total
}

// dueToday sums the counts of every top-level deck.
func (l *Local) dueToday(ctx context.Context) (collection.Counts, error) {
	tree, err := l.DeckDueTree(ctx)
	if err != nil {
		return collection.Counts{}, err
	}
	return tree.Counts, nil
}
