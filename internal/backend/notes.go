package backend

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/abhisek/flashiz/internal/apperrors"
	"github.com/abhisek/flashiz/internal/collection"
	"github.com/abhisek/flashiz/internal/store"
)

// Card returns a single card.
func (l *Local) Card(ctx context.Context, id collection.CardID) (*collection.Card, error) {
	c, err := l.st.Card(ctx, id)
	if err != nil {
		return nil, notFound(err, "Card not found.")
	}
	return c, nil
}

// Note returns a single note.
func (l *Local) Note(ctx context.Context, id collection.NoteID) (*collection.Note, error) {
	n, err := l.st.Note(ctx, id)
	if err != nil {
		return nil, notFound(err, "Note not found.")
	}
	return n, nil
}

// SetFlag sets the flag of the given cards. FlagNone clears it.
func (l *Local) SetFlag(ctx context.Context, ids []collection.CardID, flag collection.Flag) error {
	if !flag.Valid() {
		return apperrors.Validation(fmt.Sprintf("Unknown flag %d.", flag))
	}
	now := l.now()
	return l.st.InTx(ctx, func(r store.Repo) error {
		if err := r.SetCardsFlag(ctx, ids, flag, now); err != nil {
			return err
		}
		return touch(ctx, r, now)
	})
}

// NormalizeTags splits tags on whitespace and drops duplicates, keeping the
// first spelling of each tag. The result is sorted case-insensitively.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range tags {
		for _, f := range strings.Fields(t) {
			key := strings.ToLower(f)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, f)
		}
	}
	slices.SortFunc(out, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return out
}

// SetNoteTags replaces the tags of a note.
func (l *Local) SetNoteTags(ctx context.Context, id collection.NoteID, tags []string) error {
	now := l.now()
	err := l.st.InTx(ctx, func(r store.Repo) error {
		if err := r.SetNoteTags(ctx, id, NormalizeTags(tags), now); err != nil {
			return notFound(err, "Note not found.")
		}
		return touch(ctx, r, now)
	})
	if err != nil {
		return fmt.Errorf("set tags of note %d: %w", id, err)
	}
	return nil
}

// AllTags returns every tag in the collection.
func (l *Local) AllTags(ctx context.Context) ([]string, error) {
	raw, err := l.st.AllTagStrings(ctx)
	if err != nil {
		return nil, err
	}
	return NormalizeTags(raw), nil
}

// DeckTags returns the tags used by notes in deck and its subdecks. At most
// limit notes are scanned; truncated reports whether more exist.
func (l *Local) DeckTags(ctx context.Context, deck collection.DeckID, limit int) ([]string, bool, error) {
	ids, err := l.subtreeIDs(ctx, deck)
	if err != nil {
		return nil, false, err
	}
	scan := 0
	if limit > 0 {
		scan = limit + 1
	}
	notes, err := l.st.NoteIDsInDecks(ctx, ids, scan)
	if err != nil {
		return nil, false, err
	}
	truncated := limit > 0 && len(notes) > limit
	if truncated {
		notes = notes[:limit]
	}
	raw, err := l.st.TagStringsForNotes(ctx, notes)
	if err != nil {
		return nil, false, err
	}
	return NormalizeTags(raw), truncated, nil
}

// NewNote describes a note to add.
type NewNote struct {
	Deck  collection.DeckID
	Kind  collection.NoteKind
	Front string
	Back  string
	Tags  []string
	GUID  string // generated when empty
}

// AddNote stores a note and generates its cards: one for basic and typed
// notes, two for reversed notes.
func (l *Local) AddNote(ctx context.Context, nn NewNote) (collection.NoteID, error) {
	front, back := strings.TrimSpace(nn.Front), strings.TrimSpace(nn.Back)
	if front == "" {
		return 0, apperrors.Validation("The front of a note can't be empty.")
	}
	ords := 1
	switch nn.Kind {
	case collection.KindBasic, collection.KindTyped:
	case collection.KindReversed:
		if back == "" {
			return 0, apperrors.Validation("A reversed note needs a back.")
		}
		ords = 2
	default:
		return 0, apperrors.Validation(fmt.Sprintf("Unknown note kind %q.", nn.Kind))
	}
	if nn.GUID == "" {
		nn.GUID = uuid.NewString()
	}

	now := l.now()
	var id collection.NoteID
	err := l.st.InTx(ctx, func(r store.Repo) error {
		if _, err := r.DeckByID(ctx, nn.Deck); err != nil {
			return notFound(err, msgDeckNotFound)
		}
		var err error
		id, err = r.InsertNote(ctx, collection.Note{
			GUID:   nn.GUID,
			Kind:   nn.Kind,
			Fields: []string{front, back},
			Tags:   NormalizeTags(nn.Tags),
		}, now)
		if err != nil {
			return err
		}
		for ord := range ords {
			if _, err := r.InsertCard(ctx, collection.Card{NoteID: id, DeckID: nn.Deck, Ord: ord}, now); err != nil {
				return err
			}
		}
		return touch(ctx, r, now)
	})
	if err != nil {
		return 0, fmt.Errorf("add note: %w", err)
	}
	return id, nil
}

// Search returns cards whose fields or tags contain query.
func (l *Local) Search(ctx context.Context, query string, limit int) ([]collection.SearchResult, error) {
	return l.st.SearchCards(ctx, strings.TrimSpace(query), limit)
}

// Revlog returns the answers given for a card, newest first.
func (l *Local) Revlog(ctx context.Context, id collection.CardID) ([]collection.RevlogEntry, error) {
	return l.st.RevlogForCard(ctx, id)
}
