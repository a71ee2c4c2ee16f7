package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/flashiz/internal/collection"
)

var noteColumns = []string{"id", "guid", "kind", "fields", "tags"}

func scanNote(sc interface{ Scan(...any) error }) (collection.Note, error) {
	var (
		id             int64
		guid, kind     string
		fields, tagStr string
	)
	if err := sc.Scan(&id, &guid, &kind, &fields, &tagStr); err != nil {
		return collection.Note{}, err
	}
	return decodeNote(id, guid, kind, fields, tagStr)
}

func decodeNote(id int64, guid, kind, fields, tagStr string) (collection.Note, error) {
	n := collection.Note{
		ID:   collection.NoteID(id),
		GUID: guid,
		Kind: collection.NoteKind(kind),
		Tags: SplitTags(tagStr),
	}
	if err := json.Unmarshal([]byte(fields), &n.Fields); err != nil {
		return n, fmt.Errorf("decode fields of note %d: %w", id, err)
	}
	return n, nil
}

// JoinTags encodes tags for storage.
func JoinTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return " " + strings.Join(tags, " ") + " "
}

// SplitTags decodes stored tags.
func SplitTags(s string) []string {
	return strings.Fields(s)
}

// InsertNote stores a note and returns its id.
func (r Repo) InsertNote(ctx context.Context, n collection.Note, now time.Time) (collection.NoteID, error) {
	fields, err := json.Marshal(n.Fields)
	if err != nil {
		return 0, fmt.Errorf("encode fields: %w", err)
	}
	q, args := builder().Insert(TableNotes).
		Columns("guid", "kind", "fields", "tags", "mtime").
		Values(n.GUID, string(n.Kind), string(fields), JoinTags(n.Tags), toMillis(now)).
		Query()
	res, err := r.exec(ctx, q, args)
	if err != nil {
		return 0, fmt.Errorf("insert note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert note: %w", err)
	}
	return collection.NoteID(id), nil
}

// Note returns the note with id, or ErrNotFound.
func (r Repo) Note(ctx context.Context, id collection.NoteID) (*collection.Note, error) {
	q, args := builder().Select(noteColumns...).
		From(entsql.Table(TableNotes)).
		Where(entsql.EQ("id", int64(id))).
		Query()
	n, err := scanNote(r.q.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query note %d: %w", id, err)
	}
	return &n, nil
}

// SetNoteTags replaces the tags of a note.
func (r Repo) SetNoteTags(ctx context.Context, id collection.NoteID, tags []string, now time.Time) error {
	q, args := builder().Update(TableNotes).
		Set("tags", JoinTags(tags)).
		Set("mtime", toMillis(now)).
		Where(entsql.EQ("id", int64(id))).
		Query()
	res, err := r.exec(ctx, q, args)
	if err != nil {
		return fmt.Errorf("update tags of note %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// AllTagStrings returns the raw tag column of every note that has tags.
func (r Repo) AllTagStrings(ctx context.Context) ([]string, error) {
	q, args := builder().Select("tags").
		From(entsql.Table(TableNotes)).
		Where(entsql.NEQ("tags", "")).
		Query()
	return r.strings(ctx, q, args)
}

// NoteIDsInDecks returns up to limit distinct ids of notes that have cards
// in the given decks.
func (r Repo) NoteIDsInDecks(ctx context.Context, decks []collection.DeckID, limit int) ([]collection.NoteID, error) {
	if len(decks) == 0 {
		return nil, nil
	}
	sel := builder().Select("note_id").
		From(entsql.Table(TableCards)).
		Where(entsql.In("deck_id", deckArgs(decks)...)).
		Distinct().
		OrderBy("note_id")
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	q, args := sel.Query()
	rows, err := r.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query deck notes: %w", err)
	}
	defer rows.Close()

	var ids []collection.NoteID
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan note id: %w", err)
		}
		ids = append(ids, collection.NoteID(id))
	}
	return ids, rows.Err()
}

// TagStringsForNotes returns the raw tag column of the given notes.
func (r Repo) TagStringsForNotes(ctx context.Context, ids []collection.NoteID) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = int64(id)
	}
	q, qargs := builder().Select("tags").
		From(entsql.Table(TableNotes)).
		Where(entsql.In("id", args...)).
		Query()
	return r.strings(ctx, q, qargs)
}

// DeleteNotesWithoutCards removes notes left with no cards.
func (r Repo) DeleteNotesWithoutCards(ctx context.Context) error {
	sub := builder().Select("note_id").From(entsql.Table(TableCards))
	q, args := builder().Delete(TableNotes).
		Where(entsql.NotIn("id", sub)).
		Query()
	if _, err := r.exec(ctx, q, args); err != nil {
		return fmt.Errorf("delete orphan notes: %w", err)
	}
	return nil
}

func (r Repo) strings(ctx context.Context, q string, args []any) ([]string, error) {
	rows, err := r.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
