package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/abhisek/flashiz/internal/collection"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		if err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got); err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestOpen_DefaultDeck(t *testing.T) {
	s := openTestStore(t)
	d, err := s.DeckByID(context.Background(), collection.DefaultDeckID)
	if err != nil {
		t.Fatalf("DeckByID: %v", err)
	}
	if d.Name != DefaultDeckName {
		t.Errorf("default deck name = %q", d.Name)
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.InsertDeck(context.Background(), "Spanish", testNow); err != nil {
		t.Fatalf("InsertDeck: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	decks, err := s.Decks(context.Background())
	if err != nil {
		t.Fatalf("Decks: %v", err)
	}
	if len(decks) != 2 {
		t.Fatalf("decks = %+v, want default and Spanish", decks)
	}
}

func TestSettings(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.Setting(ctx, SettingNavState); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing setting err = %v, want ErrNotFound", err)
	}
	if err := s.SetSetting(ctx, SettingNavState, "a"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	if err := s.SetSetting(ctx, SettingNavState, "b"); err != nil {
		t.Fatalf("SetSetting overwrite: %v", err)
	}
	v, err := s.Setting(ctx, SettingNavState)
	if err != nil {
		t.Fatalf("Setting: %v", err)
	}
	if v != "b" {
		t.Errorf("setting = %q, want b", v)
	}
}

func TestDecks_UniqueName(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if _, err := s.InsertDeck(ctx, "French", testNow); err != nil {
		t.Fatalf("InsertDeck: %v", err)
	}
	if _, err := s.InsertDeck(ctx, "French", testNow); err == nil {
		t.Fatal("expected unique violation for duplicate deck name")
	}
}

func TestDecks_RenameCollapseDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	id, err := s.InsertDeck(ctx, "French", testNow)
	if err != nil {
		t.Fatalf("InsertDeck: %v", err)
	}
	if err := s.RenameDeck(ctx, id, "Français", testNow); err != nil {
		t.Fatalf("RenameDeck: %v", err)
	}
	if err := s.SetDeckCollapsed(ctx, id, true); err != nil {
		t.Fatalf("SetDeckCollapsed: %v", err)
	}
	d, err := s.DeckByID(ctx, id)
	if err != nil {
		t.Fatalf("DeckByID: %v", err)
	}
	if d.Name != "Français" || !d.Collapsed {
		t.Errorf("deck = %+v", d)
	}
	if err := s.DeleteDecks(ctx, []collection.DeckID{id}); err != nil {
		t.Fatalf("DeleteDecks: %v", err)
	}
	if _, err := s.DeckByID(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("after delete err = %v, want ErrNotFound", err)
	}
}

func insertNoteWithCard(t *testing.T, s *Store, deck collection.DeckID, front string, tags ...string) (collection.NoteID, collection.CardID) {
	t.Helper()
	ctx := context.Background()
	nid, err := s.InsertNote(ctx, collection.Note{
		GUID:   front,
		Kind:   collection.KindBasic,
		Fields: []string{front, front + " back"},
		Tags:   tags,
	}, testNow)
	if err != nil {
		t.Fatalf("InsertNote: %v", err)
	}
	cid, err := s.InsertCard(ctx, collection.Card{NoteID: nid, DeckID: deck}, testNow)
	if err != nil {
		t.Fatalf("InsertCard: %v", err)
	}
	return nid, cid
}

func TestNotes_RoundTripAndTags(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	nid, _ := insertNoteWithCard(t, s, collection.DefaultDeckID, "hola", "spanish", "greeting")

	n, err := s.Note(ctx, nid)
	if err != nil {
		t.Fatalf("Note: %v", err)
	}
	if n.Field(0) != "hola" || n.Field(1) != "hola back" {
		t.Errorf("fields = %v", n.Fields)
	}
	if !n.HasTag("spanish") || !n.HasTag("greeting") {
		t.Errorf("tags = %v", n.Tags)
	}

	if err := s.SetNoteTags(ctx, nid, []string{"marked"}, testNow); err != nil {
		t.Fatalf("SetNoteTags: %v", err)
	}
	n, _ = s.Note(ctx, nid)
	if len(n.Tags) != 1 || n.Tags[0] != "marked" {
		t.Errorf("tags after set = %v", n.Tags)
	}

	if err := s.SetNoteTags(ctx, 9999, nil, testNow); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetNoteTags on missing note err = %v", err)
	}
}

func TestNoteIDsInDecks_Limit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	for _, f := range []string{"a", "b", "c"} {
		insertNoteWithCard(t, s, collection.DefaultDeckID, f, "t"+f)
	}
	ids, err := s.NoteIDsInDecks(ctx, []collection.DeckID{collection.DefaultDeckID}, 2)
	if err != nil {
		t.Fatalf("NoteIDsInDecks: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("ids = %v, want 2", ids)
	}
	tags, err := s.TagStringsForNotes(ctx, ids)
	if err != nil {
		t.Fatalf("TagStringsForNotes: %v", err)
	}
	if len(tags) != 2 {
		t.Errorf("tags = %v", tags)
	}
}

func TestUpdateCardSchedule_OptimisticConcurrency(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, cid := insertNoteWithCard(t, s, collection.DefaultDeckID, "q")

	c, err := s.Card(ctx, cid)
	if err != nil {
		t.Fatalf("Card: %v", err)
	}
	stale := *c

	c.Queue = collection.QueueLearning
	c.Due = testNow.Add(time.Minute)
	c.Interval = time.Minute
	c.Reps = 1
	ok, err := s.UpdateCardSchedule(ctx, *c, testNow.Add(time.Second))
	if err != nil || !ok {
		t.Fatalf("UpdateCardSchedule = %v, %v", ok, err)
	}

	ok, err = s.UpdateCardSchedule(ctx, stale, testNow.Add(2*time.Second))
	if err != nil {
		t.Fatalf("stale update: %v", err)
	}
	if ok {
		t.Error("stale update should not match any row")
	}

	got, _ := s.Card(ctx, cid)
	if got.Queue != collection.QueueLearning || got.Interval != time.Minute || got.Reps != 1 {
		t.Errorf("card = %+v", got)
	}
}

func TestQueueCards_ExcludesSuspendedAndBuried(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, c1 := insertNoteWithCard(t, s, collection.DefaultDeckID, "one")
	_, c2 := insertNoteWithCard(t, s, collection.DefaultDeckID, "two")
	_, c3 := insertNoteWithCard(t, s, collection.DefaultDeckID, "three")

	if err := s.SetCardsSuspended(ctx, []collection.CardID{c2}, true, testNow); err != nil {
		t.Fatalf("SetCardsSuspended: %v", err)
	}
	if err := s.SetCardsBuried(ctx, []collection.CardID{c3}, testNow.Add(time.Hour), testNow); err != nil {
		t.Fatalf("SetCardsBuried: %v", err)
	}

	f := QueueFilter{
		Decks: []collection.DeckID{collection.DefaultDeckID},
		Queue: collection.QueueNew,
		Now:   testNow,
	}
	cards, err := s.QueueCards(ctx, f, 10)
	if err != nil {
		t.Fatalf("QueueCards: %v", err)
	}
	if len(cards) != 1 || cards[0].ID != c1 {
		t.Errorf("queue = %+v, want only card %d", cards, c1)
	}
	n, err := s.CountQueue(ctx, f)
	if err != nil || n != 1 {
		t.Errorf("CountQueue = %d, %v", n, err)
	}

	f.Now = testNow.Add(2 * time.Hour)
	if n, _ := s.CountQueue(ctx, f); n != 2 {
		t.Errorf("after bury expiry count = %d, want 2", n)
	}

	totals, suspended, err := s.QueueTotals(ctx)
	if err != nil {
		t.Fatalf("QueueTotals: %v", err)
	}
	if totals[collection.QueueNew] != 2 || suspended != 1 {
		t.Errorf("totals = %v suspended = %d", totals, suspended)
	}
}

func TestSearchCards(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	insertNoteWithCard(t, s, collection.DefaultDeckID, "Bonjour", "french")
	insertNoteWithCard(t, s, collection.DefaultDeckID, "Hola", "spanish")

	res, err := s.SearchCards(ctx, "bonjour", 0)
	if err != nil {
		t.Fatalf("SearchCards: %v", err)
	}
	if len(res) != 1 || res[0].Note.Field(0) != "Bonjour" || res[0].DeckName != DefaultDeckName {
		t.Errorf("results = %+v", res)
	}

	res, _ = s.SearchCards(ctx, "SPANISH", 0)
	if len(res) != 1 || res[0].Note.Field(0) != "Hola" {
		t.Errorf("tag search = %+v", res)
	}

	res, _ = s.SearchCards(ctx, "", 0)
	if len(res) != 2 {
		t.Errorf("empty query returned %d results, want 2", len(res))
	}
}

func TestRevlog(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, cid := insertNoteWithCard(t, s, collection.DefaultDeckID, "q")

	for i, r := range []collection.Rating{collection.RatingAgain, collection.RatingGood} {
		err := s.InsertRevlog(ctx, collection.RevlogEntry{
			CardID:    cid,
			Rating:    r,
			Queue:     collection.QueueNew,
			Interval:  time.Minute,
			TimeTaken: 3 * time.Second,
			Answered:  testNow.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("InsertRevlog: %v", err)
		}
	}

	entries, err := s.RevlogForCard(ctx, cid)
	if err != nil {
		t.Fatalf("RevlogForCard: %v", err)
	}
	if len(entries) != 2 || entries[0].Rating != collection.RatingGood {
		t.Errorf("entries = %+v, want newest first", entries)
	}

	since, _ := s.RevlogSince(ctx, testNow.Add(30*time.Second))
	if len(since) != 1 || since[0].TimeTaken != 3*time.Second {
		t.Errorf("since = %+v", since)
	}
}

func TestInTx_Rollback(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.InTx(ctx, func(r Repo) error {
		if _, err := r.InsertDeck(ctx, "Temp", testNow); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx err = %v, want boom", err)
	}
	decks, _ := s.Decks(ctx)
	if len(decks) != 1 {
		t.Errorf("decks after rollback = %+v", decks)
	}
}

func TestJoinSplitTags(t *testing.T) {
	if got := JoinTags([]string{"a", "b"}); got != " a b " {
		t.Errorf("JoinTags = %q", got)
	}
	if got := JoinTags(nil); got != "" {
		t.Errorf("JoinTags(nil) = %q", got)
	}
	if got := SplitTags(" a  b "); len(got) != 2 {
		t.Errorf("SplitTags = %v", got)
	}
}
