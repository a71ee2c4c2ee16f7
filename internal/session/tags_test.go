package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/flashiz/internal/collection"
)

func TestTagEditor_RoundTrip(t *testing.T) {
	q := basicCard(1, "uno")
	q.Note.Tags = []string{"spanish"}
	coll := newFakeCollection(q)
	coll.allTags = []string{"french", "spanish", "verbs"}
	coll.deckTags = []string{"spanish"}
	s := newSession(t, coll, nil, Options{TagScanLimit: 50})
	ctx := context.Background()
	require.NoError(t, s.LoadCard(ctx))

	require.NoError(t, s.OpenTagEditor(ctx))
	ed := s.Snapshot().Tags
	assert.True(t, ed.Open)
	assert.False(t, ed.Loading)
	assert.Equal(t, []string{"french", "spanish", "verbs"}, ed.AllTags)
	assert.Equal(t, []string{"spanish"}, ed.DeckTags)
	assert.Equal(t, []string{"spanish"}, ed.Selected)
	assert.Equal(t, 50, coll.tagLimit)

	want := []string{"verbs", collection.MarkedTag}
	s.SetSelectedTags(want)
	require.NoError(t, s.ConfirmTags(ctx))

	st := s.Snapshot()
	assert.False(t, st.Tags.Open)
	assert.Equal(t, want, coll.notes[1].Tags)
	assert.Equal(t, want, st.Card.Note.Tags)
	assert.True(t, st.Marked, "marked status refreshed")
	assert.Equal(t, PhaseQuestion, st.Phase, "no next-card load")

	require.NoError(t, s.OpenTagEditor(ctx))
	assert.Equal(t, want, s.Snapshot().Tags.Selected)
}

func TestTagEditor_Toggle(t *testing.T) {
	coll := newFakeCollection(basicCard(1, "uno"))
	s := newSession(t, coll, nil, Options{})
	ctx := context.Background()
	require.NoError(t, s.LoadCard(ctx))

	s.ToggleTag("ignored while closed")
	require.NoError(t, s.OpenTagEditor(ctx))
	s.ToggleTag("verbs")
	s.ToggleTag("nouns")
	s.ToggleTag("VERBS")
	assert.Equal(t, []string{"nouns"}, s.Snapshot().Tags.Selected)

	s.CancelTagEditor()
	assert.False(t, s.Snapshot().Tags.Open)
	assert.Empty(t, coll.notes[1].Tags)
}

func TestTagEditor_DefaultScanLimit(t *testing.T) {
	coll := newFakeCollection(basicCard(1, "uno"))
	coll.truncated = true
	s := newSession(t, coll, nil, Options{})
	ctx := context.Background()
	require.NoError(t, s.LoadCard(ctx))

	require.NoError(t, s.OpenTagEditor(ctx))
	assert.Equal(t, DefaultTagScanLimit, coll.tagLimit)
	assert.True(t, s.Snapshot().Tags.Truncated)
}

func TestTagEditor_LoadFailureStaysOpen(t *testing.T) {
	coll := newFakeCollection(basicCard(1, "uno"))
	s := newSession(t, coll, nil, Options{})
	ctx := context.Background()
	require.NoError(t, s.LoadCard(ctx))

	coll.tagsErr = errors.New("boom")
	require.NoError(t, s.OpenTagEditor(ctx))
	ed := s.Snapshot().Tags
	assert.True(t, ed.Open)
	assert.False(t, ed.Loading)
	assert.Equal(t, tagLoadError, ed.Err)

	require.NoError(t, s.ConfirmTags(ctx))
	ed = s.Snapshot().Tags
	assert.True(t, ed.Open, "save failure keeps the editor open")
	assert.Equal(t, tagSaveError, ed.Err)
}
