package session_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/flashiz/internal/backend"
	"github.com/abhisek/flashiz/internal/collection"
	"github.com/abhisek/flashiz/internal/session"
	"github.com/abhisek/flashiz/internal/spacedrep"
	"github.com/abhisek/flashiz/internal/store"
)

// newLocal opens a collection in a temp dir. Every read of the clock moves
// it forward so each write gets a new modification time.
func newLocal(t *testing.T) *backend.Local {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	return backend.New(st, spacedrep.NewScheduler(spacedrep.DefaultConfig()), backend.Options{
		NewPerDay:     20,
		ReviewsPerDay: 200,
		LearnAhead:    20 * time.Minute,
		Now: func() time.Time {
			now = now.Add(time.Second)
			return now
		},
	})
}

func TestLocal_FlagThenRate(t *testing.T) {
	coll := newLocal(t)
	ctx := context.Background()
	_, err := coll.AddNote(ctx, backend.NewNote{
		Deck:  collection.DefaultDeckID,
		Kind:  collection.KindBasic,
		Front: "hola",
		Back:  "hello",
	})
	require.NoError(t, err)

	s := session.New(coll, collection.DefaultDeckID, nil, nil, session.Options{})
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.LoadCard(ctx))
	st := s.Snapshot()
	require.True(t, st.HasCard())
	id := st.Card.Card.ID

	require.NoError(t, s.SetFlag(ctx, collection.FlagRed))
	require.NoError(t, s.ShowAnswer(ctx))
	require.NoError(t, s.RateCard(ctx, collection.RatingGood))

	for _, e := range drainEffects(s) {
		assert.NotEqual(t, session.Notice{Kind: session.NoticeError}, e)
	}

	entries, err := coll.Revlog(ctx, id)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	card, err := coll.Card(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, collection.FlagRed, card.Flag)
}

func drainEffects(s *session.Session) []session.Effect {
	var out []session.Effect
	for {
		select {
		case e := <-s.Effects():
			out = append(out, e)
		default:
			return out
		}
	}
}
