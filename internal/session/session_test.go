package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/flashiz/internal/collection"
	"github.com/abhisek/flashiz/internal/media"
)

func newSession(t *testing.T, coll *fakeCollection, player media.Player, opts Options) *Session {
	t.Helper()
	s := New(coll, 1, nil, player, opts)
	t.Cleanup(func() { s.Close() })
	return s
}

// drain returns every effect emitted so far.
func drain(s *Session) []Effect {
	var out []Effect
	for {
		select {
		case e := <-s.Effects():
			out = append(out, e)
		default:
			return out
		}
	}
}

func count[T Effect](effects []Effect) int {
	n := 0
	for _, e := range effects {
		if _, ok := e.(T); ok {
			n++
		}
	}
	return n
}

func TestLoadCard_ShowsQuestion(t *testing.T) {
	coll := newFakeCollection(basicCard(1, "hola"))
	s := newSession(t, coll, nil, Options{})

	require.NoError(t, s.LoadCard(context.Background()))
	st := s.Snapshot()
	assert.Equal(t, PhaseQuestion, st.Phase)
	require.True(t, st.HasCard())
	assert.Equal(t, "hola", st.Question)
	assert.False(t, st.AnswerShown)
	assert.Equal(t, collection.Counts{New: 1}, st.Counts)
}

func TestLoadCard_NoneDueFinishesOnce(t *testing.T) {
	coll := newFakeCollection()
	s := newSession(t, coll, nil, Options{})
	ctx := context.Background()

	require.NoError(t, s.LoadCard(ctx))
	require.NoError(t, s.LoadCard(ctx))
	require.NoError(t, s.ReloadCard(ctx))

	st := s.Snapshot()
	assert.Equal(t, PhaseFinished, st.Phase)
	assert.False(t, st.HasCard())
	assert.Equal(t, collection.Counts{}, st.Counts)
	assert.Equal(t, 1, count[NavigateAway](drain(s)))
}

func TestShowAnswer(t *testing.T) {
	coll := newFakeCollection(basicCard(1, "hola"))
	s := newSession(t, coll, nil, Options{})
	ctx := context.Background()

	// Ignored before a card is loaded.
	require.NoError(t, s.ShowAnswer(ctx))
	assert.False(t, s.Snapshot().AnswerShown)

	require.NoError(t, s.LoadCard(ctx))
	require.NoError(t, s.ShowAnswer(ctx))
	st := s.Snapshot()
	assert.Equal(t, PhaseAnswer, st.Phase)
	assert.True(t, st.AnswerShown)
	assert.Contains(t, st.Answer, "hola back")
	assert.Equal(t, []string{"<1m", "6m", "10m", "4d"}, st.Labels)
}

func TestRateCard_LoadsNextAndResetsTransientFields(t *testing.T) {
	coll := newFakeCollection(basicCard(1, "uno"), basicCard(2, "dos"))
	s := newSession(t, coll, nil, Options{})
	ctx := context.Background()

	require.NoError(t, s.LoadCard(ctx))
	s.SetTypedAnswer("something")
	require.NoError(t, s.ShowAnswer(ctx))
	require.NoError(t, s.RateCard(ctx, collection.RatingGood))

	st := s.Snapshot()
	assert.Equal(t, PhaseQuestion, st.Phase)
	assert.Equal(t, "dos", st.Question)
	assert.Empty(t, st.TypedAnswer)
	assert.Empty(t, st.ChosenAnswer)
	assert.Empty(t, st.Labels)
	assert.Equal(t, []collection.Rating{collection.RatingGood}, coll.answered)

	require.NoError(t, s.RateCard(ctx, collection.RatingEasy))
	assert.Equal(t, PhaseFinished, s.Snapshot().Phase)

	// Dropped after finishing.
	require.NoError(t, s.RateCard(ctx, collection.RatingEasy))
	assert.Len(t, coll.answered, 2)
}

func TestRateCard_AtMostOneInFlight(t *testing.T) {
	coll := newFakeCollection(basicCard(1, "uno"), basicCard(2, "dos"))
	coll.answerGate = make(chan struct{})
	coll.answerEntered = make(chan struct{}, 2)
	s := newSession(t, coll, nil, Options{})
	ctx := context.Background()
	require.NoError(t, s.LoadCard(ctx))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, s.RateCard(ctx, collection.RatingGood))
	}()
	<-coll.answerEntered

	// The first rating is still in flight; these are dropped.
	require.NoError(t, s.RateCard(ctx, collection.RatingGood))
	require.NoError(t, s.BuryCard(ctx))
	require.NoError(t, s.ReloadCard(ctx))

	close(coll.answerGate)
	wg.Wait()

	assert.Equal(t, []collection.Rating{collection.RatingGood}, coll.answered)
	assert.Empty(t, coll.buried)
	assert.Equal(t, "dos", s.Snapshot().Question)
}

func TestRateCard_LeechNotice(t *testing.T) {
	tests := []struct {
		name       string
		rating     collection.Rating
		leech      bool
		wantNotice int
		wantChecks int
	}{
		{"again on leech", collection.RatingAgain, true, 1, 1},
		{"again on non-leech", collection.RatingAgain, false, 0, 1},
		{"good on leech", collection.RatingGood, true, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coll := newFakeCollection(basicCard(1, "uno"), basicCard(2, "dos"))
			coll.leech = tt.leech
			s := newSession(t, coll, nil, Options{})
			ctx := context.Background()

			require.NoError(t, s.LoadCard(ctx))
			require.NoError(t, s.ShowAnswer(ctx))
			require.NoError(t, s.RateCard(ctx, tt.rating))

			assert.Equal(t, tt.wantNotice, count[LeechNotice](drain(s)))
			assert.Equal(t, tt.wantChecks, coll.leechChks)
		})
	}
}

func TestRateCard_FailureBecomesNotice(t *testing.T) {
	coll := newFakeCollection(basicCard(1, "uno"))
	coll.answerErr = errors.New("db locked")
	s := newSession(t, coll, nil, Options{})
	ctx := context.Background()

	require.NoError(t, s.LoadCard(ctx))
	require.NoError(t, s.ShowAnswer(ctx))
	require.NoError(t, s.RateCard(ctx, collection.RatingGood))

	st := s.Snapshot()
	assert.Equal(t, PhaseAnswer, st.Phase, "card stays for retry")
	effects := drain(s)
	require.Len(t, effects, 1)
	assert.Equal(t, Notice{Kind: NoticeError}, effects[0])

	coll.answerErr = nil
	require.NoError(t, s.RateCard(ctx, collection.RatingGood))
	assert.Len(t, coll.answered, 1)
}

func TestRateCard_FailedLoadLeavesNothingToRate(t *testing.T) {
	coll := newFakeCollection(basicCard(1, "uno"), basicCard(2, "dos"))
	s := newSession(t, coll, nil, Options{})
	ctx := context.Background()

	require.NoError(t, s.LoadCard(ctx))
	require.NoError(t, s.ShowAnswer(ctx))
	coll.queueErr = errors.New("db locked")
	require.NoError(t, s.RateCard(ctx, collection.RatingGood))

	st := s.Snapshot()
	assert.Equal(t, PhaseLoading, st.Phase)
	assert.False(t, st.HasCard())
	assert.Empty(t, st.Question)
	assert.Equal(t, []Effect{Notice{Kind: NoticeError}}, drain(s))

	require.NoError(t, s.RateCard(ctx, collection.RatingGood))
	require.NoError(t, s.BuryCard(ctx))
	assert.Equal(t, []collection.Rating{collection.RatingGood}, coll.answered, "answered card rated twice")
	assert.Empty(t, coll.buried)

	coll.queueErr = nil
	require.NoError(t, s.ReloadCard(ctx))
	st = s.Snapshot()
	assert.Equal(t, PhaseQuestion, st.Phase)
	assert.Equal(t, "dos", st.Question)
}

func TestBuryCard_FailedLoadLeavesNothingToRate(t *testing.T) {
	coll := newFakeCollection(basicCard(1, "uno"), basicCard(2, "dos"))
	s := newSession(t, coll, nil, Options{})
	ctx := context.Background()

	require.NoError(t, s.LoadCard(ctx))
	coll.queueErr = errors.New("db locked")
	require.NoError(t, s.BuryCard(ctx))
	assert.False(t, s.Snapshot().HasCard())

	require.NoError(t, s.RateCard(ctx, collection.RatingGood))
	assert.Empty(t, coll.answered)
}

func TestSetFlagThenRate(t *testing.T) {
	coll := newFakeCollection(basicCard(1, "uno"), basicCard(2, "dos"))
	s := newSession(t, coll, nil, Options{})
	ctx := context.Background()

	require.NoError(t, s.LoadCard(ctx))
	require.NoError(t, s.SetFlag(ctx, collection.FlagRed))
	require.NoError(t, s.ShowAnswer(ctx))
	require.NoError(t, s.RateCard(ctx, collection.RatingGood))

	assert.Empty(t, drain(s))
	assert.Equal(t, []collection.Rating{collection.RatingGood}, coll.answered)
	assert.Equal(t, "dos", s.Snapshot().Question)
}

func TestCancellationIsReturned(t *testing.T) {
	coll := newFakeCollection(basicCard(1, "uno"))
	coll.queueErr = context.Canceled
	s := newSession(t, coll, nil, Options{})

	err := s.LoadCard(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, drain(s))
}

func TestBuryAndSuspend(t *testing.T) {
	coll := newFakeCollection(basicCard(1, "uno"), basicCard(2, "dos"), basicCard(3, "tres"))
	s := newSession(t, coll, nil, Options{})
	ctx := context.Background()
	require.NoError(t, s.LoadCard(ctx))

	require.NoError(t, s.BuryCard(ctx))
	assert.Equal(t, []collection.CardID{1}, coll.buried)
	assert.Equal(t, "dos", s.Snapshot().Question)

	require.NoError(t, s.SuspendCard(ctx))
	assert.Equal(t, []collection.CardID{2}, coll.suspended)
	assert.Equal(t, "tres", s.Snapshot().Question)

	effects := drain(s)
	assert.Equal(t, []Effect{Notice{Kind: NoticeBuried}, Notice{Kind: NoticeSuspended}}, effects)
}

func TestToggleMarkAndFlag(t *testing.T) {
	coll := newFakeCollection(basicCard(1, "uno"))
	s := newSession(t, coll, nil, Options{})
	ctx := context.Background()
	require.NoError(t, s.LoadCard(ctx))

	require.NoError(t, s.ToggleMark(ctx))
	st := s.Snapshot()
	assert.True(t, st.Marked)
	assert.Equal(t, []string{collection.MarkedTag}, coll.notes[1].Tags)
	assert.Equal(t, PhaseQuestion, st.Phase, "no reload")

	require.NoError(t, s.ToggleMark(ctx))
	assert.False(t, s.Snapshot().Marked)
	assert.Empty(t, coll.notes[1].Tags)

	require.NoError(t, s.SetFlag(ctx, collection.FlagRed))
	assert.Equal(t, collection.FlagRed, s.Snapshot().Flag)
	assert.Equal(t, collection.FlagRed, coll.flags[1])

	// Setting the same flag again clears it.
	require.NoError(t, s.SetFlag(ctx, collection.FlagRed))
	assert.Equal(t, collection.FlagNone, s.Snapshot().Flag)
	assert.Equal(t, collection.FlagNone, coll.flags[1])
}

func TestTypedAnswerComparison(t *testing.T) {
	q := basicCard(1, "perro")
	q.Note.Kind = collection.KindTyped
	q.Note.Fields = []string{"perro", "dog"}
	coll := newFakeCollection(q)
	s := newSession(t, coll, nil, Options{})
	ctx := context.Background()

	require.NoError(t, s.LoadCard(ctx))
	assert.Equal(t, "dog", s.Snapshot().Expected)
	s.SetTypedAnswer("Dog")
	require.NoError(t, s.ShowAnswer(ctx))

	st := s.Snapshot()
	require.NotNil(t, st.Comparison)
	assert.True(t, st.Comparison.Correct)

	s.SetTypedAnswer("ignored once the answer is shown")
	assert.Equal(t, "Dog", s.Snapshot().TypedAnswer)
}

func TestMediaErrorIsStateNotFailure(t *testing.T) {
	q := basicCard(1, "perro")
	q.Note.Fields = []string{"perro[sound:q.mp3]", "dog[sound:a.mp3]"}
	coll := newFakeCollection(q)
	player := &fakePlayer{err: &media.Error{File: "q.mp3", Err: errors.New("no device")}}
	s := newSession(t, coll, player, Options{Autoplay: true})
	ctx := context.Background()

	require.NoError(t, s.LoadCard(ctx))
	st := s.Snapshot()
	assert.Equal(t, PhaseQuestion, st.Phase)
	require.NotNil(t, st.MediaError)
	assert.Equal(t, "q.mp3", st.MediaError.File)

	s.DismissMediaError()
	assert.Nil(t, s.Snapshot().MediaError)

	player.err = nil
	require.NoError(t, s.ShowAnswer(ctx))
	assert.Equal(t, [][]string{{"q.mp3"}, {"a.mp3"}}, player.played, "answer plays only its own cues")

	s.ReplayMedia(ctx)
	assert.Equal(t, []string{"q.mp3", "a.mp3"}, player.played[2])
}

func TestClose_ReleasesPlayer(t *testing.T) {
	coll := newFakeCollection(basicCard(1, "uno"))
	player := &fakePlayer{}
	s := New(coll, 1, nil, player, Options{})
	ctx := context.Background()
	require.NoError(t, s.LoadCard(ctx))

	require.NoError(t, s.Close())
	assert.True(t, player.closed)

	require.NoError(t, s.RateCard(ctx, collection.RatingGood))
	assert.Empty(t, coll.answered, "actions after close are dropped")
}

func TestAnswerTimeIsCapped(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	coll := &timingCollection{fakeCollection: newFakeCollection(basicCard(1, "uno"))}
	s := New(coll, 1, nil, nil, Options{Now: clock})
	ctx := context.Background()

	require.NoError(t, s.LoadCard(ctx))
	now = now.Add(10 * time.Minute)
	require.NoError(t, s.RateCard(ctx, collection.RatingGood))
	assert.Equal(t, maxAnswerTime, coll.taken)
}

type timingCollection struct {
	*fakeCollection
	taken time.Duration
}

func (c *timingCollection) AnswerCard(ctx context.Context, q *collection.QueuedCard, r collection.Rating, taken time.Duration) error {
	c.taken = taken
	return c.fakeCollection.AnswerCard(ctx, q, r, taken)
}
