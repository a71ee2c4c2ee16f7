package app

import (
	"context"
	"sync"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/flashiz/internal/collection"
	"github.com/abhisek/flashiz/internal/router"
	"github.com/abhisek/flashiz/internal/routes"
	"github.com/abhisek/flashiz/internal/store"
)

// fakeBackend satisfies Backend. Screen commands are never run in these
// tests, so the embedded collection stays nil.
type fakeBackend struct {
	collection.Collection
}

func (fakeBackend) Search(context.Context, string, int) ([]collection.SearchResult, error) {
	return nil, nil
}

func (fakeBackend) Revlog(context.Context, collection.CardID) ([]collection.RevlogEntry, error) {
	return nil, nil
}

func (fakeBackend) UnsuspendCards(context.Context, []collection.CardID) error { return nil }

func (fakeBackend) Stats(context.Context) (*collection.Stats, error) {
	return &collection.Stats{}, nil
}

type memSettings struct {
	mu sync.Mutex
	m  map[string]string
}

func newMemSettings() *memSettings {
	return &memSettings{m: make(map[string]string)}
}

func (s *memSettings) Setting(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	if !ok {
		return "", store.ErrNotFound
	}
	return v, nil
}

func (s *memSettings) SetSetting(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func newTestModel(settings Settings) AppModel {
	m := newAppModel(Options{Collection: fakeBackend{}, Settings: settings})
	m.Init()
	return m
}

func key(s string) tea.KeyPressMsg {
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

func TestSectionKeys(t *testing.T) {
	m := newTestModel(nil)
	nav := m.router.Controller()
	assert.Equal(t, routes.Decks, nav.Active())

	m.Update(key("2"))
	assert.Equal(t, routes.Browse, nav.Active())

	m.Update(key("3"))
	assert.Equal(t, routes.Stats, nav.Active())

	m.Update(key("1"))
	assert.Equal(t, routes.Decks, nav.Active())
}

func TestEscAtSectionRootReturnsToStart(t *testing.T) {
	m := newTestModel(nil)
	nav := m.router.Controller()

	m.Update(key("3"))
	require.Equal(t, routes.Stats, nav.Active())

	m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Equal(t, routes.Decks, nav.Active())
}

func TestQuitOnlyAtSectionRoot(t *testing.T) {
	m := newTestModel(nil)

	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok, "q at the deck list should quit")

	m.router.Navigate(routes.CardDetail(9))
	require.Equal(t, 2, m.router.Depth())
	cmd, handled := m.handleGlobalKey(key("q"))
	assert.False(t, handled)
	assert.Nil(t, cmd)
}

func TestCtrlCAlwaysQuits(t *testing.T) {
	m := newTestModel(nil)
	m.router.Navigate(routes.CardDetail(9))

	cmd, handled := m.handleGlobalKey(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	require.True(t, handled)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestNavStateRoundTrip(t *testing.T) {
	settings := newMemSettings()

	m := newTestModel(settings)
	m.router.Navigate(routes.Browse)
	m.router.Navigate(routes.CardDetail(4))
	m.shutdown()

	_, saved := settings.m[store.SettingNavState]
	require.True(t, saved)

	restored := newTestModel(settings)
	nav := restored.router.Controller()
	assert.Equal(t, routes.Browse, nav.Active())
	assert.Equal(t, []router.Route{routes.Browse, routes.CardDetail(4)}, nav.Stack(routes.Browse))
	assert.Equal(t, 2, restored.router.Depth())
}

func TestRestoreDropsReviewRoutes(t *testing.T) {
	settings := newMemSettings()
	st := router.State{
		Start:  routes.Decks,
		Active: routes.Decks,
		Stacks: map[router.Route][]router.Route{
			routes.Decks: {routes.Decks, routes.Review(2)},
		},
		TopLevel: routes.TopLevel[1:],
	}
	raw, err := st.Encode()
	require.NoError(t, err)
	settings.m[store.SettingNavState] = raw

	m := newTestModel(settings)
	nav := m.router.Controller()
	assert.Equal(t, []router.Route{routes.Decks}, nav.Stack(routes.Decks))
	assert.Equal(t, 1, m.router.Depth())
}

func TestCorruptNavStateIsIgnored(t *testing.T) {
	settings := newMemSettings()
	settings.m[store.SettingNavState] = "{not json"

	m := newTestModel(settings)
	assert.Equal(t, routes.Decks, m.router.Controller().Active())
}

func TestWithoutReviews(t *testing.T) {
	st := router.State{
		Stacks: map[router.Route][]router.Route{
			routes.Decks:  {routes.Decks, routes.Review(1), routes.CardDetail(3)},
			routes.Browse: {routes.Browse, routes.CardDetail(3)},
		},
	}
	got := withoutReviews(st)
	assert.Equal(t, []router.Route{routes.Decks}, got.Stacks[routes.Decks])
	assert.Equal(t, []router.Route{routes.Browse, routes.CardDetail(3)}, got.Stacks[routes.Browse])
}

func TestRememberDeck(t *testing.T) {
	settings := newMemSettings()
	m := newTestModel(settings)

	cmd := m.rememberDeck(7)
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, "7", settings.m[store.SettingCurrentDeck])
}

func TestTabsFollowActiveSection(t *testing.T) {
	m := newTestModel(nil)
	m.Update(key("2"))

	tabs := m.tabs()
	require.Len(t, tabs, 3)
	assert.Equal(t, "Decks", tabs[0].Label)
	assert.Equal(t, "2", tabs[1].Key)
	assert.True(t, tabs[1].Active)
	assert.False(t, tabs[0].Active)
}
