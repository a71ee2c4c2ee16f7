package decks

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/flashiz/internal/collection"
)

func sampleTree() *collection.DeckNode {
	return &collection.DeckNode{Children: []*collection.DeckNode{
		{ID: 1, Name: "Default", FullName: "Default", Level: 1},
		{ID: 2, Name: "Spanish", FullName: "Spanish", Level: 1, Collapsed: true, Children: []*collection.DeckNode{
			{ID: 3, Name: "Verbs", FullName: "Spanish::Verbs", Level: 2, Children: []*collection.DeckNode{
				{ID: 4, Name: "Irregular", FullName: "Spanish::Verbs::Irregular", Level: 3},
			}},
		}},
	}}
}

func ids(rows []Row) []collection.DeckID {
	var out []collection.DeckID
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}

func TestFlatten_HonorsCollapseSet(t *testing.T) {
	tree := sampleTree()
	set := CollapseSetOf(tree)
	assert.True(t, set.Has(2))

	rows := Flatten(tree, set)
	assert.Equal(t, []collection.DeckID{1, 2}, ids(rows))
	assert.True(t, rows[1].Collapsed)
	assert.True(t, rows[1].HasChildren)

	assert.False(t, set.Toggle(2))
	rows = Flatten(tree, set)
	assert.Equal(t, []collection.DeckID{1, 2, 3, 4}, ids(rows))
	assert.Equal(t, 2, rows[3].Depth)

	assert.True(t, set.Toggle(3))
	assert.Equal(t, []collection.DeckID{1, 2, 3}, ids(Flatten(tree, set)))
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"Default", "Spanish", "Spanish::Verbs", "Spanish::Verbs::Irregular"}, Names(sampleTree()))
	assert.Nil(t, Flatten(nil, nil))
}
