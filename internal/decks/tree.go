package decks

import "github.com/abhisek/flashiz/internal/collection"

// CollapseSet holds the decks whose children are hidden.
type CollapseSet map[collection.DeckID]struct{}

// CollapseSetOf builds the set from the collapsed flags in a tree.
func CollapseSetOf(root *collection.DeckNode) CollapseSet {
	s := make(CollapseSet)
	walk(root, func(n *collection.DeckNode) {
		if n.Collapsed {
			s[n.ID] = struct{}{}
		}
	})
	return s
}

func (s CollapseSet) Has(id collection.DeckID) bool {
	_, ok := s[id]
	return ok
}

// Toggle flips id and reports whether it is now collapsed.
func (s CollapseSet) Toggle(id collection.DeckID) bool {
	if s.Has(id) {
		delete(s, id)
		return false
	}
	s[id] = struct{}{}
	return true
}

// Row is one visible line of the deck list.
type Row struct {
	ID          collection.DeckID
	Name        string
	FullName    string
	Depth       int // 0 for top-level decks
	HasChildren bool
	Collapsed   bool
	Counts      collection.Counts
}

// Flatten lists the visible decks in tree order, skipping the children of
// collapsed decks. The root itself is not listed.
func Flatten(root *collection.DeckNode, collapsed CollapseSet) []Row {
	if root == nil {
		return nil
	}
	var rows []Row
	var visit func(n *collection.DeckNode, depth int)
	visit = func(n *collection.DeckNode, depth int) {
		c := collapsed.Has(n.ID)
		rows = append(rows, Row{
			ID:          n.ID,
			Name:        n.Name,
			FullName:    n.FullName,
			Depth:       depth,
			HasChildren: len(n.Children) > 0,
			Collapsed:   c,
			Counts:      n.Counts,
		})
		if c {
			return
		}
		for _, ch := range n.Children {
			visit(ch, depth+1)
		}
	}
	for _, ch := range root.Children {
		visit(ch, 0)
	}
	return rows
}

// Names returns the full name of every deck in the tree.
func Names(root *collection.DeckNode) []string {
	var names []string
	walk(root, func(n *collection.DeckNode) {
		if n != root {
			names = append(names, n.FullName)
		}
	})
	return names
}

func walk(n *collection.DeckNode, fn func(*collection.DeckNode)) {
	if n == nil {
		return
	}
	fn(n)
	for _, ch := range n.Children {
		walk(ch, fn)
	}
}
