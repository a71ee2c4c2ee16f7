package session

import (
	"context"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/flashiz/internal/collection"
)

const (
	tagLoadError = "Couldn't load tags."
	tagSaveError = "Couldn't save tags."
)

// OpenTagEditor opens the tag dialog for the current note with its tags
// selected, then loads the collection's tags and the tags used in the
// card's deck concurrently.
func (s *Session) OpenTagEditor(ctx context.Context) error {
	s.mu.Lock()
	q := s.state.Card
	if q == nil || s.closed {
		s.mu.Unlock()
		return nil
	}
	s.tagGen++
	gen := s.tagGen
	s.state.Tags = TagEditor{
		Open:     true,
		Loading:  true,
		Selected: slices.Clone(q.Note.Tags),
	}
	s.mu.Unlock()

	var (
		all, deck []string
		truncated bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		all, err = s.coll.AllTags(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		deck, truncated, err = s.coll.DeckTags(gctx, q.Card.DeckID, s.opts.TagScanLimit)
		return err
	})
	err := g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.tagGen || !s.state.Tags.Open {
		return nil
	}
	s.state.Tags.Loading = false
	if err != nil {
		if ctx.Err() != nil {
			s.state.Tags = TagEditor{}
			return ctx.Err()
		}
		s.log.Error("load tags failed", "error", err)
		s.state.Tags.Err = tagLoadError
		s.emit(Changed{})
		return nil
	}
	s.state.Tags.AllTags = all
	s.state.Tags.DeckTags = deck
	s.state.Tags.Truncated = truncated
	if truncated {
		s.log.Info("deck tag scan truncated", "deck", q.Card.DeckID, "limit", s.opts.TagScanLimit)
	}
	s.emit(Changed{})
	return nil
}

// ToggleTag selects or deselects tag in the open editor.
func (s *Session) ToggleTag(tag string) {
	tag = strings.TrimSpace(tag)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Tags.Open || tag == "" {
		return
	}
	sel := s.state.Tags.Selected
	i := slices.IndexFunc(sel, func(t string) bool { return strings.EqualFold(t, tag) })
	if i >= 0 {
		s.state.Tags.Selected = slices.Delete(slices.Clone(sel), i, i+1)
		return
	}
	s.state.Tags.Selected = append(slices.Clone(sel), tag)
}

// SetSelectedTags replaces the selection in the open editor.
func (s *Session) SetSelectedTags(tags []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Tags.Open {
		s.state.Tags.Selected = slices.Clone(tags)
	}
}

// ConfirmTags writes the selected tags to the note and refreshes the note
// without loading another card. On failure the editor stays open.
func (s *Session) ConfirmTags(ctx context.Context) error {
	s.mu.Lock()
	q := s.state.Card
	if q == nil || !s.state.Tags.Open || s.state.Tags.Loading {
		s.mu.Unlock()
		return nil
	}
	selected := slices.Clone(s.state.Tags.Selected)
	s.mu.Unlock()

	if err := s.coll.SetNoteTags(ctx, q.Note.ID, selected); err != nil {
		if ctx.Err() != nil {
			return err
		}
		s.log.Error("save tags failed", "note", q.Note.ID, "error", err)
		s.mu.Lock()
		s.state.Tags.Err = tagSaveError
		s.mu.Unlock()
		s.emit(Notice{Kind: NoticeError})
		return nil
	}

	note, err := s.coll.Note(ctx, q.Note.ID)
	if err != nil {
		return s.fail("reload note", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Card == nil || s.state.Card.Note.ID != note.ID {
		return nil
	}
	s.state.Card.Note = *note
	s.state.Marked = note.HasTag(collection.MarkedTag)
	s.state.Tags = TagEditor{}
	return nil
}

// CancelTagEditor closes the editor without saving.
func (s *Session) CancelTagEditor() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tagGen++
	s.state.Tags = TagEditor{}
}
