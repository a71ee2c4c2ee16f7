package decks

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/abhisek/flashiz/internal/apperrors"
	"github.com/abhisek/flashiz/internal/collection"
	"github.com/abhisek/flashiz/internal/syncstatus"
)

// GenericError is shown when a dialog action fails for a reason the user
// can't fix by editing the input.
const GenericError = "Something went wrong."

// Backend is the part of the collection the picker drives.
type Backend interface {
	DeckDueTree(ctx context.Context) (*collection.DeckNode, error)
	CreateDeck(ctx context.Context, name string) (collection.DeckID, error)
	RenameDeck(ctx context.Context, id collection.DeckID, name string) error
	RemoveDeck(ctx context.Context, id collection.DeckID) error
	SetDeckCollapsed(ctx context.Context, id collection.DeckID, collapsed bool) error
}

// Dialog is the modal currently open over the deck list.
type Dialog int

const (
	DialogNone Dialog = iota
	DialogCreate
	DialogRename
	DialogRemove
)

// State is a snapshot of the picker for rendering.
type State struct {
	Rows     []Row
	Selected collection.DeckID
	Sync     syncstatus.Status
	Loaded   bool

	Dialog     Dialog
	DialogDeck Row // target of rename/remove
	Input      string
	Validation Validation
	CanSubmit  bool
	Err        string // dialog error; the dialog stays open
}

// StartReview asks the UI to open the review screen for a deck.
type StartReview struct {
	Deck collection.DeckID
}

// Picker is the deck list state machine.
type Picker struct {
	backend Backend
	checker syncstatus.Checker
	log     *slog.Logger

	mu        sync.Mutex
	state     State
	tree      *collection.DeckNode
	collapsed CollapseSet
}

// NewPicker creates a picker. checker may be nil, in which case the sync
// status is always normal.
func NewPicker(backend Backend, checker syncstatus.Checker, log *slog.Logger) *Picker {
	if log == nil {
		log = slog.Default()
	}
	return &Picker{
		backend:   backend,
		checker:   checker,
		log:       log.With("component", "picker"),
		collapsed: make(CollapseSet),
	}
}

// Snapshot returns a copy of the current state.
func (p *Picker) Snapshot() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.state
	s.Rows = slices.Clone(p.state.Rows)
	return s
}

// Refresh reloads the deck tree and the sync status. Only cancellation is
// returned; other failures are logged and leave the previous rows in place.
func (p *Picker) Refresh(ctx context.Context) error {
	tree, err := p.backend.DeckDueTree(ctx)
	if err != nil {
		if isCancel(err) {
			return err
		}
		p.log.Error("load deck tree", "error", err)
	} else {
		p.mu.Lock()
		p.tree = tree
		p.collapsed = CollapseSetOf(tree)
		p.relayout()
		p.state.Loaded = true
		p.mu.Unlock()
	}

	if p.checker == nil {
		return nil
	}
	st, err := syncstatus.Probe(ctx, p.checker, p.log)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.state.Sync = st
	p.mu.Unlock()
	return nil
}

// relayout recomputes the rows and keeps the selection on a visible deck.
// Callers hold p.mu.
func (p *Picker) relayout() {
	p.state.Rows = Flatten(p.tree, p.collapsed)
	if len(p.state.Rows) == 0 {
		p.state.Selected = 0
		return
	}
	if p.indexOf(p.state.Selected) < 0 {
		p.state.Selected = p.state.Rows[0].ID
	}
}

func (p *Picker) indexOf(id collection.DeckID) int {
	return slices.IndexFunc(p.state.Rows, func(r Row) bool { return r.ID == id })
}

func (p *Picker) row(id collection.DeckID) (Row, bool) {
	i := p.indexOf(id)
	if i < 0 {
		return Row{}, false
	}
	return p.state.Rows[i], true
}

// MoveCursor moves the selection by delta rows, clamped to the list.
func (p *Picker) MoveCursor(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.state.Rows) == 0 {
		return
	}
	i := p.indexOf(p.state.Selected) + delta
	i = max(0, min(i, len(p.state.Rows)-1))
	p.state.Selected = p.state.Rows[i].ID
}

// Select makes id the selected deck and asks to study it.
func (p *Picker) Select(id collection.DeckID) (StartReview, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.row(id); !ok {
		return StartReview{}, false
	}
	p.state.Selected = id
	return StartReview{Deck: id}, true
}

// ToggleCollapse shows or hides the children of id and persists the choice.
func (p *Picker) ToggleCollapse(ctx context.Context, id collection.DeckID) error {
	p.mu.Lock()
	r, ok := p.row(id)
	if !ok || !r.HasChildren {
		p.mu.Unlock()
		return nil
	}
	collapsed := p.collapsed.Toggle(id)
	p.relayout()
	p.mu.Unlock()

	if err := p.backend.SetDeckCollapsed(ctx, id, collapsed); err != nil {
		if isCancel(err) {
			return err
		}
		p.log.Warn("persist collapsed deck", "deck", id, "error", err)
	}
	return nil
}

// OpenCreate opens the create dialog with an empty name.
func (p *Picker) OpenCreate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.openDialog(DialogCreate, Row{}, "")
}

// OpenRename opens the rename dialog for id, prefilled with its name.
func (p *Picker) OpenRename(id collection.DeckID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, ok := p.row(id)
	if !ok {
		return false
	}
	p.openDialog(DialogRename, r, r.FullName)
	return true
}

// OpenRemove opens the remove confirmation for id.
func (p *Picker) OpenRemove(id collection.DeckID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, ok := p.row(id)
	if !ok {
		return false
	}
	p.openDialog(DialogRemove, r, "")
	p.state.CanSubmit = true
	return true
}

func (p *Picker) openDialog(d Dialog, target Row, input string) {
	p.state.Dialog = d
	p.state.DialogDeck = target
	p.state.Err = ""
	p.setInput(input)
}

// SetInput updates the dialog input and its validation.
func (p *Picker) SetInput(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.Dialog != DialogCreate && p.state.Dialog != DialogRename {
		return
	}
	p.state.Err = ""
	p.setInput(s)
}

func (p *Picker) setInput(s string) {
	p.state.Input = s
	current := ""
	if p.state.Dialog == DialogRename {
		current = p.state.DialogDeck.FullName
	}
	p.state.Validation = ValidateName(s, Names(p.tree), current)
	p.state.CanSubmit = CanSubmit(s, p.state.Validation)
}

// CancelDialog closes any open dialog.
func (p *Picker) CancelDialog() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeDialog()
}

func (p *Picker) closeDialog() {
	p.state.Dialog = DialogNone
	p.state.DialogDeck = Row{}
	p.state.Input = ""
	p.state.Validation = ValidationNone
	p.state.CanSubmit = false
	p.state.Err = ""
}

// Confirm applies the open dialog. On success the dialog closes and the
// tree is reloaded. On failure the dialog stays open with Err set; only
// cancellation is returned.
func (p *Picker) Confirm(ctx context.Context) error {
	p.mu.Lock()
	st := p.state
	p.mu.Unlock()
	if st.Dialog == DialogNone || !st.CanSubmit {
		return nil
	}

	var (
		err     error
		created collection.DeckID
	)
	switch st.Dialog {
	case DialogCreate:
		created, err = p.backend.CreateDeck(ctx, st.Input)
	case DialogRename:
		err = p.backend.RenameDeck(ctx, st.DialogDeck.ID, st.Input)
	case DialogRemove:
		err = p.backend.RemoveDeck(ctx, st.DialogDeck.ID)
	}
	if err != nil {
		if isCancel(err) {
			return err
		}
		p.log.Error("deck dialog failed", "dialog", int(st.Dialog), "deck", st.DialogDeck.ID, "error", err)
		p.mu.Lock()
		if p.state.Dialog == st.Dialog {
			p.state.Err = dialogMessage(err)
		}
		p.mu.Unlock()
		return nil
	}

	p.mu.Lock()
	p.closeDialog()
	if created != 0 {
		p.state.Selected = created
	}
	p.mu.Unlock()
	return p.Refresh(ctx)
}

// dialogMessage keeps validation messages from the backend and hides
// everything else behind the generic message.
func dialogMessage(err error) string {
	if apperrors.Is(err, apperrors.KindValidation) {
		return apperrors.PublicMessage(err)
	}
	return GenericError
}

func isCancel(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
