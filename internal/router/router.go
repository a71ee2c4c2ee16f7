package router

import (
	"reflect"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/flashiz/internal/screen"
)

// NavigateMsg asks the router to navigate to Route.
type NavigateMsg struct {
	Route Route
}

// BackMsg asks the router to go back.
type BackMsg struct{}

// Navigate returns a command emitting NavigateMsg for r.
func Navigate(r Route) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Route: r} }
}

// Back returns a command emitting BackMsg.
func Back() tea.Cmd {
	return func() tea.Msg { return BackMsg{} }
}

// Factory builds the screen shown for a route.
type Factory func(Route) screen.Screen

// Router hosts one screen per back stack entry on top of a Controller.
// Screens of inactive sections stay alive so switching back restores them.
// Messages produced by a screen's commands go back to that screen even
// after the user moved elsewhere; input goes to the active screen.
type Router struct {
	nav     *Controller
	factory Factory
	screens map[Route][]entry
	nextID  uint64
}

type entry struct {
	id     uint64
	route  Route
	screen screen.Screen
}

// owner names the hosted screen a command was issued by.
type owner struct {
	section Route
	id      uint64
}

// ownedMsg carries a command result back to the screen that issued it.
type ownedMsg struct {
	owner owner
	msg   tea.Msg
}

// owned tags the messages cmd produces with o. Navigation requests and
// Bubble Tea's own messages pass through untouched.
func owned(o owner, cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return func() tea.Msg {
		return o.tag(cmd())
	}
}

func (o owner) tag(msg tea.Msg) tea.Msg {
	switch m := msg.(type) {
	case nil, NavigateMsg, BackMsg, ownedMsg:
		return msg
	case tea.BatchMsg:
		out := make(tea.BatchMsg, len(m))
		for i, c := range m {
			out[i] = owned(o, c)
		}
		return out
	}
	if isRuntimeMsg(msg) {
		return msg
	}
	return ownedMsg{owner: o, msg: msg}
}

// isRuntimeMsg reports whether msg is one of Bubble Tea's own messages,
// which the program loop must see unwrapped.
func isRuntimeMsg(msg tea.Msg) bool {
	t := reflect.TypeOf(msg)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return strings.HasPrefix(t.PkgPath(), "charm.land/bubbletea/")
}

// NewRouter creates a router over nav. Screens are built on demand.
func NewRouter(nav *Controller, factory Factory) *Router {
	return &Router{
		nav:     nav,
		factory: factory,
		screens: make(map[Route][]entry),
	}
}

// Controller returns the navigation controller.
func (r *Router) Controller() *Controller {
	return r.nav
}

// Init builds the screens of the active stack.
func (r *Router) Init() tea.Cmd {
	return r.sync()
}

// sync makes the active section's screens mirror its back stack, building
// missing ones and closing surplus ones.
func (r *Router) sync() tea.Cmd {
	section := r.nav.Active()
	stack := r.nav.Stack(section)
	entries := r.screens[section]

	keep := 0
	for keep < len(entries) && keep < len(stack) && entries[keep].route == stack[keep] {
		keep++
	}
	for _, e := range entries[keep:] {
		closeScreen(e.screen)
	}
	entries = entries[:keep]

	var cmds []tea.Cmd
	for _, route := range stack[keep:] {
		r.nextID++
		s := r.factory(route)
		entries = append(entries, entry{id: r.nextID, route: route, screen: s})
		cmds = append(cmds, owned(owner{section: section, id: r.nextID}, s.Init()))
	}
	r.screens[section] = entries
	return tea.Batch(cmds...)
}

func closeScreen(s screen.Screen) {
	if c, ok := s.(screen.Closer); ok {
		c.Close()
	}
}

// position identifies the top screen without comparing screen values.
type position struct {
	section Route
	depth   int
}

func (r *Router) position() position {
	return position{section: r.nav.Active(), depth: len(r.screens[r.nav.Active()])}
}

// Navigate switches section or pushes a detail screen.
func (r *Router) Navigate(route Route) tea.Cmd {
	before := r.position()
	r.nav.Navigate(route)
	return r.settle(before)
}

// Back goes back one step. It returns false when already at the start
// route's root.
func (r *Router) Back() (tea.Cmd, bool) {
	before := r.position()
	if !r.nav.GoBack() {
		return nil, false
	}
	return r.settle(before), true
}

// settle builds screens for the new top and activates it when the top
// changed to a screen that already existed.
func (r *Router) settle(before position) tea.Cmd {
	built := len(r.screens[r.nav.Active()]) < len(r.nav.Stack(r.nav.Active()))
	cmd := r.sync()
	if built || r.position() == before {
		return cmd
	}
	top := r.top()
	if top == nil {
		return cmd
	}
	if a, ok := top.screen.(screen.Activator); ok {
		return tea.Batch(cmd, owned(owner{section: r.nav.Active(), id: top.id}, a.Activate()))
	}
	return cmd
}

// top returns the entry on top of the active stack, or nil.
func (r *Router) top() *entry {
	entries := r.screens[r.nav.Active()]
	if len(entries) == 0 {
		return nil
	}
	return &entries[len(entries)-1]
}

// Active returns the screen on top of the active stack.
func (r *Router) Active() screen.Screen {
	if top := r.top(); top != nil {
		return top.screen
	}
	return nil
}

// Depth returns the number of screens on the active stack.
func (r *Router) Depth() int {
	return len(r.screens[r.nav.Active()])
}

// Close closes every hosted screen.
func (r *Router) Close() {
	for _, entries := range r.screens {
		for _, e := range entries {
			closeScreen(e.screen)
		}
	}
	r.screens = make(map[Route][]entry)
}

// Update handles navigation messages, delivers command results to the
// screen that asked for them, and forwards everything else to the active
// screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case NavigateMsg:
		return r.Navigate(msg.Route)
	case BackMsg:
		cmd, _ := r.Back()
		return cmd
	case ownedMsg:
		// A result for a closed screen is dropped.
		e := r.find(msg.owner)
		if e == nil {
			return nil
		}
		return r.deliver(msg.owner.section, e, msg.msg)
	}

	top := r.top()
	if top == nil {
		return nil
	}
	return r.deliver(r.nav.Active(), top, msg)
}

func (r *Router) deliver(section Route, e *entry, msg tea.Msg) tea.Cmd {
	updated, cmd := e.screen.Update(msg)
	e.screen = updated
	return owned(owner{section: section, id: e.id}, cmd)
}

func (r *Router) find(o owner) *entry {
	entries := r.screens[o.section]
	for i := range entries {
		if entries[i].id == o.id {
			return &entries[i]
		}
	}
	return nil
}

// View renders the active screen.
func (r *Router) View(width, height int) string {
	active := r.Active()
	if active == nil {
		return ""
	}
	return active.View(width, height)
}
