package router

import (
	"fmt"
	"slices"
)

// Controller keeps one back stack per top-level route and switches between
// them. Switching sections never grows history; detail routes are pushed
// onto the active section's stack.
type Controller struct {
	start    Route
	active   Route
	topLevel []Route
	stacks   map[Route][]Route
}

// New creates a controller whose start route is start. The start route is
// always top-level; the other top-level routes are listed in topLevel.
func New(start Route, topLevel ...Route) *Controller {
	c := &Controller{
		start:  start,
		active: start,
		stacks: make(map[Route][]Route),
	}
	for _, r := range append([]Route{start}, topLevel...) {
		if _, ok := c.stacks[r]; ok {
			continue
		}
		c.topLevel = append(c.topLevel, r)
		c.stacks[r] = []Route{r}
	}
	return c
}

// IsTopLevel reports whether r is one of the controller's sections.
func (c *Controller) IsTopLevel(r Route) bool {
	_, ok := c.stacks[r]
	return ok
}

// Navigate switches to r when it is top-level and otherwise pushes it onto
// the active stack.
func (c *Controller) Navigate(r Route) {
	if c.IsTopLevel(r) {
		c.active = r
		return
	}
	c.stacks[c.active] = append(c.mustStack(), r)
}

// GoBack pops the active stack. At the root of a section other than the
// start route it returns to the start route instead. It returns false when
// already at the start route's root, where nothing changes.
func (c *Controller) GoBack() bool {
	stack := c.mustStack()
	if stack[len(stack)-1] == c.active {
		if c.active == c.start {
			return false
		}
		c.active = c.start
		return true
	}
	c.stacks[c.active] = stack[:len(stack)-1]
	return true
}

func (c *Controller) mustStack() []Route {
	stack, ok := c.stacks[c.active]
	if !ok || len(stack) == 0 {
		panic(fmt.Sprintf("router: no back stack for active route %s", c.active))
	}
	return stack
}

// Current returns the route on top of the active stack.
func (c *Controller) Current() Route {
	stack := c.mustStack()
	return stack[len(stack)-1]
}

// Start returns the route the user exits through.
func (c *Controller) Start() Route { return c.start }

// Active returns the active top-level route.
func (c *Controller) Active() Route { return c.active }

// TopLevel returns the top-level routes, start route first.
func (c *Controller) TopLevel() []Route {
	return slices.Clone(c.topLevel)
}

// Stack returns a copy of the back stack of top-level route r.
func (c *Controller) Stack(r Route) []Route {
	return slices.Clone(c.stacks[r])
}

// AtStartRoot reports whether GoBack would be a no-op.
func (c *Controller) AtStartRoot() bool {
	return c.active == c.start && len(c.stacks[c.start]) == 1
}

// Snapshot returns the controller's state for persistence.
func (c *Controller) Snapshot() State {
	st := State{
		Start:    c.start,
		Active:   c.active,
		TopLevel: c.TopLevel(),
		Stacks:   make(map[Route][]Route, len(c.stacks)),
	}
	for r, stack := range c.stacks {
		st.Stacks[r] = slices.Clone(stack)
	}
	return st
}

// Restore reinstates a snapshot taken from a controller with the same
// sections. Stacks of unknown sections are ignored and stacks that do not
// begin with their section are reset to it. It reports whether anything
// was restored.
func (c *Controller) Restore(st State) bool {
	if st.Start != c.start {
		return false
	}
	for _, r := range c.topLevel {
		stack, ok := st.Stacks[r]
		if !ok {
			continue
		}
		if len(stack) == 0 || stack[0] != r {
			stack = []Route{r}
		}
		detail := slices.DeleteFunc(slices.Clone(stack[1:]), c.IsTopLevel)
		c.stacks[r] = append([]Route{r}, detail...)
	}
	if c.IsTopLevel(st.Active) {
		c.active = st.Active
	}
	return true
}
