package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/flashiz/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Activator is implemented by screens that refresh when they come back to
// the top of their stack.
type Activator interface {
	Activate() tea.Cmd
}

// Closer is implemented by screens holding resources that must be released
// when they are popped.
type Closer interface {
	Close()
}

// InputCapturer is implemented by screens that are currently reading text,
// so global keys must be passed through to them.
type InputCapturer interface {
	CapturesInput() bool
}
