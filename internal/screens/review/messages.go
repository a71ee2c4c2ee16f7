package review

import "github.com/abhisek/flashiz/internal/session"

// actionDoneMsg is sent when a session call running in the background
// returns.
type actionDoneMsg struct {
	Err error
}

// effectMsg carries one effect from the session.
type effectMsg struct {
	Effect session.Effect
}

// noticeExpiredMsg clears the notice line if it still shows notice seq.
type noticeExpiredMsg struct {
	seq int
}
