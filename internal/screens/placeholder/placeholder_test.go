package placeholder

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/flashiz/internal/router"
)

func TestPlaceholder(t *testing.T) {
	p := New(router.Route{Name: "gone", ID: 3})
	if p.Title() != "gone" {
		t.Errorf("expected title 'gone', got %q", p.Title())
	}
	if !strings.Contains(p.View(80, 20), "gone/3") {
		t.Error("expected view to name the route")
	}

	_, cmd := p.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("expected esc to go back")
	}
	if _, ok := cmd().(router.BackMsg); !ok {
		t.Error("expected BackMsg")
	}
}
