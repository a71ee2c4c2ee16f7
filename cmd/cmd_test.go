package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/flashiz/internal/collection"
)

func TestReadTSV(t *testing.T) {
	in := strings.Join([]string{
		"# header comment",
		"hola\thello\tspanish greeting",
		"adiós\tgoodbye",
		"solo",
	}, "\n")

	notes, err := readTSV(strings.NewReader(in), 3, collection.KindReversed)
	require.NoError(t, err)
	require.Len(t, notes, 3)

	assert.Equal(t, "hola", notes[0].note.Front)
	assert.Equal(t, "hello", notes[0].note.Back)
	assert.Equal(t, []string{"spanish", "greeting"}, notes[0].note.Tags)
	assert.Equal(t, collection.DeckID(3), notes[0].note.Deck)
	assert.Equal(t, collection.KindReversed, notes[0].note.Kind)
	assert.Equal(t, 2, notes[0].line)

	assert.Equal(t, "adiós", notes[1].note.Front)
	assert.Empty(t, notes[1].note.Tags)

	assert.Equal(t, "solo", notes[2].note.Front)
	assert.Empty(t, notes[2].note.Back)
}

func withTerminal(t *testing.T, isTerm bool) {
	t.Helper()
	orig := stdinIsTerminal
	stdinIsTerminal = func() bool { return isTerm }
	t.Cleanup(func() { stdinIsTerminal = orig })
}

func TestConfirm(t *testing.T) {
	withTerminal(t, true)

	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got, err := confirm(strings.NewReader(tt.input), &out, "Sure?")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
		assert.Equal(t, "Sure? [y/N] ", out.String())
	}
}

func TestConfirmWithoutTerminal(t *testing.T) {
	withTerminal(t, false)
	_, err := confirm(strings.NewReader("y\n"), &bytes.Buffer{}, "Sure?")
	assert.Error(t, err)
}

// run executes the root command against db and returns its output.
func run(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--db", db, "--log-level", "error"))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommandsEndToEnd(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	db := filepath.Join(dir, "data", "flashiz.db")

	out, err := run(t, db, "decks", "create", "Spanish::Verbs")
	require.NoError(t, err)
	assert.Contains(t, out, `Created deck "Spanish::Verbs"`)

	out, err = run(t, db, "add", "--deck", "Spanish::Verbs", "--front", "hablar", "--back", "to speak")
	require.NoError(t, err)
	assert.Contains(t, out, "Added note")

	tsv := filepath.Join(dir, "verbs.tsv")
	require.NoError(t, os.WriteFile(tsv, []byte("comer\tto eat\nvivir\tto live\tverbs\n"), 0o644))
	out, err = run(t, db, "import", tsv, "--deck", "Spanish::Verbs")
	require.NoError(t, err)
	assert.Contains(t, out, `Imported 2 notes into "Spanish::Verbs"`)

	out, err = run(t, db, "decks", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Spanish")
	assert.Contains(t, out, "  Verbs")

	out, err = run(t, db, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "3 total")

	out, err = run(t, db, "reset", "Spanish::Verbs", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Reset 3 cards")

	_, err = run(t, db, "decks", "rename", "Spanish::Verbs", "Spanish::Verbos")
	require.NoError(t, err)

	_, err = run(t, db, "decks", "remove", "Missing", "--yes")
	require.Error(t, err)
	assert.Equal(t, "Deck not found.", err.Error())

	out, err = run(t, db, "decks", "remove", "Spanish", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, `Removed "Spanish"`)
}
