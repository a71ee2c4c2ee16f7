package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/flashiz/internal/collection"
)

func TestToText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hola", "hola"},
		{"entities", "caf&eacute; &amp; t&eacute;", "café & té"},
		{"br", "one<br>two<br/>three", "one\ntwo\nthree"},
		{"paragraphs", "<p>one</p><p>two</p>", "one\n\ntwo"},
		{"inline tags", "<b>bold</b> and <i>italic</i>", "bold and italic"},
		{"image", `see <img src="cat.jpg">`, "see [image: cat.jpg]"},
		{"script dropped", "a<script>alert(1)</script>b<style>p{}</style>", "ab"},
		{"list", "<ul><li>x</li><li>y</li></ul>", "• x\n• y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToText(tt.in))
		})
	}
}

func TestRender_Basic(t *testing.T) {
	r := New()
	note := collection.Note{Kind: collection.KindBasic, Fields: []string{"perro", "dog [sound:dog.mp3]"}}

	c, err := r.Render(note, 0)
	require.NoError(t, err)
	assert.Equal(t, "perro", c.Question)
	assert.Empty(t, c.QuestionAudio)
	assert.Equal(t, "perro\ndog ♪ dog.mp3", c.Answer)
	assert.Equal(t, []string{"dog.mp3"}, c.AnswerAudio)
	assert.Empty(t, c.Expected)
}

func TestRender_Reversed(t *testing.T) {
	r := New()
	note := collection.Note{Kind: collection.KindReversed, Fields: []string{"perro", "dog"}}

	c, err := r.Render(note, 1)
	require.NoError(t, err)
	assert.Equal(t, "dog", c.Question)
	assert.Equal(t, "dog\nperro", c.Answer)

	_, err = r.Render(note, 2)
	assert.Error(t, err)
}

func TestRender_Typed(t *testing.T) {
	r := New()
	note := collection.Note{Kind: collection.KindTyped, Fields: []string{"[sound:q.mp3]perro", "<b>dog</b>[sound:a.mp3]"}}

	c, err := r.Render(note, 0)
	require.NoError(t, err)
	assert.Equal(t, "dog", c.Expected)
	assert.Equal(t, []string{"q.mp3"}, c.QuestionAudio)
	assert.Equal(t, []string{"q.mp3", "a.mp3"}, c.AnswerAudio)
}

func TestRender_UnknownKind(t *testing.T) {
	_, err := New().Render(collection.Note{Kind: "cloze"}, 0)
	assert.Error(t, err)
}

func TestCompareAnswer(t *testing.T) {
	c := CompareAnswer("Dog", " dog ")
	assert.True(t, c.Correct)
	assert.Equal(t, []Segment{{Kind: DiffMatch, Text: "Dog"}}, c.Segments)

	c = CompareAnswer("house", "hose")
	assert.False(t, c.Correct)
	assert.Equal(t, []Segment{
		{Kind: DiffMatch, Text: "ho"},
		{Kind: DiffMissing, Text: "u"},
		{Kind: DiffMatch, Text: "se"},
	}, c.Segments)

	c = CompareAnswer("cat", "cats")
	assert.False(t, c.Correct)
	assert.Equal(t, Segment{Kind: DiffExtra, Text: "s"}, c.Segments[len(c.Segments)-1])

	c = CompareAnswer("cat", "")
	assert.False(t, c.Correct)
	assert.Equal(t, []Segment{{Kind: DiffMissing, Text: "cat"}}, c.Segments)
}
