// Package render turns notes into the question and answer text shown in
// the terminal.
package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/abhisek/flashiz/internal/collection"
)

// Template is the question and answer format of one card ordinal.
// {{Front}}, {{Back}} and {{FrontSide}} are substituted; {{type:Back}}
// marks a typed-answer prompt.
type Template struct {
	Question string
	Answer   string
}

const typePrompt = "{{type:Back}}"

var defaultTemplates = map[collection.NoteKind][]Template{
	collection.KindBasic: {
		{Question: "{{Front}}", Answer: "{{FrontSide}}<hr>{{Back}}"},
	},
	collection.KindReversed: {
		{Question: "{{Front}}", Answer: "{{FrontSide}}<hr>{{Back}}"},
		{Question: "{{Back}}", Answer: "{{FrontSide}}<hr>{{Front}}"},
	},
	collection.KindTyped: {
		{Question: "{{Front}}" + typePrompt, Answer: "{{FrontSide}}<hr>{{Back}}"},
	},
}

// Card is a rendered card.
type Card struct {
	Question string
	Answer   string

	// Sound cues referenced by each side, in order of appearance.
	QuestionAudio []string
	AnswerAudio   []string

	// Expected is the text the learner should type; empty when the card
	// has no typed answer.
	Expected string
}

// Renderer renders cards from note templates.
type Renderer struct {
	templates map[collection.NoteKind][]Template
}

// New returns a renderer with the built-in templates.
func New() *Renderer {
	return &Renderer{templates: defaultTemplates}
}

var soundRe = regexp.MustCompile(`\[sound:([^\]]+)\]`)

// Render renders card ord of note.
func (r *Renderer) Render(note collection.Note, ord int) (*Card, error) {
	tmpls, ok := r.templates[note.Kind]
	if !ok {
		return nil, fmt.Errorf("render: unknown note kind %q", note.Kind)
	}
	if ord < 0 || ord >= len(tmpls) {
		return nil, fmt.Errorf("render: note kind %q has no card %d", note.Kind, ord)
	}
	t := tmpls[ord]

	fields := map[string]string{
		"Front": note.Field(0),
		"Back":  note.Field(1),
	}
	c := &Card{}
	q := t.Question
	if strings.Contains(q, typePrompt) {
		q = strings.ReplaceAll(q, typePrompt, "")
		c.Expected = ToText(stripSounds(fields["Back"]))
	}
	qHTML := substitute(q, fields)
	fields["FrontSide"] = qHTML
	aHTML := substitute(t.Answer, fields)

	c.Question, c.QuestionAudio = finish(qHTML)
	c.Answer, c.AnswerAudio = finish(aHTML)
	return c, nil
}

func substitute(tmpl string, fields map[string]string) string {
	pairs := make([]string, 0, 2*len(fields))
	for name, v := range fields {
		pairs = append(pairs, "{{"+name+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// finish extracts sound cues and converts what is left to text.
func finish(src string) (string, []string) {
	var cues []string
	for _, m := range soundRe.FindAllStringSubmatch(src, -1) {
		cues = append(cues, strings.TrimSpace(m[1]))
	}
	text := soundRe.ReplaceAllStringFunc(src, func(m string) string {
		return "♪ " + strings.TrimSpace(soundRe.FindStringSubmatch(m)[1])
	})
	return ToText(text), cues
}

func stripSounds(s string) string {
	return soundRe.ReplaceAllString(s, "")
}
