package review

import (
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/flashiz/internal/collection"
	"github.com/abhisek/flashiz/internal/render"
	"github.com/abhisek/flashiz/internal/session"
	"github.com/abhisek/flashiz/internal/ui/components"
	"github.com/abhisek/flashiz/internal/ui/theme"
)

func (s *ReviewScreen) View(width, height int) string {
	st := s.state
	switch {
	case st.Phase == session.PhaseFinished:
		return components.Centered(s.tr.T("NoticeCongrats"), width)
	case !st.HasCard():
		return components.Centered(s.tr.T("ReviewNoCard"), width)
	case st.Tags.Open:
		return s.renderTagEditor(width, height)
	}

	cw := components.ContentWidth(width)
	var b strings.Builder
	b.WriteString(s.renderInfoLine(width))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	text := st.Question
	if st.AnswerShown {
		text = st.Answer
	}
	card := components.CardFrame(lipgloss.NewStyle().Foreground(theme.Text).Render(text), cw)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, card))
	b.WriteString("\n\n")

	if st.Expected != "" {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.renderTyped(cw)))
		b.WriteString("\n\n")
	}

	b.WriteString(s.renderButtons(width))
	b.WriteString("\n")

	if st.MediaError != nil {
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.ErrorText.Render(s.tr.T("ReviewMediaError", map[string]any{"File": st.MediaError.File}))))
	}
	if s.notice != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Hint.Render(s.notice)))
	}
	return b.String()
}

// renderInfoLine shows the due counts with the current card's queue
// underlined, plus mark and flag.
func (s *ReviewScreen) renderInfoLine(width int) string {
	st := s.state
	counts := []struct {
		n     int
		queue bool
		style lipgloss.Style
	}{
		{st.Counts.New, st.Card.Card.Queue == collection.QueueNew, lipgloss.NewStyle().Foreground(theme.QueueNew)},
		{st.Counts.Learn, st.Card.Card.Queue == collection.QueueLearning || st.Card.Card.Queue == collection.QueueRelearning, lipgloss.NewStyle().Foreground(theme.QueueLearn)},
		{st.Counts.Review, st.Card.Card.Queue == collection.QueueReview, lipgloss.NewStyle().Foreground(theme.QueueReview)},
	}
	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		style := c.style
		if c.queue {
			style = style.Underline(true).Bold(true)
		}
		parts = append(parts, style.Render(strconv.Itoa(c.n)))
	}
	left := "  " + strings.Join(parts, " + ")

	var right []string
	if st.Marked {
		right = append(right, lipgloss.NewStyle().Foreground(theme.Accent).Render("★ "+s.tr.T("ReviewMarked")))
	}
	if st.Flag != collection.FlagNone {
		right = append(right, lipgloss.NewStyle().Foreground(theme.FlagColor(st.Flag)).Render("⚑ "+st.Flag.String()))
	}
	if s.flagPending {
		right = append(right, theme.Hint.Render("flag 0-7"))
	}
	r := strings.Join(right, "  ")
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(r)-4, 1)
	return left + strings.Repeat(" ", gap) + r
}

func (s *ReviewScreen) renderTyped(cw int) string {
	st := s.state
	if !st.AnswerShown {
		s.typed.SetWidth(cw - 4)
		return s.tr.T("ReviewTypeAnswer") + "\n" + s.typed.View()
	}
	if st.Comparison == nil {
		return ""
	}
	if st.Comparison.Correct {
		return theme.Correct.Render(s.tr.T("ReviewCorrect"))
	}
	return renderComparison(*st.Comparison) + "\n" +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render("↓") + "\n" +
		theme.Correct.Render(st.Expected)
}

// renderComparison colours the typed answer: matching runs plain, extra
// input red and missing text underlined.
func renderComparison(c render.Comparison) string {
	var b strings.Builder
	for _, seg := range c.Segments {
		switch seg.Kind {
		case render.DiffMatch:
			b.WriteString(theme.Correct.Render(seg.Text))
		case render.DiffExtra:
			b.WriteString(theme.Incorrect.Render(seg.Text))
		case render.DiffMissing:
			b.WriteString(theme.Missing.Render(seg.Text))
		}
	}
	return b.String()
}

func (s *ReviewScreen) renderButtons(width int) string {
	st := s.state
	if !st.AnswerShown {
		return components.ButtonRow([]components.Button{
			{Key: "Space", Label: s.tr.T("ReviewShowAnswer"), Active: st.Phase == session.PhaseQuestion},
		}, width)
	}
	names := []string{s.tr.T("ReviewAgain"), s.tr.T("ReviewHard"), s.tr.T("ReviewGood"), s.tr.T("ReviewEasy")}
	buttons := make([]components.Button, 0, len(names))
	for i, name := range names {
		var detail string
		if i < len(st.Labels) {
			detail = st.Labels[i]
		}
		buttons = append(buttons, components.Button{
			Key:    strconv.Itoa(i + 1),
			Label:  name,
			Detail: detail,
			Active: detail != "" && detail == st.ChosenAnswer,
		})
	}
	return components.ButtonRow(buttons, width)
}

func (s *ReviewScreen) renderTagEditor(width, height int) string {
	ed := s.state.Tags
	var body strings.Builder
	switch {
	case ed.Loading:
		body.WriteString(theme.Hint.Render(s.tr.T("ReviewTagsLoading")))
	default:
		body.WriteString(s.tagList.View(max(height-12, 3)))
		if ed.Truncated {
			body.WriteString("\n\n")
			body.WriteString(theme.Hint.Render(s.tr.T("ReviewTagsTruncated", map[string]any{"Limit": s.sess.TagScanLimit()})))
		}
	}
	body.WriteString("\n\n")
	body.WriteString(s.tagInput.View())
	if ed.Err != "" {
		body.WriteString("\n")
		body.WriteString(theme.ErrorText.Render(ed.Err))
	}
	return components.Dialog(s.tr.T("ReviewTagsTitle"), body.String(), width, height)
}
