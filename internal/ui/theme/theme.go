package theme

import (
	"image/color"
	"strconv"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/flashiz/internal/collection"
)

// Color palette, calm on dark terminals
var (
	Primary   = lipgloss.Color("#6366F1") // Indigo
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F59E0B") // Amber
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgDark    = lipgloss.Color("#0F172A") // Deep Navy
	BgCard    = lipgloss.Color("#1E293B") // Dark Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Queue colours used for due counts.
var (
	QueueNew    = lipgloss.Color("#3B82F6")
	QueueLearn  = lipgloss.Color("#EF4444")
	QueueReview = lipgloss.Color("#22C55E")
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Background(BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)

	Dialog = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Primary).
		Padding(1, 2)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	Missing = lipgloss.NewStyle().
		Foreground(Accent).
		Underline(true)

	ErrorText = lipgloss.NewStyle().
			Foreground(Error)
)

// Components
var (
	ProgressFilled = lipgloss.NewStyle().
			Background(Secondary)

	ProgressEmpty = lipgloss.NewStyle().
			Background(Border)

	ButtonActive = lipgloss.NewStyle().
			Background(Primary).
			Foreground(Text).
			Bold(true).
			Padding(0, 2)

	ButtonInactive = lipgloss.NewStyle().
			Background(BgCard).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 2)
)

// FlagColor returns the colour of a card flag.
func FlagColor(f collection.Flag) color.Color {
	switch f {
	case collection.FlagRed:
		return lipgloss.Color("#EF4444")
	case collection.FlagOrange:
		return lipgloss.Color("#F97316")
	case collection.FlagGreen:
		return lipgloss.Color("#22C55E")
	case collection.FlagBlue:
		return lipgloss.Color("#3B82F6")
	case collection.FlagPink:
		return lipgloss.Color("#EC4899")
	case collection.FlagTurquoise:
		return lipgloss.Color("#14B8A6")
	case collection.FlagPurple:
		return lipgloss.Color("#A855F7")
	default:
		return TextDim
	}
}

// Counts renders due counts as coloured "new learn review" numbers.
func Counts(c collection.Counts) string {
	return lipgloss.NewStyle().Foreground(QueueNew).Render(strconv.Itoa(c.New)) + " " +
		lipgloss.NewStyle().Foreground(QueueLearn).Render(strconv.Itoa(c.Learn)) + " " +
		lipgloss.NewStyle().Foreground(QueueReview).Render(strconv.Itoa(c.Review))
}
