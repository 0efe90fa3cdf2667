package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/marcoskids/marcos/internal/content"
)

// Color palette, soft and warm for guardians reading on a terminal.
var (
	Primary   = lipgloss.Color("#8B5CF6") // Vivid Purple
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F97316") // Orange
	Success   = lipgloss.Color("#22C55E") // Green
	Warning   = lipgloss.Color("#EAB308") // Amber
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Dimension colors, one per developmental dimension.
var dimensionColors = map[content.Dimension]color.Color{
	content.DimGrossMotor: lipgloss.Color("#F97316"),
	content.DimFineMotor:  lipgloss.Color("#EAB308"),
	content.DimLanguage:   lipgloss.Color("#3B82F6"),
	content.DimCognitive:  lipgloss.Color("#8B5CF6"),
	content.DimSocial:     lipgloss.Color("#EC4899"),
	content.DimSelfCare:   lipgloss.Color("#14B8A6"),
}

// DimensionColor returns the accent color of d, Secondary when unknown.
func DimensionColor(d content.Dimension) color.Color {
	if c, ok := dimensionColors[d]; ok {
		return c
	}
	return Secondary
}

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// States
var (
	Positive = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	Alert = lipgloss.NewStyle().
		Foreground(Warning).
		Bold(true)

	Failure = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)
)

// Components
var (
	ProgressEmpty = lipgloss.NewStyle().
			Background(Border)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 2)
)
