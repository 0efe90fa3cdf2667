package components

import (
	"github.com/marcoskids/marcos/internal/ui/theme"
)

// ContentWidth clamps a terminal width to the width used for all cards.
func ContentWidth(termWidth int) int {
	w := termWidth - 4
	if w > 72 {
		w = 72
	}
	if w < 32 {
		w = 32
	}
	return w
}

// Card wraps content in a rounded-border card at the given content width.
func Card(content string, cw int) string {
	return theme.Card.
		Width(cw).
		Render(content)
}

// Heading renders a card title with an optional dim subtitle.
func Heading(title, subtitle string) string {
	out := theme.Title.Render(title)
	if subtitle != "" {
		out += "\n" + theme.Subtitle.Render(subtitle)
	}
	return out
}
