package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// RenderMarkdown renders markdown for terminal display. Dependency
// messages (license terms, citation requests) are markdown; rendering
// failures fall back to the raw text since the message must always
// reach the user.
func RenderMarkdown(text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	style := glamour.WithAutoStyle()
	if termenv.ColorProfile() == termenv.Ascii {
		style = glamour.WithStandardStyle("notty")
	}

	renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(80))
	if err != nil {
		return text
	}
	rendered, err := renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(rendered, "\n") + "\n"
}
