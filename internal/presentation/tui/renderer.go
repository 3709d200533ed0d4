package tui

import (
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders assistant markdown for the
// terminal. Rendering failures fall back to the raw text so a styling issue
// never hides a reply.
func NewRenderer() func(string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)

	return func(markdown string) string {
		if err != nil || r == nil {
			return markdown
		}
		out, renderErr := r.Render(markdown)
		if renderErr != nil {
			return markdown
		}
		return out
	}
}
