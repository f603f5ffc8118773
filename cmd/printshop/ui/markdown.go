package ui

import (
	"strings"

	"printshop/internal/logging"
	"printshop/internal/model"

	"github.com/charmbracelet/glamour"
)

// RenderAnalysis renders the AI feedback block as terminal markdown. It falls
// back to the raw markdown if the renderer cannot be built.
func RenderAnalysis(a *model.Analysis, theme Theme, width int) string {
	md := a.Markdown()
	if md == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}
	style := "light"
	if theme.IsDark {
		style = "dark"
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		logging.Get(logging.CategoryUI).Warn("glamour renderer unavailable: %v", err)
		return md
	}
	out, err := renderer.Render(md)
	if err != nil {
		logging.Get(logging.CategoryUI).Warn("markdown render failed: %v", err)
		return md
	}
	return strings.TrimRight(out, "\n") + "\n"
}
