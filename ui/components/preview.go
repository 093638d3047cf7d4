package components

import (
	"strings"

	"github.com/Rorical/Ausmalbar/internal/models"
	"github.com/Rorical/Ausmalbar/ui/styles"
)

// RenderPreview shows the page the core has open.
func RenderPreview(preview models.Preview, width int) string {
	if preview.URL == "" {
		return styles.PanelStyle(width).Render("Loading page...")
	}

	label := styles.LabelStyle()
	value := styles.ValueStyle()
	row := func(name, v string) string {
		if v == "" {
			v = "-"
		}
		return label.Render(name) + value.Render(v)
	}

	var lines []string
	switch preview.Kind {
	case "confirm":
		lines = append(lines, styles.HeaderStyle().Render("Confirm coloring page"))
		lines = append(lines,
			row("Title (EN)", preview.TitleEN),
			row("Description (EN)", preview.DescriptionEN),
			row("Title (DE)", preview.TitleDE),
			row("Description (DE)", preview.DescriptionDE),
			row("Image", preview.ThumbRef),
		)
	case "generate":
		lines = append(lines, styles.HeaderStyle().Render("Generate coloring page"))
	default:
		lines = append(lines, styles.HeaderStyle().Render(preview.URL))
	}

	if preview.Kind != "other" {
		lines = append(lines,
			row("Prompt", preview.Prompt),
			row("System prompt", systemPromptLabel(preview)),
		)
	}

	return styles.PanelStyle(width).Render(strings.Join(lines, "\n"))
}

func systemPromptLabel(preview models.Preview) string {
	for _, opt := range preview.SystemPrompts {
		if opt.Value == preview.SystemPrompt {
			return opt.Label
		}
	}
	return preview.SystemPrompt
}

// RenderConfirmation shows a pending yes/no question.
func RenderConfirmation(req *models.ConfirmationRequest, width int) string {
	if req == nil {
		return ""
	}
	return styles.DialogStyle(width).Render(req.Question + "\n\n[y] yes   [n] no")
}
