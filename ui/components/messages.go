package components

import (
	"strings"

	"github.com/Rorical/Ausmalbar/internal/models"
	"github.com/Rorical/Ausmalbar/ui/styles"
)

// RenderMessages renders the last limit lines of the activity log.
func RenderMessages(messages []models.Message, limit int) string {
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}

	var b strings.Builder

	programStyle := styles.ProgramStyle()
	infoStyle := styles.InfoStyle()
	errorStyle := styles.ErrorStyle()
	navigationStyle := styles.NavigationStyle()

	for _, msg := range messages {
		switch msg.Type {
		case models.Program:
			b.WriteString(programStyle.Render(msg.Content) + "\n")
		case models.Info:
			b.WriteString(infoStyle.Render(stamp(msg)+msg.Content) + "\n")
		case models.Error:
			b.WriteString(errorStyle.Render(stamp(msg)+msg.Content) + "\n")
		case models.Navigation:
			b.WriteString(navigationStyle.Render(msg.Content) + "\n")
		}
	}

	return b.String()
}

func stamp(msg models.Message) string {
	if msg.At.IsZero() {
		return ""
	}
	return msg.At.Format("15:04:05") + " "
}
