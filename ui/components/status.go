package components

import (
	"fmt"
	"strings"

	"github.com/Rorical/Ausmalbar/internal/models"
	"github.com/Rorical/Ausmalbar/ui/styles"
)

const barWidth = 30

func RenderStatus(status string, loading bool, loadingDots int, width int) string {
	statusStyle := styles.StatusStyle(width)

	statusContent := status
	if loading {
		statusContent += strings.Repeat(".", loadingDots)
	}

	return statusStyle.Render(statusContent)
}

// RenderProgress renders the operation indicator: a bar with the phase
// message while informing, the message alone once it failed, nothing when
// hidden.
func RenderProgress(state models.ProgressState) string {
	if !state.Visible {
		return ""
	}
	if state.Phase == models.PhaseError {
		return styles.ErrorTextStyle().Render("✗ " + state.Message)
	}

	filled, empty := ProgressBar(state.Percent, barWidth)
	done := state.Percent >= 100
	return styles.ProgressFillStyle(done).Render(filled) +
		styles.ProgressEmptyStyle().Render(empty) +
		styles.ProgressTextStyle().Render(fmt.Sprintf("%3d%% %s", state.Percent, state.Message))
}

// ProgressBar splits a bar of the given width into its filled and empty parts.
func ProgressBar(percent, width int) (string, string) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	n := percent * width / 100
	return strings.Repeat("█", n), strings.Repeat("░", width-n)
}
