package app

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/Ausmalbar/internal/update"
	"github.com/Rorical/Ausmalbar/ui/components"
)

const defaultWidth = 80

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(
		update.TickCmd(),
		m.dispatcher.ListenForUIEvents(),
	)
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle core events and continue listening
	if coreEvent, ok := msg.(update.CoreEventMsg); ok {
		cmd := update.HandleCoreEvent(&m.appModel, coreEvent)
		return m, tea.Batch(cmd, m.dispatcher.ListenForUIEvents())
	}

	// Handle other events through the event bus
	eventBus := m.dispatcher.GetEventBus()
	cmd := update.HandleUpdateWithEventBus(&m.appModel, msg, eventBus, m.ready)

	return m, cmd
}

func (m *AppModel) View() string {
	width := m.appModel.Width
	if width <= 0 {
		width = defaultWidth
	}

	var b strings.Builder

	b.WriteString(components.RenderPreview(m.appModel.Preview, width))
	b.WriteString("\n")
	if progress := components.RenderProgress(m.appModel.Progress); progress != "" {
		b.WriteString(progress)
		b.WriteString("\n")
	}
	if dialog := components.RenderConfirmation(m.appModel.PendingConfirmation, width); dialog != "" {
		b.WriteString(dialog)
		b.WriteString("\n")
	}
	b.WriteString(components.RenderMessages(m.appModel.Messages, m.logLines()))
	b.WriteString(components.RenderInput(m.appModel.Input, m.appModel.Editing, width))
	b.WriteString("\n")
	b.WriteString(components.RenderStatus(m.appModel.Status, m.appModel.Loading, m.appModel.LoadingDots, width))

	return b.String()
}

// logLines is how many activity log lines fit under the preview.
func (m *AppModel) logLines() int {
	if m.appModel.Height <= 0 {
		return 10
	}
	n := m.appModel.Height - 22
	if n < 3 {
		n = 3
	}
	return n
}
