package update

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/Ausmalbar/internal/eventbus"
	"github.com/Rorical/Ausmalbar/internal/models"
)

// MaxMessages bounds the activity log kept by the UI.
const MaxMessages = 200

// HandleKeyMsgWithEventBus handles keyboard input using event bus
func HandleKeyMsgWithEventBus(appModel *models.AppModel, keyMsg tea.KeyMsg, eb *eventbus.EventBus, ready bool) tea.Cmd {
	if keyMsg.String() == "ctrl+c" {
		return tea.Quit
	}
	if appModel.PendingConfirmation != nil {
		handleConfirmationKey(appModel, keyMsg, eb)
		return nil
	}
	if appModel.Editing {
		handleEditorKey(appModel, keyMsg, eb)
		return nil
	}

	switch keyMsg.String() {
	case "q":
		return tea.Quit
	case "g", "enter":
		sendIntent(appModel, eb, ready, models.Submit)
	case "r":
		sendIntent(appModel, eb, ready, models.Regenerate)
	case "c":
		sendIntent(appModel, eb, ready, models.Confirm)
	case "x":
		sendIntent(appModel, eb, ready, models.Reject)
	case "e":
		appModel.Editing = true
		appModel.Input = appModel.Preview.Prompt
		appModel.Status = "Editing prompt (enter to apply, esc to cancel)"
	case "s":
		next, ok := NextSystemPrompt(appModel.Preview)
		if !ok {
			appModel.Status = "This page has no system prompts"
			return nil
		}
		send(appModel, eb, eventbus.SelectSystemPromptEvent{Value: next.Value})
	case "l":
		send(appModel, eb, eventbus.ReloadEvent{})
	}
	return nil
}

func handleConfirmationKey(appModel *models.AppModel, keyMsg tea.KeyMsg, eb *eventbus.EventBus) {
	var approved bool
	switch keyMsg.String() {
	case "y", "Y":
		approved = true
	case "n", "N", "esc":
		approved = false
	default:
		return
	}
	id := appModel.PendingConfirmation.ID
	appModel.PendingConfirmation = nil
	send(appModel, eb, eventbus.ConfirmationResponseEvent{ID: id, Approved: approved})
}

func handleEditorKey(appModel *models.AppModel, keyMsg tea.KeyMsg, eb *eventbus.EventBus) {
	switch keyMsg.Type {
	case tea.KeyEnter:
		appModel.Editing = false
		send(appModel, eb, eventbus.EditPromptEvent{Prompt: appModel.Input})
		appModel.Input = ""
	case tea.KeyEsc:
		appModel.Editing = false
		appModel.Input = ""
		appModel.Status = "Ready"
	case tea.KeyBackspace:
		if runes := []rune(appModel.Input); len(runes) > 0 {
			appModel.Input = string(runes[:len(runes)-1])
		}
	case tea.KeySpace:
		appModel.Input += " "
	case tea.KeyRunes:
		appModel.Input += string(keyMsg.Runes)
	}
}

func sendIntent(appModel *models.AppModel, eb *eventbus.EventBus, ready bool, intent models.Intent) {
	if !ready {
		appModel.Status = "Profile not configured"
		return
	}
	send(appModel, eb, eventbus.PerformIntentEvent{Intent: intent})
}

func send(appModel *models.AppModel, eb *eventbus.EventBus, event eventbus.UIEvent) {
	if err := eb.SendToCore(event); err != nil {
		appModel.Status = "Error sending event: " + err.Error()
	}
}

// NextSystemPrompt returns the option after the selected one, wrapping around.
func NextSystemPrompt(preview models.Preview) (models.Option, bool) {
	options := preview.SystemPrompts
	if len(options) == 0 {
		return models.Option{}, false
	}
	for i, opt := range options {
		if opt.Value == preview.SystemPrompt {
			return options[(i+1)%len(options)], true
		}
	}
	return options[0], true
}

// CoreEventMsg wraps core events for Bubble Tea
type CoreEventMsg struct {
	Event eventbus.CoreEvent
}

// HandleCoreEvent processes events from the core
func HandleCoreEvent(appModel *models.AppModel, coreEventMsg CoreEventMsg) tea.Cmd {
	switch event := coreEventMsg.Event.(type) {
	case eventbus.StateUpdateEvent:
		// Core sends only the notices the UI has not seen yet
		appModel.Messages = append(appModel.Messages, event.Messages...)
		if len(appModel.Messages) > MaxMessages {
			appModel.Messages = appModel.Messages[len(appModel.Messages)-MaxMessages:]
		}
		appModel.Loading = event.IsProcessing

		if appModel.Editing {
			break
		}
		if event.Error != nil {
			appModel.Status = "Error: " + event.Error.Error()
		} else if event.IsProcessing {
			appModel.Status = "Processing"
		} else {
			appModel.Status = "Ready"
		}
	case eventbus.ProgressEvent:
		appModel.Progress = event.State
	case eventbus.PageEvent:
		appModel.Preview = event.Preview
	case eventbus.ConfirmationRequestEvent:
		appModel.PendingConfirmation = &models.ConfirmationRequest{
			ID:       event.ID,
			Question: event.Question,
		}
	}

	return nil
}

type TickMsg time.Time

func TickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func HandleWindowSizeMsg(appModel *models.AppModel, sizeMsg tea.WindowSizeMsg) {
	appModel.Width = sizeMsg.Width
	appModel.Height = sizeMsg.Height
}

func HandleTickMsg(appModel *models.AppModel) tea.Cmd {
	// Only handle UI animations - loading dots
	if appModel.Loading {
		appModel.LoadingDots = (appModel.LoadingDots + 1) % 4
	}
	return TickCmd()
}
