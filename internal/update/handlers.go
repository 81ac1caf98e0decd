package update

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/koralabs/kora/internal/dispatcher"
	"github.com/koralabs/kora/internal/eventbus"
	"github.com/koralabs/kora/internal/models"
)

// HandleKeyMsgWithEventBus handles keyboard input using event bus
func HandleKeyMsgWithEventBus(appModel *models.AppModel, keyMsg tea.KeyMsg, eb *eventbus.EventBus, chatReady bool) tea.Cmd {
	// A pending confirmation captures the keyboard until answered.
	if appModel.PendingConfirmation != nil {
		return handleConfirmationKey(appModel, keyMsg, eb)
	}

	switch keyMsg.String() {
	case "ctrl+c":
		return tea.Quit
	case "enter":
		if strings.TrimSpace(appModel.Input) != "" && chatReady {
			if err := eb.SendToCore(eventbus.SendMessageEvent{Message: strings.TrimSpace(appModel.Input)}); err != nil {
				appModel.Status = "Error sending message: " + err.Error()
				return nil
			}

			// Only manage local UI state - clear input
			appModel.Input = ""
			return nil
		} else if strings.TrimSpace(appModel.Input) != "" {
			appModel.Input = ""
			appModel.Status = "Chat service not available"
		}
	case "backspace":
		if len(appModel.Input) > 0 {
			appModel.Input = appModel.Input[:len(appModel.Input)-1]
		}
	case " ":
		appModel.Input += " "
	default:
		if len(keyMsg.String()) == 1 {
			appModel.Input += keyMsg.String()
		}
	}
	return nil
}

// handleConfirmationKey answers a pending write-tool confirmation
func handleConfirmationKey(appModel *models.AppModel, keyMsg tea.KeyMsg, eb *eventbus.EventBus) tea.Cmd {
	var approved bool
	switch keyMsg.String() {
	case "y", "Y":
		approved = true
	case "n", "N", "esc":
		approved = false
	case "ctrl+c":
		return tea.Quit
	default:
		return nil
	}

	response := eventbus.ConfirmationResponseEvent{
		ID:       appModel.PendingConfirmation.ID,
		Approved: approved,
	}
	if err := eb.SendToCore(response); err != nil {
		appModel.Status = "Error sending confirmation: " + err.Error()
		return nil
	}

	appModel.PendingConfirmation = nil
	if approved {
		appModel.Status = "Approved"
	} else {
		appModel.Status = "Aborted"
	}
	return nil
}

// HandleCoreEvent processes events from the core
func HandleCoreEvent(appModel *models.AppModel, coreEventMsg dispatcher.CoreEventMsg) tea.Cmd {
	switch event := coreEventMsg.Event.(type) {
	case eventbus.StateUpdateEvent:
		// Core only sends new messages; append them to what we have.
		appModel.Messages = append(appModel.Messages, event.Messages...)
		appModel.Loading = event.IsProcessing

		if event.Error != nil {
			appModel.Status = "Error: " + event.Error.Error()
		} else if event.IsProcessing {
			appModel.Status = "Processing"
		} else {
			appModel.Status = "Ready"
		}
	case eventbus.ConfirmationRequestEvent:
		appModel.PendingConfirmation = &models.ConfirmationRequest{
			ID:        event.ID,
			Operation: event.Operation,
			Detail:    event.Detail,
			Dangerous: event.Dangerous,
		}
		appModel.Status = "Awaiting confirmation (y/n)"
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
