package app

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/koralabs/kora/internal/dispatcher"
	"github.com/koralabs/kora/internal/models"
	"github.com/koralabs/kora/internal/update"
	"github.com/koralabs/kora/ui/components"
)

type AppModel struct {
	appModel   models.AppModel
	dispatcher *dispatcher.EventDispatcher
}

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(
		update.TickCmd(),
		m.dispatcher.ListenForUIEvents(),
	)
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle core events and keep listening for the next one
	if coreEvent, ok := msg.(dispatcher.CoreEventMsg); ok {
		cmd := update.HandleCoreEvent(&m.appModel, coreEvent)
		return m, tea.Batch(cmd, m.dispatcher.ListenForUIEvents())
	}

	eventBus := m.dispatcher.GetEventBus()
	chatReady := m.appModel.ChatServiceReady
	cmd := update.HandleUpdateWithEventBus(&m.appModel, msg, eventBus, chatReady)

	return m, cmd
}

func (m *AppModel) View() string {
	var b strings.Builder

	b.WriteString(components.RenderMessages(m.appModel.Messages))
	if m.appModel.PendingConfirmation != nil {
		b.WriteString(components.RenderConfirmation(m.appModel.PendingConfirmation))
		b.WriteString("\n")
	}
	b.WriteString(components.RenderInput(m.appModel.Input, m.appModel.Width))
	b.WriteString("\n")
	b.WriteString(components.RenderStatus(m.appModel.Status, m.appModel.Loading, m.appModel.LoadingDots, m.appModel.Width))

	return b.String()
}
