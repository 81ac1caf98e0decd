package update

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koralabs/kora/internal/dispatcher"
	"github.com/koralabs/kora/internal/eventbus"
	"github.com/koralabs/kora/internal/models"
)

func keyMsg(s string) tea.KeyMsg {
	if s == "enter" {
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestEnterSendsMessageAndClearsInput(t *testing.T) {
	eb := eventbus.NewEventBus()

	appModel := &models.AppModel{Input: "  hello  "}
	HandleKeyMsgWithEventBus(appModel, keyMsg("enter"), eb, true)

	assert.Empty(t, appModel.Input)

	select {
	case event := <-eb.UIToCore():
		msg, ok := event.(eventbus.SendMessageEvent)
		require.True(t, ok)
		assert.Equal(t, "hello", msg.Message)
	default:
		t.Fatal("expected a SendMessageEvent on the bus")
	}
}

func TestEnterWhenServiceNotReady(t *testing.T) {
	eb := eventbus.NewEventBus()

	appModel := &models.AppModel{Input: "hello"}
	HandleKeyMsgWithEventBus(appModel, keyMsg("enter"), eb, false)

	assert.Empty(t, appModel.Input)
	assert.Equal(t, "Chat service not available", appModel.Status)

	select {
	case <-eb.UIToCore():
		t.Fatal("no event should be sent when the service is not ready")
	default:
	}
}

func TestStateUpdateAppendsMessages(t *testing.T) {
	appModel := &models.AppModel{
		Messages: []models.Message{{Content: "old", Type: models.Program}},
	}

	HandleCoreEvent(appModel, dispatcher.CoreEventMsg{Event: eventbus.StateUpdateEvent{
		Messages:     []models.Message{{Content: "new", Type: models.Assistant}},
		IsProcessing: true,
	}})

	require.Len(t, appModel.Messages, 2)
	assert.Equal(t, "old", appModel.Messages[0].Content)
	assert.Equal(t, "new", appModel.Messages[1].Content)
	assert.True(t, appModel.Loading)
	assert.Equal(t, "Processing", appModel.Status)
}

func TestConfirmationRequestCapturesKeyboard(t *testing.T) {
	eb := eventbus.NewEventBus()

	appModel := &models.AppModel{}
	HandleCoreEvent(appModel, dispatcher.CoreEventMsg{Event: eventbus.ConfirmationRequestEvent{
		ID:        "conf-1",
		Operation: "Overwrite file",
		Detail:    "main.go",
		Dangerous: true,
	}})
	require.NotNil(t, appModel.PendingConfirmation)

	// Typing while a confirmation is pending does not edit the input.
	HandleKeyMsgWithEventBus(appModel, keyMsg("x"), eb, true)
	assert.Empty(t, appModel.Input)
	require.NotNil(t, appModel.PendingConfirmation)

	// 'y' answers and clears the pending request.
	HandleKeyMsgWithEventBus(appModel, keyMsg("y"), eb, true)
	assert.Nil(t, appModel.PendingConfirmation)

	select {
	case event := <-eb.UIToCore():
		resp, ok := event.(eventbus.ConfirmationResponseEvent)
		require.True(t, ok)
		assert.Equal(t, "conf-1", resp.ID)
		assert.True(t, resp.Approved)
	default:
		t.Fatal("expected a ConfirmationResponseEvent on the bus")
	}
}

func TestConfirmationDenied(t *testing.T) {
	eb := eventbus.NewEventBus()

	appModel := &models.AppModel{
		PendingConfirmation: &models.ConfirmationRequest{ID: "conf-2"},
	}
	HandleKeyMsgWithEventBus(appModel, keyMsg("n"), eb, true)
	assert.Nil(t, appModel.PendingConfirmation)

	event := <-eb.UIToCore()
	resp := event.(eventbus.ConfirmationResponseEvent)
	assert.False(t, resp.Approved)
}
