package dispatcher

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/koralabs/kora/internal/eventbus"
)

// CoreEventMsg wraps a core event so Bubble Tea can route it through Update.
type CoreEventMsg struct {
	Event eventbus.CoreEvent
}

// EventDispatcher bridges the event bus core→UI channel into Bubble Tea messages
type EventDispatcher struct {
	eventBus *eventbus.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewEventDispatcher(eventBus *eventbus.EventBus) *EventDispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &EventDispatcher{
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// ListenForUIEvents returns a command that blocks on the next core event.
// The model re-issues it after every delivery to keep the stream alive.
func (ed *EventDispatcher) ListenForUIEvents() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-ed.ctx.Done():
			return nil
		case event, ok := <-ed.eventBus.CoreToUI():
			if !ok {
				return nil
			}
			return CoreEventMsg{Event: event}
		}
	}
}

func (ed *EventDispatcher) Stop() {
	ed.cancel()
}

func (ed *EventDispatcher) GetEventBus() *eventbus.EventBus {
	return ed.eventBus
}
