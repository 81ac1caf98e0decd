package eventbus

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendToCoreDelivers(t *testing.T) {
	eb := NewEventBus()

	require.NoError(t, eb.SendToCore(SendMessageEvent{Message: "hi"}))

	select {
	case event := <-eb.UIToCore():
		msg, ok := event.(SendMessageEvent)
		require.True(t, ok)
		assert.Equal(t, "hi", msg.Message)
	default:
		t.Fatal("expected a buffered event")
	}
}

func TestSendToUIChannelFull(t *testing.T) {
	eb := NewEventBus()

	for i := 0; i < 100; i++ {
		require.NoError(t, eb.SendToUI(StateUpdateEvent{}))
	}
	assert.Error(t, eb.SendToUI(StateUpdateEvent{}))
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Minute)
	assert.False(t, cb.IsOpen())

	cb.RecordFailure()
	cb.RecordFailure()
	assert.False(t, cb.IsOpen())

	cb.RecordFailure()
	assert.True(t, cb.IsOpen())

	cb.RecordSuccess()
	assert.False(t, cb.IsOpen())
}

func TestCircuitBreakerHalfOpenAfterTimeout(t *testing.T) {
	cb := NewCircuitBreaker(1, 10*time.Millisecond)
	cb.RecordFailure()
	assert.True(t, cb.IsOpen())

	time.Sleep(20 * time.Millisecond)
	assert.False(t, cb.IsOpen())
	assert.Equal(t, CircuitHalfOpen, cb.State())
}

// Both directions of the bus run on different goroutines in the real
// program (the Bubble Tea update loop and the core turn goroutine), so
// the shared breaker must be safe under the race detector.
func TestBusConcurrentBothDirections(t *testing.T) {
	eb := NewEventBus()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			_ = eb.SendToCore(SendMessageEvent{Message: "x"})
			select {
			case <-eb.UIToCore():
			default:
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			_ = eb.SendToUI(StateUpdateEvent{})
			select {
			case <-eb.CoreToUI():
			default:
			}
			_ = eb.GetCircuitBreakerState()
		}
	}()
	wg.Wait()
}
