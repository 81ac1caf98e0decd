package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/koralabs/kora/internal/config"
	"github.com/koralabs/kora/internal/eventbus"
	"github.com/koralabs/kora/internal/models"
)

// scriptedProvider replays canned responses and records the message
// history it was called with.
type scriptedProvider struct {
	calls     [][]openai.ChatCompletionMessage
	responses []openai.ChatCompletionResponse
	errs      []error
}

func (s *scriptedProvider) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	i := len(s.calls)
	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	copy(messages, req.Messages)
	s.calls = append(s.calls, messages)

	if i < len(s.errs) && s.errs[i] != nil {
		return openai.ChatCompletionResponse{}, s.errs[i]
	}
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return textResponse("done"), nil
}

func textResponse(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: content,
			},
		}},
	}
}

func toolCallResponse(callID, name, arguments string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				Role: openai.ChatMessageRoleAssistant,
				ToolCalls: []openai.ToolCall{{
					ID:   callID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      name,
						Arguments: arguments,
					},
				}},
			},
		}},
	}
}

func newTestService(t *testing.T, provider chatCompleter) *ChatService {
	t.Helper()
	t.Setenv("KORA_HOME", t.TempDir())
	t.Setenv("MODEL", "")
	t.Setenv("API_KEY", "")
	t.Setenv("API_BASE", "")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	service, err := NewChatService(cfg, eventbus.NewEventBus(), zap.NewNop())
	require.NoError(t, err)
	if provider != nil {
		service.client = provider
	}
	return service
}

func TestPlainTextResponseEndsTurn(t *testing.T) {
	provider := &scriptedProvider{responses: []openai.ChatCompletionResponse{
		textResponse("hello there"),
	}}
	service := newTestService(t, provider)

	service.state.StartProcessingWithUserMessage("hi")
	service.runTurn()

	assert.Len(t, provider.calls, 1, "no tool call means exactly one provider call")
	assert.False(t, service.state.IsProcessing())

	history := service.state.GetChatHistory()
	require.Len(t, history, 2)
	assert.Equal(t, "hello there", history[1].Content)
}

func TestToolCallTriggersFollowUpProviderCall(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n"), 0644))

	provider := &scriptedProvider{responses: []openai.ChatCompletionResponse{
		toolCallResponse("call_1", "read_file", fmt.Sprintf(`{"path": %q}`, path)),
		textResponse("that file is a Go entry point"),
	}}
	service := newTestService(t, provider)

	service.state.StartProcessingWithUserMessage("show me main.go")
	service.runTurn()

	require.Len(t, provider.calls, 2, "one tool call means exactly one follow-up provider call")

	// The second call's history must include the tool result.
	second := provider.calls[1]
	var foundResult bool
	for _, msg := range second {
		if msg.Role == openai.ChatMessageRoleTool && msg.ToolCallID == "call_1" {
			foundResult = true
			assert.Contains(t, msg.Content, "package main")
		}
	}
	assert.True(t, foundResult, "follow-up history must contain the tool result")
	assert.False(t, service.state.IsProcessing())
}

func TestUnknownToolProducesErrorResultAndContinues(t *testing.T) {
	provider := &scriptedProvider{responses: []openai.ChatCompletionResponse{
		toolCallResponse("call_9", "format_disk", `{}`),
		textResponse("sorry about that"),
	}}
	service := newTestService(t, provider)

	service.state.StartProcessingWithUserMessage("go wild")
	service.runTurn()

	require.Len(t, provider.calls, 2)
	second := provider.calls[1]
	last := second[len(second)-1]
	assert.Equal(t, openai.ChatMessageRoleTool, last.Role)
	assert.Contains(t, last.Content, "tool not found")
	assert.False(t, service.state.IsProcessing())
	assert.NoError(t, service.state.GetLastError())
}

func TestProviderErrorSurfacesWithoutCrash(t *testing.T) {
	provider := &scriptedProvider{errs: []error{errors.New("connection refused")}}
	service := newTestService(t, provider)

	service.state.StartProcessingWithUserMessage("hi")
	service.runTurn()

	assert.False(t, service.state.IsProcessing())
	err := service.state.GetLastError()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider error")
}

func TestToolLoopStopsAtDepthCap(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	// Provider asks for the same tool forever.
	var responses []openai.ChatCompletionResponse
	for i := 0; i < 20; i++ {
		responses = append(responses, toolCallResponse(
			fmt.Sprintf("call_%d", i), "read_file", fmt.Sprintf(`{"path": %q}`, path)))
	}
	provider := &scriptedProvider{responses: responses}
	service := newTestService(t, provider)

	service.state.StartProcessingWithUserMessage("loop")
	service.runTurn()

	assert.Len(t, provider.calls, service.state.maxRecursionDepth)
	require.Error(t, service.state.GetLastError())
	assert.Contains(t, service.state.GetLastError().Error(), "maximum tool call depth")
}

func TestUnconfiguredProviderReturnsError(t *testing.T) {
	service := newTestService(t, nil)
	service.client = nil

	service.state.StartProcessingWithUserMessage("hi")
	service.runTurn()

	require.Error(t, service.state.GetLastError())
	assert.Contains(t, service.state.GetLastError().Error(), "provider not configured")
}

// drainUIMessages collects every message pushed to the UI so far.
func drainUIMessages(eb *eventbus.EventBus) []models.Message {
	var collected []models.Message
	for {
		select {
		case event := <-eb.CoreToUI():
			if update, ok := event.(eventbus.StateUpdateEvent); ok {
				collected = append(collected, update.Messages...)
			}
		default:
			return collected
		}
	}
}

func TestMidTurnInputDeliversNoticeWithoutDuplicates(t *testing.T) {
	provider := &scriptedProvider{responses: []openai.ChatCompletionResponse{
		textResponse("working"),
	}}
	service := newTestService(t, provider)

	// A turn is in flight; the UI has already been sent everything so far.
	service.state.StartProcessingWithUserMessage("hi")
	service.pushStateToUI()
	already := drainUIMessages(service.eventBus)
	require.NotEmpty(t, already)

	// A second input while processing only emits the busy notice.
	service.processMessage("second question")

	delivered := drainUIMessages(service.eventBus)
	require.Len(t, delivered, 1, "only the notice is new; nothing already delivered is re-sent")
	assert.Equal(t, models.Program, delivered[0].Type)
	assert.Contains(t, delivered[0].Content, "Still working")
}

// blockingProvider parks inside the provider call until the service
// context is cancelled.
type blockingProvider struct {
	started chan struct{}
}

func (b *blockingProvider) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	close(b.started)
	<-ctx.Done()
	return openai.ChatCompletionResponse{}, ctx.Err()
}

func TestStopWaitsForInFlightTurn(t *testing.T) {
	provider := &blockingProvider{started: make(chan struct{})}
	service := newTestService(t, provider)
	service.Start()

	service.processMessage("hi")
	<-provider.started

	// Stop must cancel the turn and not return until it has finished;
	// afterwards no goroutine is left to send on the bus.
	service.Stop()

	assert.False(t, service.state.IsProcessing())
	require.Error(t, service.state.GetLastError())
}

func TestMalformedToolArgumentsReported(t *testing.T) {
	provider := &scriptedProvider{responses: []openai.ChatCompletionResponse{
		toolCallResponse("call_1", "read_file", `{not json`),
		textResponse("ok"),
	}}
	service := newTestService(t, provider)

	service.state.StartProcessingWithUserMessage("hi")
	service.runTurn()

	require.Len(t, provider.calls, 2)
	second := provider.calls[1]
	last := second[len(second)-1]
	assert.Equal(t, openai.ChatMessageRoleTool, last.Role)
	assert.Contains(t, last.Content, "Error parsing arguments")
}
