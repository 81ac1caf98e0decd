package core

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/koralabs/kora/internal/config"
	"github.com/koralabs/kora/internal/eventbus"
	"github.com/koralabs/kora/internal/models"
	"github.com/koralabs/kora/internal/tools"
)

// chatCompleter is the provider boundary: the subset of the OpenAI client
// the service needs. *openai.Client satisfies it; tests substitute a fake.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ChatService owns the conversation loop: it forwards user turns to the
// provider and dispatches requested tool calls until the provider answers
// with plain text.
type ChatService struct {
	client          chatCompleter
	config          *config.Config
	state           *ChatState
	eventBus        *eventbus.EventBus
	toolRegistry    *tools.Registry
	logger          *zap.Logger
	ctx             context.Context
	cancel          context.CancelFunc
	wg              sync.WaitGroup       // Tracks the event loop and in-flight turns
	pushMutex       sync.Mutex           // Serializes UI pushes across goroutines
	lastSentCount   int                  // Track how many messages we've sent to UI
	pendingConfirms map[string]chan bool // Track pending confirmations
	confirmMutex    sync.RWMutex         // Protect pendingConfirms map
}

// NewChatService creates a ChatService regardless of config validity.
// This ensures we always have a service to manage state.
func NewChatService(cfg *config.Config, eb *eventbus.EventBus, logger *zap.Logger) (*ChatService, error) {
	var client chatCompleter

	// Only create the provider client if config is valid
	if cfg.IsValid() {
		clientConfig := openai.DefaultConfig(cfg.GetAPIKey())
		if cfg.GetBaseURL() != "" {
			clientConfig.BaseURL = cfg.GetBaseURL()
		}
		client = openai.NewClientWithConfig(clientConfig)
	}

	state := NewChatState()
	ctx, cancel := context.WithCancel(context.Background())

	toolRegistry := tools.NewRegistry()
	tools.RegisterBuiltinTools(toolRegistry)

	service := &ChatService{
		client:          client, // May be nil if config invalid
		config:          cfg,
		state:           state,
		eventBus:        eb,
		toolRegistry:    toolRegistry,
		logger:          logger,
		ctx:             ctx,
		cancel:          cancel,
		pendingConfirms: make(map[string]chan bool),
		lastSentCount:   0,
	}

	// The service brokers user confirmations for write tools
	toolRegistry.SetConfirmator(service)

	service.addWelcomeMessages(cfg)

	return service, nil
}

// Start runs the core logic in a goroutine
func (cs *ChatService) Start() {
	cs.pushStateToUI()
	cs.wg.Add(1)
	go func() {
		defer cs.wg.Done()
		cs.eventLoop()
	}()
}

// Stop cancels the service context and waits for the event loop and any
// in-flight turn to finish, so nothing sends on the bus after shutdown.
func (cs *ChatService) Stop() {
	cs.cancel()
	cs.wg.Wait()
}

func (cs *ChatService) eventLoop() {
	for {
		select {
		case <-cs.ctx.Done():
			return
		case event, ok := <-cs.eventBus.UIToCore():
			if !ok {
				return
			}
			cs.handleUIEvent(event)
		}
	}
}

func (cs *ChatService) handleUIEvent(event eventbus.UIEvent) {
	switch e := event.(type) {
	case eventbus.SendMessageEvent:
		cs.processMessage(e.Message)
	case eventbus.ConfirmationResponseEvent:
		cs.handleConfirmationResponse(e)
	}
}

func (cs *ChatService) processMessage(userMessage string) {
	// One turn at a time: exactly one outstanding provider call
	if cs.state.IsProcessing() {
		cs.state.AddProgramMessage("Still working on the previous message...")
		cs.pushStateToUI()
		return
	}

	cs.state.StartProcessingWithUserMessage(userMessage)
	cs.pushStateToUI()

	// The turn runs on its own goroutine so the event loop stays free
	// to deliver confirmation responses while a tool waits on one.
	cs.wg.Add(1)
	go func() {
		defer cs.wg.Done()
		cs.runTurn()
	}()
}

// runTurn drives one user turn: provider call, tool dispatch, repeat,
// until the provider responds with plain text or the round cap is hit.
func (cs *ChatService) runTurn() {
	if cs.client == nil {
		cs.state.FinishProcessingWithError(fmt.Errorf("provider not configured: add a profile or set API_KEY"))
		cs.pushStateToUI()
		return
	}

	for {
		if !cs.state.CanRecurse() {
			cs.state.FinishProcessingWithError(fmt.Errorf("maximum tool call depth reached for this turn"))
			cs.pushStateToUI()
			return
		}
		cs.state.IncrementRecursion()

		req := openai.ChatCompletionRequest{
			Model:    cs.config.GetModel(),
			Messages: cs.state.GetChatHistoryWithSystemPrompt(),
			Tools:    cs.getToolsSpec(),
		}

		cs.logger.Debug("provider request",
			zap.String("model", req.Model),
			zap.Int("messages", len(req.Messages)))

		resp, err := cs.client.CreateChatCompletion(cs.ctx, req)
		if err != nil {
			cs.logger.Error("provider call failed", zap.Error(err))
			cs.state.FinishProcessingWithError(fmt.Errorf("provider error: %w", err))
			cs.pushStateToUI()
			return
		}

		if len(resp.Choices) == 0 {
			cs.state.FinishProcessing()
			cs.pushStateToUI()
			return
		}

		message := resp.Choices[0].Message
		if message.Content != "" || len(message.ToolCalls) > 0 {
			cs.state.AddAssistantMessageWithToolCalls(message.Content, message.ToolCalls)
			cs.pushStateToUI()
		}

		if len(message.ToolCalls) == 0 {
			// Plain text response ends the turn
			cs.state.FinishProcessing()
			cs.pushStateToUI()
			return
		}

		cs.executeToolCalls(message.ToolCalls)
	}
}

// executeToolCalls dispatches the requested tool calls one at a time,
// in order, appending each result before the next provider call.
func (cs *ChatService) executeToolCalls(toolCalls []openai.ToolCall) {
	for _, call := range toolCalls {
		var args map[string]interface{}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			cs.logger.Warn("malformed tool arguments",
				zap.String("tool", call.Function.Name),
				zap.Error(err))
			cs.state.AddToolResultMessage(call.ID, call.Function.Name,
				fmt.Sprintf("Error parsing arguments: %v", err))
			cs.pushStateToUI()
			continue
		}

		result := cs.toolRegistry.Execute(cs.ctx, tools.ToolCall{
			ID:   call.ID,
			Name: call.Function.Name,
			Args: args,
		})

		var resultContent string
		if result.Error != "" {
			cs.logger.Warn("tool failed",
				zap.String("tool", call.Function.Name),
				zap.String("error", result.Error))
			resultContent = fmt.Sprintf("Error: %s", result.Error)
		} else {
			cs.logger.Info("tool executed", zap.String("tool", call.Function.Name))
			if resultBytes, err := json.MarshalIndent(result.Result, "", "  "); err == nil {
				resultContent = string(resultBytes)
			} else {
				resultContent = fmt.Sprintf("%v", result.Result)
			}
		}

		cs.state.AddToolResultMessage(call.ID, call.Function.Name, resultContent)
		cs.pushStateToUI()
	}
}

func (cs *ChatService) pushStateToUI() {
	cs.pushMutex.Lock()
	defer cs.pushMutex.Unlock()

	allMessages := cs.state.GetMessages()
	isProcessing := cs.state.IsProcessing()
	lastError := cs.state.GetLastError()

	// Only send new messages to reduce resource usage
	newMessages := allMessages[cs.lastSentCount:]
	cs.lastSentCount = len(allMessages)

	if err := cs.eventBus.SendToUI(eventbus.StateUpdateEvent{
		Messages:     newMessages, // Only new messages
		IsProcessing: isProcessing,
		Error:        lastError,
	}); err != nil {
		cs.logger.Warn("failed to push state to UI", zap.Error(err))
	}
}

func (cs *ChatService) IsReady() bool {
	return cs.config.IsValid() && cs.state.IsConversationReady()
}

// GetInitialMessages returns the initial messages for printing to terminal
func (cs *ChatService) GetInitialMessages() []models.Message {
	return cs.state.GetMessages()
}

func (cs *ChatService) addWelcomeMessages(cfg *config.Config) {
	cs.state.AddProgramMessage("-- KORA --")

	if cfg.IsValid() {
		cs.state.AddProgramMessage(fmt.Sprintf("Active Profile: %s [OK]", cfg.ActiveProfile))
		cs.state.AddProgramMessage("Ready to chat! Type your message and press Enter")
	} else {
		cs.state.AddProgramMessage(fmt.Sprintf("Active Profile: %s [NOT CONFIGURED]", cfg.ActiveProfile))
		cs.state.AddProgramMessage("Configure your profile to start chatting:")
		cs.state.AddProgramMessage("• Run: kora profile add <name>")
		cs.state.AddProgramMessage("• Or edit: ~/.kora/config.json")
	}

	cs.state.AddProgramMessage("Controls: Ctrl+C to exit")
	cs.state.AddProgramMessage("")
}

// getToolsSpec returns the provider tool declarations from the registry
func (cs *ChatService) getToolsSpec() []openai.Tool {
	toolSpecs := cs.toolRegistry.GetOpenAIToolsSpec()
	openaiTools := make([]openai.Tool, len(toolSpecs))

	for i, spec := range toolSpecs {
		fn := spec["function"].(map[string]interface{})
		openaiTools[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        fn["name"].(string),
				Description: fn["description"].(string),
				Parameters:  fn["parameters"],
			},
		}
	}

	return openaiTools
}

// RequestConfirmation implements the tools.Confirmator interface. It sends
// a confirmation request to the UI and blocks until the user answers or
// the service shuts down.
func (cs *ChatService) RequestConfirmation(operation, detail string, dangerous bool) bool {
	id := uuid.NewString()

	responseChan := make(chan bool, 1)
	cs.confirmMutex.Lock()
	cs.pendingConfirms[id] = responseChan
	cs.confirmMutex.Unlock()

	defer func() {
		cs.confirmMutex.Lock()
		delete(cs.pendingConfirms, id)
		cs.confirmMutex.Unlock()
	}()

	request := eventbus.ConfirmationRequestEvent{
		ID:        id,
		Operation: operation,
		Detail:    detail,
		Dangerous: dangerous,
	}
	if err := cs.eventBus.SendToUI(request); err != nil {
		cs.logger.Warn("failed to send confirmation request", zap.Error(err))
		return false
	}

	select {
	case approved := <-responseChan:
		return approved
	case <-cs.ctx.Done():
		return false
	}
}

// handleConfirmationResponse routes a confirmation decision to the waiting tool
func (cs *ChatService) handleConfirmationResponse(response eventbus.ConfirmationResponseEvent) {
	cs.confirmMutex.RLock()
	responseChan, exists := cs.pendingConfirms[response.ID]
	cs.confirmMutex.RUnlock()

	if exists {
		select {
		case responseChan <- response.Approved:
		default:
			// Channel might be full or closed, ignore
		}
	}
}
