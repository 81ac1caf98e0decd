package core

import (
	"sync"

	"github.com/koralabs/kora/internal/models"
	"github.com/sashabaranov/go-openai"
)

const systemPrompt = `You are a coding assistant whose goal is to help solve coding tasks.
You have access to tools for reading files, listing directories, and editing files.
Use these tools when needed to help with coding tasks.`

// ChatState manages the conversation state for the event-driven architecture.
// Both the provider-bound chat history and the UI transcript are append-only:
// every method adds entries in arrival order, none removes or reorders them.
// The transcript being append-only is what lets the service push only the
// messages the UI has not seen yet.
type ChatState struct {
	mu                sync.RWMutex
	chatHistory       []openai.ChatCompletionMessage // Single source of truth for the provider
	messages          []models.Message               // UI transcript, interleaved in arrival order
	isProcessing      bool
	lastError         error
	conversationReady bool
	recursionDepth    int // Provider calls made for the current user input
	maxRecursionDepth int // Maximum provider calls per user input
}

func NewChatState() *ChatState {
	return &ChatState{
		chatHistory:       make([]openai.ChatCompletionMessage, 0),
		messages:          make([]models.Message, 0),
		isProcessing:      false,
		lastError:         nil,
		conversationReady: true,
		recursionDepth:    0,
		maxRecursionDepth: 8, // Prevent infinite tool loops
	}
}

func (cs *ChatState) GetChatHistory() []openai.ChatCompletionMessage {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	result := make([]openai.ChatCompletionMessage, len(cs.chatHistory))
	copy(result, cs.chatHistory)
	return result
}

// GetChatHistoryWithSystemPrompt returns the provider-bound message list:
// the system prompt followed by the full conversation history.
func (cs *ChatState) GetChatHistoryWithSystemPrompt() []openai.ChatCompletionMessage {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	result := make([]openai.ChatCompletionMessage, 0, len(cs.chatHistory)+1)
	result = append(result, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	result = append(result, cs.chatHistory...)
	return result
}

// GetMessages returns a copy of the UI transcript.
func (cs *ChatState) GetMessages() []models.Message {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	result := make([]models.Message, len(cs.messages))
	copy(result, cs.messages)
	return result
}

func (cs *ChatState) IsProcessing() bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.isProcessing
}

func (cs *ChatState) GetLastError() error {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.lastError
}

func (cs *ChatState) IsConversationReady() bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.conversationReady
}

// AddProgramMessage adds a program message (system notifications)
func (cs *ChatState) AddProgramMessage(content string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.messages = append(cs.messages, models.Message{
		Content: content,
		Type:    models.Program,
	})
}

// StartProcessingWithUserMessage atomically sets processing and appends
// the user message, so the UI never observes one without the other.
func (cs *ChatState) StartProcessingWithUserMessage(content string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.isProcessing = true
	cs.lastError = nil
	cs.recursionDepth = 0

	cs.chatHistory = append(cs.chatHistory, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: content,
	})
	cs.messages = append(cs.messages, models.Message{
		Content: content,
		Type:    models.User,
	})
}

func (cs *ChatState) FinishProcessingWithError(err error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.isProcessing = false
	cs.lastError = err
	cs.recursionDepth = 0
}

func (cs *ChatState) FinishProcessing() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.isProcessing = false
	cs.lastError = nil
	cs.recursionDepth = 0
}

// AddToolResultMessage appends a tool result correlated to its call ID
func (cs *ChatState) AddToolResultMessage(callID, toolName, result string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.chatHistory = append(cs.chatHistory, openai.ChatCompletionMessage{
		Role:       openai.ChatMessageRoleTool,
		Content:    result,
		ToolCallID: callID,
	})
	cs.messages = append(cs.messages, models.Message{
		Content:    result,
		Type:       models.ToolResult,
		ToolCallID: callID,
		ToolName:   toolName,
	})
}

// AddAssistantMessageWithToolCalls appends an assistant message that may
// carry tool calls
func (cs *ChatState) AddAssistantMessageWithToolCalls(content string, toolCalls []openai.ToolCall) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.chatHistory = append(cs.chatHistory, openai.ChatCompletionMessage{
		Role:      openai.ChatMessageRoleAssistant,
		Content:   content,
		ToolCalls: toolCalls,
	})

	if content != "" {
		cs.messages = append(cs.messages, models.Message{
			Content: content,
			Type:    models.Assistant,
		})
	}
	for _, toolCall := range toolCalls {
		cs.messages = append(cs.messages, models.Message{
			Content:    toolCall.Function.Arguments,
			Type:       models.ToolCall,
			ToolCallID: toolCall.ID,
			ToolName:   toolCall.Function.Name,
			ToolArgs:   toolCall.Function.Arguments,
		})
	}
}

func (cs *ChatState) CanRecurse() bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.recursionDepth < cs.maxRecursionDepth
}

func (cs *ChatState) IncrementRecursion() {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.recursionDepth++
}
