package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Tool represents a function that can be called by the AI
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]interface{} // JSON schema for parameters
	RequiredParameters() []string       // List of required parameter names
	Execute(ctx context.Context, args map[string]interface{}) (interface{}, error)
}

// Confirmator asks the user to approve an operation before it runs.
// Write tools consult it before touching an existing file.
type Confirmator interface {
	RequestConfirmation(operation, detail string, dangerous bool) bool
}

// confirmable is implemented by tools that want a Confirmator injected.
type confirmable interface {
	SetConfirmator(c Confirmator)
}

// ToolCall represents a tool call request
type ToolCall struct {
	ID   string                 `json:"id"`
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"arguments"`
}

// ToolResult represents the result of a tool execution
type ToolResult struct {
	CallID string      `json:"call_id"`
	Name   string      `json:"name"`
	Result interface{} `json:"result"`
	Error  string      `json:"error,omitempty"`
}

// Registry manages available tools
type Registry struct {
	tools map[string]Tool
	mu    sync.RWMutex
}

// NewRegistry creates a new tool registry
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool to the registry
func (r *Registry) Register(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name()] = tool
}

// GetTool retrieves a tool by name
func (r *Registry) GetTool(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, exists := r.tools[name]
	return tool, exists
}

// ListTools returns all registered tools
func (r *Registry) ListTools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		tools = append(tools, tool)
	}
	return tools
}

// SetConfirmator injects the confirmator into every registered tool
// that supports confirmation.
func (r *Registry) SetConfirmator(c Confirmator) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, tool := range r.tools {
		if ct, ok := tool.(confirmable); ok {
			ct.SetConfirmator(c)
		}
	}
}

// GetOpenAIToolsSpec returns OpenAI-compatible tool specifications
func (r *Registry) GetOpenAIToolsSpec() []map[string]interface{} {
	tools := r.ListTools()
	specs := make([]map[string]interface{}, len(tools))

	for i, tool := range tools {
		specs[i] = map[string]interface{}{
			"type": "function",
			"function": map[string]interface{}{
				"name":        tool.Name(),
				"description": tool.Description(),
				"parameters": map[string]interface{}{
					"type":       "object",
					"properties": tool.Parameters(),
					"required":   tool.RequiredParameters(),
				},
			},
		}
	}

	return specs
}

// Execute runs a tool call synchronously and never returns an error:
// failures are folded into the ToolResult so the conversation can
// report them to the model and continue.
func (r *Registry) Execute(ctx context.Context, call ToolCall) ToolResult {
	tool, exists := r.GetTool(call.Name)
	if !exists {
		return ToolResult{
			CallID: call.ID,
			Name:   call.Name,
			Error:  fmt.Sprintf("%v: '%s'", ErrToolNotFound, call.Name),
		}
	}

	result, err := tool.Execute(ctx, call.Args)
	toolResult := ToolResult{
		CallID: call.ID,
		Name:   call.Name,
		Result: result,
	}
	if err != nil {
		toolResult.Error = err.Error()
	}
	return toolResult
}

// ExecuteAsync executes a tool call asynchronously
func (r *Registry) ExecuteAsync(ctx context.Context, call ToolCall, resultChan chan<- ToolResult) {
	go func() {
		defer close(resultChan)
		resultChan <- r.Execute(ctx, call)
	}()
}

// ToJSONString converts a tool result to JSON string
func (tr *ToolResult) ToJSONString() string {
	data, _ := json.Marshal(tr)
	return string(data)
}
