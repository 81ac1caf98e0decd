package components

import (
	"fmt"
	"strings"

	"github.com/koralabs/kora/internal/models"
	"github.com/koralabs/kora/internal/utils"
	"github.com/koralabs/kora/ui/styles"
)

const toolResultPreviewLimit = 400

func RenderMessages(messages []models.Message) string {
	var b strings.Builder

	userStyle := styles.UserStyle()
	assistantStyle := styles.AssistantStyle()
	programStyle := styles.ProgramStyle()
	toolCallStyle := styles.ToolCallStyle()
	toolResultStyle := styles.ToolResultStyle()

	for _, msg := range messages {
		switch msg.Type {
		case models.User:
			b.WriteString(userStyle.Render("You: "+msg.Content) + "\n\n")
		case models.Assistant:
			b.WriteString(assistantStyle.Render("Assistant: "+utils.RenderMarkdown(msg.Content)) + "\n\n")
		case models.Program:
			b.WriteString(programStyle.Render(msg.Content) + "\n\n")
		case models.ToolCall:
			b.WriteString(toolCallStyle.Render(fmt.Sprintf("⚙ %s(%s)", msg.ToolName, msg.ToolArgs)) + "\n\n")
		case models.ToolResult:
			b.WriteString(toolResultStyle.Render(fmt.Sprintf("→ %s: %s", msg.ToolName, previewToolResult(msg.Content))) + "\n\n")
		}
	}

	return b.String()
}

// previewToolResult keeps long tool output (whole files) from flooding
// the transcript; the full text still goes to the provider. Truncation
// is on rune boundaries so multi-byte characters are never split.
func previewToolResult(content string) string {
	runes := []rune(content)
	if len(runes) <= toolResultPreviewLimit {
		return content
	}
	return string(runes[:toolResultPreviewLimit]) + "\n... (truncated)"
}
