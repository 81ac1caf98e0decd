package utils

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Markdown styles
func CodeBlockStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(lipgloss.Color("236")).
		Padding(0, 1).
		MarginLeft(2)
}

func BoldStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true)
}

func ItalicStyle() lipgloss.Style {
	return lipgloss.NewStyle().Italic(true)
}

func TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true)
}

func LinkStyle() lipgloss.Style {
	return lipgloss.NewStyle().Underline(true)
}

func ListStyle() lipgloss.Style {
	return lipgloss.NewStyle().MarginLeft(2)
}

var (
	orderedListRegex = regexp.MustCompile(`^(\d+)\.\s+(.*)`)
	inlineCodeRegex  = regexp.MustCompile("`[^`]*`")
	linkRegex        = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	boldRegex        = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRegex      = regexp.MustCompile(`_([^_]+)_`)
)

// RenderMarkdown applies basic markdown rendering to assistant text
func RenderMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	var result strings.Builder

	inCodeBlock := false

	for _, line := range lines {
		// Code block fences toggle verbatim rendering
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			continue
		}
		if inCodeBlock {
			result.WriteString(CodeBlockStyle().Render(line) + "\n")
			continue
		}

		// Headings - strip the marks for cleaner output
		if title, found := cutHeading(line); found {
			result.WriteString(TitleStyle().Render(processInline(title)) + "\n")
			continue
		}

		// Unordered lists (- or *)
		if item, found := strings.CutPrefix(line, "- "); found {
			result.WriteString(ListStyle().Render("• "+processInline(item)) + "\n")
			continue
		}
		if item, found := strings.CutPrefix(line, "* "); found {
			result.WriteString(ListStyle().Render("• "+processInline(item)) + "\n")
			continue
		}

		// Ordered lists (1. 2. etc.)
		if matches := orderedListRegex.FindStringSubmatch(line); len(matches) == 3 {
			result.WriteString(ListStyle().Render(matches[1]+". "+processInline(matches[2])) + "\n")
			continue
		}

		result.WriteString(processInline(line) + "\n")
	}

	return strings.TrimSuffix(result.String(), "\n")
}

func cutHeading(line string) (string, bool) {
	for _, prefix := range []string{"### ", "## ", "# "} {
		if title, found := strings.CutPrefix(line, prefix); found {
			return title, true
		}
	}
	return "", false
}

// processInline handles inline code, links, bold and italic
func processInline(line string) string {
	// Inline code first so its content is not treated as other markdown
	line = inlineCodeRegex.ReplaceAllStringFunc(line, func(match string) string {
		return CodeBlockStyle().Render(strings.Trim(match, "`"))
	})

	line = linkRegex.ReplaceAllStringFunc(line, func(match string) string {
		matches := linkRegex.FindStringSubmatch(match)
		if len(matches) == 3 {
			return LinkStyle().Render(matches[1])
		}
		return match
	})

	line = boldRegex.ReplaceAllStringFunc(line, func(match string) string {
		return BoldStyle().Render(strings.Trim(match, "*"))
	})

	line = italicRegex.ReplaceAllStringFunc(line, func(match string) string {
		return ItalicStyle().Render(strings.Trim(match, "_"))
	})

	return line
}
