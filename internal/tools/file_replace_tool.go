package tools

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// FileReplaceTool replaces the first occurrence of a string in a file
type FileReplaceTool struct {
	confirmator Confirmator
}

func (f *FileReplaceTool) Name() string {
	return "replace_in_file"
}

func (f *FileReplaceTool) Description() string {
	return "Replace the first occurrence of old_str with new_str in an existing file. Use edit_file to create a file or rewrite it completely."
}

func (f *FileReplaceTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Path to the file, relative to the current working directory",
		},
		"old_str": map[string]interface{}{
			"type":        "string",
			"description": "The exact text to replace",
		},
		"new_str": map[string]interface{}{
			"type":        "string",
			"description": "The text to replace it with",
		},
	}
}

func (f *FileReplaceTool) RequiredParameters() []string {
	return []string{"path", "old_str", "new_str"}
}

func (f *FileReplaceTool) SetConfirmator(confirmator Confirmator) {
	f.confirmator = confirmator
}

func (f *FileReplaceTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	path, ok := args["path"].(string)
	if !ok {
		return nil, fmt.Errorf("path parameter must be a string")
	}

	oldStr, ok := args["old_str"].(string)
	if !ok {
		return nil, fmt.Errorf("old_str parameter must be a string")
	}

	newStr, ok := args["new_str"].(string)
	if !ok {
		return nil, fmt.Errorf("new_str parameter must be a string")
	}

	if oldStr == "" {
		return nil, fmt.Errorf("old_str must not be empty; use edit_file to create or rewrite a file")
	}

	fullPath, err := resolvePath(path)
	if err != nil {
		return nil, err
	}

	original, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, classifyPathError(path, err)
	}

	text := string(original)
	if !strings.Contains(text, oldStr) {
		return nil, fmt.Errorf("old_str not found in %s", path)
	}

	if f.confirmator != nil {
		detail := fmt.Sprintf("%s: replace %q", path, truncateForDisplay(oldStr, 60))
		if !f.confirmator.RequestConfirmation("Edit file", detail, true) {
			return map[string]interface{}{
				"path":    path,
				"action":  "aborted",
				"aborted": true,
			}, nil
		}
	}

	edited := strings.Replace(text, oldStr, newStr, 1)
	if err := os.WriteFile(fullPath, []byte(edited), 0644); err != nil {
		return nil, classifyPathError(path, err)
	}

	return map[string]interface{}{
		"path":   path,
		"action": "replaced",
	}, nil
}

// truncateForDisplay shortens a string to max runes, never splitting a
// multi-byte character.
func truncateForDisplay(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
