package tools

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// FileEditTool writes or replaces a file's entire contents
type FileEditTool struct {
	confirmator Confirmator
}

func (f *FileEditTool) Name() string {
	return "edit_file"
}

func (f *FileEditTool) Description() string {
	return "Create a file or replace its entire contents. Overwrites the file if it already exists."
}

func (f *FileEditTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Path to the file, relative to the current working directory",
		},
		"content": map[string]interface{}{
			"type":        "string",
			"description": "The full new contents of the file",
		},
	}
}

func (f *FileEditTool) RequiredParameters() []string {
	return []string{"path", "content"}
}

func (f *FileEditTool) SetConfirmator(confirmator Confirmator) {
	f.confirmator = confirmator
}

func (f *FileEditTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	path, ok := args["path"].(string)
	if !ok {
		return nil, fmt.Errorf("path parameter must be a string")
	}

	content, ok := args["content"].(string)
	if !ok {
		return nil, fmt.Errorf("content parameter must be a string")
	}

	fullPath, err := resolvePath(path)
	if err != nil {
		return nil, err
	}

	created := true
	if info, statErr := os.Stat(fullPath); statErr == nil {
		if info.IsDir() {
			return nil, fmt.Errorf("%w: %s", ErrIsADirectory, path)
		}
		created = false
		// Overwriting an existing file needs approval.
		if f.confirmator != nil {
			if !f.confirmator.RequestConfirmation("Overwrite file", path, true) {
				return map[string]interface{}{
					"path":    path,
					"action":  "aborted",
					"aborted": true,
				}, nil
			}
		}
	}

	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		return nil, classifyPathError(path, err)
	}

	action := "edited"
	if created {
		action = "created"
	}

	return map[string]interface{}{
		"path":   path,
		"action": action,
		"lines":  countLines(content),
		"bytes":  len(content),
	}, nil
}

func countLines(content string) int {
	if content == "" {
		return 0
	}
	lines := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		lines++
	}
	return lines
}
