package tools

import (
	"context"
	"fmt"
	"os"
)

// ListFilesTool lists the entries of a directory
type ListFilesTool struct{}

func (l *ListFilesTool) Name() string {
	return "list_files"
}

func (l *ListFilesTool) Description() string {
	return "List the files and subdirectories in a directory, in lexicographic order."
}

func (l *ListFilesTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Path to the directory, relative to the current working directory",
		},
	}
}

func (l *ListFilesTool) RequiredParameters() []string {
	return []string{"path"}
}

func (l *ListFilesTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	path, ok := args["path"].(string)
	if !ok {
		return nil, fmt.Errorf("path parameter must be a string")
	}

	fullPath, err := resolvePath(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, classifyPathError(path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, path)
	}

	// os.ReadDir returns entries sorted by name.
	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, classifyPathError(path, err)
	}

	files := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		entryType := "file"
		if entry.IsDir() {
			entryType = "dir"
		}
		files = append(files, map[string]interface{}{
			"name": entry.Name(),
			"type": entryType,
		})
	}

	return map[string]interface{}{
		"path":  path,
		"files": files,
	}, nil
}
