package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileReadTool returns the full contents of a text file
type FileReadTool struct{}

func (f *FileReadTool) Name() string {
	return "read_file"
}

func (f *FileReadTool) Description() string {
	return "Read the full contents of a file. Use list_files first if you are unsure the file exists."
}

func (f *FileReadTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Path to the file, relative to the current working directory",
		},
	}
}

func (f *FileReadTool) RequiredParameters() []string {
	return []string{"path"}
}

func (f *FileReadTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
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
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s (use list_files for directories)", ErrIsADirectory, path)
	}

	content, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, classifyPathError(path, err)
	}

	return map[string]interface{}{
		"path":    path,
		"content": string(content),
	}, nil
}

// resolvePath expands a possibly-relative path against the working
// directory. Paths are used as the model supplied them; there is no
// confinement to a root (trusted local use).
func resolvePath(path string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return filepath.Join(cwd, path), nil
}
