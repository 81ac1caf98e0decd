package tools

// RegisterBuiltinTools registers all builtin tools to a registry
func RegisterBuiltinTools(registry *Registry) {
	registry.Register(&FileReadTool{})
	registry.Register(&ListFilesTool{})
	registry.Register(&FileEditTool{})
	registry.Register(&FileReplaceTool{})
}
