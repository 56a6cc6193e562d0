package ai

import openai "github.com/sashabaranov/go-openai"

// DefaultModel is used when neither the request nor the configuration
// names a model.
const DefaultModel = "gpt-4o-mini"

// modelRegistry maps short human-facing model names to provider model
// identifiers.
var modelRegistry = map[string]string{
	"gpt-4o":        openai.GPT4o,
	"gpt-4o-mini":   openai.GPT4oMini,
	"gpt-4-turbo":   openai.GPT4Turbo,
	"gpt-3.5-turbo": openai.GPT3Dot5Turbo,
	"o1-mini":       openai.O1Mini,
}

// ResolveModel maps a short model name to its provider identifier. Unknown
// names pass through unchanged so callers may address provider models the
// registry does not list.
func ResolveModel(name string) string {
	if name == "" {
		return modelRegistry[DefaultModel]
	}
	if id, ok := modelRegistry[name]; ok {
		return id
	}
	return name
}

// ModelNames returns the short names the registry knows about.
func ModelNames() []string {
	names := make([]string, 0, len(modelRegistry))
	for name := range modelRegistry {
		names = append(names, name)
	}
	return names
}
