package ai

import (
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
)

func TestResolveModel(t *testing.T) {
	assert.Equal(t, openai.GPT4o, ResolveModel("gpt-4o"))
	assert.Equal(t, openai.GPT4oMini, ResolveModel(""))
	// Unknown names pass through as provider identifiers.
	assert.Equal(t, "some-custom-model", ResolveModel("some-custom-model"))
}

func TestModelNames(t *testing.T) {
	names := ModelNames()
	assert.Contains(t, names, DefaultModel)
	assert.Len(t, names, len(modelRegistry))
}
