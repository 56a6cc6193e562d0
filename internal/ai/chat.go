package ai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/byteakp/Baclend-GEN/internal/ai/prompts"
)

// Chat answers a free-form message, optionally grounded in project file
// context supplied by the caller.
func (g *Generator) Chat(ctx context.Context, message, contextText, model string) (string, error) {
	if model == "" {
		model = g.defaultModel
	}
	answer, err := g.Complete(ctx, ResolveModel(model), chatMessages(message, contextText), CompletionOptions{})
	if err != nil {
		return "", fmt.Errorf("chat call failed: %w", err)
	}
	return answer, nil
}

// ChatStream is the streaming variant of Chat. The caller must Close the
// returned stream; cancelling ctx (e.g. on client disconnect) releases the
// provider connection.
func (g *Generator) ChatStream(ctx context.Context, message, contextText, model string) (*openai.ChatCompletionStream, error) {
	if model == "" {
		model = g.defaultModel
	}
	return g.CompleteStream(ctx, ResolveModel(model), chatMessages(message, contextText), CompletionOptions{})
}

func chatMessages(message, contextText string) []openai.ChatCompletionMessage {
	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: prompts.GetChatSystemPrompt()},
		{Role: openai.ChatMessageRoleUser, Content: prompts.WithProjectContext(message, contextText)},
	}
}
