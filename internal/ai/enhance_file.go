package ai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/byteakp/Baclend-GEN/internal/ai/prompts"
)

// EnhanceFile asks the model to improve an existing file against the given
// requirements and returns the full replacement content.
func (g *Generator) EnhanceFile(ctx context.Context, path, content, requirements, model string) (string, error) {
	fullPrompt, systemPrompt := prompts.GetFileEnhancePrompt(path, content, requirements)
	return g.completeFileOp(ctx, fullPrompt, systemPrompt, model)
}

// RewriteFile asks the model to rewrite an existing file from scratch
// against the given requirements and returns the full replacement content.
func (g *Generator) RewriteFile(ctx context.Context, path, content, requirements, model string) (string, error) {
	fullPrompt, systemPrompt := prompts.GetFileRewritePrompt(path, content, requirements)
	return g.completeFileOp(ctx, fullPrompt, systemPrompt, model)
}

func (g *Generator) completeFileOp(ctx context.Context, fullPrompt, systemPrompt, model string) (string, error) {
	if model == "" {
		model = g.defaultModel
	}
	raw, err := g.Complete(ctx, ResolveModel(model), []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: fullPrompt},
	}, CompletionOptions{Temperature: 0.3})
	if err != nil {
		return "", fmt.Errorf("file operation call failed: %w", err)
	}
	return ExtractCodeBlock(raw), nil
}
