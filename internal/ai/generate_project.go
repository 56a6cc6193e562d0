package ai

import (
	"context"
	"fmt"
	"log"

	openai "github.com/sashabaranov/go-openai"

	"github.com/byteakp/Baclend-GEN/internal/ai/prompts"
	"github.com/byteakp/Baclend-GEN/internal/types"
)

// GenerateProject asks the model to design a backend project for the
// user's prompt and parses the reply into a ProjectDescriptor. model is a
// short registry name; empty selects the generator's default.
func (g *Generator) GenerateProject(ctx context.Context, userPrompt, model string, opts CompletionOptions) (*types.ProjectDescriptor, error) {
	if model == "" {
		model = g.defaultModel
	}
	providerModel := ResolveModel(model)
	fullPrompt := fmt.Sprintf(prompts.GetProjectGenerationPrompt(), userPrompt)

	log.Printf("Generating project with model %s (%s)", model, providerModel)

	raw, err := g.Complete(ctx, providerModel, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: prompts.GetGenerationSystemPrompt()},
		{Role: openai.ChatMessageRoleUser, Content: fullPrompt},
	}, opts)
	if err != nil {
		return nil, fmt.Errorf("project generation call failed: %w", err)
	}

	desc, err := ExtractProjectJSON(raw)
	if err != nil {
		return nil, err
	}
	if len(desc.FileTree) == 0 {
		return nil, &MalformedResponseError{
			Reason:  "model reply parsed but contains an empty fileTree",
			Snippet: truncate(raw, snippetLimit),
		}
	}

	log.Printf("Parsed project %q with %d file tree entries", desc.ProjectName, len(desc.FileTree))
	return desc, nil
}
