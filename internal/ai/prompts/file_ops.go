package prompts

import "fmt"

// GetFileEnhancePrompt builds the prompt for improving an existing file in
// place while keeping its overall structure.
func GetFileEnhancePrompt(path, content, requirements string) (string, string) {
	prompt := `
		Here is the current content of the project file "%s":
		---
		%s
		---

		Enhance this file according to the following requirements:
		---
		%s
		---

		Keep the file's existing structure and purpose. Apply the requirements on top of what is
		already there rather than starting over.

		Respond with ONLY the complete updated file content inside a single fenced code block.
		No explanation before or after the block.
	`
	fullPrompt := fmt.Sprintf(prompt, path, content, requirements)
	systemPrompt := "You are a code assistant improving a single file of an existing project. Respond only with the updated file content."
	return fullPrompt, systemPrompt
}

// GetFileRewritePrompt builds the prompt for rewriting a file from scratch
// against new requirements; the current content is reference only.
func GetFileRewritePrompt(path, content, requirements string) (string, string) {
	prompt := `
		The project file "%s" currently contains:
		---
		%s
		---

		Rewrite this file from scratch to satisfy the following requirements:
		---
		%s
		---

		The current content is reference material only; you are free to discard its structure
		entirely as long as the file still fits its role in the project.

		Respond with ONLY the complete new file content inside a single fenced code block.
		No explanation before or after the block.
	`
	fullPrompt := fmt.Sprintf(prompt, path, content, requirements)
	systemPrompt := "You are a code assistant rewriting a single file of an existing project. Respond only with the new file content."
	return fullPrompt, systemPrompt
}
