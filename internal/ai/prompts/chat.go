package prompts

import "fmt"

// GetChatSystemPrompt returns the system message for free-form chat.
func GetChatSystemPrompt() string {
	return "You are a helpful AI assistant specialized in backend development. Answer questions about code, architecture and tooling clearly and concisely."
}

// WithProjectContext prepends project file context to a chat message.
func WithProjectContext(message, contextText string) string {
	if contextText == "" {
		return message
	}
	return fmt.Sprintf("Relevant context from the user's project:\n---\n%s\n---\n\nUser message: %s", contextText, message)
}
