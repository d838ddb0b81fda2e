package domain

import (
	"context"
	"time"
)

// Conversation roles shared by every LLM backend.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one conversation turn. ID and Timestamp serve the chat
// transcript; providers only read Role and Content.
type Message struct {
	ID        string    `json:"id,omitempty"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Instruction is a system prompt followed by a single user turn.
func Instruction(system, user string) []Message {
	return []Message{{Role: RoleSystem, Content: system}, {Role: RoleUser, Content: user}}
}

// WithSystem puts system in front of history, keeping only role and
// content of each turn.
func WithSystem(system string, history []Message) []Message {
	out := make([]Message, 0, len(history)+1)
	out = append(out, Message{Role: RoleSystem, Content: system})
	for _, m := range history {
		out = append(out, Message{Role: m.Role, Content: m.Content})
	}
	return out
}

// ChatRequest asks a provider for one completion. Zero Model and
// MaxTokens defer to the provider's configuration.
type ChatRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// ChatResponse is a provider's completion.
type ChatResponse struct {
	ID        string
	Model     string
	Message   Message
	Usage     Usage
	CreatedAt time.Time
}

// Usage counts the tokens one completion consumed.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// LLMProvider serves the text tools from a language model.
type LLMProvider interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	// Name is the configured provider name, used in logs and spans.
	Name() string
}
