package tools

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"aitools/internal/domain"
	"aitools/internal/usecase/invocation"
)

// ChatGreeting is the assistant message every conversation starts with.
const ChatGreeting = "Hello! I'm your AI assistant. I can help you with writing, brainstorming, answering questions, and solving problems. What would you like to work on today?"

var chatSuggestions = []string{
	"Writing and editing assistance",
	"Brainstorming creative ideas",
	"Problem-solving strategies",
	"Research and analysis",
	"Code explanations",
	"Learning new concepts",
}

// ChatAssistant keeps an append-only conversation with an assistant.
type ChatAssistant struct {
	env     Env
	backend domain.Capability[[]domain.Message, string]
	ctrl    *invocation.Controller[string, string]
	now     func() time.Time

	mu      sync.Mutex
	history []domain.Message
	seq     int
}

// NewChatAssistant creates a conversation holding only the greeting.
// Sending is always rejected while a reply is pending so that every reply
// answers the full history.
func NewChatAssistant(env Env, backend domain.Capability[[]domain.Message, string]) *ChatAssistant {
	c := &ChatAssistant{env: env, backend: backend, now: time.Now}
	c.seedLocked()

	opts := options[string, string](env, domain.ToolChatAssistant, domain.NonBlank)
	opts.Busy = domain.RejectWhileBusy
	opts.Consume = func(string) string { return "" }
	opts.OnSubmit = func(req domain.ToolRequest[string]) { c.append(domain.RoleUser, req.Input) }
	opts.OnAccept = func(_ domain.Token, reply string) { c.append(domain.RoleAssistant, reply) }
	opts.OnReset = func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.seedLocked()
	}
	c.ctrl = invocation.New("", opts)
	return c
}

// Controller exposes the lifecycle for presentation.
func (c *ChatAssistant) Controller() *invocation.Controller[string, string] {
	return c.ctrl
}

// SetDraft updates the message being typed.
func (c *ChatAssistant) SetDraft(text string) { c.ctrl.SetInput(text) }

// Send commits the draft as a user message and asks for a reply.
func (c *ChatAssistant) Send() (domain.Token, bool) {
	return c.ctrl.Submit(func(ctx context.Context, _ string) (string, error) {
		return c.backend(ctx, c.History())
	})
}

// Clear restores the conversation to the greeting.
func (c *ChatAssistant) Clear() { c.ctrl.Reset() }

// History returns a copy of the conversation in order.
func (c *ChatAssistant) History() []domain.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Message, len(c.history))
	copy(out, c.history)
	return out
}

// Suggestions lists the prompt starters shown on an empty conversation.
func Suggestions() []string {
	out := make([]string, len(chatSuggestions))
	copy(out, chatSuggestions)
	return out
}

// UseSuggestion copies suggestion i into the draft.
func (c *ChatAssistant) UseSuggestion(i int) error {
	if i < 0 || i >= len(chatSuggestions) {
		return domain.NewDomainError("ChatAssistant.UseSuggestion", domain.ErrInvalidInput, fmt.Sprintf("no suggestion %d", i))
	}
	c.ctrl.SetInput(chatSuggestions[i])
	return nil
}

// Dispose tears the tool down.
func (c *ChatAssistant) Dispose() { c.ctrl.Dispose() }

func (c *ChatAssistant) append(role, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.history = append(c.history, domain.Message{
		ID:        strconv.Itoa(c.seq),
		Role:      role,
		Content:   content,
		Timestamp: c.now(),
	})
}

func (c *ChatAssistant) seedLocked() {
	c.seq = 1
	c.history = []domain.Message{{
		ID:        "1",
		Role:      domain.RoleAssistant,
		Content:   ChatGreeting,
		Timestamp: c.now(),
	}}
}
