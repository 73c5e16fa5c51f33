package assistant

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/EmiTor1144/09-prj-loreal-routine-builder/internal/observability"
)

// Apology is returned by Send whenever no reply could be obtained.
const Apology = "Sorry, I'm having trouble connecting right now. Please try again!"

// Completer produces a reply for a message history.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (Reply, error)
}

// Conversation is the append-only log exchanged with the assistant, opened by a fixed system message.
type Conversation struct {
	mu       sync.Mutex
	client   Completer
	messages []Message
}

// NewConversation seeds the log with systemPrompt.
func NewConversation(client Completer, systemPrompt string) *Conversation {
	return &Conversation{
		client:   client,
		messages: []Message{{Role: RoleSystem, Content: systemPrompt}},
	}
}

// Send appends userText, requests a reply for the whole history, appends it and returns its text.
// On failure the user turn stays unanswered in the log and Apology is returned.
// Callers serialize Send; concurrent calls would interleave turns.
func (c *Conversation) Send(ctx context.Context, userText string) string {
	c.mu.Lock()
	c.messages = append(c.messages, Message{Role: RoleUser, Content: userText})
	history := append([]Message(nil), c.messages...)
	c.mu.Unlock()

	reply, err := c.client.Complete(ctx, history)
	if err != nil {
		observability.FromContext(ctx).Warn("assistant request failed",
			zap.Int("messages", len(history)),
			zap.Error(err),
		)
		return Apology
	}

	text := reply.Text()
	c.mu.Lock()
	c.messages = append(c.messages, Message{Role: RoleAssistant, Content: text})
	c.mu.Unlock()
	return text
}

// Messages returns a copy of the log.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.messages...)
}
