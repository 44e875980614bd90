package chat

import "time"

// Message roles as sent to the completion service.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn in a session's log. Created once, never mutated.
type Message struct {
	ID         string    `json:"id"`
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	VideoID    string    `json:"videoId,omitempty"`
	VideoTitle string    `json:"videoTitle,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ContextMessage is the transient {role, content} projection handed to
// the language model. It is never persisted.
type ContextMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Context reduces a message to its model-facing projection.
func (m Message) Context() ContextMessage {
	return ContextMessage{Role: m.Role, Content: m.Content}
}
